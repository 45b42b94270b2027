package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeVocabularyNotLoaded, "vocabulary must be loaded")

	assert.Equal(t, ErrCodeVocabularyNotLoaded, err.Code)
	assert.Equal(t, "[VOC_001] vocabulary must be loaded", err.Error())
	assert.Nil(t, err.Cause)
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(cause, ErrCodeGraphConnection, "failed to connect to neo4j")

	require.NotNil(t, err)
	assert.Equal(t, ErrCodeGraphConnection, err.Code)
	assert.ErrorIs(t, err, cause)
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "should be dropped"))
	assert.Nil(t, Wrapf(nil, ErrCodeInternal, "should be dropped %d", 1))
}

func TestWithDetail(t *testing.T) {
	base := New(ErrCodeVocabularyParse, "malformed row")
	detailed := base.WithDetail("line 42")

	assert.Equal(t, "[VOC_002] malformed row: line 42", detailed.Error())
	// The original is not mutated.
	assert.Empty(t, base.Detail)

	var nilErr *AppError
	assert.Nil(t, nilErr.WithDetail("ignored"))
}

func TestCodeOf(t *testing.T) {
	err := New(ErrCodeMappingFailed, "mapping failed")
	wrapped := fmt.Errorf("outer: %w", err)

	assert.Equal(t, ErrCodeMappingFailed, CodeOf(wrapped))
	assert.Equal(t, ErrCodeInternal, CodeOf(stderrors.New("plain")))
}

func TestHasCode(t *testing.T) {
	err := Wrap(New(ErrCodeDrugNotFound, "no such drug"), ErrCodeDrugNotFound, "lookup failed")

	assert.True(t, HasCode(err, ErrCodeDrugNotFound))
	assert.False(t, HasCode(err, ErrCodeGraphQuery))
	assert.True(t, IsNotFound(err))
}

func TestErrorsAsTraversal(t *testing.T) {
	inner := New(ErrCodeGraphWrite, "batch upsert failed")
	outer := Wrap(inner, ErrCodeMappingFailed, "mapping run aborted")

	var appErr *AppError
	require.True(t, stderrors.As(outer, &appErr))
	assert.Equal(t, ErrCodeMappingFailed, appErr.Code)
	assert.ErrorIs(t, outer, inner)
}
