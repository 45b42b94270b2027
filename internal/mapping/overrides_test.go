package mapping

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medgraph/medgraph/internal/logging"
	"github.com/medgraph/medgraph/pkg/errors"
)

func TestReadOverrides(t *testing.T) {
	csv := `synthea_code,drugbank_id,confidence,reason
857005,DB00316,0.98,verified against label
106892,DB01050,,generic match
bad-row,,0.5,missing drug id
895994,DB00945,1.7,confidence out of range
`
	overrides, err := ReadOverrides(strings.NewReader(csv), logging.NewNopLogger())
	require.NoError(t, err)
	require.Len(t, overrides, 2)

	o := overrides["857005"]
	assert.Equal(t, "DB00316", o.DrugID)
	assert.Equal(t, 0.98, o.Confidence)
	assert.Equal(t, "verified against label", o.Reason)

	// Empty confidence column defaults to full confidence.
	assert.Equal(t, 1.0, overrides["106892"].Confidence)
}

func TestReadOverridesMissingColumn(t *testing.T) {
	_, err := ReadOverrides(strings.NewReader("code,drug\n1,2\n"), logging.NewNopLogger())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeOverrideParse))
}

func TestLoadOverridesAbsentFile(t *testing.T) {
	overrides, err := LoadOverrides(filepath.Join(t.TempDir(), "none.csv"), logging.NewNopLogger())
	require.NoError(t, err)
	assert.Empty(t, overrides)
}
