package mapping

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medgraph/medgraph/internal/domain/drug"
	"github.com/medgraph/medgraph/internal/logging"
)

func TestExportUnmapped(t *testing.T) {
	result := &drug.MappingResult{
		Unmapped: []drug.UnmappedMedication{
			{Description: "Mystery Elixir 5 MG", ExtractedName: "mystery elixir"},
			{Description: "[Brand Only]", ExtractedName: ""},
		},
	}
	path := filepath.Join(t.TempDir(), "unmapped.csv")

	require.NoError(t, ExportUnmapped(result, path, logging.NewNopLogger()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "synthea_description,extracted_name,suggested_drugbank_id,confidence,notes", lines[0])
	assert.Equal(t, "Mystery Elixir 5 MG,mystery elixir,,,", lines[1])
	assert.Equal(t, "[Brand Only],,,,", lines[2])
}

func TestExportUnmappedNothingToWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unmapped.csv")
	require.NoError(t, ExportUnmapped(&drug.MappingResult{}, path, logging.NewNopLogger()))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
