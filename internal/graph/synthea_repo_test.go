package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medgraph/medgraph/internal/logging"
	"github.com/medgraph/medgraph/internal/synthea"
)

func TestUpsertMedicationsNullHandling(t *testing.T) {
	tx := &fakeTransaction{}
	repo := NewSyntheaRepository(newFakeDriver(tx), logging.NewNopLogger())

	err := repo.UpsertMedications(context.Background(), []synthea.Medication{{
		Start:       "2010-01-01T00:00:00Z",
		PatientID:   "p1",
		Code:        "106892",
		Description: "Ibuprofen 200 MG Oral Tablet",
	}})
	require.NoError(t, err)

	batch := tx.params[0]["batch"].([]map[string]any)
	require.Len(t, batch, 1)
	assert.Equal(t, "2010-01-01T00:00:00Z", batch[0]["start"])
	// Empty stop and encounter become Cypher nulls, not empty strings.
	assert.Nil(t, batch[0]["stop"])
	assert.Nil(t, batch[0]["encounter"])

	assert.Contains(t, tx.queries[0], "MERGE (m:Medication {code: row.code})")
	assert.Contains(t, tx.queries[0], "TAKES_MEDICATION")
	assert.Contains(t, tx.queries[0], "PRESCRIBED")
}

func TestUpsertPatientsEmptyBatch(t *testing.T) {
	tx := &fakeTransaction{}
	repo := NewSyntheaRepository(newFakeDriver(tx), logging.NewNopLogger())

	require.NoError(t, repo.UpsertPatients(context.Background(), nil))
	assert.Empty(t, tx.queries)
}
