package graph

import (
	"context"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medgraph/medgraph/internal/domain/drug"
	"github.com/medgraph/medgraph/internal/logging"
)

func TestDistinctInUse(t *testing.T) {
	tx := &fakeTransaction{results: []Result{&fakeResult{records: []*neo4j.Record{
		record([]string{"code", "description"}, []any{"857005", "Acetaminophen 325 MG Oral Tablet"}),
		record([]string{"code", "description"}, []any{"106892", "Ibuprofen 200 MG Oral Tablet"}),
	}}}}
	repo := NewMedicationRepository(newFakeDriver(tx), logging.NewNopLogger())

	meds, err := repo.DistinctInUse(context.Background())
	require.NoError(t, err)
	require.Len(t, meds, 2)
	assert.Equal(t, "857005", meds[0].Code)
	assert.Equal(t, "Ibuprofen 200 MG Oral Tablet", meds[1].Description)

	require.Len(t, tx.queries, 1)
	assert.Contains(t, tx.queries[0], "TAKES_MEDICATION")
	assert.Contains(t, tx.queries[0], "DISTINCT m")
}

func TestUpsertMappingEdgesParams(t *testing.T) {
	tx := &fakeTransaction{}
	repo := NewMedicationRepository(newFakeDriver(tx), logging.NewNopLogger())

	created := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	err := repo.UpsertMappingEdges(context.Background(), []drug.MappingEdge{{
		Code:          "857005",
		DrugID:        "DB00316",
		Confidence:    1.0,
		Method:        drug.MethodExact,
		ExtractedName: "acetaminophen",
		Created:       created,
	}})
	require.NoError(t, err)

	require.Len(t, tx.params, 1)
	batch := tx.params[0]["batch"].([]map[string]any)
	require.Len(t, batch, 1)
	assert.Equal(t, "857005", batch[0]["code"])
	assert.Equal(t, "DB00316", batch[0]["drugbank_id"])
	assert.Equal(t, "exact_match", batch[0]["method"])
	assert.Equal(t, "acetaminophen", batch[0]["extracted_name"])
	assert.Contains(t, tx.queries[0], "MERGE (m)-[r:MAPPED_TO]->(d)")
}

func TestUpsertMappingEdgesEmptyBatch(t *testing.T) {
	tx := &fakeTransaction{}
	repo := NewMedicationRepository(newFakeDriver(tx), logging.NewNopLogger())

	require.NoError(t, repo.UpsertMappingEdges(context.Background(), nil))
	assert.Empty(t, tx.queries)
}

func TestVerifyInteractions(t *testing.T) {
	tx := &fakeTransaction{results: []Result{&fakeResult{records: []*neo4j.Record{
		record([]string{"severity", "hits"}, []any{"HIGH", int64(3)}),
		record([]string{"severity", "hits"}, []any{"MODERATE", int64(10)}),
		record([]string{"severity", "hits"}, []any{"LOW", int64(5)}),
	}}}}
	repo := NewMedicationRepository(newFakeDriver(tx), logging.NewNopLogger())

	stats, err := repo.VerifyInteractions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(18), stats.Total)
	assert.Equal(t, int64(3), stats.High)
	assert.Equal(t, int64(10), stats.Moderate)
	assert.Equal(t, int64(5), stats.Low)

	// The join must count each medication pair once.
	assert.Contains(t, tx.queries[0], "id(m1) < id(m2)")
}

func TestInteractionExamples(t *testing.T) {
	tx := &fakeTransaction{results: []Result{&fakeResult{records: []*neo4j.Record{
		record(
			[]string{"patient", "medication1", "medication2", "drug1", "drug2", "severity", "description"},
			[]any{"p1", "Warfarin 5 MG", "Aspirin 81 MG", "Warfarin", "Acetylsalicylic acid", "HIGH", "Bleeding risk"},
		),
	}}}}
	repo := NewMedicationRepository(newFakeDriver(tx), logging.NewNopLogger())

	rows, err := repo.InteractionExamples(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "p1", rows[0].Patient)
	assert.Equal(t, drug.SeverityHigh, rows[0].Severity)
	assert.Equal(t, int(5), tx.params[0]["limit"])
}
