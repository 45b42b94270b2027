package mapping

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/medgraph/medgraph/internal/domain/drug"
	"github.com/medgraph/medgraph/internal/logging"
	"github.com/medgraph/medgraph/internal/match"
	"github.com/medgraph/medgraph/internal/metrics"
	"github.com/medgraph/medgraph/internal/vocabulary"
	"github.com/medgraph/medgraph/pkg/errors"
)

type mockMedicationRepo struct {
	mock.Mock
}

func (m *mockMedicationRepo) DistinctInUse(ctx context.Context) ([]drug.MedicationRecord, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]drug.MedicationRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMedicationRepo) DeleteAllMappings(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockMedicationRepo) UpsertMappingEdges(ctx context.Context, edges []drug.MappingEdge) error {
	return m.Called(ctx, edges).Error(0)
}

func (m *mockMedicationRepo) VerifyInteractions(ctx context.Context) (drug.InteractionStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(drug.InteractionStats), args.Error(1)
}

func (m *mockMedicationRepo) InteractionExamples(ctx context.Context, limit int) ([]drug.InteractionExample, error) {
	args := m.Called(ctx, limit)
	if v := args.Get(0); v != nil {
		return v.([]drug.InteractionExample), args.Error(1)
	}
	return nil, args.Error(1)
}

const mappingVocabCSV = `DrugBank ID,Common name,CAS,UNII,Synonyms,Standard InChI Key
DB00316,Acetaminophen,103-90-2,362O9ITL9D,Paracetamol | APAP,
DB01050,Ibuprofen,15687-27-1,WK2XYI10QM,,
DB00722,Lisinopril,76547-98-3,E7199S1YWR,,
`

func newService(t *testing.T, repo drug.MedicationRepository) *Service {
	t.Helper()
	store, err := vocabulary.NewLoader(logging.NewNopLogger()).Load(strings.NewReader(mappingVocabCSV))
	require.NoError(t, err)
	engine := match.NewEngine(store, logging.NewNopLogger())
	return NewService(repo, engine, metrics.New(), 2, logging.NewNopLogger())
}

func medications() []drug.MedicationRecord {
	return []drug.MedicationRecord{
		{Code: "857005", Description: "Acetaminophen 325 MG Oral Tablet"},
		{Code: "106892", Description: "Ibuprofen 200 MG Oral Tablet"},
		{Code: "999999", Description: "Completely Unknown Substance 10 MG"},
	}
}

func TestMapAll(t *testing.T) {
	repo := &mockMedicationRepo{}
	repo.On("DistinctInUse", mock.Anything).Return(medications(), nil)
	repo.On("UpsertMappingEdges", mock.Anything, mock.Anything).Return(nil)

	result, err := newService(t, repo).MapAll(context.Background(), Options{Threshold: 0.75})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Mapped)
	require.Len(t, result.Unmapped, 1)
	assert.Equal(t, "Completely Unknown Substance 10 MG", result.Unmapped[0].Description)
	assert.Equal(t, "completely unknown substance", result.Unmapped[0].ExtractedName)

	assert.Equal(t, 2, result.Buckets[drug.BucketHigh])
	assert.Equal(t, 2, result.ByMethod[drug.MethodExact])
	assert.NotEmpty(t, result.RunID)
	assert.False(t, result.Completed.Before(result.Started))

	// Delete was not requested.
	repo.AssertNotCalled(t, "DeleteAllMappings")
}

func TestMapAllDeleteExisting(t *testing.T) {
	repo := &mockMedicationRepo{}
	repo.On("DeleteAllMappings", mock.Anything).Return(int64(42), nil)
	repo.On("DistinctInUse", mock.Anything).Return([]drug.MedicationRecord{}, nil)

	result, err := newService(t, repo).MapAll(context.Background(),
		Options{Threshold: 0.75, DeleteExisting: true})
	require.NoError(t, err)
	assert.Zero(t, result.Total)
	repo.AssertCalled(t, "DeleteAllMappings", mock.Anything)
}

func TestMapAllIdempotent(t *testing.T) {
	type tuple struct {
		code       string
		drugID     string
		confidence float64
		method     drug.MatchMethod
	}

	run := func() map[tuple]struct{} {
		repo := &mockMedicationRepo{}
		repo.On("DeleteAllMappings", mock.Anything).Return(int64(0), nil)
		repo.On("DistinctInUse", mock.Anything).Return(medications(), nil)

		persisted := make(map[tuple]struct{})
		repo.On("UpsertMappingEdges", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				for _, e := range args.Get(1).([]drug.MappingEdge) {
					persisted[tuple{e.Code, e.DrugID, e.Confidence, e.Method}] = struct{}{}
				}
			}).Return(nil)

		_, err := newService(t, repo).MapAll(context.Background(),
			Options{Threshold: 0.75, DeleteExisting: true})
		require.NoError(t, err)
		return persisted
	}

	first := run()
	second := run()

	// A full remap over identical inputs persists the identical edge set.
	assert.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestMapAllOverridePrecedence(t *testing.T) {
	repo := &mockMedicationRepo{}
	repo.On("DistinctInUse", mock.Anything).Return(medications(), nil)

	var persisted []drug.MappingEdge
	repo.On("UpsertMappingEdges", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			persisted = append(persisted, args.Get(1).([]drug.MappingEdge)...)
		}).Return(nil)

	overrides := map[string]drug.ManualOverride{
		// The engine would match acetaminophen; the override must win.
		"857005": {Code: "857005", DrugID: "DB00722", Confidence: 0.9, Reason: "curated"},
	}
	result, err := newService(t, repo).MapAll(context.Background(),
		Options{Threshold: 0.75, Overrides: overrides})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Overrides)
	assert.Equal(t, 1, result.ByMethod[drug.MethodManualOverride])

	var edge drug.MappingEdge
	for _, e := range persisted {
		if e.Code == "857005" {
			edge = e
		}
	}
	assert.Equal(t, "DB00722", edge.DrugID)
	assert.Equal(t, 0.9, edge.Confidence)
	assert.Equal(t, drug.MethodManualOverride, edge.Method)
	assert.Equal(t, "acetaminophen", edge.ExtractedName)
}

func TestMapAllBatchFailureContinues(t *testing.T) {
	repo := &mockMedicationRepo{}
	repo.On("DistinctInUse", mock.Anything).Return([]drug.MedicationRecord{
		{Code: "1", Description: "Acetaminophen 325 MG Oral Tablet"},
		{Code: "2", Description: "Ibuprofen 200 MG Oral Tablet"},
		{Code: "3", Description: "Lisinopril 10 MG Oral Tablet"},
	}, nil)

	boom := errors.New(errors.ErrCodeGraphWrite, "neo4j write failed")
	repo.On("UpsertMappingEdges", mock.Anything, mock.Anything).Return(boom).Once()
	repo.On("UpsertMappingEdges", mock.Anything, mock.Anything).Return(nil)

	result, err := newService(t, repo).MapAll(context.Background(), Options{Threshold: 0.75})
	require.NoError(t, err)

	// Matching statistics are unaffected by the persistence failure.
	assert.Equal(t, 3, result.Mapped)
	// Edge batch size two: one failed batch of two, one good batch of one.
	repo.AssertNumberOfCalls(t, "UpsertMappingEdges", 2)
}

func TestMapAllEdgeBatching(t *testing.T) {
	repo := &mockMedicationRepo{}
	repo.On("DistinctInUse", mock.Anything).Return([]drug.MedicationRecord{
		{Code: "1", Description: "Acetaminophen 325 MG Oral Tablet"},
		{Code: "2", Description: "Ibuprofen 200 MG Oral Tablet"},
		{Code: "3", Description: "Lisinopril 10 MG Oral Tablet"},
	}, nil)

	var sizes []int
	repo.On("UpsertMappingEdges", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			sizes = append(sizes, len(args.Get(1).([]drug.MappingEdge)))
		}).Return(nil)

	_, err := newService(t, repo).MapAll(context.Background(), Options{Threshold: 0.75})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, sizes)
}

func TestMapAllInvalidThreshold(t *testing.T) {
	repo := &mockMedicationRepo{}
	svc := newService(t, repo)

	for _, threshold := range []float64{0, -0.1, 1.5} {
		_, err := svc.MapAll(context.Background(), Options{Threshold: threshold})
		require.Error(t, err, "threshold %v", threshold)
		assert.True(t, errors.HasCode(err, errors.ErrCodeThresholdInvalid))
	}
}

func TestMapAllSimpleMode(t *testing.T) {
	repo := &mockMedicationRepo{}
	repo.On("DistinctInUse", mock.Anything).Return([]drug.MedicationRecord{
		{Code: "857005", Description: "Acetaminophen 325 MG Oral Tablet"},
	}, nil)

	var persisted []drug.MappingEdge
	repo.On("UpsertMappingEdges", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			persisted = append(persisted, args.Get(1).([]drug.MappingEdge)...)
		}).Return(nil)

	result, err := newService(t, repo).MapAll(context.Background(),
		Options{Threshold: 0.85, UseSimple: true})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Mapped)
	require.Len(t, persisted, 1)
	assert.Equal(t, drug.MethodCSVLookup, persisted[0].Method)
}

func TestMapAllRepoError(t *testing.T) {
	repo := &mockMedicationRepo{}
	repo.On("DistinctInUse", mock.Anything).
		Return(nil, errors.New(errors.ErrCodeGraphQuery, "neo4j read failed"))

	_, err := newService(t, repo).MapAll(context.Background(), Options{Threshold: 0.75})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeMappingFailed))
}
