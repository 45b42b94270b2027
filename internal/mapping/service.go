package mapping

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medgraph/medgraph/internal/domain/drug"
	"github.com/medgraph/medgraph/internal/extract"
	"github.com/medgraph/medgraph/internal/logging"
	"github.com/medgraph/medgraph/internal/match"
	"github.com/medgraph/medgraph/internal/metrics"
	"github.com/medgraph/medgraph/pkg/errors"
)

// Options tunes one mapping run.
type Options struct {
	// Threshold is the fuzzy-strategy floor.  Must be in (0, 1].
	Threshold float64

	// DeleteExisting drops all current mapping edges before the run, the
	// full-remap mode.  Without it the run upserts over what is there.
	DeleteExisting bool

	// UseSimple selects the two-strategy matcher instead of the full
	// cascade.
	UseSimple bool

	// Overrides bypass matching for specific medication codes.
	Overrides map[string]drug.ManualOverride
}

// Service runs mapping end to end.
type Service struct {
	repo    drug.MedicationRepository
	engine  *match.Engine
	metrics *metrics.Metrics
	log     logging.Logger

	edgeBatchSize int
	now           func() time.Time
}

// NewService constructs a Service.
func NewService(repo drug.MedicationRepository, engine *match.Engine, m *metrics.Metrics, edgeBatchSize int, log logging.Logger) *Service {
	return &Service{
		repo:          repo,
		engine:        engine,
		metrics:       m,
		log:           log.Named("mapping"),
		edgeBatchSize: edgeBatchSize,
		now:           time.Now,
	}
}

// MapAll maps every distinct in-use medication and persists the edges.
//
// Precedence per medication: manual override, then best engine match, then
// unmapped.  Edge persistence failures are logged and the run continues; the
// whole operation is idempotent, so a re-run repairs partial coverage.
func (s *Service) MapAll(ctx context.Context, opts Options) (*drug.MappingResult, error) {
	if opts.Threshold <= 0 || opts.Threshold > 1 {
		return nil, errors.Newf(errors.ErrCodeThresholdInvalid, "threshold %v outside (0, 1]", opts.Threshold)
	}

	result := &drug.MappingResult{
		RunID:    uuid.NewString(),
		Started:  s.now(),
		Buckets:  make(map[drug.ConfidenceBucket]int),
		ByMethod: make(map[drug.MatchMethod]int),
	}
	log := s.log.With(logging.String("run_id", result.RunID))

	if opts.DeleteExisting {
		deleted, err := s.repo.DeleteAllMappings(ctx)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeMappingFailed, "delete existing mappings")
		}
		log.Info("existing mappings deleted", logging.Int64("count", deleted))
	}

	medications, err := s.repo.DistinctInUse(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMappingFailed, "read in-use medications")
	}
	result.Total = len(medications)
	log.Info("mapping medications",
		logging.Int("total", result.Total),
		logging.Float64("threshold", opts.Threshold),
		logging.Bool("simple", opts.UseSimple))

	var pending []drug.MappingEdge
	for _, med := range medications {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeMappingFailed, "mapping cancelled")
		}

		edge, ok, err := s.resolve(med, opts, result, log)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		pending = append(pending, edge)
		if len(pending) >= s.edgeBatchSize {
			s.flush(ctx, pending, result, log)
			pending = pending[:0]
		}
	}
	if len(pending) > 0 {
		s.flush(ctx, pending, result, log)
	}

	result.Completed = s.now()
	s.metrics.RunDuration.Observe(result.Completed.Sub(result.Started).Seconds())
	log.Info("mapping run complete",
		logging.Int("mapped", result.Mapped),
		logging.Int("unmapped", result.UnmappedCount()),
		logging.Int("overrides", result.Overrides),
		logging.Duration("took", result.Completed.Sub(result.Started)))
	return result, nil
}

// resolve maps one medication to an edge, or records it unmapped.
func (s *Service) resolve(med drug.MedicationRecord, opts Options, result *drug.MappingResult, log logging.Logger) (drug.MappingEdge, bool, error) {
	if o, ok := opts.Overrides[med.Code]; ok {
		result.Overrides++
		s.count(result, o.Confidence, drug.MethodManualOverride)
		return drug.MappingEdge{
			Code:          med.Code,
			DrugID:        o.DrugID,
			Confidence:    o.Confidence,
			Method:        drug.MethodManualOverride,
			ExtractedName: extract.DrugName(med.Description),
			Created:       s.now(),
		}, true, nil
	}

	name := extract.DrugName(med.Description)
	matches, err := s.match(name, opts)
	if err != nil {
		return drug.MappingEdge{}, false, err
	}
	if len(matches) == 0 {
		result.Unmapped = append(result.Unmapped, drug.UnmappedMedication{
			Description:   med.Description,
			ExtractedName: name,
		})
		s.metrics.MedicationsUnmapped.Inc()
		log.Debug("no match",
			logging.String("description", med.Description),
			logging.String("extracted", name))
		return drug.MappingEdge{}, false, nil
	}

	best := matches[0]
	s.count(result, best.Confidence, best.Method)
	return drug.MappingEdge{
		Code:          med.Code,
		DrugID:        best.DrugID,
		Confidence:    best.Confidence,
		Method:        best.Method,
		ExtractedName: name,
		Created:       s.now(),
	}, true, nil
}

func (s *Service) match(name string, opts Options) ([]drug.Match, error) {
	if s.engine == nil {
		return nil, errors.New(errors.ErrCodeVocabularyNotLoaded, "matching engine not initialised")
	}
	if opts.UseSimple {
		return s.engine.MatchSimple(name, opts.Threshold)
	}
	return s.engine.Match(name, opts.Threshold)
}

func (s *Service) count(result *drug.MappingResult, confidence float64, method drug.MatchMethod) {
	result.Mapped++
	result.Buckets[drug.BucketFor(confidence)]++
	result.ByMethod[method]++
	s.metrics.MedicationsMapped.WithLabelValues(string(method)).Inc()
}

// flush writes one edge batch.  Failures are logged and counted, never fatal.
func (s *Service) flush(ctx context.Context, edges []drug.MappingEdge, result *drug.MappingResult, log logging.Logger) {
	batch := make([]drug.MappingEdge, len(edges))
	copy(batch, edges)
	if err := s.repo.UpsertMappingEdges(ctx, batch); err != nil {
		s.metrics.EdgeBatches.WithLabelValues("error").Inc()
		log.Warn("edge batch failed, continuing",
			logging.Int("size", len(batch)),
			logging.Err(err))
		return
	}
	s.metrics.EdgeBatches.WithLabelValues("ok").Inc()
}
