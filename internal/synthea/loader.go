package synthea

import (
	"context"
	"os"
	"path/filepath"

	"github.com/medgraph/medgraph/internal/logging"
)

// LoadSummary counts what one ingestion run persisted per file.
type LoadSummary struct {
	Patients    int
	Encounters  int
	Conditions  int
	Procedures  int
	Medications int

	// FailedBatches counts batches that could not be persisted.  Failures
	// skip the batch and the run continues; a re-run repairs coverage since
	// every upsert is idempotent.
	FailedBatches int
}

// Loader drives one ingestion run: read each export file, batch it and push
// the batches through the repository.  Files absent from the import directory
// are skipped, so partial exports load cleanly.
type Loader struct {
	reader *Reader
	repo   Repository
	log    logging.Logger

	batchSize int
}

// NewLoader constructs a Loader.
func NewLoader(repo Repository, batchSize int, log logging.Logger) *Loader {
	return &Loader{
		reader:    NewReader(log),
		repo:      repo,
		log:       log.Named("synthea"),
		batchSize: batchSize,
	}
}

// Load ingests every recognised export file under dir.  The files load in
// dependency order: patients before encounters, encounters before the
// record types that reference them.
func (l *Loader) Load(ctx context.Context, dir string) (LoadSummary, error) {
	var sum LoadSummary

	if err := l.loadFile(ctx, dir, "patients.csv", func(ctx context.Context, path string) (int, error) {
		rows, err := l.reader.Patients(path)
		if err != nil {
			return 0, err
		}
		sum.Patients = len(rows)
		return inBatches(ctx, rows, l.batchSize, l.repo.UpsertPatients, l.failed(&sum, "patients"))
	}); err != nil {
		return sum, err
	}

	if err := l.loadFile(ctx, dir, "encounters.csv", func(ctx context.Context, path string) (int, error) {
		rows, err := l.reader.Encounters(path)
		if err != nil {
			return 0, err
		}
		sum.Encounters = len(rows)
		return inBatches(ctx, rows, l.batchSize, l.repo.UpsertEncounters, l.failed(&sum, "encounters"))
	}); err != nil {
		return sum, err
	}

	if err := l.loadFile(ctx, dir, "conditions.csv", func(ctx context.Context, path string) (int, error) {
		rows, err := l.reader.Conditions(path)
		if err != nil {
			return 0, err
		}
		sum.Conditions = len(rows)
		return inBatches(ctx, rows, l.batchSize, l.repo.UpsertConditions, l.failed(&sum, "conditions"))
	}); err != nil {
		return sum, err
	}

	if err := l.loadFile(ctx, dir, "procedures.csv", func(ctx context.Context, path string) (int, error) {
		rows, err := l.reader.Procedures(path)
		if err != nil {
			return 0, err
		}
		sum.Procedures = len(rows)
		return inBatches(ctx, rows, l.batchSize, l.repo.UpsertProcedures, l.failed(&sum, "procedures"))
	}); err != nil {
		return sum, err
	}

	if err := l.loadFile(ctx, dir, "medications.csv", func(ctx context.Context, path string) (int, error) {
		rows, err := l.reader.Medications(path)
		if err != nil {
			return 0, err
		}
		sum.Medications = len(rows)
		return inBatches(ctx, rows, l.batchSize, l.repo.UpsertMedications, l.failed(&sum, "medications"))
	}); err != nil {
		return sum, err
	}

	l.log.Info("ingestion complete",
		logging.Int("patients", sum.Patients),
		logging.Int("encounters", sum.Encounters),
		logging.Int("conditions", sum.Conditions),
		logging.Int("procedures", sum.Procedures),
		logging.Int("medications", sum.Medications),
		logging.Int("failed_batches", sum.FailedBatches))
	return sum, nil
}

// loadFile runs load for name under dir when the file exists.
func (l *Loader) loadFile(ctx context.Context, dir, name string, load func(context.Context, string) (int, error)) error {
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		l.log.Info("export file absent, skipping", logging.String("file", name))
		return nil
	}
	l.log.Info("loading", logging.String("file", name))
	n, err := load(ctx, path)
	if err != nil {
		return err
	}
	l.log.Info("loaded", logging.String("file", name), logging.Int("rows", n))
	return nil
}

// failed returns the batch-failure hook: log and count, keep going.
func (l *Loader) failed(sum *LoadSummary, what string) func(error) {
	return func(err error) {
		sum.FailedBatches++
		l.log.Warn("batch failed, continuing",
			logging.String("file", what),
			logging.Err(err))
	}
}

// inBatches pushes rows through upsert in batchSize slices.  A failing batch
// invokes onErr and the loop continues; only context cancellation aborts.
func inBatches[T any](ctx context.Context, rows []T, batchSize int, upsert func(context.Context, []T) error, onErr func(error)) (int, error) {
	if batchSize < 1 {
		batchSize = 1
	}
	for start := 0; start < len(rows); start += batchSize {
		if err := ctx.Err(); err != nil {
			return start, err
		}
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := upsert(ctx, rows[start:end]); err != nil {
			onErr(err)
		}
	}
	return len(rows), nil
}
