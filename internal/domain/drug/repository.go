package drug

import "context"

// InteractionEdge is an interaction triple with its classified severity,
// ready to persist.
type InteractionEdge struct {
	Interaction
	Severity Severity
}

// GraphStats counts the node and relationship populations of the graph.
type GraphStats struct {
	Patients          int64
	Medications       int64
	ReferenceDrugs    int64
	TakesMedication   int64
	MappedTo          int64
	InteractsWith     int64
	MappedMedications int64
}

// MedicationRepository is the persistence surface of the mapping pipeline:
// reading the in-use medication set and writing mapping edges.
type MedicationRepository interface {
	// DistinctInUse returns the distinct medications at least one patient
	// takes, the unit of work for a mapping run.
	DistinctInUse(ctx context.Context) ([]MedicationRecord, error)

	// DeleteAllMappings removes every existing mapping edge and returns the
	// number deleted.
	DeleteAllMappings(ctx context.Context) (int64, error)

	// UpsertMappingEdges merges one batch of mapping edges.
	UpsertMappingEdges(ctx context.Context, edges []MappingEdge) error

	// VerifyInteractions joins co-medicated patients through mapping and
	// interaction edges and buckets the hits by severity.
	VerifyInteractions(ctx context.Context) (InteractionStats, error)

	// InteractionExamples returns up to limit sample rows from the
	// verification join.
	InteractionExamples(ctx context.Context, limit int) ([]InteractionExample, error)
}

// DrugRepository persists the reference vocabulary and its interactions.
type DrugRepository interface {
	// EnsureConstraints creates the uniqueness constraint on the reference
	// drug id.  Idempotent.
	EnsureConstraints(ctx context.Context) error

	// UpsertDrugs merges one batch of reference drugs.
	UpsertDrugs(ctx context.Context, drugs []ReferenceDrug) error

	// UpsertInteractions merges one batch of interaction edges.  Edges are
	// undirected: one relationship per drug pair regardless of direction.
	UpsertInteractions(ctx context.Context, edges []InteractionEdge) error

	// Stats counts the graph populations.
	Stats(ctx context.Context) (GraphStats, error)
}
