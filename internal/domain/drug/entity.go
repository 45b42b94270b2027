// Package drug defines the typed records that flow through the mapping
// pipeline: reference vocabulary entries, observed medications, manual
// overrides, persisted mapping edges and run summaries.
package drug

import (
	"strings"
	"time"
)

// ReferenceDrug is one entry of the external drug vocabulary: a stable
// identifier, a canonical name and its synonym list, plus structured
// identifiers carried through unmodified.  Instances are immutable for the
// duration of a mapping run.
type ReferenceDrug struct {
	ID       string
	Name     string
	Synonyms []string
	CAS      string
	UNII     string
	InChIKey string
}

// HasSynonym reports whether name equals one of the drug's synonyms,
// case-insensitively.
func (d *ReferenceDrug) HasSynonym(name string) bool {
	for _, s := range d.Synonyms {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}

// MedicationRecord is a distinct (code, description) pair observed in patient
// data.  Mapping operates on the distinct set, not per-patient occurrences.
type MedicationRecord struct {
	Code        string
	Description string
}

// ManualOverride is an operator-supplied mapping that bypasses automatic
// matching for a specific medication code.
type ManualOverride struct {
	Code       string
	DrugID     string
	Confidence float64
	Reason     string
}

// MatchMethod tags the strategy that produced a match, recorded for
// auditability and reporting.
type MatchMethod string

const (
	MethodExact          MatchMethod = "exact_match"
	MethodSynonymExact   MatchMethod = "synonym_exact"
	MethodStemming       MatchMethod = "stemming"
	MethodLevenshtein    MatchMethod = "levenshtein"
	MethodFuzzy          MatchMethod = "fuzzy_match"
	MethodFuzzySynonym   MatchMethod = "fuzzy_synonym"
	MethodCSVLookup      MatchMethod = "csv_lookup"
	MethodManualOverride MatchMethod = "manual_override"
)

// Match is one ranked result of the matching engine.
type Match struct {
	DrugID     string
	Confidence float64
	Method     MatchMethod
}

// MappingEdge is the persisted association between an in-use medication and a
// reference drug.  At most one active edge exists per medication code; edges
// are replaced by delete-then-insert, never mutated in place.
type MappingEdge struct {
	Code          string
	DrugID        string
	Confidence    float64
	Method        MatchMethod
	ExtractedName string
	Created       time.Time
}

// Severity classifies an interaction description.
type Severity string

const (
	SeverityHigh     Severity = "HIGH"
	SeverityModerate Severity = "MODERATE"
	SeverityLow      Severity = "LOW"
)

// Interaction is one (source, target, description) triple produced by the
// interaction stream.
type Interaction struct {
	SourceID    string
	TargetID    string
	Description string
}

// ConfidenceBucket groups mapped confidences for reporting.
type ConfidenceBucket string

const (
	BucketHigh   ConfidenceBucket = "high"      // ≥ 0.95
	BucketMedium ConfidenceBucket = "medium"    // 0.85 – 0.95
	BucketLow    ConfidenceBucket = "low"       // 0.75 – 0.85
	BucketBelow  ConfidenceBucket = "below_low" // threshold – 0.75
)

// BucketFor places a confidence score in its reporting bucket.  Scores under
// 0.75 land in BucketBelow rather than being dropped, so runs with a
// threshold below 0.75 keep full statistics coverage.
func BucketFor(confidence float64) ConfidenceBucket {
	switch {
	case confidence >= 0.95:
		return BucketHigh
	case confidence >= 0.85:
		return BucketMedium
	case confidence >= 0.75:
		return BucketLow
	default:
		return BucketBelow
	}
}

// UnmappedMedication records a medication no strategy could resolve above
// threshold, together with the candidate name the extractor produced.
type UnmappedMedication struct {
	Description   string
	ExtractedName string
}

// MappingResult summarises one mapping run.  It is ephemeral — produced once
// per run and never persisted.
type MappingResult struct {
	RunID     string
	Started   time.Time
	Completed time.Time

	Total     int
	Mapped    int
	Overrides int

	Buckets  map[ConfidenceBucket]int
	ByMethod map[MatchMethod]int

	Unmapped []UnmappedMedication
}

// UnmappedCount returns the number of medications left without an edge.
func (r *MappingResult) UnmappedCount() int {
	return len(r.Unmapped)
}

// InteractionStats buckets the verification join by severity.
type InteractionStats struct {
	Total    int64
	High     int64
	Moderate int64
	Low      int64
}

// InteractionExample is one row of the verification sample query: two
// medications of the same patient joined through their mapped reference
// drugs and an interaction edge.
type InteractionExample struct {
	Patient     string
	Medication1 string
	Medication2 string
	Drug1       string
	Drug2       string
	Severity    Severity
	Description string
}
