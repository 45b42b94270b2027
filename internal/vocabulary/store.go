// Package vocabulary loads the drug reference vocabulary CSV and holds it as
// an in-memory, read-only table for the duration of a mapping run.
package vocabulary

import (
	"strings"

	"github.com/medgraph/medgraph/internal/domain/drug"
)

// Entry is one vocabulary row with its case-folded forms precomputed once at
// load time.  The matching engine compares candidates against tens of
// thousands of entries per medication; folding here keeps that scan free of
// repeated ToLower allocations.
type Entry struct {
	Drug          drug.ReferenceDrug
	NameLower     string
	SynonymsLower []string
}

// Store is the immutable reference vocabulary.  Once built it is safe for
// concurrent read access by multiple matching workers; it is never mutated
// during a run.
type Store struct {
	entries []Entry
	byID    map[string]int
}

// newStore builds the Store and its id index from loaded entries.  Duplicate
// ids keep the first occurrence; the vocabulary source guarantees uniqueness,
// so a duplicate indicates a malformed export and the later row is dropped.
func newStore(entries []Entry) *Store {
	byID := make(map[string]int, len(entries))
	kept := entries[:0]
	for _, e := range entries {
		if _, dup := byID[e.Drug.ID]; dup {
			continue
		}
		byID[e.Drug.ID] = len(kept)
		kept = append(kept, e)
	}
	return &Store{entries: kept, byID: byID}
}

// Len returns the number of reference drugs loaded.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Entries exposes the full vocabulary for scanning.  Callers must not modify
// the returned slice.
func (s *Store) Entries() []Entry {
	return s.entries
}

// ByID returns the reference drug with the given identifier.
func (s *Store) ByID(id string) (drug.ReferenceDrug, bool) {
	i, ok := s.byID[id]
	if !ok {
		return drug.ReferenceDrug{}, false
	}
	return s.entries[i].Drug, true
}

// Stats summarises identifier coverage of the loaded vocabulary.
type Stats struct {
	TotalDrugs   int
	WithCAS      int
	WithUNII     int
	WithSynonyms int
	WithInChIKey int
}

// Stats computes coverage counters over the loaded vocabulary.
func (s *Store) Stats() Stats {
	st := Stats{TotalDrugs: len(s.entries)}
	for _, e := range s.entries {
		if e.Drug.CAS != "" {
			st.WithCAS++
		}
		if e.Drug.UNII != "" {
			st.WithUNII++
		}
		if len(e.Drug.Synonyms) > 0 {
			st.WithSynonyms++
		}
		if e.Drug.InChIKey != "" {
			st.WithInChIKey++
		}
	}
	return st
}

// splitSynonyms splits a pipe-delimited synonym list, trimming whitespace and
// dropping empty segments.
func splitSynonyms(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// newEntry builds an Entry with its folded forms from a reference drug.
func newEntry(d drug.ReferenceDrug) Entry {
	folded := make([]string, len(d.Synonyms))
	for i, syn := range d.Synonyms {
		folded[i] = strings.ToLower(syn)
	}
	return Entry{
		Drug:          d,
		NameLower:     strings.ToLower(d.Name),
		SynonymsLower: folded,
	}
}
