package match

import (
	"sort"
	"strings"

	"github.com/medgraph/medgraph/internal/domain/drug"
	"github.com/medgraph/medgraph/internal/logging"
	"github.com/medgraph/medgraph/internal/vocabulary"
	"github.com/medgraph/medgraph/pkg/errors"
)

// Confidence levels of the threshold-independent strategies.
const (
	confidenceExact    = 1.00
	confidenceSynonym  = 0.99
	confidenceStemming = 0.95

	// levenshteinGate is the fixed similarity floor of the edit-distance
	// strategy, independent of the caller's fuzzy threshold.
	levenshteinGate = 0.85

	// minStemLength guards the stemming strategy against matching on
	// degenerate stripped forms.
	minStemLength = 3
)

// Engine ranks candidate names against the reference vocabulary.  The store
// is read-only and the engine carries no per-call state, so one Engine is
// safe for concurrent use by multiple matching workers.
type Engine struct {
	store *vocabulary.Store
	log   logging.Logger
}

// NewEngine constructs an Engine over a loaded vocabulary store.
func NewEngine(store *vocabulary.Store, log logging.Logger) *Engine {
	return &Engine{store: store, log: log.Named("match")}
}

// Match runs the full strategy cascade for candidate against every
// vocabulary entry and returns matches ordered by confidence, highest first,
// each reference id appearing at most once.
//
// Per entry the cascade stops at the first strategy that fires:
//
//	exact_match (1.00) → synonym_exact (0.99) → stemming (0.95) →
//	levenshtein (similarity ≥ 0.85) → fuzzy_match (ratio ≥ threshold) →
//	fuzzy_synonym (ratio ≥ threshold)
//
// Exact and synonym matches are threshold-independent; only the fuzzy
// strategies consult threshold.  An empty candidate returns an empty result
// for any threshold.
func (e *Engine) Match(candidate string, threshold float64) ([]drug.Match, error) {
	if err := e.checkLoaded(); err != nil {
		return nil, err
	}

	name := strings.ToLower(strings.TrimSpace(candidate))
	if name == "" {
		return nil, nil
	}
	nameStem := stem(name)

	entries := e.store.Entries()
	var matches []drug.Match
	for i := range entries {
		entry := &entries[i]

		if name == entry.NameLower {
			matches = append(matches, drug.Match{DrugID: entry.Drug.ID, Confidence: confidenceExact, Method: drug.MethodExact})
			continue
		}

		if containsFold(entry.SynonymsLower, name) {
			matches = append(matches, drug.Match{DrugID: entry.Drug.ID, Confidence: confidenceSynonym, Method: drug.MethodSynonymExact})
			continue
		}

		if len(nameStem) > minStemLength && nameStem == stem(entry.NameLower) {
			matches = append(matches, drug.Match{DrugID: entry.Drug.ID, Confidence: confidenceStemming, Method: drug.MethodStemming})
			continue
		}

		if sim := levenshteinSimilarity(name, entry.NameLower); sim >= levenshteinGate {
			matches = append(matches, drug.Match{DrugID: entry.Drug.ID, Confidence: sim, Method: drug.MethodLevenshtein})
			continue
		}

		if ratio := fuzzyRatio(name, entry.NameLower); ratio >= threshold {
			matches = append(matches, drug.Match{DrugID: entry.Drug.ID, Confidence: ratio, Method: drug.MethodFuzzy})
			continue
		}

		for _, syn := range entry.SynonymsLower {
			if ratio := fuzzyRatio(name, syn); ratio >= threshold {
				matches = append(matches, drug.Match{DrugID: entry.Drug.ID, Confidence: ratio, Method: drug.MethodFuzzySynonym})
				break
			}
		}
	}

	return rank(matches), nil
}

// MatchSimple is the two-strategy variant for callers that do not need the
// full cascade: exact / synonym-exact lookup followed by a single fuzzy pass
// across canonical name and synonyms.  Every match reports the fixed method
// label csv_lookup.
func (e *Engine) MatchSimple(candidate string, threshold float64) ([]drug.Match, error) {
	if err := e.checkLoaded(); err != nil {
		return nil, err
	}

	name := strings.ToLower(strings.TrimSpace(candidate))
	if name == "" {
		return nil, nil
	}

	entries := e.store.Entries()
	var matches []drug.Match
	for i := range entries {
		entry := &entries[i]

		if name == entry.NameLower {
			matches = append(matches, drug.Match{DrugID: entry.Drug.ID, Confidence: confidenceExact, Method: drug.MethodCSVLookup})
			continue
		}

		if containsFold(entry.SynonymsLower, name) {
			matches = append(matches, drug.Match{DrugID: entry.Drug.ID, Confidence: confidenceSynonym, Method: drug.MethodCSVLookup})
			continue
		}

		if ratio := fuzzyRatio(name, entry.NameLower); ratio >= threshold {
			matches = append(matches, drug.Match{DrugID: entry.Drug.ID, Confidence: ratio, Method: drug.MethodCSVLookup})
			continue
		}

		for _, syn := range entry.SynonymsLower {
			if ratio := fuzzyRatio(name, syn); ratio >= threshold {
				matches = append(matches, drug.Match{DrugID: entry.Drug.ID, Confidence: ratio, Method: drug.MethodCSVLookup})
				break
			}
		}
	}

	return rank(matches), nil
}

// checkLoaded enforces the precondition that the vocabulary is loaded before
// first use; matching against an empty store is a caller bug, never a silent
// no-match.
func (e *Engine) checkLoaded() error {
	if e.store == nil || e.store.Len() == 0 {
		return errors.New(errors.ErrCodeVocabularyNotLoaded, "vocabulary must be loaded before matching")
	}
	return nil
}

// rank sorts matches descending by confidence (stable, so vocabulary order
// breaks ties deterministically) and deduplicates reference ids keeping each
// id's highest-confidence appearance.  Ids are unique in the vocabulary, so
// duplicates are not expected; the dedupe is a defensive invariant.
func rank(matches []drug.Match) []drug.Match {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})

	seen := make(map[string]struct{}, len(matches))
	out := matches[:0]
	for _, m := range matches {
		if _, dup := seen[m.DrugID]; dup {
			continue
		}
		seen[m.DrugID] = struct{}{}
		out = append(out, m)
	}
	return out
}

// containsFold reports whether list contains s.  List elements are already
// lower-cased at vocabulary load.
func containsFold(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
