// Package extract derives a candidate ingredient name from a free-text
// medication description, e.g. "Acetaminophen 325 MG Oral Tablet [Tylenol]"
// → "acetaminophen".
package extract

import (
	"regexp"
	"strings"
)

var (
	// bracketRe matches trade-name annotations such as "[Tylenol]".
	bracketRe = regexp.MustCompile(`\[[^\]]*\]`)

	// leadingPhraseRe captures the alphabetic phrase (letters, spaces,
	// hyphens) preceding the first dosage number or the "/" separating the
	// ingredients of a combination product.
	leadingPhraseRe = regexp.MustCompile(`^([A-Za-z\s\-]+?)(?:\s+\d+|\s+/)`)
)

// DrugName extracts the active-ingredient name from a medication description.
// It is a pure function; an empty description yields an empty string, which
// callers must treat as unmapped rather than silently matching.
//
// The heuristic, in order:
//  1. Remove every bracketed span.
//  2. Capture the leading alphabetic phrase before the first numeric token or
//     a "/" multi-ingredient separator.
//  3. Fall back to the first whitespace-delimited token of the whole
//     description when no dosage marker is present.
//  4. Lower-case and trim the result.
func DrugName(description string) string {
	description = bracketRe.ReplaceAllString(description, "")

	var name string
	if m := leadingPhraseRe.FindStringSubmatch(description); m != nil {
		name = m[1]
	} else if fields := strings.Fields(description); len(fields) > 0 {
		name = fields[0]
	} else {
		name = description
	}

	return strings.ToLower(strings.TrimSpace(name))
}
