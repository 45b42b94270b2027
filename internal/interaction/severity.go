// Package interaction streams drug-drug interaction triples out of the
// reference XML export and classifies their clinical severity from the
// interaction description text.
package interaction

import (
	"strings"

	"github.com/medgraph/medgraph/internal/domain/drug"
)

// Keyword lists checked in priority order: any high keyword wins over any
// moderate keyword, and descriptions matching neither default to low.
var (
	highKeywords = []string{
		"contraindicated", "avoid", "life-threatening", "severe",
		"dangerous", "fatal", "death", "emergency", "should not",
		"do not", "never", "serious", "critical",
	}

	moderateKeywords = []string{
		"increase", "decrease", "risk", "toxicity", "may cause",
		"monitor", "caution", "adverse", "affect", "may",
		"potential", "recommended", "consider", "adjustment", "dose",
	}
)

// ClassifySeverity maps a free-text interaction description to a severity
// level by case-insensitive keyword search.
func ClassifySeverity(description string) drug.Severity {
	text := strings.ToLower(description)

	for _, kw := range highKeywords {
		if strings.Contains(text, kw) {
			return drug.SeverityHigh
		}
	}
	for _, kw := range moderateKeywords {
		if strings.Contains(text, kw) {
			return drug.SeverityModerate
		}
	}
	return drug.SeverityLow
}
