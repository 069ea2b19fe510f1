// Package fuzzy provides fuzzy matching functionality for catalog search
package fuzzy

import (
	"strings"
)

// Matcher provides fuzzy matching functionality
type Matcher struct{}

// NewMatcher creates a new fuzzy matcher
func NewMatcher() *Matcher {
	return &Matcher{}
}

// Score calculates the fuzzy match score of a query against a candidate
// string. Returns 0 when no query word appears in the candidate; higher
// scores mean better matches.
func (m *Matcher) Score(query, candidate string) float64 {
	query = strings.ToLower(strings.TrimSpace(query))
	candidate = strings.ToLower(candidate)

	if query == "" {
		return 0.0
	}

	candidateWords := splitWords(candidate)
	queryWords := splitWords(query)

	// Count query words matched exactly, with prefix matches at half weight
	var matched float64
	for _, qWord := range queryWords {
		best := 0.0
		for _, cWord := range candidateWords {
			switch {
			case qWord == cWord:
				best = 1.0
			case best < 0.5 && strings.HasPrefix(cWord, qWord):
				best = 0.5
			}
			if best == 1.0 {
				break
			}
		}
		matched += best
	}

	if matched > 0 && len(queryWords) > 0 {
		return matched / float64(len(queryWords))
	}

	// Fallback to simple containment score
	if strings.Contains(candidate, query) {
		return float64(len(query)) / float64(len(candidate))
	}

	return 0.0
}

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == ' '
	})
}
