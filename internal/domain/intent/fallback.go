package intent

import (
	"strings"

	"github.com/okian/woke/internal/domain/model"
)

// KeywordCandidates matches each category's keywords as case-insensitive
// substrings of text, in catalog order. With no hits the first three
// categories are proposed. Every candidate gets confidence 0.5 and the reason
// prefix followed by the category label.
func KeywordCandidates(services []model.ServiceCategory, text, reasonPrefix string) []model.Candidate {
	lower := strings.ToLower(text)

	hits := make([]model.ServiceCategory, 0, len(services))
	for _, s := range services {
		if matchesAny(lower, s.Keywords) {
			hits = append(hits, s)
		}
	}
	if len(hits) == 0 {
		n := min(defaultFallbackCount, len(services))
		hits = services[:n]
	}

	out := make([]model.Candidate, len(hits))
	for i, s := range hits {
		out[i] = model.Candidate{
			ServiceID:  s.ID,
			Label:      s.Label,
			Reason:     reasonPrefix + s.Label,
			Confidence: defaultConfidence,
		}
	}
	return out
}

func matchesAny(lower string, keywords []string) bool {
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" && strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
