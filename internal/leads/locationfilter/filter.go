// Package locationfilter narrows provider results to the requested location.
package locationfilter

import (
	"strings"

	"leadgen_backend/internal/leads/domain"
)

// Filter keeps candidates whose address or city contains location (case-insensitive substring).
// If nothing matches, the unfiltered input is returned: providers often format
// locations differently and a loose result beats an empty one.
// No abbreviation, borough or spelling normalization is applied.
func Filter(candidates []domain.LeadCandidate, location string) []domain.LeadCandidate {
	needle := strings.ToLower(strings.TrimSpace(location))
	if needle == "" || len(candidates) == 0 {
		return candidates
	}

	kept := make([]domain.LeadCandidate, 0, len(candidates))
	for _, c := range candidates {
		if strings.Contains(strings.ToLower(c.Address), needle) || strings.Contains(strings.ToLower(c.City), needle) {
			kept = append(kept, c)
		}
	}

	if len(kept) == 0 {
		return candidates
	}
	return kept
}
