// Package dedupe collapses candidates that share a business name.
package dedupe

import (
	"strings"

	"leadgen_backend/internal/leads/domain"
)

// Key returns the normalized identity used to detect duplicates.
func Key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Dedupe keeps the first candidate for each normalized business name, in arrival order.
// Candidates with an empty or whitespace-only name are dropped.
// Matching is name-only: two listings for the same business under slightly
// different names both survive.
func Dedupe(candidates []domain.LeadCandidate) []domain.LeadCandidate {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]domain.LeadCandidate, 0, len(candidates))

	for _, c := range candidates {
		key := Key(c.BusinessName)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}

	return out
}
