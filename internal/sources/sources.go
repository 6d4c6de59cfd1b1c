// Package sources defines the provider adapter contract and the shared
// infrastructure adapters use: a rate-limited fetcher, a result cache, and a registry.
package sources

import (
	"context"
	"errors"
	"strings"

	"leadgen_backend/internal/leads/domain"
)

// ErrNotConfigured is returned when an adapter has neither a credential for its
// primary strategy nor a usable fallback.
var ErrNotConfigured = errors.New("source not configured")

// Query is one provider search request.
type Query struct {
	Niche    string
	Location string
	Country  string
}

// Normalized returns the query with whitespace trimmed.
func (q Query) Normalized() Query {
	return Query{
		Niche:    strings.TrimSpace(q.Niche),
		Location: strings.TrimSpace(q.Location),
		Country:  strings.TrimSpace(q.Country),
	}
}

// Adapter searches one external provider.
// Malformed provider records are skipped, never fatal. An empty result is a success.
type Adapter interface {
	Name() domain.SourceID
	Search(ctx context.Context, q Query) ([]domain.LeadCandidate, error)
}
