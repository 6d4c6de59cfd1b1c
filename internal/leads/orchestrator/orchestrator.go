// Package orchestrator fans a lead search out to source adapters and merges
// what comes back into one deduplicated, location-filtered candidate list.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"leadgen_backend/internal/leads/dedupe"
	"leadgen_backend/internal/leads/domain"
	"leadgen_backend/internal/leads/locationfilter"
	"leadgen_backend/internal/sources"
	"leadgen_backend/platform/apperr"
	"leadgen_backend/platform/logger"

	"golang.org/x/sync/errgroup"
)

// Request is one search. Source is a SourceID or domain.SourceAll; empty means all.
type Request struct {
	Niche    string
	Location string
	Country  string
	Source   string
}

// Result is the merged outcome of a search.
// Errors holds one message per failed adapter in all-sources mode.
type Result struct {
	Leads           []domain.LeadCandidate
	PerSourceCounts map[string]int
	Errors          []string
}

// Orchestrator runs searches against a registry of adapters.
type Orchestrator struct {
	registry       *sources.Registry
	defaultCountry string
	log            *logger.Logger
}

// New creates an orchestrator.
func New(registry *sources.Registry, defaultCountry string, log *logger.Logger) *Orchestrator {
	if log == nil {
		log = logger.Discard()
	}
	return &Orchestrator{registry: registry, defaultCountry: defaultCountry, log: log}
}

type outcome struct {
	source domain.SourceID
	leads  []domain.LeadCandidate
	err    error
}

// Search runs the request. A single named source fails fast; all-sources mode
// records each adapter failure in Result.Errors and keeps the rest.
func (o *Orchestrator) Search(ctx context.Context, req Request) (*Result, error) {
	q := sources.Query{Niche: req.Niche, Location: req.Location, Country: req.Country}.Normalized()
	if q.Niche == "" || q.Location == "" {
		return nil, apperr.Validation("niche and location are required")
	}
	if q.Country == "" {
		q.Country = o.defaultCountry
	}

	source := strings.ToLower(strings.TrimSpace(req.Source))
	if source == "" || source == domain.SourceAll {
		return o.searchAll(ctx, q, req.Location)
	}

	adapter, ok := o.registry.Get(domain.SourceID(source))
	if !ok {
		return nil, apperr.Validation(fmt.Sprintf("unknown source %q", req.Source))
	}
	return o.searchOne(ctx, adapter, q, req.Location)
}

func (o *Orchestrator) searchOne(ctx context.Context, adapter sources.Adapter, q sources.Query, location string) (*Result, error) {
	leads, err := adapter.Search(ctx, q)
	if err != nil {
		if errors.Is(err, sources.ErrNotConfigured) {
			return nil, apperr.Wrap(apperr.KindBadRequest, fmt.Sprintf("source %s is not configured", adapter.Name()), err)
		}
		return nil, apperr.Wrap(apperr.KindUnavailable, fmt.Sprintf("source %s failed", adapter.Name()), err)
	}

	return &Result{
		Leads:           finalize(leads, location),
		PerSourceCounts: map[string]int{string(adapter.Name()): len(leads)},
		Errors:          []string{},
	}, nil
}

func (o *Orchestrator) searchAll(ctx context.Context, q sources.Query, location string) (*Result, error) {
	adapters := o.registry.All()
	if len(adapters) == 0 {
		return nil, apperr.Unavailable("no lead sources are registered")
	}

	var (
		mu       sync.Mutex
		outcomes = make([]outcome, 0, len(adapters))
	)

	// Adapter errors are recorded, not returned, so one failure never cancels siblings.
	var g errgroup.Group
	for _, adapter := range adapters {
		g.Go(func() error {
			leads, err := adapter.Search(ctx, q)
			mu.Lock()
			outcomes = append(outcomes, outcome{source: adapter.Name(), leads: leads, err: err})
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	result := &Result{
		PerSourceCounts: make(map[string]int, len(outcomes)),
		Errors:          []string{},
	}
	var merged []domain.LeadCandidate
	ran := 0
	for _, out := range outcomes {
		if out.err != nil {
			o.log.Warn("lead source failed", "source", out.source, "error", out.err)
			result.Errors = append(result.Errors, sourceWarning(out.source, out.err))
			if !errors.Is(out.err, sources.ErrNotConfigured) {
				ran++
			}
			continue
		}
		ran++
		result.PerSourceCounts[string(out.source)] = len(out.leads)
		merged = append(merged, out.leads...)
	}

	if ran == 0 {
		return nil, apperr.Unavailable("no lead source is configured").WithDetails(result.Errors)
	}

	result.Leads = finalize(merged, location)
	return result, nil
}

// sourceWarning names the failing source unless the adapter already did.
func sourceWarning(source domain.SourceID, err error) string {
	msg := err.Error()
	if strings.HasPrefix(msg, string(source)+":") {
		return msg
	}
	return fmt.Sprintf("%s: %s", source, msg)
}

func finalize(leads []domain.LeadCandidate, location string) []domain.LeadCandidate {
	out := locationfilter.Filter(dedupe.Dedupe(leads), location)
	if out == nil {
		return []domain.LeadCandidate{}
	}
	return out
}
