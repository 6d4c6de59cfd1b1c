package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"leadgen_backend/internal/leads/domain"
	"leadgen_backend/internal/sources"
	"leadgen_backend/platform/apperr"
)

type stubAdapter struct {
	name    domain.SourceID
	leads   []domain.LeadCandidate
	err     error
	delay   time.Duration
	calls   atomic.Int32
	lastQry atomic.Value
}

func (s *stubAdapter) Name() domain.SourceID { return s.name }

func (s *stubAdapter) Search(ctx context.Context, q sources.Query) ([]domain.LeadCandidate, error) {
	s.calls.Add(1)
	s.lastQry.Store(q)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.leads, nil
}

func cand(name, city string, source domain.SourceID) domain.LeadCandidate {
	return domain.LeadCandidate{BusinessName: name, City: city, Address: "1 Road, " + city, Source: source}
}

func TestSearchAllDedupesAcrossSources(t *testing.T) {
	a := &stubAdapter{name: "a", leads: []domain.LeadCandidate{
		cand("Acme Ltd", "London", "a"),
		cand("Bolt Co", "London", "a"),
	}}
	b := &stubAdapter{name: "b", leads: []domain.LeadCandidate{
		cand("  acme ltd ", "London", "b"),
	}, delay: 20 * time.Millisecond}

	o := New(sources.NewRegistry(a, b), "United Kingdom", nil)
	res, err := o.Search(context.Background(), Request{Niche: "plumbers", Location: "London", Source: "all"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Leads) != 2 {
		t.Fatalf("expected 2 leads after dedupe, got %d", len(res.Leads))
	}
	if res.Leads[0].BusinessName != "Acme Ltd" || res.Leads[0].Source != "a" {
		t.Fatalf("expected first arrival to win, got %+v", res.Leads[0])
	}
	if res.PerSourceCounts["a"] != 2 || res.PerSourceCounts["b"] != 1 {
		t.Fatalf("unexpected per-source counts %v", res.PerSourceCounts)
	}
	if len(res.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", res.Errors)
	}
}

func TestSearchAllKeepsSiblingResultsWhenOneFails(t *testing.T) {
	a := &stubAdapter{name: "a", err: errors.New("a: upstream status 500")}
	var five []domain.LeadCandidate
	for i := 0; i < 5; i++ {
		five = append(five, cand(fmt.Sprintf("Biz %d", i), "Leeds", "b"))
	}
	b := &stubAdapter{name: "b", leads: five, delay: 10 * time.Millisecond}

	o := New(sources.NewRegistry(a, b), "United Kingdom", nil)
	res, err := o.Search(context.Background(), Request{Niche: "plumbers", Location: "Leeds"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Leads) != 5 {
		t.Fatalf("expected 5 leads, got %d", len(res.Leads))
	}
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "a") {
		t.Fatalf("expected one error naming adapter a, got %v", res.Errors)
	}
	if _, ok := res.PerSourceCounts["a"]; ok {
		t.Fatalf("expected failed source to be absent from counts, got %v", res.PerSourceCounts)
	}
	if b.calls.Load() != 1 {
		t.Fatalf("expected sibling to run to completion")
	}
}

func TestSearchAllWarningNamesSourceForBareErrors(t *testing.T) {
	a := &stubAdapter{name: "adapterA", err: errors.New("upstream status 500")}
	var five []domain.LeadCandidate
	for i := 0; i < 5; i++ {
		five = append(five, cand(fmt.Sprintf("Biz %d", i), "Leeds", "b"))
	}
	b := &stubAdapter{name: "b", leads: five}

	o := New(sources.NewRegistry(a, b), "United Kingdom", nil)
	res, err := o.Search(context.Background(), Request{Niche: "plumbers", Location: "Leeds", Source: "all"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Leads) != 5 {
		t.Fatalf("expected 5 leads, got %d", len(res.Leads))
	}
	want := []string{"adapterA: upstream status 500"}
	if len(res.Errors) != 1 || res.Errors[0] != want[0] {
		t.Fatalf("expected warnings %v, got %v", want, res.Errors)
	}
}

func TestSearchAllWarningKeepsAdapterPrefix(t *testing.T) {
	a := &stubAdapter{name: "a", err: errors.New("a: upstream status 500")}
	b := &stubAdapter{name: "b", leads: []domain.LeadCandidate{cand("Acme", "Leeds", "b")}}

	o := New(sources.NewRegistry(a, b), "United Kingdom", nil)
	res, err := o.Search(context.Background(), Request{Niche: "plumbers", Location: "Leeds"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Errors) != 1 || res.Errors[0] != "a: upstream status 500" {
		t.Fatalf("expected adapter prefix to appear once, got %v", res.Errors)
	}
}

func TestSearchSingleSourceDedupesAndDropsBlankNames(t *testing.T) {
	stub := &stubAdapter{name: "a", leads: []domain.LeadCandidate{
		{BusinessName: "Glow Med Spa", Address: "12 King's Road, London", City: "London", Country: "United Kingdom", Source: "a"},
		{BusinessName: "Harley Aesthetics", Address: "90 Harley Street, London", City: "London", Country: "United Kingdom", Source: "a"},
		{BusinessName: "glow med spa ", Address: "14 King's Road, London", City: "London", Country: "United Kingdom", Source: "a"},
		{BusinessName: "   ", Address: "1 High Street, London", City: "London", Country: "United Kingdom", Source: "a"},
	}}

	o := New(sources.NewRegistry(stub), "United Kingdom", nil)
	res, err := o.Search(context.Background(), Request{
		Niche:    "med spa",
		Location: "London",
		Country:  "United Kingdom",
		Source:   "a",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Leads) != 2 {
		t.Fatalf("expected 2 leads after dedupe and blank-name drop, got %d: %+v", len(res.Leads), res.Leads)
	}
	if res.Leads[0].BusinessName != "Glow Med Spa" || res.Leads[0].Address != "12 King's Road, London" {
		t.Fatalf("expected first arrival to survive, got %+v", res.Leads[0])
	}
	if res.Leads[1].BusinessName != "Harley Aesthetics" {
		t.Fatalf("expected Harley Aesthetics second, got %+v", res.Leads[1])
	}
	if res.PerSourceCounts["a"] != 4 {
		t.Fatalf("expected raw count 4 for source a, got %v", res.PerSourceCounts)
	}
	if got := stub.lastQry.Load().(sources.Query); got.Niche != "med spa" || got.Country != "United Kingdom" {
		t.Fatalf("expected query to reach the adapter unchanged, got %+v", got)
	}
}

func TestSearchSingleSourceFailsFast(t *testing.T) {
	a := &stubAdapter{name: "a", err: errors.New("a: boom")}
	b := &stubAdapter{name: "b", leads: []domain.LeadCandidate{cand("Acme", "London", "b")}}

	o := New(sources.NewRegistry(a, b), "United Kingdom", nil)
	_, err := o.Search(context.Background(), Request{Niche: "plumbers", Location: "London", Source: "a"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable kind, got %v", err)
	}
	if !strings.Contains(err.Error(), "a") {
		t.Fatalf("expected error to name adapter, got %v", err)
	}
	if b.calls.Load() != 0 {
		t.Fatalf("expected only the requested source to run")
	}
}

func TestSearchSingleSourceReturnsResults(t *testing.T) {
	a := &stubAdapter{name: "a", leads: []domain.LeadCandidate{cand("Acme", "London", "a")}}
	o := New(sources.NewRegistry(a), "United Kingdom", nil)

	res, err := o.Search(context.Background(), Request{Niche: "plumbers", Location: "London", Source: "A"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Leads) != 1 || res.PerSourceCounts["a"] != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestSearchUnknownSourceIsValidationError(t *testing.T) {
	o := New(sources.NewRegistry(&stubAdapter{name: "a"}), "United Kingdom", nil)
	_, err := o.Search(context.Background(), Request{Niche: "plumbers", Location: "London", Source: "bing"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSearchRequiresNicheAndLocation(t *testing.T) {
	o := New(sources.NewRegistry(&stubAdapter{name: "a"}), "United Kingdom", nil)
	cases := []Request{
		{Niche: "", Location: "London"},
		{Niche: "plumbers", Location: "   "},
	}
	for _, req := range cases {
		if _, err := o.Search(context.Background(), req); !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("expected validation error for %+v, got %v", req, err)
		}
	}
}

func TestSearchAllUnavailableWhenNoSourceCanRun(t *testing.T) {
	a := &stubAdapter{name: "a", err: fmt.Errorf("a: %w", sources.ErrNotConfigured)}
	b := &stubAdapter{name: "b", err: fmt.Errorf("b: %w", sources.ErrNotConfigured)}

	o := New(sources.NewRegistry(a, b), "United Kingdom", nil)
	_, err := o.Search(context.Background(), Request{Niche: "plumbers", Location: "London"})
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperr.Error")
	}
	details, ok := appErr.Details.([]string)
	if !ok || len(details) != 2 {
		t.Fatalf("expected both warnings as details, got %#v", appErr.Details)
	}
}

func TestSearchAllEveryRunningSourceFailedIsEmptySuccess(t *testing.T) {
	a := &stubAdapter{name: "a", err: errors.New("a: timeout")}
	o := New(sources.NewRegistry(a), "United Kingdom", nil)

	res, err := o.Search(context.Background(), Request{Niche: "plumbers", Location: "London"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Leads) != 0 || len(res.Errors) != 1 {
		t.Fatalf("expected empty leads with one warning, got %+v", res)
	}
}

func TestSearchFallsBackToUnfilteredWhenLocationMatchesNothing(t *testing.T) {
	a := &stubAdapter{name: "a", leads: []domain.LeadCandidate{
		cand("Acme", "Greater London", "a"),
		cand("Bolt", "Westminster", "a"),
	}}
	o := New(sources.NewRegistry(a), "United Kingdom", nil)

	res, err := o.Search(context.Background(), Request{Niche: "plumbers", Location: "Soho"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Leads) != 2 {
		t.Fatalf("expected unfiltered fallback, got %d leads", len(res.Leads))
	}

	res, err = o.Search(context.Background(), Request{Niche: "plumbers", Location: "westminster"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Leads) != 1 || res.Leads[0].BusinessName != "Bolt" {
		t.Fatalf("expected location filter to keep Bolt only, got %+v", res.Leads)
	}
}

func TestSearchAppliesDefaultCountry(t *testing.T) {
	a := &stubAdapter{name: "a"}
	o := New(sources.NewRegistry(a), "United Kingdom", nil)

	if _, err := o.Search(context.Background(), Request{Niche: "plumbers", Location: "London", Source: "a"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q, _ := a.lastQry.Load().(sources.Query)
	if q.Country != "United Kingdom" {
		t.Fatalf("expected default country, got %q", q.Country)
	}
}
