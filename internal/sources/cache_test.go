package sources

import (
	"context"
	"errors"
	"testing"
	"time"

	"leadgen_backend/internal/leads/domain"
	"leadgen_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type countingAdapter struct {
	name    domain.SourceID
	results []domain.LeadCandidate
	err     error
	calls   int
}

func (a *countingAdapter) Name() domain.SourceID { return a.name }

func (a *countingAdapter) Search(_ context.Context, _ Query) ([]domain.LeadCandidate, error) {
	a.calls++
	return a.results, a.err
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Hour, logger.Discard()), mr
}

func TestCachedAdapterServesRepeatQueriesFromCache(t *testing.T) {
	cache, _ := newTestCache(t)
	rating := 4.5
	inner := &countingAdapter{
		name:    domain.SourceYell,
		results: []domain.LeadCandidate{{BusinessName: "Glow Clinic", Rating: &rating, Source: domain.SourceYell}},
	}
	adapter := WithCache(inner, cache)
	q := Query{Niche: "med spa", Location: "London", Country: "United Kingdom"}

	first, err := adapter.Search(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := adapter.Search(context.Background(), Query{Niche: "MED SPA", Location: "london", Country: "united kingdom"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if inner.calls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", inner.calls)
	}
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected 1 result each, got %d and %d", len(first), len(second))
	}
	if second[0].Rating == nil || *second[0].Rating != 4.5 || second[0].Source != domain.SourceYell {
		t.Fatalf("expected cached candidate to round-trip, got %+v", second[0])
	}
}

func TestCachedAdapterDoesNotCacheEmptyOrFailedResults(t *testing.T) {
	cache, mr := newTestCache(t)
	inner := &countingAdapter{name: domain.SourceYelp}
	adapter := WithCache(inner, cache)
	q := Query{Niche: "dentist", Location: "Leeds"}

	_, _ = adapter.Search(context.Background(), q)
	inner.err = errors.New("boom")
	if _, err := adapter.Search(context.Background(), q); err == nil {
		t.Fatalf("expected upstream error to propagate")
	}

	if inner.calls != 2 {
		t.Fatalf("expected 2 upstream calls, got %d", inner.calls)
	}
	if keys := mr.Keys(); len(keys) != 0 {
		t.Fatalf("expected no cache keys, got %v", keys)
	}
}

func TestCacheMissWhenRedisUnavailable(t *testing.T) {
	cache, mr := newTestCache(t)
	mr.Close()

	inner := &countingAdapter{name: domain.SourceYell, results: []domain.LeadCandidate{{BusinessName: "A"}}}
	results, err := WithCache(inner, cache).Search(context.Background(), Query{Niche: "a", Location: "b"})
	if err != nil {
		t.Fatalf("expected live call to succeed, got %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
}

func TestWithCacheNilCacheReturnsInner(t *testing.T) {
	inner := &countingAdapter{name: domain.SourceYell}
	if got := WithCache(inner, nil); got != Adapter(inner) {
		t.Fatalf("expected inner adapter to be returned unchanged")
	}
}
