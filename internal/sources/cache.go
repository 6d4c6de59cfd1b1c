package sources

import (
	"context"
	"crypto/sha1"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"leadgen_backend/internal/leads/domain"
	"leadgen_backend/platform/config"
	"leadgen_backend/platform/logger"

	"github.com/redis/go-redis/v9"
)

const (
	cacheKeyPrefix  = "leads:search:v1"
	defaultCacheTTL = 6 * time.Hour
)

// NewRedisClient builds a go-redis client from the cache configuration.
// Returns nil (no error) when REDIS_URL is unset; callers then skip caching.
func NewRedisClient(cfg config.CacheConfig) (*redis.Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if cfg.GetRedisTLSInsecure() {
		if opt.TLSConfig == nil {
			opt.TLSConfig = &tls.Config{}
		}
		opt.TLSConfig.InsecureSkipVerify = true
	}

	return redis.NewClient(opt), nil
}

// Cache stores provider results keyed by (source, niche, location, country).
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewCache wraps a redis client. A nil client yields a nil Cache.
func NewCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *Cache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{client: client, ttl: ttl, log: log}
}

type cachedCandidate struct {
	BusinessName string   `json:"businessName"`
	Address      string   `json:"address,omitempty"`
	City         string   `json:"city,omitempty"`
	Country      string   `json:"country,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	Email        string   `json:"email,omitempty"`
	Website      string   `json:"website,omitempty"`
	SocialHandle string   `json:"socialHandle,omitempty"`
	Rating       *float64 `json:"rating,omitempty"`
	ReviewCount  *int     `json:"reviewCount,omitempty"`
	Source       string   `json:"source"`
}

func cacheKey(source domain.SourceID, q Query) string {
	raw := strings.ToLower(strings.Join([]string{q.Niche, q.Location, q.Country}, "|"))
	sum := sha1.Sum([]byte(raw))
	return fmt.Sprintf("%s:%s:%s", cacheKeyPrefix, source, hex.EncodeToString(sum[:]))
}

// Get returns cached candidates. ok is false on miss or any cache failure.
func (c *Cache) Get(ctx context.Context, source domain.SourceID, q Query) ([]domain.LeadCandidate, bool) {
	raw, err := c.client.Get(ctx, cacheKey(source, q)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("search cache read failed", "source", source, "error", err)
		}
		return nil, false
	}

	var stored []cachedCandidate
	if err := json.Unmarshal(raw, &stored); err != nil {
		c.log.Warn("search cache entry corrupt", "source", source, "error", err)
		return nil, false
	}

	out := make([]domain.LeadCandidate, 0, len(stored))
	for _, s := range stored {
		out = append(out, domain.LeadCandidate{
			BusinessName: s.BusinessName,
			Address:      s.Address,
			City:         s.City,
			Country:      s.Country,
			Phone:        s.Phone,
			Email:        s.Email,
			Website:      s.Website,
			SocialHandle: s.SocialHandle,
			Rating:       s.Rating,
			ReviewCount:  s.ReviewCount,
			Source:       domain.SourceID(s.Source),
		})
	}
	return out, true
}

// Set stores candidates. Failures are logged and otherwise ignored.
func (c *Cache) Set(ctx context.Context, source domain.SourceID, q Query, candidates []domain.LeadCandidate) {
	stored := make([]cachedCandidate, 0, len(candidates))
	for _, cand := range candidates {
		stored = append(stored, cachedCandidate{
			BusinessName: cand.BusinessName,
			Address:      cand.Address,
			City:         cand.City,
			Country:      cand.Country,
			Phone:        cand.Phone,
			Email:        cand.Email,
			Website:      cand.Website,
			SocialHandle: cand.SocialHandle,
			Rating:       cand.Rating,
			ReviewCount:  cand.ReviewCount,
			Source:       string(cand.Source),
		})
	}

	raw, err := json.Marshal(stored)
	if err != nil {
		c.log.Warn("search cache encode failed", "source", source, "error", err)
		return
	}
	if err := c.client.Set(ctx, cacheKey(source, q), raw, c.ttl).Err(); err != nil {
		c.log.Warn("search cache write failed", "source", source, "error", err)
	}
}

// CachedAdapter serves repeated queries from the cache.
// Only successful, non-empty results are cached.
type CachedAdapter struct {
	inner Adapter
	cache *Cache
}

// WithCache decorates a with cache. A nil cache returns a unchanged.
func WithCache(a Adapter, cache *Cache) Adapter {
	if cache == nil {
		return a
	}
	return &CachedAdapter{inner: a, cache: cache}
}

func (a *CachedAdapter) Name() domain.SourceID { return a.inner.Name() }

func (a *CachedAdapter) Search(ctx context.Context, q Query) ([]domain.LeadCandidate, error) {
	if cached, ok := a.cache.Get(ctx, a.inner.Name(), q); ok {
		return cached, nil
	}

	results, err := a.inner.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(results) > 0 {
		a.cache.Set(ctx, a.inner.Name(), q, results)
	}
	return results, nil
}
