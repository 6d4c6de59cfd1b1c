// Package enrichment fills missing contact fields (email, phone, social handle)
// by crawling a lead's own website.
package enrichment

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"leadgen_backend/internal/leads/domain"
	"leadgen_backend/platform/config"
	"leadgen_backend/platform/logger"

	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 5

var errNoPage = errors.New("no page could be fetched")

// Enricher crawls lead websites in bounded batches.
type Enricher struct {
	crawler     *Crawler
	extract     *Extractor
	rules       Rules
	concurrency int
	log         *logger.Logger
}

// New creates an enricher. concurrency is the default batch size for EnrichBatch.
func New(crawler *Crawler, rules Rules, concurrency int, log *logger.Logger) *Enricher {
	if concurrency < 1 {
		concurrency = defaultConcurrency
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Enricher{
		crawler:     crawler,
		extract:     NewExtractor(rules),
		rules:       rules,
		concurrency: concurrency,
		log:         log,
	}
}

// NewFromConfig builds the crawler and loads rule overrides from config.
func NewFromConfig(cfg config.EnrichmentConfig, log *logger.Logger) (*Enricher, error) {
	rules, err := LoadRules(cfg.GetEnrichmentRulesFile())
	if err != nil {
		return nil, err
	}
	crawler := NewCrawler(nil, cfg.GetCrawlTimeout(), cfg.GetCrawlUserAgent(), cfg.GetCrawlMaxBodyBytes())
	return New(crawler, rules, cfg.GetCrawlConcurrency(), log), nil
}

// Concurrency returns the configured batch size.
func (e *Enricher) Concurrency() int {
	return e.concurrency
}

// EnrichBatch crawls every lead that has a website and lacks an email or social
// handle, concurrencyLimit at a time. Batches run one after another. After each
// batch settles its findings are merged into leads, filling empty fields only.
// The result slice is parallel to leads.
func (e *Enricher) EnrichBatch(ctx context.Context, leads []domain.LeadCandidate, concurrencyLimit int) []domain.EnrichmentResult {
	if concurrencyLimit < 1 {
		concurrencyLimit = e.concurrency
	}

	results := make([]domain.EnrichmentResult, len(leads))
	pending := make([]int, 0, len(leads))
	for i, lead := range leads {
		if !lead.NeedsEnrichment() {
			results[i] = skipped(lead)
			continue
		}
		pending = append(pending, i)
	}

	for start := 0; start < len(pending); start += concurrencyLimit {
		batch := pending[start:min(start+concurrencyLimit, len(pending))]

		var g errgroup.Group
		for _, idx := range batch {
			lead := leads[idx]
			g.Go(func() error {
				results[idx] = e.EnrichLead(ctx, lead)
				return nil
			})
		}
		_ = g.Wait()

		for _, idx := range batch {
			Apply(&leads[idx], results[idx])
		}
	}
	return results
}

// EnrichLead crawls one lead's homepage and, while no email is known, the
// first contact page with real content. It never returns an error: failures
// are reported per field.
func (e *Enricher) EnrichLead(ctx context.Context, lead domain.LeadCandidate) domain.EnrichmentResult {
	if !lead.NeedsEnrichment() {
		return skipped(lead)
	}

	base, err := normalizeWebsite(lead.Website)
	if err != nil {
		return failed(lead.Website, err)
	}

	var (
		pages   []*Page
		lastErr error
	)
	home, err := e.crawler.Fetch(ctx, base.String())
	if err != nil {
		lastErr = err
	} else {
		pages = append(pages, home)
	}

	if strings.TrimSpace(lead.Email) == "" && e.pickEmail(pages, lead.Website) == "" {
		for _, path := range e.rules.ContactPaths {
			if ctx.Err() != nil {
				lastErr = ctx.Err()
				break
			}
			target := base.ResolveReference(&url.URL{Path: path})
			page, err := e.crawler.Fetch(ctx, target.String())
			if err != nil {
				lastErr = err
				continue
			}
			if len(page.Text) <= e.rules.MinContentBytes {
				continue
			}
			pages = append(pages, page)
			break
		}
	}

	if len(pages) == 0 {
		if lastErr == nil {
			lastErr = errNoPage
		}
		e.log.Debug("website crawl failed", "website", lead.Website, "error", lastErr)
		return failed(lead.Website, lastErr)
	}

	result := domain.EnrichmentResult{
		Website:      lead.Website,
		Email:        domain.NotFound(),
		Phone:        domain.NotFound(),
		SocialHandle: domain.NotFound(),
	}
	if email := e.pickEmail(pages, lead.Website); email != "" {
		result.Email = domain.Found(email)
	}
	for _, page := range pages {
		if handle := e.extract.SocialHandle(page.Markup); handle != "" {
			result.SocialHandle = domain.Found(handle)
			break
		}
	}
	for _, page := range pages {
		if number := e.extract.Phone(page.Text, lead.Country); number != "" {
			result.Phone = domain.Found(number)
			break
		}
	}
	return result
}

func (e *Enricher) pickEmail(pages []*Page, website string) string {
	var candidates []string
	for _, page := range pages {
		candidates = append(candidates, e.extract.Emails(strings.Join(page.Mailto, " "))...)
		candidates = append(candidates, e.extract.Emails(page.Markup)...)
	}
	return e.extract.PickEmail(dedupeStrings(candidates), website)
}

// Apply copies found values into empty fields of lead. Populated fields are
// never overwritten. Reports whether anything changed.
func Apply(lead *domain.LeadCandidate, r domain.EnrichmentResult) bool {
	changed := false
	if strings.TrimSpace(lead.Email) == "" && r.Email.Status == domain.StatusFound {
		lead.Email = r.Email.Value
		changed = true
	}
	if strings.TrimSpace(lead.Phone) == "" && r.Phone.Status == domain.StatusFound {
		lead.Phone = r.Phone.Value
		changed = true
	}
	if strings.TrimSpace(lead.SocialHandle) == "" && r.SocialHandle.Status == domain.StatusFound {
		lead.SocialHandle = r.SocialHandle.Value
		changed = true
	}
	return changed
}

func skipped(lead domain.LeadCandidate) domain.EnrichmentResult {
	return domain.EnrichmentResult{
		Website:      lead.Website,
		Skipped:      true,
		Email:        domain.NotFound(),
		Phone:        domain.NotFound(),
		SocialHandle: domain.NotFound(),
	}
}

func failed(website string, err error) domain.EnrichmentResult {
	return domain.EnrichmentResult{
		Website:      website,
		Email:        domain.Failed(err),
		Phone:        domain.Failed(err),
		SocialHandle: domain.Failed(err),
	}
}

func dedupeStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0]
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
