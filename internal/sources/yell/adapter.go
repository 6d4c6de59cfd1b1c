// Package yell scrapes the Yell.com business directory. Listings are read from
// schema.org microdata when present, with class-based selectors as a fallback.
package yell

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"leadgen_backend/internal/leads/domain"
	"leadgen_backend/internal/sources"
	"leadgen_backend/platform/logger"
	"leadgen_backend/platform/phone"
	"leadgen_backend/platform/sanitize"

	"github.com/PuerkitoBio/goquery"
)

const searchPath = "/ucs/UcsSearchAction.do"

const (
	cardSelector = `[itemtype$="LocalBusiness"], div.businessCapsule, article.businessCapsule`

	nameSelector     = `[itemprop="name"], .businessCapsule--name, h2.businessCapsule--name`
	streetSelector   = `[itemprop="streetAddress"]`
	localitySelector = `[itemprop="addressLocality"]`
	postcodeSelector = `[itemprop="postalCode"]`
	addressSelector  = `.businessCapsule--address, address`
	phoneSelector    = `[itemprop="telephone"], .business--telephoneNumber`
	websiteSelector  = `a[itemprop="url"], a.businessCapsule--ctaItem[data-tracking*="WL"], a[data-tracking="FLE:WL:CLOSED"]`
	ratingSelector   = `[itemprop="ratingValue"], .starRating--average`
	reviewSelector   = `[itemprop="reviewCount"], .starRating--total`
)

// Options configures the adapter.
type Options struct {
	BaseURL string
	Fetcher *sources.Fetcher
}

// Adapter implements sources.Adapter for Yell.
type Adapter struct {
	baseURL string
	fetcher *sources.Fetcher
	log     *logger.Logger
}

var _ sources.Adapter = (*Adapter)(nil)

// New creates a Yell adapter.
func New(opts Options, log *logger.Logger) *Adapter {
	if log == nil {
		log = logger.Discard()
	}
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = sources.NewFetcher(0, 0, "")
	}
	return &Adapter{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		fetcher: fetcher,
		log:     log,
	}
}

func (a *Adapter) Name() domain.SourceID { return domain.SourceYell }

// Search fetches one results page for the niche and location.
func (a *Adapter) Search(ctx context.Context, q sources.Query) ([]domain.LeadCandidate, error) {
	if a.baseURL == "" {
		return nil, fmt.Errorf("%s: %w", a.Name(), sources.ErrNotConfigured)
	}
	q = q.Normalized()

	params := url.Values{}
	params.Set("keywords", q.Niche)
	params.Set("location", q.Location)

	start := time.Now()
	doc, err := a.fetcher.GetHTML(ctx, a.baseURL+searchPath+"?"+params.Encode())
	if err != nil {
		a.log.ProviderCall(string(a.Name()), "scrape", 0, msSince(start), err)
		return nil, fmt.Errorf("%s: %w", a.Name(), err)
	}

	var out []domain.LeadCandidate
	doc.Find(cardSelector).Each(func(_ int, card *goquery.Selection) {
		// A capsule can wrap its own microdata node; only parse the outermost match.
		if card.ParentsFiltered(cardSelector).Length() > 0 {
			return
		}
		if c, ok := a.parseCard(card, q); ok {
			out = append(out, c)
		}
	})

	a.log.ProviderCall(string(a.Name()), "scrape", len(out), msSince(start), nil)
	return out, nil
}

func (a *Adapter) parseCard(card *goquery.Selection, q sources.Query) (domain.LeadCandidate, bool) {
	name := sanitize.Text(card.Find(nameSelector).First().Text())
	if name == "" {
		return domain.LeadCandidate{}, false
	}

	street := sanitize.Text(card.Find(streetSelector).First().Text())
	locality := sanitize.Text(card.Find(localitySelector).First().Text())
	postcode := sanitize.Text(card.Find(postcodeSelector).First().Text())

	address := joinNonEmpty(", ", street, joinNonEmpty(" ", locality, postcode))
	if address == "" {
		address = sanitize.Text(card.Find(addressSelector).First().Text())
	}
	city := locality
	if city == "" {
		city = sources.CityFromAddress(address)
	}

	c := domain.LeadCandidate{
		BusinessName: name,
		Address:      address,
		City:         city,
		Country:      q.Country,
		Website:      a.website(card),
		Source:       a.Name(),
	}

	if raw := phone.FindFirst(card.Find(phoneSelector).First().Text()); raw != "" {
		c.Phone = phone.NormalizeE164(raw, q.Country)
	}

	ratingNode := card.Find(ratingSelector).First()
	ratingText, ok := ratingNode.Attr("content")
	if !ok {
		ratingText = ratingNode.Text()
	}
	c.Rating = sources.ParseRating(ratingText)

	reviewNode := card.Find(reviewSelector).First()
	reviewText, ok := reviewNode.Attr("content")
	if !ok {
		reviewText = reviewNode.Text()
	}
	c.ReviewCount = sources.ParseCount(reviewText)

	return c, true
}

// website returns an absolute external URL, ignoring links back into the directory.
func (a *Adapter) website(card *goquery.Selection) string {
	href, ok := card.Find(websiteSelector).First().Attr("href")
	if !ok {
		return ""
	}
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ""
	}
	if base, err := url.Parse(a.baseURL); err == nil && strings.EqualFold(base.Host, u.Host) {
		return ""
	}
	return u.String()
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Milliseconds())
}
