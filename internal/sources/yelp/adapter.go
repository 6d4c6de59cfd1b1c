// Package yelp searches Yelp through the Fusion API and falls back to scraping
// the public directory listing when the API is unavailable or returns nothing.
package yelp

import (
	"context"
	"errors"
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

const (
	searchLimit = 50

	strategyAPI    = "api"
	strategyScrape = "scrape"
)

// Directory listing markup changes often; each field tries several selectors.
const (
	cardSelector    = `[data-testid="serp-ia-card"], li.search-result, div.businessCard`
	nameSelector    = `h3 a, a.biz-name, .businessName a`
	ratingSelector  = `[aria-label*="star rating"], .i-stars`
	reviewSelector  = `[class*="reviewCount"], .review-count`
	addressSelector = `address, [class*="secondaryAttributes"] address, .biz-address`
	phoneSelector   = `[class*="phone"], .biz-phone`
)

// Options configures the adapter. Without an APIKey only the scrape runs.
type Options struct {
	APIKey           string
	APIBaseURL       string
	DirectoryBaseURL string
	Fetcher          *sources.Fetcher
}

// Adapter implements sources.Adapter for Yelp.
type Adapter struct {
	apiKey       string
	apiBase      string
	directoryURL string
	fetcher      *sources.Fetcher
	log          *logger.Logger
}

var _ sources.Adapter = (*Adapter)(nil)

// New creates a Yelp adapter.
func New(opts Options, log *logger.Logger) *Adapter {
	if log == nil {
		log = logger.Discard()
	}
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = sources.NewFetcher(0, 0, "")
	}
	return &Adapter{
		apiKey:       strings.TrimSpace(opts.APIKey),
		apiBase:      strings.TrimRight(opts.APIBaseURL, "/"),
		directoryURL: strings.TrimRight(opts.DirectoryBaseURL, "/"),
		fetcher:      fetcher,
		log:          log,
	}
}

func (a *Adapter) Name() domain.SourceID { return domain.SourceYelp }

// Search tries the API first. The scrape runs when there is no key, the API
// fails, or the API returns zero results. When both strategies fail the
// returned error carries both causes.
func (a *Adapter) Search(ctx context.Context, q sources.Query) ([]domain.LeadCandidate, error) {
	q = q.Normalized()

	var primaryErr error
	if a.apiKey != "" && a.apiBase != "" {
		start := time.Now()
		leads, err := a.searchAPI(ctx, q)
		a.log.ProviderCall(string(a.Name()), strategyAPI, len(leads), msSince(start), err)
		if err == nil && len(leads) > 0 {
			return leads, nil
		}
		primaryErr = err
	}

	if a.directoryURL == "" {
		if primaryErr != nil {
			return nil, fmt.Errorf("%s: %w", a.Name(), primaryErr)
		}
		if a.apiKey == "" {
			return nil, fmt.Errorf("%s: %w", a.Name(), sources.ErrNotConfigured)
		}
		return nil, nil
	}

	start := time.Now()
	leads, err := a.searchDirectory(ctx, q)
	a.log.ProviderCall(string(a.Name()), strategyScrape, len(leads), msSince(start), err)
	if err != nil {
		if primaryErr != nil {
			return nil, fmt.Errorf("%s: %w", a.Name(), errors.Join(primaryErr, err))
		}
		return nil, fmt.Errorf("%s: %w", a.Name(), err)
	}
	return leads, nil
}

type searchResponse struct {
	Businesses []business `json:"businesses"`
}

type business struct {
	Name         string   `json:"name"`
	Phone        string   `json:"phone"`
	DisplayPhone string   `json:"display_phone"`
	Rating       *float64 `json:"rating"`
	ReviewCount  *int     `json:"review_count"`
	IsClosed     bool     `json:"is_closed"`
	Location     struct {
		Address1       string   `json:"address1"`
		City           string   `json:"city"`
		DisplayAddress []string `json:"display_address"`
	} `json:"location"`
}

func (a *Adapter) searchAPI(ctx context.Context, q sources.Query) ([]domain.LeadCandidate, error) {
	params := url.Values{}
	params.Set("term", q.Niche)
	params.Set("location", joinLocation(q))
	params.Set("limit", fmt.Sprint(searchLimit))

	var resp searchResponse
	headers := map[string]string{"Authorization": "Bearer " + a.apiKey}
	if err := a.fetcher.GetJSON(ctx, a.apiBase+"/businesses/search?"+params.Encode(), headers, &resp); err != nil {
		return nil, err
	}

	out := make([]domain.LeadCandidate, 0, len(resp.Businesses))
	for _, b := range resp.Businesses {
		name := sanitize.Text(b.Name)
		if name == "" || b.IsClosed {
			continue
		}
		address := sanitize.Text(strings.Join(b.Location.DisplayAddress, ", "))
		if address == "" {
			address = sanitize.Text(b.Location.Address1)
		}
		number := b.Phone
		if number == "" {
			number = b.DisplayPhone
		}
		out = append(out, domain.LeadCandidate{
			BusinessName: name,
			Address:      address,
			City:         sanitize.Text(b.Location.City),
			Country:      q.Country,
			Phone:        phone.NormalizeE164(number, q.Country),
			Rating:       b.Rating,
			ReviewCount:  b.ReviewCount,
			Source:       a.Name(),
		})
	}
	return out, nil
}

func (a *Adapter) searchDirectory(ctx context.Context, q sources.Query) ([]domain.LeadCandidate, error) {
	params := url.Values{}
	params.Set("find_desc", q.Niche)
	params.Set("find_loc", joinLocation(q))

	doc, err := a.fetcher.GetHTML(ctx, a.directoryURL+"/search?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var out []domain.LeadCandidate
	doc.Find(cardSelector).Each(func(_ int, card *goquery.Selection) {
		if c, ok := a.parseCard(card, q); ok {
			out = append(out, c)
		}
	})
	return out, nil
}

func (a *Adapter) parseCard(card *goquery.Selection, q sources.Query) (domain.LeadCandidate, bool) {
	name := sanitize.Text(card.Find(nameSelector).First().Text())
	if name == "" {
		return domain.LeadCandidate{}, false
	}

	address := sanitize.Text(card.Find(addressSelector).First().Text())
	city := sources.CityFromAddress(address)
	if city == "" && q.Location != "" {
		city = q.Location
	}

	c := domain.LeadCandidate{
		BusinessName: name,
		Address:      address,
		City:         city,
		Country:      q.Country,
		Source:       a.Name(),
	}

	if ratingNode := card.Find(ratingSelector).First(); ratingNode.Length() > 0 {
		label, _ := ratingNode.Attr("aria-label")
		if label == "" {
			label, _ = ratingNode.Attr("title")
		}
		c.Rating = sources.ParseRating(label)
	}
	c.ReviewCount = sources.ParseCount(card.Find(reviewSelector).First().Text())

	if raw := phone.FindFirst(card.Find(phoneSelector).First().Text()); raw != "" {
		c.Phone = phone.NormalizeE164(raw, q.Country)
	}
	return c, true
}

func joinLocation(q sources.Query) string {
	if q.Country == "" {
		return q.Location
	}
	if q.Location == "" {
		return q.Country
	}
	return q.Location + ", " + q.Country
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Milliseconds())
}
