// Package googleplaces searches the Google Places Text Search API and resolves
// phone and website fields through Place Details.
package googleplaces

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

	"golang.org/x/sync/errgroup"
)

const (
	detailsConcurrency = 4
	detailsFields      = "formatted_phone_number,international_phone_number,website"

	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"
)

// Options configures the adapter.
type Options struct {
	APIKey  string
	BaseURL string
	Fetcher *sources.Fetcher
}

// Adapter implements sources.Adapter for Google Places.
type Adapter struct {
	apiKey  string
	baseURL string
	fetcher *sources.Fetcher
	log     *logger.Logger
}

var _ sources.Adapter = (*Adapter)(nil)

// New creates a Google Places adapter.
func New(opts Options, log *logger.Logger) *Adapter {
	if log == nil {
		log = logger.Discard()
	}
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = sources.NewFetcher(0, 0, "")
	}
	return &Adapter{
		apiKey:  strings.TrimSpace(opts.APIKey),
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		fetcher: fetcher,
		log:     log,
	}
}

func (a *Adapter) Name() domain.SourceID { return domain.SourceGooglePlaces }

type textSearchResponse struct {
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message"`
	Results      []placeResult `json:"results"`
}

type placeResult struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Rating           *float64 `json:"rating"`
	UserRatingsTotal *int     `json:"user_ratings_total"`
}

type detailsResponse struct {
	Status string `json:"status"`
	Result struct {
		FormattedPhoneNumber     string `json:"formatted_phone_number"`
		InternationalPhoneNumber string `json:"international_phone_number"`
		Website                  string `json:"website"`
	} `json:"result"`
}

// Search runs a text search for "{niche} in {location}, {country}".
// A details lookup failure keeps the candidate without phone and website.
func (a *Adapter) Search(ctx context.Context, q sources.Query) ([]domain.LeadCandidate, error) {
	if a.apiKey == "" {
		return nil, fmt.Errorf("%s: %w", a.Name(), sources.ErrNotConfigured)
	}
	q = q.Normalized()
	start := time.Now()

	results, err := a.textSearch(ctx, q)
	if err != nil {
		a.log.ProviderCall(string(a.Name()), "api", 0, msSince(start), err)
		return nil, fmt.Errorf("%s: %w", a.Name(), err)
	}

	candidates := make([]domain.LeadCandidate, len(results))
	valid := make([]bool, len(results))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(detailsConcurrency)
	for i := range results {
		place := results[i]
		name := sanitize.Text(place.Name)
		if name == "" {
			continue
		}
		valid[i] = true
		address := sanitize.Text(place.FormattedAddress)
		candidates[i] = domain.LeadCandidate{
			BusinessName: name,
			Address:      address,
			City:         sources.CityFromAddress(address),
			Country:      q.Country,
			Rating:       place.Rating,
			ReviewCount:  place.UserRatingsTotal,
			Source:       a.Name(),
		}
		if place.PlaceID == "" {
			continue
		}
		g.Go(func() error {
			details, err := a.details(gctx, place.PlaceID)
			if err != nil {
				a.log.Debug("place details lookup failed", "place_id", place.PlaceID, "error", err)
				return nil
			}
			number := details.Result.InternationalPhoneNumber
			if number == "" {
				number = details.Result.FormattedPhoneNumber
			}
			candidates[i].Phone = phone.NormalizeE164(number, q.Country)
			candidates[i].Website = strings.TrimSpace(details.Result.Website)
			return nil
		})
	}
	_ = g.Wait()

	out := make([]domain.LeadCandidate, 0, len(candidates))
	for i, c := range candidates {
		if valid[i] {
			out = append(out, c)
		}
	}

	a.log.ProviderCall(string(a.Name()), "api", len(out), msSince(start), nil)
	return out, nil
}

func (a *Adapter) textSearch(ctx context.Context, q sources.Query) ([]placeResult, error) {
	query := q.Niche
	if q.Location != "" {
		query += " in " + q.Location
	}
	if q.Country != "" {
		query += ", " + q.Country
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("key", a.apiKey)

	var resp textSearchResponse
	if err := a.fetcher.GetJSON(ctx, a.baseURL+"/textsearch/json?"+params.Encode(), nil, &resp); err != nil {
		return nil, err
	}

	switch resp.Status {
	case statusOK, "":
		return resp.Results, nil
	case statusZeroResults:
		return nil, nil
	default:
		if resp.ErrorMessage != "" {
			return nil, fmt.Errorf("text search status %s: %s", resp.Status, resp.ErrorMessage)
		}
		return nil, fmt.Errorf("text search status %s", resp.Status)
	}
}

func (a *Adapter) details(ctx context.Context, placeID string) (*detailsResponse, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", detailsFields)
	params.Set("key", a.apiKey)

	var resp detailsResponse
	if err := a.fetcher.GetJSON(ctx, a.baseURL+"/details/json?"+params.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Status != statusOK && resp.Status != "" {
		return nil, fmt.Errorf("details status %s", resp.Status)
	}
	return &resp, nil
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Milliseconds())
}
