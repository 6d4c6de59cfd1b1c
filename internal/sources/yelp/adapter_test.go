package yelp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"leadgen_backend/internal/sources"
)

const directoryHTML = `<html><body><ul>
<li class="search-result">
  <h3><a href="/biz/acme">Acme Plumbing</a></h3>
  <div aria-label="4.5 star rating"></div>
  <span class="reviewCount__x">(87 reviews)</span>
  <address>1 High St, London W1D 1AA</address>
  <p class="phone__x">020 7946 0958</p>
</li>
<li class="search-result">
  <h3><a href="/biz/empty"> </a></h3>
</li>
<li class="search-result">
  <h3><a href="/biz/bolt">Bolt &amp; Sons</a></h3>
</li>
</ul></body></html>`

type fixture struct {
	apiStatus  int
	apiBody    string
	apiCalls   atomic.Int32
	dirStatus  int
	dirCalls   atomic.Int32
	authHeader atomic.Value
}

func (f *fixture) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v3/businesses/search":
			f.apiCalls.Add(1)
			f.authHeader.Store(r.Header.Get("Authorization"))
			if f.apiStatus != 0 {
				w.WriteHeader(f.apiStatus)
				return
			}
			_, _ = w.Write([]byte(f.apiBody))
		case "/search":
			f.dirCalls.Add(1)
			if f.dirStatus != 0 {
				w.WriteHeader(f.dirStatus)
				return
			}
			_, _ = w.Write([]byte(directoryHTML))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

var query = sources.Query{Niche: "plumbers", Location: "London", Country: "UK"}

func TestSearchUsesAPIWhenItReturnsResults(t *testing.T) {
	f := &fixture{apiBody: `{"businesses":[
		{"name":"Acme Plumbing","phone":"+442079460958","rating":4.5,"review_count":87,
		 "location":{"city":"London","display_address":["1 High St","London W1D 1AA"]}},
		{"name":"Closed Co","is_closed":true},
		{"name":""}
	]}`}
	srv := f.server(t)

	a := New(Options{APIKey: "secret", APIBaseURL: srv.URL + "/v3", DirectoryBaseURL: srv.URL}, nil)
	got, err := a.Search(context.Background(), query)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	if got[0].City != "London" || got[0].Address != "1 High St, London W1D 1AA" {
		t.Fatalf("unexpected candidate: %+v", got[0])
	}
	if f.dirCalls.Load() != 0 {
		t.Fatalf("expected no scrape, got %d calls", f.dirCalls.Load())
	}
	if h, _ := f.authHeader.Load().(string); h != "Bearer secret" {
		t.Fatalf("expected bearer header, got %q", h)
	}
}

func TestSearchFallsBackToDirectoryOnEmptyAPIResult(t *testing.T) {
	f := &fixture{apiBody: `{"businesses":[]}`}
	srv := f.server(t)

	a := New(Options{APIKey: "secret", APIBaseURL: srv.URL + "/v3", DirectoryBaseURL: srv.URL}, nil)
	got, err := a.Search(context.Background(), query)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 scraped candidates (blank card skipped), got %d", len(got))
	}
	acme := got[0]
	if acme.BusinessName != "Acme Plumbing" || acme.City != "London" {
		t.Fatalf("unexpected candidate: %+v", acme)
	}
	if acme.Rating == nil || *acme.Rating != 4.5 {
		t.Fatalf("expected rating 4.5, got %v", acme.Rating)
	}
	if acme.ReviewCount == nil || *acme.ReviewCount != 87 {
		t.Fatalf("expected 87 reviews, got %v", acme.ReviewCount)
	}
	if acme.Phone != "+442079460958" {
		t.Fatalf("expected normalized phone, got %q", acme.Phone)
	}
	if got[1].BusinessName != "Bolt & Sons" || got[1].City != "London" {
		t.Fatalf("expected entity-decoded name with query city, got %+v", got[1])
	}
	if got[1].Rating != nil || got[1].ReviewCount != nil {
		t.Fatalf("expected missing rating fields to stay nil")
	}
}

func TestSearchFallsBackWithoutAPIKey(t *testing.T) {
	f := &fixture{}
	srv := f.server(t)

	a := New(Options{APIBaseURL: srv.URL + "/v3", DirectoryBaseURL: srv.URL}, nil)
	got, err := a.Search(context.Background(), query)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || f.apiCalls.Load() != 0 {
		t.Fatalf("expected scrape only, got %d results and %d api calls", len(got), f.apiCalls.Load())
	}
}

func TestSearchFallsBackOnAPIError(t *testing.T) {
	f := &fixture{apiStatus: http.StatusUnauthorized}
	srv := f.server(t)

	a := New(Options{APIKey: "bad", APIBaseURL: srv.URL + "/v3", DirectoryBaseURL: srv.URL}, nil)
	got, err := a.Search(context.Background(), query)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected scraped results, got %d", len(got))
	}
}

func TestSearchBothStrategiesFail(t *testing.T) {
	f := &fixture{apiStatus: http.StatusInternalServerError, dirStatus: http.StatusForbidden}
	srv := f.server(t)

	a := New(Options{APIKey: "k", APIBaseURL: srv.URL + "/v3", DirectoryBaseURL: srv.URL}, nil)
	_, err := a.Search(context.Background(), query)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.HasPrefix(err.Error(), "yelp:") {
		t.Fatalf("expected error to name the adapter, got %v", err)
	}
	var status *sources.StatusError
	if !errors.As(err, &status) {
		t.Fatalf("expected a StatusError in the chain, got %v", err)
	}
	if !strings.Contains(err.Error(), "500") || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected both causes, got %v", err)
	}
}

func TestSearchNotConfigured(t *testing.T) {
	a := New(Options{}, nil)
	_, err := a.Search(context.Background(), query)
	if !errors.Is(err, sources.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
