// Package providers wires the concrete source adapters into a registry.
package providers

import (
	"leadgen_backend/internal/sources"
	"leadgen_backend/internal/sources/googleplaces"
	"leadgen_backend/internal/sources/yell"
	"leadgen_backend/internal/sources/yelp"
	"leadgen_backend/platform/config"
	"leadgen_backend/platform/logger"
)

// Build registers every adapter. Each gets its own rate-limited fetcher, and
// is wrapped with the result cache when one is supplied.
func Build(cfg config.SourcesConfig, cache *sources.Cache, log *logger.Logger) *sources.Registry {
	newFetcher := func() *sources.Fetcher {
		return sources.NewFetcher(cfg.GetProviderTimeout(), cfg.GetProviderRatePerSecond(), cfg.GetCrawlUserAgent())
	}

	adapters := []sources.Adapter{
		googleplaces.New(googleplaces.Options{
			APIKey:  cfg.GetGooglePlacesAPIKey(),
			BaseURL: cfg.GetGooglePlacesBaseURL(),
			Fetcher: newFetcher(),
		}, log.WithSource("googleplaces")),
		yelp.New(yelp.Options{
			APIKey:           cfg.GetYelpAPIKey(),
			APIBaseURL:       cfg.GetYelpAPIBaseURL(),
			DirectoryBaseURL: cfg.GetYelpDirectoryBaseURL(),
			Fetcher:          newFetcher(),
		}, log.WithSource("yelp")),
		yell.New(yell.Options{
			BaseURL: cfg.GetYellBaseURL(),
			Fetcher: newFetcher(),
		}, log.WithSource("yell")),
	}

	for i, a := range adapters {
		adapters[i] = sources.WithCache(a, cache)
	}
	return sources.NewRegistry(adapters...)
}
