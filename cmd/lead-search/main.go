// Command lead-search runs one provider search and prints the result as JSON.
// With -enrich the candidates' websites are crawled for missing contacts, and
// every candidate is scored before printing. Nothing is persisted.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"leadgen_backend/internal/enrichment"
	"leadgen_backend/internal/leads/domain"
	"leadgen_backend/internal/leads/orchestrator"
	"leadgen_backend/internal/leads/scoring"
	"leadgen_backend/internal/sources/providers"
	"leadgen_backend/platform/config"
	"leadgen_backend/platform/logger"
)

type scoredCandidate struct {
	BusinessName string          `json:"businessName"`
	Address      string          `json:"address,omitempty"`
	City         string          `json:"city,omitempty"`
	Country      string          `json:"country,omitempty"`
	Phone        string          `json:"phone,omitempty"`
	Email        string          `json:"email,omitempty"`
	Website      string          `json:"website,omitempty"`
	SocialHandle string          `json:"socialHandle,omitempty"`
	Rating       *float64        `json:"rating,omitempty"`
	ReviewCount  *int            `json:"reviewCount,omitempty"`
	Source       domain.SourceID `json:"source"`
	Score        scoring.Result  `json:"score"`
}

type output struct {
	Leads           []scoredCandidate `json:"leads"`
	PerSourceCounts map[string]int    `json:"perSourceCounts"`
	Warnings        []string          `json:"warnings"`
}

func main() {
	niche := flag.String("niche", "", "Business category to search for (required)")
	location := flag.String("location", "", "City or area (required)")
	country := flag.String("country", "", "Country (defaults to DEFAULT_COUNTRY)")
	source := flag.String("source", domain.SourceAll, "Provider: all, googleplaces, yelp or yell")
	enrich := flag.Bool("enrich", false, "Crawl candidate websites for missing email and social handle")
	flag.Parse()

	if *niche == "" || *location == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadWithoutDatabase()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	log := logger.NewWithWriter(cfg.Env, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	searcher := orchestrator.New(providers.Build(cfg, nil, log), cfg.GetDefaultCountry(), log)
	result, err := searcher.Search(ctx, orchestrator.Request{
		Niche:    *niche,
		Location: *location,
		Country:  *country,
		Source:   *source,
	})
	if err != nil {
		log.Error("search failed", "error", err)
		os.Exit(1)
	}

	candidates := result.Leads
	if *enrich {
		enricher, err := enrichment.NewFromConfig(cfg, log)
		if err != nil {
			log.Error("failed to initialize enricher", "error", err)
			os.Exit(1)
		}
		// EnrichBatch merges findings into candidates in place.
		results := enricher.EnrichBatch(ctx, candidates, enricher.Concurrency())
		crawled := 0
		for _, r := range results {
			if !r.Skipped {
				crawled++
			}
		}
		log.Info("enrichment finished", "candidates", len(candidates), "crawled", crawled)
	}

	out := output{
		Leads:           make([]scoredCandidate, 0, len(candidates)),
		PerSourceCounts: result.PerSourceCounts,
		Warnings:        result.Errors,
	}
	for _, c := range candidates {
		out.Leads = append(out.Leads, scoredCandidate{
			BusinessName: c.BusinessName,
			Address:      c.Address,
			City:         c.City,
			Country:      c.Country,
			Phone:        c.Phone,
			Email:        c.Email,
			Website:      c.Website,
			SocialHandle: c.SocialHandle,
			Rating:       c.Rating,
			ReviewCount:  c.ReviewCount,
			Source:       c.Source,
			Score:        scoring.ScoreCandidate(c),
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Error("failed to write output", "error", err)
		os.Exit(1)
	}
}
