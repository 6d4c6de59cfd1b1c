// Package leads provides the lead pipeline bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"leadgen_backend/internal/enrichment"
	apphttp "leadgen_backend/internal/http"
	"leadgen_backend/internal/leads/handler"
	"leadgen_backend/internal/leads/orchestrator"
	"leadgen_backend/internal/leads/repository"
	"leadgen_backend/internal/leads/scoring"
	"leadgen_backend/internal/leads/service"
	"leadgen_backend/internal/sources"
	"leadgen_backend/internal/sources/providers"
	"leadgen_backend/platform/config"
	"leadgen_backend/platform/httpkit"
	"leadgen_backend/platform/logger"
	"leadgen_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config combines the settings the lead pipeline reads.
type Config interface {
	config.SourcesConfig
	config.EnrichmentConfig
}

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler     *handler.Handler
	service     *service.Service
	searchLimit *httpkit.IPRateLimiter
}

// NewModule creates and initializes the leads module with all its dependencies.
// cache may be nil, in which case provider results are not cached.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, cfg Config, cache *sources.Cache, log *logger.Logger, opts ...service.Option) (*Module, error) {
	if err := handler.RegisterValidations(val); err != nil {
		return nil, err
	}

	svc, err := NewService(pool, cfg, cache, log, opts...)
	if err != nil {
		return nil, err
	}

	return &Module{
		handler:     handler.New(svc, val),
		service:     svc,
		searchLimit: httpkit.NewSearchRateLimiter(log),
	}, nil
}

// NewService builds the lead service without the HTTP layer. Used by the
// worker and CLIs.
func NewService(pool *pgxpool.Pool, cfg Config, cache *sources.Cache, log *logger.Logger, opts ...service.Option) (*service.Service, error) {
	repo := repository.New(pool)

	enricher, err := enrichment.NewFromConfig(cfg, log)
	if err != nil {
		return nil, err
	}

	registry := providers.Build(cfg, cache, log)
	searcher := orchestrator.New(registry, cfg.GetDefaultCountry(), log)
	scorer := scoring.NewService(repo, log)

	return service.New(searcher, repo, enricher, scorer, log, opts...), nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the lead service for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	leadsGroup := ctx.V1.Group("/leads")
	m.handler.RegisterRoutes(leadsGroup, m.searchLimit.RateLimit())
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
