// Package service is the lead pipeline's invocation surface: search (with
// optional persistence), enrichment, scoring, and lead management.
package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"leadgen_backend/internal/leads/domain"
	"leadgen_backend/internal/leads/orchestrator"
	"leadgen_backend/internal/leads/repository"
	"leadgen_backend/internal/leads/scoring"
	"leadgen_backend/internal/leads/transport"
	"leadgen_backend/platform/apperr"
	"leadgen_backend/platform/logger"

	"github.com/google/uuid"
)

const msgLeadNotFound = "lead not found"

// Searcher runs provider searches.
type Searcher interface {
	Search(ctx context.Context, req orchestrator.Request) (*orchestrator.Result, error)
}

// Repository is the persistence the service needs.
type Repository interface {
	Upsert(ctx context.Context, c domain.LeadCandidate) (domain.NormalizedLead, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.NormalizedLead, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.NormalizedLead, error)
	List(ctx context.Context, params repository.ListParams) ([]domain.NormalizedLead, int, error)
	ApplyEnrichment(ctx context.Context, id uuid.UUID, update repository.EnrichmentUpdate) (domain.NormalizedLead, error)
	UpdateStage(ctx context.Context, id uuid.UUID, stage string) (domain.NormalizedLead, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Enricher crawls lead websites.
type Enricher interface {
	EnrichBatch(ctx context.Context, leads []domain.LeadCandidate, concurrencyLimit int) []domain.EnrichmentResult
	Concurrency() int
}

// Rescorer recomputes and stores lead scores.
type Rescorer interface {
	Rescore(ctx context.Context, lead domain.NormalizedLead) (scoring.Result, error)
	RescoreIDs(ctx context.Context, ids []uuid.UUID) ([]scoring.LeadScore, []uuid.UUID, error)
}

// TaskEnqueuer schedules background enrichment and rescoring.
type TaskEnqueuer interface {
	EnqueueEnrichLeads(ctx context.Context, leadIDs []uuid.UUID) error
	EnqueueScoreLeads(ctx context.Context, leadIDs []uuid.UUID) error
}

// DigestNotifier announces hot leads from a saved search.
type DigestNotifier interface {
	SendHotLeadDigest(ctx context.Context, query string, leads []domain.NormalizedLead) error
}

type Service struct {
	searcher Searcher
	repo     Repository
	enricher Enricher
	scorer   Rescorer
	tasks    TaskEnqueuer
	digest   DigestNotifier
	log      *logger.Logger
}

// Option configures optional collaborators.
type Option func(*Service)

// WithTaskEnqueuer enables asynchronous enrichment and rescoring.
func WithTaskEnqueuer(tasks TaskEnqueuer) Option {
	return func(s *Service) { s.tasks = tasks }
}

// WithDigestNotifier enables the hot-lead digest after saved searches.
func WithDigestNotifier(digest DigestNotifier) Option {
	return func(s *Service) { s.digest = digest }
}

func New(searcher Searcher, repo Repository, enricher Enricher, scorer Rescorer, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		searcher: searcher,
		repo:     repo,
		enricher: enricher,
		scorer:   scorer,
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search runs a provider search. With Save set, every candidate is upserted
// and scored, and the persisted leads are returned instead of candidates.
func (s *Service) Search(ctx context.Context, req transport.SearchLeadsRequest) (transport.SearchResponse, error) {
	result, err := s.searcher.Search(ctx, orchestrator.Request{
		Niche:    req.Niche,
		Location: req.Location,
		Country:  req.Country,
		Source:   req.Source,
	})
	if err != nil {
		return transport.SearchResponse{}, err
	}

	resp := transport.SearchResponse{
		PerSourceCounts: result.PerSourceCounts,
		Warnings:        result.Errors,
		Saved:           req.Save,
	}
	if !req.Save {
		resp.Candidates = make([]transport.CandidateResponse, 0, len(result.Leads))
		for _, c := range result.Leads {
			resp.Candidates = append(resp.Candidates, toCandidateResponse(c))
		}
		return resp, nil
	}

	saved := make([]domain.NormalizedLead, 0, len(result.Leads))
	for _, c := range result.Leads {
		lead, err := s.persist(ctx, c)
		if err != nil {
			return transport.SearchResponse{}, err
		}
		saved = append(saved, lead)
	}

	resp.Leads = toLeadResponses(saved)
	s.notifyHotLeads(ctx, req, saved)
	return resp, nil
}

func (s *Service) persist(ctx context.Context, c domain.LeadCandidate) (domain.NormalizedLead, error) {
	lead, err := s.repo.Upsert(ctx, c)
	if err != nil {
		s.log.DatabaseError("upsert_lead", err)
		return domain.NormalizedLead{}, err
	}
	result, err := s.scorer.Rescore(ctx, lead)
	if err != nil {
		s.log.DatabaseError("score_lead", err)
		return domain.NormalizedLead{}, err
	}
	return withScore(lead, result), nil
}

func (s *Service) notifyHotLeads(ctx context.Context, req transport.SearchLeadsRequest, leads []domain.NormalizedLead) {
	if s.digest == nil {
		return
	}
	hot := make([]domain.NormalizedLead, 0)
	for _, lead := range leads {
		if lead.Priority != nil && *lead.Priority == domain.PriorityHot {
			hot = append(hot, lead)
		}
	}
	if len(hot) == 0 {
		return
	}
	query := strings.TrimSpace(req.Niche + " in " + req.Location)
	if err := s.digest.SendHotLeadDigest(ctx, query, hot); err != nil {
		s.log.Warn("hot lead digest failed", "error", err, "hotLeads", len(hot))
	}
}

// Enrich crawls the websites of the given leads, stores newly found contact
// fields (empty fields only), and rescores every lead that changed.
func (s *Service) Enrich(ctx context.Context, ids []uuid.UUID) (transport.EnrichResponse, error) {
	leads, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return transport.EnrichResponse{}, err
	}

	candidates := make([]domain.LeadCandidate, len(leads))
	for i, lead := range leads {
		candidates[i] = lead.LeadCandidate
	}
	results := s.enricher.EnrichBatch(ctx, candidates, s.enricher.Concurrency())

	resp := transport.EnrichResponse{
		Results:  make([]transport.EnrichmentResultResponse, 0, len(leads)),
		NotFound: missingIDs(ids, leads),
	}
	for i, lead := range leads {
		updated, err := s.storeEnrichment(ctx, lead, results[i])
		if err != nil {
			return transport.EnrichResponse{}, err
		}
		resp.Results = append(resp.Results, toEnrichmentResultResponse(lead.ID, results[i], updated))
	}
	return resp, nil
}

// storeEnrichment persists one result and rescores the lead when a field was filled.
func (s *Service) storeEnrichment(ctx context.Context, lead domain.NormalizedLead, result domain.EnrichmentResult) (bool, error) {
	if result.Skipped {
		return false, nil
	}

	stored, err := s.repo.ApplyEnrichment(ctx, lead.ID, repository.EnrichmentUpdate{
		Email:        foundValue(result.Email),
		Phone:        foundValue(result.Phone),
		SocialHandle: foundValue(result.SocialHandle),
	})
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		s.log.DatabaseError("apply_enrichment", err)
		return false, err
	}

	changed := stored.Email != lead.Email || stored.Phone != lead.Phone || stored.SocialHandle != lead.SocialHandle
	if !changed {
		return false, nil
	}
	if _, err := s.scorer.Rescore(ctx, stored); err != nil {
		s.log.DatabaseError("score_lead", err)
		return true, err
	}
	return true, nil
}

// EnqueueEnrich schedules enrichment in the background.
func (s *Service) EnqueueEnrich(ctx context.Context, ids []uuid.UUID) (transport.EnqueueResponse, error) {
	if s.tasks == nil {
		return transport.EnqueueResponse{}, apperr.Unavailable("background tasks are not configured")
	}
	if err := s.tasks.EnqueueEnrichLeads(ctx, ids); err != nil {
		return transport.EnqueueResponse{}, apperr.Wrap(apperr.KindUnavailable, "failed to enqueue enrichment", err)
	}
	return transport.EnqueueResponse{Queued: len(ids)}, nil
}

// EnqueueScore schedules rescoring in the background.
func (s *Service) EnqueueScore(ctx context.Context, ids []uuid.UUID) (transport.EnqueueResponse, error) {
	if s.tasks == nil {
		return transport.EnqueueResponse{}, apperr.Unavailable("background tasks are not configured")
	}
	if err := s.tasks.EnqueueScoreLeads(ctx, ids); err != nil {
		return transport.EnqueueResponse{}, apperr.Wrap(apperr.KindUnavailable, "failed to enqueue scoring", err)
	}
	return transport.EnqueueResponse{Queued: len(ids)}, nil
}

// Score recomputes score, grade, and priority for the given leads.
func (s *Service) Score(ctx context.Context, ids []uuid.UUID) (transport.ScoreResponse, error) {
	scores, missing, err := s.scorer.RescoreIDs(ctx, ids)
	if err != nil {
		return transport.ScoreResponse{}, err
	}
	resp := transport.ScoreResponse{
		Results:  make([]transport.ScoreResultResponse, 0, len(scores)),
		NotFound: missing,
	}
	for _, sc := range scores {
		resp.Results = append(resp.Results, toScoreResultResponse(sc.LeadID, sc.Result))
	}
	return resp, nil
}

func (s *Service) List(ctx context.Context, req transport.ListLeadsRequest) (transport.LeadListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}

	leads, total, err := s.repo.List(ctx, repository.ListParams{
		Priority:  req.Priority,
		Grade:     req.Grade,
		Source:    req.Source,
		Stage:     req.Stage,
		MinScore:  req.MinScore,
		Search:    strings.TrimSpace(req.Search),
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
		Limit:     req.PageSize,
		Offset:    (req.Page - 1) * req.PageSize,
	})
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	return transport.LeadListResponse{
		Items:      toLeadResponses(leads),
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: int(math.Ceil(float64(total) / float64(req.PageSize))),
	}, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, mapNotFound(err)
	}
	return toLeadResponse(lead), nil
}

func (s *Service) UpdateStage(ctx context.Context, id uuid.UUID, stage string) (transport.LeadResponse, error) {
	if !domain.IsKnownPipelineStage(stage) {
		return transport.LeadResponse{}, apperr.Validation("unknown pipeline stage")
	}
	lead, err := s.repo.UpdateStage(ctx, id, stage)
	if err != nil {
		return transport.LeadResponse{}, mapNotFound(err)
	}
	return toLeadResponse(lead), nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return mapNotFound(s.repo.Delete(ctx, id))
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msgLeadNotFound)
	}
	return err
}

func missingIDs(requested []uuid.UUID, leads []domain.NormalizedLead) []uuid.UUID {
	found := make(map[uuid.UUID]struct{}, len(leads))
	for _, lead := range leads {
		found[lead.ID] = struct{}{}
	}
	missing := make([]uuid.UUID, 0)
	for _, id := range requested {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

func foundValue(r domain.FieldResult) string {
	if r.Status == domain.StatusFound {
		return r.Value
	}
	return ""
}

func withScore(lead domain.NormalizedLead, result scoring.Result) domain.NormalizedLead {
	total := result.Total
	grade := result.Grade
	priority := result.Priority
	lead.Score = &total
	lead.Grade = &grade
	lead.Priority = &priority
	if factors, err := result.FactorsJSON(); err == nil {
		lead.ScoreFactors = factors
	}
	return lead
}
