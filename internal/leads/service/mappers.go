package service

import (
	"encoding/json"

	"leadgen_backend/internal/leads/domain"
	"leadgen_backend/internal/leads/scoring"
	"leadgen_backend/internal/leads/transport"

	"github.com/google/uuid"
)

func toCandidateResponse(c domain.LeadCandidate) transport.CandidateResponse {
	return transport.CandidateResponse{
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
		Source:       string(c.Source),
	}
}

func toLeadResponse(lead domain.NormalizedLead) transport.LeadResponse {
	resp := transport.LeadResponse{
		ID:                lead.ID,
		CandidateResponse: toCandidateResponse(lead.LeadCandidate),
		Score:             lead.Score,
		PipelineStage:     lead.PipelineStage,
		GHLContactID:      lead.GHLContactID,
		AuditScore:        lead.AuditScore,
		EnrichedAt:        lead.EnrichedAt,
		ScoreUpdatedAt:    lead.ScoreUpdatedAt,
		CreatedAt:         lead.CreatedAt,
		UpdatedAt:         lead.UpdatedAt,
	}
	if lead.Grade != nil {
		grade := string(*lead.Grade)
		resp.Grade = &grade
	}
	if lead.Priority != nil {
		priority := string(*lead.Priority)
		resp.Priority = &priority
	}
	if len(lead.ScoreFactors) > 0 && json.Valid(lead.ScoreFactors) {
		resp.ScoreFactors = json.RawMessage(lead.ScoreFactors)
	}
	return resp
}

func toLeadResponses(leads []domain.NormalizedLead) []transport.LeadResponse {
	out := make([]transport.LeadResponse, 0, len(leads))
	for _, lead := range leads {
		out = append(out, toLeadResponse(lead))
	}
	return out
}

func toFieldResultResponse(r domain.FieldResult) transport.FieldResultResponse {
	return transport.FieldResultResponse{Status: string(r.Status), Value: r.Value, Error: r.Err}
}

func toEnrichmentResultResponse(id uuid.UUID, r domain.EnrichmentResult, updated bool) transport.EnrichmentResultResponse {
	return transport.EnrichmentResultResponse{
		LeadID:       id,
		Website:      r.Website,
		Skipped:      r.Skipped,
		Email:        toFieldResultResponse(r.Email),
		Phone:        toFieldResultResponse(r.Phone),
		SocialHandle: toFieldResultResponse(r.SocialHandle),
		Updated:      updated,
	}
}

func toScoreResultResponse(id uuid.UUID, r scoring.Result) transport.ScoreResultResponse {
	factors := make([]transport.ScoreFactorResponse, 0, len(r.Factors))
	for _, f := range r.Factors {
		factors = append(factors, transport.ScoreFactorResponse{
			Name:      f.Name,
			Earned:    f.Earned,
			Max:       f.Max,
			Rationale: f.Rationale,
		})
	}
	return transport.ScoreResultResponse{
		LeadID:   id,
		Total:    r.Total,
		Grade:    string(r.Grade),
		Priority: string(r.Priority),
		Factors:  factors,
		Version:  r.Version,
	}
}
