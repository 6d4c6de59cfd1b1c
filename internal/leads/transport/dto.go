package transport

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type SearchLeadsRequest struct {
	Niche    string `form:"niche" validate:"required,min=1,max=100"`
	Location string `form:"location" validate:"required,min=1,max=100"`
	Country  string `form:"country" validate:"max=60"`
	Source   string `form:"source" validate:"omitempty,source_selector"`
	Save     bool   `form:"save"`
}

type LeadIDsRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1,max=200,dive,required"`
}

type UpdateStageRequest struct {
	Stage string `json:"stage" validate:"required,oneof=new contacted qualified proposal won lost"`
}

type ListLeadsRequest struct {
	Priority  *string `form:"priority" validate:"omitempty,oneof=hot warm cold"`
	Grade     *string `form:"grade" validate:"omitempty,oneof=A B C D F"`
	Source    *string `form:"source" validate:"omitempty,oneof=googleplaces yelp yell"`
	Stage     *string `form:"stage" validate:"omitempty,oneof=new contacted qualified proposal won lost"`
	MinScore  *int    `form:"minScore" validate:"omitempty,min=0,max=100"`
	Search    string  `form:"search" validate:"max=100"`
	Page      int     `form:"page" validate:"min=1"`
	PageSize  int     `form:"pageSize" validate:"min=1,max=100"`
	SortBy    string  `form:"sortBy" validate:"omitempty,oneof=createdAt updatedAt score businessName city reviewCount"`
	SortOrder string  `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

// Response DTOs

type CandidateResponse struct {
	BusinessName string   `json:"businessName"`
	Address      string   `json:"address,omitempty"`
	City         string   `json:"city,omitempty"`
	Country      string   `json:"country,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	Email        string   `json:"email,omitempty"`
	Website      string   `json:"website,omitempty"`
	SocialHandle string   `json:"socialHandle,omitempty"`
	Rating       *float64 `json:"rating,omitempty"`
	ReviewCount  *int     `json:"reviewCount,omitempty"`
	Source       string   `json:"source"`
}

type LeadResponse struct {
	ID uuid.UUID `json:"id"`
	CandidateResponse
	Score          *int            `json:"score,omitempty"`
	Grade          *string         `json:"grade,omitempty"`
	Priority       *string         `json:"priority,omitempty"`
	ScoreFactors   json.RawMessage `json:"scoreFactors,omitempty"`
	PipelineStage  string          `json:"pipelineStage"`
	GHLContactID   *string         `json:"ghlContactId,omitempty"`
	AuditScore     *int            `json:"auditScore,omitempty"`
	EnrichedAt     *time.Time      `json:"enrichedAt,omitempty"`
	ScoreUpdatedAt *time.Time      `json:"scoreUpdatedAt,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// SearchResponse carries ephemeral candidates, or persisted leads when the
// search was saved. Warnings lists per-source failures in all-sources mode.
type SearchResponse struct {
	Candidates      []CandidateResponse `json:"candidates,omitempty"`
	Leads           []LeadResponse      `json:"leads,omitempty"`
	PerSourceCounts map[string]int      `json:"perSourceCounts"`
	Warnings        []string            `json:"warnings"`
	Saved           bool                `json:"saved"`
}

type LeadListResponse struct {
	Items      []LeadResponse `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

type FieldResultResponse struct {
	Status string `json:"status"`
	Value  string `json:"value,omitempty"`
	Error  string `json:"error,omitempty"`
}

type EnrichmentResultResponse struct {
	LeadID       uuid.UUID           `json:"leadId"`
	Website      string              `json:"website,omitempty"`
	Skipped      bool                `json:"skipped"`
	Email        FieldResultResponse `json:"email"`
	Phone        FieldResultResponse `json:"phone"`
	SocialHandle FieldResultResponse `json:"socialHandle"`
	Updated      bool                `json:"updated"`
}

type EnrichResponse struct {
	Results  []EnrichmentResultResponse `json:"results"`
	NotFound []uuid.UUID                `json:"notFound"`
}

type ScoreFactorResponse struct {
	Name      string `json:"name"`
	Earned    int    `json:"earned"`
	Max       int    `json:"max"`
	Rationale string `json:"rationale"`
}

type ScoreResultResponse struct {
	LeadID   uuid.UUID             `json:"leadId"`
	Total    int                   `json:"total"`
	Grade    string                `json:"grade"`
	Priority string                `json:"priority"`
	Factors  []ScoreFactorResponse `json:"factors"`
	Version  string                `json:"version"`
}

type ScoreResponse struct {
	Results  []ScoreResultResponse `json:"results"`
	NotFound []uuid.UUID           `json:"notFound"`
}

type EnqueueResponse struct {
	Queued int `json:"queued"`
}
