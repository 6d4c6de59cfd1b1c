// Package domain holds the lead pipeline's core types: provider candidates,
// persisted leads, enrichment outcomes, and pipeline stages.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SourceID identifies the external provider a candidate came from.
type SourceID string

const (
	SourceGooglePlaces SourceID = "googleplaces"
	SourceYelp         SourceID = "yelp"
	SourceYell         SourceID = "yell"
)

// SourceAll selects every registered adapter in best-effort mode.
const SourceAll = "all"

// LeadCandidate is an ephemeral, provider-sourced business record.
// Optional numeric fields are nil when the provider did not report them.
type LeadCandidate struct {
	BusinessName string
	Address      string
	City         string
	Country      string
	Phone        string
	Email        string
	Website      string
	SocialHandle string
	Rating       *float64
	ReviewCount  *int
	Source       SourceID
}

// NeedsEnrichment reports whether a website crawl could fill a contact gap.
func (c LeadCandidate) NeedsEnrichment() bool {
	if strings.TrimSpace(c.Website) == "" {
		return false
	}
	return strings.TrimSpace(c.Email) == "" || strings.TrimSpace(c.SocialHandle) == ""
}

// Grade is the letter classification of a score.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// Priority drives outreach ordering.
type Priority string

const (
	PriorityHot  Priority = "hot"
	PriorityWarm Priority = "warm"
	PriorityCold Priority = "cold"
)

// NormalizedLead is the persisted, canonical form of a candidate.
// (BusinessName, Source) is the upsert identity.
type NormalizedLead struct {
	ID uuid.UUID
	LeadCandidate

	Score         *int
	Grade         *Grade
	Priority      *Priority
	ScoreFactors  []byte
	PipelineStage string
	GHLContactID  *string
	// AuditScore is the latest website-quality audit result, written by the audit collaborator.
	AuditScore *int

	EnrichedAt     *time.Time
	ScoreUpdatedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
