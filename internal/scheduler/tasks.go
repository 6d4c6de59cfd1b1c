package scheduler

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const TaskEnrichLeads = "leads.enrich"

const TaskScoreLeads = "leads.score"

// LeadBatchPayload carries the lead IDs one task processes.
type LeadBatchPayload struct {
	LeadIDs []string `json:"leadIds"`
}

func NewEnrichLeadsTask(leadIDs []uuid.UUID) (*asynq.Task, error) {
	return newLeadBatchTask(TaskEnrichLeads, leadIDs)
}

func NewScoreLeadsTask(leadIDs []uuid.UUID) (*asynq.Task, error) {
	return newLeadBatchTask(TaskScoreLeads, leadIDs)
}

func newLeadBatchTask(taskType string, leadIDs []uuid.UUID) (*asynq.Task, error) {
	payload := LeadBatchPayload{LeadIDs: make([]string, 0, len(leadIDs))}
	for _, id := range leadIDs {
		payload.LeadIDs = append(payload.LeadIDs, id.String())
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskType, data), nil
}

// ParseLeadBatchPayload decodes a task payload into lead IDs. Malformed
// payloads are wrapped with asynq.SkipRetry since retrying cannot fix them.
func ParseLeadBatchPayload(task *asynq.Task) ([]uuid.UUID, error) {
	var payload LeadBatchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return nil, fmt.Errorf("decode %s payload: %v: %w", task.Type(), err, asynq.SkipRetry)
	}

	ids := make([]uuid.UUID, 0, len(payload.LeadIDs))
	for _, raw := range payload.LeadIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s payload: invalid lead id %q: %w", task.Type(), raw, asynq.SkipRetry)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
