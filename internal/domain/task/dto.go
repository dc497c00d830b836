package task

import (
	"encoding/json"
	"time"
)

// CreateTaskRequest for POST /tasks
type CreateTaskRequest struct {
	Type        string `json:"type" validate:"required,task_type"`
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	Reward      int64  `json:"reward" validate:"required,gt=0"`

	// Payload fields, required per type: subscribe needs channel_id,
	// view needs link, reaction needs link and reaction.
	ChannelID string `json:"channel_id" validate:"omitempty,max=128"`
	Link      string `json:"link" validate:"omitempty,max=512"`
	Reaction  string `json:"reaction" validate:"omitempty,max=32"`
}

// TaskResponse represents a task in API responses
type TaskResponse struct {
	ID          int64     `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Reward      int64     `json:"reward"`
	ChannelID   string    `json:"channel_id,omitempty"`
	Link        string    `json:"link,omitempty"`
	Reaction    string    `json:"reaction,omitempty"`
	CreatedBy   *int64    `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// TaskResponseFromEntity converts entity to response DTO
func TaskResponseFromEntity(t *Task) *TaskResponse {
	resp := &TaskResponse{
		ID:          t.ID,
		Type:        string(t.Type),
		Title:       t.Title,
		Description: t.Description,
		Reward:      t.Reward,
		CreatedAt:   t.CreatedAt,
	}
	if t.CreatedBy.Valid {
		resp.CreatedBy = &t.CreatedBy.Int64
	}

	switch t.Type {
	case TypeSubscribe:
		var p SubscribePayload
		if err := json.Unmarshal(t.Payload, &p); err == nil {
			resp.ChannelID = p.ChannelID
		}
	case TypeView:
		var p ViewPayload
		if err := json.Unmarshal(t.Payload, &p); err == nil {
			resp.Link = p.Link
		}
	case TypeReaction:
		var p ReactionPayload
		if err := json.Unmarshal(t.Payload, &p); err == nil {
			resp.Link = p.Link
			resp.Reaction = p.Reaction
		}
	}
	return resp
}
