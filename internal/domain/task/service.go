package task

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// Service handles task business logic
type Service struct {
	repo   Repository
	floors Floors
}

// NewService creates task service
func NewService(repo Repository, floors Floors) *Service {
	return &Service{repo: repo, floors: floors}
}

// buildPayload validates the per-type fields and returns the stored payload.
func buildPayload(req *CreateTaskRequest) (json.RawMessage, error) {
	switch Type(req.Type) {
	case TypeSubscribe:
		if req.ChannelID == "" {
			return nil, ErrInvalidPayload
		}
		return json.Marshal(SubscribePayload{ChannelID: req.ChannelID})
	case TypeView:
		if req.Link == "" {
			return nil, ErrInvalidPayload
		}
		return json.Marshal(ViewPayload{Link: req.Link})
	case TypeReaction:
		if req.Link == "" || req.Reaction == "" {
			return nil, ErrInvalidPayload
		}
		return json.Marshal(ReactionPayload{Link: req.Link, Reaction: req.Reaction})
	default:
		return nil, ErrInvalidPayload
	}
}

// Create persists a new task. creatorID 0 marks a platform-created task.
func (s *Service) Create(ctx context.Context, creatorID int64, req *CreateTaskRequest) (*Task, error) {
	payload, err := buildPayload(req)
	if err != nil {
		return nil, err
	}

	if req.Reward < s.floors.Floor(Type(req.Type)) {
		return nil, ErrRewardBelowFloor
	}

	t := &Task{
		Type:        Type(req.Type),
		Title:       req.Title,
		Description: req.Description,
		Reward:      req.Reward,
		Payload:     payload,
	}
	if creatorID > 0 {
		t.CreatedBy = sql.NullInt64{Int64: creatorID, Valid: true}
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	log.Info().
		Int64("task_id", t.ID).
		Str("type", string(t.Type)).
		Int64("reward", t.Reward).
		Int64("creator_id", creatorID).
		Msg("task created")

	return t, nil
}

// GetByID returns a task by ID
func (s *Service) GetByID(ctx context.Context, id int64) (*Task, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns tasks newest first
func (s *Service) List(ctx context.Context, limit, offset int) ([]*Task, int, error) {
	return s.repo.List(ctx, limit, offset)
}
