package admin

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Service manages the durable admin set. It satisfies the AdminChecker
// interfaces the middleware and review flow depend on.
type Service struct {
	repo Repository
}

// NewService creates admin service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// IsAdmin reports whether the user belongs to the admin set. The table is
// consulted on every call so revocation takes effect immediately.
func (s *Service) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	return s.repo.Exists(ctx, userID)
}

// Add grants admin rights to a user.
func (s *Service) Add(ctx context.Context, userID, addedBy int64) (*AdminUser, error) {
	a, err := s.repo.Create(ctx, userID, addedBy)
	if err != nil {
		return nil, err
	}

	log.Info().Int64("user_id", userID).Int64("added_by", addedBy).Msg("admin added")
	return a, nil
}

// Remove revokes admin rights.
func (s *Service) Remove(ctx context.Context, userID int64) error {
	if err := s.repo.Remove(ctx, userID); err != nil {
		return err
	}

	log.Info().Int64("user_id", userID).Msg("admin removed")
	return nil
}

// List returns the admin set, oldest grants first.
func (s *Service) List(ctx context.Context) ([]*AdminUser, error) {
	return s.repo.List(ctx)
}

// Seed inserts the bootstrap admins from configuration. Existing rows are
// left untouched, so repeated boots are harmless.
func (s *Service) Seed(ctx context.Context, userIDs []int64) error {
	if len(userIDs) == 0 {
		return nil
	}
	if err := s.repo.Seed(ctx, userIDs); err != nil {
		return err
	}

	log.Info().Int("count", len(userIDs)).Msg("bootstrap admins seeded")
	return nil
}
