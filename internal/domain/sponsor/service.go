package sponsor

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/ameropro/stars-api/internal/pkg/telegram"
)

// Service manages the sponsor gate: the channel list and the per-user
// membership check the bot runs before serving anyone.
type Service struct {
	repo     Repository
	verifier telegram.Checker
}

// NewService creates sponsor service
func NewService(repo Repository, verifier telegram.Checker) *Service {
	return &Service{repo: repo, verifier: verifier}
}

// Add registers a sponsor channel. Re-adding refreshes the title.
func (s *Service) Add(ctx context.Context, chatID, title string) (*Channel, error) {
	c := &Channel{ChatID: chatID, Title: title}
	if err := s.repo.Upsert(ctx, c); err != nil {
		return nil, err
	}

	log.Info().Str("chat_id", chatID).Msg("sponsor channel added")
	return c, nil
}

// Remove drops a sponsor channel.
func (s *Service) Remove(ctx context.Context, chatID string) error {
	if err := s.repo.Remove(ctx, chatID); err != nil {
		return err
	}

	log.Info().Str("chat_id", chatID).Msg("sponsor channel removed")
	return nil
}

// List returns all sponsor channels.
func (s *Service) List(ctx context.Context) ([]*Channel, error) {
	return s.repo.List(ctx)
}

// CheckUser returns the sponsor channels the user has not joined yet. A
// channel whose membership cannot be verified counts as not joined.
func (s *Service) CheckUser(ctx context.Context, userID int64) ([]*Channel, error) {
	channels, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	missing := []*Channel{}
	for _, c := range channels {
		membership, err := s.verifier.IsMember(ctx, c.ChatID, userID)
		if err != nil {
			log.Warn().
				Err(err).
				Str("chat_id", c.ChatID).
				Int64("user_id", userID).
				Msg("sponsor membership check unavailable, treating as not joined")
		}
		if membership != telegram.Member {
			missing = append(missing, c)
		}
	}
	return missing, nil
}
