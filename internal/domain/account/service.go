package account

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Service handles account business logic
type Service struct {
	repo Repository
}

// NewService creates new account service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Ensure registers the user on first contact and refreshes the username on
// every later one. startParam is the raw deep-link payload from /start;
// an unparseable value simply means no referrer.
func (s *Service) Ensure(ctx context.Context, userID int64, username, startParam string) (*User, error) {
	referrerID, ok := ParseReferralParam(startParam)
	if ok && referrerID == userID {
		// Self-referral links circulate in the wild; drop silently.
		referrerID = 0
	}

	if err := s.repo.Ensure(ctx, userID, username, referrerID); err != nil {
		return nil, fmt.Errorf("ensure user %d: %w", userID, err)
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if ok && u.HasReferrer() && u.ReferrerID.Int64 == referrerID {
		log.Info().
			Int64("user_id", userID).
			Int64("referrer_id", referrerID).
			Msg("User has referrer")
	}

	return u, nil
}

// Get returns the user profile
func (s *Service) Get(ctx context.Context, userID int64) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}

// Referrals returns how many users this user has referred
func (s *Service) Referrals(ctx context.Context, userID int64) (int, error) {
	return s.repo.CountReferrals(ctx, userID)
}

// ListIDs returns every known user ID (broadcast support)
func (s *Service) ListIDs(ctx context.Context) ([]int64, error) {
	return s.repo.ListIDs(ctx)
}

// Stats returns the admin dashboard aggregate
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.Stats(ctx)
}
