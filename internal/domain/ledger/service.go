package ledger

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// service implements the Service interface
type service struct {
	repo *Repository
}

// NewService creates a new ledger service
func NewService(repo *Repository) Service {
	return &service{repo: repo}
}

func (s *service) Reward(ctx context.Context, userID, amount int64, entryType EntryType, referenceID string) error {
	if err := s.repo.Reward(ctx, userID, amount, entryType, referenceID); err != nil {
		return err
	}
	logDelta(userID, amount, entryType, referenceID)
	return nil
}

func (s *service) RewardTx(ctx context.Context, tx *sqlx.Tx, userID, amount int64, entryType EntryType, referenceID string) error {
	if err := s.repo.RewardTx(ctx, tx, userID, amount, entryType, referenceID); err != nil {
		return err
	}
	logDelta(userID, amount, entryType, referenceID)
	return nil
}

func (s *service) Adjust(ctx context.Context, userID, amount int64, entryType EntryType, referenceID string) error {
	if err := s.repo.Adjust(ctx, userID, amount, entryType, referenceID); err != nil {
		return err
	}
	logDelta(userID, amount, entryType, referenceID)
	return nil
}

func (s *service) AdjustTx(ctx context.Context, tx *sqlx.Tx, userID, amount int64, entryType EntryType, referenceID string) error {
	if err := s.repo.AdjustTx(ctx, tx, userID, amount, entryType, referenceID); err != nil {
		return err
	}
	logDelta(userID, amount, entryType, referenceID)
	return nil
}

func (s *service) BalanceForUpdateTx(ctx context.Context, tx *sqlx.Tx, userID int64) (int64, error) {
	return s.repo.BalanceForUpdateTx(ctx, tx, userID)
}

func (s *service) Balance(ctx context.Context, userID int64) (int64, error) {
	return s.repo.Balance(ctx, userID)
}

func (s *service) History(ctx context.Context, userID int64, limit int) ([]Entry, error) {
	return s.repo.History(ctx, userID, limit)
}

func logDelta(userID, amount int64, entryType EntryType, referenceID string) {
	log.Info().
		Int64("user_id", userID).
		Int64("amount", amount).
		Str("type", string(entryType)).
		Str("reference", referenceID).
		Msg("Ledger entry applied")
}
