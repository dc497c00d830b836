package promo

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ameropro/stars-api/internal/domain/ledger"
)

// Granted is what a successful redemption paid out.
type Granted struct {
	Code   string
	Amount int64
}

// Service redeems and administers promo codes. Redemption is one
// transaction around the code row lock, so the uses counter and the
// per-user activation cannot diverge from the credited balance.
type Service struct {
	repo   Repository
	ledger ledger.Service
}

// NewService creates promo service
func NewService(repo Repository, ledgerSvc ledger.Service) *Service {
	return &Service{repo: repo, ledger: ledgerSvc}
}

// Create registers a new code. The code is stored uppercase; redeem
// normalizes the same way, so user input is case-insensitive.
func (s *Service) Create(ctx context.Context, code string, reward int64, expiresAt *time.Time, usesLeft *int64) (*Promo, error) {
	p := &Promo{Code: Normalize(code), Reward: reward}
	if expiresAt != nil {
		p.ExpiresAt = sql.NullTime{Time: *expiresAt, Valid: true}
	}
	if usesLeft != nil {
		p.UsesLeft = sql.NullInt64{Int64: *usesLeft, Valid: true}
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	log.Info().
		Int64("promo_id", p.ID).
		Str("code", p.Code).
		Int64("reward", reward).
		Msg("promo code created")

	return p, nil
}

// Redeem grants the code's reward to the user once. Expiry and exhaustion
// are terminal; a second redemption by the same user is ErrAlreadyUsed no
// matter how many uses remain.
func (s *Service) Redeem(ctx context.Context, userID int64, code string) (*Granted, error) {
	normalized := Normalize(code)
	if normalized == "" {
		return nil, ErrNotFound
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	p, err := s.repo.GetByCodeForUpdateTx(ctx, tx, normalized)
	if err != nil {
		return nil, err
	}
	if p.Expired(time.Now()) {
		return nil, ErrExpired
	}
	if p.Exhausted() {
		return nil, ErrExhausted
	}

	if err := s.repo.InsertActivationTx(ctx, tx, p.ID, userID); err != nil {
		return nil, err
	}
	if err := s.repo.DecrementUsesTx(ctx, tx, p.ID); err != nil {
		return nil, err
	}
	if err := s.ledger.AdjustTx(ctx, tx, userID, p.Reward, ledger.EntryPromoCode, Reference(p.ID, userID)); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Info().
		Int64("promo_id", p.ID).
		Int64("user_id", userID).
		Int64("reward", p.Reward).
		Msg("promo code redeemed")

	return &Granted{Code: p.Code, Amount: p.Reward}, nil
}
