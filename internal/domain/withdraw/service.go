package withdraw

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ameropro/stars-api/internal/domain/ledger"
)

const recentWindow = 24 * time.Hour

// Notifier interface for payout resolution notifications
type Notifier interface {
	NotifyWithdrawalResolved(ctx context.Context, userID, withdrawalID, amount int64, status string) error
}

// Service manages payout requests on the deduct-first model: the balance
// is held the moment the request is created, so an approved request moves
// no further money and a rejected one refunds the hold exactly once.
type Service struct {
	repo      Repository
	ledger    ledger.Service
	maxPerDay int

	notifier Notifier
}

// NewService creates withdrawal service
func NewService(repo Repository, ledgerSvc ledger.Service, maxPerDay int) *Service {
	return &Service{
		repo:      repo,
		ledger:    ledgerSvc,
		maxPerDay: maxPerDay,
	}
}

// SetNotifier sets the notifier (optional)
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// Create opens a payout request and holds the amount. The user row lock
// serializes concurrent requests, so the balance check and the rolling
// 24h count cannot be raced past.
func (s *Service) Create(ctx context.Context, userID, amount int64, kind Kind) (*Withdrawal, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	balance, err := s.ledger.BalanceForUpdateTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if amount > balance {
		return nil, ErrInsufficientBalance
	}

	recent, err := s.repo.CountRecentTx(ctx, tx, userID, recentWindow)
	if err != nil {
		return nil, err
	}
	if recent >= s.maxPerDay {
		return nil, ErrDailyLimit
	}

	w, err := s.repo.CreateTx(ctx, tx, userID, amount, kind)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.AdjustTx(ctx, tx, userID, -amount, ledger.EntryWithdrawal, Reference(w.ID)); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Info().
		Int64("withdrawal_id", w.ID).
		Int64("user_id", userID).
		Int64("amount", amount).
		Str("kind", string(kind)).
		Msg("withdrawal requested, funds held")

	return w, nil
}

// Approve finalizes a pending request. The money already left the balance
// at creation, so this only flips the status.
func (s *Service) Approve(ctx context.Context, id, adminID int64) (*Withdrawal, error) {
	w, err := s.repo.Resolve(ctx, id, StatusApproved, adminID)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("withdrawal_id", w.ID).
		Int64("admin_id", adminID).
		Msg("withdrawal approved")

	s.notifyResolved(w)
	return w, nil
}

// Reject refunds the hold and closes the request in one transaction. The
// pending-status guard inside Resolve makes the refund exactly-once even
// when two admins click at the same moment.
func (s *Service) Reject(ctx context.Context, id, adminID int64) (*Withdrawal, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	w, err := s.repo.ResolveTx(ctx, tx, id, StatusRejected, adminID)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.AdjustTx(ctx, tx, w.UserID, w.Amount, ledger.EntryWithdrawalRefund, RefundReference(w.ID)); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Info().
		Int64("withdrawal_id", w.ID).
		Int64("admin_id", adminID).
		Int64("amount", w.Amount).
		Msg("withdrawal rejected, funds returned")

	s.notifyResolved(w)
	return w, nil
}

// ListPending returns the admin review queue, oldest first.
func (s *Service) ListPending(ctx context.Context) ([]*Withdrawal, error) {
	return s.repo.ListPending(ctx)
}

func (s *Service) notifyResolved(w *Withdrawal) {
	if s.notifier == nil {
		return
	}
	userID, id, amount, status := w.UserID, w.ID, w.Amount, string(w.Status)
	go func() {
		_ = s.notifier.NotifyWithdrawalResolved(context.Background(), userID, id, amount, status)
	}()
}
