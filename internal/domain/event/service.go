package event

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ameropro/stars-api/internal/domain/ledger"
)

// Outcome classifies how a delivery was settled. The string is the
// plain-text body the provider sees, one distinct token per class so their
// monitoring can tell the outcomes apart.
type Outcome string

const (
	OutcomeTaskPaid  Outcome = "ok task"
	OutcomeSubPaid   Outcome = "ok sub"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeCooldown  Outcome = "cooldown"
)

// Inbound is one provider delivery after JSON decode. Reward is optional;
// nil falls back to the per-type configured default.
type Inbound struct {
	EventID string `json:"event_id"`
	UserID  int64  `json:"user_id"`
	Type    Type   `json:"type"`
	Reward  *int64 `json:"reward"`
}

// Rewards is the grant policy for offerwall events.
type Rewards struct {
	Task             int64
	Subscription     int64
	SubReferralBonus int64
	Cooldown         time.Duration
}

// Accounts upserts users the provider reports before we have seen them
// through any other surface.
type Accounts interface {
	Ensure(ctx context.Context, id int64, username string, referrerID int64) error
}

// Service settles offerwall deliveries: one transaction per event, the
// unique event_id as the idempotency token, and a daily cooldown on
// subscription grants.
type Service struct {
	repo     Repository
	ledger   ledger.Service
	accounts Accounts
	rewards  Rewards
}

// NewService creates event service
func NewService(repo Repository, ledgerSvc ledger.Service, accounts Accounts, rewards Rewards) *Service {
	return &Service{
		repo:     repo,
		ledger:   ledgerSvc,
		accounts: accounts,
		rewards:  rewards,
	}
}

// Process settles one delivery. Unknown users are created first, the way
// the bot creates them on first contact.
func (s *Service) Process(ctx context.Context, in Inbound) (Outcome, error) {
	reward := s.defaultReward(in.Type)
	if in.Reward != nil {
		reward = *in.Reward
	}

	if err := s.accounts.Ensure(ctx, in.UserID, fmt.Sprintf("user_%d", in.UserID), 0); err != nil {
		return "", err
	}

	switch in.Type {
	case TypeTask:
		return s.settleTask(ctx, in.EventID, in.UserID, reward)
	case TypeSubscription:
		return s.settleSubscription(ctx, in.EventID, in.UserID, reward)
	default:
		return "", fmt.Errorf("event service: unknown type %q", in.Type)
	}
}

func (s *Service) defaultReward(t Type) int64 {
	if t == TypeSubscription {
		return s.rewards.Subscription
	}
	return s.rewards.Task
}

func (s *Service) settleTask(ctx context.Context, eventID string, userID, reward int64) (Outcome, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	fresh, err := s.repo.RecordIfNewTx(ctx, tx, &Event{EventID: eventID, UserID: userID, Type: TypeTask, Reward: reward})
	if err != nil {
		return "", err
	}
	if !fresh {
		return OutcomeDuplicate, nil
	}

	if reward > 0 {
		if err := s.ledger.AdjustTx(ctx, tx, userID, reward, ledger.EntryEventReward, Reference(eventID)); err != nil {
			return "", err
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}

	log.Info().
		Str("event_id", eventID).
		Int64("user_id", userID).
		Int64("reward", reward).
		Msg("offerwall task settled")

	return OutcomeTaskPaid, nil
}

// settleSubscription locks the user row before the cooldown check so two
// deliveries for the same user decide the window one after the other; the
// second sees the first one's stamp.
func (s *Service) settleSubscription(ctx context.Context, eventID string, userID, reward int64) (Outcome, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := s.ledger.BalanceForUpdateTx(ctx, tx, userID); err != nil {
		return "", err
	}

	elapsed, err := s.repo.CooldownElapsedTx(ctx, tx, userID, SubscriptionCooldown, s.rewards.Cooldown)
	if err != nil {
		return "", err
	}
	if !elapsed {
		reward = 0
	}

	fresh, err := s.repo.RecordIfNewTx(ctx, tx, &Event{EventID: eventID, UserID: userID, Type: TypeSubscription, Reward: reward})
	if err != nil {
		return "", err
	}
	if !fresh {
		return OutcomeDuplicate, nil
	}

	if !elapsed {
		if err := tx.Commit(); err != nil {
			return "", err
		}
		log.Info().
			Str("event_id", eventID).
			Int64("user_id", userID).
			Msg("offerwall subscription on cooldown, recorded without grant")
		return OutcomeCooldown, nil
	}

	if reward > 0 {
		if err := s.ledger.AdjustTx(ctx, tx, userID, reward, ledger.EntryEventReward, Reference(eventID)); err != nil {
			return "", err
		}
	}
	if err := s.repo.StampCooldownTx(ctx, tx, userID, SubscriptionCooldown); err != nil {
		return "", err
	}

	referrerID, err := s.repo.ReferrerTx(ctx, tx, userID)
	if err != nil {
		return "", err
	}
	if referrerID > 0 && s.rewards.SubReferralBonus > 0 {
		err := s.ledger.AdjustTx(ctx, tx, referrerID, s.rewards.SubReferralBonus, ledger.EntryReferralBonus, ReferralReference(eventID))
		if err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}

	log.Info().
		Str("event_id", eventID).
		Int64("user_id", userID).
		Int64("reward", reward).
		Int64("referrer_id", referrerID).
		Msg("offerwall subscription settled")

	return OutcomeSubPaid, nil
}
