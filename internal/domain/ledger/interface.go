package ledger

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Service is the Reward Engine surface the rest of the system consumes.
// Reward carries the referral side effect; Adjust does not. The Tx
// variants compose into caller-owned transactions so that multi-step
// mutations (redeem-and-credit, dedup-and-reward, hold-and-request)
// commit or vanish as one.
type Service interface {
	Reward(ctx context.Context, userID, amount int64, entryType EntryType, referenceID string) error
	RewardTx(ctx context.Context, tx *sqlx.Tx, userID, amount int64, entryType EntryType, referenceID string) error

	Adjust(ctx context.Context, userID, amount int64, entryType EntryType, referenceID string) error
	AdjustTx(ctx context.Context, tx *sqlx.Tx, userID, amount int64, entryType EntryType, referenceID string) error

	// BalanceForUpdateTx locks the user row for the rest of the
	// transaction and returns the current balance.
	BalanceForUpdateTx(ctx context.Context, tx *sqlx.Tx, userID int64) (int64, error)

	Balance(ctx context.Context, userID int64) (int64, error)
	History(ctx context.Context, userID int64, limit int) ([]Entry, error)
}
