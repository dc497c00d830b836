package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ameropro/stars-api/internal/domain/account"
)

// Repository owns balance mutation and the ledger audit trail. All
// writes go through apply: one transaction that locks the user row,
// records the entry, and settles referral/tier side effects.
type Repository struct {
	db              *sqlx.DB
	referralPercent int64
	tierThreshold   int64
}

// NewRepository creates the ledger repository with the reward policy
func NewRepository(db *sqlx.DB, referralPercent, tierThreshold int64) *Repository {
	return &Repository{
		db:              db,
		referralPercent: referralPercent,
		tierThreshold:   tierThreshold,
	}
}

// BeginTx starts a transaction for composite ledger operations
func (r *Repository) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
}

// lockedUser is the slice of the user row apply needs
type lockedUser struct {
	Balance    int64         `db:"balance"`
	Tier       int           `db:"tier"`
	ReferrerID sql.NullInt64 `db:"referrer_id"`
}

func (r *Repository) lockUser(ctx context.Context, tx *sqlx.Tx, userID int64) (*lockedUser, error) {
	var u lockedUser
	err := tx.GetContext(ctx, &u, `
		SELECT balance, tier, referrer_id FROM users WHERE id = $1 FOR UPDATE
	`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repository) entryAmountByRef(ctx context.Context, tx *sqlx.Tx, referenceID string) (int64, bool, error) {
	var amount int64
	err := tx.GetContext(ctx, &amount, `
		SELECT amount FROM ledger_entries WHERE reference_id = $1 LIMIT 1
	`, referenceID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return amount, true, nil
}

func (r *Repository) insertEntry(ctx context.Context, tx *sqlx.Tx, userID, amount int64, entryType EntryType, referenceID string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO ledger_entries (user_id, amount, type, reference_id)
		VALUES ($1, $2, $3, $4)
	`, userID, amount, string(entryType), referenceID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateReference
		}
		return err
	}
	return nil
}

// applyTx performs one delta inside an existing transaction. A repeated
// reference with the same amount is a no-op (safe retry); a repeated
// reference with a different amount is a conflict. Balance has no floor:
// clawbacks may push it negative.
func (r *Repository) applyTx(ctx context.Context, tx *sqlx.Tx, userID, amount int64, entryType EntryType, referenceID string, withReferral bool) error {
	if referenceID == "" {
		return fmt.Errorf("ledger apply: empty reference for user %d", userID)
	}

	u, err := r.lockUser(ctx, tx, userID)
	if err != nil {
		return err
	}

	existingAmount, exists, err := r.entryAmountByRef(ctx, tx, referenceID)
	if err != nil {
		return err
	}
	if exists {
		if existingAmount != amount {
			return ErrReferenceConflict
		}
		return nil
	}

	nextBalance := u.Balance + amount
	nextTier := u.Tier
	if nextBalance >= r.tierThreshold && nextTier < account.TierUpgraded {
		nextTier = account.TierUpgraded
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE users SET balance = $1, tier = $2, updated_at = now() WHERE id = $3
	`, nextBalance, nextTier, userID); err != nil {
		return err
	}

	if err := r.insertEntry(ctx, tx, userID, amount, entryType, referenceID); err != nil {
		if errors.Is(err, ErrDuplicateReference) {
			// Lost the insert race; accept only an exact replay.
			existingAmount, exists, checkErr := r.entryAmountByRef(ctx, tx, referenceID)
			if checkErr != nil {
				return checkErr
			}
			if !exists || existingAmount != amount {
				return ErrReferenceConflict
			}
			return nil
		}
		return err
	}

	if withReferral && amount > 0 && u.ReferrerID.Valid {
		bonus := ReferralBonus(amount, r.referralPercent)
		if bonus > 0 {
			// The bonus is a plain credit for the referrer: it never
			// cascades to the referrer's own referrer.
			if err := r.applyTx(ctx, tx, u.ReferrerID.Int64, bonus, EntryReferralBonus, referenceID+":ref", false); err != nil {
				return err
			}
		}
	}

	return nil
}

func (r *Repository) apply(ctx context.Context, userID, amount int64, entryType EntryType, referenceID string, withReferral bool) error {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := r.applyTx(ctx, tx, userID, amount, entryType, referenceID, withReferral); err != nil {
		return err
	}

	return tx.Commit()
}

// Reward applies a delta with the referral side effect on positive amounts
func (r *Repository) Reward(ctx context.Context, userID, amount int64, entryType EntryType, referenceID string) error {
	return r.apply(ctx, userID, amount, entryType, referenceID, true)
}

// RewardTx is Reward inside an external transaction
func (r *Repository) RewardTx(ctx context.Context, tx *sqlx.Tx, userID, amount int64, entryType EntryType, referenceID string) error {
	return r.applyTx(ctx, tx, userID, amount, entryType, referenceID, true)
}

// Adjust applies a delta without the referral side effect
func (r *Repository) Adjust(ctx context.Context, userID, amount int64, entryType EntryType, referenceID string) error {
	return r.apply(ctx, userID, amount, entryType, referenceID, false)
}

// AdjustTx is Adjust inside an external transaction
func (r *Repository) AdjustTx(ctx context.Context, tx *sqlx.Tx, userID, amount int64, entryType EntryType, referenceID string) error {
	return r.applyTx(ctx, tx, userID, amount, entryType, referenceID, false)
}

// BalanceForUpdateTx locks the user row and returns the balance. Used by
// flows that must check funds before holding them (withdrawals).
func (r *Repository) BalanceForUpdateTx(ctx context.Context, tx *sqlx.Tx, userID int64) (int64, error) {
	u, err := r.lockUser(ctx, tx, userID)
	if err != nil {
		return 0, err
	}
	return u.Balance, nil
}

// Balance returns the current balance
func (r *Repository) Balance(ctx context.Context, userID int64) (int64, error) {
	var balance int64
	err := r.db.GetContext(ctx, &balance, `SELECT balance FROM users WHERE id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	return balance, err
}

// History returns the most recent entries for a user
func (r *Repository) History(ctx context.Context, userID int64, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	entries := []Entry{}
	err := r.db.SelectContext(ctx, &entries, `
		SELECT * FROM ledger_entries
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("ledger history: %w", err)
	}
	return entries, nil
}
