package event

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Repository defines offerwall event data access. Everything runs inside
// the caller's transaction: one delivery settles atomically or not at all.
type Repository interface {
	// RecordIfNewTx inserts the delivery and reports false when its
	// event_id was seen before. The unique index makes the check-and-insert
	// atomic under concurrent redeliveries.
	RecordIfNewTx(ctx context.Context, tx *sqlx.Tx, e *Event) (bool, error)
	// CooldownElapsedTx locks the user's cooldown row for the rest of the
	// transaction and reports whether the window has passed. A user with no
	// row yet has no cooldown.
	CooldownElapsedTx(ctx context.Context, tx *sqlx.Tx, userID int64, class string, window time.Duration) (bool, error)
	StampCooldownTx(ctx context.Context, tx *sqlx.Tx, userID int64, class string) error
	// ReferrerTx returns the user's referrer id, 0 when they have none.
	ReferrerTx(ctx context.Context, tx *sqlx.Tx, userID int64) (int64, error)
	BeginTx(ctx context.Context) (*sqlx.Tx, error)
}

// repository implements Repository
type repository struct {
	db *sqlx.DB
}

// NewRepository creates new event repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) RecordIfNewTx(ctx context.Context, tx *sqlx.Tx, e *Event) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO offerwall_events (event_id, user_id, type, reward)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id) DO NOTHING
	`, e.EventID, e.UserID, e.Type, e.Reward)
	if err != nil {
		return false, fmt.Errorf("event repository record: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("event repository record: %w", err)
	}
	return rows == 1, nil
}

func (r *repository) CooldownElapsedTx(ctx context.Context, tx *sqlx.Tx, userID int64, class string, window time.Duration) (bool, error) {
	var lastGrantedAt time.Time
	err := tx.GetContext(ctx, &lastGrantedAt, `
		SELECT last_granted_at FROM daily_cooldowns
		WHERE user_id = $1 AND class = $2
		FOR UPDATE
	`, userID, class)
	if errors.Is(err, sql.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("event repository cooldown check: %w", err)
	}
	return time.Since(lastGrantedAt) >= window, nil
}

func (r *repository) StampCooldownTx(ctx context.Context, tx *sqlx.Tx, userID int64, class string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO daily_cooldowns (user_id, class, last_granted_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id, class) DO UPDATE SET last_granted_at = now()
	`, userID, class)
	if err != nil {
		return fmt.Errorf("event repository stamp cooldown: %w", err)
	}
	return nil
}

func (r *repository) ReferrerTx(ctx context.Context, tx *sqlx.Tx, userID int64) (int64, error) {
	var referrerID int64
	err := tx.GetContext(ctx, &referrerID, `
		SELECT COALESCE(referrer_id, 0) FROM users WHERE id = $1
	`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("event repository referrer: %w", err)
	}
	return referrerID, nil
}

func (r *repository) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, nil)
}
