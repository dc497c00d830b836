package promo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const promoColumns = `id, code, reward, expires_at, uses_left, created_at`

// Repository defines promo data access
type Repository interface {
	Create(ctx context.Context, p *Promo) error
	// GetByCodeForUpdateTx locks the code row so concurrent redemptions
	// decide uses_left one after the other.
	GetByCodeForUpdateTx(ctx context.Context, tx *sqlx.Tx, code string) (*Promo, error)
	// InsertActivationTx enforces per-user-once redemption through the
	// (user_id, promo_id) unique constraint.
	InsertActivationTx(ctx context.Context, tx *sqlx.Tx, promoID, userID int64) error
	// DecrementUsesTx burns one use. Unlimited codes are left alone and the
	// counter never goes below zero.
	DecrementUsesTx(ctx context.Context, tx *sqlx.Tx, promoID int64) error
	BeginTx(ctx context.Context) (*sqlx.Tx, error)
}

// repository implements Repository
type repository struct {
	db *sqlx.DB
}

// NewRepository creates new promo repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, p *Promo) error {
	query := fmt.Sprintf(`
		INSERT INTO promo_codes (code, reward, expires_at, uses_left)
		VALUES ($1, $2, $3, $4)
		RETURNING %s
	`, promoColumns)

	err := r.db.GetContext(ctx, p, query, p.Code, p.Reward, p.ExpiresAt, p.UsesLeft)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrCodeExists
		}
		return fmt.Errorf("promo repository create: %w", err)
	}
	return nil
}

func (r *repository) GetByCodeForUpdateTx(ctx context.Context, tx *sqlx.Tx, code string) (*Promo, error) {
	var p Promo
	query := fmt.Sprintf(`SELECT %s FROM promo_codes WHERE code = $1 FOR UPDATE`, promoColumns)

	err := tx.GetContext(ctx, &p, query, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("promo repository get for update: %w", err)
	}
	return &p, nil
}

func (r *repository) InsertActivationTx(ctx context.Context, tx *sqlx.Tx, promoID, userID int64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO promo_activations (user_id, promo_id) VALUES ($1, $2)
	`, userID, promoID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrAlreadyUsed
		}
		return fmt.Errorf("promo repository insert activation: %w", err)
	}
	return nil
}

func (r *repository) DecrementUsesTx(ctx context.Context, tx *sqlx.Tx, promoID int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE promo_codes SET uses_left = uses_left - 1
		WHERE id = $1 AND uses_left IS NOT NULL AND uses_left > 0
	`, promoID)
	if err != nil {
		return fmt.Errorf("promo repository decrement uses: %w", err)
	}
	return nil
}

func (r *repository) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, nil)
}
