package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Repository defines account data access
type Repository interface {
	// Ensure upserts the user row. The referrer is set only when the row
	// is created, the referrer exists, and it is not the user themself;
	// existing rows keep their original referrer (first-referrer-wins).
	// referrerID <= 0 means "no referrer".
	Ensure(ctx context.Context, id int64, username string, referrerID int64) error
	GetByID(ctx context.Context, id int64) (*User, error)
	ListIDs(ctx context.Context) ([]int64, error)
	CountReferrals(ctx context.Context, referrerID int64) (int, error)
	Stats(ctx context.Context) (*Stats, error)
}

// repository implements Repository
type repository struct {
	db *sqlx.DB
}

// NewRepository creates new account repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Ensure(ctx context.Context, id int64, username string, referrerID int64) error {
	query := `
		INSERT INTO users (id, username, referrer_id)
		VALUES ($1, $2, CASE
			WHEN $3::bigint > 0 AND $3::bigint <> $1
			     AND EXISTS (SELECT 1 FROM users WHERE id = $3)
			THEN $3::bigint
			ELSE NULL
		END)
		ON CONFLICT (id) DO UPDATE SET
			username   = COALESCE(NULLIF(EXCLUDED.username, ''), users.username),
			updated_at = now()
	`

	if _, err := r.db.ExecContext(ctx, query, id, username, referrerID); err != nil {
		return fmt.Errorf("account repository ensure: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, `SELECT * FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("account repository get: %w", err)
	}
	return &u, nil
}

func (r *repository) ListIDs(ctx context.Context) ([]int64, error) {
	ids := []int64{}
	if err := r.db.SelectContext(ctx, &ids, `SELECT id FROM users ORDER BY id`); err != nil {
		return nil, fmt.Errorf("account repository list ids: %w", err)
	}
	return ids, nil
}

func (r *repository) CountReferrals(ctx context.Context, referrerID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users WHERE referrer_id = $1`, referrerID)
	if err != nil {
		return 0, fmt.Errorf("account repository count referrals: %w", err)
	}
	return count, nil
}

func (r *repository) Stats(ctx context.Context) (*Stats, error) {
	var s Stats
	query := `
		SELECT
			(SELECT COUNT(*) FROM users)                   AS users,
			(SELECT COUNT(*) FROM tasks)                   AS tasks,
			(SELECT COALESCE(SUM(balance), 0) FROM users)  AS total_balance
	`
	if err := r.db.GetContext(ctx, &s, query); err != nil {
		return nil, fmt.Errorf("account repository stats: %w", err)
	}
	return &s, nil
}
