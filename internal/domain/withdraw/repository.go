package withdraw

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const withdrawalColumns = `id, user_id, amount, kind, status, admin_id, created_at, updated_at`

// Repository defines withdrawal data access
type Repository interface {
	// CreateTx inserts the pending request inside the caller's transaction;
	// the hold on the balance lands in the same transaction.
	CreateTx(ctx context.Context, tx *sqlx.Tx, userID, amount int64, kind Kind) (*Withdrawal, error)
	GetByID(ctx context.Context, id int64) (*Withdrawal, error)
	// CountRecentTx counts the user's requests younger than the window,
	// regardless of their status.
	CountRecentTx(ctx context.Context, tx *sqlx.Tx, userID int64, window time.Duration) (int, error)
	// Resolve flips a pending request to its final status and stamps the
	// deciding admin. A request that is not pending anymore is
	// ErrAlreadyProcessed; resolving is therefore exactly-once.
	Resolve(ctx context.Context, id int64, status Status, adminID int64) (*Withdrawal, error)
	ResolveTx(ctx context.Context, tx *sqlx.Tx, id int64, status Status, adminID int64) (*Withdrawal, error)
	ListPending(ctx context.Context) ([]*Withdrawal, error)
	BeginTx(ctx context.Context) (*sqlx.Tx, error)
}

// repository implements Repository
type repository struct {
	db *sqlx.DB
}

// NewRepository creates new withdrawal repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateTx(ctx context.Context, tx *sqlx.Tx, userID, amount int64, kind Kind) (*Withdrawal, error) {
	var w Withdrawal
	query := fmt.Sprintf(`
		INSERT INTO withdrawals (user_id, amount, kind)
		VALUES ($1, $2, $3)
		RETURNING %s
	`, withdrawalColumns)

	if err := tx.GetContext(ctx, &w, query, userID, amount, kind); err != nil {
		return nil, fmt.Errorf("withdraw repository create: %w", err)
	}
	return &w, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Withdrawal, error) {
	var w Withdrawal
	query := fmt.Sprintf(`SELECT %s FROM withdrawals WHERE id = $1`, withdrawalColumns)

	err := r.db.GetContext(ctx, &w, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("withdraw repository get: %w", err)
	}
	return &w, nil
}

func (r *repository) CountRecentTx(ctx context.Context, tx *sqlx.Tx, userID int64, window time.Duration) (int, error) {
	var count int
	err := tx.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM withdrawals WHERE user_id = $1 AND created_at > $2
	`, userID, time.Now().Add(-window))
	if err != nil {
		return 0, fmt.Errorf("withdraw repository count recent: %w", err)
	}
	return count, nil
}

func (r *repository) Resolve(ctx context.Context, id int64, status Status, adminID int64) (*Withdrawal, error) {
	return r.resolve(ctx, r.db, id, status, adminID)
}

func (r *repository) ResolveTx(ctx context.Context, tx *sqlx.Tx, id int64, status Status, adminID int64) (*Withdrawal, error) {
	return r.resolve(ctx, tx, id, status, adminID)
}

func (r *repository) resolve(ctx context.Context, execer sqlx.ExtContext, id int64, status Status, adminID int64) (*Withdrawal, error) {
	var w Withdrawal
	query := fmt.Sprintf(`
		UPDATE withdrawals
		SET status = $2, admin_id = $3, updated_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING %s
	`, withdrawalColumns)

	err := sqlx.GetContext(ctx, execer, &w, query, id, status, adminID)
	if errors.Is(err, sql.ErrNoRows) {
		// Either the id is unknown or someone resolved it first.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrAlreadyProcessed
	}
	if err != nil {
		return nil, fmt.Errorf("withdraw repository resolve: %w", err)
	}
	return &w, nil
}

func (r *repository) ListPending(ctx context.Context) ([]*Withdrawal, error) {
	out := []*Withdrawal{}
	query := fmt.Sprintf(`
		SELECT %s FROM withdrawals WHERE status = 'pending' ORDER BY created_at ASC
	`, withdrawalColumns)

	if err := r.db.SelectContext(ctx, &out, query); err != nil {
		return nil, fmt.Errorf("withdraw repository list pending: %w", err)
	}
	return out, nil
}

func (r *repository) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, nil)
}
