package admin

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines admin set data access
type Repository interface {
	Create(ctx context.Context, userID, addedBy int64) (*AdminUser, error)
	Remove(ctx context.Context, userID int64) error
	Exists(ctx context.Context, userID int64) (bool, error)
	List(ctx context.Context) ([]*AdminUser, error)
	Seed(ctx context.Context, userIDs []int64) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates admin repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, userID, addedBy int64) (*AdminUser, error) {
	query := `
		INSERT INTO admin_users (user_id, added_by)
		VALUES ($1, $2)
		RETURNING user_id, added_by, created_at`

	var a AdminUser
	err := r.db.GetContext(ctx, &a, query, userID, sql.NullInt64{Int64: addedBy, Valid: addedBy > 0})
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrAlreadyAdmin
		}
		return nil, err
	}
	return &a, nil
}

func (r *repository) Remove(ctx context.Context, userID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM admin_users WHERE user_id = $1`, userID)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Exists(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM admin_users WHERE user_id = $1)`, userID)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *repository) List(ctx context.Context) ([]*AdminUser, error) {
	admins := []*AdminUser{}
	err := r.db.SelectContext(ctx, &admins,
		`SELECT user_id, added_by, created_at FROM admin_users ORDER BY created_at ASC, user_id ASC`)
	if err != nil {
		return nil, err
	}
	return admins, nil
}

func (r *repository) Seed(ctx context.Context, userIDs []int64) error {
	for _, id := range userIDs {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO admin_users (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, id)
		if err != nil {
			return err
		}
	}
	return nil
}
