package notification

import (
	"context"

	"github.com/jmoiron/sqlx"
)

const notificationColumns = `id, user_id, type, title, body, data, is_read, created_at`

// Repository defines notification data access
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]*Notification, error)
	MarkRead(ctx context.Context, id, userID int64) error
	CountUnread(ctx context.Context, userID int64) (int, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates notification repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, n *Notification) error {
	query := `
		INSERT INTO notifications (user_id, type, title, body, data)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_read, created_at`

	return r.db.QueryRowxContext(ctx, query,
		n.UserID, n.Type, n.Title, n.Body, n.Data,
	).Scan(&n.ID, &n.IsRead, &n.CreatedAt)
}

func (r *repository) ListByUser(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]*Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1`
	if unreadOnly {
		query += ` AND is_read = false`
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT $2`

	items := []*Notification{}
	if err := r.db.SelectContext(ctx, &items, query, userID, limit); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) MarkRead(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = true WHERE id = $1 AND user_id = $2`, id, userID)
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

func (r *repository) CountUnread(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = false`, userID)
	if err != nil {
		return 0, err
	}
	return count, nil
}
