package sponsor

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Repository defines sponsor channel data access
type Repository interface {
	// Upsert adds the channel or refreshes its title. Adding twice is not
	// an error.
	Upsert(ctx context.Context, c *Channel) error
	Remove(ctx context.Context, chatID string) error
	List(ctx context.Context) ([]*Channel, error)
}

// repository implements Repository
type repository struct {
	db *sqlx.DB
}

// NewRepository creates new sponsor repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Upsert(ctx context.Context, c *Channel) error {
	err := r.db.GetContext(ctx, c, `
		INSERT INTO sponsor_channels (chat_id, title)
		VALUES ($1, $2)
		ON CONFLICT (chat_id) DO UPDATE SET title = EXCLUDED.title
		RETURNING chat_id, title, created_at
	`, c.ChatID, c.Title)
	if err != nil {
		return fmt.Errorf("sponsor repository upsert: %w", err)
	}
	return nil
}

func (r *repository) Remove(ctx context.Context, chatID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sponsor_channels WHERE chat_id = $1`, chatID)
	if err != nil {
		return fmt.Errorf("sponsor repository remove: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sponsor repository remove: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) List(ctx context.Context) ([]*Channel, error) {
	out := []*Channel{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT chat_id, title, created_at FROM sponsor_channels ORDER BY title, chat_id
	`)
	if err != nil {
		return nil, fmt.Errorf("sponsor repository list: %w", err)
	}
	return out, nil
}
