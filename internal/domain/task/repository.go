package task

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// Repository defines task data access
type Repository interface {
	Create(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, id int64) (*Task, error)
	List(ctx context.Context, limit, offset int) ([]*Task, int, error)
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates task repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const taskColumns = `id, type, title, description, reward, payload, created_by, created_at`

func (r *repository) Create(ctx context.Context, t *Task) error {
	query := `
		INSERT INTO tasks (type, title, description, reward, payload, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	return r.db.QueryRowxContext(ctx, query,
		t.Type, t.Title, t.Description, t.Reward, t.Payload, t.CreatedBy,
	).Scan(&t.ID, &t.CreatedAt)
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	var t Task
	if err := r.db.GetContext(ctx, &t, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *repository) List(ctx context.Context, limit, offset int) ([]*Task, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM tasks`); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + taskColumns + ` FROM tasks
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	tasks := []*Task{}
	if err := r.db.SelectContext(ctx, &tasks, query, limit, offset); err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM tasks`)
	return n, err
}
