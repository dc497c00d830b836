package assignment

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository is a dumb state store plus the uniqueness guard. Transition
// legality is choreographed by the service, never here.
type Repository interface {
	Create(ctx context.Context, taskID, userID int64) (*Assignment, error)
	GetByID(ctx context.Context, id int64) (*Assignment, error)
	GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, id int64) (*Assignment, error)
	Transition(ctx context.Context, id int64, status Status, proof, comment string) error
	TransitionTx(ctx context.Context, tx *sqlx.Tx, id int64, status Status, proof, comment string) error
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*Assignment, int, error)
	BeginTx(ctx context.Context) (*sqlx.Tx, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates assignment repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const assignmentColumns = `id, task_id, user_id, status, proof, comment, created_at, updated_at`

// Create inserts a pending assignment. The partial unique index on
// (task_id, user_id) over non-restartable statuses turns a duplicate
// attempt into ErrAlreadyActive, race included.
func (r *repository) Create(ctx context.Context, taskID, userID int64) (*Assignment, error) {
	query := `
		INSERT INTO task_assignments (task_id, user_id)
		VALUES ($1, $2)
		RETURNING ` + assignmentColumns

	var a Assignment
	err := r.db.QueryRowxContext(ctx, query, taskID, userID).StructScan(&a)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrAlreadyActive
		}
		return nil, err
	}
	return &a, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM task_assignments WHERE id = $1`

	var a Assignment
	if err := r.db.GetContext(ctx, &a, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// GetForUpdateTx locks the assignment row for the caller's transaction.
func (r *repository) GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, id int64) (*Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM task_assignments WHERE id = $1 FOR UPDATE`

	var a Assignment
	if err := tx.GetContext(ctx, &a, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *repository) Transition(ctx context.Context, id int64, status Status, proof, comment string) error {
	return r.transition(ctx, r.db, id, status, proof, comment)
}

func (r *repository) TransitionTx(ctx context.Context, tx *sqlx.Tx, id int64, status Status, proof, comment string) error {
	return r.transition(ctx, tx, id, status, proof, comment)
}

// transition stamps the new status. Proof is kept unless a non-empty one
// is supplied; comment is replaced outright.
func (r *repository) transition(ctx context.Context, execer sqlx.ExtContext, id int64, status Status, proof, comment string) error {
	query := `
		UPDATE task_assignments
		SET status = $2,
			proof = COALESCE(NULLIF($3, ''), proof),
			comment = NULLIF($4, ''),
			updated_at = now()
		WHERE id = $1
	`
	res, err := execer.ExecContext(ctx, query, id, status, proof, comment)
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

func (r *repository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*Assignment, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM task_assignments WHERE user_id = $1`
	if err := r.db.GetContext(ctx, &total, countQuery, userID); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + assignmentColumns + ` FROM task_assignments
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	assignments := []*Assignment{}
	if err := r.db.SelectContext(ctx, &assignments, query, userID, limit, offset); err != nil {
		return nil, 0, err
	}
	return assignments, total, nil
}

func (r *repository) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, nil)
}
