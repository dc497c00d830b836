package watch

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ameropro/stars-api/internal/domain/ledger"
)

// Store is the narrow surface the scheduler needs. Consume deletes the
// watch and, when claw is set, reverses the paid reward in the same
// transaction; it reports false when another firing got there first.
type Store interface {
	List(ctx context.Context) ([]*Watch, error)
	Get(ctx context.Context, id int64) (*Watch, error)
	Consume(ctx context.Context, id int64, claw bool) (bool, error)
}

// Repository persists compliance watches. It composes the ledger
// repository so a clawback and the watch deletion commit atomically.
type Repository struct {
	db     *sqlx.DB
	ledger *ledger.Repository
}

// NewRepository creates watch repository
func NewRepository(db *sqlx.DB, ledgerRepo *ledger.Repository) *Repository {
	return &Repository{db: db, ledger: ledgerRepo}
}

const watchColumns = `id, user_id, channel_id, reward, task_id, due_at, stage, created_at`

// ScheduleTx inserts the watch inside the caller's transaction so the
// obligation is durable before any timer exists.
func (r *Repository) ScheduleTx(ctx context.Context, tx *sqlx.Tx, userID int64, channelID string, reward, taskID int64, dueAt time.Time, stage string) (*Watch, error) {
	w := &Watch{
		UserID:    userID,
		ChannelID: channelID,
		Reward:    reward,
		DueAt:     dueAt,
		Stage:     stage,
	}
	if taskID > 0 {
		w.TaskID = sql.NullInt64{Int64: taskID, Valid: true}
	}

	query := `
		INSERT INTO compliance_watches (user_id, channel_id, reward, task_id, due_at, stage)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := tx.QueryRowxContext(ctx, query,
		w.UserID, w.ChannelID, w.Reward, w.TaskID, w.DueAt, w.Stage,
	).Scan(&w.ID, &w.CreatedAt)
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (r *Repository) List(ctx context.Context) ([]*Watch, error) {
	watches := []*Watch{}
	err := r.db.SelectContext(ctx, &watches, `SELECT `+watchColumns+` FROM compliance_watches`)
	return watches, err
}

func (r *Repository) Get(ctx context.Context, id int64) (*Watch, error) {
	var w Watch
	err := r.db.GetContext(ctx, &w, `SELECT `+watchColumns+` FROM compliance_watches WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}

// Consume deletes the watch and applies the clawback in one transaction.
// The DELETE is the exactly-once gate: zero rows means a concurrent firing
// already consumed the watch and nothing more happens.
func (r *Repository) Consume(ctx context.Context, id int64, claw bool) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var userID, reward int64
	err = tx.QueryRowxContext(ctx,
		`DELETE FROM compliance_watches WHERE id = $1 RETURNING user_id, reward`, id,
	).Scan(&userID, &reward)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if claw {
		if err := r.ledger.AdjustTx(ctx, tx, userID, -reward, ledger.EntryClawback, Reference(id)); err != nil {
			return false, err
		}
	}

	return true, tx.Commit()
}
