package watch

import (
	"database/sql"
	"fmt"
	"time"
)

// StageInitial marks the single post-payment re-check armed when a
// subscribe reward is paid out.
const StageInitial = "initial"

// Watch is a durable deferred compliance check (matches compliance_watches
// table). The row is the obligation: it is written inside the payment
// transaction and deleted exactly once when the check fires.
type Watch struct {
	ID        int64         `db:"id"`
	UserID    int64         `db:"user_id"`
	ChannelID string        `db:"channel_id"`
	Reward    int64         `db:"reward"`
	TaskID    sql.NullInt64 `db:"task_id"`
	DueAt     time.Time     `db:"due_at"`
	Stage     string        `db:"stage"`
	CreatedAt time.Time     `db:"created_at"`
}

// Delay returns how long until the watch is due, 0 when already past due.
func (w *Watch) Delay(now time.Time) time.Duration {
	d := w.DueAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// Reference is the ledger idempotency token for a watch clawback.
func Reference(id int64) string {
	return fmt.Sprintf("watch:%d", id)
}
