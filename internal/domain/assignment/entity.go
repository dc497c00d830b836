package assignment

import (
	"database/sql"
	"fmt"
	"time"
)

// Status represents assignment lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusNeedsWork Status = "needs_work"
)

// Restartable reports whether the (task, user) pair may start a fresh
// attempt after this status. Approved and submitted close the pair.
func (s Status) Restartable() bool {
	return s == StatusRejected || s == StatusNeedsWork
}

// Verdict is a reviewer's decision on a submitted assignment.
type Verdict string

const (
	VerdictApprove   Verdict = "approve"
	VerdictReject    Verdict = "reject"
	VerdictNeedsWork Verdict = "needs_work"
)

// Status maps the verdict onto the resulting assignment status.
func (v Verdict) Status() Status {
	switch v {
	case VerdictApprove:
		return StatusApproved
	case VerdictReject:
		return StatusRejected
	default:
		return StatusNeedsWork
	}
}

// Assignment tracks one user's attempt at a task (matches
// task_assignments table).
type Assignment struct {
	ID        int64          `db:"id"`
	TaskID    int64          `db:"task_id"`
	UserID    int64          `db:"user_id"`
	Status    Status         `db:"status"`
	Proof     sql.NullString `db:"proof"`
	Comment   sql.NullString `db:"comment"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

// BelongsTo reports whether the assignment is owned by the given user.
func (a *Assignment) BelongsTo(userID int64) bool {
	return a.UserID == userID
}

// Reference is the ledger idempotency token for an assignment payout.
// One reference per assignment is what makes double approval pay once.
func Reference(id int64) string {
	return fmt.Sprintf("assignment:%d", id)
}
