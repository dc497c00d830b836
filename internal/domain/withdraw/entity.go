package withdraw

import (
	"database/sql"
	"fmt"
	"time"
)

// Status of a payout request. Funds are deducted at creation, so pending
// means held, approved means paid out, rejected means refunded.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Kind is the payout channel the user asked for.
type Kind string

const (
	KindCard    Kind = "card"
	KindPremium Kind = "premium"
	KindOther   Kind = "other"
)

// Withdrawal is one payout request.
type Withdrawal struct {
	ID        int64         `db:"id"`
	UserID    int64         `db:"user_id"`
	Amount    int64         `db:"amount"`
	Kind      Kind          `db:"kind"`
	Status    Status        `db:"status"`
	AdminID   sql.NullInt64 `db:"admin_id"`
	CreatedAt time.Time     `db:"created_at"`
	UpdatedAt time.Time     `db:"updated_at"`
}

// Reference is the ledger idempotency token for the hold.
func Reference(id int64) string {
	return fmt.Sprintf("withdrawal:%d", id)
}

// RefundReference marks the refund applied when a request is rejected.
func RefundReference(id int64) string {
	return fmt.Sprintf("withdrawal:%d:refund", id)
}
