package notification

import (
	"encoding/json"
	"time"
)

// Type represents notification type
type Type string

const (
	TypeReviewVerdict Type = "review_verdict" // proof reviewed by the task creator
	TypeClawback      Type = "clawback"       // subscription reward taken back
	TypeWithdrawal    Type = "withdrawal"     // payout request resolved
)

// Notification is a durable message for the bot transport to deliver.
type Notification struct {
	ID        int64           `db:"id" json:"id"`
	UserID    int64           `db:"user_id" json:"user_id"`
	Type      Type            `db:"type" json:"type"`
	Title     string          `db:"title" json:"title"`
	Body      string          `db:"body" json:"body,omitempty"`
	Data      json.RawMessage `db:"data" json:"data,omitempty"`
	IsRead    bool            `db:"is_read" json:"is_read"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
