package event

import "time"

// Type is the kind of activity the offerwall provider reports.
type Type string

const (
	TypeTask         Type = "task"
	TypeSubscription Type = "subscription"
)

// Valid reports whether the provider sent a type we settle.
func (t Type) Valid() bool {
	return t == TypeTask || t == TypeSubscription
}

// SubscriptionCooldown is the daily-limit class for subscription grants.
const SubscriptionCooldown = "subscription"

// Event is one webhook delivery. Deliveries that grant nothing are still
// recorded so the provider's stream can be audited.
type Event struct {
	ID        int64     `db:"id"`
	EventID   string    `db:"event_id"`
	UserID    int64     `db:"user_id"`
	Type      Type      `db:"type"`
	Reward    int64     `db:"reward"`
	CreatedAt time.Time `db:"created_at"`
}

// Reference is the ledger idempotency token for this delivery.
func Reference(eventID string) string {
	return "event:" + eventID
}

// ReferralReference marks the flat referrer bonus paid alongside a
// subscription grant.
func ReferralReference(eventID string) string {
	return "event:" + eventID + ":ref"
}
