package task

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Type classifies what a user has to do to earn the reward.
type Type string

const (
	TypeSubscribe Type = "subscribe"
	TypeView      Type = "view"
	TypeReaction  Type = "reaction"
)

// Task is an advertiser offer (matches tasks table).
type Task struct {
	ID          int64           `db:"id"`
	Type        Type            `db:"type"`
	Title       string          `db:"title"`
	Description string          `db:"description"`
	Reward      int64           `db:"reward"`
	Payload     json.RawMessage `db:"payload"`
	CreatedBy   sql.NullInt64   `db:"created_by"`
	CreatedAt   time.Time       `db:"created_at"`
}

// SubscribePayload is the payload for subscribe tasks.
type SubscribePayload struct {
	ChannelID string `json:"channel_id"`
}

// ViewPayload is the payload for view tasks.
type ViewPayload struct {
	Link string `json:"link"`
}

// ReactionPayload is the payload for reaction tasks.
type ReactionPayload struct {
	Link     string `json:"link"`
	Reaction string `json:"reaction"`
}

// ChannelID extracts the channel from a subscribe task payload.
// Returns "" for other task types or malformed payloads.
func (t *Task) ChannelID() string {
	if t.Type != TypeSubscribe {
		return ""
	}
	var p SubscribePayload
	if err := json.Unmarshal(t.Payload, &p); err != nil {
		return ""
	}
	return p.ChannelID
}

// PlatformCreated reports whether the task has no advertiser owner.
func (t *Task) PlatformCreated() bool {
	return !t.CreatedBy.Valid
}

// CreatedByUser reports whether the given user owns this task.
func (t *Task) CreatedByUser(userID int64) bool {
	return t.CreatedBy.Valid && t.CreatedBy.Int64 == userID
}

// Floors maps a task type to the minimum reward an advertiser may offer.
type Floors map[Type]int64

// Floor returns the minimum reward for a type, 0 when unconfigured.
func (f Floors) Floor(t Type) int64 {
	return f[t]
}
