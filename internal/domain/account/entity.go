package account

import (
	"database/sql"
	"time"
)

// Tier thresholds are a ledger policy; the store only persists the value.
const (
	TierBase     = 1
	TierUpgraded = 2
)

// User represents a bot user account (matches users table)
type User struct {
	ID         int64         `db:"id"`
	Username   string        `db:"username"`
	Balance    int64         `db:"balance"`
	Tier       int           `db:"tier"`
	ReferrerID sql.NullInt64 `db:"referrer_id"`
	CreatedAt  time.Time     `db:"created_at"`
	UpdatedAt  time.Time     `db:"updated_at"`
}

// HasReferrer returns true if the user was referred by someone
func (u *User) HasReferrer() bool {
	return u.ReferrerID.Valid && u.ReferrerID.Int64 > 0
}

// Stats is the admin dashboard aggregate
type Stats struct {
	Users        int64 `db:"users" json:"users"`
	Tasks        int64 `db:"tasks" json:"tasks"`
	TotalBalance int64 `db:"total_balance" json:"total_balance"`
}
