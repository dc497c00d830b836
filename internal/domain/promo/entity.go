package promo

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Promo is a redeemable code. ExpiresAt and UsesLeft are both optional:
// a NULL expiry never lapses, a NULL uses counter is unlimited.
type Promo struct {
	ID        int64         `db:"id"`
	Code      string        `db:"code"`
	Reward    int64         `db:"reward"`
	ExpiresAt sql.NullTime  `db:"expires_at"`
	UsesLeft  sql.NullInt64 `db:"uses_left"`
	CreatedAt time.Time     `db:"created_at"`
}

// Expired reports whether the code lapsed before t.
func (p *Promo) Expired(t time.Time) bool {
	return p.ExpiresAt.Valid && p.ExpiresAt.Time.Before(t)
}

// Exhausted reports whether a tracked code has no uses left.
func (p *Promo) Exhausted() bool {
	return p.UsesLeft.Valid && p.UsesLeft.Int64 <= 0
}

// Normalize maps user input to the stored form. Codes are kept uppercase.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Reference is the ledger idempotency token for one user's activation.
func Reference(promoID, userID int64) string {
	return fmt.Sprintf("promo:%d:user:%d", promoID, userID)
}
