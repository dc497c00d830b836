package admin

import (
	"database/sql"
	"time"
)

// AdminUser is a row in the durable admin set. Membership is checked per
// request, never cached across requests.
type AdminUser struct {
	UserID    int64         `db:"user_id"`
	AddedBy   sql.NullInt64 `db:"added_by"`
	CreatedAt time.Time     `db:"created_at"`
}
