package sponsor

import "time"

// Channel is a sponsor channel users must join before the bot serves them.
// ChatID is the Telegram identifier, either @username or a numeric chat id.
type Channel struct {
	ChatID    string    `db:"chat_id"`
	Title     string    `db:"title"`
	CreatedAt time.Time `db:"created_at"`
}
