package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// schema is applied on boot. Every statement is idempotent so restarts
// and horizontally scaled instances can run it concurrently.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id          BIGINT PRIMARY KEY,
		username    TEXT NOT NULL DEFAULT '',
		balance     BIGINT NOT NULL DEFAULT 0,
		tier        INT NOT NULL DEFAULT 1,
		referrer_id BIGINT REFERENCES users(id),
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id          BIGSERIAL PRIMARY KEY,
		type        TEXT NOT NULL,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		reward      BIGINT NOT NULL,
		payload     JSONB NOT NULL DEFAULT '{}',
		created_by  BIGINT REFERENCES users(id),
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS task_assignments (
		id         BIGSERIAL PRIMARY KEY,
		task_id    BIGINT NOT NULL REFERENCES tasks(id),
		user_id    BIGINT NOT NULL REFERENCES users(id),
		status     TEXT NOT NULL DEFAULT 'pending',
		proof      TEXT,
		comment    TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	// One live attempt per (task, user); rejected/needs_work rows do not
	// block a fresh attempt.
	`CREATE UNIQUE INDEX IF NOT EXISTS task_assignments_active_idx
		ON task_assignments (task_id, user_id)
		WHERE status NOT IN ('rejected', 'needs_work')`,
	`CREATE TABLE IF NOT EXISTS ledger_entries (
		id           BIGSERIAL PRIMARY KEY,
		user_id      BIGINT NOT NULL REFERENCES users(id),
		amount       BIGINT NOT NULL,
		type         TEXT NOT NULL,
		reference_id TEXT NOT NULL UNIQUE,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS ledger_entries_user_idx
		ON ledger_entries (user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS promo_codes (
		id         BIGSERIAL PRIMARY KEY,
		code       TEXT NOT NULL UNIQUE,
		reward     BIGINT NOT NULL,
		expires_at TIMESTAMPTZ,
		uses_left  BIGINT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS promo_activations (
		id         BIGSERIAL PRIMARY KEY,
		user_id    BIGINT NOT NULL REFERENCES users(id),
		promo_id   BIGINT NOT NULL REFERENCES promo_codes(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (user_id, promo_id)
	)`,
	`CREATE TABLE IF NOT EXISTS offerwall_events (
		id         BIGSERIAL PRIMARY KEY,
		event_id   TEXT NOT NULL UNIQUE,
		user_id    BIGINT NOT NULL,
		type       TEXT NOT NULL,
		reward     BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS daily_cooldowns (
		user_id         BIGINT NOT NULL,
		class           TEXT NOT NULL,
		last_granted_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (user_id, class)
	)`,
	`CREATE TABLE IF NOT EXISTS compliance_watches (
		id         BIGSERIAL PRIMARY KEY,
		user_id    BIGINT NOT NULL REFERENCES users(id),
		channel_id TEXT NOT NULL,
		reward     BIGINT NOT NULL,
		task_id    BIGINT REFERENCES tasks(id),
		due_at     TIMESTAMPTZ NOT NULL,
		stage      TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS withdrawals (
		id         BIGSERIAL PRIMARY KEY,
		user_id    BIGINT NOT NULL REFERENCES users(id),
		amount     BIGINT NOT NULL,
		kind       TEXT NOT NULL,
		status     TEXT NOT NULL DEFAULT 'pending',
		admin_id   BIGINT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS withdrawals_user_recent_idx
		ON withdrawals (user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS sponsor_channels (
		chat_id    TEXT PRIMARY KEY,
		title      TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS admin_users (
		user_id    BIGINT PRIMARY KEY,
		added_by   BIGINT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id         BIGSERIAL PRIMARY KEY,
		user_id    BIGINT NOT NULL,
		type       TEXT NOT NULL,
		title      TEXT NOT NULL,
		body       TEXT NOT NULL DEFAULT '',
		data       JSONB NOT NULL DEFAULT '{}',
		is_read    BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS notifications_user_idx
		ON notifications (user_id, created_at DESC)`,
}

// Migrate creates the schema if it does not exist yet
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	log.Info().Msg("Database schema up to date")
	return nil
}
