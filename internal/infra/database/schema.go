package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		credits       INTEGER NOT NULL DEFAULT 0 CHECK (credits >= 0),
		role          TEXT NOT NULL DEFAULT 'Customer',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS leads (
		id           BIGSERIAL PRIMARY KEY,
		external_key TEXT NOT NULL UNIQUE,
		company_name TEXT NOT NULL,
		industry     TEXT NOT NULL DEFAULT '',
		location     TEXT NOT NULL DEFAULT '',
		website      TEXT,
		email        TEXT,
		phone        TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		source       TEXT NOT NULL DEFAULT '',
		status       TEXT NOT NULL DEFAULT 'New'
			CHECK (status IN ('New', 'Contacted', 'Converted', 'Removed')),
		owner_id     TEXT REFERENCES users(id),
		assigned_at  TIMESTAMPTZ,
		locked_until TIMESTAMPTZ,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_owner ON leads (owner_id, assigned_at DESC) WHERE owner_id IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS idx_leads_pool ON leads (id) WHERE owner_id IS NULL`,
}

// EnsureSchema creates the tables if they do not exist yet.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
