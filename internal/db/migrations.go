package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: dashboard lists are ordered newest first.
	`CREATE INDEX IF NOT EXISTS idx_found_items_created ON found_items(created_at DESC, id DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_claim_requests_created ON claim_requests(created_at DESC, id DESC)`,
	// Migration 2: expired revocations are purged by expiry.
	`CREATE INDEX IF NOT EXISTS idx_revoked_tokens_expires ON revoked_tokens(expires_at)`,
}

// Migrate runs the database schema migrations.
func Migrate(db *sql.DB) error {
	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}
	return nil
}
