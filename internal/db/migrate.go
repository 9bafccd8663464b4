package db

import (
	"database/sql"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS active_session (
		id              INTEGER PRIMARY KEY CHECK (id = 1),
		timestamp_id    TEXT NOT NULL,
		started_at      TEXT NOT NULL,
		task            TEXT NOT NULL DEFAULT '',
		project         TEXT NOT NULL DEFAULT '',
		journal_path    TEXT NOT NULL,
		header          TEXT NOT NULL,
		length_min      INTEGER NOT NULL CHECK (length_min > 0),
		last_flushed_at TEXT NOT NULL,
		updated_at      TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS engine_state (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS task_history (
		id          TEXT PRIMARY KEY,
		task_text   TEXT NOT NULL COLLATE NOCASE UNIQUE,
		usage_count INTEGER NOT NULL DEFAULT 1 CHECK (usage_count >= 1),
		first_used  TEXT NOT NULL,
		last_used   TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_task_history_last_used ON task_history(last_used DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_task_history_usage ON task_history(usage_count DESC, last_used DESC)`,
}

// Migrate runs all schema migrations. Every statement is safe to re-run.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
