package store

import (
	"database/sql"
	"fmt"
)

// Timestamps are stored as unix milliseconds. Goal documents are JSON
// encoded model.Goal values; the created_at column mirrors Goal.CreatedAt
// for ordering.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS preferences (
		user_id      TEXT PRIMARY KEY,
		display_name TEXT NOT NULL DEFAULT '',
		dark_mode    INTEGER NOT NULL DEFAULT 0,
		ai_persona   TEXT NOT NULL DEFAULT 'Motivational',
		total_xp     INTEGER NOT NULL DEFAULT 0,
		updated_at   INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS goals (
		user_id    TEXT NOT NULL,
		id         TEXT NOT NULL,
		revision   INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		doc        TEXT NOT NULL,
		PRIMARY KEY (user_id, id)
	)`,
	`CREATE INDEX IF NOT EXISTS goals_by_user_created ON goals (user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS llm_request_events (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence      INTEGER NOT NULL UNIQUE,
		timestamp     INTEGER NOT NULL,
		provider      TEXT NOT NULL,
		model         TEXT NOT NULL,
		purpose       TEXT NOT NULL,
		goal_id       TEXT NOT NULL DEFAULT '',
		input_tokens  INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms    INTEGER NOT NULL DEFAULT 0,
		success       INTEGER NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		request_body  TEXT NOT NULL DEFAULT '',
		response_body TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS xp_events (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence   INTEGER NOT NULL UNIQUE,
		timestamp  INTEGER NOT NULL,
		user_id    TEXT NOT NULL,
		goal_id    TEXT NOT NULL,
		step_id    TEXT NOT NULL,
		step_title TEXT NOT NULL DEFAULT '',
		difficulty TEXT NOT NULL DEFAULT '',
		delta      INTEGER NOT NULL,
		total      INTEGER NOT NULL,
		reason     TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS xp_events_by_user ON xp_events (user_id, sequence DESC)`,
}

// addedColumns are columns introduced after a table first shipped. They
// are added to databases created before them.
var addedColumns = []struct{ table, column, def string }{
	{"llm_request_events", "goal_id", "TEXT NOT NULL DEFAULT ''"},
}

func migrate(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	for _, c := range addedColumns {
		ok, err := hasColumn(db, c.table, c.column)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		if _, err := db.Exec(`ALTER TABLE ` + c.table + ` ADD COLUMN ` + c.column + ` ` + c.def); err != nil {
			return fmt.Errorf("add column %s.%s: %w", c.table, c.column, err)
		}
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS llm_events_by_goal ON llm_request_events (goal_id, sequence DESC)`); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func hasColumn(db *sql.DB, table, column string) (bool, error) {
	rows, err := db.Query(`SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return false, fmt.Errorf("inspect %s: %w", table, err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return false, fmt.Errorf("inspect %s: %w", table, err)
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
