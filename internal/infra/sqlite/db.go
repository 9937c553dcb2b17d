// Package sqlite implements the persistence collaborators over a local
// SQLite database (modernc.org/sqlite, pure Go, no CGO).
//
// The uniqueness constraint on user_badges(user_id, badge_id) plus
// INSERT ... ON CONFLICT DO NOTHING is what makes badge grants idempotent
// under concurrency, and score increments are single UPDATE statements, so
// the database serializes them without lost updates.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite connection and owns schema migration.
type DB struct {
	db *sql.DB
}

// Open creates (or opens) the database under dir and applies migrations.
// WAL mode and a busy timeout keep concurrent award/evaluate requests from
// failing with SQLITE_BUSY.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir data dir: %w", err)
	}

	dsn := filepath.Join(dir, "singularity.db") +
		"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db := &DB{db: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.db.Close()
}

// migrate applies all schema statements. Each string is a single SQL
// statement (SQLite executes one at a time).
func (db *DB) migrate() error {
	for _, stmt := range Migrations() {
		if _, err := db.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:min(40, len(stmt))], err)
		}
	}
	return nil
}

// Migrations returns the schema migration statements.
func Migrations() []string {
	return []string{
		// Platform accounts. score only ever moves through the
		// gamification ledger's atomic increment.
		`CREATE TABLE IF NOT EXISTS users (
			id           TEXT PRIMARY KEY,
			email        TEXT NOT NULL UNIQUE,
			display_name TEXT NOT NULL DEFAULT '',
			score        INTEGER NOT NULL DEFAULT 0,
			created_at   TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_score ON users(score DESC)`,

		// Static badge catalog
		`CREATE TABLE IF NOT EXISTS badges (
			id              TEXT PRIMARY KEY,
			name            TEXT NOT NULL UNIQUE,
			description     TEXT NOT NULL DEFAULT '',
			icon_url        TEXT NOT NULL DEFAULT '',
			points_required INTEGER NOT NULL DEFAULT 0
		)`,

		// Badge grants. The composite primary key is the uniqueness
		// constraint behind insert-if-absent.
		`CREATE TABLE IF NOT EXISTS user_badges (
			user_id   TEXT NOT NULL,
			badge_id  TEXT NOT NULL,
			earned_at TEXT NOT NULL,
			PRIMARY KEY (user_id, badge_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_user_badges_user ON user_badges(user_id, earned_at)`,

		// Dark-sky observation sites
		`CREATE TABLE IF NOT EXISTS dark_sites (
			id              TEXT PRIMARY KEY,
			name            TEXT NOT NULL UNIQUE,
			lat             REAL NOT NULL,
			lon             REAL NOT NULL,
			light_pollution REAL NOT NULL DEFAULT 0,
			description     TEXT NOT NULL DEFAULT ''
		)`,

		// Astronomical events
		`CREATE TABLE IF NOT EXISTS events (
			id            TEXT PRIMARY KEY,
			title         TEXT NOT NULL UNIQUE,
			description   TEXT NOT NULL DEFAULT '',
			start_at      TEXT NOT NULL,
			end_at        TEXT NOT NULL,
			type          TEXT NOT NULL DEFAULT 'OTHER',
			lat           REAL NOT NULL,
			lon           REAL NOT NULL,
			location_name TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_start ON events(start_at)`,

		// Reported visits
		`CREATE TABLE IF NOT EXISTS visits (
			id               TEXT PRIMARY KEY,
			user_id          TEXT NOT NULL,
			event_id         TEXT,
			dark_site_id     TEXT,
			photo_url        TEXT NOT NULL DEFAULT '',
			visibility_score REAL NOT NULL DEFAULT 0,
			created_at       TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_visits_user ON visits(user_id, created_at)`,
	}
}
