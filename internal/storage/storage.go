// Package storage provides durable persistence for sessions, campaigns,
// and leads on SQLite, so a process restart can recover session reuse
// and the lead collection.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const (
	// DefaultPingTimeout is the timeout for the initial connectivity check.
	DefaultPingTimeout = 5 * time.Second
	// busyTimeoutMs is how long SQLite waits on a locked database.
	busyTimeoutMs = 5000
)

// schema is applied at open; all statements are idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	campaign_id TEXT NOT NULL,
	platform    TEXT NOT NULL,
	target      TEXT NOT NULL,
	cookies     TEXT NOT NULL,
	acquired_at TIMESTAMP NOT NULL,
	PRIMARY KEY (campaign_id, platform, target)
);

CREATE TABLE IF NOT EXISTS fingerprints (
	campaign_id TEXT PRIMARY KEY,
	fingerprint TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS campaigns (
	id          TEXT PRIMARY KEY,
	targets     TEXT NOT NULL,
	platforms   TEXT NOT NULL,
	interval_ns INTEGER NOT NULL,
	status      TEXT NOT NULL,
	created_at  TIMESTAMP NOT NULL,
	started_at  TIMESTAMP,
	stopped_at  TIMESTAMP,
	processed   INTEGER NOT NULL DEFAULT 0,
	leads       INTEGER NOT NULL DEFAULT 0,
	errors      INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS leads (
	id         TEXT PRIMARY KEY,
	target     TEXT NOT NULL,
	platform   TEXT NOT NULL,
	identifier TEXT NOT NULL,
	price      TEXT NOT NULL,
	first_seen TIMESTAMP NOT NULL,
	status     TEXT NOT NULL,
	confidence REAL NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_leads_identity ON leads (target, platform, identifier);
`

// Open connects to the SQLite database at path, applies the schema, and
// returns the handle. Use ":memory:" for an ephemeral database.
func Open(path string) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL", path, busyTimeoutMs)

	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite handles one writer at a time; serializing through a single
	// connection avoids SQLITE_BUSY churn under concurrent polling loops.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), DefaultPingTimeout)
	defer cancel()
	if pingErr := db.PingContext(ctx); pingErr != nil {
		return nil, fmt.Errorf("failed to ping database: %w", pingErr)
	}

	if _, execErr := db.Exec(schema); execErr != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", execErr)
	}

	return db, nil
}
