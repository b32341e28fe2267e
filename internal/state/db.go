// Package state persists the run and attempt journal in SQLite. It
// replaces ad-hoc JSON logging with queryable history for the status
// command.
package state

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps an SQLite connection holding the corral journal.
type DB struct {
	conn *sql.DB
	path string
}

// ProjectDBPath returns the journal path inside a project's .corral
// directory.
func ProjectDBPath(projectRoot string) string {
	return filepath.Join(projectRoot, ".corral", "state.db")
}

// Open opens (creating if necessary) the journal database at path.
// WAL mode is enabled so the status command can read alongside an
// active run.
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	db := &DB{conn: conn, path: path}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// migrate creates the journal schema if absent.
func (db *DB) migrate() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	finished_at TEXT,
	status TEXT NOT NULL DEFAULT 'running',
	detail TEXT NOT NULL DEFAULT '',
	input_tokens INTEGER NOT NULL DEFAULT 0,
	output_tokens INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS attempts (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	attempt INTEGER NOT NULL,
	started_at TEXT NOT NULL,
	finished_at TEXT,
	status TEXT NOT NULL DEFAULT 'running',
	detail TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, attempt)
);
`
	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (db *DB) Close() error {
	return db.conn.Close()
}
