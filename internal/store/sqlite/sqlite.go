// Package sqlite implements the store.KV interface with SQLite as the backend.
//
// WHY SQLITE FOR A KEY-VALUE STORE?
// The persisted state is a handful of full-document values under fixed keys.
// A single two-column table gives us exactly that, plus durability, a real
// file format, and atomic single-key overwrites — without running a server.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo (calls C code from Go), which means you need a C
// compiler installed and cross-compilation becomes painful. modernc.org/sqlite
// is a pure Go translation of the SQLite C code — no C compiler needed,
// works everywhere Go works.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"

	"github.com/mediapro/studio/internal/store"
)

// DB wraps a sql.DB connection pool and implements store.KV.
type DB struct {
	conn *sql.DB
}

var _ store.KV = (*DB)(nil)

// New opens (or creates) the database at dbPath and ensures the kv table
// exists.
//
// dbPath examples:
//   - "data/mediapro.db" → file-based database (persistent)
//   - ":memory:"         → in-memory database (great for tests, lost on close)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Ping forces an immediate connection so a bad path or permissions issue
	// surfaces here rather than on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write is in progress.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the kv table. CREATE TABLE IF NOT EXISTS is idempotent,
// so this is safe on every start.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating kv table: %w", err)
	}
	return nil
}

// Get returns the value stored under key. Absence is reported via the
// boolean, not as an error.
func (db *DB) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := db.conn.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE key = ?`, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("sqlite: getting %s: %w", key, err)
	}
	return value, true, nil
}

// Put fully overwrites the value under key, inserting the row if needed.
func (db *DB) Put(ctx context.Context, key, value string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("sqlite: putting %s: %w", key, err)
	}
	return nil
}

// Delete removes the row for key. Deleting a missing key is a no-op.
func (db *DB) Delete(ctx context.Context, key string) error {
	_, err := db.conn.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("sqlite: deleting %s: %w", key, err)
	}
	return nil
}
