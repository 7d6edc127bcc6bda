// Package sqlitestore provides a SQLite-backed database.Store.
package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"tangled.org/arabica.social/dialin/internal/database"

	"github.com/XSAM/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS history (
	id         TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL,
	request    TEXT NOT NULL,
	recipe     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_history_created_at ON history(created_at DESC, id DESC);

CREATE TABLE IF NOT EXISTS calibrations (
	key        TEXT PRIMARY KEY,
	grinder    TEXT NOT NULL,
	method     TEXT NOT NULL,
	dial       REAL NOT NULL,
	updated_at TEXT NOT NULL
);
`

// Store implements database.Store using SQLite.
type Store struct {
	db *sql.DB
}

// Ensure Store implements the interface at compile time.
var _ database.Store = (*Store)(nil)

// Open opens (or creates) the SQLite database at path and applies the schema.
// Queries are traced through otelsql.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := otelsql.Open("sqlite", dsn, otelsql.WithAttributes(semconv.DBSystemSqlite))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows a single writer; serialize through one connection.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
