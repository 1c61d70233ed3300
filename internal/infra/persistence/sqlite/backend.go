// Package sqlite keeps the model document in a SQLite state table.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"mealtrack/internal/persistence"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

const bucket = "health_tracker"

// Backend stores the document as a single row of the state table.
type Backend struct {
	db   *sql.DB
	path string
}

// New opens (or creates) the database at path.
func New(ctx context.Context, path string) (*Backend, error) {
	if path == "" {
		path = "mealtrack.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &Backend{db: db, path: path}, nil
}

// Read returns the stored document or persistence.ErrNotFound.
func (b *Backend) Read(ctx context.Context) ([]byte, error) {
	var payload []byte
	err := b.db.QueryRowContext(ctx, `SELECT payload FROM state WHERE bucket = ?`, bucket).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select state: %w", err)
	}
	return payload, nil
}

// Write upserts the document row.
func (b *Backend) Write(ctx context.Context, data []byte) error {
	if _, err := b.db.ExecContext(ctx,
		`INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`,
		bucket, data); err != nil {
		return fmt.Errorf("upsert %s: %w", bucket, err)
	}
	return nil
}

// Close closes the database.
func (b *Backend) Close() error { return b.db.Close() }

// DB exposes the underlying sql.DB for tests.
func (b *Backend) DB() *sql.DB { return b.db }

// Path returns the database path.
func (b *Backend) Path() string { return b.path }
