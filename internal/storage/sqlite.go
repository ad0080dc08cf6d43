package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const slotSchema = `
CREATE TABLE IF NOT EXISTS slots (
	name       TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`

// SQLiteCache keeps the slots in a single-table SQLite database.
type SQLiteCache struct {
	db *sql.DB
}

// OpenSQLiteCache opens (and if needed creates) the database at path.
func OpenSQLiteCache(path string) (*SQLiteCache, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("storage error creating directories: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage error opening database: %w", err)
	}
	// One connection keeps ":memory:" databases coherent across calls.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(slotSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage error creating schema: %w", err)
	}
	return &SQLiteCache{db: db}, nil
}

// Get reads a slot.
func (c *SQLiteCache) Get(ctx context.Context, slot Slot) (string, bool, error) {
	var value string
	err := c.db.QueryRowContext(ctx, `SELECT value FROM slots WHERE name = ?`, string(slot)).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage error reading slot %s: %w", slot, err)
	}
	return value, true, nil
}

// Set inserts or replaces a slot.
func (c *SQLiteCache) Set(ctx context.Context, slot Slot, value string) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO slots (name, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		string(slot), value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("storage error writing slot %s: %w", slot, err)
	}
	return nil
}

// Delete removes a slot.
func (c *SQLiteCache) Delete(ctx context.Context, slot Slot) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM slots WHERE name = ?`, string(slot)); err != nil {
		return fmt.Errorf("storage error removing slot %s: %w", slot, err)
	}
	return nil
}

// Close releases the database handle.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
