// Package storage is the planner's local persistence: a small key/value
// store (SQLite on disk, or in memory) and the LocalStore adapter that keeps
// the trip document and the remembered share id in it.
package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3" // registers the "sqlite3" driver
)

// KV is the minimal key/value contract the local store needs. It mirrors
// browser localStorage: string keys, string values, full overwrite on Set.
type KV interface {
	// Get returns the value under key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key, replacing any prior value.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

//go:embed schema.sql
var schema string

// SQLiteKV is a KV backed by a single SQLite table.
type SQLiteKV struct {
	db *sql.DB
}

// OpenSQLiteKV opens (creating if needed) the SQLite database at path and
// ensures the kv table exists. Use ":memory:" for a throwaway store.
func OpenSQLiteKV(path string) (*SQLiteKV, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("storage.OpenSQLiteKV: open: %w", err)
	}
	// A single connection keeps ":memory:" databases consistent and
	// serialises writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.OpenSQLiteKV: init schema: %w", err)
	}
	return &SQLiteKV{db: db}, nil
}

// Close closes the database.
func (s *SQLiteKV) Close() error {
	return s.db.Close()
}

// Get implements KV. A missing key is reported as absent, not as an error.
func (s *SQLiteKV) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage.SQLiteKV.Get: %w", err)
	}
	return value, true, nil
}

// Set implements KV with an upsert on the key.
func (s *SQLiteKV) Set(ctx context.Context, key, value string) error {
	const q = `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	if _, err := s.db.ExecContext(ctx, q, key, value); err != nil {
		return fmt.Errorf("storage.SQLiteKV.Set: %w", err)
	}
	return nil
}

// Delete implements KV. Deleting an absent key is not an error.
func (s *SQLiteKV) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("storage.SQLiteKV.Delete: %w", err)
	}
	return nil
}

// MemoryKV is a KV held in a map. It is safe for concurrent use.
type MemoryKV struct {
	mu   sync.Mutex
	data map[string]string
}

// NewMemoryKV returns an empty in-memory store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

// Get implements KV.
func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set implements KV.
func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Delete implements KV.
func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
