// Package store provides the durable local document store.
//
// Every entity lives in its own slot: one row per entity key holding the
// full JSON document. Saves are whole-document overwrites (last writer
// wins, no merge); every apply is also appended to a change log table for
// post-hoc audit.
//
// The store runs on embedded SQLite with WAL mode for concurrent reads.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// Origin records where an applied document came from.
type Origin string

const (
	// OriginLocal marks a save issued by this client.
	OriginLocal Origin = "local"
	// OriginRemote marks a document applied from a peer's broadcast.
	OriginRemote Origin = "remote"
)

// ChangeEntry is one row of the apply audit trail.
type ChangeEntry struct {
	Key       string    `json:"key"`
	Origin    Origin    `json:"origin"`
	Sender    string    `json:"sender,omitempty"`
	AppliedAt time.Time `json:"appliedAt"`
}

// Store wraps the SQLite connection holding the entity slots.
type Store struct {
	conn *sql.DB
	path string
}

// Open creates or opens the document store at path.
//
// The database is opened in embedded mode with WAL for concurrent reads.
// The caller must call Close when done.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping store: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(5 * time.Minute)

	s := &Store{conn: conn, path: path}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := s.conn.Exec(pragma); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("failed to apply %s: %w", pragma, err)
		}
	}
	return s, nil
}

// Close checkpoints the WAL and closes the connection.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}
	if _, err := s.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to checkpoint WAL: %v\n", err)
	}
	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("failed to close store: %w", err)
	}
	s.conn = nil
	return nil
}

// InitSchema creates the documents and change_log tables. Idempotent.
func (s *Store) InitSchema() error {
	return s.InitSchemaContext(context.Background())
}

// InitSchemaContext creates the schema with context support.
func (s *Store) InitSchemaContext(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		key TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS change_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		key TEXT NOT NULL,
		origin TEXT NOT NULL,
		sender TEXT,
		applied_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_change_log_key ON change_log(key);
	`
	if _, err := s.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Save overwrites the document stored under key and appends a change-log
// entry. The write is a full-document replacement.
func (s *Store) Save(key, data string, origin Origin, sender string) error {
	return s.SaveContext(context.Background(), key, data, origin, sender)
}

// SaveContext overwrites a document with context support.
func (s *Store) SaveContext(ctx context.Context, key, data string, origin Origin, sender string) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin save: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Format(time.RFC3339)
	_, err = tx.ExecContext(ctx, `
	INSERT INTO documents (key, data, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
		data = excluded.data,
		updated_at = excluded.updated_at
	`, key, data, now)
	if err != nil {
		return fmt.Errorf("failed to save document %s: %w", key, err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO change_log (key, origin, sender, applied_at) VALUES (?, ?, ?, ?)`,
		key, string(origin), sender, now)
	if err != nil {
		return fmt.Errorf("failed to record change for %s: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit save: %w", err)
	}
	return nil
}

// Load returns the document stored under key, or the key's built-in
// default when nothing was ever saved.
func (s *Store) Load(key string) (string, error) {
	return s.LoadContext(context.Background(), key)
}

// LoadContext loads a document with context support.
func (s *Store) LoadContext(ctx context.Context, key string) (string, error) {
	var data string
	err := s.conn.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE key = ?`, key).Scan(&data)
	if err == sql.ErrNoRows {
		return DefaultValue(key), nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load document %s: %w", key, err)
	}
	return data, nil
}

// ChangeTail returns the most recent change-log entries, newest first.
func (s *Store) ChangeTail(ctx context.Context, limit int) ([]ChangeEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.conn.QueryContext(ctx, `
	SELECT key, origin, sender, applied_at
	FROM change_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query change log: %w", err)
	}
	defer rows.Close()

	var entries []ChangeEntry
	for rows.Next() {
		var e ChangeEntry
		var origin, appliedAt string
		var sender sql.NullString
		if err := rows.Scan(&e.Key, &origin, &sender, &appliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan change entry: %w", err)
		}
		e.Origin = Origin(origin)
		e.Sender = sender.String
		if t, err := time.Parse(time.RFC3339, appliedAt); err == nil {
			e.AppliedAt = t
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating change log: %w", err)
	}
	return entries, nil
}
