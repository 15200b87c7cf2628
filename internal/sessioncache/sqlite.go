package sessioncache

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

// sqliteSchemaVersion is bumped when the table layout changes. Databases
// carrying another version are rejected.
const sqliteSchemaVersion = 1

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL);
CREATE TABLE IF NOT EXISTS cache_entries (
    key        TEXT PRIMARY KEY,
    blob       TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

// ErrSchemaMismatch indicates the cache database was created by an
// incompatible version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// SQLiteStore keeps blobs in a SQLite table.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates the cache database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, storageErr("sqlite", "open", "", fmt.Errorf("create cache directory: %w", err))
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, storageErr("sqlite", "open", "", fmt.Errorf("open sqlite db: %w", err))
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, storageErr("sqlite", "open", "", fmt.Errorf("apply pragma %q: %w", pragma, execErr))
		}
	}

	store := &SQLiteStore{db: db, path: path}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, storageErr("sqlite", "open", "", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	var version int
	err = tx.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", sqliteSchemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	case version != sqliteSchemaVersion:
		return fmt.Errorf("%w: database has version %d, expected %d (run 'sheetslug cache clear' or delete %s)",
			ErrSchemaMismatch, version, sqliteSchemaVersion, s.path)
	}

	return tx.Commit()
}

// Path returns the database location.
func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var blob string
	err := s.db.QueryRowContext(ctx, "SELECT blob FROM cache_entries WHERE key = ?", key).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, storageErr("sqlite", "get", key, err)
	}
	return []byte(blob), true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, blob []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cache_entries (key, blob, updated_at) VALUES (?, ?, ?)
         ON CONFLICT(key) DO UPDATE SET blob = excluded.blob, updated_at = excluded.updated_at`,
		key, string(blob), time.Now().UTC().Format(time.RFC3339Nano))
	return storageErr("sqlite", "set", key, err)
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM cache_entries WHERE key = ?", key)
	return storageErr("sqlite", "delete", key, err)
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM cache_entries")
	return storageErr("sqlite", "clear", "", err)
}

func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, LENGTH(blob), updated_at FROM cache_entries ORDER BY updated_at DESC")
	if err != nil {
		return Stats{}, storageErr("sqlite", "stats", "", err)
	}
	defer rows.Close()

	stats := Stats{Backend: "sqlite", Location: s.path}
	for rows.Next() {
		var (
			item    ItemStat
			updated string
		)
		if err := rows.Scan(&item.Key, &item.Bytes, &updated); err != nil {
			return Stats{}, storageErr("sqlite", "stats", "", err)
		}
		if ts, parseErr := time.Parse(time.RFC3339Nano, updated); parseErr == nil {
			item.UpdatedAt = ts
		}
		stats.Entries++
		stats.Bytes += int64(item.Bytes)
		stats.Items = append(stats.Items, item)
	}
	if err := rows.Err(); err != nil {
		return Stats{}, storageErr("sqlite", "stats", "", err)
	}
	return stats, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
