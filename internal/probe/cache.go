package probe

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

// Cache persists measured durations across runs, keyed by (path, size, mtime)
// so a changed file never serves a stale count. Identifiers are never cached;
// GUIDs are scoped to one run.
type Cache struct {
	db   *sql.DB
	path string
}

// OpenCache initializes or connects to the duration cache database.
func OpenCache(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	const schema = `CREATE TABLE IF NOT EXISTS durations (
        path TEXT NOT NULL,
        size INTEGER NOT NULL,
        mtime_unix INTEGER NOT NULL,
        frames INTEGER NOT NULL,
        method TEXT NOT NULL,
        probed_at TEXT NOT NULL,
        PRIMARY KEY (path, size, mtime_unix)
    )`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply cache schema: %w", err)
	}

	return &Cache{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Path returns the on-disk location backing the cache.
func (c *Cache) Path() string {
	if c == nil {
		return ""
	}
	return c.path
}

// Lookup returns the cached frame count for the exact file identity, if any.
func (c *Cache) Lookup(ctx context.Context, path string, size int64, mtime time.Time) (int64, Method, bool, error) {
	if c == nil || c.db == nil {
		return 0, "", false, nil
	}
	var frames int64
	var method string
	err := c.db.QueryRowContext(
		ctx,
		`SELECT frames, method FROM durations WHERE path = ? AND size = ? AND mtime_unix = ?`,
		path, size, mtime.Unix(),
	).Scan(&frames, &method)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, "", false, nil
	}
	if err != nil {
		return 0, "", false, fmt.Errorf("cache lookup: %w", err)
	}
	switch Method(method) {
	case MethodMeasured, MethodEstimated:
		return frames, Method(method), true, nil
	default:
		// Unknown provenance written by a future version; ignore it.
		return 0, "", false, nil
	}
}

// Store records a probed frame count for the exact file identity.
func (c *Cache) Store(ctx context.Context, path string, size int64, mtime time.Time, frames int64, method Method) error {
	if c == nil || c.db == nil {
		return nil
	}
	_, err := c.db.ExecContext(
		ctx,
		`INSERT INTO durations (path, size, mtime_unix, frames, method, probed_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(path, size, mtime_unix) DO UPDATE SET
            frames = excluded.frames,
            method = excluded.method,
            probed_at = excluded.probed_at`,
		path, size, mtime.Unix(), frames, string(method), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("cache store: %w", err)
	}
	return nil
}
