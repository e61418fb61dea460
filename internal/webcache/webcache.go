// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package webcache caches upstream GET responses in SQLite so repeated tool
// calls do not re-fetch the same records from the polite pool. Only raw
// response bodies are stored, keyed by request URL with a freshness TTL;
// normalized entities are never persisted.
package webcache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

// Cache is a TTL-bounded response cache. A nil *Cache is valid and caches
// nothing, so callers do not need to branch on whether caching is enabled.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
}

// Open creates or opens the cache database at path. The parent directory is
// created if missing. A non-positive ttl defaults to 24 hours.
func Open(path string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS responses (
		url TEXT PRIMARY KEY,
		body BLOB NOT NULL,
		fetched_at INTEGER NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Cache{db: db, ttl: ttl}, nil
}

// Close releases the database connection.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.db.Close()
}

// Get returns the cached body for url if present and fresh. Cache read
// failures are logged and reported as misses; they never fail the request.
func (c *Cache) Get(url string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}

	var body []byte
	var fetchedAt int64
	err := c.db.QueryRow(
		`SELECT body, fetched_at FROM responses WHERE url = ?`, url,
	).Scan(&body, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, false
	}
	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("cache read failed")
		return nil, false
	}

	if time.Since(time.Unix(0, fetchedAt)) > c.ttl {
		return nil, false
	}
	return body, true
}

// Put stores body for url, replacing any previous entry. Write failures are
// logged and swallowed.
func (c *Cache) Put(url string, body []byte) {
	if c == nil {
		return
	}
	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO responses (url, body, fetched_at) VALUES (?, ?, ?)`,
		url, body, time.Now().UnixNano(),
	)
	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("cache write failed")
	}
}

// Prune deletes entries older than the TTL and returns how many were removed.
func (c *Cache) Prune() (int, error) {
	if c == nil {
		return 0, nil
	}
	cutoff := time.Now().Add(-c.ttl).UnixNano()
	res, err := c.db.Exec(`DELETE FROM responses WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning cache: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
