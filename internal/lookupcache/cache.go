// Package lookupcache persists resolved queries across runs so overlapping
// input files skip the browser entirely. Only complete addresses are cached:
// a not_found outcome may be transient and stays retryable in a fresh
// lineage.
package lookupcache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Entry is one cached resolution.
type Entry struct {
	Address    string
	LookupType string
}

// Cache is a sqlite-backed lookup cache.
type Cache struct {
	db  *sql.DB
	log *zap.Logger
}

const migration = `
CREATE TABLE IF NOT EXISTS lookups (
	query_hash       TEXT PRIMARY KEY,
	search_query     TEXT NOT NULL,
	standard_address TEXT NOT NULL,
	lookup_type      TEXT NOT NULL,
	run_id           TEXT NOT NULL,
	resolved_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_lookups_resolved_at ON lookups(resolved_at);
`

// Open opens (or creates) the cache database at path and configures WAL mode.
func Open(path string, log *zap.Logger) (*Cache, error) {
	if log == nil {
		log = zap.NewNop()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "lookupcache: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "lookupcache: exec %s", pragma)
		}
	}
	if _, err := db.Exec(migration); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "lookupcache: migrate")
	}

	return &Cache{db: db, log: log}, nil
}

// Close releases the database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached resolution for query, or nil on a miss.
func (c *Cache) Get(ctx context.Context, query string) (*Entry, error) {
	key := cacheKey(query)

	var e Entry
	err := c.db.QueryRowContext(ctx,
		`SELECT standard_address, lookup_type FROM lookups WHERE query_hash = ?`,
		key,
	).Scan(&e.Address, &e.LookupType)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "lookupcache: get")
	}

	c.log.Debug("lookup cache hit", zap.String("key", key[:12]))
	return &e, nil
}

// Put stores a resolution, replacing any prior entry for the same query.
func (c *Cache) Put(ctx context.Context, runID, query string, e Entry) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO lookups (query_hash, search_query, standard_address, lookup_type, run_id, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (query_hash) DO UPDATE SET
			standard_address = excluded.standard_address,
			lookup_type = excluded.lookup_type,
			run_id = excluded.run_id,
			resolved_at = excluded.resolved_at`,
		cacheKey(query), query, e.Address, e.LookupType, runID, time.Now().UTC(),
	)
	return eris.Wrap(err, "lookupcache: put")
}

// cacheKey returns SHA-256 hex of the case-folded query.
func cacheKey(query string) string {
	h := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(query))))
	return fmt.Sprintf("%x", h)
}
