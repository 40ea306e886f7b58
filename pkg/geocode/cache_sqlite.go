package geocode

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const sqliteCacheMigration = `
CREATE TABLE IF NOT EXISTS geocode_cache (
	address_hash TEXT PRIMARY KEY,
	latitude     REAL NOT NULL DEFAULT 0,
	longitude    REAL NOT NULL DEFAULT 0,
	source       TEXT NOT NULL DEFAULT '',
	quality      TEXT NOT NULL DEFAULT '',
	display_name TEXT NOT NULL DEFAULT '',
	matched      INTEGER NOT NULL DEFAULT 0,
	cached_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

// SQLiteCache is a file-backed Cache using modernc.org/sqlite.
type SQLiteCache struct {
	db      *sql.DB
	ttlDays int
}

// NewSQLiteCache opens (and migrates) a SQLite cache at dsn. A ttlDays of
// zero keeps entries forever.
func NewSQLiteCache(dsn string, ttlDays int) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: sqlite cache open")
	}
	for _, stmt := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		sqliteCacheMigration,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrap(err, "geocode: sqlite cache init")
		}
	}
	return &SQLiteCache{db: db, ttlDays: ttlDays}, nil
}

// Get implements Cache.
func (c *SQLiteCache) Get(ctx context.Context, key string) (*Result, bool, error) {
	query := "SELECT latitude, longitude, source, quality, display_name, matched FROM geocode_cache WHERE address_hash = ?"
	args := []any{key}
	if c.ttlDays > 0 {
		query += " AND cached_at > datetime('now', ?)"
		args = append(args, fmt.Sprintf("-%d days", c.ttlDays))
	}

	var r Result
	err := c.db.QueryRowContext(ctx, query, args...).Scan(
		&r.Latitude, &r.Longitude, &r.Source, &r.Quality, &r.DisplayName, &r.Matched,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrap(err, "geocode: sqlite cache get")
	}

	zap.L().Debug("geocode cache hit", zap.String("key", keyPrefix(key)), zap.Bool("matched", r.Matched))
	return &r, true, nil
}

// Put implements Cache.
func (c *SQLiteCache) Put(ctx context.Context, key string, result *Result) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO geocode_cache (address_hash, latitude, longitude, source, quality, display_name, matched, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT (address_hash) DO UPDATE SET
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			source = excluded.source,
			quality = excluded.quality,
			display_name = excluded.display_name,
			matched = excluded.matched,
			cached_at = excluded.cached_at`,
		key, result.Latitude, result.Longitude, result.Source, result.Quality, result.DisplayName, result.Matched,
	)
	if err != nil {
		return eris.Wrap(err, "geocode: sqlite cache put")
	}
	return nil
}

// Close closes the underlying database.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
