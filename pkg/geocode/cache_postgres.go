package geocode

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Pool is the subset of pgxpool.Pool used by PostgresCache.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DefaultCacheTable is the Postgres table used when none is configured.
const DefaultCacheTable = "public.geocode_cache"

// PostgresCache is a shared Cache backed by a Postgres table.
type PostgresCache struct {
	pool    Pool
	table   string
	ttlDays int
}

// NewPostgresCache creates a PostgresCache. Call Migrate once to create the table.
func NewPostgresCache(pool Pool, table string, ttlDays int) *PostgresCache {
	if table == "" {
		table = DefaultCacheTable
	}
	return &PostgresCache{pool: pool, table: table, ttlDays: ttlDays}
}

// Migrate creates the cache table if it does not exist.
func (c *PostgresCache) Migrate(ctx context.Context) error {
	_, err := c.pool.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			address_hash TEXT PRIMARY KEY,
			latitude     DOUBLE PRECISION NOT NULL DEFAULT 0,
			longitude    DOUBLE PRECISION NOT NULL DEFAULT 0,
			source       TEXT NOT NULL DEFAULT '',
			quality      TEXT NOT NULL DEFAULT '',
			display_name TEXT NOT NULL DEFAULT '',
			matched      BOOLEAN NOT NULL DEFAULT false,
			cached_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, c.table))
	if err != nil {
		return eris.Wrap(err, "geocode: postgres cache migrate")
	}
	return nil
}

// Get implements Cache.
func (c *PostgresCache) Get(ctx context.Context, key string) (*Result, bool, error) {
	query := fmt.Sprintf("SELECT latitude, longitude, source, quality, display_name, matched FROM %s WHERE address_hash = $1", c.table)
	if c.ttlDays > 0 {
		query += fmt.Sprintf(" AND cached_at > now() - interval '%d days'", c.ttlDays)
	}

	var r Result
	err := c.pool.QueryRow(ctx, query, key).Scan(
		&r.Latitude, &r.Longitude, &r.Source, &r.Quality, &r.DisplayName, &r.Matched,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrap(err, "geocode: postgres cache get")
	}

	zap.L().Debug("geocode cache hit", zap.String("key", keyPrefix(key)), zap.Bool("matched", r.Matched))
	return &r, true, nil
}

// Put implements Cache.
func (c *PostgresCache) Put(ctx context.Context, key string, result *Result) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (address_hash, latitude, longitude, source, quality, display_name, matched, cached_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (address_hash) DO UPDATE SET
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			source = EXCLUDED.source,
			quality = EXCLUDED.quality,
			display_name = EXCLUDED.display_name,
			matched = EXCLUDED.matched,
			cached_at = now()`, c.table)

	_, err := c.pool.Exec(ctx, query,
		key, result.Latitude, result.Longitude, result.Source, result.Quality, result.DisplayName, result.Matched,
	)
	if err != nil {
		return eris.Wrap(err, "geocode: postgres cache put")
	}
	return nil
}
