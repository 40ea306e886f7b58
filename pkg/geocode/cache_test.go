package geocode

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKey_Deterministic(t *testing.T) {
	addr := AddressInput{Street: "100 S Biscayne Blvd", City: "Miami", State: "FL", ZipCode: "33131"}
	key1 := cacheKey(addr)
	key2 := cacheKey(addr)
	assert.Equal(t, key1, key2)
	assert.Len(t, key1, 64) // SHA-256 hex is 64 chars
}

func TestCacheKey_QueryNormalized(t *testing.T) {
	a := AddressInput{Query: "123 Main St,  Springfield"}
	b := AddressInput{Query: " 123 MAIN ST, Springfield "}
	assert.Equal(t, cacheKey(a), cacheKey(b))
}

func TestCacheKey_DifferentAddresses(t *testing.T) {
	assert.NotEqual(t, cacheKey(AddressInput{Query: "100 Main St"}), cacheKey(AddressInput{Query: "200 Main St"}))
	assert.NotEqual(t, cacheKey(AddressInput{Query: "100 Main St"}), cacheKey(AddressInput{Street: "100 Main St"}))
}

func TestSQLiteCache_RoundTrip(t *testing.T) {
	cache, err := NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"), 0)
	require.NoError(t, err)
	defer cache.Close() //nolint:errcheck

	ctx := context.Background()
	_, ok, err := cache.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	in := &Result{Latitude: 39.8, Longitude: -89.6, Source: "nominatim", Quality: "rooftop", DisplayName: "Springfield", Matched: true}
	require.NoError(t, cache.Put(ctx, "k1", in))

	got, ok, err := cache.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, *in, *got)

	// Overwrite with a miss.
	require.NoError(t, cache.Put(ctx, "k1", &Result{Source: "nominatim"}))
	got, ok, err = cache.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, got.Matched)
}

func TestSQLiteCache_TTLExpiry(t *testing.T) {
	cache, err := NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"), 7)
	require.NoError(t, err)
	defer cache.Close() //nolint:errcheck

	ctx := context.Background()
	require.NoError(t, cache.Put(ctx, "k1", &Result{Matched: true, Source: "census"}))

	_, ok, err := cache.Get(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = cache.db.Exec("UPDATE geocode_cache SET cached_at = datetime('now', '-10 days')")
	require.NoError(t, err)

	_, ok, err = cache.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPostgresCache_Hit(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT latitude, longitude, source, quality, display_name, matched FROM public.geocode_cache`).
		WithArgs("abc123").
		WillReturnRows(
			pgxmock.NewRows([]string{"latitude", "longitude", "source", "quality", "display_name", "matched"}).
				AddRow(25.77, -80.19, "nominatim", "rooftop", "Miami", true),
		)

	c := NewPostgresCache(mock, "", 0)
	result, ok, err := c.Get(context.Background(), "abc123")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, result.Matched)
	assert.Equal(t, "nominatim", result.Source)
	assert.InDelta(t, 25.77, result.Latitude, 0.01)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCache_MissAndTTL(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM geo\.cache WHERE address_hash = \$1 AND cached_at > now\(\) - interval '30 days'`).
		WithArgs("nope").
		WillReturnError(pgx.ErrNoRows)

	c := NewPostgresCache(mock, "geo.cache", 30)
	result, ok, err := c.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, result)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCache_GetError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT`).WithArgs("k").WillReturnError(assert.AnError)

	c := NewPostgresCache(mock, "", 0)
	_, ok, err := c.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestPostgresCache_Put(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO public.geocode_cache`).
		WithArgs("k1", 1.5, 2.5, "census", "rooftop", "X", true).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	c := NewPostgresCache(mock, "", 0)
	err = c.Put(context.Background(), "k1", &Result{Latitude: 1.5, Longitude: 2.5, Source: "census", Quality: "rooftop", DisplayName: "X", Matched: true})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCache_Migrate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS public.geocode_cache`).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	require.NoError(t, NewPostgresCache(mock, "", 0).Migrate(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
