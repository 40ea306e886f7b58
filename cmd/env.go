package main

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/address-mapper/internal/config"
	"github.com/sells-group/address-mapper/internal/export"
	"github.com/sells-group/address-mapper/internal/platform"
	"github.com/sells-group/address-mapper/internal/platform/documentcloud"
	"github.com/sells-group/address-mapper/internal/platform/local"
	"github.com/sells-group/address-mapper/pkg/geocode"
)

// closers releases resources in reverse acquisition order.
type closers []func()

func (c *closers) add(fn func()) { *c = append(*c, fn) }

func (c closers) close() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

// sourceEnv is a document source together with the platform side channels
// it offers for artifacts and the status message. Both may be nil.
type sourceEnv struct {
	Source    platform.Source
	Uploader  platform.Uploader
	Messenger platform.Messenger
	Close     func()
}

// initGeocoder builds the geocoding cascade and its optional result cache.
func initGeocoder(ctx context.Context, c *config.Config) (*geocode.CascadeClient, func(), error) {
	opts := []geocode.Option{
		geocode.WithProviders(c.Geocode.Providers...),
		geocode.WithRateLimit(c.Geocode.RatePerSecond),
		geocode.WithUserAgent(c.Geocode.UserAgent),
		geocode.WithContactEmail(c.Geocode.Email),
		geocode.WithGoogleAPIKey(c.Geocode.GoogleAPIKey),
	}
	if c.Geocode.TimeoutSecs > 0 {
		opts = append(opts, geocode.WithHTTPClient(&http.Client{
			Timeout: time.Duration(c.Geocode.TimeoutSecs) * time.Second,
		}))
	}

	cleanup := func() {}
	switch c.Cache.Driver {
	case "sqlite":
		cache, err := geocode.NewSQLiteCache(c.Cache.Path, c.Cache.TTLDays)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, geocode.WithCache(cache))
		cleanup = func() {
			if err := cache.Close(); err != nil {
				zap.L().Warn("geocode cache close failed", zap.Error(err))
			}
		}
	case "postgres":
		pool, err := cachePool(ctx, c.Cache.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		cache := geocode.NewPostgresCache(pool, c.Cache.Table, c.Cache.TTLDays)
		if err := cache.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		opts = append(opts, geocode.WithCache(cache))
		cleanup = pool.Close
	}

	gc := geocode.NewClient(opts...)
	zap.L().Debug("geocoder ready",
		zap.Strings("providers", gc.Providers()),
		zap.String("cache", c.Cache.Driver),
	)
	return gc, cleanup, nil
}

// cachePool creates the pgxpool.Pool backing the postgres geocode cache.
func cachePool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, eris.New("geocode cache: no database_url configured (set cache.database_url)")
	}

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, eris.Wrap(err, "geocode cache: parse connection string")
	}
	poolCfg.MaxConns = 4
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, eris.Wrap(err, "geocode cache: create connection pool")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "geocode cache: ping database")
	}
	return pool, nil
}

// initSource builds the configured document source.
func initSource(c *config.Config) (*sourceEnv, error) {
	switch c.Source.Kind {
	case config.SourceDocumentCloud:
		opts := []documentcloud.Option{
			documentcloud.WithBaseURL(c.DocumentCloud.BaseURL),
			documentcloud.WithToken(c.DocumentCloud.Token),
			documentcloud.WithRetry(uint(c.DocumentCloud.RetryAttempts), time.Second),
		}
		if c.DocumentCloud.AssetURL != "" {
			opts = append(opts, documentcloud.WithAssetURL(c.DocumentCloud.AssetURL))
		}
		if c.DocumentCloud.SiteURL != "" {
			opts = append(opts, documentcloud.WithSiteURL(c.DocumentCloud.SiteURL))
		}
		if c.DocumentCloud.TimeoutSecs > 0 {
			opts = append(opts, documentcloud.WithHTTPClient(&http.Client{
				Timeout: time.Duration(c.DocumentCloud.TimeoutSecs) * time.Second,
			}))
		}
		client := documentcloud.NewClient(opts...)

		env := &sourceEnv{
			Source: documentcloud.NewSource(client, c.DocumentCloud.Documents, c.DocumentCloud.Query),
			Close:  func() {},
		}
		if c.DocumentCloud.AddonRunID != "" {
			run := documentcloud.NewAddonRun(client, c.DocumentCloud.AddonRunID)
			env.Uploader = run
			env.Messenger = run
		}
		return env, nil

	case config.SourceLocal:
		store, err := local.NewAnnotationStore(c.Local.AnnotationsDB, c.Local.BaseURL)
		if err != nil {
			return nil, err
		}
		return &sourceEnv{
			Source:    local.NewSource(c.Local.Dir, c.Local.Files, nil, store),
			Uploader:  local.NewDirUploader(c.Local.OutputDir),
			Messenger: local.LogMessenger{},
			Close: func() {
				if err := store.Close(); err != nil {
					zap.L().Warn("annotation store close failed", zap.Error(err))
				}
			},
		}, nil

	default:
		return nil, eris.Errorf("unknown source kind %q", c.Source.Kind)
	}
}

// initUploader picks the artifact destination. The platform destination
// uses the uploader offered by the source; a dry run always writes to the
// export directory.
func initUploader(ctx context.Context, c *config.Config, platformUploader platform.Uploader) (platform.Uploader, error) {
	dest := c.Export.Destination
	if c.Pipeline.DryRun {
		dest = config.DestinationDir
	}

	switch dest {
	case config.DestinationPlatform:
		if platformUploader == nil {
			return nil, eris.New("platform destination: source offers no upload target")
		}
		return platformUploader, nil
	case config.DestinationDir:
		return local.NewDirUploader(c.Export.Dir), nil
	case config.DestinationS3:
		return export.NewS3Uploader(ctx, export.S3Config{
			Bucket:       c.S3.Bucket,
			Prefix:       c.S3.Prefix,
			Region:       c.S3.Region,
			Endpoint:     c.S3.Endpoint,
			UsePathStyle: c.S3.UsePathStyle,
		})
	case config.DestinationMinio:
		return export.NewMinioUploader(export.MinioConfig{
			Endpoint:  c.Minio.Endpoint,
			AccessKey: c.Minio.AccessKey,
			SecretKey: c.Minio.SecretKey,
			UseSSL:    c.Minio.UseSSL,
			Bucket:    c.Minio.Bucket,
			Prefix:    c.Minio.Prefix,
		})
	default:
		return nil, eris.Errorf("unknown export destination %q", dest)
	}
}
