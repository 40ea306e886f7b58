package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Validate checks the configuration for a command mode: "run", "extract" or
// "geocode". All problems are reported together.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "run":
		errs = append(errs, c.validateSource()...)
		errs = append(errs, c.validateAnnotate()...)
		errs = append(errs, c.validatePipeline()...)
		errs = append(errs, c.validateGeocode()...)
		errs = append(errs, c.validateMap()...)
		errs = append(errs, c.validateExport()...)
	case "geocode":
		errs = append(errs, c.validateGeocode()...)
	case "extract":
		errs = append(errs, c.validatePipeline()...)
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateSource() []string {
	var errs []string
	switch c.Source.Kind {
	case SourceDocumentCloud:
		if c.DocumentCloud.BaseURL == "" {
			errs = append(errs, "documentcloud.base_url is required")
		}
		if c.DocumentCloud.RetryAttempts < 1 {
			errs = append(errs, "documentcloud.retry_attempts must be >= 1")
		}
	case SourceLocal:
		if c.Local.Dir == "" && len(c.Local.Files) == 0 {
			errs = append(errs, "local.dir or local.files is required")
		}
		if c.Local.AnnotationsDB == "" {
			errs = append(errs, "local.annotations_db is required")
		}
	default:
		errs = append(errs, fmt.Sprintf("source.kind must be %q or %q", SourceDocumentCloud, SourceLocal))
	}
	return errs
}

func (c *Config) validateAnnotate() []string {
	switch c.Annotate.Access {
	case "private", "organization", "public":
		return nil
	default:
		return []string{"annotate.access must be private, organization or public"}
	}
}

func (c *Config) validatePipeline() []string {
	switch c.Pipeline.Policy {
	case "geocode_first", "annotate_first":
		return nil
	default:
		return []string{"pipeline.policy must be geocode_first or annotate_first"}
	}
}

func (c *Config) validateGeocode() []string {
	var errs []string
	if len(c.Geocode.Providers) == 0 {
		errs = append(errs, "geocode.providers must not be empty")
	}
	for _, p := range c.Geocode.Providers {
		switch p {
		case "nominatim":
			if c.Geocode.UserAgent == "" {
				errs = append(errs, "geocode.user_agent is required for nominatim")
			}
		case "census":
		case "google":
			if c.Geocode.GoogleAPIKey == "" {
				errs = append(errs, "geocode.google_api_key is required for google")
			}
		default:
			errs = append(errs, fmt.Sprintf("geocode.providers: unknown provider %q", p))
		}
	}
	if c.Geocode.RatePerSecond <= 0 {
		errs = append(errs, "geocode.rate_per_second must be > 0")
	} else if c.Geocode.RatePerSecond > 1 {
		// Lookups must stay at least one second apart.
		errs = append(errs, "geocode.rate_per_second must be <= 1")
	}
	switch c.Cache.Driver {
	case "", "none":
	case "sqlite":
		if c.Cache.Path == "" {
			errs = append(errs, "cache.path is required for sqlite")
		}
	case "postgres":
		if c.Cache.DatabaseURL == "" {
			errs = append(errs, "cache.database_url is required for postgres")
		}
	default:
		errs = append(errs, "cache.driver must be none, sqlite or postgres")
	}
	if c.Cache.TTLDays < 0 {
		errs = append(errs, "cache.ttl_days must be >= 0")
	}
	return errs
}

func (c *Config) validateMap() []string {
	var errs []string
	switch c.Map.View {
	case "", "fit", "first", "world":
	default:
		errs = append(errs, "map.view must be fit, first or world")
	}
	if c.Map.Zoom < 0 || c.Map.Zoom > 19 {
		errs = append(errs, "map.zoom must be between 0 and 19")
	}
	return errs
}

func (c *Config) validateExport() []string {
	var errs []string
	switch c.Export.Destination {
	case DestinationPlatform:
		if c.Source.Kind == SourceDocumentCloud && c.DocumentCloud.AddonRunID == "" && !c.Pipeline.DryRun {
			errs = append(errs, "documentcloud.addon_run_id is required for the platform destination")
		}
	case DestinationDir:
		if c.Export.Dir == "" {
			errs = append(errs, "export.dir is required")
		}
	case DestinationS3:
		if c.S3.Bucket == "" {
			errs = append(errs, "s3.bucket is required")
		}
	case DestinationMinio:
		if c.Minio.Endpoint == "" || c.Minio.Bucket == "" {
			errs = append(errs, "minio.endpoint and minio.bucket are required")
		}
	default:
		errs = append(errs, "export.destination must be platform, dir, s3 or minio")
	}
	if c.Export.RetainOnFailure && c.Export.RetainDir == "" {
		errs = append(errs, "export.retain_dir is required when retain_on_failure is set")
	}
	return errs
}
