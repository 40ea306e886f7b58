package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Source        SourceConfig        `yaml:"source" mapstructure:"source"`
	DocumentCloud DocumentCloudConfig `yaml:"documentcloud" mapstructure:"documentcloud"`
	Local         LocalConfig         `yaml:"local" mapstructure:"local"`
	Annotate      AnnotateConfig      `yaml:"annotate" mapstructure:"annotate"`
	Pipeline      PipelineConfig      `yaml:"pipeline" mapstructure:"pipeline"`
	Geocode       GeocodeConfig       `yaml:"geocode" mapstructure:"geocode"`
	Cache         CacheConfig         `yaml:"cache" mapstructure:"cache"`
	Report        ReportConfig        `yaml:"report" mapstructure:"report"`
	Map           MapConfig           `yaml:"map" mapstructure:"map"`
	Export        ExportConfig        `yaml:"export" mapstructure:"export"`
	S3            S3Config            `yaml:"s3" mapstructure:"s3"`
	Minio         MinioConfig         `yaml:"minio" mapstructure:"minio"`
	Log           LogConfig           `yaml:"log" mapstructure:"log"`
}

// Source kinds.
const (
	SourceDocumentCloud = "documentcloud"
	SourceLocal         = "local"
)

// SourceConfig selects where documents come from.
type SourceConfig struct {
	Kind string `yaml:"kind" mapstructure:"kind"`
}

// DocumentCloudConfig holds DocumentCloud API settings and the document selection.
type DocumentCloudConfig struct {
	BaseURL       string   `yaml:"base_url" mapstructure:"base_url"`
	AssetURL      string   `yaml:"asset_url" mapstructure:"asset_url"`
	SiteURL       string   `yaml:"site_url" mapstructure:"site_url"`
	Token         string   `yaml:"token" mapstructure:"token"`
	Documents     []string `yaml:"documents" mapstructure:"documents"`
	Query         string   `yaml:"query" mapstructure:"query"`
	AddonRunID    string   `yaml:"addon_run_id" mapstructure:"addon_run_id"`
	RetryAttempts int      `yaml:"retry_attempts" mapstructure:"retry_attempts"`
	TimeoutSecs   int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// LocalConfig configures the local PDF source.
type LocalConfig struct {
	Dir           string   `yaml:"dir" mapstructure:"dir"`
	Files         []string `yaml:"files" mapstructure:"files"`
	AnnotationsDB string   `yaml:"annotations_db" mapstructure:"annotations_db"`
	BaseURL       string   `yaml:"base_url" mapstructure:"base_url"`
	OutputDir     string   `yaml:"output_dir" mapstructure:"output_dir"`
}

// AnnotateConfig configures created annotations.
type AnnotateConfig struct {
	Access string `yaml:"access" mapstructure:"access"`
	Title  string `yaml:"title" mapstructure:"title"`
}

// PipelineConfig configures detection and the annotate/geocode policy.
type PipelineConfig struct {
	Policy  string `yaml:"policy" mapstructure:"policy"`
	POBoxes bool   `yaml:"po_boxes" mapstructure:"po_boxes"`
	DryRun  bool   `yaml:"dry_run" mapstructure:"dry_run"`
}

// GeocodeConfig configures the geocoding cascade.
type GeocodeConfig struct {
	Providers     []string `yaml:"providers" mapstructure:"providers"`
	RatePerSecond float64  `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	UserAgent     string   `yaml:"user_agent" mapstructure:"user_agent"`
	Email         string   `yaml:"email" mapstructure:"email"`
	GoogleAPIKey  string   `yaml:"google_api_key" mapstructure:"google_api_key"`
	TimeoutSecs   int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// CacheConfig configures the geocode result cache.
type CacheConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // none, sqlite, postgres
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Table       string `yaml:"table" mapstructure:"table"`
	TTLDays     int    `yaml:"ttl_days" mapstructure:"ttl_days"`
}

// ReportConfig configures the tabular output.
type ReportConfig struct {
	CSVName  string `yaml:"csv_name" mapstructure:"csv_name"`
	XLSX     bool   `yaml:"xlsx" mapstructure:"xlsx"`
	XLSXName string `yaml:"xlsx_name" mapstructure:"xlsx_name"`
}

// MapConfig configures the HTML map.
type MapConfig struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Title       string `yaml:"title" mapstructure:"title"`
	View        string `yaml:"view" mapstructure:"view"`
	Zoom        int    `yaml:"zoom" mapstructure:"zoom"`
	TileURL     string `yaml:"tile_url" mapstructure:"tile_url"`
	Attribution string `yaml:"attribution" mapstructure:"attribution"`
}

// Export destinations.
const (
	DestinationPlatform = "platform"
	DestinationDir      = "dir"
	DestinationS3       = "s3"
	DestinationMinio    = "minio"
)

// ExportConfig configures packaging and upload.
type ExportConfig struct {
	Bundle          bool   `yaml:"bundle" mapstructure:"bundle"`
	Destination     string `yaml:"destination" mapstructure:"destination"`
	Dir             string `yaml:"dir" mapstructure:"dir"`
	WorkDir         string `yaml:"work_dir" mapstructure:"work_dir"`
	RetainOnFailure bool   `yaml:"retain_on_failure" mapstructure:"retain_on_failure"`
	RetainDir       string `yaml:"retain_dir" mapstructure:"retain_dir"`
}

// S3Config configures the S3 destination.
type S3Config struct {
	Bucket       string `yaml:"bucket" mapstructure:"bucket"`
	Prefix       string `yaml:"prefix" mapstructure:"prefix"`
	Region       string `yaml:"region" mapstructure:"region"`
	Endpoint     string `yaml:"endpoint" mapstructure:"endpoint"`
	UsePathStyle bool   `yaml:"use_path_style" mapstructure:"use_path_style"`
}

// MinioConfig configures the MinIO destination.
type MinioConfig struct {
	Endpoint  string `yaml:"endpoint" mapstructure:"endpoint"`
	AccessKey string `yaml:"access_key" mapstructure:"access_key"`
	SecretKey string `yaml:"secret_key" mapstructure:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl" mapstructure:"use_ssl"`
	Bucket    string `yaml:"bucket" mapstructure:"bucket"`
	Prefix    string `yaml:"prefix" mapstructure:"prefix"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from config.yaml, environment variables and defaults.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ADDRMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("source.kind", SourceDocumentCloud)
	v.SetDefault("documentcloud.base_url", "https://api.www.documentcloud.org/api")
	v.SetDefault("documentcloud.asset_url", "https://s3.documentcloud.org/")
	v.SetDefault("documentcloud.site_url", "https://www.documentcloud.org")
	v.SetDefault("documentcloud.token", "")
	v.SetDefault("documentcloud.documents", []string{})
	v.SetDefault("documentcloud.query", "")
	v.SetDefault("documentcloud.addon_run_id", "")
	v.SetDefault("documentcloud.retry_attempts", 3)
	v.SetDefault("documentcloud.timeout_secs", 60)
	v.SetDefault("local.dir", ".")
	v.SetDefault("local.files", []string{})
	v.SetDefault("local.annotations_db", "annotations.db")
	v.SetDefault("local.base_url", "http://localhost")
	v.SetDefault("local.output_dir", "output")
	v.SetDefault("annotate.access", "private")
	v.SetDefault("annotate.title", "Address found")
	v.SetDefault("pipeline.policy", "geocode_first")
	v.SetDefault("pipeline.po_boxes", true)
	v.SetDefault("pipeline.dry_run", false)
	v.SetDefault("geocode.providers", []string{"nominatim"})
	v.SetDefault("geocode.rate_per_second", 1.0)
	v.SetDefault("geocode.user_agent", "address_mapper")
	v.SetDefault("geocode.email", "")
	v.SetDefault("geocode.google_api_key", "")
	v.SetDefault("geocode.timeout_secs", 30)
	v.SetDefault("cache.driver", "none")
	v.SetDefault("cache.path", "geocode_cache.db")
	v.SetDefault("cache.database_url", "")
	v.SetDefault("cache.table", "public.geocode_cache")
	v.SetDefault("cache.ttl_days", 90)
	v.SetDefault("report.csv_name", "addresses.csv")
	v.SetDefault("report.xlsx", false)
	v.SetDefault("report.xlsx_name", "addresses.xlsx")
	v.SetDefault("map.name", "map.html")
	v.SetDefault("map.title", "Address map")
	v.SetDefault("map.view", "fit")
	v.SetDefault("map.zoom", 12)
	v.SetDefault("map.tile_url", "https://tile.openstreetmap.org/{z}/{x}/{y}.png")
	v.SetDefault("map.attribution", `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`)
	v.SetDefault("export.bundle", true)
	v.SetDefault("export.destination", DestinationPlatform)
	v.SetDefault("export.dir", "output")
	v.SetDefault("export.work_dir", "")
	v.SetDefault("export.retain_on_failure", true)
	v.SetDefault("export.retain_dir", "failed-exports")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.prefix", "")
	v.SetDefault("s3.region", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.use_path_style", false)
	v.SetDefault("minio.endpoint", "")
	v.SetDefault("minio.access_key", "")
	v.SetDefault("minio.secret_key", "")
	v.SetDefault("minio.use_ssl", true)
	v.SetDefault("minio.bucket", "")
	v.SetDefault("minio.prefix", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
