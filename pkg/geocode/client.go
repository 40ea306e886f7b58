// Package geocode resolves address strings to coordinates via Nominatim
// (primary), the Census Geocoder and Google, with an optional result cache.
package geocode

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Client geocodes addresses.
type Client interface {
	// Geocode geocodes a single address. An unresolvable address is a
	// Result with Matched=false and a nil error.
	Geocode(ctx context.Context, addr AddressInput) (*Result, error)

	// BatchGeocode geocodes multiple addresses in order.
	BatchGeocode(ctx context.Context, addrs []AddressInput) ([]Result, error)
}

// AddressInput represents an address to geocode. Query holds free-form text
// (as extracted from a document); the structured fields are used when Query
// is empty.
type AddressInput struct {
	ID      string // Optional identifier for batch correlation
	Query   string
	Street  string
	City    string
	State   string
	ZipCode string
}

// Result holds the geocoding output for an address.
type Result struct {
	Latitude    float64
	Longitude   float64
	Source      string // "nominatim", "census" or "google"
	Quality     string // "rooftop", "range", "centroid", "approximate"
	DisplayName string
	Matched     bool
}

// Provider names accepted by WithProviders.
const (
	ProviderNominatim = "nominatim"
	ProviderCensus    = "census"
	ProviderGoogle    = "google"
)

// DefaultUserAgent identifies this tool to Nominatim, whose usage policy
// requires a meaningful user agent.
const DefaultUserAgent = "address_mapper"

// Option configures the client built by NewClient.
type Option func(*clientConfig)

type clientConfig struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	providers  []string
	userAgent  string
	googleKey  string
	email      string
	cache      Cache
}

// WithProviders sets the provider order. Unknown names are ignored.
func WithProviders(names ...string) Option {
	return func(c *clientConfig) {
		c.providers = names
	}
}

// WithGoogleAPIKey enables Google Geocoding API as a provider.
func WithGoogleAPIKey(key string) Option {
	return func(c *clientConfig) {
		c.googleKey = key
	}
}

// WithUserAgent sets the User-Agent sent to Nominatim.
func WithUserAgent(ua string) Option {
	return func(c *clientConfig) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithContactEmail sets the email parameter Nominatim asks heavy users to send.
func WithContactEmail(email string) Option {
	return func(c *clientConfig) {
		c.email = email
	}
}

// WithHTTPClient sets a custom HTTP client for all provider requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = hc
	}
}

// WithRateLimit sets the requests-per-second pacing shared by all providers.
func WithRateLimit(rps float64) Option {
	return func(c *clientConfig) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithLimiter injects a shared rate limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *clientConfig) {
		c.limiter = l
	}
}

// WithCache enables result caching.
func WithCache(cache Cache) Option {
	return func(c *clientConfig) {
		c.cache = cache
	}
}

// NewClient builds a CascadeClient from options. By default it queries
// Nominatim only, paced to one request per second.
func NewClient(opts ...Option) *CascadeClient {
	cfg := &clientConfig{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
		providers:  []string{ProviderNominatim},
		userAgent:  DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	var providers []Provider
	for _, name := range cfg.providers {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case ProviderNominatim:
			providers = append(providers, NewNominatimProvider(cfg.httpClient, cfg.limiter, cfg.userAgent, cfg.email))
		case ProviderCensus:
			providers = append(providers, NewCensusProvider(cfg.httpClient, cfg.limiter))
		case ProviderGoogle:
			providers = append(providers, NewGoogleProvider(cfg.httpClient, cfg.limiter, cfg.googleKey))
		}
	}

	var cascadeOpts []CascadeOption
	if cfg.cache != nil {
		cascadeOpts = append(cascadeOpts, WithCascadeCache(cfg.cache))
	}
	return NewCascadeClient(providers, cascadeOpts...)
}

// formatOneLine formats an address as a single line.
func formatOneLine(addr AddressInput) string {
	if q := strings.TrimSpace(addr.Query); q != "" {
		return q
	}
	parts := []string{addr.Street, addr.City, addr.State, addr.ZipCode}
	var nonEmpty []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ", ")
}
