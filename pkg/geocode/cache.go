package geocode

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
)

// Cache stores geocode results (matches and misses) keyed by normalized address.
type Cache interface {
	// Get returns the cached result and true, or false when the key is absent or expired.
	Get(ctx context.Context, key string) (*Result, bool, error)
	// Put stores or replaces the result for key.
	Put(ctx context.Context, key string, result *Result) error
}

// cacheKey returns SHA-256 hex of the normalized address for cache lookup.
func cacheKey(addr AddressInput) string {
	var normalized string
	if q := strings.TrimSpace(addr.Query); q != "" {
		normalized = "q|" + strings.Join(strings.Fields(strings.ToLower(q)), " ")
	} else {
		normalized = fmt.Sprintf("%s|%s|%s|%s",
			strings.ToLower(strings.TrimSpace(addr.Street)),
			strings.ToLower(strings.TrimSpace(addr.City)),
			strings.ToLower(strings.TrimSpace(addr.State)),
			strings.TrimSpace(addr.ZipCode),
		)
	}
	h := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%x", h)
}

// keyPrefix shortens a cache key for logging.
func keyPrefix(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}
