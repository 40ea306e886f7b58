package geocode

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Provider represents a single geocoding backend.
type Provider interface {
	Name() string
	Geocode(ctx context.Context, addr AddressInput) (*Result, error)
	Available() bool
}

// CascadeClient tries geocode providers in order until one matches.
// Calls are made sequentially; pacing is enforced by the providers' shared limiter.
type CascadeClient struct {
	providers []Provider
	cache     Cache
}

// CascadeOption configures the CascadeClient.
type CascadeOption func(*CascadeClient)

// WithCascadeCache sets the result cache. Matches and misses are both cached.
func WithCascadeCache(cache Cache) CascadeOption {
	return func(c *CascadeClient) {
		c.cache = cache
	}
}

// NewCascadeClient creates a CascadeClient that tries providers in order.
func NewCascadeClient(providers []Provider, opts ...CascadeOption) *CascadeClient {
	c := &CascadeClient{providers: providers}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Providers returns the names of the configured providers in order.
func (c *CascadeClient) Providers() []string {
	names := make([]string, 0, len(c.providers))
	for _, p := range c.providers {
		names = append(names, p.Name())
	}
	return names
}

// Geocode implements Client by trying each provider in order. Provider
// errors are logged and treated as a miss.
func (c *CascadeClient) Geocode(ctx context.Context, addr AddressInput) (*Result, error) {
	if formatOneLine(addr) == "" {
		return &Result{Matched: false, Source: "cascade"}, nil
	}

	key := cacheKey(addr)
	if c.cache != nil {
		cached, ok, err := c.cache.Get(ctx, key)
		if err != nil {
			zap.L().Debug("cascade: cache lookup failed", zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var lastResult *Result
	for _, p := range c.providers {
		if !p.Available() {
			continue
		}
		result, err := p.Geocode(ctx, addr)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			zap.L().Debug("cascade: provider error, trying next",
				zap.String("provider", p.Name()),
				zap.Error(err),
			)
			continue
		}
		if result != nil && result.Matched {
			c.store(ctx, key, result)
			return result, nil
		}
		if result != nil {
			lastResult = result
		}
	}

	noMatch := &Result{Matched: false, Source: "cascade"}
	if lastResult != nil {
		noMatch.Source = lastResult.Source
	}
	c.store(ctx, key, noMatch)
	return noMatch, nil
}

// BatchGeocode implements Client by geocoding addresses one after another.
// Individual failures become unmatched results.
func (c *CascadeClient) BatchGeocode(ctx context.Context, addrs []AddressInput) ([]Result, error) {
	if len(addrs) == 0 {
		return nil, nil
	}

	results := make([]Result, len(addrs))
	for i := range addrs {
		if addrs[i].ID == "" {
			addrs[i].ID = fmt.Sprintf("%d", i)
		}
		r, err := c.Geocode(ctx, addrs[i])
		if err != nil {
			if ctx.Err() != nil {
				return results, ctx.Err()
			}
			results[i] = Result{Matched: false, Source: "cascade"}
			continue
		}
		results[i] = *r
	}
	return results, nil
}

func (c *CascadeClient) store(ctx context.Context, key string, result *Result) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Put(ctx, key, result); err != nil {
		zap.L().Debug("cascade: cache store failed", zap.Error(err))
	}
}
