package cache

import (
	"context"
	"time"

	"github.com/agencyops/agencyops/internal/config"
	"github.com/agencyops/agencyops/internal/logger"
	"github.com/getsentry/sentry-go"
	goCache "github.com/patrickmn/go-cache"
)

const (
	defaultTTL      = 30 * time.Minute
	cleanupInterval = time.Hour
)

// InMemoryCache is a process local Cache backed by go-cache
type InMemoryCache struct {
	cache   *goCache.Cache
	enabled bool
}

// Initialize builds the lookup cache for the fx graph
func Initialize(cfg *config.Configuration, log *logger.Logger) Cache {
	log.Infow("initializing lookup cache",
		"enabled", cfg.Cache.Enabled,
		"ttl", cfg.Cache.TTL.String(),
	)
	return NewInMemoryCache(cfg)
}

func NewInMemoryCache(cfg *config.Configuration) *InMemoryCache {
	ttl := cfg.Cache.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &InMemoryCache{
		cache:   goCache.New(ttl, cleanupInterval),
		enabled: cfg.Cache.Enabled,
	}
}

func (c *InMemoryCache) Get(ctx context.Context, key string) (interface{}, bool) {
	if !c.enabled {
		return nil, false
	}

	// Only traced when a sentry hub travels with the request
	var span *sentry.Span
	if sentry.GetHubFromContext(ctx) != nil {
		span = sentry.StartSpan(ctx, "cache.get")
		span.Description = key
		defer span.Finish()
	}

	value, found := c.cache.Get(key)
	if span != nil {
		span.SetData("hit", found)
		span.Status = sentry.SpanStatusOK
	}
	return value, found
}

func (c *InMemoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) {
	if !c.enabled {
		return
	}
	if ttl == 0 {
		ttl = goCache.DefaultExpiration
	}
	c.cache.Set(key, value, ttl)
}
