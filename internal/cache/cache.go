package cache

import (
	"context"
	"time"
)

// Cache holds lookups of records that rarely change once created, such as
// sub-entities and clients. Implementations are safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores value under key. A zero ttl uses the configured default.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)
}

const (
	PrefixClient    = "client"
	PrefixSubEntity = "subentity"
)

const keyVersion = "v1"

// Key builds a versioned cache key, e.g. "client:v1:AGH-C001"
func Key(prefix, id string) string {
	return prefix + ":" + keyVersion + ":" + id
}

// Lookup returns a copy of the record cached under key. On a miss it calls
// load and caches a copy of the result. Errors are never cached and a nil
// cache always loads.
func Lookup[T any](ctx context.Context, c Cache, key string, load func(context.Context) (*T, error)) (*T, error) {
	if c != nil {
		if v, ok := c.Get(ctx, key); ok {
			if cached, ok := v.(*T); ok {
				out := *cached
				return &out, nil
			}
		}
	}

	v, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if c != nil {
		stored := *v
		c.Set(ctx, key, &stored, 0)
	}
	return v, nil
}
