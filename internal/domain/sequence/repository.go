package sequence

import (
	"context"
)

// Repository allocates values from named counters.
//
// Next atomically increments the counter and returns the post-increment value.
// Concurrent callers never observe the same value. A missing counter is
// created and its first value is 1. On error no increment is observed.
type Repository interface {
	Next(ctx context.Context, key string) (int64, error)

	// Current returns the last allocated value, 0 when the counter is absent
	Current(ctx context.Context, key string) (int64, error)
}
