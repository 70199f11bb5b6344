package cache

import (
	"context"
	"time"
)

// Cache is a read-through snapshot cache for catalog listings. A miss is
// not an error; callers fall back to the store.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

// Noop satisfies Cache when caching is disabled.
type Noop struct{}

func (Noop) Get(context.Context, string) (string, bool)                    { return "", false }
func (Noop) Set(context.Context, string, string, time.Duration) error     { return nil }
