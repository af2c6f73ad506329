package cachestore

import (
	"context"
	"time"
)

// CacheStore is a namespaced TTL key/value store. Get reports whether the
// key was present, so callers can distinguish a cached empty value from a
// miss. Set takes a per-entry TTL; zero or negative means the store's
// default.
type CacheStore interface {
	Get(ctx context.Context, name, key string) (string, bool, error)
	Set(ctx context.Context, name, key, val string, ttl time.Duration) error
	Purge(ctx context.Context, name, key string) error
}
