package cache

import (
	"context"
	"time"
)

// Cache is the session store abstraction. MemoryCache serves single-instance
// deployments and tests; RedisCache lets several instances share sessions.
type Cache interface {
	// Get retrieves a value by key. Returns ErrCacheMiss if not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL. A TTL <= 0 never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error

	Close() error
}

// CacheError is a constant cache error.
type CacheError string

func (e CacheError) Error() string { return string(e) }

const (
	// ErrCacheMiss indicates the key was not found in cache.
	ErrCacheMiss CacheError = "cache miss"
)
