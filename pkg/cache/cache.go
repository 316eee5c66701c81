// Package cache stores build results between runs.
//
// A [Cache] is a plain byte store with optional TTLs. Three backends exist:
//
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for servers and CI runners
//   - [NullCache]: stores nothing, used when caching is disabled
//
// Keys come from a [Keyer], which hashes the inputs of each stage together
// with the options that affect its output. Cached builds are only valid for
// identical record input, so callers key on [Hash] of the canonical input.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store keyed by string.
//
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures. A ttl of zero stores the entry without expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// DefaultTTL is how long build results stay cached unless configured
// otherwise.
const DefaultTTL = 7 * 24 * time.Hour
