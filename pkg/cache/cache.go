// Package cache stores computed collision counts and optimizer results so
// repeated runs on the same input return immediately.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: shared cache for the HTTP server
//   - [NullCache]: caching disabled
//
// # Keys
//
// A [Keyer] turns a dataset hash and the inputs of a computation into a
// cache key. [DefaultKeyer] hashes the inputs; [ScopedKeyer] adds a prefix so
// several tenants can share one backend.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value store with optional expiry.
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default TTLs.
const (
	// CollisionTTL bounds how long collision counts are kept.
	CollisionTTL = 7 * 24 * time.Hour

	// OptimizeTTL bounds how long optimizer results are kept.
	OptimizeTTL = 30 * 24 * time.Hour
)
