// Package cache stores qi-number results so repeated validations of the
// same graph and partition skip the search.
//
// A [Cache] is a plain byte store with TTLs. Three backends exist:
// [FileCache] for the CLI, [RedisCache] for the HTTP server, and
// [NullCache] when caching is switched off. [Keyer] derives the keys and
// [QiStore] layers typed qi results on top of any backend.
//
// All backends are safe for concurrent use.
package cache

import (
	"context"
	"time"
)

// Cache is a key-value store with expiring entries.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss
	// (false, nil), not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Clearer is implemented by backends that can drop every entry at once.
type Clearer interface {
	// Clear removes all entries and returns how many were removed.
	Clear(ctx context.Context) (int, error)
}
