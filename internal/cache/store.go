package cache

import (
	"context"
	"time"
)

// Store is a TTL key-value store with atomic conditional writes.
type Store interface {
	// SetIfAbsent writes value with ttl only if key is absent and returns the
	// value that was there before. found is false when the write happened.
	SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (prev string, found bool, err error)

	// SwapIfChanged writes value with ttl when key is absent or holds a
	// different value, and returns the value that was there before.
	SwapIfChanged(ctx context.Context, key, value string, ttl time.Duration) (prev string, found bool, err error)

	// Get returns the live value for key. found is false when the key is
	// absent or expired.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// Close releases the store's connections.
	Close() error
}
