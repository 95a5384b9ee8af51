// Package kv provides the small shared key-value surface used by the
// recency queue and the rate limiter: bounded lists and expiring counters.
// Two backends exist: an embedded Badger store for single-node deployments
// and Redis for sharing state across processes.
package kv

import (
	"context"
	"time"
)

// Store is the key-value surface shared by recency tracking and rate
// limiting. Implementations must make each operation atomic.
type Store interface {
	// PushTrim prepends values to the list at key and trims the list to
	// at most size entries from the front. The batch is ordered newest
	// first: values[0] becomes the new head, and trimming evicts from
	// the tail.
	PushTrim(ctx context.Context, key string, size int, values ...string) error

	// Range returns the full list at key, newest first. A missing key
	// yields an empty slice.
	Range(ctx context.Context, key string) ([]string, error)

	// IncrWindow increments the counter at key, starting a window of the
	// given length when the counter is created. Returns the new count and
	// the time left in the window.
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)

	Close() error
}
