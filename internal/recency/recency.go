// Package recency tracks the images most recently served to each client so
// consecutive random draws do not repeat. Each client keeps a bounded
// queue; once full, the oldest entries age out and become drawable again.
package recency

import (
	"context"
	"strconv"

	"github.com/driftpix/driftpix-server/internal/kv"
)

const keyPrefix = "recency:"

// Queue is a bounded per-client exclusion list backed by the shared KV
// store, so every server process sees the same history.
type Queue struct {
	store   kv.Store
	maxSize int
}

// New creates a queue bound to the given store. maxSize caps the history
// per client.
func New(store kv.Store, maxSize int) *Queue {
	return &Queue{store: store, maxSize: maxSize}
}

// Record prepends the served image ids to the client's history and trims
// it in one atomic step. Recording nothing is a no-op.
func (q *Queue) Record(ctx context.Context, clientKey string, imageIDs []int64) error {
	if len(imageIDs) == 0 {
		return nil
	}
	values := make([]string, len(imageIDs))
	for i, id := range imageIDs {
		values[i] = strconv.FormatInt(id, 10)
	}
	return q.store.PushTrim(ctx, keyPrefix+clientKey, q.maxSize, values...)
}

// Snapshot returns the client's current exclusion list. The caller merges
// it into the draw's excluded files; a later Record does not affect an
// already-taken snapshot.
func (q *Queue) Snapshot(ctx context.Context, clientKey string) ([]string, error) {
	return q.store.Range(ctx, keyPrefix+clientKey)
}
