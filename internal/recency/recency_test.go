package recency

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftpix/driftpix-server/internal/kv"
)

func newTestQueue(t *testing.T, maxSize int) *Queue {
	t.Helper()
	store, err := kv.OpenBadger(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return New(store, maxSize)
}

func TestRecordAndSnapshot(t *testing.T) {
	q := newTestQueue(t, 3)
	ctx := context.Background()

	require.NoError(t, q.Record(ctx, "client", []int64{1, 2, 3}))

	snap, err := q.Snapshot(ctx, "client")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, snap)
}

func TestOldestEntriesAgeOut(t *testing.T) {
	q := newTestQueue(t, 3)
	ctx := context.Background()

	require.NoError(t, q.Record(ctx, "client", []int64{1, 2, 3}))
	require.NoError(t, q.Record(ctx, "client", []int64{4}))

	snap, err := q.Snapshot(ctx, "client")
	require.NoError(t, err)
	// Image 3, the tail of the first batch, aged out and is drawable again.
	assert.Equal(t, []string{"4", "1", "2"}, snap)
}

func TestClientsAreIndependent(t *testing.T) {
	q := newTestQueue(t, 3)
	ctx := context.Background()

	require.NoError(t, q.Record(ctx, "alice", []int64{1}))

	snap, err := q.Snapshot(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestRecordNothing(t *testing.T) {
	q := newTestQueue(t, 3)
	ctx := context.Background()

	require.NoError(t, q.Record(ctx, "client", nil))

	snap, err := q.Snapshot(ctx, "client")
	require.NoError(t, err)
	assert.Empty(t, snap)
}
