package kv

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBadger(t *testing.T) *BadgerStore {
	t.Helper()
	s, err := OpenBadger(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBadgerPushTrim(t *testing.T) {
	s := newTestBadger(t)
	ctx := context.Background()

	require.NoError(t, s.PushTrim(ctx, "q", 3, "a", "b", "c"))
	list, err := s.Range(ctx, "q")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, list)

	// A new push lands at the front and evicts the tail entry.
	require.NoError(t, s.PushTrim(ctx, "q", 3, "d"))
	list, err = s.Range(ctx, "q")
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "a", "b"}, list)
}

func TestBadgerRange_MissingKey(t *testing.T) {
	s := newTestBadger(t)

	list, err := s.Range(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestBadgerPushTrim_NoValues(t *testing.T) {
	s := newTestBadger(t)
	ctx := context.Background()

	require.NoError(t, s.PushTrim(ctx, "q", 3))
	list, err := s.Range(ctx, "q")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestBadgerIncrWindow(t *testing.T) {
	s := newTestBadger(t)
	ctx := context.Background()

	count, remaining, err := s.IncrWindow(ctx, "c", time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	assert.Greater(t, remaining, time.Duration(0))

	count, _, err = s.IncrWindow(ctx, "c", time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestBadgerIncrWindow_Expiry(t *testing.T) {
	s := newTestBadger(t)
	ctx := context.Background()

	_, _, err := s.IncrWindow(ctx, "c", 50*time.Millisecond)
	require.NoError(t, err)

	time.Sleep(80 * time.Millisecond)

	count, _, err := s.IncrWindow(ctx, "c", time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count, "an expired counter should restart the window")
}

func TestBadgerIndependentKeys(t *testing.T) {
	s := newTestBadger(t)
	ctx := context.Background()

	_, _, err := s.IncrWindow(ctx, "a", time.Minute)
	require.NoError(t, err)
	count, _, err := s.IncrWindow(ctx, "b", time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
