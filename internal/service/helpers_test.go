package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/driftpix/driftpix-server/internal/domain"
	"github.com/driftpix/driftpix-server/internal/kv"
	"github.com/driftpix/driftpix-server/internal/logger"
	"github.com/driftpix/driftpix-server/internal/recency"
	"github.com/driftpix/driftpix-server/internal/store/sqlite"
)

type testEnv struct {
	store   *sqlite.Store
	queue   *recency.Queue
	logger  *logger.Logger
	maxSize int
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func newTestEnv(t *testing.T, queueSize int) *testEnv {
	t.Helper()

	log := logger.New(logger.Config{Format: "json", Writer: discardWriter{}})

	dir := t.TempDir()
	s, err := sqlite.Open(filepath.Join(dir, "test.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	kvStore, err := kv.OpenBadger(filepath.Join(dir, "kv"), log)
	require.NoError(t, err)
	t.Cleanup(func() { kvStore.Close() })

	return &testEnv{
		store:   s,
		queue:   recency.New(kvStore, queueSize),
		logger:  log,
		maxSize: queueSize,
	}
}

func (e *testEnv) seedUser(t *testing.T, id int64, name, secret string) {
	t.Helper()
	require.NoError(t, e.store.UpsertUser(context.Background(), domain.User{
		ID: id, Name: name, Secret: secret,
	}))
}

func (e *testEnv) seedImage(t *testing.T, sig string, nsfw bool, tagNames ...string) int64 {
	t.Helper()
	ctx := context.Background()

	img := &domain.Image{
		Signature:  sig,
		Extension:  ".jpg",
		IsNSFW:     nsfw,
		Width:      100,
		Height:     50,
		ByteSize:   1024,
		UploadedAt: time.Now().UTC(),
	}
	require.NoError(t, e.store.CreateImage(ctx, img))

	for _, name := range tagNames {
		tag := &domain.Tag{Name: name}
		if err := e.store.CreateTag(ctx, tag); err != nil {
			tags, lerr := e.store.ListTags(ctx)
			require.NoError(t, lerr)
			for _, existing := range tags {
				if existing.Name == name {
					tag = &existing
					break
				}
			}
		}
		require.NotZero(t, tag.ID)
		require.NoError(t, e.store.LinkTag(ctx, img.ID, tag.ID))
	}
	return img.ID
}
