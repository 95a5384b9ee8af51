package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/driftpix/driftpix-server/internal/domain"
	"github.com/driftpix/driftpix-server/internal/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	log := logger.New(logger.Config{Format: "json", Writer: testWriter{t}})
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func seedUser(t *testing.T, s *Store, id int64, name, secret string) {
	t.Helper()
	require.NoError(t, s.UpsertUser(context.Background(), domain.User{
		ID: id, Name: name, Secret: secret,
	}))
}

// seedImage inserts an image with the given tags, creating tags on first
// use. Tag names prefixed "nsfw:" are created with the NSFW flag set and
// stored without the prefix.
func seedImage(t *testing.T, s *Store, sig string, nsfw bool, width, height int, tagNames ...string) int64 {
	t.Helper()
	ctx := context.Background()

	ext := ".jpg"
	if len(sig) > 3 && sig[:4] == "gif-" {
		ext = ".gif"
	}
	img := &domain.Image{
		Signature:  sig,
		Extension:  ext,
		IsNSFW:     nsfw,
		Width:      width,
		Height:     height,
		ByteSize:   1024,
		UploadedAt: time.Now().UTC(),
	}
	require.NoError(t, s.CreateImage(ctx, img))

	for _, name := range tagNames {
		tagNSFW := false
		if len(name) > 5 && name[:5] == "nsfw:" {
			tagNSFW = true
			name = name[5:]
		}
		tag := &domain.Tag{Name: name, IsNSFW: tagNSFW}
		err := s.CreateTag(ctx, tag)
		if err != nil {
			// Already created by an earlier image; look it up.
			tags, lerr := s.ListTags(ctx)
			require.NoError(t, lerr)
			for _, existing := range tags {
				if existing.Name == name {
					tag = &existing
					break
				}
			}
			require.NotZero(t, tag.ID, "tag %q should exist", name)
		}
		require.NoError(t, s.LinkTag(ctx, img.ID, tag.ID))
	}

	return img.ID
}
