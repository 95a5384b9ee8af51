package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftpix/driftpix-server/internal/domain"
	apperrors "github.com/driftpix/driftpix-server/internal/errors"
	"github.com/driftpix/driftpix-server/internal/store"
)

func galleryOf(t *testing.T, s *Store, userID int64) []domain.Image {
	t.Helper()
	images, _, err := s.FetchImages(context.Background(), store.FetchParams{
		NSFW:          domain.NSFWAny,
		Orientation:   domain.OrientationAny,
		OrderBy:       domain.OrderRandom,
		GalleryUserID: userID,
	})
	require.NoError(t, err)
	return images
}

func TestInsertFavorites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, 1, "alice", "s")
	a := seedImage(t, s, "a", false, 100, 50, "maid")
	b := seedImage(t, s, "b", false, 100, 50, "maid")

	require.NoError(t, s.InsertFavorites(ctx, 1, []int64{a, b}))
	assert.Len(t, galleryOf(t, s, 1), 2)
}

func TestInsertFavorites_AlreadyFavorited(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, 1, "alice", "s")
	a := seedImage(t, s, "a", false, 100, 50, "maid")
	require.NoError(t, s.InsertFavorites(ctx, 1, []int64{a}))

	err := s.InsertFavorites(ctx, 1, []int64{a})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestInsertFavorites_UnknownImage(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, 1, "alice", "s")

	err := s.InsertFavorites(context.Background(), 1, []int64{999})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestInsertFavorites_BatchRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, 1, "alice", "s")
	a := seedImage(t, s, "a", false, 100, 50, "maid")

	// One bad id poisons the whole batch; the good one must not stick.
	err := s.InsertFavorites(ctx, 1, []int64{a, 999})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Empty(t, galleryOf(t, s, 1))
}

func TestDeleteFavorites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, 1, "alice", "s")
	a := seedImage(t, s, "a", false, 100, 50, "maid")
	require.NoError(t, s.InsertFavorites(ctx, 1, []int64{a}))

	require.NoError(t, s.DeleteFavorites(ctx, 1, []int64{a}))
	assert.Empty(t, galleryOf(t, s, 1))
}

func TestDeleteFavorites_NotFavorited(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, 1, "alice", "s")
	a := seedImage(t, s, "a", false, 100, 50, "maid")

	err := s.DeleteFavorites(ctx, 1, []int64{a})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestDeleteFavorites_UnknownImage(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, 1, "alice", "s")

	err := s.DeleteFavorites(context.Background(), 1, []int64{999})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeleteFavorites_BatchRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, 1, "alice", "s")
	a := seedImage(t, s, "a", false, 100, 50, "maid")
	b := seedImage(t, s, "b", false, 100, 50, "maid")
	require.NoError(t, s.InsertFavorites(ctx, 1, []int64{a, b}))

	err := s.DeleteFavorites(ctx, 1, []int64{a, 999})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Len(t, galleryOf(t, s, 1), 2)
}

func TestToggleFavorite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, 1, "alice", "s")
	a := seedImage(t, s, "a", false, 100, 50, "maid")

	state, err := s.ToggleFavorite(ctx, 1, a)
	require.NoError(t, err)
	assert.Equal(t, domain.ToggleInserted, state)

	state, err = s.ToggleFavorite(ctx, 1, a)
	require.NoError(t, err)
	assert.Equal(t, domain.ToggleDeleted, state)
	assert.Empty(t, galleryOf(t, s, 1))
}

func TestToggleFavorite_UnknownImage(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, 1, "alice", "s")

	_, err := s.ToggleFavorite(context.Background(), 1, 999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
