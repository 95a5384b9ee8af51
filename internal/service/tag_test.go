package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftpix/driftpix-server/internal/domain"
	apperrors "github.com/driftpix/driftpix-server/internal/errors"
)

func TestTagCatalogSplit(t *testing.T) {
	env := newTestEnv(t, 10)
	ctx := context.Background()
	require.NoError(t, env.store.CreateTag(ctx, &domain.Tag{Name: "maid"}))
	require.NoError(t, env.store.CreateTag(ctx, &domain.Tag{Name: "uniform"}))
	require.NoError(t, env.store.CreateTag(ctx, &domain.Tag{Name: "ero", IsNSFW: true}))

	svc := NewTagService(env.store)

	catalog, err := svc.Catalog(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"maid", "uniform"}, catalog.Versatile)
	assert.Equal(t, []string{"ero"}, catalog.NSFW)
}

func TestTagList_FullDetail(t *testing.T) {
	env := newTestEnv(t, 10)
	ctx := context.Background()
	require.NoError(t, env.store.CreateTag(ctx, &domain.Tag{
		Name: "maid", Description: "Best tag", IsNSFW: false,
	}))

	svc := NewTagService(env.store)

	tags, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "Best tag", tags[0].Description)
	assert.NotZero(t, tags[0].ID)
}

func TestTagCatalog_EmptyCatalogue(t *testing.T) {
	env := newTestEnv(t, 10)
	svc := NewTagService(env.store)

	catalog, err := svc.Catalog(context.Background())
	require.NoError(t, err)
	assert.Empty(t, catalog.Versatile)
	assert.Empty(t, catalog.NSFW)
}

func TestTagList_StoreFailureIsUpstream(t *testing.T) {
	env := newTestEnv(t, 10)
	svc := NewTagService(env.store)
	require.NoError(t, env.store.Close())

	_, err := svc.List(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrUpstream)
}
