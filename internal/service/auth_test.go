package service

import (
	"context"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftpix/driftpix-server/internal/auth"
	"github.com/driftpix/driftpix-server/internal/domain"
	apperrors "github.com/driftpix/driftpix-server/internal/errors"
)

type fakeIDP struct {
	users map[int64]*domain.User
}

func (f *fakeIDP) Enabled() bool { return true }

func (f *fakeIDP) GetUser(_ context.Context, userID int64) (*domain.User, error) {
	user, ok := f.users[userID]
	if !ok {
		return nil, apperrors.NotFoundf("user %d not found", userID)
	}
	return user, nil
}

func newAuthEnv(t *testing.T) (*testEnv, *AuthService, *fakeIDP) {
	t.Helper()
	env := newTestEnv(t, 10)

	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key)
	require.NoError(t, err)

	idp := &fakeIDP{users: map[int64]*domain.User{}}
	return env, NewAuthService(tokens, env.store, idp, env.logger), idp
}

func TestAuthorize(t *testing.T) {
	env, svc, _ := newAuthEnv(t)
	env.seedUser(t, 1, "alice", "s3cret")

	token, err := svc.IssueToken(1, "s3cret")
	require.NoError(t, err)

	user, err := svc.Authorize(context.Background(), token, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Name)
}

func TestAuthorize_GarbageToken(t *testing.T) {
	_, svc, _ := newAuthEnv(t)

	_, err := svc.Authorize(context.Background(), "garbage", nil, 0)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestAuthorize_RotatedSecretRevokesToken(t *testing.T) {
	env, svc, _ := newAuthEnv(t)
	ctx := context.Background()
	env.seedUser(t, 1, "alice", "old")

	token, err := svc.IssueToken(1, "old")
	require.NoError(t, err)
	require.NoError(t, env.store.RotateSecret(ctx, 1, "new"))

	_, err = svc.Authorize(ctx, token, nil, 0)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestAuthorize_BlacklistedUser(t *testing.T) {
	env, svc, _ := newAuthEnv(t)
	ctx := context.Background()
	env.seedUser(t, 1, "alice", "s3cret")
	require.NoError(t, env.store.SetBlacklisted(ctx, 1, true))

	token, err := svc.IssueToken(1, "s3cret")
	require.NoError(t, err)

	_, err = svc.Authorize(ctx, token, nil, 0)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestAuthorize_SelfTargetNeedsNoPermissions(t *testing.T) {
	env, svc, _ := newAuthEnv(t)
	env.seedUser(t, 1, "alice", "s3cret")

	token, err := svc.IssueToken(1, "s3cret")
	require.NoError(t, err)

	_, err = svc.Authorize(context.Background(), token,
		[]string{domain.PermissionManageGallery}, 1)
	assert.NoError(t, err)
}

func TestAuthorize_MissingPermissionIsForbidden(t *testing.T) {
	env, svc, _ := newAuthEnv(t)
	env.seedUser(t, 1, "alice", "s3cret")
	env.seedUser(t, 2, "bob", "s")

	token, err := svc.IssueToken(1, "s3cret")
	require.NoError(t, err)

	_, err = svc.Authorize(context.Background(), token,
		[]string{domain.PermissionManageGallery}, 2)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	details := appErr.Details.(map[string][]string)
	assert.Equal(t, []string{domain.PermissionManageGallery}, details["missing_permissions"])
}

func TestAuthorize_AdminOutranksEverything(t *testing.T) {
	env, svc, _ := newAuthEnv(t)
	ctx := context.Background()
	env.seedUser(t, 1, "root", "s3cret")
	env.seedUser(t, 2, "bob", "s")
	require.NoError(t, env.store.GrantPermission(ctx, 1, domain.PermissionAdmin, 0))

	token, err := svc.IssueToken(1, "s3cret")
	require.NoError(t, err)

	_, err = svc.Authorize(ctx, token,
		[]string{domain.PermissionViewGallery, domain.PermissionManageGallery}, 2)
	assert.NoError(t, err)
}

func TestResolveTarget_MirrorsUser(t *testing.T) {
	env, svc, idp := newAuthEnv(t)
	ctx := context.Background()
	idp.users[7] = &domain.User{ID: 7, Name: "remote-user", Secret: "remote-secret"}

	target, err := svc.ResolveTarget(ctx, 7)
	require.NoError(t, err)
	assert.EqualValues(t, 7, target.ID)

	// The mirrored user is now queryable locally.
	user, err := env.store.ValidateCredentials(ctx, 7, "remote-secret")
	require.NoError(t, err)
	assert.Equal(t, "remote-user", user.Name)
}

func TestResolveTarget_UnknownUser(t *testing.T) {
	_, svc, _ := newAuthEnv(t)

	_, err := svc.ResolveTarget(context.Background(), 404)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
