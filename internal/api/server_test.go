package api

import (
	"context"
	"crypto/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/driftpix/driftpix-server/internal/auth"
	"github.com/driftpix/driftpix-server/internal/config"
	"github.com/driftpix/driftpix-server/internal/domain"
	apperrors "github.com/driftpix/driftpix-server/internal/errors"
	"github.com/driftpix/driftpix-server/internal/kv"
	"github.com/driftpix/driftpix-server/internal/logger"
	"github.com/driftpix/driftpix-server/internal/ratelimit"
	"github.com/driftpix/driftpix-server/internal/recency"
	"github.com/driftpix/driftpix-server/internal/service"
	"github.com/driftpix/driftpix-server/internal/store/sqlite"
)

const testCDN = "https://cdn.test"

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// fakeIDP serves identity lookups for cross-user gallery tests.
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

// testServer wraps the API server for handler tests.
type testServer struct {
	*Server
	api   humatest.TestAPI
	auth  *service.AuthService
	st    *sqlite.Store
	idp   *fakeIDP
	kvs   kv.Store
	queue *recency.Queue
}

type testServerOptions struct {
	rateLimit *ratelimit.Config
	queueSize int
}

func setupTestServer(t *testing.T, opts testServerOptions) *testServer {
	t.Helper()

	if opts.queueSize == 0 {
		opts.queueSize = 10
	}

	log := logger.New(logger.Config{Format: "json", Writer: discardWriter{}})
	dir := t.TempDir()

	st, err := sqlite.Open(filepath.Join(dir, "test.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	kvStore, err := kv.OpenBadger(filepath.Join(dir, "kv"), log)
	require.NoError(t, err)
	t.Cleanup(func() { kvStore.Close() })

	key := make([]byte, 32)
	_, err = rand.Read(key)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key)
	require.NoError(t, err)

	idp := &fakeIDP{users: map[int64]*domain.User{}}
	queue := recency.New(kvStore, opts.queueSize)

	authService := service.NewAuthService(tokens, st, idp, log)
	services := &Services{
		Auth:    authService,
		Image:   service.NewImageService(st, queue, 30, log),
		Gallery: service.NewGalleryService(st, st, 30, log),
		Tag:     service.NewTagService(st),
		Report:  service.NewReportService(st, log),
	}

	var limiter *ratelimit.WindowLimiter
	if opts.rateLimit != nil {
		limiter = ratelimit.NewWindow(kvStore, *opts.rateLimit, nil, log)
	}

	cfg := &config.Config{CDN: config.CDNConfig{BaseURL: testCDN}}
	s := NewServer(cfg, st, kvStore, services, limiter, log)

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.api),
		auth:   authService,
		st:     st,
		idp:    idp,
		kvs:    kvStore,
		queue:  queue,
	}
}

func (ts *testServer) seedUser(t *testing.T, id int64, name, secret string) {
	t.Helper()
	require.NoError(t, ts.st.UpsertUser(context.Background(), domain.User{
		ID: id, Name: name, Secret: secret,
	}))
}

// token seeds a user and returns a bearer token for it.
func (ts *testServer) token(t *testing.T, id int64, name string) string {
	t.Helper()
	ts.seedUser(t, id, name, "secret-"+name)
	token, err := ts.auth.IssueToken(id, "secret-"+name)
	require.NoError(t, err)
	return token
}

func (ts *testServer) seedImage(t *testing.T, sig string, nsfw bool, tagNames ...string) int64 {
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
	require.NoError(t, ts.st.CreateImage(ctx, img))

	for _, name := range tagNames {
		tag := &domain.Tag{Name: name}
		if err := ts.st.CreateTag(ctx, tag); err != nil {
			tags, lerr := ts.st.ListTags(ctx)
			require.NoError(t, lerr)
			for _, existing := range tags {
				if existing.Name == name {
					tag = &existing
					break
				}
			}
		}
		require.NotZero(t, tag.ID)
		require.NoError(t, ts.st.LinkTag(ctx, img.ID, tag.ID))
	}
	return img.ID
}
