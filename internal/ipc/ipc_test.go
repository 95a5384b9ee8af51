package ipc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/driftpix/driftpix-server/internal/errors"
	"github.com/driftpix/driftpix-server/internal/ratelimit"
)

func TestGetUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/userinfo/", r.URL.Path)
		assert.Equal(t, "42", r.URL.Query().Get("id"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 42, "full_name": "Alice Example"}`))
	}))
	defer srv.Close()

	client := New(srv.URL, ratelimit.NewKeyed(100, 10))
	user, err := client.GetUser(context.Background(), 42)
	require.NoError(t, err)
	assert.EqualValues(t, 42, user.ID)
	assert.Equal(t, "Alice Example", user.Name)
}

func TestGetUser_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := New(srv.URL, nil)
	_, err := client.GetUser(context.Background(), 42)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGetUser_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := New(srv.URL, nil)
	_, err := client.GetUser(context.Background(), 42)
	assert.ErrorIs(t, err, apperrors.ErrUpstream)
}

func TestGetUser_BadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{`))
	}))
	defer srv.Close()

	client := New(srv.URL, nil)
	_, err := client.GetUser(context.Background(), 42)
	assert.ErrorIs(t, err, apperrors.ErrUpstream)
}

func TestGetUser_Disabled(t *testing.T) {
	client := New("", nil)
	assert.False(t, client.Enabled())

	_, err := client.GetUser(context.Background(), 42)
	assert.ErrorIs(t, err, apperrors.ErrUpstream)
}
