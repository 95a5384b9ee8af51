// Package ipc bridges to the identity provider that owns user accounts.
// The API server only mirrors users; acting on someone else's gallery
// first resolves the target against the provider so unregistered but real
// accounts can be mirrored on the fly.
package ipc

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/driftpix/driftpix-server/internal/domain"
	apperrors "github.com/driftpix/driftpix-server/internal/errors"
	"github.com/driftpix/driftpix-server/internal/ratelimit"
)

const limiterKey = "identity-provider"

// Client calls the identity provider over HTTP. Outbound calls go through
// a token-bucket limiter so a burst of gallery requests cannot hammer the
// provider.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *ratelimit.KeyedLimiter
}

// New creates an identity provider client. An empty baseURL yields a
// disabled client whose lookups fail with an upstream error.
func New(baseURL string, limiter *ratelimit.KeyedLimiter) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    limiter,
	}
}

// Enabled reports whether a provider is configured.
func (c *Client) Enabled() bool {
	return c.baseURL != ""
}

// GetUser resolves a user id against the provider. Unknown users map to a
// not-found error; provider failures map to an upstream error.
func (c *Client) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	if !c.Enabled() {
		return nil, apperrors.Upstream("no identity provider configured")
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, limiterKey); err != nil {
			return nil, apperrors.Upstreamf("identity provider limiter: %v", err)
		}
	}

	reqURL := c.baseURL + "/userinfo/?id=" + url.QueryEscape(strconv.FormatInt(userID, 10))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, apperrors.Internal("build userinfo request").WithCause(err)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Upstream("identity provider unreachable").WithCause(err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return nil, apperrors.NotFoundf("user %d not found", userID)
	case res.StatusCode < 200 || res.StatusCode > 299:
		return nil, apperrors.Upstreamf("identity provider returned %d", res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, apperrors.Upstream("read userinfo response").WithCause(err)
	}

	var payload struct {
		ID       int64  `json:"id"`
		FullName string `json:"full_name"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, apperrors.Upstream("decode userinfo response").WithCause(err)
	}
	if payload.ID == 0 {
		return nil, apperrors.Upstream("userinfo response missing id")
	}

	return &domain.User{ID: payload.ID, Name: payload.FullName}, nil
}

// String describes the client target for logs.
func (c *Client) String() string {
	if !c.Enabled() {
		return "ipc(disabled)"
	}
	return fmt.Sprintf("ipc(%s)", c.baseURL)
}
