package api

import (
	"context"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/driftpix/driftpix-server/internal/domain"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

// requestInfoKey carries the per-request info record.
const requestInfoKey ctxKey = "request_info"

// requestInfo is attached to every request by the client context
// middleware. Handlers record the authenticated user as a side effect of
// authorization so the access log can attribute the request.
type requestInfo struct {
	ClientIP string
	UserID   int64
}

// clientIPFrom returns the resolved client address for the request.
func clientIPFrom(ctx context.Context) string {
	if info, ok := ctx.Value(requestInfoKey).(*requestInfo); ok {
		return info.ClientIP
	}
	return ""
}

// authenticatedUserID returns the user id recorded during authorization,
// or zero for anonymous requests.
func authenticatedUserID(ctx context.Context) int64 {
	if info, ok := ctx.Value(requestInfoKey).(*requestInfo); ok {
		return info.UserID
	}
	return 0
}

// authorize parses the Authorization header, verifies the bearer token,
// and enforces the required permissions against the target user.
func (s *Server) authorize(ctx context.Context, authHeader string, required []string, targetUserID int64) (*domain.User, error) {
	if authHeader == "" {
		return nil, huma.Error401Unauthorized("Missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, huma.Error401Unauthorized("Invalid authorization header format")
	}

	user, err := s.services.Auth.Authorize(ctx, parts[1], required, targetUserID)
	if err != nil {
		return nil, err
	}

	if info, ok := ctx.Value(requestInfoKey).(*requestInfo); ok {
		info.UserID = user.ID
	}
	return user, nil
}

// galleryTarget authorizes a gallery action and resolves the account it
// operates on. Acting on another user requires the given permission and
// mirrors the target from the identity provider into the local store.
func (s *Server) galleryTarget(ctx context.Context, authHeader string, targetUserID int64, permission string) (int64, error) {
	var required []string
	if targetUserID != 0 {
		required = []string{permission}
	}

	user, err := s.authorize(ctx, authHeader, required, targetUserID)
	if err != nil {
		return 0, err
	}
	if targetUserID == 0 || targetUserID == user.ID {
		return user.ID, nil
	}

	target, err := s.services.Auth.ResolveTarget(ctx, targetUserID)
	if err != nil {
		return 0, err
	}
	return target.ID, nil
}
