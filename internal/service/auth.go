// Package service orchestrates the domain operations behind the API:
// authorization, image draws, gallery mutations, tags, and reports.
package service

import (
	"context"
	"strings"

	"github.com/driftpix/driftpix-server/internal/auth"
	"github.com/driftpix/driftpix-server/internal/domain"
	apperrors "github.com/driftpix/driftpix-server/internal/errors"
	"github.com/driftpix/driftpix-server/internal/logger"
	"github.com/driftpix/driftpix-server/internal/store"
)

// IdentityProvider resolves user accounts from the upstream identity
// service.
type IdentityProvider interface {
	Enabled() bool
	GetUser(ctx context.Context, userID int64) (*domain.User, error)
}

// AuthService verifies bearer tokens and enforces the permission
// hierarchy.
type AuthService struct {
	tokens *auth.TokenService
	users  store.UserStore
	idp    IdentityProvider
	logger *logger.Logger
}

// NewAuthService creates a new auth service. idp may be nil when no
// identity provider is configured.
func NewAuthService(tokens *auth.TokenService, users store.UserStore, idp IdentityProvider, log *logger.Logger) *AuthService {
	return &AuthService{tokens: tokens, users: users, idp: idp, logger: log}
}

// Authorize verifies the bearer token, checks the credential pair against
// the user store, and enforces every required permission against the
// target. Required permissions are a conjunction: all must hold. Acting
// on your own account requires none of them.
func (s *AuthService) Authorize(ctx context.Context, rawToken string, required []string, targetUserID int64) (*domain.User, error) {
	claims, err := s.tokens.Verify(rawToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.ValidateCredentials(ctx, claims.UserID, claims.Secret)
	if err != nil {
		return nil, err
	}

	if len(required) > 0 {
		missing, err := s.users.MissingPermissions(ctx, user.ID, targetUserID, required)
		if err != nil {
			return nil, err
		}
		if len(missing) > 0 {
			return nil, apperrors.Forbiddenf("missing permissions: %s", strings.Join(missing, ", ")).
				WithDetails(map[string][]string{"missing_permissions": missing})
		}
	}

	return user, nil
}

// ResolveTarget resolves the target of an elevated gallery action. The
// target is looked up at the identity provider and mirrored into the
// local user store, so galleries can be managed for accounts that never
// called the API themselves.
func (s *AuthService) ResolveTarget(ctx context.Context, targetUserID int64) (*domain.User, error) {
	if s.idp == nil || !s.idp.Enabled() {
		return nil, apperrors.Upstream("no identity provider configured for cross-user actions")
	}

	target, err := s.idp.GetUser(ctx, targetUserID)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpsertUser(ctx, *target); err != nil {
		return nil, err
	}

	s.logger.Debug("mirrored target user", "user_id", target.ID, "name", target.Name)
	return target, nil
}

// IssueToken builds a bearer token for the credential pair. Used by the
// seeding tool; the production flow hands tokens out through the identity
// provider's account page.
func (s *AuthService) IssueToken(userID int64, secret string) (string, error) {
	return s.tokens.Generate(userID, secret)
}
