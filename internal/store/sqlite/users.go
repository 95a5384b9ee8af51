package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/driftpix/driftpix-server/internal/domain"
	apperrors "github.com/driftpix/driftpix-server/internal/errors"
)

// UpsertUser inserts or refreshes a registered user. The name follows the
// identity provider on every sync; the secret is only written on first
// registration so rotation stays a deliberate act.
func (s *Store) UpsertUser(ctx context.Context, user domain.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO registered_users (id, name, secret, is_blacklisted)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name`,
		user.ID, user.Name, user.Secret, user.IsBlacklisted,
	)
	if err != nil {
		return apperrors.Internalf("upsert user %d", user.ID).WithCause(err)
	}
	return nil
}

// ValidateCredentials checks the (id, secret) pair carried in a bearer
// token. A rotated secret or unknown id fails identically, so tokens
// reveal nothing about which half went stale.
func (s *Store) ValidateCredentials(ctx context.Context, userID int64, secret string) (*domain.User, error) {
	user := domain.User{ID: userID, Secret: secret}
	err := s.db.QueryRowContext(ctx, `
		SELECT name, is_blacklisted FROM registered_users
		WHERE id = ? AND secret = ?`,
		userID, secret,
	).Scan(&user.Name, &user.IsBlacklisted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Unauthorized("invalid credentials")
	}
	if err != nil {
		return nil, apperrors.Internal("validate credentials").WithCause(err)
	}
	if user.IsBlacklisted {
		return nil, apperrors.Forbidden("user is blacklisted")
	}
	return &user, nil
}

// RotateSecret replaces the user's secret, invalidating every token
// issued against the old one.
func (s *Store) RotateSecret(ctx context.Context, userID int64, secret string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE registered_users SET secret = ? WHERE id = ?`, secret, userID)
	if err != nil {
		return apperrors.Internal("rotate secret").WithCause(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFoundf("user %d not found", userID)
	}
	return nil
}

// MissingPermissions returns the subset of permissions the user does not
// hold for the given target. Acting on yourself requires nothing. A held
// permission satisfies the check when it is the admin sentinel, matches
// by name, or outranks the requirement by position, and when its grant is
// global (NULL target) or scoped to this target.
func (s *Store) MissingPermissions(ctx context.Context, userID, targetUserID int64, permissions []string) ([]string, error) {
	if targetUserID == userID {
		return nil, nil
	}

	const q = `
		SELECT 1 FROM user_permissions
		JOIN permissions ON permissions.name = user_permissions.permission
		WHERE user_permissions.user_id = ?
		  AND (permissions.name = 'admin' OR permissions.name = ? OR permissions.position > (SELECT position FROM permissions WHERE name = ?))
		  AND (user_permissions.target_id = ? OR user_permissions.target_id IS NULL)
		LIMIT 1`

	var missing []string
	for _, perm := range permissions {
		var one int
		err := s.db.QueryRowContext(ctx, q, userID, perm, perm, targetUserID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			missing = append(missing, perm)
			continue
		}
		if err != nil {
			return nil, apperrors.Internalf("check permission %s", perm).WithCause(err)
		}
	}
	return missing, nil
}

// GrantPermission grants a permission to a user, optionally scoped to a
// target user. A zero targetID grants it globally.
func (s *Store) GrantPermission(ctx context.Context, userID int64, permission string, targetID int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO user_permissions (user_id, permission, target_id)
		VALUES (?, ?, ?)`,
		userID, permission, nullInt64(targetID),
	)
	if err != nil {
		return apperrors.Internalf("grant permission %s", permission).WithCause(err)
	}
	return nil
}

// SetBlacklisted flips the user's network-ban flag.
func (s *Store) SetBlacklisted(ctx context.Context, userID int64, blacklisted bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE registered_users SET is_blacklisted = ? WHERE id = ?`, blacklisted, userID)
	if err != nil {
		return apperrors.Internal("set blacklisted").WithCause(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFoundf("user %d not found", userID)
	}
	return nil
}
