package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/driftpix/driftpix-server/internal/domain"
	apperrors "github.com/driftpix/driftpix-server/internal/errors"
)

// InsertFavorites adds images to the user's gallery in one transaction.
// Any unknown or already-favorited image rolls back the whole batch.
func (s *Store) InsertFavorites(ctx context.Context, userID int64, imageIDs []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Internal("begin favorites insert").WithCause(err)
	}
	defer tx.Rollback()

	for _, imageID := range imageIDs {
		if err := insertFavorite(ctx, tx, userID, imageID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Internal("commit favorites insert").WithCause(err)
	}
	return nil
}

func insertFavorite(ctx context.Context, tx *sql.Tx, userID, imageID int64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO fav_images (user_id, image_id, liked_at)
		VALUES (?, ?, ?)`,
		userID, imageID, formatTime(time.Now()),
	)
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return apperrors.Conflictf("image %d is already in the gallery", imageID)
	}
	if strings.Contains(msg, "FOREIGN KEY constraint failed") {
		return apperrors.NotFoundf("image %d not found", imageID)
	}
	return apperrors.Internalf("insert favorite %d", imageID).WithCause(err)
}

// DeleteFavorites removes images from the user's gallery in one
// transaction. Unknown images and images not in the gallery both roll
// back the batch, with distinct errors.
func (s *Store) DeleteFavorites(ctx context.Context, userID int64, imageIDs []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Internal("begin favorites delete").WithCause(err)
	}
	defer tx.Rollback()

	for _, imageID := range imageIDs {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM fav_images WHERE user_id = ? AND image_id = ?`,
			userID, imageID)
		if err != nil {
			return apperrors.Internalf("delete favorite %d", imageID).WithCause(err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return apperrors.Internalf("delete favorite %d", imageID).WithCause(err)
		}
		if n == 0 {
			exists, err := imageExists(ctx, tx, imageID)
			if err != nil {
				return err
			}
			if !exists {
				return apperrors.NotFoundf("image %d not found", imageID)
			}
			return apperrors.Conflictf("image %d is not in the gallery", imageID)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Internal("commit favorites delete").WithCause(err)
	}
	return nil
}

// ToggleFavorite flips the gallery membership of a single image and
// reports which way it went.
func (s *Store) ToggleFavorite(ctx context.Context, userID, imageID int64) (domain.ToggleState, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", apperrors.Internal("begin favorite toggle").WithCause(err)
	}
	defer tx.Rollback()

	exists, err := imageExists(ctx, tx, imageID)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", apperrors.NotFoundf("image %d not found", imageID)
	}

	var one int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM fav_images WHERE user_id = ? AND image_id = ?`,
		userID, imageID).Scan(&one)

	var state domain.ToggleState
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if err := insertFavorite(ctx, tx, userID, imageID); err != nil {
			return "", err
		}
		state = domain.ToggleInserted
	case err != nil:
		return "", apperrors.Internalf("toggle favorite %d", imageID).WithCause(err)
	default:
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM fav_images WHERE user_id = ? AND image_id = ?`,
			userID, imageID); err != nil {
			return "", apperrors.Internalf("toggle favorite %d", imageID).WithCause(err)
		}
		state = domain.ToggleDeleted
	}

	if err := tx.Commit(); err != nil {
		return "", apperrors.Internal("commit favorite toggle").WithCause(err)
	}
	return state, nil
}

func imageExists(ctx context.Context, tx *sql.Tx, imageID int64) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM images WHERE image_id = ?`, imageID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, apperrors.Internalf("check image %d", imageID).WithCause(err)
	}
	return true, nil
}
