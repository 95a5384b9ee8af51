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

// InsertReport flags an image for review. Reports are keyed by image, so
// a second reporter takes over authorship of the existing record and the
// result carries Existed instead of duplicating rows.
func (s *Store) InsertReport(ctx context.Context, authorID, imageID int64, description string) (domain.Report, error) {
	report := domain.Report{ImageID: imageID, AuthorID: authorID, Description: description}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return report, apperrors.Internal("begin report").WithCause(err)
	}
	defer tx.Rollback()

	var one int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM reported_images WHERE image_id = ?`, imageID).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		report.Existed = false
	case err != nil:
		return report, apperrors.Internal("check report").WithCause(err)
	default:
		report.Existed = true
	}

	report.ReportedAt = time.Now().UTC()
	var storedDesc sql.NullString
	var reportedAt string
	err = tx.QueryRowContext(ctx, `
		INSERT INTO reported_images (image_id, author_id, description, reported_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (image_id) DO UPDATE SET author_id = excluded.author_id
		RETURNING author_id, description, reported_at`,
		imageID, authorID, nullString(description), formatTime(report.ReportedAt),
	).Scan(&report.AuthorID, &storedDesc, &reportedAt)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return report, apperrors.NotFoundf("image %d not found", imageID)
		}
		return report, apperrors.Internal("insert report").WithCause(err)
	}
	report.Description = storedDesc.String
	if report.ReportedAt, err = parseTime(reportedAt); err != nil {
		return report, apperrors.Internal("insert report").WithCause(err)
	}

	if err := tx.Commit(); err != nil {
		return report, apperrors.Internal("commit report").WithCause(err)
	}
	return report, nil
}
