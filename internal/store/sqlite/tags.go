package sqlite

import (
	"context"
	"strings"

	"github.com/driftpix/driftpix-server/internal/domain"
	apperrors "github.com/driftpix/driftpix-server/internal/errors"
)

// ListTags returns the full tag catalogue.
func (s *Store) ListTags(ctx context.Context) ([]domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, is_nsfw FROM tags ORDER BY name`)
	if err != nil {
		return nil, apperrors.Internal("list tags").WithCause(err)
	}
	defer rows.Close()

	var tags []domain.Tag
	for rows.Next() {
		var t domain.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.IsNSFW); err != nil {
			return nil, apperrors.Internal("scan tag").WithCause(err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Internal("list tags").WithCause(err)
	}
	return tags, nil
}

// CreateTag inserts a new tag and fills in its generated id.
func (s *Store) CreateTag(ctx context.Context, t *domain.Tag) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO tags (name, description, is_nsfw) VALUES (?, ?, ?)`,
		t.Name, t.Description, t.IsNSFW,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return apperrors.Conflictf("tag %q already exists", t.Name)
		}
		return apperrors.Internal("create tag").WithCause(err)
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return apperrors.Internal("create tag").WithCause(err)
	}
	return nil
}

// CreateImage inserts a new image and fills in its generated id.
func (s *Store) CreateImage(ctx context.Context, img *domain.Image) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO images (signature, extension, dominant_color, source, uploaded_at, is_nsfw, width, height, byte_size)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		img.Signature, img.Extension, img.DominantColor, nullString(img.Source),
		formatTime(img.UploadedAt), img.IsNSFW, img.Width, img.Height, img.ByteSize,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return apperrors.Conflictf("image %q already exists", img.Signature)
		}
		return apperrors.Internal("create image").WithCause(err)
	}
	img.ID, err = res.LastInsertId()
	if err != nil {
		return apperrors.Internal("create image").WithCause(err)
	}
	return nil
}

// LinkTag attaches a tag to an image. Linking twice is a no-op.
func (s *Store) LinkTag(ctx context.Context, imageID, tagID int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO linked_tags (image_id, tag_id) VALUES (?, ?)`,
		imageID, tagID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return apperrors.NotFoundf("image %d or tag %d not found", imageID, tagID)
		}
		return apperrors.Internal("link tag").WithCause(err)
	}
	return nil
}
