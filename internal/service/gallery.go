package service

import (
	"context"
	"time"

	"github.com/driftpix/driftpix-server/internal/domain"
	apperrors "github.com/driftpix/driftpix-server/internal/errors"
	"github.com/driftpix/driftpix-server/internal/logger"
	"github.com/driftpix/driftpix-server/internal/store"
)

// GalleryService manages user favorites.
type GalleryService struct {
	favorites  store.GalleryStore
	images     store.ImageStore
	batchLimit int
	logger     *logger.Logger
}

// NewGalleryService creates a new gallery service.
func NewGalleryService(favorites store.GalleryStore, images store.ImageStore, batchLimit int, log *logger.Logger) *GalleryService {
	return &GalleryService{favorites: favorites, images: images, batchLimit: batchLimit, logger: log}
}

// GalleryFilters narrows a gallery read with the same filter set as a
// draw. The zero value returns the full gallery.
type GalleryFilters struct {
	NSFW          domain.NSFWFilter
	Gif           domain.GifFilter
	Orientation   domain.Orientation
	OrderBy       domain.OrderBy
	IncludedTags  []string
	ExcludedTags  []string
	IncludedFiles []string
	ExcludedFiles []string
}

// List returns the user's gallery narrowed by the given filters. The
// default ordering is the time each image was favorited, newest first.
// Unlike a draw, the default rating filter is none: a gallery shows
// whatever its owner favorited.
func (s *GalleryService) List(ctx context.Context, userID int64, f GalleryFilters) ([]domain.Image, time.Duration, error) {
	if f.OrderBy == "" {
		f.OrderBy = domain.OrderLikedAt
	}
	if !f.OrderBy.Valid() {
		return nil, 0, apperrors.InvalidFilterf("unknown order_by %q", string(f.OrderBy))
	}
	if f.NSFW == "" {
		f.NSFW = domain.NSFWAny
	}
	if f.Orientation == "" {
		f.Orientation = domain.OrientationAny
	}
	if !f.Orientation.Valid() {
		return nil, 0, apperrors.InvalidFilterf("unknown orientation %q", string(f.Orientation))
	}

	images, execTime, err := s.images.FetchImages(ctx, store.FetchParams{
		NSFW:          f.NSFW,
		Gif:           f.Gif,
		Orientation:   f.Orientation,
		OrderBy:       f.OrderBy,
		IncludedTags:  normalizeTags(f.IncludedTags),
		ExcludedTags:  normalizeTags(f.ExcludedTags),
		IncludedFiles: f.IncludedFiles,
		ExcludedFiles: f.ExcludedFiles,
		GalleryUserID: userID,
	})
	if err != nil {
		return nil, execTime, apperrors.Upstream("gallery fetch failed").WithCause(err)
	}
	return images, execTime, nil
}

// Insert adds images to the gallery, all or none.
func (s *GalleryService) Insert(ctx context.Context, userID int64, imageIDs []int64) error {
	if err := s.checkBatch(imageIDs); err != nil {
		return err
	}
	return s.favorites.InsertFavorites(ctx, userID, imageIDs)
}

// Delete removes images from the gallery, all or none.
func (s *GalleryService) Delete(ctx context.Context, userID int64, imageIDs []int64) error {
	if err := s.checkBatch(imageIDs); err != nil {
		return err
	}
	return s.favorites.DeleteFavorites(ctx, userID, imageIDs)
}

// Toggle flips gallery membership for one image.
func (s *GalleryService) Toggle(ctx context.Context, userID, imageID int64) (domain.ToggleState, error) {
	if imageID <= 0 {
		return "", apperrors.Validation("image_id must be positive")
	}
	return s.favorites.ToggleFavorite(ctx, userID, imageID)
}

func (s *GalleryService) checkBatch(imageIDs []int64) error {
	if len(imageIDs) == 0 {
		return apperrors.Validation("at least one image_id is required")
	}
	if len(imageIDs) > s.batchLimit {
		return apperrors.ValidationWithDetails("too many images in one batch",
			map[string]int{"limit": s.batchLimit, "got": len(imageIDs)})
	}
	for _, id := range imageIDs {
		if id <= 0 {
			return apperrors.Validation("image ids must be positive")
		}
	}
	return nil
}
