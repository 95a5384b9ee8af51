package service

import (
	"context"
	"strconv"
	"time"

	"github.com/driftpix/driftpix-server/internal/domain"
	apperrors "github.com/driftpix/driftpix-server/internal/errors"
	"github.com/driftpix/driftpix-server/internal/logger"
	"github.com/driftpix/driftpix-server/internal/recency"
	"github.com/driftpix/driftpix-server/internal/store"
	"github.com/driftpix/driftpix-server/internal/util"
)

// SearchRequest is a validated image draw.
type SearchRequest struct {
	NSFW          domain.NSFWFilter
	Gif           domain.GifFilter
	Orientation   domain.Orientation
	OrderBy       domain.OrderBy
	IncludedTags  []string
	ExcludedTags  []string
	IncludedFiles []string
	ExcludedFiles []string
	Many          bool
	Full          bool
	// ClientKey identifies the caller for recency tracking: the user id
	// when authenticated, the client address otherwise. Empty disables
	// recency for this draw.
	ClientKey string
	// GalleryUserID scopes the draw to one user's favorites.
	GalleryUserID int64
}

// ImageService runs composed image draws and maintains the per-client
// recency queue.
type ImageService struct {
	store      store.ImageStore
	recency    *recency.Queue
	batchLimit int
	logger     *logger.Logger
}

// NewImageService creates a new image service.
func NewImageService(images store.ImageStore, queue *recency.Queue, batchLimit int, log *logger.Logger) *ImageService {
	return &ImageService{store: images, recency: queue, batchLimit: batchLimit, logger: log}
}

// Search runs a draw. Plain random draws exclude the client's recently
// served images and record the new ones; ranked draws, explicit file
// draws, full dumps, and gallery reads leave the queue untouched. An
// empty result surfaces as a not-found error.
func (s *ImageService) Search(ctx context.Context, req SearchRequest) ([]domain.Image, time.Duration, error) {
	if !req.OrderBy.Valid() {
		return nil, 0, apperrors.InvalidFilterf("unknown order_by %q", string(req.OrderBy))
	}
	if !req.Orientation.Valid() {
		return nil, 0, apperrors.InvalidFilterf("unknown orientation %q", string(req.Orientation))
	}
	if req.OrderBy == domain.OrderLikedAt && req.GalleryUserID == 0 {
		return nil, 0, apperrors.InvalidFilter("order_by LIKED_AT is only available on gallery draws")
	}

	params := store.FetchParams{
		NSFW:          req.NSFW,
		Gif:           req.Gif,
		Orientation:   req.Orientation,
		OrderBy:       req.OrderBy,
		IncludedTags:  normalizeTags(req.IncludedTags),
		ExcludedTags:  normalizeTags(req.ExcludedTags),
		IncludedFiles: req.IncludedFiles,
		ExcludedFiles: req.ExcludedFiles,
		GalleryUserID: req.GalleryUserID,
		Many:          req.Many,
		Full:          req.Full,
		BatchLimit:    s.batchLimit,
	}

	useRecency := s.recencyApplies(req)
	if useRecency {
		snapshot, err := s.recency.Snapshot(ctx, req.ClientKey)
		if err != nil {
			// A broken queue degrades to repeats, not failures.
			s.logger.WithError(err).Warn("recency snapshot failed", "client", req.ClientKey)
		} else {
			params.ExcludedFiles = append(params.ExcludedFiles, snapshot...)
		}
	}

	images, execTime, err := s.store.FetchImages(ctx, params)
	if err != nil {
		return nil, execTime, apperrors.Upstream("image draw failed").WithCause(err)
	}
	if len(images) == 0 {
		return nil, execTime, apperrors.NotFound("no image matches the given criteria")
	}

	if useRecency {
		served := make([]int64, len(images))
		for i, img := range images {
			served[i] = img.ID
		}
		if err := s.recency.Record(ctx, req.ClientKey, served); err != nil {
			s.logger.WithError(err).Warn("recency record failed", "client", req.ClientKey)
		}
	}

	return images, execTime, nil
}

// normalizeTags canonicalizes tag filters so casing and separators do
// not matter to the caller.
func normalizeTags(names []string) []string {
	if len(names) == 0 {
		return names
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		if slug := util.NormalizeTagSlug(name); slug != "" {
			out = append(out, slug)
		}
	}
	return out
}

// recencyApplies reports whether the draw consults the recency queue.
func (s *ImageService) recencyApplies(req SearchRequest) bool {
	return s.recency != nil &&
		req.ClientKey != "" &&
		req.OrderBy == domain.OrderRandom &&
		!req.Full &&
		len(req.IncludedFiles) == 0 &&
		req.GalleryUserID == 0
}

// ClientKeyForUser builds the recency key for an authenticated caller.
func ClientKeyForUser(userID int64) string {
	return "user:" + strconv.FormatInt(userID, 10)
}

// ClientKeyForAddress builds the recency key for an anonymous caller.
func ClientKeyForAddress(addr string) string {
	return "addr:" + addr
}
