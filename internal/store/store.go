// Package store defines the persistence contracts shared between the
// relational image store and the service layer.
package store

import (
	"context"
	"time"

	"github.com/driftpix/driftpix-server/internal/domain"
)

// FetchParams describes a composed image draw. The service layer fills it
// from validated request filters; the store compiles it into a single query.
type FetchParams struct {
	NSFW          domain.NSFWFilter
	Gif           domain.GifFilter
	Orientation   domain.Orientation
	OrderBy       domain.OrderBy
	IncludedTags  []string
	ExcludedTags  []string
	IncludedFiles []string
	// ExcludedFiles carries both caller exclusions and the recency
	// snapshot merged by the service.
	ExcludedFiles []string
	// GalleryUserID restricts the draw to one user's favorites when set.
	GalleryUserID int64
	// Many selects a batch draw; Full lifts the limit entirely.
	Many bool
	Full bool
	// BatchLimit is the result count of a many draw.
	BatchLimit int
}

// Limited reports whether the draw carries a LIMIT clause. Explicit file
// selection, gallery draws, and full dumps return every match.
func (p FetchParams) Limited() bool {
	return !p.Full && len(p.IncludedFiles) == 0 && p.GalleryUserID == 0
}

// RequestLog is one row of the API access log.
type RequestLog struct {
	RemoteAddress string
	URL           string
	UserAgent     string
	UserID        int64
	Version       string
	ExecTime      time.Duration
}

// ImageStore is the read side of the image catalogue.
type ImageStore interface {
	FetchImages(ctx context.Context, params FetchParams) ([]domain.Image, time.Duration, error)
}

// TagStore lists the tag catalogue.
type TagStore interface {
	ListTags(ctx context.Context) ([]domain.Tag, error)
}

// UserStore manages registered users and their permissions.
type UserStore interface {
	UpsertUser(ctx context.Context, user domain.User) error
	ValidateCredentials(ctx context.Context, userID int64, secret string) (*domain.User, error)
	MissingPermissions(ctx context.Context, userID, targetUserID int64, permissions []string) ([]string, error)
}

// GalleryStore mutates user favorites. Batch mutations are transactional:
// one bad image id rolls back the whole batch.
type GalleryStore interface {
	InsertFavorites(ctx context.Context, userID int64, imageIDs []int64) error
	DeleteFavorites(ctx context.Context, userID int64, imageIDs []int64) error
	ToggleFavorite(ctx context.Context, userID, imageID int64) (domain.ToggleState, error)
}

// ReportStore records image reports.
type ReportStore interface {
	InsertReport(ctx context.Context, authorID, imageID int64, description string) (domain.Report, error)
}

// RequestLogStore records API access log rows.
type RequestLogStore interface {
	LogRequest(ctx context.Context, entry RequestLog) error
}
