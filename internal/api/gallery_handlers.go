package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/driftpix/driftpix-server/internal/domain"
	apperrors "github.com/driftpix/driftpix-server/internal/errors"
	"github.com/driftpix/driftpix-server/internal/service"
)

func (s *Server) registerGalleryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getGallery",
		Method:      http.MethodGet,
		Path:        "/fav",
		Summary:     "Get gallery",
		Description: "Returns the user's favorited images, newest first",
		Tags:        []string{"Gallery"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetGallery)

	huma.Register(s.api, huma.Operation{
		OperationID: "insertFavorites",
		Method:      http.MethodPost,
		Path:        "/fav/insert",
		Summary:     "Add favorites",
		Description: "Adds images to the gallery; the whole batch succeeds or fails together",
		Tags:        []string{"Gallery"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleInsertFavorites)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteFavorites",
		Method:      http.MethodDelete,
		Path:        "/fav/delete",
		Summary:     "Remove favorites",
		Description: "Removes images from the gallery; the whole batch succeeds or fails together",
		Tags:        []string{"Gallery"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteFavorites)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleFavorite",
		Method:      http.MethodPost,
		Path:        "/fav/toggle",
		Summary:     "Toggle favorite",
		Description: "Flips gallery membership for one image",
		Tags:        []string{"Gallery"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleToggleFavorite)
}

// === DTOs ===

// GetGalleryInput contains parameters for reading a gallery. The filter
// set matches the draw endpoint, scoped to the target's favorites.
type GetGalleryInput struct {
	Authorization string   `header:"Authorization"`
	UserID        int64    `query:"user_id" doc:"Target user; requires the view_gallery permission when not your own"`
	OrderBy       string   `query:"order_by" doc:"LIKED_AT (default), RANDOM, FAVORITES, or UPLOADED_AT"`
	IsNSFW        string   `query:"is_nsfw" doc:"Content rating: true, false, or null (default: no filter)"`
	Gif           string   `query:"gif" doc:"Animation filter: true for gifs only, false to exclude gifs"`
	Orientation   string   `query:"orientation" doc:"RANDOM, LANDSCAPE, PORTRAIT, or SQUARE"`
	IncludedTags  []string `query:"included_tags" doc:"Tags every result must carry"`
	ExcludedTags  []string `query:"excluded_tags" doc:"Tags no result may carry"`
	IncludedFiles []string `query:"included_files" doc:"Restrict to these files, by id or signature"`
	ExcludedFiles []string `query:"excluded_files" doc:"Files to skip, by id or signature"`
}

// GalleryOutput wraps a gallery read for Huma.
type GalleryOutput struct {
	Body SearchResponse
}

// FavoritesBatchRequest is the request body for batch gallery mutations.
type FavoritesBatchRequest struct {
	UserID   int64   `json:"user_id,omitempty" doc:"Target user; requires the manage_gallery permission when not your own"`
	ImageIDs []int64 `json:"image_ids" validate:"required,min=1,dive,gt=0" doc:"Images to add or remove"`
}

// FavoritesBatchInput wraps a batch mutation for Huma.
type FavoritesBatchInput struct {
	Authorization string `header:"Authorization"`
	Body          FavoritesBatchRequest
}

// MessageResponse contains a confirmation message.
type MessageResponse struct {
	Message string `json:"message" doc:"Confirmation message"`
}

// MessageOutput wraps a confirmation for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// ToggleFavoriteRequest is the request body for a toggle.
type ToggleFavoriteRequest struct {
	UserID  int64 `json:"user_id,omitempty" doc:"Target user; requires the manage_gallery permission when not your own"`
	ImageID int64 `json:"image_id" validate:"required,gt=0" doc:"Image to toggle"`
}

// ToggleFavoriteInput wraps a toggle for Huma.
type ToggleFavoriteInput struct {
	Authorization string `header:"Authorization"`
	Body          ToggleFavoriteRequest
}

// ToggleFavoriteResponse reports the toggle outcome.
type ToggleFavoriteResponse struct {
	State string `json:"state" doc:"INSERTED or DELETED" enum:"INSERTED,DELETED"`
}

// ToggleFavoriteOutput wraps the toggle outcome for Huma.
type ToggleFavoriteOutput struct {
	Body ToggleFavoriteResponse
}

// === Handlers ===

func (s *Server) handleGetGallery(ctx context.Context, input *GetGalleryInput) (*GalleryOutput, error) {
	userID, err := s.galleryTarget(ctx, input.Authorization, input.UserID, domain.PermissionViewGallery)
	if err != nil {
		return nil, err
	}

	// An absent rating filter shows the whole gallery; the safe-only
	// default applies to draws, not to a list the owner curated.
	nsfw := domain.NSFWAny
	if input.IsNSFW != "" {
		parsed, ok := domain.ParseNSFWFilter(input.IsNSFW)
		if !ok {
			return nil, apperrors.InvalidFilterf("unknown is_nsfw value %q", input.IsNSFW)
		}
		nsfw = parsed
	}
	gif, ok := domain.ParseGifFilter(input.Gif)
	if !ok {
		return nil, apperrors.InvalidFilterf("unknown gif value %q", input.Gif)
	}

	filters := service.GalleryFilters{
		NSFW:          nsfw,
		Gif:           gif,
		Orientation:   domain.Orientation(strings.ToUpper(input.Orientation)),
		OrderBy:       domain.OrderBy(strings.ToUpper(input.OrderBy)),
		IncludedTags:  input.IncludedTags,
		ExcludedTags:  input.ExcludedTags,
		IncludedFiles: input.IncludedFiles,
		ExcludedFiles: input.ExcludedFiles,
	}

	images, _, err := s.services.Gallery.List(ctx, userID, filters)
	if err != nil {
		return nil, err
	}

	return &GalleryOutput{Body: SearchResponse{Images: s.imageResponses(images)}}, nil
}

func (s *Server) handleInsertFavorites(ctx context.Context, input *FavoritesBatchInput) (*MessageOutput, error) {
	userID, err := s.galleryTarget(ctx, input.Authorization, input.Body.UserID, domain.PermissionManageGallery)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(&input.Body); err != nil {
		return nil, err
	}

	if err := s.services.Gallery.Insert(ctx, userID, input.Body.ImageIDs); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Images added to the gallery"}}, nil
}

func (s *Server) handleDeleteFavorites(ctx context.Context, input *FavoritesBatchInput) (*MessageOutput, error) {
	userID, err := s.galleryTarget(ctx, input.Authorization, input.Body.UserID, domain.PermissionManageGallery)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(&input.Body); err != nil {
		return nil, err
	}

	if err := s.services.Gallery.Delete(ctx, userID, input.Body.ImageIDs); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Images removed from the gallery"}}, nil
}

func (s *Server) handleToggleFavorite(ctx context.Context, input *ToggleFavoriteInput) (*ToggleFavoriteOutput, error) {
	userID, err := s.galleryTarget(ctx, input.Authorization, input.Body.UserID, domain.PermissionManageGallery)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(&input.Body); err != nil {
		return nil, err
	}

	state, err := s.services.Gallery.Toggle(ctx, userID, input.Body.ImageID)
	if err != nil {
		return nil, err
	}

	return &ToggleFavoriteOutput{Body: ToggleFavoriteResponse{State: string(state)}}, nil
}
