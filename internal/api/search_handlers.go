package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/driftpix/driftpix-server/internal/domain"
	apperrors "github.com/driftpix/driftpix-server/internal/errors"
	"github.com/driftpix/driftpix-server/internal/service"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchImages",
		Method:      http.MethodGet,
		Path:        "/search",
		Summary:     "Draw images",
		Description: "Draws one or more images matching the given filters. Plain random draws exclude recently served images per client.",
		Tags:        []string{"Images"},
	}, s.handleSearch)
}

// === DTOs ===

// SearchInput contains the image draw filters.
type SearchInput struct {
	Authorization string   `header:"Authorization"`
	IsNSFW        string   `query:"is_nsfw" doc:"Content rating: false (default), true, or null for no filter"`
	Gif           string   `query:"gif" doc:"Animation filter: true for gifs only, false to exclude gifs"`
	Orientation   string   `query:"orientation" doc:"RANDOM, LANDSCAPE, PORTRAIT, or SQUARE"`
	OrderBy       string   `query:"order_by" doc:"RANDOM, FAVORITES, or UPLOADED_AT"`
	IncludedTags  []string `query:"included_tags" doc:"Tags every result must carry"`
	ExcludedTags  []string `query:"excluded_tags" doc:"Tags no result may carry"`
	IncludedFiles []string `query:"included_files" doc:"Draw exactly these files, by id or signature"`
	ExcludedFiles []string `query:"excluded_files" doc:"Files to skip, by id or signature"`
	Many          bool     `query:"many" doc:"Return a batch instead of a single image"`
	Full          bool     `query:"full" doc:"Return every match; requires the admin permission"`
}

// TagResponse contains tag data in API responses.
type TagResponse struct {
	ID          int64  `json:"tag_id" doc:"Tag ID"`
	Name        string `json:"name" doc:"Tag name"`
	Description string `json:"description,omitempty" doc:"Tag description"`
	IsNSFW      bool   `json:"is_nsfw" doc:"Whether the tag is NSFW"`
}

// ImageResponse contains image data in API responses.
type ImageResponse struct {
	ID            int64         `json:"image_id" doc:"Image ID"`
	Signature     string        `json:"signature" doc:"Content signature"`
	Extension     string        `json:"extension" doc:"File extension"`
	DominantColor string        `json:"dominant_color" doc:"Dominant color as hex"`
	Source        string        `json:"source,omitempty" doc:"Original source URL"`
	UploadedAt    time.Time     `json:"uploaded_at" doc:"Upload time"`
	LikedAt       *time.Time    `json:"liked_at,omitempty" doc:"Time the requesting user favorited the image; gallery draws only"`
	IsNSFW        bool          `json:"is_nsfw" doc:"Whether the image is NSFW"`
	Width         int           `json:"width" doc:"Width in pixels"`
	Height        int           `json:"height" doc:"Height in pixels"`
	ByteSize      int64         `json:"byte_size" doc:"File size in bytes"`
	Favorites     int64         `json:"favorites" doc:"Favorite count across all users"`
	URL           string        `json:"url" doc:"Public file URL"`
	Tags          []TagResponse `json:"tags" doc:"Tags linked to the image"`
}

// SearchResponse contains drawn images.
type SearchResponse struct {
	Images []ImageResponse `json:"images" doc:"Drawn images"`
}

// SearchOutput wraps the search response for Huma.
type SearchOutput struct {
	Body SearchResponse
}

// === Handlers ===

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	nsfw, ok := domain.ParseNSFWFilter(input.IsNSFW)
	if !ok {
		return nil, apperrors.InvalidFilterf("unknown is_nsfw value %q", input.IsNSFW)
	}
	gif, ok := domain.ParseGifFilter(input.Gif)
	if !ok {
		return nil, apperrors.InvalidFilterf("unknown gif value %q", input.Gif)
	}

	orientation := domain.OrientationAny
	if input.Orientation != "" {
		orientation = domain.Orientation(strings.ToUpper(input.Orientation))
	}
	orderBy := domain.OrderRandom
	if input.OrderBy != "" {
		orderBy = domain.OrderBy(strings.ToUpper(input.OrderBy))
	}

	// Full dumps are an admin-only export path.
	var user *domain.User
	if input.Full {
		u, err := s.authorize(ctx, input.Authorization, []string{domain.PermissionAdmin}, 0)
		if err != nil {
			return nil, err
		}
		user = u
	} else if input.Authorization != "" {
		u, err := s.authorize(ctx, input.Authorization, nil, 0)
		if err != nil {
			return nil, err
		}
		user = u
	}

	clientKey := service.ClientKeyForAddress(clientIPFrom(ctx))
	if user != nil {
		clientKey = service.ClientKeyForUser(user.ID)
	}

	images, _, err := s.services.Image.Search(ctx, service.SearchRequest{
		NSFW:          nsfw,
		Gif:           gif,
		Orientation:   orientation,
		OrderBy:       orderBy,
		IncludedTags:  input.IncludedTags,
		ExcludedTags:  input.ExcludedTags,
		IncludedFiles: input.IncludedFiles,
		ExcludedFiles: input.ExcludedFiles,
		Many:          input.Many,
		Full:          input.Full,
		ClientKey:     clientKey,
	})
	if err != nil {
		return nil, err
	}

	return &SearchOutput{Body: SearchResponse{Images: s.imageResponses(images)}}, nil
}

// imageResponses maps drawn images onto the wire shape.
func (s *Server) imageResponses(images []domain.Image) []ImageResponse {
	resp := make([]ImageResponse, len(images))
	for i, img := range images {
		tags := make([]TagResponse, len(img.Tags))
		for j, t := range img.Tags {
			tags[j] = TagResponse{
				ID:          t.ID,
				Name:        t.Name,
				Description: t.Description,
				IsNSFW:      t.IsNSFW,
			}
		}
		resp[i] = ImageResponse{
			ID:            img.ID,
			Signature:     img.Signature,
			Extension:     img.Extension,
			DominantColor: img.DominantColor,
			Source:        img.Source,
			UploadedAt:    img.UploadedAt,
			LikedAt:       img.LikedAt,
			IsNSFW:        img.IsNSFW,
			Width:         img.Width,
			Height:        img.Height,
			ByteSize:      img.ByteSize,
			Favorites:     img.Favorites,
			URL:           img.File(s.cdnBaseURL),
			Tags:          tags,
		}
	}
	return resp
}
