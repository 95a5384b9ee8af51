package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/tags",
		Summary:     "List tags",
		Description: "Returns the tag catalogue split by content rating; full=true adds descriptions and ids",
		Tags:        []string{"Tags"},
	}, s.handleListTags)
}

// === DTOs ===

// ListTagsInput contains parameters for listing tags.
type ListTagsInput struct {
	Full bool `query:"full" doc:"Return full tag objects instead of names"`
}

// TagsResponse contains the tag catalogue. The entries are plain names,
// or full tag objects when full detail was requested.
type TagsResponse struct {
	Versatile any `json:"versatile" doc:"Tags usable on safe images"`
	NSFW      any `json:"nsfw" doc:"Tags restricted to NSFW images"`
}

// TagsOutput wraps the tag catalogue for Huma.
type TagsOutput struct {
	Body TagsResponse
}

// === Handlers ===

func (s *Server) handleListTags(ctx context.Context, input *ListTagsInput) (*TagsOutput, error) {
	if !input.Full {
		catalog, err := s.services.Tag.Catalog(ctx)
		if err != nil {
			return nil, err
		}
		return &TagsOutput{Body: TagsResponse{Versatile: catalog.Versatile, NSFW: catalog.NSFW}}, nil
	}

	tags, err := s.services.Tag.List(ctx)
	if err != nil {
		return nil, err
	}

	versatile := []TagResponse{}
	nsfw := []TagResponse{}
	for _, t := range tags {
		resp := TagResponse{ID: t.ID, Name: t.Name, Description: t.Description, IsNSFW: t.IsNSFW}
		if t.IsNSFW {
			nsfw = append(nsfw, resp)
		} else {
			versatile = append(versatile, resp)
		}
	}

	return &TagsOutput{Body: TagsResponse{Versatile: versatile, NSFW: nsfw}}, nil
}
