package service

import (
	"context"

	"github.com/driftpix/driftpix-server/internal/domain"
	apperrors "github.com/driftpix/driftpix-server/internal/errors"
	"github.com/driftpix/driftpix-server/internal/store"
)

// TagService lists the tag catalogue.
type TagService struct {
	store store.TagStore
}

// NewTagService creates a new tag service.
func NewTagService(tags store.TagStore) *TagService {
	return &TagService{store: tags}
}

// List returns all tags with full detail.
func (s *TagService) List(ctx context.Context) ([]domain.Tag, error) {
	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return nil, apperrors.Upstream("list tags failed").WithCause(err)
	}
	return tags, nil
}

// Catalog returns the tag names split by their NSFW flag.
func (s *TagService) Catalog(ctx context.Context) (*domain.TagCatalog, error) {
	tags, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	catalog := &domain.TagCatalog{
		Versatile: []string{},
		NSFW:      []string{},
	}
	for _, t := range tags {
		if t.IsNSFW {
			catalog.NSFW = append(catalog.NSFW, t.Name)
		} else {
			catalog.Versatile = append(catalog.Versatile, t.Name)
		}
	}
	return catalog, nil
}
