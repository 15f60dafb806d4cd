package service

import (
	"context"
	"fmt"
	"strings"

	"polyglot/backend/internal/model"
	"polyglot/backend/internal/repository"
)

type TagSearchParams struct {
	Name     *string
	Page     int
	PageSize int
}

type TagPage struct {
	Items    []model.Tag
	Page     int
	PageSize int
	Total    int
}

type TagService interface {
	Create(ctx context.Context, name string) (model.Tag, error)
	Get(ctx context.Context, id string) (model.Tag, error)
	Update(ctx context.Context, id, name string) (model.Tag, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, params TagSearchParams) (TagPage, error)
}

type tagService struct {
	tags    repository.TagRepository
	exports ExportInvalidator
}

func NewTagService(tags repository.TagRepository, exports ExportInvalidator) TagService {
	return &tagService{tags: tags, exports: exports}
}

func (s *tagService) Create(ctx context.Context, name string) (model.Tag, error) {
	trimmed := strings.TrimSpace(name)
	if err := validateTagName(trimmed); err != nil {
		return model.Tag{}, err
	}

	if existing, err := s.tags.FindByName(ctx, trimmed); err != nil {
		return model.Tag{}, fmt.Errorf("check tag name: %w", err)
	} else if existing != nil {
		return model.Tag{}, ErrDuplicateName
	}

	created, err := s.tags.Create(ctx, trimmed)
	if err != nil {
		return model.Tag{}, mapRepositoryError(err)
	}
	return created, nil
}

func (s *tagService) Get(ctx context.Context, id string) (model.Tag, error) {
	tag, err := s.tags.GetByID(ctx, id)
	if err != nil {
		return model.Tag{}, mapRepositoryError(err)
	}
	return tag, nil
}

func (s *tagService) Update(ctx context.Context, id, name string) (model.Tag, error) {
	trimmed := strings.TrimSpace(name)
	if err := validateTagName(trimmed); err != nil {
		return model.Tag{}, err
	}

	if existing, err := s.tags.FindByName(ctx, trimmed); err != nil {
		return model.Tag{}, fmt.Errorf("check tag name: %w", err)
	} else if existing != nil && existing.ID != id {
		return model.Tag{}, ErrDuplicateName
	}

	updated, err := s.tags.Update(ctx, id, trimmed)
	if err != nil {
		return model.Tag{}, mapRepositoryError(err)
	}

	// Renames show up in export tag lists, so the cached document is stale.
	s.exports.Invalidate()
	return updated, nil
}

func (s *tagService) Delete(ctx context.Context, id string) error {
	if err := s.tags.Delete(ctx, id); err != nil {
		return mapRepositoryError(err)
	}

	s.exports.Invalidate()
	return nil
}

func (s *tagService) Search(ctx context.Context, params TagSearchParams) (TagPage, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}
	size := params.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	items, total, err := s.tags.Search(ctx, repository.TagSearchFilter{
		Name:   params.Name,
		Limit:  size,
		Offset: (page - 1) * size,
	})
	if err != nil {
		return TagPage{}, fmt.Errorf("search tags: %w", err)
	}

	return TagPage{Items: items, Page: page, PageSize: size, Total: total}, nil
}
