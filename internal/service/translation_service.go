package service

import (
	"context"
	"fmt"

	"polyglot/backend/internal/model"
	"polyglot/backend/internal/repository"
)

const (
	defaultPageSize = 15
	maxPageSize     = 100
)

type CreateTranslationInput struct {
	Key     string
	Locale  string
	Content string
	// TagIDs, when non-nil, replaces the key's tag set.
	TagIDs []string
}

// UpdateTranslationInput carries optional fields; nil means "leave as is",
// which is distinct from setting a field to its zero value.
type UpdateTranslationInput struct {
	Key     *string
	Locale  *string
	Content *string
	TagIDs  *[]string
}

type TranslationSearchParams struct {
	Key      *string
	Value    *string
	Locale   *string
	Tag      *string
	Page     int
	PageSize int
}

type TranslationPage struct {
	Items    []model.Translation
	Page     int
	PageSize int
	Total    int
}

type TranslationService interface {
	Create(ctx context.Context, input CreateTranslationInput) (model.Translation, error)
	Get(ctx context.Context, id string) (model.Translation, error)
	Update(ctx context.Context, id string, input UpdateTranslationInput) (model.Translation, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, params TranslationSearchParams) (TranslationPage, error)
	SyncTags(ctx context.Context, keyID string, tagIDs []string) error
}

type translationService struct {
	translations repository.TranslationRepository
	exports      ExportInvalidator
}

func NewTranslationService(translations repository.TranslationRepository, exports ExportInvalidator) TranslationService {
	return &translationService{translations: translations, exports: exports}
}

func (s *translationService) Create(ctx context.Context, input CreateTranslationInput) (model.Translation, error) {
	if err := validateKey(input.Key); err != nil {
		return model.Translation{}, err
	}
	if err := validateLocale(input.Locale); err != nil {
		return model.Translation{}, err
	}
	if err := validateContent(input.Content); err != nil {
		return model.Translation{}, err
	}

	// Pre-check for a friendlier duplicate error; the repository re-checks
	// inside its transaction and the unique constraint backstops a race.
	if existing, err := s.translations.FindByKeyAndLocale(ctx, input.Key, input.Locale); err != nil {
		return model.Translation{}, fmt.Errorf("check translation: %w", err)
	} else if existing != nil {
		return model.Translation{}, ErrDuplicateTranslation
	}

	created, err := s.translations.Create(ctx, repository.CreateTranslationParams{
		Key:     input.Key,
		Locale:  input.Locale,
		Content: input.Content,
		TagIDs:  input.TagIDs,
	})
	if err != nil {
		return model.Translation{}, mapRepositoryError(err)
	}

	s.exports.Invalidate()
	return created, nil
}

func (s *translationService) Get(ctx context.Context, id string) (model.Translation, error) {
	translation, err := s.translations.GetByID(ctx, id)
	if err != nil {
		return model.Translation{}, mapRepositoryError(err)
	}
	return translation, nil
}

func (s *translationService) Update(ctx context.Context, id string, input UpdateTranslationInput) (model.Translation, error) {
	if input.Key != nil {
		if err := validateKey(*input.Key); err != nil {
			return model.Translation{}, err
		}
	}
	if input.Locale != nil {
		if err := validateLocale(*input.Locale); err != nil {
			return model.Translation{}, err
		}
	}
	if input.Content != nil {
		if err := validateContent(*input.Content); err != nil {
			return model.Translation{}, err
		}
	}

	updated, err := s.translations.Update(ctx, id, repository.UpdateTranslationParams{
		Key:     input.Key,
		Locale:  input.Locale,
		Content: input.Content,
		TagIDs:  input.TagIDs,
	})
	if err != nil {
		return model.Translation{}, mapRepositoryError(err)
	}

	s.exports.Invalidate()
	return updated, nil
}

func (s *translationService) Delete(ctx context.Context, id string) error {
	if err := s.translations.Delete(ctx, id); err != nil {
		return mapRepositoryError(err)
	}

	s.exports.Invalidate()
	return nil
}

func (s *translationService) Search(ctx context.Context, params TranslationSearchParams) (TranslationPage, error) {
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

	items, total, err := s.translations.Search(ctx, repository.TranslationSearchFilter{
		Key:    params.Key,
		Value:  params.Value,
		Locale: params.Locale,
		Tag:    params.Tag,
		Limit:  size,
		Offset: (page - 1) * size,
	})
	if err != nil {
		return TranslationPage{}, fmt.Errorf("search translations: %w", err)
	}

	return TranslationPage{Items: items, Page: page, PageSize: size, Total: total}, nil
}

func (s *translationService) SyncTags(ctx context.Context, keyID string, tagIDs []string) error {
	if err := s.translations.SyncTagsForKey(ctx, keyID, tagIDs); err != nil {
		return mapRepositoryError(err)
	}

	s.exports.Invalidate()
	return nil
}
