package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/singleflight"

	"polyglot/backend/internal/cache"
	"polyglot/backend/internal/logger"
	"polyglot/backend/internal/model"
	"polyglot/backend/internal/repository"
)

// ExportCacheKey is the fixed cache key the export document set lives under.
const ExportCacheKey = "translations:export"

// ExportInvalidator is the slice of ExportService that mutating services
// need: synchronous eviction of the cached export document.
type ExportInvalidator interface {
	Invalidate()
}

type ExportService interface {
	// Export returns the flattened document set, serving the cached copy
	// when it is still fresh. The result is a best-effort snapshot: batches
	// are read outside a transaction, so writes landing mid-build may or
	// may not appear.
	Export(ctx context.Context) ([]model.ExportedKey, error)
	Invalidate()
}

type exportService struct {
	translations repository.TranslationRepository
	store        cache.Store
	maxKeys      int
	batchSize    int
	group        singleflight.Group
}

// NewExportService builds the export pipeline. maxKeys bounds how many keys
// one export reads (the overflow is truncated and logged, never silently
// grown); batchSize bounds the span of each join query.
func NewExportService(translations repository.TranslationRepository, store cache.Store, maxKeys, batchSize int) ExportService {
	if maxKeys <= 0 {
		maxKeys = 2000
	}
	if batchSize <= 0 {
		batchSize = 1000
	}
	return &exportService{
		translations: translations,
		store:        store,
		maxKeys:      maxKeys,
		batchSize:    batchSize,
	}
}

func (s *exportService) Export(ctx context.Context) ([]model.ExportedKey, error) {
	if cached, ok := s.store.Get(ExportCacheKey); ok {
		if docs, ok := cached.([]model.ExportedKey); ok {
			return docs, nil
		}
	}

	// Concurrent rebuilds would only be redundant work, but collapsing them
	// keeps a burst of export requests from hammering the database.
	result, err, _ := s.group.Do(ExportCacheKey, func() (any, error) {
		return s.build(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.([]model.ExportedKey), nil
}

func (s *exportService) build(ctx context.Context) ([]model.ExportedKey, error) {
	refs, err := s.translations.ListExportKeys(ctx, s.maxKeys)
	if err != nil {
		return nil, fmt.Errorf("list export keys: %w", err)
	}
	if len(refs) == s.maxKeys {
		logger.Warn("export key cap reached, output may be truncated", "max_keys", s.maxKeys)
	}

	entries := make(map[string]*model.ExportedKey, len(refs))
	tagSets := make(map[string]map[string]struct{}, len(refs))

	for start := 0; start < len(refs); start += s.batchSize {
		end := min(start+s.batchSize, len(refs))
		ids := make([]string, 0, end-start)
		for _, ref := range refs[start:end] {
			ids = append(ids, ref.ID)
		}

		rows, err := s.translations.ExportRows(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("export batch: %w", err)
		}

		for _, row := range rows {
			entry, ok := entries[row.Key]
			if !ok {
				entry = &model.ExportedKey{
					Key:          row.Key,
					Translations: map[string]string{},
					Tags:         []string{},
				}
				entries[row.Key] = entry
				tagSets[row.Key] = map[string]struct{}{}
			}
			// Outer-join rows for keys without translations carry null
			// locale/content; they must not inject empty entries.
			if row.Locale != nil && row.Content != nil {
				entry.Translations[*row.Locale] = *row.Content
			}
			if row.TagNames != nil {
				for _, name := range strings.Split(*row.TagNames, ",") {
					if name != "" {
						tagSets[row.Key][name] = struct{}{}
					}
				}
			}
		}
	}

	docs := make([]model.ExportedKey, 0, len(entries))
	for key, entry := range entries {
		names := make([]string, 0, len(tagSets[key]))
		for name := range tagSets[key] {
			names = append(names, name)
		}
		sort.Strings(names)
		entry.Tags = names
		docs = append(docs, *entry)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Key < docs[j].Key })

	s.store.Set(ExportCacheKey, docs)
	return docs, nil
}

func (s *exportService) Invalidate() {
	s.store.Delete(ExportCacheKey)
}
