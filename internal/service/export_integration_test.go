package service_test

import (
	"context"
	"testing"
	"time"

	"polyglot/backend/internal/cache"
	"polyglot/backend/internal/model"
	"polyglot/backend/internal/repository"
	"polyglot/backend/internal/repository/testutil"
	"polyglot/backend/internal/service"

	"github.com/stretchr/testify/require"
)

// End-to-end through real repositories: tag + two locales under one key
// flatten into a single export document, and the duplicate pair is rejected.
func TestExport_EndToEnd(t *testing.T) {
	db := testutil.NewTestDB(t)
	translationRepo := repository.NewTranslationRepository(db)
	tagRepo := repository.NewTagRepository(db)
	store := cache.NewMemory(time.Minute)

	exportSvc := service.NewExportService(translationRepo, store, 2000, 1000)
	translationSvc := service.NewTranslationService(translationRepo, exportSvc)
	tagSvc := service.NewTagService(tagRepo, exportSvc)
	ctx := context.Background()

	common, err := tagSvc.Create(ctx, "common")
	require.NoError(t, err)

	_, err = translationSvc.Create(ctx, service.CreateTranslationInput{Key: "welcome", Locale: "en", Content: "Hi"})
	require.NoError(t, err)
	_, err = translationSvc.Create(ctx, service.CreateTranslationInput{
		Key:     "welcome",
		Locale:  "fr",
		Content: "Salut",
		TagIDs:  []string{common.ID},
	})
	require.NoError(t, err)

	docs, err := exportSvc.Export(ctx)
	require.NoError(t, err)
	require.Equal(t, []model.ExportedKey{{
		Key:          "welcome",
		Translations: map[string]string{"en": "Hi", "fr": "Salut"},
		Tags:         []string{"common"},
	}}, docs)

	_, err = translationSvc.Create(ctx, service.CreateTranslationInput{Key: "welcome", Locale: "en", Content: "Hello"})
	require.ErrorIs(t, err, service.ErrDuplicateTranslation)
}

func TestExport_MutationInvalidatesCache(t *testing.T) {
	db := testutil.NewTestDB(t)
	translationRepo := repository.NewTranslationRepository(db)
	store := cache.NewMemory(time.Minute)

	exportSvc := service.NewExportService(translationRepo, store, 2000, 1000)
	translationSvc := service.NewTranslationService(translationRepo, exportSvc)
	ctx := context.Background()

	_, err := translationSvc.Create(ctx, service.CreateTranslationInput{Key: "welcome", Locale: "en", Content: "Hi"})
	require.NoError(t, err)

	docs, err := exportSvc.Export(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	_, err = translationSvc.Create(ctx, service.CreateTranslationInput{Key: "farewell", Locale: "en", Content: "Bye"})
	require.NoError(t, err)

	// The create evicted the cached document, so the next export sees the
	// new key immediately despite the TTL.
	docs, err = exportSvc.Export(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.Equal(t, "farewell", docs[0].Key)
	require.Equal(t, "welcome", docs[1].Key)
}
