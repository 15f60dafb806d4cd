package repository_test

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"polyglot/backend/internal/repository"
	"polyglot/backend/internal/repository/testutil"

	"github.com/stretchr/testify/require"
)

func stringPtr(s string) *string {
	return &s
}

func tagIDsPtr(ids ...string) *[]string {
	return &ids
}

func TestTranslationRepository_CreateAndGet(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewTranslationRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, repository.CreateTranslationParams{
		Key:     "home.title",
		Locale:  "en",
		Content: "Welcome",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "home.title", created.Key)
	require.Equal(t, "en", created.Locale)
	require.Equal(t, "Welcome", created.Content)
	require.Empty(t, created.Tags)

	fetched, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, fetched.ID)
	require.Equal(t, created.TranslationKeyID, fetched.TranslationKeyID)
}

func TestTranslationRepository_Create_ReusesExistingKey(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewTranslationRepository(db)
	ctx := context.Background()

	first, err := repo.Create(ctx, repository.CreateTranslationParams{Key: "home.title", Locale: "en", Content: "Welcome"})
	require.NoError(t, err)

	second, err := repo.Create(ctx, repository.CreateTranslationParams{Key: "home.title", Locale: "fr", Content: "Bienvenue"})
	require.NoError(t, err)

	require.Equal(t, first.TranslationKeyID, second.TranslationKeyID)
	require.Equal(t, 1, testutil.CountRows(t, db, "translation_keys"))
}

func TestTranslationRepository_Create_DuplicateLocale(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewTranslationRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, repository.CreateTranslationParams{Key: "home.title", Locale: "en", Content: "Hi"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, repository.CreateTranslationParams{Key: "home.title", Locale: "en", Content: "Hello"})
	require.ErrorIs(t, err, repository.ErrDuplicateTranslation)

	require.Equal(t, 1, testutil.CountRows(t, db, "translations"))
}

func TestTranslationRepository_Create_WithTags(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewTranslationRepository(db)
	ctx := context.Background()

	commonID := testutil.SeedTag(t, db, "common")
	homeID := testutil.SeedTag(t, db, "home")

	created, err := repo.Create(ctx, repository.CreateTranslationParams{
		Key:     "home.title",
		Locale:  "en",
		Content: "Welcome",
		TagIDs:  []string{commonID, homeID},
	})
	require.NoError(t, err)
	require.Len(t, created.Tags, 2)
	require.Equal(t, "common", created.Tags[0].Name)
	require.Equal(t, "home", created.Tags[1].Name)
}

func TestTranslationRepository_Create_UnknownTag(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewTranslationRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, repository.CreateTranslationParams{
		Key:     "home.title",
		Locale:  "en",
		Content: "Welcome",
		TagIDs:  []string{"nope"},
	})
	require.ErrorIs(t, err, repository.ErrTagNotFound)

	// Failed create must roll back the key row it created.
	require.Equal(t, 0, testutil.CountRows(t, db, "translation_keys"))
	require.Equal(t, 0, testutil.CountRows(t, db, "translations"))
}

func TestTranslationRepository_Update_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewTranslationRepository(db)

	_, err := repo.Update(context.Background(), "missing", repository.UpdateTranslationParams{Content: stringPtr("x")})
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestTranslationRepository_Update_Content(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewTranslationRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, repository.CreateTranslationParams{Key: "home.title", Locale: "en", Content: "Hi"})
	require.NoError(t, err)

	updated, err := repo.Update(ctx, created.ID, repository.UpdateTranslationParams{Content: stringPtr("Hello")})
	require.NoError(t, err)
	require.Equal(t, "Hello", updated.Content)
	require.Equal(t, "en", updated.Locale)
	require.Equal(t, "home.title", updated.Key)
}

func TestTranslationRepository_Update_LocaleConflict(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewTranslationRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, repository.CreateTranslationParams{Key: "home.title", Locale: "en", Content: "Hi"})
	require.NoError(t, err)
	fr, err := repo.Create(ctx, repository.CreateTranslationParams{Key: "home.title", Locale: "fr", Content: "Salut"})
	require.NoError(t, err)

	_, err = repo.Update(ctx, fr.ID, repository.UpdateTranslationParams{Locale: stringPtr("en")})
	require.ErrorIs(t, err, repository.ErrDuplicateTranslation)

	// Same locale is not a conflict with itself.
	updated, err := repo.Update(ctx, fr.ID, repository.UpdateTranslationParams{Locale: stringPtr("fr"), Content: stringPtr("Bonjour")})
	require.NoError(t, err)
	require.Equal(t, "Bonjour", updated.Content)
}

func TestTranslationRepository_Update_RenamePreservesTags(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewTranslationRepository(db)
	ctx := context.Background()

	commonID := testutil.SeedTag(t, db, "common")

	created, err := repo.Create(ctx, repository.CreateTranslationParams{
		Key:     "home.title",
		Locale:  "en",
		Content: "Welcome",
		TagIDs:  []string{commonID},
	})
	require.NoError(t, err)
	oldKeyID := created.TranslationKeyID

	updated, err := repo.Update(ctx, created.ID, repository.UpdateTranslationParams{Key: stringPtr("home.heading")})
	require.NoError(t, err)
	require.Equal(t, "home.heading", updated.Key)
	require.NotEqual(t, oldKeyID, updated.TranslationKeyID)
	require.Len(t, updated.Tags, 1)
	require.Equal(t, "common", updated.Tags[0].Name)

	// The old key lost its only translation and must be gone with its joins.
	require.Equal(t, 1, testutil.CountRows(t, db, "translation_keys"))
	require.Equal(t, 1, testutil.CountRows(t, db, "tag_translation_key"))
}

func TestTranslationRepository_Update_RenameWithExplicitTags(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewTranslationRepository(db)
	ctx := context.Background()

	commonID := testutil.SeedTag(t, db, "common")
	headerID := testutil.SeedTag(t, db, "header")

	created, err := repo.Create(ctx, repository.CreateTranslationParams{
		Key:     "home.title",
		Locale:  "en",
		Content: "Welcome",
		TagIDs:  []string{commonID},
	})
	require.NoError(t, err)

	updated, err := repo.Update(ctx, created.ID, repository.UpdateTranslationParams{
		Key:    stringPtr("home.heading"),
		TagIDs: tagIDsPtr(headerID),
	})
	require.NoError(t, err)
	require.Len(t, updated.Tags, 1)
	require.Equal(t, "header", updated.Tags[0].Name)
}

func TestTranslationRepository_Update_RenameConflict(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewTranslationRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, repository.CreateTranslationParams{Key: "home.title", Locale: "en", Content: "Hi"})
	require.NoError(t, err)
	other, err := repo.Create(ctx, repository.CreateTranslationParams{Key: "home.heading", Locale: "en", Content: "Hey"})
	require.NoError(t, err)

	_, err = repo.Update(ctx, other.ID, repository.UpdateTranslationParams{Key: stringPtr("home.title")})
	require.ErrorIs(t, err, repository.ErrDuplicateTranslation)
}

func TestTranslationRepository_Update_RenameOntoExistingKey(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewTranslationRepository(db)
	ctx := context.Background()

	en, err := repo.Create(ctx, repository.CreateTranslationParams{Key: "home.title", Locale: "en", Content: "Hi"})
	require.NoError(t, err)
	fr, err := repo.Create(ctx, repository.CreateTranslationParams{Key: "home.heading", Locale: "fr", Content: "Salut"})
	require.NoError(t, err)

	// Different locale, so moving fr under home.title reuses that key row.
	updated, err := repo.Update(ctx, fr.ID, repository.UpdateTranslationParams{Key: stringPtr("home.title")})
	require.NoError(t, err)
	require.Equal(t, en.TranslationKeyID, updated.TranslationKeyID)
	require.Equal(t, 1, testutil.CountRows(t, db, "translation_keys"))
}

func TestTranslationRepository_Delete_OrphanCleanup(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewTranslationRepository(db)
	ctx := context.Background()

	commonID := testutil.SeedTag(t, db, "common")

	en, err := repo.Create(ctx, repository.CreateTranslationParams{Key: "home.title", Locale: "en", Content: "Hi", TagIDs: []string{commonID}})
	require.NoError(t, err)
	fr, err := repo.Create(ctx, repository.CreateTranslationParams{Key: "home.title", Locale: "fr", Content: "Salut"})
	require.NoError(t, err)

	// Deleting one of several translations leaves the key intact.
	require.NoError(t, repo.Delete(ctx, fr.ID))
	require.Equal(t, 1, testutil.CountRows(t, db, "translation_keys"))
	require.Equal(t, 1, testutil.CountRows(t, db, "tag_translation_key"))

	// Deleting the last one removes the key and its join rows; the tag stays.
	require.NoError(t, repo.Delete(ctx, en.ID))
	require.Equal(t, 0, testutil.CountRows(t, db, "translation_keys"))
	require.Equal(t, 0, testutil.CountRows(t, db, "tag_translation_key"))
	require.Equal(t, 1, testutil.CountRows(t, db, "tags"))
}

func TestTranslationRepository_Delete_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewTranslationRepository(db)

	err := repo.Delete(context.Background(), "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestTranslationRepository_Search(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewTranslationRepository(db)
	ctx := context.Background()

	commonID := testutil.SeedTag(t, db, "common")

	_, err := repo.Create(ctx, repository.CreateTranslationParams{Key: "home.title", Locale: "en", Content: "Welcome home", TagIDs: []string{commonID}})
	require.NoError(t, err)
	_, err = repo.Create(ctx, repository.CreateTranslationParams{Key: "home.title", Locale: "fr", Content: "Bienvenue"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, repository.CreateTranslationParams{Key: "cart.checkout", Locale: "en", Content: "Checkout"})
	require.NoError(t, err)

	// Key substring, case-insensitive.
	results, total, err := repo.Search(ctx, repository.TranslationSearchFilter{Key: stringPtr("HOME")})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, results, 2)

	// Content substring.
	results, total, err = repo.Search(ctx, repository.TranslationSearchFilter{Value: stringPtr("venue")})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "fr", results[0].Locale)

	// Exact locale.
	_, total, err = repo.Search(ctx, repository.TranslationSearchFilter{Locale: stringPtr("en")})
	require.NoError(t, err)
	require.Equal(t, 2, total)

	// Tag name via existence join; tags are eager-loaded on results.
	results, total, err = repo.Search(ctx, repository.TranslationSearchFilter{Tag: stringPtr("common")})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, results[0].Tags, 1)

	// Combined filters AND together.
	_, total, err = repo.Search(ctx, repository.TranslationSearchFilter{Key: stringPtr("home"), Locale: stringPtr("fr")})
	require.NoError(t, err)
	require.Equal(t, 1, total)

	// No filters returns everything.
	_, total, err = repo.Search(ctx, repository.TranslationSearchFilter{})
	require.NoError(t, err)
	require.Equal(t, 3, total)
}

func TestTranslationRepository_Search_Pagination(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewTranslationRepository(db)
	ctx := context.Background()

	for _, key := range []string{"a.one", "b.two", "c.three", "d.four"} {
		_, err := repo.Create(ctx, repository.CreateTranslationParams{Key: key, Locale: "en", Content: key})
		require.NoError(t, err)
	}

	page1, total, err := repo.Search(ctx, repository.TranslationSearchFilter{Limit: 2})
	require.NoError(t, err)
	require.Equal(t, 4, total)
	require.Len(t, page1, 2)
	require.Equal(t, "a.one", page1[0].Key)

	page2, _, err := repo.Search(ctx, repository.TranslationSearchFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page2, 2)
	require.Equal(t, "c.three", page2[0].Key)
}

func TestTranslationRepository_SyncTagsForKey_Idempotent(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewTranslationRepository(db)
	ctx := context.Background()

	commonID := testutil.SeedTag(t, db, "common")
	homeID := testutil.SeedTag(t, db, "home")

	created, err := repo.Create(ctx, repository.CreateTranslationParams{Key: "home.title", Locale: "en", Content: "Hi"})
	require.NoError(t, err)
	keyID := created.TranslationKeyID

	require.NoError(t, repo.SyncTagsForKey(ctx, keyID, []string{commonID, homeID}))
	require.NoError(t, repo.SyncTagsForKey(ctx, keyID, []string{commonID, homeID}))
	require.Equal(t, 2, testutil.CountRows(t, db, "tag_translation_key"))

	// Shrinking the set detaches the rest.
	require.NoError(t, repo.SyncTagsForKey(ctx, keyID, []string{homeID}))
	require.Equal(t, 1, testutil.CountRows(t, db, "tag_translation_key"))

	// Empty set detaches everything.
	require.NoError(t, repo.SyncTagsForKey(ctx, keyID, nil))
	require.Equal(t, 0, testutil.CountRows(t, db, "tag_translation_key"))
}

func TestTranslationRepository_SyncTagsForKey_UnknownKey(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewTranslationRepository(db)

	err := repo.SyncTagsForKey(context.Background(), "missing", nil)
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestTranslationRepository_FindByKeyAndLocale(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewTranslationRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, repository.CreateTranslationParams{Key: "home.title", Locale: "en", Content: "Hi"})
	require.NoError(t, err)

	found, err := repo.FindByKeyAndLocale(ctx, "home.title", "en")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, created.ID, found.ID)

	missing, err := repo.FindByKeyAndLocale(ctx, "home.title", "de")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestTranslationRepository_ExportRows(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewTranslationRepository(db)
	ctx := context.Background()

	commonID := testutil.SeedTag(t, db, "common")
	homeID := testutil.SeedTag(t, db, "home")

	_, err := repo.Create(ctx, repository.CreateTranslationParams{Key: "welcome", Locale: "en", Content: "Hi", TagIDs: []string{commonID, homeID}})
	require.NoError(t, err)
	_, err = repo.Create(ctx, repository.CreateTranslationParams{Key: "welcome", Locale: "fr", Content: "Salut"})
	require.NoError(t, err)

	// A key with tags but no translations (transient state seeded directly).
	bareKeyID := testutil.SeedKey(t, db, "zzz.bare")
	testutil.SeedTagJoin(t, db, commonID, bareKeyID)

	refs, err := repo.ListExportKeys(ctx, 2000)
	require.NoError(t, err)
	require.Len(t, refs, 2)
	require.Equal(t, "welcome", refs[0].Key)
	require.Equal(t, "zzz.bare", refs[1].Key)

	ids := []string{refs[0].ID, refs[1].ID}
	rows, err := repo.ExportRows(ctx, ids)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	byLocale := map[string]repository.ExportRow{}
	for _, row := range rows {
		if row.Locale != nil {
			byLocale[*row.Locale] = row
		} else {
			require.Equal(t, "zzz.bare", row.Key)
			require.Nil(t, row.Content)
			require.NotNil(t, row.TagNames)
		}
	}
	require.Equal(t, "welcome", byLocale["en"].Key)
	require.Equal(t, "Hi", *byLocale["en"].Content)
	require.ElementsMatch(t, []string{"common", "home"}, splitTags(*byLocale["en"].TagNames))
	require.Equal(t, "Salut", *byLocale["fr"].Content)
}

func TestTranslationRepository_ListExportKeys_Cap(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewTranslationRepository(db)
	ctx := context.Background()

	for _, key := range []string{"a.a", "b.b", "c.c"} {
		testutil.SeedKey(t, db, key)
	}

	refs, err := repo.ListExportKeys(ctx, 2)
	require.NoError(t, err)
	require.Len(t, refs, 2)
	require.Equal(t, "a.a", refs[0].Key)
}

func splitTags(joined string) []string {
	return strings.Split(joined, ",")
}
