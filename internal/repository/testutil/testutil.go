package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"polyglot/backend/internal/db"
	"polyglot/backend/internal/identifier"
)

// NewTestDB opens a migrated sqlite database in the test's temp dir and
// initializes the identifier package. The database is closed on cleanup.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	if err := identifier.Init(0); err != nil {
		t.Fatalf("init identifier: %v", err)
	}

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	return database
}

// SeedKey inserts a translation key row and returns its id.
func SeedKey(t *testing.T, database *sql.DB, key string) string {
	t.Helper()

	id := identifier.New()
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := database.Exec(
		`INSERT INTO translation_keys (id, key, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		id, key, now, now,
	)
	if err != nil {
		t.Fatalf("seed key: %v", err)
	}
	return id
}

// SeedTranslation inserts a translation row under keyID and returns its id.
func SeedTranslation(t *testing.T, database *sql.DB, keyID, locale, content string) string {
	t.Helper()

	id := identifier.New()
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := database.Exec(
		`INSERT INTO translations (id, translation_key_id, locale, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, keyID, locale, content, now, now,
	)
	if err != nil {
		t.Fatalf("seed translation: %v", err)
	}
	return id
}

// SeedTag inserts a tag row and returns its id.
func SeedTag(t *testing.T, database *sql.DB, name string) string {
	t.Helper()

	id := identifier.New()
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := database.Exec(
		`INSERT INTO tags (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		id, name, now, now,
	)
	if err != nil {
		t.Fatalf("seed tag: %v", err)
	}
	return id
}

// SeedTagJoin links a tag to a translation key.
func SeedTagJoin(t *testing.T, database *sql.DB, tagID, keyID string) {
	t.Helper()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := database.Exec(
		`INSERT INTO tag_translation_key (id, tag_id, translation_key_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		identifier.NextJoinID(), tagID, keyID, now, now,
	)
	if err != nil {
		t.Fatalf("seed tag join: %v", err)
	}
}

// CountRows returns the row count of table.
func CountRows(t *testing.T, database *sql.DB, table string) int {
	t.Helper()

	var count int
	if err := database.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&count); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return count
}
