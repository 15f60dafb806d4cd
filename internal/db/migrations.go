package db

import (
	"database/sql"
	"fmt"
)

const baseSchema = `
CREATE TABLE IF NOT EXISTS translation_keys (
  id TEXT PRIMARY KEY,
  key TEXT NOT NULL UNIQUE,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS translations (
  id TEXT PRIMARY KEY,
  translation_key_id TEXT NOT NULL,
  locale TEXT NOT NULL,
  content TEXT NOT NULL,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  FOREIGN KEY (translation_key_id) REFERENCES translation_keys(id) ON DELETE CASCADE,
  UNIQUE (translation_key_id, locale)
);

CREATE INDEX IF NOT EXISTS idx_translations_key_id ON translations(translation_key_id);

CREATE TABLE IF NOT EXISTS tags (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tag_translation_key (
  id INTEGER PRIMARY KEY,
  tag_id TEXT NOT NULL,
  translation_key_id TEXT NOT NULL,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  FOREIGN KEY (tag_id) REFERENCES tags(id) ON DELETE CASCADE,
  FOREIGN KEY (translation_key_id) REFERENCES translation_keys(id) ON DELETE CASCADE,
  UNIQUE (tag_id, translation_key_id)
);

CREATE INDEX IF NOT EXISTS idx_tag_translation_key_key_id ON tag_translation_key(translation_key_id);
`

func Migrate(db *sql.DB) error {
	if _, err := db.Exec(baseSchema); err != nil {
		return fmt.Errorf("migrate base schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func runMigrations(db *sql.DB) error {
	// Migration 1: index for locale-filtered search
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_translations_locale ON translations(locale)`); err != nil {
		return fmt.Errorf("create idx_translations_locale: %w", err)
	}

	// Migration 2: index for tag-filtered search (EXISTS probe by tag_id)
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_tag_translation_key_tag_id ON tag_translation_key(tag_id)`); err != nil {
		return fmt.Errorf("create idx_tag_translation_key_tag_id: %w", err)
	}

	return nil
}
