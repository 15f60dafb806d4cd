package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"polyglot/backend/internal/identifier"
	"polyglot/backend/internal/model"
)

// CreateTranslationParams describes a new translation. TagIDs replaces the
// key's tag set when non-nil; nil leaves existing associations alone.
type CreateTranslationParams struct {
	Key     string
	Locale  string
	Content string
	TagIDs  []string
}

// UpdateTranslationParams is a partial update; nil fields are left untouched.
// A nil TagIDs on a key rename copies the old key's tag set onto the new key.
type UpdateTranslationParams struct {
	Key     *string
	Locale  *string
	Content *string
	TagIDs  *[]string
}

type TranslationSearchFilter struct {
	Key    *string // case-insensitive substring match on the key text
	Value  *string // substring match on content
	Locale *string // exact match
	Tag    *string // exact match on an associated tag name
	Limit  int
	Offset int
}

// ExportKeyRef is the minimal key projection the export pipeline batches over.
type ExportKeyRef struct {
	ID  string
	Key string
}

// ExportRow is one (key, locale) pair from the export join. Locale and
// Content are nil for keys that have no translations in the batch window;
// TagNames is a comma-joined distinct list or nil when the key is untagged.
type ExportRow struct {
	Key      string
	Locale   *string
	Content  *string
	TagNames *string
}

type TranslationRepository interface {
	Create(ctx context.Context, params CreateTranslationParams) (model.Translation, error)
	GetByID(ctx context.Context, id string) (model.Translation, error)
	FindByKeyAndLocale(ctx context.Context, key, locale string) (*model.Translation, error)
	Update(ctx context.Context, id string, patch UpdateTranslationParams) (model.Translation, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, filter TranslationSearchFilter) ([]model.Translation, int, error)
	SyncTagsForKey(ctx context.Context, keyID string, tagIDs []string) error
	ListExportKeys(ctx context.Context, limit int) ([]ExportKeyRef, error)
	ExportRows(ctx context.Context, keyIDs []string) ([]ExportRow, error)
}

type translationRepository struct {
	db *sql.DB
}

func NewTranslationRepository(db *sql.DB) TranslationRepository {
	return &translationRepository{db: db}
}

const translationColumns = `t.id, t.translation_key_id, tk.key, t.locale, t.content, t.created_at, t.updated_at`

func (r *translationRepository) Create(ctx context.Context, params CreateTranslationParams) (model.Translation, error) {
	var created model.Translation
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		keyID, err := findOrCreateKey(ctx, tx, params.Key)
		if err != nil {
			return err
		}

		taken, err := localeTaken(ctx, tx, keyID, params.Locale, "")
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateTranslation
		}

		id := identifier.New()
		now := formatTime(time.Now())
		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO translations (id, translation_key_id, locale, content, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			id, keyID, params.Locale, params.Content, now, now,
		)
		if err != nil {
			// Backstop for a race between the check above and the insert.
			if isUniqueViolation(err, "translations.translation_key_id") {
				return ErrDuplicateTranslation
			}
			return fmt.Errorf("insert translation: %w", err)
		}

		if params.TagIDs != nil {
			if err := syncTags(ctx, tx, keyID, params.TagIDs); err != nil {
				return err
			}
		}

		created, err = getTranslation(ctx, tx, id)
		return err
	})
	if err != nil {
		return model.Translation{}, err
	}
	return created, nil
}

func (r *translationRepository) GetByID(ctx context.Context, id string) (model.Translation, error) {
	return getTranslation(ctx, r.db, id)
}

func (r *translationRepository) FindByKeyAndLocale(ctx context.Context, key, locale string) (*model.Translation, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT `+translationColumns+`
		 FROM translations t
		 INNER JOIN translation_keys tk ON tk.id = t.translation_key_id
		 WHERE tk.key = ? AND t.locale = ?`,
		key, locale,
	)
	translation, err := scanTranslation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find translation: %w", err)
	}
	return &translation, nil
}

func (r *translationRepository) Update(ctx context.Context, id string, patch UpdateTranslationParams) (model.Translation, error) {
	var updated model.Translation
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		current, err := getTranslation(ctx, tx, id)
		if err != nil {
			return err
		}

		locale := current.Locale
		if patch.Locale != nil {
			locale = *patch.Locale
		}
		content := current.Content
		if patch.Content != nil {
			content = *patch.Content
		}
		now := formatTime(time.Now())

		if patch.Key != nil && *patch.Key != current.Key {
			var exists int
			err := tx.QueryRowContext(
				ctx,
				`SELECT COUNT(*) FROM translations t
				 INNER JOIN translation_keys tk ON tk.id = t.translation_key_id
				 WHERE tk.key = ? AND t.locale = ?`,
				*patch.Key, locale,
			).Scan(&exists)
			if err != nil {
				return fmt.Errorf("check rename target: %w", err)
			}
			if exists > 0 {
				return ErrDuplicateTranslation
			}

			newKeyID, err := findOrCreateKey(ctx, tx, *patch.Key)
			if err != nil {
				return err
			}

			tagIDs, err := resolveTagIDs(ctx, tx, patch.TagIDs, current.TranslationKeyID)
			if err != nil {
				return err
			}

			_, err = tx.ExecContext(
				ctx,
				`UPDATE translations SET translation_key_id = ?, locale = ?, content = ?, updated_at = ? WHERE id = ?`,
				newKeyID, locale, content, now, id,
			)
			if err != nil {
				if isUniqueViolation(err, "translations.translation_key_id") {
					return ErrDuplicateTranslation
				}
				return fmt.Errorf("update translation: %w", err)
			}

			if err := syncTags(ctx, tx, newKeyID, tagIDs); err != nil {
				return err
			}
			if err := deleteKeyIfOrphaned(ctx, tx, current.TranslationKeyID); err != nil {
				return err
			}
		} else {
			if patch.Locale != nil && *patch.Locale != current.Locale {
				taken, err := localeTaken(ctx, tx, current.TranslationKeyID, locale, id)
				if err != nil {
					return err
				}
				if taken {
					return ErrDuplicateTranslation
				}
			}

			_, err = tx.ExecContext(
				ctx,
				`UPDATE translations SET locale = ?, content = ?, updated_at = ? WHERE id = ?`,
				locale, content, now, id,
			)
			if err != nil {
				if isUniqueViolation(err, "translations.translation_key_id") {
					return ErrDuplicateTranslation
				}
				return fmt.Errorf("update translation: %w", err)
			}

			if patch.TagIDs != nil {
				if err := syncTags(ctx, tx, current.TranslationKeyID, *patch.TagIDs); err != nil {
					return err
				}
			}
		}

		updated, err = getTranslation(ctx, tx, id)
		return err
	})
	if err != nil {
		return model.Translation{}, err
	}
	return updated, nil
}

func (r *translationRepository) Delete(ctx context.Context, id string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var keyID string
		err := tx.QueryRowContext(ctx, `SELECT translation_key_id FROM translations WHERE id = ?`, id).Scan(&keyID)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM translations WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete translation: %w", err)
		}
		return deleteKeyIfOrphaned(ctx, tx, keyID)
	})
}

func (r *translationRepository) Search(ctx context.Context, filter TranslationSearchFilter) ([]model.Translation, int, error) {
	var conditions []string
	var args []any

	if filter.Key != nil {
		conditions = append(conditions, "LOWER(tk.key) LIKE ?")
		args = append(args, "%"+strings.ToLower(*filter.Key)+"%")
	}
	if filter.Value != nil {
		conditions = append(conditions, "t.content LIKE ?")
		args = append(args, "%"+*filter.Value+"%")
	}
	if filter.Locale != nil {
		conditions = append(conditions, "t.locale = ?")
		args = append(args, *filter.Locale)
	}
	if filter.Tag != nil {
		conditions = append(conditions, `EXISTS (
			SELECT 1 FROM tag_translation_key j
			INNER JOIN tags tg ON tg.id = j.tag_id
			WHERE j.translation_key_id = t.translation_key_id AND tg.name = ?
		)`)
		args = append(args, *filter.Tag)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}
	base := ` FROM translations t INNER JOIN translation_keys tk ON tk.id = t.translation_key_id` + where

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*)`+base, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count translations: %w", err)
	}

	query := `SELECT ` + translationColumns + base + ` ORDER BY tk.key, t.locale`
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search translations: %w", err)
	}
	defer rows.Close()

	var translations []model.Translation
	for rows.Next() {
		translation, err := scanTranslation(rows)
		if err != nil {
			return nil, 0, err
		}
		translations = append(translations, translation)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate translations: %w", err)
	}

	if err := attachTags(ctx, r.db, translations); err != nil {
		return nil, 0, err
	}

	return translations, total, nil
}

func (r *translationRepository) SyncTagsForKey(ctx context.Context, keyID string, tagIDs []string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM translation_keys WHERE id = ?`, keyID).Scan(&exists); err != nil {
			return fmt.Errorf("check key: %w", err)
		}
		if exists == 0 {
			return sql.ErrNoRows
		}
		return syncTags(ctx, tx, keyID, tagIDs)
	})
}

func (r *translationRepository) ListExportKeys(ctx context.Context, limit int) ([]ExportKeyRef, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, key FROM translation_keys ORDER BY key LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list export keys: %w", err)
	}
	defer rows.Close()

	var refs []ExportKeyRef
	for rows.Next() {
		var ref ExportKeyRef
		if err := rows.Scan(&ref.ID, &ref.Key); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate export keys: %w", err)
	}

	return refs, nil
}

func (r *translationRepository) ExportRows(ctx context.Context, keyIDs []string) ([]ExportRow, error) {
	if len(keyIDs) == 0 {
		return nil, nil
	}
	args := make([]any, len(keyIDs))
	for i, id := range keyIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(
		ctx,
		`SELECT tk.key, t.locale, t.content, GROUP_CONCAT(DISTINCT tg.name)
		 FROM translation_keys tk
		 LEFT JOIN translations t ON t.translation_key_id = tk.id
		 LEFT JOIN tag_translation_key j ON j.translation_key_id = tk.id
		 LEFT JOIN tags tg ON tg.id = j.tag_id
		 WHERE tk.id IN (`+placeholders(len(keyIDs))+`)
		 GROUP BY tk.id, t.locale`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("export rows: %w", err)
	}
	defer rows.Close()

	var result []ExportRow
	for rows.Next() {
		var row ExportRow
		var locale, content, tagNames sql.NullString
		if err := rows.Scan(&row.Key, &locale, &content, &tagNames); err != nil {
			return nil, err
		}
		if locale.Valid {
			row.Locale = &locale.String
		}
		if content.Valid {
			row.Content = &content.String
		}
		if tagNames.Valid {
			row.TagNames = &tagNames.String
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate export rows: %w", err)
	}

	return result, nil
}

// findOrCreateKey resolves the key row for keyText, inserting it when absent.
// The unique constraint on key covers the lookup/insert race: a losing insert
// retries the lookup once.
func findOrCreateKey(ctx context.Context, tx *sql.Tx, keyText string) (string, error) {
	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM translation_keys WHERE key = ?`, keyText).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("find key: %w", err)
	}

	id = identifier.New()
	now := formatTime(time.Now())
	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO translation_keys (id, key, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		id, keyText, now, now,
	)
	if err != nil {
		if isUniqueViolation(err, "translation_keys.key") {
			var existing string
			if err := tx.QueryRowContext(ctx, `SELECT id FROM translation_keys WHERE key = ?`, keyText).Scan(&existing); err != nil {
				return "", fmt.Errorf("refind key: %w", err)
			}
			return existing, nil
		}
		return "", fmt.Errorf("insert key: %w", err)
	}
	return id, nil
}

func localeTaken(ctx context.Context, q dbtx, keyID, locale, excludeID string) (bool, error) {
	query := `SELECT COUNT(*) FROM translations WHERE translation_key_id = ? AND locale = ?`
	args := []any{keyID, locale}
	if excludeID != "" {
		query += ` AND id <> ?`
		args = append(args, excludeID)
	}
	var count int
	if err := q.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("check locale: %w", err)
	}
	return count > 0, nil
}

// syncTags replaces keyID's tag set with exactly tagIDs: associations outside
// the set are detached, members are attached idempotently.
func syncTags(ctx context.Context, tx *sql.Tx, keyID string, tagIDs []string) error {
	seen := make(map[string]struct{}, len(tagIDs))
	unique := make([]string, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		if _, ok := seen[tagID]; ok {
			continue
		}
		seen[tagID] = struct{}{}
		unique = append(unique, tagID)
	}

	if len(unique) == 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM tag_translation_key WHERE translation_key_id = ?`, keyID); err != nil {
			return fmt.Errorf("detach tags: %w", err)
		}
		return nil
	}

	args := make([]any, len(unique))
	for i, tagID := range unique {
		args[i] = tagID
	}

	var count int
	err := tx.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM tags WHERE id IN (`+placeholders(len(unique))+`)`,
		args...,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("check tags: %w", err)
	}
	if count != len(unique) {
		return ErrTagNotFound
	}

	_, err = tx.ExecContext(
		ctx,
		`DELETE FROM tag_translation_key WHERE translation_key_id = ? AND tag_id NOT IN (`+placeholders(len(unique))+`)`,
		append([]any{keyID}, args...)...,
	)
	if err != nil {
		return fmt.Errorf("detach stale tags: %w", err)
	}

	now := formatTime(time.Now())
	for _, tagID := range unique {
		_, err := tx.ExecContext(
			ctx,
			`INSERT OR IGNORE INTO tag_translation_key (id, tag_id, translation_key_id, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?)`,
			identifier.NextJoinID(), tagID, keyID, now, now,
		)
		if err != nil {
			return fmt.Errorf("attach tag: %w", err)
		}
	}

	return nil
}

// deleteKeyIfOrphaned removes keyID once its last translation is gone; join
// rows go with it via ON DELETE CASCADE.
func deleteKeyIfOrphaned(ctx context.Context, tx *sql.Tx, keyID string) error {
	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM translations WHERE translation_key_id = ?`, keyID).Scan(&count); err != nil {
		return fmt.Errorf("count key translations: %w", err)
	}
	if count > 0 {
		return nil
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM translation_keys WHERE id = ?`, keyID); err != nil {
		return fmt.Errorf("delete orphaned key: %w", err)
	}
	return nil
}

func getTranslation(ctx context.Context, q dbtx, id string) (model.Translation, error) {
	row := q.QueryRowContext(
		ctx,
		`SELECT `+translationColumns+`
		 FROM translations t
		 INNER JOIN translation_keys tk ON tk.id = t.translation_key_id
		 WHERE t.id = ?`,
		id,
	)
	translation, err := scanTranslation(row)
	if err != nil {
		return model.Translation{}, err
	}
	translations := []model.Translation{translation}
	if err := attachTags(ctx, q, translations); err != nil {
		return model.Translation{}, err
	}
	return translations[0], nil
}

// resolveTagIDs picks the tag set for a key rename: the explicit patch set
// when present, otherwise the old key's current associations.
func resolveTagIDs(ctx context.Context, tx *sql.Tx, patched *[]string, oldKeyID string) ([]string, error) {
	if patched != nil {
		return *patched, nil
	}

	rows, err := tx.QueryContext(ctx, `SELECT tag_id FROM tag_translation_key WHERE translation_key_id = ?`, oldKeyID)
	if err != nil {
		return nil, fmt.Errorf("list key tags: %w", err)
	}
	defer rows.Close()

	var tagIDs []string
	for rows.Next() {
		var tagID string
		if err := rows.Scan(&tagID); err != nil {
			return nil, err
		}
		tagIDs = append(tagIDs, tagID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate key tags: %w", err)
	}

	return tagIDs, nil
}

// attachTags eager-loads the tag set of every translation's key in one query.
func attachTags(ctx context.Context, q dbtx, translations []model.Translation) error {
	if len(translations) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(translations))
	var keyIDs []any
	for _, t := range translations {
		if _, ok := seen[t.TranslationKeyID]; ok {
			continue
		}
		seen[t.TranslationKeyID] = struct{}{}
		keyIDs = append(keyIDs, t.TranslationKeyID)
	}

	rows, err := q.QueryContext(
		ctx,
		`SELECT j.translation_key_id, tg.id, tg.name, tg.created_at, tg.updated_at
		 FROM tag_translation_key j
		 INNER JOIN tags tg ON tg.id = j.tag_id
		 WHERE j.translation_key_id IN (`+placeholders(len(keyIDs))+`)
		 ORDER BY tg.name`,
		keyIDs...,
	)
	if err != nil {
		return fmt.Errorf("load tags: %w", err)
	}
	defer rows.Close()

	tagsByKey := make(map[string][]model.Tag)
	for rows.Next() {
		var keyID string
		var tag model.Tag
		var createdAt, updatedAt string
		if err := rows.Scan(&keyID, &tag.ID, &tag.Name, &createdAt, &updatedAt); err != nil {
			return err
		}
		if tag.CreatedAt, err = parseTime(createdAt); err != nil {
			return fmt.Errorf("parse tag created_at: %w", err)
		}
		if tag.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return fmt.Errorf("parse tag updated_at: %w", err)
		}
		tagsByKey[keyID] = append(tagsByKey[keyID], tag)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate tags: %w", err)
	}

	for i := range translations {
		translations[i].Tags = tagsByKey[translations[i].TranslationKeyID]
	}

	return nil
}

func scanTranslation(scanner interface {
	Scan(dest ...any) error
}) (model.Translation, error) {
	var t model.Translation
	var createdAt, updatedAt string
	if err := scanner.Scan(
		&t.ID,
		&t.TranslationKeyID,
		&t.Key,
		&t.Locale,
		&t.Content,
		&createdAt,
		&updatedAt,
	); err != nil {
		return model.Translation{}, err
	}
	var err error
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.Translation{}, fmt.Errorf("parse translation created_at: %w", err)
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return model.Translation{}, fmt.Errorf("parse translation updated_at: %w", err)
	}
	return t, nil
}
