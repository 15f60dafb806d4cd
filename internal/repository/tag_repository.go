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

type TagSearchFilter struct {
	Name   *string // case-insensitive substring match
	Limit  int
	Offset int
}

type TagRepository interface {
	Create(ctx context.Context, name string) (model.Tag, error)
	GetByID(ctx context.Context, id string) (model.Tag, error)
	FindByName(ctx context.Context, name string) (*model.Tag, error)
	Update(ctx context.Context, id, name string) (model.Tag, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, filter TagSearchFilter) ([]model.Tag, int, error)
}

type tagRepository struct {
	db *sql.DB
}

func NewTagRepository(db *sql.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) Create(ctx context.Context, name string) (model.Tag, error) {
	tag := model.Tag{
		ID:   identifier.New(),
		Name: name,
	}
	now := time.Now().UTC()
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO tags (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		tag.ID, tag.Name, formatTime(now), formatTime(now),
	)
	if err != nil {
		if isUniqueViolation(err, "tags.name") {
			return model.Tag{}, ErrDuplicateTagName
		}
		return model.Tag{}, fmt.Errorf("create tag: %w", err)
	}
	tag.CreatedAt = now
	tag.UpdatedAt = now
	return tag, nil
}

func (r *tagRepository) GetByID(ctx context.Context, id string) (model.Tag, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, created_at, updated_at FROM tags WHERE id = ?`, id)
	return scanTag(row)
}

func (r *tagRepository) FindByName(ctx context.Context, name string) (*model.Tag, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, created_at, updated_at FROM tags WHERE name = ?`, name)
	tag, err := scanTag(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find tag: %w", err)
	}
	return &tag, nil
}

func (r *tagRepository) Update(ctx context.Context, id, name string) (model.Tag, error) {
	result, err := r.db.ExecContext(
		ctx,
		`UPDATE tags SET name = ?, updated_at = ? WHERE id = ?`,
		name, formatTime(time.Now()), id,
	)
	if err != nil {
		if isUniqueViolation(err, "tags.name") {
			return model.Tag{}, ErrDuplicateTagName
		}
		return model.Tag{}, fmt.Errorf("update tag: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return model.Tag{}, fmt.Errorf("update tag: %w", err)
	}
	if affected == 0 {
		return model.Tag{}, sql.ErrNoRows
	}
	return r.GetByID(ctx, id)
}

func (r *tagRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *tagRepository) Search(ctx context.Context, filter TagSearchFilter) ([]model.Tag, int, error) {
	where := ""
	var args []any
	if filter.Name != nil {
		where = ` WHERE LOWER(name) LIKE ?`
		args = append(args, "%"+strings.ToLower(*filter.Name)+"%")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tags`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tags: %w", err)
	}

	query := `SELECT id, name, created_at, updated_at FROM tags` + where + ` ORDER BY name`
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
		return nil, 0, fmt.Errorf("search tags: %w", err)
	}
	defer rows.Close()

	var tags []model.Tag
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, 0, err
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate tags: %w", err)
	}

	return tags, total, nil
}

func scanTag(scanner interface {
	Scan(dest ...any) error
}) (model.Tag, error) {
	var tag model.Tag
	var createdAt, updatedAt string
	if err := scanner.Scan(&tag.ID, &tag.Name, &createdAt, &updatedAt); err != nil {
		return model.Tag{}, err
	}
	var err error
	if tag.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.Tag{}, fmt.Errorf("parse tag created_at: %w", err)
	}
	if tag.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return model.Tag{}, fmt.Errorf("parse tag updated_at: %w", err)
	}
	return tag, nil
}
