package service

import (
	"database/sql"
	"errors"

	"polyglot/backend/internal/repository"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrDuplicateTranslation = errors.New("translation already exists for key and locale")
	ErrDuplicateName        = errors.New("tag name already exists")
	ErrInvalid              = errors.New("invalid")
)

// mapRepositoryError translates repository conditions onto the service
// taxonomy. Anything unrecognized is a storage failure and passes through
// unchanged.
func mapRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	case errors.Is(err, repository.ErrDuplicateTranslation):
		return ErrDuplicateTranslation
	case errors.Is(err, repository.ErrDuplicateTagName):
		return ErrDuplicateName
	case errors.Is(err, repository.ErrTagNotFound):
		return ErrNotFound
	default:
		return err
	}
}
