package service

import (
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	keyPattern    = regexp.MustCompile(`^[a-z0-9_.]+$`)
	localePattern = regexp.MustCompile(`^[a-z]{2}(_[A-Z]{2})?$`)
)

const (
	maxLocaleLength  = 5
	maxContentLength = 65535
	maxTagNameLength = 255
)

func validateKey(key string) error {
	err := validation.Validate(key,
		validation.Required,
		validation.Match(keyPattern).Error("must contain only lowercase letters, digits, underscores and dots"),
	)
	if err != nil {
		return fmt.Errorf("%w: key %s", ErrInvalid, err)
	}
	return nil
}

func validateLocale(locale string) error {
	err := validation.Validate(locale,
		validation.Required,
		validation.Length(0, maxLocaleLength),
		validation.Match(localePattern).Error("must be a language code like en or en_US"),
	)
	if err != nil {
		return fmt.Errorf("%w: locale %s", ErrInvalid, err)
	}
	return nil
}

func validateContent(content string) error {
	if err := validation.Validate(content, validation.Length(0, maxContentLength)); err != nil {
		return fmt.Errorf("%w: content %s", ErrInvalid, err)
	}
	return nil
}

func validateTagName(name string) error {
	err := validation.Validate(name,
		validation.Required,
		validation.Length(1, maxTagNameLength),
	)
	if err != nil {
		return fmt.Errorf("%w: name %s", ErrInvalid, err)
	}
	return nil
}
