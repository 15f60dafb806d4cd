package model

import "time"

// Translation is one locale-specific rendering of a translation key.
// Key carries the owning key's text and Tags the key's tag set; both are
// populated by reads that eager-load them.
type Translation struct {
	ID               string
	TranslationKeyID string
	Key              string
	Locale           string
	Content          string
	Tags             []Tag
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
