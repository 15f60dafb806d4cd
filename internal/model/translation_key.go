package model

import "time"

// TranslationKey is the logical identifier (e.g. "home.title") shared by all
// locale variants of a string. It only exists while at least one Translation
// references it.
type TranslationKey struct {
	ID        string
	Key       string
	CreatedAt time.Time
	UpdatedAt time.Time
}
