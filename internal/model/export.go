package model

// ExportedKey is the flattened representation of one translation key used by
// the bulk export: all locale renderings as a map plus the key's tag names.
// It is derived, never persisted.
type ExportedKey struct {
	Key          string            `json:"key"`
	Translations map[string]string `json:"translations"`
	Tags         []string          `json:"tags"`
}
