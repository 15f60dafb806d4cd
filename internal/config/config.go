package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	AppName    = "Polyglot"
	AppVersion = "1.0.0"
)

type Config struct {
	Addr     string
	DBPath   string
	DataDir  string
	LogLevel string

	// ExportMaxKeys caps how many translation keys a single export reads.
	// Datasets beyond the cap are truncated; the export logs a warning when
	// the cap is hit so the loss is visible.
	ExportMaxKeys int
	// ExportBatchSize is how many keys each export join query covers.
	ExportBatchSize int
	// ExportCacheTTL is how long a built export document stays cached.
	ExportCacheTTL time.Duration
	// ExportWarmInterval is how often the scheduler rebuilds the export
	// cache in the background. Zero disables warming.
	ExportWarmInterval time.Duration
}

func Load() Config {
	addr := os.Getenv("POLYGLOT_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	dataDir := os.Getenv("POLYGLOT_DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}
	path := os.Getenv("POLYGLOT_DB_PATH")
	if path == "" {
		path = filepath.Join(dataDir, "polyglot.db")
	}

	return Config{
		Addr:               addr,
		DBPath:             filepath.Clean(path),
		DataDir:            filepath.Clean(dataDir),
		LogLevel:           os.Getenv("POLYGLOT_LOG_LEVEL"),
		ExportMaxKeys:      envInt("POLYGLOT_EXPORT_MAX_KEYS", 2000),
		ExportBatchSize:    envInt("POLYGLOT_EXPORT_BATCH_SIZE", 1000),
		ExportCacheTTL:     envDuration("POLYGLOT_EXPORT_CACHE_TTL", 60*time.Second),
		ExportWarmInterval: envDuration("POLYGLOT_EXPORT_WARM_INTERVAL", 10*time.Minute),
	}
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
