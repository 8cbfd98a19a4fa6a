// Package config loads the bot configuration from environment
// variables, with an optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultMaxFileSize is Telegram's bot document ceiling: 4 GiB.
const DefaultMaxFileSize = 4 * 1024 * 1024 * 1024

// Config holds everything the process needs at startup.
type Config struct {
	// BotToken is the Telegram Bot API token. Required.
	BotToken string
	// AdminIDs is the allow-list for admin commands.
	AdminIDs []int64
	// MaxFileSize rejects uploads larger than this many bytes.
	MaxFileSize int64

	// StorageBackend is one of memory, json, bolt, sqlite.
	StorageBackend string
	// StoragePath locates the database/document for persistent backends.
	StoragePath string
	// MemoryMaxRecords bounds the memory backend (0 = unbounded).
	MemoryMaxRecords int
	// CacheSize sizes the LRU record cache (0 = disabled).
	CacheSize int

	// HTTPAddr is the listen address for the health/stats server.
	HTTPAddr string

	// LinkTTL is advertised in admin debug output. Lookups do not
	// enforce it.
	LinkTTL time.Duration

	// LogLevel is one of debug, info, warn, error.
	LogLevel string
	// LogJSON switches the logger to JSON output.
	LogJSON bool
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		BotToken:       os.Getenv("BOT_TOKEN"),
		StorageBackend: getEnv("STORAGE_BACKEND", "memory"),
		StoragePath:    getEnv("STORAGE_PATH", ""),
		HTTPAddr:       getEnv("HTTP_ADDR", ":8000"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN: required environment variable not set")
	}

	var err error
	if cfg.AdminIDs, err = parseIDList(os.Getenv("ADMIN_IDS")); err != nil {
		return nil, fmt.Errorf("ADMIN_IDS: %w", err)
	}
	if cfg.MaxFileSize, err = getEnvInt64("MAX_FILE_SIZE", DefaultMaxFileSize); err != nil {
		return nil, fmt.Errorf("MAX_FILE_SIZE: %w", err)
	}
	if cfg.MemoryMaxRecords, err = getEnvInt("MEMORY_MAX_RECORDS", 0); err != nil {
		return nil, fmt.Errorf("MEMORY_MAX_RECORDS: %w", err)
	}
	if cfg.CacheSize, err = getEnvInt("CACHE_SIZE", 0); err != nil {
		return nil, fmt.Errorf("CACHE_SIZE: %w", err)
	}
	if cfg.LinkTTL, err = getEnvDuration("LINK_TTL", 0); err != nil {
		return nil, fmt.Errorf("LINK_TTL: %w", err)
	}
	if cfg.LogJSON, err = getEnvBool("LOG_JSON", false); err != nil {
		return nil, fmt.Errorf("LOG_JSON: %w", err)
	}

	switch cfg.StorageBackend {
	case "memory", "json", "bolt", "sqlite":
	default:
		return nil, fmt.Errorf("STORAGE_BACKEND: unknown backend %q, valid: memory, json, bolt, sqlite", cfg.StorageBackend)
	}
	if cfg.StorageBackend != "memory" && cfg.StoragePath == "" {
		return nil, fmt.Errorf("STORAGE_PATH: required for the %q backend", cfg.StorageBackend)
	}

	return cfg, nil
}

// IsAdmin reports whether userID is on the admin allow-list.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", value)
	}
	return n, nil
}

func getEnvInt64(key string, fallback int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", value)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid boolean %q", value)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q (use Go syntax: 24h, 30m)", value)
	}
	return d, nil
}

func parseIDList(value string) ([]int64, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	parts := strings.Split(value, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
