// Package config provides configuration management for the scoring
// service. This file contains the lightweight configuration for the
// standalone CLI, which needs no Postgres or Redis.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// LiteConfig is a simplified configuration for standalone scoring runs.
// It requires no external services and uses sensible defaults.
type LiteConfig struct {
	// Data storage
	DataDir string // Base directory for the local score archive

	// Cache settings
	CacheMaxItems int           // Maximum bundles memoized per run
	CacheTTL      time.Duration // Default cache TTL

	// Batch settings
	Workers int // Concurrent scoring workers

	// Scoring settings
	MinConfidenceThreshold float64 // Flags subjects scored on thin evidence

	// Logging
	LogLevel  string // Log level: debug, info, warn, error
	LogFormat string // Log format: json, text
}

// DefaultLiteConfig returns a configuration with sensible defaults.
func DefaultLiteConfig() *LiteConfig {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".mediabase")

	return &LiteConfig{
		DataDir:                dataDir,
		CacheMaxItems:          1024,
		CacheTTL:               24 * time.Hour,
		Workers:                4,
		MinConfidenceThreshold: 0.2,
		LogLevel:               "info",
		LogFormat:              "json",
	}
}

// LoadLiteConfig loads configuration from environment variables.
// Falls back to defaults if not set.
func LoadLiteConfig() *LiteConfig {
	cfg := DefaultLiteConfig()

	if v := os.Getenv("MEDIABASE_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	if v := os.Getenv("MEDIABASE_CACHE_MAX_ITEMS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CacheMaxItems = n
		}
	}
	if v := os.Getenv("MEDIABASE_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.CacheTTL = d
		}
	}

	if v := os.Getenv("MEDIABASE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Workers = n
		}
	}

	if v := os.Getenv("MEDIABASE_MIN_CONFIDENCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
			cfg.MinConfidenceThreshold = f
		}
	}

	if v := os.Getenv("MEDIABASE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("MEDIABASE_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	return cfg
}

// ArchiveDBPath returns the path to the local SQLite score archive.
func (c *LiteConfig) ArchiveDBPath() string {
	return filepath.Join(c.DataDir, "scores.db")
}

// ExportDir returns the directory for JSON exports.
func (c *LiteConfig) ExportDir() string {
	return filepath.Join(c.DataDir, "exports")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c *LiteConfig) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataDir, 0755); err != nil {
		return err
	}
	return os.MkdirAll(c.ExportDir(), 0755)
}
