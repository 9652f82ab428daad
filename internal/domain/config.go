package domain

import (
	"time"
)

// Config is the complete application configuration
type Config struct {
	Environment string         `mapstructure:"environment"`
	Server      ServerConfig   `mapstructure:"server"`
	Database    DatabaseConfig `mapstructure:"database"`
	Evidence    EvidenceConfig `mapstructure:"evidence"`
	Cache       CacheConfig    `mapstructure:"cache"`
	Scoring     ScoringConfig  `mapstructure:"scoring"`
	Batch       BatchConfig    `mapstructure:"batch"`
	Logging     LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	TLSEnabled   bool          `mapstructure:"tls_enabled"`
	CertFile     string        `mapstructure:"cert_file"`
	KeyFile      string        `mapstructure:"key_file"`
}

// DatabaseConfig holds PostgreSQL connection configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// EvidenceConfig holds the upstream evidence service configuration
type EvidenceConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RateLimit  int           `mapstructure:"rate_limit"`
	RetryCount int           `mapstructure:"retry_count"`
}

// CacheConfig holds Redis cache configuration
type CacheConfig struct {
	RedisURL    string        `mapstructure:"redis_url"`
	DefaultTTL  time.Duration `mapstructure:"default_ttl"`
	MaxRetries  int           `mapstructure:"max_retries"`
	PoolSize    int           `mapstructure:"pool_size"`
	PoolTimeout time.Duration `mapstructure:"pool_timeout"`
}

// ScoringConfig holds scoring engine configuration
type ScoringConfig struct {
	// MaxScores overrides per-type point caps, keyed by evidence type
	// name (clinical, mechanistic, publication, genomic, safety).
	MaxScores map[string]float64 `mapstructure:"max_scores"`

	// MinConfidenceThreshold flags subjects scored on thin evidence.
	MinConfidenceThreshold float64 `mapstructure:"min_confidence_threshold"`

	// EvidenceHalfLifeDays is forwarded to the evidence service so it can
	// age publication counts before they reach the scorers.
	EvidenceHalfLifeDays int `mapstructure:"evidence_half_life_days"`

	// CacheDir is where the evidence service caches raw source data.
	// Forwarded on every fetch; the scorers never touch it.
	CacheDir string `mapstructure:"cache_dir"`
}

// BatchConfig holds batch scoring configuration
type BatchConfig struct {
	Workers    int           `mapstructure:"workers"`
	CacheSize  int           `mapstructure:"cache_size"`
	MaxSubject int           `mapstructure:"max_subjects"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
