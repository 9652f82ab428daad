package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/itsatony/mediabase-sub001/internal/domain"
)

// Manager loads and validates the application configuration using Viper
type Manager struct {
	config *domain.Config
}

// NewManager creates a new configuration manager
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from file, environment and defaults
func (m *Manager) loadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/mediabase/")

	viper.SetEnvPrefix("MEDIABASE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	m.setDefaults()

	// Config file is optional; defaults and env vars cover the rest
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values
func (m *Manager) setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.tls_enabled", false)

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.database", "mediabase_scores")
	viper.SetDefault("database.username", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", "5m")

	// Evidence service defaults
	viper.SetDefault("evidence.base_url", "http://localhost:9090/api/v1/")
	viper.SetDefault("evidence.timeout", "30s")
	viper.SetDefault("evidence.rate_limit", 10)
	viper.SetDefault("evidence.retry_count", 3)

	// Cache defaults
	viper.SetDefault("cache.redis_url", "redis://localhost:6379")
	viper.SetDefault("cache.default_ttl", "24h")
	viper.SetDefault("cache.max_retries", 3)
	viper.SetDefault("cache.pool_size", 10)
	viper.SetDefault("cache.pool_timeout", "4s")

	// Scoring defaults
	viper.SetDefault("scoring.min_confidence_threshold", 0.2)
	viper.SetDefault("scoring.evidence_half_life_days", 3650)
	viper.SetDefault("scoring.cache_dir", "")

	// Batch defaults
	viper.SetDefault("batch.workers", 4)
	viper.SetDefault("batch.cache_size", 1024)
	viper.SetDefault("batch.max_subjects", 10000)
	viper.SetDefault("batch.timeout", "10m")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetDatabaseConfig returns database configuration
func (m *Manager) GetDatabaseConfig() *domain.DatabaseConfig {
	return &m.config.Database
}

// GetScoringConfig returns scoring engine configuration
func (m *Manager) GetScoringConfig() *domain.ScoringConfig {
	return &m.config.Scoring
}

// GetBatchConfig returns batch scoring configuration
func (m *Manager) GetBatchConfig() *domain.BatchConfig {
	return &m.config.Batch
}

// Reload reloads the configuration
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration. Violations here abort startup.
func (m *Manager) Validate() error {
	config := m.config

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return domain.NewConfigurationError("server",
			fmt.Sprintf("invalid server port: %d", config.Server.Port))
	}

	if config.Database.Host == "" {
		return domain.NewConfigurationError("database", "database host is required")
	}
	if config.Database.Database == "" {
		return domain.NewConfigurationError("database", "database name is required")
	}
	if config.Database.Username == "" {
		return domain.NewConfigurationError("database", "database username is required")
	}

	if config.Evidence.BaseURL == "" {
		return domain.NewConfigurationError("evidence", "evidence service base URL is required")
	}
	if config.Evidence.RateLimit <= 0 {
		return domain.NewConfigurationError("evidence",
			fmt.Sprintf("invalid evidence rate limit: %d", config.Evidence.RateLimit))
	}

	if config.Cache.RedisURL == "" {
		return domain.NewConfigurationError("cache", "Redis URL is required")
	}

	if config.Scoring.MinConfidenceThreshold < 0 || config.Scoring.MinConfidenceThreshold > 1 {
		return domain.NewConfigurationError("scoring",
			fmt.Sprintf("min confidence threshold %f outside [0, 1]", config.Scoring.MinConfidenceThreshold))
	}
	for key, cap := range config.Scoring.MaxScores {
		if _, err := domain.ParseEvidenceType(key); err != nil {
			return domain.NewConfigurationError("scoring",
				fmt.Sprintf("unknown max_scores key %q", key))
		}
		if cap <= 0 {
			return domain.NewConfigurationError("scoring",
				fmt.Sprintf("invalid max score %f for %s", cap, key))
		}
	}

	if config.Batch.Workers <= 0 {
		return domain.NewConfigurationError("batch",
			fmt.Sprintf("invalid worker count: %d", config.Batch.Workers))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return domain.NewConfigurationError("logging",
			fmt.Sprintf("invalid log level: %s", config.Logging.Level))
	}

	return nil
}

// GetDatabaseConnectionString returns a formatted database connection string
func (m *Manager) GetDatabaseConnectionString() string {
	db := m.config.Database
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		db.Host, db.Port, db.Username, db.Password, db.Database, db.SSLMode)
}

// GetRedisConnectionString returns the Redis connection string
func (m *Manager) GetRedisConnectionString() string {
	return m.config.Cache.RedisURL
}

// IsProduction returns true if running in production mode
func (m *Manager) IsProduction() bool {
	return strings.ToLower(viper.GetString("environment")) == "production"
}

// IsDevelopment returns true if running in development mode
func (m *Manager) IsDevelopment() bool {
	env := strings.ToLower(viper.GetString("environment"))
	return env == "development" || env == "dev" || env == ""
}
