package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLiteConfig(t *testing.T) {
	cfg := DefaultLiteConfig()

	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, 1024, cfg.CacheMaxItems)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 0.2, cfg.MinConfidenceThreshold)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadLiteConfig_Defaults(t *testing.T) {
	clearEnvVars(t)

	cfg := LoadLiteConfig()

	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, 1024, cfg.CacheMaxItems)
	assert.Equal(t, 4, cfg.Workers)
}

func TestLoadLiteConfig_EnvironmentOverrides(t *testing.T) {
	clearEnvVars(t)

	os.Setenv("MEDIABASE_DATA_DIR", "/tmp/test-mediabase")
	os.Setenv("MEDIABASE_CACHE_MAX_ITEMS", "500")
	os.Setenv("MEDIABASE_CACHE_TTL", "12h")
	os.Setenv("MEDIABASE_WORKERS", "8")
	os.Setenv("MEDIABASE_MIN_CONFIDENCE", "0.5")
	os.Setenv("MEDIABASE_LOG_LEVEL", "debug")

	defer clearEnvVars(t)

	cfg := LoadLiteConfig()

	assert.Equal(t, "/tmp/test-mediabase", cfg.DataDir)
	assert.Equal(t, 500, cfg.CacheMaxItems)
	assert.Equal(t, 12*time.Hour, cfg.CacheTTL)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 0.5, cfg.MinConfidenceThreshold)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadLiteConfig_InvalidValuesIgnored(t *testing.T) {
	clearEnvVars(t)

	os.Setenv("MEDIABASE_WORKERS", "-2")
	os.Setenv("MEDIABASE_MIN_CONFIDENCE", "1.5")

	defer clearEnvVars(t)

	cfg := LoadLiteConfig()

	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 0.2, cfg.MinConfidenceThreshold)
}

func TestLiteConfig_ArchiveDBPath(t *testing.T) {
	cfg := &LiteConfig{DataDir: "/home/user/.mediabase"}

	path := cfg.ArchiveDBPath()

	assert.Equal(t, "/home/user/.mediabase/scores.db", path)
}

func TestLiteConfig_ExportDir(t *testing.T) {
	cfg := &LiteConfig{DataDir: "/home/user/.mediabase"}

	path := cfg.ExportDir()

	assert.Equal(t, "/home/user/.mediabase/exports", path)
}

func TestLiteConfig_EnsureDataDir(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	cfg := &LiteConfig{DataDir: filepath.Join(tmpDir, "mediabase")}

	err = cfg.EnsureDataDir()
	require.NoError(t, err)

	_, err = os.Stat(cfg.DataDir)
	assert.NoError(t, err)

	_, err = os.Stat(cfg.ExportDir())
	assert.NoError(t, err)
}

func clearEnvVars(t *testing.T) {
	t.Helper()
	vars := []string{
		"MEDIABASE_DATA_DIR",
		"MEDIABASE_CACHE_MAX_ITEMS",
		"MEDIABASE_CACHE_TTL",
		"MEDIABASE_WORKERS",
		"MEDIABASE_MIN_CONFIDENCE",
		"MEDIABASE_LOG_LEVEL",
		"MEDIABASE_LOG_FORMAT",
	}
	for _, v := range vars {
		os.Unsetenv(v)
	}
}
