package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	// Create temp config file
	content := `{
		"port": 9090,
		"database_url": "postgres://brandbot@localhost/brandbot",
		"redis_url": "redis://localhost:6379/0",
		"tier": "pro",
		"stage_timeout_seconds": 30,
		"allowed_origins": ["http://localhost:3000"],
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "postgres://brandbot@localhost/brandbot", cfg.DatabaseURL)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, "pro", cfg.Tier)
	assert.Equal(t, 30*time.Second, cfg.StageTimeout())
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.True(t, cfg.Verbose)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{ invalid json }`), 0644))

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "empty is valid", cfg: Config{}},
		{name: "defaults are valid", cfg: Defaults()},
		{name: "bad port", cfg: Config{Port: 70000}, wantErr: "port"},
		{name: "negative timeout", cfg: Config{StageTimeoutSeconds: -1}, wantErr: "stage_timeout_seconds"},
		{name: "negative delay", cfg: Config{NavigateDelayMillis: -1}, wantErr: "navigate_delay_ms"},
		{name: "unknown tier", cfg: Config{Tier: "enterprise"}, wantErr: "tier"},
		{name: "tier is case-insensitive", cfg: Config{Tier: "Agency"}},
		{name: "bad database url", cfg: Config{DatabaseURL: "mysql://x"}, wantErr: "database_url"},
		{name: "bad redis url", cfg: Config{RedisURL: "localhost:6379"}, wantErr: "redis_url"},
		{name: "tls redis url", cfg: Config{RedisURL: "rediss://cache:6380"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := &Config{Port: 9000, APIKey: "from-file"}
	defaults := Defaults()
	defaults.APIKey = "from-env"
	defaults.DatabaseURL = "postgres://localhost/brandbot"

	merged := cfg.MergeWithDefaults(defaults)

	assert.Equal(t, 9000, merged.Port)
	assert.Equal(t, "from-file", merged.APIKey)
	assert.Equal(t, "postgres://localhost/brandbot", merged.DatabaseURL)
	assert.Equal(t, "Hobby", merged.Tier)
	assert.Equal(t, 45*time.Second, merged.StageTimeout())
	assert.Equal(t, 1500*time.Millisecond, merged.NavigateDelay())

	// original untouched
	assert.Empty(t, cfg.DatabaseURL)
}
