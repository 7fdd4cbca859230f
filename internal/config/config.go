// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/brandbot/internal/gate"
)

// Defaults used when neither the config file nor flags set a value.
const (
	DefaultPort                = 8080
	DefaultStageTimeoutSeconds = 45
	DefaultNavigateDelayMillis = 1500
)

// Config represents the configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or come from flags and env.
type Config struct {
	// Server
	Port           int      `json:"port,omitempty"`            // HTTP listen port
	AllowedOrigins []string `json:"allowed_origins,omitempty"` // CORS origins

	// Storage
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	RedisURL    string `json:"redis_url,omitempty"`    // Redis URL for the shared concurrency gate

	// Generation
	APIKey              string `json:"api_key,omitempty"`               // Gemini API key
	Tier                string `json:"tier,omitempty"`                  // Subscription tier for local runs
	StageTimeoutSeconds int    `json:"stage_timeout_seconds,omitempty"` // Per-stage timeout
	NavigateDelayMillis int    `json:"navigate_delay_ms,omitempty"`     // Delay before the navigate event

	Verbose bool `json:"verbose,omitempty"` // Print detailed debug information
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Port:                DefaultPort,
		Tier:                gate.TierHobby.String(),
		StageTimeoutSeconds: DefaultStageTimeoutSeconds,
		NavigateDelayMillis: DefaultNavigateDelayMillis,
	}
}

// Validate checks that the configuration has valid values.
// Required fields are checked by the commands that need them.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535, got %d", c.Port)
	}
	if c.StageTimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'stage_timeout_seconds' must be non-negative")
	}
	if c.NavigateDelayMillis < 0 {
		return fmt.Errorf("config error: 'navigate_delay_ms' must be non-negative")
	}
	if c.Tier != "" {
		if _, err := gate.ParseTier(c.Tier); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}
	if c.DatabaseURL != "" && !hasScheme(c.DatabaseURL, "postgres://", "postgresql://") {
		return fmt.Errorf("config error: 'database_url' must be a postgres:// URL")
	}
	if c.RedisURL != "" && !hasScheme(c.RedisURL, "redis://", "rediss://") {
		return fmt.Errorf("config error: 'redis_url' must be a redis:// or rediss:// URL")
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if len(result.AllowedOrigins) == 0 {
		result.AllowedOrigins = defaults.AllowedOrigins
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.RedisURL == "" {
		result.RedisURL = defaults.RedisURL
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Tier == "" {
		result.Tier = defaults.Tier
	}
	if result.StageTimeoutSeconds == 0 {
		result.StageTimeoutSeconds = defaults.StageTimeoutSeconds
	}
	if result.NavigateDelayMillis == 0 {
		result.NavigateDelayMillis = defaults.NavigateDelayMillis
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// StageTimeout returns the per-stage timeout as a duration.
func (c *Config) StageTimeout() time.Duration {
	return time.Duration(c.StageTimeoutSeconds) * time.Second
}

// NavigateDelay returns the navigate delay as a duration.
func (c *Config) NavigateDelay() time.Duration {
	return time.Duration(c.NavigateDelayMillis) * time.Millisecond
}

func hasScheme(url string, schemes ...string) bool {
	for _, s := range schemes {
		if strings.HasPrefix(url, s) {
			return true
		}
	}
	return false
}
