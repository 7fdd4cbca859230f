// Package main provides the brandbot CLI: the HTTP API server and local brand generation.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jonathan/brandbot/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "brandbot",
	Short: "Brand kit generator",
	Long: `Brandbot turns a short business brief into a brand kit: name options, taglines,
a mission and values, a color palette and a logo.

Settings come from --config (JSON), then BRANDBOT_* environment variables, then flags.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to config.json file")
	flags.String("db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL)")
	flags.String("redis-url", "", "Redis URL for the shared concurrency gate (defaults to REDIS_URL)")
	flags.String("api-key", "", "Gemini API key (defaults to GEMINI_API_KEY)")
	flags.String("tier", "", "Subscription tier for local runs: hobby, pro or agency")
	flags.Int("stage-timeout", 0, "Per-stage timeout in seconds")
	flags.BoolP("verbose", "v", false, "Print detailed debug information")

	for _, name := range []string{"config", "db-url", "redis-url", "api-key", "tier", "stage-timeout", "verbose"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
}

func initConfig() {
	viper.SetEnvPrefix("BRANDBOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// resolveConfig layers the config file, environment and flags over the defaults.
func resolveConfig() (config.Config, error) {
	var cfg config.Config
	if path := viper.GetString("config"); path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	if viper.IsSet("port") {
		cfg.Port = viper.GetInt("port")
	}
	if viper.IsSet("allowed-origins") {
		cfg.AllowedOrigins = viper.GetStringSlice("allowed-origins")
	}
	if viper.IsSet("db-url") {
		cfg.DatabaseURL = viper.GetString("db-url")
	}
	if viper.IsSet("redis-url") {
		cfg.RedisURL = viper.GetString("redis-url")
	}
	if viper.IsSet("api-key") {
		cfg.APIKey = viper.GetString("api-key")
	}
	if viper.IsSet("tier") {
		cfg.Tier = viper.GetString("tier")
	}
	if viper.IsSet("stage-timeout") {
		cfg.StageTimeoutSeconds = viper.GetInt("stage-timeout")
	}
	if viper.IsSet("verbose") {
		cfg.Verbose = viper.GetBool("verbose")
	}

	// Unprefixed variables shared with other tools
	fallbacks := config.Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		APIKey:      os.Getenv("GEMINI_API_KEY"),
	}
	cfg = cfg.MergeWithDefaults(fallbacks)
	cfg = cfg.MergeWithDefaults(config.Defaults())

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
