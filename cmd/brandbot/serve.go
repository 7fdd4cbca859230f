package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jonathan/brandbot/internal/briefs"
	"github.com/jonathan/brandbot/internal/config"
	"github.com/jonathan/brandbot/internal/db"
	"github.com/jonathan/brandbot/internal/gate"
	"github.com/jonathan/brandbot/internal/generation"
	"github.com/jonathan/brandbot/internal/llm"
	"github.com/jonathan/brandbot/internal/server"
	"github.com/jonathan/brandbot/internal/server/ratelimit"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server for briefs and generation runs.

Without --db-url briefs are kept in memory and run history is unavailable.
Without --redis-url generation limits are counted in this process only.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", config.DefaultPort, "Port to listen on")
	serveCmd.Flags().StringSlice("allowed-origins", nil, "CORS origins (default: any)")
	_ = viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("allowed-origins", serveCmd.Flags().Lookup("allowed-origins"))
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := resolveConfig()
	if err != nil {
		return err
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}

	jwtCfg, err := config.NewJWTConfig()
	if err != nil {
		return err
	}

	deps := server.Deps{
		JWT:       server.NewJWTService(jwtCfg),
		RateLimit: ratelimit.LoadConfig(),
	}

	if cfg.DatabaseURL != "" {
		database, err := connectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()
		deps.Briefs = database
		deps.Runs = database
	} else {
		log.Println("[serve] no database configured, briefs are kept in memory")
		deps.Briefs = briefs.NewMemoryStore()
	}

	g, closeGate, err := openGate(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	defer closeGate()
	deps.Gate = g

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()
	deps.Generator = generation.NewLLMService(client)

	srv, err := server.New(server.Config{
		Port:           cfg.Port,
		AllowedOrigins: cfg.AllowedOrigins,
		StageTimeout:   cfg.StageTimeout(),
		NavigateDelay:  cfg.NavigateDelay(),
	}, deps)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

// connectDB connects and applies the schema.
func connectDB(ctx context.Context, url string) (*db.DB, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	database, err := db.Connect(connectCtx, url)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(connectCtx); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// openGate returns the Redis gate when url is set and an in-process gate otherwise.
func openGate(ctx context.Context, url string) (gate.Gate, func(), error) {
	if url == "" {
		return gate.NewMemory(), func() {}, nil
	}
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	r, err := gate.ConnectRedis(connectCtx, url)
	if err != nil {
		return nil, nil, err
	}
	return r, func() {
		if err := r.Close(); err != nil {
			log.Printf("[gate] failed to close redis: %v", err)
		}
	}, nil
}
