package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/brandbot/internal/db"
	"github.com/jonathan/brandbot/internal/observability"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent generation runs",
	RunE:  runListRuns,
}

var (
	runsUserID  string
	runsBriefID string
	runsStatus  string
	runsLimit   int
	runsJSON    bool
)

func init() {
	runsCmd.Flags().StringVar(&runsUserID, "user-id", "", "Only runs of this user")
	runsCmd.Flags().StringVar(&runsBriefID, "brief-id", "", "Only runs of this brief")
	runsCmd.Flags().StringVar(&runsStatus, "status", "", "processing, completed, failed or cancelled")
	runsCmd.Flags().IntVar(&runsLimit, "limit", db.DefaultRunLimit, "Maximum runs to show")
	runsCmd.Flags().BoolVar(&runsJSON, "json", false, "Output JSON")
	rootCmd.AddCommand(runsCmd)
}

// runFilters builds list filters from the runs flags.
func runFilters() (db.RunFilters, error) {
	filters := db.RunFilters{Status: runsStatus, Limit: runsLimit}
	if runsUserID != "" {
		id, err := uuid.Parse(runsUserID)
		if err != nil {
			return filters, fmt.Errorf("invalid --user-id: %w", err)
		}
		filters.UserID = &id
	}
	if runsBriefID != "" {
		id, err := uuid.Parse(runsBriefID)
		if err != nil {
			return filters, fmt.Errorf("invalid --brief-id: %w", err)
		}
		filters.BriefID = &id
	}
	switch runsStatus {
	case "", db.RunStatusProcessing, db.RunStatusCompleted, db.RunStatusFailed, db.RunStatusCancelled:
	default:
		return filters, fmt.Errorf("invalid --status %q", runsStatus)
	}
	return filters, nil
}

func runListRuns(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}
	filters, err := runFilters()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	database, err := connectDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	runs, err := database.ListRuns(ctx, filters)
	if err != nil {
		return err
	}

	if runsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}
	observability.NewPrinter(os.Stdout).PrintRuns(runs)
	return nil
}
