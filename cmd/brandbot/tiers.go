package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/brandbot/internal/gate"
	"github.com/jonathan/brandbot/internal/observability"
)

var tiersCmd = &cobra.Command{
	Use:   "tiers",
	Short: "Show subscription tiers and how many runs each allows at once",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := resolveConfig()
		if err != nil {
			return err
		}
		current, err := gate.ParseTier(cfg.Tier)
		if err != nil {
			return err
		}
		observability.NewPrinter(os.Stdout).PrintTiers(current)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tiersCmd)
}
