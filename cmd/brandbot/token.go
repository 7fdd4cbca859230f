package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/brandbot/internal/config"
	"github.com/jonathan/brandbot/internal/gate"
	"github.com/jonathan/brandbot/internal/server"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API token for a user and tier",
	Long:  `Sign a bearer token with JWT_SECRET. Without --user-id a new user ID is generated.`,
	RunE:  runToken,
}

var tokenUserID string

func init() {
	tokenCmd.Flags().StringVar(&tokenUserID, "user-id", "", "User ID (UUID)")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(_ *cobra.Command, _ []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}
	tier, err := gate.ParseTier(cfg.Tier)
	if err != nil {
		return err
	}

	userID := uuid.New()
	if tokenUserID != "" {
		if userID, err = uuid.Parse(tokenUserID); err != nil {
			return fmt.Errorf("invalid --user-id: %w", err)
		}
	}

	jwtCfg, err := config.NewJWTConfig()
	if err != nil {
		return err
	}
	token, err := server.NewJWTService(jwtCfg).GenerateToken(userID, tier)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "user %s, tier %s\n", userID, tier) //nolint:errcheck
	fmt.Fprintln(os.Stdout, token)                              //nolint:errcheck
	return nil
}
