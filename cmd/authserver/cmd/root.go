// Package cmd holds the authserver command tree.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/FamilySync/Services-Authentication/internal/config"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

var (
	cfg    *config.Config
	logger *slog.Logger
	dsn    string
)

var rootCmd = &cobra.Command{
	Use:   "authserver",
	Short: "FamilySync authentication service",
	Long: `authserver issues JWT access tokens and rotating refresh tokens for
FamilySync accounts and manages their claims.

Configuration is read from FAMILYSYNC_AUTH_* environment variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if dsn != "" {
			cfg.Database.DSN = dsn
		}
		logger = cfg.Log.NewLogger(os.Stderr)
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "Database DSN (env: FAMILYSYNC_AUTH_DB_DSN)")

	rootCmd.AddCommand(serveCmd, migrateCmd, userCmd, tokensCmd, versionCmd)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
