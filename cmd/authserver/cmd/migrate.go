package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/FamilySync/Services-Authentication/internal/server/storage/sqlstore"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		// New applies the embedded migrations before returning
		s, err := sqlstore.New(cmd.Context(), sqlstore.Config{
			Driver: sqlstore.Driver(cfg.Database.Driver),
			DSN:    cfg.Database.DSN,
		})
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		defer s.Close()

		logger.Info("database is up to date", slog.String("driver", cfg.Database.Driver))
		return nil
	},
}
