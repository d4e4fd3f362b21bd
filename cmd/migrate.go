package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jjenkins/poliwatch/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `Migrate applies the schema to the configured database and records the schema
version. It is safe to run repeatedly; import, consume and serve also apply it on start.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustConfig(cmd)
		ctx := cmd.Context()

		s, err := openStores(ctx, cfg)
		if err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}
		defer s.Close()

		version, err := store.SchemaVersion(ctx, s.db)
		if err != nil {
			slog.Error("failed to read schema version", "error", err)
			os.Exit(1)
		}
		slog.Info("schema is up to date", "version", version)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
