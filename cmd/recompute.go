package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Recompute every member's current-office snapshot",
	Long: `Recompute re-derives in_office, party, state, district and chamber for every
member from their terms as of today. Terms with a future end date expire without
any new record arriving, so run this daily.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustConfig(cmd)
		ctx := cmd.Context()

		s, err := openStores(ctx, cfg)
		if err != nil {
			slog.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer s.Close()

		changed, err := s.members.RecomputeAllSnapshots(ctx)
		if err != nil {
			slog.Error("recompute failed", "error", err)
			s.Close()
			os.Exit(1)
		}
		slog.Info("snapshots recomputed", "changed", changed)
	},
}

func init() {
	rootCmd.AddCommand(recomputeCmd)
}
