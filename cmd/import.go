package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/jjenkins/poliwatch/internal/service"
)

var importCmd = &cobra.Command{
	Use:   "import [file|-]...",
	Short: "Import legislative records from JSON lines",
	Long: `Import applies upsert events read as JSON lines, one event per line:

  {"kind": "member", "member": {"bioguide_id": "S000033", ...}}
  {"kind": "term", "term": {"bioguide_id": "S000033", "chamber": "Senate", ...}}

Each record is committed in its own transaction. Records that fail validation
are reported and skipped; the command exits non-zero if any record failed.

Examples:
  # Import a file
  ./poliwatch import members.jsonl

  # Import several files in order
  ./poliwatch import members.jsonl votes.jsonl

  # Read from stdin
  zcat dump.jsonl.gz | ./poliwatch import -`,
	Args: cobra.MinimumNArgs(1),
	Run:  runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) {
	cfg := mustConfig(cmd)
	ctx := cmd.Context()

	s, err := openStores(ctx, cfg)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer s.Close()

	importer := s.importer(service.NewIngestMetrics(prometheus.NewRegistry()))

	failed := false
	for _, arg := range args {
		stats, err := importFile(cmd, importer, arg)
		if stats != nil {
			importer.PrintSummary(cmd.OutOrStdout(), stats)
			if stats.Failed > 0 {
				failed = true
			}
		}
		if err != nil {
			if ctx.Err() != nil {
				slog.Info("import cancelled", "source", arg)
			} else {
				slog.Error("import failed", "source", arg, "error", err)
			}
			failed = true
			break
		}
	}

	if failed {
		s.Close()
		os.Exit(1)
	}
}

func importFile(cmd *cobra.Command, importer *service.Importer, path string) (*service.ImportStats, error) {
	var r io.Reader
	source := "file:" + path
	if path == "-" {
		r = cmd.InOrStdin()
		source = "stdin"
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	slog.Info("starting import", "source", source)
	return importer.Import(cmd.Context(), source, r)
}
