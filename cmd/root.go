package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/jjenkins/poliwatch/internal/config"
	"github.com/jjenkins/poliwatch/internal/tracing"
)

const programName = "poliwatch"

var (
	configFile string
	debug      bool

	shutdownTracing func(context.Context) error
)

var rootCmd = &cobra.Command{
	Use:   programName,
	Short: "Store and serve U.S. Congressional legislative data",
	Long: `Poliwatch keeps members of Congress, their terms of service, roll-call votes,
committees and bills in PostgreSQL.

Records arrive as JSON upsert events, either as JSON lines (import) or from a
Kafka topic (consume), and are served over HTTP (serve).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()

		cfg, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cfg.Tracing {
			shutdownTracing, err = tracing.Setup(cmd.Context(), cfg.TracingStdout, os.Stderr)
			if err != nil {
				return err
			}
		}

		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if shutdownTracing == nil {
			return
		}
		if err := shutdownTracing(context.WithoutCancel(cmd.Context())); err != nil {
			slog.Error("failed to flush traces", "error", err)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "D", false, "enable debug logging")
}

func setupLogging() {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		AddSource: debug,
		Level:     level,
	}))
	slog.SetDefault(logger)

	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, v ...any) {
		slog.Debug(fmt.Sprintf(format, v...), "component", programName)
	})); err != nil {
		slog.Error("failed to set GOMAXPROCS", "error", err)
	}
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func mustConfig(cmd *cobra.Command) *config.Config {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		slog.Error("no config found in context")
		os.Exit(1)
	}
	return cfg
}
