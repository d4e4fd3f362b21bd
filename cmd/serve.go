package cmd

import (
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jjenkins/poliwatch/internal/handlers"
	"github.com/jjenkins/poliwatch/internal/service"
)

const shutdownTimeout = 10 * time.Second

var (
	port         string
	serveConsume bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Poliwatch web server",
	Long: `Start the web server that serves members over JSON and HTML, the dataset
summary and Prometheus metrics. With --consume the Kafka consumer runs in the
same process and shares the metrics registry.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustConfig(cmd)
		ctx := cmd.Context()

		// the flag wins over config only when set explicitly
		if cmd.Flags().Changed("port") {
			cfg.Port = port
		}

		s, err := openStores(ctx, cfg)
		if err != nil {
			slog.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer s.Close()

		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics := service.NewIngestMetrics(reg)
		summaries := service.NewSummaryService(s.db)

		app := fiber.New(fiber.Config{
			AppName: "Poliwatch",
		})

		app.Use(logger.New())

		app.Get("/", handlers.HomeHandler(summaries, slog.Default()))
		app.Get("/politicians", handlers.PoliticiansHandler(s.members, slog.Default()))

		api := app.Group("/v1")
		api.Get("/members", handlers.ListMembersHandler(s.members, slog.Default()))
		api.Get("/members/:id", handlers.GetMemberHandler(s.members, s.bills, slog.Default()))
		api.Get("/summary", handlers.SummaryHandler(summaries, slog.Default()))

		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			slog.Info("starting server", "port", cfg.Port)
			return app.Listen(":" + cfg.Port)
		})
		g.Go(func() error {
			<-gctx.Done()
			slog.Info("shutting down server")
			return app.ShutdownWithTimeout(shutdownTimeout)
		})
		if serveConsume {
			g.Go(func() error {
				return runConsumer(gctx, cfg, s, metrics)
			})
		}

		if err := g.Wait(); err != nil && ctx.Err() == nil {
			slog.Error("server stopped", "error", err)
			s.Close()
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&port, "port", "p", "8080", "Port to run the server on")
	serveCmd.Flags().BoolVar(&serveConsume, "consume", false, "Also run the Kafka consumer")
}
