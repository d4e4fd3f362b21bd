package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/jjenkins/poliwatch/internal/config"
	"github.com/jjenkins/poliwatch/internal/service"
)

var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Apply upsert events from a Kafka topic",
	Long: `Consume reads upsert events from the configured Kafka topic as a member of the
configured consumer group. Offsets are committed only after a record was applied
or permanently rejected, so a lost database connection stops the consumer
without skipping records.

Configure with POLIWATCH_KAFKA_BROKERS, POLIWATCH_KAFKA_TOPIC and
POLIWATCH_KAFKA_GROUP, or the matching keys in the config file.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustConfig(cmd)
		ctx := cmd.Context()

		s, err := openStores(ctx, cfg)
		if err != nil {
			slog.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer s.Close()

		metrics := service.NewIngestMetrics(prometheus.NewRegistry())
		if err := runConsumer(ctx, cfg, s, metrics); err != nil {
			slog.Error("consumer failed", "error", err)
			s.Close()
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(consumeCmd)
}

// runConsumer blocks until ctx is cancelled or a record fails for a retryable reason
func runConsumer(ctx context.Context, cfg *config.Config, s *stores, metrics *service.IngestMetrics) error {
	client, err := service.NewKafkaClient(cfg.Kafka())
	if err != nil {
		return err
	}
	defer client.Close()

	consumer := service.NewConsumer(client, service.NewParser(), s.importer(metrics), s.runs, metrics, cfg.KafkaTopic, slog.Default())
	return consumer.Run(ctx)
}
