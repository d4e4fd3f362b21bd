package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/jjenkins/poliwatch/internal/store"
)

// Applier applies one decoded event
type Applier interface {
	Apply(ctx context.Context, ev *Event) (store.Outcome, error)
}

// fetcher is the part of *kgo.Client the consumer uses
type fetcher interface {
	PollFetches(ctx context.Context) kgo.Fetches
	CommitRecords(ctx context.Context, rs ...*kgo.Record) error
}

// KafkaConfig selects the topic and consumer group to read upsert events from
type KafkaConfig struct {
	Brokers []string
	Topic   string
	Group   string
}

// NewKafkaClient creates a group consumer with manual commits
func NewKafkaClient(cfg KafkaConfig) (*kgo.Client, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumeTopics(cfg.Topic),
		kgo.ConsumerGroup(cfg.Group),
		kgo.DisableAutoCommit(),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}
	return client, nil
}

// Consumer applies upsert events from a Kafka topic. A record's offset is committed only after
// the record was applied or permanently rejected.
type Consumer struct {
	client  fetcher
	parser  *Parser
	applier Applier
	runs    RunRecorder
	metrics *IngestMetrics
	source  string
	logger  *slog.Logger
}

// NewConsumer creates a new Consumer. metrics may be nil.
func NewConsumer(client fetcher, parser *Parser, applier Applier, runs RunRecorder, metrics *IngestMetrics, topic string, logger *slog.Logger) *Consumer {
	return &Consumer{
		client:  client,
		parser:  parser,
		applier: applier,
		runs:    runs,
		metrics: metrics,
		source:  "kafka:" + topic,
		logger:  logger,
	}
}

// Run consumes until ctx is cancelled or the client is closed. It returns an error only when a
// record fails for a reason that redelivery could fix, such as a lost database connection.
func (c *Consumer) Run(ctx context.Context) error {
	run, err := c.runs.StartRun(ctx, c.source)
	if err != nil {
		return err
	}
	c.metrics.IncrementRuns()
	stats := &ImportStats{RunID: run.ID.String()}
	c.logger.Info("consumer started", "source", c.source, "run_id", stats.RunID)

	defer func() {
		recordRun(run, stats)
		if err := c.runs.FinishRun(context.WithoutCancel(ctx), run); err != nil {
			c.logger.Error("failed to finish ingest run", "run_id", stats.RunID, "error", err)
		}
		c.logger.Info("consumer stopped",
			"run_id", stats.RunID,
			"total", stats.Total,
			"changed", stats.Changed,
			"failed", stats.Failed,
		)
	}()

	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return nil
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			c.logger.Error("fetch failed", "topic", topic, "partition", partition, "error", err)
		})

		var handled []*kgo.Record
		var fatal error
		iter := fetches.RecordIter()
		for !iter.Done() {
			rec := iter.Next()
			if err := c.handle(ctx, rec, stats); err != nil {
				fatal = err
				break
			}
			handled = append(handled, rec)
		}

		if len(handled) > 0 {
			if err := c.client.CommitRecords(context.WithoutCancel(ctx), handled...); err != nil {
				c.logger.Error("failed to commit offsets", "records", len(handled), "error", err)
			}
		}
		if fatal != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fatal
		}
	}
}

// handle applies one record. Rejections are logged and counted; only retryable errors are returned.
func (c *Consumer) handle(ctx context.Context, rec *kgo.Record, stats *ImportStats) error {
	stats.Total++
	ev, err := c.parser.Parse(rec.Value)
	if err != nil {
		stats.Failed++
		c.metrics.ObserveRecord("", "failed", time.Now())
		c.logger.Error("record rejected",
			"partition", rec.Partition,
			"offset", rec.Offset,
			"error", err,
		)
		return nil
	}

	outcome, err := c.applier.Apply(ctx, ev)
	if err != nil {
		if !permanent(err) {
			stats.Total--
			return fmt.Errorf("failed to apply %s %s at offset %d: %w", ev.Kind, ev.Key(), rec.Offset, err)
		}
		stats.Failed++
		c.logger.Error("record rejected",
			"partition", rec.Partition,
			"offset", rec.Offset,
			"kind", ev.Kind,
			"key", ev.Key(),
			"error", err,
		)
		return nil
	}

	stats.count(outcome)
	c.logger.Debug("record applied", "offset", rec.Offset, "kind", ev.Kind, "key", ev.Key(), "outcome", outcome.String())
	return nil
}

// permanent reports whether redelivering the record would fail the same way
func permanent(err error) bool {
	return errors.Is(err, store.ErrValidation) ||
		errors.Is(err, store.ErrConflict) ||
		errors.Is(err, store.ErrNotFound) ||
		errors.Is(err, errEmptyEvent) ||
		errors.Is(err, errUnknownKind)
}
