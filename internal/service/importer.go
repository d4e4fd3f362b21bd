package service

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jjenkins/poliwatch/internal/model"
	"github.com/jjenkins/poliwatch/internal/store"
)

//go:generate mockgen -destination=mocks/mocks.go -package=mocks . MemberWriter,VoteWriter,CommitteeWriter,BillWriter,RunRecorder

// MemberWriter applies member and term records
type MemberWriter interface {
	UpsertMember(ctx context.Context, meta *model.MemberMeta) (store.Outcome, error)
	UpsertTerm(ctx context.Context, meta *model.TermMeta) (store.Outcome, error)
}

// VoteWriter applies votes and vote records
type VoteWriter interface {
	UpsertVote(ctx context.Context, meta *model.VoteMeta) (store.Outcome, error)
	UpsertVoteRecord(ctx context.Context, meta *model.VoteRecordMeta) (store.Outcome, error)
}

// CommitteeWriter applies committees and committee assignments
type CommitteeWriter interface {
	UpsertCommittee(ctx context.Context, meta *model.CommitteeMeta) (store.Outcome, error)
	UpsertMembership(ctx context.Context, meta *model.MembershipMeta) (store.Outcome, error)
	CloseMembership(ctx context.Context, meta *model.MembershipMeta) (store.Outcome, error)
}

// BillWriter applies bill records
type BillWriter interface {
	UpsertBill(ctx context.Context, meta *model.BillMeta) (store.Outcome, error)
}

// RunRecorder keeps the audit trail of ingestion runs
type RunRecorder interface {
	StartRun(ctx context.Context, source string) (*model.IngestRun, error)
	FinishRun(ctx context.Context, run *model.IngestRun) error
}

// maxLineSize bounds one JSON-lines record
const maxLineSize = 4 << 20

// ImportStats tracks import statistics
type ImportStats struct {
	RunID     string
	Total     int
	Imported  int
	Changed   int
	Unchanged int
	Skipped   int
	Failed    int
	Errors    []RecordError
}

// RecordError describes one rejected record
type RecordError struct {
	Line int
	Kind string
	Key  string
	Err  error
}

func (e RecordError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d (%s %s): %v", e.Line, e.Kind, e.Key, e.Err)
}

func (e RecordError) Unwrap() error {
	return e.Err
}

func (s *ImportStats) count(outcome store.Outcome) {
	switch outcome {
	case store.Created, store.Updated:
		s.Imported++
		s.Changed++
	case store.Unchanged:
		s.Imported++
		s.Unchanged++
	case store.Skipped:
		s.Skipped++
	}
}

// Importer applies upsert events to the store one record at a time
type Importer struct {
	parser     *Parser
	members    MemberWriter
	votes      VoteWriter
	committees CommitteeWriter
	bills      BillWriter
	runs       RunRecorder
	metrics    *IngestMetrics
	tracer     trace.Tracer
	logger     *slog.Logger
}

// Writers groups the store ports the importer writes through
type Writers struct {
	Members    MemberWriter
	Votes      VoteWriter
	Committees CommitteeWriter
	Bills      BillWriter
	Runs       RunRecorder
}

// NewImporter creates a new Importer. metrics may be nil.
func NewImporter(parser *Parser, w Writers, metrics *IngestMetrics, logger *slog.Logger) *Importer {
	return &Importer{
		parser:     parser,
		members:    w.Members,
		votes:      w.Votes,
		committees: w.Committees,
		bills:      w.Bills,
		runs:       w.Runs,
		metrics:    metrics,
		tracer:     otel.Tracer("poliwatch/ingest"),
		logger:     logger,
	}
}

// Import reads JSON-lines events from r and applies each one in its own transaction.
// Bad records are logged, counted and collected; the rest are committed.
func (i *Importer) Import(ctx context.Context, source string, r io.Reader) (*ImportStats, error) {
	stats := &ImportStats{}

	run, err := i.runs.StartRun(ctx, source)
	if err != nil {
		return nil, err
	}
	stats.RunID = run.ID.String()
	i.metrics.IncrementRuns()
	i.logger.Info("import started", "source", source, "run_id", stats.RunID)

	defer func() {
		recordRun(run, stats)
		// the run row is closed even when ctx was cancelled
		if err := i.runs.FinishRun(context.WithoutCancel(ctx), run); err != nil {
			i.logger.Error("failed to finish ingest run", "run_id", stats.RunID, "error", err)
		}
	}()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	line := 0
	for scanner.Scan() {
		line++
		data := scanner.Bytes()
		if len(bytes.TrimSpace(data)) == 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		stats.Total++
		ev, err := i.parser.Parse(data)
		if err != nil {
			i.fail(stats, RecordError{Line: line, Err: err})
			i.metrics.ObserveRecord("", "failed", time.Now())
			continue
		}

		outcome, err := i.Apply(ctx, ev)
		if err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			i.fail(stats, RecordError{Line: line, Kind: ev.Kind, Key: ev.Key(), Err: err})
			continue
		}

		stats.count(outcome)
		i.logger.Debug("record applied", "line", line, "kind", ev.Kind, "key", ev.Key(), "outcome", outcome.String())

		if stats.Total%1000 == 0 {
			i.logger.Info("import progress", "records", stats.Total, "failed", stats.Failed)
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("failed to read %s: %w", source, err)
	}

	return stats, nil
}

func (i *Importer) fail(stats *ImportStats, recErr RecordError) {
	stats.Failed++
	stats.Errors = append(stats.Errors, recErr)
	i.logger.Error("record rejected",
		"line", recErr.Line,
		"kind", recErr.Kind,
		"key", recErr.Key,
		"error", recErr.Err,
	)
}

// Apply writes one event through the matching store and returns its outcome
func (i *Importer) Apply(ctx context.Context, ev *Event) (store.Outcome, error) {
	ctx, span := i.tracer.Start(ctx, "ingest.Apply",
		trace.WithAttributes(
			attribute.String("kind", ev.Kind),
			attribute.String("key", ev.Key()),
		),
	)
	defer span.End()

	start := time.Now()
	outcome, err := i.dispatch(ctx, ev)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "apply failed")
		i.metrics.ObserveRecord(ev.Kind, "failed", start)
		return store.Unchanged, err
	}

	span.SetAttributes(attribute.String("outcome", outcome.String()))
	i.metrics.ObserveRecord(ev.Kind, outcome.String(), start)
	return outcome, nil
}

var (
	errEmptyEvent  = errors.New("event has no payload")
	errUnknownKind = errors.New("unknown event kind")
)

func (i *Importer) dispatch(ctx context.Context, ev *Event) (store.Outcome, error) {
	switch ev.Kind {
	case KindMember:
		if ev.Member != nil {
			return i.members.UpsertMember(ctx, ev.Member)
		}
	case KindTerm:
		if ev.Term != nil {
			return i.members.UpsertTerm(ctx, ev.Term)
		}
	case KindVote:
		if ev.Vote != nil {
			return i.votes.UpsertVote(ctx, ev.Vote)
		}
	case KindVoteRecord:
		if ev.VoteRecord != nil {
			return i.votes.UpsertVoteRecord(ctx, ev.VoteRecord)
		}
	case KindCommittee:
		if ev.Committee != nil {
			return i.committees.UpsertCommittee(ctx, ev.Committee)
		}
	case KindMembership:
		if ev.Membership != nil {
			return i.committees.UpsertMembership(ctx, ev.Membership)
		}
	case KindMembershipClose:
		if ev.Membership != nil {
			return i.committees.CloseMembership(ctx, ev.Membership)
		}
	case KindBill:
		if ev.Bill != nil {
			return i.bills.UpsertBill(ctx, ev.Bill)
		}
	default:
		return store.Unchanged, fmt.Errorf("%w %q", errUnknownKind, ev.Kind)
	}
	return store.Unchanged, errEmptyEvent
}

func recordRun(run *model.IngestRun, stats *ImportStats) {
	run.Total = stats.Total
	run.Imported = stats.Imported
	run.Changed = stats.Changed
	run.Unchanged = stats.Unchanged
	run.Skipped = stats.Skipped
	run.Failed = stats.Failed
}

// PrintSummary prints the import statistics
func (i *Importer) PrintSummary(w io.Writer, stats *ImportStats) {
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "=== Import Summary ===")
	fmt.Fprintf(w, "Run:             %s\n", stats.RunID)
	fmt.Fprintf(w, "Total records:   %d\n", stats.Total)
	fmt.Fprintf(w, "Imported:        %d\n", stats.Imported)
	fmt.Fprintf(w, "Changed:         %d\n", stats.Changed)
	fmt.Fprintf(w, "Unchanged:       %d\n", stats.Unchanged)
	fmt.Fprintf(w, "Skipped:         %d (stale)\n", stats.Skipped)
	fmt.Fprintf(w, "Failed:          %d\n", stats.Failed)

	if stats.Total > 0 {
		successRate := float64(stats.Imported+stats.Skipped) / float64(stats.Total) * 100
		fmt.Fprintf(w, "Success rate:    %.1f%%\n", successRate)
	}

	const maxShown = 20
	for idx, e := range stats.Errors {
		if idx == maxShown {
			fmt.Fprintf(w, "  ... and %d more\n", len(stats.Errors)-maxShown)
			break
		}
		fmt.Fprintf(w, "  %s\n", e.Error())
	}
}
