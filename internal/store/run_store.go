package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jjenkins/poliwatch/internal/model"
)

// maxSourceLen matches ingest_runs.source, which counts characters
const maxSourceLen = 300

// truncateRunes cuts s to at most n characters without splitting a multi-byte character
func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// RunStore keeps the audit trail of ingestion runs
type RunStore struct {
	db *sql.DB
}

// NewRunStore creates a new RunStore
func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db}
}

// StartRun records the start of an ingestion run and returns it
func (s *RunStore) StartRun(ctx context.Context, source string) (*model.IngestRun, error) {
	source = truncateRunes(source, maxSourceLen)
	run := &model.IngestRun{
		ID:        uuid.New(),
		Source:    source,
		StartedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ingest_runs (id, source, started_at) VALUES ($1, $2, $3)`,
		run.ID, run.Source, run.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start ingest run: %w", err)
	}
	return run, nil
}

// FinishRun stores the final counts of a run
func (s *RunStore) FinishRun(ctx context.Context, run *model.IngestRun) error {
	run.FinishedAt = sql.NullTime{Time: time.Now().UTC().Truncate(time.Microsecond), Valid: true}

	query := `
		UPDATE ingest_runs
		SET finished_at = $2, total = $3, imported = $4, changed = $5,
		    unchanged = $6, skipped = $7, failed = $8
		WHERE id = $1
	`
	_, err := s.db.ExecContext(ctx, query,
		run.ID,
		run.FinishedAt,
		run.Total,
		run.Imported,
		run.Changed,
		run.Unchanged,
		run.Skipped,
		run.Failed,
	)
	if err != nil {
		return fmt.Errorf("failed to finish ingest run %s: %w", run.ID, err)
	}
	return nil
}

// Latest returns the most recently started run, or nil if nothing was ever ingested
func (s *RunStore) Latest(ctx context.Context) (*model.IngestRun, error) {
	query := `
		SELECT id, source, started_at, finished_at, total, imported, changed, unchanged, skipped, failed
		FROM ingest_runs
		ORDER BY started_at DESC
		LIMIT 1
	`
	var r model.IngestRun
	err := s.db.QueryRowContext(ctx, query).Scan(
		&r.ID,
		&r.Source,
		&r.StartedAt,
		&r.FinishedAt,
		&r.Total,
		&r.Imported,
		&r.Changed,
		&r.Unchanged,
		&r.Skipped,
		&r.Failed,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest ingest run: %w", err)
	}
	return &r, nil
}
