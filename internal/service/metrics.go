package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SummaryService calculates dataset-wide counts for the summary endpoint and home page
type SummaryService struct {
	db *sql.DB
}

// NewSummaryService creates a new SummaryService
func NewSummaryService(db *sql.DB) *SummaryService {
	return &SummaryService{db: db}
}

// Summary represents calculated dataset-wide counts
type Summary struct {
	TotalMembers      int        `json:"total_members"`
	InOffice          int        `json:"in_office"`
	HouseInOffice     int        `json:"house_in_office"`
	SenateInOffice    int        `json:"senate_in_office"`
	TotalVotes        int        `json:"total_votes"`
	TotalVoteRecords  int        `json:"total_vote_records"`
	TotalBills        int        `json:"total_bills"`
	TotalCommittees   int        `json:"total_committees"`
	LargestDelegation string     `json:"largest_delegation,omitempty"`
	DelegationSize    int        `json:"delegation_size,omitempty"`
	LastIngestAt      *time.Time `json:"last_ingest_at,omitempty"`
}

// Calculate reads the current counts. Membership counts use the snapshot columns.
func (s *SummaryService) Calculate(ctx context.Context) (*Summary, error) {
	summary := &Summary{}

	memberQuery := `
		SELECT
			COUNT(*) AS total_members,
			COUNT(*) FILTER (WHERE in_office) AS in_office,
			COUNT(*) FILTER (WHERE in_office AND chamber = 'House') AS house,
			COUNT(*) FILTER (WHERE in_office AND chamber = 'Senate') AS senate
		FROM members
	`
	err := s.db.QueryRowContext(ctx, memberQuery).Scan(
		&summary.TotalMembers,
		&summary.InOffice,
		&summary.HouseInOffice,
		&summary.SenateInOffice,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count members: %w", err)
	}

	countQuery := `
		SELECT
			(SELECT COUNT(*) FROM votes),
			(SELECT COUNT(*) FROM vote_records),
			(SELECT COUNT(*) FROM bills),
			(SELECT COUNT(*) FROM committees)
	`
	err = s.db.QueryRowContext(ctx, countQuery).Scan(
		&summary.TotalVotes,
		&summary.TotalVoteRecords,
		&summary.TotalBills,
		&summary.TotalCommittees,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count legislative records: %w", err)
	}

	// Find the largest sitting state delegation
	delegationQuery := `
		SELECT state, COUNT(*) AS seats
		FROM members
		WHERE in_office
		GROUP BY state
		ORDER BY seats DESC, state
		LIMIT 1
	`
	err = s.db.QueryRowContext(ctx, delegationQuery).Scan(
		&summary.LargestDelegation,
		&summary.DelegationSize,
	)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to find largest delegation: %w", err)
	}

	var last sql.NullTime
	err = s.db.QueryRowContext(ctx, `SELECT MAX(finished_at) FROM ingest_runs`).Scan(&last)
	if err != nil {
		return nil, fmt.Errorf("failed to read last ingest: %w", err)
	}
	if last.Valid {
		summary.LastIngestAt = &last.Time
	}

	return summary, nil
}
