package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jjenkins/poliwatch/internal/model"
)

// VoteStore handles database operations for roll-call votes and member vote records
type VoteStore struct {
	db *sql.DB
}

// NewVoteStore creates a new VoteStore
func NewVoteStore(db *sql.DB) *VoteStore {
	return &VoteStore{db: db}
}

const voteColumns = `
	id, congress, session, chamber, roll_number, question, description, vote_date,
	result, threshold, yea_count, nay_count, present_count, not_voting_count, bill_id
`

func scanVote(row rowScanner) (*model.Vote, error) {
	var v model.Vote
	err := row.Scan(
		&v.ID,
		&v.Congress,
		&v.Session,
		&v.Chamber,
		&v.RollNumber,
		&v.Question,
		&v.Description,
		&v.VoteDate,
		&v.Result,
		&v.Threshold,
		&v.YeaCount,
		&v.NayCount,
		&v.PresentCount,
		&v.NotVotingCount,
		&v.BillID,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// GetVote retrieves a vote by its natural key. Returns nil if there is no such vote.
func (s *VoteStore) GetVote(ctx context.Context, key model.VoteKey) (*model.Vote, error) {
	key, err := validateVoteKey("vote", key)
	if err != nil {
		return nil, err
	}
	return selectVote(ctx, s.db, key, false)
}

// GetRecords retrieves the member positions recorded on a vote
func (s *VoteStore) GetRecords(ctx context.Context, voteID int64) ([]model.VoteRecord, error) {
	query := `
		SELECT id, member_id, vote_id, position
		FROM vote_records
		WHERE vote_id = $1
		ORDER BY member_id
	`

	rows, err := s.db.QueryContext(ctx, query, voteID)
	if err != nil {
		return nil, fmt.Errorf("failed to get records for vote %d: %w", voteID, err)
	}
	defer rows.Close()

	var records []model.VoteRecord
	for rows.Next() {
		var r model.VoteRecord
		if err := rows.Scan(&r.ID, &r.MemberID, &r.VoteID, &r.Position); err != nil {
			return nil, fmt.Errorf("failed to scan vote record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// DeleteVote removes a vote together with its records
func (s *VoteStore) DeleteVote(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM votes WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete vote %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete vote %d: %w", id, err)
	}
	return n > 0, nil
}

// UpsertVote applies a vote matched by (congress, session, chamber, roll_number).
// A bill reference that is not stored yet gets a stub bill row.
func (s *VoteStore) UpsertVote(ctx context.Context, meta *model.VoteMeta) (Outcome, error) {
	v, err := validateVoteMeta(meta)
	if err != nil {
		return Unchanged, err
	}

	incoming := model.Vote{
		Congress:       v.Congress,
		Session:        v.Session,
		Chamber:        v.Chamber,
		RollNumber:     v.RollNumber,
		Question:       v.Question,
		Description:    nullString(v.Description),
		VoteDate:       nullTime(v.Date),
		Result:         nullString(v.Result),
		Threshold:      nullString(v.Threshold),
		YeaCount:       nullInt(v.YeaCount),
		NayCount:       nullInt(v.NayCount),
		PresentCount:   nullInt(v.PresentCount),
		NotVotingCount: nullInt(v.NotVotingCount),
	}

	var outcome Outcome
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		if v.Bill != nil {
			billID, _, err := ensureBill(ctx, tx, *v.Bill)
			if err != nil {
				return err
			}
			incoming.BillID = sql.NullInt64{Int64: billID, Valid: true}
		}

		existing, err := selectVote(ctx, tx, v.VoteKey, true)
		if err != nil {
			return err
		}
		if existing == nil {
			inserted, err := insertVote(ctx, tx, &incoming)
			if err != nil {
				return err
			}
			if inserted {
				outcome = Created
				return nil
			}
			existing, err = selectVote(ctx, tx, v.VoteKey, true)
			if err != nil {
				return err
			}
			if existing == nil {
				return fmt.Errorf("vote %s vanished after insert conflict", v.VoteKey)
			}
		}

		incoming.ID = existing.ID
		if votesEqual(*existing, incoming) {
			return nil
		}

		query := `
			UPDATE votes
			SET question = $2, description = $3, vote_date = $4, result = $5, threshold = $6,
			    yea_count = $7, nay_count = $8, present_count = $9, not_voting_count = $10, bill_id = $11
			WHERE id = $1
		`
		_, err = tx.ExecContext(ctx, query,
			existing.ID,
			incoming.Question,
			incoming.Description,
			incoming.VoteDate,
			incoming.Result,
			incoming.Threshold,
			incoming.YeaCount,
			incoming.NayCount,
			incoming.PresentCount,
			incoming.NotVotingCount,
			incoming.BillID,
		)
		if err != nil {
			return fmt.Errorf("failed to update vote %s: %w", v.VoteKey, storageError("vote", err))
		}
		outcome = Updated
		return nil
	})
	if err != nil {
		return Unchanged, err
	}
	return outcome, nil
}

// UpsertVoteRecord records a member's position on a stored vote. The last write wins.
func (s *VoteStore) UpsertVoteRecord(ctx context.Context, meta *model.VoteRecordMeta) (Outcome, error) {
	r, position, err := validateVoteRecordMeta(meta)
	if err != nil {
		return Unchanged, err
	}

	var outcome Outcome
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		memberID, err := memberIDByBioguide(ctx, tx, "vote_record", r.BioguideID, false)
		if err != nil {
			return err
		}
		vote, err := selectVote(ctx, tx, r.Vote, false)
		if err != nil {
			return err
		}
		if vote == nil {
			return &ValidationError{
				Entity:     "vote_record",
				Field:      "vote",
				Constraint: "must reference an existing vote",
				Value:      r.Vote.String(),
			}
		}

		// xmax is zero only for freshly inserted rows
		query := `
			INSERT INTO vote_records (member_id, vote_id, position)
			VALUES ($1, $2, $3)
			ON CONFLICT (member_id, vote_id) DO UPDATE
			SET position = EXCLUDED.position
			WHERE vote_records.position IS DISTINCT FROM EXCLUDED.position
			RETURNING (xmax = 0)
		`
		var inserted bool
		err = tx.QueryRowContext(ctx, query, memberID, vote.ID, string(position)).Scan(&inserted)
		switch {
		case err == sql.ErrNoRows:
			outcome = Unchanged
		case err != nil:
			return fmt.Errorf("failed to upsert vote record %s/%s: %w", r.BioguideID, r.Vote, storageError("vote_record", err))
		case inserted:
			outcome = Created
		default:
			outcome = Updated
		}
		return nil
	})
	if err != nil {
		return Unchanged, err
	}
	return outcome, nil
}

func selectVote(ctx context.Context, q querier, key model.VoteKey, lock bool) (*model.Vote, error) {
	query := `SELECT ` + voteColumns + `
		FROM votes
		WHERE congress = $1 AND session = $2 AND chamber = $3 AND roll_number = $4`
	if lock {
		query += ` FOR UPDATE`
	}

	v, err := scanVote(q.QueryRowContext(ctx, query, key.Congress, key.Session, key.Chamber, key.RollNumber))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vote %s: %w", key, err)
	}
	return v, nil
}

func insertVote(ctx context.Context, tx *sql.Tx, v *model.Vote) (bool, error) {
	query := `
		INSERT INTO votes (congress, session, chamber, roll_number, question, description, vote_date,
		                   result, threshold, yea_count, nay_count, present_count, not_voting_count, bill_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (congress, session, chamber, roll_number) DO NOTHING
		RETURNING id
	`
	err := tx.QueryRowContext(ctx, query,
		v.Congress,
		v.Session,
		v.Chamber,
		v.RollNumber,
		v.Question,
		v.Description,
		v.VoteDate,
		v.Result,
		v.Threshold,
		v.YeaCount,
		v.NayCount,
		v.PresentCount,
		v.NotVotingCount,
		v.BillID,
	).Scan(&v.ID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to insert vote %d-%d/%s/%d: %w",
			v.Congress, v.Session, v.Chamber, v.RollNumber, storageError("vote", err))
	}
	return true, nil
}

func votesEqual(a, b model.Vote) bool {
	return a.Question == b.Question &&
		a.Description == b.Description &&
		sameNullTime(a.VoteDate, b.VoteDate) &&
		a.Result == b.Result &&
		a.Threshold == b.Threshold &&
		a.YeaCount == b.YeaCount &&
		a.NayCount == b.NayCount &&
		a.PresentCount == b.PresentCount &&
		a.NotVotingCount == b.NotVotingCount &&
		a.BillID == b.BillID
}
