package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jjenkins/poliwatch/internal/model"
)

// committeeHierarchyLock serializes parent changes so two writers cannot close a cycle between them
const committeeHierarchyLock int64 = 0x636f6d6d

// CommitteeStore handles database operations for committees and committee memberships
type CommitteeStore struct {
	db *sql.DB
}

// NewCommitteeStore creates a new CommitteeStore
func NewCommitteeStore(db *sql.DB) *CommitteeStore {
	return &CommitteeStore{db: db}
}

const committeeColumns = `id, external_id, name, chamber, parent_id`

func scanCommittee(row rowScanner) (*model.Committee, error) {
	var c model.Committee
	if err := row.Scan(&c.ID, &c.ExternalID, &c.Name, &c.Chamber, &c.ParentID); err != nil {
		return nil, err
	}
	return &c, nil
}

const membershipColumns = `id, member_id, committee_id, role, start_date, end_date`

func scanMembership(row rowScanner) (*model.CommitteeMembership, error) {
	var m model.CommitteeMembership
	if err := row.Scan(&m.ID, &m.MemberID, &m.CommitteeID, &m.Role, &m.StartDate, &m.EndDate); err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByExternalID retrieves a committee by its upstream ID. Returns nil if there is no such committee.
func (s *CommitteeStore) GetByExternalID(ctx context.Context, externalID string) (*model.Committee, error) {
	return selectCommittee(ctx, s.db, externalID, false)
}

// GetChildren retrieves the direct subcommittees of a committee
func (s *CommitteeStore) GetChildren(ctx context.Context, parentID int64) ([]model.Committee, error) {
	query := `SELECT ` + committeeColumns + ` FROM committees WHERE parent_id = $1 ORDER BY external_id`

	rows, err := s.db.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get subcommittees of %d: %w", parentID, err)
	}
	defer rows.Close()

	var children []model.Committee
	for rows.Next() {
		c, err := scanCommittee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan committee: %w", err)
		}
		children = append(children, *c)
	}
	return children, rows.Err()
}

// GetMemberships retrieves a member's committee assignments, current and past
func (s *CommitteeStore) GetMemberships(ctx context.Context, memberID int64) ([]model.CommitteeMembership, error) {
	query := `
		SELECT ` + membershipColumns + `
		FROM committee_memberships
		WHERE member_id = $1
		ORDER BY committee_id, start_date NULLS FIRST
	`

	rows, err := s.db.QueryContext(ctx, query, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to get memberships for member %d: %w", memberID, err)
	}
	defer rows.Close()

	var memberships []model.CommitteeMembership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		memberships = append(memberships, *m)
	}
	return memberships, rows.Err()
}

// DeleteCommittee removes a committee with its subcommittees and memberships
func (s *CommitteeStore) DeleteCommittee(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM committees WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete committee %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete committee %d: %w", id, err)
	}
	return n > 0, nil
}

// UpsertCommittee applies a committee matched by external ID. The parent must already be stored
// and must not be the committee itself or one of its descendants.
func (s *CommitteeStore) UpsertCommittee(ctx context.Context, meta *model.CommitteeMeta) (Outcome, error) {
	c, err := validateCommitteeMeta(meta)
	if err != nil {
		return Unchanged, err
	}

	var outcome Outcome
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		var parentID sql.NullInt64
		if c.ParentExternalID != "" {
			if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, committeeHierarchyLock); err != nil {
				return fmt.Errorf("failed to lock committee hierarchy: %w", err)
			}
			parent, err := selectCommittee(ctx, tx, c.ParentExternalID, false)
			if err != nil {
				return err
			}
			if parent == nil {
				return invalid("committee", "parent_external_id", "must reference an existing committee", c.ParentExternalID)
			}
			parentID = sql.NullInt64{Int64: parent.ID, Valid: true}
		}

		incoming := model.Committee{
			ExternalID: c.ExternalID,
			Name:       c.Name,
			Chamber:    nullString(c.Chamber),
			ParentID:   parentID,
		}

		existing, err := selectCommittee(ctx, tx, c.ExternalID, true)
		if err != nil {
			return err
		}
		if existing == nil {
			inserted, err := insertCommittee(ctx, tx, &incoming)
			if err != nil {
				return err
			}
			if inserted {
				outcome = Created
				return nil
			}
			existing, err = selectCommittee(ctx, tx, c.ExternalID, true)
			if err != nil {
				return err
			}
			if existing == nil {
				return fmt.Errorf("committee %s vanished after insert conflict", c.ExternalID)
			}
		}

		if existing.Name == incoming.Name && existing.Chamber == incoming.Chamber && existing.ParentID == incoming.ParentID {
			return nil
		}

		if parentID.Valid && parentID != existing.ParentID {
			cycle, err := isAncestor(ctx, tx, existing.ID, parentID.Int64)
			if err != nil {
				return err
			}
			if cycle {
				return invalid("committee", "parent_external_id", "must not create a cycle", c.ParentExternalID)
			}
		}

		query := `UPDATE committees SET name = $2, chamber = $3, parent_id = $4 WHERE id = $1`
		if _, err := tx.ExecContext(ctx, query, existing.ID, incoming.Name, incoming.Chamber, incoming.ParentID); err != nil {
			return fmt.Errorf("failed to update committee %s: %w", c.ExternalID, storageError("committee", err))
		}
		outcome = Updated
		return nil
	})
	if err != nil {
		return Unchanged, err
	}
	return outcome, nil
}

// UpsertMembership applies a committee assignment matched by (member, committee, start_date).
// A reported end date closes the span; a missing one never reopens it.
func (s *CommitteeStore) UpsertMembership(ctx context.Context, meta *model.MembershipMeta) (Outcome, error) {
	m, err := validateMembershipMeta(meta)
	if err != nil {
		return Unchanged, err
	}

	var outcome Outcome
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		memberID, committeeID, err := resolveMembershipRefs(ctx, tx, m)
		if err != nil {
			return err
		}

		existing, err := selectMembership(ctx, tx, memberID, committeeID, m.StartDate)
		if err != nil {
			return err
		}

		if existing == nil && m.StartDate == nil {
			dated, err := datedSpanIDs(ctx, tx, memberID, committeeID)
			if err != nil {
				return err
			}
			if len(dated) > 0 {
				return &ConflictError{
					Entity: "membership",
					Reason: fmt.Sprintf("undated assignment of %s to %s is ambiguous among existing dated spans",
						m.BioguideID, m.CommitteeExternalID),
					IDs: dated,
				}
			}
		}

		if existing == nil {
			query := `
				INSERT INTO committee_memberships (member_id, committee_id, role, start_date, end_date)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT ON CONSTRAINT uq_membership_span DO NOTHING
				RETURNING id
			`
			var id int64
			err := tx.QueryRowContext(ctx, query,
				memberID, committeeID, nullString(m.Role), nullTime(m.StartDate), nullTime(m.EndDate),
			).Scan(&id)
			if err != nil && err != sql.ErrNoRows {
				return fmt.Errorf("failed to insert membership: %w", storageError("membership", err))
			}
			if err == nil {
				outcome = Created
				return nil
			}
			existing, err = selectMembership(ctx, tx, memberID, committeeID, m.StartDate)
			if err != nil {
				return err
			}
			if existing == nil {
				return fmt.Errorf("membership of %s on %s vanished after insert conflict", m.BioguideID, m.CommitteeExternalID)
			}
		}

		role := existing.Role
		if m.Role != "" {
			role = nullString(m.Role)
		}
		end := existing.EndDate
		if m.EndDate != nil {
			end = nullTime(m.EndDate)
		}
		if role == existing.Role && sameNullTime(end, existing.EndDate) {
			return nil
		}

		query := `UPDATE committee_memberships SET role = $2, end_date = $3 WHERE id = $1`
		if _, err := tx.ExecContext(ctx, query, existing.ID, role, end); err != nil {
			return fmt.Errorf("failed to update membership %d: %w", existing.ID, storageError("membership", err))
		}
		outcome = Updated
		return nil
	})
	if err != nil {
		return Unchanged, err
	}
	return outcome, nil
}

// CloseMembership sets the end date of an existing assignment span. Returns ErrNotFound when
// no span matches (member, committee, start_date).
func (s *CommitteeStore) CloseMembership(ctx context.Context, meta *model.MembershipMeta) (Outcome, error) {
	if meta.EndDate == nil {
		return Unchanged, invalid("membership", "end_date", "is required to close a membership", nil)
	}
	m, err := validateMembershipMeta(meta)
	if err != nil {
		return Unchanged, err
	}

	var outcome Outcome
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		memberID, committeeID, err := resolveMembershipRefs(ctx, tx, m)
		if err != nil {
			return err
		}
		existing, err := selectMembership(ctx, tx, memberID, committeeID, m.StartDate)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("membership of %s on %s: %w", m.BioguideID, m.CommitteeExternalID, ErrNotFound)
		}
		if existing.EndDate.Valid && existing.EndDate.Time.Equal(*m.EndDate) {
			return nil
		}

		_, err = tx.ExecContext(ctx, `UPDATE committee_memberships SET end_date = $2 WHERE id = $1`, existing.ID, *m.EndDate)
		if err != nil {
			return fmt.Errorf("failed to close membership %d: %w", existing.ID, storageError("membership", err))
		}
		outcome = Updated
		return nil
	})
	if err != nil {
		return Unchanged, err
	}
	return outcome, nil
}

func selectCommittee(ctx context.Context, q querier, externalID string, lock bool) (*model.Committee, error) {
	query := `SELECT ` + committeeColumns + ` FROM committees WHERE external_id = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	c, err := scanCommittee(q.QueryRowContext(ctx, query, externalID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get committee %s: %w", externalID, err)
	}
	return c, nil
}

func insertCommittee(ctx context.Context, tx *sql.Tx, c *model.Committee) (bool, error) {
	query := `
		INSERT INTO committees (external_id, name, chamber, parent_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (external_id) DO NOTHING
		RETURNING id
	`
	err := tx.QueryRowContext(ctx, query, c.ExternalID, c.Name, c.Chamber, c.ParentID).Scan(&c.ID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to insert committee %s: %w", c.ExternalID, storageError("committee", err))
	}
	return true, nil
}

// isAncestor reports whether id appears on the parent chain starting at from (inclusive)
func isAncestor(ctx context.Context, q querier, id, from int64) (bool, error) {
	query := `
		WITH RECURSIVE chain (id, parent_id) AS (
			SELECT id, parent_id FROM committees WHERE id = $1
			UNION
			SELECT c.id, c.parent_id
			FROM committees c
			JOIN chain ON c.id = chain.parent_id
		)
		SELECT EXISTS (SELECT 1 FROM chain WHERE id = $2)
	`
	var found bool
	if err := q.QueryRowContext(ctx, query, from, id).Scan(&found); err != nil {
		return false, fmt.Errorf("failed to walk committee hierarchy: %w", err)
	}
	return found, nil
}

func resolveMembershipRefs(ctx context.Context, tx *sql.Tx, m *model.MembershipMeta) (int64, int64, error) {
	memberID, err := memberIDByBioguide(ctx, tx, "membership", m.BioguideID, false)
	if err != nil {
		return 0, 0, err
	}
	committee, err := selectCommittee(ctx, tx, m.CommitteeExternalID, false)
	if err != nil {
		return 0, 0, err
	}
	if committee == nil {
		return 0, 0, invalid("membership", "committee_external_id", "must reference an existing committee", m.CommitteeExternalID)
	}
	return memberID, committee.ID, nil
}

func selectMembership(ctx context.Context, tx *sql.Tx, memberID, committeeID int64, start *time.Time) (*model.CommitteeMembership, error) {
	query := `
		SELECT ` + membershipColumns + `
		FROM committee_memberships
		WHERE member_id = $1 AND committee_id = $2 AND start_date IS NOT DISTINCT FROM $3::date
		FOR UPDATE
	`

	m, err := scanMembership(tx.QueryRowContext(ctx, query, memberID, committeeID, nullTime(start)))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return m, nil
}

func datedSpanIDs(ctx context.Context, tx *sql.Tx, memberID, committeeID int64) ([]int64, error) {
	query := `
		SELECT id FROM committee_memberships
		WHERE member_id = $1 AND committee_id = $2 AND start_date IS NOT NULL
		ORDER BY start_date
	`
	rows, err := tx.QueryContext(ctx, query, memberID, committeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get membership spans: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan membership span: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
