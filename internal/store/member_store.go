package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jjenkins/poliwatch/internal/model"
)

const memberColumns = `
	id, bioguide_id, first_name, middle_name, last_name, display_name,
	img_url, profile_url, in_office, party, state, district, chamber,
	created_at, updated_at, source_updated_at
`

// MemberStore handles database operations for members and their terms
type MemberStore struct {
	db      *sql.DB
	cutover CutoverPolicy
	now     func() time.Time
}

// MemberStoreOption configures a MemberStore
type MemberStoreOption func(*MemberStore)

// WithCutoverPolicy sets how open terms are closed when a successor appears
func WithCutoverPolicy(p CutoverPolicy) MemberStoreOption {
	return func(s *MemberStore) {
		s.cutover = p
	}
}

// WithClock overrides the clock used to decide which terms are still active
func WithClock(now func() time.Time) MemberStoreOption {
	return func(s *MemberStore) {
		s.now = now
	}
}

// NewMemberStore creates a new MemberStore
func NewMemberStore(db *sql.DB, opts ...MemberStoreOption) *MemberStore {
	s := &MemberStore{
		db:      db,
		cutover: CutoverAtStart,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func scanMember(row rowScanner) (*model.Member, error) {
	var m model.Member
	err := row.Scan(
		&m.ID,
		&m.BioguideID,
		&m.FirstName,
		&m.MiddleName,
		&m.LastName,
		&m.DisplayName,
		&m.ImgURL,
		&m.ProfileURL,
		&m.InOffice,
		&m.Party,
		&m.State,
		&m.District,
		&m.Chamber,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.SourceUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByID retrieves a member by internal ID. Returns nil if there is no such member.
func (s *MemberStore) GetByID(ctx context.Context, id int64) (*model.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`

	m, err := scanMember(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member %d: %w", id, err)
	}
	return m, nil
}

// GetByBioguide retrieves a member by bioguide ID. Returns nil if there is no such member.
func (s *MemberStore) GetByBioguide(ctx context.Context, bioguideID string) (*model.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE bioguide_id = $1`

	m, err := scanMember(s.db.QueryRowContext(ctx, query, bioguideID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member %s: %w", bioguideID, err)
	}
	return m, nil
}

// List retrieves members matching the filter, ordered by ID.
// Filtering reads the snapshot columns only.
func (s *MemberStore) List(ctx context.Context, filter model.MemberFilter) ([]model.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE TRUE`
	var args []any

	if filter.State != "" {
		args = append(args, filter.State)
		query += fmt.Sprintf(" AND state = $%d", len(args))
	}
	if filter.Chamber != "" {
		chamber := filter.Chamber
		if c, ok := model.ParseChamber(chamber); ok {
			chamber = c
		}
		args = append(args, chamber)
		query += fmt.Sprintf(" AND chamber = $%d", len(args))
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []model.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, *m)
	}

	return members, rows.Err()
}

// GetTerms retrieves a member's terms ordered by start date
func (s *MemberStore) GetTerms(ctx context.Context, memberID int64) ([]model.MemberTerm, error) {
	return loadTerms(ctx, s.db, memberID, false)
}

// Delete removes a member. Terms, vote records and committee memberships go with it.
func (s *MemberStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM members WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete member %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete member %d: %w", id, err)
	}
	return n > 0, nil
}

// UpsertMember applies a member record matched by bioguide ID, along with any terms it carries.
// Records older than the stored source_updated_at are skipped.
func (s *MemberStore) UpsertMember(ctx context.Context, meta *model.MemberMeta) (Outcome, error) {
	m, err := validateMemberMeta(meta)
	if err != nil {
		return Unchanged, err
	}

	var outcome Outcome
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		existing, err := selectMemberForUpdate(ctx, tx, m.BioguideID)
		if err != nil {
			return err
		}

		var memberID int64
		if existing == nil {
			id, inserted, err := insertMember(ctx, tx, m)
			if err != nil {
				return err
			}
			if inserted {
				memberID = id
				outcome = Created
			} else {
				// lost an insert race; the row is committed now
				existing, err = selectMemberForUpdate(ctx, tx, m.BioguideID)
				if err != nil {
					return err
				}
				if existing == nil {
					return fmt.Errorf("member %s vanished after insert conflict", m.BioguideID)
				}
			}
		}

		if existing != nil {
			memberID = existing.ID
			if m.SourceUpdatedAt != nil && existing.SourceUpdatedAt.Valid &&
				m.SourceUpdatedAt.Before(existing.SourceUpdatedAt.Time) {
				outcome = Skipped
				return nil
			}
			changed, err := updateMember(ctx, tx, existing, m)
			if err != nil {
				return err
			}
			if changed {
				outcome = Updated
			}
		}

		termsChanged := false
		for i := range m.Terms {
			termOutcome, err := s.applyTerm(ctx, tx, memberID, &m.Terms[i])
			if err != nil {
				return err
			}
			if termOutcome != Unchanged {
				termsChanged = true
			}
			outcome = outcome.merge(termOutcome)
		}

		if termsChanged {
			if _, err := s.recomputeSnapshot(ctx, tx, memberID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Unchanged, err
	}
	return outcome, nil
}

// UpsertTerm applies one term for the member with the term's bioguide ID and recomputes the
// member's snapshot
func (s *MemberStore) UpsertTerm(ctx context.Context, meta *model.TermMeta) (Outcome, error) {
	t, err := validateTermMeta(meta)
	if err != nil {
		return Unchanged, err
	}

	var outcome Outcome
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		memberID, err := memberIDByBioguide(ctx, tx, "term", t.BioguideID, true)
		if err != nil {
			return err
		}

		outcome, err = s.applyTerm(ctx, tx, memberID, t)
		if err != nil {
			return err
		}
		if outcome == Unchanged {
			return nil
		}
		_, err = s.recomputeSnapshot(ctx, tx, memberID)
		return err
	})
	if err != nil {
		return Unchanged, err
	}
	return outcome, nil
}

// RecomputeSnapshot rewrites the member's snapshot from its term history.
// Reports whether the snapshot changed.
func (s *MemberStore) RecomputeSnapshot(ctx context.Context, memberID int64) (bool, error) {
	var changed bool
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		var id int64
		err := tx.QueryRowContext(ctx, `SELECT id FROM members WHERE id = $1 FOR UPDATE`, memberID).Scan(&id)
		if err == sql.ErrNoRows {
			return fmt.Errorf("member %d: %w", memberID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to lock member %d: %w", memberID, err)
		}

		changed, err = s.recomputeSnapshot(ctx, tx, memberID)
		return err
	})
	return changed, err
}

// RecomputeAllSnapshots recomputes every member's snapshot, one transaction per member,
// and returns how many changed. Terms whose end date has passed stop counting as active.
func (s *MemberStore) RecomputeAllSnapshots(ctx context.Context) (int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM members ORDER BY id`)
	if err != nil {
		return 0, fmt.Errorf("failed to list member ids: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan member id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	changed := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return changed, err
		}
		ok, err := s.RecomputeSnapshot(ctx, id)
		if err != nil {
			return changed, err
		}
		if ok {
			changed++
		}
	}
	return changed, nil
}

func selectMemberForUpdate(ctx context.Context, tx *sql.Tx, bioguideID string) (*model.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE bioguide_id = $1 FOR UPDATE`

	m, err := scanMember(tx.QueryRowContext(ctx, query, bioguideID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member %s: %w", bioguideID, err)
	}
	return m, nil
}

// insertMember reports inserted=false when a concurrent writer created the row first
func insertMember(ctx context.Context, tx *sql.Tx, m *model.MemberMeta) (id int64, inserted bool, err error) {
	query := `
		INSERT INTO members (bioguide_id, first_name, middle_name, last_name, display_name,
		                     img_url, profile_url, source_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (bioguide_id) DO NOTHING
		RETURNING id
	`

	err = tx.QueryRowContext(ctx, query,
		m.BioguideID,
		m.FirstName,
		nullString(m.MiddleName),
		m.LastName,
		nullString(m.DisplayName),
		nullString(m.ImgURL),
		nullString(m.ProfileURL),
		nullTime(m.SourceUpdatedAt),
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to insert member %s: %w", m.BioguideID, storageError("member", err))
	}
	return id, true, nil
}

// updateMember writes descriptive fields if any differ. A missing source timestamp keeps the stored one.
func updateMember(ctx context.Context, tx *sql.Tx, existing *model.Member, m *model.MemberMeta) (bool, error) {
	stamp := existing.SourceUpdatedAt
	if m.SourceUpdatedAt != nil {
		stamp = nullTime(m.SourceUpdatedAt)
	}

	if existing.FirstName == m.FirstName &&
		existing.MiddleName == nullString(m.MiddleName) &&
		existing.LastName == m.LastName &&
		existing.DisplayName == nullString(m.DisplayName) &&
		existing.ImgURL == nullString(m.ImgURL) &&
		existing.ProfileURL == nullString(m.ProfileURL) &&
		sameNullTime(existing.SourceUpdatedAt, stamp) {
		return false, nil
	}

	query := `
		UPDATE members
		SET first_name = $2, middle_name = $3, last_name = $4, display_name = $5,
		    img_url = $6, profile_url = $7, source_updated_at = $8, updated_at = now()
		WHERE id = $1
	`
	_, err := tx.ExecContext(ctx, query,
		existing.ID,
		m.FirstName,
		nullString(m.MiddleName),
		m.LastName,
		nullString(m.DisplayName),
		nullString(m.ImgURL),
		nullString(m.ProfileURL),
		stamp,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update member %s: %w", m.BioguideID, storageError("member", err))
	}
	return true, nil
}

func loadTerms(ctx context.Context, q querier, memberID int64, lock bool) ([]model.MemberTerm, error) {
	query := `
		SELECT id, member_id, chamber, state, district, party, start_date, end_date
		FROM member_terms
		WHERE member_id = $1
		ORDER BY start_date, id
	`
	if lock {
		query += ` FOR UPDATE`
	}

	rows, err := q.QueryContext(ctx, query, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to get terms for member %d: %w", memberID, err)
	}
	defer rows.Close()

	var terms []model.MemberTerm
	for rows.Next() {
		var t model.MemberTerm
		err := rows.Scan(
			&t.ID,
			&t.MemberID,
			&t.Chamber,
			&t.State,
			&t.District,
			&t.Party,
			&t.StartDate,
			&t.EndDate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan term: %w", err)
		}
		terms = append(terms, t)
	}

	return terms, rows.Err()
}

// applyTerm reconciles one validated term against the member's stored terms.
// The caller holds the member row lock and recomputes the snapshot afterwards.
func (s *MemberStore) applyTerm(ctx context.Context, tx *sql.Tx, memberID int64, t *model.TermMeta) (Outcome, error) {
	terms, err := loadTerms(ctx, tx, memberID, true)
	if err != nil {
		return Unchanged, err
	}

	incoming := model.MemberTerm{
		MemberID:  memberID,
		Chamber:   t.Chamber,
		State:     t.State,
		District:  nullInt(t.District),
		Party:     nullString(t.Party),
		StartDate: t.StartDate,
		EndDate:   nullDate(t.EndDate),
	}

	plan, err := planTerm(terms, incoming, s.cutover)
	if err != nil {
		return Unchanged, err
	}
	if plan.empty() {
		return Unchanged, nil
	}

	for _, c := range plan.closes {
		_, err := tx.ExecContext(ctx, `UPDATE member_terms SET end_date = $2 WHERE id = $1`, c.id, c.endDate)
		if err != nil {
			return Unchanged, fmt.Errorf("failed to close term %d: %w", c.id, storageError("term", err))
		}
	}

	if u := plan.update; u != nil {
		query := `
			UPDATE member_terms
			SET state = $2, district = $3, party = $4, end_date = $5
			WHERE id = $1
		`
		_, err := tx.ExecContext(ctx, query, u.ID, u.State, u.District, u.Party, u.EndDate)
		if err != nil {
			return Unchanged, fmt.Errorf("failed to update term %d: %w", u.ID, storageError("term", err))
		}
		return Updated, nil
	}

	ins := plan.insert
	query := `
		INSERT INTO member_terms (member_id, chamber, state, district, party, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err = tx.QueryRowContext(ctx, query,
		memberID,
		ins.Chamber,
		ins.State,
		ins.District,
		ins.Party,
		ins.StartDate,
		ins.EndDate,
	).Scan(&ins.ID)
	if err != nil {
		return Unchanged, fmt.Errorf("failed to insert term for member %d: %w", memberID, storageError("term", err))
	}
	return Created, nil
}

// today is the current calendar day in UTC
func (s *MemberStore) today() time.Time {
	return dateOf(s.now().UTC())
}

// recomputeSnapshot copies the active term onto the member row. It is the only writer of
// the snapshot columns. Reports whether anything changed.
func (s *MemberStore) recomputeSnapshot(ctx context.Context, q querier, memberID int64) (bool, error) {
	terms, err := loadTerms(ctx, q, memberID, false)
	if err != nil {
		return false, err
	}
	snap := snapshotOf(selectActiveTerm(terms, s.today()))

	query := `
		UPDATE members
		SET in_office = $2::boolean, party = $3::varchar, state = $4::varchar,
		    district = $5::smallint, chamber = $6::varchar, updated_at = now()
		WHERE id = $1
		  AND (in_office, party, state, district, chamber)
		      IS DISTINCT FROM ($2::boolean, $3::varchar, $4::varchar, $5::smallint, $6::varchar)
	`
	res, err := q.ExecContext(ctx, query, memberID, snap.InOffice, snap.Party, snap.State, snap.District, snap.Chamber)
	if err != nil {
		return false, fmt.Errorf("failed to update snapshot for member %d: %w", memberID, storageError("member", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to update snapshot for member %d: %w", memberID, err)
	}
	return n > 0, nil
}
