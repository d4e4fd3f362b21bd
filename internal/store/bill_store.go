package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jjenkins/poliwatch/internal/model"
)

// BillStore handles database operations for bills
type BillStore struct {
	db *sql.DB
}

// NewBillStore creates a new BillStore
func NewBillStore(db *sql.DB) *BillStore {
	return &BillStore{db: db}
}

const billColumns = `id, congress, bill_type, number, title, introduced_date, sponsor_id, updated_at`

func scanBill(row rowScanner) (*model.Bill, error) {
	var b model.Bill
	err := row.Scan(
		&b.ID,
		&b.Congress,
		&b.BillType,
		&b.Number,
		&b.Title,
		&b.IntroducedDate,
		&b.SponsorID,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetByKey retrieves a bill by its natural key. Returns nil if there is no such bill.
func (s *BillStore) GetByKey(ctx context.Context, key model.BillKey) (*model.Bill, error) {
	key, err := validateBillKey("bill", key)
	if err != nil {
		return nil, err
	}
	return selectBill(ctx, s.db, key, false)
}

// ListBySponsor retrieves the bills a member sponsored
func (s *BillStore) ListBySponsor(ctx context.Context, memberID int64) ([]model.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE sponsor_id = $1 ORDER BY congress, bill_type, number`

	rows, err := s.db.QueryContext(ctx, query, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bills for sponsor %d: %w", memberID, err)
	}
	defer rows.Close()

	var bills []model.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, *b)
	}
	return bills, rows.Err()
}

// UpsertBill applies a bill record matched by (congress, type, number). The sponsor, when given,
// must be a known member.
func (s *BillStore) UpsertBill(ctx context.Context, meta *model.BillMeta) (Outcome, error) {
	b, err := validateBillMeta(meta)
	if err != nil {
		return Unchanged, err
	}

	var outcome Outcome
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		var sponsor sql.NullInt64
		if b.SponsorBioguideID != "" {
			id, err := memberIDByBioguide(ctx, tx, "bill", b.SponsorBioguideID, false)
			if err != nil {
				var ve *ValidationError
				if errors.As(err, &ve) {
					ve.Field = "sponsor_bioguide_id"
				}
				return err
			}
			sponsor = sql.NullInt64{Int64: id, Valid: true}
		}

		existing, err := selectBill(ctx, tx, b.BillKey, true)
		if err != nil {
			return err
		}
		if existing == nil {
			id, err := insertBill(ctx, tx, b.BillKey)
			if err != nil {
				return err
			}
			if id != 0 {
				outcome = Created
			}
			existing, err = selectBill(ctx, tx, b.BillKey, true)
			if err != nil {
				return err
			}
			if existing == nil {
				return fmt.Errorf("bill %s vanished after insert", b.BillKey)
			}
		}

		title := nullString(b.Title)
		introduced := nullDate(b.IntroducedDate)
		if existing.Title == title && sameNullTime(existing.IntroducedDate, introduced) && existing.SponsorID == sponsor {
			return nil
		}

		query := `
			UPDATE bills
			SET title = $2, introduced_date = $3, sponsor_id = $4, updated_at = now()
			WHERE id = $1
		`
		if _, err := tx.ExecContext(ctx, query, existing.ID, title, introduced, sponsor); err != nil {
			return fmt.Errorf("failed to update bill %s: %w", b.BillKey, storageError("bill", err))
		}
		if outcome != Created {
			outcome = Updated
		}
		return nil
	})
	if err != nil {
		return Unchanged, err
	}
	return outcome, nil
}

func selectBill(ctx context.Context, q querier, key model.BillKey, lock bool) (*model.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE congress = $1 AND bill_type = $2 AND number = $3`
	if lock {
		query += ` FOR UPDATE`
	}

	b, err := scanBill(q.QueryRowContext(ctx, query, key.Congress, key.Type, key.Number))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill %s: %w", key, err)
	}
	return b, nil
}

// insertBill creates a bare bill row and returns its ID, or 0 if another writer created it first
func insertBill(ctx context.Context, tx *sql.Tx, key model.BillKey) (int64, error) {
	query := `
		INSERT INTO bills (congress, bill_type, number)
		VALUES ($1, $2, $3)
		ON CONFLICT (congress, bill_type, number) DO NOTHING
		RETURNING id
	`
	var id int64
	err := tx.QueryRowContext(ctx, query, key.Congress, key.Type, key.Number).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert bill %s: %w", key, storageError("bill", err))
	}
	return id, nil
}

// ensureBill resolves a bill reference, creating a stub row for bills not seen yet.
// Reports whether a stub was created.
func ensureBill(ctx context.Context, tx *sql.Tx, key model.BillKey) (int64, bool, error) {
	existing, err := selectBill(ctx, tx, key, false)
	if err != nil {
		return 0, false, err
	}
	if existing != nil {
		return existing.ID, false, nil
	}

	id, err := insertBill(ctx, tx, key)
	if err != nil {
		return 0, false, err
	}
	if id != 0 {
		return id, true, nil
	}

	existing, err = selectBill(ctx, tx, key, false)
	if err != nil {
		return 0, false, err
	}
	if existing == nil {
		return 0, false, fmt.Errorf("bill %s vanished after insert", key)
	}
	return existing.ID, false, nil
}
