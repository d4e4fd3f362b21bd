package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Sentinel errors. Typed errors below match them with errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
)

// ValidationError reports an input record that violates a field constraint
type ValidationError struct {
	Entity     string
	Field      string
	Constraint string
	Value      any
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("invalid %s: %s %s", e.Entity, e.Field, e.Constraint)
	}
	return fmt.Sprintf("invalid %s: %s %s (got %v)", e.Entity, e.Field, e.Constraint, e.Value)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ConflictError reports a natural-key collision that cannot be reconciled automatically.
// IDs lists the stored rows involved.
type ConflictError struct {
	Entity string
	Reason string
	IDs    []int64
}

func (e *ConflictError) Error() string {
	if len(e.IDs) == 0 {
		return fmt.Sprintf("%s conflict: %s", e.Entity, e.Reason)
	}
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = fmt.Sprintf("#%d", id)
	}
	return fmt.Sprintf("%s conflict: %s (rows %s)", e.Entity, e.Reason, strings.Join(ids, ", "))
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// Postgres error codes the store translates
const (
	pqForeignKeyViolation = "23503"
	pqUniqueViolation     = "23505"
	pqCheckViolation      = "23514"
)

// constraintFields maps storage constraints to the field they guard
var constraintFields = map[string]string{
	"ck_member_state_uc":          "state",
	"ck_member_district":          "district",
	"ck_member_party":             "party",
	"ck_member_chamber":           "chamber",
	"ck_member_snapshot":          "in_office",
	"ck_term_state_uc":            "state",
	"ck_term_district":            "district",
	"ck_term_senate_district":     "district",
	"ck_term_chamber":             "chamber",
	"ck_term_party":               "party",
	"ck_term_dates":               "end_date",
	"ck_bill_congress":            "congress",
	"ck_bill_number":              "number",
	"ck_bill_type":                "bill_type",
	"ck_vote_congress":            "congress",
	"ck_vote_session":             "session",
	"ck_vote_roll_number":         "roll_number",
	"ck_vote_chamber":             "chamber",
	"ck_vote_counts":              "counts",
	"ck_vote_record_position":     "position",
	"ck_committee_chamber":        "chamber",
	"ck_committee_not_own_parent": "parent_id",
	"ck_membership_role":          "role",
	"ck_membership_dates":         "end_date",
}

// storageError converts constraint violations raised by PostgreSQL into typed errors.
// Anything else is returned unchanged.
func storageError(entity string, err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case pqCheckViolation:
		field, ok := constraintFields[pqErr.Constraint]
		if !ok {
			field = "record"
		}
		return &ValidationError{
			Entity:     entity,
			Field:      field,
			Constraint: "violates " + pqErr.Constraint,
		}
	case pqForeignKeyViolation:
		return &ValidationError{
			Entity:     entity,
			Field:      "reference",
			Constraint: "violates " + pqErr.Constraint,
		}
	case pqUniqueViolation:
		return &ConflictError{
			Entity: entity,
			Reason: "duplicate key violates " + pqErr.Constraint,
		}
	}
	return err
}
