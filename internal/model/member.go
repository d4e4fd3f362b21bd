package model

import (
	"database/sql"
	"time"
)

// Member represents a person who has ever held a Congressional seat.
// InOffice, Party, State, District and Chamber mirror the member's active term.
type Member struct {
	ID              int64
	BioguideID      sql.NullString
	FirstName       string
	MiddleName      sql.NullString
	LastName        string
	DisplayName     sql.NullString
	ImgURL          sql.NullString
	ProfileURL      sql.NullString
	InOffice        bool
	Party           sql.NullString
	State           sql.NullString
	District        sql.NullInt64
	Chamber         sql.NullString
	CreatedAt       time.Time
	UpdatedAt       time.Time
	SourceUpdatedAt sql.NullTime
}

// MemberTerm represents one contiguous span of service in one chamber/state/district/party
type MemberTerm struct {
	ID        int64
	MemberID  int64
	Chamber   string
	State     string
	District  sql.NullInt64
	Party     sql.NullString
	StartDate time.Time
	EndDate   sql.NullTime
}

// Open reports whether the term has no end date
func (t MemberTerm) Open() bool {
	return !t.EndDate.Valid
}

// ActiveOn reports whether the term is ongoing or ends after the given day
func (t MemberTerm) ActiveOn(day time.Time) bool {
	return !t.EndDate.Valid || t.EndDate.Time.After(day)
}

// MemberFilter restricts a member listing. Empty fields do not filter.
type MemberFilter struct {
	State   string
	Chamber string
}

// MemberMeta represents member data reported by the upstream source
type MemberMeta struct {
	BioguideID      string
	FirstName       string
	MiddleName      string
	LastName        string
	DisplayName     string
	ImgURL          string
	ProfileURL      string
	SourceUpdatedAt *time.Time
	Terms           []TermMeta
}

// TermMeta represents a term of service reported by the upstream source
type TermMeta struct {
	BioguideID string
	Chamber    string
	State      string
	District   *int
	Party      string
	StartDate  time.Time
	EndDate    *time.Time
}

// Name returns the display name, falling back to first and last name
func (m Member) Name() string {
	if m.DisplayName.Valid && m.DisplayName.String != "" {
		return m.DisplayName.String
	}
	return m.FirstName + " " + m.LastName
}
