package model

import (
	"database/sql"
	"time"
)

// Committee represents a standing or select committee, or a subcommittee when ParentID is set
type Committee struct {
	ID         int64
	ExternalID string
	Name       string
	Chamber    sql.NullString
	ParentID   sql.NullInt64
}

// CommitteeMembership represents a member's tenure on a committee
type CommitteeMembership struct {
	ID          int64
	MemberID    int64
	CommitteeID int64
	Role        sql.NullString
	StartDate   sql.NullTime
	EndDate     sql.NullTime
}

// CommitteeMeta represents committee data reported by the upstream source
type CommitteeMeta struct {
	ExternalID       string
	Name             string
	Chamber          string
	ParentExternalID string
}

// MembershipMeta represents a committee assignment reported by the upstream source
type MembershipMeta struct {
	BioguideID          string
	CommitteeExternalID string
	Role                string
	StartDate           *time.Time
	EndDate             *time.Time
}
