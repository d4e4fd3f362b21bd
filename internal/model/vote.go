package model

import (
	"database/sql"
	"fmt"
	"time"
)

// Vote represents one roll-call vote event
type Vote struct {
	ID             int64
	Congress       int
	Session        int
	Chamber        string
	RollNumber     int
	Question       string
	Description    sql.NullString
	VoteDate       sql.NullTime
	Result         sql.NullString
	Threshold      sql.NullString
	YeaCount       sql.NullInt64
	NayCount       sql.NullInt64
	PresentCount   sql.NullInt64
	NotVotingCount sql.NullInt64
	BillID         sql.NullInt64
}

// VoteRecord represents one member's recorded position on one vote
type VoteRecord struct {
	ID       int64
	MemberID int64
	VoteID   int64
	Position Position
}

// VoteKey is the natural key of a vote
type VoteKey struct {
	Congress   int
	Session    int
	Chamber    string
	RollNumber int
}

func (k VoteKey) String() string {
	return fmt.Sprintf("%d-%d/%s/%d", k.Congress, k.Session, k.Chamber, k.RollNumber)
}

// VoteMeta represents a roll-call vote reported by the upstream source
type VoteMeta struct {
	VoteKey
	Question       string
	Description    string
	Date           *time.Time
	Result         string
	Threshold      string
	YeaCount       *int
	NayCount       *int
	PresentCount   *int
	NotVotingCount *int
	Bill           *BillKey
}

// VoteRecordMeta represents a member position reported by the upstream source
type VoteRecordMeta struct {
	BioguideID string
	Vote       VoteKey
	Position   string
}
