package model

import (
	"database/sql"
	"fmt"
	"time"
)

// Bill represents a piece of legislation
type Bill struct {
	ID             int64
	Congress       int
	BillType       string
	Number         int
	Title          sql.NullString
	IntroducedDate sql.NullTime
	SponsorID      sql.NullInt64
	UpdatedAt      time.Time
}

// BillKey is the natural key of a bill
type BillKey struct {
	Congress int
	Type     string
	Number   int
}

func (k BillKey) String() string {
	return fmt.Sprintf("%d-%s-%d", k.Congress, k.Type, k.Number)
}

// BillMeta represents bill data reported by the upstream source
type BillMeta struct {
	BillKey
	Title             string
	IntroducedDate    *time.Time
	SponsorBioguideID string
}
