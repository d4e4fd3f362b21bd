package store

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/jjenkins/poliwatch/internal/model"
)

// CutoverPolicy decides the end date given to an open term when a successor term appears
type CutoverPolicy string

const (
	// CutoverAtStart ends the predecessor on the day the successor starts
	CutoverAtStart CutoverPolicy = "start"
	// CutoverDayBefore ends the predecessor the day before the successor starts
	CutoverDayBefore CutoverPolicy = "day_before"
)

// ParseCutoverPolicy accepts "start" or "day_before"; empty means CutoverAtStart
func ParseCutoverPolicy(s string) (CutoverPolicy, error) {
	switch CutoverPolicy(s) {
	case "", CutoverAtStart:
		return CutoverAtStart, nil
	case CutoverDayBefore:
		return CutoverDayBefore, nil
	}
	return "", fmt.Errorf("unknown term cutover policy %q (want %q or %q)", s, CutoverAtStart, CutoverDayBefore)
}

// endFor returns the end date for a predecessor starting at predecessorStart.
// The result never precedes predecessorStart.
func (p CutoverPolicy) endFor(successorStart, predecessorStart time.Time) time.Time {
	end := successorStart
	if p == CutoverDayBefore {
		end = successorStart.AddDate(0, 0, -1)
	}
	if end.Before(predecessorStart) {
		return predecessorStart
	}
	return end
}

type termClose struct {
	id      int64
	endDate time.Time
}

// termPlan lists the writes needed to apply one incoming term
type termPlan struct {
	insert *model.MemberTerm
	update *model.MemberTerm
	closes []termClose
}

func (p termPlan) empty() bool {
	return p.insert == nil && p.update == nil && len(p.closes) == 0
}

func sameTermKey(a, b model.MemberTerm) bool {
	return a.Chamber == b.Chamber && a.StartDate.Equal(b.StartDate)
}

func describeTerm(t model.MemberTerm) string {
	return fmt.Sprintf("%s %s from %s", t.Chamber, t.State, t.StartDate.Format(time.DateOnly))
}

// planTerm reconciles an incoming term against the member's stored terms.
//
// A term with the same (chamber, start_date) is the same term reported again and is merged;
// a missing end date never reopens a closed term. Otherwise every open term that starts
// earlier is closed at the cutover date, and an open incoming term is itself closed by the
// earliest stored term that starts after it. Two open terms starting the same day cannot be
// ordered and are rejected.
func planTerm(existing []model.MemberTerm, incoming model.MemberTerm, policy CutoverPolicy) (termPlan, error) {
	var plan termPlan

	for _, t := range existing {
		if !sameTermKey(t, incoming) {
			continue
		}
		merged := t
		merged.State = incoming.State
		merged.District = incoming.District
		merged.Party = incoming.Party
		if incoming.EndDate.Valid {
			merged.EndDate = incoming.EndDate
		}
		if !termsEqual(t, merged) {
			plan.update = &merged
		}
		return plan, nil
	}

	ins := incoming
	var next *time.Time
	for _, t := range existing {
		switch {
		case t.StartDate.Before(ins.StartDate):
			if t.Open() {
				plan.closes = append(plan.closes, termClose{
					id:      t.ID,
					endDate: policy.endFor(ins.StartDate, t.StartDate),
				})
			}
		case t.StartDate.Equal(ins.StartDate):
			if t.Open() && ins.Open() {
				return termPlan{}, &ConflictError{
					Entity: "term",
					Reason: fmt.Sprintf("open term %s and incoming open term %s start on the same day",
						describeTerm(t), describeTerm(ins)),
					IDs: []int64{t.ID},
				}
			}
		default:
			if next == nil || t.StartDate.Before(*next) {
				start := t.StartDate
				next = &start
			}
		}
	}

	if ins.Open() && next != nil {
		ins.EndDate.Time = policy.endFor(*next, ins.StartDate)
		ins.EndDate.Valid = true
	}

	plan.insert = &ins
	return plan, nil
}

func termsEqual(a, b model.MemberTerm) bool {
	return a.Chamber == b.Chamber &&
		a.State == b.State &&
		a.District == b.District &&
		a.Party == b.Party &&
		a.StartDate.Equal(b.StartDate) &&
		sameNullTime(a.EndDate, b.EndDate)
}

// selectActiveTerm picks the term with a null or future end date and the latest start date.
// Ties prefer an open term, then the most recently inserted one. Returns nil if no term is active.
func selectActiveTerm(terms []model.MemberTerm, today time.Time) *model.MemberTerm {
	var active []model.MemberTerm
	for _, t := range terms {
		if t.ActiveOn(today) {
			active = append(active, t)
		}
	}
	if len(active) == 0 {
		return nil
	}

	sort.Slice(active, func(i, j int) bool {
		a, b := active[i], active[j]
		if !a.StartDate.Equal(b.StartDate) {
			return a.StartDate.After(b.StartDate)
		}
		if a.Open() != b.Open() {
			return a.Open()
		}
		return a.ID > b.ID
	})
	return &active[0]
}

// snapshot is the denormalized copy of the active term kept on members
type snapshot struct {
	InOffice bool
	Party    sql.NullString
	State    sql.NullString
	District sql.NullInt64
	Chamber  sql.NullString
}

func snapshotOf(term *model.MemberTerm) snapshot {
	if term == nil {
		return snapshot{}
	}
	return snapshot{
		InOffice: true,
		Party:    term.Party,
		State:    sql.NullString{String: term.State, Valid: true},
		District: term.District,
		Chamber:  sql.NullString{String: term.Chamber, Valid: true},
	}
}
