package store

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jjenkins/poliwatch/internal/model"
)

var stateCodePattern = regexp.MustCompile(`^[A-Z]{2}$`)

const (
	minDistrict = 0
	maxDistrict = 56
)

func invalid(entity, field, constraint string, value any) *ValidationError {
	return &ValidationError{Entity: entity, Field: field, Constraint: constraint, Value: value}
}

func checkLength(entity, field, value string, max int) error {
	if len(value) > max {
		return invalid(entity, field, "exceeds maximum length "+strconv.Itoa(max), len(value))
	}
	return nil
}

func checkRequired(entity, field, value string) error {
	if strings.TrimSpace(value) == "" {
		return invalid(entity, field, "is required", nil)
	}
	return nil
}

// validateStateCode enforces the two uppercase letter form; lowercase is rejected, not corrected
func validateStateCode(entity, state string) error {
	if !stateCodePattern.MatchString(state) {
		return invalid(entity, "state", "must be two uppercase letters", state)
	}
	return nil
}

func validateDistrict(entity string, district *int) error {
	if district == nil {
		return nil
	}
	if *district < minDistrict || *district > maxDistrict {
		return invalid(entity, "district", "must be null or between 0 and 56", *district)
	}
	return nil
}

func validateMemberMeta(meta *model.MemberMeta) (*model.MemberMeta, error) {
	const entity = "member"
	m := *meta
	m.BioguideID = strings.TrimSpace(m.BioguideID)

	if err := checkRequired(entity, "bioguide_id", m.BioguideID); err != nil {
		return nil, err
	}
	if err := checkRequired(entity, "first_name", m.FirstName); err != nil {
		return nil, err
	}
	if err := checkRequired(entity, "last_name", m.LastName); err != nil {
		return nil, err
	}

	lengths := []struct {
		field string
		value string
		max   int
	}{
		{"bioguide_id", m.BioguideID, 32},
		{"first_name", m.FirstName, 100},
		{"middle_name", m.MiddleName, 50},
		{"last_name", m.LastName, 100},
		{"display_name", m.DisplayName, 200},
		{"img_url", m.ImgURL, 300},
		{"profile_url", m.ProfileURL, 300},
	}
	for _, l := range lengths {
		if err := checkLength(entity, l.field, l.value, l.max); err != nil {
			return nil, err
		}
	}

	if m.SourceUpdatedAt != nil {
		// stored timestamps keep microseconds
		ts := m.SourceUpdatedAt.Truncate(time.Microsecond)
		m.SourceUpdatedAt = &ts
	}

	m.Terms = make([]model.TermMeta, len(meta.Terms))
	for i, t := range meta.Terms {
		if t.BioguideID == "" {
			t.BioguideID = m.BioguideID
		}
		if t.BioguideID != m.BioguideID {
			return nil, invalid("term", "bioguide_id", "must match the enclosing member", t.BioguideID)
		}
		normalized, err := validateTermMeta(&t)
		if err != nil {
			return nil, err
		}
		m.Terms[i] = *normalized
	}

	return &m, nil
}

func validateTermMeta(meta *model.TermMeta) (*model.TermMeta, error) {
	const entity = "term"
	t := *meta

	if err := checkRequired(entity, "bioguide_id", t.BioguideID); err != nil {
		return nil, err
	}

	chamber, ok := model.ParseChamber(t.Chamber)
	if !ok {
		return nil, invalid(entity, "chamber", "must be House or Senate", t.Chamber)
	}
	t.Chamber = chamber

	if err := validateStateCode(entity, t.State); err != nil {
		return nil, err
	}
	if err := validateDistrict(entity, t.District); err != nil {
		return nil, err
	}
	if t.Chamber == model.ChamberSenate && t.District != nil {
		return nil, invalid(entity, "district", "must be null for Senate terms", *t.District)
	}

	if t.Party != "" {
		party, ok := model.ParseParty(t.Party)
		if !ok {
			return nil, invalid(entity, "party", "is not a recognized party", t.Party)
		}
		t.Party = party
	}

	if t.StartDate.IsZero() {
		return nil, invalid(entity, "start_date", "is required", nil)
	}
	t.StartDate = dateOf(t.StartDate)
	if t.EndDate != nil {
		end := dateOf(*t.EndDate)
		if end.Before(t.StartDate) {
			return nil, invalid(entity, "end_date", "must not precede start_date", end.Format(time.DateOnly))
		}
		t.EndDate = &end
	}

	return &t, nil
}

func validateVoteKey(entity string, key model.VoteKey) (model.VoteKey, error) {
	if key.Congress <= 0 {
		return key, invalid(entity, "congress", "must be positive", key.Congress)
	}
	if key.Session != 1 && key.Session != 2 {
		return key, invalid(entity, "session", "must be 1 or 2", key.Session)
	}
	if key.RollNumber <= 0 {
		return key, invalid(entity, "roll_number", "must be positive", key.RollNumber)
	}
	chamber, ok := model.ParseChamber(key.Chamber)
	if !ok {
		return key, invalid(entity, "chamber", "must be House or Senate", key.Chamber)
	}
	key.Chamber = chamber
	return key, nil
}

func validateBillKey(entity string, key model.BillKey) (model.BillKey, error) {
	if key.Congress <= 0 {
		return key, invalid(entity, "congress", "must be positive", key.Congress)
	}
	billType, ok := model.ParseBillType(key.Type)
	if !ok {
		return key, invalid(entity, "bill_type", "is not a recognized bill type", key.Type)
	}
	key.Type = billType
	if key.Number <= 0 {
		return key, invalid(entity, "number", "must be positive", key.Number)
	}
	return key, nil
}

func validateVoteMeta(meta *model.VoteMeta) (*model.VoteMeta, error) {
	const entity = "vote"
	v := *meta

	key, err := validateVoteKey(entity, v.VoteKey)
	if err != nil {
		return nil, err
	}
	v.VoteKey = key

	if err := checkRequired(entity, "question", v.Question); err != nil {
		return nil, err
	}
	if err := checkLength(entity, "question", v.Question, 500); err != nil {
		return nil, err
	}
	if err := checkLength(entity, "description", v.Description, 2000); err != nil {
		return nil, err
	}
	if err := checkLength(entity, "result", v.Result, 32); err != nil {
		return nil, err
	}
	if err := checkLength(entity, "threshold", v.Threshold, 32); err != nil {
		return nil, err
	}

	counts := []struct {
		field string
		value *int
	}{
		{"yea_count", v.YeaCount},
		{"nay_count", v.NayCount},
		{"present_count", v.PresentCount},
		{"not_voting_count", v.NotVotingCount},
	}
	for _, c := range counts {
		if c.value != nil && (*c.value < 0 || *c.value > 32767) {
			return nil, invalid(entity, c.field, "must be between 0 and 32767", *c.value)
		}
	}

	if v.Date != nil {
		d := v.Date.Truncate(time.Microsecond)
		v.Date = &d
	}

	if v.Bill != nil {
		bill, err := validateBillKey(entity, *v.Bill)
		if err != nil {
			return nil, err
		}
		v.Bill = &bill
	}

	return &v, nil
}

func validateVoteRecordMeta(meta *model.VoteRecordMeta) (*model.VoteRecordMeta, model.Position, error) {
	const entity = "vote_record"
	r := *meta

	if err := checkRequired(entity, "bioguide_id", r.BioguideID); err != nil {
		return nil, "", err
	}
	key, err := validateVoteKey(entity, r.Vote)
	if err != nil {
		return nil, "", err
	}
	r.Vote = key

	position, ok := model.ParsePosition(r.Position)
	if !ok {
		return nil, "", invalid(entity, "position", "must be one of Yea, Nay, Present, Not Voting, Absent, Unknown", r.Position)
	}
	return &r, position, nil
}

func validateCommitteeMeta(meta *model.CommitteeMeta) (*model.CommitteeMeta, error) {
	const entity = "committee"
	c := *meta
	c.ExternalID = strings.TrimSpace(c.ExternalID)
	c.ParentExternalID = strings.TrimSpace(c.ParentExternalID)

	if err := checkRequired(entity, "external_id", c.ExternalID); err != nil {
		return nil, err
	}
	if err := checkLength(entity, "external_id", c.ExternalID, 64); err != nil {
		return nil, err
	}
	if err := checkRequired(entity, "name", c.Name); err != nil {
		return nil, err
	}
	if err := checkLength(entity, "name", c.Name, 300); err != nil {
		return nil, err
	}
	if c.Chamber != "" {
		chamber, ok := model.ParseCommitteeChamber(c.Chamber)
		if !ok {
			return nil, invalid(entity, "chamber", "must be House, Senate or Joint", c.Chamber)
		}
		c.Chamber = chamber
	}
	if c.ParentExternalID == c.ExternalID {
		return nil, invalid(entity, "parent_external_id", "must not create a cycle", c.ParentExternalID)
	}
	return &c, nil
}

func validateMembershipMeta(meta *model.MembershipMeta) (*model.MembershipMeta, error) {
	const entity = "membership"
	m := *meta

	if err := checkRequired(entity, "bioguide_id", m.BioguideID); err != nil {
		return nil, err
	}
	if err := checkRequired(entity, "committee_external_id", m.CommitteeExternalID); err != nil {
		return nil, err
	}
	if m.Role != "" {
		role, ok := model.ParseRole(m.Role)
		if !ok {
			return nil, invalid(entity, "role", "must be one of Chair, Ranking Member, Vice Chair, Member, Ex Officio, Other", m.Role)
		}
		m.Role = role
	}
	if m.StartDate != nil {
		start := dateOf(*m.StartDate)
		m.StartDate = &start
	}
	if m.EndDate != nil {
		end := dateOf(*m.EndDate)
		if m.StartDate != nil && end.Before(*m.StartDate) {
			return nil, invalid(entity, "end_date", "must not precede start_date", end.Format(time.DateOnly))
		}
		m.EndDate = &end
	}
	return &m, nil
}

func validateBillMeta(meta *model.BillMeta) (*model.BillMeta, error) {
	const entity = "bill"
	b := *meta

	key, err := validateBillKey(entity, b.BillKey)
	if err != nil {
		return nil, err
	}
	b.BillKey = key
	b.SponsorBioguideID = strings.TrimSpace(b.SponsorBioguideID)
	if b.IntroducedDate != nil {
		d := dateOf(*b.IntroducedDate)
		b.IntroducedDate = &d
	}
	return &b, nil
}
