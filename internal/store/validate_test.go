package store

import (
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/poliwatch/internal/model"
)

func intPtr(v int) *int { return &v }

func requireValidation(t *testing.T, err error, field string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation), "want validation error, got %v", err)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, field, ve.Field)
}

func validTerm() model.TermMeta {
	return model.TermMeta{
		BioguideID: "S000033",
		Chamber:    "senate",
		State:      "VT",
		Party:      "I",
		StartDate:  time.Date(2023, 1, 3, 15, 4, 5, 0, time.UTC),
	}
}

func TestValidateTermMeta(t *testing.T) {
	term := validTerm()
	got, err := validateTermMeta(&term)
	require.NoError(t, err)
	assert.Equal(t, model.ChamberSenate, got.Chamber)
	assert.Equal(t, model.PartyIndependent, got.Party)
	assert.Equal(t, time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC), got.StartDate)
}

func TestValidateTermMeta_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.TermMeta)
		field  string
	}{
		{"lowercase state", func(m *model.TermMeta) { m.State = "vt" }, "state"},
		{"three letter state", func(m *model.TermMeta) { m.State = "VTX" }, "state"},
		{"district above range", func(m *model.TermMeta) { m.Chamber = "House"; m.District = intPtr(57) }, "district"},
		{"negative district", func(m *model.TermMeta) { m.Chamber = "House"; m.District = intPtr(-1) }, "district"},
		{"senate district", func(m *model.TermMeta) { m.District = intPtr(1) }, "district"},
		{"unknown chamber", func(m *model.TermMeta) { m.Chamber = "Joint" }, "chamber"},
		{"unknown party", func(m *model.TermMeta) { m.Party = "Whig" }, "party"},
		{"missing start", func(m *model.TermMeta) { m.StartDate = time.Time{} }, "start_date"},
		{"end before start", func(m *model.TermMeta) {
			end := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
			m.EndDate = &end
		}, "end_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term := validTerm()
			tt.mutate(&term)
			_, err := validateTermMeta(&term)
			requireValidation(t, err, tt.field)
		})
	}
}

func TestValidateTermMeta_AtLarge(t *testing.T) {
	term := validTerm()
	term.Chamber = "House"
	term.District = intPtr(0)
	_, err := validateTermMeta(&term)
	assert.NoError(t, err)
}

func TestValidateMemberMeta(t *testing.T) {
	meta := &model.MemberMeta{
		BioguideID: " S000033 ",
		FirstName:  "Bernard",
		LastName:   "Sanders",
		Terms:      []model.TermMeta{validTerm()},
	}
	meta.Terms[0].BioguideID = ""

	got, err := validateMemberMeta(meta)
	require.NoError(t, err)
	assert.Equal(t, "S000033", got.BioguideID)
	require.Len(t, got.Terms, 1)
	assert.Equal(t, "S000033", got.Terms[0].BioguideID)
	assert.Equal(t, model.ChamberSenate, got.Terms[0].Chamber)
	assert.Equal(t, "", meta.Terms[0].BioguideID, "input must not be modified")
}

func TestValidateMemberMeta_Rejects(t *testing.T) {
	_, err := validateMemberMeta(&model.MemberMeta{FirstName: "A", LastName: "B"})
	requireValidation(t, err, "bioguide_id")

	_, err = validateMemberMeta(&model.MemberMeta{BioguideID: "X1", LastName: "B"})
	requireValidation(t, err, "first_name")

	long := make([]byte, 101)
	for i := range long {
		long[i] = 'a'
	}
	_, err = validateMemberMeta(&model.MemberMeta{BioguideID: "X1", FirstName: "A", LastName: string(long)})
	requireValidation(t, err, "last_name")

	term := validTerm()
	term.BioguideID = "OTHER"
	_, err = validateMemberMeta(&model.MemberMeta{BioguideID: "X1", FirstName: "A", LastName: "B", Terms: []model.TermMeta{term}})
	requireValidation(t, err, "bioguide_id")
}

func TestValidateVoteMeta(t *testing.T) {
	base := model.VoteMeta{
		VoteKey:  model.VoteKey{Congress: 118, Session: 1, Chamber: "house", RollNumber: 42},
		Question: "On Passage",
		Bill:     &model.BillKey{Congress: 118, Type: "H.R.", Number: 2},
	}

	got, err := validateVoteMeta(&base)
	require.NoError(t, err)
	assert.Equal(t, model.ChamberHouse, got.Chamber)
	assert.Equal(t, "hr", got.Bill.Type)

	session3 := base
	session3.Session = 3
	_, err = validateVoteMeta(&session3)
	requireValidation(t, err, "session")

	noRoll := base
	noRoll.RollNumber = 0
	_, err = validateVoteMeta(&noRoll)
	requireValidation(t, err, "roll_number")

	negative := base
	negative.YeaCount = intPtr(-1)
	_, err = validateVoteMeta(&negative)
	requireValidation(t, err, "yea_count")

	noQuestion := base
	noQuestion.Question = " "
	_, err = validateVoteMeta(&noQuestion)
	requireValidation(t, err, "question")

	badBill := base
	badBill.Bill = &model.BillKey{Congress: 118, Type: "xyz", Number: 2}
	_, err = validateVoteMeta(&badBill)
	requireValidation(t, err, "bill_type")
}

func TestValidateVoteRecordMeta(t *testing.T) {
	key := model.VoteKey{Congress: 118, Session: 2, Chamber: "Senate", RollNumber: 7}

	_, pos, err := validateVoteRecordMeta(&model.VoteRecordMeta{BioguideID: "S000033", Vote: key, Position: "Aye"})
	require.NoError(t, err)
	assert.Equal(t, model.PositionYea, pos)

	_, pos, err = validateVoteRecordMeta(&model.VoteRecordMeta{BioguideID: "S000033", Vote: key})
	require.NoError(t, err)
	assert.Equal(t, model.PositionUnknown, pos)

	_, _, err = validateVoteRecordMeta(&model.VoteRecordMeta{BioguideID: "S000033", Vote: key, Position: "Maybe"})
	requireValidation(t, err, "position")
}

func TestValidateCommitteeMeta(t *testing.T) {
	got, err := validateCommitteeMeta(&model.CommitteeMeta{ExternalID: "SSFI", Name: "Finance", Chamber: "joint"})
	require.NoError(t, err)
	assert.Equal(t, model.ChamberJoint, got.Chamber)

	_, err = validateCommitteeMeta(&model.CommitteeMeta{ExternalID: "SSFI", Name: "Finance", ParentExternalID: "SSFI"})
	requireValidation(t, err, "parent_external_id")

	_, err = validateCommitteeMeta(&model.CommitteeMeta{ExternalID: "SSFI"})
	requireValidation(t, err, "name")
}

func TestValidateMembershipMeta(t *testing.T) {
	start := time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC)
	end := time.Date(2021, 1, 3, 0, 0, 0, 0, time.UTC)

	_, err := validateMembershipMeta(&model.MembershipMeta{
		BioguideID: "S000033", CommitteeExternalID: "SSFI", StartDate: &start, EndDate: &end,
	})
	requireValidation(t, err, "end_date")

	got, err := validateMembershipMeta(&model.MembershipMeta{
		BioguideID: "S000033", CommitteeExternalID: "SSFI", Role: "chairman",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleChair, got.Role)
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short", "file:a.jsonl", 300, "file:a.jsonl"},
		{"exact", "abc", 3, "abc"},
		{"ascii", "abcdef", 3, "abc"},
		{"multi-byte kept whole", "ééé", 2, "éé"},
		{"empty", "", 3, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncateRunes(tt.in, tt.n))
		})
	}
}

func TestTruncateRunesSourceLimit(t *testing.T) {
	// 299 ASCII bytes followed by a two-byte character straddles byte 300
	source := "file:" + strings.Repeat("a", 294) + "é" + "tail"
	got := truncateRunes(source, maxSourceLen)

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, maxSourceLen, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "é"))
}
