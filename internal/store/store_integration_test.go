//go:build integration

package store_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/jjenkins/poliwatch/internal/model"
	"github.com/jjenkins/poliwatch/internal/store"
	"github.com/jjenkins/poliwatch/internal/testutil"
)

type StoreSuite struct {
	suite.Suite
	postgres   *testutil.PostgresContainer
	members    *store.MemberStore
	votes      *store.VoteStore
	committees *store.CommitteeStore
	bills      *store.BillStore
	runs       *store.RunStore
	today      time.Time
}

func TestStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupSuite() {
	s.postgres = testutil.NewPostgresContainer(s.T())
	s.today = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s.members = store.NewMemberStore(s.postgres.DB, store.WithClock(func() time.Time { return s.today }))
	s.votes = store.NewVoteStore(s.postgres.DB)
	s.committees = store.NewCommitteeStore(s.postgres.DB)
	s.bills = store.NewBillStore(s.postgres.DB)
	s.runs = store.NewRunStore(s.postgres.DB)
}

func (s *StoreSuite) SetupTest() {
	s.today = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	err := s.postgres.TruncateTables(context.Background(), testutil.AllTables...)
	s.Require().NoError(err)
}

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func datePtr(s string) *time.Time {
	t := date(s)
	return &t
}

func intPtr(v int) *int { return &v }

func sanders() *model.MemberMeta {
	return &model.MemberMeta{
		BioguideID:  "S000033",
		FirstName:   "Bernard",
		LastName:    "Sanders",
		DisplayName: "Bernie Sanders",
	}
}

func vtSenate(start string) *model.TermMeta {
	return &model.TermMeta{
		BioguideID: "S000033",
		Chamber:    model.ChamberSenate,
		State:      "VT",
		Party:      model.PartyIndependent,
		StartDate:  date(start),
	}
}

func (s *StoreSuite) mustMember(meta *model.MemberMeta) *model.Member {
	ctx := context.Background()
	_, err := s.members.UpsertMember(ctx, meta)
	s.Require().NoError(err)
	m, err := s.members.GetByBioguide(ctx, meta.BioguideID)
	s.Require().NoError(err)
	s.Require().NotNil(m)
	return m
}

func (s *StoreSuite) reload(id int64) *model.Member {
	m, err := s.members.GetByID(context.Background(), id)
	s.Require().NoError(err)
	s.Require().NotNil(m)
	return m
}

func (s *StoreSuite) TestUpsertMemberIsIdempotent() {
	ctx := context.Background()

	outcome, err := s.members.UpsertMember(ctx, sanders())
	s.Require().NoError(err)
	s.Equal(store.Created, outcome)

	first, err := s.members.GetByBioguide(ctx, "S000033")
	s.Require().NoError(err)

	outcome, err = s.members.UpsertMember(ctx, sanders())
	s.Require().NoError(err)
	s.Equal(store.Unchanged, outcome)

	second, err := s.members.GetByBioguide(ctx, "S000033")
	s.Require().NoError(err)
	s.Equal(first.ID, second.ID)
	s.Equal(first.UpdatedAt, second.UpdatedAt)

	all, err := s.members.List(ctx, model.MemberFilter{})
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *StoreSuite) TestUpsertMemberSkipsStaleRecords() {
	ctx := context.Background()

	newer := sanders()
	newer.SourceUpdatedAt = datePtr("2024-03-01")
	_, err := s.members.UpsertMember(ctx, newer)
	s.Require().NoError(err)

	older := sanders()
	older.FirstName = "Bernie"
	older.SourceUpdatedAt = datePtr("2024-01-01")
	outcome, err := s.members.UpsertMember(ctx, older)
	s.Require().NoError(err)
	s.Equal(store.Skipped, outcome)

	m, err := s.members.GetByBioguide(ctx, "S000033")
	s.Require().NoError(err)
	s.Equal("Bernard", m.FirstName)

	undated := sanders()
	undated.FirstName = "Bernie"
	outcome, err = s.members.UpsertMember(ctx, undated)
	s.Require().NoError(err)
	s.Equal(store.Updated, outcome)

	m, err = s.members.GetByBioguide(ctx, "S000033")
	s.Require().NoError(err)
	s.Equal("Bernie", m.FirstName)
	s.True(m.SourceUpdatedAt.Time.Equal(date("2024-03-01")))
}

func (s *StoreSuite) TestSnapshotWithoutTerms() {
	m := s.mustMember(sanders())
	s.False(m.InOffice)
	s.False(m.State.Valid)
	s.False(m.Chamber.Valid)
	s.False(m.Party.Valid)
	s.False(m.District.Valid)
}

// Term A open since 2011, then term B from 2023: A is closed and B drives the snapshot.
func (s *StoreSuite) TestTermSuccessionVermontSenate() {
	ctx := context.Background()
	m := s.mustMember(sanders())

	outcome, err := s.members.UpsertTerm(ctx, vtSenate("2011-01-01"))
	s.Require().NoError(err)
	s.Equal(store.Created, outcome)

	outcome, err = s.members.UpsertTerm(ctx, vtSenate("2023-01-01"))
	s.Require().NoError(err)
	s.Equal(store.Created, outcome)

	terms, err := s.members.GetTerms(ctx, m.ID)
	s.Require().NoError(err)
	s.Require().Len(terms, 2)
	s.True(terms[0].EndDate.Valid)
	s.True(terms[0].EndDate.Time.Equal(date("2023-01-01")))
	s.False(terms[1].EndDate.Valid)

	got := s.reload(m.ID)
	s.True(got.InOffice)
	s.Equal("VT", got.State.String)
	s.Equal(model.ChamberSenate, got.Chamber.String)
	s.Equal(model.PartyIndependent, got.Party.String)

	list, err := s.members.List(ctx, model.MemberFilter{State: "VT", Chamber: model.ChamberSenate})
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(m.ID, list[0].ID)
	s.True(list[0].InOffice)

	list, err = s.members.List(ctx, model.MemberFilter{State: "VT", Chamber: model.ChamberHouse})
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *StoreSuite) TestSnapshotClearedWhenAllTermsClosed() {
	ctx := context.Background()
	m := s.mustMember(sanders())

	_, err := s.members.UpsertTerm(ctx, vtSenate("2011-01-01"))
	s.Require().NoError(err)
	s.True(s.reload(m.ID).InOffice)

	closing := vtSenate("2011-01-01")
	closing.EndDate = datePtr("2017-01-03")
	outcome, err := s.members.UpsertTerm(ctx, closing)
	s.Require().NoError(err)
	s.Equal(store.Updated, outcome)

	got := s.reload(m.ID)
	s.False(got.InOffice)
	s.False(got.State.Valid)
	s.False(got.Chamber.Valid)
}

func (s *StoreSuite) TestFutureEndDateExpiresOnRecompute() {
	ctx := context.Background()
	m := s.mustMember(sanders())

	term := vtSenate("2019-01-03")
	term.EndDate = datePtr("2025-01-03")
	_, err := s.members.UpsertTerm(ctx, term)
	s.Require().NoError(err)
	s.True(s.reload(m.ID).InOffice)

	s.today = time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	changed, err := s.members.RecomputeAllSnapshots(ctx)
	s.Require().NoError(err)
	s.Equal(1, changed)
	s.False(s.reload(m.ID).InOffice)

	changed, err = s.members.RecomputeAllSnapshots(ctx)
	s.Require().NoError(err)
	s.Equal(0, changed)
}

func (s *StoreSuite) TestMemberWithNestedTerms() {
	ctx := context.Background()

	meta := sanders()
	house := vtSenate("1991-01-03")
	house.Chamber = model.ChamberHouse
	house.District = intPtr(0)
	house.EndDate = datePtr("2007-01-03")
	meta.Terms = []model.TermMeta{*house, *vtSenate("2007-01-04")}

	outcome, err := s.members.UpsertMember(ctx, meta)
	s.Require().NoError(err)
	s.Equal(store.Created, outcome)

	m, err := s.members.GetByBioguide(ctx, "S000033")
	s.Require().NoError(err)
	s.True(m.InOffice)
	s.Equal(model.ChamberSenate, m.Chamber.String)
	s.False(m.District.Valid)

	outcome, err = s.members.UpsertMember(ctx, meta)
	s.Require().NoError(err)
	s.Equal(store.Unchanged, outcome)
}

func (s *StoreSuite) TestTermRejectsBadDistrictAndState() {
	ctx := context.Background()
	m := s.mustMember(sanders())

	bad := vtSenate("2023-01-03")
	bad.Chamber = model.ChamberHouse
	bad.District = intPtr(57)
	_, err := s.members.UpsertTerm(ctx, bad)
	s.True(errors.Is(err, store.ErrValidation))

	lower := vtSenate("2023-01-03")
	lower.State = "vt"
	_, err = s.members.UpsertTerm(ctx, lower)
	s.True(errors.Is(err, store.ErrValidation))

	terms, err := s.members.GetTerms(ctx, m.ID)
	s.Require().NoError(err)
	s.Empty(terms)
}

func (s *StoreSuite) TestStorageRejectsBadDistrict() {
	m := s.mustMember(sanders())
	_, err := s.postgres.DB.Exec(`
		INSERT INTO member_terms (member_id, chamber, state, district, start_date)
		VALUES ($1, 'House', 'VT', 99, '2023-01-03')`, m.ID)
	s.Error(err)

	_, err = s.postgres.DB.Exec(`
		INSERT INTO member_terms (member_id, chamber, state, start_date)
		VALUES ($1, 'House', 'vt', '2023-01-03')`, m.ID)
	s.Error(err)
}

func (s *StoreSuite) TestTermForUnknownMember() {
	_, err := s.members.UpsertTerm(context.Background(), vtSenate("2023-01-03"))
	s.True(errors.Is(err, store.ErrValidation))
}

func (s *StoreSuite) TestSameDayOpenTermsConflict() {
	ctx := context.Background()
	s.mustMember(sanders())

	house := vtSenate("2023-01-03")
	house.Chamber = model.ChamberHouse
	house.District = intPtr(0)
	_, err := s.members.UpsertTerm(ctx, house)
	s.Require().NoError(err)

	_, err = s.members.UpsertTerm(ctx, vtSenate("2023-01-03"))
	s.True(errors.Is(err, store.ErrConflict))
}

func (s *StoreSuite) TestConcurrentTermUpsertsKeepOneOpenTerm() {
	ctx := context.Background()
	m := s.mustMember(sanders())

	starts := []string{"2001-01-03", "2005-01-03", "2009-01-03", "2013-01-03", "2017-01-03", "2021-01-03"}
	var wg sync.WaitGroup
	for _, start := range starts {
		wg.Add(1)
		go func(start string) {
			defer wg.Done()
			_, err := s.members.UpsertTerm(ctx, vtSenate(start))
			s.NoError(err)
		}(start)
	}
	wg.Wait()

	terms, err := s.members.GetTerms(ctx, m.ID)
	s.Require().NoError(err)
	s.Require().Len(terms, len(starts))

	open := 0
	for _, t := range terms {
		if t.Open() {
			open++
			s.True(t.StartDate.Equal(date("2021-01-03")))
		}
	}
	s.Equal(1, open)
}

func (s *StoreSuite) TestConcurrentMemberInsertsYieldOneRow() {
	ctx := context.Background()
	const goroutines = 20

	var wg sync.WaitGroup
	var created atomic.Int32
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome, err := s.members.UpsertMember(ctx, sanders())
			s.NoError(err)
			if outcome == store.Created {
				created.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), created.Load())
	all, err := s.members.List(ctx, model.MemberFilter{})
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *StoreSuite) senateVote(roll int) *model.VoteMeta {
	return &model.VoteMeta{
		VoteKey:  model.VoteKey{Congress: 118, Session: 1, Chamber: model.ChamberSenate, RollNumber: roll},
		Question: "On the Nomination",
		Result:   "Confirmed",
		YeaCount: intPtr(51),
		NayCount: intPtr(49),
	}
}

func (s *StoreSuite) TestVoteRecordsAreUniquePerMemberAndVote() {
	ctx := context.Background()
	m := s.mustMember(sanders())

	_, err := s.votes.UpsertVote(ctx, s.senateVote(12))
	s.Require().NoError(err)

	key := s.senateVote(12).VoteKey
	outcome, err := s.votes.UpsertVoteRecord(ctx, &model.VoteRecordMeta{BioguideID: "S000033", Vote: key, Position: "Yea"})
	s.Require().NoError(err)
	s.Equal(store.Created, outcome)

	outcome, err = s.votes.UpsertVoteRecord(ctx, &model.VoteRecordMeta{BioguideID: "S000033", Vote: key, Position: "Yea"})
	s.Require().NoError(err)
	s.Equal(store.Unchanged, outcome)

	outcome, err = s.votes.UpsertVoteRecord(ctx, &model.VoteRecordMeta{BioguideID: "S000033", Vote: key, Position: "No"})
	s.Require().NoError(err)
	s.Equal(store.Updated, outcome)

	vote, err := s.votes.GetVote(ctx, key)
	s.Require().NoError(err)
	records, err := s.votes.GetRecords(ctx, vote.ID)
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal(m.ID, records[0].MemberID)
	s.Equal(model.PositionNay, records[0].Position)
}

func (s *StoreSuite) TestVoteSessionThreeRejected() {
	ctx := context.Background()
	v := s.senateVote(1)
	v.Session = 3

	_, err := s.votes.UpsertVote(ctx, v)
	s.True(errors.Is(err, store.ErrValidation))

	var count int
	s.Require().NoError(s.postgres.DB.QueryRow(`SELECT COUNT(*) FROM votes`).Scan(&count))
	s.Zero(count)
}

func (s *StoreSuite) TestVoteCreatesStubBill() {
	ctx := context.Background()
	v := s.senateVote(3)
	v.Bill = &model.BillKey{Congress: 118, Type: "S.", Number: 870}

	outcome, err := s.votes.UpsertVote(ctx, v)
	s.Require().NoError(err)
	s.Equal(store.Created, outcome)

	bill, err := s.bills.GetByKey(ctx, model.BillKey{Congress: 118, Type: "s", Number: 870})
	s.Require().NoError(err)
	s.Require().NotNil(bill)
	s.False(bill.Title.Valid)

	outcome, err = s.votes.UpsertVote(ctx, v)
	s.Require().NoError(err)
	s.Equal(store.Unchanged, outcome)

	vote, err := s.votes.GetVote(ctx, v.VoteKey)
	s.Require().NoError(err)
	s.Equal(bill.ID, vote.BillID.Int64)
}

func (s *StoreSuite) TestDeleteMemberCascades() {
	ctx := context.Background()
	m := s.mustMember(sanders())
	_, err := s.members.UpsertTerm(ctx, vtSenate("2023-01-01"))
	s.Require().NoError(err)

	_, err = s.votes.UpsertVote(ctx, s.senateVote(5))
	s.Require().NoError(err)
	_, err = s.votes.UpsertVoteRecord(ctx, &model.VoteRecordMeta{BioguideID: "S000033", Vote: s.senateVote(5).VoteKey, Position: "Yea"})
	s.Require().NoError(err)

	_, err = s.committees.UpsertCommittee(ctx, &model.CommitteeMeta{ExternalID: "SSBU", Name: "Budget"})
	s.Require().NoError(err)
	_, err = s.committees.UpsertMembership(ctx, &model.MembershipMeta{BioguideID: "S000033", CommitteeExternalID: "SSBU", Role: "Chair"})
	s.Require().NoError(err)

	_, err = s.bills.UpsertBill(ctx, &model.BillMeta{
		BillKey:           model.BillKey{Congress: 118, Type: "s", Number: 1},
		Title:             "A bill",
		SponsorBioguideID: "S000033",
	})
	s.Require().NoError(err)

	deleted, err := s.members.Delete(ctx, m.ID)
	s.Require().NoError(err)
	s.True(deleted)

	counts := map[string]int{
		"member_terms":          0,
		"vote_records":          0,
		"committee_memberships": 0,
		"votes":                 1,
		"committees":            1,
		"bills":                 1,
	}
	for table, want := range counts {
		var got int
		s.Require().NoError(s.postgres.DB.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&got))
		s.Equal(want, got, table)
	}

	bill, err := s.bills.GetByKey(ctx, model.BillKey{Congress: 118, Type: "s", Number: 1})
	s.Require().NoError(err)
	s.False(bill.SponsorID.Valid)
}

func (s *StoreSuite) TestDeleteVoteCascadesRecords() {
	ctx := context.Background()
	m := s.mustMember(sanders())

	v := s.senateVote(7)
	v.Bill = &model.BillKey{Congress: 118, Type: "s", Number: 42}
	_, err := s.votes.UpsertVote(ctx, v)
	s.Require().NoError(err)
	_, err = s.votes.UpsertVoteRecord(ctx, &model.VoteRecordMeta{BioguideID: "S000033", Vote: v.VoteKey, Position: "Yea"})
	s.Require().NoError(err)

	vote, err := s.votes.GetVote(ctx, v.VoteKey)
	s.Require().NoError(err)
	s.Require().NotNil(vote)

	deleted, err := s.votes.DeleteVote(ctx, vote.ID)
	s.Require().NoError(err)
	s.True(deleted)

	var records int
	s.Require().NoError(s.postgres.DB.QueryRow(`SELECT COUNT(*) FROM vote_records WHERE vote_id = $1`, vote.ID).Scan(&records))
	s.Zero(records)

	gone, err := s.votes.GetVote(ctx, v.VoteKey)
	s.Require().NoError(err)
	s.Nil(gone)

	s.Equal(m.BioguideID, s.reload(m.ID).BioguideID)
	bill, err := s.bills.GetByKey(ctx, *v.Bill)
	s.Require().NoError(err)
	s.NotNil(bill)

	deleted, err = s.votes.DeleteVote(ctx, vote.ID)
	s.Require().NoError(err)
	s.False(deleted)
}

func (s *StoreSuite) TestVoteRecordForMissingVoteWritesNothing() {
	ctx := context.Background()
	s.mustMember(sanders())

	outcome, err := s.votes.UpsertVoteRecord(ctx, &model.VoteRecordMeta{BioguideID: "S000033", Vote: s.senateVote(99).VoteKey, Position: "Yea"})
	s.True(errors.Is(err, store.ErrValidation))
	s.Equal(store.Unchanged, outcome)

	var count int
	s.Require().NoError(s.postgres.DB.QueryRow(`SELECT COUNT(*) FROM vote_records`).Scan(&count))
	s.Zero(count)
}

func (s *StoreSuite) TestListBySponsor() {
	ctx := context.Background()
	m := s.mustMember(sanders())

	for _, meta := range []*model.BillMeta{
		{BillKey: model.BillKey{Congress: 118, Type: "s", Number: 20}, Title: "Second", SponsorBioguideID: "S000033"},
		{BillKey: model.BillKey{Congress: 117, Type: "s", Number: 5}, Title: "First", SponsorBioguideID: "S000033"},
		{BillKey: model.BillKey{Congress: 118, Type: "hr", Number: 1}, Title: "Unsponsored"},
	} {
		_, err := s.bills.UpsertBill(ctx, meta)
		s.Require().NoError(err)
	}

	bills, err := s.bills.ListBySponsor(ctx, m.ID)
	s.Require().NoError(err)
	s.Require().Len(bills, 2)
	s.Equal(117, bills[0].Congress)
	s.Equal("First", bills[0].Title.String)
	s.Equal(20, bills[1].Number)

	none, err := s.bills.ListBySponsor(ctx, m.ID+1000)
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *StoreSuite) TestCommitteeHierarchyRejectsCycles() {
	ctx := context.Background()

	_, err := s.committees.UpsertCommittee(ctx, &model.CommitteeMeta{ExternalID: "A", Name: "A"})
	s.Require().NoError(err)
	_, err = s.committees.UpsertCommittee(ctx, &model.CommitteeMeta{ExternalID: "B", Name: "B", ParentExternalID: "A"})
	s.Require().NoError(err)
	_, err = s.committees.UpsertCommittee(ctx, &model.CommitteeMeta{ExternalID: "C", Name: "C", ParentExternalID: "B"})
	s.Require().NoError(err)

	_, err = s.committees.UpsertCommittee(ctx, &model.CommitteeMeta{ExternalID: "A", Name: "A", ParentExternalID: "C"})
	s.True(errors.Is(err, store.ErrValidation))

	_, err = s.committees.UpsertCommittee(ctx, &model.CommitteeMeta{ExternalID: "D", Name: "D", ParentExternalID: "missing"})
	s.True(errors.Is(err, store.ErrValidation))

	a, err := s.committees.GetByExternalID(ctx, "A")
	s.Require().NoError(err)
	s.False(a.ParentID.Valid)

	children, err := s.committees.GetChildren(ctx, a.ID)
	s.Require().NoError(err)
	s.Require().Len(children, 1)
	s.Equal("B", children[0].ExternalID)

	deleted, err := s.committees.DeleteCommittee(ctx, a.ID)
	s.Require().NoError(err)
	s.True(deleted)

	c, err := s.committees.GetByExternalID(ctx, "C")
	s.Require().NoError(err)
	s.Nil(c)
}

func (s *StoreSuite) TestMembershipSpans() {
	ctx := context.Background()
	m := s.mustMember(sanders())
	_, err := s.committees.UpsertCommittee(ctx, &model.CommitteeMeta{ExternalID: "SSBU", Name: "Budget", Chamber: "Senate"})
	s.Require().NoError(err)

	first := &model.MembershipMeta{BioguideID: "S000033", CommitteeExternalID: "SSBU", Role: "Member", StartDate: datePtr("2015-01-06")}
	outcome, err := s.committees.UpsertMembership(ctx, first)
	s.Require().NoError(err)
	s.Equal(store.Created, outcome)

	closed := *first
	closed.EndDate = datePtr("2021-01-03")
	outcome, err = s.committees.CloseMembership(ctx, &closed)
	s.Require().NoError(err)
	s.Equal(store.Updated, outcome)

	second := &model.MembershipMeta{BioguideID: "S000033", CommitteeExternalID: "SSBU", Role: "Chair", StartDate: datePtr("2021-02-02")}
	outcome, err = s.committees.UpsertMembership(ctx, second)
	s.Require().NoError(err)
	s.Equal(store.Created, outcome)

	reopen := *first
	outcome, err = s.committees.UpsertMembership(ctx, &reopen)
	s.Require().NoError(err)
	s.Equal(store.Unchanged, outcome)

	_, err = s.committees.UpsertMembership(ctx, &model.MembershipMeta{BioguideID: "S000033", CommitteeExternalID: "SSBU"})
	s.True(errors.Is(err, store.ErrConflict))

	missing := &model.MembershipMeta{BioguideID: "S000033", CommitteeExternalID: "SSBU", StartDate: datePtr("1999-01-01"), EndDate: datePtr("2000-01-01")}
	_, err = s.committees.CloseMembership(ctx, missing)
	s.True(errors.Is(err, store.ErrNotFound))

	memberships, err := s.committees.GetMemberships(ctx, m.ID)
	s.Require().NoError(err)
	s.Require().Len(memberships, 2)
	s.True(memberships[0].EndDate.Valid)
	s.Equal(model.RoleChair, memberships[1].Role.String)
}

func (s *StoreSuite) TestBillSponsorMustExist() {
	_, err := s.bills.UpsertBill(context.Background(), &model.BillMeta{
		BillKey:           model.BillKey{Congress: 118, Type: "hr", Number: 1},
		SponsorBioguideID: "NOPE",
	})
	s.True(errors.Is(err, store.ErrValidation))
}

func (s *StoreSuite) TestIngestRuns() {
	ctx := context.Background()

	latest, err := s.runs.Latest(ctx)
	s.Require().NoError(err)
	s.Nil(latest)

	run, err := s.runs.StartRun(ctx, "members.jsonl")
	s.Require().NoError(err)
	run.Total, run.Imported, run.Failed = 3, 2, 1
	s.Require().NoError(s.runs.FinishRun(ctx, run))

	latest, err = s.runs.Latest(ctx)
	s.Require().NoError(err)
	s.Require().NotNil(latest)
	s.Equal(run.ID, latest.ID)
	s.Equal(2, latest.Imported)
	s.True(latest.FinishedAt.Valid)
}

func (s *StoreSuite) TestMigrateIsIdempotent() {
	ctx := context.Background()
	s.Require().NoError(store.Migrate(ctx, s.postgres.DB))

	version, err := store.SchemaVersion(ctx, s.postgres.DB)
	s.Require().NoError(err)
	s.Equal(1, version)
}
