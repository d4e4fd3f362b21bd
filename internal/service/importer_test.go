package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/jjenkins/poliwatch/internal/model"
	"github.com/jjenkins/poliwatch/internal/service/mocks"
	"github.com/jjenkins/poliwatch/internal/store"
)

type ImporterSuite struct {
	suite.Suite
	ctrl           *gomock.Controller
	mockMembers    *mocks.MockMemberWriter
	mockVotes      *mocks.MockVoteWriter
	mockCommittees *mocks.MockCommitteeWriter
	mockBills      *mocks.MockBillWriter
	mockRuns       *mocks.MockRunRecorder
	metrics        *IngestMetrics
	importer       *Importer
	run            *model.IngestRun
}

func TestImporterSuite(t *testing.T) {
	suite.Run(t, new(ImporterSuite))
}

func (s *ImporterSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockMembers = mocks.NewMockMemberWriter(s.ctrl)
	s.mockVotes = mocks.NewMockVoteWriter(s.ctrl)
	s.mockCommittees = mocks.NewMockCommitteeWriter(s.ctrl)
	s.mockBills = mocks.NewMockBillWriter(s.ctrl)
	s.mockRuns = mocks.NewMockRunRecorder(s.ctrl)
	s.metrics = NewIngestMetrics(prometheus.NewRegistry())
	s.run = &model.IngestRun{ID: uuid.New(), Source: "test.jsonl"}

	s.importer = NewImporter(NewParser(), Writers{
		Members:    s.mockMembers,
		Votes:      s.mockVotes,
		Committees: s.mockCommittees,
		Bills:      s.mockBills,
		Runs:       s.mockRuns,
	}, s.metrics, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (s *ImporterSuite) expectRun() {
	s.mockRuns.EXPECT().StartRun(gomock.Any(), "test.jsonl").Return(s.run, nil)
	s.mockRuns.EXPECT().FinishRun(gomock.Any(), s.run).Return(nil)
}

func (s *ImporterSuite) TestImportAppliesEachKind() {
	ctx := context.Background()
	s.expectRun()

	input := strings.Join([]string{
		`{"kind":"member","member":{"bioguide_id":"S000033","first_name":"Bernard","last_name":"Sanders"}}`,
		`{"kind":"term","term":{"bioguide_id":"S000033","chamber":"Senate","state":"VT","party":"I","start_date":"2023-01-03"}}`,
		``,
		`{"kind":"bill","bill":{"congress":118,"bill_type":"s","number":1,"title":"A bill"}}`,
		`{"kind":"vote","vote":{"congress":118,"session":1,"chamber":"Senate","roll_number":5,"question":"On Passage","bill":{"congress":118,"bill_type":"s","number":1}}}`,
		`{"kind":"vote_record","vote_record":{"bioguide_id":"S000033","vote":{"congress":118,"session":1,"chamber":"Senate","roll_number":5},"position":"Aye"}}`,
		`{"kind":"committee","committee":{"external_id":"SSBU","name":"Budget"}}`,
		`{"kind":"membership","membership":{"bioguide_id":"S000033","committee_external_id":"SSBU","role":"Chair"}}`,
		`{"kind":"membership_close","membership":{"bioguide_id":"S000033","committee_external_id":"SSBU","end_date":"2025-01-03"}}`,
	}, "\n")

	s.mockMembers.EXPECT().UpsertMember(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, m *model.MemberMeta) (store.Outcome, error) {
			s.Equal("S000033", m.BioguideID)
			return store.Created, nil
		})
	s.mockMembers.EXPECT().UpsertTerm(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, t *model.TermMeta) (store.Outcome, error) {
			s.Equal("VT", t.State)
			s.Equal(2023, t.StartDate.Year())
			return store.Created, nil
		})
	s.mockBills.EXPECT().UpsertBill(gomock.Any(), gomock.Any()).Return(store.Unchanged, nil)
	s.mockVotes.EXPECT().UpsertVote(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, v *model.VoteMeta) (store.Outcome, error) {
			s.Require().NotNil(v.Bill)
			s.Equal(1, v.Bill.Number)
			return store.Created, nil
		})
	s.mockVotes.EXPECT().UpsertVoteRecord(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, r *model.VoteRecordMeta) (store.Outcome, error) {
			s.Equal("Aye", r.Position)
			s.Equal(5, r.Vote.RollNumber)
			return store.Updated, nil
		})
	s.mockCommittees.EXPECT().UpsertCommittee(gomock.Any(), gomock.Any()).Return(store.Created, nil)
	s.mockCommittees.EXPECT().UpsertMembership(gomock.Any(), gomock.Any()).Return(store.Created, nil)
	s.mockCommittees.EXPECT().CloseMembership(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, m *model.MembershipMeta) (store.Outcome, error) {
			s.Require().NotNil(m.EndDate)
			return store.Updated, nil
		})

	stats, err := s.importer.Import(ctx, "test.jsonl", strings.NewReader(input))
	s.Require().NoError(err)

	s.Equal(8, stats.Total)
	s.Equal(8, stats.Imported)
	s.Equal(7, stats.Changed)
	s.Equal(1, stats.Unchanged)
	s.Zero(stats.Failed)
	s.Equal(s.run.ID.String(), stats.RunID)
	s.Equal(8, s.run.Imported)

	s.Equal(float64(1), testutil.ToFloat64(s.metrics.Records.WithLabelValues(KindVoteRecord, "updated")))
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.Runs))
}

func (s *ImporterSuite) TestImportCollectsErrorsAndContinues() {
	ctx := context.Background()
	s.expectRun()

	input := strings.Join([]string{
		`not json`,
		`{"kind":"senator","senator":{}}`,
		`{"kind":"vote","vote":{"congress":118,"session":3,"chamber":"Senate","roll_number":1,"question":"Q"}}`,
		`{"kind":"member","member":{"bioguide_id":"S000033","first_name":"Bernard","last_name":"Sanders","nickname":"Bernie"}}`,
		`{"kind":"member","member":{"bioguide_id":"S000033","first_name":"Bernard","last_name":"Sanders","source_updated_at":"2020-01-01T00:00:00Z"}}`,
	}, "\n")

	s.mockVotes.EXPECT().UpsertVote(gomock.Any(), gomock.Any()).
		Return(store.Unchanged, &store.ValidationError{Entity: "vote", Field: "session", Constraint: "must be 1 or 2", Value: 3})
	s.mockMembers.EXPECT().UpsertMember(gomock.Any(), gomock.Any()).Return(store.Skipped, nil)

	stats, err := s.importer.Import(ctx, "test.jsonl", strings.NewReader(input))
	s.Require().NoError(err)

	s.Equal(5, stats.Total)
	s.Equal(4, stats.Failed)
	s.Equal(1, stats.Skipped)
	s.Require().Len(stats.Errors, 4)
	s.Equal(1, stats.Errors[0].Line)
	s.Equal(3, stats.Errors[2].Line)
	s.True(errors.Is(stats.Errors[2], store.ErrValidation))
	s.Equal(4, s.run.Failed)

	var out bytes.Buffer
	s.importer.PrintSummary(&out, stats)
	s.Contains(out.String(), "Failed:          4")
	s.Contains(out.String(), "line 3 (vote 118-3/Senate/1)")
}

func (s *ImporterSuite) TestImportStopsOnCancel() {
	ctx, cancel := context.WithCancel(context.Background())
	s.expectRun()

	input := strings.Join([]string{
		`{"kind":"committee","committee":{"external_id":"A","name":"A"}}`,
		`{"kind":"committee","committee":{"external_id":"B","name":"B"}}`,
	}, "\n")

	s.mockCommittees.EXPECT().UpsertCommittee(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, *model.CommitteeMeta) (store.Outcome, error) {
			cancel()
			return store.Created, nil
		})

	stats, err := s.importer.Import(ctx, "test.jsonl", strings.NewReader(input))
	s.ErrorIs(err, context.Canceled)
	s.Equal(1, stats.Total)
	s.Equal(1, s.run.Imported)
}

func (s *ImporterSuite) TestImportFailsWhenRunCannotStart() {
	s.mockRuns.EXPECT().StartRun(gomock.Any(), "test.jsonl").Return(nil, errors.New("db down"))

	_, err := s.importer.Import(context.Background(), "test.jsonl", strings.NewReader(""))
	s.Error(err)
}

func (s *ImporterSuite) TestApplyRejectsEmptyPayload() {
	_, err := s.importer.Apply(context.Background(), &Event{Kind: KindTerm})
	s.ErrorIs(err, errEmptyEvent)

	_, err = s.importer.Apply(context.Background(), &Event{Kind: "senator"})
	s.ErrorIs(err, errUnknownKind)
}
