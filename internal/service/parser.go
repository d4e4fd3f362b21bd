package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jjenkins/poliwatch/internal/model"
)

// Event kinds accepted on the ingestion stream
const (
	KindMember          = "member"
	KindTerm            = "term"
	KindVote            = "vote"
	KindVoteRecord      = "vote_record"
	KindCommittee       = "committee"
	KindMembership      = "membership"
	KindMembershipClose = "membership_close"
	KindBill            = "bill"
)

// Event is one decoded upsert event. Exactly one payload field is set, matching Kind.
type Event struct {
	Kind       string
	Member     *model.MemberMeta
	Term       *model.TermMeta
	Vote       *model.VoteMeta
	VoteRecord *model.VoteRecordMeta
	Committee  *model.CommitteeMeta
	Membership *model.MembershipMeta
	Bill       *model.BillMeta
}

// Key returns the natural key the event refers to, for logs
func (e *Event) Key() string {
	switch {
	case e.Member != nil:
		return e.Member.BioguideID
	case e.Term != nil:
		return fmt.Sprintf("%s/%s/%s", e.Term.BioguideID, e.Term.Chamber, e.Term.StartDate.Format(time.DateOnly))
	case e.Vote != nil:
		return e.Vote.VoteKey.String()
	case e.VoteRecord != nil:
		return e.VoteRecord.BioguideID + "@" + e.VoteRecord.Vote.String()
	case e.Committee != nil:
		return e.Committee.ExternalID
	case e.Membership != nil:
		return e.Membership.BioguideID + "@" + e.Membership.CommitteeExternalID
	case e.Bill != nil:
		return e.Bill.BillKey.String()
	}
	return ""
}

// date accepts "2006-01-02" or an RFC 3339 timestamp
type date struct {
	time.Time
}

func (d *date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}

func (d *date) ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

type envelope struct {
	Kind       string          `json:"kind"`
	Member     json.RawMessage `json:"member"`
	Term       json.RawMessage `json:"term"`
	Vote       json.RawMessage `json:"vote"`
	VoteRecord json.RawMessage `json:"vote_record"`
	Committee  json.RawMessage `json:"committee"`
	Membership json.RawMessage `json:"membership"`
	Bill       json.RawMessage `json:"bill"`
}

// payloadFields maps each kind to the envelope field that carries its payload
var payloadFields = map[string]string{
	KindMember:          "member",
	KindTerm:            "term",
	KindVote:            "vote",
	KindVoteRecord:      "vote_record",
	KindCommittee:       "committee",
	KindMembership:      "membership",
	KindMembershipClose: "membership",
	KindBill:            "bill",
}

// present lists the payload fields that were sent, in envelope order
func (e *envelope) present() []string {
	fields := []struct {
		name string
		raw  json.RawMessage
	}{
		{"member", e.Member},
		{"term", e.Term},
		{"vote", e.Vote},
		{"vote_record", e.VoteRecord},
		{"committee", e.Committee},
		{"membership", e.Membership},
		{"bill", e.Bill},
	}
	var names []string
	for _, f := range fields {
		if len(f.raw) > 0 && string(f.raw) != "null" {
			names = append(names, f.name)
		}
	}
	return names
}

type termPayload struct {
	BioguideID string `json:"bioguide_id"`
	Chamber    string `json:"chamber"`
	State      string `json:"state"`
	District   *int   `json:"district"`
	Party      string `json:"party"`
	StartDate  *date  `json:"start_date"`
	EndDate    *date  `json:"end_date"`
}

func (p termPayload) meta() model.TermMeta {
	t := model.TermMeta{
		BioguideID: p.BioguideID,
		Chamber:    p.Chamber,
		State:      p.State,
		District:   p.District,
		Party:      p.Party,
		EndDate:    p.EndDate.ptr(),
	}
	if start := p.StartDate.ptr(); start != nil {
		t.StartDate = *start
	}
	return t
}

type memberPayload struct {
	BioguideID      string        `json:"bioguide_id"`
	FirstName       string        `json:"first_name"`
	MiddleName      string        `json:"middle_name"`
	LastName        string        `json:"last_name"`
	DisplayName     string        `json:"display_name"`
	ImgURL          string        `json:"img_url"`
	ProfileURL      string        `json:"profile_url"`
	SourceUpdatedAt *date         `json:"source_updated_at"`
	Terms           []termPayload `json:"terms"`
}

type billKeyPayload struct {
	Congress int    `json:"congress"`
	Type     string `json:"bill_type"`
	Number   int    `json:"number"`
}

func (p billKeyPayload) key() model.BillKey {
	return model.BillKey{Congress: p.Congress, Type: p.Type, Number: p.Number}
}

type voteKeyPayload struct {
	Congress   int    `json:"congress"`
	Session    int    `json:"session"`
	Chamber    string `json:"chamber"`
	RollNumber int    `json:"roll_number"`
}

func (p voteKeyPayload) key() model.VoteKey {
	return model.VoteKey{Congress: p.Congress, Session: p.Session, Chamber: p.Chamber, RollNumber: p.RollNumber}
}

type votePayload struct {
	voteKeyPayload
	Question       string          `json:"question"`
	Description    string          `json:"description"`
	Date           *date           `json:"vote_date"`
	Result         string          `json:"result"`
	Threshold      string          `json:"threshold"`
	YeaCount       *int            `json:"yea_count"`
	NayCount       *int            `json:"nay_count"`
	PresentCount   *int            `json:"present_count"`
	NotVotingCount *int            `json:"not_voting_count"`
	Bill           *billKeyPayload `json:"bill"`
}

type voteRecordPayload struct {
	BioguideID string         `json:"bioguide_id"`
	Vote       voteKeyPayload `json:"vote"`
	Position   string         `json:"position"`
}

type committeePayload struct {
	ExternalID       string `json:"external_id"`
	Name             string `json:"name"`
	Chamber          string `json:"chamber"`
	ParentExternalID string `json:"parent_external_id"`
}

type membershipPayload struct {
	BioguideID          string `json:"bioguide_id"`
	CommitteeExternalID string `json:"committee_external_id"`
	Role                string `json:"role"`
	StartDate           *date  `json:"start_date"`
	EndDate             *date  `json:"end_date"`
}

type billPayload struct {
	billKeyPayload
	Title             string `json:"title"`
	IntroducedDate    *date  `json:"introduced_date"`
	SponsorBioguideID string `json:"sponsor_bioguide_id"`
}

// Parser decodes upsert events from their JSON envelope
type Parser struct{}

// NewParser creates a new Parser
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes one event. Unknown fields are rejected so that typos surface as failures.
func (p *Parser) Parse(data []byte) (*Event, error) {
	var env envelope
	if err := decodeStrict(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode event: %w", err)
	}

	field, ok := payloadFields[env.Kind]
	switch {
	case env.Kind == "":
		return nil, fmt.Errorf("event has no kind")
	case !ok:
		return nil, fmt.Errorf("unknown event kind %q", env.Kind)
	}
	for _, name := range env.present() {
		if name != field {
			return nil, fmt.Errorf("unexpected %s payload on %s event", name, env.Kind)
		}
	}

	ev := &Event{Kind: env.Kind}
	var err error
	switch env.Kind {
	case KindMember:
		var m memberPayload
		if err = decodeStrict(env.Member, &m); err == nil {
			ev.Member = &model.MemberMeta{
				BioguideID:      m.BioguideID,
				FirstName:       m.FirstName,
				MiddleName:      m.MiddleName,
				LastName:        m.LastName,
				DisplayName:     m.DisplayName,
				ImgURL:          m.ImgURL,
				ProfileURL:      m.ProfileURL,
				SourceUpdatedAt: m.SourceUpdatedAt.ptr(),
			}
			for _, t := range m.Terms {
				ev.Member.Terms = append(ev.Member.Terms, t.meta())
			}
		}
	case KindTerm:
		var t termPayload
		if err = decodeStrict(env.Term, &t); err == nil {
			meta := t.meta()
			ev.Term = &meta
		}
	case KindVote:
		var v votePayload
		if err = decodeStrict(env.Vote, &v); err == nil {
			ev.Vote = &model.VoteMeta{
				VoteKey:        v.key(),
				Question:       v.Question,
				Description:    v.Description,
				Date:           v.Date.ptr(),
				Result:         v.Result,
				Threshold:      v.Threshold,
				YeaCount:       v.YeaCount,
				NayCount:       v.NayCount,
				PresentCount:   v.PresentCount,
				NotVotingCount: v.NotVotingCount,
			}
			if v.Bill != nil {
				key := v.Bill.key()
				ev.Vote.Bill = &key
			}
		}
	case KindVoteRecord:
		var r voteRecordPayload
		if err = decodeStrict(env.VoteRecord, &r); err == nil {
			ev.VoteRecord = &model.VoteRecordMeta{
				BioguideID: r.BioguideID,
				Vote:       r.Vote.key(),
				Position:   r.Position,
			}
		}
	case KindCommittee:
		var c committeePayload
		if err = decodeStrict(env.Committee, &c); err == nil {
			ev.Committee = &model.CommitteeMeta{
				ExternalID:       c.ExternalID,
				Name:             c.Name,
				Chamber:          c.Chamber,
				ParentExternalID: c.ParentExternalID,
			}
		}
	case KindMembership, KindMembershipClose:
		var m membershipPayload
		if err = decodeStrict(env.Membership, &m); err == nil {
			ev.Membership = &model.MembershipMeta{
				BioguideID:          m.BioguideID,
				CommitteeExternalID: m.CommitteeExternalID,
				Role:                m.Role,
				StartDate:           m.StartDate.ptr(),
				EndDate:             m.EndDate.ptr(),
			}
		}
	case KindBill:
		var b billPayload
		if err = decodeStrict(env.Bill, &b); err == nil {
			ev.Bill = &model.BillMeta{
				BillKey:           b.key(),
				Title:             b.Title,
				IntroducedDate:    b.IntroducedDate.ptr(),
				SponsorBioguideID: b.SponsorBioguideID,
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", env.Kind, err)
	}
	return ev, nil
}

func decodeStrict(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return fmt.Errorf("payload is missing")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
