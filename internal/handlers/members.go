package handlers

import (
	"context"
	"database/sql"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jjenkins/poliwatch/internal/model"
	"github.com/jjenkins/poliwatch/internal/templates"
)

// MemberReader is the read side of the member store
type MemberReader interface {
	GetByID(ctx context.Context, id int64) (*model.Member, error)
	List(ctx context.Context, filter model.MemberFilter) ([]model.Member, error)
	GetTerms(ctx context.Context, memberID int64) ([]model.MemberTerm, error)
}

// BillReader lists the bills a member sponsored
type BillReader interface {
	ListBySponsor(ctx context.Context, memberID int64) ([]model.Bill, error)
}

type termResponse struct {
	Chamber   string  `json:"chamber"`
	State     string  `json:"state"`
	District  *int64  `json:"district"`
	Party     *string `json:"party"`
	StartDate string  `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

type memberResponse struct {
	ID          int64          `json:"id"`
	BioguideID  *string        `json:"bioguide_id"`
	FirstName   string         `json:"first_name"`
	MiddleName  *string        `json:"middle_name"`
	LastName    string         `json:"last_name"`
	DisplayName *string        `json:"display_name"`
	ImgURL      *string        `json:"img_url"`
	ProfileURL  *string        `json:"profile_url"`
	InOffice    bool           `json:"in_office"`
	Party       *string        `json:"party"`
	State       *string        `json:"state"`
	District    *int64         `json:"district"`
	Chamber     *string        `json:"chamber"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Terms       []termResponse `json:"terms,omitempty"`
	Sponsored   []billResponse `json:"sponsored_bills,omitempty"`
}

type billResponse struct {
	Congress       int     `json:"congress"`
	BillType       string  `json:"bill_type"`
	Number         int     `json:"number"`
	Title          *string `json:"title"`
	IntroducedDate *string `json:"introduced_date"`
}

func optString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func toMemberResponse(m model.Member) memberResponse {
	resp := memberResponse{
		ID:          m.ID,
		BioguideID:  optString(m.BioguideID),
		FirstName:   m.FirstName,
		MiddleName:  optString(m.MiddleName),
		LastName:    m.LastName,
		DisplayName: optString(m.DisplayName),
		ImgURL:      optString(m.ImgURL),
		ProfileURL:  optString(m.ProfileURL),
		InOffice:    m.InOffice,
		Party:       optString(m.Party),
		State:       optString(m.State),
		Chamber:     optString(m.Chamber),
		UpdatedAt:   m.UpdatedAt,
	}
	if m.District.Valid {
		d := m.District.Int64
		resp.District = &d
	}
	return resp
}

func toTermResponse(t model.MemberTerm) termResponse {
	resp := termResponse{
		Chamber:   t.Chamber,
		State:     t.State,
		Party:     optString(t.Party),
		StartDate: t.StartDate.Format(time.DateOnly),
	}
	if t.District.Valid {
		d := t.District.Int64
		resp.District = &d
	}
	if t.EndDate.Valid {
		end := t.EndDate.Time.Format(time.DateOnly)
		resp.EndDate = &end
	}
	return resp
}

func toBillResponse(b model.Bill) billResponse {
	resp := billResponse{
		Congress: b.Congress,
		BillType: b.BillType,
		Number:   b.Number,
		Title:    optString(b.Title),
	}
	if b.IntroducedDate.Valid {
		d := b.IntroducedDate.Time.Format(time.DateOnly)
		resp.IntroducedDate = &d
	}
	return resp
}

func filterFromQuery(c *fiber.Ctx) model.MemberFilter {
	return model.MemberFilter{
		State:   strings.TrimSpace(c.Query("state")),
		Chamber: strings.TrimSpace(c.Query("chamber")),
	}
}

// ListMembersHandler returns members matching ?state= and ?chamber= as JSON
func ListMembersHandler(members MemberReader, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := members.List(c.UserContext(), filterFromQuery(c))
		if err != nil {
			logger.Error("failed to list members", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Error loading members"})
		}

		resp := make([]memberResponse, 0, len(list))
		for _, m := range list {
			resp = append(resp, toMemberResponse(m))
		}
		return c.JSON(resp)
	}
}

// GetMemberHandler returns one member with its term history and sponsored bills.
// Only the detail view carries sponsored_bills; the list view omits it.
func GetMemberHandler(members MemberReader, bills BillReader, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		id, err := strconv.ParseInt(c.Params("id"), 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid member id"})
		}

		member, err := members.GetByID(ctx, id)
		if err != nil {
			logger.Error("failed to get member", "id", id, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Error loading member"})
		}
		if member == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Member not found"})
		}

		terms, err := members.GetTerms(ctx, id)
		if err != nil {
			logger.Error("failed to get terms", "id", id, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Error loading member"})
		}

		sponsored, err := bills.ListBySponsor(ctx, id)
		if err != nil {
			logger.Error("failed to get sponsored bills", "id", id, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Error loading member"})
		}

		resp := toMemberResponse(*member)
		for _, t := range terms {
			resp.Terms = append(resp.Terms, toTermResponse(t))
		}
		for _, b := range sponsored {
			resp.Sponsored = append(resp.Sponsored, toBillResponse(b))
		}
		return c.JSON(resp)
	}
}

// PoliticiansHandler renders the member listing page
func PoliticiansHandler(members MemberReader, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter := filterFromQuery(c)

		list, err := members.List(c.UserContext(), filter)
		if err != nil {
			logger.Error("failed to list members", "error", err)
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading members")
		}

		page := templates.Politicians(list, filter)
		handler := adaptor.HTTPHandler(templ.Handler(page))

		return handler(c)
	}
}
