package templates

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.960 generate

import (
	"fmt"
	"strconv"

	"github.com/a-h/templ"

	"github.com/jjenkins/poliwatch/internal/model"
	"github.com/jjenkins/poliwatch/internal/service"
)

func district(m model.Member) string {
	if !m.District.Valid {
		return ""
	}
	if m.District.Int64 == 0 {
		return "At-large"
	}
	return strconv.FormatInt(m.District.Int64, 10)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func memberURL(m model.Member) templ.SafeURL {
	return templ.SafeURL(fmt.Sprintf("/v1/members/%d", m.ID))
}

func delegation(summary *service.Summary) string {
	return fmt.Sprintf("%s (%d)", summary.LargestDelegation, summary.DelegationSize)
}
