package model

import "strings"

// Chambers of Congress
const (
	ChamberHouse  = "House"
	ChamberSenate = "Senate"
	// ChamberJoint is only valid for committees
	ChamberJoint = "Joint"
)

// Parties
const (
	PartyDemocratic  = "Democratic"
	PartyRepublican  = "Republican"
	PartyIndependent = "Independent"
	PartyLibertarian = "Libertarian"
	PartyOther       = "Other"
)

// Position is a member's recorded position on a roll-call vote
type Position string

const (
	PositionYea       Position = "Yea"
	PositionNay       Position = "Nay"
	PositionPresent   Position = "Present"
	PositionNotVoting Position = "Not Voting"
	PositionAbsent    Position = "Absent"
	PositionUnknown   Position = "Unknown"
)

// Committee roles
const (
	RoleChair         = "Chair"
	RoleRankingMember = "Ranking Member"
	RoleViceChair     = "Vice Chair"
	RoleMember        = "Member"
	RoleExOfficio     = "Ex Officio"
	RoleOther         = "Other"
)

// BillTypes lists the accepted bill type codes
var BillTypes = []string{"hr", "s", "hjres", "sjres", "hconres", "sconres", "hres", "sres"}

// ParseChamber normalizes a member chamber name
func ParseChamber(s string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "house", "house of representatives", "h":
		return ChamberHouse, true
	case "senate", "s":
		return ChamberSenate, true
	}
	return "", false
}

// ParseCommitteeChamber normalizes a committee chamber name, which may also be Joint
func ParseCommitteeChamber(s string) (string, bool) {
	if c, ok := ParseChamber(s); ok {
		return c, true
	}
	if strings.EqualFold(strings.TrimSpace(s), ChamberJoint) {
		return ChamberJoint, true
	}
	return "", false
}

// ParseParty normalizes a party name or its one-letter code
func ParseParty(s string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "democratic", "democrat", "d":
		return PartyDemocratic, true
	case "republican", "r":
		return PartyRepublican, true
	case "independent", "i", "id":
		return PartyIndependent, true
	case "libertarian", "l":
		return PartyLibertarian, true
	case "other":
		return PartyOther, true
	}
	return "", false
}

// ParsePosition normalizes a vote position. An empty value is Unknown.
func ParsePosition(s string) (Position, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return PositionUnknown, true
	case "yea", "aye", "yes":
		return PositionYea, true
	case "nay", "no":
		return PositionNay, true
	case "present":
		return PositionPresent, true
	case "not voting", "not_voting", "notvoting":
		return PositionNotVoting, true
	case "absent":
		return PositionAbsent, true
	case "unknown":
		return PositionUnknown, true
	}
	return "", false
}

// ParseRole normalizes a committee role
func ParseRole(s string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "chair", "chairman", "chairwoman":
		return RoleChair, true
	case "ranking member", "ranking":
		return RoleRankingMember, true
	case "vice chair", "vice chairman":
		return RoleViceChair, true
	case "member":
		return RoleMember, true
	case "ex officio", "ex-officio":
		return RoleExOfficio, true
	case "other":
		return RoleOther, true
	}
	return "", false
}

// ParseBillType normalizes a bill type code such as "H.R." or "S.J.Res."
func ParseBillType(s string) (string, bool) {
	code := strings.ToLower(strings.NewReplacer(".", "", " ", "").Replace(s))
	for _, t := range BillTypes {
		if t == code {
			return t, true
		}
	}
	return "", false
}
