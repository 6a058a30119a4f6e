package domain

import (
	"strings"
	"time"
)

// Party identifies a sponsor's party affiliation.
type Party string

// Recognised parties.
const (
	PartyDemocrat    Party = "D"
	PartyRepublican  Party = "R"
	PartyIndependent Party = "I"
	PartyOther       Party = "other"

	// PartyUnknown marks a bill without party information.
	PartyUnknown Party = ""
)

// ParseParty maps free-form party labels onto a Party.
// Empty input is PartyUnknown; unrecognised labels are PartyOther.
func ParseParty(s string) Party {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return PartyUnknown
	case "d", "dem", "democrat", "democratic":
		return PartyDemocrat
	case "r", "rep", "republican", "gop":
		return PartyRepublican
	case "i", "ind", "independent":
		return PartyIndependent
	default:
		return PartyOther
	}
}

// String returns the string representation.
func (p Party) String() string {
	return string(p)
}

// Bill is an immutable legislative record supplied by the ingestion layer.
type Bill struct {
	// ID is the unique bill identifier.
	ID string

	// Title is the short bill title, if known.
	Title string

	// RawText is the full bill text. May be empty.
	RawText string

	// Party is the primary sponsor's party.
	Party Party

	// State is the two-letter state code, empty when missing.
	State string

	// EnactedDate is zero when missing.
	EnactedDate time.Time

	// VoteYea is the recorded yea count.
	VoteYea int

	// VoteNay is the recorded nay count.
	VoteNay int

	// SponsorIDs lists the people sponsoring this bill.
	SponsorIDs []string
}

// BillRecord is the un-validated shape of a bill as it arrives from ingestion.
// Optional fields are pointers so that "missing" and "empty" can be told apart.
type BillRecord struct {
	ID          *string
	Title       *string
	RawText     *string
	Party       *string
	State       *string
	EnactedDate *time.Time
	VoteYea     *int
	VoteNay     *int
	SponsorIDs  []string
}

// NormalizedDocument is the token sequence derived from exactly one Bill.
type NormalizedDocument struct {
	BillID string
	Tokens []string
}

// IsEmpty returns true if the document carries no tokens.
func (d NormalizedDocument) IsEmpty() bool {
	return len(d.Tokens) == 0
}

// CalendarDate drops the time of day, keeping the date as seen in t's own
// zone, and returns it as midnight UTC.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ToBill validates the record and fills defaults for optional fields.
// ID and RawText are mandatory; RawText may be empty but must be present.
func (r BillRecord) ToBill(index int) (Bill, error) {
	if r.ID == nil || strings.TrimSpace(*r.ID) == "" {
		return Bill{}, &InputValidationError{Index: index, Reason: "missing bill_id"}
	}
	id := strings.TrimSpace(*r.ID)
	if r.RawText == nil {
		return Bill{}, &InputValidationError{Index: index, BillID: id, Reason: "missing raw_text"}
	}

	bill := Bill{
		ID:      id,
		RawText: *r.RawText,
	}
	if r.Title != nil {
		bill.Title = *r.Title
	}
	if r.Party != nil {
		bill.Party = ParseParty(*r.Party)
	}
	if r.State != nil {
		bill.State = strings.ToUpper(strings.TrimSpace(*r.State))
	}
	if r.EnactedDate != nil {
		bill.EnactedDate = CalendarDate(*r.EnactedDate)
	}
	if r.VoteYea != nil {
		if *r.VoteYea < 0 {
			return Bill{}, &InputValidationError{Index: index, BillID: id, Reason: "negative vote_yea"}
		}
		bill.VoteYea = *r.VoteYea
	}
	if r.VoteNay != nil {
		if *r.VoteNay < 0 {
			return Bill{}, &InputValidationError{Index: index, BillID: id, Reason: "negative vote_nay"}
		}
		bill.VoteNay = *r.VoteNay
	}
	for _, s := range r.SponsorIDs {
		if s = strings.TrimSpace(s); s != "" {
			bill.SponsorIDs = append(bill.SponsorIDs, s)
		}
	}
	return bill, nil
}
