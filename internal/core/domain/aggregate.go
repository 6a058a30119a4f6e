package domain

import "time"

// DimensionKind identifies an aggregation axis.
type DimensionKind string

// Available aggregation dimensions.
const (
	// DimensionParty groups by sponsor party.
	DimensionParty DimensionKind = "party"

	// DimensionState groups by state code.
	DimensionState DimensionKind = "state"

	// DimensionPeriod groups into pre/post a cutoff date.
	DimensionPeriod DimensionKind = "period"
)

// Bucket values shared across dimensions.
const (
	UnknownValue = "unknown"
	PeriodPre    = "pre"
	PeriodPost   = "post"
)

// AllDimensionKinds returns the dimensions in output order.
func AllDimensionKinds() []DimensionKind {
	return []DimensionKind{DimensionParty, DimensionState, DimensionPeriod}
}

// IsValid returns true if the dimension is recognised.
func (k DimensionKind) IsValid() bool {
	switch k {
	case DimensionParty, DimensionState, DimensionPeriod:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k DimensionKind) String() string {
	return string(k)
}

// Dimension is a grouping axis plus the parameters its extractor needs.
type Dimension struct {
	Kind DimensionKind

	// Cutoff splits the period dimension. Bills enacted on or after it are "post".
	Cutoff time.Time
}

// PartyDimension groups by sponsor party.
func PartyDimension() Dimension { return Dimension{Kind: DimensionParty} }

// StateDimension groups by state.
func StateDimension() Dimension { return Dimension{Kind: DimensionState} }

// PeriodDimension splits bills at cutoff.
func PeriodDimension(cutoff time.Time) Dimension {
	return Dimension{Kind: DimensionPeriod, Cutoff: cutoff}
}

// Value extracts this dimension's value from a bill.
// Missing values map to UnknownValue.
func (d Dimension) Value(b Bill) string {
	switch d.Kind {
	case DimensionParty:
		return partyValue(b)
	case DimensionState:
		return stateValue(b)
	case DimensionPeriod:
		return periodValue(b, d.Cutoff)
	default:
		return UnknownValue
	}
}

func partyValue(b Bill) string {
	if b.Party == PartyUnknown {
		return UnknownValue
	}
	return b.Party.String()
}

func stateValue(b Bill) string {
	if b.State == "" {
		return UnknownValue
	}
	return b.State
}

// periodValue compares calendar dates and is inclusive on the upper side: a
// bill enacted on the cutoff date is "post" whatever its time of day.
func periodValue(b Bill, cutoff time.Time) string {
	if b.EnactedDate.IsZero() {
		return UnknownValue
	}
	if CalendarDate(b.EnactedDate).Before(CalendarDate(cutoff)) {
		return PeriodPre
	}
	return PeriodPost
}

// AggregateRow holds per-topic totals for one dimension value.
type AggregateRow struct {
	TopicID   int
	Dimension DimensionKind
	Value     string
	Count     int
	YeaSum    int
	NaySum    int
}

// SupportRatio returns yea / (yea + nay), or 0 when no votes were recorded.
func (r AggregateRow) SupportRatio() float64 {
	total := r.YeaSum + r.NaySum
	if total == 0 {
		return 0
	}
	return float64(r.YeaSum) / float64(total)
}
