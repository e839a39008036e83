package planner

import "time"

// Horizon is the number of 30-day months left before departure.
// The zero value is an undefined horizon (no departure date).
type Horizon struct {
	known  bool
	months int
}

// UndefinedHorizon reports that no departure date was supplied.
func UndefinedHorizon() Horizon { return Horizon{} }

// KnownHorizon reports a horizon of the given number of months.
func KnownHorizon(months int) Horizon { return Horizon{known: true, months: months} }

// Months returns the horizon length and whether it is defined.
func (h Horizon) Months() (int, bool) { return h.months, h.known }

// Known reports whether the horizon is defined.
func (h Horizon) Known() bool { return h.known }

// Projection is the outcome of saving at the chosen rate: either the trip
// is never funded (zero rate) or it is funded after a number of months.
// The zero value is NeverFunded.
type Projection struct {
	funded bool
	months int
	date   time.Time
}

// NeverFunded is the projection for a zero savings rate.
func NeverFunded() Projection { return Projection{} }

// FundedOn is the projection reaching the total after months, on date.
func FundedOn(months int, date time.Time) Projection {
	return Projection{funded: true, months: months, date: date}
}

// Funded reports whether the projection ever reaches the total.
func (p Projection) Funded() bool { return p.funded }

// Months returns the months needed and false when never funded.
func (p Projection) Months() (int, bool) { return p.months, p.funded }

// Date returns the projected funding date and false when never funded.
func (p Projection) Date() (time.Time, bool) { return p.date, p.funded }

// Feasibility says whether the trip is funded before departure.
type Feasibility int

const (
	// FeasibilityUnknown means there is no departure date to compare to.
	FeasibilityUnknown Feasibility = iota
	Feasible
	TooLate
)

func (f Feasibility) String() string {
	switch f {
	case Feasible:
		return "feasible"
	case TooLate:
		return "too_late"
	default:
		return "unknown"
	}
}

// Known reports whether a verdict exists.
func (f Feasibility) Known() bool { return f != FeasibilityUnknown }

// Source tells where the chosen monthly rate came from.
type Source int

const (
	SourceNone Source = iota
	SourceOverride
	SourceRequired
	SourceFallback
)

func (s Source) String() string {
	switch s {
	case SourceOverride:
		return "override"
	case SourceRequired:
		return "required"
	case SourceFallback:
		return "fallback"
	default:
		return "none"
	}
}
