// Package planner computes how much each traveller has to put aside every
// month to fund a trip before it departs, and when the trip is funded at
// a chosen monthly rate.
package planner

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/palmvoyage/tripfund/internal/money"
	"github.com/shopspring/decimal"
)

// ErrInvalidDate matches any *InvalidDateError via errors.Is.
var ErrInvalidDate = errors.New("departure date is in the past")

// InvalidDateError is returned when the departure date is before today.
type InvalidDateError struct {
	Departure time.Time
	Today     time.Time
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("departure date %s is before %s",
		e.Departure.Format(DateLayout), e.Today.Format(DateLayout))
}

// Is lets errors.Is(err, ErrInvalidDate) match.
func (e *InvalidDateError) Is(target error) bool { return target == ErrInvalidDate }

// Inputs describes the trip being funded.
type Inputs struct {
	TotalCost  decimal.Decimal
	Passengers int
	Departure  *time.Time
}

// Result is a funding plan. Required amounts are nil when the horizon is
// undefined.
type Result struct {
	Horizon                  Horizon
	RequiredMonthlyTotal     *decimal.Decimal
	RequiredMonthlyPerPerson *decimal.Decimal

	ChosenMonthlyPerPerson decimal.Decimal
	ChosenMonthlyTotal     decimal.Decimal
	ChosenFrom             Source

	Projection  Projection
	Feasibility Feasibility
}

// Options tune the default rate offered when no departure date exists.
type Options struct {
	// SliderMax caps the fallback per-person rate. Zero disables the cap.
	SliderMax      decimal.Decimal
	FallbackMonths int
	FallbackStep   decimal.Decimal
}

// DefaultOptions returns the stock planner options.
func DefaultOptions() Options {
	return Options{
		SliderMax:      decimal.NewFromInt(2000),
		FallbackMonths: 12,
		FallbackStep:   decimal.NewFromInt(10),
	}
}

// Planner computes funding plans with fixed options.
type Planner struct {
	opts Options
}

// New creates a Planner. Non-positive fallback settings use the defaults.
func New(opts Options) *Planner {
	def := DefaultOptions()
	if opts.FallbackMonths <= 0 {
		opts.FallbackMonths = def.FallbackMonths
	}
	if !opts.FallbackStep.IsPositive() {
		opts.FallbackStep = def.FallbackStep
	}
	if opts.SliderMax.IsNegative() {
		opts.SliderMax = decimal.Zero
	}
	return &Planner{opts: opts}
}

// Options returns the options in effect.
func (p *Planner) Options() Options { return p.opts }

var defaultPlanner = New(DefaultOptions())

// Plan computes a plan with the default options.
func Plan(today time.Time, in Inputs, override *decimal.Decimal) (Result, error) {
	return defaultPlanner.Plan(today, in, override)
}

// ratioPlaces bounds the precision of total/rate before rounding up to
// whole months, so a rate derived by division covers its own horizon.
const ratioPlaces = 8

// Plan computes the funding plan for in as seen on today. A nil override
// means the user has not typed a rate. A departure before today returns
// an *InvalidDateError and a zero Result.
func (p *Planner) Plan(today time.Time, in Inputs, override *decimal.Decimal) (Result, error) {
	today = DateOf(today)
	total := in.TotalCost
	if total.IsNegative() {
		total = decimal.Zero
	}
	pax := decimal.NewFromInt(int64(max(1, in.Passengers)))

	var res Result
	var departure time.Time
	if in.Departure != nil {
		departure = DateOf(*in.Departure)
		days := DaysBetween(today, departure)
		if days < 0 {
			return Result{}, &InvalidDateError{Departure: departure, Today: today}
		}
		months := MonthsUntil(days)
		reqTotal := total.Div(decimal.NewFromInt(int64(months)))
		reqPerPerson := reqTotal.Div(pax)

		res.Horizon = KnownHorizon(months)
		res.RequiredMonthlyTotal = &reqTotal
		res.RequiredMonthlyPerPerson = &reqPerPerson
	}

	switch {
	case override != nil:
		res.ChosenMonthlyPerPerson = *override
		if override.IsNegative() {
			res.ChosenMonthlyPerPerson = decimal.Zero
		}
		res.ChosenFrom = SourceOverride
	case res.RequiredMonthlyPerPerson != nil:
		res.ChosenMonthlyPerPerson = *res.RequiredMonthlyPerPerson
		res.ChosenFrom = SourceRequired
	case total.IsPositive():
		res.ChosenMonthlyPerPerson = p.fallback(total, pax)
		res.ChosenFrom = SourceFallback
	default:
		res.ChosenMonthlyPerPerson = decimal.Zero
	}
	res.ChosenMonthlyTotal = res.ChosenMonthlyPerPerson.Mul(pax)

	if res.ChosenMonthlyTotal.IsPositive() {
		needed := int(total.Div(res.ChosenMonthlyTotal).Round(ratioPlaces).Ceil().IntPart())
		res.Projection = FundedOn(needed, AddDays(today, needed*DaysPerMonth))
	} else {
		res.Projection = NeverFunded()
	}

	if in.Departure != nil {
		res.Feasibility = TooLate
		if date, ok := res.Projection.Date(); ok && !date.After(departure) {
			res.Feasibility = Feasible
		}
	}
	return res, nil
}

// fallback suggests a rate covering the cost over FallbackMonths, rounded
// up to FallbackStep and capped at SliderMax.
func (p *Planner) fallback(total, pax decimal.Decimal) decimal.Decimal {
	perMonth := total.Div(pax).Div(decimal.NewFromInt(int64(p.opts.FallbackMonths)))
	rate := money.CeilTo(perMonth, p.opts.FallbackStep)
	if p.opts.SliderMax.IsPositive() && rate.GreaterThan(p.opts.SliderMax) {
		rate = p.opts.SliderMax
	}
	return rate
}

// Recommended returns the required per-person rate rounded up to a whole
// euro, the value applied by "use the recommended minimum".
func Recommended(r Result) (decimal.Decimal, bool) {
	if r.RequiredMonthlyPerPerson == nil {
		return decimal.Zero, false
	}
	return r.RequiredMonthlyPerPerson.Ceil(), true
}

// OverrideFromText turns the monthly rate field into an override: blank
// text means no override.
func OverrideFromText(s string) *decimal.Decimal {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	d := money.Parse(s)
	return &d
}
