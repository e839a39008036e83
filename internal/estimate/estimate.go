// Package estimate computes trip cost breakdowns and validates trips
// before they are saved.
package estimate

import (
	"time"

	"github.com/palmvoyage/tripfund/internal/model"
	"github.com/palmvoyage/tripfund/internal/planner"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Accommodation returns the accommodation cost for the trip's lodging mode.
func Accommodation(t model.Trip) decimal.Decimal {
	if t.LodgingMode != model.LodgingPerStop {
		return t.AccommodationCost
	}
	sum := decimal.Zero
	for _, d := range t.Destinations {
		sum = sum.Add(d.LodgingCost())
	}
	return sum
}

// Breakdown computes the totals of a trip.
func Breakdown(t model.Trip) model.CostBreakdown {
	pax := max(1, t.Passengers)
	b := model.CostBreakdown{
		Flight:        t.FlightCost,
		Accommodation: Accommodation(t),
		Additional:    t.AdditionalExpenses,
		Passengers:    pax,
	}
	b.Total = b.Flight.Add(b.Accommodation).Add(b.Additional)
	b.PerPerson = b.Total.Div(decimal.NewFromInt(int64(pax)))
	b.Shares = Shares(b)
	return b
}

// Shares splits the total into non-zero categories with their percentage.
func Shares(b model.CostBreakdown) []model.ExpenseShare {
	if !b.Total.IsPositive() {
		return nil
	}
	lines := []struct {
		cat    model.ExpenseCategory
		amount decimal.Decimal
	}{
		{model.ExpenseFlight, b.Flight},
		{model.ExpenseAccommodation, b.Accommodation},
		{model.ExpenseAdditional, b.Additional},
	}
	var out []model.ExpenseShare
	for _, l := range lines {
		if !l.amount.IsPositive() {
			continue
		}
		pct, _ := l.amount.Div(b.Total).Mul(hundred).Float64()
		out = append(out, model.ExpenseShare{Category: l.cat, Amount: l.amount, Percent: pct})
	}
	return out
}

// PlanInputs returns the planner inputs for a trip.
func PlanInputs(t model.Trip) planner.Inputs {
	return planner.Inputs{
		TotalCost:  Breakdown(t).Total,
		Passengers: t.Passengers,
		Departure:  t.StartDate,
	}
}

// ApplyPlan stores the plan's chosen rate and projection on the trip.
func ApplyPlan(t *model.Trip, r planner.Result) {
	perPerson := r.ChosenMonthlyPerPerson.Round(2)
	total := r.ChosenMonthlyTotal.Round(2)
	t.Funding = model.Funding{
		MonthlyPerPerson: &perPerson,
		MonthlyTotal:     &total,
	}
	if m, ok := r.Projection.Months(); ok {
		t.Funding.Months = &m
	}
	if d, ok := r.Projection.Date(); ok {
		t.Funding.Date = &d
	}
}

// DepartOnceFunded moves the trip so it starts on its saved funding date,
// keeping the trip length. It reports false when no funding date exists.
func DepartOnceFunded(t *model.Trip) bool {
	if t.Funding.Date == nil {
		return false
	}
	t.StartDate, t.EndDate = planner.ShiftToFunding(t.StartDate, t.EndDate, *t.Funding.Date)
	t.TargetDate = t.StartDate
	return true
}

// Today returns the current calendar date.
func Today() time.Time {
	return planner.DateOf(time.Now())
}
