package model

import (
	"github.com/shopspring/decimal"
)

// ExpenseCategory names a cost line of a trip.
type ExpenseCategory string

const (
	ExpenseFlight        ExpenseCategory = "flight"
	ExpenseAccommodation ExpenseCategory = "accommodation"
	ExpenseAdditional    ExpenseCategory = "additional"
)

// ExpenseShare is one category's part of the total.
type ExpenseShare struct {
	Category ExpenseCategory
	Amount   decimal.Decimal
	Percent  float64
}

// CostBreakdown holds a trip's computed totals.
type CostBreakdown struct {
	Flight        decimal.Decimal
	Accommodation decimal.Decimal
	Additional    decimal.Decimal
	Total         decimal.Decimal
	PerPerson     decimal.Decimal
	Passengers    int
	Shares        []ExpenseShare
}

// TripSummary is a trip with its breakdown and feasibility score, as shown
// in comparisons.
type TripSummary struct {
	Trip      Trip
	Breakdown CostBreakdown

	MonthlyAmount  decimal.Decimal
	MonthsToTarget int
	Score          int
	Tier           string
	Rank           int
}

// Totals aggregates a set of trips.
type Totals struct {
	Trips        int
	TotalCost    decimal.Decimal
	AverageCost  decimal.Decimal
	AverageScore float64
	Dated        int
	Planned      int
}
