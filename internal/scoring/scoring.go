// Package scoring ranks saved trips by a 0-100 feasibility heuristic.
package scoring

import (
	"sort"
	"time"

	"github.com/palmvoyage/tripfund/internal/planner"
	"github.com/shopspring/decimal"
)

// Inputs are the figures a trip is scored on.
type Inputs struct {
	TotalCost      decimal.Decimal `json:"total_cost"`
	MonthlyAmount  decimal.Decimal `json:"monthly_amount"`
	MonthsToTarget int             `json:"months_to_target"`
}

var (
	monthlyHigh = decimal.NewFromInt(1000)
	monthlyMid  = decimal.NewFromInt(500)
	costHigh    = decimal.NewFromInt(5000)
	costMid     = decimal.NewFromInt(3000)
)

// Score returns the feasibility score for in, clamped to [0, 100].
// A zero MonthsToTarget (no target date) lands in the shortest horizon
// tier.
func Score(in Inputs) int {
	score := 100

	switch {
	case in.MonthlyAmount.GreaterThan(monthlyHigh):
		score -= 30
	case in.MonthlyAmount.GreaterThan(monthlyMid):
		score -= 15
	}

	switch {
	case in.TotalCost.GreaterThan(costHigh):
		score -= 20
	case in.TotalCost.GreaterThan(costMid):
		score -= 10
	}

	switch {
	case in.MonthsToTarget < 3:
		score -= 20
	case in.MonthsToTarget < 6:
		score -= 10
	case in.MonthsToTarget > 12:
		score += 10
	}

	return clamp(score, 0, 100)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// InputsFor derives scoring inputs from a trip total and its deadline.
// Without a deadline the monthly amount and horizon are both zero.
func InputsFor(total decimal.Decimal, deadline *time.Time, today time.Time) Inputs {
	in := Inputs{TotalCost: total}
	if deadline == nil {
		return in
	}
	months := planner.MonthsUntil(planner.DaysBetween(today, *deadline))
	in.MonthsToTarget = months
	in.MonthlyAmount = total.Div(decimal.NewFromInt(int64(months)))
	return in
}

// Tier buckets a score for display.
type Tier string

const (
	TierGood Tier = "good"
	TierFair Tier = "fair"
	TierPoor Tier = "poor"
)

// TierOf returns the display tier of a score.
func TierOf(score int) Tier {
	switch {
	case score >= 70:
		return TierGood
	case score >= 40:
		return TierFair
	default:
		return TierPoor
	}
}

// Scored pairs an item with its score.
type Scored[T any] struct {
	Item  T
	Score int
}

// Rank scores every item and sorts them by descending score. Items with
// equal scores keep their input order.
func Rank[T any](items []T, inputs func(T) Inputs) []Scored[T] {
	out := make([]Scored[T], len(items))
	for i, it := range items {
		out[i] = Scored[T]{Item: it, Score: Score(inputs(it))}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
