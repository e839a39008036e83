// Package pipeline loads trips, imports trip files and computes the
// figures shown in comparisons.
package pipeline

import (
	"time"

	"github.com/palmvoyage/tripfund/internal/estimate"
	"github.com/palmvoyage/tripfund/internal/model"
	"github.com/palmvoyage/tripfund/internal/scoring"
	"github.com/shopspring/decimal"
)

// Summarize computes the breakdown and feasibility score of every trip,
// keeping the input order.
func Summarize(trips []model.Trip, today time.Time) []model.TripSummary {
	out := make([]model.TripSummary, 0, len(trips))
	for _, t := range trips {
		b := estimate.Breakdown(t)
		in := scoring.InputsFor(b.Total, t.Deadline(), today)
		score := scoring.Score(in)
		out = append(out, model.TripSummary{
			Trip:           t,
			Breakdown:      b,
			MonthlyAmount:  in.MonthlyAmount,
			MonthsToTarget: in.MonthsToTarget,
			Score:          score,
			Tier:           string(scoring.TierOf(score)),
		})
	}
	return out
}

// Ranked summarizes trips and orders them by descending score. Trips with
// equal scores keep their input order. Rank starts at 1.
func Ranked(trips []model.Trip, today time.Time) []model.TripSummary {
	summaries := Summarize(trips, today)
	ranked := scoring.Rank(summaries, func(s model.TripSummary) scoring.Inputs {
		return scoring.Inputs{
			TotalCost:      s.Breakdown.Total,
			MonthlyAmount:  s.MonthlyAmount,
			MonthsToTarget: s.MonthsToTarget,
		}
	})

	out := make([]model.TripSummary, len(ranked))
	for i, r := range ranked {
		out[i] = r.Item
		out[i].Rank = i + 1
	}
	return out
}

// Aggregate computes totals across summaries.
func Aggregate(summaries []model.TripSummary) model.Totals {
	totals := model.Totals{Trips: len(summaries), TotalCost: decimal.Zero, AverageCost: decimal.Zero}
	if len(summaries) == 0 {
		return totals
	}

	scoreSum := 0
	for _, s := range summaries {
		totals.TotalCost = totals.TotalCost.Add(s.Breakdown.Total)
		scoreSum += s.Score
		if s.Trip.Deadline() != nil {
			totals.Dated++
		}
		if s.Trip.Funding.Planned() {
			totals.Planned++
		}
	}
	n := int64(len(summaries))
	totals.AverageCost = totals.TotalCost.Div(decimal.NewFromInt(n))
	totals.AverageScore = float64(scoreSum) / float64(n)
	return totals
}
