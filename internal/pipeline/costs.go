package pipeline

import (
	"sort"

	"github.com/palmvoyage/tripfund/internal/estimate"
	"github.com/palmvoyage/tripfund/internal/model"
	"github.com/shopspring/decimal"
)

// AggregateShares splits the combined cost of all trips by expense
// category, largest first. Empty categories are left out.
func AggregateShares(summaries []model.TripSummary) []model.ExpenseShare {
	var combined model.CostBreakdown
	combined.Flight = decimal.Zero
	combined.Accommodation = decimal.Zero
	combined.Additional = decimal.Zero
	for _, s := range summaries {
		combined.Flight = combined.Flight.Add(s.Breakdown.Flight)
		combined.Accommodation = combined.Accommodation.Add(s.Breakdown.Accommodation)
		combined.Additional = combined.Additional.Add(s.Breakdown.Additional)
	}
	combined.Total = combined.Flight.Add(combined.Accommodation).Add(combined.Additional)

	shares := estimate.Shares(combined)
	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].Amount.GreaterThan(shares[j].Amount)
	})
	return shares
}
