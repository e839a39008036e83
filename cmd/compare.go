package cmd

import (
	"fmt"
	"strconv"

	"github.com/palmvoyage/tripfund/internal/cli"
	"github.com/palmvoyage/tripfund/internal/model"
	"github.com/palmvoyage/tripfund/internal/pipeline"

	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare [trip-id...]",
	Short: "Rank trips by feasibility score",
	Long:  "Ranks the given trips, or every saved trip, from most to least feasible.",
	RunE:  runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
}

func runCompare(_ *cobra.Command, args []string) error {
	now, err := today()
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	var trips []model.Trip
	if len(args) == 0 {
		if trips, err = st.ListTrips(); err != nil {
			return err
		}
	} else {
		for _, ref := range args {
			t, err := st.FindTrip(ref)
			if err != nil {
				return fmt.Errorf("%s: %w", ref, err)
			}
			trips = append(trips, t)
		}
	}

	if len(trips) == 0 {
		fmt.Println("\n  No trips to compare.")
		return nil
	}

	ranked := pipeline.Ranked(trips, now)
	totals := pipeline.Aggregate(ranked)

	rows := make([][]string, 0, len(ranked)+2)
	for _, s := range ranked {
		months := "-"
		if s.MonthsToTarget > 0 {
			months = strconv.Itoa(s.MonthsToTarget)
		}
		rows = append(rows, []string{
			strconv.Itoa(s.Rank),
			s.Trip.Name,
			cli.FormatMoney(s.Breakdown.Total),
			cli.FormatMoney(s.MonthlyAmount),
			months,
			cli.FormatDate(s.Trip.Deadline()),
			cli.RenderScore(s.Score),
		})
	}
	rows = append(rows, []string{"---"})
	rows = append(rows, []string{
		"",
		"Total",
		cli.FormatMoney(totals.TotalCost),
		"",
		"",
		"",
		fmt.Sprintf("avg %.0f", totals.AverageScore),
	})

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Ranking (%d trips)", totals.Trips),
		Headers: []string{"#", "Trip", "Total", "Monthly", "Months", "Deadline", "Score"},
		Rows:    rows,
	}))

	if shares := pipeline.AggregateShares(ranked); len(shares) > 0 {
		fmt.Println()
		total, _ := totals.TotalCost.Float64()
		for _, s := range shares {
			amount, _ := s.Amount.Float64()
			fmt.Printf("%s %s\n", cli.RenderHorizontalBar(string(s.Category), amount, total, 30), cli.FormatPercent(s.Percent))
		}
	}
	fmt.Println()
	return nil
}
