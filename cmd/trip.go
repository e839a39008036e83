package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/palmvoyage/tripfund/internal/cli"
	"github.com/palmvoyage/tripfund/internal/estimate"
	"github.com/palmvoyage/tripfund/internal/geocode"
	"github.com/palmvoyage/tripfund/internal/logging"
	"github.com/palmvoyage/tripfund/internal/model"
	"github.com/palmvoyage/tripfund/internal/pipeline"
	"github.com/palmvoyage/tripfund/internal/planner"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagAdd     tripFields
	flagRmYes   bool
	flagFundPay string
)

var tripCmd = &cobra.Command{
	Use:   "trip",
	Short: "Add, list and manage saved trips",
}

var tripAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a trip (interactive without --name)",
	Example: `  tripfund trip add
  tripfund trip add --name "Portugal" --stop "Lisbon, Portugal" --stop "Porto, Portugal" \
      --flight 420 --lodging 650 --passengers 2 --start 2026-06-01 --end 2026-06-10`,
	Args: cobra.NoArgs,
	RunE: runTripAdd,
}

var tripListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List saved trips, newest first",
	Args:    cobra.NoArgs,
	RunE:    runTripList,
}

var tripShowCmd = &cobra.Command{
	Use:   "show <trip-id>",
	Short: "Show a trip's costs, stops and savings plan",
	Args:  cobra.ExactArgs(1),
	RunE:  runTripShow,
}

var tripRmCmd = &cobra.Command{
	Use:     "rm <trip-id>",
	Aliases: []string{"delete"},
	Short:   "Delete a trip",
	Args:    cobra.ExactArgs(1),
	RunE:    runTripRm,
}

var tripFundCmd = &cobra.Command{
	Use:   "fund <trip-id>",
	Short: "Move a trip so it departs once it is funded",
	Long: "Plans the trip at its saved (or --monthly) rate and moves its dates so it departs on the\n" +
		"projected funding date, keeping the trip length.",
	Args: cobra.ExactArgs(1),
	RunE: runTripFund,
}

func init() {
	f := tripAddCmd.Flags()
	f.StringVar(&flagAdd.name, "name", "", "Trip name")
	f.StringArrayVar(&flagAdd.stops, "stop", nil, `Stop as "City, Country" or "City, Country, nights, price" (repeatable)`)
	f.StringVar(&flagAdd.flight, "flight", "", "Flight cost (€)")
	f.StringVar(&flagAdd.lodging, "lodging", "", "Accommodation cost for the whole trip (€)")
	f.StringVar(&flagAdd.extra, "extra", "", "Additional expenses (€)")
	f.StringVar(&flagAdd.passengers, "passengers", "1", "Number of travellers")
	f.StringVar(&flagAdd.start, "start", "", "Departure date (YYYY-MM-DD)")
	f.StringVar(&flagAdd.end, "end", "", "Return date (YYYY-MM-DD)")
	f.StringVar(&flagAdd.monthly, "monthly", "", "Monthly savings per person (€), recommended when empty")

	tripRmCmd.Flags().BoolVarP(&flagRmYes, "yes", "y", false, "Delete without asking")
	tripFundCmd.Flags().StringVar(&flagFundPay, "monthly", "", "Monthly savings per person (€), saved rate when empty")

	tripCmd.AddCommand(tripAddCmd, tripListCmd, tripShowCmd, tripRmCmd, tripFundCmd)
	rootCmd.AddCommand(tripCmd)
}

func runTripAdd(cmd *cobra.Command, _ []string) error {
	fields := flagAdd
	if fields.name == "" {
		var err error
		if fields, err = runTripForm(fields); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return err
		}
	}

	now, err := today()
	if err != nil {
		return err
	}
	trip, err := fields.build()
	if err != nil {
		return err
	}
	if err := estimate.Validate(trip, now); err != nil {
		return fmt.Errorf("trip not saved: %w", err)
	}

	res, err := newPlanner().Plan(now, estimate.PlanInputs(trip), planner.OverrideFromText(fields.monthly))
	if err != nil {
		return err
	}
	estimate.ApplyPlan(&trip, res)

	ctx := cmd.Context()
	g, closeGeocoder := newGeocoder(ctx)
	defer closeGeocoder()
	located := geocode.Fill(ctx, g, &trip, logging.Named("geocode"))

	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()
	if err := st.SaveTrip(&trip); err != nil {
		return err
	}
	logging.Logger.Info("trip saved",
		zap.String("id", trip.ID.String()),
		zap.Int("stops", len(trip.Destinations)),
		zap.Int("located", located))

	fmt.Println()
	fmt.Printf("  Saved %s (%s)\n", trip.Name, shortID(trip))
	if g != nil {
		fmt.Printf("  Located %d of %d stops\n", located, len(trip.Destinations))
	}
	fmt.Println()
	fmt.Print(renderPlan(estimate.PlanInputs(trip), res))
	fmt.Println()
	return nil
}

func runTripList(_ *cobra.Command, _ []string) error {
	now, err := today()
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	trips, err := st.ListTrips()
	if err != nil {
		return err
	}
	if len(trips) == 0 {
		fmt.Println("\n  No trips yet.")
		fmt.Println("  Add one with `tripfund trip add`.")
		return nil
	}

	rows := make([][]string, 0, len(trips))
	for _, s := range pipeline.Summarize(trips, now) {
		rows = append(rows, []string{
			shortID(s.Trip),
			s.Trip.Name,
			s.Trip.Route(),
			cli.FormatMoney(s.Breakdown.Total),
			cli.FormatMoneyPtr(s.Trip.Funding.MonthlyPerPerson),
			cli.FormatDate(s.Trip.StartDate),
			cli.RenderScore(s.Score),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Trips (%d)", len(trips)),
		Headers: []string{"ID", "Trip", "Route", "Total", "Monthly p.p.", "Departs", "Score"},
		Rows:    rows,
	}))
	fmt.Println()
	return nil
}

func runTripShow(_ *cobra.Command, args []string) error {
	now, err := today()
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	trip, err := st.FindTrip(args[0])
	if err != nil {
		return err
	}
	sum := pipeline.Summarize([]model.Trip{trip}, now)[0]
	b := sum.Breakdown

	fmt.Println()
	fmt.Println(cli.RenderTitle(strings.ToUpper(trip.Name)))
	fmt.Println()
	fmt.Println(cli.RenderField("ID", trip.ID.String()))
	fmt.Println(cli.RenderField("Dates", cli.FormatDate(trip.StartDate)+" → "+cli.FormatDate(trip.EndDate)))
	fmt.Println(cli.RenderField("Departs", cli.FormatDaysLeft(now, trip.StartDate)))
	fmt.Println(cli.RenderField("Score", cli.RenderScore(sum.Score)))
	fmt.Println()

	stops := make([][]string, 0, len(trip.Destinations))
	for i, d := range trip.Destinations {
		lodging, coords := "-", "-"
		if trip.LodgingMode == model.LodgingPerStop && d.HasLodging {
			lodging = fmt.Sprintf("%d × %s", d.Nights, cli.FormatMoney(d.PricePerNight))
		}
		if d.Located() {
			coords = fmt.Sprintf("%.4f, %.4f", *d.Latitude, *d.Longitude)
		}
		stops = append(stops, []string{strconv.Itoa(i + 1), d.City, d.Country, lodging, coords})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Stops",
		Headers: []string{"#", "City", "Country", "Lodging", "Coordinates"},
		Rows:    stops,
	}))
	fmt.Println()

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Costs",
		Headers: []string{"Line", "Amount"},
		Rows: [][]string{
			{"Flights", cli.FormatMoney(b.Flight)},
			{"Accommodation", cli.FormatMoney(b.Accommodation)},
			{"Other", cli.FormatMoney(b.Additional)},
			{"---"},
			{"Total", cli.FormatMoney(b.Total)},
			{"Per person", cli.FormatMoney(b.PerPerson)},
		},
	}))
	total, _ := b.Total.Float64()
	for _, s := range b.Shares {
		amount, _ := s.Amount.Float64()
		fmt.Printf("%s %s\n", cli.RenderHorizontalBar(string(s.Category), amount, total, 30), cli.FormatPercent(s.Percent))
	}
	fmt.Println()

	res, err := planTrip(newPlanner(), now, trip, "")
	if err != nil {
		fmt.Printf("  %s\n\n", err)
		return nil
	}
	fmt.Print(renderPlan(estimate.PlanInputs(trip), res))
	fmt.Println()
	return nil
}

func runTripRm(_ *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	trip, err := st.FindTrip(args[0])
	if err != nil {
		return err
	}

	if !flagRmYes {
		confirm := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete %s (%s)?", trip.Name, shortID(trip))).
			Affirmative("Delete").
			Negative("Keep").
			Value(&confirm).
			Run()
		if err != nil && !errors.Is(err, huh.ErrUserAborted) {
			return err
		}
		if !confirm {
			fmt.Println("  Kept.")
			return nil
		}
	}

	if err := st.DeleteTrip(trip.ID); err != nil {
		return err
	}
	fmt.Printf("  Deleted %s\n", trip.Name)
	return nil
}

func runTripFund(_ *cobra.Command, args []string) error {
	now, err := today()
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	trip, err := st.FindTrip(args[0])
	if err != nil {
		return err
	}
	res, err := planTrip(newPlanner(), now, trip, flagFundPay)
	if err != nil {
		return err
	}

	estimate.ApplyPlan(&trip, res)
	if !estimate.DepartOnceFunded(&trip) {
		return errors.New("this plan never funds the trip; set --monthly above zero")
	}
	if err := st.SaveTrip(&trip); err != nil {
		return err
	}

	fmt.Printf("  %s now departs %s", trip.Name, cli.FormatDate(trip.StartDate))
	if trip.EndDate != nil {
		fmt.Printf(" and returns %s", cli.FormatDate(trip.EndDate))
	}
	fmt.Printf("\n  Saving %s/month per person\n", cli.FormatMoney(res.ChosenMonthlyPerPerson))
	return nil
}

func shortID(t model.Trip) string {
	return t.ID.String()[:8]
}
