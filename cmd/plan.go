package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/palmvoyage/tripfund/internal/cli"
	"github.com/palmvoyage/tripfund/internal/estimate"
	"github.com/palmvoyage/tripfund/internal/model"
	"github.com/palmvoyage/tripfund/internal/money"
	"github.com/palmvoyage/tripfund/internal/planner"
	"github.com/palmvoyage/tripfund/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagPlanCost         string
	flagPlanFlight       string
	flagPlanLodging      string
	flagPlanExtra        string
	flagPlanPassengers   int
	flagPlanDeparture    string
	flagPlanMonthly      string
	flagPlanApplyMinimum bool
	flagPlanSave         bool
	flagPlanJSON         bool
)

var planCmd = &cobra.Command{
	Use:   "plan [trip-id]",
	Short: "Compute a savings plan for a trip or for ad-hoc figures",
	Example: `  tripfund plan --cost "1.200,00" --passengers 2 --departure 2026-06-01
  tripfund plan --flight 450 --lodging 600 --extra 150 --monthly 120
  tripfund plan 3f2a --apply-minimum --save`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlan,
}

func init() {
	f := planCmd.Flags()
	f.StringVar(&flagPlanCost, "cost", "", "Total trip cost (€), overrides the cost lines")
	f.StringVar(&flagPlanFlight, "flight", "", "Flight cost (€)")
	f.StringVar(&flagPlanLodging, "lodging", "", "Accommodation cost (€)")
	f.StringVar(&flagPlanExtra, "extra", "", "Additional expenses (€)")
	f.IntVar(&flagPlanPassengers, "passengers", 1, "Number of travellers")
	f.StringVar(&flagPlanDeparture, "departure", "", "Departure date (YYYY-MM-DD)")
	f.StringVar(&flagPlanMonthly, "monthly", "", "Monthly savings per person (€), free text")
	f.BoolVar(&flagPlanApplyMinimum, "apply-minimum", false, "Use the recommended minimum as the monthly amount")
	f.BoolVar(&flagPlanSave, "save", false, "Save the plan on the trip (with a trip ID)")
	f.BoolVar(&flagPlanJSON, "json", false, "Print the plan as JSON")
	rootCmd.AddCommand(planCmd)
}

func runPlan(_ *cobra.Command, args []string) error {
	now, err := today()
	if err != nil {
		return err
	}
	p := newPlanner()
	override := planner.OverrideFromText(flagPlanMonthly)

	var (
		in   planner.Inputs
		trip *model.Trip
		st   *store.Store
	)
	if len(args) == 1 {
		if st, err = openStore(); err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		t, err := st.FindTrip(args[0])
		if err != nil {
			return err
		}
		trip = &t
		in = estimate.PlanInputs(t)
		if override == nil {
			override = t.Funding.MonthlyPerPerson
		}
	} else {
		if flagPlanSave {
			return errors.New("--save needs a trip ID")
		}
		in, err = adHocInputs()
		if err != nil {
			return err
		}
	}

	res, err := p.Plan(now, in, override)
	if err != nil {
		return err
	}
	if flagPlanApplyMinimum {
		rec, ok := planner.Recommended(res)
		if !ok {
			return errors.New("no recommended minimum without a departure date")
		}
		if res, err = p.Plan(now, in, &rec); err != nil {
			return err
		}
	}

	if flagPlanSave {
		estimate.ApplyPlan(trip, res)
		if err := st.SaveTrip(trip); err != nil {
			return err
		}
	}

	if flagPlanJSON {
		data, err := json.MarshalIndent(res.View(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	title := "SAVINGS PLAN"
	if trip != nil {
		title = strings.ToUpper(trip.Name)
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle(title))
	fmt.Println()
	fmt.Print(renderPlan(in, res))
	if flagPlanSave {
		fmt.Println()
		fmt.Printf("  Saved %s/month per person on %s\n", cli.FormatMoney(res.ChosenMonthlyPerPerson), trip.Name)
	}
	fmt.Println()
	return nil
}

// adHocInputs builds planner inputs from the cost flags.
func adHocInputs() (planner.Inputs, error) {
	in := planner.Inputs{Passengers: flagPlanPassengers}
	if flagPlanCost != "" {
		in.TotalCost = money.Parse(flagPlanCost)
	} else {
		in.TotalCost = money.Parse(flagPlanFlight).
			Add(money.Parse(flagPlanLodging)).
			Add(money.Parse(flagPlanExtra))
	}
	if flagPlanDeparture != "" {
		d, err := planner.ParseDate(flagPlanDeparture)
		if err != nil {
			return in, fmt.Errorf("--departure: %w", err)
		}
		in.Departure = &d
	}
	return in, nil
}

// renderPlan renders the figures of a plan as label/value lines.
func renderPlan(in planner.Inputs, res planner.Result) string {
	var b strings.Builder
	field := func(label, value string) {
		b.WriteString(cli.RenderField(label, value))
		b.WriteString("\n")
	}

	field("Total cost", cli.FormatMoney(in.TotalCost))
	field("Passengers", strconv.Itoa(max(1, in.Passengers)))
	field("Departure", cli.FormatDate(in.Departure))
	field("Months to departure", cli.FormatHorizon(res.Horizon))
	field("Required p.p.", cli.FormatMoneyPtr(res.RequiredMonthlyPerPerson))
	field("Required total", cli.FormatMoneyPtr(res.RequiredMonthlyTotal))
	if rec, ok := planner.Recommended(res); ok {
		field("Recommended p.p.", cli.FormatMoney(rec))
	}
	b.WriteString("\n")

	field("Monthly p.p.", cli.FormatMoney(res.ChosenMonthlyPerPerson)+cli.RenderMuted("  ("+res.ChosenFrom.String()+")"))
	field("Monthly total", cli.FormatMoney(res.ChosenMonthlyTotal))
	field("Funded on", cli.FormatProjection(res.Projection))
	field("Before departure", cli.RenderFeasibility(res.Feasibility))

	if months, ok := res.Projection.Months(); ok {
		total, _ := in.TotalCost.Float64()
		monthly, _ := res.ChosenMonthlyTotal.Float64()
		if curve := cli.SavingsCurve(total, monthly, months); len(curve) > 1 {
			field("Savings", cli.RenderSparkline(curve))
		}
	}
	return b.String()
}

// planTrip plans a stored trip with its saved rate unless monthly is set.
func planTrip(p *planner.Planner, now time.Time, t model.Trip, monthly string) (planner.Result, error) {
	override := planner.OverrideFromText(monthly)
	if override == nil {
		override = t.Funding.MonthlyPerPerson
	}
	return p.Plan(now, estimate.PlanInputs(t), override)
}
