package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/palmvoyage/tripfund/internal/cli"
	"github.com/palmvoyage/tripfund/internal/estimate"
	"github.com/palmvoyage/tripfund/internal/money"
	"github.com/palmvoyage/tripfund/internal/planner"
	"github.com/palmvoyage/tripfund/internal/tui/components"
	"github.com/palmvoyage/tripfund/internal/tui/theme"
	"github.com/shopspring/decimal"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// plannerState holds the live planner of the selected trip. The monthly
// field is re-planned on every keystroke.
type plannerState struct {
	input   textinput.Model
	editing bool

	tripID uuid.UUID
	result planner.Result
	err    error
}

func newMonthlyInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "recommended"
	ti.Prompt = ""
	ti.CharLimit = 20
	ti.Width = 14
	return ti
}

func newPlannerState() plannerState {
	return plannerState{input: newMonthlyInput()}
}

// replan recomputes the plan of the selected trip from the monthly field.
// Switching to another trip resets the field to that trip's saved rate.
func (a *App) replan() {
	sel, ok := a.selected()
	if !ok {
		a.plan.tripID = uuid.Nil
		a.plan.result = planner.Result{}
		a.plan.err = nil
		return
	}
	if sel.Trip.ID != a.plan.tripID {
		a.plan.tripID = sel.Trip.ID
		a.plan.input.SetValue("")
		if saved := sel.Trip.Funding.MonthlyPerPerson; saved != nil {
			a.plan.input.SetValue(money.FormatPlain(*saved))
		}
	}
	override := planner.OverrideFromText(a.plan.input.Value())
	a.plan.result, a.plan.err = a.opts.Planner.Plan(a.today(), estimate.PlanInputs(sel.Trip), override)
}

func (a *App) handlePlannerKey(key string) (bool, tea.Cmd) {
	sel, ok := a.selected()

	switch key {
	case "j", "down":
		a.moveTripCursor(1)
	case "k", "up":
		a.moveTripCursor(-1)
	case "e", "enter":
		if !ok {
			return true, nil
		}
		a.plan.editing = true
		return true, a.plan.input.Focus()
	case "a":
		rec, has := planner.Recommended(a.plan.result)
		if !ok || a.plan.err != nil || !has {
			a.setFlash("No recommended minimum without a departure date")
			return true, nil
		}
		a.plan.input.SetValue(money.FormatPlain(rec))
		a.replan()
	case "x":
		a.plan.input.SetValue("")
		a.replan()
	case "w":
		if !ok {
			return true, nil
		}
		if a.plan.err != nil {
			a.setFlash(a.plan.err.Error())
			return true, nil
		}
		trip := sel.Trip
		estimate.ApplyPlan(&trip, a.plan.result)
		return true, saveTripCmd(a.opts, trip, fmt.Sprintf("Saved %s/month for %s", cli.FormatMoney(a.plan.result.ChosenMonthlyPerPerson), trip.Name))
	case "f":
		if !ok {
			return true, nil
		}
		if a.plan.err != nil {
			a.setFlash(a.plan.err.Error())
			return true, nil
		}
		trip := sel.Trip
		estimate.ApplyPlan(&trip, a.plan.result)
		if !estimate.DepartOnceFunded(&trip) {
			a.setFlash("This plan never funds the trip")
			return true, nil
		}
		// The shifted trip is re-planned against its new departure on
		// the next load; the saved funding date stays as projected.
		return true, saveTripCmd(a.opts, trip, fmt.Sprintf("%s now departs %s", trip.Name, cli.FormatDate(trip.StartDate)))
	default:
		return false, nil
	}
	return true, nil
}

// updatePlannerInput forwards keys to the monthly field and re-plans
// after each one.
func (a App) updatePlannerInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc", "tab":
		a.plan.editing = false
		a.plan.input.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	a.plan.input, cmd = a.plan.input.Update(msg)
	a.replan()
	return a, cmd
}

func (a App) renderPlannerTab(cw int) string {
	t := theme.Active

	sel, ok := a.selected()
	if !ok {
		return components.ContentCard("Planner",
			lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render("Select a trip on the Trips tab first."), cw)
	}
	trip := sel.Trip
	b := sel.Breakdown

	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	strong := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	muted := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	field := func(name, v string) string {
		return label.Render(fmt.Sprintf("%-22s", name)) + value.Render(v) + "\n"
	}

	// Row 1: the headline numbers.
	res := a.plan.result
	var metrics []components.Metric
	metrics = append(metrics,
		components.Metric{Label: "Total cost", Value: cli.FormatMoney(b.Total), Delta: cli.FormatMoney(b.PerPerson) + " per person"},
		components.Metric{Label: "Departure", Value: cli.FormatDate(trip.StartDate), Delta: cli.FormatDaysLeft(a.today(), trip.StartDate)},
	)
	if a.plan.err == nil {
		metrics = append(metrics,
			components.Metric{Label: "Monthly p.p.", Value: cli.FormatMoney(res.ChosenMonthlyPerPerson), Delta: res.ChosenFrom.String()},
			components.Metric{Label: "Funded", Value: projectionValue(res.Projection), Delta: projectionDelta(res.Projection)},
		)
	}

	var out strings.Builder
	out.WriteString(components.MetricCardRow(metrics, cw))
	out.WriteString("\n")

	halves := components.LayoutRow(cw, 2)
	if a.isCompactLayout() {
		halves = []int{cw}
	}

	// Left: the plan itself.
	var planBody strings.Builder
	if a.plan.err != nil {
		planBody.WriteString(lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Bold(true).Render(a.plan.err.Error()))
		planBody.WriteString("\n\n")
		var invalid *planner.InvalidDateError
		if errors.As(a.plan.err, &invalid) {
			planBody.WriteString(muted.Render("Move the departure date with `tripfund trip add` or import an updated file."))
			planBody.WriteString("\n")
		}
	} else {
		planBody.WriteString(field("Months to departure", cli.FormatHorizon(res.Horizon)))
		planBody.WriteString(field("Required p.p.", cli.FormatMoneyPtr(res.RequiredMonthlyPerPerson)))
		planBody.WriteString(field("Required total", cli.FormatMoneyPtr(res.RequiredMonthlyTotal)))
		if rec, ok := planner.Recommended(res); ok {
			planBody.WriteString(field("Recommended p.p.", cli.FormatMoney(rec)))
		}
		planBody.WriteString("\n")

		inputLabel := label
		if a.plan.editing {
			inputLabel = strong
		}
		planBody.WriteString(inputLabel.Render(fmt.Sprintf("%-22s", "Monthly p.p. (€)")))
		planBody.WriteString(a.plan.input.View())
		planBody.WriteString("\n")
		planBody.WriteString(field("Monthly total", cli.FormatMoney(res.ChosenMonthlyTotal)))
		planBody.WriteString(field("Funded on", cli.FormatProjection(res.Projection)))
		planBody.WriteString(label.Render(fmt.Sprintf("%-22s", "Before departure")))
		planBody.WriteString(feasibilityLabel(res.Feasibility))
		planBody.WriteString("\n")

		if months, ok := res.Horizon.Months(); ok && b.Total.IsPositive() {
			covered := res.ChosenMonthlyTotal.Mul(decimal.NewFromInt(int64(months))).Div(b.Total)
			pct, _ := covered.Float64()
			planBody.WriteString("\n")
			barW := max(10, components.CardInnerWidth(halves[0])-30)
			planBody.WriteString(components.CoverageBar("Saved by departure", pct, 18, barW))
			planBody.WriteString("\n")
		}
	}
	planBody.WriteString("\n")
	hint := "[e] edit  [a] recommended  [x] clear  [w] save  [f] depart once funded"
	if a.plan.editing {
		hint = "typing re-plans instantly · [Enter/Esc] done"
	}
	planBody.WriteString(muted.Render(hint))
	planCard := components.ContentCard("Plan · "+trip.Name, planBody.String(), halves[0])

	// Right: the savings curve at the chosen rate.
	chartW := cw
	if len(halves) > 1 {
		chartW = halves[1]
	}
	var chartBody string
	total, _ := b.Total.Float64()
	monthly, _ := res.ChosenMonthlyTotal.Float64()
	months, funded := res.Projection.Months()
	switch {
	case a.plan.err != nil:
		chartBody = muted.Render("No plan")
	case !funded:
		chartBody = muted.Render("Set a monthly amount to see the savings curve.")
	default:
		curve := cli.SavingsCurve(total, monthly, months)
		chartBody = components.SavingsChart(curve, total, components.CardInnerWidth(chartW), 10)
	}
	chartCard := components.ContentCard("Savings", chartBody, chartW)

	if len(halves) == 1 {
		out.WriteString(planCard)
		out.WriteString("\n")
		out.WriteString(chartCard)
	} else {
		out.WriteString(components.CardRow([]string{planCard, chartCard}))
	}
	return out.String()
}

func projectionValue(p planner.Projection) string {
	d, ok := p.Date()
	if !ok {
		return "never"
	}
	return d.Format(planner.DateLayout)
}

func projectionDelta(p planner.Projection) string {
	m, ok := p.Months()
	if !ok {
		return "no monthly savings"
	}
	return "in " + cli.FormatMonths(m)
}

func feasibilityLabel(f planner.Feasibility) string {
	t := theme.Active
	style := lipgloss.NewStyle().Background(t.Surface).Bold(true)
	switch f {
	case planner.Feasible:
		return style.Foreground(t.Green).Render("✓ funded in time")
	case planner.TooLate:
		return style.Foreground(t.Red).Render("✗ funded too late")
	default:
		return style.Foreground(t.TextMuted).Render("no departure date")
	}
}
