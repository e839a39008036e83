package tui

import (
	"fmt"
	"strings"

	"github.com/palmvoyage/tripfund/internal/cli"
	"github.com/palmvoyage/tripfund/internal/model"
	"github.com/palmvoyage/tripfund/internal/scoring"
	"github.com/palmvoyage/tripfund/internal/tui/components"
	"github.com/palmvoyage/tripfund/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Trips view modes. Split is the zero value so it is the default.
const (
	tripsViewSplit  = iota // List + detail side by side
	tripsViewDetail        // Full-screen detail
)

// tripsState holds the trips tab state. The cursor is shared with the
// planner tab, which plans the selected trip.
type tripsState struct {
	cursor   int
	viewMode int
	offset   int // scroll offset for the list

	searching   bool
	searchInput textinput.Model
	query       string
}

func newSearchInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "name, city or country"
	ti.Prompt = "/ "
	ti.CharLimit = 64
	ti.Width = 30
	return ti
}

// visibleTrips returns the trips matching the current search query.
func (a App) visibleTrips() []model.TripSummary {
	return filterTrips(a.summaries, a.trips.query)
}

// filterTrips keeps trips whose name, route or countries contain query,
// ignoring case.
func filterTrips(trips []model.TripSummary, query string) []model.TripSummary {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return trips
	}
	var out []model.TripSummary
	for _, s := range trips {
		hay := strings.ToLower(s.Trip.Name + " " + s.Trip.Route() + " " + strings.Join(s.Trip.Countries(), " "))
		if strings.Contains(hay, q) {
			out = append(out, s)
		}
	}
	return out
}

// selected returns the trip under the cursor.
func (a App) selected() (model.TripSummary, bool) {
	visible := a.visibleTrips()
	if a.trips.cursor < 0 || a.trips.cursor >= len(visible) {
		return model.TripSummary{}, false
	}
	return visible[a.trips.cursor], true
}

func (a *App) moveTripCursor(delta int) {
	n := len(a.visibleTrips())
	next := a.trips.cursor + delta
	if next < 0 || next >= n {
		return
	}
	a.trips.cursor = next
	a.replan()
}

func (a *App) handleTripsKey(key string) (bool, tea.Cmd) {
	compact := a.isCompactLayout()
	n := len(a.visibleTrips())

	switch key {
	case "/":
		a.trips.searching = true
		a.trips.searchInput = newSearchInput()
		a.trips.searchInput.SetValue(a.trips.query)
		return true, a.trips.searchInput.Focus()
	case "j", "down":
		a.moveTripCursor(1)
	case "k", "up":
		a.moveTripCursor(-1)
	case "g":
		a.trips.cursor = 0
		a.trips.offset = 0
		a.replan()
	case "G":
		a.trips.cursor = max(0, n-1)
		a.replan()
	case "enter":
		if !compact && a.trips.viewMode == tripsViewSplit {
			a.trips.viewMode = tripsViewDetail
		}
	case "esc":
		switch {
		case a.trips.query != "":
			a.trips.query = ""
			a.trips.cursor = 0
			a.trips.offset = 0
			a.replan()
		case a.trips.viewMode == tripsViewDetail:
			a.trips.viewMode = tripsViewSplit
		}
	case "q":
		if a.trips.viewMode == tripsViewDetail {
			a.trips.viewMode = tripsViewSplit
			return true, nil
		}
		return false, nil
	default:
		return false, nil
	}
	return true, nil
}

// updateTripsSearch handles key events while in search mode.
func (a App) updateTripsSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.trips.query = strings.TrimSpace(a.trips.searchInput.Value())
		a.trips.searching = false
		a.trips.cursor = 0
		a.trips.offset = 0
		a.replan()
		return a, nil
	case "esc":
		a.trips.searching = false
		return a, nil
	}

	var cmd tea.Cmd
	a.trips.searchInput, cmd = a.trips.searchInput.Update(msg)
	return a, cmd
}

func (a App) renderTripsTab(cw, h int) string {
	t := theme.Active
	trips := a.visibleTrips()

	var search string
	if a.trips.searching {
		search = a.trips.searchInput.View() + "\n"
		h--
	}

	if len(trips) == 0 {
		msg := "No trips yet. Add one with `tripfund trip add` or import a folder with `tripfund trip import`."
		if a.trips.query != "" {
			msg = fmt.Sprintf("No trips match %q", a.trips.query)
		}
		return search + components.ContentCard("Trips",
			lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render(msg), cw)
	}

	if a.trips.viewMode == tripsViewDetail && !a.isCompactLayout() {
		sel, _ := a.selected()
		return search + components.ContentCard(sel.Trip.Name, a.renderTripDetail(sel, cw), cw)
	}
	return search + a.renderTripsSplit(trips, cw, h)
}

func (a App) renderTripsSplit(trips []model.TripSummary, cw, h int) string {
	t := theme.Active

	leftW := max(34, cw/3)
	rightW := cw - leftW
	leftInner := components.CardInnerWidth(leftW)

	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover).Bold(true)

	visible := max(5, h-4) // card border (2) + title (1) + hint (1)
	offset := a.trips.offset
	if a.trips.cursor < offset {
		offset = a.trips.cursor
	}
	if a.trips.cursor >= offset+visible {
		offset = a.trips.cursor - visible + 1
	}
	end := min(len(trips), offset+visible)

	var left strings.Builder
	for i := offset; i < end; i++ {
		s := trips[i]
		score := fmt.Sprintf("%3d", s.Score)
		nameW := leftInner - len(score) - 1
		line := fmt.Sprintf("%-*s %s", nameW, truncStr(s.Trip.Name, nameW), score)

		style := rowStyle
		if i == a.trips.cursor {
			style = selectedStyle
		}
		left.WriteString(style.Render(line))
		if i < end-1 {
			left.WriteString("\n")
		}
	}

	sel := trips[a.trips.cursor]
	leftCard := components.ContentCard(fmt.Sprintf("Trips (%d)", len(trips)), left.String(), leftW)
	rightCard := components.ContentCard(sel.Trip.Name, a.renderTripDetail(sel, rightW), rightW)
	return components.CardRow([]string{leftCard, rightCard})
}

// renderTripDetail renders the itinerary, cost breakdown, saved plan and
// score of a trip. Used by both the split pane and the full-screen view.
func (a App) renderTripDetail(s model.TripSummary, w int) string {
	t := theme.Active
	trip := s.Trip
	b := s.Breakdown
	innerW := components.CardInnerWidth(w)

	header := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	muted := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	field := func(name, v string) string {
		return label.Render(fmt.Sprintf("%-16s", name)) + value.Render(v) + "\n"
	}

	var body strings.Builder
	body.WriteString(muted.Render(truncStr(trip.Route(), innerW)))
	body.WriteString("\n\n")

	body.WriteString(field("Passengers", fmt.Sprintf("%d", trip.Passengers)))
	body.WriteString(field("Dates", fmt.Sprintf("%s → %s", cli.FormatDate(trip.StartDate), cli.FormatDate(trip.EndDate))))
	body.WriteString(field("Departs", cli.FormatDaysLeft(a.today(), trip.StartDate)))
	if trip.TargetDate != nil {
		body.WriteString(field("Savings target", cli.FormatDate(trip.TargetDate)))
	}

	body.WriteString("\n")
	body.WriteString(header.Render("COST"))
	body.WriteString("\n")
	body.WriteString(field("Flight", cli.FormatMoney(b.Flight)))
	body.WriteString(field("Accommodation", cli.FormatMoney(b.Accommodation)))
	body.WriteString(field("Additional", cli.FormatMoney(b.Additional)))
	body.WriteString(field("Total", cli.FormatMoney(b.Total)))
	body.WriteString(field("Per person", cli.FormatMoney(b.PerPerson)))
	barW := max(10, min(30, innerW-40))
	for _, share := range b.Shares {
		body.WriteString(components.ShareBar(string(share.Category), share.Percent/100, cli.FormatMoney(share.Amount), 14, barW))
		body.WriteString("\n")
	}

	body.WriteString("\n")
	body.WriteString(header.Render("STOPS"))
	body.WriteString("\n")
	for _, d := range trip.Destinations {
		line := d.City + ", " + d.Country
		if trip.LodgingMode == model.LodgingPerStop && d.HasLodging {
			line += fmt.Sprintf("  %d nights × %s", d.Nights, cli.FormatMoney(d.PricePerNight))
		}
		body.WriteString(value.Render(truncStr(line, innerW)))
		if d.Located() {
			body.WriteString(muted.Render(fmt.Sprintf("  %.3f, %.3f", *d.Latitude, *d.Longitude)))
		}
		body.WriteString("\n")
	}

	body.WriteString("\n")
	body.WriteString(header.Render("FUNDING"))
	body.WriteString("\n")
	if trip.Funding.Planned() {
		body.WriteString(field("Monthly p.p.", cli.FormatMoneyPtr(trip.Funding.MonthlyPerPerson)))
		body.WriteString(field("Monthly total", cli.FormatMoneyPtr(trip.Funding.MonthlyTotal)))
		if trip.Funding.Months != nil {
			body.WriteString(field("Funded in", cli.FormatMonths(*trip.Funding.Months)))
		}
		body.WriteString(field("Funded on", cli.FormatDate(trip.Funding.Date)))
	} else {
		body.WriteString(muted.Render("No saved plan. Open the planner with [p]."))
		body.WriteString("\n")
	}

	tierColor := components.ColorForTier(scoring.Tier(s.Tier))
	body.WriteString("\n")
	body.WriteString(label.Render(fmt.Sprintf("%-16s", "Feasibility")))
	body.WriteString(lipgloss.NewStyle().Foreground(tierColor).Background(t.Surface).Bold(true).
		Render(fmt.Sprintf("%d/100 %s", s.Score, s.Tier)))
	if s.Rank > 0 {
		body.WriteString(muted.Render(fmt.Sprintf("  #%d of %d", s.Rank, len(a.summaries))))
	}
	body.WriteString("\n\n")
	body.WriteString(muted.Render("[/] search  [Enter] expand  [j/k] navigate  [p] plan"))

	return body.String()
}
