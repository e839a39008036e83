package tui

import (
	"fmt"
	"strings"

	"github.com/palmvoyage/tripfund/internal/cli"
	"github.com/palmvoyage/tripfund/internal/scoring"
	"github.com/palmvoyage/tripfund/internal/tui/components"
	"github.com/palmvoyage/tripfund/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderCompareTab(cw int) string {
	t := theme.Active
	totals := a.totals

	if totals.Trips == 0 {
		return components.ContentCard("Compare",
			lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render("No trips to compare."), cw)
	}

	var b strings.Builder

	// Row 1: portfolio metrics
	best := a.summaries[0]
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Trips", Value: fmt.Sprintf("%d", totals.Trips), Delta: fmt.Sprintf("%d dated · %d planned", totals.Dated, totals.Planned)},
		{Label: "Total cost", Value: cli.FormatMoney(totals.TotalCost), Delta: "avg " + cli.FormatMoney(totals.AverageCost)},
		{Label: "Average score", Value: fmt.Sprintf("%.0f/100", totals.AverageScore), Delta: string(scoring.TierOf(int(totals.AverageScore + 0.5)))},
		{Label: "Best trip", Value: truncStr(best.Trip.Name, 20), Delta: fmt.Sprintf("%d/100", best.Score)},
	}, cw))
	b.WriteString("\n")

	// Row 2: ranking table
	header := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	row := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	muted := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	innerW := components.CardInnerWidth(cw)
	nameW := max(12, innerW-72)
	format := fmt.Sprintf("%%3s  %%-%ds %%12s %%12s %%10s %%9s  %%s", nameW)

	var table strings.Builder
	table.WriteString(header.Render(fmt.Sprintf(format, "#", "Trip", "Total", "Monthly", "Months", "Departs", "Score")))
	table.WriteString("\n")
	table.WriteString(muted.Render(strings.Repeat("─", innerW)))
	table.WriteString("\n")
	for _, s := range a.summaries {
		months := "-"
		if s.MonthsToTarget > 0 {
			months = fmt.Sprintf("%d", s.MonthsToTarget)
		}
		departs := "-"
		if s.Trip.StartDate != nil {
			departs = s.Trip.StartDate.Format("Jan 2006")
		}
		line := fmt.Sprintf(format,
			fmt.Sprintf("%d", s.Rank),
			truncStr(s.Trip.Name, nameW),
			cli.FormatMoney(s.Breakdown.Total),
			cli.FormatMoney(s.MonthlyAmount),
			months,
			departs,
			"")
		table.WriteString(row.Render(line))
		table.WriteString(scoreCell(s.Score, scoring.Tier(s.Tier)))
		table.WriteString("\n")
	}
	b.WriteString(components.ContentCard("Ranking", strings.TrimRight(table.String(), "\n"), cw))
	b.WriteString("\n")

	// Row 3: where the money goes, across all trips
	var shares strings.Builder
	barW := max(10, min(40, innerW-40))
	for i, s := range a.shares {
		if i > 0 {
			shares.WriteString("\n")
		}
		shares.WriteString(components.ShareBar(string(s.Category), s.Percent/100, cli.FormatMoney(s.Amount), 14, barW))
	}
	if len(a.shares) == 0 {
		shares.WriteString(muted.Render("No costs entered."))
	}
	b.WriteString(components.ContentCard("Expenses across trips", shares.String(), cw))

	return b.String()
}

func scoreCell(score int, tier scoring.Tier) string {
	t := theme.Active
	return lipgloss.NewStyle().
		Foreground(components.ColorForTier(tier)).
		Background(t.Surface).
		Bold(true).
		Render(fmt.Sprintf("%3d %s", score, tier))
}
