package components

import (
	"fmt"
	"strings"

	"github.com/palmvoyage/tripfund/internal/scoring"
	"github.com/palmvoyage/tripfund/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ProgressBar renders a block progress bar followed by its percentage.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	pct = clamp01(pct)
	filled := int(pct * float64(width))

	bar := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	empty := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	label := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)

	return bar.Render(strings.Repeat("█", filled)) +
		empty.Render(strings.Repeat("░", width-filled)) +
		label.Render(fmt.Sprintf(" %.0f%%", pct*100))
}

// ColorForCoverage returns red below half, orange below full and green once
// the savings cover the trip.
func ColorForCoverage(pct float64) lipgloss.Color {
	t := theme.Active
	switch {
	case pct >= 1:
		return t.Green
	case pct >= 0.5:
		return t.Orange
	default:
		return t.Red
	}
}

// ColorForTier maps a feasibility tier to its color.
func ColorForTier(tier scoring.Tier) lipgloss.Color {
	t := theme.Active
	switch tier {
	case scoring.TierGood:
		return t.Green
	case scoring.TierFair:
		return t.Orange
	default:
		return t.Red
	}
}

// CoverageBar renders a labeled bar showing which share of a cost pct
// covers. pct may exceed 1; the bar is full and the label shows the real
// figure.
func CoverageBar(label string, pct float64, labelW, barWidth int) string {
	t := theme.Active
	color := ColorForCoverage(pct)
	return labeledBar(label, pct, color, labelW, barWidth) +
		lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true).
			Render(fmt.Sprintf(" %4.0f%%", pct*100))
}

// ShareBar renders an expense category's part of a total.
func ShareBar(label string, pct float64, value string, labelW, barWidth int) string {
	t := theme.Active
	return labeledBar(label, pct, t.Accent, labelW, barWidth) +
		lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).
			Render(fmt.Sprintf(" %4.0f%%  %s", pct*100, value))
}

func labeledBar(label string, pct float64, color lipgloss.Color, labelW, barWidth int) string {
	t := theme.Active
	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface)
	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
		space.Render(" ") +
		bar.ViewAs(clamp01(pct))
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}
