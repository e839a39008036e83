package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/palmvoyage/tripfund/internal/planner"
	"github.com/palmvoyage/tripfund/internal/scoring"
)

// Theme colors (Palm, a warm dark palette)
var (
	ColorBorder    = lipgloss.Color("#2F3A36")
	ColorTextDim   = lipgloss.Color("#5C6B65")
	ColorTextMuted = lipgloss.Color("#7D8C86")
	ColorText      = lipgloss.Color("#F4F1E8")
	ColorAccent    = lipgloss.Color("#2FB5A0")
	ColorGreen     = lipgloss.Color("#8DB33A")
	ColorOrange    = lipgloss.Color("#E58A3A")
	ColorRed       = lipgloss.Color("#D9534F")
	ColorYellow    = lipgloss.Color("#E2B93B")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)

	labelStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Width(22)
)

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	width := 55
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(width).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderField renders one "label  value" line.
func RenderField(label, value string) string {
	return "  " + labelStyle.Render(label) + valueStyle.Render(value)
}

// RenderMuted renders secondary text.
func RenderMuted(s string) string {
	return mutedStyle.Render(s)
}

// pad pads s to w display cells. Cell widths come from lipgloss so
// multi-byte text like "€" and "→" lines up.
func pad(s string, w int, right bool) string {
	gap := w - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	if right {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}

func rule(b *strings.Builder, widths []int, left, mid, right string) {
	b.WriteString(dimStyle.Render(left))
	for i, w := range widths {
		b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
		if i < len(widths)-1 {
			b.WriteString(dimStyle.Render(mid))
		}
	}
	b.WriteString(dimStyle.Render(right))
	b.WriteString("\n")
}

// RenderTable renders a bordered table with headers and rows. The first
// column is left-aligned, the others right-aligned. A row holding the
// single cell "---" renders as a separator.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}

	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
	} else {
		for i, h := range t.Headers {
			widths[i] = max(widths[i], lipgloss.Width(h))
		}
		for _, row := range t.Rows {
			for i, cell := range row {
				if i < numCols {
					widths[i] = max(widths[i], lipgloss.Width(cell))
				}
			}
		}
	}

	var b strings.Builder

	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	rule(&b, widths, "╭", "┬", "╮")

	if len(t.Headers) > 0 {
		b.WriteString(dimStyle.Render("│"))
		for i, h := range t.Headers {
			b.WriteString(headerStyle.Render(" " + pad(h, widths[i], false) + " "))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
		rule(&b, widths, "├", "┼", "┤")
	}

	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			rule(&b, widths, "├", "┼", "┤")
			continue
		}

		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			b.WriteString(valueStyle.Render(" " + pad(cell, widths[i], i > 0) + " "))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
	}

	rule(&b, widths, "╰", "┴", "╯")
	return b.String()
}

// RenderProgressBar renders a simple text progress bar.
func RenderProgressBar(current, total int, width int) string {
	if total <= 0 {
		return ""
	}

	pct := float64(current) / float64(total)
	if pct > 1 {
		pct = 1
	}
	filled := min(int(pct*float64(width)), width)

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s] %d/%d", mutedStyle.Render(bar), current, total)
}

// RenderSparkline generates a unicode block sparkline from a series of values.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	peak := values[0]
	for _, v := range values[1:] {
		peak = max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int(v / peak * float64(len(blocks)-1))
		idx = max(0, min(idx, len(blocks)-1))
		b.WriteRune(blocks[idx])
	}
	return b.String()
}

// RenderHorizontalBar renders a labelled bar scaled against maxValue.
func RenderHorizontalBar(label string, value, maxValue float64, maxWidth int) string {
	barLen := 0
	if maxValue > 0 {
		barLen = max(0, int(value/maxValue*float64(maxWidth)))
	}
	bar := lipgloss.NewStyle().Foreground(ColorAccent).Render(strings.Repeat("█", barLen))
	return fmt.Sprintf("  %s %s", labelStyle.Render(label), bar)
}

// ScoreStyle returns the color style for a feasibility tier.
func ScoreStyle(tier scoring.Tier) lipgloss.Style {
	switch tier {
	case scoring.TierGood:
		return lipgloss.NewStyle().Foreground(ColorGreen).Bold(true)
	case scoring.TierFair:
		return lipgloss.NewStyle().Foreground(ColorYellow).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(ColorRed).Bold(true)
	}
}

// RenderScore renders a score colored by its tier, e.g. "85 good".
func RenderScore(score int) string {
	tier := scoring.TierOf(score)
	return ScoreStyle(tier).Render(fmt.Sprintf("%d %s", score, tier))
}

// RenderFeasibility renders a feasibility verdict.
func RenderFeasibility(f planner.Feasibility) string {
	switch f {
	case planner.Feasible:
		return lipgloss.NewStyle().Foreground(ColorGreen).Render("✓ ready before departure")
	case planner.TooLate:
		return lipgloss.NewStyle().Foreground(ColorOrange).Render("✗ funded after departure")
	default:
		return mutedStyle.Render("no departure date")
	}
}

// SavingsCurve returns the cumulative amount saved at the end of each
// month until the total is reached, for RenderSparkline.
func SavingsCurve(total, monthly float64, months int) []float64 {
	if months <= 0 || monthly <= 0 {
		return nil
	}
	out := make([]float64, months)
	for i := range out {
		out[i] = min(total, monthly*float64(i+1))
	}
	return out
}
