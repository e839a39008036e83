package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/palmvoyage/tripfund/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	peak := 0.0
	for _, v := range values {
		peak = math.Max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}

	var buf strings.Builder
	for _, v := range values {
		idx := int(v / peak * float64(len(sparkBlocks)-1))
		idx = max(0, min(idx, len(sparkBlocks)-1))
		buf.WriteRune(sparkBlocks[idx])
	}
	return lipgloss.NewStyle().Foreground(color).Background(theme.Active.Surface).Render(buf.String())
}

// SavingsChart draws the running balance of a savings plan as columns, one
// per month, against a dashed line at the target amount. Months past the
// target are drawn in the accent color, months before it in green.
func SavingsChart(balances []float64, target float64, width, height int) string {
	if len(balances) == 0 {
		return ""
	}
	if width < 20 || height < 4 {
		return Sparkline(balances, theme.Active.Accent)
	}
	t := theme.Active

	ceiling := target
	for _, v := range balances {
		ceiling = math.Max(ceiling, v)
	}
	if ceiling <= 0 {
		ceiling = 1
	}

	axisW := len(formatEuroLabel(ceiling)) + 1
	plotW := width - axisW - 1

	// Sample down to the plot width, always keeping the final month.
	values := balances
	if n := len(values); n > plotW {
		sampled := make([]float64, plotW)
		for i := range sampled {
			sampled[i] = values[i*(n-1)/(plotW-1)]
		}
		values = sampled
	}
	colW := max(1, min(3, plotW/len(values)))

	axis := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	fill := lipgloss.NewStyle().Background(t.Surface)
	under := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)
	over := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	goal := lipgloss.NewStyle().Foreground(t.Yellow).Background(t.Surface)

	targetRow := int(math.Round(target / ceiling * float64(height)))

	var b strings.Builder
	for row := height; row >= 1; row-- {
		label := ""
		switch row {
		case height:
			label = formatEuroLabel(ceiling)
		case targetRow:
			label = formatEuroLabel(target)
		}
		b.WriteString(axis.Render(fmt.Sprintf("%*s│", axisW, label)))

		top := ceiling * float64(row) / float64(height)
		bottom := ceiling * float64(row-1) / float64(height)
		for _, v := range values {
			style := under
			if v >= target {
				style = over
			}
			switch {
			case v >= top:
				b.WriteString(style.Render(strings.Repeat("█", colW)))
			case v > bottom:
				idx := int((v - bottom) / (top - bottom) * float64(len(sparkBlocks)-1))
				b.WriteString(style.Render(strings.Repeat(string(sparkBlocks[idx]), colW)))
			case row == targetRow:
				b.WriteString(goal.Render(strings.Repeat("╌", colW)))
			default:
				b.WriteString(fill.Render(strings.Repeat(" ", colW)))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(axis.Render(fmt.Sprintf("%*s└", axisW, "0")))
	b.WriteString(axis.Render(strings.Repeat("─", colW*len(values))))
	b.WriteString("\n")
	b.WriteString(axis.Render(fmt.Sprintf("%*s %s", axisW, "", monthAxis(len(balances), colW*len(values)))))
	return b.String()
}

// monthAxis labels the first and last month under a chart of the given width.
func monthAxis(months, width int) string {
	first, last := "m1", fmt.Sprintf("m%d", months)
	if months <= 1 || width < len(first)+len(last)+1 {
		return first
	}
	return first + strings.Repeat(" ", width-len(first)-len(last)) + last
}

func formatEuroLabel(v float64) string {
	switch {
	case v >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case v >= 1e4:
		return fmt.Sprintf("%.0fk", v/1e3)
	case v >= 1e3:
		return fmt.Sprintf("%.1fk", v/1e3)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}
