package components

import (
	"strings"

	"github.com/palmvoyage/tripfund/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom status bar: key hints on the left,
// an optional flash message in the middle and store info on the right.
func RenderStatusBar(width int, flash, info string, refreshing bool) string {
	t := theme.Active

	hint := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	msg := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	left := hint.Render(" [?]help  [q]uit")
	if flash != "" {
		left += msg.Render("   " + flash)
	}
	right := info
	if refreshing {
		right = "refreshing… " + right
	}
	right = dim.Render(right + " ")

	gap := max(0, width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + dim.Render(strings.Repeat(" ", gap)) + right
}
