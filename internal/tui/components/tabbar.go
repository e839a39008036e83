package components

import (
	"strings"

	"github.com/palmvoyage/tripfund/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name string
	Key  rune
}

// Tab indexes.
const (
	TabTrips = iota
	TabPlanner
	TabCompare
	TabSettings
)

// Tabs defines all available tabs. Every shortcut is the first letter of
// the tab name.
var Tabs = []Tab{
	{Name: "Trips", Key: 't'},
	{Name: "Planner", Key: 'p'},
	{Name: "Compare", Key: 'c'},
	{Name: "Settings", Key: 's'},
}

// TabVisualWidth returns the rendered width of a tab, including its one
// column of padding on each side.
func TabVisualWidth(tab Tab, _ bool) int {
	return lipgloss.Width(tab.Name) + 2
}

// RenderTabBar renders the tab bar with the given active index. Tabs are
// separated by a single column.
func RenderTabBar(activeIdx int, width int) string {
	t := theme.Active

	active := lipgloss.NewStyle().
		Foreground(t.TextPrimary).
		Background(t.AccentDim).
		Bold(true).
		Padding(0, 1)
	inactive := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)
	key := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface).
		Underline(true)
	pad := lipgloss.NewStyle().Background(t.Surface)

	parts := make([]string, len(Tabs))
	for i, tab := range Tabs {
		if i == activeIdx {
			parts[i] = active.Render(tab.Name)
			continue
		}
		first, rest := tab.Name[:1], tab.Name[1:]
		parts[i] = pad.Render(" ") + key.Render(first) + inactive.Render(rest) + pad.Render(" ")
	}

	sep := lipgloss.NewStyle().Foreground(t.Border).Background(t.Surface).Render("│")
	row := strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(t.Surface).Width(width).Render(row)
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
