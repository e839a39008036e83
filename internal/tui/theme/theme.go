// Package theme defines color themes for the tripfund TUI.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme defines the color roles used throughout the TUI.
type Theme struct {
	Name          string
	Background    lipgloss.Color // Main app background
	Surface       lipgloss.Color // Card/panel backgrounds
	SurfaceHover  lipgloss.Color // Selected row
	SurfaceBright lipgloss.Color // Focused field
	Border        lipgloss.Color
	BorderBright  lipgloss.Color
	BorderAccent  lipgloss.Color // Loading and help overlays
	TextDim       lipgloss.Color // Hints, disabled
	TextMuted     lipgloss.Color // Labels, metadata
	TextPrimary   lipgloss.Color
	Accent        lipgloss.Color
	AccentBright  lipgloss.Color
	AccentDim     lipgloss.Color
	Green         lipgloss.Color // Feasible, good tier
	GreenBright   lipgloss.Color
	Orange        lipgloss.Color // Fair tier
	Red           lipgloss.Color // Too late, poor tier
	Blue          lipgloss.Color
	Yellow        lipgloss.Color
	Cyan          lipgloss.Color
}

// Active is the currently selected theme.
var Active = Palm

// Palm is the default theme: sand text on a deep green-teal night.
var Palm = Theme{
	Name:          "palm",
	Background:    lipgloss.Color("#0F1614"),
	Surface:       lipgloss.Color("#16211E"),
	SurfaceHover:  lipgloss.Color("#213330"),
	SurfaceBright: lipgloss.Color("#2B423D"),
	Border:        lipgloss.Color("#35504A"),
	BorderBright:  lipgloss.Color("#4F6F67"),
	BorderAccent:  lipgloss.Color("#2BB3A3"),
	TextDim:       lipgloss.Color("#55706A"),
	TextMuted:     lipgloss.Color("#9AAFA6"),
	TextPrimary:   lipgloss.Color("#F3EAD3"),
	Accent:        lipgloss.Color("#2BB3A3"),
	AccentBright:  lipgloss.Color("#5FD6C7"),
	AccentDim:     lipgloss.Color("#163A35"),
	Green:         lipgloss.Color("#7DBA5A"),
	GreenBright:   lipgloss.Color("#A2D97E"),
	Orange:        lipgloss.Color("#E59A4B"),
	Red:           lipgloss.Color("#E0604F"),
	Blue:          lipgloss.Color("#5B9BD5"),
	Yellow:        lipgloss.Color("#E8C547"),
	Cyan:          lipgloss.Color("#3FC1C9"),
}

// Lagoon is a cool blue theme.
var Lagoon = Theme{
	Name:          "lagoon",
	Background:    lipgloss.Color("#0B1420"),
	Surface:       lipgloss.Color("#122033"),
	SurfaceHover:  lipgloss.Color("#1B3049"),
	SurfaceBright: lipgloss.Color("#24405F"),
	Border:        lipgloss.Color("#2E4A6B"),
	BorderBright:  lipgloss.Color("#4A6D94"),
	BorderAccent:  lipgloss.Color("#4FB0E8"),
	TextDim:       lipgloss.Color("#4A6582"),
	TextMuted:     lipgloss.Color("#9DB3CC"),
	TextPrimary:   lipgloss.Color("#E6F0FA"),
	Accent:        lipgloss.Color("#4FB0E8"),
	AccentBright:  lipgloss.Color("#86CCF3"),
	AccentDim:     lipgloss.Color("#17324A"),
	Green:         lipgloss.Color("#5CC98A"),
	GreenBright:   lipgloss.Color("#8BE3AF"),
	Orange:        lipgloss.Color("#F0A35E"),
	Red:           lipgloss.Color("#EF6B73"),
	Blue:          lipgloss.Color("#4FB0E8"),
	Yellow:        lipgloss.Color("#F2D06B"),
	Cyan:          lipgloss.Color("#58D6E0"),
}

// Dusk is a warm sunset theme.
var Dusk = Theme{
	Name:          "dusk",
	Background:    lipgloss.Color("#17121C"),
	Surface:       lipgloss.Color("#221A29"),
	SurfaceHover:  lipgloss.Color("#322639"),
	SurfaceBright: lipgloss.Color("#41324A"),
	Border:        lipgloss.Color("#4D3B57"),
	BorderBright:  lipgloss.Color("#6C5578"),
	BorderAccent:  lipgloss.Color("#F28C5B"),
	TextDim:       lipgloss.Color("#6C5578"),
	TextMuted:     lipgloss.Color("#B7A4C0"),
	TextPrimary:   lipgloss.Color("#FBEFE6"),
	Accent:        lipgloss.Color("#F28C5B"),
	AccentBright:  lipgloss.Color("#F8B089"),
	AccentDim:     lipgloss.Color("#3E2622"),
	Green:         lipgloss.Color("#9CCB6B"),
	GreenBright:   lipgloss.Color("#BFE394"),
	Orange:        lipgloss.Color("#F2B05B"),
	Red:           lipgloss.Color("#E65A6E"),
	Blue:          lipgloss.Color("#8C9EF2"),
	Yellow:        lipgloss.Color("#F2D45B"),
	Cyan:          lipgloss.Color("#6BD1C9"),
}

// Terminal uses ANSI 16 colors only.
var Terminal = Theme{
	Name:          "terminal",
	Background:    lipgloss.Color("0"),
	Surface:       lipgloss.Color("0"),
	SurfaceHover:  lipgloss.Color("8"),
	SurfaceBright: lipgloss.Color("8"),
	Border:        lipgloss.Color("8"),
	BorderBright:  lipgloss.Color("7"),
	BorderAccent:  lipgloss.Color("6"),
	TextDim:       lipgloss.Color("8"),
	TextMuted:     lipgloss.Color("7"),
	TextPrimary:   lipgloss.Color("15"),
	Accent:        lipgloss.Color("6"),
	AccentBright:  lipgloss.Color("14"),
	AccentDim:     lipgloss.Color("0"),
	Green:         lipgloss.Color("2"),
	GreenBright:   lipgloss.Color("10"),
	Orange:        lipgloss.Color("3"),
	Red:           lipgloss.Color("1"),
	Blue:          lipgloss.Color("4"),
	Yellow:        lipgloss.Color("11"),
	Cyan:          lipgloss.Color("6"),
}

// All available themes.
var All = []Theme{Palm, Lagoon, Dusk, Terminal}

// Names returns the theme names in display order.
func Names() []string {
	out := make([]string, len(All))
	for i, t := range All {
		out[i] = t.Name
	}
	return out
}

// Valid reports whether name is a known theme.
func Valid(name string) bool {
	for _, t := range All {
		if t.Name == name {
			return true
		}
	}
	return false
}

// ByName returns a theme by its name, defaulting to Palm.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return Palm
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}
