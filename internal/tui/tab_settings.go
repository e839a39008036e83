package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/palmvoyage/tripfund/internal/config"
	"github.com/palmvoyage/tripfund/internal/planner"
	"github.com/palmvoyage/tripfund/internal/tui/components"
	"github.com/palmvoyage/tripfund/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	settingsFieldMapsKey = iota
	settingsFieldRedisAddr
	settingsFieldSliderMax
	settingsFieldFallbackMonths
	settingsFieldFallbackStep
	settingsFieldTheme
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool  // flash "saved" message
	saveErr error // non-nil if the last save failed
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 50
	return ti
}

func (a *App) handleSettingsKey(key string) (bool, tea.Cmd) {
	switch key {
	case "j", "down":
		if a.settings.cursor < settingsFieldCount-1 {
			a.settings.cursor++
		}
	case "k", "up":
		if a.settings.cursor > 0 {
			a.settings.cursor--
		}
	case "enter":
		return true, a.settingsStartEdit()
	default:
		return false, nil
	}
	return true, nil
}

func (a *App) settingsStartEdit() tea.Cmd {
	cfg := a.loadConfig()
	a.settings.editing = true
	a.settings.saved = false

	ti := newSettingsInput()
	switch a.settings.cursor {
	case settingsFieldMapsKey:
		ti.Placeholder = "Google Geocoding API key"
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '*'
		ti.SetValue(cfg.Maps.APIKey)
	case settingsFieldRedisAddr:
		ti.Placeholder = "localhost:6379 (empty caches in memory)"
		ti.SetValue(cfg.Cache.RedisAddr)
	case settingsFieldSliderMax:
		ti.Placeholder = "2000"
		ti.SetValue(strconv.FormatFloat(cfg.Planner.SliderMax, 'f', -1, 64))
	case settingsFieldFallbackMonths:
		ti.Placeholder = "12"
		ti.SetValue(strconv.Itoa(cfg.Planner.FallbackMonths))
	case settingsFieldFallbackStep:
		ti.Placeholder = "10"
		ti.SetValue(strconv.FormatFloat(cfg.Planner.FallbackStep, 'f', -1, 64))
	case settingsFieldTheme:
		ti.Placeholder = strings.Join(theme.Names(), ", ")
		ti.SetValue(cfg.Appearance.Theme)
	}

	a.settings.input = ti
	return a.settings.input.Focus()
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settingsSave()
		a.settings.editing = false
		a.settings.saved = a.settings.saveErr == nil
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// settingsSave writes the edited field. Invalid values are rejected with
// an error and leave the config untouched.
func (a *App) settingsSave() {
	cfg := a.loadConfig()
	val := strings.TrimSpace(a.settings.input.Value())

	a.settings.saveErr = nil
	switch a.settings.cursor {
	case settingsFieldMapsKey:
		cfg.Maps.APIKey = val
	case settingsFieldRedisAddr:
		cfg.Cache.RedisAddr = val
	case settingsFieldSliderMax:
		v, err := strconv.ParseFloat(val, 64)
		if err != nil || v < 0 {
			a.settings.saveErr = fmt.Errorf("slider max must be a non-negative number")
			return
		}
		cfg.Planner.SliderMax = v
	case settingsFieldFallbackMonths:
		v, err := strconv.Atoi(val)
		if err != nil || v < 1 {
			a.settings.saveErr = fmt.Errorf("fallback months must be at least 1")
			return
		}
		cfg.Planner.FallbackMonths = v
	case settingsFieldFallbackStep:
		v, err := strconv.ParseFloat(val, 64)
		if err != nil || v < 0 {
			a.settings.saveErr = fmt.Errorf("fallback step must be a non-negative number")
			return
		}
		cfg.Planner.FallbackStep = v
	case settingsFieldTheme:
		if !theme.Valid(val) {
			a.settings.saveErr = fmt.Errorf("unknown theme %q", val)
			return
		}
		cfg.Appearance.Theme = val
		theme.SetActive(val)
	}

	if a.settings.saveErr = config.SaveTo(a.opts.ConfigPath, cfg); a.settings.saveErr != nil {
		return
	}
	a.opts.Planner = planner.New(config.PlannerOptions(cfg))
	a.replan()
}

func maskKey(key string) string {
	switch {
	case key == "":
		return "(not set)"
	case len(key) > 12:
		return key[:6] + "..." + key[len(key)-4:]
	default:
		return "****"
	}
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active
	cfg := a.loadConfig()

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	redis := cfg.Cache.RedisAddr
	if redis == "" {
		redis = "(in memory)"
	}
	fields := []struct{ label, value string }{
		{"Maps API key", maskKey(cfg.Maps.APIKey)},
		{"Redis address", redis},
		{"Slider max (€)", strconv.FormatFloat(cfg.Planner.SliderMax, 'f', -1, 64)},
		{"Fallback months", strconv.Itoa(cfg.Planner.FallbackMonths)},
		{"Fallback step (€)", strconv.FormatFloat(cfg.Planner.FallbackStep, 'f', -1, 64)},
		{"Theme", cfg.Appearance.Theme},
	}

	innerW := components.CardInnerWidth(cw)
	var form strings.Builder
	for i, f := range fields {
		switch {
		case a.settings.editing && i == a.settings.cursor:
			form.WriteString(markerStyle.Render("▸ "))
			form.WriteString(accentStyle.Render(fmt.Sprintf("%-20s ", f.label)))
			form.WriteString(a.settings.input.View())
		case i == a.settings.cursor:
			line := markerStyle.Render("▸ ") +
				selectedLabelStyle.Render(fmt.Sprintf("%-20s ", f.label+":")) +
				selectedStyle.Render(f.value)
			form.WriteString(line)
			if pad := innerW - lipgloss.Width(line); pad > 0 {
				form.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad)))
			}
		default:
			form.WriteString(valueStyle.Render("  "))
			form.WriteString(labelStyle.Render(fmt.Sprintf("%-20s ", f.label+":")))
			form.WriteString(valueStyle.Render(f.value))
		}
		form.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		form.WriteString("\n")
		form.WriteString(lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).
			Render("Not saved: " + a.settings.saveErr.Error()))
		form.WriteString("\n")
	} else if a.settings.saved {
		form.WriteString("\n")
		form.WriteString(lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface).Render("Saved!"))
		form.WriteString("\n")
	}
	form.WriteString("\n")
	form.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	var info strings.Builder
	infoField := func(name, v string) {
		info.WriteString(labelStyle.Render(fmt.Sprintf("%-18s", name)) + valueStyle.Render(v) + "\n")
	}
	infoField("Database", a.opts.DBPath)
	infoField("Config file", a.opts.ConfigPath)
	infoField("Trips loaded", strconv.Itoa(len(a.summaries)))
	infoField("Load time", fmt.Sprintf("%.2fs", a.loadTime.Seconds()))
	if r := a.imported; r != nil {
		infoField("Last import", fmt.Sprintf("%d files, %d unchanged, %d trips, %d rejected",
			r.TotalFiles, r.Unchanged, r.Imported, r.Invalid))
	}

	var b strings.Builder
	b.WriteString(components.ContentCard("Settings", form.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("General", strings.TrimRight(info.String(), "\n"), cw))
	return b.String()
}
