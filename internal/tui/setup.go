package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/palmvoyage/tripfund/internal/config"
	"github.com/palmvoyage/tripfund/internal/planner"
	"github.com/palmvoyage/tripfund/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// setupValues holds the first-run form answers. huh writes into these
// through pointers, so they live on the App.
type setupValues struct {
	mapsKey        string
	redisAddr      string
	sliderMax      string
	fallbackMonths string
	theme          string
}

func defaultSetupValues(cfg config.Config) setupValues {
	return setupValues{
		mapsKey:        cfg.Maps.APIKey,
		redisAddr:      cfg.Cache.RedisAddr,
		sliderMax:      strconv.FormatFloat(cfg.Planner.SliderMax, 'f', -1, 64),
		fallbackMonths: strconv.Itoa(cfg.Planner.FallbackMonths),
		theme:          cfg.Appearance.Theme,
	}
}

func validateNonNegative(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return fmt.Errorf("enter a number of euros")
	}
	return nil
}

func validateMonths(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 1 {
		return fmt.Errorf("enter a whole number of months, at least 1")
	}
	return nil
}

// newSetupForm builds the first-run wizard.
func newSetupForm(tripCount int, dbPath string, vals *setupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}

	welcome := fmt.Sprintf("Trips are stored in %s (%d found).", dbPath, tripCount)

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to tripfund").
				Description(welcome+"\nA few settings and you're ready to plan."),
			huh.NewInput().
				Title("Google Geocoding API key").
				Description("Optional. Places trip stops on the map when saving.").
				EchoMode(huh.EchoModePassword).
				Value(&vals.mapsKey),
			huh.NewInput().
				Title("Redis address for the geocode cache").
				Description("Optional. Leave empty to cache in memory.").
				Placeholder("localhost:6379").
				Value(&vals.redisAddr),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Highest suggested monthly amount per person (€)").
				Description("Caps the rate suggested for trips without a departure date.").
				Validate(validateNonNegative).
				Value(&vals.sliderMax),
			huh.NewInput().
				Title("Months to save for undated trips").
				Validate(validateMonths).
				Value(&vals.fallbackMonths),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.theme),
		),
	).WithTheme(huh.ThemeCharm()).WithShowHelp(true)
}

// saveSetupConfig persists the setup wizard values to the config file.
func (a *App) saveSetupConfig() error {
	cfg := a.loadConfig()
	v := a.setupVals

	cfg.Maps.APIKey = strings.TrimSpace(v.mapsKey)
	cfg.Cache.RedisAddr = strings.TrimSpace(v.redisAddr)
	if f, err := strconv.ParseFloat(strings.TrimSpace(v.sliderMax), 64); err == nil && f >= 0 {
		cfg.Planner.SliderMax = f
	}
	if n, err := strconv.Atoi(strings.TrimSpace(v.fallbackMonths)); err == nil && n > 0 {
		cfg.Planner.FallbackMonths = n
	}
	if theme.Valid(v.theme) {
		cfg.Appearance.Theme = v.theme
		theme.SetActive(v.theme)
	}

	if err := config.SaveTo(a.opts.ConfigPath, cfg); err != nil {
		return err
	}
	a.opts.Planner = planner.New(config.PlannerOptions(cfg))
	return nil
}
