package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/palmvoyage/tripfund/internal/config"
	"github.com/palmvoyage/tripfund/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	var tripCount int
	if st, err := openStore(); err == nil {
		tripCount, _ = st.TripCount()
		_ = st.Close()
	}

	apiKey := ""
	keyHint := "Optional. Places trip stops on the map when saving."
	if existing := config.GetMapsAPIKey(cfg); existing != "" {
		keyHint = fmt.Sprintf("Current: %s. Leave empty to keep it.", maskAPIKey(existing))
	}
	redisAddr := cfg.Cache.RedisAddr
	sliderMax := strconv.FormatFloat(cfg.Planner.SliderMax, 'f', -1, 64)
	months := strconv.Itoa(cfg.Planner.FallbackMonths)
	themeName := cfg.Appearance.Theme

	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to tripfund!").
				Description(fmt.Sprintf("Found %d trips in %s", tripCount, dbPath())),
			huh.NewInput().
				Title("1. Google Geocoding API key").
				Description(keyHint).
				EchoMode(huh.EchoModePassword).
				Value(&apiKey),
			huh.NewInput().
				Title("2. Redis address for the geocode cache").
				Description("Optional. Leave empty to cache in memory.").
				Placeholder("localhost:6379").
				Value(&redisAddr),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("3. Highest suggested monthly amount per person (€)").
				Validate(func(s string) error {
					if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil || v < 0 {
						return errors.New("enter a number of euros")
					}
					return nil
				}).
				Value(&sliderMax),
			huh.NewInput().
				Title("4. Months to save for trips without a date").
				Validate(func(s string) error {
					if v, err := strconv.Atoi(strings.TrimSpace(s)); err != nil || v < 1 {
						return errors.New("enter a whole number of months, at least 1")
					}
					return nil
				}).
				Value(&months),
			huh.NewSelect[string]().
				Title("5. Color theme").
				Options(themeOpts...).
				Value(&themeName),
		),
	).WithTheme(huh.ThemeCharm())

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return err
	}

	if k := strings.TrimSpace(apiKey); k != "" {
		cfg.Maps.APIKey = k
	}
	cfg.Cache.RedisAddr = strings.TrimSpace(redisAddr)
	cfg.Planner.SliderMax, _ = strconv.ParseFloat(strings.TrimSpace(sliderMax), 64)
	cfg.Planner.FallbackMonths, _ = strconv.Atoi(strings.TrimSpace(months))
	cfg.Appearance.Theme = themeName

	if err := config.SaveTo(flagConfig, cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", flagConfig)
	fmt.Println("  Run `tripfund setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}

func maskAPIKey(key string) string {
	if len(key) > 16 {
		return key[:8] + "..." + key[len(key)-4:]
	}
	if len(key) > 4 {
		return key[:4] + "..."
	}
	return "****"
}
