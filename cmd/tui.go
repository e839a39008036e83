package cmd

import (
	"fmt"
	"time"

	"github.com/palmvoyage/tripfund/internal/logging"
	"github.com/palmvoyage/tripfund/internal/tui"
	"github.com/palmvoyage/tripfund/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var flagTUIImport string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive trip planner",
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().StringVar(&flagTUIImport, "import", "", "Import trip files from this directory on start")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	theme.SetActive(cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	opts := tui.Options{
		ConfigPath:      flagConfig,
		DBPath:          dbPath(),
		Planner:         newPlanner(),
		ImportDir:       flagTUIImport,
		RefreshInterval: cfg.Server.PollInterval(),
		Log:             logging.Named("tui"),
	}
	if flagToday != "" {
		now, err := today()
		if err != nil {
			return err
		}
		opts.Today = func() time.Time { return now }
	}
	if flagTUIImport != "" {
		g, closeGeocoder := newGeocoder(cmd.Context())
		defer closeGeocoder()
		opts.Geocoder = g
	}

	p := tea.NewProgram(tui.NewApp(opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
