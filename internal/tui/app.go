// Package tui provides the interactive Bubble Tea dashboard for tripfund.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/palmvoyage/tripfund/internal/config"
	"github.com/palmvoyage/tripfund/internal/estimate"
	"github.com/palmvoyage/tripfund/internal/geocode"
	"github.com/palmvoyage/tripfund/internal/model"
	"github.com/palmvoyage/tripfund/internal/pipeline"
	"github.com/palmvoyage/tripfund/internal/planner"
	"github.com/palmvoyage/tripfund/internal/store"
	"github.com/palmvoyage/tripfund/internal/tui/components"
	"github.com/palmvoyage/tripfund/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// Options configures the dashboard.
type Options struct {
	ConfigPath string
	DBPath     string
	Planner    *planner.Planner
	// Today returns the current date. Defaults to estimate.Today.
	Today func() time.Time
	// ImportDir, when set, is imported before the first load with a
	// progress bar.
	ImportDir string
	Geocoder  geocode.Geocoder
	// RefreshInterval is how often the store is checked for changes made
	// by other processes.
	RefreshInterval time.Duration
	Log             *zap.Logger
}

// DataLoadedMsg is sent when the initial load (and import) finishes.
type DataLoadedMsg struct {
	Summaries   []model.TripSummary
	Fingerprint store.Fingerprint
	Import      *pipeline.ImportResult
	LoadTime    time.Duration
	Err         error
}

// ProgressMsg reports trip file import progress.
type ProgressMsg struct {
	Current int
	Total   int
}

// RefreshDataMsg is sent when a background store check completes.
// Summaries is nil when nothing changed.
type RefreshDataMsg struct {
	Summaries   []model.TripSummary
	Fingerprint store.Fingerprint
	Err         error
}

// TripSavedMsg is sent after a trip was written from the planner tab.
type TripSavedMsg struct {
	Trip model.Trip
	Note string
	Err  error
}

// App is the root Bubble Tea model.
type App struct {
	opts Options

	// Data
	summaries   []model.TripSummary
	totals      model.Totals
	shares      []model.ExpenseShare
	fingerprint store.Fingerprint
	loaded      bool
	loadTime    time.Duration
	loadErr     error
	imported    *pipeline.ImportResult

	// Refresh state
	lastRefresh time.Time
	refreshing  bool

	// Flash message in the status bar
	flash   string
	flashAt time.Time

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// Per-tab state
	trips    tripsState
	plan     plannerState
	settings settingsState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals setupValues
	needSetup bool

	// Loading, channel-based progress subscription
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180
	minContentHeight = 5

	flashDuration = 4 * time.Second
)

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	if opts.Planner == nil {
		opts.Planner = planner.New(planner.DefaultOptions())
	}
	if opts.Today == nil {
		opts.Today = estimate.Today
	}
	if opts.RefreshInterval < time.Second {
		opts.RefreshInterval = 5 * time.Second
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = config.ConfigPath()
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	needSetup := !config.ExistsAt(opts.ConfigPath)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		opts:      opts,
		needSetup: needSetup,
		spinner:   sp,
		plan:      newPlannerState(),
		loadSub:   make(chan tea.Msg, 1),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.opts, a.loadSub),
		a.spinner.Tick,
		tickCmd(),
	)
}

// loadConfig loads the config file, returning defaults on error so the
// dashboard can always start.
func (a App) loadConfig() config.Config {
	cfg, err := config.LoadFrom(a.opts.ConfigPath)
	if err != nil {
		a.opts.Log.Warn("loading config", zap.Error(err))
		return config.DefaultConfig()
	}
	return cfg
}

func (a App) today() time.Time {
	return a.opts.Today()
}

// setData replaces the loaded trips and recomputes everything derived
// from them.
func (a *App) setData(summaries []model.TripSummary) {
	a.summaries = summaries
	a.totals = pipeline.Aggregate(summaries)
	a.shares = pipeline.AggregateShares(summaries)

	visible := a.visibleTrips()
	if a.trips.cursor >= len(visible) {
		a.trips.cursor = len(visible) - 1
	}
	if a.trips.cursor < 0 {
		a.trips.cursor = 0
	}
	a.replan()
}

func (a *App) setFlash(msg string) {
	a.flash = msg
	a.flashAt = time.Now()
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		return a.updateMouse(msg)

	case tea.KeyMsg:
		return a.updateKey(msg)

	case DataLoadedMsg:
		a.loaded = true
		a.loadTime = msg.LoadTime
		a.loadErr = msg.Err
		a.imported = msg.Import
		a.fingerprint = msg.Fingerprint
		a.lastRefresh = time.Now()
		a.setData(msg.Summaries)
		if msg.Import != nil {
			a.setFlash(fmt.Sprintf("Imported %d trips from %d files", msg.Import.Imported, msg.Import.Parsed))
		}

		if a.needSetup {
			a.setupVals = defaultSetupValues(a.loadConfig())
			a.setupForm = newSetupForm(len(a.summaries), a.opts.DBPath, &a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		if a.flash != "" && time.Since(a.flashAt) > flashDuration {
			a.flash = ""
		}
		cmds := []tea.Cmd{tickCmd()}
		if a.loaded && !a.refreshing && time.Since(a.lastRefresh) >= a.opts.RefreshInterval {
			a.refreshing = true
			cmds = append(cmds, refreshDataCmd(a.opts, a.fingerprint))
		}
		return a, tea.Batch(cmds...)

	case RefreshDataMsg:
		a.refreshing = false
		a.lastRefresh = time.Now()
		if msg.Err != nil {
			a.opts.Log.Warn("refreshing trips", zap.Error(msg.Err))
			return a, nil
		}
		if msg.Summaries != nil {
			a.fingerprint = msg.Fingerprint
			a.setData(msg.Summaries)
		}
		return a, nil

	case TripSavedMsg:
		if msg.Err != nil {
			a.setFlash("Save failed: " + msg.Err.Error())
			return a, nil
		}
		a.setFlash(msg.Note)
		a.refreshing = true
		// A zero fingerprint forces a reload.
		return a, refreshDataCmd(a.opts, store.Fingerprint{})
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !a.loaded || a.showHelp || (a.needSetup && a.setupForm != nil) {
		return a, nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if a.activeTab == components.TabTrips || a.activeTab == components.TabPlanner {
			a.moveTripCursor(-1)
		}
	case tea.MouseButtonWheelDown:
		if a.activeTab == components.TabTrips || a.activeTab == components.TabPlanner {
			a.moveTripCursor(1)
		}
	case tea.MouseButtonLeft:
		if msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}
	if !a.loaded {
		return a, nil
	}

	// First-run setup wizard intercepts all keys
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	// Text inputs own the keyboard while focused.
	switch {
	case a.activeTab == components.TabSettings && a.settings.editing:
		return a.updateSettingsInput(msg)
	case a.activeTab == components.TabTrips && a.trips.searching:
		return a.updateTripsSearch(msg)
	case a.activeTab == components.TabPlanner && a.plan.editing:
		return a.updatePlannerInput(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	var (
		handled bool
		cmd     tea.Cmd
	)
	switch a.activeTab {
	case components.TabTrips:
		handled, cmd = a.handleTripsKey(key)
	case components.TabPlanner:
		handled, cmd = a.handlePlannerKey(key)
	case components.TabSettings:
		handled, cmd = a.handleSettingsKey(key)
	}
	if handled {
		return a, cmd
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		if !a.refreshing {
			a.refreshing = true
			return a, refreshDataCmd(a.opts, store.Fingerprint{})
		}
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
	default:
		if len(msg.Runes) == 1 {
			if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
				a.activeTab = idx
			}
		}
	}
	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		if err := a.saveSetupConfig(); err != nil {
			a.setFlash("Saving config failed: " + err.Error())
		} else {
			a.setFlash("Saved " + a.opts.ConfigPath)
		}
		a.needSetup = false
		a.setupForm = nil
		a.replan()
		return a, nil
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  tripfund needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	countStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ tripfund"))
	b.WriteString(subtitleStyle.Render(" · trip savings planner"))
	b.WriteString("\n\n")

	if a.progressMax > 0 {
		barW := max(20, min(40, a.width-30))
		b.WriteString(a.spinner.View())
		b.WriteString(subtitleStyle.Render(" Importing trip files\n\n"))
		b.WriteString(components.ProgressBar(float64(a.progress)/float64(a.progressMax), barW))
		b.WriteString("\n")
		b.WriteString(countStyle.Render(fmt.Sprintf("%d", a.progress)))
		b.WriteString(subtitleStyle.Render(" / "))
		b.WriteString(countStyle.Render(fmt.Sprintf("%d", a.progressMax)))
	} else {
		b.WriteString(a.spinner.View())
		b.WriteString(subtitleStyle.Render(" Loading trips..."))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings [][2]string
	}{
		{"Navigation", [][2]string{
			{"t p c s", "Jump to tab"},
			{"← → tab", "Previous / Next tab"},
			{"j k", "Select trip"},
			{"g G", "First / Last trip"},
		}},
		{"Trips", [][2]string{
			{"/", "Search trips"},
			{"Enter", "Full-screen detail"},
			{"Esc", "Clear search / Back"},
		}},
		{"Planner", [][2]string{
			{"e Enter", "Edit monthly amount"},
			{"a", "Use recommended minimum"},
			{"x", "Clear monthly amount"},
			{"w", "Save plan to trip"},
			{"f", "Depart once funded"},
		}},
		{"General", [][2]string{
			{"r", "Reload trips"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, s := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(s.title))
		b.WriteString("\n")
		for _, bind := range s.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind[0])),
				descStyle.Render(bind[1]))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	// 1. Header: tab bar + context row
	pill := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	ctx := pill.Render(" today ") + accent.Render(a.today().Format(planner.DateLayout))
	ctx += pill.Render(" │ ") + accent.Render(fmt.Sprintf("%d trips", len(a.summaries)))
	if sel, ok := a.selected(); ok {
		ctx += pill.Render(" │ ") + accent.Render(sel.Trip.Name)
	}
	if a.trips.query != "" {
		ctx += pill.Render(" │ search ") + accent.Render(a.trips.query)
	}
	header := components.RenderTabBar(a.activeTab, w) + "\n" +
		lipgloss.NewStyle().Background(t.Surface).Width(w).Render(ctx)

	// 2. Status bar
	info := fmt.Sprintf("%s · %.2fs", a.opts.DBPath, a.loadTime.Seconds())
	statusBar := components.RenderStatusBar(w, a.flash, info, a.refreshing)

	// 3. Content zone height
	contentH := max(minContentHeight, h-lipgloss.Height(header)-lipgloss.Height(statusBar))

	// 4. Tab content
	var content string
	switch {
	case a.loadErr != nil:
		content = components.ContentCard("Error",
			lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Render(a.loadErr.Error()), cw)
	case a.activeTab == components.TabTrips:
		content = a.renderTripsTab(cw, contentH)
	case a.activeTab == components.TabPlanner:
		content = a.renderPlannerTab(cw)
	case a.activeTab == components.TabCompare:
		content = a.renderCompareTab(cw)
	case a.activeTab == components.TabSettings:
		content = a.renderSettingsTab(cw)
	}

	// 5. Truncate + pad to exactly contentH lines, then fill the background
	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Commands ───────────────────────────────────────────────────

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// loadDataCmd opens the store, runs the optional import and loads the
// ranked trips in a background goroutine. It streams ProgressMsg updates
// and a final DataLoadedMsg through sub.
func loadDataCmd(opts Options, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()
			msg := DataLoadedMsg{}
			defer func() {
				msg.LoadTime = time.Since(start)
				sub <- msg
			}()

			st, err := store.Open(opts.DBPath)
			if err != nil {
				msg.Err = err
				return
			}
			defer func() { _ = st.Close() }()

			if opts.ImportDir != "" {
				// Non-blocking send so workers aren't stalled; the next
				// update catches up.
				progressFn := func(current, total int) {
					select {
					case sub <- ProgressMsg{Current: current, Total: total}:
					default:
					}
				}
				res, err := pipeline.ImportDir(context.Background(), opts.ImportDir, st, pipeline.ImportOptions{
					Planner:  opts.Planner,
					Geocoder: opts.Geocoder,
					Today:    opts.Today(),
					Log:      opts.Log,
				}, progressFn)
				if err != nil {
					msg.Err = err
					return
				}
				msg.Import = res
			}

			msg.Summaries, msg.Fingerprint, msg.Err = loadTrips(st, opts.Today())
		}()

		// Block until the first message (either ProgressMsg or DataLoadedMsg)
		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

func loadTrips(st *store.Store, today time.Time) ([]model.TripSummary, store.Fingerprint, error) {
	fp, err := st.Fingerprint()
	if err != nil {
		return nil, fp, err
	}
	summaries, err := pipeline.Load(st, today)
	if err != nil {
		return nil, fp, err
	}
	if summaries == nil {
		summaries = []model.TripSummary{}
	}
	return summaries, fp, nil
}

// refreshDataCmd reloads the trips when the store fingerprint differs
// from prev.
func refreshDataCmd(opts Options, prev store.Fingerprint) tea.Cmd {
	return func() tea.Msg {
		st, err := store.Open(opts.DBPath)
		if err != nil {
			return RefreshDataMsg{Err: err}
		}
		defer func() { _ = st.Close() }()

		fp, err := st.Fingerprint()
		if err != nil {
			return RefreshDataMsg{Err: err}
		}
		if fp == prev {
			return RefreshDataMsg{Fingerprint: fp}
		}
		summaries, fp, err := loadTrips(st, opts.Today())
		return RefreshDataMsg{Summaries: summaries, Fingerprint: fp, Err: err}
	}
}

// saveTripCmd writes t to the store.
func saveTripCmd(opts Options, t model.Trip, note string) tea.Cmd {
	return func() tea.Msg {
		st, err := store.Open(opts.DBPath)
		if err != nil {
			return TripSavedMsg{Err: err}
		}
		defer func() { _ = st.Close() }()

		if err := st.SaveTrip(&t); err != nil {
			return TripSavedMsg{Err: err}
		}
		opts.Log.Info("trip saved from dashboard", zap.String("trip", t.ID.String()), zap.String("note", note))
		return TripSavedMsg{Trip: t, Note: note}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes follow the widths RenderTabBar uses.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1 // separator
	}
	return -1
}
