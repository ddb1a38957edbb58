// Package tui provides the interactive Bubble Tea dashboard for gemledger.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/theirongolddev/gemledger/internal/cli"
	"github.com/theirongolddev/gemledger/internal/config"
	"github.com/theirongolddev/gemledger/internal/model"
	"github.com/theirongolddev/gemledger/internal/pipeline"
	"github.com/theirongolddev/gemledger/internal/store"
	"github.com/theirongolddev/gemledger/internal/tui/components"
	"github.com/theirongolddev/gemledger/internal/tui/theme"
)

// Options configures the dashboard.
type Options struct {
	DBPath string
	// ImportDir, when set, is imported incrementally on every load.
	ImportDir string
	Report    pipeline.ReportOptions
	Economy   config.Economy
	Logger    zerolog.Logger
	// Now overrides the clock, mainly for tests.
	Now func() time.Time
}

// DataLoadedMsg is sent when the first load finishes.
type DataLoadedMsg struct {
	Data     loadedData
	LoadTime time.Duration
	Err      error
}

// ProgressMsg reports file parsing progress during import.
type ProgressMsg struct {
	Current int
	Total   int
}

// RefreshDataMsg is sent when a background data refresh completes.
type RefreshDataMsg struct {
	Data     loadedData
	LoadTime time.Duration
	Err      error
}

// loadedData is everything one load produces.
type loadedData struct {
	Dataset  model.Dataset
	Report   pipeline.Report
	Counts   store.Counts
	Imported *pipeline.ImportResult
}

// App is the root Bubble Tea model.
type App struct {
	opts Options

	// Data
	data     loadedData
	loaded   bool
	loadTime time.Duration
	loadErr  error

	// Auto-refresh state
	autoRefresh     bool
	refreshInterval time.Duration
	lastRefresh     time.Time
	refreshing      bool

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// Per-tab state
	logState    logState
	trendsState trendsState
	settings    settingsState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *SetupValues
	needSetup bool

	// Loading, with channel-based progress subscription
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180

	// Scroll navigation
	scrollOverhead    = 10 // approximate header + status bar height for half-page calc
	minHalfPageScroll = 1
	minContentHeight  = 5

	minRefreshInterval = 10 * time.Second
)

// Tab indexes, matching components.Tabs.
const (
	tabOverview = iota
	tabTrends
	tabLog
	tabSettings
)

// loadConfigOrDefault loads config, returning defaults on error so the
// dashboard can always start.
func loadConfigOrDefault() config.Config {
	cfg, err := config.Load()
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	cfg := loadConfigOrDefault()
	refreshInterval := time.Duration(cfg.TUI.RefreshIntervalSec) * time.Second
	if refreshInterval < minRefreshInterval {
		refreshInterval = 60 * time.Second
	}

	return App{
		opts:            opts,
		needSetup:       !config.Exists(),
		autoRefresh:     cfg.TUI.AutoRefresh,
		refreshInterval: refreshInterval,
		spinner:         sp,
		trendsState:     trendsState{interval: model.IntervalMonth},
		loadSub:         make(chan tea.Msg, 1),
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

// apply installs freshly loaded data and clamps per-tab cursors.
func (a *App) apply(d loadedData) {
	a.data = d
	if n := len(a.filteredLog()); a.logState.cursor >= n {
		a.logState.cursor = max(0, n-1)
	}
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
		if !a.loaded || a.showHelp || (a.needSetup && a.setupForm != nil) {
			return a, nil
		}
		return a.updateMouse(msg)

	case tea.KeyMsg:
		return a.updateKey(msg)

	case DataLoadedMsg:
		a.loaded = true
		a.loadTime = msg.LoadTime
		a.loadErr = msg.Err
		a.lastRefresh = a.opts.Now()
		if msg.Err == nil {
			a.apply(msg.Data)
		}

		if a.needSetup {
			a.setupForm, a.setupVals = NewSetupForm(loadConfigOrDefault())
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
		cmds := []tea.Cmd{tickCmd()}
		if a.loaded && a.autoRefresh && !a.refreshing &&
			a.opts.Now().Sub(a.lastRefresh) >= a.refreshInterval {
			a.refreshing = true
			cmds = append(cmds, refreshDataCmd(a.opts))
		}
		return a, tea.Batch(cmds...)

	case RefreshDataMsg:
		a.refreshing = false
		a.lastRefresh = a.opts.Now()
		a.loadErr = msg.Err
		if msg.Err == nil {
			a.loadTime = msg.LoadTime
			a.apply(msg.Data)
		}
		return a, nil
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
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
	if a.activeTab == tabSettings && a.settings.editing {
		return a.updateSettingsInput(msg)
	}
	if a.activeTab == tabLog && a.logState.searching {
		return a.updateLogSearch(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch a.activeTab {
	case tabLog:
		if m, cmd, ok := a.updateLogKeys(key); ok {
			return m, cmd
		}
	case tabTrends:
		if key == "w" {
			a.trendsState.toggleInterval()
			return a, nil
		}
	case tabSettings:
		switch key {
		case "j", "down":
			if a.settings.cursor < settingsFieldCount-1 {
				a.settings.cursor++
			}
			return a, nil
		case "k", "up":
			if a.settings.cursor > 0 {
				a.settings.cursor--
			}
			return a, nil
		case "enter":
			return a.settingsStartEdit()
		}
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		if !a.refreshing {
			a.refreshing = true
			return a, refreshDataCmd(a.opts)
		}
		return a, nil
	case "R":
		a.autoRefresh = !a.autoRefresh
		cfg := loadConfigOrDefault()
		cfg.TUI.AutoRefresh = a.autoRefresh
		if err := config.Save(cfg); err != nil {
			a.opts.Logger.Warn().Err(err).Msg("could not persist auto-refresh")
		}
		return a, nil
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}

	if runes := []rune(key); len(runes) == 1 {
		if idx := components.TabIdxByKey(runes[0]); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if a.activeTab == tabLog && !a.logState.searching && a.logState.cursor > 0 {
			a.logState.cursor--
		}
	case tea.MouseButtonWheelDown:
		if a.activeTab == tabLog && !a.logState.searching && a.logState.cursor < len(a.filteredLog())-1 {
			a.logState.cursor++
		}
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return a, nil
		}
		if msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
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
		cfg := loadConfigOrDefault()
		if err := a.setupVals.Apply(&cfg); err != nil {
			a.settings.saveErr = err
		} else if err := config.Save(cfg); err != nil {
			a.settings.saveErr = err
		} else {
			a.applyConfig(cfg)
		}
		a.needSetup = false
		a.setupForm = nil
		a.refreshing = true
		return a, refreshDataCmd(a.opts)
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

// applyConfig carries saved settings into the running dashboard.
func (a *App) applyConfig(cfg config.Config) {
	theme.SetActive(cfg.Appearance.Theme)
	a.opts.Report = pipeline.ReportOptions{
		LookbackDays:   cfg.General.DefaultLookbackDays,
		ProjectionDays: cfg.General.ProjectionDays,
		RateWindowDays: cfg.General.RateWindowDays,
	}
	a.opts.ImportDir = cfg.General.ImportDir
	if econ, err := config.ResolveEconomy(cfg.Economy); err == nil {
		a.opts.Economy = econ
	} else {
		a.opts.Logger.Warn().Err(err).Msg("economy config rejected")
	}
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
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
	h := a.height
	if h < 5 {
		h = 5
	}
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  gemledger needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active
	w := a.width
	h := a.height

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spinnerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	countStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ gemledger"))
	b.WriteString(subtitleStyle.Render(" · Primogem Ledger"))
	b.WriteString("\n\n")

	if a.progressMax > 0 {
		barW := min(40, max(20, w-30))
		pct := float64(a.progress) / float64(a.progressMax)
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Importing exports\n\n"))
		b.WriteString(components.ProgressBar(pct, barW))
		b.WriteString("\n")
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progress))))
		b.WriteString(subtitleStyle.Render(" / "))
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progressMax))))
	} else {
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Reading ledger..."))
	}

	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
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
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"o t l x", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"j k", "Move through lists"},
			{"g G", "First / last log entry"},
			{"^d ^u", "Half-page scroll"},
		}},
		{"Actions", []struct{ key, desc string }{
			{"/", "Search the log"},
			{"f", "Cycle log kind filter"},
			{"w", "Weekly / monthly trends"},
			{"Enter", "Edit setting"},
			{"Esc", "Back / Cancel"},
			{"r", "Refresh data"},
			{"R", "Toggle auto-refresh"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")
	for i, sec := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
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

	pillStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pillAccent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	filterStr := pillStyle.Render(" history ") +
		pillAccent.Render(fmt.Sprintf("%dd", a.opts.Report.LookbackDays)) +
		pillStyle.Render(" │ projection ") +
		pillAccent.Render(fmt.Sprintf("%dd", a.opts.Report.ProjectionDays)) +
		pillStyle.Render(" │ window ") +
		pillAccent.Render(fmt.Sprintf("%dd", a.opts.Report.RateWindowDays))
	if a.opts.Economy.ManualDailyRate != nil {
		filterStr += pillStyle.Render(" │ ") + pillAccent.Render("manual rate")
	}
	filterRowStyle := lipgloss.NewStyle().Background(t.Surface).Width(w)

	header := components.RenderTabBar(a.activeTab, w) + "\n" + filterRowStyle.Render(filterStr)

	info := components.StatusInfo{
		LoadTime:    fmt.Sprintf("%.1fs", a.loadTime.Seconds()),
		RateSource:  string(a.data.Report.Rate.Source),
		Refreshing:  a.refreshing,
		AutoRefresh: a.autoRefresh,
	}
	if a.loadErr != nil {
		info.Err = a.loadErr.Error()
	}
	statusBar := components.RenderStatusBar(w, info)

	contentH := h - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	var content string
	switch a.activeTab {
	case tabOverview:
		content = a.renderOverviewTab(cw)
	case tabTrends:
		content = a.renderTrendsTab(cw)
	case tabLog:
		content = a.renderLogTab(cw, contentH)
	case tabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Loading ────────────────────────────────────────────────────

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// loadData imports pending exports when an import directory is set, then
// reads the whole ledger and builds the report.
func loadData(opts Options, progressFn pipeline.ProgressFunc) (loadedData, error) {
	var d loadedData

	st, err := store.Open(opts.DBPath)
	if err != nil {
		return d, fmt.Errorf("opening ledger: %w", err)
	}
	defer func() { _ = st.Close() }()

	if opts.ImportDir != "" {
		res, err := pipeline.Import(opts.ImportDir, st, opts.Logger, progressFn)
		if err != nil {
			// A failed import still leaves the stored ledger readable.
			opts.Logger.Warn().Err(err).Str("dir", opts.ImportDir).Msg("import failed")
		}
		d.Imported = res
	}

	if d.Dataset, err = st.LoadDataset(); err != nil {
		return d, fmt.Errorf("loading ledger: %w", err)
	}
	if d.Counts, err = st.Counts(); err != nil {
		return d, fmt.Errorf("counting records: %w", err)
	}
	d.Report = pipeline.BuildReport(d.Dataset, opts.Report, opts.Now(), opts.Economy)
	return d, nil
}

// loadDataCmd starts loading in a background goroutine. It streams
// ProgressMsg updates and a final DataLoadedMsg through sub.
func loadDataCmd(opts Options, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()

			// Non-blocking send so import workers are never stalled.
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}

			d, err := loadData(opts, progressFn)
			sub <- DataLoadedMsg{Data: d, LoadTime: time.Since(start), Err: err}
		}()

		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

// refreshDataCmd reloads in the background without progress UI.
func refreshDataCmd(opts Options) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		d, err := loadData(opts, nil)
		return RefreshDataMsg{Data: d, LoadTime: time.Since(start), Err: err}
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

	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes follow the widths used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW
		if i < len(components.Tabs)-1 {
			pos++ // separator
		}
	}
	return -1
}
