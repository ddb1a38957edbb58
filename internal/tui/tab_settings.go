package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/gemledger/internal/cli"
	"github.com/theirongolddev/gemledger/internal/config"
	"github.com/theirongolddev/gemledger/internal/tui/components"
	"github.com/theirongolddev/gemledger/internal/tui/theme"
)

const (
	settingsFieldLookback = iota
	settingsFieldProjection
	settingsFieldWindow
	settingsFieldManualRate
	settingsFieldImportDir
	settingsFieldTheme
	settingsFieldAutoRefresh
	settingsFieldRefreshInterval
	settingsFieldCount // sentinel
)

var errPositiveDays = errors.New("enter a whole number of days above zero")

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool
	saveErr error
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 50
	return ti
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	cfg := loadConfigOrDefault()
	a.settings.editing = true
	a.settings.saved = false

	ti := newSettingsInput()
	switch a.settings.cursor {
	case settingsFieldLookback:
		ti.Placeholder = "90"
		ti.SetValue(strconv.Itoa(a.opts.Report.LookbackDays))
	case settingsFieldProjection:
		ti.Placeholder = "60"
		ti.SetValue(strconv.Itoa(a.opts.Report.ProjectionDays))
	case settingsFieldWindow:
		ti.Placeholder = "14"
		ti.SetValue(strconv.Itoa(a.opts.Report.RateWindowDays))
	case settingsFieldManualRate:
		ti.Placeholder = "primogems per day, empty to estimate"
		if r := a.opts.Economy.ManualDailyRate; r != nil {
			ti.SetValue(strconv.FormatFloat(*r, 'f', -1, 64))
		}
	case settingsFieldImportDir:
		ti.Placeholder = "directory with .json / .jsonl exports"
		ti.SetValue(cfg.General.ImportDir)
	case settingsFieldTheme:
		ti.Placeholder = strings.Join(theme.Names(), ", ")
		ti.SetValue(cfg.Appearance.Theme)
	case settingsFieldAutoRefresh:
		ti.Placeholder = "true or false"
		ti.SetValue(strconv.FormatBool(a.autoRefresh))
	case settingsFieldRefreshInterval:
		ti.Placeholder = "60 (seconds, minimum 10)"
		ti.SetValue(strconv.Itoa(int(a.refreshInterval.Seconds())))
	}

	ti.Focus()
	a.settings.input = ti
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		reload := a.settingsSave()
		a.settings.editing = false
		a.settings.saved = a.settings.saveErr == nil
		if reload && a.settings.saved && !a.refreshing {
			a.refreshing = true
			return a, refreshDataCmd(a.opts)
		}
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// settingsSave validates the edited field, persists it and applies it to
// the running dashboard. It reports whether the report must be rebuilt.
func (a *App) settingsSave() bool {
	cfg := loadConfigOrDefault()
	val := strings.TrimSpace(a.settings.input.Value())
	a.settings.saveErr = nil

	days := func(dst *int) bool {
		d, err := strconv.Atoi(val)
		if err != nil || d <= 0 {
			a.settings.saveErr = errPositiveDays
			return false
		}
		*dst = d
		return true
	}

	reload := false
	switch a.settings.cursor {
	case settingsFieldLookback:
		reload = days(&cfg.General.DefaultLookbackDays)
	case settingsFieldProjection:
		reload = days(&cfg.General.ProjectionDays)
	case settingsFieldWindow:
		reload = days(&cfg.General.RateWindowDays)
	case settingsFieldManualRate:
		if err := ValidateRate(val); err != nil {
			a.settings.saveErr = err
			return false
		}
		cfg.Economy.ManualDailyRate = nil
		if val != "" {
			rate, _ := strconv.ParseFloat(val, 64)
			cfg.Economy.ManualDailyRate = &rate
		}
		reload = true
	case settingsFieldImportDir:
		cfg.General.ImportDir = val
		reload = true
	case settingsFieldTheme:
		if !theme.Known(val) {
			a.settings.saveErr = fmt.Errorf("unknown theme %q", val)
			return false
		}
		cfg.Appearance.Theme = val
	case settingsFieldAutoRefresh:
		b, err := strconv.ParseBool(val)
		if err != nil {
			a.settings.saveErr = errors.New("enter true or false")
			return false
		}
		cfg.TUI.AutoRefresh = b
		a.autoRefresh = b
	case settingsFieldRefreshInterval:
		sec, err := strconv.Atoi(val)
		if err != nil || time.Duration(sec)*time.Second < minRefreshInterval {
			a.settings.saveErr = errors.New("enter at least 10 seconds")
			return false
		}
		cfg.TUI.RefreshIntervalSec = sec
		a.refreshInterval = time.Duration(sec) * time.Second
	}
	if a.settings.saveErr != nil {
		return false
	}

	if err := config.Save(cfg); err != nil {
		a.settings.saveErr = err
		return false
	}
	a.applyConfig(cfg)
	return reload
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active
	cfg := loadConfigOrDefault()

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	manual := "(estimated)"
	if r := a.opts.Economy.ManualDailyRate; r != nil {
		manual = cli.FormatRate(*r)
	}
	importDir := cfg.General.ImportDir
	if importDir == "" {
		importDir = "(not set)"
	}

	fields := []struct{ label, value string }{
		{"History lookback", fmt.Sprintf("%d days", a.opts.Report.LookbackDays)},
		{"Projection", fmt.Sprintf("%d days", a.opts.Report.ProjectionDays)},
		{"Rate window", fmt.Sprintf("%d days", a.opts.Report.RateWindowDays)},
		{"Manual rate", manual},
		{"Import directory", importDir},
		{"Theme", cfg.Appearance.Theme},
		{"Auto refresh", strconv.FormatBool(a.autoRefresh)},
		{"Refresh interval", fmt.Sprintf("%ds", int(a.refreshInterval.Seconds()))},
	}

	innerW := components.CardInnerWidth(cw)
	var form strings.Builder
	for i, f := range fields {
		switch {
		case a.settings.editing && i == a.settings.cursor:
			form.WriteString(markerStyle.Render("▸ "))
			form.WriteString(accentStyle.Render(fmt.Sprintf("%-18s ", f.label)))
			form.WriteString(a.settings.input.View())
		case i == a.settings.cursor:
			marker := markerStyle.Render("▸ ")
			label := selectedLabelStyle.Render(fmt.Sprintf("%-18s ", f.label+":"))
			value := selectedStyle.Render(f.value)
			form.WriteString(marker + label + value)
			if pad := innerW - lipgloss.Width(marker+label+value); pad > 0 {
				form.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad)))
			}
		default:
			form.WriteString(labelStyle.Render("  "))
			form.WriteString(labelStyle.Render(fmt.Sprintf("%-18s ", f.label+":")))
			form.WriteString(valueStyle.Render(f.value))
		}
		form.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
		form.WriteString("\n")
		form.WriteString(warnStyle.Render(fmt.Sprintf("Not saved: %s", a.settings.saveErr)))
	} else if a.settings.saved {
		form.WriteString("\n")
		form.WriteString(greenStyle.Render("Saved!"))
	}
	form.WriteString("\n")
	form.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	c := a.data.Counts
	var info strings.Builder
	info.WriteString(labelStyle.Render("Ledger:          ") + valueStyle.Render(a.opts.DBPath) + "\n")
	info.WriteString(labelStyle.Render("Records:         ") + valueStyle.Render(fmt.Sprintf("%s snapshots · %s wishes · %s entries",
		cli.FormatNumber(int64(c.Snapshots)), cli.FormatNumber(int64(c.Pulls)), cli.FormatNumber(int64(c.Entries)))) + "\n")
	info.WriteString(labelStyle.Render("Tracked files:   ") + valueStyle.Render(cli.FormatNumber(int64(c.Files))) + "\n")
	if imp := a.data.Imported; imp != nil {
		info.WriteString(labelStyle.Render("Last import:     ") + valueStyle.Render(fmt.Sprintf("%d new wishes, %d new snapshots",
			imp.NewPulls, imp.NewSnapshots)) + "\n")
	}
	info.WriteString(labelStyle.Render("Load time:       ") + valueStyle.Render(fmt.Sprintf("%.1fs", a.loadTime.Seconds())) + "\n")
	info.WriteString(labelStyle.Render("Config file:     ") + valueStyle.Render(config.ConfigPath()))

	return components.ContentCard("Settings", form.String(), cw) + "\n" +
		components.ContentCard("Ledger", info.String(), cw)
}
