package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/gemledger/internal/config"
	"github.com/theirongolddev/gemledger/internal/tui/theme"
)

// SetupValues holds the raw answers of the setup form.
type SetupValues struct {
	Lookback   int
	Projection int
	Window     int
	Theme      string
	ManualRate string
	ImportDir  string
}

// NewSetupForm builds the first-run wizard seeded from cfg. The returned
// values are filled in as the form runs.
func NewSetupForm(cfg config.Config) (*huh.Form, *SetupValues) {
	vals := &SetupValues{
		Lookback:   cfg.General.DefaultLookbackDays,
		Projection: cfg.General.ProjectionDays,
		Window:     cfg.General.RateWindowDays,
		Theme:      cfg.Appearance.Theme,
		ImportDir:  cfg.General.ImportDir,
	}
	if cfg.Economy.ManualDailyRate != nil {
		vals.ManualRate = strconv.FormatFloat(*cfg.Economy.ManualDailyRate, 'f', -1, 64)
	}

	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, name := range theme.Names() {
		themeOpts = append(themeOpts, huh.NewOption(name, name))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to gemledger").
				Description("Choose how far back to look, how far ahead to project\nand how your income rate is estimated."),
		),
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("History lookback").
				Options(dayOptions(cfg.General.DefaultLookbackDays, 30, 90, 180, 365)...).
				Value(&vals.Lookback),
			huh.NewSelect[int]().
				Title("Projection length").
				Options(dayOptions(cfg.General.ProjectionDays, 30, 60, 90, 180)...).
				Value(&vals.Projection),
			huh.NewSelect[int]().
				Title("Rate estimation window").
				Options(dayOptions(cfg.General.RateWindowDays, 7, 14, 21, 42)...).
				Value(&vals.Window),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Manual daily rate").
				Description("Primogems per day. Leave empty to estimate from your records.").
				Value(&vals.ManualRate).
				Validate(ValidateRate),
			huh.NewInput().
				Title("Import directory").
				Description("Where exports are imported from by default.").
				Value(&vals.ImportDir),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.Theme),
		),
	).WithTheme(huh.ThemeCharm())

	return form, vals
}

// dayOptions lists the choices, adding current when it is not one of them.
func dayOptions(current int, choices ...int) []huh.Option[int] {
	seen := false
	opts := make([]huh.Option[int], 0, len(choices)+1)
	for _, d := range choices {
		seen = seen || d == current
		opts = append(opts, huh.NewOption(fmt.Sprintf("%d days", d), d))
	}
	if !seen && current > 0 {
		opts = append(opts, huh.NewOption(fmt.Sprintf("%d days (current)", current), current))
	}
	return opts
}

// Apply copies the answers into cfg.
func (v *SetupValues) Apply(cfg *config.Config) error {
	cfg.General.DefaultLookbackDays = v.Lookback
	cfg.General.ProjectionDays = v.Projection
	cfg.General.RateWindowDays = v.Window
	cfg.General.ImportDir = strings.TrimSpace(v.ImportDir)
	if theme.Known(v.Theme) {
		cfg.Appearance.Theme = v.Theme
	}

	cfg.Economy.ManualDailyRate = nil
	if raw := strings.TrimSpace(v.ManualRate); raw != "" {
		rate, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("parsing manual rate: %w", err)
		}
		if rate < 0 {
			return fmt.Errorf("manual rate must not be negative, got %g", rate)
		}
		cfg.Economy.ManualDailyRate = &rate
	}
	return nil
}

// ValidateRate accepts an empty string or a non-negative number.
func ValidateRate(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	rate, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return errors.New("enter a number")
	}
	if rate < 0 {
		return errors.New("must not be negative")
	}
	return nil
}
