package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/gemledger/internal/config"
	"github.com/theirongolddev/gemledger/internal/logger"
	"github.com/theirongolddev/gemledger/internal/tui"
	"github.com/theirongolddev/gemledger/internal/tui/theme"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	theme.SetActive(s.cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	// The alt screen owns the terminal, so logs go to a file or nowhere.
	tuiLog := zerolog.Nop()
	if flagVerbose {
		path := filepath.Join(config.DataDir(), "tui.log")
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return fmt.Errorf("creating data dir: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //nolint:gosec // path under the user's data dir
		if err != nil {
			return fmt.Errorf("opening TUI log: %w", err)
		}
		defer func() { _ = f.Close() }()
		tuiLog = logger.NewWithWriter(f).Level(zerolog.DebugLevel)
	}

	app := tui.NewApp(tui.Options{
		DBPath:    s.dbPath,
		ImportDir: s.cfg.General.ImportDir,
		Report:    s.opts,
		Economy:   s.econ,
		Logger:    tuiLog,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
