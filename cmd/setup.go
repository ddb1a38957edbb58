package cmd

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/gemledger/internal/config"
	"github.com/theirongolddev/gemledger/internal/tui"
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
	// A broken config file still yields defaults to edit.
	cfg, err := config.Load()
	if err != nil {
		log.Warn().Err(err).Msg("config unreadable, starting from defaults")
		cfg = config.DefaultConfig()
	}

	form, vals := tui.NewSetupForm(cfg)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled, nothing saved.")
			return nil
		}
		return err
	}

	if err := vals.Apply(&cfg); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `gemledger setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
