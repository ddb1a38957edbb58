package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/gemledger/internal/cli"
	"github.com/theirongolddev/gemledger/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	cfg, econ := s.cfg, s.econ

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Lookback days:    %d\n", cfg.General.DefaultLookbackDays)
	fmt.Printf("    Projection days:  %d\n", cfg.General.ProjectionDays)
	fmt.Printf("    Rate window days: %d\n", cfg.General.RateWindowDays)
	fmt.Printf("    Ledger database:  %s\n", s.dbPath)
	if cfg.General.ImportDir != "" {
		fmt.Printf("    Import directory: %s\n", cfg.General.ImportDir)
	}
	fmt.Println()

	cats := make([]string, len(econ.CostingCategories))
	for i, c := range econ.CostingCategories {
		cats[i] = string(c)
	}
	fmt.Println("  [Economy]")
	fmt.Printf("    Primogems per wish: %d\n", econ.CurrencyPerPull)
	fmt.Printf("    Costing banners:    %s\n", strings.Join(cats, ", "))
	fmt.Printf("    Banner reference:   %s\n", econ.BannerReference.Format("2006-01-02"))
	fmt.Printf("    Banner period:      %d days\n", econ.BannerPeriodDays)
	if econ.ManualDailyRate != nil {
		fmt.Printf("    Manual daily rate:  %s\n", cli.FormatRate(*econ.ManualDailyRate))
	} else {
		fmt.Println("    Manual daily rate:  not set (estimated)")
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [TUI]")
	fmt.Printf("    Auto refresh:     %v\n", cfg.TUI.AutoRefresh)
	fmt.Printf("    Refresh interval: %ds\n", cfg.TUI.RefreshIntervalSec)
	fmt.Println()

	fmt.Println("  Run `gemledger setup` to reconfigure.")
	return nil
}
