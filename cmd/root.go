// Package cmd implements the gemledger CLI commands.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/gemledger/internal/config"
	"github.com/theirongolddev/gemledger/internal/logger"
	"github.com/theirongolddev/gemledger/internal/model"
	"github.com/theirongolddev/gemledger/internal/pipeline"
	"github.com/theirongolddev/gemledger/internal/store"
)

var (
	flagDays       int
	flagProjection int
	flagWindow     int
	flagRate       float64
	flagDBPath     string
	flagQuiet      bool
	flagVerbose    bool
)

// log is set up by the root command before any subcommand runs.
var log = zerolog.Nop()

var rootCmd = &cobra.Command{
	Use:   "gemledger",
	Short: "Primogem ledger and income forecaster",
	Long:  "Track premium currency snapshots, wishes and income, reconstruct past balances and project future ones.",
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		log = logger.New(flagVerbose)
		cmd.SetContext(logger.WithContext(cmd.Context(), log))
	},
	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Assigned here: runSummary reads rootCmd's flags.
	rootCmd.RunE = runSummary

	rootCmd.PersistentFlags().IntVarP(&flagDays, "days", "n", 0, "History lookback in days (default from config)")
	rootCmd.PersistentFlags().IntVarP(&flagProjection, "projection", "p", 0, "Projection length in days (default from config)")
	rootCmd.PersistentFlags().IntVarP(&flagWindow, "window", "w", 0, "Rate estimation window in days (default from config)")
	rootCmd.PersistentFlags().Float64Var(&flagRate, "rate", 0, "Manual daily income rate, overrides estimation")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Ledger database path")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging on stderr")
}

// settings is the resolved configuration shared by all commands.
type settings struct {
	cfg    config.Config
	econ   config.Economy
	opts   pipeline.ReportOptions
	dbPath string
}

func (settings) now() time.Time { return time.Now() }

// loadSettings merges the config file, environment and command-line flags.
func loadSettings() (settings, error) {
	cfg, err := config.Load()
	if err != nil {
		return settings{}, fmt.Errorf("loading config: %w", err)
	}
	econ, err := config.ResolveEconomy(cfg.Economy)
	if err != nil {
		return settings{}, fmt.Errorf("resolving economy: %w", err)
	}
	if rootCmd.PersistentFlags().Changed("rate") {
		if flagRate < 0 {
			return settings{}, fmt.Errorf("--rate must not be negative, got %g", flagRate)
		}
		econ = econ.WithManualRate(flagRate)
	}

	opts := pipeline.ReportOptions{
		LookbackDays:   pick(flagDays, cfg.General.DefaultLookbackDays),
		ProjectionDays: pick(flagProjection, cfg.General.ProjectionDays),
		RateWindowDays: pick(flagWindow, cfg.General.RateWindowDays),
	}

	dbPath := config.ResolveDBPath(cfg)
	if flagDBPath != "" {
		dbPath = flagDBPath
	}

	log.Debug().
		Str("db", dbPath).
		Int("lookback", opts.LookbackDays).
		Int("projection", opts.ProjectionDays).
		Int("window", opts.RateWindowDays).
		Msg("settings resolved")

	return settings{cfg: cfg, econ: econ, opts: opts, dbPath: dbPath}, nil
}

func pick(flag, fallback int) int {
	if flag > 0 {
		return flag
	}
	return fallback
}

// openStore opens the ledger database named by the settings.
func openStore(s settings) (*store.Store, error) {
	st, err := store.Open(s.dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", s.dbPath, err)
	}
	return st, nil
}

// loadDataset is the shared read path used by the reporting commands.
func loadDataset() (settings, model.Dataset, error) {
	s, err := loadSettings()
	if err != nil {
		return s, model.Dataset{}, err
	}
	st, err := openStore(s)
	if err != nil {
		return s, model.Dataset{}, err
	}
	defer func() { _ = st.Close() }()

	ds, err := st.LoadDataset()
	if err != nil {
		return s, ds, fmt.Errorf("loading ledger: %w", err)
	}
	log.Debug().
		Int("snapshots", len(ds.Snapshots)).
		Int("pulls", len(ds.Pulls)).
		Int("entries", len(ds.Purchases)).
		Msg("ledger loaded")
	return s, ds, nil
}

func printNoSnapshots() {
	fmt.Println()
	fmt.Println("  No resource snapshots recorded yet.")
	fmt.Println("  Add one with `gemledger snapshot add` or import an export with `gemledger import`.")
}
