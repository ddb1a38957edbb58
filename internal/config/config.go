// Package config loads and saves gemledger configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment variables that override file values.
const (
	EnvDBPath     = "GEMLEDGER_DB_PATH"
	EnvManualRate = "GEMLEDGER_MANUAL_RATE"
	EnvImportDir  = "GEMLEDGER_IMPORT_DIR"
)

// Config holds all gemledger configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Economy    EconomyConfig    `toml:"economy"`
	Appearance AppearanceConfig `toml:"appearance"`
	TUI        TUIConfig        `toml:"tui"`
}

// GeneralConfig holds window lengths and file locations.
type GeneralConfig struct {
	DefaultLookbackDays int    `toml:"default_lookback_days"`
	ProjectionDays      int    `toml:"projection_days"`
	RateWindowDays      int    `toml:"rate_window_days"`
	DBPath              string `toml:"db_path,omitempty"`
	ImportDir           string `toml:"import_dir,omitempty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// TUIConfig holds dashboard refresh settings.
type TUIConfig struct {
	AutoRefresh        bool `toml:"auto_refresh"`
	RefreshIntervalSec int  `toml:"refresh_interval_sec"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			DefaultLookbackDays: 90,
			ProjectionDays:      60,
			RateWindowDays:      14,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		TUI: TUIConfig{
			AutoRefresh:        true,
			RefreshIntervalSec: 60,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "gemledger")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "gemledger")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory holding the ledger database.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "gemledger")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "gemledger")
}

// DefaultDBPath returns the database path used when none is configured.
func DefaultDBPath() string {
	return filepath.Join(DataDir(), "ledger.db")
}

// Load reads the config file, returning defaults if it doesn't exist.
// Values from a .env file or the process environment win over the file.
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the config file at path. See Load.
func LoadFrom(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // config path is chosen by the local user
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvDBPath); v != "" {
		cfg.General.DBPath = v
	}
	if v := os.Getenv(EnvImportDir); v != "" {
		cfg.General.ImportDir = v
	}
	if v := os.Getenv(EnvManualRate); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvManualRate, err)
		}
		cfg.Economy.ManualDailyRate = &rate
	}
	return nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo writes the config to path, creating its directory if needed.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // user config path
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}

// ResolveDBPath returns the configured database path or the default.
func ResolveDBPath(cfg Config) string {
	if cfg.General.DBPath != "" {
		return cfg.General.DBPath
	}
	return DefaultDBPath()
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
