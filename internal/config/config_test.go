package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/gemledger/internal/model"
)

func TestLoadFrom_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv(EnvDBPath, "")
	t.Setenv(EnvManualRate, "")
	t.Setenv(EnvImportDir, "")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveThenLoad(t *testing.T) {
	t.Setenv(EnvDBPath, "")
	t.Setenv(EnvManualRate, "")
	t.Setenv(EnvImportDir, "")

	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	cfg := DefaultConfig()
	cfg.General.ProjectionDays = 30
	cpp := int64(150)
	cfg.Economy.CurrencyPerPull = &cpp

	require.NoError(t, SaveTo(path, cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 30, got.General.ProjectionDays)
	require.NotNil(t, got.Economy.CurrencyPerPull)
	assert.Equal(t, int64(150), *got.Economy.CurrencyPerPull)
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	t.Setenv(EnvDBPath, "/tmp/other.db")
	t.Setenv(EnvManualRate, "75.5")
	t.Setenv(EnvImportDir, "")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other.db", cfg.General.DBPath)
	require.NotNil(t, cfg.Economy.ManualDailyRate)
	assert.InDelta(t, 75.5, *cfg.Economy.ManualDailyRate, 1e-9)
}

func TestLoadFrom_BadManualRate(t *testing.T) {
	t.Setenv(EnvDBPath, "")
	t.Setenv(EnvManualRate, "lots")
	t.Setenv(EnvImportDir, "")

	_, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestResolveEconomy(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		econ, err := ResolveEconomy(EconomyConfig{})
		require.NoError(t, err)
		assert.Equal(t, int64(160), econ.CurrencyPerPull)
		assert.Equal(t, 21, econ.BannerPeriodDays)
		assert.True(t, econ.IsCosting(model.BannerCharacter))
		assert.True(t, econ.IsCosting(model.BannerWeapon))
		assert.True(t, econ.IsCosting(model.BannerChronicled))
		assert.False(t, econ.IsCosting(model.BannerStandard))
		assert.False(t, econ.IsCosting(model.BannerBeginner))
		assert.Nil(t, econ.ManualDailyRate)
	})

	t.Run("overrides", func(t *testing.T) {
		cpp := int64(100)
		days := 14
		econ, err := ResolveEconomy(EconomyConfig{
			CurrencyPerPull:   &cpp,
			CostingCategories: []string{"standard"},
			BannerReference:   "2025-01-01",
			BannerPeriodDays:  &days,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(100), econ.CurrencyPerPull)
		assert.Equal(t, 14, econ.BannerPeriodDays)
		assert.True(t, econ.IsCosting(model.BannerStandard))
		assert.False(t, econ.IsCosting(model.BannerCharacter))
		assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), econ.BannerReference)
	})

	t.Run("rejects unknown category", func(t *testing.T) {
		_, err := ResolveEconomy(EconomyConfig{CostingCategories: []string{"premium"}})
		require.ErrorIs(t, err, model.ErrInvalidBanner)
	})

	t.Run("rejects non-positive currency per pull", func(t *testing.T) {
		zero := int64(0)
		_, err := ResolveEconomy(EconomyConfig{CurrencyPerPull: &zero})
		assert.Error(t, err)
	})
}

func TestWithManualRateDoesNotMutate(t *testing.T) {
	base := DefaultEconomy()
	withRate := base.WithManualRate(42)
	assert.Nil(t, base.ManualDailyRate)
	require.NotNil(t, withRate.ManualDailyRate)
	assert.InDelta(t, 42.0, *withRate.ManualDailyRate, 1e-9)
}
