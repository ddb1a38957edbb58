package cmd

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/gemledger/internal/config"
	"github.com/theirongolddev/gemledger/internal/model"
)

func TestRootRunsSummaryWithFlags(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv(config.EnvDBPath, "")
	t.Setenv(config.EnvManualRate, "")
	t.Cleanup(func() {
		flagDBPath, flagRate, flagDays = "", 0, 0
		rootCmd.PersistentFlags().Lookup("rate").Changed = false
		rootCmd.SetArgs(nil)
	})

	require.NotNil(t, rootCmd.RunE)

	db := filepath.Join(t.TempDir(), "ledger.db")
	rootCmd.SetArgs([]string{"--db", db, "--rate", "120", "--days", "30"})
	require.NoError(t, rootCmd.Execute())

	s, err := loadSettings()
	require.NoError(t, err)
	assert.Equal(t, db, s.dbPath)
	assert.Equal(t, 30, s.opts.LookbackDays)
	require.NotNil(t, s.econ.ManualDailyRate)
	assert.InDelta(t, 120.0, *s.econ.ManualDailyRate, 1e-9)
}

func TestSubcommandsRegistered(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"history", "project", "rate", "trends", "periods", "pulls", "log", "snapshot", "ledger", "import", "setup", "tui", "daemon", "summary", "config"} {
		assert.True(t, names[want], "missing command %q", want)
	}
}

func TestMatchEntryPrefix(t *testing.T) {
	entries := []model.PurchaseEntry{
		{ID: "ab12cd34-0000"},
		{ID: "ab12ff00-0000"},
		{ID: "9f000000-0000"},
	}

	e, err := matchEntryPrefix(entries, "9f")
	require.NoError(t, err)
	assert.Equal(t, "9f000000-0000", e.ID)

	_, err = matchEntryPrefix(entries, "ab12")
	assert.True(t, errors.Is(err, errAmbiguousID))

	_, err = matchEntryPrefix(entries, "zz")
	assert.Error(t, err)
}

func TestParseWhenAndCount(t *testing.T) {
	ts, err := parseWhen("2025-03-01T10:00:00+09:00")
	require.NoError(t, err)
	assert.Equal(t, 1, ts.Day())

	_, err = parseWhen("yesterday")
	assert.Error(t, err)

	n, err := parseCount(" 12,345 ")
	require.NoError(t, err)
	assert.Equal(t, int64(12345), n)
	assert.Error(t, validateCount("-1"))
}
