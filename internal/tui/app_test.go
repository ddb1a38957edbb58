package tui

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/gemledger/internal/config"
	"github.com/theirongolddev/gemledger/internal/model"
	"github.com/theirongolddev/gemledger/internal/pipeline"
	"github.com/theirongolddev/gemledger/internal/store"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv(config.EnvDBPath, "")
	t.Setenv(config.EnvImportDir, "")
	t.Setenv(config.EnvManualRate, "")
}

func testOptions(t *testing.T) Options {
	t.Helper()
	return Options{
		DBPath:  filepath.Join(t.TempDir(), "ledger.db"),
		Report:  pipeline.ReportOptions{LookbackDays: 30, ProjectionDays: 30, RateWindowDays: 14},
		Economy: config.DefaultEconomy(),
		Logger:  zerolog.Nop(),
		Now:     func() time.Time { return testNow },
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sampleLog() []model.LogEntry {
	return []model.LogEntry{
		{ID: "s1", Timestamp: testNow, Kind: model.LogSnapshot, Amount: 5000, Description: "Resource snapshot: 5,000 primogems"},
		{ID: "p1", Timestamp: testNow.Add(-time.Hour), Kind: model.LogPurchase, Amount: 6480, Description: "Purchased 6,480 primogems", Notes: "anniversary top-up"},
		{ID: "w1", Timestamp: testNow.Add(-2 * time.Hour), Kind: model.LogPullSpending, Amount: -1600, Description: "Spent 1,600 primogems (10 pulls)"},
	}
}

func TestFilterLog(t *testing.T) {
	entries := sampleLog()

	assert.Len(t, filterLog(entries, "", ""), 3)

	byKind := filterLog(entries, model.LogPullSpending, "")
	require.Len(t, byKind, 1)
	assert.Equal(t, "w1", byKind[0].ID)

	byNotes := filterLog(entries, "", "  ANNIVERSARY ")
	require.Len(t, byNotes, 1)
	assert.Equal(t, "p1", byNotes[0].ID)

	assert.Empty(t, filterLog(entries, model.LogSnapshot, "anniversary"))
}

func TestLogKeysNavigateAndFilter(t *testing.T) {
	a := App{loaded: true, activeTab: tabLog, height: 40}
	a.data.Report.Log = sampleLog()

	step := func(key string) {
		m, _ := a.Update(keyRunes(key))
		a = m.(App)
	}

	step("j")
	step("j")
	step("j") // clamped at the last entry
	assert.Equal(t, 2, a.logState.cursor)

	step("g")
	assert.Equal(t, 0, a.logState.cursor)

	step("G")
	assert.Equal(t, 2, a.logState.cursor)

	step("f")
	assert.Equal(t, 0, a.logState.cursor)
	assert.Equal(t, model.LogSnapshot, logKinds[a.logState.kind])
	assert.Len(t, a.filteredLog(), 1)

	m, _ := a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	a = m.(App)
	assert.Equal(t, 0, a.logState.kind)
	assert.Len(t, a.filteredLog(), 3)
}

func TestLogSearchAppliesOnEnter(t *testing.T) {
	a := App{loaded: true, activeTab: tabLog, height: 40}
	a.data.Report.Log = sampleLog()

	m, _ := a.Update(keyRunes("/"))
	a = m.(App)
	require.True(t, a.logState.searching)

	m, _ = a.Update(keyRunes("top-up"))
	a = m.(App)
	m, _ = a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	a = m.(App)

	assert.False(t, a.logState.searching)
	assert.Equal(t, "top-up", a.logState.searchQuery)
	require.Len(t, a.filteredLog(), 1)
	assert.Equal(t, "p1", a.filteredLog()[0].ID)
}

func TestTrendsIntervalToggle(t *testing.T) {
	a := App{loaded: true, activeTab: tabTrends, trendsState: trendsState{interval: model.IntervalMonth}}
	m, _ := a.Update(keyRunes("w"))
	assert.Equal(t, model.IntervalWeek, m.(App).trendsState.interval)
}

func TestLoadDataImportsExports(t *testing.T) {
	opts := testOptions(t)

	st, err := store.Open(opts.DBPath)
	require.NoError(t, err)
	_, err = st.AddSnapshot(model.Snapshot{Timestamp: testNow.AddDate(0, 0, -7), Primogems: 4000})
	require.NoError(t, err)
	require.NoError(t, st.Close())

	dir := t.TempDir()
	lines := `{"kind":"pull","id":"9001","timestamp":"2025-03-05T10:00:00Z","banner":"character","item_type":"Weapon","item":"Cool Steel","rarity":3}
{"kind":"pull","id":"9002","timestamp":"2025-03-05T10:00:01Z","banner":"character","item_type":"Character","item":"Bennett","rarity":4}
{"kind":"snapshot","id":"imp-1","timestamp":"2025-03-09T20:00:00Z","primogems":5200}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "export.jsonl"), []byte(lines), 0o600))
	opts.ImportDir = dir

	d, err := loadData(opts, nil)
	require.NoError(t, err)
	require.NotNil(t, d.Imported)
	assert.Equal(t, 2, d.Imported.NewPulls)
	assert.Equal(t, 1, d.Imported.NewSnapshots)

	assert.Equal(t, 2, d.Counts.Snapshots)
	assert.Equal(t, 2, d.Counts.Pulls)
	assert.Len(t, d.Dataset.Snapshots, 2)
	assert.Equal(t, testNow, d.Report.GeneratedAt)
	assert.NotEmpty(t, d.Report.Log)

	// A second load finds nothing new.
	d, err = loadData(opts, nil)
	require.NoError(t, err)
	require.NotNil(t, d.Imported)
	assert.Zero(t, d.Imported.NewPulls)
	assert.Equal(t, 2, d.Counts.Pulls)
}

func TestViewRendersEveryTab(t *testing.T) {
	isolateConfig(t)
	require.NoError(t, config.Save(config.DefaultConfig()))

	opts := testOptions(t)
	st, err := store.Open(opts.DBPath)
	require.NoError(t, err)
	_, err = st.AddSnapshot(model.Snapshot{Timestamp: testNow.AddDate(0, 0, -20), Primogems: 3000})
	require.NoError(t, err)
	_, err = st.AddSnapshot(model.Snapshot{Timestamp: testNow.AddDate(0, 0, -1), Primogems: 4600, Intertwined: 2})
	require.NoError(t, err)
	_, err = st.CreateEntry(model.PurchaseEntry{Timestamp: testNow.AddDate(0, 0, -5), Amount: 300, Source: model.SourceEvent})
	require.NoError(t, err)
	require.NoError(t, st.Close())

	d, err := loadData(opts, nil)
	require.NoError(t, err)

	a := NewApp(opts)
	require.False(t, a.needSetup)

	m, _ := a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = m.(App).Update(DataLoadedMsg{Data: d, LoadTime: time.Second})
	a = m.(App)
	require.True(t, a.loaded)

	want := map[int]string{
		tabOverview: "Daily rate",
		tabTrends:   "Income per banner period",
		tabLog:      "Transaction log",
		tabSettings: "Import directory",
	}
	for tab, text := range want {
		a.activeTab = tab
		out := a.View()
		assert.Contains(t, out, text, "tab %d", tab)
		assert.Contains(t, out, "Overview", "tab bar on tab %d", tab)
	}
}

func TestViewTooNarrow(t *testing.T) {
	a := App{width: 60, height: 20, loaded: true}
	assert.Contains(t, a.View(), "Terminal too narrow")
}

func TestSettingsSaveValidatesAndPersists(t *testing.T) {
	isolateConfig(t)

	a := NewApp(testOptions(t))
	a.settings.cursor = settingsFieldLookback

	a.settings.input = newSettingsInput()
	a.settings.input.SetValue("0")
	assert.False(t, a.settingsSave())
	assert.ErrorIs(t, a.settings.saveErr, errPositiveDays)

	a.settings.input.SetValue("45")
	assert.True(t, a.settingsSave())
	require.NoError(t, a.settings.saveErr)
	assert.Equal(t, 45, a.opts.Report.LookbackDays)

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 45, cfg.General.DefaultLookbackDays)

	a.settings.cursor = settingsFieldManualRate
	a.settings.input.SetValue("-3")
	assert.False(t, a.settingsSave())
	assert.Error(t, a.settings.saveErr)

	a.settings.input.SetValue("125.5")
	assert.True(t, a.settingsSave())
	require.NotNil(t, a.opts.Economy.ManualDailyRate)
	assert.InDelta(t, 125.5, *a.opts.Economy.ManualDailyRate, 1e-9)

	a.settings.cursor = settingsFieldTheme
	a.settings.input.SetValue("no-such-theme")
	assert.False(t, a.settingsSave())
	assert.Error(t, a.settings.saveErr)
}
