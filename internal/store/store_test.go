package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/gemledger/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSnapshotRoundTripKeepsOffset(t *testing.T) {
	s := openTestStore(t)

	tokyo := time.FixedZone("JST", 9*3600)
	ts := time.Date(2025, 3, 1, 0, 30, 0, 0, tokyo) // still Feb 28 in UTC
	saved, err := s.AddSnapshot(model.Snapshot{Timestamp: ts, Primogems: 1200, Intertwined: 3})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	snaps, err := s.ListSnapshots()
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.True(t, snaps[0].Timestamp.Equal(ts))
	assert.Equal(t, 1, snaps[0].Timestamp.Day(), "calendar day must survive the round trip")
	assert.Equal(t, int64(1200), snaps[0].Primogems)
	assert.Equal(t, int64(3), snaps[0].Intertwined)
}

func TestAddSnapshotRejectsNegative(t *testing.T) {
	s := openTestStore(t)
	_, err := s.AddSnapshot(model.Snapshot{Timestamp: time.Now(), Primogems: -1})
	require.ErrorIs(t, err, model.ErrNegativeBalance)
}

func TestImportFileDeduplicatesPulls(t *testing.T) {
	s := openTestStore(t)
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	pulls := []model.PullRecord{
		{ID: "1001", Banner: model.BannerCharacter, Timestamp: ts, Rarity: 3},
		{ID: "1002", Banner: model.BannerCharacter, Timestamp: ts, Rarity: 4},
	}

	n, _, err := s.ImportFile("/exports/a.json", FileInfo{MtimeNs: 1, SizeBytes: 10}, pulls, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, _, err = s.ImportFile("/exports/b.json", FileInfo{MtimeNs: 2, SizeBytes: 10}, pulls, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	got, err := s.ListPulls()
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestLedgerCRUD(t *testing.T) {
	s := openTestStore(t)
	ts := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)

	created, err := s.CreateEntry(model.PurchaseEntry{
		Timestamp: ts, Amount: 6480, Source: model.SourcePurchase, Notes: "first top-up",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	created.Amount = 3280
	created.Notes = "corrected"
	updated, err := s.UpdateEntry(created)
	require.NoError(t, err)
	assert.Equal(t, int64(3280), updated.Amount)
	assert.Equal(t, "corrected", updated.Notes)

	entries, err := s.ListEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.NoError(t, s.DeleteEntry(created.ID))
	entries, err = s.ListEntries()
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.ErrorIs(t, s.DeleteEntry(created.ID), ErrNotFound)
	_, err = s.GetEntry(created.ID)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.UpdateEntry(created)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateEntryValidation(t *testing.T) {
	s := openTestStore(t)
	ts := time.Now()

	_, err := s.CreateEntry(model.PurchaseEntry{Timestamp: ts, Amount: 0, Source: model.SourceEvent})
	require.ErrorIs(t, err, model.ErrInvalidAmount)

	_, err = s.CreateEntry(model.PurchaseEntry{Timestamp: ts, Amount: 10, Source: "lottery"})
	require.ErrorIs(t, err, model.ErrInvalidSource)
}

func TestImportFileTracksAndLoadsDataset(t *testing.T) {
	s := openTestStore(t)
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	np, ns, err := s.ImportFile("/exports/wishes.json", FileInfo{MtimeNs: 42, SizeBytes: 100},
		[]model.PullRecord{{ID: "a", Banner: model.BannerWeapon, Timestamp: ts, Rarity: 4}},
		[]model.Snapshot{{ID: "snap-1", Timestamp: ts, Primogems: 500}},
	)
	require.NoError(t, err)
	assert.Equal(t, 1, np)
	assert.Equal(t, 1, ns)

	tracked, err := s.GetTrackedFiles()
	require.NoError(t, err)
	assert.Equal(t, FileInfo{MtimeNs: 42, SizeBytes: 100}, tracked["/exports/wishes.json"])

	_, err = s.CreateEntry(model.PurchaseEntry{Timestamp: ts, Amount: 60, Source: model.SourceDailyCommission})
	require.NoError(t, err)

	ds, err := s.LoadDataset()
	require.NoError(t, err)
	assert.Len(t, ds.Snapshots, 1)
	assert.Len(t, ds.Pulls, 1)
	assert.Len(t, ds.Purchases, 1)

	counts, err := s.Counts()
	require.NoError(t, err)
	assert.Equal(t, Counts{Snapshots: 1, Pulls: 1, Entries: 1, Files: 1}, counts)

	require.NoError(t, s.DeleteFileTracker("/exports/wishes.json"))
	tracked, err = s.GetTrackedFiles()
	require.NoError(t, err)
	assert.Empty(t, tracked)
}
