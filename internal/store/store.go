// Package store provides the SQLite-backed ledger database.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/gemledger/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// ErrNotFound is returned when a record with the requested ID does not exist.
var ErrNotFound = errors.New("record not found")

// Store is the ledger database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the ledger database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening ledger db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the ledger database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Timestamps keep their original UTC offset so each record's calendar day
// survives a round trip.
func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// FileInfo holds the tracked mtime and size for an imported file.
type FileInfo struct {
	MtimeNs   int64
	SizeBytes int64
}

// GetTrackedFiles returns a map of file_path -> FileInfo for all imported files.
func (s *Store) GetTrackedFiles() (map[string]FileInfo, error) {
	rows, err := s.db.Query("SELECT file_path, mtime_ns, size_bytes FROM file_tracker")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes); err != nil {
			return nil, err
		}
		result[path] = fi
	}
	return result, rows.Err()
}

// ImportFile stores the records parsed from one export file and marks the
// file as imported, in a single transaction. Pulls already present are
// skipped. It returns how many pulls and snapshots were new.
func (s *Store) ImportFile(path string, fi FileInfo, pulls []model.PullRecord, snapshots []model.Snapshot) (newPulls, newSnapshots int, err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, 0, err
	}
	defer func() { _ = tx.Rollback() }()

	for _, p := range pulls {
		n, err := insertPull(tx, p, path)
		if err != nil {
			return 0, 0, fmt.Errorf("inserting pull %s: %w", p.ID, err)
		}
		newPulls += n
	}
	for _, snap := range snapshots {
		n, err := insertSnapshot(tx, snap)
		if err != nil {
			return 0, 0, fmt.Errorf("inserting snapshot %s: %w", snap.ID, err)
		}
		newSnapshots += n
	}

	_, err = tx.Exec(`INSERT OR REPLACE INTO file_tracker (file_path, mtime_ns, size_bytes, imported_at)
		VALUES (?, ?, ?, ?)`, path, fi.MtimeNs, fi.SizeBytes, formatTime(s.now().UTC()))
	if err != nil {
		return 0, 0, err
	}

	return newPulls, newSnapshots, tx.Commit()
}

// DeleteFileTracker forgets an imported file so the next import re-reads it.
func (s *Store) DeleteFileTracker(filePath string) error {
	_, err := s.db.Exec("DELETE FROM file_tracker WHERE file_path = ?", filePath)
	return err
}

// Counts holds record totals for status output.
type Counts struct {
	Snapshots int
	Pulls     int
	Entries   int
	Files     int
}

// Counts returns the number of live records in each table.
func (s *Store) Counts() (Counts, error) {
	var c Counts
	err := s.db.QueryRow(`SELECT
		(SELECT COUNT(*) FROM snapshots),
		(SELECT COUNT(*) FROM pulls),
		(SELECT COUNT(*) FROM ledger_entries WHERE deleted_at IS NULL),
		(SELECT COUNT(*) FROM file_tracker)`).Scan(&c.Snapshots, &c.Pulls, &c.Entries, &c.Files)
	return c, err
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
	Exec(query string, args ...any) (sql.Result, error)
}

// LoadDataset reads every snapshot, pull and live ledger entry inside one
// transaction so the result is a single consistent view.
func (s *Store) LoadDataset() (model.Dataset, error) {
	var ds model.Dataset

	tx, err := s.db.Begin()
	if err != nil {
		return ds, err
	}
	defer func() { _ = tx.Rollback() }()

	if ds.Snapshots, err = listSnapshots(tx); err != nil {
		return ds, fmt.Errorf("loading snapshots: %w", err)
	}
	if ds.Pulls, err = listPulls(tx); err != nil {
		return ds, fmt.Errorf("loading pulls: %w", err)
	}
	if ds.Purchases, err = listEntries(tx); err != nil {
		return ds, fmt.Errorf("loading ledger: %w", err)
	}
	return ds, tx.Commit()
}
