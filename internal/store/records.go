package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/theirongolddev/gemledger/internal/model"
)

// AddSnapshot validates and stores a snapshot, assigning an ID if needed.
func (s *Store) AddSnapshot(snap model.Snapshot) (model.Snapshot, error) {
	if err := snap.Validate(); err != nil {
		return snap, err
	}
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = s.now().UTC()
	}
	if _, err := insertSnapshot(s.db, snap); err != nil {
		return snap, fmt.Errorf("inserting snapshot: %w", err)
	}
	return snap, nil
}

// ListSnapshots returns every snapshot, oldest first.
func (s *Store) ListSnapshots() ([]model.Snapshot, error) {
	return listSnapshots(s.db)
}

func insertSnapshot(q queryer, snap model.Snapshot) (int, error) {
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = snap.Timestamp
	}
	res, err := q.Exec(`INSERT OR IGNORE INTO snapshots
		(id, ts, ts_unix, primogems, genesis_crystals, intertwined, acquaint,
		 starglitter, stardust, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.ID, formatTime(snap.Timestamp), snap.Timestamp.UnixNano(),
		snap.Primogems, snap.GenesisCrystals, snap.Intertwined, snap.Acquaint,
		snap.Starglitter, snap.Stardust, formatTime(snap.CreatedAt),
	)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func listSnapshots(q queryer) ([]model.Snapshot, error) {
	rows, err := q.Query(`SELECT id, ts, primogems, genesis_crystals, intertwined,
		acquaint, starglitter, stardust, created_at
		FROM snapshots ORDER BY ts_unix, id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.Snapshot
	for rows.Next() {
		var snap model.Snapshot
		var ts, created string
		if err := rows.Scan(&snap.ID, &ts, &snap.Primogems, &snap.GenesisCrystals,
			&snap.Intertwined, &snap.Acquaint, &snap.Starglitter, &snap.Stardust, &created); err != nil {
			return nil, err
		}
		snap.Timestamp = parseTime(ts)
		snap.CreatedAt = parseTime(created)
		out = append(out, snap)
	}
	return out, rows.Err()
}

// ListPulls returns every pull, oldest first.
func (s *Store) ListPulls() ([]model.PullRecord, error) {
	return listPulls(s.db)
}

func insertPull(q queryer, p model.PullRecord, sourceFile string) (int, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	res, err := q.Exec(`INSERT OR IGNORE INTO pulls
		(id, banner, ts, ts_unix, item_type, item_key, rarity, source_file)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, string(p.Banner), formatTime(p.Timestamp), p.Timestamp.UnixNano(),
		p.ItemType, p.ItemKey, p.Rarity, sourceFile,
	)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func listPulls(q queryer) ([]model.PullRecord, error) {
	rows, err := q.Query(`SELECT id, banner, ts, item_type, item_key, rarity
		FROM pulls ORDER BY ts_unix, id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.PullRecord
	for rows.Next() {
		var p model.PullRecord
		var banner, ts string
		var itemType, itemKey sql.NullString
		if err := rows.Scan(&p.ID, &banner, &ts, &itemType, &itemKey, &p.Rarity); err != nil {
			return nil, err
		}
		p.Banner = model.BannerCategory(banner)
		p.Timestamp = parseTime(ts)
		p.ItemType = itemType.String
		p.ItemKey = itemKey.String
		out = append(out, p)
	}
	return out, rows.Err()
}

// CreateEntry validates and stores a new ledger entry with a fresh ID.
func (s *Store) CreateEntry(e model.PurchaseEntry) (model.PurchaseEntry, error) {
	if err := e.Validate(); err != nil {
		return e, err
	}
	now := s.now().UTC()
	e.ID = uuid.NewString()
	e.CreatedAt = now
	e.UpdatedAt = now

	_, err := s.db.Exec(`INSERT INTO ledger_entries
		(id, ts, ts_unix, amount, source, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, formatTime(e.Timestamp), e.Timestamp.UnixNano(), e.Amount, string(e.Source),
		e.Notes, formatTime(e.CreatedAt), formatTime(e.UpdatedAt),
	)
	if err != nil {
		return e, fmt.Errorf("inserting ledger entry: %w", err)
	}
	return e, nil
}

// UpdateEntry replaces the fields of a live ledger entry.
func (s *Store) UpdateEntry(e model.PurchaseEntry) (model.PurchaseEntry, error) {
	if err := e.Validate(); err != nil {
		return e, err
	}
	e.UpdatedAt = s.now().UTC()

	res, err := s.db.Exec(`UPDATE ledger_entries
		SET ts = ?, ts_unix = ?, amount = ?, source = ?, notes = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		formatTime(e.Timestamp), e.Timestamp.UnixNano(), e.Amount, string(e.Source),
		e.Notes, formatTime(e.UpdatedAt), e.ID,
	)
	if err != nil {
		return e, fmt.Errorf("updating ledger entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return e, fmt.Errorf("ledger entry %s: %w", e.ID, ErrNotFound)
	}
	return s.GetEntry(e.ID)
}

// DeleteEntry soft-deletes a ledger entry.
func (s *Store) DeleteEntry(id string) error {
	now := formatTime(s.now().UTC())
	res, err := s.db.Exec(`UPDATE ledger_entries SET deleted_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`, now, now, id)
	if err != nil {
		return fmt.Errorf("deleting ledger entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("ledger entry %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetEntry returns one live ledger entry.
func (s *Store) GetEntry(id string) (model.PurchaseEntry, error) {
	row := s.db.QueryRow(`SELECT id, ts, amount, source, notes, created_at, updated_at
		FROM ledger_entries WHERE id = ? AND deleted_at IS NULL`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return e, fmt.Errorf("ledger entry %s: %w", id, ErrNotFound)
	}
	return e, err
}

// ListEntries returns every live ledger entry, oldest first.
func (s *Store) ListEntries() ([]model.PurchaseEntry, error) {
	return listEntries(s.db)
}

func listEntries(q queryer) ([]model.PurchaseEntry, error) {
	rows, err := q.Query(`SELECT id, ts, amount, source, notes, created_at, updated_at
		FROM ledger_entries WHERE deleted_at IS NULL ORDER BY ts_unix, id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.PurchaseEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (model.PurchaseEntry, error) {
	var e model.PurchaseEntry
	var ts, source, created, updated string
	var notes sql.NullString
	if err := sc.Scan(&e.ID, &ts, &e.Amount, &source, &notes, &created, &updated); err != nil {
		return e, err
	}
	e.Timestamp = parseTime(ts)
	e.Source = model.Source(source)
	e.Notes = notes.String
	e.CreatedAt = parseTime(created)
	e.UpdatedAt = parseTime(updated)
	return e, nil
}
