package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS snapshots (
    id                   TEXT PRIMARY KEY,
    ts                   TEXT NOT NULL,
    ts_unix              INTEGER NOT NULL,
    primogems            INTEGER NOT NULL DEFAULT 0,
    genesis_crystals     INTEGER NOT NULL DEFAULT 0,
    intertwined          INTEGER NOT NULL DEFAULT 0,
    acquaint             INTEGER NOT NULL DEFAULT 0,
    starglitter          INTEGER NOT NULL DEFAULT 0,
    stardust             INTEGER NOT NULL DEFAULT 0,
    created_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS pulls (
    id                   TEXT PRIMARY KEY,
    banner               TEXT NOT NULL,
    ts                   TEXT NOT NULL,
    ts_unix              INTEGER NOT NULL,
    item_type            TEXT,
    item_key             TEXT,
    rarity               INTEGER NOT NULL DEFAULT 3,
    source_file          TEXT
);

CREATE TABLE IF NOT EXISTS ledger_entries (
    id                   TEXT PRIMARY KEY,
    ts                   TEXT NOT NULL,
    ts_unix              INTEGER NOT NULL,
    amount               INTEGER NOT NULL,
    source               TEXT NOT NULL,
    notes                TEXT,
    created_at           TEXT NOT NULL,
    updated_at           TEXT NOT NULL,
    deleted_at           TEXT
);

CREATE TABLE IF NOT EXISTS file_tracker (
    file_path            TEXT PRIMARY KEY,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL,
    imported_at          TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_ts ON snapshots(ts_unix);
CREATE INDEX IF NOT EXISTS idx_pulls_ts ON pulls(ts_unix);
CREATE INDEX IF NOT EXISTS idx_pulls_banner ON pulls(banner);
CREATE INDEX IF NOT EXISTS idx_ledger_ts ON ledger_entries(ts_unix);
`
