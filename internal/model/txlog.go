package model

import "time"

// LogKind identifies the record behind a transaction log entry.
type LogKind string

// Transaction log entry kinds.
const (
	LogSnapshot     LogKind = "snapshot"
	LogPurchase     LogKind = "purchase"
	LogPullSpending LogKind = "pull_spending"
)

// LogEntry is one row of the merged transaction log.
type LogEntry struct {
	ID          string
	Timestamp   time.Time
	Kind        LogKind
	Amount      int64
	Description string
	Notes       string
	Editable    bool
	Ref         LogRef
}

// LogRef points back at the record a log entry was built from.
// It is implemented only by SnapshotRef, PurchaseRef and PullDayRef.
type LogRef interface {
	logRef()
}

// SnapshotRef references a snapshot.
type SnapshotRef struct{ Snapshot Snapshot }

// PurchaseRef references a ledger entry.
type PurchaseRef struct{ Purchase PurchaseEntry }

// PullDayRef references the costing pulls aggregated into one day.
type PullDayRef struct {
	Day   time.Time
	Pulls []PullRecord
}

func (SnapshotRef) logRef() {}
func (PurchaseRef) logRef() {}
func (PullDayRef) logRef()  {}
