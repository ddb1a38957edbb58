package pipeline

import (
	"math"
	"sort"
	"time"

	"github.com/theirongolddev/gemledger/internal/config"
	"github.com/theirongolddev/gemledger/internal/model"
)

const dayLayout = "2006-01-02"

// DayOf returns the calendar day of t in t's own location, as UTC midnight.
// Records are bucketed by the civil date they were recorded with; no
// normalization across time zones is attempted.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(math.Round(DayOf(b).Sub(DayOf(a)).Hours() / 24))
}

func dayKey(day time.Time) string {
	return day.Format(dayLayout)
}

// SnapshotTotal is a snapshot's currency-equivalent total: primogems plus
// intertwined fates expressed in primogems.
func SnapshotTotal(s model.Snapshot, econ config.Economy) int64 {
	return s.Primogems + s.Intertwined*econ.CurrencyPerPull
}

// dayIndex holds the per-day lookups shared by every pass over one dataset.
// It is built once per call and never mutated afterwards.
type dayIndex struct {
	snapshots []model.Snapshot   // ascending by timestamp
	pulls     []model.PullRecord // costing only, ascending
	purchases []model.PurchaseEntry

	pullsByDay     map[string]int
	purchasesByDay map[string]int64
	snapshotByDay  map[string]model.Snapshot

	// prefix counts for cumulative counters, keyed by ascending day
	pullDays          []time.Time
	positivePurchases []purchaseDay
}

type purchaseDay struct {
	day        time.Time
	cumulative int64
}

func newDayIndex(ds model.Dataset, econ config.Economy) *dayIndex {
	idx := &dayIndex{
		snapshots:      sortedSnapshots(ds.Snapshots),
		pulls:          sortedPulls(CostingPulls(ds.Pulls, econ)),
		purchases:      sortedPurchases(ds.Purchases),
		pullsByDay:     make(map[string]int),
		purchasesByDay: make(map[string]int64),
		snapshotByDay:  make(map[string]model.Snapshot),
	}

	for _, p := range idx.pulls {
		day := DayOf(p.Timestamp)
		idx.pullsByDay[dayKey(day)]++
		idx.pullDays = append(idx.pullDays, day)
	}
	// pulls are sorted by instant, not by own-location day
	sort.Slice(idx.pullDays, func(i, j int) bool { return idx.pullDays[i].Before(idx.pullDays[j]) })

	type dayAmount struct {
		day    time.Time
		amount int64
	}
	var positives []dayAmount
	for _, p := range idx.purchases {
		day := DayOf(p.Timestamp)
		idx.purchasesByDay[dayKey(day)] += p.Amount
		if p.Amount > 0 {
			positives = append(positives, dayAmount{day, p.Amount})
		}
	}
	sort.SliceStable(positives, func(i, j int) bool { return positives[i].day.Before(positives[j].day) })
	var running int64
	for _, p := range positives {
		running += p.amount
		idx.positivePurchases = append(idx.positivePurchases, purchaseDay{day: p.day, cumulative: running})
	}

	// last sorted snapshot wins for its day
	for _, s := range idx.snapshots {
		idx.snapshotByDay[dayKey(DayOf(s.Timestamp))] = s
	}
	return idx
}

func (idx *dayIndex) snapshotOn(day time.Time) (model.Snapshot, bool) {
	s, ok := idx.snapshotByDay[dayKey(day)]
	return s, ok
}

func (idx *dayIndex) pullsOn(day time.Time) int {
	return idx.pullsByDay[dayKey(day)]
}

func (idx *dayIndex) purchasesOn(day time.Time) int64 {
	return idx.purchasesByDay[dayKey(day)]
}

// pullsThrough counts costing pulls on or before day.
func (idx *dayIndex) pullsThrough(day time.Time) int {
	return sort.Search(len(idx.pullDays), func(i int) bool { return idx.pullDays[i].After(day) })
}

// purchasesThrough sums positive ledger amounts on or before day.
func (idx *dayIndex) purchasesThrough(day time.Time) int64 {
	n := sort.Search(len(idx.positivePurchases), func(i int) bool {
		return idx.positivePurchases[i].day.After(day)
	})
	if n == 0 {
		return 0
	}
	return idx.positivePurchases[n-1].cumulative
}

// pullsBetween counts costing pulls whose day falls in [from, to].
func (idx *dayIndex) pullsBetween(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	return idx.pullsThrough(to) - idx.pullsThrough(from.AddDate(0, 0, -1))
}

func sortedSnapshots(in []model.Snapshot) []model.Snapshot {
	out := make([]model.Snapshot, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

func sortedPulls(in []model.PullRecord) []model.PullRecord {
	out := make([]model.PullRecord, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

func sortedPurchases(in []model.PurchaseEntry) []model.PurchaseEntry {
	out := make([]model.PurchaseEntry, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}
