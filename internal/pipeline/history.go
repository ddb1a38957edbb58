package pipeline

import (
	"time"

	"github.com/theirongolddev/gemledger/internal/config"
	"github.com/theirongolddev/gemledger/internal/model"
)

// balance is the pair of running totals carried through a pass.
type balance struct {
	plain         int64
	withPurchases int64
}

func resetTo(s model.Snapshot, econ config.Economy) balance {
	t := SnapshotTotal(s, econ)
	return balance{plain: t, withPurchases: t}
}

// BuildHistory reconstructs a day-by-day balance from the oldest usable day
// through today. Every snapshot day carries that snapshot's exact total;
// days in between are derived from costing pulls and ledger entries.
// Snapshots dated after today are ignored. It returns nil when no snapshot
// on or before today can anchor the series.
func BuildHistory(ds model.Dataset, lookbackDays int, now time.Time, econ config.Economy) []model.HistoricalPoint {
	if len(ds.Snapshots) == 0 {
		return nil
	}
	if lookbackDays < 0 {
		lookbackDays = 0
	}

	idx := newDayIndex(ds, econ)
	today := DayOf(now)
	anchor, ok := latestThrough(idx.snapshots, today)
	if !ok {
		return nil
	}
	anchorDay := DayOf(anchor.Timestamp)

	start := today.AddDate(0, 0, -lookbackDays)
	if oldest := oldestSnapshotDay(idx.snapshots); oldest.After(start) {
		start = oldest
	}

	backward := backwardPass(idx, anchor, anchorDay, start, econ)
	forward := forwardPass(idx, anchor, anchorDay, today, econ)

	out := make([]model.HistoricalPoint, 0, len(backward)+len(forward))
	for _, seg := range [][]dayBalance{backward, forward} {
		for _, db := range seg {
			// an anchor older than the lookback still seeds the forward pass
			if db.day.Before(start) {
				continue
			}
			out = append(out, idx.point(db, today))
		}
	}
	return out
}

// latestThrough returns the newest snapshot whose local day is on or
// before day. snaps must be sorted by instant.
func latestThrough(snaps []model.Snapshot, day time.Time) (model.Snapshot, bool) {
	var (
		best    model.Snapshot
		bestDay time.Time
		found   bool
	)
	for _, s := range snaps {
		d := DayOf(s.Timestamp)
		if d.After(day) {
			continue
		}
		// by instant within a day, later wins
		if !found || !d.Before(bestDay) {
			best, bestDay, found = s, d, true
		}
	}
	return best, found
}

// oldestSnapshotDay is the earliest local day of any snapshot. With mixed
// UTC offsets this need not be the day of the earliest instant.
func oldestSnapshotDay(snaps []model.Snapshot) time.Time {
	oldest := DayOf(snaps[0].Timestamp)
	for _, s := range snaps[1:] {
		if d := DayOf(s.Timestamp); d.Before(oldest) {
			oldest = d
		}
	}
	return oldest
}

// dayBalance is the unclamped result of a pass for one day.
type dayBalance struct {
	day        time.Time
	bal        balance
	isSnapshot bool
}

// forwardPass walks from the anchor day through today and never past it. A
// snapshot day resets both totals; other days subtract that day's pull
// spend, and the with-purchases total also gains ledger amounts recorded
// after the anchor.
func forwardPass(idx *dayIndex, anchor model.Snapshot, anchorDay, today time.Time, econ config.Economy) []dayBalance {
	var out []dayBalance
	cur := resetTo(anchor, econ)
	for day := anchorDay; !day.After(today); day = day.AddDate(0, 0, 1) {
		snap, isSnap := idx.snapshotOn(day)
		if isSnap {
			cur = resetTo(snap, econ)
		} else {
			spend := int64(idx.pullsOn(day)) * econ.CurrencyPerPull
			cur.plain -= spend
			cur.withPurchases -= spend
			if day.After(anchorDay) {
				cur.withPurchases += idx.purchasesOn(day)
			}
		}
		out = append(out, dayBalance{day: day, bal: cur, isSnapshot: isSnap})
	}
	return out
}

// backwardPass walks from the day before the anchor down to start and
// returns the days in ascending order. Non-snapshot days undo the following
// day's activity unless a snapshot on that following day already absorbed it.
func backwardPass(idx *dayIndex, anchor model.Snapshot, anchorDay, start time.Time, econ config.Economy) []dayBalance {
	var desc []dayBalance
	cur := resetTo(anchor, econ)
	for day := anchorDay.AddDate(0, 0, -1); !day.Before(start); day = day.AddDate(0, 0, -1) {
		snap, isSnap := idx.snapshotOn(day)
		if isSnap {
			cur = resetTo(snap, econ)
		} else {
			next := day.AddDate(0, 0, 1)
			if _, nextIsSnap := idx.snapshotOn(next); !nextIsSnap {
				spend := int64(idx.pullsOn(next)) * econ.CurrencyPerPull
				cur.plain += spend
				cur.withPurchases += spend - idx.purchasesOn(next)
			}
		}
		desc = append(desc, dayBalance{day: day, bal: cur, isSnapshot: isSnap})
	}

	out := make([]dayBalance, len(desc))
	for i, db := range desc {
		out[len(desc)-1-i] = db
	}
	return out
}

func (idx *dayIndex) point(db dayBalance, today time.Time) model.HistoricalPoint {
	return model.HistoricalPoint{
		Day:                  db.day,
		Balance:              clampZero(db.bal.plain),
		BalanceWithPurchases: clampZero(db.bal.withPurchases),
		IsSnapshot:           db.isSnapshot,
		IsToday:              db.day.Equal(today),
		CumulativePulls:      idx.pullsThrough(db.day),
		CumulativePurchases:  idx.purchasesThrough(db.day),
	}
}

func clampZero(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
