package pipeline

import (
	"time"

	"github.com/theirongolddev/gemledger/internal/config"
	"github.com/theirongolddev/gemledger/internal/model"
)

// EstimateRate returns the daily primogem income over the trailing
// windowDays. A manual rate in econ wins outright. Otherwise the snapshot
// delta is preferred, falling back to pull frequency, and finally zero.
func EstimateRate(ds model.Dataset, windowDays int, now time.Time, econ config.Economy) model.RateEstimate {
	if econ.ManualDailyRate != nil {
		return model.RateEstimate{DailyRate: *econ.ManualDailyRate, Source: model.RateManual}
	}

	idx := newDayIndex(ds, econ)
	today := DayOf(now)
	windowStart := today.AddDate(0, 0, -windowDays)

	if est, ok := snapshotDeltaRate(idx, windowStart, today, econ); ok {
		return est
	}
	if est, ok := pullFrequencyRate(idx, windowStart, today, windowDays, econ); ok {
		return est
	}
	return model.RateEstimate{Source: model.RateNone}
}

// snapshotDeltaRate measures income between two boundary snapshots: the
// first and last inside the window when there are at least two, else the
// two most recent overall. Inside the window is inclusive at both ends,
// windowStart <= day <= today, so a snapshot taken on the window's first
// day or today counts. Pulls made between them are added back since
// they were income spent before the later snapshot was taken.
func snapshotDeltaRate(idx *dayIndex, windowStart, today time.Time, econ config.Economy) (model.RateEstimate, bool) {
	var inWindow []model.Snapshot
	for _, s := range idx.snapshots {
		day := DayOf(s.Timestamp)
		if !day.Before(windowStart) && !day.After(today) {
			inWindow = append(inWindow, s)
		}
	}

	var first, last model.Snapshot
	switch {
	case len(inWindow) >= 2:
		first, last = inWindow[0], inWindow[len(inWindow)-1]
	case len(idx.snapshots) >= 2:
		first, last = idx.snapshots[len(idx.snapshots)-2], idx.snapshots[len(idx.snapshots)-1]
	default:
		return model.RateEstimate{}, false
	}

	income, elapsed := snapshotIncome(idx, first, last, econ)
	if elapsed <= 0 {
		return model.RateEstimate{}, false
	}
	rate := float64(income) / float64(elapsed)
	if rate <= 0 {
		return model.RateEstimate{}, false
	}
	return model.RateEstimate{
		DailyRate: rate,
		Source:    model.RateFromSnapshots,
		StartDay:  DayOf(first.Timestamp),
		EndDay:    DayOf(last.Timestamp),
		Income:    income,
	}, true
}

// snapshotIncome returns the income between two snapshots and the whole
// days separating them. Costing pulls on both boundary days count.
func snapshotIncome(idx *dayIndex, from, to model.Snapshot, econ config.Economy) (income int64, elapsedDays int) {
	fromDay, toDay := DayOf(from.Timestamp), DayOf(to.Timestamp)
	pulls := idx.pullsBetween(fromDay, toDay)
	income = SnapshotTotal(to, econ) - SnapshotTotal(from, econ) + int64(pulls)*econ.CurrencyPerPull
	return income, DaysBetween(fromDay, toDay)
}

// pullFrequencyRate treats currency spent on pulls as income, spread over
// the full requested window rather than the span the pulls happen to cover.
func pullFrequencyRate(idx *dayIndex, windowStart, today time.Time, windowDays int, econ config.Economy) (model.RateEstimate, bool) {
	if windowDays <= 0 {
		return model.RateEstimate{}, false
	}
	pulls := idx.pullsBetween(windowStart, today)
	if pulls == 0 {
		return model.RateEstimate{}, false
	}
	income := int64(pulls) * econ.CurrencyPerPull
	return model.RateEstimate{
		DailyRate: float64(income) / float64(windowDays),
		Source:    model.RateFromPulls,
		Income:    income,
	}, true
}
