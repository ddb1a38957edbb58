package pipeline

import (
	"sort"
	"time"

	"github.com/theirongolddev/gemledger/internal/config"
	"github.com/theirongolddev/gemledger/internal/model"
)

// PeriodFor returns the index and first day of the banner period holding day.
// Days before the reference date fall into negative indices.
func PeriodFor(day time.Time, econ config.Economy) (index int, start time.Time) {
	length := econ.BannerPeriodDays
	if length <= 0 {
		length = 1
	}
	ref := DayOf(econ.BannerReference)
	index = floorDiv(DaysBetween(ref, day), length)
	return index, ref.AddDate(0, 0, index*length)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// BannerPeriods reports income for every banner period from the earliest
// recorded snapshot or pull through the period containing today. The
// current period is clipped to today.
func BannerPeriods(ds model.Dataset, now time.Time, econ config.Economy) []model.PeriodTrendPoint {
	idx := newDayIndex(ds, econ)
	earliest, ok := earliestDay(idx)
	if !ok {
		return nil
	}
	today := DayOf(now)
	if earliest.After(today) {
		return nil
	}

	length := econ.BannerPeriodDays
	if length <= 0 {
		length = 1
	}
	firstIdx, _ := PeriodFor(earliest, econ)
	lastIdx, _ := PeriodFor(today, econ)
	ref := DayOf(econ.BannerReference)

	out := make([]model.PeriodTrendPoint, 0, lastIdx-firstIdx+1)
	for i := firstIdx; i <= lastIdx; i++ {
		start := ref.AddDate(0, 0, i*length)
		end := start.AddDate(0, 0, length-1)
		current := false
		if end.After(today) {
			end = today
			current = true
		}
		out = append(out, periodPoint(idx, i, start, end, current, econ))
	}
	return out
}

func periodPoint(idx *dayIndex, i int, start, end time.Time, current bool, econ config.Economy) model.PeriodTrendPoint {
	days := DaysBetween(start, end) + 1
	p := model.PeriodTrendPoint{
		Index:       i,
		PeriodStart: start,
		PeriodEnd:   end,
		Days:        days,
		Pulls:       idx.pullsBetween(start, end),
		IsCurrent:   current,
	}

	if from, to, ok := boundingSnapshots(idx, start, end); ok {
		income, elapsed := snapshotIncome(idx, from, to, econ)
		if elapsed > 0 {
			p.DailyRate = float64(income) / float64(elapsed)
			p.TotalIncome = p.DailyRate * float64(days)
			p.IsGroundTruth = true
			return p
		}
	}

	p.TotalIncome = float64(int64(p.Pulls) * econ.CurrencyPerPull)
	p.DailyRate = p.TotalIncome / float64(days)
	return p
}

// boundingSnapshots picks the latest snapshot on or before the period start
// and the earliest snapshot on or after its end. When no snapshot reaches
// the end yet, the latest snapshot inside the period stands in for it.
func boundingSnapshots(idx *dayIndex, start, end time.Time) (from, to model.Snapshot, ok bool) {
	snaps := idx.snapshots
	after := sort.Search(len(snaps), func(i int) bool { return DayOf(snaps[i].Timestamp).After(start) })
	if after == 0 {
		return from, to, false
	}
	from = snaps[after-1]

	atEnd := sort.Search(len(snaps), func(i int) bool { return !DayOf(snaps[i].Timestamp).Before(end) })
	switch {
	case atEnd < len(snaps):
		to = snaps[atEnd]
	case after < len(snaps):
		to = snaps[len(snaps)-1]
	default:
		return from, to, false
	}
	if !DayOf(to.Timestamp).After(DayOf(from.Timestamp)) {
		return from, to, false
	}
	return from, to, true
}

func earliestDay(idx *dayIndex) (time.Time, bool) {
	var earliest time.Time
	found := false
	consider := func(t time.Time) {
		d := DayOf(t)
		if !found || d.Before(earliest) {
			earliest = d
			found = true
		}
	}
	if len(idx.snapshots) > 0 {
		consider(idx.snapshots[0].Timestamp)
	}
	if len(idx.pullDays) > 0 {
		consider(idx.pullDays[0])
	}
	return earliest, found
}

// SummarizeTrend averages period rates and compares the early half of the
// periods with the recent half. The comparison needs at least four periods.
func SummarizeTrend(points []model.PeriodTrendPoint) model.TrendSummary {
	s := model.TrendSummary{Periods: len(points)}
	if len(points) == 0 {
		return s
	}
	var total float64
	for _, p := range points {
		total += p.DailyRate
	}
	s.AverageRate = total / float64(len(points))

	if len(points) < 4 {
		return s
	}
	mid := len(points) / 2
	s.EarlyAverage = meanRate(points[:mid])
	s.RecentAverage = meanRate(points[mid:])
	if s.EarlyAverage != 0 {
		s.ChangePercent = (s.RecentAverage - s.EarlyAverage) / s.EarlyAverage * 100
	}
	return s
}

func meanRate(points []model.PeriodTrendPoint) float64 {
	var total float64
	for _, p := range points {
		total += p.DailyRate
	}
	return total / float64(len(points))
}
