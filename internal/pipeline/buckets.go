package pipeline

import (
	"sort"
	"time"

	"github.com/theirongolddev/gemledger/internal/model"
)

// BucketFilter narrows the ledger entries fed into BucketEntries.
type BucketFilter struct {
	Interval         model.BucketInterval
	Since            time.Time // zero means unbounded
	Until            time.Time // zero means unbounded
	Source           model.Source
	IncludePurchases bool
}

// BucketStart returns the Monday of day's week or the first of its month.
func BucketStart(day time.Time, interval model.BucketInterval) time.Time {
	d := DayOf(day)
	if interval == model.IntervalMonth {
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// BucketEntries sums ledger entries into calendar buckets, ascending by start.
func BucketEntries(entries []model.PurchaseEntry, f BucketFilter) []model.IncomeBucket {
	buckets := make(map[string]*model.IncomeBucket)

	for _, e := range entries {
		if !f.Since.IsZero() && e.Timestamp.Before(f.Since) {
			continue
		}
		if !f.Until.IsZero() && e.Timestamp.After(f.Until) {
			continue
		}
		if !f.IncludePurchases && e.Source == model.SourcePurchase {
			continue
		}
		if f.Source != "" && e.Source != f.Source {
			continue
		}

		start := BucketStart(e.Timestamp, f.Interval)
		key := dayKey(start)
		b, ok := buckets[key]
		if !ok {
			label := key
			if f.Interval == model.IntervalMonth {
				label = start.Format("2006-01")
			}
			b = &model.IncomeBucket{
				BucketStart: start,
				Label:       label,
				Sources:     make(map[model.Source]int64, len(model.Sources)),
			}
			for _, s := range model.Sources {
				b.Sources[s] = 0
			}
			buckets[key] = b
		}

		b.Total += e.Amount
		b.Sources[e.Source] += e.Amount
		switch {
		case e.Source == model.SourcePurchase:
			b.Purchased += e.Amount
		case e.Source.IsSpending():
			b.Spent += e.Amount
		default:
			b.Earned += e.Amount
		}
	}

	out := make([]model.IncomeBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BucketStart.Before(out[j].BucketStart) })
	return out
}

// SplitIncome totals a ledger into earned, purchased and spent amounts.
func SplitIncome(entries []model.PurchaseEntry) model.IncomeSplit {
	var s model.IncomeSplit
	for _, e := range entries {
		switch {
		case e.Source == model.SourcePurchase:
			s.Purchased += e.Amount
		case e.Source.IsSpending():
			s.Spent += e.Amount
		default:
			s.Earned += e.Amount
		}
		s.Net += e.Amount
	}
	return s
}
