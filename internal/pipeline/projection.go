package pipeline

import (
	"math"
	"time"

	"github.com/theirongolddev/gemledger/internal/config"
	"github.com/theirongolddev/gemledger/internal/model"
)

// Project extends both balances linearly at rate for days days, starting
// with today at i = 0. Results are clamped at zero.
func Project(start, startWithPurchases int64, rate float64, days int, now time.Time) []model.ProjectionPoint {
	if days < 0 {
		days = 0
	}
	today := DayOf(now)
	out := make([]model.ProjectionPoint, 0, days+1)
	for i := 0; i <= days; i++ {
		out = append(out, model.ProjectionPoint{
			Day:                    today.AddDate(0, 0, i),
			Projected:              projectAt(start, rate, i),
			ProjectedWithPurchases: projectAt(startWithPurchases, rate, i),
			IsToday:                i == 0,
		})
	}
	return out
}

func projectAt(start int64, rate float64, i int) int64 {
	v := math.Round(float64(start) + rate*float64(i))
	if v < 0 {
		return 0
	}
	return int64(v)
}

// BuildChart merges reconstructed history with a projection that begins the
// day after today. Projected days carry the latest cumulative counters.
func BuildChart(history []model.HistoricalPoint, rate float64, projectionDays int, now time.Time) []model.ChartPoint {
	out := make([]model.ChartPoint, 0, len(history)+projectionDays)
	for _, h := range history {
		out = append(out, model.ChartPoint{
			Day:                     h.Day,
			Kind:                    model.ChartHistorical,
			Historical:              h.Balance,
			HistoricalWithPurchases: h.BalanceWithPurchases,
			IsSnapshot:              h.IsSnapshot,
			IsToday:                 h.IsToday,
			CumulativePulls:         h.CumulativePulls,
			CumulativePurchases:     h.CumulativePurchases,
		})
	}

	var latest model.HistoricalPoint
	if len(history) > 0 {
		latest = history[len(history)-1]
	}

	proj := Project(latest.Balance, latest.BalanceWithPurchases, rate, projectionDays, now)
	for _, p := range proj {
		if p.IsToday {
			continue
		}
		out = append(out, model.ChartPoint{
			Day:                    p.Day,
			Kind:                   model.ChartProjected,
			Projected:              p.Projected,
			ProjectedWithPurchases: p.ProjectedWithPurchases,
			CumulativePulls:        latest.CumulativePulls,
			CumulativePurchases:    latest.CumulativePurchases,
		})
	}
	return out
}

// BuildOutlook derives the headline numbers from a reconstructed history
// and a rate estimate.
func BuildOutlook(ds model.Dataset, history []model.HistoricalPoint, rate model.RateEstimate, projectionDays int, econ config.Economy) model.Outlook {
	o := model.Outlook{
		Rate:           rate,
		ProjectionDays: projectionDays,
		DaysToPity:     -1,
	}
	if len(ds.Snapshots) > 0 {
		snaps := sortedSnapshots(ds.Snapshots)
		latest := snaps[len(snaps)-1]
		o.HasSnapshot = true
		o.Primogems = latest.Primogems
		o.Intertwined = latest.Intertwined
		o.TotalWishes = AvailableWishes(latest, econ)
	}
	if len(history) > 0 {
		o.Balance = history[len(history)-1].Balance
	}
	if econ.CurrencyPerPull > 0 {
		o.AvailablePulls = o.Balance / econ.CurrencyPerPull
	}

	o.ProjectedBalance = projectAt(o.Balance, rate.DailyRate, projectionDays)
	if econ.CurrencyPerPull > 0 {
		o.ProjectedPulls = o.ProjectedBalance / econ.CurrencyPerPull
	}

	need := int64(econ.PityPulls)*econ.CurrencyPerPull - o.Balance
	switch {
	case need <= 0:
		o.DaysToPity = 0
	case rate.DailyRate > 0:
		o.DaysToPity = int(math.Ceil(float64(need) / rate.DailyRate))
	}
	return o
}
