package pipeline

import (
	"time"

	"github.com/theirongolddev/gemledger/internal/config"
	"github.com/theirongolddev/gemledger/internal/model"
)

// ReportOptions holds the window lengths used to build a Report.
type ReportOptions struct {
	LookbackDays   int
	ProjectionDays int
	RateWindowDays int
}

// Report bundles every derived view of a dataset at one instant.
type Report struct {
	GeneratedAt time.Time
	Outlook     model.Outlook
	Rate        model.RateEstimate
	History     []model.HistoricalPoint
	Chart       []model.ChartPoint
	Periods     []model.PeriodTrendPoint
	Trend       model.TrendSummary
	Monthly     []model.IncomeBucket
	Split       model.IncomeSplit
	Spending    model.FateSpending
	Banners     []model.BannerStats
	Log         []model.LogEntry
}

// BuildReport runs the whole engine over ds. Wish spending and banner
// statistics cover the lookback window.
func BuildReport(ds model.Dataset, opts ReportOptions, now time.Time, econ config.Economy) Report {
	since := DayOf(now).AddDate(0, 0, -opts.LookbackDays)

	history := BuildHistory(ds, opts.LookbackDays, now, econ)
	rate := EstimateRate(ds, opts.RateWindowDays, now, econ)
	periods := BannerPeriods(ds, now, econ)

	return Report{
		GeneratedAt: now,
		Outlook:     BuildOutlook(ds, history, rate, opts.ProjectionDays, econ),
		Rate:        rate,
		History:     history,
		Chart:       BuildChart(history, rate.DailyRate, opts.ProjectionDays, now),
		Periods:     periods,
		Trend:       SummarizeTrend(periods),
		Monthly: BucketEntries(ds.Purchases, BucketFilter{
			Interval:         model.IntervalMonth,
			IncludePurchases: true,
		}),
		Split:    SplitIncome(ds.Purchases),
		Spending: WishSpending(ds.Pulls, since, econ),
		Banners:  AggregateBanners(ds.Pulls, since, time.Time{}, econ),
		Log:      BuildTransactionLog(ds, econ),
	}
}
