package model

import "time"

// HistoricalPoint holds the reconstructed balance for a single calendar day.
type HistoricalPoint struct {
	Day                  time.Time
	Balance              int64
	BalanceWithPurchases int64
	IsSnapshot           bool
	IsToday              bool
	CumulativePulls      int
	CumulativePurchases  int64
}

// ProjectionPoint holds the projected balance i days after the start.
type ProjectionPoint struct {
	Day                    time.Time
	Projected              int64
	ProjectedWithPurchases int64
	IsToday                bool
}

// ChartPoint merges history and projection for one day.
type ChartPoint struct {
	Day  time.Time
	Kind ChartKind

	Historical              int64
	HistoricalWithPurchases int64
	Projected               int64
	ProjectedWithPurchases  int64

	IsSnapshot          bool
	IsToday             bool
	CumulativePulls     int
	CumulativePurchases int64
}

// ChartKind tells whether a chart point carries history, projection, or both.
type ChartKind int

// Chart point kinds.
const (
	ChartHistorical ChartKind = 1 << iota
	ChartProjected
)

// HasHistory reports whether the point carries a reconstructed balance.
func (c ChartPoint) HasHistory() bool { return c.Kind&ChartHistorical != 0 }

// HasProjection reports whether the point carries a projected balance.
func (c ChartPoint) HasProjection() bool { return c.Kind&ChartProjected != 0 }

// RateSource records where a daily rate estimate came from.
type RateSource string

// Rate provenance tags.
const (
	RateFromSnapshots RateSource = "snapshots"
	RateFromPulls     RateSource = "pulls"
	RateManual        RateSource = "manual"
	RateNone          RateSource = "none"
)

// RateEstimate is a daily income rate and its provenance.
type RateEstimate struct {
	DailyRate float64
	Source    RateSource
	// StartDay and EndDay bound the snapshot span used, zero otherwise.
	StartDay time.Time
	EndDay   time.Time
	Income   int64
}

// PeriodTrendPoint holds income for one fixed-length banner period.
type PeriodTrendPoint struct {
	Index         int
	PeriodStart   time.Time
	PeriodEnd     time.Time
	DailyRate     float64
	TotalIncome   float64
	Days          int
	Pulls         int
	IsGroundTruth bool
	IsCurrent     bool
}

// TrendSummary compares early and recent banner periods.
type TrendSummary struct {
	AverageRate   float64
	EarlyAverage  float64
	RecentAverage float64
	ChangePercent float64
	Periods       int
}

// BucketInterval selects the calendar unit for ledger buckets.
type BucketInterval string

// Supported bucket intervals.
const (
	IntervalWeek  BucketInterval = "week"
	IntervalMonth BucketInterval = "month"
)

// IncomeBucket sums ledger entries for one calendar week or month.
type IncomeBucket struct {
	BucketStart time.Time
	Label       string
	Total       int64
	Earned      int64
	Purchased   int64
	Spent       int64
	Sources     map[Source]int64
}

// IncomeSplit is the earned/purchased/spent breakdown of a ledger.
type IncomeSplit struct {
	Earned    int64
	Purchased int64
	Spent     int64
	Net       int64
}

// FateSpending counts pulls by the fate type they consumed.
type FateSpending struct {
	Intertwined int
	Acquaint    int
	// CurrencyEquivalent is Intertwined pulls expressed in primogems.
	CurrencyEquivalent int64
}

// BannerStats holds pull statistics for one banner category.
type BannerStats struct {
	Banner           BannerCategory
	Costing          bool
	Pulls            int
	FiveStars        int
	FourStars        int
	CurrencySpent    int64
	PityCount        int // pulls since the last 5-star
	PullsPerFiveStar float64
}

// PullDay holds costing pull activity for a single calendar day.
type PullDay struct {
	Day           time.Time
	Pulls         int
	CurrencySpent int64
}
