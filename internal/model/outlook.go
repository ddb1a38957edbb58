package model

// Outlook holds the headline balance and forecast numbers.
type Outlook struct {
	Balance          int64
	Primogems        int64
	Intertwined      int64
	AvailablePulls   int64
	TotalWishes      float64
	Rate             RateEstimate
	ProjectionDays   int
	ProjectedBalance int64
	ProjectedPulls   int64
	DaysToPity       int // -1 when the rate is zero
	HasSnapshot      bool
}
