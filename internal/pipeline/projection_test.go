package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/gemledger/internal/model"
)

func TestProject_Linear(t *testing.T) {
	now := at(10, 9)
	points := Project(1000, 1200, 50, 3, now)
	require.Len(t, points, 4)
	for i, p := range points {
		assert.Equal(t, DayOf(day(10+i)), p.Day)
		assert.Equal(t, int64(1000+50*i), p.Projected)
		assert.Equal(t, int64(1200+50*i), p.ProjectedWithPurchases)
		assert.Equal(t, i == 0, p.IsToday)
	}
}

func TestProject_RoundsAndClamps(t *testing.T) {
	points := Project(100, 100, -60, 3, at(0, 9))
	got := []int64{points[0].Projected, points[1].Projected, points[2].Projected, points[3].Projected}
	assert.Equal(t, []int64{100, 40, 0, 0}, got)

	points = Project(0, 0, 0.5, 1, at(0, 9))
	assert.Equal(t, int64(1), points[1].Projected, "0.5 rounds half away from zero")
}

func TestProject_ZeroRateIsFlat(t *testing.T) {
	for _, p := range Project(777, 900, 0, 30, at(0, 9)) {
		assert.Equal(t, int64(777), p.Projected)
		assert.Equal(t, int64(900), p.ProjectedWithPurchases)
	}
}

func TestBuildChart(t *testing.T) {
	now := at(10, 18)
	history := BuildHistory(threeSnapshotDataset(), 90, now, testEconomy())
	chart := BuildChart(history, 100, 5, now)

	require.Len(t, chart, len(history)+5)
	for i, c := range chart[:len(history)] {
		assert.True(t, c.HasHistory())
		assert.False(t, c.HasProjection())
		assert.Equal(t, history[i].Balance, c.Historical)
	}

	last := chart[len(chart)-1]
	assert.True(t, last.HasProjection())
	assert.False(t, last.HasHistory())
	assert.Equal(t, DayOf(day(15)), last.Day)
	assert.Equal(t, int64(1840+500), last.Projected)
	assert.Equal(t, int64(1940+500), last.ProjectedWithPurchases)
	assert.Equal(t, 4, last.CumulativePulls)
	assert.Equal(t, int64(400), last.CumulativePurchases)

	for i := 1; i < len(chart); i++ {
		assert.Equal(t, chart[i-1].Day.AddDate(0, 0, 1), chart[i].Day)
	}
}

func TestBuildOutlook(t *testing.T) {
	econ := testEconomy()
	now := at(10, 18)
	ds := threeSnapshotDataset()
	history := BuildHistory(ds, 90, now, econ)
	rate := model.RateEstimate{DailyRate: 100, Source: model.RateFromSnapshots}

	o := BuildOutlook(ds, history, rate, 30, econ)
	assert.True(t, o.HasSnapshot)
	assert.Equal(t, int64(1840), o.Balance)
	assert.Equal(t, int64(2000), o.Primogems)
	assert.Equal(t, int64(11), o.AvailablePulls)
	assert.Equal(t, int64(4840), o.ProjectedBalance)
	assert.Equal(t, int64(30), o.ProjectedPulls)
	assert.Equal(t, 126, o.DaysToPity)
	assert.InDelta(t, 12.5, o.TotalWishes, 1e-9)
}

func TestBuildOutlook_ZeroRate(t *testing.T) {
	o := BuildOutlook(model.Dataset{}, nil, model.RateEstimate{Source: model.RateNone}, 30, testEconomy())
	assert.False(t, o.HasSnapshot)
	assert.Equal(t, -1, o.DaysToPity)
	assert.Zero(t, o.ProjectedBalance)
}
