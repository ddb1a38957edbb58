package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/gemledger/internal/config"
	"github.com/theirongolddev/gemledger/internal/model"
)

var ref = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func refDay(n int) time.Time { return ref.AddDate(0, 0, n).Add(10 * time.Hour) }

func trendEconomy() config.Economy {
	econ := testEconomy()
	econ.BannerReference = ref
	econ.BannerPeriodDays = 21
	return econ
}

func TestPeriodFor(t *testing.T) {
	econ := trendEconomy()
	tests := []struct {
		day       time.Time
		wantIndex int
		wantStart time.Time
	}{
		{refDay(0), 0, ref},
		{refDay(20), 0, ref},
		{refDay(21), 1, ref.AddDate(0, 0, 21)},
		{refDay(-1), -1, ref.AddDate(0, 0, -21)},
		{refDay(-21), -1, ref.AddDate(0, 0, -21)},
		{refDay(-22), -2, ref.AddDate(0, 0, -42)},
	}
	for _, tt := range tests {
		idx, start := PeriodFor(tt.day, econ)
		assert.Equal(t, tt.wantIndex, idx, "day %s", tt.day.Format("2006-01-02"))
		assert.Equal(t, tt.wantStart, start, "day %s", tt.day.Format("2006-01-02"))
	}
}

func TestFloorDiv(t *testing.T) {
	assert.Equal(t, 0, floorDiv(0, 21))
	assert.Equal(t, 1, floorDiv(21, 21))
	assert.Equal(t, -1, floorDiv(-1, 21))
	assert.Equal(t, -1, floorDiv(-21, 21))
	assert.Equal(t, -2, floorDiv(-22, 21))
}

func TestBannerPeriods_Contiguous(t *testing.T) {
	econ := trendEconomy()
	ds := model.Dataset{Pulls: pulls(model.BannerCharacter, refDay(-30), 2, 3)}

	points := BannerPeriods(ds, refDay(50), econ)
	require.Len(t, points, 5)
	assert.Equal(t, -2, points[0].Index)
	assert.Equal(t, 2, points[len(points)-1].Index)

	for i := 1; i < len(points); i++ {
		assert.Equal(t, points[i-1].PeriodEnd.AddDate(0, 0, 1), points[i].PeriodStart)
		assert.False(t, points[i-1].IsCurrent)
		assert.Equal(t, 21, points[i-1].Days)
	}

	last := points[len(points)-1]
	assert.True(t, last.IsCurrent)
	assert.Equal(t, DayOf(refDay(50)), last.PeriodEnd)
	assert.Equal(t, 9, last.Days)

	assert.Equal(t, 2, points[0].Pulls)
	assert.InDelta(t, 320.0, points[0].TotalIncome, 1e-9)
	assert.False(t, points[0].IsGroundTruth)
}

func TestBannerPeriods_GroundTruth(t *testing.T) {
	econ := trendEconomy()
	ds := model.Dataset{
		Snapshots: []model.Snapshot{
			snap("before", refDay(-1), 1000, 0),
			snap("after", refDay(21), 4000, 0),
		},
		Pulls: pulls(model.BannerCharacter, refDay(10), 5, 3),
	}

	points := BannerPeriods(ds, refDay(25), econ)
	require.Len(t, points, 3)

	p := points[1]
	assert.Equal(t, 0, p.Index)
	assert.True(t, p.IsGroundTruth)
	assert.Equal(t, 5, p.Pulls)
	assert.InDelta(t, 3800.0/22.0, p.DailyRate, 1e-9)
	assert.InDelta(t, 3800.0/22.0*21, p.TotalIncome, 1e-9)

	assert.False(t, points[0].IsGroundTruth)
	assert.False(t, points[2].IsGroundTruth)
	assert.True(t, points[2].IsCurrent)
}

func TestBannerPeriods_Empty(t *testing.T) {
	assert.Nil(t, BannerPeriods(model.Dataset{}, refDay(0), trendEconomy()))
}

func TestSummarizeTrend(t *testing.T) {
	rates := []float64{10, 20, 30, 40}
	points := make([]model.PeriodTrendPoint, len(rates))
	for i, r := range rates {
		points[i] = model.PeriodTrendPoint{Index: i, DailyRate: r}
	}

	s := SummarizeTrend(points)
	assert.Equal(t, 4, s.Periods)
	assert.InDelta(t, 25.0, s.AverageRate, 1e-9)
	assert.InDelta(t, 15.0, s.EarlyAverage, 1e-9)
	assert.InDelta(t, 35.0, s.RecentAverage, 1e-9)
	assert.InDelta(t, 133.333333, s.ChangePercent, 1e-4)

	short := SummarizeTrend(points[:3])
	assert.InDelta(t, 20.0, short.AverageRate, 1e-9)
	assert.Zero(t, short.ChangePercent)
}
