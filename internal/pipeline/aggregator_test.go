package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/gemledger/internal/model"
)

func TestAggregateBanners(t *testing.T) {
	econ := testEconomy()
	all := concatPulls(
		pulls(model.BannerCharacter, day(0), 10, 3),
		pulls(model.BannerCharacter, day(1), 1, 5),
		pulls(model.BannerCharacter, day(2), 4, 4),
		pulls(model.BannerStandard, day(2), 6, 3),
	)

	stats := AggregateBanners(all, time.Time{}, time.Time{}, econ)
	require.Len(t, stats, 2)

	char := stats[0]
	assert.Equal(t, model.BannerCharacter, char.Banner)
	assert.True(t, char.Costing)
	assert.Equal(t, 15, char.Pulls)
	assert.Equal(t, 1, char.FiveStars)
	assert.Equal(t, 4, char.FourStars)
	assert.Equal(t, int64(15*160), char.CurrencySpent)
	assert.Equal(t, 4, char.PityCount)
	assert.InDelta(t, 15.0, char.PullsPerFiveStar, 1e-9)

	std := stats[1]
	assert.Equal(t, model.BannerStandard, std.Banner)
	assert.False(t, std.Costing)
	assert.Zero(t, std.CurrencySpent)
	assert.Equal(t, 6, std.PityCount)
}

func TestAggregateBanners_WindowKeepsPity(t *testing.T) {
	econ := testEconomy()
	all := concatPulls(
		pulls(model.BannerWeapon, day(0), 30, 3),
		pulls(model.BannerWeapon, day(5), 2, 3),
	)
	stats := AggregateBanners(all, DayOf(day(5)), time.Time{}, econ)
	require.Len(t, stats, 1)
	assert.Equal(t, 2, stats[0].Pulls)
	assert.Equal(t, 32, stats[0].PityCount)
}

func TestAggregatePullDays_GapFilled(t *testing.T) {
	econ := testEconomy()
	all := concatPulls(
		pulls(model.BannerCharacter, day(1), 2, 3),
		pulls(model.BannerCharacter, day(3), 1, 3),
		pulls(model.BannerStandard, day(2), 5, 3),
	)
	days := AggregatePullDays(all, DayOf(day(0)), at(4, 12), econ)
	require.Len(t, days, 5)
	got := make([]int, len(days))
	for i, d := range days {
		got[i] = d.Pulls
	}
	assert.Equal(t, []int{0, 2, 0, 1, 0}, got)
	assert.Equal(t, int64(320), days[1].CurrencySpent)
}

func TestAggregatePullDays_MidnightUntilIsExclusive(t *testing.T) {
	econ := testEconomy()
	all := pulls(model.BannerCharacter, day(1), 2, 3)

	days := AggregatePullDays(all, DayOf(day(0)), DayOf(day(3)), econ)
	require.Len(t, days, 3)
	assert.Equal(t, DayOf(day(2)), days[len(days)-1].Day)

	tokyo := time.FixedZone("JST", 9*3600)
	until := time.Date(2025, 6, 4, 0, 0, 0, 0, tokyo)
	days = AggregatePullDays(all, DayOf(day(0)), until, econ)
	require.Len(t, days, 3, "local midnight in a non-UTC zone")
}

func TestWishSpending_SplitsByCostingBanner(t *testing.T) {
	econ := testEconomy()
	all := concatPulls(
		pulls(model.BannerCharacter, day(1), 3, 3),
		pulls(model.BannerWeapon, day(2), 2, 3),
		pulls(model.BannerStandard, day(2), 4, 3),
		pulls(model.BannerStandard, day(0), 1, 3),
	)

	fs := WishSpending(all, at(0, 23), econ)
	assert.Equal(t, 5, fs.Intertwined)
	assert.Equal(t, 4, fs.Acquaint)
	assert.Equal(t, int64(5*160), fs.CurrencyEquivalent)

	fs = WishSpending(all, time.Time{}, econ)
	assert.Equal(t, 5, fs.Intertwined)
	assert.Equal(t, 5, fs.Acquaint)
}
