package pipeline

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/gemledger/internal/model"
)

func balances(points []model.HistoricalPoint) (plain, with []int64) {
	for _, p := range points {
		plain = append(plain, p.Balance)
		with = append(with, p.BalanceWithPurchases)
	}
	return plain, with
}

func TestBuildHistory_ThreeSnapshots(t *testing.T) {
	econ := testEconomy()
	now := at(10, 18)

	points := BuildHistory(threeSnapshotDataset(), 90, now, econ)
	require.Len(t, points, 11)

	plain, with := balances(points)
	assert.Equal(t, []int64{1000, 980, 820, 820, 820, 2320, 2000, 2000, 2000, 1840, 1840}, plain)
	assert.Equal(t, []int64{1000, 980, 820, 820, 820, 2020, 2000, 2000, 2000, 1940, 1940}, with)

	for i, p := range points {
		assert.Equal(t, DayOf(day(i)), p.Day, "day %d", i)
		assert.Equal(t, i == 0 || i == 4 || i == 8, p.IsSnapshot, "IsSnapshot day %d", i)
		assert.Equal(t, i == 10, p.IsToday, "IsToday day %d", i)
	}

	wantPulls := []int{0, 0, 1, 1, 1, 1, 3, 3, 3, 4, 4}
	wantPurchases := []int64{0, 0, 0, 0, 0, 0, 300, 300, 300, 400, 400}
	for i, p := range points {
		assert.Equal(t, wantPulls[i], p.CumulativePulls, "CumulativePulls day %d", i)
		assert.Equal(t, wantPurchases[i], p.CumulativePurchases, "CumulativePurchases day %d", i)
	}
}

func TestBuildHistory_NoSnapshots(t *testing.T) {
	ds := model.Dataset{Pulls: pulls(model.BannerCharacter, day(1), 3, 3)}
	assert.Nil(t, BuildHistory(ds, 90, at(5, 12), testEconomy()))
}

// Single snapshot on day 5, two costing pulls on day 7.
func TestBuildHistory_SingleSnapshotForward(t *testing.T) {
	econ := testEconomy()
	ds := model.Dataset{
		Snapshots: []model.Snapshot{snap("s5", day(5), 3000, 0)},
		Pulls:     pulls(model.BannerCharacter, day(7), 2, 3),
	}

	points := BuildHistory(ds, 90, at(7, 20), econ)
	require.Len(t, points, 3)
	plain, with := balances(points)
	assert.Equal(t, []int64{3000, 3000, 2680}, plain)
	assert.Equal(t, []int64{3000, 3000, 2680}, with)
	assert.True(t, points[0].IsSnapshot)
	assert.True(t, points[2].IsToday)

	idx := newDayIndex(ds, econ)
	back := backwardPass(idx, ds.Snapshots[0], DayOf(day(5)), DayOf(day(0)), econ)
	require.Len(t, back, 5)
	for i, db := range back {
		assert.Equal(t, DayOf(day(i)), db.day)
		assert.Equal(t, int64(3000), db.bal.plain)
		assert.Equal(t, int64(3000), db.bal.withPurchases)
	}
}

func TestBuildHistory_LookbackTrimsStart(t *testing.T) {
	points := BuildHistory(threeSnapshotDataset(), 3, at(10, 18), testEconomy())
	require.Len(t, points, 4)
	assert.Equal(t, DayOf(day(7)), points[0].Day)
	plain, _ := balances(points)
	assert.Equal(t, []int64{2000, 2000, 1840, 1840}, plain)
}

func TestBuildHistory_AnchorOlderThanLookback(t *testing.T) {
	ds := model.Dataset{
		Snapshots: []model.Snapshot{snap("s0", day(0), 5000, 0)},
		Pulls:     pulls(model.BannerCharacter, day(2), 10, 3),
	}
	points := BuildHistory(ds, 5, at(10, 12), testEconomy())
	require.Len(t, points, 6)
	assert.Equal(t, DayOf(day(5)), points[0].Day)
	for _, p := range points {
		assert.Equal(t, int64(3400), p.Balance)
	}
}

func TestBuildHistory_ClampsAtZero(t *testing.T) {
	ds := model.Dataset{
		Snapshots: []model.Snapshot{snap("s0", day(0), 100, 0)},
		Pulls:     pulls(model.BannerWeapon, day(1), 3, 3),
	}
	points := BuildHistory(ds, 90, at(2, 12), testEconomy())
	require.Len(t, points, 3)
	assert.Equal(t, int64(100), points[0].Balance)
	assert.Equal(t, int64(0), points[1].Balance)
	assert.Equal(t, int64(0), points[2].Balance)
}

func TestBuildHistory_SameDaySnapshotsLastWins(t *testing.T) {
	ds := model.Dataset{
		Snapshots: []model.Snapshot{
			snap("late", at(3, 18), 700, 0),
			snap("early", at(3, 9), 500, 0),
		},
	}
	points := BuildHistory(ds, 90, at(4, 12), testEconomy())
	require.Len(t, points, 2)
	assert.Equal(t, int64(700), points[0].Balance)
	assert.True(t, points[0].IsSnapshot)
}

func TestBuildHistory_IgnoresNonCostingPulls(t *testing.T) {
	econ := testEconomy()
	ds := model.Dataset{
		Snapshots: []model.Snapshot{snap("s0", day(0), 1600, 0)},
		Pulls: concatPulls(
			pulls(model.BannerStandard, day(1), 10, 3),
			pulls(model.BannerBeginner, day(1), 10, 3),
		),
	}
	for _, p := range BuildHistory(ds, 90, at(3, 12), econ) {
		assert.Equal(t, int64(1600), p.Balance)
		assert.Equal(t, 0, p.CumulativePulls)
	}
}

func TestBuildHistory_RecordDayUsesOwnOffset(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	// 00:30 on June 3 in Tokyo is June 2 in UTC; the pull belongs to June 3.
	ds := model.Dataset{
		Snapshots: []model.Snapshot{snap("s0", day(0), 1000, 0)},
		Pulls: []model.PullRecord{{
			ID: "jst", Banner: model.BannerCharacter, Rarity: 3,
			Timestamp: time.Date(2025, 6, 3, 0, 30, 0, 0, tokyo),
		}},
	}
	points := BuildHistory(ds, 90, at(3, 12), testEconomy())
	require.Len(t, points, 4)
	assert.Equal(t, int64(1000), points[1].Balance) // June 2
	assert.Equal(t, int64(840), points[2].Balance)  // June 3
}

// A snapshot dated after today never extends the series past today.
func TestBuildHistory_IgnoresFutureSnapshots(t *testing.T) {
	econ := testEconomy()
	now := at(10, 12)
	ds := model.Dataset{
		Snapshots: []model.Snapshot{
			snap("s0", day(0), 1000, 0),
			snap("s12", day(12), 5000, 0),
		},
		Pulls: pulls(model.BannerCharacter, day(3), 1, 3),
	}

	points := BuildHistory(ds, 90, now, econ)
	require.Len(t, points, 11)
	last := points[len(points)-1]
	assert.Equal(t, DayOf(now), last.Day)
	assert.True(t, last.IsToday)
	assert.Equal(t, int64(840), last.Balance)
	for _, p := range points {
		assert.False(t, p.Day.After(DayOf(now)), "day %s is after today", dayKey(p.Day))
	}

	chart := BuildChart(points, 50, 5, now)
	seen := make(map[string]int)
	for _, c := range chart {
		seen[dayKey(c.Day)]++
	}
	for d, n := range seen {
		assert.Equal(t, 1, n, "chart day %s", d)
	}
	assert.Len(t, chart, 11+5)
}

func TestBuildHistory_OnlyFutureSnapshots(t *testing.T) {
	ds := model.Dataset{Snapshots: []model.Snapshot{snap("s12", day(12), 5000, 0)}}
	assert.Nil(t, BuildHistory(ds, 90, at(10, 12), testEconomy()))
}

// The earliest instant is not always the earliest local day: the +14:00
// snapshot happens first but lands on June 6, the -10:00 one on June 5.
func TestBuildHistory_StartsAtOldestSnapshotDay(t *testing.T) {
	west := time.FixedZone("UTC-10", -10*3600)
	east := time.FixedZone("UTC+14", 14*3600)
	ds := model.Dataset{
		Snapshots: []model.Snapshot{
			snap("west", time.Date(2025, 6, 5, 23, 0, 0, 0, west), 700, 0),
			snap("east", time.Date(2025, 6, 6, 1, 0, 0, 0, east), 900, 0),
		},
	}

	points := BuildHistory(ds, 90, at(7, 12), testEconomy())
	require.Len(t, points, 4)
	assert.Equal(t, DayOf(day(4)), points[0].Day)
	assert.True(t, points[0].IsSnapshot)
	assert.Equal(t, int64(700), points[0].Balance)
	assert.Equal(t, int64(900), points[1].Balance)
	assert.True(t, points[3].IsToday)
}

func randomDataset(r *rand.Rand) model.Dataset {
	var ds model.Dataset
	banners := model.BannerCategories
	sources := model.Sources
	for i := 0; i < 1+r.Intn(6); i++ {
		ds.Snapshots = append(ds.Snapshots, snap(
			string(rune('a'+i)),
			at(r.Intn(40), r.Intn(24)),
			int64(r.Intn(20000)),
			int64(r.Intn(10)),
		))
	}
	for i := 0; i < r.Intn(60); i++ {
		ds.Pulls = append(ds.Pulls, model.PullRecord{
			ID:        string(rune('A' + i)),
			Banner:    banners[r.Intn(len(banners))],
			Timestamp: at(r.Intn(45), r.Intn(24)),
			Rarity:    3 + r.Intn(3),
		})
	}
	for i := 0; i < r.Intn(15); i++ {
		amount := int64(r.Intn(2000) - 500)
		if amount == 0 {
			amount = 1
		}
		ds.Purchases = append(ds.Purchases, entry(
			string(rune('0'+i)), at(r.Intn(45), r.Intn(24)), amount, sources[r.Intn(len(sources))],
		))
	}
	return ds
}

func TestBuildHistory_Invariants(t *testing.T) {
	econ := testEconomy()
	r := rand.New(rand.NewSource(7))

	for iter := 0; iter < 200; iter++ {
		ds := randomDataset(r)
		now := at(45, 12)
		lookback := 10 + r.Intn(60)

		points := BuildHistory(ds, lookback, now, econ)
		again := BuildHistory(ds, lookback, now, econ)
		require.Equal(t, points, again, "iteration %d: not idempotent", iter)

		winners := make(map[string]model.Snapshot)
		for _, s := range sortedSnapshots(ds.Snapshots) {
			winners[dayKey(DayOf(s.Timestamp))] = s
		}

		for i, p := range points {
			require.GreaterOrEqual(t, p.Balance, int64(0))
			require.GreaterOrEqual(t, p.BalanceWithPurchases, int64(0))
			if p.IsSnapshot {
				want := SnapshotTotal(winners[dayKey(p.Day)], econ)
				require.Equal(t, want, p.Balance, "iteration %d day %s", iter, dayKey(p.Day))
				require.Equal(t, want, p.BalanceWithPurchases, "iteration %d day %s", iter, dayKey(p.Day))
			}
			if i > 0 {
				require.Equal(t, points[i-1].Day.AddDate(0, 0, 1), p.Day, "days must be contiguous")
				require.GreaterOrEqual(t, p.CumulativePulls, points[i-1].CumulativePulls)
				require.GreaterOrEqual(t, p.CumulativePurchases, points[i-1].CumulativePurchases)
			}
		}
		if len(points) > 0 {
			require.True(t, points[len(points)-1].IsToday)
		}
	}
}
