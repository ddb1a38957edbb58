package pipeline

import (
	"fmt"
	"time"

	"github.com/theirongolddev/gemledger/internal/config"
	"github.com/theirongolddev/gemledger/internal/model"
)

var base = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

// day returns base shifted by n days, at 10:00 UTC.
func day(n int) time.Time { return base.AddDate(0, 0, n) }

// at returns day n at the given hour, UTC.
func at(n, hour int) time.Time {
	d := DayOf(day(n))
	return d.Add(time.Duration(hour) * time.Hour)
}

func snap(id string, ts time.Time, primogems, intertwined int64) model.Snapshot {
	return model.Snapshot{ID: id, Timestamp: ts, Primogems: primogems, Intertwined: intertwined}
}

func pulls(banner model.BannerCategory, ts time.Time, n int, rarity int) []model.PullRecord {
	out := make([]model.PullRecord, n)
	for i := range out {
		out[i] = model.PullRecord{
			ID:        fmt.Sprintf("%s-%d-%d", banner, ts.Unix(), i),
			Banner:    banner,
			Timestamp: ts.Add(time.Duration(i) * time.Minute),
			Rarity:    rarity,
		}
	}
	return out
}

func entry(id string, ts time.Time, amount int64, src model.Source) model.PurchaseEntry {
	return model.PurchaseEntry{ID: id, Timestamp: ts, Amount: amount, Source: src}
}

func concatPulls(groups ...[]model.PullRecord) []model.PullRecord {
	var out []model.PullRecord
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// threeSnapshotDataset has snapshots on days 0, 4 and 8 with pulls and
// ledger entries scattered between them. Today is day 10.
func threeSnapshotDataset() model.Dataset {
	return model.Dataset{
		Snapshots: []model.Snapshot{
			snap("s8", day(8), 2000, 0),
			snap("s0", day(0), 1000, 0),
			snap("s4", day(4), 500, 2),
		},
		Pulls: concatPulls(
			pulls(model.BannerCharacter, day(2), 1, 3),
			pulls(model.BannerStandard, day(2), 3, 3),
			pulls(model.BannerWeapon, day(6), 2, 4),
			pulls(model.BannerChronicled, day(9), 1, 5),
		),
		Purchases: []model.PurchaseEntry{
			entry("e6", day(6), 300, model.SourcePurchase),
			entry("e9", day(9), 100, model.SourceEvent),
		},
	}
}

func testEconomy() config.Economy {
	return config.DefaultEconomy()
}
