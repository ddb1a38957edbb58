package pipeline

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/gemledger/internal/model"
	"github.com/theirongolddev/gemledger/internal/source"
)

// syntheticDataset builds roughly a year of daily activity.
func syntheticDataset(days int) model.Dataset {
	r := rand.New(rand.NewSource(1))
	var ds model.Dataset
	for d := 0; d < days; d++ {
		if d%7 == 0 {
			ds.Snapshots = append(ds.Snapshots, snap(fmt.Sprintf("s%d", d), at(d, 20), int64(r.Intn(30000)), int64(r.Intn(20))))
		}
		for i := 0; i < r.Intn(12); i++ {
			banner := model.BannerCategories[r.Intn(len(model.BannerCategories))]
			ds.Pulls = append(ds.Pulls, model.PullRecord{
				ID:        fmt.Sprintf("p%d-%d", d, i),
				Banner:    banner,
				Timestamp: at(d, r.Intn(24)),
				Rarity:    3 + r.Intn(3),
			})
		}
		ds.Purchases = append(ds.Purchases, entry(fmt.Sprintf("e%d", d), at(d, 5), 60, model.SourceDailyCommission))
	}
	return ds
}

func writeSyntheticExport(b *testing.B, pulls int) source.DiscoveredFile {
	b.Helper()
	var sb strings.Builder
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < pulls; i++ {
		ts := start.Add(time.Duration(i) * time.Minute).Format(time.RFC3339)
		fmt.Fprintf(&sb, `{"kind":"pull","id":"p%d","banner":"character","timestamp":%q,"rarity":3}`+"\n", i, ts)
	}
	path := filepath.Join(b.TempDir(), "bench.jsonl")
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		b.Fatal(err)
	}
	return source.DiscoveredFile{Path: path, Format: source.FormatJSONL}
}

func BenchmarkBuildHistory(b *testing.B) {
	ds := syntheticDataset(365)
	econ := testEconomy()
	now := at(365, 12)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = BuildHistory(ds, 365, now, econ)
	}
}

func BenchmarkEstimateRate(b *testing.B) {
	ds := syntheticDataset(365)
	econ := testEconomy()
	now := at(365, 12)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = EstimateRate(ds, 14, now, econ)
	}
}

func BenchmarkBuildTransactionLog(b *testing.B) {
	ds := syntheticDataset(365)
	econ := testEconomy()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = BuildTransactionLog(ds, econ)
	}
}

func BenchmarkParseFile(b *testing.B) {
	df := writeSyntheticExport(b, 5000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		result := source.ParseFile(df)
		if result.Err != nil {
			b.Fatal(result.Err)
		}
	}
}
