// Package pipeline holds the ledger engine: history reconstruction, rate
// estimation, projection, trend bucketing and export import.
package pipeline

import (
	"sort"
	"time"

	"github.com/theirongolddev/gemledger/internal/config"
	"github.com/theirongolddev/gemledger/internal/model"
)

// FilterPullsByTime returns pulls within [since, until). Zero bounds are open.
func FilterPullsByTime(pulls []model.PullRecord, since, until time.Time) []model.PullRecord {
	var out []model.PullRecord
	for _, p := range pulls {
		if !since.IsZero() && p.Timestamp.Before(since) {
			continue
		}
		if !until.IsZero() && !p.Timestamp.Before(until) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// AggregateBanners computes per-banner pull statistics within the time range.
// Pity counters run over the full history so a window does not reset them.
func AggregateBanners(pulls []model.PullRecord, since, until time.Time, econ config.Economy) []model.BannerStats {
	pity := currentPity(pulls)
	window := FilterPullsByTime(pulls, since, until)

	byBanner := make(map[model.BannerCategory]*model.BannerStats)
	for _, p := range window {
		bs, ok := byBanner[p.Banner]
		if !ok {
			bs = &model.BannerStats{Banner: p.Banner}
			byBanner[p.Banner] = bs
		}
		bs.Pulls++
		switch p.Rarity {
		case 5:
			bs.FiveStars++
		case 4:
			bs.FourStars++
		}
	}
	for _, p := range CostingPulls(window, econ) {
		bs := byBanner[p.Banner]
		bs.Costing = true
		bs.CurrencySpent += econ.CurrencyPerPull
	}

	out := make([]model.BannerStats, 0, len(byBanner))
	for _, cat := range model.BannerCategories {
		bs, ok := byBanner[cat]
		if !ok {
			continue
		}
		bs.PityCount = pity[cat]
		if bs.FiveStars > 0 {
			bs.PullsPerFiveStar = float64(bs.Pulls) / float64(bs.FiveStars)
		}
		out = append(out, *bs)
	}
	return out
}

// currentPity counts pulls since the last 5-star on each banner.
func currentPity(pulls []model.PullRecord) map[model.BannerCategory]int {
	sorted := sortedPulls(pulls)
	pity := make(map[model.BannerCategory]int)
	for _, p := range sorted {
		if p.Rarity == 5 {
			pity[p.Banner] = 0
			continue
		}
		pity[p.Banner]++
	}
	return pity
}

// AggregatePullDays counts costing pulls per calendar day in [since, until),
// filling days without pulls with zeros. An until at local midnight ends
// the range on the day before.
func AggregatePullDays(pulls []model.PullRecord, since, until time.Time, econ config.Economy) []model.PullDay {
	counts := make(map[string]*model.PullDay)
	for _, p := range FilterPullsByTime(CostingPulls(pulls, econ), since, until) {
		day := DayOf(p.Timestamp)
		key := dayKey(day)
		pd, ok := counts[key]
		if !ok {
			pd = &model.PullDay{Day: day}
			counts[key] = pd
		}
		pd.Pulls++
		pd.CurrencySpent += econ.CurrencyPerPull
	}

	if since.IsZero() || until.IsZero() {
		out := make([]model.PullDay, 0, len(counts))
		for _, pd := range counts {
			out = append(out, *pd)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
		return out
	}

	last := DayOf(until)
	if y, m, d := until.Date(); until.Equal(time.Date(y, m, d, 0, 0, 0, 0, until.Location())) {
		last = last.AddDate(0, 0, -1)
	}

	var out []model.PullDay
	for day := DayOf(since); !day.After(last); day = day.AddDate(0, 0, 1) {
		if pd, ok := counts[dayKey(day)]; ok {
			out = append(out, *pd)
			continue
		}
		out = append(out, model.PullDay{Day: day})
	}
	return out
}
