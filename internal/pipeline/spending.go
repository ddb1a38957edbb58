package pipeline

import (
	"time"

	"github.com/theirongolddev/gemledger/internal/config"
	"github.com/theirongolddev/gemledger/internal/model"
)

// CostingPulls returns the pulls whose fates are bought with primogems.
// Every calculation that debits currency for pulls goes through here.
func CostingPulls(pulls []model.PullRecord, econ config.Economy) []model.PullRecord {
	out := make([]model.PullRecord, 0, len(pulls))
	for _, p := range pulls {
		if econ.IsCosting(p.Banner) {
			out = append(out, p)
		}
	}
	return out
}

// WishSpending counts pulls made strictly after since by fate type.
// A zero since counts every pull.
func WishSpending(pulls []model.PullRecord, since time.Time, econ config.Economy) model.FateSpending {
	window := pulls
	if !since.IsZero() {
		window = make([]model.PullRecord, 0, len(pulls))
		for _, p := range pulls {
			if p.Timestamp.After(since) {
				window = append(window, p)
			}
		}
	}

	// costing pulls draw on intertwined fates, everything else on acquaint
	costing := len(CostingPulls(window, econ))
	fs := model.FateSpending{
		Intertwined: costing,
		Acquaint:    len(window) - costing,
	}
	fs.CurrencyEquivalent = int64(fs.Intertwined) * econ.CurrencyPerPull
	return fs
}

// AvailableWishes converts every wish-capable resource in a snapshot into
// a pull count: primogems and genesis crystals at the exchange rate, held
// fates as-is, and starglitter at five per fate.
func AvailableWishes(s model.Snapshot, econ config.Economy) float64 {
	if econ.CurrencyPerPull <= 0 {
		return 0
	}
	currency := float64(s.Primogems+s.GenesisCrystals) / float64(econ.CurrencyPerPull)
	return currency + float64(s.Intertwined) + float64(s.Acquaint) + float64(s.Starglitter/5)
}
