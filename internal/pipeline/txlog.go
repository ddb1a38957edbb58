package pipeline

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/theirongolddev/gemledger/internal/config"
	"github.com/theirongolddev/gemledger/internal/model"
)

var printer = message.NewPrinter(language.English)

// BuildTransactionLog merges snapshots, ledger entries and per-day pull
// spending into one log, newest first. Pull days are stamped at 12:00 UTC
// on their calendar day so they order predictably against same-day records.
func BuildTransactionLog(ds model.Dataset, econ config.Economy) []model.LogEntry {
	entries := make([]model.LogEntry, 0, len(ds.Snapshots)+len(ds.Purchases))

	for _, s := range ds.Snapshots {
		entries = append(entries, model.LogEntry{
			ID:          "snapshot-" + s.ID,
			Timestamp:   s.Timestamp,
			Kind:        model.LogSnapshot,
			Amount:      s.Primogems,
			Description: printer.Sprintf("Resource snapshot: %d primogems", s.Primogems),
			Ref:         model.SnapshotRef{Snapshot: s},
		})
	}

	for _, p := range ds.Purchases {
		entries = append(entries, model.LogEntry{
			ID:          "purchase-" + p.ID,
			Timestamp:   p.Timestamp,
			Kind:        model.LogPurchase,
			Amount:      p.Amount,
			Description: purchaseDescription(p),
			Notes:       p.Notes,
			Editable:    true,
			Ref:         model.PurchaseRef{Purchase: p},
		})
	}

	byDay := make(map[string][]model.PullRecord)
	for _, p := range sortedPulls(CostingPulls(ds.Pulls, econ)) {
		key := dayKey(DayOf(p.Timestamp))
		byDay[key] = append(byDay[key], p)
	}
	for key, pulls := range byDay {
		day, _ := time.Parse(dayLayout, key)
		spent := int64(len(pulls)) * econ.CurrencyPerPull
		entries = append(entries, model.LogEntry{
			ID:          "wishes-" + key,
			Timestamp:   day.Add(12 * time.Hour),
			Kind:        model.LogPullSpending,
			Amount:      -spent,
			Description: pullDayDescription(pulls, spent),
			Ref:         model.PullDayRef{Day: day, Pulls: pulls},
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.After(b.Timestamp)
		}
		if a.Kind != b.Kind {
			return kindOrder(a.Kind) < kindOrder(b.Kind)
		}
		return a.ID < b.ID
	})
	return entries
}

func kindOrder(k model.LogKind) int {
	switch k {
	case model.LogSnapshot:
		return 0
	case model.LogPurchase:
		return 1
	default:
		return 2
	}
}

func purchaseDescription(p model.PurchaseEntry) string {
	source := strings.ReplaceAll(string(p.Source), "_", " ")
	if p.Amount < 0 {
		return printer.Sprintf("Spent %d primogems (%s)", -p.Amount, source)
	}
	if p.Source == model.SourcePurchase {
		return printer.Sprintf("Purchased %d primogems", p.Amount)
	}
	return printer.Sprintf("Earned %d primogems (%s)", p.Amount, source)
}

func pullDayDescription(pulls []model.PullRecord, spent int64) string {
	var fives, fours int
	for _, p := range pulls {
		switch p.Rarity {
		case 5:
			fives++
		case 4:
			fours++
		}
	}

	desc := printer.Sprintf("Spent %d primogems (%d pulls)", spent, len(pulls))
	var results []string
	if fives > 0 {
		results = append(results, printer.Sprintf("%dx 5★", fives))
	}
	if fours > 0 {
		results = append(results, printer.Sprintf("%dx 4★", fours))
	}
	if len(results) > 0 {
		desc += " → " + strings.Join(results, ", ")
	}
	return desc
}
