package daemon

import (
	"net/http"
	"strconv"
	"time"

	"github.com/theirongolddev/gemledger/internal/model"
	"github.com/theirongolddev/gemledger/internal/pipeline"
)

const dayLayout = "2006-01-02"

// ChartPoint is one day of the /v1/chart series. Pointer fields are null
// on days that only carry the other half of the chart.
type ChartPoint struct {
	Day                     string `json:"day"`
	Historical              *int64 `json:"historical"`
	HistoricalWithPurchases *int64 `json:"historical_with_purchases"`
	Projected               *int64 `json:"projected"`
	ProjectedWithPurchases  *int64 `json:"projected_with_purchases"`
	IsSnapshot              bool   `json:"is_snapshot,omitempty"`
	IsToday                 bool   `json:"is_today,omitempty"`
	CumulativePulls         int    `json:"cumulative_pulls"`
	CumulativePurchases     int64  `json:"cumulative_purchases"`
}

// PeriodPoint is one banner period in /v1/trends.
type PeriodPoint struct {
	Index         int     `json:"index"`
	Start         string  `json:"start"`
	End           string  `json:"end"`
	DailyRate     float64 `json:"daily_rate"`
	TotalIncome   float64 `json:"total_income"`
	Pulls         int     `json:"pulls"`
	IsGroundTruth bool    `json:"is_ground_truth"`
	IsCurrent     bool    `json:"is_current"`
}

// Bucket is one monthly ledger bucket in /v1/trends.
type Bucket struct {
	Label     string           `json:"label"`
	Total     int64            `json:"total"`
	Earned    int64            `json:"earned"`
	Purchased int64            `json:"purchased"`
	Spent     int64            `json:"spent"`
	Sources   map[string]int64 `json:"sources"`
}

// Trends is served at /v1/trends.
type Trends struct {
	AverageRate   float64       `json:"average_rate"`
	EarlyAverage  float64       `json:"early_average"`
	RecentAverage float64       `json:"recent_average"`
	ChangePercent float64       `json:"change_percent"`
	Periods       []PeriodPoint `json:"periods"`
	Monthly       []Bucket      `json:"monthly"`
}

// LogEntry is one row of /v1/log.
type LogEntry struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Kind        string    `json:"kind"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description"`
	Notes       string    `json:"notes,omitempty"`
	Editable    bool      `json:"editable"`
}

func (s *Service) requireReport(w http.ResponseWriter) *pipeline.Report {
	r := s.currentReport()
	if r == nil {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
	}
	return r
}

func (s *Service) handleChart(w http.ResponseWriter, _ *http.Request) {
	r := s.requireReport(w)
	if r == nil {
		return
	}
	writeJSON(w, chartJSON(r.Chart))
}

func (s *Service) handleTrends(w http.ResponseWriter, _ *http.Request) {
	r := s.requireReport(w)
	if r == nil {
		return
	}
	writeJSON(w, trendsJSON(r.Trend, r.Periods, r.Monthly))
}

func (s *Service) handleLog(w http.ResponseWriter, req *http.Request) {
	r := s.requireReport(w)
	if r == nil {
		return
	}

	limit := len(r.Log)
	if v := req.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, len(r.Log))
	}
	writeJSON(w, logJSON(r.Log[:limit]))
}

func chartJSON(points []model.ChartPoint) []ChartPoint {
	out := make([]ChartPoint, 0, len(points))
	for _, p := range points {
		cp := ChartPoint{
			Day:                 p.Day.Format(dayLayout),
			IsSnapshot:          p.IsSnapshot,
			IsToday:             p.IsToday,
			CumulativePulls:     p.CumulativePulls,
			CumulativePurchases: p.CumulativePurchases,
		}
		if p.HasHistory() {
			cp.Historical = ptr(p.Historical)
			cp.HistoricalWithPurchases = ptr(p.HistoricalWithPurchases)
		}
		if p.HasProjection() {
			cp.Projected = ptr(p.Projected)
			cp.ProjectedWithPurchases = ptr(p.ProjectedWithPurchases)
		}
		out = append(out, cp)
	}
	return out
}

func trendsJSON(sum model.TrendSummary, periods []model.PeriodTrendPoint, monthly []model.IncomeBucket) Trends {
	t := Trends{
		AverageRate:   sum.AverageRate,
		EarlyAverage:  sum.EarlyAverage,
		RecentAverage: sum.RecentAverage,
		ChangePercent: sum.ChangePercent,
		Periods:       make([]PeriodPoint, 0, len(periods)),
		Monthly:       make([]Bucket, 0, len(monthly)),
	}
	for _, p := range periods {
		t.Periods = append(t.Periods, PeriodPoint{
			Index:         p.Index,
			Start:         p.PeriodStart.Format(dayLayout),
			End:           p.PeriodEnd.Format(dayLayout),
			DailyRate:     p.DailyRate,
			TotalIncome:   p.TotalIncome,
			Pulls:         p.Pulls,
			IsGroundTruth: p.IsGroundTruth,
			IsCurrent:     p.IsCurrent,
		})
	}
	for _, b := range monthly {
		sources := make(map[string]int64, len(b.Sources))
		for src, v := range b.Sources {
			sources[string(src)] = v
		}
		t.Monthly = append(t.Monthly, Bucket{
			Label:     b.Label,
			Total:     b.Total,
			Earned:    b.Earned,
			Purchased: b.Purchased,
			Spent:     b.Spent,
			Sources:   sources,
		})
	}
	return t
}

func logJSON(entries []model.LogEntry) []LogEntry {
	out := make([]LogEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, LogEntry{
			ID:          e.ID,
			Timestamp:   e.Timestamp,
			Kind:        string(e.Kind),
			Amount:      e.Amount,
			Description: e.Description,
			Notes:       e.Notes,
			Editable:    e.Editable,
		})
	}
	return out
}

func ptr[T any](v T) *T { return &v }
