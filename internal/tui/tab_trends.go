package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/gemledger/internal/cli"
	"github.com/theirongolddev/gemledger/internal/model"
	"github.com/theirongolddev/gemledger/internal/pipeline"
	"github.com/theirongolddev/gemledger/internal/tui/components"
	"github.com/theirongolddev/gemledger/internal/tui/theme"
)

// trendsState holds the trends tab state.
type trendsState struct {
	interval model.BucketInterval
}

func (s *trendsState) toggleInterval() {
	if s.interval == model.IntervalWeek {
		s.interval = model.IntervalMonth
	} else {
		s.interval = model.IntervalWeek
	}
}

func (a App) renderTrendsTab(cw int) string {
	var b strings.Builder
	b.WriteString(a.renderPeriodsCard(cw))
	b.WriteString("\n")

	if a.isCompactLayout() {
		b.WriteString(a.renderBucketsCard(cw))
		b.WriteString("\n")
		b.WriteString(a.renderSplitCard(cw))
		return b.String()
	}

	widths := components.LayoutRow(cw, 3)
	b.WriteString(components.CardRow([]string{
		a.renderBucketsCard(widths[0] + widths[1]),
		a.renderSplitCard(widths[2]),
	}))
	return b.String()
}

// renderPeriodsCard charts the daily income rate of each banner period.
// Periods measured from snapshots use the accent color, pull-based
// estimates a muted one, and the running period the projection color.
func (a App) renderPeriodsCard(cw int) string {
	t := theme.Active
	r := a.data.Report
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	title := fmt.Sprintf("Income per banner period [%dd]", a.opts.Economy.BannerPeriodDays)
	if len(r.Periods) == 0 {
		return components.ContentCard(title, muted.Render("No snapshots or wishes recorded yet"), cw)
	}

	cols := make([]components.Column, len(r.Periods))
	labels := make([]string, len(r.Periods))
	for i, p := range r.Periods {
		c := components.Column{Value: p.DailyRate, Color: t.Blue}
		switch {
		case p.IsCurrent:
			c.Color = t.Projection()
		case p.IsGroundTruth:
			c.Color = t.Accent
		}
		cols[i] = c
		labels[i] = p.PeriodStart.Format("Jan 2")
	}

	var b strings.Builder
	b.WriteString(components.ColumnChart(cols, labels, components.CardInnerWidth(cw), 8))
	b.WriteString("\n")

	sum := r.Trend
	b.WriteString(muted.Render("Average ") + value.Render(cli.FormatRate(sum.AverageRate)))
	if sum.EarlyAverage > 0 {
		change := lipgloss.NewStyle().Foreground(t.Signed(int64(sum.ChangePercent))).Background(t.Surface)
		b.WriteString(muted.Render("   Early ") + value.Render(cli.FormatRate(sum.EarlyAverage)))
		b.WriteString(muted.Render("   Recent ") + value.Render(cli.FormatRate(sum.RecentAverage)))
		b.WriteString(muted.Render("   ") + change.Render(cli.FormatChange(sum.ChangePercent)))
	}
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Render("■ snapshots  "))
	b.WriteString(lipgloss.NewStyle().Foreground(t.Blue).Background(t.Surface).Render("■ wishes  "))
	b.WriteString(lipgloss.NewStyle().Foreground(t.Projection()).Background(t.Surface).Render("■ current"))

	return components.ContentCard(title, b.String(), cw)
}

func (a App) renderBucketsCard(w int) string {
	t := theme.Active
	header := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface)

	interval := a.trendsState.interval
	since := pipeline.DayOf(a.opts.Now()).AddDate(0, 0, -a.opts.Report.LookbackDays)
	buckets := pipeline.BucketEntries(a.data.Dataset.Purchases, pipeline.BucketFilter{
		Interval:         interval,
		Since:            since,
		IncludePurchases: true,
	})

	title := fmt.Sprintf("Ledger by %s [%dd]  (w to switch)", interval, a.opts.Report.LookbackDays)
	if len(buckets) == 0 {
		return components.ContentCard(title, muted.Render("No ledger entries in this window"), w)
	}

	signed := func(n int64, width int) string {
		return lipgloss.NewStyle().Foreground(t.Signed(n)).Background(t.Surface).
			Render(fmt.Sprintf("%*s", width, cli.FormatSigned(n)))
	}

	var b strings.Builder
	b.WriteString(header.Render(fmt.Sprintf("%-10s %9s %9s %9s %9s", "Period", "Earned", "Bought", "Spent", "Net")))
	b.WriteString("\n")
	for _, bk := range buckets {
		b.WriteString(muted.Render(fmt.Sprintf("%-10s", truncStr(bk.Label, 10))))
		for _, v := range []int64{bk.Earned, bk.Purchased, bk.Spent, bk.Total} {
			b.WriteString(space.Render(" "))
			b.WriteString(signed(v, 9))
		}
		b.WriteString("\n")
	}
	return components.ContentCard(title, strings.TrimSuffix(b.String(), "\n"), w)
}

func (a App) renderSplitCard(w int) string {
	t := theme.Active
	s := a.data.Report.Split
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	rows := []struct {
		name string
		v    int64
	}{
		{"Earned", s.Earned},
		{"Purchased", s.Purchased},
		{"Spent", s.Spent},
		{"Net", s.Net},
	}

	var b strings.Builder
	for i, row := range rows {
		val := lipgloss.NewStyle().Foreground(t.Signed(row.v)).Background(t.Surface).Bold(row.name == "Net")
		b.WriteString(label.Render(fmt.Sprintf("%-10s ", row.name)))
		b.WriteString(val.Render(cli.FormatSigned(row.v)))
		if i < len(rows)-1 {
			b.WriteString("\n")
		}
	}
	return components.ContentCard("All-time ledger", b.String(), w)
}
