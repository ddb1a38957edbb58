package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/gemledger/internal/cli"
	"github.com/theirongolddev/gemledger/internal/model"
	"github.com/theirongolddev/gemledger/internal/tui/components"
	"github.com/theirongolddev/gemledger/internal/tui/theme"
)

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	r := a.data.Report
	o := r.Outlook

	if !o.HasSnapshot {
		muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
		body := muted.Render("No resource snapshots recorded yet.\n\n") +
			muted.Render("Add one with `gemledger snapshot add` or import an export\nwith `gemledger import`, then press r to refresh.")
		return components.ContentCard("Overview", body, cw)
	}

	change := o.ProjectedBalance - o.Balance
	metrics := []components.Metric{
		{
			Label: "Primogems + fates",
			Value: cli.FormatNumber(o.Balance),
			Delta: fmt.Sprintf("%s wishes", cli.FormatNumber(o.AvailablePulls)),
		},
		{
			Label: "All wishes",
			Value: fmt.Sprintf("%.1f", o.TotalWishes),
			Delta: fmt.Sprintf("%s intertwined", cli.FormatNumber(o.Intertwined)),
		},
		{
			Label: "Daily rate",
			Value: cli.FormatRate(o.Rate.DailyRate),
			Delta: "from " + string(o.Rate.Source),
		},
		{
			Label:      fmt.Sprintf("In %d days", o.ProjectionDays),
			Value:      cli.FormatNumber(o.ProjectedBalance),
			Delta:      cli.FormatSigned(change),
			DeltaColor: t.Signed(change),
		},
	}

	var b strings.Builder
	b.WriteString(components.MetricCardRow(metrics, cw))
	b.WriteString("\n")
	b.WriteString(a.renderBalanceChart(r.Chart, cw))
	b.WriteString("\n")

	if a.isCompactLayout() {
		b.WriteString(a.renderPityCard(o, cw))
		b.WriteString("\n")
		b.WriteString(a.renderBannerCard(cw))
	} else {
		widths := components.LayoutRow(cw, 2)
		b.WriteString(components.CardRow([]string{
			a.renderPityCard(o, widths[0]),
			a.renderBannerCard(widths[1]),
		}))
	}
	return b.String()
}

// renderBalanceChart draws history and projection as one column chart,
// projected days in the projection color.
func (a App) renderBalanceChart(points []model.ChartPoint, cw int) string {
	t := theme.Active
	if len(points) == 0 {
		return components.ContentCard("Balance", "", cw)
	}

	cols := make([]components.Column, len(points))
	for i, p := range points {
		switch {
		case p.HasHistory():
			cols[i] = components.Column{Value: float64(p.Historical), Color: t.Accent}
			if p.IsSnapshot {
				cols[i].Color = t.AccentBright
			}
		default:
			cols[i] = components.Column{Value: float64(p.Projected), Color: t.Projection()}
		}
	}

	legend := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Render("■ history") +
		lipgloss.NewStyle().Background(t.Surface).Render("  ") +
		lipgloss.NewStyle().Foreground(t.Projection()).Background(t.Surface).Render("■ projection")

	chart := components.ColumnChart(cols, chartDayLabels(points), components.CardInnerWidth(cw), 10)
	return components.ContentCard("Balance", chart+"\n"+legend, cw)
}

func (a App) renderPityCard(o model.Outlook, w int) string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	pity := a.opts.Economy.PityPulls
	pct := 0.0
	if pity > 0 {
		pct = float64(o.AvailablePulls) / float64(pity)
	}

	var note string
	switch {
	case pct >= 1:
		note = "guaranteed now"
	case o.DaysToPity < 0:
		note = "no income"
	default:
		note = "in " + cli.FormatDaysUntil(o.DaysToPity)
	}

	barW := components.CardInnerWidth(w) - 6 - 24
	if barW < 10 {
		barW = 10
	}

	var b strings.Builder
	b.WriteString(components.GoalBar("Pity", pct, note, 6, barW))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s%s\n", label.Render("Wishes saved     "), value.Render(fmt.Sprintf("%s / %d", cli.FormatNumber(o.AvailablePulls), pity)))
	fmt.Fprintf(&b, "%s%s\n", label.Render("Projected wishes "), value.Render(cli.FormatNumber(o.ProjectedPulls)))
	fmt.Fprintf(&b, "%s%s", label.Render("Per banner       "), value.Render(cli.FormatNumber(int64(o.Rate.DailyRate*float64(a.opts.Economy.BannerPeriodDays)))))

	return components.ContentCard("Pity outlook", b.String(), w)
}

func (a App) renderBannerCard(w int) string {
	t := theme.Active
	r := a.data.Report
	header := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	row := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	title := fmt.Sprintf("Wishes [%dd]", a.opts.Report.LookbackDays)
	if len(r.Banners) == 0 {
		return components.ContentCard(title, muted.Render("No wishes in this window"), w)
	}

	var b strings.Builder
	b.WriteString(header.Render(fmt.Sprintf("%-12s %6s %4s %4s %5s", "Banner", "Pulls", "5★", "4★", "Pity")))
	b.WriteString("\n")
	for _, s := range r.Banners {
		b.WriteString(row.Render(fmt.Sprintf("%-12s %6d %4d %4d %5d",
			truncStr(string(s.Banner), 12), s.Pulls, s.FiveStars, s.FourStars, s.PityCount)))
		b.WriteString("\n")
	}
	sp := r.Spending
	b.WriteString(muted.Render(fmt.Sprintf("%s intertwined · %s acquaint · %s primogems",
		cli.FormatNumber(int64(sp.Intertwined)),
		cli.FormatNumber(int64(sp.Acquaint)),
		cli.FormatCompact(sp.CurrencyEquivalent))))

	return components.ContentCard(title, b.String(), w)
}

// chartDayLabels builds compact X-axis labels for a chronological series.
// The first day and month boundaries show the month, other days their number.
func chartDayLabels(points []model.ChartPoint) []string {
	labels := make([]string, len(points))
	prevMonth := time.Month(0)
	for i, p := range points {
		m := p.Day.Month()
		switch {
		case i == 0, m != prevMonth:
			labels[i] = p.Day.Format("Jan")
		default:
			labels[i] = strconv.Itoa(p.Day.Day())
		}
		prevMonth = m
	}
	return labels
}
