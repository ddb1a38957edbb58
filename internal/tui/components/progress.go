package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/gemledger/internal/tui/theme"
)

// ProgressBar renders a visually appealing progress bar with percentage.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	var barColor lipgloss.Color
	switch {
	case pct >= 0.8:
		barColor = t.AccentBright
	case pct >= 0.5:
		barColor = t.Accent
	default:
		barColor = t.Cyan
	}

	filledStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	b.WriteString(filledStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(emptyStyle.Render(strings.Repeat("░", width-filled)))

	return b.String() + spaceStyle.Render(" ") + pctStyle.Render(fmt.Sprintf("%.0f%%", pct*100))
}

// ColorForGoal returns red/orange/yellow/green as a savings goal fills up.
func ColorForGoal(pct float64) string {
	t := theme.Active
	switch {
	case pct >= 1:
		return string(t.GreenBright)
	case pct >= 0.7:
		return string(t.Green)
	case pct >= 0.4:
		return string(t.Yellow)
	default:
		return string(t.Orange)
	}
}

// GoalBar renders a labeled bar showing progress toward a savings goal,
// such as wishes saved toward guaranteed pity, with a trailing note.
func GoalBar(label string, pct float64, note string, labelW, barWidth int) string {
	t := theme.Active

	if pct < 0 {
		pct = 0
	}
	shown := pct
	if shown > 1 {
		shown = 1
	}

	bar := progress.New(
		progress.WithSolidFill(ColorForGoal(pct)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorForGoal(pct))).Background(t.Surface).Bold(true)
	noteStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
		spaceStyle.Render(" ") +
		bar.ViewAs(shown) +
		spaceStyle.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%3.0f%%", pct*100)) +
		spaceStyle.Render("  ") +
		noteStyle.Render(note)
}
