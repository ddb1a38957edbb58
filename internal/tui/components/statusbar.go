package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/gemledger/internal/tui/theme"
)

// StatusInfo is the right-hand side of the status bar.
type StatusInfo struct {
	LoadTime    string
	RateSource  string
	Refreshing  bool
	AutoRefresh bool
	Err         string
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, info StatusInfo) string {
	t := theme.Active

	barStyle := lipgloss.NewStyle().Background(t.Surface)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	textStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)

	left := barStyle.Render(" ") +
		keyStyle.Render("?") + textStyle.Render(" help  ") +
		keyStyle.Render("r") + textStyle.Render(" refresh  ") +
		keyStyle.Render("q") + textStyle.Render(" quit")

	var parts []string
	switch {
	case info.Err != "":
		parts = append(parts, errStyle.Render(info.Err))
	case info.Refreshing:
		parts = append(parts, textStyle.Render("refreshing…"))
	}
	if info.RateSource != "" {
		parts = append(parts, textStyle.Render("rate: "+info.RateSource))
	}
	if info.AutoRefresh {
		parts = append(parts, textStyle.Render("auto"))
	}
	if info.LoadTime != "" {
		parts = append(parts, textStyle.Render(fmt.Sprintf("loaded in %s", info.LoadTime)))
	}
	right := strings.Join(parts, textStyle.Render(" · ")) + barStyle.Render(" ")

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}
	return left + barStyle.Render(strings.Repeat(" ", padding)) + right
}
