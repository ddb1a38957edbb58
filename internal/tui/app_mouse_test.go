package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/theirongolddev/gemledger/internal/tui/components"
)

func TestTabAtXMatchesTabWidths(t *testing.T) {
	n := len(components.Tabs)
	for active := 0; active < n; active++ {
		a := App{activeTab: active}
		pos := 0

		for i := 0; i < n; i++ {
			w := tabWidthForTest(i, active)
			x := pos + w/2 // midpoint inside this tab
			if got := a.tabAtX(x); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, x, got, i)
			}
			pos += w
			if i < n-1 {
				pos++ // separator
			}
		}
		if got := a.tabAtX(pos + 5); got != -1 {
			t.Fatalf("active=%d past the last tab -> %d, want -1", active, got)
		}
	}
}

func tabWidthForTest(tabIdx, activeIdx int) int {
	nameWidths := []int{
		len("Overview"),
		len("Trends"),
		len("Log"),
		len("Settings"),
	}

	w := nameWidths[tabIdx] + 2 // horizontal padding in tab renderer
	if tabIdx != activeIdx && tabIdx == 3 {
		w += 3 // inactive Settings adds "[x]"
	}
	return w
}

func TestMouseClickSwitchesTab(t *testing.T) {
	a := App{loaded: true, activeTab: tabOverview}
	x := tabWidthForTest(0, 0) + 1 + 2 // inside "Trends"

	m, _ := a.Update(tea.MouseMsg{X: x, Y: 0, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	if got := m.(App).activeTab; got != tabTrends {
		t.Fatalf("activeTab = %d, want %d", got, tabTrends)
	}
}
