package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/gemledger/internal/tui/theme"
)

func TestSparklineLength(t *testing.T) {
	out := Sparkline([]float64{0, 1, 2, 3, 4}, theme.Active.Accent)
	assert.Equal(t, 5, lipgloss.Width(out))
	assert.Empty(t, Sparkline(nil, theme.Active.Accent))
}

func TestColumnChartFallsBackToSparkline(t *testing.T) {
	cols := []Column{{Value: 1, Color: theme.Active.Accent}, {Value: 2, Color: theme.Active.Yellow}}
	out := ColumnChart(cols, nil, 10, 2)
	assert.Equal(t, 2, lipgloss.Width(out))
	assert.NotContains(t, out, "\n")
}

func TestColumnChartShape(t *testing.T) {
	cols := make([]Column, 8)
	labels := make([]string, 8)
	for i := range cols {
		cols[i] = Column{Value: float64((i + 1) * 100), Color: theme.Active.Accent}
		labels[i] = "d"
	}
	out := ColumnChart(cols, labels, 60, 8)
	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.Contains(t, out, "└")
	assert.Contains(t, out, "█")
}

func TestChartTickStep(t *testing.T) {
	assert.Equal(t, 1.0, chartTickStep(0))
	assert.Equal(t, 1000.0, chartTickStep(5000))
	assert.Equal(t, 2000.0, chartTickStep(12000))
	assert.Equal(t, 5000.0, chartTickStep(20000))
}

func TestFormatChartLabel(t *testing.T) {
	assert.Equal(t, "2k", formatChartLabel(2000))
	assert.Equal(t, "2.5k", formatChartLabel(2500))
	assert.Equal(t, "1M", formatChartLabel(1e6))
	assert.Equal(t, "40", formatChartLabel(40))
}

func TestTabVisualWidthMatchesRender(t *testing.T) {
	for active := range Tabs {
		bar := RenderTabBar(active, 0)
		want := 0
		for i, tab := range Tabs {
			want += TabVisualWidth(tab, i == active)
		}
		want += len(Tabs) - 1 // separators
		assert.Equal(t, want, lipgloss.Width(bar), "active=%d", active)
	}
}

func TestTabIdxByKey(t *testing.T) {
	assert.Equal(t, 0, TabIdxByKey('o'))
	assert.Equal(t, 3, TabIdxByKey('x'))
	assert.Equal(t, -1, TabIdxByKey('z'))
}

func TestGoalBarClampsOverfill(t *testing.T) {
	out := GoalBar("Pity", 1.5, "ready", 6, 20)
	assert.Contains(t, out, "150%")
	assert.Contains(t, out, "ready")
}
