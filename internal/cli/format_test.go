package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-14400, "-14,400"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNumber(tt.in), "FormatNumber(%d)", tt.in)
	}
}

func TestFormatSigned(t *testing.T) {
	assert.Equal(t, "+6,480", FormatSigned(6480))
	assert.Equal(t, "-320", FormatSigned(-320))
	assert.Equal(t, "0", FormatSigned(0))
	assert.Equal(t, "+160", FormatDelta(1160, 1000))
}

func TestFormatCompact(t *testing.T) {
	assert.Equal(t, "9999", FormatCompact(9999))
	assert.Equal(t, "14.4K", FormatCompact(14400))
	assert.Equal(t, "1.2M", FormatCompact(1234567))
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "148.0/day", FormatRate(148))
	assert.Equal(t, "1,500/day", FormatRate(1499.6))
}

func TestFormatPulls(t *testing.T) {
	assert.Equal(t, "12", FormatPulls(12))
	assert.Equal(t, "12.5", FormatPulls(12.5))
}

func TestFormatChange(t *testing.T) {
	assert.Equal(t, "+12.3%", FormatChange(12.34))
	assert.Equal(t, "-4.0%", FormatChange(-4))
	assert.Equal(t, "25.0%", FormatPercent(0.25))
}

func TestFormatDaysUntil(t *testing.T) {
	assert.Equal(t, "never", FormatDaysUntil(-1))
	assert.Equal(t, "now", FormatDaysUntil(0))
	assert.Equal(t, "1 day", FormatDaysUntil(1))
	assert.Equal(t, "1,260 days", FormatDaysUntil(1260))
}

func TestFormatDay(t *testing.T) {
	assert.Equal(t, "Jun 02", FormatDay(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Mon", FormatDayOfWeek(1))
	assert.Equal(t, "???", FormatDayOfWeek(9))
}

func TestRenderSparkline(t *testing.T) {
	assert.Equal(t, "", RenderSparkline(nil))
	assert.Equal(t, "▁▁▁", RenderSparkline([]float64{5, 5, 5}))

	line := RenderSparkline([]float64{1000, 1500, 2000})
	runes := []rune(line)
	assert.Len(t, runes, 3)
	assert.Equal(t, '▁', runes[0])
	assert.Equal(t, '█', runes[2])
}

func TestRenderTable_UnicodeWidths(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Day", "Event"},
		Rows: [][]string{
			{"Jun 02", "1x 5★"},
			{"---"},
			{"Jun 03", "none"},
		},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// top, header, header rule, row, separator, row, bottom
	assert.Len(t, lines, 7)
	assert.Contains(t, out, "1x 5★")

	want := lipgloss.Width(lines[0])
	for i, line := range lines {
		assert.Equal(t, want, lipgloss.Width(line), "line %d: %q", i, line)
	}
}
