// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatCompact formats a count with human-readable suffixes.
// e.g., 1234 -> "1.2K", 1234567 -> "1.2M"
func FormatCompact(n int64) string {
	abs := n
	if abs < 0 {
		abs = -abs
	}

	switch {
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case abs >= 10_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return strconv.FormatInt(n, 10)
	}
}

// FormatSigned formats an amount with an explicit sign.
// e.g., 1234 -> "+1,234", -160 -> "-160", 0 -> "0"
func FormatSigned(n int64) string {
	if n > 0 {
		return "+" + FormatNumber(n)
	}
	return FormatNumber(n)
}

// FormatRate formats a daily income rate.
func FormatRate(rate float64) string {
	if rate >= 1000 {
		return FormatNumber(int64(math.Round(rate))) + "/day"
	}
	return fmt.Sprintf("%.1f/day", rate)
}

// FormatPulls formats a fractional pull count.
func FormatPulls(pulls float64) string {
	if pulls == math.Trunc(pulls) {
		return FormatNumber(int64(pulls))
	}
	return printer.Sprintf("%.1f", pulls)
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatChange formats an already-scaled percentage change with its sign.
func FormatChange(pct float64) string {
	if pct >= 0 {
		return fmt.Sprintf("+%.1f%%", pct)
	}
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatDelta formats the difference between two balances with sign.
func FormatDelta(current, previous int64) string {
	return FormatSigned(current - previous)
}

// FormatDaysUntil formats a day count that may be unreachable (negative).
func FormatDaysUntil(days int) string {
	switch {
	case days < 0:
		return "never"
	case days == 0:
		return "now"
	case days == 1:
		return "1 day"
	default:
		return FormatNumber(int64(days)) + " days"
	}
}

// FormatDay formats a calendar day as "Jan 02".
func FormatDay(day time.Time) string {
	return day.Format("Jan 02")
}

// FormatDayOfWeek returns a 3-letter day abbreviation from a weekday number.
func FormatDayOfWeek(weekday int) string {
	days := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	if weekday >= 0 && weekday < 7 {
		return days[weekday]
	}
	return "???"
}
