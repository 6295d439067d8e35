// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/theirongolddev/mrrcast/internal/model"
)

var printer = message.NewPrinter(language.English)

// FormatMoney formats a USD amount with thousands separators. Amounts of
// $1,000 or more drop the cents.
// e.g., 26 -> "$26.00", -77900 -> "-$77,900"
func FormatMoney(v float64) string {
	if v < 0 {
		return "-" + FormatMoney(-v)
	}
	if v >= 1000 {
		return printer.Sprintf("$%d", int64(math.Round(v)))
	}
	return printer.Sprintf("$%.2f", v)
}

// FormatCount formats a fractional subscriber or visit count as a whole
// number with separators.
// e.g., 4000.4 -> "4,000"
func FormatCount(v float64) string {
	return printer.Sprintf("%d", int64(math.Round(v)))
}

// FormatCompact formats a value with human-readable suffixes.
// e.g., 1234 -> "1.2K", 1234567 -> "1.2M"
func FormatCompact(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", v/1_000_000_000)
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fK", v/1_000)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatMetric formats a possibly degenerate metric, using format for
// defined values.
func FormatMetric(m model.Metric, format func(float64) string) string {
	switch m.State {
	case model.MetricUndefined:
		return "n/a"
	case model.MetricInfinite:
		return "∞"
	default:
		return format(m.Value)
	}
}

// FormatRatio formats a return multiple such as ROI.
// e.g., 6.6923 -> "6.69x"
func FormatRatio(v float64) string {
	return printer.Sprintf("%.2fx", v)
}

// FormatPayback formats a payback outcome.
func FormatPayback(p model.Payback) string {
	switch p.Outcome {
	case model.PaybackImmediate:
		return "immediate"
	case model.PaybackNever:
		return "never"
	default:
		return fmt.Sprintf("%.1f mo", p.Months)
	}
}

// FormatMonth formats a projection month, e.g. "Jan 2025".
func FormatMonth(t time.Time) string {
	return t.Format("Jan 2006")
}

// FormatMonthIndex formats an optional month index relative to kickOff,
// e.g. "month 7 (Jul 2025)". Nil means the event never happens.
func FormatMonthIndex(i *int, kickOff time.Time) string {
	if i == nil {
		return "not reached"
	}
	return fmt.Sprintf("month %d (%s)", *i+1, FormatMonth(kickOff.AddDate(0, *i, 0)))
}
