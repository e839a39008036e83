// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/palmvoyage/tripfund/internal/money"
	"github.com/palmvoyage/tripfund/internal/planner"
	"github.com/shopspring/decimal"
)

// FormatMoney formats an amount with cents, e.g. "1 234,56 €".
func FormatMoney(d decimal.Decimal) string {
	return money.Format(d)
}

// FormatMoneyPtr formats an optional amount, "-" when absent.
func FormatMoneyPtr(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return money.Format(*d)
}

// FormatMonths formats a month count.
// e.g., 1 -> "1 month", 14 -> "14 months"
func FormatMonths(n int) string {
	if n == 1 {
		return "1 month"
	}
	return strconv.Itoa(n) + " months"
}

// FormatDate formats an optional calendar date, "-" when absent.
func FormatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(planner.DateLayout)
}

// FormatDaysLeft describes the distance from today to a date.
// e.g., 0 -> "today", 1 -> "tomorrow", 40 -> "in 40 days", -3 -> "3 days ago"
func FormatDaysLeft(today time.Time, t *time.Time) string {
	if t == nil {
		return "no date"
	}
	days := planner.DaysBetween(today, *t)
	switch {
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	case days > 1:
		return fmt.Sprintf("in %d days", days)
	case days == -1:
		return "yesterday"
	default:
		return fmt.Sprintf("%d days ago", -days)
	}
}

// FormatPercent formats a 0-100 value as a percentage string.
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatHorizon formats a planner horizon, "no departure date" when undefined.
func FormatHorizon(h planner.Horizon) string {
	m, ok := h.Months()
	if !ok {
		return "no departure date"
	}
	return FormatMonths(m)
}

// FormatProjection formats when the trip will be funded.
func FormatProjection(p planner.Projection) string {
	m, ok := p.Months()
	if !ok {
		return "never (no monthly savings)"
	}
	d, _ := p.Date()
	return fmt.Sprintf("%s (%s)", d.Format(planner.DateLayout), FormatMonths(m))
}
