package utils

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const filingPeriodLayout = "2006-01"

// ParseFilingPeriod parses a "YYYY-MM" filing period into the first day
// of that month (UTC).
func ParseFilingPeriod(period string) (time.Time, error) {
	t, err := time.Parse(filingPeriodLayout, period)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid filing period %q: %w", period, err)
	}
	return t, nil
}

// FormatFilingPeriod renders a date as a "YYYY-MM" filing period.
func FormatFilingPeriod(t time.Time) string {
	return t.Format(filingPeriodLayout)
}

// AddFrequency advances a period start by one filing frequency.
// Unknown frequencies fall back to yearly.
func AddFrequency(start time.Time, frequency string) time.Time {
	switch frequency {
	case "monthly":
		return start.AddDate(0, 1, 0)
	case "quarterly":
		return start.AddDate(0, 3, 0)
	default:
		return start.AddDate(1, 0, 0)
	}
}

// OverdueDays returns whole days elapsed past dueDate, 0 when not overdue.
func OverdueDays(dueDate, now time.Time) int {
	if !now.After(dueDate) {
		return 0
	}
	return int(now.Sub(dueDate).Hours() / 24)
}

// IsDateOverdue checks if a due date has passed relative to now.
func IsDateOverdue(dueDate, now time.Time) bool {
	return now.After(dueDate)
}

// PeriodsOverlap reports whether [aStart, aEnd] and [bStart, bEnd] share
// any instant.
func PeriodsOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}

// Percent converts a 0-100 rate into the multiplier rate/100.
func Percent(rate decimal.Decimal) decimal.Decimal {
	return rate.Div(decimal.NewFromInt(100))
}

// DecimalFromString converts string to decimal.Decimal
func DecimalFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
