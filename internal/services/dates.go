package services

import (
	"time"

	"github.com/CountToFour/finance-mate/internal/models"
)

// Advance moves a schedule anchor forward by one period. Month and year
// steps keep the day-of-month, clipped to the target month's length
// (Jan 31 -> Feb 28/29, Feb 29 -> Feb 28 on non-leap years).
func Advance(date time.Time, period models.PeriodType) time.Time {
	switch period {
	case models.PeriodDaily:
		return date.AddDate(0, 0, 1)
	case models.PeriodWeekly:
		return date.AddDate(0, 0, 7)
	case models.PeriodMonthly:
		return addMonthsClipped(date, 1)
	case models.PeriodYearly:
		return addMonthsClipped(date, 12)
	default:
		return date
	}
}

func addMonthsClipped(date time.Time, months int) time.Time {
	year, month, day := date.Date()
	first := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, date.Location())
	last := daysInMonth(first.Year(), first.Month())
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, date.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// dateOnly truncates to a calendar date; the journal keys on days, not
// instants.
func dateOnly(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
