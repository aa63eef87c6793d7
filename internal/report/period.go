// Package report builds period summaries, category breakdowns and rule-based
// insights on top of the storage aggregates.
package report

import (
	"fmt"
	"time"

	"github.com/Veraticus/money-tracker/internal/service"
)

// Period is an inclusive time range with a display label.
type Period struct {
	service.DateRange
	Label string
}

// StartOfDay returns midnight of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last millisecond of t's day in t's location.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Millisecond)
}

// StartOfMonth returns midnight on the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// EndOfMonth returns the last millisecond of t's month.
func EndOfMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, 0).Add(-time.Millisecond)
}

// MonthPeriod covers one calendar month in UTC, matching the month buckets
// used by the storage layer. The label is MM/YYYY.
func MonthPeriod(year int, month time.Month) Period {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Period{
		DateRange: service.DateRange{Start: start, End: EndOfMonth(start)},
		Label:     fmt.Sprintf("%02d/%04d", int(month), year),
	}
}

// MonthOf is the MonthPeriod containing t.
func MonthOf(t time.Time) Period {
	t = t.UTC()
	return MonthPeriod(t.Year(), t.Month())
}

// RangePeriod covers whole days from start through end. The label is
// DD/MM/YYYY - DD/MM/YYYY.
func RangePeriod(start, end time.Time) (Period, error) {
	start, end = StartOfDay(start), EndOfDay(end)
	if end.Before(start) {
		return Period{}, fmt.Errorf("end date %s is before start date %s",
			end.Format(time.DateOnly), start.Format(time.DateOnly))
	}
	return Period{
		DateRange: service.DateRange{Start: start, End: end},
		Label:     start.Format("02/01/2006") + " - " + end.Format("02/01/2006"),
	}, nil
}

// ParseMonth reads YYYY-MM (or MM/YYYY) into a MonthPeriod.
func ParseMonth(s string) (Period, error) {
	for _, layout := range []string{"2006-01", "01/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return MonthPeriod(t.Year(), t.Month()), nil
		}
	}
	return Period{}, fmt.Errorf("invalid month %q: expected YYYY-MM or MM/YYYY", s)
}
