package models

import (
	"fmt"
	"time"
)

const DayLayout = "2006-01-02"

// CalendarDay is a local wall-clock date in YYYY-MM-DD form.
type CalendarDay string

// DayOf returns the calendar day of t in t's own location.
func DayOf(t time.Time) CalendarDay {
	return CalendarDay(t.Format(DayLayout))
}

func ParseDay(s string) (CalendarDay, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid calendar day %q: %w", s, err)
	}
	return DayOf(t), nil
}

func (d CalendarDay) String() string {
	return string(d)
}

// Start returns local midnight at the beginning of d.
func (d CalendarDay) Start(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DayLayout, string(d), loc)
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// NextMidnight returns the start of the local day after t. Built from the
// calendar date so DST days of 23 or 25 hours land on the real boundary.
func NextMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}

// DaysInMonth lists every calendar day of the given month.
func DaysInMonth(year int, month time.Month) []CalendarDay {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	n := first.AddDate(0, 1, -1).Day()
	days := make([]CalendarDay, n)
	for i := 0; i < n; i++ {
		days[i] = DayOf(first.AddDate(0, 0, i))
	}
	return days
}
