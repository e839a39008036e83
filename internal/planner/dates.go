package planner

import "time"

// DateLayout is the calendar date format used for every date the tool
// reads or writes.
const DateLayout = "2006-01-02"

// DaysPerMonth approximates a month for every horizon computation.
const DaysPerMonth = 30

// DateOf truncates t to its calendar date at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate reads a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return DateOf(t), nil
}

// DaysBetween returns the whole calendar days from a to b (negative when b
// is earlier).
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)).Hours() / 24)
}

// AddDays moves a calendar date by n days.
func AddDays(t time.Time, n int) time.Time {
	return DateOf(t).AddDate(0, 0, n)
}

// MonthsUntil converts a day count into 30-day months, at least one.
func MonthsUntil(days int) int {
	if days <= 0 {
		return 1
	}
	return (days + DaysPerMonth - 1) / DaysPerMonth
}

// ShiftToFunding moves a trip's dates so it departs on the funding date.
// When both dates are set and end is not before start the trip length is
// kept; otherwise only the start moves and end is returned unchanged.
func ShiftToFunding(start, end *time.Time, funding time.Time) (newStart, newEnd *time.Time) {
	s := DateOf(funding)
	if start != nil && end != nil {
		length := DaysBetween(*start, *end)
		if length >= 0 {
			e := AddDays(s, length)
			return &s, &e
		}
	}
	return &s, end
}
