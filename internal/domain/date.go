package domain

import "time"

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date strictly. The result is midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// DateOf returns the calendar date of t (in t's own location) as midnight UTC.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDate renders the calendar date of t in wire format.
func FormatDate(t time.Time) string {
	return DateOf(t).Format(DateLayout)
}

// DateOrToday returns s in canonical form, or today's date when s does not parse.
func DateOrToday(s string, now time.Time) string {
	d, err := ParseDate(s)
	if err != nil {
		return FormatDate(now)
	}
	return d.Format(DateLayout)
}

// DaysBetween counts whole calendar days from a to b. Negative when b is before a.
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)).Hours() / 24)
}
