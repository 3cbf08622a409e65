// Package birthday computes recurring-birthday dates. All functions are pure
// and operate on dates normalized to UTC midnight, so repeated scans on the
// same day always see the same result.
package birthday

import "time"

// DateOf builds a date-only value (UTC midnight).
func DateOf(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Normalize truncates t to its date in UTC.
func Normalize(t time.Time) time.Time {
	return DateOf(t.Year(), t.Month(), t.Day())
}

// NextOccurrence returns the earliest date on or after today whose month and
// day match the birthday. A Feb 29 birthday clamps to Feb 28 in non-leap
// candidate years; the clamped date counts as the occurrence.
func NextOccurrence(birthday, today time.Time) time.Time {
	today = Normalize(today)
	candidate := inYear(birthday, today.Year())
	if candidate.Before(today) {
		candidate = inYear(birthday, today.Year()+1)
	}
	return candidate
}

// DaysUntil returns the whole-day count from today to the next occurrence.
// Zero means today is the occurrence.
func DaysUntil(birthday, today time.Time) int {
	today = Normalize(today)
	next := NextOccurrence(birthday, today)
	return int(next.Sub(today) / (24 * time.Hour))
}

// inYear projects the birthday's month/day into the given year, clamping the
// day to the month's length.
func inYear(birthday time.Time, year int) time.Time {
	day := birthday.Day()
	if last := lastDayOfMonth(year, birthday.Month()); day > last {
		day = last
	}
	return DateOf(year, birthday.Month(), day)
}

func lastDayOfMonth(year int, month time.Month) int {
	// Day 0 of the following month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
