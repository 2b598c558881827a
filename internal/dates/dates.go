// Package dates validates the year and date path segments of the traffic
// archive. Dates are 8-digit YYYYMMDD strings; only the numeric ranges are
// checked, not the calendar (20200230 is accepted).
package dates

import "strconv"

// ParseYear parses a four-digit year in [1900, 9999].
func ParseYear(s string) (int, bool) {
	yr, err := strconv.Atoi(s)
	if err != nil || yr < 1900 || yr > 9999 {
		return 0, false
	}
	return yr, true
}

// ParseMonth parses a month in [1, 12].
func ParseMonth(s string) (int, bool) {
	mo, err := strconv.Atoi(s)
	if err != nil || mo < 1 || mo > 12 {
		return 0, false
	}
	return mo, true
}

// ParseDay parses a day in [1, 31].
func ParseDay(s string) (int, bool) {
	da, err := strconv.Atoi(s)
	if err != nil || da < 1 || da > 31 {
		return 0, false
	}
	return da, true
}

// IsValidDate reports whether s is an 8-digit YYYYMMDD date string.
func IsValidDate(s string) bool {
	if len(s) != 8 {
		return false
	}
	if _, ok := ParseYear(s[:4]); !ok {
		return false
	}
	if _, ok := ParseMonth(s[4:6]); !ok {
		return false
	}
	if _, ok := ParseDay(s[6:8]); !ok {
		return false
	}
	return true
}

// IsValidYearDate reports whether year and date are both well formed. It
// does not require the date to fall within the year; callers that need the
// prefix check perform it separately so a mismatch can be reported as a
// client error rather than a miss.
func IsValidYearDate(year, date string) bool {
	if _, ok := ParseYear(year); !ok {
		return false
	}
	return IsValidDate(date)
}
