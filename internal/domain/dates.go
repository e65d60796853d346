package domain

import "time"

// Reading dates are calendar dates without a time component, stored as
// strings. The layouts sort lexicographically, so plain string comparison
// gives correct date ordering.
const (
	// DateLayout is the storage format for calendar dates ("2025-06-01").
	DateLayout = "2006-01-02"
	// MonthLayout is the storage format for year-months ("2025-06").
	MonthLayout = "2006-01"
)

// FormatDate renders t as a calendar date in the profile's local day.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatMonth renders t as a year-month.
func FormatMonth(t time.Time) string {
	return t.Format(MonthLayout)
}

// Today returns the current calendar date.
func Today() string {
	return FormatDate(time.Now())
}

// CurrentMonth returns the current year-month.
func CurrentMonth() string {
	return FormatMonth(time.Now())
}

// Yesterday returns the calendar date one day before the given date.
// Malformed input yields an empty string, which compares before any
// valid date and therefore reads as "long ago" everywhere it is used.
func Yesterday(date string) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return ""
	}
	return FormatDate(t.AddDate(0, 0, -1))
}

// ValidMonth reports whether s is a well-formed year-month.
func ValidMonth(s string) bool {
	if len(s) != len(MonthLayout) {
		return false
	}
	_, err := time.Parse(MonthLayout, s)
	return err == nil
}

// MonthOf extracts the year-month from a calendar date.
func MonthOf(date string) string {
	if len(date) < len(MonthLayout) {
		return ""
	}
	return date[:len(MonthLayout)]
}
