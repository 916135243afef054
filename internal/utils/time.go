package utils

import (
	"fmt"
	"time"

	"github.com/lbradley/daybook/internal/constants"
)

// ParseTime parses a time string in the standard format (HH:MM).
func ParseTime(timeStr string) (time.Time, error) {
	return time.Parse(constants.TimeFormat, timeStr)
}

// ParseTimeToMinutes parses a time string (HH:MM) and returns the number of
// minutes from midnight.
func ParseTimeToMinutes(timeStr string) (int, error) {
	t, err := ParseTime(timeStr)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatMinutes converts minutes from midnight back to an HH:MM string.
func FormatMinutes(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ValidateTimeFormat checks if the string matches the standard time format.
func ValidateTimeFormat(timeStr string) bool {
	_, err := time.Parse(constants.TimeFormat, timeStr)
	return err == nil
}

// ValidateDateFormat checks if the string matches the standard date format.
func ValidateDateFormat(dateStr string) bool {
	_, err := time.Parse(constants.DateFormat, dateStr)
	return err == nil
}

// TimesOverlap reports whether two HH:MM ranges overlap. Ranges touching at
// a boundary do not overlap. Unparseable inputs report false.
func TimesOverlap(start1, end1, start2, end2 string) bool {
	s1, err := ParseTimeToMinutes(start1)
	if err != nil {
		return false
	}
	e1, err := ParseTimeToMinutes(end1)
	if err != nil {
		return false
	}
	s2, err := ParseTimeToMinutes(start2)
	if err != nil {
		return false
	}
	e2, err := ParseTimeToMinutes(end2)
	if err != nil {
		return false
	}
	return s1 < e2 && s2 < e1
}

// RangesOverlap reports whether two minute ranges overlap.
func RangesOverlap(s1, e1, s2, e2 int) bool {
	return s1 < e2 && s2 < e1
}

// Contains reports whether the minute range [outerStart, outerEnd] fully
// contains [innerStart, innerEnd].
func Contains(outerStart, outerEnd, innerStart, innerEnd int) bool {
	return outerStart <= innerStart && innerEnd <= outerEnd
}

// LoadLocation loads a timezone location from an IANA timezone name.
// "Local" or empty yields the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// NowInTimezone returns the current time in the specified timezone.
func NowInTimezone(timezone string) (time.Time, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return time.Now().In(loc), nil
}

// TodayInTimezone returns today's date string (YYYY-MM-DD) in the specified
// timezone, so "today" follows the user's configuration rather than the
// server clock.
func TodayInTimezone(timezone string) (string, error) {
	now, err := NowInTimezone(timezone)
	if err != nil {
		return "", err
	}
	return now.Format(constants.DateFormat), nil
}

// DaysUntil returns the number of whole days from fromDate to dueDate, both
// YYYY-MM-DD. Negative when the due date is in the past.
func DaysUntil(fromDate, dueDate string) (int, error) {
	from, err := time.Parse(constants.DateFormat, fromDate)
	if err != nil {
		return 0, fmt.Errorf("invalid date format: %w", err)
	}
	due, err := time.Parse(constants.DateFormat, dueDate)
	if err != nil {
		return 0, fmt.Errorf("invalid date format: %w", err)
	}
	return int(due.Sub(from).Hours() / 24), nil
}
