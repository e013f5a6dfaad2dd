package dateutil

import (
	"fmt"
	"strings"
	"time"
)

// Date returns the naive calendar date y-m-d (00:00 UTC)
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// StartOfDay returns the calendar date of t without its time of day.
// The wall clock date is kept, the location is dropped.
func StartOfDay(date time.Time) time.Time {
	return Date(date.Year(), date.Month(), date.Day())
}

// StartOfWeek returns the Monday of the week for the given date
func StartOfWeek(date time.Time) time.Time {
	daysFromMonday := WeekdayNumber(date) - 1
	return StartOfDay(date).AddDate(0, 0, -daysFromMonday)
}

// StartOfMonth returns the first day of the month
func StartOfMonth(date time.Time) time.Time {
	return Date(date.Year(), date.Month(), 1)
}

// StartOfYear returns January 1 of the date's year
func StartOfYear(date time.Time) time.Time {
	return Date(date.Year(), time.January, 1)
}

// DaysIn returns the number of days in the year
func DaysIn(year int) int {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}

// DaysBetween returns the number of whole days from a to b
func DaysBetween(a, b time.Time) int {
	return int(StartOfDay(b).Sub(StartOfDay(a)).Hours() / 24)
}

// IsWeekend reports whether date falls on Sa or So
func IsWeekend(date time.Time) bool {
	return WeekdayNumber(date) >= 6
}

// WeekdayNumber returns 1 for Monday through 7 for Sunday
func WeekdayNumber(date time.Time) int {
	weekday := int(date.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday = 7
	}
	return weekday
}

var weekdayLabels = [7]string{"Mo", "Di", "Mi", "Do", "Fr", "Sa", "So"}

// WeekdayLabel returns the two-letter label ("Mo".."So") for a date
func WeekdayLabel(date time.Time) string {
	return weekdayLabels[WeekdayNumber(date)-1]
}

// LabelOf returns the two-letter label for a weekday number 1..7
func LabelOf(weekday int) string {
	if weekday < 1 || weekday > 7 {
		return ""
	}
	return weekdayLabels[weekday-1]
}

// German labels first, English forms as aliases.
var weekdayByLabel = map[string]time.Weekday{
	"mo": time.Monday,
	"di": time.Tuesday,
	"tu": time.Tuesday,
	"mi": time.Wednesday,
	"we": time.Wednesday,
	"do": time.Thursday,
	"th": time.Thursday,
	"fr": time.Friday,
	"sa": time.Saturday,
	"so": time.Sunday,
	"su": time.Sunday,
}

// ParseWeekdayLabel parses a two-letter weekday label (German or English)
func ParseWeekdayLabel(label string) (time.Weekday, bool) {
	wd, ok := weekdayByLabel[strings.ToLower(label)]
	return wd, ok
}

// ParseCompactDate parses an 8-digit YYYYMMDD token and rejects
// impossible dates such as 20240230.
func ParseCompactDate(token string) (time.Time, error) {
	if len(token) != 8 {
		return time.Time{}, fmt.Errorf("date token %q: expected 8 digits", token)
	}
	t, err := time.Parse("20060102", token)
	if err != nil {
		return time.Time{}, fmt.Errorf("date token %q: %w", token, err)
	}
	return t, nil
}

// ParseDate parses date string in various formats
func ParseDate(dateStr string) (time.Time, error) {
	formats := []string{
		"20060102",
		"2006-01-02",
		"02.01.2006",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05Z",
		"2006-01-02T15:04:05-0700",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return StartOfDay(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", dateStr)
}
