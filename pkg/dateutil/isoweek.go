package dateutil

import "time"

// ISOYearBounds describes the span of an ISO week-numbering year
type ISOYearBounds struct {
	Year        int
	FirstMonday time.Time
	LastMonday  time.Time
	LastSunday  time.Time
	Weeks       int
}

// ISOWeek locates a date inside its ISO week-numbering year
type ISOWeek struct {
	Year      int // ISO week-year, may differ from the calendar year at the edges
	Week      int // 1..53
	Weekday   int // 1=Monday..7=Sunday
	DayOfYear int // 1-based day count from the first ISO Monday
}

// FirstISOMonday returns the Monday that starts ISO week 1 of year.
// That is the Monday of the week containing January 1 when at least four
// days of that week fall into year, otherwise the following Monday.
func FirstISOMonday(year int) time.Time {
	jan1 := Date(year, time.January, 1)
	monday := StartOfWeek(jan1)
	if DaysBetween(monday, jan1) >= 4 {
		monday = monday.AddDate(0, 0, 7)
	}
	return monday
}

// ISOWeekYearBounds returns the first/last Monday, the last Sunday and the
// number of ISO weeks of year.
func ISOWeekYearBounds(year int) ISOYearBounds {
	first := FirstISOMonday(year)
	next := FirstISOMonday(year + 1)
	return ISOYearBounds{
		Year:        year,
		FirstMonday: first,
		LastMonday:  next.AddDate(0, 0, -7),
		LastSunday:  next.AddDate(0, 0, -1),
		Weeks:       DaysBetween(first, next) / 7,
	}
}

// Contains reports whether date falls into the ISO year
func (b ISOYearBounds) Contains(date time.Time) bool {
	d := StartOfDay(date)
	return !d.Before(b.FirstMonday) && !d.After(b.LastSunday)
}

// ISOWeekOf returns the ISO week-year, week number, weekday and day of the
// ISO year for a date.
func ISOWeekOf(date time.Time) ISOWeek {
	d := StartOfDay(date)
	bounds := ISOWeekYearBounds(d.Year())
	if !bounds.Contains(d) {
		if d.Before(bounds.FirstMonday) {
			bounds = ISOWeekYearBounds(d.Year() - 1)
		} else {
			bounds = ISOWeekYearBounds(d.Year() + 1)
		}
	}

	day := DaysBetween(bounds.FirstMonday, d) + 1
	return ISOWeek{
		Year:      bounds.Year,
		Week:      (day + 6) / 7,
		Weekday:   WeekdayNumber(d),
		DayOfYear: day,
	}
}
