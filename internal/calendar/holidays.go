package calendar

import (
	"sort"
	"time"

	"github.com/username/worktime-calendar/pkg/dateutil"
)

// Holiday is a named public holiday
type Holiday struct {
	Date time.Time
	Name string
}

type fixedHoliday struct {
	month time.Month
	day   int
	name  string
}

var fixedHolidays = []fixedHoliday{
	{time.January, 1, "Neujahr"},
	{time.January, 6, "Heilige Drei Könige"},
	{time.May, 1, "1.Mai"},
	{time.October, 3, "Tag der Deutschen Einheit"},
	{time.November, 1, "Allerheiligen"},
	{time.December, 24, "Heiligabend"},
	{time.December, 25, "1.Weihnachtstag"},
	{time.December, 26, "2.Weihnachtstag"},
	{time.December, 31, "Silvester"},
}

type easterHoliday struct {
	offset int
	name   string
}

// Day offsets relative to Easter Sunday
var easterHolidays = []easterHoliday{
	{-48, "Rosenmontag"},
	{-46, "Aschermittwoch"},
	{-2, "Karfreitag"},
	{0, "Ostersonntag"},
	{1, "Ostermontag"},
	{39, "Christi Himmelfahrt"},
	{49, "Pfingstsonntag"},
	{50, "Pfingstmontag"},
	{60, "Fronleichnam"},
}

// Holidays returns the holidays of year keyed by date.
// Holidays on a Saturday or Sunday are still included.
func Holidays(year int) map[time.Time]string {
	holidays := make(map[time.Time]string, len(fixedHolidays)+len(easterHolidays))

	for _, h := range fixedHolidays {
		holidays[dateutil.Date(year, h.month, h.day)] = h.name
	}

	easter := dateutil.Easter(year)
	for _, h := range easterHolidays {
		date := easter.AddDate(0, 0, h.offset)
		// Ascension can fall on May 1 (2008); the fixed name is kept.
		if _, taken := holidays[date]; !taken {
			holidays[date] = h.name
		}
	}

	return holidays
}

// HolidayList returns the holidays of year sorted by date
func HolidayList(year int) []Holiday {
	m := Holidays(year)
	list := make([]Holiday, 0, len(m))
	for date, name := range m {
		list = append(list, Holiday{Date: date, Name: name})
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Date.Before(list[j].Date)
	})
	return list
}
