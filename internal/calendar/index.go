package calendar

import (
	"fmt"
	"sort"
	"time"

	"github.com/username/worktime-calendar/pkg/dateutil"
)

const (
	// WeekBucketPrevious collects January days of the previous ISO year
	WeekBucketPrevious = 0
	// WeekBucketNext collects December days of the next ISO year's week 1
	WeekBucketNext = 99
)

type monthDay struct {
	month time.Month
	day   int
}

// YearIndex is the dense ordinal index of one calendar year.
// It is read-only after NewYearIndex returns.
type YearIndex struct {
	year       int
	bounds     dateutil.ISOYearBounds
	days       []DayInfo // ordinal-1
	byMonthDay map[monthDay]int
	months     map[time.Month]OrdinalRange
	weeks      map[int]OrdinalRange
	monthWeeks map[time.Month]map[int][]int
	holidays   []Holiday
}

// NewYearIndex builds the index for year
func NewYearIndex(year int) *YearIndex {
	holidays := Holidays(year)
	idx := &YearIndex{
		year:       year,
		bounds:     dateutil.ISOWeekYearBounds(year),
		days:       make([]DayInfo, 0, dateutil.DaysIn(year)),
		byMonthDay: make(map[monthDay]int, dateutil.DaysIn(year)),
		months:     make(map[time.Month]OrdinalRange, 12),
		weeks:      make(map[int]OrdinalRange, 55),
		monthWeeks: make(map[time.Month]map[int][]int, 12),
		holidays:   HolidayList(year),
	}

	ordinal := 0
	for date := dateutil.Date(year, time.January, 1); date.Year() == year; date = date.AddDate(0, 0, 1) {
		ordinal++
		iso := dateutil.ISOWeekOf(date)

		bucket := iso.Week
		switch {
		case iso.Year < year:
			bucket = WeekBucketPrevious
		case iso.Year > year:
			bucket = WeekBucketNext
		}

		info := DayInfo{
			Ordinal:    ordinal,
			Date:       date,
			Weekday:    iso.Weekday,
			Label:      dateutil.LabelOf(iso.Weekday),
			ISOWeek:    iso.Week,
			ISOYear:    iso.Year,
			WeekBucket: bucket,
			Holiday:    holidays[date],
		}
		info.Type = seedType(info)

		idx.days = append(idx.days, info)
		idx.byMonthDay[monthDay{date.Month(), date.Day()}] = ordinal
		idx.months[date.Month()] = extend(idx.months[date.Month()], ordinal)
		idx.weeks[bucket] = extend(idx.weeks[bucket], ordinal)

		mw, ok := idx.monthWeeks[date.Month()]
		if !ok {
			mw = make(map[int][]int, 6)
			idx.monthWeeks[date.Month()] = mw
		}
		mw[bucket] = append(mw[bucket], ordinal)
	}

	return idx
}

// seedType derives the default day type from calendar facts alone
func seedType(d DayInfo) DayType {
	switch {
	case d.IsWeekend():
		return DayTypeWeekend
	case d.IsHoliday():
		return DayTypeHoliday
	default:
		return DayTypeWorkdayHome
	}
}

func extend(r OrdinalRange, ordinal int) OrdinalRange {
	if r.First == 0 {
		r.First = ordinal
	}
	r.Last = ordinal
	return r
}

// Year returns the calendar year of the index
func (idx *YearIndex) Year() int {
	return idx.year
}

// Len returns the number of days in the year
func (idx *YearIndex) Len() int {
	return len(idx.days)
}

// ISOBounds returns the ISO week-year bounds of the index year
func (idx *YearIndex) ISOBounds() dateutil.ISOYearBounds {
	return idx.bounds
}

// Day returns the day with the given ordinal (1-based)
func (idx *YearIndex) Day(ordinal int) (DayInfo, error) {
	if ordinal < 1 || ordinal > len(idx.days) {
		return DayInfo{}, fmt.Errorf("%w: %d (year %d has %d days)",
			ErrOrdinalOutOfRange, ordinal, idx.year, len(idx.days))
	}
	return idx.days[ordinal-1], nil
}

// Ordinal returns the ordinal of month/day
func (idx *YearIndex) Ordinal(month time.Month, day int) (int, bool) {
	ordinal, ok := idx.byMonthDay[monthDay{month, day}]
	return ordinal, ok
}

// DayOf returns the day for month/day of the index year
func (idx *YearIndex) DayOf(month time.Month, day int) (DayInfo, error) {
	ordinal, ok := idx.Ordinal(month, day)
	if !ok {
		return DayInfo{}, fmt.Errorf("%w: %d-%02d-%02d", ErrDateOutOfYear, idx.year, int(month), day)
	}
	return idx.days[ordinal-1], nil
}

// OrdinalOf returns the ordinal of date, if it belongs to the index year
func (idx *YearIndex) OrdinalOf(date time.Time) (int, bool) {
	if date.Year() != idx.year {
		return 0, false
	}
	return idx.Ordinal(date.Month(), date.Day())
}

// DayAt returns the day for a date of the index year
func (idx *YearIndex) DayAt(date time.Time) (DayInfo, error) {
	ordinal, ok := idx.OrdinalOf(date)
	if !ok {
		return DayInfo{}, fmt.Errorf("%w: %s not in %d", ErrDateOutOfYear, date.Format("2006-01-02"), idx.year)
	}
	return idx.days[ordinal-1], nil
}

// Lookup parses a date token ("20240315", "2024-03-15", "15.03.2024") and
// returns the matching day.
func (idx *YearIndex) Lookup(token string) (DayInfo, error) {
	date, err := dateutil.ParseDate(token)
	if err != nil {
		return DayInfo{}, err
	}
	return idx.DayAt(date)
}

// Days returns a copy of all days in ordinal order
func (idx *YearIndex) Days() []DayInfo {
	out := make([]DayInfo, len(idx.days))
	copy(out, idx.days)
	return out
}

// Filter returns the days matching the given weekdays, in ordinal order
func (idx *YearIndex) Filter(weekdays map[time.Weekday]bool) []DayInfo {
	var out []DayInfo
	for _, d := range idx.days {
		if weekdays[d.Date.Weekday()] {
			out = append(out, d)
		}
	}
	return out
}

// Month returns the ordinal range of month
func (idx *YearIndex) Month(month time.Month) OrdinalRange {
	return idx.months[month]
}

// Week returns the ordinal range of an ISO week bucket of the year.
// Bucket 0 and 99 hold the fragments of the neighbouring ISO years.
func (idx *YearIndex) Week(bucket int) OrdinalRange {
	return idx.weeks[bucket]
}

// Weeks returns the week buckets present in the year, ascending
func (idx *YearIndex) Weeks() []int {
	weeks := make([]int, 0, len(idx.weeks))
	for w := range idx.weeks {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)
	return weeks
}

// MonthWeeks returns the ordinals of month grouped by week bucket
func (idx *YearIndex) MonthWeeks(month time.Month) map[int][]int {
	src := idx.monthWeeks[month]
	out := make(map[int][]int, len(src))
	for w, ordinals := range src {
		out[w] = append([]int(nil), ordinals...)
	}
	return out
}

// Holidays returns the year's holidays sorted by date
func (idx *YearIndex) Holidays() []Holiday {
	return append([]Holiday(nil), idx.holidays...)
}
