package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/username/worktime-calendar/pkg/dateutil"
)

// DayType represents the type of day
type DayType int

const (
	DayTypeWorkday DayType = iota + 1
	DayTypeWorkdayHome
	DayTypeWeekend
	DayTypeHoliday
	DayTypeVacation
	DayTypeFlextime
	DayTypeParttime
)

var (
	// ErrOrdinalOutOfRange is returned for ordinals outside 1..days-in-year
	ErrOrdinalOutOfRange = errors.New("ordinal out of range")
	// ErrDateOutOfYear is returned when a date does not belong to the index year
	ErrDateOutOfYear = errors.New("date outside calendar year")
)

var dayTypeNames = map[DayType]string{
	DayTypeWorkday:     "workday",
	DayTypeWorkdayHome: "workday_home",
	DayTypeWeekend:     "weekend",
	DayTypeHoliday:     "holiday",
	DayTypeVacation:    "vacation",
	DayTypeFlextime:    "flextime",
	DayTypeParttime:    "parttime",
}

// Merge precedence, highest wins. Holidays and weekends are calendar facts
// and outrank every annotation.
var dayTypeRank = map[DayType]int{
	DayTypeWorkdayHome: 1,
	DayTypeWorkday:     2,
	DayTypeParttime:    3,
	DayTypeFlextime:    4,
	DayTypeVacation:    5,
	DayTypeWeekend:     6,
	DayTypeHoliday:     7,
}

// AllDayTypes lists the day types in declaration order
func AllDayTypes() []DayType {
	return []DayType{
		DayTypeWorkday,
		DayTypeWorkdayHome,
		DayTypeWeekend,
		DayTypeHoliday,
		DayTypeVacation,
		DayTypeFlextime,
		DayTypeParttime,
	}
}

func (t DayType) String() string {
	if name, ok := dayTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("DayType(%d)", int(t))
}

// Valid reports whether t is one of the declared day types
func (t DayType) Valid() bool {
	_, ok := dayTypeNames[t]
	return ok
}

// Rank returns the merge precedence of the day type (0 for invalid types)
func (t DayType) Rank() int {
	return dayTypeRank[t]
}

// Outranks reports whether t wins over other when both target one date
func (t DayType) Outranks(other DayType) bool {
	return t.Rank() > other.Rank()
}

// Max returns the higher-precedence day type of a and b
func Max(a, b DayType) DayType {
	if b.Outranks(a) {
		return b
	}
	return a
}

// IsWorking reports whether nominal work-hours are owed on such a day
func (t DayType) IsWorking() bool {
	return t == DayTypeWorkday || t == DayTypeWorkdayHome
}

// HasDuration reports whether worked duration is tracked for the day type
func (t DayType) HasDuration() bool {
	switch t {
	case DayTypeHoliday, DayTypeWeekend, DayTypeVacation, DayTypeParttime:
		return false
	}
	return true
}

// ParseDayType parses a day type name as used in configuration files
func ParseDayType(name string) (DayType, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, "-", "_")
	all := AllDayTypes()
	names := make([]string, 0, len(all))
	for _, t := range all {
		if t.String() == key {
			return t, nil
		}
		names = append(names, t.String())
	}
	return 0, fmt.Errorf("unknown day type %q (want one of %s)", name, strings.Join(names, ", "))
}

// DayInfo represents information about a specific day
type DayInfo struct {
	Ordinal    int
	Date       time.Time
	Weekday    int    // 1=Monday..7=Sunday
	Label      string // "Mo".."So"
	ISOWeek    int
	ISOYear    int
	WeekBucket int // ISO week, 0 or 99 for fragments of the neighbouring ISO years
	Holiday    string
	Type       DayType
}

// IsWeekend reports whether the day is a Saturday or Sunday
func (d DayInfo) IsWeekend() bool {
	return dateutil.IsWeekend(d.Date)
}

// IsHoliday reports whether the day carries a holiday name
func (d DayInfo) IsHoliday() bool {
	return d.Holiday != ""
}

// OrdinalRange is an inclusive range of ordinals
type OrdinalRange struct {
	First int
	Last  int
}

// Len returns the number of ordinals in the range
func (r OrdinalRange) Len() int {
	if r.First == 0 || r.Last < r.First {
		return 0
	}
	return r.Last - r.First + 1
}

// Contains reports whether ordinal lies inside the range
func (r OrdinalRange) Contains(ordinal int) bool {
	return r.Len() > 0 && ordinal >= r.First && ordinal <= r.Last
}
