package annotation

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/username/worktime-calendar/internal/calendar"
)

// DefaultDayType is assigned to lines without a day-type marker
const DefaultDayType = calendar.DayTypeWorkday

var tagNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// TagTable maps marker names (without '@') to day types.
// Lookups are case-insensitive.
type TagTable map[string]calendar.DayType

// DefaultTags returns the built-in marker table
func DefaultTags() TagTable {
	return TagTable{
		"WORK": calendar.DayTypeWorkday,
		"HOME": calendar.DayTypeWorkdayHome,
		"VACA": calendar.DayTypeVacation,
		"FLEX": calendar.DayTypeFlextime,
		"PART": calendar.DayTypeParttime,
		"HOLI": calendar.DayTypeHoliday,
	}
}

// ParseTagTable builds a table from marker → day-type name pairs,
// as they appear in configuration files.
func ParseTagTable(names map[string]string) (TagTable, error) {
	table := make(TagTable, len(names))
	for tag, name := range names {
		dt, err := calendar.ParseDayType(name)
		if err != nil {
			return nil, fmt.Errorf("tag %q: %w", tag, err)
		}
		table[tag] = dt
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// Validate checks that the table is usable by a parser
func (t TagTable) Validate() error {
	if len(t) == 0 {
		return errors.New("tag table is empty")
	}

	seen := make(map[string]calendar.DayType, len(t))
	for _, tag := range t.Names() {
		dt := t[tag]
		if !tagNamePattern.MatchString(tag) {
			return fmt.Errorf("invalid tag name %q: only letters, digits and '_' are allowed", tag)
		}
		if !dt.Valid() {
			return fmt.Errorf("tag %q: invalid day type %d", tag, int(dt))
		}
		key := strings.ToUpper(tag)
		if prev, ok := seen[key]; ok && prev != dt {
			return fmt.Errorf("tag %q maps to both %s and %s", key, prev, dt)
		}
		seen[key] = dt
	}

	return nil
}

// Lookup resolves a marker name, ignoring case
func (t TagTable) Lookup(tag string) (calendar.DayType, bool) {
	if dt, ok := t[tag]; ok {
		return dt, true
	}
	for name, dt := range t {
		if strings.EqualFold(name, tag) {
			return dt, true
		}
	}
	return 0, false
}

// Names returns the marker names sorted
func (t TagTable) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
