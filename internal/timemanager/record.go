package timemanager

import (
	"time"

	"github.com/username/worktime-calendar/internal/annotation"
	"github.com/username/worktime-calendar/internal/calendar"
)

// DayRecord is the computed work-time record of one date
type DayRecord struct {
	Date      time.Time
	Ordinal   int
	Weekday   int    // 1=Monday..7=Sunday
	Label     string // "Mo".."So"
	ISOWeek   int
	Holiday   string
	Type      calendar.DayType
	WorkHours float64
	Duration  *float64 // nil when the day type tracks no duration
	Overtime  *float64
	TotalWork *float64
	Notes     []string
	Lines     []string
	Tags      []string
	Todos     []string
}

func newRecord(d calendar.DayInfo) DayRecord {
	return DayRecord{
		Date:    d.Date,
		Ordinal: d.Ordinal,
		Weekday: d.Weekday,
		Label:   d.Label,
		ISOWeek: d.ISOWeek,
		Holiday: d.Holiday,
		Type:    d.Type,
	}
}

// apply merges a patch into the record. Merging is commutative except for
// the order of text lists, which follows line order.
func (r *DayRecord) apply(p annotation.Patch) {
	r.Type = calendar.Max(r.Type, p.Type)
	r.Duration = addHours(r.Duration, p.Duration)
	r.TotalWork = addHours(r.TotalWork, p.TotalWork)

	if p.Note != "" {
		r.Notes = appendUnique(r.Notes, p.Note)
	}
	r.Lines = appendUnique(r.Lines, p.Raw)
	for _, tag := range p.Tags {
		r.Tags = appendUnique(r.Tags, tag)
	}
	for _, todo := range p.Todos {
		r.Todos = appendUnique(r.Todos, todo)
	}
}

// compute derives duration and overtime from the merged state
func (r *DayRecord) compute() {
	switch {
	case r.Type == calendar.DayTypeFlextime:
		zero, overtime := 0.0, -r.WorkHours
		r.Duration, r.Overtime = &zero, &overtime
	case !r.Type.HasDuration():
		r.Duration, r.Overtime = nil, nil
	default:
		// total: replaces the summed intervals; nothing worked stays nil.
		var duration float64
		switch {
		case r.TotalWork != nil:
			duration = *r.TotalWork
		case r.Duration != nil:
			duration = *r.Duration
		default:
			r.Duration, r.Overtime = nil, nil
			return
		}
		overtime := duration - r.WorkHours
		r.Duration, r.Overtime = &duration, &overtime
	}
}

// IsWorking reports whether nominal work-hours are owed on the day
func (r DayRecord) IsWorking() bool {
	return r.Type.IsWorking()
}

// clone returns a deep copy so callers cannot modify engine state
func (r DayRecord) clone() DayRecord {
	r.Duration = copyHours(r.Duration)
	r.Overtime = copyHours(r.Overtime)
	r.TotalWork = copyHours(r.TotalWork)
	r.Notes = copyStrings(r.Notes)
	r.Lines = copyStrings(r.Lines)
	r.Tags = copyStrings(r.Tags)
	r.Todos = copyStrings(r.Todos)
	return r
}

func addHours(sum, v *float64) *float64 {
	if v == nil {
		return sum
	}
	total := *v
	if sum != nil {
		total += *sum
	}
	return &total
}

func copyHours(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
