package timemanager

import (
	"fmt"
	"time"

	"github.com/username/worktime-calendar/internal/calendar"
)

// PeriodStats aggregates the records of a month or a whole year
type PeriodStats struct {
	Days        int
	ByWeekday   [7]int // 0=Mo..6=So
	ByType      map[calendar.DayType]int
	Holidays    []string // "Karfreitag (Fr)"
	Duration    float64  // worked hours
	Overtime    float64
	TargetHours float64 // nominal hours of working days
}

// YearStats holds per-month and whole-year statistics
type YearStats struct {
	Year   int
	Months [12]PeriodStats
	Total  PeriodStats
}

// Month returns the statistics of month
func (s *YearStats) Month(month time.Month) PeriodStats {
	return s.Months[month-1]
}

func (p *PeriodStats) add(r DayRecord) {
	if p.ByType == nil {
		p.ByType = make(map[calendar.DayType]int)
	}

	p.Days++
	p.ByWeekday[r.Weekday-1]++
	p.ByType[r.Type]++

	if r.Holiday != "" {
		p.Holidays = append(p.Holidays, fmt.Sprintf("%s (%s)", r.Holiday, r.Label))
	}
	if r.Duration != nil {
		p.Duration += *r.Duration
	}
	if r.Overtime != nil {
		p.Overtime += *r.Overtime
	}
	if r.IsWorking() {
		p.TargetHours += r.WorkHours
	}
}

// YearStats computes statistics over all records
func (e *Engine) YearStats() *YearStats {
	stats := &YearStats{Year: e.year}
	for _, r := range e.records {
		stats.Months[r.Date.Month()-1].add(r)
		stats.Total.add(r)
	}
	return stats
}
