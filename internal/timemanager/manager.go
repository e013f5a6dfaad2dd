package timemanager

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/username/worktime-calendar/internal/annotation"
	"github.com/username/worktime-calendar/internal/calendar"
)

const (
	// MinYear is the first year of the Gregorian Easter computation
	MinYear = 1583
	// MaxYear keeps dates within four-digit tokens
	MaxYear = 9999
)

// ErrInvalidOptions is returned by NewEngine for unusable options
var ErrInvalidOptions = errors.New("invalid engine options")

// Options configures an Engine
type Options struct {
	Year      int
	WorkHours float64             // nominal hours per working day
	Tags      annotation.TagTable // nil means annotation.DefaultTags()
	Cache     *calendar.Cache     // nil means a private index
	Logger    *zap.Logger
}

// Engine holds the computed records of one calendar year.
// It is immutable after NewEngine returns.
type Engine struct {
	year      int
	workHours float64
	index     *calendar.YearIndex
	records   []DayRecord // ordinal-1
	warnings  []annotation.Warning
	logger    *zap.Logger
}

// NewEngine builds the year's records from calendar facts and annotation
// lines. Problems in lines are collected as warnings, never returned.
func NewEngine(opts Options, lines []string) (*Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if opts.Year < MinYear || opts.Year > MaxYear {
		return nil, fmt.Errorf("%w: year %d outside %d..%d", ErrInvalidOptions, opts.Year, MinYear, MaxYear)
	}
	if opts.WorkHours <= 0 || opts.WorkHours > 24 {
		return nil, fmt.Errorf("%w: work hours %v outside (0, 24]", ErrInvalidOptions, opts.WorkHours)
	}
	tags := opts.Tags
	if tags == nil {
		tags = annotation.DefaultTags()
	}

	var index *calendar.YearIndex
	if opts.Cache != nil {
		index = opts.Cache.Index(opts.Year)
	} else {
		index = calendar.NewYearIndex(opts.Year)
	}

	parser, err := annotation.NewParser(tags, index, logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}

	e := &Engine{
		year:      opts.Year,
		workHours: opts.WorkHours,
		index:     index,
		records:   make([]DayRecord, 0, index.Len()),
		logger:    logger,
	}

	// 1. Seed every day from calendar facts
	for _, d := range index.Days() {
		e.records = append(e.records, newRecord(d))
	}

	// 2. Apply annotation lines
	declared := make(map[int]float64)
	patched := 0
	for _, raw := range lines {
		line := parser.Parse(raw)
		e.warnings = append(e.warnings, line.Warnings...)

		for _, patch := range line.Patches() {
			ordinal, ok := index.OrdinalOf(patch.Date)
			if !ok {
				continue
			}
			e.records[ordinal-1].apply(patch)
			patched++

			if patch.WorkHours != nil && *patch.WorkHours > declared[ordinal] {
				declared[ordinal] = *patch.WorkHours
			}
		}
	}

	// 3. Forward-fill nominal work-hours
	hours := opts.WorkHours
	for i := range e.records {
		if v, ok := declared[i+1]; ok {
			hours = v
		}
		e.records[i].WorkHours = hours
	}

	// 4. Derive duration and overtime
	for i := range e.records {
		e.records[i].compute()
	}

	logger.Info("Calendar computed",
		zap.Int("year", e.year),
		zap.Float64("work_hours", e.workHours),
		zap.Int("lines", len(lines)),
		zap.Int("patches", patched),
		zap.Int("holidays", len(index.Holidays())),
		zap.Int("warnings", len(e.warnings)))

	return e, nil
}

// Year returns the calendar year
func (e *Engine) Year() int {
	return e.year
}

// WorkHours returns the default nominal work-hours
func (e *Engine) WorkHours() float64 {
	return e.workHours
}

// Index returns the year index the engine was built on
func (e *Engine) Index() *calendar.YearIndex {
	return e.index
}

// Warnings returns the problems found in annotation lines, in line order
func (e *Engine) Warnings() []annotation.Warning {
	return append([]annotation.Warning(nil), e.warnings...)
}

// Day returns the record with the given ordinal (1-based)
func (e *Engine) Day(ordinal int) (DayRecord, error) {
	if ordinal < 1 || ordinal > len(e.records) {
		return DayRecord{}, fmt.Errorf("%w: %d", calendar.ErrOrdinalOutOfRange, ordinal)
	}
	return e.records[ordinal-1].clone(), nil
}

// DayRecord returns the record for month/day
func (e *Engine) DayRecord(month time.Month, day int) (DayRecord, error) {
	ordinal, ok := e.index.Ordinal(month, day)
	if !ok {
		return DayRecord{}, fmt.Errorf("%w: %d-%02d-%02d", calendar.ErrDateOutOfYear, e.year, int(month), day)
	}
	return e.records[ordinal-1].clone(), nil
}

// RecordAt returns the record for a date of the engine's year
func (e *Engine) RecordAt(date time.Time) (DayRecord, error) {
	ordinal, ok := e.index.OrdinalOf(date)
	if !ok {
		return DayRecord{}, fmt.Errorf("%w: %s not in %d", calendar.ErrDateOutOfYear, date.Format("2006-01-02"), e.year)
	}
	return e.records[ordinal-1].clone(), nil
}

// Days returns all records in ordinal order
func (e *Engine) Days() []DayRecord {
	out := make([]DayRecord, len(e.records))
	for i, r := range e.records {
		out[i] = r.clone()
	}
	return out
}

// Nested returns the records keyed by year, month and day of month
func (e *Engine) Nested() map[int]map[time.Month]map[int]DayRecord {
	months := make(map[time.Month]map[int]DayRecord, 12)
	for _, r := range e.records {
		m := r.Date.Month()
		if months[m] == nil {
			months[m] = make(map[int]DayRecord, 31)
		}
		months[m][r.Date.Day()] = r.clone()
	}
	return map[int]map[time.Month]map[int]DayRecord{e.year: months}
}

// Select returns the records for dates, skipping dates of other years
func (e *Engine) Select(dates []time.Time) []DayRecord {
	out := make([]DayRecord, 0, len(dates))
	for _, date := range dates {
		if ordinal, ok := e.index.OrdinalOf(date); ok {
			out = append(out, e.records[ordinal-1].clone())
		}
	}
	return out
}
