package timemanager

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/username/worktime-calendar/internal/annotation"
	"github.com/username/worktime-calendar/internal/calendar"
	"github.com/username/worktime-calendar/pkg/dateutil"
)

var scenarioLines = []string{
	"@VACA 20240902-20240910",
	"@WORK Do 1000-1200 1300-1600",
}

func newTestEngine(t *testing.T, lines ...string) *Engine {
	t.Helper()
	e, err := NewEngine(Options{Year: 2024, WorkHours: 8, Logger: zap.NewNop()}, lines)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

func hours(v *float64) string {
	if v == nil {
		return "nil"
	}
	return time.Duration(*v * float64(time.Hour)).String()
}

func TestEngine_Scenario(t *testing.T) {
	e := newTestEngine(t, scenarioLines...)

	tests := []struct {
		name         string
		month        time.Month
		day          int
		wantType     calendar.DayType
		wantDuration *float64
		wantOvertime *float64
	}{
		{"ordinary Thursday", time.March, 14, calendar.DayTypeWorkday, ptr(5), ptr(-3)},
		{"Ascension Thursday", time.May, 9, calendar.DayTypeHoliday, nil, nil},
		{"Corpus Christi Thursday", time.May, 30, calendar.DayTypeHoliday, nil, nil},
		{"Unity Day Thursday", time.October, 3, calendar.DayTypeHoliday, nil, nil},
		{"Thursday in vacation", time.September, 5, calendar.DayTypeVacation, nil, nil},
		{"vacation Monday", time.September, 2, calendar.DayTypeVacation, nil, nil},
		{"vacation Tuesday after weekend", time.September, 10, calendar.DayTypeVacation, nil, nil},
		{"weekend inside vacation", time.September, 7, calendar.DayTypeWeekend, nil, nil},
		{"unannotated Friday", time.March, 15, calendar.DayTypeWorkdayHome, nil, nil},
		{"Good Friday", time.March, 29, calendar.DayTypeHoliday, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := e.DayRecord(tt.month, tt.day)
			if err != nil {
				t.Fatalf("DayRecord() error = %v", err)
			}
			if r.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", r.Type, tt.wantType)
			}
			if hours(r.Duration) != hours(tt.wantDuration) {
				t.Errorf("Duration = %s, want %s", hours(r.Duration), hours(tt.wantDuration))
			}
			if hours(r.Overtime) != hours(tt.wantOvertime) {
				t.Errorf("Overtime = %s, want %s", hours(r.Overtime), hours(tt.wantOvertime))
			}
		})
	}

	workdays := 0
	for _, r := range e.Days() {
		if r.Type == calendar.DayTypeWorkday {
			workdays++
			if r.Label != "Do" {
				t.Errorf("%s is WORKDAY but not a Thursday", r.Date.Format("2006-01-02"))
			}
		}
	}
	// 52 Thursdays, four of them holidays, one in the vacation.
	if workdays != 47 {
		t.Errorf("WORKDAY records = %d, want 47", workdays)
	}

	if len(e.Warnings()) != 0 {
		t.Errorf("Warnings() = %v, want none", e.Warnings())
	}
}

func TestEngine_OneRecordPerDate(t *testing.T) {
	e := newTestEngine(t, scenarioLines...)
	days := e.Days()
	if len(days) != 366 {
		t.Fatalf("len(Days()) = %d, want 366", len(days))
	}
	for i, r := range days {
		if r.Ordinal != i+1 {
			t.Fatalf("Days()[%d].Ordinal = %d", i, r.Ordinal)
		}
		if want := dateutil.Date(2024, 1, 1).AddDate(0, 0, i); !r.Date.Equal(want) {
			t.Fatalf("Days()[%d].Date = %s, want %s", i, r.Date, want)
		}
	}
}

func TestEngine_Idempotent(t *testing.T) {
	first := newTestEngine(t, scenarioLines...)
	second := newTestEngine(t, scenarioLines...)

	if !reflect.DeepEqual(first.Days(), second.Days()) {
		t.Error("two engines built from the same input differ")
	}
}

func TestEngine_MergeOrderIndependent(t *testing.T) {
	lines := []string{
		"@VACA 20240902-20240910",
		"@WORK Do 1000-1200 1300-1600",
		"@FLEX 20240912",
		"@PART 20240701-20240705",
		"@HOME Mo 0800-1200",
		"@WORK 20240708 hours:6 total:4",
		"@WORK 20240708 hours:7",
	}
	reversed := make([]string, len(lines))
	for i, l := range lines {
		reversed[len(lines)-1-i] = l
	}

	a := newTestEngine(t, lines...).Days()
	b := newTestEngine(t, reversed...).Days()

	for i := range a {
		if a[i].Type != b[i].Type ||
			hours(a[i].Duration) != hours(b[i].Duration) ||
			hours(a[i].Overtime) != hours(b[i].Overtime) ||
			hours(a[i].TotalWork) != hours(b[i].TotalWork) ||
			a[i].WorkHours != b[i].WorkHours {
			t.Errorf("%s differs by line order: %+v vs %+v", a[i].Date.Format("2006-01-02"), a[i], b[i])
		}
	}
}

func TestEngine_DayTypes(t *testing.T) {
	tests := []struct {
		name         string
		line         string
		day          int // of March 2024
		wantType     calendar.DayType
		wantDuration *float64
		wantOvertime *float64
	}{
		{"flextime ignores intervals", "@FLEX 20240315 1000-1200", 15, calendar.DayTypeFlextime, ptr(0), ptr(-8)},
		{"parttime has no duration", "@PART 20240315 1000-1200", 15, calendar.DayTypeParttime, nil, nil},
		{"total overrides intervals", "@WORK 20240315 1000-1200 total:7,5", 15, calendar.DayTypeWorkday, ptr(7.5), ptr(-0.5)},
		{"vacation cannot override a holiday", "@VACA 20240329", 29, calendar.DayTypeHoliday, nil, nil},
		{"home office", "@HOME 20240315 0800-1630", 15, calendar.DayTypeWorkdayHome, ptr(8.5), ptr(0.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, tt.line)
			r, err := e.RecordAt(dateutil.Date(2024, time.March, tt.day))
			if err != nil {
				t.Fatalf("RecordAt() error = %v", err)
			}
			if r.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", r.Type, tt.wantType)
			}
			if hours(r.Duration) != hours(tt.wantDuration) {
				t.Errorf("Duration = %s, want %s", hours(r.Duration), hours(tt.wantDuration))
			}
			if hours(r.Overtime) != hours(tt.wantOvertime) {
				t.Errorf("Overtime = %s, want %s", hours(r.Overtime), hours(tt.wantOvertime))
			}
		})
	}
}

func TestEngine_TotalsSummedAcrossLines(t *testing.T) {
	e := newTestEngine(t,
		"@WORK 20240315 total:3 Kunde",
		"@HOME 20240315 total:2 todo[Bericht]",
	)
	r, err := e.DayRecord(time.March, 15)
	if err != nil {
		t.Fatalf("DayRecord() error = %v", err)
	}
	if r.Type != calendar.DayTypeWorkday {
		t.Errorf("Type = %v, want workday", r.Type)
	}
	if hours(r.Duration) != hours(ptr(5)) {
		t.Errorf("Duration = %s, want 5h", hours(r.Duration))
	}
	if len(r.Lines) != 2 || len(r.Notes) != 1 || len(r.Todos) != 1 {
		t.Errorf("Lines/Notes/Todos = %v/%v/%v, want 2/1/1 entries", r.Lines, r.Notes, r.Todos)
	}
	if !reflect.DeepEqual(r.Tags, []string{"WORK", "HOME"}) {
		t.Errorf("Tags = %v, want [WORK HOME]", r.Tags)
	}
}

func TestEngine_WorkHoursForwardFill(t *testing.T) {
	e := newTestEngine(t,
		"@WORK 20240701 hours:6",
		"@WORK 20240701 hours:7",
		"@WORK 20241001 hours:4",
	)

	tests := []struct {
		month time.Month
		day   int
		want  float64
	}{
		{time.January, 1, 8},
		{time.June, 30, 8},
		{time.July, 1, 7},
		{time.September, 30, 7},
		{time.October, 1, 4},
		{time.December, 31, 4},
	}

	for _, tt := range tests {
		r, err := e.DayRecord(tt.month, tt.day)
		if err != nil {
			t.Fatalf("DayRecord(%v, %d) error = %v", tt.month, tt.day, err)
		}
		if r.WorkHours != tt.want {
			t.Errorf("DayRecord(%v, %d).WorkHours = %v, want %v", tt.month, tt.day, r.WorkHours, tt.want)
		}
	}

	// 2024-07-01 is a Monday with nothing recorded: no duration, no overtime.
	r, _ := e.DayRecord(time.July, 1)
	if r.Duration != nil || r.Overtime != nil {
		t.Errorf("2024-07-01 Duration/Overtime = %s/%s, want nil/nil", hours(r.Duration), hours(r.Overtime))
	}
}

func TestEngine_Warnings(t *testing.T) {
	e := newTestEngine(t,
		"@FOO 20240315",
		"20240316 Ausflug",
		"@WORK Mo,Xx",
	)

	warnings := e.Warnings()
	if len(warnings) < 3 {
		t.Fatalf("Warnings() = %v, want at least 3", warnings)
	}
	if warnings[0].Line != "@FOO 20240315" {
		t.Errorf("Warnings()[0].Line = %q, want %q", warnings[0].Line, "@FOO 20240315")
	}

	// The unresolved line leaves the day untouched.
	r, _ := e.DayRecord(time.March, 15)
	if r.Type != calendar.DayTypeWorkdayHome || len(r.Lines) != 0 {
		t.Errorf("2024-03-15 = %v with lines %v, want untouched workday_home", r.Type, r.Lines)
	}
}

func TestEngine_OtherYearLinesAreQuiet(t *testing.T) {
	lines := []string{
		"@VACA 20250102-20250103",
		"@WORK 20250107 Mo 1000-1200",
		"@WORK 20240315 1000-1200",
	}
	e := newTestEngine(t, lines...)

	if len(e.Warnings()) != 0 {
		t.Errorf("Warnings() = %v, want none", e.Warnings())
	}
	for _, r := range e.Days() {
		if len(r.Lines) > 0 && r.Ordinal != 75 {
			t.Errorf("%s touched by %v, want only 2024-03-15", r.Date.Format("2006-01-02"), r.Lines)
		}
	}
}

func TestNewEngine_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"year too early", Options{Year: 1500, WorkHours: 8}},
		{"year too late", Options{Year: 10000, WorkHours: 8}},
		{"zero work hours", Options{Year: 2024, WorkHours: 0}},
		{"too many work hours", Options{Year: 2024, WorkHours: 25}},
		{"empty tag table", Options{Year: 2024, WorkHours: 8, Tags: annotation.TagTable{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngine(tt.opts, nil)
			if !errors.Is(err, ErrInvalidOptions) {
				t.Errorf("NewEngine() error = %v, want ErrInvalidOptions", err)
			}
		})
	}
}

func TestEngine_SharedCacheConcurrent(t *testing.T) {
	cache := calendar.NewCache(zap.NewNop())
	workHours := []float64{8, 6, 7.5, 4}
	engines := make([]*Engine, len(workHours))
	errs := make([]error, len(workHours))

	var wg sync.WaitGroup
	for i, h := range workHours {
		wg.Add(1)
		go func(i int, h float64) {
			defer wg.Done()
			engines[i], errs[i] = NewEngine(Options{Year: 2024, WorkHours: h, Cache: cache}, scenarioLines)
		}(i, h)
	}
	wg.Wait()

	for i, e := range engines {
		if errs[i] != nil {
			t.Fatalf("NewEngine(%v) error = %v", workHours[i], errs[i])
		}
		r, _ := e.DayRecord(time.March, 14)
		if r.WorkHours != workHours[i] {
			t.Errorf("engine %d WorkHours = %v, want %v", i, r.WorkHours, workHours[i])
		}
		if want := 5 - workHours[i]; r.Overtime == nil || *r.Overtime != want {
			t.Errorf("engine %d Overtime = %s, want %v", i, hours(r.Overtime), want)
		}
		if e.Index() != engines[0].Index() {
			t.Errorf("engine %d does not share the cached index", i)
		}
	}
	if cache.Len() != 1 {
		t.Errorf("cache.Len() = %d, want 1", cache.Len())
	}
}

func TestEngine_Accessors(t *testing.T) {
	e := newTestEngine(t, scenarioLines...)

	if e.Year() != 2024 || e.WorkHours() != 8 {
		t.Errorf("Year(), WorkHours() = %d, %v, want 2024, 8", e.Year(), e.WorkHours())
	}

	if got := e.Nested()[2024][time.March][15].Ordinal; got != 75 {
		t.Errorf("Nested()[2024][March][15].Ordinal = %d, want 75", got)
	}

	selected := e.Select([]time.Time{dateutil.Date(2024, 3, 15), dateutil.Date(2025, 1, 1)})
	if len(selected) != 1 || selected[0].Ordinal != 75 {
		t.Errorf("Select() = %d records, want only 2024-03-15", len(selected))
	}

	if _, err := e.Day(367); !errors.Is(err, calendar.ErrOrdinalOutOfRange) {
		t.Errorf("Day(367) error = %v, want ErrOrdinalOutOfRange", err)
	}
	if _, err := e.DayRecord(time.February, 30); !errors.Is(err, calendar.ErrDateOutOfYear) {
		t.Errorf("DayRecord(February, 30) error = %v, want ErrDateOutOfYear", err)
	}

	// Returned records are copies.
	r, _ := e.DayRecord(time.March, 14)
	*r.Duration = 100
	again, _ := e.DayRecord(time.March, 14)
	if *again.Duration != 5 {
		t.Errorf("engine state changed through a returned record: Duration = %v", *again.Duration)
	}
}

func ptr(v float64) *float64 { return &v }
