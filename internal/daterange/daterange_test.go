package daterange

import (
	"errors"
	"testing"
	"time"

	"github.com/username/worktime-calendar/pkg/dateutil"
)

// Friday afternoon
var testNow = time.Date(2024, time.March, 15, 14, 30, 0, 0, time.UTC)

func TestDates(t *testing.T) {
	tests := []struct {
		name      string
		expr      string
		wantCount int
		wantFirst time.Time
		wantLast  time.Time
	}{
		{"explicit week", "20240101-20240107", 7, dateutil.Date(2024, 1, 1), dateutil.Date(2024, 1, 7)},
		{"reversed range", "20240107-20240101", 7, dateutil.Date(2024, 1, 1), dateutil.Date(2024, 1, 7)},
		{"now", "now", 1, dateutil.Date(2024, 3, 15), dateutil.Date(2024, 3, 15)},
		{"empty means today", "", 1, dateutil.Date(2024, 3, 15), dateutil.Date(2024, 3, 15)},
		{"single token runs to today", "20240310", 6, dateutil.Date(2024, 3, 10), dateutil.Date(2024, 3, 15)},
		{"overlapping segments", "20240310;20240312;;", 6, dateutil.Date(2024, 3, 10), dateutil.Date(2024, 3, 15)},
		{"last week until yesterday", "-1w--1d", 11, dateutil.Date(2024, 3, 4), dateutil.Date(2024, 3, 14)},
		{"weekday suffix", "-4wMoFr", 10, dateutil.Date(2024, 2, 12), dateutil.Date(2024, 3, 15)},
		{"next month start", "+1m", 18, dateutil.Date(2024, 3, 15), dateutil.Date(2024, 4, 1)},
		{"year start", "-0y", 75, dateutil.Date(2024, 1, 1), dateutil.Date(2024, 3, 15)},
		{"long units", "-2days-today", 3, dateutil.Date(2024, 3, 13), dateutil.Date(2024, 3, 15)},
		{"natural phrase", "yesterday-today", 2, dateutil.Date(2024, 3, 14), dateutil.Date(2024, 3, 15)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dates, err := Dates(tt.expr, testNow)
			if err != nil {
				t.Fatalf("Dates(%q) error = %v", tt.expr, err)
			}
			if len(dates) != tt.wantCount {
				t.Fatalf("Dates(%q) = %d dates, want %d", tt.expr, len(dates), tt.wantCount)
			}
			if !dates[0].Equal(tt.wantFirst) || !dates[len(dates)-1].Equal(tt.wantLast) {
				t.Errorf("Dates(%q) = %s..%s, want %s..%s", tt.expr,
					dates[0].Format("2006-01-02"), dates[len(dates)-1].Format("2006-01-02"),
					tt.wantFirst.Format("2006-01-02"), tt.wantLast.Format("2006-01-02"))
			}
			for i := 1; i < len(dates); i++ {
				if !dates[i-1].Before(dates[i]) {
					t.Fatalf("Dates(%q) not sorted or not unique at %d", tt.expr, i)
				}
			}
		})
	}
}

func TestDates_WeekdaySuffixRestricts(t *testing.T) {
	dates, err := Dates("-4wMoFr", testNow)
	if err != nil {
		t.Fatalf("Dates() error = %v", err)
	}
	for _, d := range dates {
		if wd := d.Weekday(); wd != time.Monday && wd != time.Friday {
			t.Errorf("Dates(-4wMoFr) contains %s", d.Format("2006-01-02 Mon"))
		}
	}
}

func TestDates_Extra(t *testing.T) {
	extra := Range{From: dateutil.Date(2024, 1, 1), To: dateutil.Date(2024, 1, 3)}
	dates, err := Dates("now", testNow, extra)
	if err != nil {
		t.Fatalf("Dates() error = %v", err)
	}
	if len(dates) != 4 {
		t.Errorf("Dates(now, extra) = %d dates, want 4", len(dates))
	}
	if !dates[0].Equal(dateutil.Date(2024, 1, 1)) {
		t.Errorf("Dates(now, extra)[0] = %s, want 2024-01-01", dates[0].Format("2006-01-02"))
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, expr := range []string{
		"2024011",
		"20241301",
		"-4x",
		"-4wXx",
		"20240101-",
		"now;+3q",
		"bogus",
		"xyzzy plugh",
		"yesterday-bogus",
	} {
		t.Run(expr, func(t *testing.T) {
			if _, err := Parse(expr, testNow); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Parse(%q) error = %v, want ErrInvalidToken", expr, err)
			}
		})
	}
}

func TestParse_Segments(t *testing.T) {
	ranges, err := Parse("20240101-20240131; -1wMo", testNow)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(ranges) != 2 {
		t.Fatalf("Parse() = %d ranges, want 2", len(ranges))
	}
	if len(ranges[0].Weekdays) != 0 {
		t.Errorf("ranges[0].Weekdays = %v, want none", ranges[0].Weekdays)
	}
	if !ranges[1].Weekdays[time.Monday] || len(ranges[1].Weekdays) != 1 {
		t.Errorf("ranges[1].Weekdays = %v, want only Monday", ranges[1].Weekdays)
	}
	if !ranges[1].From.Equal(dateutil.Date(2024, 3, 4)) {
		t.Errorf("ranges[1].From = %s, want 2024-03-04", ranges[1].From.Format("2006-01-02"))
	}
}
