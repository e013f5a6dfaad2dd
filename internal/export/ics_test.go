package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	ical "github.com/emersion/go-ical"
	"go.uber.org/zap"

	"github.com/username/worktime-calendar/internal/timemanager"
	"github.com/username/worktime-calendar/pkg/dateutil"
)

func buildRecords(t *testing.T, lines ...string) []timemanager.DayRecord {
	t.Helper()
	e, err := timemanager.NewEngine(timemanager.Options{Year: 2024, WorkHours: 8, Logger: zap.NewNop()}, lines)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e.Days()
}

func TestEvents(t *testing.T) {
	records := buildRecords(t,
		"@VACA 20240902-20240910 Sommerurlaub",
		"@WORK Do 1000-1200 1300-1600",
		"@HOME 20240612 todo[Reisekosten]",
	)

	events := Events(records)

	// 18 holidays, the vacation split by one weekend, one to-do day.
	if len(events) != 21 {
		t.Fatalf("len(Events()) = %d, want 21", len(events))
	}

	var vacation []Event
	for _, e := range events {
		if e.Category == "vacation" {
			vacation = append(vacation, e)
		}
	}
	if len(vacation) != 2 {
		t.Fatalf("vacation events = %d, want 2", len(vacation))
	}
	if !vacation[0].Start.Equal(dateutil.Date(2024, 9, 2)) || !vacation[0].End.Equal(dateutil.Date(2024, 9, 7)) {
		t.Errorf("first vacation event = %s..%s, want 2024-09-02..2024-09-07",
			vacation[0].Start.Format("2006-01-02"), vacation[0].End.Format("2006-01-02"))
	}
	if vacation[0].Summary != "Urlaub: Sommerurlaub" {
		t.Errorf("vacation summary = %q, want %q", vacation[0].Summary, "Urlaub: Sommerurlaub")
	}
}

func TestWrite(t *testing.T) {
	records := buildRecords(t, "@FLEX 20240315")
	stamp := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	if err := Write(&buf, records, Options{Now: stamp}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	cal, err := ical.NewDecoder(&buf).Decode()
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	summaries := make(map[string]bool)
	for _, child := range cal.Children {
		if child.Name != ical.CompEvent {
			continue
		}
		event := ical.Event{Component: child}
		summary, _ := event.Props.Text(ical.PropSummary)
		summaries[summary] = true

		if _, err := event.DateTimeStart(nil); err != nil {
			t.Errorf("event %q has no valid DTSTART: %v", summary, err)
		}
	}

	for _, want := range []string{"Karfreitag", "Gleittag", "Silvester"} {
		if !summaries[want] {
			t.Errorf("exported calendar has no event %q", want)
		}
	}
	if len(summaries) != 19 {
		t.Errorf("exported %d distinct events, want 19", len(summaries))
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "2024.ics")
	if err := WriteFile(path, buildRecords(t), Options{}); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte("BEGIN:VCALENDAR")) {
		t.Errorf("file starts with %q, want BEGIN:VCALENDAR", data[:min(len(data), 20)])
	}
}
