// Package export writes computed calendar records as iCalendar files.
package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	ical "github.com/emersion/go-ical"
	"go.uber.org/zap"

	"github.com/username/worktime-calendar/internal/calendar"
	"github.com/username/worktime-calendar/internal/timemanager"
)

const defaultProductID = "-//worktime-calendar//EN"

var categorySummaries = map[calendar.DayType]string{
	calendar.DayTypeVacation: "Urlaub",
	calendar.DayTypeFlextime: "Gleittag",
	calendar.DayTypeParttime: "Teilzeit",
}

// Event is one all-day event covering consecutive dates
type Event struct {
	Start       time.Time
	End         time.Time // exclusive
	Category    string
	Summary     string
	Description string
}

// Options configures the exporter
type Options struct {
	ProductID string
	Now       time.Time // DTSTAMP; zero means time.Now()
	Logger    *zap.Logger
}

// Events collects the records worth exporting: holidays, vacation,
// flextime and part-time days, and working days with notes or to-dos.
// Consecutive days with the same summary become one event.
func Events(records []timemanager.DayRecord) []Event {
	var events []Event

	for _, r := range records {
		category, summary, ok := describe(r)
		if !ok {
			continue
		}
		description := strings.Join(append(copyNotes(r.Notes), todoLines(r.Todos)...), "\n")

		if n := len(events); n > 0 {
			last := &events[n-1]
			if last.End.Equal(r.Date) && last.Category == category && last.Summary == summary && last.Description == description {
				last.End = r.Date.AddDate(0, 0, 1)
				continue
			}
		}

		events = append(events, Event{
			Start:       r.Date,
			End:         r.Date.AddDate(0, 0, 1),
			Category:    category,
			Summary:     summary,
			Description: description,
		})
	}

	return events
}

func describe(r timemanager.DayRecord) (category, summary string, ok bool) {
	switch {
	case r.Holiday != "":
		return calendar.DayTypeHoliday.String(), r.Holiday, true
	case r.Type == calendar.DayTypeWeekend:
		return "", "", false
	}

	if s, ok := categorySummaries[r.Type]; ok {
		if len(r.Notes) > 0 {
			s += ": " + strings.Join(r.Notes, "; ")
		}
		return r.Type.String(), s, true
	}

	if len(r.Notes) > 0 || len(r.Todos) > 0 {
		summary := strings.Join(r.Notes, "; ")
		if summary == "" {
			summary = "ToDo"
		}
		return r.Type.String(), summary, true
	}

	return "", "", false
}

func copyNotes(notes []string) []string {
	return append([]string(nil), notes...)
}

func todoLines(todos []string) []string {
	out := make([]string, len(todos))
	for i, t := range todos {
		out[i] = "TODO: " + t
	}
	return out
}

// Write encodes the records as an iCalendar stream
func Write(w io.Writer, records []timemanager.DayRecord, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	productID := opts.ProductID
	if productID == "" {
		productID = defaultProductID
	}
	stamp := opts.Now
	if stamp.IsZero() {
		stamp = time.Now()
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	events := Events(records)
	for _, e := range events {
		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, fmt.Sprintf("%s-%s@worktime-calendar", e.Start.Format("20060102"), e.Category))
		event.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
		event.Props.SetDate(ical.PropDateTimeStart, e.Start)
		event.Props.SetDate(ical.PropDateTimeEnd, e.End)
		event.Props.SetText(ical.PropSummary, e.Summary)
		event.Props.SetText(ical.PropCategories, e.Category)
		if e.Description != "" {
			event.Props.SetText(ical.PropDescription, e.Description)
		}
		cal.Children = append(cal.Children, event.Component)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}

	logger.Info("Calendar exported",
		zap.Int("records", len(records)),
		zap.Int("events", len(events)))

	return nil
}

// WriteFile writes the records to an .ics file
func WriteFile(path string, records []timemanager.DayRecord, opts Options) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create calendar file: %w", err)
	}
	defer file.Close()

	if err := Write(file, records, opts); err != nil {
		return err
	}

	return file.Close()
}
