package timemanager

import (
	"fmt"
	"time"
)

// WeekRow is one ISO week of a month grid. Cells hold ordinals, 0 is blank.
type WeekRow struct {
	Week int
	Days [7]int // Mo..So
}

// MonthGrid is the week-by-weekday layout of one month
type MonthGrid struct {
	Month time.Month
	Weeks []WeekRow
}

// TablePage groups consecutive months for display side by side
type TablePage struct {
	Months []MonthGrid
}

// CalendarTable lays the year out in pages of monthsPerTable months
func (e *Engine) CalendarTable(monthsPerTable int) ([]TablePage, error) {
	if monthsPerTable <= 0 || monthsPerTable > 12 {
		return nil, fmt.Errorf("months per table must be within 1..12, got %d", monthsPerTable)
	}

	var pages []TablePage
	for first := time.January; first <= time.December; first += time.Month(monthsPerTable) {
		var page TablePage
		for m := first; m < first+time.Month(monthsPerTable) && m <= time.December; m++ {
			page.Months = append(page.Months, e.monthGrid(m))
		}
		pages = append(pages, page)
	}

	return pages, nil
}

func (e *Engine) monthGrid(month time.Month) MonthGrid {
	grid := MonthGrid{Month: month}
	span := e.index.Month(month)

	for ordinal := span.First; ordinal <= span.Last; ordinal++ {
		r := e.records[ordinal-1]
		if len(grid.Weeks) == 0 || r.Weekday == 1 {
			grid.Weeks = append(grid.Weeks, WeekRow{Week: r.ISOWeek})
		}
		grid.Weeks[len(grid.Weeks)-1].Days[r.Weekday-1] = ordinal
	}

	return grid
}
