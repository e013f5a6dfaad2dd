package main

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/username/worktime-calendar/internal/calendar"
	"github.com/username/worktime-calendar/internal/daterange"
	"github.com/username/worktime-calendar/internal/export"
	"github.com/username/worktime-calendar/internal/timemanager"
	"github.com/username/worktime-calendar/pkg/dateutil"
)

func statsCmd() *cobra.Command {
	var showTable bool
	var showWarnings bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show per-month and yearly statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			lines, err := readAnnotations(cfg)
			if err != nil {
				return err
			}
			engine, err := buildEngine(cfg, cfg.Calendar.GetYear(time.Now()), lines, nil)
			if err != nil {
				return err
			}

			stats := engine.YearStats()
			iso := engine.Index().ISOBounds()
			outPrintf("\n📊 %d (%.1fh per working day, %d ISO weeks from %s to %s)\n",
				stats.Year, engine.WorkHours(), iso.Weeks,
				iso.FirstMonday.Format("2006-01-02"), iso.LastSunday.Format("2006-01-02"))
			outPrintln("═══════════════════════════════════════════════════════════════")
			outPrintln("  Month | Days | Work | Home | Vaca | Flex | Part | Hol | Target | Worked | Overtime")
			outPrintln("--------+------+------+------+------+------+------+-----+--------+--------+---------")
			for m := time.January; m <= time.December; m++ {
				printPeriod(m.String()[:3], stats.Month(m))
			}
			outPrintln("--------+------+------+------+------+------+------+-----+--------+--------+---------")
			printPeriod("Total", stats.Total)

			if len(stats.Total.Holidays) > 0 {
				outPrintf("\n🎉 Holidays: %s\n", strings.Join(stats.Total.Holidays, ", "))
			}

			if showTable {
				pages, err := engine.CalendarTable(cfg.Calendar.GetMonthsPerTable())
				if err != nil {
					return err
				}
				printTable(engine, pages)
			}

			warnings := engine.Warnings()
			if len(warnings) > 0 {
				outPrintf("\n⚠️  %d annotation warning(s)\n", len(warnings))
				if showWarnings {
					for _, w := range warnings {
						outPrintf("   • %s\n", w)
					}
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&showTable, "table", false, "Print the calendar grid")
	cmd.Flags().BoolVar(&showWarnings, "warnings", false, "List annotation warnings")

	return cmd
}

func dayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "day YYYYMMDD",
		Short: "Show the record of one day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := dateutil.ParseDate(args[0])
			if err != nil {
				return fmt.Errorf("invalid date: %w", err)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			lines, err := readAnnotations(cfg)
			if err != nil {
				return err
			}
			engine, err := buildEngine(cfg, date.Year(), lines, nil)
			if err != nil {
				return err
			}

			r, err := engine.RecordAt(date)
			if err != nil {
				return err
			}

			outPrintf("\n📅 %s %s (KW %d, day %d)\n", r.Date.Format("2006-01-02"), r.Label, r.ISOWeek, r.Ordinal)
			outPrintln("═══════════════════════════════════════════════════════")
			outPrintf("  Type:       %s\n", r.Type)
			if r.Holiday != "" {
				outPrintf("  Holiday:    %s\n", r.Holiday)
			}
			outPrintf("  Work hours: %.2fh\n", r.WorkHours)
			outPrintf("  Duration:   %s\n", formatHours(r.Duration))
			outPrintf("  Overtime:   %s\n", formatHours(r.Overtime))
			for _, note := range r.Notes {
				outPrintf("  Note:       %s\n", note)
			}
			for _, todo := range r.Todos {
				outPrintf("  ToDo:       %s\n", todo)
			}
			for _, line := range r.Lines {
				outPrintf("  Line:       %s\n", line)
			}

			return nil
		},
	}

	return cmd
}

func datesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dates [expression]",
		Short: "List the records selected by a filter expression",
		Long:  "Filter expression, e.g. \"20240101-20240131\", \"-4wMoFr\" or \"-1w--1d;yesterday\". Defaults to filter.expression.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			expr := cfg.Filter.Expression
			if len(args) == 1 {
				expr = args[0]
			}

			dates, err := daterange.Dates(expr, time.Now())
			if err != nil {
				return fmt.Errorf("invalid filter: %w", err)
			}
			if len(dates) == 0 {
				outPrintln("No dates selected")
				return nil
			}

			lines, err := readAnnotations(cfg)
			if err != nil {
				return err
			}

			// One engine per year touched by the filter, sharing the index cache.
			cache := calendar.NewCache(logger)
			engines := make(map[int]*timemanager.Engine)
			var records []timemanager.DayRecord
			for _, date := range dates {
				engine, ok := engines[date.Year()]
				if !ok {
					engine, err = buildEngine(cfg, date.Year(), lines, cache)
					if err != nil {
						return err
					}
					engines[date.Year()] = engine
				}
				records = append(records, engine.Select([]time.Time{date})...)
			}

			logger.Info("Filter evaluated",
				zap.String("expression", expr),
				zap.Int("dates", len(dates)),
				zap.Int("years", len(engines)))

			outPrintln("  Date          | Type         | Target | Worked | Overtime | Notes")
			outPrintln("----------------+--------------+--------+--------+----------+------")
			var worked, overtime float64
			for _, r := range records {
				outPrintf("  %s %s | %-12s | %5.2fh | %6s | %8s | %s\n",
					r.Date.Format("2006-01-02"), r.Label, r.Type,
					r.WorkHours, formatHours(r.Duration), formatHours(r.Overtime),
					strings.Join(r.Notes, "; "))
				if r.Duration != nil {
					worked += *r.Duration
				}
				if r.Overtime != nil {
					overtime += *r.Overtime
				}
			}
			outPrintf("\n  %d day(s), worked %.2fh, overtime %s%.2fh\n", len(records), worked, signLabel(overtime), math.Abs(overtime))

			return nil
		},
	}

	return cmd
}

func exportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export holidays and annotated days as iCalendar",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if output == "" {
				output = cfg.Export.ICSFile
			}
			if output == "" {
				return fmt.Errorf("no output file: set --output or export.ics_file")
			}

			lines, err := readAnnotations(cfg)
			if err != nil {
				return err
			}
			engine, err := buildEngine(cfg, cfg.Calendar.GetYear(time.Now()), lines, nil)
			if err != nil {
				return err
			}

			if err := export.WriteFile(output, engine.Days(), export.Options{
				ProductID: cfg.Export.ProductID,
				Logger:    logger,
			}); err != nil {
				return err
			}

			outPrintf("✅ Calendar %d exported to %s\n", engine.Year(), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output .ics file (overrides export.ics_file)")

	return cmd
}

func printPeriod(label string, p timemanager.PeriodStats) {
	outPrintf("  %-5s | %4d | %4d | %4d | %4d | %4d | %4d | %3d | %5.1fh | %5.1fh | %s%5.1fh\n",
		label, p.Days,
		p.ByType[calendar.DayTypeWorkday],
		p.ByType[calendar.DayTypeWorkdayHome],
		p.ByType[calendar.DayTypeVacation],
		p.ByType[calendar.DayTypeFlextime],
		p.ByType[calendar.DayTypeParttime],
		p.ByType[calendar.DayTypeHoliday],
		p.TargetHours, p.Duration,
		signLabel(p.Overtime), math.Abs(p.Overtime))
}

func printTable(engine *timemanager.Engine, pages []timemanager.TablePage) {
	for _, page := range pages {
		outPrintln()
		for _, grid := range page.Months {
			outPrintf("  %s %d\n", grid.Month, engine.Year())
			outPrintln("   KW   Mo  Di  Mi  Do  Fr  Sa  So")
			for _, week := range grid.Weeks {
				outPrintf("   %2d ", week.Week)
				for _, ordinal := range week.Days {
					if ordinal == 0 {
						outPrintf("    ")
						continue
					}
					r, _ := engine.Day(ordinal)
					outPrintf(" %2d%s", r.Date.Day(), typeMark(r.Type))
				}
				outPrintln()
			}
		}
	}
	outPrintln("\nLegend: * holiday, u vacation, g flextime, t part-time, w office, space home/weekend")
}

func typeMark(t calendar.DayType) string {
	switch t {
	case calendar.DayTypeHoliday:
		return "*"
	case calendar.DayTypeVacation:
		return "u"
	case calendar.DayTypeFlextime:
		return "g"
	case calendar.DayTypeParttime:
		return "t"
	case calendar.DayTypeWorkday:
		return "w"
	default:
		return " "
	}
}

func formatHours(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2fh", *v)
}

func signLabel(value float64) string {
	if value >= 0 {
		return "+"
	}
	return "-"
}
