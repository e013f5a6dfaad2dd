package annotation

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/username/worktime-calendar/internal/calendar"
	"github.com/username/worktime-calendar/pkg/dateutil"
)

// Warning is a non-fatal problem found in an annotation line
type Warning struct {
	Line    string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %q", w.Message, w.Line)
}

// Line is the parsed form of one annotation line
type Line struct {
	Raw        string
	Type       calendar.DayType
	Dates      []time.Time // sorted, unique, all inside the parser's year
	Duration   *float64    // summed HHMM-HHMM intervals, hours
	TotalWork  *float64    // summed total: overrides, hours
	WorkHours  *float64    // hours: declaration
	Note       string
	Tags       []string // markers as written, without '@'
	Todos      []string
	Warnings   []Warning
	Unresolved bool
}

// Patch is the contribution of one line to one date
type Patch struct {
	Date      time.Time
	Type      calendar.DayType
	Duration  *float64
	TotalWork *float64
	WorkHours *float64
	Note      string
	Raw       string
	Tags      []string
	Todos     []string
}

// Patches expands the line into one patch per date.
// Unresolved lines produce none.
func (l *Line) Patches() []Patch {
	if l.Unresolved {
		return nil
	}
	patches := make([]Patch, 0, len(l.Dates))
	for _, date := range l.Dates {
		patches = append(patches, Patch{
			Date:      date,
			Type:      l.Type,
			Duration:  l.Duration,
			TotalWork: l.TotalWork,
			WorkHours: l.WorkHours,
			Note:      l.Note,
			Raw:       l.Raw,
			Tags:      l.Tags,
			Todos:     l.Todos,
		})
	}
	return patches
}

// Parser turns annotation lines into Lines for one calendar year
type Parser struct {
	tags   TagTable
	index  *calendar.YearIndex
	logger *zap.Logger
}

// NewParser creates a parser. The tag table is validated here.
func NewParser(tags TagTable, index *calendar.YearIndex, logger *zap.Logger) (*Parser, error) {
	if index == nil {
		return nil, errors.New("year index is required")
	}
	if err := tags.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tag table: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{tags: tags, index: index, logger: logger}, nil
}

// lineState accumulates tokens while reducing one line
type lineState struct {
	line     *Line
	typed    bool
	ranged   bool // a date or range token was seen, even if clipped away
	dates    map[time.Time]bool
	weekdays map[time.Weekday]bool
	minutes  int
	interval bool
	total    float64
	hasTotal bool
	notes    []string
}

// Parse tokenizes and reduces one line. It never fails: problems are
// reported as warnings on the returned Line.
func (p *Parser) Parse(raw string) *Line {
	raw = strings.TrimSpace(raw)
	st := &lineState{
		line:     &Line{Raw: raw},
		dates:    make(map[time.Time]bool),
		weekdays: make(map[time.Weekday]bool),
	}

	for _, tok := range lex(raw) {
		p.reduce(st, tok)
	}

	line := st.line
	if line.Unresolved {
		return line
	}

	if !st.typed {
		line.Type = DefaultDayType
		p.warn(line, fmt.Sprintf("no day-type marker, using %s", DefaultDayType))
	}
	if st.interval {
		hours := float64(st.minutes) / 60
		line.Duration = &hours
	}
	if st.hasTotal {
		total := st.total
		line.TotalWork = &total
	}
	line.Note = strings.TrimSpace(strings.Join(st.notes, " "))
	line.Dates = p.resolveDates(st)

	switch {
	case !st.ranged && len(st.weekdays) == 0:
		p.warn(line, "line names no date")
	case len(line.Dates) == 0:
		p.logger.Debug("Line matches no date of the calendar year",
			zap.String("line", raw),
			zap.Int("year", p.index.Year()))
	}

	return line
}

func (p *Parser) reduce(st *lineState, tok token) {
	line := st.line

	switch tok.kind {
	case tokenTodo:
		if todo := strings.TrimSpace(tok.groups[0]); todo != "" {
			line.Todos = appendUnique(line.Todos, todo)
		}

	case tokenTotal:
		v, err := parseHours(tok.groups[0])
		if err != nil {
			p.warn(line, fmt.Sprintf("malformed total %q", tok.text))
			return
		}
		st.total += v
		st.hasTotal = true

	case tokenHours:
		v, err := parseHours(tok.groups[0])
		if err != nil || v <= 0 || v > 24 {
			p.warn(line, fmt.Sprintf("malformed work-hours declaration %q", tok.text))
			return
		}
		if line.WorkHours == nil || v > *line.WorkHours {
			line.WorkHours = &v
		}

	case tokenRange:
		from, err1 := dateutil.ParseCompactDate(tok.groups[0])
		to, err2 := dateutil.ParseCompactDate(tok.groups[1])
		if err1 != nil || err2 != nil {
			p.warn(line, fmt.Sprintf("malformed date range %q", tok.text))
			return
		}
		p.addRange(st, from, to)

	case tokenDate:
		date, err := dateutil.ParseCompactDate(tok.groups[0])
		if err != nil {
			p.warn(line, fmt.Sprintf("malformed date %q", tok.text))
			return
		}
		p.addRange(st, date, date)

	case tokenWeekdays:
		labels := strings.Split(tok.groups[0], ",")
		days := make([]time.Weekday, 0, len(labels))
		for _, label := range labels {
			wd, ok := dateutil.ParseWeekdayLabel(label)
			if !ok {
				if len(labels) == 1 {
					// A capitalized two-letter word, not a weekday.
					st.notes = append(st.notes, tok.text)
					return
				}
				p.unresolve(line, fmt.Sprintf("unknown weekday %q in %q", label, tok.text))
				return
			}
			days = append(days, wd)
		}
		for _, wd := range days {
			st.weekdays[wd] = true
		}

	case tokenInterval:
		minutes, err := intervalMinutes(tok.groups[0], tok.groups[1])
		if err != nil {
			p.warn(line, fmt.Sprintf("malformed interval %q: %v", tok.text, err))
			return
		}
		st.minutes += minutes
		st.interval = true

	case tokenTag:
		name := tok.groups[0]
		dt, ok := p.tags.Lookup(name)
		if !ok {
			p.unresolve(line, fmt.Sprintf("unknown tag @%s", name))
			return
		}
		line.Tags = appendUnique(line.Tags, name)
		if st.typed {
			p.warn(line, fmt.Sprintf("several day-type markers, keeping @%s (%s)", line.Tags[0], line.Type))
			return
		}
		line.Type = dt
		st.typed = true

	default:
		st.notes = append(st.notes, tok.text)
	}
}

// addRange adds the inclusive range from..to, clipped to the parser's year
func (p *Parser) addRange(st *lineState, from, to time.Time) {
	st.ranged = true
	if to.Before(from) {
		from, to = to, from
	}

	year := p.index.Year()
	first := dateutil.Date(year, time.January, 1)
	last := dateutil.Date(year, time.December, 31)

	if from.Before(first) || to.After(last) {
		p.logger.Debug("Dropping dates outside calendar year",
			zap.String("line", st.line.Raw),
			zap.String("from", from.Format("2006-01-02")),
			zap.String("to", to.Format("2006-01-02")),
			zap.Int("year", year))
	}
	if from.Before(first) {
		from = first
	}
	if to.After(last) {
		to = last
	}

	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		st.dates[d] = true
	}
}

// resolveDates combines explicit dates with the weekday set
func (p *Parser) resolveDates(st *lineState) []time.Time {
	var dates []time.Time

	switch {
	case !st.ranged && len(st.weekdays) > 0:
		for _, d := range p.index.Filter(st.weekdays) {
			dates = append(dates, d.Date)
		}
	default:
		for d := range st.dates {
			if len(st.weekdays) > 0 && !st.weekdays[d.Weekday()] {
				continue
			}
			dates = append(dates, d)
		}
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	}

	return dates
}

func (p *Parser) warn(line *Line, msg string) {
	line.Warnings = append(line.Warnings, Warning{Line: line.Raw, Message: msg})
	p.logger.Warn(msg, zap.String("line", line.Raw))
}

func (p *Parser) unresolve(line *Line, msg string) {
	line.Unresolved = true
	p.warn(line, msg+", line ignored")
}

var hoursPattern = regexp.MustCompile(`^\d+(?:\.\d+)?$`)

// parseHours accepts "7,5" and "7.5", nothing signed, exponential or non-finite
func parseHours(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, errors.New("empty value")
	}
	if !hoursPattern.MatchString(s) {
		return 0, fmt.Errorf("not a number of hours: %q", s)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return v, nil
}

// intervalMinutes returns the length of HHMM-HHMM in minutes
func intervalMinutes(from, to string) (int, error) {
	start, err := clockMinutes(from)
	if err != nil {
		return 0, err
	}
	end, err := clockMinutes(to)
	if err != nil {
		return 0, err
	}
	if end <= start {
		return 0, fmt.Errorf("end %s is not after start %s", to, from)
	}
	return end - start, nil
}

func clockMinutes(hhmm string) (int, error) {
	h, err := strconv.Atoi(hhmm[:2])
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(hhmm[2:])
	if err != nil {
		return 0, err
	}
	if m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("invalid time of day %s", hhmm)
	}
	return h*60 + m, nil
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
