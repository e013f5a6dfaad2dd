// Package daterange parses filter expressions such as
// "20240101-20240131;-4wMoFr" into sorted date lists.
package daterange

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tj/go-naturaldate"

	"github.com/username/worktime-calendar/pkg/dateutil"
)

// ErrInvalidToken is returned for tokens the grammar cannot read
var ErrInvalidToken = errors.New("invalid date token")

// Range is an inclusive range of dates, optionally restricted to weekdays
type Range struct {
	From     time.Time
	To       time.Time
	Weekdays map[time.Weekday]bool // empty means every weekday
}

// Dates returns the dates of the range in ascending order
func (r Range) Dates() []time.Time {
	from, to := dateutil.StartOfDay(r.From), dateutil.StartOfDay(r.To)
	if to.Before(from) {
		from, to = to, from
	}

	var dates []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if len(r.Weekdays) > 0 && !r.Weekdays[d.Weekday()] {
			continue
		}
		dates = append(dates, d)
	}
	return dates
}

var (
	compactDatePattern = regexp.MustCompile(`^\d{8}$`)
	offsetPattern      = regexp.MustCompile(`^([+-]?)(\d+)(days?|weeks?|months?|years?|d|w|m|y)((?:[A-Z][a-z])*)$`)
	weekdayPattern     = regexp.MustCompile(`[A-Z][a-z]`)
)

// Parse splits expr into ranges relative to now.
// An empty expression means today.
func Parse(expr string, now time.Time) ([]Range, error) {
	if strings.TrimSpace(expr) == "" {
		expr = "now"
	}

	var ranges []Range
	for _, segment := range strings.Split(expr, ";") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		r, err := parseSegment(segment, now)
		if err != nil {
			return nil, fmt.Errorf("segment %q: %w", segment, err)
		}
		ranges = append(ranges, r)
	}

	return ranges, nil
}

// Dates evaluates expr and merges in extra ranges. The result is
// deduplicated and sorted.
func Dates(expr string, now time.Time, extra ...Range) ([]time.Time, error) {
	ranges, err := Parse(expr, now)
	if err != nil {
		return nil, err
	}
	ranges = append(ranges, extra...)

	seen := make(map[time.Time]bool)
	var dates []time.Time
	for _, r := range ranges {
		for _, d := range r.Dates() {
			if seen[d] {
				continue
			}
			seen[d] = true
			dates = append(dates, d)
		}
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

func parseSegment(segment string, now time.Time) (Range, error) {
	left, right := "now", segment
	// The separator is the first '-' after position 0, so "-1w--1d" splits
	// into "-1w" and "-1d".
	if i := strings.Index(segment[1:], "-"); i >= 0 {
		left, right = segment[:i+1], segment[i+2:]
	}

	from, fromDays, err := parseToken(strings.TrimSpace(left), now)
	if err != nil {
		return Range{}, err
	}
	to, toDays, err := parseToken(strings.TrimSpace(right), now)
	if err != nil {
		return Range{}, err
	}

	if to.Before(from) {
		from, to = to, from
	}

	r := Range{From: from, To: to}
	for _, days := range [][]time.Weekday{fromDays, toDays} {
		for _, wd := range days {
			if r.Weekdays == nil {
				r.Weekdays = make(map[time.Weekday]bool)
			}
			r.Weekdays[wd] = true
		}
	}

	return r, nil
}

// parseToken reads one range endpoint and its optional weekday suffix
func parseToken(token string, now time.Time) (time.Time, []time.Weekday, error) {
	today := dateutil.StartOfDay(now)

	switch {
	case token == "":
		return time.Time{}, nil, fmt.Errorf("%w: empty", ErrInvalidToken)

	case strings.EqualFold(token, "now"), strings.EqualFold(token, "today"):
		return today, nil, nil

	case compactDatePattern.MatchString(token):
		date, err := dateutil.ParseCompactDate(token)
		if err != nil {
			return time.Time{}, nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		return date, nil, nil

	case offsetPattern.MatchString(token):
		return parseOffset(token, today)

	case startsWithDigitOrSign(token):
		return time.Time{}, nil, fmt.Errorf("%w: %q", ErrInvalidToken, token)
	}

	date, err := naturaldate.Parse(token, now, naturaldate.WithDirection(naturaldate.Past))
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("%w: %q: %v", ErrInvalidToken, token, err)
	}
	// naturaldate hands back the reference time when it recognises nothing
	if date.Equal(now) {
		return time.Time{}, nil, fmt.Errorf("%w: %q", ErrInvalidToken, token)
	}
	return dateutil.StartOfDay(date), nil, nil
}

// parseOffset reads "[+-]N unit [weekdays]" anchored on the start of the
// current day, week, month or year.
func parseOffset(token string, today time.Time) (time.Time, []time.Weekday, error) {
	m := offsetPattern.FindStringSubmatch(token)

	n, err := strconv.Atoi(m[2])
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("%w: %q: %v", ErrInvalidToken, token, err)
	}
	if m[1] == "-" {
		n = -n
	}

	var date time.Time
	switch m[3][0] {
	case 'd':
		date = today.AddDate(0, 0, n)
	case 'w':
		date = dateutil.StartOfWeek(today).AddDate(0, 0, 7*n)
	case 'm':
		date = dateutil.StartOfMonth(today).AddDate(0, n, 0)
	case 'y':
		date = dateutil.StartOfYear(today).AddDate(n, 0, 0)
	}

	var weekdays []time.Weekday
	for _, label := range weekdayPattern.FindAllString(m[4], -1) {
		wd, ok := dateutil.ParseWeekdayLabel(label)
		if !ok {
			return time.Time{}, nil, fmt.Errorf("%w: unknown weekday %q in %q", ErrInvalidToken, label, token)
		}
		weekdays = append(weekdays, wd)
	}

	return date, weekdays, nil
}

func startsWithDigitOrSign(token string) bool {
	c := token[0]
	return c == '+' || c == '-' || (c >= '0' && c <= '9')
}
