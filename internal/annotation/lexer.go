package annotation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokenText tokenKind = iota
	tokenTodo
	tokenTotal
	tokenHours
	tokenRange
	tokenDate
	tokenWeekdays
	tokenInterval
	tokenTag
)

func (k tokenKind) String() string {
	switch k {
	case tokenTodo:
		return "todo"
	case tokenTotal:
		return "total"
	case tokenHours:
		return "hours"
	case tokenRange:
		return "range"
	case tokenDate:
		return "date"
	case tokenWeekdays:
		return "weekdays"
	case tokenInterval:
		return "interval"
	case tokenTag:
		return "tag"
	default:
		return "text"
	}
}

type token struct {
	kind   tokenKind
	text   string   // full matched text
	groups []string // submatches
}

type lexRule struct {
	kind tokenKind
	re   *regexp.Regexp
	// bracketed tokens carry their own terminator
	bounded bool
}

// Tried in order at every token start. The order is significant: to-dos go
// first so their content is never read as dates or tags, and 8-digit date
// ranges go before HHMM-HHMM intervals.
var lexRules = []lexRule{
	{tokenTodo, regexp.MustCompile(`^(?i:todo)\[([^\]]*)\]`), true},
	{tokenTotal, regexp.MustCompile(`^(?i:total)[:=]([^\s;]*)`), false},
	{tokenHours, regexp.MustCompile(`^(?i:hours)[:=]([^\s;]*)`), false},
	{tokenRange, regexp.MustCompile(`^(\d{8})-(\d{8})`), false},
	{tokenDate, regexp.MustCompile(`^(\d{8})`), false},
	{tokenWeekdays, regexp.MustCompile(`^([A-Z][a-z](?:,[A-Z][a-z])*)`), false},
	{tokenInterval, regexp.MustCompile(`^(\d{4})-(\d{4})`), false},
	{tokenTag, regexp.MustCompile(`^@([A-Za-z0-9_]+)`), false},
}

// lex splits a line into typed tokens in one left-to-right pass
func lex(line string) []token {
	var tokens []token
	pos := 0

	for pos < len(line) {
		r, size := utf8.DecodeRuneInString(line[pos:])
		if unicode.IsSpace(r) {
			pos += size
			continue
		}

		rest := line[pos:]
		matched := false
		for _, rule := range lexRules {
			m := rule.re.FindStringSubmatch(rest)
			if m == nil {
				continue
			}
			end := len(m[0])
			if !rule.bounded && !atBoundary(rest, end) {
				continue
			}
			tokens = append(tokens, token{kind: rule.kind, text: m[0], groups: m[1:]})
			pos += end
			// One list separator directly after a token belongs to it.
			if pos < len(line) && (line[pos] == ',' || line[pos] == ';') {
				pos++
			}
			matched = true
			break
		}
		if matched {
			continue
		}

		word := rest
		if i := strings.IndexFunc(rest, unicode.IsSpace); i >= 0 {
			word = rest[:i]
		}
		tokens = append(tokens, token{kind: tokenText, text: word})
		pos += len(word)
	}

	return tokens
}

// atBoundary reports whether a match of length end ends a word
func atBoundary(s string, end int) bool {
	if end >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[end:])
	return unicode.IsSpace(r) || strings.ContainsRune(",;.:)", r)
}
