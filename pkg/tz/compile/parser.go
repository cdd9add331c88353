// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package compile

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/AleutianAI/chrono/pkg/tz"
)

// timeKind says which clock an AT or UNTIL reading refers to.
type timeKind byte

const (
	kindWall     timeKind = 'w' // local wall clock (default)
	kindStandard timeKind = 's' // local standard time, DST ignored
	kindUTC      timeKind = 'u' // UTC
)

// ruleTime is a time-of-day with its clock kind.
type ruleTime struct {
	seconds int
	kind    timeKind
}

// dayKind discriminates the ON column forms.
type dayKind byte

const (
	dayFixed     dayKind = iota // "15"
	dayLast                     // "lastSun"
	dayOnOrAfter                // "Sun>=8"
)

// dayRule is a resolved-per-year day-of-month pattern.
type dayRule struct {
	kind    dayKind
	day     int
	weekday time.Weekday
}

// rule is one parsed Rule line: a yearly recurrence that activates a
// saving and an abbreviation letter.
type rule struct {
	name   string
	from   int
	to     int
	toMax  bool
	month  time.Month
	on     dayRule
	at     ruleTime
	save   int
	letter string
}

// appliesTo reports whether the recurrence fires in year y (capMax
// bounds open-ended "max" rules).
func (r rule) appliesTo(y, capMax int) bool {
	if y < r.from {
		return false
	}
	if r.toMax {
		return y <= capMax
	}
	return y <= r.to
}

// untilSpec is a Zone era's UNTIL column: year with progressively
// optional month, day, and time-of-day.
type untilSpec struct {
	year  int
	month time.Month
	day   dayRule
	at    ruleTime
}

// era is one Zone line (or continuation line): a standard offset, a
// rule reference, an abbreviation format, and an optional end.
type era struct {
	stdOffset    int
	ruleset      string // named ruleset, "" when none
	fixedSave    int    // used when hasFixedSave
	hasFixedSave bool
	format       string
	until        *untilSpec // nil on the final era
	line         int
}

// sourceFile is the parse result of one rule source text.
type sourceFile struct {
	rules map[string][]rule
	zones map[string][]era
}

// parseSource parses rule source text. zoneName is used only for
// error attribution; the text may define several zones.
func parseSource(zoneName, src string) (*sourceFile, error) {
	sf := &sourceFile{
		rules: make(map[string][]rule),
		zones: make(map[string][]era),
	}

	var openZone string // zone awaiting continuation eras

	sc := bufio.NewScanner(strings.NewReader(src))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		raw := sc.Text()
		line := raw
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		fail := func(err error) error {
			return &tz.RuleParseError{Zone: zoneName, Line: lineNo, Text: strings.TrimSpace(raw), Err: err}
		}

		switch fields[0] {
		case "Rule":
			openZone = ""
			r, err := parseRuleLine(fields)
			if err != nil {
				return nil, fail(err)
			}
			sf.rules[r.name] = append(sf.rules[r.name], r)

		case "Zone":
			if len(fields) < 5 {
				return nil, fail(fmt.Errorf("zone line needs at least NAME STDOFF RULES FORMAT"))
			}
			name := fields[1]
			if _, dup := sf.zones[name]; dup {
				return nil, fail(fmt.Errorf("duplicate zone %q", name))
			}
			e, err := parseEra(fields[2:], lineNo)
			if err != nil {
				return nil, fail(err)
			}
			sf.zones[name] = []era{e}
			if e.until != nil {
				openZone = name
			}

		case "Link":
			// Aliases carry no rule content of their own.
			openZone = ""

		default:
			if openZone == "" {
				return nil, fail(fmt.Errorf("unexpected line outside zone block"))
			}
			e, err := parseEra(fields, lineNo)
			if err != nil {
				return nil, fail(err)
			}
			sf.zones[openZone] = append(sf.zones[openZone], e)
			if e.until == nil {
				openZone = ""
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, &tz.RuleParseError{Zone: zoneName, Line: lineNo, Text: "", Err: err}
	}
	if openZone != "" {
		return nil, &tz.RuleParseError{
			Zone: zoneName, Line: lineNo, Text: "",
			Err: fmt.Errorf("zone %q ends with an UNTIL but no continuation era", openZone),
		}
	}
	return sf, nil
}

// parseRuleLine parses "Rule NAME FROM TO - IN ON AT SAVE LETTER".
// The historical TYPE column must be "-".
func parseRuleLine(fields []string) (rule, error) {
	if len(fields) != 10 {
		return rule{}, fmt.Errorf("rule line needs 10 columns, got %d", len(fields))
	}
	r := rule{name: fields[1]}

	from, err := strconv.Atoi(fields[2])
	if err != nil {
		return rule{}, fmt.Errorf("FROM year %q: %w", fields[2], err)
	}
	r.from = from

	switch fields[3] {
	case "max":
		r.toMax = true
	case "only":
		r.to = r.from
	default:
		to, err := strconv.Atoi(fields[3])
		if err != nil {
			return rule{}, fmt.Errorf("TO year %q: %w", fields[3], err)
		}
		r.to = to
	}
	if !r.toMax && r.to < r.from {
		return rule{}, fmt.Errorf("TO year %d before FROM year %d", r.to, r.from)
	}

	if fields[4] != "-" {
		return rule{}, fmt.Errorf("TYPE column must be \"-\", got %q", fields[4])
	}

	if r.month, err = parseMonth(fields[5]); err != nil {
		return rule{}, err
	}
	if r.on, err = parseOn(fields[6]); err != nil {
		return rule{}, err
	}
	if r.at, err = parseRuleTime(fields[7]); err != nil {
		return rule{}, err
	}
	if r.save, err = parseHMS(fields[8]); err != nil {
		return rule{}, fmt.Errorf("SAVE %q: %w", fields[8], err)
	}
	if fields[9] != "-" {
		r.letter = fields[9]
	}
	return r, nil
}

// parseEra parses the STDOFF RULES FORMAT [UNTIL...] columns of a
// Zone or continuation line.
func parseEra(fields []string, lineNo int) (era, error) {
	if len(fields) < 3 {
		return era{}, fmt.Errorf("era needs at least STDOFF RULES FORMAT")
	}
	e := era{format: fields[2], line: lineNo}

	std, err := parseHMS(fields[0])
	if err != nil {
		return era{}, fmt.Errorf("STDOFF %q: %w", fields[0], err)
	}
	e.stdOffset = std

	switch ref := fields[1]; {
	case ref == "-":
		// standard time throughout the era
	case looksLikeOffset(ref):
		save, err := parseHMS(ref)
		if err != nil {
			return era{}, fmt.Errorf("RULES save %q: %w", ref, err)
		}
		e.fixedSave = save
		e.hasFixedSave = true
	default:
		e.ruleset = ref
	}

	if len(fields) > 3 {
		u, err := parseUntil(fields[3:])
		if err != nil {
			return era{}, err
		}
		e.until = u
	}
	return e, nil
}

// parseUntil parses "YEAR [MONTH [DAY [TIME]]]".
func parseUntil(fields []string) (*untilSpec, error) {
	u := &untilSpec{
		month: time.January,
		day:   dayRule{kind: dayFixed, day: 1},
		at:    ruleTime{kind: kindWall},
	}
	year, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, fmt.Errorf("UNTIL year %q: %w", fields[0], err)
	}
	u.year = year
	if len(fields) > 1 {
		if u.month, err = parseMonth(fields[1]); err != nil {
			return nil, err
		}
	}
	if len(fields) > 2 {
		if u.day, err = parseOn(fields[2]); err != nil {
			return nil, err
		}
	}
	if len(fields) > 3 {
		if u.at, err = parseRuleTime(fields[3]); err != nil {
			return nil, err
		}
	}
	if len(fields) > 4 {
		return nil, fmt.Errorf("trailing UNTIL columns %v", fields[4:])
	}
	return u, nil
}

var monthNames = map[string]time.Month{
	"Jan": time.January, "Feb": time.February, "Mar": time.March,
	"Apr": time.April, "May": time.May, "Jun": time.June,
	"Jul": time.July, "Aug": time.August, "Sep": time.September,
	"Oct": time.October, "Nov": time.November, "Dec": time.December,
}

var weekdayNames = map[string]time.Weekday{
	"Sun": time.Sunday, "Mon": time.Monday, "Tue": time.Tuesday,
	"Wed": time.Wednesday, "Thu": time.Thursday, "Fri": time.Friday,
	"Sat": time.Saturday,
}

func parseMonth(s string) (time.Month, error) {
	if len(s) >= 3 {
		if m, ok := monthNames[s[:3]]; ok {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown month %q", s)
}

func parseWeekday(s string) (time.Weekday, error) {
	if len(s) >= 3 {
		if d, ok := weekdayNames[s[:3]]; ok {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

// parseOn parses the ON column: "15", "lastSun", or "Sun>=8".
func parseOn(s string) (dayRule, error) {
	if day, err := strconv.Atoi(s); err == nil {
		if day < 1 || day > 31 {
			return dayRule{}, fmt.Errorf("day of month %d out of range", day)
		}
		return dayRule{kind: dayFixed, day: day}, nil
	}
	if rest, ok := strings.CutPrefix(s, "last"); ok {
		wd, err := parseWeekday(rest)
		if err != nil {
			return dayRule{}, err
		}
		return dayRule{kind: dayLast, weekday: wd}, nil
	}
	if name, dayStr, ok := strings.Cut(s, ">="); ok {
		wd, err := parseWeekday(name)
		if err != nil {
			return dayRule{}, err
		}
		day, err := strconv.Atoi(dayStr)
		if err != nil || day < 1 || day > 31 {
			return dayRule{}, fmt.Errorf("ON threshold %q out of range", dayStr)
		}
		return dayRule{kind: dayOnOrAfter, day: day, weekday: wd}, nil
	}
	return dayRule{}, fmt.Errorf("unsupported ON form %q", s)
}

// parseRuleTime parses "h:mm[:ss]" with an optional trailing clock
// kind letter (w/s/u; g and z are aliases of u).
func parseRuleTime(s string) (ruleTime, error) {
	rt := ruleTime{kind: kindWall}
	if n := len(s); n > 0 {
		switch s[n-1] {
		case 'w':
			s = s[:n-1]
		case 's':
			rt.kind = kindStandard
			s = s[:n-1]
		case 'u', 'g', 'z':
			rt.kind = kindUTC
			s = s[:n-1]
		}
	}
	secs, err := parseHMS(s)
	if err != nil {
		return ruleTime{}, fmt.Errorf("time of day %q: %w", s, err)
	}
	rt.seconds = secs
	return rt, nil
}

// parseHMS parses "[-+]h[:mm[:ss]]" into signed seconds.
func parseHMS(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty offset")
	}
	sign := 1
	switch s[0] {
	case '-':
		sign = -1
		s = s[1:]
	case '+':
		s = s[1:]
	}
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("too many components in %q", s)
	}
	total := 0
	units := []int{3600, 60, 1}
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("component %q: %w", p, err)
		}
		if i > 0 && (v < 0 || v > 59) {
			return 0, fmt.Errorf("component %q out of range", p)
		}
		total += v * units[i]
	}
	return sign * total, nil
}

// looksLikeOffset reports whether a RULES column holds an inline save
// amount rather than a ruleset name.
func looksLikeOffset(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	return c == '-' || c == '+' || (c >= '0' && c <= '9')
}
