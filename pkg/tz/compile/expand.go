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
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/AleutianAI/chrono/pkg/tz"
)

// Compile parses zone rule source text and expands the named zone's
// eras into a transition table bounded by the horizon.
//
// Description:
//
//	Eras are processed in chronological order. An era referencing a
//	named ruleset has its yearly recurrences expanded into concrete
//	UTC instants within the era's span; eras without rules
//	contribute a single transition at the era's start. Adjacent
//	transitions resolving to an identical leaf are merged (the later
//	one dropped). The first era starts at tz.MinInstant.
//
// Inputs:
//
//	name - The zone to compile; must be defined in src.
//	src - Rule source text (see package doc for the grammar).
//	horizon - Cutoff instant; no transitions are computed beyond it.
//
// Outputs:
//
//	*tz.VariableZone - The compiled zone.
//	error - *tz.RuleParseError on malformed source or an undefined
//	        zone/ruleset reference.
func Compile(name, src string, horizon tz.Instant) (*tz.VariableZone, error) {
	sf, err := parseSource(name, src)
	if err != nil {
		return nil, err
	}
	eras, ok := sf.zones[name]
	if !ok {
		return nil, &tz.RuleParseError{Zone: name, Err: fmt.Errorf("zone %q not defined in source", name)}
	}

	b := &builder{zone: name, sf: sf, horizon: horizon}
	start := tz.MinInstant
	for _, e := range eras {
		start, err = b.expandEra(e, start)
		if err != nil {
			return nil, err
		}
	}

	transitions := normalize(b.transitions, horizon)
	if len(transitions) == 0 {
		return nil, &tz.RuleParseError{Zone: name, Err: fmt.Errorf("no transitions before horizon %s", horizon)}
	}
	return tz.NewVariableZone(name, transitions, horizon)
}

type builder struct {
	zone        string
	sf          *sourceFile
	horizon     tz.Instant
	transitions []tz.Transition
}

// activation is one concrete firing of a recurring rule in a given
// year, before clock-kind adjustment.
type activation struct {
	wall   int64 // naive wall seconds of the firing
	kind   timeKind
	save   int
	letter string
}

// utc converts the naive wall reading to a UTC instant given the
// standard offset and the saving in effect just before the firing.
func (a activation) utc(std, save int) tz.Instant {
	switch a.kind {
	case kindUTC:
		return tz.Instant(a.wall)
	case kindStandard:
		return tz.Instant(a.wall - int64(std))
	default:
		return tz.Instant(a.wall - int64(std) - int64(save))
	}
}

// expandEra appends the era's transitions starting at start and
// returns the UTC instant at which the era ends (the horizon for the
// final era).
func (b *builder) expandEra(e era, start tz.Instant) (tz.Instant, error) {
	std := e.stdOffset
	save := 0
	letter := ""

	var rules []rule
	switch {
	case e.hasFixedSave:
		save = e.fixedSave
	case e.ruleset != "":
		rules = b.sf.rules[e.ruleset]
		if len(rules) == 0 {
			return 0, &tz.RuleParseError{
				Zone: b.zone, Line: e.line,
				Err: fmt.Errorf("era references undefined ruleset %q", e.ruleset),
			}
		}
		letter = initialLetter(rules)
	}

	leaf, err := b.makeLeaf(e, std, save, letter)
	if err != nil {
		return 0, err
	}
	startIdx := len(b.transitions)
	b.transitions = append(b.transitions, tz.Transition{At: start, Leaf: leaf})

	if len(rules) > 0 {
		yLo, yHi := b.yearRange(e, start, rules)
		done := false
		for y := yLo; y <= yHi && !done; y++ {
			for _, a := range activationsIn(rules, y, yHi) {
				utcAt := a.utc(std, save)
				if utcAt >= b.eraEnd(e.until, std, save) {
					done = true
					break
				}
				if utcAt > b.horizon {
					done = true
					break
				}
				newLeaf, err := b.makeLeaf(e, std, a.save, a.letter)
				if err != nil {
					return 0, err
				}
				save, letter = a.save, a.letter
				if utcAt <= start {
					// Fires before the era opens: it only shapes the
					// leaf active at the era's start.
					b.transitions[startIdx].Leaf = newLeaf
				} else {
					b.transitions = append(b.transitions, tz.Transition{At: utcAt, Leaf: newLeaf})
				}
			}
		}
	}

	return b.eraEnd(e.until, std, save), nil
}

// yearRange bounds the years whose recurrences can fire inside the
// era. An extra year of slack on each side absorbs clock-kind skew at
// the boundaries; out-of-span firings are clipped by the caller.
func (b *builder) yearRange(e era, start tz.Instant, rules []rule) (int, int) {
	yLo := rules[0].from
	for _, r := range rules[1:] {
		if r.from < yLo {
			yLo = r.from
		}
	}
	if start != tz.MinInstant {
		yLo = start.Time().Year() - 1
	}
	yHi := b.horizon.Time().Year()
	if e.until != nil && e.until.year < yHi {
		yHi = e.until.year
	}
	return yLo, yHi + 1
}

// activationsIn collects the rule firings for one year, ordered by
// their naive wall reading.
func activationsIn(rules []rule, y, capMax int) []activation {
	var acts []activation
	for _, r := range rules {
		if !r.appliesTo(y, capMax) {
			continue
		}
		day := resolveDay(y, r.month, r.on)
		wall := time.Date(y, r.month, day, 0, 0, 0, 0, time.UTC).Unix() + int64(r.at.seconds)
		acts = append(acts, activation{wall: wall, kind: r.at.kind, save: r.save, letter: r.letter})
	}
	sort.Slice(acts, func(i, j int) bool { return acts[i].wall < acts[j].wall })
	return acts
}

// eraEnd returns the era's UNTIL as a UTC instant given the saving in
// effect when it is reached, or the horizon when the era is open.
func (b *builder) eraEnd(u *untilSpec, std, save int) tz.Instant {
	if u == nil {
		return b.horizon
	}
	day := resolveDay(u.year, u.month, u.day)
	wall := time.Date(u.year, u.month, day, 0, 0, 0, 0, time.UTC).Unix() + int64(u.at.seconds)
	switch u.at.kind {
	case kindUTC:
		return tz.Instant(wall)
	case kindStandard:
		return tz.Instant(wall - int64(std))
	default:
		return tz.Instant(wall - int64(std) - int64(save))
	}
}

// resolveDay turns an ON pattern into a concrete day of month for the
// given year. "Sun>=N" may normalize past the month's end, matching
// the grammar's intent of "the first such weekday on or after".
func resolveDay(y int, m time.Month, dr dayRule) int {
	switch dr.kind {
	case dayLast:
		// Day 0 of the next month is the last day of this one.
		t := time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC)
		for t.Weekday() != dr.weekday {
			t = t.AddDate(0, 0, -1)
		}
		return t.Day()
	case dayOnOrAfter:
		day := dr.day
		t := time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
		for t.Weekday() != dr.weekday {
			t = t.AddDate(0, 0, 1)
			day++
		}
		return day
	default:
		return dr.day
	}
}

// makeLeaf builds the leaf for a standard offset, a saving, and an
// abbreviation letter under the era's FORMAT column.
func (b *builder) makeLeaf(e era, std, save int, letter string) (tz.Leaf, error) {
	off, err := tz.NewOffset(std, save)
	if err != nil {
		return tz.Leaf{}, &tz.RuleParseError{Zone: b.zone, Line: e.line, Text: e.format, Err: err}
	}
	return tz.Leaf{Abbrev: formatAbbrev(e.format, save, letter), Offset: off}, nil
}

// formatAbbrev applies the FORMAT column: "%s" substitutes the rule
// letter, "STD/DST" picks by saving, anything else is literal.
func formatAbbrev(format string, save int, letter string) string {
	if strings.Contains(format, "%s") {
		return strings.ReplaceAll(format, "%s", letter)
	}
	if stdPart, dstPart, ok := strings.Cut(format, "/"); ok {
		if save != 0 {
			return dstPart
		}
		return stdPart
	}
	return format
}

// initialLetter picks the abbreviation letter in effect before any
// rule of the set has fired: the letter of a standard-time rule.
func initialLetter(rules []rule) string {
	for _, r := range rules {
		if r.save == 0 {
			return r.letter
		}
	}
	return ""
}

// normalize sorts by instant, resolves duplicate instants in favor of
// the later definition, merges adjacent identical leaves, and drops
// anything beyond the horizon.
func normalize(transitions []tz.Transition, horizon tz.Instant) []tz.Transition {
	sort.SliceStable(transitions, func(i, j int) bool {
		return transitions[i].At < transitions[j].At
	})
	out := transitions[:0]
	for _, tr := range transitions {
		if tr.At > horizon {
			continue
		}
		if n := len(out); n > 0 && out[n-1].At == tr.At {
			out[n-1] = tr
			continue
		}
		if n := len(out); n > 0 && out[n-1].Leaf.Equal(tr.Leaf) {
			continue
		}
		out = append(out, tr)
	}
	return out
}
