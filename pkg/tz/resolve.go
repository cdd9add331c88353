// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tz

import "fmt"

// Disambiguator selects one occurrence of a civil time that resolves
// to two valid UTC instants (a fall-back repeated interval).
//
// The zero value is DisambiguateStrict: resolution of an ambiguous
// time fails with *AmbiguousTimeError.
type Disambiguator int

const (
	// DisambiguateStrict refuses to guess: ambiguous input fails.
	DisambiguateStrict Disambiguator = iota

	// DisambiguateEarlier selects the first occurrence, under the
	// pre-transition (earlier) leaf.
	DisambiguateEarlier

	// DisambiguateLater selects the second occurrence, under the
	// post-transition (later) leaf.
	DisambiguateLater
)

// DisambiguatorFromBool maps the boolean shorthand: false selects the
// earlier occurrence, true the later.
func DisambiguatorFromBool(later bool) Disambiguator {
	if later {
		return DisambiguateLater
	}
	return DisambiguateEarlier
}

// DisambiguatorFromOrdinal maps an explicit occurrence ordinal:
// 1 names the first (earlier) occurrence, 2 the second (later).
func DisambiguatorFromOrdinal(n int) (Disambiguator, error) {
	switch n {
	case 1:
		return DisambiguateEarlier, nil
	case 2:
		return DisambiguateLater, nil
	default:
		return DisambiguateStrict, fmt.Errorf("tz: occurrence ordinal must be 1 or 2, got %d", n)
	}
}

func (d Disambiguator) String() string {
	switch d {
	case DisambiguateEarlier:
		return "earlier"
	case DisambiguateLater:
		return "later"
	default:
		return "strict"
	}
}

// ResolveLocal converts a civil (zone-relative) date-time to the UTC
// instant it denotes under the given zone.
//
// Description:
//
//	Each leaf active in a window around the civil reading is a
//	candidate interpretation: subtracting its offset from the civil
//	wall seconds yields a tentative instant, kept only if the leaf
//	active at that instant is the leaf that produced it
//	(self-consistency). Candidates are then classified:
//
//	  0 candidates - the civil time falls in a forward-jump gap
//	  1 candidate  - unambiguous
//	  2 candidates - the disambiguator picks, or the call fails
//
// Inputs:
//
//	zone - The zone to resolve against.
//	civil - The zone-relative reading.
//	d - Occurrence selector for ambiguous readings.
//
// Outputs:
//
//	Instant - The resolved UTC instant.
//	error - *NoApplicableRuleError if the reading precedes the
//	        zone's recorded history, *NonExistentTimeError for gap
//	        readings, *AmbiguousTimeError for ambiguous readings
//	        under DisambiguateStrict.
func ResolveLocal(zone TimeZone, civil CivilDateTime, d Disambiguator) (Instant, error) {
	wall := civil.wall()

	if zone.Fixed() {
		leaf, _ := zone.LeafAt(0)
		return Instant(wall - int64(leaf.Offset.Total())), nil
	}

	z := zone.(*VariableZone)

	// Any valid interpretation's instant lies within a day of the
	// wall reading (offset magnitude is under 24h), so only leaves
	// active in that window can be candidates.
	lo := z.indexAtOrBefore(Instant(wall - maxOffsetSeconds))
	hi := z.indexAtOrBefore(Instant(wall + maxOffsetSeconds))
	if hi < 0 {
		return 0, &NoApplicableRuleError{Zone: z.name, At: Instant(wall)}
	}
	if lo < 0 {
		lo = 0
	}

	candidates := make([]Instant, 0, 2)
	for i := lo; i <= hi; i++ {
		leaf := z.transitions[i].Leaf
		t := Instant(wall - int64(leaf.Offset.Total()))
		active, err := z.LeafAt(t)
		if err != nil || !active.Equal(leaf) {
			continue
		}
		if !containsInstant(candidates, t) {
			candidates = append(candidates, t)
		}
	}
	sortInstants(candidates)

	switch len(candidates) {
	case 0:
		return 0, &NonExistentTimeError{Zone: z.name, Civil: civil}
	case 1:
		return candidates[0], nil
	}

	earlier := candidates[0]
	later := candidates[len(candidates)-1]
	switch d {
	case DisambiguateEarlier:
		return earlier, nil
	case DisambiguateLater:
		return later, nil
	default:
		return 0, &AmbiguousTimeError{Zone: z.name, Civil: civil, Earlier: earlier, Later: later}
	}
}

func containsInstant(s []Instant, t Instant) bool {
	for _, v := range s {
		if v == t {
			return true
		}
	}
	return false
}

func sortInstants(s []Instant) {
	// Candidate sets have at most a handful of entries.
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
