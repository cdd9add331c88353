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

import (
	"errors"
	"sort"
)

// TimeZone is the closed capability interface over the two zone
// kinds. Only *FixedZone and *VariableZone implement it; the
// unexported method seals the set.
type TimeZone interface {
	// Name returns the zone's identifier, e.g. "Europe/Berlin".
	Name() string

	// LeafAt returns the leaf active at the given UTC instant.
	//
	// Outputs:
	//
	//	Leaf - The active abbreviation+offset pair.
	//	error - *NoApplicableRuleError if t precedes the zone's
	//	        earliest known transition.
	LeafAt(t Instant) (Leaf, error)

	// Fixed reports whether the zone has a single permanent leaf.
	Fixed() bool

	sealedZone()
}

// FixedZone is the degenerate zone kind with exactly one permanently
// active leaf and no transitions. It is always resolvable.
type FixedZone struct {
	name string
	leaf Leaf
}

// NewFixedZone builds a fixed zone from a name, an abbreviation, and
// a total offset in seconds.
//
// Outputs:
//
//	*FixedZone - The zone.
//	error - *InvalidOffsetError if the offset is out of range.
func NewFixedZone(name, abbrev string, offsetSeconds int) (*FixedZone, error) {
	off, err := NewOffset(offsetSeconds, 0)
	if err != nil {
		return nil, err
	}
	return &FixedZone{name: name, leaf: Leaf{Abbrev: abbrev, Offset: off}}, nil
}

// UTC returns the degenerate fixed UTC zone. Its leaf carries an
// empty abbreviation by convention.
func UTC() *FixedZone {
	return &FixedZone{name: "UTC", leaf: Leaf{}}
}

// Name returns the zone identifier.
func (z *FixedZone) Name() string { return z.name }

// LeafAt returns the sole leaf for any instant. It never fails.
func (z *FixedZone) LeafAt(Instant) (Leaf, error) { return z.leaf, nil }

// Fixed reports true.
func (z *FixedZone) Fixed() bool { return true }

// Leaf returns the sole permanently active leaf.
func (z *FixedZone) Leaf() Leaf { return z.leaf }

func (z *FixedZone) sealedZone() {}

// VariableZone is the runtime handle for a compiled zone: a name, an
// ordered transition table, and the horizon beyond which no further
// transitions were computed.
//
// Thread Safety:
//
//	Immutable after construction; safe for unbounded concurrent
//	readers.
type VariableZone struct {
	name        string
	transitions []Transition
	horizon     Instant
}

// NewVariableZone builds a variable zone and validates the table
// invariants: at least one transition and strictly increasing
// instants (which also rules out duplicates).
func NewVariableZone(name string, transitions []Transition, horizon Instant) (*VariableZone, error) {
	if len(transitions) == 0 {
		return nil, errors.New("tz: variable zone needs at least one transition")
	}
	for i := 1; i < len(transitions); i++ {
		if transitions[i].At <= transitions[i-1].At {
			return nil, errors.New("tz: transitions must be strictly increasing by instant")
		}
	}
	owned := make([]Transition, len(transitions))
	copy(owned, transitions)
	return &VariableZone{name: name, transitions: owned, horizon: horizon}, nil
}

// Name returns the zone identifier.
func (z *VariableZone) Name() string { return z.name }

// Fixed reports false.
func (z *VariableZone) Fixed() bool { return false }

// Horizon returns the cutoff instant beyond which the table is not
// populated.
func (z *VariableZone) Horizon() Instant { return z.horizon }

// Transitions returns the transition table. The returned slice is
// shared; callers must not modify it.
func (z *VariableZone) Transitions() []Transition { return z.transitions }

func (z *VariableZone) sealedZone() {}

// transitionKey is the single comparison-key accessor both searches
// go through, so bare instants and Transition records are never
// compared through different code paths.
func (z *VariableZone) transitionKey(i int) Instant { return z.transitions[i].At }

// indexAtOrBefore returns the index of the rightmost transition whose
// instant is <= t, or -1 if t precedes the first transition.
func (z *VariableZone) indexAtOrBefore(t Instant) int {
	i := sort.Search(len(z.transitions), func(i int) bool {
		return z.transitionKey(i) > t
	})
	return i - 1
}

// indexStrictlyAfter returns the index of the first transition whose
// instant is > t, or len(transitions) if none is.
func (z *VariableZone) indexStrictlyAfter(t Instant) int {
	return sort.Search(len(z.transitions), func(i int) bool {
		return z.transitionKey(i) > t
	})
}

// LeafAt returns the leaf of the rightmost transition at or before t.
//
// Outputs:
//
//	Leaf - The active leaf.
//	error - *NoApplicableRuleError if t precedes the first
//	        transition.
func (z *VariableZone) LeafAt(t Instant) (Leaf, error) {
	i := z.indexAtOrBefore(t)
	if i < 0 {
		return Leaf{}, &NoApplicableRuleError{Zone: z.name, At: t}
	}
	return z.transitions[i].Leaf, nil
}

// Abbreviations returns the distinct leaf abbreviations appearing in
// the transition table, sorted. Empty abbreviations are skipped.
func (z *VariableZone) Abbreviations() []string {
	seen := make(map[string]struct{}, 4)
	for _, tr := range z.transitions {
		if tr.Leaf.Abbrev != "" {
			seen[tr.Leaf.Abbrev] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for a := range seen {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// TransitionInfo describes the next offset-change event relative to
// some instant: when it happens and the leaves on either side.
type TransitionInfo struct {
	At     Instant
	Before Leaf
	After  Leaf
}

// Forward reports whether the change jumps the civil clock forward
// (the new total offset is greater than the old one).
func (ti *TransitionInfo) Forward() bool {
	return ti.After.Offset.Total() > ti.Before.Offset.Total()
}

// nextTransitionAfter returns the first transition strictly after t,
// or nil when t is at or beyond the last known transition (horizon
// reached) or precedes the first one (no before-leaf is defined
// there, and no ZonedDateTime can exist there either).
func (z *VariableZone) nextTransitionAfter(t Instant) *TransitionInfo {
	i := z.indexStrictlyAfter(t)
	if i == 0 || i >= len(z.transitions) {
		return nil
	}
	return &TransitionInfo{
		At:     z.transitions[i].At,
		Before: z.transitions[i-1].Leaf,
		After:  z.transitions[i].Leaf,
	}
}
