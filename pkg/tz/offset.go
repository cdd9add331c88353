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

// maxOffsetSeconds bounds the magnitude of any valid total offset.
// No geopolitical zone is a full day away from UTC.
const maxOffsetSeconds = 24 * 60 * 60

// Offset is an immutable signed seconds-from-UTC value, decomposed
// into a standard component and a daylight-saving delta.
//
// The total offset (Std + DST) must have magnitude strictly under
// 24 hours; NewOffset enforces this at construction.
type Offset struct {
	std int32
	dst int32
}

// NewOffset builds an Offset from a standard component and a
// daylight-saving delta, both in seconds.
//
// Outputs:
//
//	Offset - The validated offset.
//	error - *InvalidOffsetError if |std+dst| >= 24h.
func NewOffset(std, dst int) (Offset, error) {
	total := std + dst
	if total <= -maxOffsetSeconds || total >= maxOffsetSeconds {
		return Offset{}, &InvalidOffsetError{Seconds: total}
	}
	return Offset{std: int32(std), dst: int32(dst)}, nil
}

// MustOffset is NewOffset for statically known values. Panics on an
// invalid offset.
func MustOffset(std, dst int) Offset {
	o, err := NewOffset(std, dst)
	if err != nil {
		panic(err)
	}
	return o
}

// Std returns the standard component in seconds.
func (o Offset) Std() int { return int(o.std) }

// DST returns the daylight-saving delta in seconds.
func (o Offset) DST() int { return int(o.dst) }

// Total returns the effective seconds east of UTC.
func (o Offset) Total() int { return int(o.std) + int(o.dst) }

// IsDST reports whether the daylight-saving delta is non-zero.
func (o Offset) IsDST() bool { return o.dst != 0 }

// String renders the total offset as [+-]hh:mm or [+-]hh:mm:ss.
func (o Offset) String() string {
	total := o.Total()
	sign := "+"
	if total < 0 {
		sign = "-"
		total = -total
	}
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if s != 0 {
		return fmt.Sprintf("%s%02d:%02d:%02d", sign, h, m, s)
	}
	return fmt.Sprintf("%s%02d:%02d", sign, h, m)
}

// Leaf is an immutable abbreviation+offset pair describing the UTC
// offset active over some half-open interval of time.
//
// The abbreviation is empty only for the degenerate fixed UTC zone.
type Leaf struct {
	// Abbrev is the short zone designation, e.g. "CET" or "CEST".
	Abbrev string

	// Offset is the UTC offset active while this leaf applies.
	Offset Offset
}

// Equal reports whether two leaves have the same abbreviation and the
// same offset decomposition.
func (l Leaf) Equal(other Leaf) bool {
	return l.Abbrev == other.Abbrev && l.Offset == other.Offset
}

// String renders the leaf as "ABBREV (+hh:mm)".
func (l Leaf) String() string {
	return fmt.Sprintf("%s (%s)", l.Abbrev, l.Offset)
}

// Transition is a single offset-change event: from At (inclusive)
// until the next transition's instant, Leaf is active.
type Transition struct {
	At   Instant
	Leaf Leaf
}
