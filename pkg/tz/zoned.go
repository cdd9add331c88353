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

// ZonedDateTime combines a UTC instant, a time-zone handle, and the
// leaf active at that instant in that zone. The leaf is derived at
// construction and re-derived by every operation that changes the
// instant or the zone, so it is consistent at all times.
//
// ZonedDateTime is an immutable value; operations return new values.
type ZonedDateTime struct {
	instant Instant
	zone    TimeZone
	leaf    Leaf
}

// NewZonedDateTime constructs a ZonedDateTime from a UTC instant:
// LeafAt followed by packaging.
func NewZonedDateTime(zone TimeZone, t Instant) (ZonedDateTime, error) {
	leaf, err := zone.LeafAt(t)
	if err != nil {
		return ZonedDateTime{}, err
	}
	return ZonedDateTime{instant: t, zone: zone, leaf: leaf}, nil
}

// NewZonedDateTimeFromCivil constructs a ZonedDateTime from a civil
// reading: ResolveLocal followed by packaging. See ResolveLocal for
// the disambiguation contract.
func NewZonedDateTimeFromCivil(zone TimeZone, civil CivilDateTime, d Disambiguator) (ZonedDateTime, error) {
	t, err := ResolveLocal(zone, civil, d)
	if err != nil {
		return ZonedDateTime{}, err
	}
	return NewZonedDateTime(zone, t)
}

// Now constructs a ZonedDateTime at the clock's current instant.
func Now(clock Clock, zone TimeZone) (ZonedDateTime, error) {
	return NewZonedDateTime(zone, clock.Now())
}

// Instant returns the absolute UTC instant.
func (z ZonedDateTime) Instant() Instant { return z.instant }

// Zone returns the time-zone handle.
func (z ZonedDateTime) Zone() TimeZone { return z.zone }

// Leaf returns the cached currently-active leaf.
func (z ZonedDateTime) Leaf() Leaf { return z.leaf }

// Civil returns the zone-relative calendar/clock reading.
func (z ZonedDateTime) Civil() CivilDateTime {
	return CivilOf(z.instant, z.leaf)
}

// In projects the value into another zone: the absolute instant stays
// fixed, the active leaf is recomputed under newZone. Civil fields
// are never consulted.
//
// Outputs:
//
//	ZonedDateTime - The re-zoned value.
//	error - *NoApplicableRuleError if the instant precedes
//	        newZone's recorded history.
func (z ZonedDateTime) In(newZone TimeZone) (ZonedDateTime, error) {
	return NewZonedDateTime(newZone, z.instant)
}

// NextTransition returns the first offset-change event strictly after
// this value's instant, or nil for fixed zones and when the horizon
// is reached.
func (z ZonedDateTime) NextTransition() *TransitionInfo {
	vz, ok := z.zone.(*VariableZone)
	if !ok {
		return nil
	}
	return vz.nextTransitionAfter(z.instant)
}

// Format renders the value as an RFC 3339-style stamp with the active
// offset and abbreviation, e.g. "2024-03-31T03:00:00+02:00 CEST".
func (z ZonedDateTime) Format() string {
	if z.leaf.Abbrev == "" {
		return fmt.Sprintf("%s%s", z.Civil(), z.leaf.Offset)
	}
	return fmt.Sprintf("%s%s %s", z.Civil(), z.leaf.Offset, z.leaf.Abbrev)
}

// String is Format plus the zone name.
func (z ZonedDateTime) String() string {
	return fmt.Sprintf("%s [%s]", z.Format(), z.zone.Name())
}
