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
	"fmt"
	"time"
)

// civilLayout is the wire/string form of a civil reading. It
// deliberately has no offset designator.
const civilLayout = "2006-01-02T15:04:05"

// CivilDateTime is a zone-relative calendar/clock reading with no
// inherent offset. Which absolute instant it denotes (if any) depends
// on the zone it is resolved against.
type CivilDateTime struct {
	Year   int
	Month  time.Month
	Day    int
	Hour   int
	Minute int
	Second int
}

// CivilFromTime extracts the calendar/clock fields of t as a civil
// reading, discarding zone and sub-second information.
func CivilFromTime(t time.Time) CivilDateTime {
	return CivilDateTime{
		Year:   t.Year(),
		Month:  t.Month(),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Second: t.Second(),
	}
}

// CivilOf returns the civil reading that the given leaf's offset
// assigns to the UTC instant t. This is the projection used by
// ZonedDateTime.Civil and by the round-trip property: resolving the
// result against the same leaf's occurrence yields t again.
func CivilOf(t Instant, leaf Leaf) CivilDateTime {
	return CivilFromTime(time.Unix(int64(t)+int64(leaf.Offset.Total()), 0).UTC())
}

// ParseCivil parses "2006-01-02T15:04:05" into a civil reading.
func ParseCivil(s string) (CivilDateTime, error) {
	t, err := time.Parse(civilLayout, s)
	if err != nil {
		return CivilDateTime{}, fmt.Errorf("parse civil time %q: %w", s, err)
	}
	return CivilFromTime(t), nil
}

// wall returns the reading interpreted as UTC wall seconds. This is
// the comparison key ResolveLocal subtracts candidate offsets from;
// the stdlib does the calendar arithmetic.
func (c CivilDateTime) wall() int64 {
	return time.Date(c.Year, c.Month, c.Day, c.Hour, c.Minute, c.Second, 0, time.UTC).Unix()
}

// String renders the reading as "2006-01-02T15:04:05".
func (c CivilDateTime) String() string {
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d",
		c.Year, int(c.Month), c.Day, c.Hour, c.Minute, c.Second)
}
