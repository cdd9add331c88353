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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCivil(t *testing.T) {
	c, err := ParseCivil("2024-10-27T02:30:00")
	require.NoError(t, err)
	assert.Equal(t, CivilDateTime{Year: 2024, Month: time.October, Day: 27, Hour: 2, Minute: 30}, c)

	// String round-trips the parse layout.
	assert.Equal(t, "2024-10-27T02:30:00", c.String())
}

func TestParseCivil_Rejects(t *testing.T) {
	for _, s := range []string{"", "2024-10-27", "2024-10-27 02:30:00", "2024-10-27T02:30:00+01:00"} {
		_, err := ParseCivil(s)
		assert.Error(t, err, "input %q", s)
	}
}

// TestCivilFromTime_DiscardsZone verifies the reading keeps the local
// calendar fields and drops the source offset entirely.
func TestCivilFromTime_DiscardsZone(t *testing.T) {
	loc := time.FixedZone("X", 5*3600)
	at := time.Date(2024, time.January, 1, 23, 59, 59, 500_000_000, loc)

	c := CivilFromTime(at)
	assert.Equal(t, CivilDateTime{Year: 2024, Month: time.January, Day: 1, Hour: 23, Minute: 59, Second: 59}, c)
}

// TestCivilOf verifies the leaf's total offset shifts the calendar
// reading, including across a day boundary.
func TestCivilOf(t *testing.T) {
	// 1970-01-01T23:30:00Z
	at := Instant(23*3600 + 30*60)

	plusOne := Leaf{Abbrev: "CET", Offset: MustOffset(3600, 0)}
	assert.Equal(t, "1970-01-02T00:30:00", CivilOf(at, plusOne).String())

	minusEleven := Leaf{Abbrev: "SST", Offset: MustOffset(-39600, 0)}
	assert.Equal(t, "1970-01-01T12:30:00", CivilOf(at, minusEleven).String())

	utc := Leaf{}
	assert.Equal(t, "1970-01-01T23:30:00", CivilOf(at, utc).String())
}

func TestInstant_TimeAndString(t *testing.T) {
	i := InstantOf(time.Date(2024, time.March, 31, 1, 0, 0, 0, time.UTC))
	assert.Equal(t, Instant(1711846800), i)
	assert.Equal(t, "2024-03-31T01:00:00Z", i.String())
	assert.Equal(t, time.UTC, i.Time().Location())
}
