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

func civil(y int, m time.Month, d, hh, mm, ss int) CivilDateTime {
	return CivilDateTime{Year: y, Month: m, Day: d, Hour: hh, Minute: mm, Second: ss}
}

func TestResolveLocal_FixedZone(t *testing.T) {
	z, err := NewFixedZone("Etc/GMT-1", "X01", 3600)
	require.NoError(t, err)

	// 1970-01-02T00:00:00 at +01:00 is 1970-01-01T23:00:00Z.
	got, err := ResolveLocal(z, civil(1970, time.January, 2, 0, 0, 0), DisambiguateStrict)
	require.NoError(t, err)
	assert.Equal(t, Instant(86400-3600), got)
}

// TestResolveLocal_Unique covers readings adjacent to, but outside,
// the repeated interval of a backward transition.
func TestResolveLocal_Unique(t *testing.T) {
	z := fallBackZone(t)

	// 1970-04-10T23:00:00 precedes the repeated hour: only the +01:00
	// interpretation survives self-consistency.
	got, err := ResolveLocal(z, civil(1970, time.April, 10, 23, 0, 0), DisambiguateStrict)
	require.NoError(t, err)
	assert.Equal(t, fallBackAt-7200, got)

	// 1970-04-11T01:00:00 follows it: only the +00:00 interpretation
	// survives.
	got, err = ResolveLocal(z, civil(1970, time.April, 11, 1, 0, 0), DisambiguateStrict)
	require.NoError(t, err)
	assert.Equal(t, fallBackAt+3600, got)
}

// TestResolveLocal_AmbiguousStrict pins the two candidates of a
// repeated reading and the strict failure carrying both.
func TestResolveLocal_AmbiguousStrict(t *testing.T) {
	z := fallBackZone(t)
	reading := civil(1970, time.April, 11, 0, 30, 0)

	_, err := ResolveLocal(z, reading, DisambiguateStrict)
	require.Error(t, err)

	var ambiguous *AmbiguousTimeError
	require.ErrorAs(t, err, &ambiguous)
	assert.Equal(t, "Test/FallBack", ambiguous.Zone)
	assert.Equal(t, reading, ambiguous.Civil)
	assert.Equal(t, fallBackAt-1800, ambiguous.Earlier)
	assert.Equal(t, fallBackAt+1800, ambiguous.Later)
}

func TestResolveLocal_AmbiguousSelection(t *testing.T) {
	z := fallBackZone(t)
	reading := civil(1970, time.April, 11, 0, 30, 0)

	got, err := ResolveLocal(z, reading, DisambiguateEarlier)
	require.NoError(t, err)
	assert.Equal(t, fallBackAt-1800, got)

	got, err = ResolveLocal(z, reading, DisambiguateLater)
	require.NoError(t, err)
	assert.Equal(t, fallBackAt+1800, got)
}

// TestResolveLocal_AmbiguousAtBoundary verifies the repeated interval
// includes the reading at the transition's post-change wall time.
func TestResolveLocal_AmbiguousAtBoundary(t *testing.T) {
	z := fallBackZone(t)
	reading := civil(1970, time.April, 11, 0, 0, 0)

	var ambiguous *AmbiguousTimeError
	_, err := ResolveLocal(z, reading, DisambiguateStrict)
	require.ErrorAs(t, err, &ambiguous)
	assert.Equal(t, fallBackAt-3600, ambiguous.Earlier)
	assert.Equal(t, fallBackAt, ambiguous.Later)
}

// TestResolveLocal_Gap verifies a reading inside a forward jump has no
// valid interpretation, even when the gap spans a whole civil day.
func TestResolveLocal_Gap(t *testing.T) {
	z := gapZone(t)

	for _, reading := range []CivilDateTime{
		civil(1970, time.January, 11, 0, 0, 0),   // first skipped second
		civil(1970, time.January, 11, 12, 0, 0),  // middle of the skipped day
		civil(1970, time.January, 11, 23, 59, 59), // last skipped second
	} {
		_, err := ResolveLocal(z, reading, DisambiguateLater)
		require.Error(t, err, "reading %s", reading)

		var gap *NonExistentTimeError
		require.ErrorAs(t, err, &gap)
		assert.Equal(t, "Pacific/Atoll", gap.Zone)
		assert.Equal(t, reading, gap.Civil)
	}
}

func TestResolveLocal_GapBoundaries(t *testing.T) {
	z := gapZone(t)

	// Last valid reading before the jump resolves under -11:00.
	got, err := ResolveLocal(z, civil(1970, time.January, 10, 23, 59, 59), DisambiguateStrict)
	require.NoError(t, err)
	assert.Equal(t, gapAt-1, got)

	// First valid reading after the skipped day is the transition
	// instant itself, under +13:00.
	got, err = ResolveLocal(z, civil(1970, time.January, 12, 0, 0, 0), DisambiguateStrict)
	require.NoError(t, err)
	assert.Equal(t, gapAt, got)
}

func TestResolveLocal_BeforeHistory(t *testing.T) {
	z := fallBackZone(t)

	_, err := ResolveLocal(z, civil(1969, time.January, 1, 0, 0, 0), DisambiguateStrict)
	require.Error(t, err)

	var noRule *NoApplicableRuleError
	require.ErrorAs(t, err, &noRule)
	assert.Equal(t, "Test/FallBack", noRule.Zone)
}

// TestResolveLocal_RoundTrip verifies instant -> civil -> instant is
// the identity when the matching occurrence is selected.
func TestResolveLocal_RoundTrip(t *testing.T) {
	z := fallBackZone(t)

	for _, tt := range []struct {
		at Instant
		d  Disambiguator
	}{
		{1000, DisambiguateStrict},
		{fallBackAt - 1800, DisambiguateEarlier}, // first occurrence
		{fallBackAt + 1800, DisambiguateLater},   // second occurrence
		{fallBackAt + 100 * 86400, DisambiguateStrict},
	} {
		leaf, err := z.LeafAt(tt.at)
		require.NoError(t, err)

		got, err := ResolveLocal(z, CivilOf(tt.at, leaf), tt.d)
		require.NoError(t, err)
		assert.Equal(t, tt.at, got, "instant %d", tt.at)
	}
}

func TestDisambiguatorFromBool(t *testing.T) {
	assert.Equal(t, DisambiguateEarlier, DisambiguatorFromBool(false))
	assert.Equal(t, DisambiguateLater, DisambiguatorFromBool(true))
}

func TestDisambiguatorFromOrdinal(t *testing.T) {
	d, err := DisambiguatorFromOrdinal(1)
	require.NoError(t, err)
	assert.Equal(t, DisambiguateEarlier, d)

	d, err = DisambiguatorFromOrdinal(2)
	require.NoError(t, err)
	assert.Equal(t, DisambiguateLater, d)

	for _, n := range []int{0, 3, -1} {
		_, err := DisambiguatorFromOrdinal(n)
		assert.Error(t, err, "ordinal %d", n)
	}
}

func TestDisambiguator_String(t *testing.T) {
	assert.Equal(t, "strict", DisambiguateStrict.String())
	assert.Equal(t, "earlier", DisambiguateEarlier.String())
	assert.Equal(t, "later", DisambiguateLater.String())
}
