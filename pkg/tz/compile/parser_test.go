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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/chrono/pkg/tz"
)

func TestParseSource_RulesAndZone(t *testing.T) {
	src := `
# Atlantis experimental rules
Rule	Atl	1990	max	-	Apr	Sun>=1	2:00	1:00	S
Rule	Atl	1990	max	-	Oct	lastSun	2:00	0	-
Zone	Atlantis/Test	1:00	Atl	CE%sT
`
	sf, err := parseSource("Atlantis/Test", src)
	require.NoError(t, err)

	rules := sf.rules["Atl"]
	require.Len(t, rules, 2)

	spring := rules[0]
	assert.Equal(t, 1990, spring.from)
	assert.True(t, spring.toMax)
	assert.Equal(t, time.April, spring.month)
	assert.Equal(t, dayOnOrAfter, spring.on.kind)
	assert.Equal(t, 1, spring.on.day)
	assert.Equal(t, time.Sunday, spring.on.weekday)
	assert.Equal(t, 7200, spring.at.seconds)
	assert.Equal(t, kindWall, spring.at.kind)
	assert.Equal(t, 3600, spring.save)
	assert.Equal(t, "S", spring.letter)

	fall := rules[1]
	assert.Equal(t, dayLast, fall.on.kind)
	assert.Equal(t, time.Sunday, fall.on.weekday)
	assert.Equal(t, 0, fall.save)
	assert.Empty(t, fall.letter)

	eras := sf.zones["Atlantis/Test"]
	require.Len(t, eras, 1)
	assert.Equal(t, 3600, eras[0].stdOffset)
	assert.Equal(t, "Atl", eras[0].ruleset)
	assert.Equal(t, "CE%sT", eras[0].format)
	assert.Nil(t, eras[0].until)
}

func TestParseSource_ContinuationEras(t *testing.T) {
	src := `
Zone	Test/Eras	-5:00	-	EST	1970 Mar 1 0:00u
			-4:00	-	AST
`
	sf, err := parseSource("Test/Eras", src)
	require.NoError(t, err)

	eras := sf.zones["Test/Eras"]
	require.Len(t, eras, 2)

	first := eras[0]
	assert.Equal(t, -18000, first.stdOffset)
	require.NotNil(t, first.until)
	assert.Equal(t, 1970, first.until.year)
	assert.Equal(t, time.March, first.until.month)
	assert.Equal(t, dayFixed, first.until.day.kind)
	assert.Equal(t, 1, first.until.day.day)
	assert.Equal(t, kindUTC, first.until.at.kind)

	second := eras[1]
	assert.Equal(t, -14400, second.stdOffset)
	assert.Equal(t, "AST", second.format)
	assert.Nil(t, second.until)
}

func TestParseSource_FixedSaveAndComments(t *testing.T) {
	src := `
# leading comment
Zone	Test/Save	1:00	0:30	X	# trailing comment

Link	Test/Save	Test/Alias
`
	sf, err := parseSource("Test/Save", src)
	require.NoError(t, err)

	eras := sf.zones["Test/Save"]
	require.Len(t, eras, 1)
	assert.True(t, eras[0].hasFixedSave)
	assert.Equal(t, 1800, eras[0].fixedSave)
	assert.Empty(t, eras[0].ruleset)
}

// TestParseSource_Errors pins error attribution: every malformed input
// surfaces as *tz.RuleParseError carrying the offending line.
func TestParseSource_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
	}{
		{"rule with wrong column count", "Rule Atl 1990 max - Apr Sun>=1 2:00 1:00", 1},
		{"rule with non-dash type", "Rule Atl 1990 max odd Apr Sun>=1 2:00 1:00 S", 1},
		{"rule with unknown month", "Rule Atl 1990 max - Qux Sun>=1 2:00 1:00 S", 1},
		{"rule with TO before FROM", "Rule Atl 1990 1980 - Apr Sun>=1 2:00 1:00 S", 1},
		{"zone with too few columns", "Zone Test/Bad 1:00 Atl", 1},
		{"duplicate zone", "Zone A 1:00 - X\nZone A 2:00 - Y", 2},
		{"continuation outside zone block", "1:00 - X", 1},
		{"dangling until", "Zone A 1:00 - X 1970", 1},
		{"bad stdoff", "Zone A 1:xx - X", 1},
		{"bad on threshold", "Rule Atl 1990 max - Apr Sun>=40 2:00 1:00 S", 1},
		{"bad day of month", "Rule Atl 1990 max - Apr 32 2:00 1:00 S", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseSource("Test/Bad", tt.src)
			require.Error(t, err)

			var parseErr *tz.RuleParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, "Test/Bad", parseErr.Zone)
			assert.Equal(t, tt.line, parseErr.Line)
		})
	}
}

func TestParseOn(t *testing.T) {
	dr, err := parseOn("15")
	require.NoError(t, err)
	assert.Equal(t, dayRule{kind: dayFixed, day: 15}, dr)

	dr, err = parseOn("lastSun")
	require.NoError(t, err)
	assert.Equal(t, dayRule{kind: dayLast, weekday: time.Sunday}, dr)

	dr, err = parseOn("Fri>=8")
	require.NoError(t, err)
	assert.Equal(t, dayRule{kind: dayOnOrAfter, day: 8, weekday: time.Friday}, dr)

	for _, s := range []string{"0", "32", "lastQux", "Qux>=8", "Sun<=8", ""} {
		_, err := parseOn(s)
		assert.Error(t, err, "input %q", s)
	}
}

func TestParseRuleTime_ClockKinds(t *testing.T) {
	tests := []struct {
		in      string
		seconds int
		kind    timeKind
	}{
		{"2:00", 7200, kindWall},
		{"2:00w", 7200, kindWall},
		{"2:00s", 7200, kindStandard},
		{"2:00u", 7200, kindUTC},
		{"1:00g", 3600, kindUTC},
		{"1:00z", 3600, kindUTC},
		{"0:30:15", 1815, kindWall},
	}
	for _, tt := range tests {
		rt, err := parseRuleTime(tt.in)
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.seconds, rt.seconds, "input %q", tt.in)
		assert.Equal(t, tt.kind, rt.kind, "input %q", tt.in)
	}
}

func TestParseHMS(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"1", 3600},
		{"1:00", 3600},
		{"-5:30", -19800},
		{"+5:45", 20700},
		{"0", 0},
		{"2:30:15", 9015},
		{"-0:44:30", -2670},
	}
	for _, tt := range tests {
		got, err := parseHMS(tt.in)
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}

	for _, s := range []string{"", "1:60", "1:00:60", "1:2:3:4", "x"} {
		_, err := parseHMS(s)
		assert.Error(t, err, "input %q", s)
	}
}

func TestLooksLikeOffset(t *testing.T) {
	assert.True(t, looksLikeOffset("0:30"))
	assert.True(t, looksLikeOffset("-1:00"))
	assert.True(t, looksLikeOffset("+1"))
	assert.False(t, looksLikeOffset("Atl"))
	assert.False(t, looksLikeOffset(""))
}
