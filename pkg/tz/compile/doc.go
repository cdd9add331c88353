// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package compile turns zone rule source text into ordered transition
// tables.
//
// The input grammar is line-oriented, in the style of the public
// tz database source:
//
//	# comment
//	Rule  NAME  FROM  TO  -  IN  ON       AT     SAVE  LETTER
//	Rule  EU    1981  max -  Mar  lastSun  1:00u  1:00  S
//	Rule  EU    1996  max -  Oct  lastSun  1:00u  0     -
//	Zone  Europe/Berlin  1:00  EU  CE%sT
//
// A Zone line names a standard offset, a rule reference ("-" for
// none, a ruleset name, or a fixed save like "1:00"), an abbreviation
// format, and an optional UNTIL column that opens the next era on a
// continuation line.
//
// Compile expands each era's recurring rules into concrete UTC
// instants up to a horizon, merges adjacent identical leaves, and
// returns a tz.VariableZone whose transitions are strictly increasing
// and deduplicated. Malformed source fails with *tz.RuleParseError
// naming the zone, line number, and line text.
package compile
