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

// InvalidOffsetError reports an offset whose total magnitude reaches
// or exceeds 24 hours. It is fatal to the specific construction call
// only.
type InvalidOffsetError struct {
	// Seconds is the rejected total offset.
	Seconds int
}

func (e *InvalidOffsetError) Error() string {
	return fmt.Sprintf("tz: offset %ds out of range (magnitude must be under 24h)", e.Seconds)
}

// RuleParseError reports malformed zone rule source encountered
// during compilation. Compilation of the named zone fails; other
// zones remain usable.
type RuleParseError struct {
	// Zone is the zone whose source failed to parse.
	Zone string

	// Line is the 1-based line number of the offending text.
	Line int

	// Text is the offending line, trimmed.
	Text string

	// Err is the underlying cause, if any.
	Err error
}

func (e *RuleParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tz: parse %s line %d %q: %v", e.Zone, e.Line, e.Text, e.Err)
	}
	return fmt.Sprintf("tz: parse %s line %d %q", e.Zone, e.Line, e.Text)
}

func (e *RuleParseError) Unwrap() error { return e.Err }

// NoApplicableRuleError reports a query instant that precedes the
// earliest known transition of a zone: no defined rule applies.
type NoApplicableRuleError struct {
	Zone string
	At   Instant
}

func (e *NoApplicableRuleError) Error() string {
	return fmt.Sprintf("tz: no rule applies in %s at %s (before recorded history)", e.Zone, e.At)
}

// NonExistentTimeError reports a civil time that falls inside a gap
// created by a forward offset jump. It carries the requested civil
// time and the zone name.
type NonExistentTimeError struct {
	Zone  string
	Civil CivilDateTime
}

func (e *NonExistentTimeError) Error() string {
	return fmt.Sprintf("tz: civil time %s does not exist in %s (forward-jump gap)", e.Civil, e.Zone)
}

// AmbiguousTimeError reports a civil time with two valid resolutions
// and no disambiguator supplied. Both candidate instants are carried
// so a caller can choose.
type AmbiguousTimeError struct {
	Zone    string
	Civil   CivilDateTime
	Earlier Instant
	Later   Instant
}

func (e *AmbiguousTimeError) Error() string {
	return fmt.Sprintf("tz: civil time %s is ambiguous in %s (candidates %s and %s)",
		e.Civil, e.Zone, e.Earlier, e.Later)
}

// CacheCorruptionError reports a persisted compiled entry that failed
// integrity or version checks. The cache layer recovers by
// recompiling from rule source; this error surfaces only when
// recovery is impossible.
type CacheCorruptionError struct {
	Zone   string
	Reason string
}

func (e *CacheCorruptionError) Error() string {
	return fmt.Sprintf("tz: cached entry for %s is corrupt: %s", e.Zone, e.Reason)
}
