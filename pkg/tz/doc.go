// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package tz resolves civil date-times against time-zone transition
// tables and round-trips between absolute UTC instants and
// zone-relative civil representations.
//
// # Model
//
// A time zone is a sequence of offset-change events. Each event
// (Transition) activates a Leaf (an abbreviation plus a UTC offset)
// from its instant until the next event. Two zone kinds exist:
//
//   - FixedZone: exactly one permanently active leaf, no transitions.
//   - VariableZone: an ordered transition table bounded by a horizon,
//     typically produced by the compile package and cached by tzcache.
//
// Both implement the closed TimeZone interface; no other
// implementations are possible.
//
// # Resolution
//
// Converting a UTC instant to its active leaf is a binary search
// (LeafAt). Converting a civil reading back to an instant
// (ResolveLocal) is harder: offset changes can make a civil time map
// to zero, one, or two instants. The package surfaces this with a
// three-way contract:
//
//   - zero candidates: NonExistentTimeError (spring-forward gap)
//   - one candidate: returned directly
//   - two candidates: the caller picks via a Disambiguator, or gets
//     an AmbiguousTimeError listing both instants
//
// # Thread Safety
//
// All types in this package are immutable after construction. Lookups
// are pure binary searches safe for unbounded concurrent readers.
package tz
