// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tzcache

import (
	"context"
	"errors"

	"github.com/AleutianAI/chrono/pkg/tz"
)

// ErrEntryNotFound reports that a store holds no entry for the
// requested zone.
var ErrEntryNotFound = errors.New("tzcache: entry not found")

// Entry is one persisted compiled zone: its transition table tagged
// with the rule-source version it was compiled from. Immutable once
// written.
type Entry struct {
	// Version tags the rule source this entry was compiled from. A
	// mismatch with the current source forces recompilation.
	Version string

	// Horizon is the cutoff the table was expanded to.
	Horizon tz.Instant

	// Transitions is the compiled table, strictly increasing.
	Transitions []tz.Transition
}

// EntryFromZone packages a compiled zone for persistence.
func EntryFromZone(version string, z *tz.VariableZone) *Entry {
	return &Entry{
		Version:     version,
		Horizon:     z.Horizon(),
		Transitions: z.Transitions(),
	}
}

// Zone reconstructs the runtime handle, revalidating the table
// invariants.
func (e *Entry) Zone(name string) (*tz.VariableZone, error) {
	z, err := tz.NewVariableZone(name, e.Transitions, e.Horizon)
	if err != nil {
		return nil, &tz.CacheCorruptionError{Zone: name, Reason: err.Error()}
	}
	return z, nil
}

// Store is the persistent backend of the cache. Implementations must
// make Save atomic: a concurrent Load observes either the previous
// entry or the new one, never a partial write.
type Store interface {
	// Load returns the persisted entry for a zone, or
	// ErrEntryNotFound. Corrupt entries fail with
	// *tz.CacheCorruptionError.
	Load(ctx context.Context, zone string) (*Entry, error)

	// Save atomically persists an entry, replacing any previous one.
	Save(ctx context.Context, zone string, e *Entry) error

	// Names lists the zone names with persisted entries.
	Names(ctx context.Context) ([]string, error)

	// Close releases backend resources.
	Close() error
}
