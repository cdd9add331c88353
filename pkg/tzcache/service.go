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
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/AleutianAI/chrono/pkg/tz"
	"github.com/AleutianAI/chrono/pkg/tz/compile"
)

var tracer = otel.Tracer("chrono.tzcache")

// DefaultHorizonYears is how far past "now" transition tables are
// expanded when no explicit horizon is configured.
const DefaultHorizonYears = 30

// Options configures a Service.
type Options struct {
	// Store is the persistent backend. Required.
	Store Store

	// Source supplies rule text and version tags. Required.
	Source SourceProvider

	// Horizon is the expansion cutoff. Zero means now plus
	// DefaultHorizonYears.
	Horizon tz.Instant

	// Clock supplies "now" for the default horizon. Nil means the
	// system clock.
	Clock tz.Clock

	// Logger receives cache events. Nil means slog.Default().
	Logger *slog.Logger
}

// Service is the process-wide compiled-zone cache: an explicit
// object, not ambient global state, passed by handle to call sites.
//
// Thread Safety:
//
//	Safe for concurrent use. Requests for memoized zones proceed
//	under a read lock; concurrent first requests for the same
//	uncompiled zone are collapsed by singleflight so each zone is
//	compiled at most once per process lifetime (or until
//	invalidated).
type Service struct {
	mu     sync.RWMutex
	zones  map[string]*tz.VariableZone
	flight singleflight.Group

	store   Store
	source  SourceProvider
	horizon tz.Instant
	logger  *slog.Logger
}

// NewService builds a cache service over a store and a rule source.
func NewService(opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, errors.New("tzcache: store is required")
	}
	if opts.Source == nil {
		return nil, errors.New("tzcache: source provider is required")
	}
	horizon := opts.Horizon
	if horizon == 0 {
		clock := opts.Clock
		if clock == nil {
			clock = tz.SystemClock{}
		}
		horizon = tz.InstantOf(clock.Now().Time().AddDate(DefaultHorizonYears, 0, 0))
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		zones:   make(map[string]*tz.VariableZone),
		store:   opts.Store,
		source:  opts.Source,
		horizon: horizon,
		logger:  logger,
	}, nil
}

// Horizon returns the expansion cutoff the service compiles to.
func (s *Service) Horizon() tz.Instant { return s.horizon }

// LoadOrCompile returns the compiled zone for a name, from the
// process memo, the persistent store, or a fresh compile, in that
// order.
//
// Description:
//
//	A persisted entry is used only when its version tag matches the
//	current rule source; a mismatch or a corrupt entry triggers
//	transparent recompilation and a rewrite. Compilation failures
//	are scoped to the requested zone.
//
// Outputs:
//
//	*tz.VariableZone - The immutable runtime handle.
//	error - *tz.RuleParseError, ErrZoneNotFound, or a store I/O
//	        failure.
func (s *Service) LoadOrCompile(ctx context.Context, zone string) (*tz.VariableZone, error) {
	s.mu.RLock()
	z, ok := s.zones[zone]
	s.mu.RUnlock()
	if ok {
		cacheHitsTotal.WithLabelValues("memory").Inc()
		return z, nil
	}

	v, err, _ := s.flight.Do(zone, func() (interface{}, error) {
		// A concurrent winner may have memoized while we queued.
		s.mu.RLock()
		z, ok := s.zones[zone]
		s.mu.RUnlock()
		if ok {
			cacheHitsTotal.WithLabelValues("memory").Inc()
			return z, nil
		}

		z, err := s.loadOrCompileSlow(ctx, zone)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.zones[zone] = z
		s.mu.Unlock()
		return z, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*tz.VariableZone), nil
}

// loadOrCompileSlow consults the persistent store and falls back to
// compiling from rule source.
func (s *Service) loadOrCompileSlow(ctx context.Context, zone string) (*tz.VariableZone, error) {
	ctx, span := tracer.Start(ctx, "tzcache.load_or_compile",
		trace.WithAttributes(attribute.String("tz.zone", zone)))
	defer span.End()

	src, version, err := s.source.Load(zone)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	entry, err := s.store.Load(ctx, zone)
	switch {
	case err == nil && entry.Version == version:
		z, zerr := entry.Zone(zone)
		if zerr == nil {
			cacheHitsTotal.WithLabelValues("disk").Inc()
			span.SetAttributes(attribute.String("tz.cache_tier", "disk"))
			return z, nil
		}
		corruptionRecoveriesTotal.Inc()
		s.logger.Warn("discarding corrupt cache entry",
			"zone", zone, "error", zerr.Error())

	case err == nil:
		versionMismatchesTotal.Inc()
		s.logger.Info("cache entry is version-stale, recompiling",
			"zone", zone, "stored_version", entry.Version, "current_version", version)

	case errors.Is(err, ErrEntryNotFound):
		cacheMissesTotal.Inc()

	default:
		var corrupt *tz.CacheCorruptionError
		if errors.As(err, &corrupt) {
			corruptionRecoveriesTotal.Inc()
			s.logger.Warn("discarding corrupt cache entry",
				"zone", zone, "error", err.Error())
		} else if ctx.Err() != nil {
			return nil, err
		} else {
			s.logger.Warn("cache read failed, recompiling",
				"zone", zone, "error", err.Error())
		}
	}

	z, err := s.compileAndPersist(ctx, zone, src, version)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("tz.cache_tier", "compile"))
	return z, nil
}

// compileAndPersist compiles rule source and writes the result back
// to the store. A write failure is logged but does not fail the
// request; the compiled zone is still served.
func (s *Service) compileAndPersist(ctx context.Context, zone, src, version string) (*tz.VariableZone, error) {
	ctx, span := tracer.Start(ctx, "tzcache.compile",
		trace.WithAttributes(attribute.String("tz.zone", zone)))
	defer span.End()

	timer := prometheus.NewTimer(compileDuration)
	z, err := compile.Compile(zone, src, s.horizon)
	timer.ObserveDuration()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	compilesTotal.Inc()
	span.SetAttributes(attribute.Int("tz.transitions", len(z.Transitions())))

	if err := s.store.Save(ctx, zone, EntryFromZone(version, z)); err != nil {
		s.logger.Warn("failed to persist compiled zone",
			"zone", zone, "error", err.Error())
	} else {
		s.logger.Debug("compiled and persisted zone",
			"zone", zone, "transitions", len(z.Transitions()), "version", version)
	}
	return z, nil
}

// Invalidate drops a zone from the process memo. The next request
// revalidates against the store and rule source.
func (s *Service) Invalidate(zone string) {
	s.mu.Lock()
	_, ok := s.zones[zone]
	delete(s.zones, zone)
	s.mu.Unlock()
	if ok {
		invalidationsTotal.Inc()
		s.logger.Debug("invalidated memoized zone", "zone", zone)
	}
}

// ZoneNames lists every zone name known to the rule source or the
// store, sorted and deduplicated. This is a read-only traversal; no
// compilation happens.
func (s *Service) ZoneNames(ctx context.Context) ([]string, error) {
	fromSource, err := s.source.Names()
	if err != nil {
		return nil, fmt.Errorf("list source zones: %w", err)
	}
	fromStore, err := s.store.Names(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cached zones: %w", err)
	}

	seen := make(map[string]struct{}, len(fromSource)+len(fromStore))
	var names []string
	for _, list := range [][]string{fromSource, fromStore} {
		for _, n := range list {
			if _, dup := seen[n]; !dup {
				seen[n] = struct{}{}
				names = append(names, n)
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

// Close releases the underlying store.
func (s *Service) Close() error {
	return s.store.Close()
}
