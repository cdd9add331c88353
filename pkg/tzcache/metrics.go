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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for cache operations.
var (
	cacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chrono_tzcache_hits_total",
		Help: "Cache hits by tier (memory or disk)",
	}, []string{"tier"})

	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chrono_tzcache_misses_total",
		Help: "Requests that required compilation",
	})

	compilesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chrono_tzcache_compiles_total",
		Help: "Zone compilations performed",
	})

	compileDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "chrono_tzcache_compile_duration_seconds",
		Help:    "Time spent compiling a zone from rule source",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})

	corruptionRecoveriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chrono_tzcache_corruption_recoveries_total",
		Help: "Persisted entries discarded as corrupt and recompiled",
	})

	versionMismatchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chrono_tzcache_version_mismatches_total",
		Help: "Persisted entries discarded as version-stale and recompiled",
	})

	invalidationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chrono_tzcache_invalidations_total",
		Help: "Memoized zones dropped by explicit or watcher invalidation",
	})
)
