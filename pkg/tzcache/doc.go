// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package tzcache is the disk-backed compiled-zone cache.
//
// A Service memoizes compiled zones in process and persists them
// through a pluggable Store, keyed by zone name and tagged with the
// rule-source version. Loading a zone follows the tiered model used
// elsewhere in the codebase:
//
//	Hot (process map) → Warm (Store: file dir or BadgerDB) → compile
//
// Guarantees:
//
//   - At most one compile per zone name per process, even under
//     concurrent first requests (singleflight).
//   - Persisted writes are atomic; concurrent readers never observe
//     a partially written entry.
//   - A version mismatch or a corrupt entry triggers transparent
//     recompilation and a rewrite, never silent reuse of stale data.
//   - Parse failures are zone-scoped: other zones stay usable.
package tzcache
