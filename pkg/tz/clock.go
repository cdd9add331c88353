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

import "time"

// Clock is the injectable wall-clock seam. Production code uses
// SystemClock; tests supply a FixedClock so now-dependent behavior is
// deterministic.
type Clock interface {
	// Now returns the current UTC instant.
	Now() Instant
}

// SystemClock reads the real system clock.
type SystemClock struct{}

// Now returns the current instant from the operating system.
func (SystemClock) Now() Instant { return Instant(time.Now().Unix()) }

// FixedClock always returns the same instant.
type FixedClock struct {
	At Instant
}

// Now returns the configured instant.
func (c FixedClock) Now() Instant { return c.At }

var _ Clock = SystemClock{}
var _ Clock = FixedClock{}
