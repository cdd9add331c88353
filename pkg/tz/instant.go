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

// Instant is an absolute point in time, expressed as Unix seconds
// (UTC). It carries no zone information.
type Instant int64

// MinInstant marks the beginning of recorded rule history. The first
// era of a compiled zone starts here. The value leaves headroom so
// offset arithmetic near it cannot overflow int64.
const MinInstant Instant = -(1 << 60)

// InstantOf converts a time.Time to an Instant, truncating sub-second
// precision.
func InstantOf(t time.Time) Instant {
	return Instant(t.Unix())
}

// Time returns the instant as a UTC time.Time.
func (i Instant) Time() time.Time {
	return time.Unix(int64(i), 0).UTC()
}

// String renders the instant as RFC 3339 UTC.
func (i Instant) String() string {
	return i.Time().Format(time.RFC3339)
}
