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

import (
	"fmt"
	"strings"
)

// NextTransitionReport renders a diagnostic description of the next
// offset change after the given value: the local readings and offsets
// on both sides and whether the clock jumps forward or backward.
//
// Returns "" when no further transition is known (fixed zone or
// horizon reached).
func NextTransitionReport(z ZonedDateTime) string {
	info := z.NextTransition()
	if info == nil {
		return ""
	}

	localBefore := CivilOf(info.At, info.Before)
	localAfter := CivilOf(info.At, info.After)
	direction := "backward"
	if info.Forward() {
		direction = "forward"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "next transition in %s at %s (%s)\n", z.zone.Name(), info.At, direction)
	fmt.Fprintf(&b, "  before: %s %s %s\n", localBefore, info.Before.Offset, info.Before.Abbrev)
	fmt.Fprintf(&b, "  after:  %s %s %s", localAfter, info.After.Offset, info.After.Abbrev)
	return b.String()
}
