// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command chrono inspects compiled time zones: listing the known
// catalog, resolving civil date-times to UTC instants, and reporting
// upcoming offset transitions.
//
// Usage:
//
//	chrono list
//	chrono resolve Europe/Berlin 2024-10-27T02:30:00 --occurrence 1
//	chrono transitions Europe/Berlin --at 2024-06-01T00:00:00
package main

import (
	"os"

	"github.com/AleutianAI/chrono/cmd/chrono/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
