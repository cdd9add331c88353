// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/chrono/pkg/tz"
)

var (
	resolveEarlier    bool
	resolveLater      bool
	resolveOccurrence int
)

var resolveCmd = &cobra.Command{
	Use:   "resolve ZONE CIVIL",
	Short: "Resolve a civil date-time to a UTC instant",
	Long: "Resolve a civil reading like 2024-10-27T02:30:00 against a zone.\n" +
		"Ambiguous readings fail unless --earlier, --later, or --occurrence\n" +
		"selects one; readings inside a forward-jump gap always fail.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		civil, err := tz.ParseCivil(args[1])
		if err != nil {
			return err
		}
		d, err := disambiguatorFromFlags(cmd)
		if err != nil {
			return err
		}

		logger := newLogger()
		defer logger.Close()

		svc, err := newService(logger)
		if err != nil {
			return err
		}
		defer svc.Close()

		zone, err := svc.LoadOrCompile(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		zdt, err := tz.NewZonedDateTimeFromCivil(zone, civil, d)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "instant: %d\n", zdt.Instant())
		fmt.Fprintf(cmd.OutOrStdout(), "utc:     %s\n", zdt.Instant())
		fmt.Fprintf(cmd.OutOrStdout(), "local:   %s\n", zdt.Format())
		return nil
	},
}

// disambiguatorFromFlags reconciles the three selection flags. At most
// one may be set.
func disambiguatorFromFlags(cmd *cobra.Command) (tz.Disambiguator, error) {
	set := 0
	if resolveEarlier {
		set++
	}
	if resolveLater {
		set++
	}
	if cmd.Flags().Changed("occurrence") {
		set++
	}
	if set > 1 {
		return tz.DisambiguateStrict, fmt.Errorf("at most one of --earlier, --later, --occurrence may be given")
	}

	switch {
	case resolveEarlier:
		return tz.DisambiguateEarlier, nil
	case resolveLater:
		return tz.DisambiguateLater, nil
	case cmd.Flags().Changed("occurrence"):
		return tz.DisambiguatorFromOrdinal(resolveOccurrence)
	}
	return tz.DisambiguateStrict, nil
}

func init() {
	resolveCmd.Flags().BoolVar(&resolveEarlier, "earlier", false, "select the first occurrence of an ambiguous reading")
	resolveCmd.Flags().BoolVar(&resolveLater, "later", false, "select the second occurrence of an ambiguous reading")
	resolveCmd.Flags().IntVar(&resolveOccurrence, "occurrence", 0, "select an ambiguous occurrence by ordinal (1 or 2)")
	rootCmd.AddCommand(resolveCmd)
}
