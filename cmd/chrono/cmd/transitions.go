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

var transitionsAt string

var transitionsCmd = &cobra.Command{
	Use:   "transitions ZONE",
	Short: "Report the next offset transition in a zone",
	Long: "Report the next offset change after a reference point, with the\n" +
		"local readings on both sides. The reference defaults to now; pass\n" +
		"--at to anchor it at a civil reading instead.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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

		var zdt tz.ZonedDateTime
		if transitionsAt != "" {
			civil, err := tz.ParseCivil(transitionsAt)
			if err != nil {
				return err
			}
			zdt, err = tz.NewZonedDateTimeFromCivil(zone, civil, tz.DisambiguateEarlier)
			if err != nil {
				return err
			}
		} else {
			zdt, err = tz.Now(tz.SystemClock{}, zone)
			if err != nil {
				return err
			}
		}

		report := tz.NextTransitionReport(zdt)
		if report == "" {
			fmt.Fprintf(cmd.OutOrStdout(), "no further transitions in %s before the compiled horizon\n", args[0])
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), report)
		return nil
	},
}

func init() {
	transitionsCmd.Flags().StringVar(&transitionsAt, "at", "", "civil reference point, e.g. 2024-06-01T00:00:00")
	rootCmd.AddCommand(transitionsCmd)
}
