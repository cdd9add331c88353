// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package cmd implements the chrono CLI commands. The commands are a
// thin convenience layer over the tz and tzcache packages; no
// resolution logic lives here.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/chrono/pkg/logging"
	"github.com/AleutianAI/chrono/pkg/tzcache"
)

var (
	configPath string
	sourceDir  string
	cacheDir   string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "chrono",
	Short:         "Inspect compiled time zones",
	Long:          "chrono compiles time-zone rule source into transition tables and\nanswers civil-time resolution queries against them.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML cache config")
	rootCmd.PersistentFlags().StringVar(&sourceDir, "source-dir", "", "rule source directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "compiled cache directory (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the CLI.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// newLogger builds the CLI logger from the persistent flags.
func newLogger() *logging.Logger {
	level := logging.LevelInfo
	if verbose {
		level = logging.LevelDebug
	}
	return logging.New(logging.Config{Level: level, Service: "chrono"})
}

// newService assembles the cache service from config file and flag
// overrides. The caller must Close() the returned service.
func newService(logger *logging.Logger) (*tzcache.Service, error) {
	cfg := tzcache.DefaultConfig()
	if configPath != "" {
		var err error
		cfg, err = tzcache.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
	}
	if sourceDir != "" {
		cfg.SourceDir = sourceDir
	}
	if cacheDir != "" {
		cfg.CacheDir = cacheDir
	}
	cfg.Watch = false // one-shot CLI, nothing to invalidate

	svc, _, err := cfg.Build(nil, logger.Slog())
	return svc, err
}
