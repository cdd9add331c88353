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
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/chrono/pkg/tz"
)

// Backend names for Config.Backend.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
)

// Config is the YAML-loadable cache configuration.
//
// Example:
//
//	source_dir: /usr/share/chrono/rules
//	cache_dir: ~/.chrono/cache
//	backend: file
//	horizon_years: 30
//	watch: true
type Config struct {
	// SourceDir holds the rule source tree (.zi files).
	SourceDir string `yaml:"source_dir"`

	// CacheDir holds persisted compiled entries.
	CacheDir string `yaml:"cache_dir"`

	// Backend selects the store: "file" (default) or "badger".
	Backend string `yaml:"backend"`

	// HorizonYears is how far past now to expand transition tables.
	// Zero means DefaultHorizonYears.
	HorizonYears int `yaml:"horizon_years"`

	// Watch enables rule-source change detection via fsnotify.
	Watch bool `yaml:"watch"`
}

// DefaultConfig returns the file backend with the default horizon.
func DefaultConfig() Config {
	return Config{Backend: BackendFile, HorizonYears: DefaultHorizonYears}
}

// LoadConfig reads and validates a YAML config file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Backend {
	case "", BackendFile, BackendBadger:
	default:
		return fmt.Errorf("tzcache: unknown backend %q (want %q or %q)", c.Backend, BackendFile, BackendBadger)
	}
	if c.HorizonYears < 0 {
		return fmt.Errorf("tzcache: horizon_years must not be negative")
	}
	return nil
}

// Build assembles a Service (and, when Watch is set, a running
// SourceWatcher) from the configuration.
//
// Outputs:
//
//	*Service - The cache service. Caller must Close() when done.
//	*SourceWatcher - Non-nil only when Watch is enabled; already
//	                 started. Caller must Close() when done.
//	error - Non-nil on invalid configuration or backend failure.
func (c Config) Build(clock tz.Clock, logger *slog.Logger) (*Service, *SourceWatcher, error) {
	if err := c.validate(); err != nil {
		return nil, nil, err
	}
	if c.SourceDir == "" {
		return nil, nil, fmt.Errorf("tzcache: source_dir is required")
	}

	var store Store
	var err error
	switch c.Backend {
	case BackendBadger:
		cfg := DefaultBadgerConfig(c.CacheDir)
		cfg.Logger = logger
		store, err = NewBadgerStore(cfg)
	default:
		store, err = NewFileStore(c.CacheDir)
	}
	if err != nil {
		return nil, nil, err
	}

	years := c.HorizonYears
	if years == 0 {
		years = DefaultHorizonYears
	}
	if clock == nil {
		clock = tz.SystemClock{}
	}
	svc, err := NewService(Options{
		Store:   store,
		Source:  NewDirSource(c.SourceDir),
		Horizon: tz.InstantOf(clock.Now().Time().AddDate(years, 0, 0)),
		Clock:   clock,
		Logger:  logger,
	})
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	var watcher *SourceWatcher
	if c.Watch {
		watcher, err = NewSourceWatcher(svc, c.SourceDir, logger)
		if err != nil {
			svc.Close()
			return nil, nil, err
		}
		watcher.Start()
	}
	return svc, watcher, nil
}
