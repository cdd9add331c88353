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
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// SourceWatcher invalidates memoized zones when their rule source
// files change on disk, so long-running processes pick up rule
// updates without a restart. The persisted entry is invalidated
// implicitly: the changed file hashes to a new version tag.
type SourceWatcher struct {
	svc    *Service
	fsw    *fsnotify.Watcher
	dir    string
	logger *slog.Logger
	done   chan struct{}
}

// NewSourceWatcher watches the rule source directory tree for the
// given service. Call Start to begin delivering invalidations and
// Close to stop.
func NewSourceWatcher(svc *Service, dir string, logger *slog.Logger) (*SourceWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create source watcher: %w", err)
	}
	// fsnotify does not recurse; register every directory up front.
	err = filepath.WalkDir(dir, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if de.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch rule source directory %s: %w", dir, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SourceWatcher{
		svc:    svc,
		fsw:    fsw,
		dir:    dir,
		logger: logger,
		done:   make(chan struct{}),
	}, nil
}

// Start begins processing file system events in a goroutine.
func (w *SourceWatcher) Start() {
	go w.run()
}

// Close stops the watcher and waits for the event loop to drain.
func (w *SourceWatcher) Close() error {
	err := w.fsw.Close()
	<-w.done
	return err
}

func (w *SourceWatcher) run() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("source watcher error", "error", err.Error())
		}
	}
}

func (w *SourceWatcher) handle(ev fsnotify.Event) {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	if !strings.HasSuffix(ev.Name, sourceExt) {
		return
	}
	rel, err := filepath.Rel(w.dir, ev.Name)
	if err != nil {
		return
	}
	zone := strings.TrimSuffix(filepath.ToSlash(rel), sourceExt)
	w.logger.Info("rule source changed", "zone", zone, "op", ev.Op.String())
	w.svc.Invalidate(zone)
}
