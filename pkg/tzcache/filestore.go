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
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const fileStoreExt = ".tzc"

// FileStore persists one entry per zone as a flat file under a cache
// directory. Writes go to a temporary file in the same directory and
// are published with an atomic rename, so readers in this or any
// other process never observe a partial entry.
type FileStore struct {
	dir string
}

// NewFileStore creates the cache directory if needed and returns a
// store over it.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("tzcache: cache directory is required")
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create cache directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the cache directory.
func (s *FileStore) Dir() string { return s.dir }

// Load reads and decodes the entry for a zone.
func (s *FileStore) Load(ctx context.Context, zone string) (*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(zone))
	if os.IsNotExist(err) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read cache entry for %s: %w", zone, err)
	}
	return decodeEntry(zone, data)
}

// Save encodes the entry, writes it to a temporary file, and
// publishes it atomically.
func (s *FileStore) Save(ctx context.Context, zone string, e *Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encodeEntry(e)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".tzc-*")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write cache entry for %s: %w", zone, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync cache entry for %s: %w", zone, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close cache entry for %s: %w", zone, err)
	}
	if err := os.Rename(tmpName, s.path(zone)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publish cache entry for %s: %w", zone, err)
	}
	return nil
}

// Names lists the zones with persisted entries, sorted.
func (s *FileStore) Names(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dents, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list cache directory: %w", err)
	}
	var names []string
	for _, d := range dents {
		if d.IsDir() || !strings.HasSuffix(d.Name(), fileStoreExt) {
			continue
		}
		names = append(names, unescapeZoneName(strings.TrimSuffix(d.Name(), fileStoreExt)))
	}
	sort.Strings(names)
	return names, nil
}

// Close is a no-op; the store holds no open handles.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) path(zone string) string {
	return filepath.Join(s.dir, escapeZoneName(zone)+fileStoreExt)
}

// Zone names contain path separators ("Europe/Berlin"); entries are
// flat files, so separators are escaped in filenames.
func escapeZoneName(zone string) string {
	return strings.ReplaceAll(zone, "/", "@")
}

func unescapeZoneName(name string) string {
	return strings.ReplaceAll(name, "@", "/")
}

var _ Store = (*FileStore)(nil)
