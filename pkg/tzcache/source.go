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
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrZoneNotFound reports that a source provider has no rule text for
// the requested zone.
var ErrZoneNotFound = errors.New("tzcache: zone not defined in rule source")

// sourceExt is the filename extension of rule source files.
const sourceExt = ".zi"

// SourceProvider supplies authoritative rule text per zone, plus a
// version tag identifying the exact content. The tag is what cache
// entries are validated against.
type SourceProvider interface {
	// Names lists the zones the provider can supply.
	Names() ([]string, error)

	// Load returns the rule source text for a zone and its version
	// tag, or ErrZoneNotFound.
	Load(zone string) (src string, version string, err error)
}

// DirSource reads rule source from a directory tree: the zone
// "Europe/Berlin" maps to "<dir>/Europe/Berlin.zi". The version tag
// is a content hash, so any edit to the file invalidates entries
// compiled from it.
type DirSource struct {
	dir string
}

// NewDirSource returns a provider over the given directory.
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

// Dir returns the source directory.
func (d *DirSource) Dir() string { return d.dir }

// Load reads and hashes the rule source file for a zone.
func (d *DirSource) Load(zone string) (string, string, error) {
	if zone == "" || strings.Contains(zone, "..") || strings.HasPrefix(zone, "/") {
		return "", "", fmt.Errorf("tzcache: invalid zone name %q", zone)
	}
	data, err := os.ReadFile(filepath.Join(d.dir, filepath.FromSlash(zone)+sourceExt))
	if os.IsNotExist(err) {
		return "", "", fmt.Errorf("%w: %s", ErrZoneNotFound, zone)
	}
	if err != nil {
		return "", "", fmt.Errorf("read rule source for %s: %w", zone, err)
	}
	return string(data), sourceVersion(data), nil
}

// Names walks the directory for rule source files.
func (d *DirSource) Names() ([]string, error) {
	var names []string
	err := filepath.WalkDir(d.dir, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if de.IsDir() || !strings.HasSuffix(de.Name(), sourceExt) {
			return nil
		}
		rel, err := filepath.Rel(d.dir, path)
		if err != nil {
			return err
		}
		names = append(names, strings.TrimSuffix(filepath.ToSlash(rel), sourceExt))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list rule sources: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// sourceVersion derives the version tag from raw rule text.
func sourceVersion(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

var _ SourceProvider = (*DirSource)(nil)

// MapSource is an in-memory provider keyed by zone name, for tests
// and embedded rule sets.
type MapSource map[string]string

// Load returns the mapped text and its content hash.
func (m MapSource) Load(zone string) (string, string, error) {
	src, ok := m[zone]
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrZoneNotFound, zone)
	}
	return src, sourceVersion([]byte(src)), nil
}

// Names lists the mapped zones, sorted.
func (m MapSource) Names() ([]string, error) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

var _ SourceProvider = MapSource(nil)
