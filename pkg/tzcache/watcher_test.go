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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestSourceWatcher_InvalidatesOnChange rewrites a rule file and waits
// for the watcher to drop the memoized handle: the next request must
// reflect the new rules.
func TestSourceWatcher_InvalidatesOnChange(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "Test/Watched", "Zone Test/Watched 1:00 - CET")

	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	svc := newTestService(t, NewDirSource(dir), store)

	watcher, err := NewSourceWatcher(svc, dir, nil)
	require.NoError(t, err)
	watcher.Start()
	defer watcher.Close()

	ctx := context.Background()
	z, err := svc.LoadOrCompile(ctx, "Test/Watched")
	require.NoError(t, err)
	require.Equal(t, []string{"CET"}, z.Abbreviations())

	writeSource(t, dir, "Test/Watched", "Zone Test/Watched 2:00 - EET")

	require.Eventually(t, func() bool {
		z, err := svc.LoadOrCompile(ctx, "Test/Watched")
		if err != nil {
			return false
		}
		abbrevs := z.Abbreviations()
		return len(abbrevs) == 1 && abbrevs[0] == "EET"
	}, 5*time.Second, 20*time.Millisecond)
}

// TestSourceWatcher_IgnoresUnrelatedFiles verifies non-source writes
// do not drop memoized zones.
func TestSourceWatcher_IgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "Test/Watched", "Zone Test/Watched 1:00 - CET")

	svc := newTestService(t, NewDirSource(dir), nil)
	watcher, err := NewSourceWatcher(svc, dir, nil)
	require.NoError(t, err)
	watcher.Start()
	defer watcher.Close()

	ctx := context.Background()
	first, err := svc.LoadOrCompile(ctx, "Test/Watched")
	require.NoError(t, err)

	// Wrong extension, same directory.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("scratch"), 0640))
	time.Sleep(200 * time.Millisecond)

	second, err := svc.LoadOrCompile(ctx, "Test/Watched")
	require.NoError(t, err)
	require.Same(t, first, second)
}

func TestSourceWatcher_CloseStopsEventLoop(t *testing.T) {
	dir := t.TempDir()
	svc := newTestService(t, NewDirSource(dir), nil)

	watcher, err := NewSourceWatcher(svc, dir, nil)
	require.NoError(t, err)
	watcher.Start()

	done := make(chan struct{})
	go func() {
		require.NoError(t, watcher.Close())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not shut down")
	}
}
