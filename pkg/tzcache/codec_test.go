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
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/chrono/pkg/tz"
)

func testEntry(t *testing.T) *Entry {
	t.Helper()
	return &Entry{
		Version: "cafe0123deadbeef",
		Horizon: 2000000000,
		Transitions: []tz.Transition{
			{At: tz.MinInstant, Leaf: tz.Leaf{Abbrev: "CET", Offset: tz.MustOffset(3600, 0)}},
			{At: 100, Leaf: tz.Leaf{Abbrev: "CEST", Offset: tz.MustOffset(3600, 3600)}},
			{At: 200, Leaf: tz.Leaf{Offset: tz.MustOffset(-39600, 0)}},
		},
	}
}

// reseal recomputes the trailing checksum so decode failures hit the
// targeted structural check instead of the CRC.
func reseal(data []byte) []byte {
	body := data[:len(data)-4]
	binary.BigEndian.PutUint32(data[len(data)-4:], crc32.ChecksumIEEE(body))
	return data
}

func TestEntryCodec_RoundTrip(t *testing.T) {
	e := testEntry(t)

	data, err := encodeEntry(e)
	require.NoError(t, err)

	got, err := decodeEntry("Test/Zone", data)
	require.NoError(t, err)
	assert.Equal(t, e, got)
}

func TestEntryCodec_EmptyTable(t *testing.T) {
	e := &Entry{Version: "v", Horizon: 1}

	data, err := encodeEntry(e)
	require.NoError(t, err)

	got, err := decodeEntry("Test/Zone", data)
	require.NoError(t, err)
	assert.Equal(t, "v", got.Version)
	assert.Empty(t, got.Transitions)
}

func TestDecodeEntry_Corruption(t *testing.T) {
	valid, err := encodeEntry(testEntry(t))
	require.NoError(t, err)

	t.Run("too short", func(t *testing.T) {
		_, err := decodeEntry("Test/Zone", valid[:10])
		requireCorrupt(t, err, "Test/Zone")
	})

	t.Run("flipped byte fails the checksum", func(t *testing.T) {
		data := append([]byte(nil), valid...)
		data[len(data)/2] ^= 0xFF
		_, err := decodeEntry("Test/Zone", data)
		requireCorrupt(t, err, "Test/Zone")
	})

	t.Run("truncation fails the checksum", func(t *testing.T) {
		_, err := decodeEntry("Test/Zone", valid[:len(valid)-7])
		requireCorrupt(t, err, "Test/Zone")
	})

	t.Run("bad magic", func(t *testing.T) {
		data := append([]byte(nil), valid...)
		data[0] = 'X'
		_, err := decodeEntry("Test/Zone", reseal(data))
		requireCorrupt(t, err, "Test/Zone")
	})

	t.Run("unsupported format", func(t *testing.T) {
		data := append([]byte(nil), valid...)
		binary.BigEndian.PutUint16(data[4:6], 99)
		_, err := decodeEntry("Test/Zone", reseal(data))
		requireCorrupt(t, err, "Test/Zone")
	})

	t.Run("trailing garbage", func(t *testing.T) {
		data := append([]byte(nil), valid[:len(valid)-4]...)
		data = append(data, 0xAB, 0, 0, 0, 0)
		_, err := decodeEntry("Test/Zone", reseal(data))
		requireCorrupt(t, err, "Test/Zone")
	})

	t.Run("out-of-range offset", func(t *testing.T) {
		bad := &Entry{Version: "v", Horizon: 1, Transitions: []tz.Transition{
			{At: 0, Leaf: tz.Leaf{Abbrev: "B", Offset: tz.MustOffset(86000, 0)}},
		}}
		data, err := encodeEntry(bad)
		require.NoError(t, err)
		// Rewrite the std field (right after the 8-byte instant) to an
		// invalid value.
		stdOff := 4 + 2 + 2 + len(bad.Version) + 8 + 4 + 8
		binary.BigEndian.PutUint32(data[stdOff:stdOff+4], uint32(90000))
		_, err = decodeEntry("Test/Zone", reseal(data))
		requireCorrupt(t, err, "Test/Zone")
	})
}

func requireCorrupt(t *testing.T, err error, zone string) {
	t.Helper()
	require.Error(t, err)
	var corrupt *tz.CacheCorruptionError
	require.ErrorAs(t, err, &corrupt)
	assert.Equal(t, zone, corrupt.Zone)
}

// TestEntry_Zone verifies reconstruction revalidates the table, so a
// decodable but inconsistent entry still cannot become a zone.
func TestEntry_Zone(t *testing.T) {
	e := testEntry(t)
	z, err := e.Zone("Test/Zone")
	require.NoError(t, err)
	assert.Equal(t, "Test/Zone", z.Name())
	assert.Equal(t, e.Transitions, z.Transitions())
	assert.Equal(t, e.Horizon, z.Horizon())

	bad := &Entry{Version: "v", Horizon: 1, Transitions: []tz.Transition{
		{At: 100, Leaf: tz.Leaf{Abbrev: "A", Offset: tz.MustOffset(0, 0)}},
		{At: 50, Leaf: tz.Leaf{Abbrev: "B", Offset: tz.MustOffset(0, 0)}},
	}}
	_, err = bad.Zone("Test/Zone")
	requireCorrupt(t, err, "Test/Zone")
}

func TestEntryFromZone(t *testing.T) {
	z, err := tz.NewVariableZone("Test/Zone", []tz.Transition{
		{At: 0, Leaf: tz.Leaf{Abbrev: "A", Offset: tz.MustOffset(0, 0)}},
	}, 500)
	require.NoError(t, err)

	e := EntryFromZone("ver", z)
	assert.Equal(t, "ver", e.Version)
	assert.Equal(t, tz.Instant(500), e.Horizon)
	assert.Equal(t, z.Transitions(), e.Transitions)
}
