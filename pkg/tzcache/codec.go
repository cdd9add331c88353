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
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/AleutianAI/chrono/pkg/tz"
)

// Entry wire format, big-endian throughout:
//
//	magic   [4]byte  "CZTC"
//	format  uint16   codecFormat
//	verLen  uint16   + version bytes
//	horizon int64
//	count   uint32
//	count × { at int64, std int32, dst int32, abbrevLen uint8, abbrev }
//	crc     uint32   CRC-32 (IEEE) of everything above
//
// The magic and format number make version mismatch detectable; the
// trailing checksum makes truncation and bit rot detectable. Either
// failure surfaces as *tz.CacheCorruptionError and the caller
// recompiles.
var codecMagic = [4]byte{'C', 'Z', 'T', 'C'}

const codecFormat uint16 = 1

// encodeEntry serializes an entry to its on-disk form.
func encodeEntry(e *Entry) ([]byte, error) {
	if len(e.Version) > 0xFFFF {
		return nil, fmt.Errorf("tzcache: version tag too long (%d bytes)", len(e.Version))
	}
	var buf bytes.Buffer
	buf.Write(codecMagic[:])
	writeU16(&buf, codecFormat)
	writeU16(&buf, uint16(len(e.Version)))
	buf.WriteString(e.Version)
	writeI64(&buf, int64(e.Horizon))
	writeU32(&buf, uint32(len(e.Transitions)))
	for _, tr := range e.Transitions {
		if len(tr.Leaf.Abbrev) > 0xFF {
			return nil, fmt.Errorf("tzcache: abbreviation %q too long", tr.Leaf.Abbrev)
		}
		writeI64(&buf, int64(tr.At))
		writeI32(&buf, int32(tr.Leaf.Offset.Std()))
		writeI32(&buf, int32(tr.Leaf.Offset.DST()))
		buf.WriteByte(byte(len(tr.Leaf.Abbrev)))
		buf.WriteString(tr.Leaf.Abbrev)
	}
	writeU32(&buf, crc32.ChecksumIEEE(buf.Bytes()))
	return buf.Bytes(), nil
}

// decodeEntry deserializes an on-disk entry, verifying magic, format,
// and checksum. All failures are *tz.CacheCorruptionError.
func decodeEntry(zone string, data []byte) (*Entry, error) {
	corrupt := func(reason string) (*Entry, error) {
		return nil, &tz.CacheCorruptionError{Zone: zone, Reason: reason}
	}

	if len(data) < len(codecMagic)+2+2+8+4+4 {
		return corrupt("entry too short")
	}
	body, tail := data[:len(data)-4], data[len(data)-4:]
	if crc32.ChecksumIEEE(body) != binary.BigEndian.Uint32(tail) {
		return corrupt("checksum mismatch")
	}

	r := bytes.NewReader(body)
	var magic [4]byte
	_, _ = r.Read(magic[:])
	if magic != codecMagic {
		return corrupt("bad magic")
	}
	if format := readU16(r); format != codecFormat {
		return corrupt(fmt.Sprintf("unsupported format %d", format))
	}

	verLen := int(readU16(r))
	ver := make([]byte, verLen)
	if n, _ := r.Read(ver); n != verLen {
		return corrupt("truncated version tag")
	}

	e := &Entry{Version: string(ver), Horizon: tz.Instant(readI64(r))}
	count := int(readU32(r))
	if count < 0 || count > r.Len() {
		return corrupt("implausible transition count")
	}
	e.Transitions = make([]tz.Transition, 0, count)
	for i := 0; i < count; i++ {
		if r.Len() < 8+4+4+1 {
			return corrupt("truncated transition record")
		}
		at := tz.Instant(readI64(r))
		std := int(readI32(r))
		dst := int(readI32(r))
		abbrevLen := int(readU8(r))
		abbrev := make([]byte, abbrevLen)
		if n, _ := r.Read(abbrev); n != abbrevLen {
			return corrupt("truncated abbreviation")
		}
		off, err := tz.NewOffset(std, dst)
		if err != nil {
			return corrupt(err.Error())
		}
		e.Transitions = append(e.Transitions, tz.Transition{
			At:   at,
			Leaf: tz.Leaf{Abbrev: string(abbrev), Offset: off},
		})
	}
	if r.Len() != 0 {
		return corrupt("trailing bytes after transitions")
	}
	return e, nil
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeI32(buf *bytes.Buffer, v int32) { writeU32(buf, uint32(v)) }

func writeI64(buf *bytes.Buffer, v int64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	buf.Write(b[:])
}

func readU8(r *bytes.Reader) uint8 {
	b, _ := r.ReadByte()
	return b
}

func readU16(r *bytes.Reader) uint16 {
	var b [2]byte
	_, _ = r.Read(b[:])
	return binary.BigEndian.Uint16(b[:])
}

func readU32(r *bytes.Reader) uint32 {
	var b [4]byte
	_, _ = r.Read(b[:])
	return binary.BigEndian.Uint32(b[:])
}

func readI32(r *bytes.Reader) int32 { return int32(readU32(r)) }

func readI64(r *bytes.Reader) int64 {
	var b [8]byte
	_, _ = r.Read(b[:])
	return int64(binary.BigEndian.Uint64(b[:]))
}
