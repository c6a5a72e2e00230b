// Copyright 2019 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package arcfmt implements the ARC container's V1 and V2 directory
// and payload layout: header, a contiguous table of directory
// entries, and a payload region addressed relative to the end of that
// table.
package arcfmt

import (
	"errors"
)

// Version identifies the ARC layout variant.
type Version int

const (
	// V1 is the "PackFile    " layout with 16-byte entry names.
	V1 Version = 1
	// V2 is the "BURIKO ARC20" layout with 128-byte entry names.
	V2 Version = 2
)

const (
	v1Magic = "PackFile    "
	v2Magic = "BURIKO ARC20"

	headerMagicSize = 12
	headerSize      = headerMagicSize + 4 // + entry_count

	v1NameSize  = 16
	v1EntrySize = v1NameSize + 4 + 4 + 8 // name + offset + size + reserved
	v2NameSize  = 128
	v2EntrySize = v2NameSize + 4 + 4 + 16
)

var (
	// ErrBadMagic is returned when neither V1 nor V2 magic is present.
	ErrBadMagic = errors.New("arcfmt: bad magic")
	// ErrTruncated is returned when the header, directory, or a
	// payload range does not fit within the archive bytes.
	ErrTruncated = errors.New("arcfmt: truncated")
	// ErrNameTooLong is returned on pack when a name does not fit the
	// version's name field.
	ErrNameTooLong = errors.New("arcfmt: name too long")
	// ErrUnsupportedVersion is returned for a Version other than V1/V2.
	ErrUnsupportedVersion = errors.New("arcfmt: unsupported version")
)

// Entry is one directory record: a name and the byte range of its
// payload relative to the end of the directory table (the "payload
// base").
type Entry struct {
	Name   string
	Offset uint32
	Size   uint32
}

// Archive is a parsed ARC container: its version, directory, and a
// reference to the full underlying bytes from which entry payloads
// are sliced.
type Archive struct {
	Version Version
	Entries []Entry

	data       []byte
	payloadOff int
}

func nameSize(v Version) int {
	if v == V1 {
		return v1NameSize
	}
	return v2NameSize
}

func entrySize(v Version) int {
	if v == V1 {
		return v1EntrySize
	}
	return v2EntrySize
}

// trimName strips NUL padding from a fixed-width name field.
func trimName(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
