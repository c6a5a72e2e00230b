// Copyright 2019 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package arcfmt

import "github.com/bgitools/bgiarc/internal/bitio"

// Parse validates the header and directory of buf and returns the
// parsed Archive. Entry payloads are not copied; Bytes slices
// directly into buf.
func Parse(buf []byte) (*Archive, error) {
	r := bitio.New(buf)
	magic, err := r.ReadBytes(headerMagicSize)
	if err != nil {
		return nil, ErrTruncated
	}

	var v Version
	switch string(magic) {
	case v1Magic:
		v = V1
	case v2Magic:
		v = V2
	default:
		return nil, ErrBadMagic
	}

	count, err := r.U32()
	if err != nil {
		return nil, ErrTruncated
	}

	es := entrySize(v)
	ns := nameSize(v)
	dirBytes := int(count) * es
	if r.Len() < dirBytes {
		return nil, ErrTruncated
	}

	entries := make([]Entry, count)
	for i := range entries {
		nameBuf, err := r.ReadBytes(ns)
		if err != nil {
			return nil, ErrTruncated
		}
		offset, err := r.U32()
		if err != nil {
			return nil, ErrTruncated
		}
		size, err := r.U32()
		if err != nil {
			return nil, ErrTruncated
		}
		reservedSize := es - ns - 8
		if err := r.Skip(reservedSize); err != nil {
			return nil, ErrTruncated
		}
		entries[i] = Entry{Name: trimName(nameBuf), Offset: offset, Size: size}
	}

	payloadOff := headerSize + dirBytes
	for _, e := range entries {
		end := int64(payloadOff) + int64(e.Offset) + int64(e.Size)
		if end > int64(len(buf)) {
			return nil, ErrTruncated
		}
	}

	return &Archive{
		Version:    v,
		Entries:    entries,
		data:       buf,
		payloadOff: payloadOff,
	}, nil
}

// Bytes returns the payload bytes for entry e. e must have come from
// this Archive's Entries slice.
func (a *Archive) Bytes(e Entry) []byte {
	start := a.payloadOff + int(e.Offset)
	return a.data[start : start+int(e.Size)]
}
