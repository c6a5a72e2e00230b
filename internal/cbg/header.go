// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package cbg decodes the CompressedBG___ image codec used by the BGI
// engine: a key-scheduled byte obfuscation layer wrapping a 256-symbol
// weighted Huffman code over an alternating zero/nonzero run-length
// stream, followed by per-row delta filtering.
package cbg

import (
	"encoding/binary"
	"errors"
)

// Magic is the 16-byte tag (including the trailing NUL) that
// identifies a CompressedBG___ payload.
var Magic = [16]byte{'C', 'o', 'm', 'p', 'r', 'e', 's', 's', 'e', 'd', 'B', 'G', '_', '_', '_', 0}

var (
	// ErrBadMagic is returned when the payload does not start with Magic.
	ErrBadMagic = errors.New("cbg: bad magic")
	// ErrTruncated is returned when the header or stream lengths don't fit in the buffer.
	ErrTruncated = errors.New("cbg: truncated")
	// ErrCorruptKey is returned when the value-table's sum/xor checks fail.
	ErrCorruptKey = errors.New("cbg: corrupt key (checksum mismatch)")
	// ErrTreeUnderflow is returned when the bitstream is exhausted mid-symbol,
	// or when the zero/nonzero run counts do not fit the alternating runs.
	ErrTreeUnderflow = errors.New("cbg: tree underflow (stream exhausted)")
	// ErrSizeMismatch is returned when the final pixel length doesn't match width*height*bpp/8.
	ErrSizeMismatch = errors.New("cbg: decoded size mismatch")
	// ErrUnsupportedBpp is returned for a bpp value outside {8,24,32}.
	ErrUnsupportedBpp = errors.New("cbg: unsupported bpp")
)

// headerSize is the number of bytes in the fixed-shape header that
// follows Magic, up to and including the reserved trailer. This exact
// layout is a frozen on-disk format, not a design choice.
const headerSize = 4 + 4 + 4 + 16 + 4 + 4 + 4 + 4 + 4 + 4 + 8

// Header is the fixed-shape CompressedBG___ header.
type Header struct {
	Width          uint32
	Height         uint32
	Bpp            uint32
	Key            [16]byte
	SumCheck       uint32
	XorCheck       uint32
	ColorStreamLen uint32 // length in bytes of the Huffman-coded symbol bitstream
	ValueTableLen  uint32 // length in bytes of the encrypted value-table varint stream
	ZeroCount      uint32
	NonzeroCount   uint32
	Reserved       [8]byte
}

// parseHeader reads a Header from buf, which must start immediately
// after Magic.
func parseHeader(buf []byte) (Header, error) {
	var h Header
	if len(buf) < headerSize {
		return h, ErrTruncated
	}
	o := 0
	u32 := func() uint32 {
		v := binary.LittleEndian.Uint32(buf[o : o+4])
		o += 4
		return v
	}
	h.Width = u32()
	h.Height = u32()
	h.Bpp = u32()
	copy(h.Key[:], buf[o:o+16])
	o += 16
	h.SumCheck = u32()
	h.XorCheck = u32()
	h.ColorStreamLen = u32()
	h.ValueTableLen = u32()
	h.ZeroCount = u32()
	h.NonzeroCount = u32()
	copy(h.Reserved[:], buf[o:o+8])
	o += 8
	if h.Bpp != 8 && h.Bpp != 24 && h.Bpp != 32 {
		return h, ErrUnsupportedBpp
	}
	return h, nil
}

// Image is a decoded CompressedBG___ rectangle.
type Image struct {
	Width, Height, Bpp int
	Pixels             []byte
}
