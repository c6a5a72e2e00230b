// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package dsc

import "github.com/bgitools/bgiarc/internal/bitio"

// offsetBits is the width of the back-reference offset field read
// immediately after a length token (spec §4.D.3: "a 12-bit ...
// offset").
const offsetBits = 12

// Decode decodes a complete DSC FORMAT 1.00 payload (starting at
// Magic) into a raw byte block of exactly Header.OutputLen bytes.
func Decode(payload []byte) ([]byte, error) {
	h, rest, err := parseHeader(payload)
	if err != nil {
		return nil, err
	}

	recs, bitstream, err := parseRecords(rest, h.NodeCount)
	if err != nil {
		return nil, err
	}
	unpermute(recs, h.Seed)

	t, err := buildCanonical(recs)
	if err != nil {
		return nil, err
	}

	r := bitio.New(bitstream)
	out := make([]byte, 0, h.OutputLen)

	for uint32(len(out)) < h.OutputLen {
		sym, err := t.decode(r)
		if err != nil {
			return nil, err
		}
		if sym < 256 {
			out = append(out, byte(sym))
			continue
		}

		length := int(sym-256) + 2
		offsetBitsVal, err := r.ReadBits(offsetBits)
		if err != nil {
			return nil, ErrTruncated
		}
		distance := int(offsetBitsVal) + 2

		if distance > len(out) {
			return nil, ErrBackRefOutOfRange
		}
		start := len(out) - distance
		for i := 0; i < length; i++ {
			out = append(out, out[start+i])
		}
	}

	if uint32(len(out)) != h.OutputLen {
		return nil, ErrSizeMismatch
	}
	return out, nil
}
