// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cbg

import (
	"bytes"

	"github.com/bgitools/bgiarc/internal/bitio"
)

// Decode decodes a complete CompressedBG___ payload (starting at
// Magic) into an Image.
func Decode(payload []byte) (*Image, error) {
	if len(payload) < len(Magic) || !bytes.Equal(payload[:len(Magic)], Magic[:]) {
		return nil, ErrBadMagic
	}
	rest := payload[len(Magic):]
	h, err := parseHeader(rest)
	if err != nil {
		return nil, err
	}
	rest = rest[headerSize:]

	if uint32(len(rest)) < h.ValueTableLen {
		return nil, ErrTruncated
	}
	encryptedTable := rest[:h.ValueTableLen]
	rest = rest[h.ValueTableLen:]

	weights, sum, xorv, err := decryptValueTable(encryptedTable, h.Key)
	if err != nil {
		return nil, err
	}
	if sum != h.SumCheck || xorv != h.XorCheck {
		return nil, ErrCorruptKey
	}

	t, err := buildTree(weights)
	if err != nil {
		return nil, err
	}

	if uint32(len(rest)) < h.ColorStreamLen {
		return nil, ErrTruncated
	}
	colorStream := rest[:h.ColorStreamLen]

	raw, err := decodeRuns(t, colorStream, int(h.ZeroCount), int(h.NonzeroCount))
	if err != nil {
		return nil, err
	}

	channels := int(h.Bpp) / 8
	want := int(h.Width) * int(h.Height) * channels
	if len(raw) != want {
		return nil, ErrSizeMismatch
	}

	pixels := undelta(raw, int(h.Width), int(h.Height), channels)

	return &Image{
		Width:  int(h.Width),
		Height: int(h.Height),
		Bpp:    int(h.Bpp),
		Pixels: pixels,
	}, nil
}

// decodeRuns decodes the alternating zero/nonzero run-length stream
// described by spec §4.C.5. zeroCount+nonzeroCount is the number of
// run-selector symbols to decode (alternating, starting with a zero
// run); for each nonzero run, the actual byte values are themselves
// decoded, one tree symbol per byte, from the same bitstream -- these
// extra decodes are not counted against zeroCount/nonzeroCount.
func decodeRuns(t *tree, stream []byte, zeroCount, nonzeroCount int) ([]byte, error) {
	r := bitio.New(stream)
	var out []byte

	totalRuns := zeroCount + nonzeroCount
	zero := true // first run is a run of zero bytes
	zeroLeft, nonzeroLeft := zeroCount, nonzeroCount

	for i := 0; i < totalRuns; i++ {
		runLen, err := t.decode(r)
		if err != nil {
			return nil, err
		}
		if zero {
			if zeroLeft == 0 {
				return nil, ErrTreeUnderflow
			}
			zeroLeft--
			for n := 0; n < int(runLen); n++ {
				out = append(out, 0)
			}
		} else {
			if nonzeroLeft == 0 {
				return nil, ErrTreeUnderflow
			}
			nonzeroLeft--
			for n := 0; n < int(runLen); n++ {
				v, err := t.decode(r)
				if err != nil {
					return nil, err
				}
				out = append(out, v)
			}
		}
		zero = !zero
	}
	return out, nil
}

// undelta reverses the row-delta filter of spec §4.C.6: the first row
// is delta-decoded against the previous pixel in the same scanline;
// subsequent rows are delta-decoded against the average of the pixel
// to the left and the pixel directly above, per channel, with 8-bit
// wraparound.
func undelta(raw []byte, width, height, channels int) []byte {
	out := make([]byte, len(raw))
	stride := width * channels

	for y := 0; y < height; y++ {
		row := y * stride
		for x := 0; x < width; x++ {
			for c := 0; c < channels; c++ {
				idx := row + x*channels + c
				var prev int
				if y == 0 {
					if x == 0 {
						prev = 0
					} else {
						prev = int(out[idx-channels])
					}
				} else {
					var left, above int
					if x == 0 {
						left = 0
					} else {
						left = int(out[idx-channels])
					}
					above = int(out[idx-stride])
					prev = (left + above) / 2
				}
				out[idx] = byte(int(raw[idx]) + prev)
			}
		}
	}
	return out
}
