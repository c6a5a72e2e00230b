// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package dispatch sniffs an entry's magic and drives it through the
// right decoder chain, producing the bytes and filename suffix to
// write. Recursive unwrapping (BSE wrapping CBG, DSC decoding to
// something that itself starts with a known magic) is an explicit
// sniff loop, not mutual recursion, to bound stack depth (spec Design
// Notes).
package dispatch

import (
	"bytes"
	"fmt"

	"github.com/bgitools/bgiarc/internal/bse"
	"github.com/bgitools/bgiarc/internal/cbg"
	"github.com/bgitools/bgiarc/internal/dsc"
	"github.com/bgitools/bgiarc/internal/pngadapt"
)

// Kind identifies what an entry turned out to be, for logging and for
// picking an output suffix.
type Kind int

const (
	KindPlain Kind = iota
	KindPNG
	KindOGG
	KindRaw
)

func (k Kind) String() string {
	switch k {
	case KindPNG:
		return "cbg"
	case KindOGG:
		return "ogg"
	case KindRaw:
		return "dsc-raw"
	default:
		return "plain"
	}
}

// oggMagic is the four-byte tag identifying an Ogg container.
var oggMagic = []byte("OggS")

// Result is the outcome of dispatching one entry.
type Result struct {
	Kind  Kind
	Bytes []byte
	// Suffix is appended to the entry's name to form the output
	// filename, e.g. ".png"; empty for a plain pass-through.
	Suffix string
	// Unwrapped records the chain of formats recognised in the entry,
	// innermost last, for verbose logging; empty for a plain entry.
	Unwrapped []string
}

// Sniff identifies the innermost decodable format of buf and decodes
// it. It never returns an error for an unrecognized format: such
// bytes are passed through verbatim as KindPlain.
func Sniff(buf []byte) (Result, error) {
	var unwrapped []string
	for {
		switch {
		case hasPrefix(buf, bse.Magic[:]):
			h, err := bse.ParseHeader(buf)
			if err != nil {
				return Result{}, fmt.Errorf("bse header: %w", err)
			}
			rest := append([]byte(nil), buf[bse.HeaderSize:]...)
			if err := bse.Decrypt(rest, h.Seed); err != nil {
				return Result{}, fmt.Errorf("bse decrypt: %w", err)
			}
			unwrapped = append(unwrapped, "bse")
			buf = rest
			continue

		case hasPrefix(buf, cbg.Magic[:]):
			img, err := cbg.Decode(buf)
			if err != nil {
				return Result{}, fmt.Errorf("cbg decode: %w", err)
			}
			out, err := pngadapt.Encode(img.Width, img.Height, img.Bpp, img.Pixels)
			if err != nil {
				return Result{}, fmt.Errorf("png encode: %w", err)
			}
			return Result{Kind: KindPNG, Bytes: out, Suffix: ".png", Unwrapped: append(unwrapped, "cbg")}, nil

		case hasPrefix(buf, dsc.Magic[:]):
			out, err := dsc.Decode(buf)
			if err != nil {
				return Result{}, fmt.Errorf("dsc decode: %w", err)
			}
			// spec §9(b): recurse if the decoded block itself starts
			// with a known magic, otherwise it's ambiguous -- write
			// as .raw and let the caller log the ambiguity.
			if looksLikeKnownFormat(out) {
				unwrapped = append(unwrapped, "dsc")
				buf = out
				continue
			}
			return Result{Kind: KindRaw, Bytes: out, Suffix: ".raw", Unwrapped: append(unwrapped, "dsc")}, nil

		case hasPrefix(buf, oggMagic):
			return Result{Kind: KindOGG, Bytes: buf, Suffix: ".ogg", Unwrapped: append(unwrapped, "ogg")}, nil

		default:
			return Result{Kind: KindPlain, Bytes: buf, Unwrapped: unwrapped}, nil
		}
	}
}

// PeekMagic reports the name of buf's outermost recognized format
// without decoding it, for fast directory listings. It does not
// unwrap BSE or recurse into a DSC block's contents the way Sniff
// does.
func PeekMagic(buf []byte) string {
	switch {
	case hasPrefix(buf, bse.Magic[:]):
		return "bse"
	case hasPrefix(buf, cbg.Magic[:]):
		return "cbg"
	case hasPrefix(buf, dsc.Magic[:]):
		return "dsc"
	case hasPrefix(buf, oggMagic):
		return "ogg"
	default:
		return "plain"
	}
}

func hasPrefix(buf, magic []byte) bool {
	return len(buf) >= len(magic) && bytes.Equal(buf[:len(magic)], magic)
}

func looksLikeKnownFormat(buf []byte) bool {
	return hasPrefix(buf, bse.Magic[:]) ||
		hasPrefix(buf, cbg.Magic[:]) ||
		hasPrefix(buf, dsc.Magic[:]) ||
		hasPrefix(buf, oggMagic)
}
