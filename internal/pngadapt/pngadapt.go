// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package pngadapt turns a decoded pixel rectangle into PNG bytes.
// spec.md §4.E/§6 names the PNG writer an external collaborator
// ("via a standard encoder"); this package is the thin adapter over
// the standard library's encoding/png that plays that role.
package pngadapt

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
)

// ErrUnsupportedBpp is returned for a bpp value outside {8,24,32}.
var ErrUnsupportedBpp = errors.New("pngadapt: unsupported bpp")

// Encode renders a width x height rectangle of bpp-bit pixels into a
// PNG. 8bpp is emitted as grayscale (spec's Open Question (a): no
// palette support), 24bpp is BGR and is swapped to RGB, and 32bpp is
// BGRA and is swapped to RGBA. No alpha premultiplication is applied.
func Encode(width, height, bpp int, pixels []byte) ([]byte, error) {
	var img image.Image
	switch bpp {
	case 8:
		img = grayImage(width, height, pixels)
	case 24:
		img = rgbImage(width, height, pixels)
	case 32:
		img = rgbaImage(width, height, pixels)
	default:
		return nil, ErrUnsupportedBpp
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func grayImage(width, height int, pixels []byte) image.Image {
	im := image.NewGray(image.Rect(0, 0, width, height))
	copy(im.Pix, pixels)
	return im
}

func rgbImage(width, height int, pixels []byte) image.Image {
	im := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			si := (y*width + x) * 3
			b, g, r := pixels[si], pixels[si+1], pixels[si+2]
			im.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 0xff})
		}
	}
	return im
}

func rgbaImage(width, height int, pixels []byte) image.Image {
	im := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			si := (y*width + x) * 4
			b, g, r, a := pixels[si], pixels[si+1], pixels[si+2], pixels[si+3]
			im.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: a})
		}
	}
	return im
}
