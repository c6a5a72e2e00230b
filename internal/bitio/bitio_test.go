// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bitio_test

import (
	"testing"

	"github.com/bgitools/bgiarc/internal/bitio"
)

func TestLittleEndianReads(t *testing.T) {
	r := bitio.New([]byte{0x01, 0x02, 0x03, 0x04, 0x05})
	u8, err := r.U8()
	if err != nil || u8 != 0x01 {
		t.Fatalf("U8: got %v, %v", u8, err)
	}
	u16, err := r.U16()
	if err != nil || u16 != 0x0302 {
		t.Fatalf("U16: got %#x, %v", u16, err)
	}
	r2 := bitio.New([]byte{0x78, 0x56, 0x34, 0x12})
	u32, err := r2.U32()
	if err != nil || u32 != 0x12345678 {
		t.Fatalf("U32: got %#x, %v", u32, err)
	}
}

func TestReadBitsMSBFirst(t *testing.T) {
	// 0b10110010
	r := bitio.New([]byte{0xB2})
	bits := make([]int, 0, 8)
	for i := 0; i < 8; i++ {
		b, err := r.ReadBit()
		if err != nil {
			t.Fatalf("ReadBit %d: %v", i, err)
		}
		bits = append(bits, b)
	}
	want := []int{1, 0, 1, 1, 0, 0, 1, 0}
	for i := range want {
		if bits[i] != want[i] {
			t.Fatalf("bit %d: got %d want %d", i, bits[i], want[i])
		}
	}
}

func TestReadBitsPacksMSBFirst(t *testing.T) {
	r := bitio.New([]byte{0b11010000})
	v, err := r.ReadBits(4)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0b1101 {
		t.Fatalf("got %#b want %#b", v, 0b1101)
	}
}

func TestReadBitsAcrossBytes(t *testing.T) {
	r := bitio.New([]byte{0b00000001, 0b10000000})
	// skip 7 zero bits, then read 2 bits spanning the byte boundary: "1" "1" -> 0b11
	for i := 0; i < 7; i++ {
		if _, err := r.ReadBit(); err != nil {
			t.Fatal(err)
		}
	}
	v, err := r.ReadBits(2)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0b11 {
		t.Fatalf("got %#b want 0b11", v)
	}
}

func TestTruncated(t *testing.T) {
	r := bitio.New([]byte{0x00})
	if _, err := r.U16(); err != bitio.ErrTruncated {
		t.Fatalf("got %v want ErrTruncated", err)
	}
	r2 := bitio.New([]byte{})
	if _, err := r2.ReadBit(); err != bitio.ErrTruncated {
		t.Fatalf("got %v want ErrTruncated", err)
	}
}

func TestAlignByte(t *testing.T) {
	r := bitio.New([]byte{0xFF, 0xAA})
	if _, err := r.ReadBits(3); err != nil {
		t.Fatal(err)
	}
	r.AlignByte()
	if r.Pos() != 1 {
		t.Fatalf("Pos after align = %d, want 1", r.Pos())
	}
	b, err := r.U8()
	if err != nil || b != 0xAA {
		t.Fatalf("got %#x, %v", b, err)
	}
}
