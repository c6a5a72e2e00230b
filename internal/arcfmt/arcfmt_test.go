// Copyright 2019 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package arcfmt_test

import (
	"bytes"
	"testing"

	"github.com/bgitools/bgiarc/internal/arcfmt"
)

func TestWriteV2ThenParse(t *testing.T) {
	files := []arcfmt.File{
		{Name: "a.bin", Content: []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}},
		{Name: "b.bin", Content: bytes.Repeat([]byte{0xFF}, 5)},
	}
	raw, err := arcfmt.Write(arcfmt.V2, files)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if string(raw[:12]) != "BURIKO ARC20" {
		t.Fatalf("bad magic: %q", raw[:12])
	}

	ar, err := arcfmt.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if ar.Version != arcfmt.V2 {
		t.Fatalf("version = %v, want V2", ar.Version)
	}
	if len(ar.Entries) != 2 {
		t.Fatalf("entry count = %d, want 2", len(ar.Entries))
	}
	if ar.Entries[0].Name != "a.bin" || ar.Entries[0].Offset != 0 || ar.Entries[0].Size != 10 {
		t.Fatalf("entry 0 = %+v", ar.Entries[0])
	}
	if ar.Entries[1].Name != "b.bin" || ar.Entries[1].Offset != 10 || ar.Entries[1].Size != 5 {
		t.Fatalf("entry 1 = %+v", ar.Entries[1])
	}
	if !bytes.Equal(ar.Bytes(ar.Entries[0]), files[0].Content) {
		t.Fatalf("entry 0 bytes mismatch")
	}
	if !bytes.Equal(ar.Bytes(ar.Entries[1]), files[1].Content) {
		t.Fatalf("entry 1 bytes mismatch")
	}
}

func TestWriteV1RoundTrip(t *testing.T) {
	files := []arcfmt.File{{Name: "x", Content: []byte("hello")}}
	raw, err := arcfmt.Write(arcfmt.V1, files)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	ar, err := arcfmt.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if ar.Version != arcfmt.V1 {
		t.Fatalf("version = %v, want V1", ar.Version)
	}
	if string(ar.Bytes(ar.Entries[0])) != "hello" {
		t.Fatalf("got %q", ar.Bytes(ar.Entries[0]))
	}
}

func TestParseBadMagic(t *testing.T) {
	if _, err := arcfmt.Parse([]byte("not an archive at all.....")); err != arcfmt.ErrBadMagic {
		t.Fatalf("got %v, want ErrBadMagic", err)
	}
}

func TestParseTruncatedDirectory(t *testing.T) {
	buf := []byte("PackFile    ")
	buf = append(buf, 0xFF, 0xFF, 0xFF, 0x7F) // entry_count huge, directory won't fit
	if _, err := arcfmt.Parse(buf); err != arcfmt.ErrTruncated {
		t.Fatalf("got %v, want ErrTruncated", err)
	}
}

func TestWriteNameTooLong(t *testing.T) {
	longName := bytes.Repeat([]byte{'a'}, 17)
	files := []arcfmt.File{{Name: string(longName), Content: []byte{1}}}
	if _, err := arcfmt.Write(arcfmt.V1, files); err != arcfmt.ErrNameTooLong {
		t.Fatalf("got %v, want ErrNameTooLong", err)
	}
}

func TestDirectoryNonOverlap(t *testing.T) {
	files := []arcfmt.File{
		{Name: "one", Content: make([]byte, 12)},
		{Name: "two", Content: make([]byte, 7)},
		{Name: "three", Content: make([]byte, 3)},
	}
	raw, err := arcfmt.Write(arcfmt.V2, files)
	if err != nil {
		t.Fatal(err)
	}
	ar, err := arcfmt.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(ar.Entries); i++ {
		prev := ar.Entries[i-1]
		cur := ar.Entries[i]
		if cur.Offset < prev.Offset+prev.Size {
			t.Fatalf("entries %d,%d overlap: %+v %+v", i-1, i, prev, cur)
		}
	}
}
