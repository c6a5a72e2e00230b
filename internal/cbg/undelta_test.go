// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cbg

import "testing"

func TestUndeltaFirstRow(t *testing.T) {
	// width=3, height=1, 1 channel. raw deltas: 5,1,1 -> pixels: 5,6,7.
	raw := []byte{5, 1, 1}
	got := undelta(raw, 3, 1, 1)
	want := []byte{5, 6, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pixel %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestUndeltaSecondRowAverages(t *testing.T) {
	// width=2, height=2, 1 channel.
	// row0 raw: 10, 1 -> pixels: 10, 11
	// row1 raw: 4, 2
	//   pixel(0,1): prev = avg(left=0, above=10) = 5  -> 4+5=9
	//   pixel(1,1): prev = avg(left=9, above=11) = 10 -> 2+10=12
	raw := []byte{10, 1, 4, 2}
	got := undelta(raw, 2, 2, 1)
	want := []byte{10, 11, 9, 12}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pixel %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestUndeltaWraps(t *testing.T) {
	raw := []byte{250, 10}
	got := undelta(raw, 2, 1, 1)
	want := []byte{250, byte((250 + 10) % 256)}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pixel %d = %d, want %d", i, got[i], want[i])
		}
	}
}
