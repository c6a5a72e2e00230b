// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cbg

import (
	"encoding/binary"
	"math/bits"
)

// keystream produces the byte obfuscation stream used to decrypt the
// 256-entry value table. Two 32-bit accumulators are seeded from the
// 16-byte key block; each derives its own multiplier from the key
// material too (spec's "two key-derived 32-bit multipliers"), and each
// step multiplies, rotates, and XORs the pair together to produce one
// output byte. These constants are a frozen on-disk format.
type keystream struct {
	s1, s2 uint32
	m1, m2 uint32
}

func newKeystream(key [16]byte) *keystream {
	return &keystream{
		s1: binary.LittleEndian.Uint32(key[4:8]),
		s2: binary.LittleEndian.Uint32(key[12:16]),
		m1: binary.LittleEndian.Uint32(key[0:4]) | 1,
		m2: binary.LittleEndian.Uint32(key[8:12]) | 1,
	}
}

// next returns the next keystream byte.
func (k *keystream) next() byte {
	k.s1 = bits.RotateLeft32(k.s1*k.m1, 13)
	k.s2 = bits.RotateLeft32(k.s2*k.m2, 17)
	return byte(k.s1 ^ k.s2 ^ (k.s2 >> 8))
}

// decryptValueTable XORs each byte of the encrypted varint stream with
// the next keystream byte and decodes it into up to 256 LEB128-style
// varints (7 bits per byte, high bit = continue). It returns the
// per-symbol weights and the running sum/xor of the decrypted bytes
// for the caller to validate against the header's check fields.
func decryptValueTable(encrypted []byte, key [16]byte) (weights [256]uint32, sum uint32, xorv uint32, err error) {
	ks := newKeystream(key)
	pos := 0
	for sym := 0; sym < 256; sym++ {
		var v uint32
		shift := uint(0)
		for {
			if pos >= len(encrypted) {
				return weights, sum, xorv, ErrTruncated
			}
			b := encrypted[pos] ^ ks.next()
			pos++
			sum += uint32(b)
			xorv ^= uint32(b)
			v |= uint32(b&0x7f) << shift
			if b&0x80 == 0 {
				break
			}
			shift += 7
		}
		weights[sym] = v
	}
	return weights, sum, xorv, nil
}
