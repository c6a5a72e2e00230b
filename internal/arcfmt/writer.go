// Copyright 2019 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package arcfmt

import (
	"bytes"
	"encoding/binary"
)

// File is one input to Write: a name (filesystem order is the
// caller's responsibility) and its raw content.
type File struct {
	Name    string
	Content []byte
}

// Write emits a complete V1 or V2 archive for files, in the order
// given, computing cumulative offsets relative to the end of the
// directory table. No compression or re-encryption is applied (spec
// Non-goals); payloads are written verbatim.
func Write(version Version, files []File) ([]byte, error) {
	var magic string
	switch version {
	case V1:
		magic = v1Magic
	case V2:
		magic = v2Magic
	default:
		return nil, ErrUnsupportedVersion
	}

	ns := nameSize(version)
	es := entrySize(version)

	for _, f := range files {
		if len(f.Name) > ns {
			return nil, ErrNameTooLong
		}
	}

	var buf bytes.Buffer
	buf.WriteString(magic)

	var countBuf [4]byte
	binary.LittleEndian.PutUint32(countBuf[:], uint32(len(files)))
	buf.Write(countBuf[:])

	offset := uint32(0)
	offsets := make([]uint32, len(files))
	for i, f := range files {
		offsets[i] = offset
		offset += uint32(len(f.Content))
	}

	reservedSize := es - ns - 8
	for i, f := range files {
		nameField := make([]byte, ns)
		copy(nameField, f.Name)
		buf.Write(nameField)

		var ob, sb [4]byte
		binary.LittleEndian.PutUint32(ob[:], offsets[i])
		binary.LittleEndian.PutUint32(sb[:], uint32(len(f.Content)))
		buf.Write(ob[:])
		buf.Write(sb[:])
		buf.Write(make([]byte, reservedSize))
	}

	for _, f := range files {
		buf.Write(f.Content)
	}

	return buf.Bytes(), nil
}
