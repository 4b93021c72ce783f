// seehuhn.de/go/cffopt - optimize Type 2 charstrings
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package specialize

import (
	"errors"
	"io"
)

var (
	errInvalidIndex = errors.New("specialize: invalid CFF INDEX")
	errIndexSize    = errors.New("specialize: data too large for CFF INDEX")
)

// ReadIndex decodes a CFF INDEX structure at the start of data.
// The returned slices point into data.  The second return value is the
// total length of the INDEX in bytes.
func ReadIndex(data []byte) ([][]byte, int, error) {
	if len(data) < 2 {
		return nil, 0, errInvalidIndex
	}
	count := int(data[0])<<8 | int(data[1])
	if count == 0 {
		return nil, 2, nil
	}
	if len(data) < 3 {
		return nil, 0, errInvalidIndex
	}
	offSize := int(data[2])
	if offSize < 1 || offSize > 4 {
		return nil, 0, errInvalidIndex
	}

	table := data[3:]
	if len(table) < (count+1)*offSize {
		return nil, 0, errInvalidIndex
	}
	// offsets are relative to the byte before the first item
	base := 3 + (count+1)*offSize - 1

	res := make([][]byte, count)
	start := getOffset(table[:offSize])
	if start < 1 {
		return nil, 0, errInvalidIndex
	}
	for i := range res {
		table = table[offSize:]
		end := getOffset(table[:offSize])
		if end < start || base+end > len(data) {
			return nil, 0, errInvalidIndex
		}
		res[i] = data[base+start : base+end : base+end]
		start = end
	}
	return res, base + start, nil
}

// AppendIndex appends the CFF INDEX encoding of items to buf.
func AppendIndex(buf []byte, items [][]byte) ([]byte, error) {
	count := len(items)
	if count >= 1<<16 {
		return buf, errIndexSize
	}
	if count == 0 {
		return append(buf, 0, 0), nil
	}

	total := 0
	for _, item := range items {
		total += len(item)
	}
	offSize := offsetSize(total + 1)
	if offSize > 4 {
		return buf, errIndexSize
	}

	buf = append(buf, byte(count>>8), byte(count), byte(offSize))
	var tmp [4]byte
	pos := 1
	buf = append(buf, putOffset(tmp[:offSize], pos)...)
	for _, item := range items {
		pos += len(item)
		buf = append(buf, putOffset(tmp[:offSize], pos)...)
	}
	for _, item := range items {
		buf = append(buf, item...)
	}
	return buf, nil
}

// WriteIndex writes items as a CFF INDEX structure.
// It returns the number of bytes written.
func WriteIndex(w io.Writer, items [][]byte) (int, error) {
	buf, err := AppendIndex(nil, items)
	if err != nil {
		return 0, err
	}
	return w.Write(buf)
}

// offsetSize returns the number of bytes needed to represent offsets
// up to maxOffset.
func offsetSize(maxOffset int) int {
	n := 1
	for maxOffset >= 1<<(8*n) {
		n++
	}
	return n
}

// getOffset decodes a big-endian offset which fills all of b.
func getOffset(b []byte) int {
	var x int
	for _, c := range b {
		x = x<<8 | int(c)
	}
	return x
}

// putOffset stores x as a big-endian number in b and returns b.
func putOffset(b []byte, x int) []byte {
	for i := len(b) - 1; i >= 0; i-- {
		b[i] = byte(x)
		x >>= 8
	}
	return b
}
