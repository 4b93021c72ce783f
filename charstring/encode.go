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

package charstring

import (
	"fmt"
	"math"
	"slices"
)

// Encode returns the binary Type 2 encoding of the program.
//
// Integers in the range -32768..32767 use the shortest integer encoding,
// all other numbers are rounded to 16.16 fixed point.  If a number lies
// outside the range of 16.16 fixed point values, [ErrNumberRange] is
// returned.
func (p Program) Encode() ([]byte, error) {
	var code []byte
	for _, t := range p {
		if !t.IsOp() {
			if !encodable(t.Val) {
				return nil, fmt.Errorf("%w: %g", ErrNumberRange, t.Val)
			}
			code = appendNumber(code, t.Val)
			continue
		}
		code = append(code, t.Op.Bytes()...)
		code = append(code, t.Mask...)
	}
	return code, nil
}

// encodable reports whether x can be represented in a binary charstring,
// either exactly or after rounding to 16.16 fixed point.
func encodable(x float64) bool {
	f := math.Round(x * 65536)
	return f >= math.MinInt32 && f <= math.MaxInt32
}

// appendNumber encodes x, which must satisfy encodable(x).
func appendNumber(code []byte, x float64) []byte {
	if x == math.Trunc(x) && x <= math.MaxInt16 {
		return appendInt(code, int16(x))
	}

	// TODO(voss): consider encoding fractions as two integers and a div.
	f := int32(math.Round(x * 65536))
	return append(code, 255, byte(f>>24), byte(f>>16), byte(f>>8), byte(f))
}

func appendInt(code []byte, x int16) []byte {
	switch {
	case x >= -107 && x <= 107:
		return append(code, byte(x+139))
	case x > 107 && x <= 1131:
		x -= 108
		b1 := byte(x)
		x >>= 8
		b0 := byte(x + 247)
		return append(code, b0, b1)
	case x < -107 && x >= -1131:
		x = -108 - x
		b1 := byte(x)
		x >>= 8
		b0 := byte(x + 251)
		return append(code, b0, b1)
	default:
		return append(code, 28, byte(x>>8), byte(x))
	}
}

// Decode splits binary Type 2 charstring data into tokens.
//
// No operators are executed; in particular subroutine calls are not
// followed.  The number of mask bytes after hintmask and cntrmask is
// derived from the stem hints declared earlier in the same data, which is
// correct unless stem hints are declared inside a subroutine.
func Decode(code []byte) (Program, error) {
	var res Program
	nArgs := 0 // operands since the last stack-clearing operator
	nStems := 0

	for len(code) > 0 {
		b := code[0]

		switch {
		case b >= 32 && b <= 246:
			res = append(res, Num(float64(int32(b)-139)))
			code = code[1:]
			nArgs++
			continue
		case b >= 247 && b <= 250:
			if len(code) < 2 {
				return nil, ErrIncomplete
			}
			val := int32(b)*256 + int32(code[1]) + (108 - 247*256)
			res = append(res, Num(float64(val)))
			code = code[2:]
			nArgs++
			continue
		case b >= 251 && b <= 254:
			if len(code) < 2 {
				return nil, ErrIncomplete
			}
			val := -int32(b)*256 - int32(code[1]) - (108 - 251*256)
			res = append(res, Num(float64(val)))
			code = code[2:]
			nArgs++
			continue
		case b == 28:
			if len(code) < 3 {
				return nil, ErrIncomplete
			}
			val := int16(code[1])<<8 + int16(code[2])
			res = append(res, Num(float64(val)))
			code = code[3:]
			nArgs++
			continue
		case b == 255:
			if len(code) < 5 {
				return nil, ErrIncomplete
			}
			// 16-bit signed integer with 16 bits of fraction
			val := int32(code[1])<<24 + int32(code[2])<<16 +
				int32(code[3])<<8 + int32(code[4])
			res = append(res, Num(float64(val)/65536))
			code = code[5:]
			nArgs++
			continue
		}

		op := Op(b)
		if b == 12 {
			if len(code) < 2 {
				return nil, ErrIncomplete
			}
			op = op<<8 | Op(code[1])
			code = code[2:]
		} else {
			code = code[1:]
		}
		if !op.IsValid() {
			return nil, ErrUnknownOp
		}

		t := Operator(op)
		switch op {
		case OpHStem, OpVStem, OpHStemHM, OpVStemHM:
			nStems += nArgs / 2
		case OpHintMask, OpCntrMask:
			// a vstem declaration may be folded into the first hintmask
			nStems += nArgs / 2
			k := (nStems + 7) / 8
			if len(code) < k {
				return nil, ErrIncomplete
			}
			t.Mask = slices.Clone(code[:k])
			code = code[k:]
		}
		res = append(res, t)

		if op.clearsStack() {
			nArgs = 0
		}
	}

	return res, nil
}
