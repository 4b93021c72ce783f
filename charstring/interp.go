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
	"errors"
	"fmt"
	"math"

	"seehuhn.de/go/geom/vec"
)

var errSubroutine = errors.New("charstring: subroutine calls are not supported")

// Interpret executes the program and returns the resulting outline.
// Both general and specialized operators are supported.  Subroutine calls
// are not followed and cause an error.
func Interpret(p Program) (*Outline, error) {
	res := &Outline{}

	var stack []float64
	clearStack := func() {
		stack = stack[:0]
	}

	widthIsSet := false
	setGlyphWidth := func(isPresent bool) {
		if widthIsSet {
			return
		}
		if isPresent {
			res.Width = stack[0]
			res.HasWidth = true
			stack = stack[1:]
		}
		widthIsSet = true
	}

	var pos vec.Vec2
	rMoveTo := func(dx, dy float64) {
		pos = pos.Add(vec.Vec2{X: dx, Y: dy})
		res.Cmds = append(res.Cmds, PathOp{Op: PathMoveTo, Pts: []vec.Vec2{pos}})
	}
	rLineTo := func(dx, dy float64) {
		pos = pos.Add(vec.Vec2{X: dx, Y: dy})
		res.Cmds = append(res.Cmds, PathOp{Op: PathLineTo, Pts: []vec.Vec2{pos}})
	}
	rCurveTo := func(dxa, dya, dxb, dyb, dxc, dyc float64) {
		a := pos.Add(vec.Vec2{X: dxa, Y: dya})
		b := a.Add(vec.Vec2{X: dxb, Y: dyb})
		pos = b.Add(vec.Vec2{X: dxc, Y: dyc})
		res.Cmds = append(res.Cmds, PathOp{Op: PathCurveTo, Pts: []vec.Vec2{a, b, pos}})
	}
	addStems := func(stems *[]float64) {
		var prev float64
		for k := 0; k+1 < len(stack); k += 2 {
			a := prev + stack[k]
			b := a + stack[k+1]
			*stems = append(*stems, a, b)
			prev = b
		}
	}

	var storage [32]float64

	for _, t := range p {
		if !t.IsOp() {
			stack = append(stack, t.Val)
			continue
		}

		switch op := t.Op; op {
		case OpRMoveTo:
			setGlyphWidth(len(stack) > 2)
			if len(stack) < 2 {
				return nil, errStackUnderflow
			}
			rMoveTo(stack[0], stack[1])
			clearStack()

		case OpHMoveTo, OpVMoveTo:
			setGlyphWidth(len(stack) > 1)
			if len(stack) < 1 {
				return nil, errStackUnderflow
			}
			if op == OpHMoveTo {
				rMoveTo(stack[0], 0)
			} else {
				rMoveTo(0, stack[0])
			}
			clearStack()

		case OpRLineTo:
			for len(stack) >= 2 {
				rLineTo(stack[0], stack[1])
				stack = stack[2:]
			}
			clearStack()

		case OpHLineTo, OpVLineTo:
			horizontal := op == OpHLineTo
			for _, z := range stack {
				if horizontal {
					rLineTo(z, 0)
				} else {
					rLineTo(0, z)
				}
				horizontal = !horizontal
			}
			clearStack()

		case OpRRCurveTo, OpRCurveLine, OpRLineCurve:
			for op == OpRLineCurve && len(stack) >= 8 {
				rLineTo(stack[0], stack[1])
				stack = stack[2:]
			}
			for len(stack) >= 6 {
				rCurveTo(stack[0], stack[1],
					stack[2], stack[3],
					stack[4], stack[5])
				stack = stack[6:]
			}
			if op == OpRCurveLine && len(stack) >= 2 {
				rLineTo(stack[0], stack[1])
			}
			clearStack()

		case OpHHCurveTo:
			var dy1 float64
			if len(stack)%4 != 0 {
				dy1, stack = stack[0], stack[1:]
			}
			for len(stack) >= 4 {
				rCurveTo(stack[0], dy1,
					stack[1], stack[2],
					stack[3], 0)
				stack = stack[4:]
				dy1 = 0
			}
			clearStack()

		case OpVVCurveTo:
			var dx1 float64
			if len(stack)%4 != 0 {
				dx1, stack = stack[0], stack[1:]
			}
			for len(stack) >= 4 {
				rCurveTo(dx1, stack[0],
					stack[1], stack[2],
					0, stack[3])
				stack = stack[4:]
				dx1 = 0
			}
			clearStack()

		case OpHVCurveTo, OpVHCurveTo:
			horizontal := op == OpHVCurveTo
			for len(stack) >= 4 {
				var extra float64
				if len(stack) == 5 {
					extra = stack[4]
				}
				if horizontal {
					rCurveTo(stack[0], 0,
						stack[1], stack[2],
						extra, stack[3])
				} else {
					rCurveTo(0, stack[0],
						stack[1], stack[2],
						stack[3], extra)
				}
				stack = stack[4:]
				horizontal = !horizontal
			}
			clearStack()

		case OpFlex:
			if len(stack) >= 13 {
				rCurveTo(stack[0], stack[1], stack[2], stack[3], stack[4], stack[5])
				rCurveTo(stack[6], stack[7], stack[8], stack[9], stack[10], stack[11])
			}
			clearStack()

		case OpFlex1:
			if len(stack) >= 11 {
				rCurveTo(stack[0], stack[1], stack[2], stack[3], stack[4], stack[5])
				dx := stack[0] + stack[2] + stack[4] + stack[6] + stack[8]
				dy := stack[1] + stack[3] + stack[5] + stack[7] + stack[9]
				if math.Abs(dx) > math.Abs(dy) {
					rCurveTo(stack[6], stack[7], stack[8], stack[9], stack[10], -dy)
				} else {
					rCurveTo(stack[6], stack[7], stack[8], stack[9], -dx, stack[10])
				}
			}
			clearStack()

		case OpHFlex:
			if len(stack) >= 7 {
				rCurveTo(stack[0], 0, stack[1], stack[2], stack[3], 0)
				rCurveTo(stack[4], 0, stack[5], -stack[2], stack[6], 0)
			}
			clearStack()

		case OpHFlex1:
			if len(stack) >= 9 {
				rCurveTo(stack[0], stack[1], stack[2], stack[3], stack[4], 0)
				dy := stack[1] + stack[3] + stack[7]
				rCurveTo(stack[5], 0, stack[6], stack[7], stack[8], -dy)
			}
			clearStack()

		case OpHStem, OpHStemHM:
			setGlyphWidth(len(stack)%2 == 1)
			addStems(&res.HStem)
			clearStack()

		case OpVStem, OpVStemHM:
			setGlyphWidth(len(stack)%2 == 1)
			addStems(&res.VStem)
			clearStack()

		case OpHintMask, OpCntrMask:
			setGlyphWidth(len(stack)%2 == 1)
			addStems(&res.VStem)
			clearStack()

		case OpDotSection:
			clearStack()

		case OpEndChar:
			setGlyphWidth(len(stack) == 1 || len(stack) > 4)
			return res, nil

		case OpReturn:
			// pass

		case OpCallSubr, OpCallGSubr:
			return nil, errSubroutine

		default:
			var err error
			stack, err = arith(op, stack, &storage)
			if err != nil {
				return nil, err
			}
		}
	}

	return res, nil
}

// arith executes the arithmetic and storage operators.
func arith(op Op, stack []float64, storage *[32]float64) ([]float64, error) {
	need := 1
	switch op {
	case OpAdd, OpSub, OpDiv, OpMul, OpAnd, OpOr, OpEq, OpExch, OpPut, OpRoll:
		need = 2
	case OpIfElse:
		need = 4
	case OpRandom:
		need = 0
	}
	k := len(stack) - need
	if k < 0 {
		return nil, errStackUnderflow
	}
	bool2num := func(b bool) float64 {
		if b {
			return 1
		}
		return 0
	}

	switch op {
	case OpAbs:
		stack[k] = math.Abs(stack[k])
	case OpNeg:
		stack[k] = -stack[k]
	case OpSqrt:
		stack[k] = math.Sqrt(stack[k])
	case OpNot:
		stack[k] = bool2num(stack[k] == 0)
	case OpDup:
		stack = append(stack, stack[k])
	case OpDrop:
		stack = stack[:k]
	case OpRandom:
		stack = append(stack, 0.618) // a random number in (0, 1]
	case OpAdd:
		stack = append(stack[:k], stack[k]+stack[k+1])
	case OpSub:
		stack = append(stack[:k], stack[k]-stack[k+1])
	case OpMul:
		stack = append(stack[:k], stack[k]*stack[k+1])
	case OpDiv:
		stack = append(stack[:k], stack[k]/stack[k+1])
	case OpAnd:
		stack = append(stack[:k], bool2num(stack[k] != 0 && stack[k+1] != 0))
	case OpOr:
		stack = append(stack[:k], bool2num(stack[k] != 0 || stack[k+1] != 0))
	case OpEq:
		stack = append(stack[:k], bool2num(stack[k] == stack[k+1]))
	case OpExch:
		stack[k], stack[k+1] = stack[k+1], stack[k]
	case OpIfElse:
		if stack[k+2] <= stack[k+3] {
			stack = append(stack[:k], stack[k])
		} else {
			stack = append(stack[:k], stack[k+1])
		}
	case OpIndex:
		idx := int(stack[k])
		if idx < 0 {
			idx = 0
		}
		if k-idx-1 < 0 {
			return nil, errStackUnderflow
		}
		stack[k] = stack[k-idx-1]
	case OpRoll:
		n := int(stack[k])
		j := int(stack[k+1])
		if n <= 0 || n > k {
			return nil, errors.New("charstring: invalid roll count")
		}
		roll(stack[k-n:k], j)
		stack = stack[:k]
	case OpPut:
		m := int(stack[k+1])
		if m < 0 || m >= len(storage) {
			return nil, errors.New("charstring: invalid store index")
		}
		storage[m] = stack[k]
		stack = stack[:k]
	case OpGet:
		m := int(stack[k])
		if m < 0 || m >= len(storage) {
			return nil, errors.New("charstring: invalid store index")
		}
		stack[k] = storage[m]
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownOp, op)
	}
	return stack, nil
}

func roll(data []float64, j int) {
	n := len(data)

	j = j % n
	if j < 0 {
		j += n
	}

	tmp := make([]float64, j)
	copy(tmp, data[n-j:])
	copy(data[j:], data[:n-j])
	copy(data[:j], tmp)
}
