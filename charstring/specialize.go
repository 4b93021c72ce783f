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

import "slices"

// maxStack is the size of the Type 2 argument stack.
const maxStack = 48

// Specialize rewrites a charstring program into an equivalent program
// which uses the specialized Type 2 operators (hmoveto, vmoveto, hlineto,
// vlineto, hhcurveto, hvcurveto, vhcurveto, vvcurveto, rcurveline)
// wherever the operands allow.
//
// Only rmoveto, rlineto and rrcurveto are rewritten.  All other operators
// are copied to the output together with their operands.  The result is
// never longer than the input.
//
// If one of the rewritten operators has an operand count it cannot accept,
// an [*ArityError] is returned.  The input program is not modified.
func Specialize(p Program) (Program, error) {
	out := make(Program, 0, len(p))
	var stack []float64
	widthDone := false

	for _, t := range p {
		if !t.IsOp() {
			stack = append(stack, t.Val)
			continue
		}

		var err error
		switch t.Op {
		case OpRMoveTo:
			out, err = specializeMove(out, stack, !widthDone)
		case OpRLineTo:
			out, err = specializeLine(out, stack)
		case OpRRCurveTo:
			out, err = specializeCurve(out, stack)
		default:
			out = out.appendNums(stack...)
			t.Mask = slices.Clone(t.Mask)
			out = append(out, t)
		}
		if err != nil {
			return nil, err
		}
		if t.Op.takesWidth() {
			widthDone = true
		}
		stack = stack[:0]
	}

	// operands left for the caller of a subroutine
	out = out.appendNums(stack...)

	return out, nil
}

// specializeMove rewrites one rmoveto.  If canWidth is set, the move is the
// first operator which can carry the glyph width.
func specializeMove(out Program, args []float64, canWidth bool) (Program, error) {
	n := len(args)
	hasWidth := false
	if n == 3 && canWidth {
		out = append(out, Num(args[0]))
		args = args[1:]
		hasWidth = true
	}
	if len(args) != 2 {
		return nil, &ArityError{Op: OpRMoveTo, Count: n}
	}

	dx, dy := args[0], args[1]
	switch {
	case dx == 0 && dy == 0:
		if hasWidth {
			// The width must be followed by a stack-clearing operator.
			out = append(out, Num(0), Operator(OpHMoveTo))
		}
	case dx == 0:
		out = append(out, Num(dy), Operator(OpVMoveTo))
	case dy == 0:
		out = append(out, Num(dx), Operator(OpHMoveTo))
	default:
		out = append(out, Num(dx), Num(dy), Operator(OpRMoveTo))
	}
	return out, nil
}

// line is the (dx, dy) pair of one straight line segment.
type line [2]float64

func (l line) isZero() bool {
	return l[0] == 0 && l[1] == 0
}

// isAligned reports whether the line is horizontal or vertical.
func (l line) isAligned() bool {
	return l[0] == 0 || l[1] == 0
}

// sameAxis reports whether both lines are horizontal or both are vertical.
func sameAxis(a, b line) bool {
	return a[0] == 0 && b[0] == 0 || a[1] == 0 && b[1] == 0
}

func specializeLine(out Program, args []float64) (Program, error) {
	if len(args) == 0 || len(args)%2 != 0 {
		return nil, &ArityError{Op: OpRLineTo, Count: len(args)}
	}

	lines := mergeLines(args)

	base := len(out)
	pending := -1 // start of the raw pairs which still need an operator
	closePairs := func() {
		if pending < 0 {
			return
		}
		if pending == base && len(out)-base == 2 && canAppendLine(out[:base]) {
			// A single line directly after a curve is merged into the curve.
			out = append(out[:base-1], out[base:]...)
			out = append(out, Operator(OpRCurveLine))
		} else {
			out = append(out, Operator(OpRLineTo))
		}
		pending = -1
	}

	for start := 0; start < len(lines); {
		aligned := lines[start].isAligned()
		stop := start + 1
		for stop < len(lines) && lines[stop].isAligned() == aligned {
			if aligned && sameAxis(lines[stop-1], lines[stop]) {
				// hlineto and vlineto need alternating directions
				break
			}
			stop++
		}
		run := lines[start:stop]

		if aligned && (pending < 0 && len(run) > 1 || pending >= 0 && len(run) > 2) {
			closePairs()
			onX := run[0][0] != 0
			for _, l := range run {
				if onX {
					out = append(out, Num(l[0]))
				} else {
					out = append(out, Num(l[1]))
				}
				onX = !onX
			}
			if run[0][0] == 0 {
				out = append(out, Operator(OpVLineTo))
			} else {
				out = append(out, Operator(OpHLineTo))
			}
		} else {
			if pending < 0 {
				pending = len(out)
			}
			for _, l := range run {
				out = append(out, Num(l[0]), Num(l[1]))
			}
		}

		start = stop
	}
	closePairs()

	return out, nil
}

// canAppendLine reports whether p ends in an rrcurveto which can take two
// more operands.
func canAppendLine(p Program) bool {
	op, ok := p.lastOp()
	return ok && op == OpRRCurveTo && trailingNums(p[:len(p)-1])+2 <= maxStack
}

// mergeLines groups the operands into (dx, dy) pairs, drops zero-length
// lines and joins consecutive lines along the same axis.  Lines are not
// joined if the combined length could not be encoded in a binary
// charstring; otherwise, after merging no two neighbouring lines are both
// horizontal or both vertical.
func mergeLines(args []float64) []line {
	var res []line
	for i := 0; i+1 < len(args); i += 2 {
		cur := line{args[i], args[i+1]}
		if cur.isZero() {
			continue
		}
		if n := len(res); n > 0 {
			last := &res[n-1]
			if sameAxis(*last, cur) && encodable(last[0]+cur[0]) && encodable(last[1]+cur[1]) {
				last[0] += cur[0]
				last[1] += cur[1]
				if last.isZero() {
					res = res[:n-1]
				}
				continue
			}
		}
		res = append(res, cur)
	}
	return res
}

// trailingNums returns the number of number tokens at the end of p.
func trailingNums(p Program) int {
	n := 0
	for i := len(p) - 1; i >= 0 && !p[i].IsOp(); i-- {
		n++
	}
	return n
}
