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

// curve holds the relative coordinates of one cubic Bezier segment,
// in the order dxa dya dxb dyb dxc dyc.
type curve [6]float64

// Indices into a curve.
const (
	dxa = iota
	dya
	dxb
	dyb
	dxc
	dyc
)

// Bits for the specialized curve operators, used during eligibility checks.
const (
	canHH = 1 << iota
	canHV
	canVH
	canVV

	canAll = canHH | canHV | canVH | canVV
)

// curveOps lists the specialized curve operators in the order in which
// they are tried.  When two operators give the same length, the first one
// wins.
var curveOps = [...]struct {
	op  Op
	bit uint8
}{
	{OpHHCurveTo, canHH},
	{OpHVCurveTo, canHV},
	{OpVHCurveTo, canVH},
	{OpVVCurveTo, canVV},
}

// startsH reports whether c can be the horizontal-start curve of an
// hvcurveto/vhcurveto sequence.  Only the last curve of a sequence may end
// off-axis.
func startsH(c curve, last bool) bool {
	return c[dya] == 0 && (last || c[dxc] == 0)
}

// startsV is the vertical counterpart of startsH.
func startsV(c curve, last bool) bool {
	return c[dxa] == 0 && (last || c[dyc] == 0)
}

// eligible returns a bit mask of the specialized operators which can
// encode the whole run.
func eligible(run []curve) uint8 {
	mask := uint8(canAll)
	last := len(run) - 1
	for p, c := range run {
		isLast := p == last

		if c[dyc] != 0 || p > 0 && c[dya] != 0 {
			mask &^= canHH
		}
		if c[dxc] != 0 || p > 0 && c[dxa] != 0 {
			mask &^= canVV
		}
		if p%2 == 0 {
			if !startsH(c, isLast) {
				mask &^= canHV
			}
			if !startsV(c, isLast) {
				mask &^= canVH
			}
		} else {
			if !startsV(c, isLast) {
				mask &^= canHV
			}
			if !startsH(c, isLast) {
				mask &^= canVH
			}
		}

		if mask == 0 {
			break
		}
	}
	return mask
}

// runCost returns the number of tokens needed to encode the run using op.
// The caller must make sure that op is eligible for the run.
func runCost(op Op, run []curve) int {
	k := len(run)
	if op == OpRRCurveTo {
		return 6*k + 1
	}

	cost := 4*k + 1
	first := run[0]
	last := run[k-1]
	lastStartsH := (k-1)%2 == 0
	if op == OpVHCurveTo {
		lastStartsH = !lastStartsH
	}
	switch op {
	case OpHHCurveTo:
		if first[dya] != 0 {
			cost++
		}
	case OpVVCurveTo:
		if first[dxa] != 0 {
			cost++
		}
	case OpHVCurveTo, OpVHCurveTo:
		if lastStartsH && last[dxc] != 0 || !lastStartsH && last[dyc] != 0 {
			cost++
		}
	}
	return cost
}

// bestOp returns the cheapest operator for encoding the run as a single
// command, together with the resulting number of tokens.
func bestOp(run []curve) (Op, int) {
	op := OpRRCurveTo
	cost := runCost(op, run)

	mask := eligible(run)
	for _, cand := range curveOps {
		if mask&cand.bit == 0 {
			continue
		}
		if c := runCost(cand.op, run); c < cost {
			op, cost = cand.op, c
		}
	}
	return op, cost
}

// segment is a contiguous range of curves, encoded by a single operator.
type segment struct {
	start, end int // inclusive
	op         Op
}

// segmentCurves splits the curves into runs such that the total number of
// tokens is minimal.  The returned segments cover cc in order.
func segmentCurves(cc []curve) ([]segment, int, error) {
	n := len(cc)
	if n == 0 {
		return nil, 0, nil
	}

	// best[i] is the minimal cost for encoding cc[:i+1], the last segment
	// of this encoding starts at from[i] and uses operator op[i].
	best := make([]int, n)
	from := make([]int, n)
	op := make([]Op, n)
	prefix := func(k int) int {
		if k == 0 {
			return 0
		}
		return best[k-1]
	}

	for i := range n {
		best[i] = prefix(i) + runCost(OpRRCurveTo, cc[i:i+1])
		from[i] = i
		op[i] = OpRRCurveTo

		for k := 0; k <= i; k++ {
			o, c := bestOp(cc[k : i+1])
			c += prefix(k)
			if c < best[i] {
				best[i] = c
				from[i] = k
				op[i] = o
			}
		}
	}

	var segs []segment
	for end := n - 1; end >= 0; end = from[end] - 1 {
		if op[end] == 0 || from[end] > end {
			return nil, 0, ErrInternal
		}
		segs = append(segs, segment{start: from[end], end: end, op: op[end]})
	}
	slices.Reverse(segs)

	return segs, best[n-1], nil
}

func specializeCurve(out Program, args []float64) (Program, error) {
	if len(args) == 0 || len(args)%6 != 0 {
		return nil, &ArityError{Op: OpRRCurveTo, Count: len(args)}
	}

	cc := make([]curve, len(args)/6)
	for i := range cc {
		copy(cc[i][:], args[6*i:6*i+6])
	}

	segs, _, err := segmentCurves(cc)
	if err != nil {
		return nil, err
	}

	for _, s := range segs {
		run := cc[s.start : s.end+1]
		for p, c := range run {
			out = out.appendNums(formatCurve(s.op, c, p, p == len(run)-1)...)
		}
		out = append(out, Operator(s.op))
	}
	return out, nil
}

// formatCurve returns the operands for the curve at position p of a run
// encoded with op.
func formatCurve(op Op, c curve, p int, last bool) []float64 {
	switch op {
	case OpHHCurveTo:
		return formatHH(c, p == 0)
	case OpHVCurveTo:
		return formatHV(c, p, last)
	case OpVHCurveTo:
		return formatVH(c, p, last)
	case OpVVCurveTo:
		return formatVV(c, p == 0)
	default:
		return c[:]
	}
}

// dy1? {dxa dxb dyb dxc}+ hhcurveto
func formatHH(c curve, first bool) []float64 {
	if first && c[dya] != 0 {
		return []float64{c[dya], c[dxa], c[dxb], c[dyb], c[dxc]}
	}
	return []float64{c[dxa], c[dxb], c[dyb], c[dxc]}
}

// dx1? {dya dxb dyb dyc}+ vvcurveto
func formatVV(c curve, first bool) []float64 {
	if first && c[dxa] != 0 {
		return []float64{c[dxa], c[dya], c[dxb], c[dyb], c[dyc]}
	}
	return []float64{c[dya], c[dxb], c[dyb], c[dyc]}
}

// dx1 dx2 dy2 dy3 {dya dxb dyb dxc dxd dxe dye dyf}* dxf? hvcurveto
// {dxa dxb dyb dyc dyd dxe dye dxf}+ dyf? hvcurveto
func formatHV(c curve, p int, last bool) []float64 {
	if p%2 == 0 {
		return formatStartH(c, last)
	}
	return formatStartV(c, last)
}

// dy1 dx2 dy2 dx3 {dxa dxb dyb dyc dyd dxe dye dxf}* dyf? vhcurveto
// {dya dxb dyb dxc dxd dxe dye dyf}+ dxf? vhcurveto
func formatVH(c curve, p int, last bool) []float64 {
	if p%2 == 0 {
		return formatStartV(c, last)
	}
	return formatStartH(c, last)
}

func formatStartH(c curve, last bool) []float64 {
	res := []float64{c[dxa], c[dxb], c[dyb], c[dyc]}
	if last && c[dxc] != 0 {
		res = append(res, c[dxc])
	}
	return res
}

func formatStartV(c curve, last bool) []float64 {
	res := []float64{c[dya], c[dxb], c[dyb], c[dxc]}
	if last && c[dyc] != 0 {
		res = append(res, c[dyc])
	}
	return res
}
