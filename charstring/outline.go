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
	"slices"
	"strings"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// PathOpType is the type of a path construction command.
type PathOpType byte

// These are the supported path construction commands.
const (
	PathMoveTo PathOpType = iota + 1
	PathLineTo
	PathCurveTo
)

func (op PathOpType) String() string {
	switch op {
	case PathMoveTo:
		return "moveto"
	case PathLineTo:
		return "lineto"
	case PathCurveTo:
		return "curveto"
	default:
		return fmt.Sprintf("PathOpType(%d)", op)
	}
}

// PathOp is one path construction command, in absolute coordinates.
// Moves and lines have one point, curves have three.
type PathOp struct {
	Op  PathOpType
	Pts []vec.Vec2
}

// Outline is the result of executing a charstring program.
type Outline struct {
	Cmds []PathOp

	// Width is the glyph width argument, if HasWidth is true.
	// This is the raw operand, relative to the nominal width.
	Width    float64
	HasWidth bool

	HStem []float64
	VStem []float64
}

func (o *Outline) String() string {
	b := &strings.Builder{}
	if o.HasWidth {
		fmt.Fprintf(b, "width %g\n", o.Width)
	}
	for _, cmd := range o.Cmds {
		fmt.Fprint(b, cmd.Op)
		for _, p := range cmd.Pts {
			fmt.Fprintf(b, " (%g,%g)", p.X, p.Y)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// BBox returns the bounding box of all points in the outline, including
// the control points of curves.
func (o *Outline) BBox() rect.Rect {
	var bbox rect.Rect
	first := true
	for _, cmd := range o.Cmds {
		for _, p := range cmd.Pts {
			if first || p.X < bbox.LLx {
				bbox.LLx = p.X
			}
			if first || p.X > bbox.URx {
				bbox.URx = p.X
			}
			if first || p.Y < bbox.LLy {
				bbox.LLy = p.Y
			}
			if first || p.Y > bbox.URy {
				bbox.URy = p.Y
			}
			first = false
		}
	}
	return bbox
}

// Normalize returns the path commands of the outline in a canonical form:
// moves which do not change the current point and zero-length lines are
// removed, and consecutive lines along the same axis are joined.
//
// Two programs which differ only by the rewrites done by [Specialize]
// have identical normalized outlines.
func (o *Outline) Normalize() []PathOp {
	var res []PathOp
	var cur vec.Vec2
	for _, cmd := range o.Cmds {
		switch cmd.Op {
		case PathMoveTo:
			if cmd.Pts[0] == cur {
				continue
			}
			cur = cmd.Pts[0]
			res = append(res, cmd)
		case PathCurveTo:
			cur = cmd.Pts[2]
			res = append(res, cmd)
		case PathLineTo:
			start := cur
			cur = cmd.Pts[0]
			if cur == start {
				continue
			}
			n := len(res)
			if n > 0 && res[n-1].Op == PathLineTo {
				var from vec.Vec2 // start of the previous line
				if n > 1 {
					from = res[n-2].end()
				}
				horizontal := from.Y == start.Y && start.Y == cur.Y
				vertical := from.X == start.X && start.X == cur.X
				if horizontal || vertical {
					res = res[:n-1]
					if cur != from {
						res = append(res, PathOp{Op: PathLineTo, Pts: []vec.Vec2{cur}})
					}
					continue
				}
			}
			res = append(res, cmd)
		}
	}
	return res
}

// Equal reports whether two outlines have the same width and the same
// normalized path.  Stem hints are not compared.
func (o *Outline) Equal(other *Outline) bool {
	if o.HasWidth != other.HasWidth || o.Width != other.Width {
		return false
	}
	return slices.EqualFunc(o.Normalize(), other.Normalize(), func(a, b PathOp) bool {
		return a.Op == b.Op && slices.Equal(a.Pts, b.Pts)
	})
}

func (cmd PathOp) end() vec.Vec2 {
	return cmd.Pts[len(cmd.Pts)-1]
}
