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

// Package glyphsrc reads glyph outlines from TrueType and OpenType fonts
// and converts them into unoptimized charstring programs.
//
// The generated programs use only rmoveto, rlineto, rrcurveto and
// endchar, one operator per segment.  This is the form in which many
// font tools first produce charstrings, and it is the input for which
// [charstring.Specialize] gives the largest savings.
package glyphsrc

import (
	"errors"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"seehuhn.de/go/cffopt/charstring"
)

// Font is a font file opened for reading glyph outlines.
// A Font must not be used concurrently.
type Font struct {
	f    *sfnt.Font
	buf  sfnt.Buffer
	ppem fixed.Int26_6
}

// Load parses a TrueType or OpenType font.
func Load(data []byte) (*Font, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, err
	}
	upem := f.UnitsPerEm()
	if upem == 0 {
		return nil, errors.New("glyphsrc: invalid unitsPerEm")
	}
	res := &Font{
		f: f,
		// At this size, one pixel is one font design unit.
		ppem: fixed.Int26_6(upem) << 6,
	}
	return res, nil
}

// NumGlyphs returns the number of glyphs in the font.
func (f *Font) NumGlyphs() int {
	return f.f.NumGlyphs()
}

// UnitsPerEm returns the number of design units per em.
func (f *Font) UnitsPerEm() int {
	return int(f.f.UnitsPerEm())
}

// GlyphName returns the name of a glyph, or the empty string if the font
// does not contain glyph names.
func (f *Font) GlyphName(gid int) string {
	name, err := f.f.GlyphName(&f.buf, sfnt.GlyphIndex(gid))
	if err != nil {
		return ""
	}
	return name
}

// Program returns the outline of the given glyph as a charstring program.
// The advance width of the glyph is included as the width operand,
// assuming a nominal width of zero.
func (f *Font) Program(gid int) (charstring.Program, error) {
	x := sfnt.GlyphIndex(gid)
	segs, err := f.f.LoadGlyph(&f.buf, x, f.ppem, nil)
	if err != nil {
		return nil, err
	}
	adv, err := f.f.GlyphAdvance(&f.buf, x, f.ppem, font.HintingNone)
	if err != nil {
		return nil, err
	}

	b := &builder{width: units(adv)}
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			b.moveTo(point(seg.Args[0]))
		case sfnt.SegmentOpLineTo:
			b.lineTo(point(seg.Args[0]))
		case sfnt.SegmentOpQuadTo:
			b.quadTo(point(seg.Args[0]), point(seg.Args[1]))
		case sfnt.SegmentOpCubeTo:
			b.curveTo(point(seg.Args[0]), point(seg.Args[1]), point(seg.Args[2]))
		}
	}
	return b.finish(), nil
}

// Programs returns the charstring programs for all glyphs in the font.
func (f *Font) Programs() ([]charstring.Program, error) {
	res := make([]charstring.Program, f.NumGlyphs())
	for gid := range res {
		p, err := f.Program(gid)
		if err != nil {
			return nil, err
		}
		res[gid] = p
	}
	return res, nil
}

func units(x fixed.Int26_6) float64 {
	return math.Round(float64(x) / 64)
}

// point converts to font design units, with the y axis pointing up.
func point(p fixed.Point26_6) [2]float64 {
	return [2]float64{units(p.X), units(-p.Y)}
}

// builder collects path commands into a charstring program.
// All coordinates are rounded to integers before the relative offsets
// are computed, so that no rounding errors accumulate.
type builder struct {
	width    float64
	started  bool
	cur      [2]float64
	prog     charstring.Program
	hasWidth bool
}

func (b *builder) args(xx ...float64) {
	if !b.hasWidth {
		b.prog = append(b.prog, charstring.Num(b.width))
		b.hasWidth = true
	}
	for _, x := range xx {
		b.prog = append(b.prog, charstring.Num(x+0)) // turn -0 into 0
	}
}

func (b *builder) moveTo(p [2]float64) {
	b.args(p[0]-b.cur[0], p[1]-b.cur[1])
	b.prog = append(b.prog, charstring.Operator(charstring.OpRMoveTo))
	b.cur = p
	b.started = true
}

func (b *builder) lineTo(p [2]float64) {
	if !b.started {
		b.moveTo(b.cur)
	}
	b.args(p[0]-b.cur[0], p[1]-b.cur[1])
	b.prog = append(b.prog, charstring.Operator(charstring.OpRLineTo))
	b.cur = p
}

// quadTo converts the quadratic Bezier curve into a cubic one.
func (b *builder) quadTo(q, p [2]float64) {
	var c1, c2 [2]float64
	for i := range 2 {
		c1[i] = math.Round(b.cur[i] + 2*(q[i]-b.cur[i])/3)
		c2[i] = math.Round(p[i] + 2*(q[i]-p[i])/3)
	}
	b.curveTo(c1, c2, p)
}

func (b *builder) curveTo(c1, c2, p [2]float64) {
	if !b.started {
		b.moveTo(b.cur)
	}
	b.args(c1[0]-b.cur[0], c1[1]-b.cur[1],
		c2[0]-c1[0], c2[1]-c1[1],
		p[0]-c2[0], p[1]-c2[1])
	b.prog = append(b.prog, charstring.Operator(charstring.OpRRCurveTo))
	b.cur = p
}

func (b *builder) finish() charstring.Program {
	if !b.hasWidth {
		b.args()
	}
	return append(b.prog, charstring.Operator(charstring.OpEndChar))
}
