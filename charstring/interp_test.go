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
	"testing"

	"seehuhn.de/go/geom/rect"
)

func TestInterpret(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"10 20 rmoveto 5 vlineto endchar",
			"moveto (10,20)\nlineto (10,25)\n"},
		{"100 10 hmoveto endchar",
			"width 100\nmoveto (10,0)\n"},
		{"7 vmoveto 1 2 3 hlineto",
			"moveto (0,7)\nlineto (1,7)\nlineto (1,9)\nlineto (4,9)\n"},
		{"1 2 3 4 hhcurveto",
			"curveto (1,0) (3,3) (7,3)\n"},
		{"9 1 2 3 4 hhcurveto",
			"curveto (1,9) (3,12) (7,12)\n"},
		{"1 2 3 4 vvcurveto",
			"curveto (0,1) (2,4) (2,8)\n"},
		{"1 2 3 4 5 hvcurveto",
			"curveto (1,0) (3,3) (8,7)\n"},
		{"1 2 3 4 5 6 7 8 vhcurveto",
			"curveto (0,1) (2,4) (6,4)\ncurveto (11,4) (17,11) (17,19)\n"},
		{"1 2 3 4 5 6 7 8 rcurveline",
			"curveto (1,2) (4,6) (9,12)\nlineto (16,20)\n"},
		{"1 2 3 4 5 6 7 8 rlinecurve",
			"lineto (1,2)\ncurveto (4,6) (9,12) (16,20)\n"},
		{"1 2 3 4 5 6 7 hflex",
			"curveto (1,0) (3,3) (7,3)\ncurveto (12,3) (18,0) (25,0)\n"},
		{"3 4 add hmoveto",
			"moveto (7,0)\n"},
		{"5 vstem 1 2 hstem endchar", "width 5\n"},
		{"3 4 rmoveto endchar 1 1 rlineto", "moveto (3,4)\n"},
	}
	for _, test := range cases {
		p, err := Parse(test.in)
		if err != nil {
			t.Fatal(err)
		}
		o, err := Interpret(p)
		if err != nil {
			t.Errorf("%q: %v", test.in, err)
			continue
		}
		if got := o.String(); got != test.want {
			t.Errorf("%q:\ngot:\n%swant:\n%s", test.in, got, test.want)
		}
	}
}

func TestInterpretStems(t *testing.T) {
	p, err := Parse("10 20 30 5 hstemhm 0 50 vstemhm 100 10 hintmask <e0> endchar")
	if err != nil {
		t.Fatal(err)
	}
	o, err := Interpret(p)
	if err != nil {
		t.Fatal(err)
	}
	if o.HasWidth {
		t.Error("unexpected width")
	}
	if len(o.HStem) != 4 || o.HStem[2] != 60 || o.HStem[3] != 65 {
		t.Errorf("wrong hstems %v", o.HStem)
	}
	if len(o.VStem) != 4 || o.VStem[2] != 100 || o.VStem[3] != 110 {
		t.Errorf("wrong vstems %v", o.VStem)
	}
}

func TestInterpretErrors(t *testing.T) {
	cases := []struct {
		in  string
		err error
	}{
		{"1 rmoveto", errStackUnderflow},
		{"hmoveto", errStackUnderflow},
		{"1 add", errStackUnderflow},
		{"1 callsubr", errSubroutine},
		{"0 callgsubr", errSubroutine},
	}
	for _, test := range cases {
		p, err := Parse(test.in)
		if err != nil {
			t.Fatal(err)
		}
		_, err = Interpret(p)
		if !errors.Is(err, test.err) {
			t.Errorf("%q: got %v, want %v", test.in, err, test.err)
		}
	}
}

func TestBBox(t *testing.T) {
	p, err := Parse("10 20 rmoveto 30 -40 rlineto 0 0 -50 0 0 100 rrcurveto")
	if err != nil {
		t.Fatal(err)
	}
	o, err := Interpret(p)
	if err != nil {
		t.Fatal(err)
	}
	want := rect.Rect{LLx: -10, LLy: -20, URx: 40, URy: 80}
	if got := o.BBox(); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestRoll(t *testing.T) {
	in := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	out := []float64{1, 2, 4, 5, 6, 3, 7, 8}

	roll(in[2:6], 3)
	for i, x := range in {
		if out[i] != x {
			t.Error(in, out)
			break
		}
	}
}
