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
	"context"
	"errors"
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/cffopt/charstring"
	"seehuhn.de/go/cffopt/glyphsrc"
)

func encodeAll(t *testing.T, texts ...string) [][]byte {
	t.Helper()
	var res [][]byte
	for _, text := range texts {
		p, err := charstring.Parse(text)
		if err != nil {
			t.Fatal(err)
		}
		code, err := p.Encode()
		if err != nil {
			t.Fatal(err)
		}
		res = append(res, code)
	}
	return res
}

func TestFontGoRegular(t *testing.T) {
	src, err := glyphsrc.Load(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	progs, err := src.Programs()
	if err != nil {
		t.Fatal(err)
	}
	cs := &Charstrings{}
	for _, p := range progs {
		code, err := p.Encode()
		if err != nil {
			t.Fatal(err)
		}
		cs.CharStrings = append(cs.CharStrings, code)
	}
	orig := cs.CharStrings

	report, err := Font(context.Background(), cs, &Options{Workers: 4, Verify: true})
	if err != nil {
		t.Fatal(err)
	}

	if report.Programs != len(progs) {
		t.Errorf("%d programs processed, expected %d", report.Programs, len(progs))
	}
	if report.Unverified != 0 {
		t.Errorf("%d programs could not be verified", report.Unverified)
	}
	if report.TokensAfter >= report.TokensBefore {
		t.Errorf("no tokens saved: %d -> %d", report.TokensBefore, report.TokensAfter)
	}
	if report.Saved() <= 0 {
		t.Errorf("no bytes saved: %d -> %d", report.BytesBefore, report.BytesAfter)
	}
	if report.Ops[charstring.OpHVCurveTo]+report.Ops[charstring.OpVHCurveTo] == 0 {
		t.Errorf("no specialized curves in %v", report.Ops)
	}
	if report.Ops[charstring.OpEndChar] != len(progs) {
		t.Errorf("%d endchar operators, expected %d", report.Ops[charstring.OpEndChar], len(progs))
	}

	for gid, code := range cs.CharStrings {
		if len(code) > len(orig[gid]) {
			t.Errorf("glyph %d: %d > %d bytes", gid, len(code), len(orig[gid]))
		}
		p, err := charstring.Decode(code)
		if err != nil {
			t.Fatalf("glyph %d: %v", gid, err)
		}
		o1, err := charstring.Interpret(progs[gid])
		if err != nil {
			t.Fatal(err)
		}
		o2, err := charstring.Interpret(p)
		if err != nil {
			t.Fatal(err)
		}
		if !o1.Equal(o2) {
			t.Errorf("glyph %d: outline changed", gid)
		}
	}
}

func TestFontSubrs(t *testing.T) {
	cs := &Charstrings{
		CharStrings: encodeAll(t,
			"100 0 10 rmoveto 0 callgsubr endchar",
			"0 callsubr endchar"),
		GlobalSubrs: encodeAll(t,
			"10 0 0 10 -10 0 rlineto return"),
		PrivateSubrs: [][][]byte{
			encodeAll(t, "0 5 rmoveto 1 0 2 3 4 0 rrcurveto return"),
			nil,
		},
	}

	report, err := Font(context.Background(), cs, &Options{Verify: true})
	if err != nil {
		t.Fatal(err)
	}
	if report.Programs != 4 {
		t.Errorf("%d programs processed, expected 4", report.Programs)
	}
	if report.Unverified != 2 {
		t.Errorf("%d programs unverified, expected 2", report.Unverified)
	}

	check := func(code []byte, want string) {
		t.Helper()
		p, err := charstring.Decode(code)
		if err != nil {
			t.Fatal(err)
		}
		if got := p.String(); got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	}
	check(cs.CharStrings[0], "100 10 vmoveto 0 callgsubr endchar")
	check(cs.CharStrings[1], "0 callsubr endchar")
	check(cs.GlobalSubrs[0], "10 10 -10 hlineto return")
	check(cs.PrivateSubrs[0][0], "5 vmoveto 1 2 3 4 hhcurveto return")
	if len(cs.PrivateSubrs) != 2 || len(cs.PrivateSubrs[1]) != 0 {
		t.Errorf("wrong private subrs %v", cs.PrivateSubrs)
	}
}

// TestFontLargeCoordinates checks that lines are not combined into a
// length which the binary format cannot represent.
func TestFontLargeCoordinates(t *testing.T) {
	cs := &Charstrings{
		CharStrings: encodeAll(t,
			"10 20 rmoveto 30000 0 30000 0 rlineto endchar",
			"0 -30000 rmoveto 0 -2768 rmoveto 0 -30000 0 -2768 0 -1 rlineto endchar"),
	}

	_, err := Font(context.Background(), cs, &Options{Verify: true})
	if err != nil {
		t.Fatal(err)
	}

	wantEnd := []vec.Vec2{{X: 60010, Y: 20}, {X: 0, Y: -65537}}
	for i, code := range cs.CharStrings {
		p, err := charstring.Decode(code)
		if err != nil {
			t.Fatal(err)
		}
		o, err := charstring.Interpret(p)
		if err != nil {
			t.Fatal(err)
		}
		last := o.Cmds[len(o.Cmds)-1]
		if got := last.Pts[len(last.Pts)-1]; got != wantEnd[i] {
			t.Errorf("program %d: %s ends at %v, want %v", i, p, got, wantEnd[i])
		}
	}
}

func TestFontError(t *testing.T) {
	good := encodeAll(t, "10 20 rmoveto endchar")
	cs := &Charstrings{
		CharStrings: good,
		PrivateSubrs: [][][]byte{
			nil,
			encodeAll(t, "endchar", "1 2 3 rlineto return"),
		},
	}

	_, err := Font(context.Background(), cs, nil)

	var fontErr *Error
	if !errors.As(err, &fontErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if fontErr.Kind != KindPrivateSubr || fontErr.FD != 1 || fontErr.Index != 1 {
		t.Errorf("wrong location in %v", err)
	}
	var arityErr *charstring.ArityError
	if !errors.As(err, &arityErr) || arityErr.Op != charstring.OpRLineTo {
		t.Errorf("expected ArityError, got %v", err)
	}

	if &cs.CharStrings[0][0] != &good[0][0] {
		t.Error("input modified after error")
	}

	cs.CharStrings = [][]byte{{0x00}}
	cs.PrivateSubrs = nil
	_, err = Font(context.Background(), cs, nil)
	if !errors.Is(err, charstring.ErrUnknownOp) {
		t.Errorf("expected ErrUnknownOp, got %v", err)
	}
}

func TestFontCanceled(t *testing.T) {
	cs := &Charstrings{
		CharStrings: encodeAll(t, "0 5 rmoveto endchar", "5 0 rmoveto endchar"),
	}
	before := cs.CharStrings

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Font(ctx, cs, &Options{Workers: 1})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if &cs.CharStrings[0] != &before[0] {
		t.Error("charstrings replaced after cancellation")
	}
}
