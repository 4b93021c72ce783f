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

package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"seehuhn.de/go/cffopt/charstring"
	"seehuhn.de/go/cffopt/specialize"
)

func TestOptimizeText(t *testing.T) {
	buf := &bytes.Buffer{}
	err := optimizeText(buf, "100 0 10 rmoveto 10 0 0 10 -10 0 rlineto endchar")
	if err != nil {
		t.Fatal(err)
	}
	want := "100 10 vmoveto 10 10 -10 hlineto endchar\n12 -> 8 tokens, 12 -> 8 bytes\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	err = optimizeText(buf, "1 2 3 rlineto")
	if err == nil {
		t.Error("missing error for invalid program")
	}
}

func TestWriteReport(t *testing.T) {
	buf := &bytes.Buffer{}
	tab := &table{w: buf}
	report := &specialize.Report{
		Programs:     2,
		TokensBefore: 20,
		TokensAfter:  12,
		BytesBefore:  1500,
		BytesAfter:   1000,
		Ops: map[charstring.Op]int{
			charstring.OpEndChar: 2,
			charstring.OpHLineTo: 3,
			charstring.OpVMoveTo: 1,
			charstring.OpRLineTo: 1,
		},
	}
	writeReport(tab, "test.ttf", report)
	if err := tab.flush(); err != nil {
		t.Fatal(err)
	}

	want := strings.Join([]string{
		"font\ttest.ttf",
		"programs\t2",
		"tokens\t20\t12",
		"bytes\t1500\t1000",
		"saved\t500",
		"",
		"vmoveto\t1",
		"rlineto\t1",
		"hlineto\t3",
		"endchar\t2",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

// writeTestIndex stores the given programs as a CFF INDEX file in dir.
func writeTestIndex(t *testing.T, dir, name string, texts ...string) string {
	t.Helper()
	var items [][]byte
	for _, text := range texts {
		p, err := charstring.Parse(text)
		if err != nil {
			t.Fatal(err)
		}
		code, err := p.Encode()
		if err != nil {
			t.Fatal(err)
		}
		items = append(items, code)
	}
	fname := filepath.Join(dir, name)
	if err := writeIndexFile(fname, items); err != nil {
		t.Fatal(err)
	}
	return fname
}

func readTestIndex(t *testing.T, fname string) []string {
	t.Helper()
	items, err := readIndexFile(fname)
	if err != nil {
		t.Fatal(err)
	}
	var res []string
	for _, code := range items {
		p, err := charstring.Decode(code)
		if err != nil {
			t.Fatal(err)
		}
		res = append(res, p.String())
	}
	return res
}

func TestOptimizeIndexes(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	files := &indexFiles{
		charStrings: writeTestIndex(t, inDir, "charstrings.idx",
			"100 0 10 rmoveto 0 callgsubr endchar",
			"0 callsubr endchar"),
		globalSubrs: writeTestIndex(t, inDir, "gsubrs.idx",
			"10 0 0 10 -10 0 rlineto return"),
		privateSubrs: []string{
			writeTestIndex(t, inDir, "subrs.idx",
				"0 5 rmoveto 1 0 2 3 4 0 rrcurveto return"),
		},
	}

	buf := &bytes.Buffer{}
	err := optimizeIndexes(buf, files, outDir, &specialize.Options{Verify: true})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "font\t"+files.charStrings+"\nprograms\t4\n") {
		t.Errorf("unexpected report:\n%s", buf.String())
	}

	expected := map[string][]string{
		"charstrings.idx": {"100 10 vmoveto 0 callgsubr endchar", "0 callsubr endchar"},
		"gsubrs.idx":      {"10 10 -10 hlineto return"},
		"subrs.idx":       {"5 vmoveto 1 2 3 4 hhcurveto return"},
	}
	for name, want := range expected {
		got := readTestIndex(t, filepath.Join(outDir, name))
		if strings.Join(got, "|") != strings.Join(want, "|") {
			t.Errorf("%s: got %q, want %q", name, got, want)
		}
	}

	// without an output directory, only the report is written
	reportOnly := &bytes.Buffer{}
	err = optimizeIndexes(reportOnly, &indexFiles{charStrings: files.charStrings}, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if reportOnly.Len() == 0 {
		t.Error("missing report")
	}
}

func TestOptimizeIndexesErrors(t *testing.T) {
	dir := t.TempDir()
	good := writeTestIndex(t, dir, "good.idx", "10 20 rmoveto endchar")

	trailing := filepath.Join(dir, "trailing.idx")
	data, err := os.ReadFile(good)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(trailing, append(data, 0), 0o644); err != nil {
		t.Fatal(err)
	}
	err = optimizeIndexes(&bytes.Buffer{}, &indexFiles{charStrings: trailing}, "", nil)
	if !errors.Is(err, errTrailingData) {
		t.Errorf("expected errTrailingData, got %v", err)
	}

	err = optimizeIndexes(&bytes.Buffer{}, &indexFiles{charStrings: good}, dir, nil)
	if err == nil {
		t.Error("input file overwritten")
	}

	files := &indexFiles{
		charStrings:  good,
		privateSubrs: []string{good},
	}
	err = optimizeIndexes(&bytes.Buffer{}, files, t.TempDir(), nil)
	if err == nil {
		t.Error("missing error for duplicate output names")
	}
}
