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
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/tabwriter"

	"golang.org/x/exp/maps"
	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"seehuhn.de/go/cffopt/charstring"
	"seehuhn.de/go/cffopt/cmd/internal/buildinfo"
	"seehuhn.de/go/cffopt/cmd/internal/profile"
	"seehuhn.de/go/cffopt/glyphsrc"
	"seehuhn.de/go/cffopt/specialize"
)

var (
	verbose     = flag.Bool("v", false, "list the savings for every glyph")
	workers     = flag.Int("w", 0, "number of concurrent workers (0 = one per CPU)")
	outFile     = flag.String("o", "", "write the optimized CharStrings INDEX to `file`")
	expr        = flag.String("e", "", "optimize the charstring `program` given in text form")
	indexFile   = flag.String("i", "", "read the CharStrings INDEX from `file`")
	gsubrFile   = flag.String("g", "", "read the global subroutine INDEX from `file` (with -i)")
	outDir      = flag.String("d", "", "write the optimized INDEX files to `dir` (with -i)")
	noVerify    = flag.Bool("noverify", false, "skip the outline comparison")
	showVersion = flag.Bool("version", false, "print version information and exit")
	cpuprofile  = flag.String("cpuprofile", "", "write cpu profile to `file`")
	memprofile  = flag.String("memprofile", "", "write memory profile to `file`")

	subrFiles fileList
)

func init() {
	flag.Var(&subrFiles, "s", "read a private subroutine INDEX from `file` (with -i, repeatable)")
}

// fileList collects the values of a repeated command line flag.
type fileList []string

func (l *fileList) String() string {
	return strings.Join(*l, ",")
}

func (l *fileList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "cffopt - shorten Type 2 charstrings using specialized operators\n")
		fmt.Fprintf(os.Stderr, "%s\n\n", buildinfo.Short("cffopt"))
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  cffopt [options] <font.ttf|font.otf>...\n")
		fmt.Fprintf(os.Stderr, "  cffopt [options] -i <charstrings.idx> [-g <gsubrs.idx>] [-s <subrs.idx>]... [-d <dir>]\n")
		fmt.Fprintf(os.Stderr, "  cffopt -e <program>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  cffopt -v Go-Regular.ttf\n")
		fmt.Fprintf(os.Stderr, "  cffopt -o charstrings.idx Go-Regular.ttf\n")
		fmt.Fprintf(os.Stderr, "  cffopt -i charstrings.idx -g gsubrs.idx -d out\n")
		fmt.Fprintf(os.Stderr, "  cffopt -e \"0 10 rmoveto 10 0 0 10 rlineto endchar\"\n")
	}
	flag.Parse()

	if *showVersion {
		err := buildinfo.Write(os.Stdout, "cffopt",
			"seehuhn.de/", "github.com/benoitkugler/", "golang.org/x/image")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if *expr == "" && *indexFile == "" && flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}
	if *outFile != "" && flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "-o requires exactly one font file")
		os.Exit(1)
	}
	if *indexFile == "" && (*gsubrFile != "" || len(subrFiles) > 0 || *outDir != "") {
		fmt.Fprintln(os.Stderr, "-g, -s and -d require -i")
		os.Exit(1)
	}
	if *indexFile != "" && (flag.NArg() > 0 || *outFile != "") {
		fmt.Fprintln(os.Stderr, "-i cannot be combined with font files")
		os.Exit(1)
	}

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() (err error) {
	prof, err := profile.Start(*cpuprofile, *memprofile)
	if err != nil {
		return err
	}
	defer func() {
		if stopErr := prof.Stop(); err == nil {
			err = stopErr
		}
	}()

	opt := &specialize.Options{
		Workers: *workers,
		Verify:  !*noVerify,
	}

	if *expr != "" {
		return optimizeText(os.Stdout, *expr)
	}

	if *indexFile != "" {
		files := &indexFiles{
			charStrings:  *indexFile,
			globalSubrs:  *gsubrFile,
			privateSubrs: subrFiles,
		}
		return optimizeIndexes(os.Stdout, files, *outDir, opt)
	}

	for _, fname := range flag.Args() {
		err := optimizeFont(os.Stdout, fname, opt)
		if err != nil {
			return fmt.Errorf("%s: %w", fname, err)
		}
	}
	return nil
}

func optimizeText(w io.Writer, text string) error {
	in, err := charstring.Parse(text)
	if err != nil {
		return err
	}
	out, err := charstring.Specialize(in)
	if err != nil {
		return err
	}
	before, err := in.Encode()
	if err != nil {
		return err
	}
	after, err := out.Encode()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, out)
	fmt.Fprintf(w, "%d -> %d tokens, %d -> %d bytes\n",
		len(in), len(out), len(before), len(after))
	return nil
}

func optimizeFont(w io.Writer, fname string, opt *specialize.Options) error {
	data, err := os.ReadFile(fname)
	if err != nil {
		return err
	}
	src, err := glyphsrc.Load(data)
	if err != nil {
		return err
	}
	progs, err := src.Programs()
	if err != nil {
		return err
	}

	cs := &specialize.Charstrings{}
	for gid, p := range progs {
		code, err := p.Encode()
		if err != nil {
			return fmt.Errorf("glyph %d: %w", gid, err)
		}
		cs.CharStrings = append(cs.CharStrings, code)
	}
	orig := slices.Clone(cs.CharStrings)

	report, err := specialize.Font(context.Background(), cs, opt)
	if err != nil {
		return err
	}

	tab := newTable(w)
	if *verbose {
		tab.row("glyph", "name", "before", "after")
		for gid, code := range cs.CharStrings {
			tab.row(gid, src.GlyphName(gid), len(orig[gid]), len(code))
		}
		tab.row()
	}
	writeReport(tab, fname, report)
	if err := tab.flush(); err != nil {
		return err
	}

	if *outFile != "" {
		return writeIndexFile(*outFile, cs.CharStrings)
	}
	return nil
}

// indexFiles names the INDEX files which make up the charstrings of
// a CFF font.
type indexFiles struct {
	charStrings  string
	globalSubrs  string   // optional
	privateSubrs []string // one per font dict
}

// optimizeIndexes optimizes the charstrings stored in raw CFF INDEX files.
// If outDir is non-empty, the optimized INDEX files are written there,
// using the base names of the input files.
func optimizeIndexes(w io.Writer, files *indexFiles, outDir string, opt *specialize.Options) error {
	names := []string{files.charStrings}
	if files.globalSubrs != "" {
		names = append(names, files.globalSubrs)
	}
	names = append(names, files.privateSubrs...)

	var targets []string
	if outDir != "" {
		seen := make(map[string]bool)
		for _, fname := range names {
			target := filepath.Join(outDir, filepath.Base(fname))
			if seen[target] {
				return fmt.Errorf("%s: duplicate output file", target)
			}
			seen[target] = true
			if sameFile(target, fname) {
				return fmt.Errorf("%s: refusing to overwrite input", fname)
			}
			targets = append(targets, target)
		}
	}

	cs := &specialize.Charstrings{}
	var err error
	cs.CharStrings, err = readIndexFile(files.charStrings)
	if err != nil {
		return err
	}
	if files.globalSubrs != "" {
		cs.GlobalSubrs, err = readIndexFile(files.globalSubrs)
		if err != nil {
			return err
		}
	}
	for _, fname := range files.privateSubrs {
		subrs, err := readIndexFile(fname)
		if err != nil {
			return err
		}
		cs.PrivateSubrs = append(cs.PrivateSubrs, subrs)
	}

	report, err := specialize.Font(context.Background(), cs, opt)
	if err != nil {
		return err
	}

	tab := newTable(w)
	writeReport(tab, files.charStrings, report)
	if err := tab.flush(); err != nil {
		return err
	}

	if outDir == "" {
		return nil
	}
	indexes := [][][]byte{cs.CharStrings}
	if files.globalSubrs != "" {
		indexes = append(indexes, cs.GlobalSubrs)
	}
	indexes = append(indexes, cs.PrivateSubrs...)
	for i, target := range targets {
		err := writeIndexFile(target, indexes[i])
		if err != nil {
			return err
		}
	}
	return nil
}

func sameFile(a, b string) bool {
	fa, err := os.Stat(a)
	if err != nil {
		return false
	}
	fb, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(fa, fb)
}

var errTrailingData = errors.New("trailing data after INDEX")

// readIndexFile reads a file which contains exactly one CFF INDEX.
func readIndexFile(fname string) ([][]byte, error) {
	data, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	items, n, err := specialize.ReadIndex(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	if n != len(data) {
		return nil, fmt.Errorf("%s: %w (%d bytes)", fname, errTrailingData, len(data)-n)
	}
	return items, nil
}

func writeIndexFile(fname string, items [][]byte) (err error) {
	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := specialize.WriteIndex(f, items); err != nil {
		return fmt.Errorf("%s: %w", fname, err)
	}
	return nil
}

func writeReport(tab *table, fname string, report *specialize.Report) {
	tab.row("font", fname)
	tab.row("programs", report.Programs)
	tab.row("tokens", report.TokensBefore, report.TokensAfter)
	tab.row("bytes", report.BytesBefore, report.BytesAfter)
	tab.row("saved", report.Saved())
	if report.Unverified > 0 {
		tab.row("unverified", report.Unverified)
	}
	tab.row()
	ops := maps.Keys(report.Ops)
	slices.Sort(ops)
	for _, op := range ops {
		tab.row(op, report.Ops[op])
	}
}

// table formats rows either as aligned columns, for a terminal, or as
// tab-separated values.
type table struct {
	p  *message.Printer
	tw *tabwriter.Writer
	w  io.Writer
}

func newTable(w io.Writer) *table {
	t := &table{
		p: message.NewPrinter(language.English),
		w: w,
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		t.tw = tabwriter.NewWriter(f, 0, 8, 2, ' ', tabwriter.AlignRight)
		t.w = t.tw
	}
	return t
}

func (t *table) row(cols ...any) {
	for i, col := range cols {
		if i > 0 {
			io.WriteString(t.w, "\t")
		}
		switch col := col.(type) {
		case int:
			if t.tw != nil {
				t.p.Fprintf(t.w, "%d", col)
			} else {
				fmt.Fprint(t.w, col)
			}
		default:
			fmt.Fprint(t.w, col)
		}
	}
	if t.tw != nil {
		io.WriteString(t.w, "\t")
	}
	io.WriteString(t.w, "\n")
}

func (t *table) flush() error {
	if t.tw == nil {
		return nil
	}
	return t.tw.Flush()
}
