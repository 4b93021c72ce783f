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

// Package specialize applies the charstring optimizer to all charstrings
// of a CFF font.
//
// The charstrings are given as binary Type 2 data, as found in the
// CharStrings, global Subrs and private Subrs INDEX structures of a CFF
// font.  Use [ReadIndex] and [WriteIndex] to convert between these
// structures and byte slices.
package specialize

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"seehuhn.de/go/cffopt/charstring"
)

// Charstrings holds the binary charstrings of a CFF font.
type Charstrings struct {
	CharStrings [][]byte

	GlobalSubrs [][]byte

	// PrivateSubrs holds the local subroutines, one INDEX per font dict.
	PrivateSubrs [][][]byte
}

// Options controls the behaviour of [Font].
// A nil *Options is equivalent to the zero value.
type Options struct {
	// Workers is the maximal number of charstrings which are processed
	// concurrently.  If this is zero, runtime.GOMAXPROCS(0) is used.
	Workers int

	// Verify enables a check that every optimized charstring draws the
	// same outline as the original.  Programs which cannot be executed
	// on their own, for example because they call subroutines, are
	// counted in Report.Unverified.
	Verify bool
}

// Report summarizes the changes made by [Font].
type Report struct {
	Programs int

	TokensBefore, TokensAfter int
	BytesBefore, BytesAfter   int

	// Unverified is the number of programs which could not be checked,
	// if Options.Verify was set.
	Unverified int

	// Ops counts the operators in the optimized charstrings.
	Ops map[charstring.Op]int
}

// Saved returns the number of bytes saved by the optimization.
func (r *Report) Saved() int {
	return r.BytesBefore - r.BytesAfter
}

// Kind identifies the INDEX a charstring belongs to.
type Kind int

// These are the supported kinds of charstrings.
const (
	KindGlyph Kind = iota
	KindGlobalSubr
	KindPrivateSubr
)

func (k Kind) String() string {
	switch k {
	case KindGlyph:
		return "glyph"
	case KindGlobalSubr:
		return "global subr"
	case KindPrivateSubr:
		return "private subr"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error reports a problem with one charstring.
type Error struct {
	Kind  Kind
	FD    int // font dict, for private subroutines
	Index int
	Err   error
}

func (err *Error) Error() string {
	if err.Kind == KindPrivateSubr {
		return fmt.Sprintf("%s %d/%d: %v", err.Kind, err.FD, err.Index, err.Err)
	}
	return fmt.Sprintf("%s %d: %v", err.Kind, err.Index, err.Err)
}

func (err *Error) Unwrap() error {
	return err.Err
}

// job is one charstring, together with the place where the result is
// stored.
type job struct {
	kind  Kind
	fd    int
	index int
	in    []byte
	out   *[]byte
}

type result struct {
	tokensBefore, tokensAfter int
	ops                       map[charstring.Op]int
	unverified                bool
}

// Font optimizes all charstrings in cs.
//
// On success, the charstrings in cs are replaced by their optimized
// versions.  If any charstring fails to decode or to optimize, an [*Error]
// is returned and cs is left unchanged.
func Font(ctx context.Context, cs *Charstrings, opt *Options) (*Report, error) {
	if opt == nil {
		opt = &Options{}
	}
	workers := opt.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	charStrings := make([][]byte, len(cs.CharStrings))
	globalSubrs := make([][]byte, len(cs.GlobalSubrs))
	privateSubrs := make([][][]byte, len(cs.PrivateSubrs))

	var jobs []job
	for i, code := range cs.CharStrings {
		jobs = append(jobs, job{kind: KindGlyph, index: i, in: code, out: &charStrings[i]})
	}
	for i, code := range cs.GlobalSubrs {
		jobs = append(jobs, job{kind: KindGlobalSubr, index: i, in: code, out: &globalSubrs[i]})
	}
	for fd, subrs := range cs.PrivateSubrs {
		privateSubrs[fd] = make([][]byte, len(subrs))
		for i, code := range subrs {
			jobs = append(jobs, job{kind: KindPrivateSubr, fd: fd, index: i, in: code, out: &privateSubrs[fd][i]})
		}
	}

	results := make([]result, len(jobs))
	errs := make([]error, len(jobs))

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
jobLoop:
	for k := range jobs {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			break jobLoop
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			j := &jobs[k]
			res, err := optimize(j.in, j.out, opt.Verify)
			if err != nil {
				errs[k] = &Error{Kind: j.kind, FD: j.fd, Index: j.index, Err: err}
				return
			}
			results[k] = res
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	report := &Report{
		Programs: len(jobs),
		Ops:      make(map[charstring.Op]int),
	}
	for k, res := range results {
		report.TokensBefore += res.tokensBefore
		report.TokensAfter += res.tokensAfter
		report.BytesBefore += len(jobs[k].in)
		report.BytesAfter += len(*jobs[k].out)
		if res.unverified {
			report.Unverified++
		}
		for op, n := range res.ops {
			report.Ops[op] += n
		}
	}

	cs.CharStrings = charStrings
	cs.GlobalSubrs = globalSubrs
	cs.PrivateSubrs = privateSubrs

	return report, nil
}

// optimize specializes a single binary charstring and stores the
// result in *out.
func optimize(code []byte, out *[]byte, verify bool) (result, error) {
	var res result

	in, err := charstring.Decode(code)
	if err != nil {
		return res, err
	}
	opt, err := charstring.Specialize(in)
	if err != nil {
		return res, err
	}

	enc, err := opt.Encode()
	if err != nil {
		return res, err
	}

	if verify {
		o1, err := charstring.Interpret(in)
		if err != nil {
			res.unverified = true
		} else {
			o2, err := decodeOutline(enc)
			if err != nil {
				return res, fmt.Errorf("%w: optimized program fails: %v", charstring.ErrInternal, err)
			}
			if !o1.Equal(o2) {
				return res, fmt.Errorf("%w: outline changed", charstring.ErrInternal)
			}
		}
	}

	res.tokensBefore = len(in)
	res.tokensAfter = len(opt)
	res.ops = opt.Histogram()
	*out = enc
	return res, nil
}

// decodeOutline interprets the binary charstring exactly as a font
// consumer would see it.
func decodeOutline(code []byte) (*charstring.Outline, error) {
	p, err := charstring.Decode(code)
	if err != nil {
		return nil, err
	}
	return charstring.Interpret(p)
}
