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

	tokenizer "github.com/benoitkugler/pstokenizer"
)

// Parse reads a program in text form, for example
//
//	100 10 20 rmoveto 50 hlineto 0 0 30 30 30 0 rrcurveto endchar
//
// Numbers use PostScript syntax.  The mask bytes of hintmask and cntrmask
// are given as a hex string following the operator, as in "hintmask <c0>".
func Parse(text string) (Program, error) {
	tk := tokenizer.NewTokenizer([]byte(text))

	var res Program
	pos := 0
	for {
		token, err := tk.NextToken()
		if err != nil {
			return nil, &ParseError{Pos: pos, Reason: err.Error()}
		}

		switch token.Kind {
		case tokenizer.EOF:
			return res, nil

		case tokenizer.Integer, tokenizer.Float:
			x, err := token.Float()
			if err != nil {
				return nil, &ParseError{Pos: pos, Reason: err.Error()}
			}
			res = append(res, Num(float64(x)))

		case tokenizer.Other:
			name := string(token.Value)
			op, ok := ParseOp(name)
			if !ok {
				return nil, &ParseError{Pos: pos, Reason: fmt.Sprintf("unknown operator %q", name)}
			}
			t := Operator(op)
			if op == OpHintMask || op == OpCntrMask {
				next, err := tk.PeekToken()
				if err == nil && next.Kind == tokenizer.StringHex {
					_, _ = tk.NextToken()
					t.Mask = []byte(next.Value)
				}
			}
			res = append(res, t)

		default:
			return nil, &ParseError{
				Pos:    pos,
				Reason: fmt.Sprintf("unexpected %q", string(token.Value)),
			}
		}
		pos++
	}
}
