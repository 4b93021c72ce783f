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
	"strconv"
	"strings"
)

// Token is an element of a charstring program: either a number or an
// operator.
type Token struct {
	// Op is the operator, or 0 if the token is a number.
	Op Op

	// Val is the value of a number token.
	Val float64

	// Mask holds the mask bytes following a hintmask or cntrmask operator.
	Mask []byte
}

// Num returns a number token.
func Num(x float64) Token {
	return Token{Val: x}
}

// Operator returns an operator token.
func Operator(op Op) Token {
	return Token{Op: op}
}

// IsOp reports whether the token is an operator.
func (t Token) IsOp() bool {
	return t.Op != 0
}

func (t Token) String() string {
	if !t.IsOp() {
		return strconv.FormatFloat(t.Val, 'f', -1, 64)
	}
	if len(t.Mask) > 0 {
		return fmt.Sprintf("%s <%x>", t.Op, t.Mask)
	}
	return t.Op.String()
}

// Program is a flat sequence of charstring tokens.
type Program []Token

// String formats the program in the text form understood by [Parse].
func (p Program) String() string {
	parts := make([]string, len(p))
	for i, t := range p {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}

// Ops returns the number of operator tokens in the program.
func (p Program) Ops() int {
	n := 0
	for _, t := range p {
		if t.IsOp() {
			n++
		}
	}
	return n
}

// Histogram counts how often each operator occurs in the program.
func (p Program) Histogram() map[Op]int {
	res := make(map[Op]int)
	for _, t := range p {
		if t.IsOp() {
			res[t.Op]++
		}
	}
	return res
}

func (p Program) appendNums(xx ...float64) Program {
	for _, x := range xx {
		p = append(p, Num(x))
	}
	return p
}

func (p Program) lastOp() (Op, bool) {
	if len(p) == 0 || !p[len(p)-1].IsOp() {
		return 0, false
	}
	return p[len(p)-1].Op, true
}
