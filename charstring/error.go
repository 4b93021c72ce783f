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
	"fmt"
)

// ArityError indicates that an operator was given a number of operands
// which it cannot accept.
type ArityError struct {
	Op    Op
	Count int
}

func (err *ArityError) Error() string {
	return fmt.Sprintf("charstring: %s with %d operands", err.Op, err.Count)
}

// ParseError reports a problem with the text form of a program.
type ParseError struct {
	Pos    int // index of the offending token
	Reason string
}

func (err *ParseError) Error() string {
	return fmt.Sprintf("charstring: token %d: %s", err.Pos, err.Reason)
}

var (
	// ErrInternal indicates a broken invariant inside the specializer.
	ErrInternal = errors.New("charstring: internal error")

	// ErrIncomplete is returned when binary charstring data ends in the
	// middle of a number or operator.
	ErrIncomplete = errors.New("charstring: incomplete charstring")

	// ErrNumberRange is returned by [Program.Encode] for numbers which
	// cannot be represented in a binary charstring.
	ErrNumberRange = errors.New("charstring: number out of range")

	// ErrUnknownOp is returned for opcodes which are not Type 2 operators.
	ErrUnknownOp = errors.New("charstring: unknown operator")

	errStackUnderflow = errors.New("charstring: operand stack underflow")
)
