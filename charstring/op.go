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

import "fmt"

// Op is a Type 2 charstring operator.
//
// The numeric value of an Op is the operator's opcode.  Two-byte operators
// use the escape byte 12 in the high byte, so that for example "flex" is
// 0x0c23.  The zero value is not a valid operator; a Token with Op == 0 is
// a number.
type Op uint16

// The Type 2 charstring operators.
const (
	OpHStem      Op = 0x0001
	OpVStem      Op = 0x0003
	OpVMoveTo    Op = 0x0004
	OpRLineTo    Op = 0x0005
	OpHLineTo    Op = 0x0006
	OpVLineTo    Op = 0x0007
	OpRRCurveTo  Op = 0x0008
	OpCallSubr   Op = 0x000a
	OpReturn     Op = 0x000b
	OpEndChar    Op = 0x000e
	OpHStemHM    Op = 0x0012
	OpHintMask   Op = 0x0013
	OpCntrMask   Op = 0x0014
	OpRMoveTo    Op = 0x0015
	OpHMoveTo    Op = 0x0016
	OpVStemHM    Op = 0x0017
	OpRCurveLine Op = 0x0018
	OpRLineCurve Op = 0x0019
	OpVVCurveTo  Op = 0x001a
	OpHHCurveTo  Op = 0x001b
	OpCallGSubr  Op = 0x001d
	OpVHCurveTo  Op = 0x001e
	OpHVCurveTo  Op = 0x001f

	OpDotSection Op = 0x0c00
	OpAnd        Op = 0x0c03
	OpOr         Op = 0x0c04
	OpNot        Op = 0x0c05
	OpAbs        Op = 0x0c09
	OpAdd        Op = 0x0c0a
	OpSub        Op = 0x0c0b
	OpDiv        Op = 0x0c0c
	OpNeg        Op = 0x0c0e
	OpEq         Op = 0x0c0f
	OpDrop       Op = 0x0c12
	OpPut        Op = 0x0c14
	OpGet        Op = 0x0c15
	OpIfElse     Op = 0x0c16
	OpRandom     Op = 0x0c17
	OpMul        Op = 0x0c18
	OpSqrt       Op = 0x0c1a
	OpDup        Op = 0x0c1b
	OpExch       Op = 0x0c1c
	OpIndex      Op = 0x0c1d
	OpRoll       Op = 0x0c1e
	OpHFlex      Op = 0x0c22
	OpFlex       Op = 0x0c23
	OpHFlex1     Op = 0x0c24
	OpFlex1      Op = 0x0c25
)

var opNames = map[Op]string{
	OpHStem:      "hstem",
	OpVStem:      "vstem",
	OpVMoveTo:    "vmoveto",
	OpRLineTo:    "rlineto",
	OpHLineTo:    "hlineto",
	OpVLineTo:    "vlineto",
	OpRRCurveTo:  "rrcurveto",
	OpCallSubr:   "callsubr",
	OpReturn:     "return",
	OpEndChar:    "endchar",
	OpHStemHM:    "hstemhm",
	OpHintMask:   "hintmask",
	OpCntrMask:   "cntrmask",
	OpRMoveTo:    "rmoveto",
	OpHMoveTo:    "hmoveto",
	OpVStemHM:    "vstemhm",
	OpRCurveLine: "rcurveline",
	OpRLineCurve: "rlinecurve",
	OpVVCurveTo:  "vvcurveto",
	OpHHCurveTo:  "hhcurveto",
	OpCallGSubr:  "callgsubr",
	OpVHCurveTo:  "vhcurveto",
	OpHVCurveTo:  "hvcurveto",

	OpDotSection: "dotsection",
	OpAnd:        "and",
	OpOr:         "or",
	OpNot:        "not",
	OpAbs:        "abs",
	OpAdd:        "add",
	OpSub:        "sub",
	OpDiv:        "div",
	OpNeg:        "neg",
	OpEq:         "eq",
	OpDrop:       "drop",
	OpPut:        "put",
	OpGet:        "get",
	OpIfElse:     "ifelse",
	OpRandom:     "random",
	OpMul:        "mul",
	OpSqrt:       "sqrt",
	OpDup:        "dup",
	OpExch:       "exch",
	OpIndex:      "index",
	OpRoll:       "roll",
	OpHFlex:      "hflex",
	OpFlex:       "flex",
	OpHFlex1:     "hflex1",
	OpFlex1:      "flex1",
}

var opByName map[string]Op

func init() {
	opByName = make(map[string]Op, len(opNames))
	for op, name := range opNames {
		opByName[name] = op
	}
}

func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("op(%d)", uint16(op))
}

// IsValid reports whether op is one of the Type 2 operators.
func (op Op) IsValid() bool {
	_, ok := opNames[op]
	return ok
}

// Bytes returns the binary encoding of the operator.
func (op Op) Bytes() []byte {
	if op > 255 {
		return []byte{byte(op >> 8), byte(op)}
	}
	return []byte{byte(op)}
}

// ParseOp returns the operator with the given name.
func ParseOp(name string) (Op, bool) {
	op, ok := opByName[name]
	return op, ok
}

// clearsStack reports whether the operator consumes the whole argument stack.
// Arithmetic and storage operators work on the top of the stack only,
// callsubr/callgsubr pop just the subroutine number.
func (op Op) clearsStack() bool {
	switch op {
	case OpHStem, OpVStem, OpHStemHM, OpVStemHM, OpHintMask, OpCntrMask,
		OpRMoveTo, OpHMoveTo, OpVMoveTo,
		OpRLineTo, OpHLineTo, OpVLineTo,
		OpRRCurveTo, OpRCurveLine, OpRLineCurve,
		OpHHCurveTo, OpHVCurveTo, OpVHCurveTo, OpVVCurveTo,
		OpHFlex, OpFlex, OpHFlex1, OpFlex1,
		OpEndChar, OpDotSection:
		return true
	}
	return false
}

// takesWidth reports whether the operator may be preceded by the glyph
// width, when it is the first such operator in a charstring.
func (op Op) takesWidth() bool {
	switch op {
	case OpHStem, OpVStem, OpHStemHM, OpVStemHM, OpHintMask, OpCntrMask,
		OpRMoveTo, OpHMoveTo, OpVMoveTo, OpEndChar:
		return true
	}
	return false
}
