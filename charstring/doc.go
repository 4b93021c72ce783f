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

// Package charstring implements Type 2 charstring programs, as used in
// CFF fonts, together with an optimizer which replaces the general path
// operators by their shorter, specialized variants.
//
// A program is a flat list of numbers and operators.  [Specialize]
// rewrites rmoveto, rlineto and rrcurveto into hmoveto/vmoveto,
// hlineto/vlineto, rcurveline and the four specialized curve operators,
// choosing the split of long curve sequences by dynamic programming.
// [Decode] and [Program.Encode] convert between programs and the binary
// charstring format, [Parse] and [Program.String] between programs and
// text.  [Interpret] executes a program and returns the resulting outline.
package charstring
