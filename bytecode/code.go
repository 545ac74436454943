/*
Copyright © 2026 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package bytecode extracts import statements and global name usage from
// decoded CPython code objects. Decoding the on-disk bytecode format is
// the caller's concern; this package consumes an already-decoded
// instruction stream.
package bytecode

// Opcode classifies the instruction categories the extractor dispatches
// on. Everything else in the stream is OpOther.
type Opcode uint8

const (
	OpOther Opcode = iota
	OpLoadConst
	OpImportName
	OpStoreName
	OpStoreGlobal
	OpLoadName
	OpLoadGlobal
	OpMakeFunction
	OpLoadBuildClass
)

func (op Opcode) String() string {
	switch op {
	case OpLoadConst:
		return "LOAD_CONST"
	case OpImportName:
		return "IMPORT_NAME"
	case OpStoreName:
		return "STORE_NAME"
	case OpStoreGlobal:
		return "STORE_GLOBAL"
	case OpLoadName:
		return "LOAD_NAME"
	case OpLoadGlobal:
		return "LOAD_GLOBAL"
	case OpMakeFunction:
		return "MAKE_FUNCTION"
	case OpLoadBuildClass:
		return "LOAD_BUILD_CLASS"
	case OpOther:
		return "OTHER"
	}
	return "UNKNOWN"
}

// Instruction is one decoded instruction. Arg indexes into the code
// object's constant pool or names table depending on the opcode, and is
// meaningless for OpOther.
type Instruction struct {
	Op  Opcode
	Arg int
}

// ConstKind tags the variants a constant-pool entry can take.
type ConstKind uint8

const (
	ConstNone ConstKind = iota
	ConstInt
	ConstString
	ConstTuple
	ConstCode
)

// Const is one entry in a code object's constant pool. Only the field
// matching Kind is meaningful.
type Const struct {
	Kind  ConstKind
	Int   int
	Str   string
	Tuple []string
	Code  *CodeObject
}

// None returns the None constant.
func None() Const { return Const{Kind: ConstNone} }

// Int returns an integer constant.
func Int(v int) Const { return Const{Kind: ConstInt, Int: v} }

// String returns a string constant.
func String(s string) Const { return Const{Kind: ConstString, Str: s} }

// Tuple returns a tuple-of-strings constant, as used for import fromlists.
func Tuple(names ...string) Const { return Const{Kind: ConstTuple, Tuple: names} }

// Code returns a nested code object constant.
func Code(c *CodeObject) Const { return Const{Kind: ConstCode, Code: c} }

// CodeObject is one compiled unit: a module, function, class body or
// comprehension. Nested units are reachable through the constant pool.
// Code objects are immutable during extraction.
type CodeObject struct {
	// Name identifies the unit in diagnostics (e.g. "<module>", "spam").
	Name string

	Instructions []Instruction
	Consts       []Const
	Names        []string
}
