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
package bytecode

import (
	"errors"
	"fmt"

	"bennypowers.dev/moduli/importinfo"
)

// ErrStructural reports an instruction stream that violates the
// positional-operand invariants of the compiler, for example an
// IMPORT_NAME not preceded by two constant loads. It indicates a corrupt
// or unsupported code object and is never worth retrying.
var ErrStructural = errors.New("structural invariant violated")

// Analysis aggregates everything found in a code object and all units
// nested within it.
type Analysis struct {
	// Imports lists every import statement in discovery order:
	// parent units before children, instruction order within a unit.
	Imports []importinfo.ImportInfo

	// GlobalsWritten holds module-level bindings created from module-
	// or class-level code. Writes inside function bodies and plain
	// stores inside class bodies are excluded.
	GlobalsWritten map[string]bool

	// GlobalsRead holds global names read from module- or class-level
	// code. Reads inside function bodies are excluded; class-body
	// reads count because they resolve against the enclosing scope.
	GlobalsRead map[string]bool
}

// Extract scans a code object and all units reachable through its
// constant pool, returning the imports and global name usage of the
// whole tree. The walk is iterative so that deeply nested definitions
// cannot exhaust the call stack.
func Extract(root *CodeObject) (*Analysis, error) {
	result := &Analysis{
		GlobalsWritten: make(map[string]bool),
		GlobalsRead:    make(map[string]bool),
	}

	type workItem struct {
		code    *CodeObject
		parents []*CodeObject
	}

	// A unit's scope is decided while scanning its parent: the
	// make-function classification lands in funcCodes or classCodes
	// before the child is popped from the queue.
	funcCodes := make(map[*CodeObject]bool)
	classCodes := make(map[*CodeObject]bool)

	queue := []workItem{{code: root}}
	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		// A class defined inside a function carries both markers: its
		// imports are conditional and its stores follow class rules.
		inFunction := isFunctionCode(item.code, item.parents, funcCodes)
		inClass := classCodes[item.code]
		if err := extractSingle(item.code, inFunction, inClass, result, funcCodes, classCodes); err != nil {
			return nil, err
		}

		parents := append(append([]*CodeObject(nil), item.parents...), item.code)
		for _, c := range item.code.Consts {
			if c.Kind == ConstCode {
				queue = append(queue, workItem{code: c.Code, parents: parents})
			}
		}
	}

	return result, nil
}

// isFunctionCode reports whether a unit runs in function scope: either
// it was produced by a plain make-function, or any of its ancestors was.
func isFunctionCode(code *CodeObject, parents []*CodeObject, funcCodes map[*CodeObject]bool) bool {
	if funcCodes[code] {
		return true
	}
	for _, p := range parents {
		if funcCodes[p] {
			return true
		}
	}
	return false
}

// extractSingle scans one unit's instruction stream left to right,
// appending to the shared result and classifying nested units.
func extractSingle(
	code *CodeObject,
	inFunction, inClass bool,
	out *Analysis,
	funcCodes, classCodes map[*CodeObject]bool,
) error {
	for i, inst := range code.Instructions {
		switch inst.Op {
		case OpImportName:
			// IMPORT_NAME pops two constants: the relative level and
			// the fromlist, loaded by the two preceding instructions.
			if i < 2 || code.Instructions[i-1].Op != OpLoadConst || code.Instructions[i-2].Op != OpLoadConst {
				return fmt.Errorf("%w: IMPORT_NAME at %d in %q not preceded by two LOAD_CONST", ErrStructural, i, code.Name)
			}

			fromConst, err := constAt(code, code.Instructions[i-1].Arg)
			if err != nil {
				return err
			}
			levelConst, err := constAt(code, code.Instructions[i-2].Arg)
			if err != nil {
				return err
			}
			if levelConst.Kind != ConstInt {
				return fmt.Errorf("%w: IMPORT_NAME level operand in %q is not an integer", ErrStructural, code.Name)
			}

			var fromlist []string
			switch fromConst.Kind {
			case ConstNone:
				fromlist = nil
			case ConstTuple:
				fromlist = fromConst.Tuple
			default:
				return fmt.Errorf("%w: IMPORT_NAME fromlist operand in %q is neither None nor a tuple", ErrStructural, code.Name)
			}

			module, err := nameAt(code, inst.Arg)
			if err != nil {
				return err
			}

			info := importinfo.New(module, fromlist, levelConst.Int, inFunction, false, false)
			out.Imports = append(out.Imports, info)

			// "from X import Y" at module scope binds Y as a global.
			if !inFunction && !inClass && fromlist != nil {
				for name := range info.Names {
					out.GlobalsWritten[name] = true
				}
			}

		case OpStoreName:
			// Class bodies bind into the class namespace.
			if inClass {
				continue
			}
			name, err := nameAt(code, inst.Arg)
			if err != nil {
				return err
			}
			if !inFunction {
				out.GlobalsWritten[name] = true
			}

		case OpStoreGlobal:
			// An explicit "global" declaration writes the module
			// namespace from any scope.
			name, err := nameAt(code, inst.Arg)
			if err != nil {
				return err
			}
			if !inFunction {
				out.GlobalsWritten[name] = true
			}

		case OpLoadName:
			// Class-body reads count: a name that misses the class
			// namespace falls through to a global lookup.
			name, err := nameAt(code, inst.Arg)
			if err != nil {
				return err
			}
			if !inFunction {
				out.GlobalsRead[name] = true
			}

		case OpLoadGlobal:
			name, err := nameAt(code, inst.Arg)
			if err != nil {
				return err
			}
			if !inFunction {
				out.GlobalsRead[name] = true
			}

		case OpMakeFunction:
			if i < 2 || code.Instructions[i-2].Op != OpLoadConst {
				return fmt.Errorf("%w: MAKE_FUNCTION at %d in %q not preceded by a code constant load", ErrStructural, i, code.Name)
			}
			c, err := constAt(code, code.Instructions[i-2].Arg)
			if err != nil {
				return err
			}
			if c.Kind != ConstCode {
				return fmt.Errorf("%w: MAKE_FUNCTION operand in %q is not a code object", ErrStructural, code.Name)
			}
			if i >= 3 && code.Instructions[i-3].Op == OpLoadBuildClass {
				classCodes[c.Code] = true
			} else {
				funcCodes[c.Code] = true
			}

		case OpLoadConst, OpLoadBuildClass, OpOther:
			// No name tracking.
		}
	}
	return nil
}

func constAt(code *CodeObject, index int) (Const, error) {
	if index < 0 || index >= len(code.Consts) {
		return Const{}, fmt.Errorf("%w: constant index %d out of range in %q", ErrStructural, index, code.Name)
	}
	return code.Consts[index], nil
}

func nameAt(code *CodeObject, index int) (string, error) {
	if index < 0 || index >= len(code.Names) {
		return "", fmt.Errorf("%w: name index %d out of range in %q", ErrStructural, index, code.Name)
	}
	return code.Names[index], nil
}
