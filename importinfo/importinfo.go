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

// Package importinfo describes import statements found by the bytecode
// and source scanners, and the dependency metadata recorded on graph edges.
package importinfo

// ImportInfo describes a single import statement found in a module or script.
type ImportInfo struct {
	// Module is the name being imported: "a.b" for both
	// "import a.b" and "from a.b import c".
	Module string

	// Level is the number of leading dots of a relative import;
	// 0 for absolute imports.
	Level int

	// Names holds the explicit names of a "from Module import ..."
	// statement. Empty for plain imports. Never contains "*";
	// a star import is flagged via Star instead.
	Names map[string]bool

	// AsName is the rename of an "import Module as AsName" clause,
	// empty when there is no "as" clause.
	AsName string

	// Star reports "from Module import *".
	Star bool

	// InFunction reports an import inside a function body. Such an
	// import may never execute, or execute many times, unlike a
	// module- or class-body import which runs exactly once at load time.
	InFunction bool

	// InConditional reports an import inside either branch of an
	// if statement. Only the source scanner can detect this.
	InConditional bool

	// InTry reports an import inside the try or except blocks of a
	// try statement. Only the source scanner can detect this.
	InTry bool
}

// New creates an ImportInfo from the raw parts of an import statement.
// A nil fromlist corresponds to a plain "import module"; a "*" entry in
// fromlist is stripped and recorded as a star import.
func New(module string, fromlist []string, level int, inFunction, inConditional, inTry bool) ImportInfo {
	info := ImportInfo{
		Module:        module,
		Level:         level,
		Names:         make(map[string]bool, len(fromlist)),
		InFunction:    inFunction,
		InConditional: inConditional,
		InTry:         inTry,
	}
	for _, name := range fromlist {
		if name == "*" {
			info.Star = true
			continue
		}
		info.Names[name] = true
	}
	return info
}

// Optional reports whether the import might not execute at module load
// time: it sits inside a function, a conditional, or a try block.
func (i ImportInfo) Optional() bool {
	return i.InFunction || i.InConditional || i.InTry
}

// Global reports whether the import affects the set of global names in
// the importing module.
func (i ImportInfo) Global() bool {
	return !i.InFunction
}

// DependencyInfo is the attribute stored on a dependency-graph edge
// between an importing module and its target.
type DependencyInfo struct {
	// Optional is true when every import statement contributing to
	// this edge might not execute at load time.
	Optional bool

	// Global is true when at least one contributing import affects
	// the importing module's global namespace.
	Global bool

	// InFromlist is true when the target was named in the fromlist
	// of a "from ... import ..." statement.
	InFromlist bool

	// ImportedAs is the rename from an "as" clause, empty when none.
	ImportedAs string
}

// FromImport creates the DependencyInfo for one import statement.
func FromImport(info ImportInfo, inFromlist bool, importedAs string) DependencyInfo {
	return DependencyInfo{
		Optional:   info.Optional(),
		Global:     info.Global(),
		InFromlist: inFromlist,
		ImportedAs: importedAs,
	}
}

// MergeDependencyInfo combines the attributes of two import statements
// between the same pair of modules into one edge attribute. The edge is
// optional only if every contributing import is optional; the remaining
// flags accumulate.
func MergeDependencyInfo(a, b DependencyInfo) DependencyInfo {
	merged := DependencyInfo{
		Optional:   a.Optional && b.Optional,
		Global:     a.Global || b.Global,
		InFromlist: a.InFromlist || b.InFromlist,
		ImportedAs: a.ImportedAs,
	}
	if merged.ImportedAs == "" {
		merged.ImportedAs = b.ImportedAs
	}
	return merged
}
