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
package trace

import "bennypowers.dev/moduli/dist"

// Kind classifies a module graph node.
type Kind uint8

const (
	// KindSource is a module loaded from a .py file.
	KindSource Kind = iota
	// KindBytecode is a compiled-only module (.pyc without source).
	KindBytecode
	// KindPackage is a regular package with an __init__.py.
	KindPackage
	// KindNamespace is an implicit namespace package.
	KindNamespace
	// KindExtension is a native extension module.
	KindExtension
	// KindScript is a top-level script added as a graph root.
	KindScript
	// KindMissing is an imported name no search path entry provides.
	KindMissing
	// KindExcluded is a name the caller asked to leave out of the
	// bundle; its own dependencies are not traced.
	KindExcluded
)

func (k Kind) String() string {
	switch k {
	case KindSource:
		return "Source"
	case KindBytecode:
		return "Bytecode"
	case KindPackage:
		return "Package"
	case KindNamespace:
		return "Namespace"
	case KindExtension:
		return "Extension"
	case KindScript:
		return "Script"
	case KindMissing:
		return "Missing"
	case KindExcluded:
		return "Excluded"
	}
	return "Unknown"
}

// Module is one node in the dependency graph: a module, package or
// script. Scripts are identified by their file path, everything else by
// its fully qualified module name.
type Module struct {
	Name     string
	Kind     Kind
	Filename string

	// SearchPath is the sub-module search path of (namespace) packages.
	SearchPath []string

	// Distribution is the installed distribution providing the module,
	// when one claims its file.
	Distribution *dist.Distribution

	// GlobalsWritten and GlobalsRead describe the module's own global
	// namespace usage, as reported by the source or bytecode scanner.
	GlobalsWritten map[string]bool
	GlobalsRead    map[string]bool
}

// Identifier implements graph.Node.
func (m *Module) Identifier() string { return m.Name }
