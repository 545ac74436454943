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

// Package resolve locates Python modules on a search path. It mirrors
// the import system's file-based lookup: regular packages before plain
// modules, namespace package portions collected across every path entry.
package resolve

import (
	"path/filepath"
	"strings"

	"bennypowers.dev/moduli/fs"
)

// Kind classifies what the finder located for a module name.
type Kind uint8

const (
	// KindMissing means no path entry provides the module.
	KindMissing Kind = iota
	// KindSource is a plain .py module.
	KindSource
	// KindBytecode is a compiled-only .pyc module with no source next to it.
	KindBytecode
	// KindExtension is a native extension module (.so, .pyd).
	KindExtension
	// KindPackage is a directory with an __init__.py.
	KindPackage
	// KindNamespace is one or more bare directories forming an
	// implicit namespace package.
	KindNamespace
)

func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindSource:
		return "source"
	case KindBytecode:
		return "bytecode"
	case KindExtension:
		return "extension"
	case KindPackage:
		return "package"
	case KindNamespace:
		return "namespace"
	}
	return "unknown"
}

// extensionSuffixes are the file suffixes of native extension modules.
var extensionSuffixes = []string{".so", ".pyd"}

// Located describes where a module name resolved to.
type Located struct {
	// Name is the fully qualified module name that was looked up.
	Name string

	Kind Kind

	// Filename is the module file, or the __init__.py of a regular
	// package. Empty for namespace packages and missing modules.
	Filename string

	// SearchPath is the sub-module search path of a package or
	// namespace package; nil otherwise.
	SearchPath []string
}

// Finder locates modules by dotted name relative to a search path.
type Finder struct {
	fsys fs.FileSystem
	path []string
}

// NewFinder creates a Finder over the given search path entries.
func NewFinder(fsys fs.FileSystem, path []string) *Finder {
	return &Finder{fsys: fsys, path: path}
}

// Locate resolves a fully qualified, absolute module name. Each dotted
// component is looked up in the search path of its parent; a missing
// intermediate component makes the whole name missing.
func (f *Finder) Locate(name string) *Located {
	searchPath := f.path
	var located *Located

	parts := strings.Split(name, ".")
	for i, part := range parts {
		qualified := strings.Join(parts[:i+1], ".")
		located = f.locateSegment(searchPath, qualified, part)
		if located.Kind == KindMissing {
			return &Located{Name: name, Kind: KindMissing}
		}
		if i < len(parts)-1 {
			// Only packages can contain sub-modules.
			if located.SearchPath == nil {
				return &Located{Name: name, Kind: KindMissing}
			}
			searchPath = located.SearchPath
		}
	}
	return located
}

// locateSegment looks up one name component in a search path.
func (f *Finder) locateSegment(searchPath []string, qualified, segment string) *Located {
	var namespaceDirs []string

	for _, entry := range searchPath {
		dir := filepath.Join(entry, segment)
		if initFile := filepath.Join(dir, "__init__.py"); f.fsys.Exists(initFile) {
			return &Located{
				Name:       qualified,
				Kind:       KindPackage,
				Filename:   initFile,
				SearchPath: []string{dir},
			}
		}

		if source := filepath.Join(entry, segment+".py"); f.fsys.Exists(source) {
			return &Located{Name: qualified, Kind: KindSource, Filename: source}
		}

		for _, suffix := range extensionSuffixes {
			if ext := filepath.Join(entry, segment+suffix); f.fsys.Exists(ext) {
				return &Located{Name: qualified, Kind: KindExtension, Filename: ext}
			}
		}

		if compiled := filepath.Join(entry, segment+".pyc"); f.fsys.Exists(compiled) {
			return &Located{Name: qualified, Kind: KindBytecode, Filename: compiled}
		}

		// A bare directory is a namespace package portion; portions
		// from every path entry merge into one search path.
		if fs.IsDir(f.fsys, dir) {
			namespaceDirs = append(namespaceDirs, dir)
		}
	}

	if len(namespaceDirs) > 0 {
		return &Located{
			Name:       qualified,
			Kind:       KindNamespace,
			SearchPath: namespaceDirs,
		}
	}

	return &Located{Name: qualified, Kind: KindMissing}
}
