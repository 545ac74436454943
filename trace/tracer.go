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

// Package trace builds Python module dependency graphs. Starting from
// scripts or module names, it scans each discovered module for imports,
// resolves them against a search path, and records one graph node per
// module with one attributed edge per import relationship.
package trace

import (
	"fmt"
	"strings"

	"bennypowers.dev/moduli/bytecode"
	"bennypowers.dev/moduli/dist"
	"bennypowers.dev/moduli/fs"
	"bennypowers.dev/moduli/graph"
	"bennypowers.dev/moduli/importinfo"
	"bennypowers.dev/moduli/pysrc"
	"bennypowers.dev/moduli/resolve"
	"bennypowers.dev/moduli/venv"
)

// CodeLoader supplies a decoded code object for a compiled-only module.
// Decoding the on-disk bytecode format is outside this package; without
// a loader, .pyc modules become leaf nodes with unknown imports.
type CodeLoader func(filename string) (*bytecode.CodeObject, error)

// queuedImport is one pending import statement awaiting resolution.
type queuedImport struct {
	from *Module
	info importinfo.ImportInfo
}

// starLink records "from pkg import *" so the package's globals can be
// propagated into the importer once tracing settles.
type starLink struct {
	from *Module
	pkg  *Module
}

// Tracer builds a module dependency graph from script and module
// entrypoints. All mutation is single-threaded; trace entrypoints
// serially and share the finished graph read-only.
type Tracer struct {
	fsys       fs.FileSystem
	finder     *resolve.Finder
	searchPath []string

	graph      *graph.Graph[*Module, importinfo.DependencyInfo]
	dists      *dist.Cache
	env        *venv.Environment
	excludes   map[string]bool
	codeLoader CodeLoader

	workQ     []queuedImport
	starLinks []starLink

	// Errors collects non-fatal problems encountered during tracing:
	// unparsable sources, unloadable bytecode, unresolvable relative
	// imports.
	Errors []error
}

// NewTracer creates a Tracer resolving imports against the given search
// path.
func NewTracer(fsys fs.FileSystem, searchPath []string) *Tracer {
	return &Tracer{
		fsys:       fsys,
		finder:     resolve.NewFinder(fsys, searchPath),
		searchPath: searchPath,
		graph:      graph.New[*Module, importinfo.DependencyInfo](),
		dists:      dist.NewCache(fsys),
		excludes:   make(map[string]bool),
	}
}

// WithExcludes marks module names whose dependencies should not be
// traced; they appear in the graph as Excluded nodes.
func (t *Tracer) WithExcludes(names ...string) *Tracer {
	for _, name := range names {
		t.excludes[name] = true
	}
	return t
}

// WithCodeLoader supplies a decoder for compiled-only modules.
func (t *Tracer) WithCodeLoader(loader CodeLoader) *Tracer {
	t.codeLoader = loader
	return t
}

// WithVirtualEnv canonicalizes node file paths through the given
// environment, so stdlib modules are keyed by their base-interpreter
// location.
func (t *Tracer) WithVirtualEnv(env *venv.Environment) *Tracer {
	t.env = env
	return t
}

// Graph returns the dependency graph built so far.
func (t *Tracer) Graph() *graph.Graph[*Module, importinfo.DependencyInfo] {
	return t.graph
}

// AddScript adds a top-level script as a graph root and traces its
// imports.
func (t *Tracer) AddScript(path string) (*Module, error) {
	content, err := t.fsys.ReadFile(path)
	if err != nil {
		return nil, err
	}

	imports, err := pysrc.ExtractImports(content)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	globals, err := pysrc.ExtractGlobals(content)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	node := &Module{
		Name:           path,
		Kind:           KindScript,
		Filename:       t.adjustPath(path),
		GlobalsWritten: globals,
		GlobalsRead:    make(map[string]bool),
	}
	if err := t.graph.AddNode(node); err != nil {
		return nil, err
	}
	if err := t.graph.AddRoot(node.Identifier()); err != nil {
		return nil, err
	}

	t.enqueue(node, imports)
	t.runQueue()
	t.propagateStars()
	return node, nil
}

// AddModule adds a module by name as a graph root and traces its
// imports.
func (t *Tracer) AddModule(name string) (*Module, error) {
	node := t.findOrLoad(name)
	if err := t.graph.AddRoot(node.Identifier()); err != nil {
		return nil, err
	}
	t.runQueue()
	t.propagateStars()
	return node, nil
}

func (t *Tracer) enqueue(from *Module, imports []importinfo.ImportInfo) {
	for _, info := range imports {
		t.workQ = append(t.workQ, queuedImport{from: from, info: info})
	}
}

// runQueue drains the pending-import queue. Processing an import may
// load further modules and enqueue their imports in turn.
func (t *Tracer) runQueue() {
	for len(t.workQ) > 0 {
		item := t.workQ[0]
		t.workQ = t.workQ[1:]
		t.processImport(item.from, item.info)
	}
}

// propagateStars unions package globals into star importers until a
// fixpoint, covering chains of star imports between packages.
func (t *Tracer) propagateStars() {
	for changed := true; changed; {
		changed = false
		for _, link := range t.starLinks {
			for name := range link.pkg.GlobalsWritten {
				if !link.from.GlobalsWritten[name] {
					link.from.GlobalsWritten[name] = true
					changed = true
				}
			}
		}
	}
}

// findOrLoad returns the node for an absolute module name, loading and
// scanning it on first sight.
func (t *Tracer) findOrLoad(name string) *Module {
	if node, ok := t.graph.FindNode(name); ok {
		return node
	}
	if t.excludes[name] {
		return t.addBare(name, KindExcluded)
	}
	return t.loadLocated(t.finder.Locate(name))
}

// addBare inserts a node that carries nothing but a name and kind.
func (t *Tracer) addBare(name string, kind Kind) *Module {
	node := &Module{
		Name:           name,
		Kind:           kind,
		GlobalsWritten: make(map[string]bool),
		GlobalsRead:    make(map[string]bool),
	}
	// The name was just checked absent; insertion cannot fail.
	_ = t.graph.AddNode(node)
	return node
}

// loadLocated turns a finder result into a graph node and enqueues the
// module's imports.
func (t *Tracer) loadLocated(located *resolve.Located) *Module {
	node := &Module{
		Name:           located.Name,
		SearchPath:     located.SearchPath,
		Filename:       t.adjustPath(located.Filename),
		GlobalsWritten: make(map[string]bool),
		GlobalsRead:    make(map[string]bool),
	}

	var imports []importinfo.ImportInfo

	switch located.Kind {
	case resolve.KindMissing:
		node.Kind = KindMissing

	case resolve.KindSource, resolve.KindPackage:
		node.Kind = KindSource
		if located.Kind == resolve.KindPackage {
			node.Kind = KindPackage
		}
		content, err := t.fsys.ReadFile(located.Filename)
		if err != nil {
			t.Errors = append(t.Errors, fmt.Errorf("reading %s: %w", located.Filename, err))
			break
		}
		imports, err = pysrc.ExtractImports(content)
		if err != nil {
			t.Errors = append(t.Errors, fmt.Errorf("parsing %s: %w", located.Filename, err))
			break
		}
		globals, err := pysrc.ExtractGlobals(content)
		if err != nil {
			t.Errors = append(t.Errors, fmt.Errorf("parsing %s: %w", located.Filename, err))
			break
		}
		node.GlobalsWritten = globals

	case resolve.KindBytecode:
		node.Kind = KindBytecode
		if t.codeLoader == nil {
			t.Errors = append(t.Errors, fmt.Errorf("no code loader for compiled module %s", located.Filename))
			break
		}
		code, err := t.codeLoader(located.Filename)
		if err != nil {
			t.Errors = append(t.Errors, fmt.Errorf("loading %s: %w", located.Filename, err))
			break
		}
		analysis, err := bytecode.Extract(code)
		if err != nil {
			t.Errors = append(t.Errors, fmt.Errorf("scanning %s: %w", located.Filename, err))
			break
		}
		imports = analysis.Imports
		node.GlobalsWritten = analysis.GlobalsWritten
		node.GlobalsRead = analysis.GlobalsRead

	case resolve.KindExtension:
		node.Kind = KindExtension

	case resolve.KindNamespace:
		node.Kind = KindNamespace
	}

	if node.Filename != "" {
		node.Distribution = t.dists.ForFile(node.Filename, t.searchPath)
	}

	_ = t.graph.AddNode(node)
	t.enqueue(node, imports)
	return node
}

// processImport resolves one import statement and records its edges.
func (t *Tracer) processImport(from *Module, info importinfo.ImportInfo) {
	name := info.Module
	if info.Level > 0 {
		absolute, err := t.absoluteName(from, info)
		if err != nil {
			t.Errors = append(t.Errors, err)
			return
		}
		name = absolute
	}

	node, ok := t.graph.FindNode(name)
	if !ok {
		parent := t.importContainingPackage(name)
		if parent != nil && parent.Kind == KindMissing {
			// A missing ancestor makes the whole name missing; the
			// finder need not be consulted again.
			node = t.addBare(name, KindMissing)
		} else {
			node = t.findOrLoad(name)
		}
		if parent != nil {
			t.addEdge(node, parent, importinfo.DependencyInfo{Global: true})
		}
	}

	t.addEdge(from, node, importinfo.FromImport(info, false, info.AsName))

	for nm := range info.Names {
		if node.Kind != KindPackage && node.Kind != KindNamespace {
			// Not a package: "from node import nm" can only name a
			// global, never a submodule.
			continue
		}
		sub := t.findOrLoad(name + "." + nm)
		if sub.Kind == KindMissing && node.GlobalsWritten[nm] {
			// The name exists as a package global; don't link the
			// importer to a missing pseudo-module.
			continue
		}
		t.addEdge(sub, node, importinfo.DependencyInfo{Global: true})
		t.addEdge(from, sub, importinfo.FromImport(info, true, ""))
	}

	if info.Star && node.Kind == KindPackage {
		t.starLinks = append(t.starLinks, starLink{from: from, pkg: node})
	}
}

// importContainingPackage ensures the containing package of a module
// name is in the graph, loading ancestors outermost-first and linking
// each package to its parent.
func (t *Tracer) importContainingPackage(name string) *Module {
	pkgName, _ := splitPackage(name)
	if pkgName == "" {
		return nil
	}

	if node, ok := t.graph.FindNode(pkgName); ok {
		return node
	}

	parent := t.importContainingPackage(pkgName)

	var node *Module
	if parent != nil && parent.Kind == KindMissing {
		node = t.addBare(pkgName, KindMissing)
	} else {
		node = t.findOrLoad(pkgName)
	}
	if parent != nil {
		t.addEdge(node, parent, importinfo.DependencyInfo{Global: true})
	}
	return node
}

// absoluteName resolves a relative import against the importing module's
// package context.
func (t *Tracer) absoluteName(from *Module, info importinfo.ImportInfo) (string, error) {
	var pkg string
	switch from.Kind {
	case KindPackage, KindNamespace:
		pkg = from.Name
	default:
		pkg, _ = splitPackage(from.Name)
	}
	if pkg == "" {
		return "", fmt.Errorf("relative import outside a package in %s", from.Name)
	}

	// Level 1 is the containing package itself; each further level
	// climbs one package out.
	for hop := 1; hop < info.Level; hop++ {
		pkg, _ = splitPackage(pkg)
		if pkg == "" {
			return "", fmt.Errorf("relative import beyond top-level package in %s", from.Name)
		}
	}

	if info.Module == "" {
		return pkg, nil
	}
	return pkg + "." + info.Module, nil
}

// addEdge records a dependency edge, merging attributes when several
// import statements link the same pair.
func (t *Tracer) addEdge(from, to *Module, attr importinfo.DependencyInfo) {
	err := t.graph.AddEdge(from.Identifier(), to.Identifier(), attr, importinfo.MergeDependencyInfo)
	if err != nil {
		// Both endpoints were just inserted; an error here is a bug.
		t.Errors = append(t.Errors, err)
	}
}

// splitPackage splits a fully qualified module name into its containing
// package and final component. The package is empty for top-level names.
func splitPackage(name string) (pkg, base string) {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return "", name
	}
	return name[:idx], name[idx+1:]
}

func (t *Tracer) adjustPath(path string) string {
	if path == "" {
		return path
	}
	return t.env.AdjustPath(t.fsys, path)
}
