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
package pysrc

import (
	"fmt"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"bennypowers.dev/moduli/importinfo"
)

// ExtractImports parses Python source and extracts all import statements
// with their function/conditional/try context.
func ExtractImports(content []byte) ([]importinfo.ImportInfo, error) {
	qm, err := GetQueryManager()
	if err != nil {
		return nil, err
	}

	parser := getParser()
	defer putParser(parser)

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse content")
	}
	defer tree.Close()

	query, err := qm.Query("imports")
	if err != nil {
		return nil, err
	}

	cursor := ts.NewQueryCursor()
	defer cursor.Close()

	var imports []importinfo.ImportInfo
	matches := cursor.Matches(query, tree.RootNode(), content)

	for {
		match := matches.Next()
		if match == nil {
			break
		}

		for _, capture := range match.Captures {
			node := capture.Node
			inFunction, inConditional, inTry := statementContext(&node)

			switch node.Kind() {
			case "import_statement":
				imports = append(imports, plainImports(&node, content, inFunction, inConditional, inTry)...)
			case "import_from_statement":
				imports = append(imports, fromImport(&node, content, inFunction, inConditional, inTry))
			case "future_import_statement":
				imports = append(imports, futureImport(&node, content, inFunction, inConditional, inTry))
			}
		}
	}

	return imports, nil
}

// ExtractGlobals parses Python source and returns the set of names bound
// at module level by assignments and function/class definitions.
func ExtractGlobals(content []byte) (map[string]bool, error) {
	qm, err := GetQueryManager()
	if err != nil {
		return nil, err
	}

	parser := getParser()
	defer putParser(parser)

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse content")
	}
	defer tree.Close()

	query, err := qm.Query("globals")
	if err != nil {
		return nil, err
	}

	cursor := ts.NewQueryCursor()
	defer cursor.Close()

	globals := make(map[string]bool)
	matches := cursor.Matches(query, tree.RootNode(), content)

	for {
		match := matches.Next()
		if match == nil {
			break
		}
		for _, capture := range match.Captures {
			globals[capture.Node.Utf8Text(content)] = true
		}
	}

	return globals, nil
}

// statementContext walks the ancestor chain of an import statement to
// classify its execution context. Imports in the finally clause of a try
// statement always run, so they do not count as try-guarded.
func statementContext(node *ts.Node) (inFunction, inConditional, inTry bool) {
	prev := node
	for parent := node.Parent(); parent != nil; prev, parent = parent, parent.Parent() {
		switch parent.Kind() {
		case "function_definition":
			inFunction = true
		case "if_statement":
			inConditional = true
		case "try_statement":
			if prev.Kind() != "finally_clause" {
				inTry = true
			}
		}
	}
	return inFunction, inConditional, inTry
}

// plainImports handles "import a.b, c as d": one record per imported name.
func plainImports(node *ts.Node, content []byte, inFunction, inConditional, inTry bool) []importinfo.ImportInfo {
	var imports []importinfo.ImportInfo
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		switch child.Kind() {
		case "dotted_name":
			imports = append(imports,
				importinfo.New(child.Utf8Text(content), nil, 0, inFunction, inConditional, inTry))
		case "aliased_import":
			name := child.ChildByFieldName("name")
			alias := child.ChildByFieldName("alias")
			info := importinfo.New(name.Utf8Text(content), nil, 0, inFunction, inConditional, inTry)
			if alias != nil {
				info.AsName = alias.Utf8Text(content)
			}
			imports = append(imports, info)
		}
	}
	return imports
}

// fromImport handles "from [.]*mod import x, y as z, *".
func fromImport(node *ts.Node, content []byte, inFunction, inConditional, inTry bool) importinfo.ImportInfo {
	module := ""
	level := 0

	moduleNode := node.ChildByFieldName("module_name")
	if moduleNode != nil {
		text := moduleNode.Utf8Text(content)
		if moduleNode.Kind() == "relative_import" {
			trimmed := strings.TrimLeft(text, ".")
			level = len(text) - len(trimmed)
			module = trimmed
		} else {
			module = text
		}
	}

	var fromlist []string
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if moduleNode != nil && child.Id() == moduleNode.Id() {
			continue
		}
		switch child.Kind() {
		case "dotted_name":
			fromlist = append(fromlist, child.Utf8Text(content))
		case "aliased_import":
			if name := child.ChildByFieldName("name"); name != nil {
				fromlist = append(fromlist, name.Utf8Text(content))
			}
		case "wildcard_import":
			fromlist = append(fromlist, "*")
		}
	}

	return importinfo.New(module, fromlist, level, inFunction, inConditional, inTry)
}

// futureImport handles "from __future__ import ...", which has its own
// node kind in the grammar.
func futureImport(node *ts.Node, content []byte, inFunction, inConditional, inTry bool) importinfo.ImportInfo {
	var fromlist []string
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		switch child.Kind() {
		case "dotted_name":
			fromlist = append(fromlist, child.Utf8Text(content))
		case "aliased_import":
			if name := child.ChildByFieldName("name"); name != nil {
				fromlist = append(fromlist, name.Utf8Text(content))
			}
		}
	}
	return importinfo.New("__future__", fromlist, 0, inFunction, inConditional, inTry)
}
