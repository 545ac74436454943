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

// Package export renders dependency graphs for human consumption:
// Graphviz dot, a standalone HTML page and JSON.
package export

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"bennypowers.dev/moduli/graph"
)

// Dot writes the graph in Graphviz dot syntax. The callbacks supply
// node and edge attributes; either may be nil. Attribute maps are
// written in key order so output is stable.
func Dot[N graph.Node, E any](
	w io.Writer,
	g *graph.Graph[N, E],
	nodeAttrs func(node N) map[string]string,
	edgeAttrs func(edge graph.Edge[N, E]) map[string]string,
) error {
	if _, err := fmt.Fprintln(w, "digraph modules {"); err != nil {
		return err
	}

	var ids []string
	byID := make(map[string]N)
	for node := range g.Nodes() {
		ids = append(ids, node.Identifier())
		byID[node.Identifier()] = node
	}
	sort.Strings(ids)

	for _, id := range ids {
		attrs := map[string]string{}
		if nodeAttrs != nil {
			attrs = nodeAttrs(byID[id])
		}
		if _, err := fmt.Fprintf(w, "\t%s%s\n", quote(id), attrList(attrs)); err != nil {
			return err
		}
	}

	var lines []string
	for edge := range g.Edges() {
		attrs := map[string]string{}
		if edgeAttrs != nil {
			attrs = edgeAttrs(edge)
		}
		lines = append(lines, fmt.Sprintf("\t%s -> %s%s",
			quote(edge.Source.Identifier()),
			quote(edge.Destination.Identifier()),
			attrList(attrs)))
	}
	sort.Strings(lines)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(w, "}")
	return err
}

// attrList renders a dot attribute list, or nothing for an empty map.
func attrList(attrs map[string]string) string {
	if len(attrs) == 0 {
		return ""
	}
	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, key := range keys {
		parts[i] = fmt.Sprintf("%s=%s", key, quote(attrs[key]))
	}
	return " [" + strings.Join(parts, ", ") + "]"
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
