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

package export

import (
	"encoding/json"
	"io"
	"sort"

	"bennypowers.dev/moduli/graph"
	"bennypowers.dev/moduli/importinfo"
	"bennypowers.dev/moduli/trace"
)

type jsonModule struct {
	Name         string   `json:"name"`
	Kind         string   `json:"kind"`
	File         string   `json:"file,omitempty"`
	Distribution string   `json:"distribution,omitempty"`
	Root         bool     `json:"root,omitempty"`
	SearchPath   []string `json:"searchPath,omitempty"`
}

type jsonEdge struct {
	From       string `json:"from"`
	To         string `json:"to"`
	Optional   bool   `json:"optional"`
	Global     bool   `json:"global"`
	InFromlist bool   `json:"inFromlist"`
	ImportedAs string `json:"importedAs,omitempty"`
}

type jsonGraph struct {
	Modules []jsonModule `json:"modules"`
	Edges   []jsonEdge   `json:"edges"`
}

// JSON writes the reachable part of the graph as a JSON document with
// sorted module and edge lists.
func JSON(w io.Writer, g *graph.Graph[*trace.Module, importinfo.DependencyInfo]) error {
	roots := make(map[string]bool)
	for root := range g.Roots() {
		roots[root.Identifier()] = true
	}

	doc := jsonGraph{Modules: []jsonModule{}, Edges: []jsonEdge{}}
	reachable := make(map[string]bool)
	for m := range g.IterGraph() {
		reachable[m.Identifier()] = true
		doc.Modules = append(doc.Modules, jsonModule{
			Name:         m.Name,
			Kind:         m.Kind.String(),
			File:         m.Filename,
			Distribution: distLabel(m),
			Root:         roots[m.Identifier()],
			SearchPath:   m.SearchPath,
		})
	}
	sort.Slice(doc.Modules, func(i, j int) bool {
		return doc.Modules[i].Name < doc.Modules[j].Name
	})

	for edge := range g.Edges() {
		if !reachable[edge.Source.Identifier()] {
			continue
		}
		doc.Edges = append(doc.Edges, jsonEdge{
			From:       edge.Source.Name,
			To:         edge.Destination.Name,
			Optional:   edge.Attribute.Optional,
			Global:     edge.Attribute.Global,
			InFromlist: edge.Attribute.InFromlist,
			ImportedAs: edge.Attribute.ImportedAs,
		})
	}
	sort.Slice(doc.Edges, func(i, j int) bool {
		if doc.Edges[i].From != doc.Edges[j].From {
			return doc.Edges[i].From < doc.Edges[j].From
		}
		return doc.Edges[i].To < doc.Edges[j].To
	})

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
