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
	"fmt"
	"io"
	"sort"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"bennypowers.dev/moduli/graph"
	"bennypowers.dev/moduli/importinfo"
	"bennypowers.dev/moduli/trace"
)

const pageStyle = `
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.3em 0.8em; text-align: left; }
th { background: #eee; }
td.missing { color: #c00; }
`

// HTML writes a standalone page listing every module reachable from the
// graph roots, with its kind, file, providing distribution and direct
// dependencies.
func HTML(w io.Writer, g *graph.Graph[*trace.Module, importinfo.DependencyInfo], title string) error {
	var modules []*trace.Module
	for node := range g.IterGraph() {
		modules = append(modules, node)
	}
	sort.Slice(modules, func(i, j int) bool {
		return modules[i].Name < modules[j].Name
	})

	tbody := element(atom.Tbody)
	for _, m := range modules {
		row := element(atom.Tr)
		row.AppendChild(cell(m.Kind.String(), m.Kind == trace.KindMissing))
		row.AppendChild(cell(m.Name, false))
		row.AppendChild(cell(m.Filename, false))
		row.AppendChild(cell(distLabel(m), false))
		row.AppendChild(cell(dependencyList(g, m), false))
		tbody.AppendChild(row)
	}

	head := element(atom.Thead)
	headRow := element(atom.Tr)
	for _, label := range []string{"Class", "Name", "File", "Distribution", "Imports"} {
		th := element(atom.Th)
		th.AppendChild(text(label))
		headRow.AppendChild(th)
	}
	head.AppendChild(headRow)

	table := element(atom.Table)
	table.AppendChild(head)
	table.AppendChild(tbody)

	page := buildPage(title, table)
	return html.Render(w, page)
}

// buildPage wraps body content in a full document with title and style.
func buildPage(title string, body ...*html.Node) *html.Node {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := element(atom.Html)
	doc.AppendChild(root)

	headEl := element(atom.Head)
	titleEl := element(atom.Title)
	titleEl.AppendChild(text(title))
	headEl.AppendChild(titleEl)
	styleEl := element(atom.Style)
	styleEl.AppendChild(text(pageStyle))
	headEl.AppendChild(styleEl)
	root.AppendChild(headEl)

	bodyEl := element(atom.Body)
	h1 := element(atom.H1)
	h1.AppendChild(text(title))
	bodyEl.AppendChild(h1)
	for _, node := range body {
		bodyEl.AppendChild(node)
	}
	root.AppendChild(bodyEl)

	return doc
}

func dependencyList(g *graph.Graph[*trace.Module, importinfo.DependencyInfo], m *trace.Module) string {
	var names []string
	for _, dep := range g.Outgoing(m.Identifier()) {
		names = append(names, dep.Name)
	}
	sort.Strings(names)

	var out string
	for i, name := range names {
		if i > 0 {
			out += ", "
		}
		out += name
	}
	return out
}

func distLabel(m *trace.Module) string {
	if m.Distribution == nil {
		return ""
	}
	return fmt.Sprintf("%s %s", m.Distribution.Name, m.Distribution.Version)
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func cell(content string, missing bool) *html.Node {
	td := element(atom.Td)
	if missing {
		td.Attr = append(td.Attr, html.Attribute{Key: "class", Val: "missing"})
	}
	td.AppendChild(text(content))
	return td
}
