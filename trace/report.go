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

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
)

// Report writes a plain-text table of every node reachable from the
// graph roots, sorted by name.
func (t *Tracer) Report(w io.Writer) error {
	var modules []*Module
	for node := range t.graph.IterGraph() {
		modules = append(modules, node)
	}
	sort.Slice(modules, func(i, j int) bool {
		return modules[i].Name < modules[j].Name
	})

	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "Class\tName\tFile")
	fmt.Fprintln(tw, "-----\t----\t----")
	for _, m := range modules {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", m.Kind, m.Name, m.Filename)
	}
	return tw.Flush()
}
