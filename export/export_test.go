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
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"bennypowers.dev/moduli/graph"
	"bennypowers.dev/moduli/importinfo"
	"bennypowers.dev/moduli/internal/mapfs"
	"bennypowers.dev/moduli/trace"
)

func tracedGraph(t *testing.T) *graph.Graph[*trace.Module, importinfo.DependencyInfo] {
	t.Helper()
	mfs := mapfs.New()
	mfs.AddFile("proj/app.py", "import helpers\nimport nonexistent\n", 0644)
	mfs.AddFile("proj/helpers.py", "", 0644)

	tracer := trace.NewTracer(mfs, []string{"proj"})
	if _, err := tracer.AddScript("proj/app.py"); err != nil {
		t.Fatalf("AddScript: %v", err)
	}
	return tracer.Graph()
}

func TestDot(t *testing.T) {
	g := tracedGraph(t)

	var buf bytes.Buffer
	err := Dot(&buf, g,
		func(m *trace.Module) map[string]string {
			return map[string]string{"label": m.Name}
		},
		func(edge graph.Edge[*trace.Module, importinfo.DependencyInfo]) map[string]string {
			return nil
		})
	if err != nil {
		t.Fatalf("Dot: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "digraph modules {") || !strings.HasSuffix(strings.TrimSpace(out), "}") {
		t.Errorf("Expected digraph wrapper, got:\n%s", out)
	}
	for _, want := range []string{
		`"helpers" [label="helpers"]`,
		`"proj/app.py" -> "helpers"`,
		`"proj/app.py" -> "nonexistent"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}

func TestDotStable(t *testing.T) {
	g := tracedGraph(t)

	render := func() string {
		var buf bytes.Buffer
		if err := Dot(&buf, g, nil, nil); err != nil {
			t.Fatalf("Dot: %v", err)
		}
		return buf.String()
	}
	if render() != render() {
		t.Error("Dot output must be deterministic")
	}
}

func TestJSON(t *testing.T) {
	g := tracedGraph(t)

	var buf bytes.Buffer
	if err := JSON(&buf, g); err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var doc struct {
		Modules []struct {
			Name string `json:"name"`
			Kind string `json:"kind"`
			Root bool   `json:"root"`
		} `json:"modules"`
		Edges []struct {
			From string `json:"from"`
			To   string `json:"to"`
		} `json:"edges"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("Output is not valid JSON: %v\n%s", err, buf.String())
	}

	if len(doc.Modules) != 3 {
		t.Fatalf("Expected 3 modules, got %d", len(doc.Modules))
	}
	byName := make(map[string]string)
	for _, m := range doc.Modules {
		byName[m.Name] = m.Kind
		if m.Name == "proj/app.py" && !m.Root {
			t.Error("Expected script to be marked root")
		}
	}
	if byName["nonexistent"] != "Missing" {
		t.Errorf("Expected missing kind, got %q", byName["nonexistent"])
	}
	if len(doc.Edges) != 2 {
		t.Errorf("Expected 2 edges, got %v", doc.Edges)
	}
}

func TestHTML(t *testing.T) {
	g := tracedGraph(t)

	var buf bytes.Buffer
	if err := HTML(&buf, g, "Test graph"); err != nil {
		t.Fatalf("HTML: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>Test graph</title>",
		"<td>helpers</td>",
		`<td class="missing">Missing</td>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}
