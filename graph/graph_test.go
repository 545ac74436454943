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
package graph

import (
	"errors"
	"slices"
	"testing"
)

type node string

func (n node) Identifier() string { return string(n) }

func build(t *testing.T, nodes []string, edges [][2]string) *Graph[node, int] {
	t.Helper()
	g := New[node, int]()
	for _, n := range nodes {
		if err := g.AddNode(node(n)); err != nil {
			t.Fatalf("AddNode(%s): %v", n, err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(e[0], e[1], 1, nil); err != nil {
			t.Fatalf("AddEdge(%s, %s): %v", e[0], e[1], err)
		}
	}
	return g
}

func collect(seq func(func(node) bool)) []string {
	var out []string
	seq(func(n node) bool {
		out = append(out, string(n))
		return true
	})
	return out
}

func TestAddNodeDuplicate(t *testing.T) {
	g := build(t, []string{"a"}, nil)
	err := g.AddNode(node("a"))
	if !errors.Is(err, ErrDuplicateNode) {
		t.Fatalf("Expected ErrDuplicateNode, got %v", err)
	}
}

func TestAddRootMissingNode(t *testing.T) {
	g := New[node, int]()
	if err := g.AddRoot("ghost"); !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("Expected ErrNodeNotFound, got %v", err)
	}
}

func TestAddRootIdempotent(t *testing.T) {
	g := build(t, []string{"a"}, nil)
	if err := g.AddRoot("a"); err != nil {
		t.Fatal(err)
	}
	if err := g.AddRoot("a"); err != nil {
		t.Fatal(err)
	}
	if got := collect(g.Roots()); len(got) != 1 {
		t.Fatalf("Expected one root, got %v", got)
	}
}

func TestAddEdgeMissingEndpoints(t *testing.T) {
	g := build(t, []string{"a"}, nil)
	if err := g.AddEdge("ghost", "a", 1, nil); !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("Expected ErrNodeNotFound for missing source, got %v", err)
	}
	if err := g.AddEdge("a", "ghost", 1, nil); !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("Expected ErrNodeNotFound for missing destination, got %v", err)
	}
}

func TestAddEdgeDuplicateWithoutMerge(t *testing.T) {
	g := build(t, []string{"a", "b"}, [][2]string{{"a", "b"}})
	err := g.AddEdge("a", "b", 2, nil)
	if !errors.Is(err, ErrDuplicateEdge) {
		t.Fatalf("Expected ErrDuplicateEdge, got %v", err)
	}
	// The original attribute survives the rejected insert.
	attr, err := g.EdgeData("a", "b")
	if err != nil || attr != 1 {
		t.Fatalf("Expected attribute 1, got %d (%v)", attr, err)
	}
}

func TestAddEdgeMerge(t *testing.T) {
	g := build(t, []string{"a", "b"}, [][2]string{{"a", "b"}})
	sum := func(existing, incoming int) int { return existing + incoming }
	if err := g.AddEdge("a", "b", 10, sum); err != nil {
		t.Fatal(err)
	}
	attr, err := g.EdgeData("a", "b")
	if err != nil || attr != 11 {
		t.Fatalf("Expected merged attribute 11, got %d (%v)", attr, err)
	}
	if g.EdgeCount() != 1 {
		t.Errorf("Merge must not add an edge, count is %d", g.EdgeCount())
	}
}

func TestEdgeDataErrors(t *testing.T) {
	g := build(t, []string{"a", "b"}, nil)
	if _, err := g.EdgeData("ghost", "b"); !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("Expected ErrNodeNotFound, got %v", err)
	}
	if _, err := g.EdgeData("a", "b"); !errors.Is(err, ErrNoSuchEdge) {
		t.Fatalf("Expected ErrNoSuchEdge, got %v", err)
	}
}

func TestEdgesAreDirected(t *testing.T) {
	g := build(t, []string{"a", "b"}, [][2]string{{"a", "b"}})
	if _, err := g.EdgeData("b", "a"); !errors.Is(err, ErrNoSuchEdge) {
		t.Fatalf("Reverse direction should not exist, got %v", err)
	}
}

func TestSelfLoop(t *testing.T) {
	g := build(t, []string{"a"}, [][2]string{{"a", "a"}})
	if err := g.AddRoot("a"); err != nil {
		t.Fatal(err)
	}
	got := collect(g.IterGraph())
	if !slices.Equal(got, []string{"a"}) {
		t.Fatalf("Expected [a], got %v", got)
	}
}

func TestOutgoingPermissive(t *testing.T) {
	g := build(t, []string{"a", "b"}, [][2]string{{"a", "b"}})

	// A missing node yields an empty sequence, same as a node without
	// edges.
	for range g.Outgoing("ghost") {
		t.Fatal("Expected no edges for missing node")
	}
	for range g.Incoming("ghost") {
		t.Fatal("Expected no edges for missing node")
	}
	for range g.Outgoing("b") {
		t.Fatal("Expected no outgoing edges on b")
	}

	var targets []string
	for _, dest := range g.Outgoing("a") {
		targets = append(targets, string(dest))
	}
	if !slices.Equal(targets, []string{"b"}) {
		t.Fatalf("Expected outgoing [b], got %v", targets)
	}

	var sources []string
	for _, src := range g.Incoming("b") {
		sources = append(sources, string(src))
	}
	if !slices.Equal(sources, []string{"a"}) {
		t.Fatalf("Expected incoming [a], got %v", sources)
	}
}

func TestIterGraphReachability(t *testing.T) {
	g := build(t,
		[]string{"a", "b", "c", "orphan"},
		[][2]string{{"a", "b"}, {"b", "c"}})
	if err := g.AddRoot("a"); err != nil {
		t.Fatal(err)
	}

	got := collect(g.IterGraph())
	if !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Fatalf("Expected [a b c], got %v", got)
	}
}

func TestIterGraphCycle(t *testing.T) {
	g := build(t,
		[]string{"a", "b", "c"},
		[][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}})
	if err := g.AddRoot("a"); err != nil {
		t.Fatal(err)
	}

	got := collect(g.IterGraph())
	if len(got) != 3 {
		t.Fatalf("Cycle must not repeat nodes, got %v", got)
	}
}

func TestIterGraphSharedVisited(t *testing.T) {
	// Two roots reaching the same node yield it once.
	g := build(t,
		[]string{"a", "b", "shared"},
		[][2]string{{"a", "shared"}, {"b", "shared"}})
	for _, root := range []string{"a", "b"} {
		if err := g.AddRoot(root); err != nil {
			t.Fatal(err)
		}
	}

	got := collect(g.IterGraph())
	if !slices.Equal(got, []string{"a", "shared", "b"}) {
		t.Fatalf("Expected [a shared b], got %v", got)
	}
}

func TestIterGraphRestartable(t *testing.T) {
	g := build(t, []string{"a", "b"}, [][2]string{{"a", "b"}})
	if err := g.AddRoot("a"); err != nil {
		t.Fatal(err)
	}

	seq := g.IterGraph()
	first := collect(seq)
	second := collect(seq)
	if !slices.Equal(first, second) {
		t.Fatalf("Restarted sequence differs: %v vs %v", first, second)
	}
}

func TestIterFrom(t *testing.T) {
	g := build(t,
		[]string{"a", "b", "c"},
		[][2]string{{"a", "b"}, {"b", "c"}})

	seq, err := g.IterFrom("b")
	if err != nil {
		t.Fatal(err)
	}
	got := collect(seq)
	if !slices.Equal(got, []string{"b", "c"}) {
		t.Fatalf("Expected [b c], got %v", got)
	}

	if _, err := g.IterFrom("ghost"); !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("Expected ErrNodeNotFound, got %v", err)
	}
}

func TestNodesAndCounts(t *testing.T) {
	g := build(t,
		[]string{"a", "b", "c"},
		[][2]string{{"a", "b"}})
	if g.NodeCount() != 3 {
		t.Errorf("Expected 3 nodes, got %d", g.NodeCount())
	}
	if g.EdgeCount() != 1 {
		t.Errorf("Expected 1 edge, got %d", g.EdgeCount())
	}

	if _, ok := g.FindNode("b"); !ok {
		t.Error("Expected to find node b")
	}
	if _, ok := g.FindNode("ghost"); ok {
		t.Error("Did not expect to find ghost")
	}

	got := collect(g.Nodes())
	if !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Fatalf("Expected insertion order [a b c], got %v", got)
	}
}

func TestEdgesSequence(t *testing.T) {
	g := build(t,
		[]string{"a", "b", "c"},
		[][2]string{{"a", "b"}, {"a", "c"}})

	var got []string
	for edge := range g.Edges() {
		got = append(got, string(edge.Source)+"->"+string(edge.Destination))
	}
	slices.Sort(got)
	if !slices.Equal(got, []string{"a->b", "a->c"}) {
		t.Fatalf("Expected edges a->b and a->c, got %v", got)
	}
}
