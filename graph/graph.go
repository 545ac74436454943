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

// Package graph provides a generic directed graph over nodes that expose
// a stable identifier, with attributed edges, root marking and
// reachability traversal. The graph only grows; there is no removal.
package graph

import (
	"errors"
	"fmt"
	"iter"
)

var (
	ErrDuplicateNode = errors.New("node already exists")
	ErrDuplicateEdge = errors.New("edge already exists")
	ErrNodeNotFound  = errors.New("node not found")
	ErrNoSuchEdge    = errors.New("no such edge")
)

// Node is the capability required of graph nodes: a stable, unique
// identifier string. The graph never constructs nodes, only stores them.
type Node interface {
	Identifier() string
}

// Edge is one directed edge with its attribute, as yielded by Edges.
type Edge[N Node, E any] struct {
	Source      N
	Destination N
	Attribute   E
}

type edgeKey struct {
	from, to int
}

// Graph is a directed graph over nodes of type N with edge attributes of
// type E. Nodes are stored in a dense arena indexed by identifier; edges
// are keyed by ordered index pairs, at most one per pair. Self loops are
// permitted. Not safe for unsynchronized concurrent mutation.
type Graph[N Node, E any] struct {
	nodes []N
	index map[string]int

	roots   []int
	rootSet map[int]bool

	edges map[edgeKey]E
	out   map[int][]int
	in    map[int][]int
}

// New creates an empty graph.
func New[N Node, E any]() *Graph[N, E] {
	return &Graph[N, E]{
		index:   make(map[string]int),
		rootSet: make(map[int]bool),
		edges:   make(map[edgeKey]E),
		out:     make(map[int][]int),
		in:      make(map[int][]int),
	}
}

// AddNode inserts a node. It is an error to add a node whose identifier
// is already present.
func (g *Graph[N, E]) AddNode(node N) error {
	id := node.Identifier()
	if _, exists := g.index[id]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateNode, id)
	}
	g.index[id] = len(g.nodes)
	g.nodes = append(g.nodes, node)
	return nil
}

// AddRoot marks an existing node as a traversal entry point. Marking a
// root twice is a no-op.
func (g *Graph[N, E]) AddRoot(identifier string) error {
	idx, exists := g.index[identifier]
	if !exists {
		return fmt.Errorf("%w: cannot add root %q", ErrNodeNotFound, identifier)
	}
	if g.rootSet[idx] {
		return nil
	}
	g.rootSet[idx] = true
	g.roots = append(g.roots, idx)
	return nil
}

// AddEdge adds a directed edge between two existing nodes with an
// attribute. When an edge already exists between the pair, merge is
// called with the existing and new attributes to produce the stored
// value; without a merge function the duplicate is an error.
func (g *Graph[N, E]) AddEdge(source, destination string, attribute E, merge func(existing, incoming E) E) error {
	from, exists := g.index[source]
	if !exists {
		return fmt.Errorf("%w: edge source %q", ErrNodeNotFound, source)
	}
	to, exists := g.index[destination]
	if !exists {
		return fmt.Errorf("%w: edge destination %q", ErrNodeNotFound, destination)
	}

	key := edgeKey{from, to}
	existing, exists := g.edges[key]
	if !exists {
		g.edges[key] = attribute
		g.out[from] = append(g.out[from], to)
		g.in[to] = append(g.in[to], from)
		return nil
	}
	if merge == nil {
		return fmt.Errorf("%w: %q -> %q", ErrDuplicateEdge, source, destination)
	}
	g.edges[key] = merge(existing, attribute)
	return nil
}

// FindNode returns the node with the given identifier.
func (g *Graph[N, E]) FindNode(identifier string) (N, bool) {
	if idx, exists := g.index[identifier]; exists {
		return g.nodes[idx], true
	}
	var zero N
	return zero, false
}

// EdgeData returns the attribute of the edge between source and
// destination.
func (g *Graph[N, E]) EdgeData(source, destination string) (E, error) {
	var zero E
	from, exists := g.index[source]
	if !exists {
		return zero, fmt.Errorf("%w: edge source %q", ErrNodeNotFound, source)
	}
	to, exists := g.index[destination]
	if !exists {
		return zero, fmt.Errorf("%w: edge destination %q", ErrNodeNotFound, destination)
	}
	attribute, exists := g.edges[edgeKey{from, to}]
	if !exists {
		return zero, fmt.Errorf("%w: %q -> %q", ErrNoSuchEdge, source, destination)
	}
	return attribute, nil
}

// NodeCount returns the number of nodes.
func (g *Graph[N, E]) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph[N, E]) EdgeCount() int { return len(g.edges) }

// Roots yields the root nodes. The sequence is restartable; each range
// is a fresh traversal.
func (g *Graph[N, E]) Roots() iter.Seq[N] {
	return func(yield func(N) bool) {
		for _, idx := range g.roots {
			if !yield(g.nodes[idx]) {
				return
			}
		}
	}
}

// Nodes yields every node in insertion order.
func (g *Graph[N, E]) Nodes() iter.Seq[N] {
	return func(yield func(N) bool) {
		for _, node := range g.nodes {
			if !yield(node) {
				return
			}
		}
	}
}

// Edges yields every edge with its attribute, in unspecified order.
func (g *Graph[N, E]) Edges() iter.Seq[Edge[N, E]] {
	return func(yield func(Edge[N, E]) bool) {
		for key, attribute := range g.edges {
			edge := Edge[N, E]{
				Source:      g.nodes[key.from],
				Destination: g.nodes[key.to],
				Attribute:   attribute,
			}
			if !yield(edge) {
				return
			}
		}
	}
}

// Outgoing yields (attribute, destination) for every edge leaving the
// given node. A missing node yields an empty sequence rather than an
// error; "no node" and "no edges" are deliberately indistinguishable
// here.
func (g *Graph[N, E]) Outgoing(source string) iter.Seq2[E, N] {
	return func(yield func(E, N) bool) {
		from, exists := g.index[source]
		if !exists {
			return
		}
		for _, to := range g.out[from] {
			if !yield(g.edges[edgeKey{from, to}], g.nodes[to]) {
				return
			}
		}
	}
}

// Incoming yields (attribute, source) for every edge entering the given
// node, with the same permissive missing-node contract as Outgoing.
func (g *Graph[N, E]) Incoming(destination string) iter.Seq2[E, N] {
	return func(yield func(E, N) bool) {
		to, exists := g.index[destination]
		if !exists {
			return
		}
		for _, from := range g.in[to] {
			if !yield(g.edges[edgeKey{from, to}], g.nodes[from]) {
				return
			}
		}
	}
}

// IterGraph yields every node reachable from the graph roots,
// depth-first, each node at most once even when reachable from several
// roots or through cycles. A node is always yielded before the nodes
// discovered through its outgoing edges.
func (g *Graph[N, E]) IterGraph() iter.Seq[N] {
	return func(yield func(N) bool) {
		visited := make(map[int]bool, len(g.nodes))
		for _, root := range g.roots {
			if !g.iterFrom(root, visited, yield) {
				return
			}
		}
	}
}

// IterFrom yields every node reachable from the given start node,
// depth-first, with the same at-most-once guarantee as IterGraph.
func (g *Graph[N, E]) IterFrom(start string) (iter.Seq[N], error) {
	idx, exists := g.index[start]
	if !exists {
		return nil, fmt.Errorf("%w: start node %q", ErrNodeNotFound, start)
	}
	return func(yield func(N) bool) {
		visited := make(map[int]bool, len(g.nodes))
		g.iterFrom(idx, visited, yield)
	}, nil
}

// iterFrom runs an iterative depth-first walk from start, sharing the
// visited set with the caller. Returns false when the consumer stopped.
func (g *Graph[N, E]) iterFrom(start int, visited map[int]bool, yield func(N) bool) bool {
	if visited[start] {
		return true
	}
	stack := []int{start}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[current] {
			continue
		}
		visited[current] = true
		if !yield(g.nodes[current]) {
			return false
		}
		// Push in reverse so the first edge added is walked first.
		neighbors := g.out[current]
		for i := len(neighbors) - 1; i >= 0; i-- {
			if !visited[neighbors[i]] {
				stack = append(stack, neighbors[i])
			}
		}
	}
	return true
}
