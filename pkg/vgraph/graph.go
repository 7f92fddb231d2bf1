package vgraph

import (
	"errors"
	"maps"
	"slices"
)

var (
	// ErrDuplicateNode is returned by [Graph.AddNode] when the node already exists.
	ErrDuplicateNode = errors.New("duplicate node")

	// ErrUnknownNode is returned by [Graph.AddEdge] when either side refers to
	// a node that has not been added.
	ErrUnknownNode = errors.New("unknown node")

	// ErrInvalidLength is returned by [Graph.AddNode] for negative lengths.
	ErrInvalidLength = errors.New("node length must not be negative")
)

// Graph is an in-memory bidirected graph implementing [Adapter].
//
// The zero value is not usable; use [New]. Graph is not safe for concurrent
// mutation, but once fully built it may be read from any number of goroutines.
type Graph struct {
	lengths map[NodeID]int64
	links   map[Side][]Side
	edges   int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		lengths: make(map[NodeID]int64),
		links:   make(map[Side][]Side),
	}
}

// AddNode adds a node with the given sequence length.
func (g *Graph) AddNode(id NodeID, length int64) error {
	if length < 0 {
		return ErrInvalidLength
	}
	if _, ok := g.lengths[id]; ok {
		return ErrDuplicateNode
	}
	g.lengths[id] = length
	return nil
}

// AddEdge joins two sides. The edge is visible from both of them, so
// AddEdge(a, b) and AddEdge(b, a) describe the same edge. Adding an edge that
// already exists is a no-op.
func (g *Graph) AddEdge(a, b Side) error {
	if _, ok := g.lengths[a.Node]; !ok {
		return ErrUnknownNode
	}
	if _, ok := g.lengths[b.Node]; !ok {
		return ErrUnknownNode
	}
	if slices.Contains(g.links[a], b) {
		return nil
	}
	g.links[a] = append(g.links[a], b)
	if a != b {
		g.links[b] = append(g.links[b], a)
	}
	g.edges++
	return nil
}

// Link is shorthand for the common forward edge from the tail of from to the
// head of to.
func (g *Graph) Link(from, to NodeID) error {
	return g.AddEdge(Side{Node: from, End: Tail}, Side{Node: to, End: Head})
}

// HasNode reports whether id names a node.
func (g *Graph) HasNode(id NodeID) bool {
	_, ok := g.lengths[id]
	return ok
}

// Length returns the sequence length of a node, or 0 if it does not exist.
func (g *Graph) Length(id NodeID) int64 { return g.lengths[id] }

// FollowEdges returns the sides joined to s, sorted.
func (g *Graph) FollowEdges(s Side) []Side {
	out := slices.Clone(g.links[s])
	slices.SortFunc(out, compareSides)
	return out
}

// Nodes returns every node identifier in ascending order.
func (g *Graph) Nodes() []NodeID {
	return slices.Sorted(maps.Keys(g.lengths))
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.lengths) }

// EdgeCount returns the number of distinct edges.
func (g *Graph) EdgeCount() int { return g.edges }

// Edges returns every edge once, as (a, b) pairs with a not greater than b,
// in sorted order.
func (g *Graph) Edges() [][2]Side {
	return CollectEdges(g)
}

// CollectEdges lists the edges of any adapter once each, normalised so the
// smaller side comes first, sorted.
func CollectEdges(a Adapter) [][2]Side {
	seen := make(map[[2]Side]struct{})
	var out [][2]Side
	for _, id := range a.Nodes() {
		for _, end := range []End{Head, Tail} {
			s := Side{Node: id, End: end}
			for _, t := range a.FollowEdges(s) {
				e := [2]Side{s, t}
				if t.Less(s) {
					e = [2]Side{t, s}
				}
				if _, ok := seen[e]; ok {
					continue
				}
				seen[e] = struct{}{}
				out = append(out, e)
			}
		}
	}
	slices.SortFunc(out, func(x, y [2]Side) int {
		if c := compareSides(x[0], y[0]); c != 0 {
			return c
		}
		return compareSides(x[1], y[1])
	})
	return out
}

func compareSides(a, b Side) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	}
	return 0
}

var _ Adapter = (*Graph)(nil)
