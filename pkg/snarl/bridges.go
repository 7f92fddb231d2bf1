package snarl

import "slices"

// subgraph is a view of part of the side graph: a set of vertices and the
// edges among them that belong to one structure.
type subgraph struct {
	sg    *SideGraph
	verts []int32
	edges []int32
	pos   map[int32]int32
	adj   [][]int32 // local vertex -> local edge indices
}

func newSubgraph(sg *SideGraph, verts, edges []int32) *subgraph {
	verts = slices.Clone(verts)
	slices.Sort(verts)
	edges = slices.Clone(edges)
	slices.Sort(edges)

	s := &subgraph{
		sg:    sg,
		verts: verts,
		edges: edges,
		pos:   make(map[int32]int32, len(verts)),
		adj:   make([][]int32, len(verts)),
	}
	for i, v := range verts {
		s.pos[v] = int32(i)
	}
	for i, id := range edges {
		e := sg.Edges[id]
		u, v := s.pos[e.U], s.pos[e.V]
		s.adj[u] = append(s.adj[u], int32(i))
		s.adj[v] = append(s.adj[v], int32(i))
	}
	return s
}

func (s *subgraph) edge(i int32) Edge { return s.sg.Edges[s.edges[i]] }

// other returns the local index of the far endpoint of local edge i.
func (s *subgraph) other(i, v int32) int32 {
	return s.pos[s.edge(i).Other(s.verts[v])]
}

// bridges marks every local edge whose removal disconnects its endpoints.
// It runs an iterative low-link search keyed on edge identity, so parallel
// edges between the same two sides are never bridges.
func (s *subgraph) bridges() []bool {
	n := len(s.verts)
	disc := make([]int32, n)
	low := make([]int32, n)
	for i := range disc {
		disc[i] = -1
	}
	isBridge := make([]bool, len(s.edges))

	type frame struct {
		v      int32
		parent int32 // local edge used to reach v, -1 for roots
		next   int
	}
	var timer int32
	var stack []frame

	for root := range int32(n) {
		if disc[root] >= 0 {
			continue
		}
		disc[root], low[root] = timer, timer
		timer++
		stack = append(stack[:0], frame{v: root, parent: -1})

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next < len(s.adj[top.v]) {
				ei := s.adj[top.v][top.next]
				top.next++
				if ei == top.parent {
					continue
				}
				w := s.other(ei, top.v)
				if disc[w] < 0 {
					disc[w], low[w] = timer, timer
					timer++
					stack = append(stack, frame{v: w, parent: ei})
				} else {
					low[top.v] = min(low[top.v], disc[w])
				}
				continue
			}

			done := *top
			stack = stack[:len(stack)-1]
			if done.parent < 0 {
				continue
			}
			p := stack[len(stack)-1].v
			low[p] = min(low[p], low[done.v])
			if low[done.v] > disc[p] {
				isBridge[done.parent] = true
			}
		}
	}
	return isBridge
}

// components labels the connected components of the subgraph when the edges
// marked in skip are ignored. Labels are assigned in order of the smallest
// vertex of each component.
func (s *subgraph) components(skip []bool) ([]int32, int) {
	comp := make([]int32, len(s.verts))
	for i := range comp {
		comp[i] = -1
	}
	var count int32
	var queue []int32
	for start := range int32(len(s.verts)) {
		if comp[start] >= 0 {
			continue
		}
		comp[start] = count
		queue = append(queue[:0], start)
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			for _, ei := range s.adj[v] {
				if skip != nil && skip[ei] {
					continue
				}
				w := s.other(ei, v)
				if comp[w] < 0 {
					comp[w] = count
					queue = append(queue, w)
				}
			}
		}
		count++
	}
	return comp, int(count)
}

// bridgeTree is the tree obtained by contracting every 2-edge-connected
// component of a subgraph to a single node.
type bridgeTree struct {
	sub    *subgraph
	comp   []int32   // local vertex -> component
	verts  [][]int32 // component -> side graph vertices
	edges  [][]int32 // component -> side graph edges inside it
	adj    [][]treeEdge
	bridge []bool
}

// treeEdge is a bridge seen from one of the components it joins.
type treeEdge struct {
	edge int32 // side graph edge
	near int32 // side graph vertex in this component
	far  int32 // side graph vertex in the other component
	to   int32 // other component
}

func newBridgeTree(s *subgraph) *bridgeTree {
	isBridge := s.bridges()
	comp, count := s.components(isBridge)
	t := &bridgeTree{
		sub:    s,
		comp:   comp,
		verts:  make([][]int32, count),
		edges:  make([][]int32, count),
		adj:    make([][]treeEdge, count),
		bridge: isBridge,
	}
	for i, v := range s.verts {
		t.verts[comp[i]] = append(t.verts[comp[i]], v)
	}
	for i, id := range s.edges {
		e := s.sg.Edges[id]
		cu, cv := comp[s.pos[e.U]], comp[s.pos[e.V]]
		if !isBridge[i] {
			t.edges[cu] = append(t.edges[cu], id)
			continue
		}
		t.adj[cu] = append(t.adj[cu], treeEdge{edge: id, near: e.U, far: e.V, to: cv})
		t.adj[cv] = append(t.adj[cv], treeEdge{edge: id, near: e.V, far: e.U, to: cu})
	}
	return t
}

// compOf returns the component holding a side graph vertex.
func (t *bridgeTree) compOf(v int32) int32 { return t.comp[t.sub.pos[v]] }

// trivial reports whether a component is a single side with no internal
// edges.
func (t *bridgeTree) trivial(c int32) bool { return len(t.edges[c]) == 0 }
