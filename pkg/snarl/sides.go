package snarl

import (
	"github.com/matzehuels/distindex/pkg/vgraph"
)

// Edge is an edge of the side graph. Node edges join the two sides of one
// node and weigh the node length; link edges come from graph edges and
// weigh nothing.
type Edge struct {
	U, V int32
	W    int64
	Node bool
}

// Other returns the endpoint of e that is not v.
func (e Edge) Other(v int32) int32 {
	if e.U == v {
		return e.V
	}
	return e.U
}

// SideGraph is the undirected weighted graph over node sides that the
// decomposition and all distance tables are defined on.
//
// Node i in ascending identifier order owns vertices 2i (head) and 2i+1
// (tail) and node edge i. Link edges follow, one per distinct pair of sides.
// Links joining a side to itself carry no distance; they are kept out of
// the edge list and only recorded in Loops, because walks can still use them
// to turn around.
type SideGraph struct {
	Nodes   []vgraph.NodeID
	Lengths []int64
	Edges   []Edge
	Adj     [][]int32
	Loops   []bool

	index map[vgraph.NodeID]int32
}

// NewSideGraph validates the adapter and builds its side graph. It fails
// with a [*MalformedGraphError] when an edge references an unknown node,
// when an edge is visible from only one of its sides, or when a node has a
// negative length.
func NewSideGraph(g vgraph.Adapter) (*SideGraph, error) {
	nodes := g.Nodes()
	sg := &SideGraph{
		Nodes:   nodes,
		Lengths: make([]int64, len(nodes)),
		Edges:   make([]Edge, 0, len(nodes)*2),
		Adj:     make([][]int32, 2*len(nodes)),
		Loops:   make([]bool, 2*len(nodes)),
		index:   make(map[vgraph.NodeID]int32, len(nodes)),
	}
	for i, id := range nodes {
		sg.index[id] = int32(i)
	}

	for i, id := range nodes {
		l := g.Length(id)
		if l < 0 {
			return nil, &MalformedGraphError{Node: id, Reason: "negative length"}
		}
		sg.Lengths[i] = l
		sg.addEdge(Edge{U: int32(2 * i), V: int32(2*i + 1), W: l, Node: true})
	}

	seen := make(map[[2]int32]struct{})
	for i, id := range nodes {
		for _, end := range []vgraph.End{vgraph.Head, vgraph.Tail} {
			s := vgraph.Side{Node: id, End: end}
			u := sideVertex(int32(i), end)
			for _, t := range g.FollowEdges(s) {
				if !g.HasNode(t.Node) {
					return nil, &MalformedGraphError{Node: id, Side: s, Target: t, Reason: "edge to unknown node"}
				}
				if !containsSide(g.FollowEdges(t), s) {
					return nil, &MalformedGraphError{Node: id, Side: s, Target: t, Reason: "edge not visible from both sides"}
				}
				v := sideVertex(sg.index[t.Node], t.End)
				if u == v {
					sg.Loops[u] = true
					continue
				}
				key := [2]int32{min(u, v), max(u, v)}
				if _, ok := seen[key]; ok {
					continue
				}
				seen[key] = struct{}{}
				sg.addEdge(Edge{U: key[0], V: key[1]})
			}
		}
	}
	return sg, nil
}

func (sg *SideGraph) addEdge(e Edge) {
	id := int32(len(sg.Edges))
	sg.Edges = append(sg.Edges, e)
	sg.Adj[e.U] = append(sg.Adj[e.U], id)
	if e.V != e.U {
		sg.Adj[e.V] = append(sg.Adj[e.V], id)
	}
}

func containsSide(sides []vgraph.Side, s vgraph.Side) bool {
	for _, t := range sides {
		if t == s {
			return true
		}
	}
	return false
}

func sideVertex(node int32, end vgraph.End) int32 {
	if end == vgraph.Tail {
		return 2*node + 1
	}
	return 2 * node
}

// VertexCount returns the number of sides.
func (sg *SideGraph) VertexCount() int { return len(sg.Adj) }

// NodeIndex returns the dense index of a node.
func (sg *SideGraph) NodeIndex(id vgraph.NodeID) (int32, bool) {
	i, ok := sg.index[id]
	return i, ok
}

// Vertex returns the vertex of a side, or -1 for unknown nodes.
func (sg *SideGraph) Vertex(s vgraph.Side) int32 {
	i, ok := sg.index[s.Node]
	if !ok {
		return -1
	}
	return sideVertex(i, s.End)
}

// Side returns the side a vertex stands for.
func (sg *SideGraph) Side(v int32) vgraph.Side {
	end := vgraph.Head
	if v&1 == 1 {
		end = vgraph.Tail
	}
	return vgraph.Side{Node: sg.Nodes[v/2], End: end}
}

// IsTip reports whether a side has no graph edges, so a walk leaving the
// node through it ends there.
func (sg *SideGraph) IsTip(v int32) bool { return len(sg.Adj[v]) == 1 && !sg.Loops[v] }

// Links returns the vertices a walk can enter after leaving a node through
// v, including v itself when it carries a loop.
func (sg *SideGraph) Links(v int32) []int32 {
	var out []int32
	for _, e := range sg.Adj[v] {
		if !sg.Edges[e].Node {
			out = append(out, sg.Edges[e].Other(v))
		}
	}
	if sg.Loops[v] {
		out = append(out, v)
	}
	return out
}

// Flip returns the other side of the same node.
func Flip(v int32) int32 { return v ^ 1 }
