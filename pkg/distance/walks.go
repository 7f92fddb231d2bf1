package distance

import (
	"container/heap"

	"github.com/matzehuels/distindex/pkg/snarl"
)

// A walk alternates between node edges and link edges: after crossing a
// node it leaves over a link, and after a link it crosses the node it
// entered. A state is a side vertex together with the kind of edge the walk
// arrived over, numbered 2v+k.
type state int32

const (
	viaNode int32 = 0 // next step is a link
	viaLink int32 = 1 // next step crosses the node
)

func at(v, k int32) state { return state(2*v + k) }

func (s state) vertex() int32 { return int32(s) / 2 }

func (s state) kind() int32 { return int32(s) % 2 }

// reverse maps a state onto the reversed walk: a walk from a to b is, read
// backwards, a walk of the same length from b.reverse() to a.reverse().
func (s state) reverse() state { return s ^ 1 }

// Walks holds walk lengths between the states at the ports of a structure,
// indexed by 2*port+kind, with Unreachable for pairs no known walk joins.
// Tip chains use the first two rows and columns only.
type Walks [4][4]int64

func noWalks() Walks {
	var w Walks
	for i := range w {
		for j := range w[i] {
			w[i][j] = Unreachable
		}
		w[i][i] = 0
	}
	return w
}

func (w *Walks) close() {
	for k := range 4 {
		for i := range 4 {
			for j := range 4 {
				w[i][j] = min(w[i][j], add(w[i][k], w[k][j]))
			}
		}
	}
}

func portAt(s *snarl.Structure, i int) state { return at(s.Ports[i/2], int32(i%2)) }

func portOf(s *snarl.Structure, st state) (int, bool) {
	for i, p := range s.Ports {
		if p == st.vertex() {
			return 2*i + int(st.kind()), true
		}
	}
	return 0, false
}

// arrive returns the kind a walk moving up a chain reaches boundary k with,
// as forced by the bridge before it, or -1 after a snarl or at the start.
func (tb *tables) arrive(s *snarl.Structure, k int) int32 {
	if k == 0 || s.Links[k-1].IsSnarl() {
		return -1
	}
	if tb.tree.Sides().Edges[s.Links[k-1].Edge].Node {
		return viaNode
	}
	return viaLink
}

// depart returns the kind a walk needs at boundary k to cross the bridge
// after it, or -1 before a snarl or at the end.
func (tb *tables) depart(s *snarl.Structure, k int) int32 {
	if k == len(s.Links) || s.Links[k].IsSnarl() {
		return -1
	}
	if tb.tree.Sides().Edges[s.Links[k].Edge].Node {
		return viaLink
	}
	return viaNode
}

// through returns the kind a walk moving up a chain passes boundary k with.
// ok is false when the links on both sides of k are link edges, which no
// walk can take in a row.
func (tb *tables) through(s *snarl.Structure, k int) (int32, bool) {
	a, d := tb.arrive(s, k), tb.depart(s, k)
	switch {
	case a < 0:
		return d, d >= 0
	case d < 0:
		return a, true
	}
	return a, a == d
}

// step returns the walk length across link k of a chain, from kind a at
// boundary k to kind b at boundary k+1.
func (tb *tables) step(s *snarl.Structure, k int, a, b int32) int64 {
	l := s.Links[k]
	if l.IsSnarl() {
		return tb.snarls[l.Snarl].Walks[a][2+b]
	}
	e := tb.tree.Sides().Edges[l.Edge]
	if e.Node && a == viaLink && b == viaNode || !e.Node && a == viaNode && b == viaLink {
		return e.W
	}
	return Unreachable
}

// fillWalks sets the prefix sums of a chain table. The first and last link
// are left out: a walk may cross them in any state, so queries read them
// with step.
func (tb *tables) fillWalks(s *snarl.Structure, c *ChainTable) {
	m := len(s.Links)
	c.Walk = make([]int64, m+1)
	c.Blocked = make([]int32, m+1)
	for l := range m {
		w, bad := int64(0), false
		if l >= 1 && l <= m-2 {
			a, ok := tb.through(s, l)
			b, _ := tb.through(s, l+1)
			w = tb.step(s, l, a, b)
			if !ok || w == Unreachable {
				w, bad = 0, true
			}
		}
		c.Walk[l+1] = add(c.Walk[l], w)
		c.Blocked[l+1] = c.Blocked[l]
		if bad {
			c.Blocked[l+1]++
		}
	}
}

// ahead returns the length of a walk up a chain from kind a at boundary i
// to kind b at boundary j > i that never turns around.
func (tb *tables) ahead(id snarl.ID, i int, a int32, j int, b int32) int64 {
	s := tb.tree.At(id)
	if j == i+1 {
		return tb.step(s, i, a, b)
	}
	c := tb.chains[id]
	first, _ := tb.through(s, i+1)
	last, ok := tb.through(s, j-1)
	if !ok || first < 0 || last < 0 || c.Blocked[j-1] != c.Blocked[i+1] {
		return Unreachable
	}
	d := add(tb.step(s, i, a, first), sub(c.Walk[j-1], c.Walk[i+1]))
	return add(d, tb.step(s, j-1, last, b))
}

// chainWalk returns the length of a walk between two boundary states
// inside a chain. Walks down the chain are walks up it read backwards.
func (tb *tables) chainWalk(id snarl.ID, from, to state) int64 {
	c := tb.chains[id]
	i, ok := c.Position(from.vertex())
	if !ok {
		return Unreachable
	}
	j, ok := c.Position(to.vertex())
	if !ok {
		return Unreachable
	}
	switch {
	case i < j:
		return tb.ahead(id, i, from.kind(), j, to.kind())
	case i > j:
		return tb.ahead(id, j, to.reverse().kind(), i, from.reverse().kind())
	case from == to:
		return 0
	}
	s := tb.tree.At(id)
	if i+1 < len(s.Boundaries) && s.Boundaries[i+1] == s.Boundaries[i] {
		return tb.step(s, i, from.kind(), to.kind())
	}
	return Unreachable
}

// snarlWalks computes the walks between the port states of a snarl: through
// its branch chains and direct edges for a regular snarl, by search over its
// edges for a complex one.
func (tb *tables) snarlWalks(id snarl.ID) Walks {
	s := tb.tree.At(id)
	if s.IsComplex() {
		w := noWalks()
		for i := range 4 {
			dist := tb.routes(s, portAt(s, i))
			for j := range 4 {
				if d, ok := dist[portAt(s, j)]; ok {
					w[i][j] = d
				}
			}
		}
		return w
	}

	w := noWalks()
	for _, c := range s.Children {
		if tb.tree.At(c).Role != snarl.RoleBranch {
			continue
		}
		for i := range 4 {
			for j := range 4 {
				w[i][j] = min(w[i][j], tb.chainWalk(c, portAt(s, i), portAt(s, j)))
			}
		}
	}
	sides := tb.tree.Sides()
	for _, ei := range s.Direct {
		e := sides.Edges[ei]
		u, _ := portOf(s, at(e.U, 0))
		v, _ := portOf(s, at(e.V, 0))
		if e.Node {
			w[u+1][v] = min(w[u+1][v], e.W)
			w[v+1][u] = min(w[v+1][u], e.W)
		} else {
			w[u][v+1] = min(w[u][v+1], e.W)
			w[v][u+1] = min(w[v][u+1], e.W)
		}
	}
	w.close()
	return w
}

// routes runs Dijkstra from one state over the walks that stay on the edges
// of a complex snarl, turning around at the loops on its sides.
func (tb *tables) routes(s *snarl.Structure, from state) map[state]int64 {
	sides := tb.tree.Sides()
	edges := make(map[int32]bool, len(s.Direct))
	for _, e := range s.Direct {
		edges[e] = true
	}
	verts := make(map[int32]bool, len(s.Vertices))
	for _, v := range s.Vertices {
		verts[v] = true
	}

	dist := map[state]int64{from: 0}
	q := &vertexQueue{{v: int32(from)}}
	for q.Len() > 0 {
		it := heap.Pop(q).(queued)
		st := state(it.v)
		if it.d > dist[st] {
			continue
		}
		relax := func(t state, w int64) {
			d := add(it.d, w)
			if old, ok := dist[t]; !ok || d < old {
				dist[t] = d
				heap.Push(q, queued{v: int32(t), d: d})
			}
		}
		v := st.vertex()
		if st.kind() == viaLink {
			if n := v / 2; edges[n] {
				relax(at(snarl.Flip(v), viaNode), sides.Edges[n].W)
			}
			continue
		}
		for _, ei := range sides.Adj[v] {
			if e := sides.Edges[ei]; !e.Node && edges[ei] {
				relax(at(e.Other(v), viaLink), e.W)
			}
		}
		if sides.Loops[v] && verts[v] {
			relax(at(v, viaLink), 0)
		}
	}
	return dist
}

// walkWithin returns the length of a walk between two states of a
// structure's domain that stays inside its subtree.
func (tb *tables) walkWithin(id snarl.ID, a, b state) int64 {
	if a == b {
		return 0
	}
	s := tb.tree.At(id)
	if s.Kind == snarl.KindChain {
		return tb.chainWalk(id, a, b)
	}
	i, ok := portOf(s, a)
	j, ok2 := portOf(s, b)
	if ok && ok2 {
		return tb.snarls[id].Walks[i][j]
	}
	if !s.IsComplex() {
		return Unreachable
	}
	if d, ok := tb.routes(s, a)[b]; ok {
		return d
	}
	return Unreachable
}

// toPorts returns the walks inside a structure from a to each port state.
func (tb *tables) toPorts(id snarl.ID, a state) [4]int64 {
	s := tb.tree.At(id)
	out := [4]int64{Unreachable, Unreachable, Unreachable, Unreachable}
	if _, ok := portOf(s, a); !ok && s.IsComplex() {
		dist := tb.routes(s, a)
		for i := range 2 * len(s.Ports) {
			if d, ok := dist[portAt(s, i)]; ok {
				out[i] = d
			}
		}
		return out
	}
	for i := range 2 * len(s.Ports) {
		out[i] = tb.walkWithin(id, a, portAt(s, i))
	}
	return out
}

func (tb *tables) outside(id snarl.ID) *Walks {
	if c := tb.chains[id]; c != nil {
		return &c.Outside
	}
	return &tb.snarls[id].Outside
}

// walkGlobal returns the length of a walk between two states of a
// structure's domain anywhere in the graph: inside the subtree, or out
// through a port state and back in through another.
func (tb *tables) walkGlobal(id snarl.ID, a, b state) int64 {
	best := tb.walkWithin(id, a, b)
	s := tb.tree.At(id)
	if len(s.Ports) == 0 {
		return best
	}
	from, to := tb.toPorts(id, a), tb.toPorts(id, b.reverse())
	out := tb.outside(id)
	n := 2 * len(s.Ports)
	for i := range n {
		if from[i] == Unreachable {
			continue
		}
		for j := range n {
			best = min(best, add(add(from[i], out[i][j]), to[j^1]))
		}
	}
	return best
}

// buildOutside fills the whole-graph walks between the port states of every
// structure, parents first.
func (tb *tables) buildOutside(ord []snarl.ID) {
	for _, id := range ord {
		s := tb.tree.At(id)
		out := tb.outside(id)
		*out = noWalks()
		n := 2 * len(s.Ports)
		for i := range n {
			for j := range n {
				if i != j {
					out[i][j] = tb.walkGlobal(s.Parent, portAt(s, i), portAt(s, j))
				}
			}
		}
	}
}
