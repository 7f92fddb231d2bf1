package distance

import (
	"github.com/matzehuels/distindex/pkg/snarl"
)

// ChainTable holds prefix sums along a chain.
//
// Offsets[k] is the span from the first boundary to boundary k in the side
// graph, in the direction of increasing chain index. The side graph
// distance inside the chain between boundaries i <= j is Offsets[j] -
// Offsets[i]; walking against the chain negates the difference, not the
// distance. These spans bound walk lengths from below.
//
// Walk[k] sums the walk lengths across links 1 to k-1 in the states the
// bridges next to each boundary force, and Blocked[k] counts the links in
// that range no walk can pass. A walk down the chain is a walk up the chain
// read backwards, so the same sums serve both directions.
type ChainTable struct {
	Offsets []Span  `json:"offsets"`
	Walk    []int64 `json:"walk"`
	Blocked []int32 `json:"blocked"`

	// Ports is the whole-graph span between the two ports of a branch
	// chain. It is unused for root and tip chains.
	Ports Span `json:"ports"`
	// Outside holds the whole-graph walks between the port states of a
	// branch or tip chain.
	Outside Walks `json:"outside"`

	index map[int32]int32
}

func (c *ChainTable) reindex(s *snarl.Structure) {
	c.index = make(map[int32]int32, len(s.Boundaries))
	for k, v := range s.Boundaries {
		if _, ok := c.index[v]; !ok {
			c.index[v] = int32(k)
		}
	}
}

// Position returns the index of a boundary side vertex on the chain.
func (c *ChainTable) Position(v int32) (int, bool) {
	k, ok := c.index[v]
	return int(k), ok
}

// Length is the span from the first to the last boundary.
func (c *ChainTable) Length() Span { return c.Offsets[len(c.Offsets)-1] }

// Within returns the span between boundaries i and j inside the chain.
func (c *ChainTable) Within(i, j int) Span {
	if i > j {
		i, j = j, i
	}
	a, b := c.Offsets[i], c.Offsets[j]
	return Span{Lo: sub(b.Lo, a.Lo), Hi: sub(b.Hi, a.Hi)}
}

// SnarlTable is the distance matrix over the two boundaries of a snarl.
// Entries between a boundary and itself are zero and not stored.
type SnarlTable struct {
	// Within is the entry to exit span inside the snarl.
	Within Span `json:"within"`
	// Global is the entry to exit span over the whole graph.
	Global Span `json:"global"`
	// Bound caps every distance between two sides inside the snarl.
	Bound int64 `json:"bound"`
	// Routed marks complex snarls, whose side graph entries come from Bound
	// only.
	Routed bool `json:"routed,omitempty"`

	// Walks holds the walks between the port states inside the snarl, and
	// Outside those over the whole graph.
	Walks   Walks `json:"walks"`
	Outside Walks `json:"outside"`
}

// tables holds one table per structure of the tree, aligned by ID.
type tables struct {
	tree   *snarl.Tree
	chains []*ChainTable
	snarls []*SnarlTable
}

// snarlBound is the Bound Table entry of a snarl: every simple path inside
// it uses each edge at most once and at most size-1 edges.
func snarlBound(s *snarl.Structure) int64 {
	if s.Size <= 1 {
		return 0
	}
	hi := s.Weight
	if s.Heaviest > 0 && s.Heaviest <= (Unreachable-1)/int64(s.Size-1) {
		hi = min(hi, s.Heaviest*int64(s.Size-1))
	}
	return hi
}

// order returns structure ids with every parent before its children.
func order(t *snarl.Tree) []snarl.ID {
	out := make([]snarl.ID, 0, t.Len())
	out = append(out, t.Roots...)
	for i := 0; i < len(out); i++ {
		out = append(out, t.Children(out[i])...)
	}
	return out
}

func newTables(t *snarl.Tree) *tables {
	return &tables{
		tree:   t,
		chains: make([]*ChainTable, t.Len()),
		snarls: make([]*SnarlTable, t.Len()),
	}
}

// buildWithin fills the spans inside every structure, children first.
func (tb *tables) buildWithin(ord []snarl.ID) {
	sides := tb.tree.Sides()
	for i := len(ord) - 1; i >= 0; i-- {
		id := ord[i]
		s := tb.tree.At(id)
		if s.Kind == snarl.KindChain {
			c := &ChainTable{Offsets: make([]Span, len(s.Boundaries))}
			for k, l := range s.Links {
				var step Span
				if l.IsSnarl() {
					step = tb.snarls[l.Snarl].Within
				} else {
					step = Exactly(sides.Edges[l.Edge].W)
				}
				c.Offsets[k+1] = c.Offsets[k].Add(step)
			}
			c.reindex(s)
			tb.fillWalks(s, c)
			tb.chains[id] = c
			continue
		}

		st := &SnarlTable{Bound: snarlBound(s), Routed: s.IsComplex()}
		switch {
		case st.Routed && s.Ports[0] == s.Ports[1]:
			st.Within = Exactly(0)
		case st.Routed:
			st.Within = Bounded(st.Bound)
		default:
			st.Within = Never
			for _, e := range s.Direct {
				st.Within = st.Within.Min(Exactly(sides.Edges[e].W))
			}
			for _, c := range s.Children {
				if tb.tree.At(c).Role == snarl.RoleBranch {
					st.Within = st.Within.Min(tb.chains[c].Length())
				}
			}
		}
		tb.snarls[id] = st
		st.Walks = tb.snarlWalks(id)
	}
}

// buildGlobal fills the whole-graph spans between the ports of every
// structure, parents first.
func (tb *tables) buildGlobal(ord []snarl.ID) {
	for _, id := range ord {
		s := tb.tree.At(id)
		if len(s.Ports) < 2 {
			continue
		}
		g := tb.global(s.Parent, s.Ports[0], s.Ports[1])
		if s.Kind == snarl.KindChain {
			tb.chains[id].Ports = g
		} else {
			tb.snarls[id].Global = g
		}
	}
}

// within returns the span between two sides of a structure's domain inside
// its subtree.
func (tb *tables) within(id snarl.ID, a, b int32) Span {
	if a == b {
		return Exactly(0)
	}
	s := tb.tree.At(id)
	if s.Kind == snarl.KindChain {
		c := tb.chains[id]
		i, _ := c.Position(a)
		j, _ := c.Position(b)
		return c.Within(i, j)
	}
	st := tb.snarls[id]
	if st.Routed {
		return Bounded(st.Bound)
	}
	return st.Within
}

// global returns the whole-graph span between two sides of a structure's
// domain: either stay inside the subtree, or leave through one port and
// come back through the other.
func (tb *tables) global(id snarl.ID, a, b int32) Span {
	best := tb.within(id, a, b)
	s := tb.tree.At(id)
	if len(s.Ports) < 2 {
		return best
	}
	e, x := s.Ports[0], s.Ports[1]
	var outside Span
	if s.Kind == snarl.KindChain {
		outside = tb.chains[id].Ports
	} else {
		outside = tb.snarls[id].Global
	}
	best = best.Min(tb.within(id, a, e).Add(outside).Add(tb.within(id, x, b)))
	best = best.Min(tb.within(id, a, x).Add(outside).Add(tb.within(id, e, b)))
	return best
}
