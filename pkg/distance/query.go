package distance

import (
	"github.com/matzehuels/distindex/pkg/snarl"
	"github.com/matzehuels/distindex/pkg/vgraph"
)

// Distance returns the length of the shortest walk between two positions in
// either direction, or [Unreachable] when no walk joins them. When the index
// cannot pin the walk down it returns the upper end of [Index.Range]; see
// [Index.IsExact].
func (ix *Index) Distance(p, q vgraph.Position) int64 {
	return ix.Range(p, q).Hi
}

// IsExact reports whether [Index.Distance] returns the exact distance for a
// pair rather than an estimate.
func (ix *Index) IsExact(p, q vgraph.Position) bool {
	return ix.Range(p, q).Exact()
}

// DistanceToSide returns the span from a position to the point at a side of
// a node: offset 0 for the head, the full length for the tail.
func (ix *Index) DistanceToSide(p vgraph.Position, s vgraph.Side) Span {
	q := vgraph.Pos(s.Node, 0)
	if s.End == vgraph.Tail {
		q.Offset = ix.length(s.Node)
	}
	return ix.Range(p, q)
}

func (ix *Index) length(id vgraph.NodeID) int64 {
	i, ok := ix.sides.NodeIndex(id)
	if !ok {
		return 0
	}
	return ix.sides.Lengths[i]
}

// reached is a side graph span from the query position to one side.
type reached struct {
	v int32
	d Span
}

// walked is the length of a walk from the query position to one state.
type walked struct {
	s state
	d int64
}

// Range returns a span containing the length of the shortest walk between
// two positions, leaving p and reaching q in either direction. Positions on
// unknown nodes are unreachable from everything.
//
// Walks alternate between crossing a node and following a link, so two
// sides joined by links only, like the alleles of a bubble, are not joined
// by a walk. The lower end of the span is the side graph distance, which
// ignores that rule; the upper end is the shortest walk the tables know,
// or [Unreachable]. The two agree unless the walk crosses a complex snarl or
// has to turn around, and the span is then exact.
//
// The query walks from the owner of each node up to their lowest common
// ancestor. At every level it carries the spans from the position to the
// ports of the structure just left, and finally joins both sides through
// the whole-graph tables of the common ancestor.
func (ix *Index) Range(p, q vgraph.Position) Span {
	return ix.span(p, q, false)
}

// OrientedRange is [Index.Range] for walks that leave p along its strand and
// reach q travelling along q's strand. OrientedRange(p, q) equals
// OrientedRange(q', p') where ' reads a position on the opposite strand.
func (ix *Index) OrientedRange(p, q vgraph.Position) Span {
	return ix.span(p, q, true)
}

func (ix *Index) span(p, q vgraph.Position, oriented bool) Span {
	np, ok := ix.sides.NodeIndex(p.Node)
	if !ok {
		return Never
	}
	nq, ok := ix.sides.NodeIndex(q.Node)
	if !ok {
		return Never
	}
	x, y := ix.tree.Owner[np], ix.tree.Owner[nq]
	if ix.tree.Component(x) != ix.tree.Component(y) {
		return Never
	}

	fp, fq := ix.forward(p, np), ix.forward(q, nq)
	gp, gq := ix.start(np, fp), ix.start(nq, fq)
	wp := ix.leave(np, fp, oriented, p.Reverse)
	wq := ix.leave(nq, fq, oriented, !q.Reverse)

	for ix.tree.Depth(x) > ix.tree.Depth(y) {
		gp, wp = ix.lift(x, gp), ix.liftWalks(x, wp)
		x = ix.tree.Parent(x)
	}
	for ix.tree.Depth(y) > ix.tree.Depth(x) {
		gq, wq = ix.lift(y, gq), ix.liftWalks(y, wq)
		y = ix.tree.Parent(y)
	}
	for x != y {
		gp, wp = ix.lift(x, gp), ix.liftWalks(x, wp)
		x = ix.tree.Parent(x)
		gq, wq = ix.lift(y, gq), ix.liftWalks(y, wq)
		y = ix.tree.Parent(y)
	}

	lo, hi := Never, Unreachable
	if np == nq {
		lo = Exactly(abs(fp - fq))
		if d, ok := direct(fp, fq, oriented, p.Reverse, q.Reverse); ok {
			hi = d
		}
	}
	for _, a := range gp {
		for _, b := range gq {
			lo = lo.Min(a.d.Add(ix.global(x, a.v, b.v)).Add(b.d))
		}
	}
	for _, a := range wp {
		for _, b := range wq {
			hi = min(hi, add(add(a.d, ix.walkGlobal(x, a.s, b.s.reverse())), b.d))
		}
	}
	return Span{Lo: lo.Lo, Hi: hi}
}

// direct returns the walk along one node between forward offsets fp and fq.
func direct(fp, fq int64, oriented, rp, rq bool) (int64, bool) {
	switch {
	case !oriented:
		return abs(fp - fq), true
	case rp != rq:
		return 0, false
	case !rp && fq >= fp:
		return fq - fp, true
	case rp && fq <= fp:
		return fp - fq, true
	}
	return 0, false
}

func (ix *Index) forward(p vgraph.Position, n int32) int64 {
	l := ix.sides.Lengths[n]
	f := p.Forward(l)
	return min(max(f, 0), l)
}

// start returns the spans from a point at forward offset f on node n to both
// of its sides.
func (ix *Index) start(n int32, f int64) []reached {
	return []reached{
		{v: 2 * n, d: Exactly(f)},
		{v: 2*n + 1, d: Exactly(ix.sides.Lengths[n] - f)},
	}
}

// leave returns the walks from a point at forward offset f on node n to the
// states it can leave the node in: through the head after f, through the
// tail after the rest. An oriented point leaves towards the head only when
// toHead is set, and towards the tail otherwise.
func (ix *Index) leave(n int32, f int64, oriented, toHead bool) []walked {
	head := walked{s: at(2*n, viaNode), d: f}
	tail := walked{s: at(2*n+1, viaNode), d: ix.sides.Lengths[n] - f}
	switch {
	case !oriented:
		return []walked{head, tail}
	case toHead:
		return []walked{head}
	}
	return []walked{tail}
}

// liftWalks carries walks to states of a structure's domain up to the
// states at its ports.
func (ix *Index) liftWalks(id snarl.ID, g []walked) []walked {
	ports := ix.tree.At(id).Ports
	out := make([]walked, 2*len(ports))
	for i := range out {
		out[i] = walked{s: at(ports[i/2], int32(i%2)), d: Unreachable}
	}
	for _, c := range g {
		if c.d == Unreachable {
			continue
		}
		to := ix.toPorts(id, c.s)
		for i := range out {
			out[i].d = min(out[i].d, add(c.d, to[i]))
		}
	}
	return out
}

// lift carries spans to sides of a structure's domain up to its ports.
func (ix *Index) lift(id snarl.ID, g []reached) []reached {
	ports := ix.tree.At(id).Ports
	out := make([]reached, len(ports))
	for i, u := range ports {
		out[i] = reached{v: u, d: Never}
		for _, c := range g {
			out[i].d = out[i].d.Min(c.d.Add(ix.within(id, c.v, u)))
		}
	}
	return out
}

func abs(d int64) int64 {
	if d < 0 {
		return -d
	}
	return d
}
