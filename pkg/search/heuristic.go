package search

import (
	"github.com/matzehuels/distindex/pkg/distance"
	"github.com/matzehuels/distindex/pkg/vgraph"
)

// Heuristic estimates how much length a walk that is about to leave its node
// through a side can still add before it ends at a tip.
//
// The returned span must contain the remaining length of every such walk.
// A Lo of [distance.Unreachable] means no walk ending at a tip exists.
type Heuristic interface {
	Remaining(s vgraph.Side) distance.Span
}

// ExactHeuristic uses the exact distance to the nearest tip side as a lower
// bound. It never supplies an upper bound.
type ExactHeuristic struct {
	Index *distance.Index
}

// Remaining implements [Heuristic].
func (h ExactHeuristic) Remaining(s vgraph.Side) distance.Span {
	return distance.Span{Lo: h.Index.TipDistance(s), Hi: distance.Unbounded}
}

// BoundHeuristic uses the Bound Table's reach as an upper bound. It never
// supplies a lower bound beyond zero.
type BoundHeuristic struct {
	Index *distance.Index
}

// Remaining implements [Heuristic].
func (h BoundHeuristic) Remaining(s vgraph.Side) distance.Span {
	return distance.Bounded(h.Index.Reach(s))
}

// Stack intersects the estimates of several heuristics: the largest lower
// bound and the smallest upper bound win.
func Stack(hs ...Heuristic) Heuristic { return stack(hs) }

type stack []Heuristic

func (st stack) Remaining(s vgraph.Side) distance.Span {
	out := distance.Span{Lo: 0, Hi: distance.Unbounded}
	for _, h := range st {
		r := h.Remaining(s)
		out.Lo = max(out.Lo, r.Lo)
		out.Hi = min(out.Hi, r.Hi)
	}
	return out
}

// Default returns the heuristic used when a request names none.
func Default(ix *distance.Index) Heuristic {
	return Stack(ExactHeuristic{Index: ix}, BoundHeuristic{Index: ix})
}
