package distance

import (
	"context"
	"fmt"
	"testing"

	"github.com/matzehuels/distindex/internal/testgraph"
	"github.com/matzehuels/distindex/pkg/errors"
	"github.com/matzehuels/distindex/pkg/snarl"
	"github.com/matzehuels/distindex/pkg/vgraph"
)

func build(t *testing.T, g vgraph.Adapter) *Index {
	t.Helper()
	ix, err := Build(context.Background(), g)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return ix
}

// positions returns a spread of positions on every node of g.
func positions(g vgraph.Adapter) []vgraph.Position {
	var out []vgraph.Position
	for _, id := range g.Nodes() {
		l := g.Length(id)
		out = append(out,
			vgraph.Pos(id, 0),
			vgraph.Pos(id, l/2),
			vgraph.Pos(id, l),
			vgraph.Position{Node: id, Reverse: true, Offset: l / 3},
		)
	}
	return out
}

// oracle computes walk distances by Floyd-Warshall over walk states. State
// 2v is side v reached over its node edge, so the walk goes on over a link;
// state 2v+1 is side v reached over a link, so the walk crosses the node.
type oracle struct {
	sg   *snarl.SideGraph
	dist [][]int64
}

func newOracle(t *testing.T, g vgraph.Adapter) *oracle {
	t.Helper()
	sg, err := snarl.NewSideGraph(g)
	if err != nil {
		t.Fatalf("NewSideGraph() error: %v", err)
	}
	n := 2 * sg.VertexCount()
	dist := make([][]int64, n)
	for i := range dist {
		dist[i] = make([]int64, n)
		for j := range dist[i] {
			if i != j {
				dist[i][j] = Unreachable
			}
		}
	}
	for v := range int32(sg.VertexCount()) {
		cross := 2 * int(snarl.Flip(v))
		dist[2*v+1][cross] = min(dist[2*v+1][cross], sg.Lengths[v/2])
		for _, w := range sg.Links(v) {
			dist[2*v][2*w+1] = 0
		}
	}
	for k := range n {
		for i := range n {
			for j := range n {
				dist[i][j] = min(dist[i][j], add(dist[i][k], dist[k][j]))
			}
		}
	}
	return &oracle{sg: sg, dist: dist}
}

// between returns the shortest walk leaving p through one of the sides in
// from and entering q through one of the sides in to; 0 is the head and 1
// the tail.
func (o *oracle) between(p, q vgraph.Position, from, to []int) int64 {
	np, _ := o.sg.NodeIndex(p.Node)
	nq, _ := o.sg.NodeIndex(q.Node)
	lp, lq := o.sg.Lengths[np], o.sg.Lengths[nq]
	fp, fq := p.Forward(lp), q.Forward(lq)
	leave := [2]int64{fp, lp - fp}
	enter := [2]int64{fq, lq - fq}

	best := Unreachable
	for _, a := range from {
		for _, b := range to {
			s := 2 * (2*int(np) + a)
			t := 2*(2*int(nq)+b) + 1
			best = min(best, add(add(leave[a], o.dist[s][t]), enter[b]))
		}
	}
	return best
}

// distance is the shortest walk in either direction at both ends.
func (o *oracle) distance(p, q vgraph.Position) int64 {
	best := o.between(p, q, []int{0, 1}, []int{0, 1})
	if p.Node == q.Node {
		n, _ := o.sg.NodeIndex(p.Node)
		l := o.sg.Lengths[n]
		best = min(best, abs(p.Forward(l)-q.Forward(l)))
	}
	return best
}

// walk is the shortest walk leaving p along its strand and reaching q along
// its strand.
func (o *oracle) walk(p, q vgraph.Position) int64 {
	from, to := 1, 0
	if p.Reverse {
		from = 0
	}
	if q.Reverse {
		to = 1
	}
	best := o.between(p, q, []int{from}, []int{to})
	if p.Node == q.Node && p.Reverse == q.Reverse && p.Offset <= q.Offset {
		best = min(best, q.Offset-p.Offset)
	}
	return best
}

func TestDistance_Oracle(t *testing.T) {
	graphs := map[string]*vgraph.Graph{
		"path":      testgraph.Path(4, 0, 7),
		"bubble":    testgraph.Bubble(3, 5, 7),
		"nested":    testgraph.NestedBubble(),
		"loop":      testgraph.Loop(),
		"inversion": testgraph.Inversion(),
		"fork":      testgraph.Fork(),
	}
	for seed := range uint64(30) {
		graphs[fmt.Sprintf("random-%d", seed)] = testgraph.Random(seed, 10, int(seed%6))
	}

	for name, g := range graphs {
		t.Run(name, func(t *testing.T) {
			ix := build(t, g)
			o := newOracle(t, g)
			pos := positions(g)
			for _, p := range pos {
				for _, q := range pos {
					want := o.distance(p, q)
					got := ix.Range(p, q)
					if !got.Contains(want) {
						t.Fatalf("Range(%s, %s) = %s, does not contain %d", p, q, got, want)
					}
					if got.Exact() && got.Lo != want {
						t.Fatalf("Range(%s, %s) = %s exact, want %d", p, q, got, want)
					}
					if back := ix.Range(q, p); back != got {
						t.Fatalf("Range(%s, %s) = %s, reverse = %s", p, q, got, back)
					}

					want = o.walk(p, q)
					got = ix.OrientedRange(p, q)
					if !got.Contains(want) {
						t.Fatalf("OrientedRange(%s, %s) = %s, does not contain %d", p, q, got, want)
					}
					if got.Exact() && got.Lo != want {
						t.Fatalf("OrientedRange(%s, %s) = %s exact, want %d", p, q, got, want)
					}
					rp, rq := p.Flip(g.Length(p.Node)), q.Flip(g.Length(q.Node))
					if back := ix.OrientedRange(rq, rp); back != got {
						t.Fatalf("OrientedRange(%s, %s) = %s, reversed walk = %s", p, q, got, back)
					}
				}
			}
		})
	}
}

func TestDistance_SamePosition(t *testing.T) {
	for _, g := range []*vgraph.Graph{testgraph.NestedBubble(), testgraph.Loop(), testgraph.Random(7, 15, 5)} {
		ix := build(t, g)
		for _, p := range positions(g) {
			if got := ix.Distance(p, p); got != 0 {
				t.Errorf("Distance(%s, %s) = %d, want 0", p, p, got)
			}
			if !ix.IsExact(p, p) {
				t.Errorf("IsExact(%s, %s) = false, want true", p, p)
			}
			if got := ix.OrientedRange(p, p); got != Exactly(0) {
				t.Errorf("OrientedRange(%s, %s) = %s, want 0", p, p, got)
			}
		}
	}
}

func TestDistance_TriangleInequality(t *testing.T) {
	for seed := range uint64(10) {
		g := testgraph.Random(seed+100, 8, 3)
		ix := build(t, g)
		pos := positions(g)
		for _, a := range pos {
			for _, b := range pos {
				for _, c := range pos {
					ab, bc, ac := ix.Range(a, b), ix.Range(b, c), ix.Range(a, c)
					if !ab.Exact() || !bc.Exact() || !ac.Exact() || !ab.Reachable() || !bc.Reachable() {
						continue
					}
					if ac.Lo > ab.Lo+bc.Lo {
						t.Fatalf("seed %d: d(%s,%s)=%d > d(%s,%s)+d(%s,%s)=%d", seed, a, c, ac.Lo, a, b, b, c, ab.Lo+bc.Lo)
					}
				}
			}
		}
	}
}

func TestDistance_TwoNodes(t *testing.T) {
	const length = 11
	ix := build(t, testgraph.Path(length, 4))
	start, end := vgraph.Pos(1, 0), vgraph.Pos(2, 0)
	if got := ix.Distance(start, end); got != length {
		t.Errorf("Distance() = %d, want %d", got, length)
	}
	if !ix.IsExact(start, end) {
		t.Errorf("IsExact() = false, want true")
	}
}

func TestDistance_Bubble(t *testing.T) {
	ix := build(t, testgraph.Bubble(3, 5, 7))
	root := ix.Tree().At(ix.Tree().Roots[0])
	id := root.Links[1].Snarl

	st := ix.Snarl(id)
	if st.Within != Exactly(5) {
		t.Errorf("Within = %s, want 5", st.Within)
	}
	if st.Routed {
		t.Errorf("Routed = true, want false")
	}
	if got := ix.SnarlBound(id); got < 7 {
		t.Errorf("SnarlBound() = %d, want >= 7", got)
	}

	tests := []struct {
		p, q vgraph.Position
		want int64
	}{
		{vgraph.Pos(1, 3), vgraph.Pos(4, 0), 5},
		{vgraph.Pos(1, 0), vgraph.Pos(4, 3), 11},
		{vgraph.Pos(2, 1), vgraph.Pos(4, 1), 5},
		{vgraph.Pos(1, 1), vgraph.Pos(3, 6), 8},
		{vgraph.Position{Node: 2, Reverse: true, Offset: 1}, vgraph.Pos(2, 1), 3},
	}
	for _, tt := range tests {
		if got := ix.Distance(tt.p, tt.q); got != tt.want {
			t.Errorf("Distance(%s, %s) = %d, want %d", tt.p, tt.q, got, tt.want)
		}
		if !ix.IsExact(tt.p, tt.q) {
			t.Errorf("IsExact(%s, %s) = false, want true", tt.p, tt.q)
		}
	}
}

func TestDistance_Alleles(t *testing.T) {
	ix := build(t, testgraph.Bubble(3, 5, 7))
	tests := []struct {
		name string
		p, q vgraph.Position
	}{
		{"heads", vgraph.Pos(2, 0), vgraph.Pos(3, 0)},
		{"tails", vgraph.Pos(2, 5), vgraph.Pos(3, 7)},
		{"inside", vgraph.Pos(2, 1), vgraph.Pos(3, 1)},
		{"reverse strand", vgraph.Position{Node: 2, Reverse: true, Offset: 4}, vgraph.Pos(3, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ix.Distance(tt.p, tt.q); got != Unreachable {
				t.Errorf("Distance(%s, %s) = %d, want Unreachable", tt.p, tt.q, got)
			}
			if ix.IsExact(tt.p, tt.q) {
				t.Errorf("IsExact(%s, %s) = true, want false", tt.p, tt.q)
			}
			if got := ix.OrientedRange(tt.p, tt.q).Hi; got != Unreachable {
				t.Errorf("OrientedRange(%s, %s).Hi = %d, want Unreachable", tt.p, tt.q, got)
			}
		})
	}
}

func TestOrientedRange(t *testing.T) {
	ix := build(t, testgraph.Path(4, 6))
	rev := func(n vgraph.NodeID, off int64) vgraph.Position {
		return vgraph.Position{Node: n, Reverse: true, Offset: off}
	}
	tests := []struct {
		name string
		p, q vgraph.Position
		want Span
	}{
		{"along the path", vgraph.Pos(1, 1), vgraph.Pos(2, 2), Exactly(5)},
		{"same node ahead", vgraph.Pos(1, 1), vgraph.Pos(1, 3), Exactly(2)},
		{"back along reverse strand", rev(2, 4), rev(1, 3), Exactly(5)},
		{"against the strand", vgraph.Pos(2, 2), vgraph.Pos(1, 1), Span{Lo: 5, Hi: Unreachable}},
		{"strands differ", vgraph.Pos(1, 1), rev(2, 2), Span{Lo: 7, Hi: Unreachable}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ix.OrientedRange(tt.p, tt.q); got != tt.want {
				t.Errorf("OrientedRange(%s, %s) = %s, want %s", tt.p, tt.q, got, tt.want)
			}
		})
	}
}

func TestDistance_Complex(t *testing.T) {
	ix := build(t, testgraph.Loop())
	p, q := vgraph.Pos(1, 0), vgraph.Pos(4, 0)
	if ix.IsExact(p, q) {
		t.Errorf("IsExact(%s, %s) = true across a complex snarl", p, q)
	}
	// The walk crosses 2 and 3 once; the side graph shortcut 2h-3t is no
	// walk.
	r := ix.Range(p, q)
	if !r.Contains(9) {
		t.Errorf("Range(%s, %s) = %s, want to contain 9", p, q, r)
	}
	if got := ix.Distance(p, q); got != r.Hi {
		t.Errorf("Distance() = %d, want upper estimate %d", got, r.Hi)
	}
}

func TestDistance_Disconnected(t *testing.T) {
	g := testgraph.Path(2, 3)
	_ = g.AddNode(10, 4)
	ix := build(t, g)

	if got := ix.Distance(vgraph.Pos(1, 0), vgraph.Pos(10, 0)); got != Unreachable {
		t.Errorf("Distance() = %d, want Unreachable", got)
	}
	if got := ix.Distance(vgraph.Pos(1, 0), vgraph.Pos(99, 0)); got != Unreachable {
		t.Errorf("Distance() to unknown node = %d, want Unreachable", got)
	}
	if got := ix.Distance(vgraph.Pos(10, 1), vgraph.Pos(10, 4)); got != 3 {
		t.Errorf("Distance() on isolated node = %d, want 3", got)
	}
}

func TestDistanceToSide(t *testing.T) {
	ix := build(t, testgraph.Path(4, 6))
	got := ix.DistanceToSide(vgraph.Pos(1, 1), vgraph.Side{Node: 2, End: vgraph.Tail})
	if got != Exactly(9) {
		t.Errorf("DistanceToSide() = %s, want 9", got)
	}
}

func TestBounds(t *testing.T) {
	ix := build(t, testgraph.Fork())
	tests := []struct {
		side  vgraph.Side
		tip   int64
		reach int64
	}{
		{vgraph.Side{Node: 1, End: vgraph.Head}, 0, 0},
		{vgraph.Side{Node: 1, End: vgraph.Tail}, 2, 8},
		{vgraph.Side{Node: 2, End: vgraph.Tail}, 4, 5},
		{vgraph.Side{Node: 3, End: vgraph.Tail}, 0, 0},
	}
	for _, tt := range tests {
		if got := ix.TipDistance(tt.side); got != tt.tip {
			t.Errorf("TipDistance(%s) = %d, want %d", tt.side, got, tt.tip)
		}
		if got := ix.Reach(tt.side); got != tt.reach {
			t.Errorf("Reach(%s) = %d, want %d", tt.side, got, tt.reach)
		}
	}

	loop := build(t, testgraph.Loop())
	if got := loop.Reach(vgraph.Side{Node: 1, End: vgraph.Tail}); !IsInf(got) {
		t.Errorf("Reach(1t) on a loop = %d, want Unbounded", got)
	}
	if got := loop.Reach(vgraph.Side{Node: 4, End: vgraph.Head}); !IsInf(got) {
		t.Errorf("Reach(4h) on a loop = %d, want Unbounded", got)
	}
	if got := loop.Reach(vgraph.Side{Node: 4, End: vgraph.Tail}); got != 0 {
		t.Errorf("Reach(4t) = %d, want 0", got)
	}
}

func TestBuild_Errors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if ix, err := Build(ctx, testgraph.Bubble(1, 2, 3)); err != context.Canceled || ix != nil {
		t.Errorf("Build() cancelled = (%v, %v), want (nil, context.Canceled)", ix, err)
	}

	bad := &unknownEdgeGraph{Graph: testgraph.Path(1, 2)}
	if _, err := Build(context.Background(), bad); !errors.Is(err, errors.ErrCodeMalformedGraph) {
		t.Errorf("Build() error = %v, want MALFORMED_GRAPH", err)
	}
}

type unknownEdgeGraph struct{ *vgraph.Graph }

func (g *unknownEdgeGraph) FollowEdges(s vgraph.Side) []vgraph.Side {
	if s == (vgraph.Side{Node: 2, End: vgraph.Tail}) {
		return []vgraph.Side{{Node: 3, End: vgraph.Head}}
	}
	return g.Graph.FollowEdges(s)
}

func TestSpan(t *testing.T) {
	tests := []struct {
		name string
		got  Span
		want Span
	}{
		{"add", Exactly(3).Add(Span{1, 4}), Span{4, 7}},
		{"add saturates", Exactly(3).Add(Never), Never},
		{"min", Span{2, 9}.Min(Span{4, 5}), Span{2, 5}},
		{"min never", Never.Min(Exactly(1)), Exactly(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %s, want %s", tt.got, tt.want)
			}
		})
	}
	if s := (Span{0, Unbounded}).String(); s != "[0, inf]" {
		t.Errorf("String() = %q, want %q", s, "[0, inf]")
	}
}
