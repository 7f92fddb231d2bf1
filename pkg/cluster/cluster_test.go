package cluster

import (
	"context"
	stderrors "errors"
	"reflect"
	"testing"

	"github.com/matzehuels/distindex/internal/testgraph"
	"github.com/matzehuels/distindex/pkg/distance"
	"github.com/matzehuels/distindex/pkg/errors"
	"github.com/matzehuels/distindex/pkg/vgraph"
)

func build(t *testing.T, g vgraph.Adapter) *distance.Index {
	t.Helper()
	ix, err := distance.Build(context.Background(), g)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return ix
}

func members(gs []Group) [][]int {
	out := make([][]int, len(gs))
	for i, g := range gs {
		out[i] = g.Members
	}
	return out
}

func TestCluster_Threshold(t *testing.T) {
	ix := build(t, testgraph.Path(20))
	seeds := []Seed{
		{Pos: vgraph.Pos(1, 0), Score: 1},
		{Pos: vgraph.Pos(1, 4), Score: 2},
		{Pos: vgraph.Pos(1, 8), Score: 4},
	}

	tests := []struct {
		name string
		d    int64
		want [][]int
	}{
		{"transitive", 5, [][]int{{0, 1, 2}}},
		{"exact threshold", 4, [][]int{{0, 1, 2}}},
		{"singletons", 2, [][]int{{0}, {1}, {2}}},
		{"zero", 0, [][]int{{0}, {1}, {2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gs, err := Cluster(context.Background(), seeds, ix, tt.d, WithWorkers(2))
			if err != nil {
				t.Fatalf("Cluster() error: %v", err)
			}
			if got := members(gs); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Cluster(%d) = %v, want %v", tt.d, got, tt.want)
			}
		})
	}

	gs, _ := Cluster(context.Background(), seeds, ix, 5)
	if gs[0].Score != 7 {
		t.Errorf("Group.Score = %v, want 7", gs[0].Score)
	}
}

func TestCluster_Order(t *testing.T) {
	ix := build(t, testgraph.Path(3, 100, 3))
	// Seeds 0 and 2 share node 1; 1 and 3 share node 3.
	seeds := []Seed{
		{Pos: vgraph.Pos(1, 0)},
		{Pos: vgraph.Pos(3, 1)},
		{Pos: vgraph.Pos(1, 2)},
		{Pos: vgraph.Pos(3, 2)},
	}
	gs, err := Cluster(context.Background(), seeds, ix, 10)
	if err != nil {
		t.Fatalf("Cluster() error: %v", err)
	}
	want := [][]int{{0, 2}, {1, 3}}
	if got := members(gs); !reflect.DeepEqual(got, want) {
		t.Errorf("Cluster() = %v, want %v", got, want)
	}
}

func TestCluster_Unreachable(t *testing.T) {
	g := testgraph.Path(5)
	if err := g.AddNode(2, 5); err != nil {
		t.Fatal(err)
	}
	ix := build(t, g)
	seeds := []Seed{{Pos: vgraph.Pos(1, 0)}, {Pos: vgraph.Pos(2, 0)}}

	gs, err := Cluster(context.Background(), seeds, ix, distance.Unreachable-1)
	if err != nil {
		t.Fatalf("Cluster() error: %v", err)
	}
	if len(gs) != 2 {
		t.Errorf("Cluster() = %v, want two singletons", members(gs))
	}
}

func TestCluster_Alleles(t *testing.T) {
	ix := build(t, testgraph.Bubble(3, 5, 7))
	// The two alleles of a bubble lie on no common walk.
	seeds := []Seed{{Pos: vgraph.Pos(2, 0)}, {Pos: vgraph.Pos(3, 0)}, {Pos: vgraph.Pos(2, 4)}}

	tests := []struct {
		name string
		d    int64
		want [][]int
	}{
		{"zero", 0, [][]int{{0}, {1}, {2}}},
		{"same allele", 4, [][]int{{0, 2}, {1}}},
		{"far threshold", 100, [][]int{{0, 2}, {1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gs, err := Cluster(context.Background(), seeds, ix, tt.d)
			if err != nil {
				t.Fatalf("Cluster() error: %v", err)
			}
			if got := members(gs); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Cluster(%d) = %v, want %v", tt.d, got, tt.want)
			}
		})
	}
}

func TestDistanceFunc(t *testing.T) {
	ix := build(t, testgraph.Path(4, 6))
	// Seed 1 sits on the reverse strand: no walk joins it to seed 0 in the
	// orientations given, but Range ignores strands.
	seeds := []Seed{{Pos: vgraph.Pos(1, 1)}, {Pos: vgraph.Position{Node: 2, Reverse: true, Offset: 2}}}
	oriented := DistanceFunc(func(p, q vgraph.Position) distance.Span {
		return ix.OrientedRange(p, q).Min(ix.OrientedRange(q, p))
	})

	gs, _ := Cluster(context.Background(), seeds, ix, 10)
	if len(gs) != 1 {
		t.Errorf("Cluster(Range) = %v, want one group", members(gs))
	}
	gs, _ = Cluster(context.Background(), seeds, oriented, 10)
	if len(gs) != 2 {
		t.Errorf("Cluster(OrientedRange) = %v, want singletons", members(gs))
	}
}

// spanDistancer answers every query with the same span.
type spanDistancer distance.Span

func (s spanDistancer) Range(vgraph.Position, vgraph.Position) distance.Span {
	return distance.Span(s)
}

func TestCluster_Optimistic(t *testing.T) {
	seeds := []Seed{{Pos: vgraph.Pos(1, 0)}, {Pos: vgraph.Pos(2, 0)}}
	loose := spanDistancer{Lo: 1, Hi: 10}

	gs, _ := Cluster(context.Background(), seeds, loose, 5)
	if len(gs) != 2 {
		t.Errorf("Cluster() = %v, want singletons", members(gs))
	}
	gs, _ = Cluster(context.Background(), seeds, loose, 5, Optimistic())
	if len(gs) != 1 {
		t.Errorf("Cluster(Optimistic) = %v, want one group", members(gs))
	}
}

func TestCluster_Errors(t *testing.T) {
	seeds := []Seed{{Pos: vgraph.Pos(1, 0)}, {Pos: vgraph.Pos(1, 1)}}
	d := spanDistancer{Lo: 1, Hi: 1}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Cluster(ctx, seeds, d, 5); !stderrors.Is(err, context.Canceled) {
		t.Errorf("Cluster(cancelled) error = %v, want context.Canceled", err)
	}
	if _, err := Cluster(context.Background(), seeds, d, -1); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Cluster(-1) error = %v, want INVALID_INPUT", err)
	}
}

func TestUnionFind(t *testing.T) {
	u := newUnionFind(6)
	u.union(0, 1)
	u.union(2, 3)
	u.union(1, 3)
	if u.find(0) != u.find(2) {
		t.Error("find(0) != find(2) after joining their sets")
	}
	if u.find(4) == u.find(0) || u.find(4) == u.find(5) {
		t.Error("untouched elements should stay singletons")
	}
	if r := u.find(0); u.size[r] != 4 {
		t.Errorf("size = %d, want 4", u.size[r])
	}
}
