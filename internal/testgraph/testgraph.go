// Package testgraph builds small variation graphs shared by the tests of
// several packages.
package testgraph

import (
	"math/rand/v2"

	"github.com/matzehuels/distindex/pkg/vgraph"
)

// Path returns a linear graph of nodes 1..len(lengths) joined tail to head.
func Path(lengths ...int64) *vgraph.Graph {
	g := vgraph.New()
	for i, l := range lengths {
		mustNode(g, vgraph.NodeID(i+1), l)
	}
	for i := 1; i < len(lengths); i++ {
		mustLink(g, vgraph.NodeID(i), vgraph.NodeID(i+1))
	}
	return g
}

// Bubble returns 1 -> {2, 3} -> 4 with the two alleles of length a and b
// and flanks of length flank.
func Bubble(flank, a, b int64) *vgraph.Graph {
	g := vgraph.New()
	mustNode(g, 1, flank)
	mustNode(g, 2, a)
	mustNode(g, 3, b)
	mustNode(g, 4, flank)
	mustLink(g, 1, 2)
	mustLink(g, 1, 3)
	mustLink(g, 2, 4)
	mustLink(g, 3, 4)
	return g
}

// NestedBubble returns a bubble whose upper allele is itself a bubble:
// 1 -> {2 -> {3, 4} -> 5, 6} -> 7.
func NestedBubble() *vgraph.Graph {
	g := vgraph.New()
	for id, l := range map[vgraph.NodeID]int64{1: 2, 2: 1, 3: 4, 4: 6, 5: 1, 6: 9, 7: 2} {
		mustNode(g, id, l)
	}
	for _, e := range [][2]vgraph.NodeID{{1, 2}, {2, 3}, {2, 4}, {3, 5}, {4, 5}, {5, 7}, {1, 6}, {6, 7}} {
		mustLink(g, e[0], e[1])
	}
	return g
}

// Loop returns 1 -> 2 -> 3 -> 4 with a back edge from 3 to 2, so 2 and 3
// can be repeated any number of times.
func Loop() *vgraph.Graph {
	g := Path(3, 2, 4, 3)
	mustLink(g, 3, 2)
	return g
}

// Inversion returns 1 -> 2 -> 3 with an extra edge from the tail of 1 to the
// tail of 2, so 2 can also be read in reverse.
func Inversion() *vgraph.Graph {
	g := Path(3, 5, 3)
	must(g.AddEdge(vgraph.Side{Node: 1, End: vgraph.Tail}, vgraph.Side{Node: 2, End: vgraph.Tail}))
	must(g.AddEdge(vgraph.Side{Node: 2, End: vgraph.Head}, vgraph.Side{Node: 3, End: vgraph.Head}))
	return g
}

// Fork returns 1 -> 2 -> 3 with a dead end 2 -> 4.
func Fork() *vgraph.Graph {
	g := Path(2, 3, 4)
	mustNode(g, 4, 5)
	mustLink(g, 2, 4)
	return g
}

// Random returns a connected-ish random graph with n nodes of length 0..9
// and extra random edges between arbitrary sides.
func Random(seed uint64, n, extra int) *vgraph.Graph {
	r := rand.New(rand.NewPCG(seed, 0x5eed))
	g := vgraph.New()
	for i := 1; i <= n; i++ {
		mustNode(g, vgraph.NodeID(i), r.Int64N(10))
	}
	for i := 2; i <= n; i++ {
		mustLink(g, vgraph.NodeID(r.IntN(i-1)+1), vgraph.NodeID(i))
	}
	for range extra {
		a := vgraph.Side{Node: vgraph.NodeID(r.IntN(n) + 1), End: vgraph.End(r.IntN(2))}
		b := vgraph.Side{Node: vgraph.NodeID(r.IntN(n) + 1), End: vgraph.End(r.IntN(2))}
		must(g.AddEdge(a, b))
	}
	return g
}

func mustNode(g *vgraph.Graph, id vgraph.NodeID, l int64) { must(g.AddNode(id, l)) }

func mustLink(g *vgraph.Graph, a, b vgraph.NodeID) { must(g.Link(a, b)) }

func must(err error) {
	if err != nil {
		panic(err)
	}
}
