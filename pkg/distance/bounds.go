package distance

import (
	"container/heap"

	"github.com/matzehuels/distindex/pkg/snarl"
)

// BoundTable holds the conservative estimates used where exact tables do
// not reach. None of its entries is ever reported as an exact distance.
type BoundTable struct {
	// Tip is the side graph distance from each side to the nearest tip
	// side, or Unreachable when the component has no tips.
	Tip []int64 `json:"tip"`

	// Reach is an upper bound on the length a walk leaving its node through
	// each side can still add before it ends, or Unbounded when the walk
	// can enter a cycle.
	Reach []int64 `json:"reach"`
}

func buildBounds(sg *snarl.SideGraph) *BoundTable {
	return &BoundTable{Tip: tipDistances(sg), Reach: reach(sg)}
}

// tipDistances runs a multi-source Dijkstra from every tip side.
func tipDistances(sg *snarl.SideGraph) []int64 {
	n := sg.VertexCount()
	dist := make([]int64, n)
	q := &vertexQueue{}
	for v := range dist {
		dist[v] = Unreachable
		if sg.IsTip(int32(v)) {
			dist[v] = 0
			heap.Push(q, queued{v: int32(v)})
		}
	}
	for q.Len() > 0 {
		it := heap.Pop(q).(queued)
		if it.d > dist[it.v] {
			continue
		}
		for _, ei := range sg.Adj[it.v] {
			e := sg.Edges[ei]
			w := e.Other(it.v)
			if d := add(it.d, e.W); d < dist[w] {
				dist[w] = d
				heap.Push(q, queued{v: w, d: d})
			}
		}
	}
	return dist
}

type queued struct {
	v int32
	d int64
}

type vertexQueue []queued

func (q vertexQueue) Len() int { return len(q) }
func (q vertexQueue) Less(i, j int) bool {
	if q[i].d != q[j].d {
		return q[i].d < q[j].d
	}
	return q[i].v < q[j].v
}
func (q vertexQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *vertexQueue) Push(x any)   { *q = append(*q, x.(queued)) }
func (q *vertexQueue) Pop() any {
	old := *q
	it := old[len(old)-1]
	*q = old[:len(old)-1]
	return it
}

// reach computes, for every exit side, the longest length a walk can still
// add. The walk graph has one state per exit side; leaving through s and
// entering t moves to the exit side Flip(t) and adds the length of t's
// node. States on a cycle, or leading to one, are Unbounded; the rest are
// settled by a longest-path pass over the strongly connected components.
func reach(sg *snarl.SideGraph) []int64 {
	n := int32(sg.VertexCount())
	out := make([]int64, n)
	succ := func(s int32) []int32 { return sg.Links(s) }

	index := make([]int32, n)
	low := make([]int32, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = -1
	}
	var counter int32
	var stack []int32

	type frame struct {
		v    int32
		next []int32
	}

	settle := func(comp []int32) {
		cyclic := len(comp) > 1
		if !cyclic {
			for _, t := range succ(comp[0]) {
				if snarl.Flip(t) == comp[0] {
					cyclic = true
				}
			}
		}
		for _, s := range comp {
			if cyclic {
				out[s] = Unbounded
				continue
			}
			best := int64(0)
			for _, t := range succ(s) {
				next := out[snarl.Flip(t)]
				if next == Unbounded {
					best = Unbounded
					break
				}
				best = max(best, add(sg.Lengths[t/2], next))
			}
			out[s] = best
		}
	}

	for root := range n {
		if index[root] >= 0 {
			continue
		}
		calls := []frame{{v: root, next: succ(root)}}
		index[root], low[root] = counter, counter
		counter++
		stack = append(stack, root)
		onStack[root] = true

		for len(calls) > 0 {
			top := &calls[len(calls)-1]
			if len(top.next) > 0 {
				w := snarl.Flip(top.next[0])
				top.next = top.next[1:]
				switch {
				case index[w] < 0:
					index[w], low[w] = counter, counter
					counter++
					stack = append(stack, w)
					onStack[w] = true
					calls = append(calls, frame{v: w, next: succ(w)})
				case onStack[w]:
					low[top.v] = min(low[top.v], index[w])
				}
				continue
			}

			v := top.v
			calls = calls[:len(calls)-1]
			if len(calls) > 0 {
				p := calls[len(calls)-1].v
				low[p] = min(low[p], low[v])
			}
			if low[v] != index[v] {
				continue
			}
			var comp []int32
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			settle(comp)
		}
	}
	return out
}
