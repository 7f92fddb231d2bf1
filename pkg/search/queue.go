package search

type queued struct {
	state int32
	gap   int64
	skew  int64
	seq   int64
}

// stateQueue orders states by gap to the window, then by how far their
// midpoint estimate lies from the target, then by insertion.
type stateQueue []queued

func (q stateQueue) Len() int { return len(q) }

func (q stateQueue) Less(i, j int) bool {
	a, b := q[i], q[j]
	if a.gap != b.gap {
		return a.gap < b.gap
	}
	if a.skew != b.skew {
		return a.skew < b.skew
	}
	return a.seq < b.seq
}

func (q stateQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *stateQueue) Push(x any) { *q = append(*q, x.(queued)) }

func (q *stateQueue) Pop() any {
	old := *q
	it := old[len(old)-1]
	*q = old[:len(old)-1]
	return it
}
