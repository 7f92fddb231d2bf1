package search

import (
	"container/heap"
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/distindex/pkg/distance"
	"github.com/matzehuels/distindex/pkg/errors"
	"github.com/matzehuels/distindex/pkg/observability"
	"github.com/matzehuels/distindex/pkg/snarl"
	"github.com/matzehuels/distindex/pkg/vgraph"
)

// Outcome is the result class of a search.
type Outcome int

const (
	// Found means a walk in the window exists; the result carries one.
	Found Outcome = iota
	// NotFound means no walk in the window exists.
	NotFound
	// Exhausted means the budget or the context ran out first. Nothing is
	// known about the window.
	Exhausted
)

// String returns "found", "not_found" or "exhausted".
func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case NotFound:
		return "not_found"
	default:
		return "exhausted"
	}
}

var (
	// ErrNotFound is returned by [Result.Err] for [NotFound].
	ErrNotFound = errors.New(errors.ErrCodeNotFound, "no walk matches the target length")
	// ErrExhausted is returned by [Result.Err] for [Exhausted].
	ErrExhausted = errors.New(errors.ErrCodeTimeout, "search budget exhausted")
)

// Request describes a target-value search.
type Request struct {
	// Start is where the walk begins.
	Start vgraph.Position
	// Direction is relative to the strand of Start.
	Direction vgraph.Direction
	// Target is the wanted walk length; any length within Tolerance of it
	// matches.
	Target    int64
	Tolerance int64
	// MaxStates caps the number of states popped. Zero uses the searcher's
	// budget.
	MaxStates int
	// Heuristic bounds the remaining length at each state. Nil uses
	// [Default].
	Heuristic Heuristic
}

// Result is the full answer of a search.
type Result struct {
	Outcome Outcome
	// Length is the length of the walk found.
	Length int64
	// Path lists the side through which the walk leaves every node it
	// traverses, starting with the start node. The last side is a tip.
	Path []vgraph.Side
	// Explored is the number of states popped.
	Explored int

	err error
}

// Err returns nil for [Found], [ErrNotFound] or [ErrExhausted] otherwise, or
// the validation error of a malformed request.
func (r Result) Err() error {
	if r.err != nil {
		return r.err
	}
	switch r.Outcome {
	case Found:
		return nil
	case NotFound:
		return ErrNotFound
	default:
		return ErrExhausted
	}
}

// Searcher runs target-value searches over one index. It holds no mutable
// state and is safe for concurrent use.
type Searcher struct {
	ix        *distance.Index
	quality   Quality
	maxStates int
	timeout   time.Duration
	logger    *log.Logger
}

// Option configures a [Searcher].
type Option func(*Searcher)

// WithQuality sets the preset providing the default budget and timeout.
func WithQuality(q Quality) Option {
	return func(s *Searcher) { s.quality = q }
}

// WithMaxStates overrides the preset state budget. Values below one keep the
// preset.
func WithMaxStates(n int) Option {
	return func(s *Searcher) { s.maxStates = n }
}

// WithTimeout overrides the preset time limit. Zero keeps the preset.
func WithTimeout(d time.Duration) Option {
	return func(s *Searcher) { s.timeout = d }
}

// WithLogger sets the logger for per-search debug summaries.
func WithLogger(l *log.Logger) Option {
	return func(s *Searcher) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a searcher over ix.
func New(ix *distance.Index, opts ...Option) *Searcher {
	s := &Searcher{ix: ix, quality: QualityBalanced, logger: log.Default()}
	for _, opt := range opts {
		opt(s)
	}
	if s.maxStates < 1 {
		s.maxStates = s.quality.MaxStates()
	}
	if s.timeout <= 0 {
		s.timeout = s.quality.Timeout()
	}
	return s
}

// PathExists reports whether a walk of matching length exists.
func (s *Searcher) PathExists(ctx context.Context, req Request) (bool, Outcome) {
	r := s.Search(ctx, req)
	return r.Outcome == Found, r.Outcome
}

// Path returns the exit sides of a matching walk.
func (s *Searcher) Path(ctx context.Context, req Request) ([]vgraph.Side, Outcome) {
	r := s.Search(ctx, req)
	return r.Path, r.Outcome
}

// PathLength returns the length of a matching walk.
func (s *Searcher) PathLength(ctx context.Context, req Request) (int64, Outcome) {
	r := s.Search(ctx, req)
	return r.Length, r.Outcome
}

// Search runs a best-first search for a walk from req.Start whose length
// lies within req.Tolerance of req.Target.
//
// States are (exit side, length so far) pairs. A state is pruned as soon as
// its heuristic span misses the window, and a start that is pruned this way
// reports [NotFound] without exploring anything. Running out of states or
// time reports [Exhausted].
func (s *Searcher) Search(ctx context.Context, req Request) Result {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	r := s.run(ctx, req)
	observability.Search().OnSearchComplete(ctx, r.Outcome.String(), r.Explored, time.Since(start))
	s.logger.Debug("search complete", "outcome", r.Outcome, "target", req.Target, "explored", r.Explored, "elapsed", time.Since(start))
	return r
}

// state is one entry of the search arena. parent indexes the state it was
// expanded from, or -1.
type state struct {
	exit   int32
	length int64
	parent int32
}

type stateKey struct {
	exit   int32
	length int64
}

type frontier struct {
	sg        *snarl.SideGraph
	heuristic Heuristic
	lo, hi    int64
	target    int64
	states    []state
	seen      map[stateKey]struct{}
	queue     stateQueue
	seq       int64
}

func (s *Searcher) run(ctx context.Context, req Request) Result {
	if err := errors.ValidateWindow(req.Target, req.Tolerance); err != nil {
		return Result{Outcome: NotFound, err: err}
	}
	sg := s.ix.Sides()
	n, ok := sg.NodeIndex(req.Start.Node)
	if !ok {
		return Result{Outcome: NotFound, err: errors.New(errors.ErrCodeInvalidInput, "unknown start node %d", req.Start.Node)}
	}
	length := sg.Lengths[n]
	if req.Start.Offset < 0 || req.Start.Offset > length {
		return Result{Outcome: NotFound, err: errors.New(errors.ErrCodeInvalidInput, "offset %d outside node %d of length %d", req.Start.Offset, req.Start.Node, length)}
	}

	p := req.Start
	if req.Direction == vgraph.Backward {
		p = p.Flip(length)
	}
	budget := req.MaxStates
	if budget <= 0 {
		budget = s.maxStates
	}
	h := req.Heuristic
	if h == nil {
		h = Default(s.ix)
	}

	r := &frontier{
		sg:        sg,
		heuristic: h,
		lo:        req.Target - req.Tolerance,
		hi:        req.Target + req.Tolerance,
		target:    req.Target,
		seen:      make(map[stateKey]struct{}),
	}
	if !r.push(sg.Vertex(p.ExitSide()), length-p.Offset, -1) {
		return Result{Outcome: NotFound}
	}

	explored := 0
	for r.queue.Len() > 0 {
		if explored >= budget || ctx.Err() != nil {
			return Result{Outcome: Exhausted, Explored: explored}
		}
		it := heap.Pop(&r.queue).(queued)
		explored++
		st := r.states[it.state]

		if sg.IsTip(st.exit) {
			if r.lo <= st.length && st.length <= r.hi {
				return Result{Outcome: Found, Length: st.length, Path: r.path(it.state), Explored: explored}
			}
			continue
		}
		for _, t := range sg.Links(st.exit) {
			r.push(snarl.Flip(t), st.length+sg.Lengths[t/2], it.state)
		}
	}
	return Result{Outcome: NotFound, Explored: explored}
}

// push adds a state unless it was seen before or its estimate misses the
// window. It reports whether the state was queued or already known.
func (r *frontier) push(exit int32, length int64, parent int32) bool {
	key := stateKey{exit, length}
	if _, ok := r.seen[key]; ok {
		return true
	}
	rem := r.heuristic.Remaining(r.sg.Side(exit))
	est := distance.Exactly(length).Add(rem)
	if est.Lo > r.hi || est.Hi < r.lo {
		return false
	}
	r.seen[key] = struct{}{}
	r.states = append(r.states, state{exit: exit, length: length, parent: parent})
	heap.Push(&r.queue, queued{
		state: int32(len(r.states) - 1),
		gap:   gap(est, r.lo, r.hi),
		skew:  skew(est, r.target),
		seq:   r.seq,
	})
	r.seq++
	return true
}

func (r *frontier) path(i int32) []vgraph.Side {
	var rev []vgraph.Side
	for ; i >= 0; i = r.states[i].parent {
		rev = append(rev, r.sg.Side(r.states[i].exit))
	}
	out := make([]vgraph.Side, len(rev))
	for k, sd := range rev {
		out[len(rev)-1-k] = sd
	}
	return out
}

// gap is the distance between an estimate and the window, zero when they
// overlap.
func gap(est distance.Span, lo, hi int64) int64 {
	switch {
	case est.Hi < lo:
		return lo - est.Hi
	case est.Lo > hi:
		return est.Lo - hi
	}
	return 0
}

// skew is how far the midpoint of an estimate lies from the target.
func skew(est distance.Span, target int64) int64 {
	if distance.IsInf(est.Hi) {
		return distance.Unbounded
	}
	mid := est.Lo + (est.Hi-est.Lo)/2
	if mid < target {
		return target - mid
	}
	return mid - target
}
