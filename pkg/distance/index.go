package distance

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/distindex/pkg/buildinfo"
	"github.com/matzehuels/distindex/pkg/observability"
	"github.com/matzehuels/distindex/pkg/snarl"
	"github.com/matzehuels/distindex/pkg/vgraph"
)

// Index answers distance queries between positions of one graph.
//
// An Index is immutable once built or loaded. All methods are pure reads and
// safe for concurrent use by any number of goroutines.
type Index struct {
	tables
	sides    *snarl.SideGraph
	bounds   *BoundTable
	checksum string
	buildID  uuid.UUID
	producer string
	stats    Stats
}

// Stats summarises an index.
type Stats struct {
	Nodes     int           `json:"nodes"`
	Edges     int           `json:"edges"`
	Tree      snarl.Counts  `json:"tree"`
	BuildTime time.Duration `json:"build_time"`
}

// Option configures [Build] and [Load].
type Option func(*options)

type options struct {
	logger *log.Logger
}

// WithLogger sets the logger for build progress. The default is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{logger: log.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Build decomposes g and computes every table. It runs on the calling
// goroutine and either returns a complete index or none at all: a malformed
// graph yields a [*snarl.MalformedGraphError], and a cancelled context is
// reported between phases as ctx.Err().
func Build(ctx context.Context, g vgraph.Adapter, opts ...Option) (ix *Index, err error) {
	o := applyOptions(opts)
	start := time.Now()
	hooks := observability.Index()
	hooks.OnBuildStart(ctx, len(g.Nodes()))
	defer func() {
		nodes := 0
		if ix != nil {
			nodes = ix.stats.Nodes
		}
		hooks.OnBuildComplete(ctx, nodes, time.Since(start), err)
	}()

	sg, err := snarl.NewSideGraph(g)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tree, err := snarl.DecomposeSides(sg, snarl.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tb := newTables(tree)
	ord := order(tree)
	tb.buildWithin(ord)
	tb.buildGlobal(ord)
	tb.buildOutside(ord)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ix = &Index{
		tables:   *tb,
		sides:    sg,
		bounds:   buildBounds(sg),
		checksum: vgraph.Checksum(g),
		buildID:  uuid.New(),
		producer: buildinfo.Producer(),
	}
	ix.stats = ix.summarise()
	ix.stats.BuildTime = time.Since(start)

	o.logger.Debug("built distance index",
		"nodes", ix.stats.Nodes,
		"snarls", ix.stats.Tree.Snarls,
		"complex", ix.stats.Tree.Complex,
		"duration", ix.stats.BuildTime)
	return ix, nil
}

func (ix *Index) summarise() Stats {
	return Stats{
		Nodes: len(ix.sides.Nodes),
		Edges: len(ix.sides.Edges) - len(ix.sides.Nodes),
		Tree:  ix.tree.Counts(),
	}
}

// Tree returns the snarl tree the index is built on.
func (ix *Index) Tree() *snarl.Tree { return ix.tree }

// Checksum returns the identity of the indexed graph.
func (ix *Index) Checksum() string { return ix.checksum }

// BuildID returns the identifier assigned when the index was built. It
// survives saving and loading.
func (ix *Index) BuildID() uuid.UUID { return ix.buildID }

// Producer returns the version of the code that built the index.
func (ix *Index) Producer() string { return ix.producer }

// Stats returns a summary of the index.
func (ix *Index) Stats() Stats { return ix.stats }

// Chain returns the chain table of a chain, or nil for snarls.
func (ix *Index) Chain(id snarl.ID) *ChainTable { return ix.chains[id] }

// Snarl returns the snarl table of a snarl, or nil for chains.
func (ix *Index) Snarl(id snarl.ID) *SnarlTable { return ix.snarls[id] }

// SnarlBound returns the Bound Table entry of a snarl: an upper bound on the
// distance between any two sides inside it. It is not tight.
func (ix *Index) SnarlBound(id snarl.ID) int64 {
	if st := ix.snarls[id]; st != nil {
		return st.Bound
	}
	return 0
}

// TipDistance returns the distance from a side to the nearest tip side, a
// lower bound on the length any walk leaving through it still adds.
func (ix *Index) TipDistance(s vgraph.Side) int64 {
	v := ix.sides.Vertex(s)
	if v < 0 {
		return Unreachable
	}
	return ix.bounds.Tip[v]
}

// Reach returns an upper bound on the length a walk leaving its node
// through s can still add before it ends, or [Unbounded].
func (ix *Index) Reach(s vgraph.Side) int64 {
	v := ix.sides.Vertex(s)
	if v < 0 {
		return Unbounded
	}
	return ix.bounds.Reach[v]
}

// Sides returns the side graph the index is built on.
func (ix *Index) Sides() *snarl.SideGraph { return ix.sides }
