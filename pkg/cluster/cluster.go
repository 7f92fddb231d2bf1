package cluster

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/distindex/pkg/distance"
	"github.com/matzehuels/distindex/pkg/errors"
	"github.com/matzehuels/distindex/pkg/vgraph"
)

// Seed is a scored position. Seeds are values and never change once built.
type Seed struct {
	Pos   vgraph.Position
	Score float64
}

// Group is one cluster: the indices of its seeds in ascending order and the
// sum of their scores.
type Group struct {
	Members []int
	Score   float64
}

// Distancer answers pairwise distance queries. [*distance.Index] satisfies
// it.
type Distancer interface {
	Range(p, q vgraph.Position) distance.Span
}

// DistanceFunc adapts a function to [Distancer], for example to cluster on
// [distance.Index.OrientedRange] instead of the orientation-free Range.
type DistanceFunc func(p, q vgraph.Position) distance.Span

// Range calls f(p, q).
func (f DistanceFunc) Range(p, q vgraph.Position) distance.Span { return f(p, q) }

// Option configures [Cluster].
type Option func(*options)

type options struct {
	workers    int
	optimistic bool
}

// WithWorkers sets the number of goroutines computing pairwise rows.
// Values below one use GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// Optimistic joins pairs whose lower distance bound is within the threshold,
// even when the upper bound is not. By default only pairs whose upper bound
// is within the threshold join.
func Optimistic() Option {
	return func(o *options) { o.optimistic = true }
}

// Cluster groups seeds by the transitive closure of "distance at most d".
//
// Seeds close to nothing are singletons. Unreachable pairs never join.
// Groups are ordered by their smallest member. The only runtime error is
// the cancellation of ctx.
func Cluster(ctx context.Context, seeds []Seed, dist Distancer, d int64, opts ...Option) ([]Group, error) {
	if err := errors.ValidateThreshold(d); err != nil {
		return nil, err
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = runtime.GOMAXPROCS(0)
	}

	near, err := pairs(ctx, seeds, dist, d, o)
	if err != nil {
		return nil, err
	}

	u := newUnionFind(len(seeds))
	for i, row := range near {
		for _, j := range row {
			u.union(i, j)
		}
	}
	return groups(seeds, u), nil
}

// pairs computes for every seed i the seeds j > i within d of it. Rows are
// independent, so each goroutine writes only its own row.
func pairs(ctx context.Context, seeds []Seed, dist Distancer, d int64, o options) ([][]int, error) {
	near := make([][]int, len(seeds))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i := range seeds {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for j := i + 1; j < len(seeds); j++ {
				if joins(dist.Range(seeds[i].Pos, seeds[j].Pos), d, o.optimistic) {
					near[i] = append(near[i], j)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return near, ctx.Err()
}

func joins(s distance.Span, d int64, optimistic bool) bool {
	if !s.Reachable() {
		return false
	}
	if optimistic {
		return s.Lo <= d
	}
	return s.Hi <= d
}

// groups visits seeds in index order, so members come out ascending and
// groups ordered by their smallest member.
func groups(seeds []Seed, u *unionFind) []Group {
	byRoot := make(map[int]int)
	var out []Group
	for i, s := range seeds {
		r := u.find(i)
		k, ok := byRoot[r]
		if !ok {
			k = len(out)
			byRoot[r] = k
			out = append(out, Group{})
		}
		out[k].Members = append(out[k].Members, i)
		out[k].Score += s.Score
	}
	return out
}
