package pipeline

import (
	"bytes"
	"context"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/distindex/internal/logging"
	"github.com/matzehuels/distindex/pkg/cluster"
	"github.com/matzehuels/distindex/pkg/config"
	"github.com/matzehuels/distindex/pkg/distance"
	"github.com/matzehuels/distindex/pkg/errors"
	"github.com/matzehuels/distindex/pkg/search"
	"github.com/matzehuels/distindex/pkg/store"
	"github.com/matzehuels/distindex/pkg/vgraph"
)

// Runner encapsulates index construction with snapshot storage.
//
// The Runner is stateless except for the store and logger; it doesn't keep
// indexes. Multiple goroutines can safely use the same Runner.
type Runner struct {
	Store  store.Store
	Keyer  store.Keyer
	Logger *log.Logger

	// TTL is the lifetime of written snapshots; zero keeps them forever.
	TTL time.Duration
	// Rebuild skips snapshot lookups; fresh indexes are still stored.
	Rebuild bool

	// SearchOptions and ClusterOptions are applied by [Runner.Search] and
	// [Runner.Cluster] before any per-call options.
	SearchOptions  []search.Option
	ClusterOptions []cluster.Option
}

// NewRunner creates a runner with the given store and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If s is nil, a NullStore is used (storage disabled).
func NewRunner(s store.Store, keyer store.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = store.NewDefaultKeyer()
	}
	if s == nil {
		s = store.NewNullStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Store:  s,
		Keyer:  keyer,
		Logger: logger,
	}
}

// FromConfig opens the configured store and creates a runner carrying the
// configured search and cluster defaults. A nil logger falls back to the one
// attached to ctx, then to a stderr logger at the configured level.
func FromConfig(ctx context.Context, cfg config.Config, logger *log.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.FromContext(ctx)
	}
	if logger == log.Default() {
		level, _ := logging.ParseLevel(cfg.Log.Level)
		logger = logging.New(os.Stderr, level)
	}
	s, err := config.OpenStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	var keyer store.Keyer
	if cfg.Index.KeyPrefix != "" {
		keyer = store.NewScopedKeyer(nil, cfg.Index.KeyPrefix)
	}
	r := NewRunner(s, keyer, logger)
	r.TTL = cfg.Store.TTL
	r.Rebuild = cfg.Index.Rebuild
	r.SearchOptions = cfg.SearchOptions()
	r.ClusterOptions = []cluster.Option{cluster.WithWorkers(cfg.Cluster.Workers)}
	if cfg.Cluster.Optimistic {
		r.ClusterOptions = append(r.ClusterOptions, cluster.Optimistic())
	}
	return r, nil
}

// Index returns the distance index of g, loading a stored snapshot when one
// fits and building and storing one otherwise.
//
// Store failures never fail the call: a failed lookup falls back to a build
// and a failed write only loses the snapshot. Malformed graphs and
// cancellation are returned as errors.
func (r *Runner) Index(ctx context.Context, g vgraph.Adapter) (*IndexResult, error) {
	key := r.Keyer.SnapshotKey(vgraph.Checksum(g), distance.FormatVersion)
	res := &IndexResult{Key: key}

	if !r.Rebuild {
		if ix, ok, err := r.load(ctx, g, res); err != nil {
			return nil, err
		} else if ok {
			res.Index, res.CacheHit = ix, true
			return res, nil
		}
	}

	buildStart := time.Now()
	ix, err := distance.Build(ctx, g, distance.WithLogger(r.Logger))
	if err != nil {
		return nil, err
	}
	res.Index = ix
	res.Stats.BuildTime = time.Since(buildStart)
	r.Logger.Info("built distance index",
		"nodes", ix.Stats().Nodes,
		"snarls", ix.Stats().Tree.Snarls,
		"complex", ix.Stats().Tree.Complex,
		"duration", res.Stats.BuildTime)

	saveStart := time.Now()
	var buf bytes.Buffer
	if err := ix.Save(&buf); err != nil {
		return nil, err
	}
	if err := r.Store.Set(ctx, key, buf.Bytes(), r.TTL); err != nil {
		r.Logger.Warn("could not store snapshot", "key", key, "err", err)
	} else {
		res.Stats.SnapshotBytes = buf.Len()
	}
	res.Stats.SaveTime = time.Since(saveStart)
	return res, nil
}

// load tries the stored snapshot. It reports ok == false when the caller
// should build, and an error only when building cannot succeed either.
func (r *Runner) load(ctx context.Context, g vgraph.Adapter, res *IndexResult) (*distance.Index, bool, error) {
	start := time.Now()
	data, hit, err := r.Store.Get(ctx, res.Key)
	if err != nil {
		r.Logger.Warn("snapshot lookup failed", "key", res.Key, "err", err)
		return nil, false, nil
	}
	if !hit {
		return nil, false, nil
	}

	ix, err := distance.Load(bytes.NewReader(data), g, distance.WithLogger(r.Logger))
	if err != nil {
		if errors.Is(err, errors.ErrCodeMalformedGraph) {
			return nil, false, err
		}
		r.Logger.Warn("discarding unusable snapshot", "key", res.Key, "code", errors.GetCode(err), "err", err)
		if err := r.Store.Delete(ctx, res.Key); err != nil {
			r.Logger.Warn("could not delete snapshot", "key", res.Key, "err", err)
		}
		return nil, false, nil
	}
	res.Stats.LoadTime = time.Since(start)
	res.Stats.SnapshotBytes = len(data)
	r.Logger.Info("loaded distance index",
		"build", ix.BuildID(),
		"producer", ix.Producer(),
		"bytes", len(data),
		"duration", res.Stats.LoadTime)
	return ix, true, nil
}

// Search runs a target-value search with the runner's search defaults.
func (r *Runner) Search(ctx context.Context, ix *distance.Index, req search.Request, opts ...search.Option) search.Result {
	all := append([]search.Option{search.WithLogger(r.Logger)}, r.SearchOptions...)
	res := search.New(ix, append(all, opts...)...).Search(ctx, req)
	r.Logger.Debug("searched",
		"start", req.Start,
		"target", req.Target,
		"tolerance", req.Tolerance,
		"outcome", res.Outcome,
		"explored", res.Explored)
	return res
}

// Cluster groups seeds with the runner's cluster defaults.
func (r *Runner) Cluster(ctx context.Context, ix *distance.Index, seeds []cluster.Seed, d int64, opts ...cluster.Option) ([]cluster.Group, error) {
	progress := logging.NewProgress(r.Logger)
	all := append(append([]cluster.Option{}, r.ClusterOptions...), opts...)
	groups, err := cluster.Cluster(ctx, seeds, ix, d, all...)
	if err != nil {
		return nil, err
	}
	progress.Done("clustered seeds", "seeds", len(seeds), "groups", len(groups), "threshold", d)
	return groups, nil
}

// Close releases resources held by the runner (primarily the store).
func (r *Runner) Close() error {
	if r.Store != nil {
		return r.Store.Close()
	}
	return nil
}
