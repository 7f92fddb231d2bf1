// Package pipeline ties graph indexing to snapshot stores.
//
// A [Runner] obtains distance indexes the cheap way when it can: it
// checksums the graph, looks for a snapshot under the derived key and loads
// it, and only builds (and stores) an index when no usable snapshot exists.
// Snapshots that are corrupt, written by another format version or built
// from another graph are logged, deleted and rebuilt.
//
// # Usage
//
//	s, err := config.OpenStore(ctx, cfg.Store)
//	if err != nil {
//	    return err
//	}
//	runner := pipeline.NewRunner(s, nil, logger)
//	defer runner.Close()
//
//	res, err := runner.Index(ctx, g)
//	if err != nil {
//	    return err
//	}
//	d := res.Index.Distance(p, q)
//
// The runner also runs searches and clustering with configured defaults,
// so callers holding a [config.Config] do not wire options themselves:
//
//	runner, err := pipeline.FromConfig(ctx, cfg, logger)
//	groups, err := runner.Cluster(ctx, res.Index, seeds, 150)
package pipeline

import (
	"time"

	"github.com/matzehuels/distindex/pkg/distance"
)

// IndexResult is the outcome of [Runner.Index].
type IndexResult struct {
	Index *distance.Index
	// Key is the store key the snapshot lives under.
	Key string
	// CacheHit reports that the index was loaded rather than built.
	CacheHit bool
	Stats    Stats
}

// Stats records where the time of [Runner.Index] went.
type Stats struct {
	LoadTime  time.Duration
	BuildTime time.Duration
	SaveTime  time.Duration
	// SnapshotBytes is the size of the snapshot read or written.
	SnapshotBytes int
}
