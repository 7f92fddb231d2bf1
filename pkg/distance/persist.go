package distance

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/distindex/pkg/errors"
	"github.com/matzehuels/distindex/pkg/observability"
	"github.com/matzehuels/distindex/pkg/snarl"
	"github.com/matzehuels/distindex/pkg/vgraph"
)

// FormatVersion is the snapshot format written by [Index.Save]. [Load]
// refuses any other version.
const FormatVersion = 2

// header is decoded before the rest of a snapshot so that a version
// mismatch is reported even when the remaining layout has changed.
type header struct {
	Format   int    `json:"format"`
	Checksum string `json:"checksum"`
}

type snapshot struct {
	header
	BuildID  uuid.UUID     `json:"build_id"`
	Producer string        `json:"producer"`
	Tree     *snarl.Tree   `json:"tree"`
	Chains   []*ChainTable `json:"chains"`
	Snarls   []*SnarlTable `json:"snarls"`
	Bounds   *BoundTable   `json:"bounds"`
	Stats    snapshotStats `json:"stats"`
}

type snapshotStats struct {
	BuildTime time.Duration `json:"build_time"`
}

// Save writes the index as a JSON snapshot tagged with [FormatVersion] and
// the graph checksum.
func (ix *Index) Save(w io.Writer) error {
	snap := snapshot{
		header:   header{Format: FormatVersion, Checksum: ix.checksum},
		BuildID:  ix.buildID,
		Producer: ix.producer,
		Tree:     ix.tree,
		Chains:   ix.chains,
		Snarls:   ix.snarls,
		Bounds:   ix.bounds,
		Stats:    snapshotStats{BuildTime: ix.stats.BuildTime},
	}
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode snapshot")
	}
	return nil
}

// Load reads a snapshot written by [Index.Save] and reattaches it to g.
// It fails with a [*VersionMismatchError] when the snapshot format differs
// and with a [*GraphMismatchError] when g is not the graph the snapshot was
// built from. A snapshot that cannot be decoded yields a CORRUPT_SNAPSHOT
// error.
func Load(r io.Reader, g vgraph.Adapter, opts ...Option) (ix *Index, err error) {
	o := applyOptions(opts)
	defer func() {
		observability.Index().OnLoad(context.Background(), err)
	}()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "read snapshot")
	}
	var h header
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCorruptSnapshot, err, "decode snapshot header")
	}
	if h.Format != FormatVersion {
		return nil, &VersionMismatchError{Got: h.Format, Want: FormatVersion}
	}
	if sum := vgraph.Checksum(g); sum != h.Checksum {
		return nil, &GraphMismatchError{Got: sum, Want: h.Checksum}
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCorruptSnapshot, err, "decode snapshot")
	}
	sg, err := snarl.NewSideGraph(g)
	if err != nil {
		return nil, err
	}
	if err := snap.validate(sg); err != nil {
		return nil, err
	}

	tree := snarl.Restore(sg, snap.Tree.Structures, snap.Tree.Roots, snap.Tree.Owner)
	for id, c := range snap.Chains {
		if c != nil {
			c.reindex(tree.At(snarl.ID(id)))
		}
	}
	ix = &Index{
		tables:   tables{tree: tree, chains: snap.Chains, snarls: snap.Snarls},
		sides:    sg,
		bounds:   snap.Bounds,
		checksum: h.Checksum,
		buildID:  snap.BuildID,
		producer: snap.Producer,
	}
	ix.stats = ix.summarise()
	ix.stats.BuildTime = snap.Stats.BuildTime
	o.logger.Debug("loaded distance index", "build", ix.buildID, "producer", ix.producer, "nodes", ix.stats.Nodes)
	return ix, nil
}

// validate checks that the table shapes and every index stored in the tree
// match the graph, so a truncated or hand-edited snapshot cannot cause out
// of range lookups or endless walks up the tree.
func (s *snapshot) validate(sg *snarl.SideGraph) error {
	corrupt := func(what string) error {
		return errors.New(errors.ErrCodeCorruptSnapshot, "snapshot %s does not match the graph", what)
	}
	if s.Tree == nil || s.Bounds == nil {
		return errors.New(errors.ErrCodeCorruptSnapshot, "snapshot is missing sections")
	}
	n := len(s.Tree.Structures)
	if len(s.Chains) != n || len(s.Snarls) != n {
		return corrupt("table count")
	}
	if len(s.Tree.Owner) != len(sg.Nodes) {
		return corrupt("owner table")
	}
	if len(s.Bounds.Tip) != sg.VertexCount() || len(s.Bounds.Reach) != sg.VertexCount() {
		return corrupt("bound table")
	}

	inTree := func(id snarl.ID) bool { return id >= 0 && int(id) < n }
	sides := func(vs []int32) bool {
		for _, v := range vs {
			if v < 0 || int(v) >= sg.VertexCount() {
				return false
			}
		}
		return true
	}
	edge := func(e int32) bool { return e >= 0 && int(e) < len(sg.Edges) }

	for _, o := range s.Tree.Owner {
		if !inTree(o) {
			return corrupt("owner table")
		}
	}
	for _, r := range s.Tree.Roots {
		if !inTree(r) || s.Tree.Structures[r].Parent != snarl.None {
			return corrupt("roots")
		}
	}
	for i := range s.Tree.Structures {
		st := &s.Tree.Structures[i]
		if st.Parent == snarl.None {
			if st.Depth != 0 {
				return corrupt("structure depth")
			}
		} else if !inTree(st.Parent) || s.Tree.Structures[st.Parent].Depth != st.Depth-1 {
			return corrupt("structure parent")
		}
		for _, c := range st.Children {
			if !inTree(c) || s.Tree.Structures[c].Parent != snarl.ID(i) {
				return corrupt("structure children")
			}
		}
		if !sides(st.Ports) || !sides(st.Boundaries) || !sides(st.Vertices) {
			return corrupt("structure sides")
		}
		for _, e := range st.Direct {
			if !edge(e) {
				return corrupt("structure edges")
			}
		}

		switch st.Kind {
		case snarl.KindChain:
			c := s.Chains[i]
			k := len(st.Boundaries)
			if c == nil || s.Snarls[i] != nil || k == 0 || len(st.Links) != k-1 || len(st.Ports) > 2 {
				return corrupt("chain table")
			}
			if len(c.Offsets) != k || len(c.Walk) != k || len(c.Blocked) != k {
				return corrupt("chain table")
			}
			for _, l := range st.Links {
				switch {
				case l.IsSnarl():
					if !inTree(l.Snarl) || s.Tree.Structures[l.Snarl].Kind != snarl.KindSnarl {
						return corrupt("chain links")
					}
				case !edge(l.Edge):
					return corrupt("chain links")
				}
			}
		case snarl.KindSnarl:
			if s.Snarls[i] == nil || s.Chains[i] != nil || len(st.Ports) != 2 {
				return corrupt("snarl table")
			}
		default:
			return corrupt("structure kind")
		}
	}
	return nil
}
