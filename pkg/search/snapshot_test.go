package search

import (
	"bytes"
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/matzehuels/distindex/internal/testgraph"
	"github.com/matzehuels/distindex/pkg/distance"
	"github.com/matzehuels/distindex/pkg/vgraph"
)

func TestSearch_LoadedIndex(t *testing.T) {
	ctx := context.Background()
	graphs := []struct {
		name string
		g    *vgraph.Graph
	}{
		{"nested bubble", testgraph.NestedBubble()},
		{"loop", testgraph.Loop()},
		{"inversion", testgraph.Inversion()},
		{"random", testgraph.Random(7, 12, 6)},
	}
	for _, gg := range graphs {
		t.Run(gg.name, func(t *testing.T) {
			ix, err := distance.Build(ctx, gg.g)
			if err != nil {
				t.Fatalf("Build() error: %v", err)
			}
			var buf bytes.Buffer
			if err := ix.Save(&buf); err != nil {
				t.Fatalf("Save() error: %v", err)
			}
			loaded, err := distance.Load(&buf, gg.g)
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}

			opts := []Option{WithMaxStates(5000), WithTimeout(time.Minute)}
			built, reloaded := New(ix, opts...), New(loaded, opts...)
			for _, n := range gg.g.Nodes() {
				for _, dir := range []vgraph.Direction{vgraph.Forward, vgraph.Backward} {
					for target := int64(0); target <= 30; target += 3 {
						req := Request{Start: vgraph.Pos(n, 0), Direction: dir, Target: target, Tolerance: 1}
						want := built.Search(ctx, req)
						if got := reloaded.Search(ctx, req); !reflect.DeepEqual(got, want) {
							t.Errorf("Search(%s %s %d) after Load = %+v, want %+v", req.Start, dir, target, got, want)
						}
					}
				}
			}
		})
	}
}
