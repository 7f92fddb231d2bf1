package cluster_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/distindex/pkg/cluster"
	"github.com/matzehuels/distindex/pkg/distance"
	"github.com/matzehuels/distindex/pkg/vgraph"
)

func ExampleCluster() {
	g := vgraph.New()
	_ = g.AddNode(1, 20)

	ix, err := distance.Build(context.Background(), g)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	seeds := []cluster.Seed{
		{Pos: vgraph.Pos(1, 0), Score: 1},
		{Pos: vgraph.Pos(1, 4), Score: 1},
		{Pos: vgraph.Pos(1, 8), Score: 1},
	}
	for _, d := range []int64{5, 2} {
		groups, _ := cluster.Cluster(context.Background(), seeds, ix, d)
		fmt.Printf("D=%d: %d group(s)\n", d, len(groups))
	}
	// Output:
	// D=5: 1 group(s)
	// D=2: 3 group(s)
}
