package vgraph_test

import (
	"fmt"
	"os"
	"strings"

	"github.com/matzehuels/distindex/pkg/vgraph"
)

func ExampleWriteJSON() {
	g := vgraph.New()
	_ = g.AddNode(1, 4)
	_ = g.AddNode(2, 3)
	_ = g.Link(1, 2)

	if err := vgraph.WriteJSON(g, os.Stdout); err != nil {
		fmt.Println("Error:", err)
	}
	// Output:
	// {
	//   "nodes": [
	//     {
	//       "id": 1,
	//       "length": 4
	//     },
	//     {
	//       "id": 2,
	//       "length": 3
	//     }
	//   ],
	//   "edges": [
	//     {
	//       "from": {
	//         "node": 1,
	//         "end": "tail"
	//       },
	//       "to": {
	//         "node": 2,
	//         "end": "head"
	//       }
	//     }
	//   ]
	// }
}

func ExampleReadJSON() {
	input := `{
		"nodes": [{"id": 1, "length": 4}, {"id": 2, "length": 3}],
		"edges": [{"from": {"node": 1, "end": "tail"}, "to": {"node": 2, "end": "head"}}]
	}`

	g, err := vgraph.ReadJSON(strings.NewReader(input))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("nodes:", g.NodeCount())
	fmt.Println("edges:", g.EdgeCount())
	fmt.Println("1t ->", g.FollowEdges(vgraph.Side{Node: 1, End: vgraph.Tail}))
	// Output:
	// nodes: 2
	// edges: 1
	// 1t -> [2h]
}
