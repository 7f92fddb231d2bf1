// Package vgraph defines the bidirected variation graph model consumed by the
// distance index.
//
// # Overview
//
// A variation graph stores sequence on nodes. Every node has two ends: the
// [Head], where a forward traversal enters, and the [Tail], where it leaves.
// Edges join specific ends, so a single edge can connect a node read forward
// to a node read in reverse. The addressable unit for edges, snarl boundaries
// and traversal is the [Side].
//
// The index never mutates a graph. It only needs the narrow read-only
// capability described by the [Adapter] interface:
//
//	type Adapter interface {
//	    HasNode(id NodeID) bool
//	    Length(id NodeID) int64
//	    FollowEdges(s Side) []Side
//	    Nodes() []NodeID
//	}
//
// FollowEdges returns the sides reached by leaving a node through s. The
// direction of travel is carried by the side itself: leaving node 3 forward
// means following edges from Side{3, Tail}, leaving it in reverse means
// following edges from Side{3, Head}.
//
// # In-Memory Graphs
//
// [Graph] is a simple adapter for tests and small inputs:
//
//	g := vgraph.New()
//	g.AddNode(1, 4)
//	g.AddNode(2, 3)
//	g.AddEdge(vgraph.Side{Node: 1, End: vgraph.Tail}, vgraph.Side{Node: 2, End: vgraph.Head})
//
// Graphs can also be read from JSON with [ReadJSON] or from the segment and
// link records of a GFA file with [ReadGFA].
//
// # Positions
//
// A [Position] is an oriented point on a node: the node, the strand it is
// read on and an offset measured along that strand. Offsets range from zero
// to the node length inclusive, so the position at offset 0 on the forward
// strand sits on the head and the position at the full length sits on the
// tail.
//
// # Identity
//
// [Checksum] hashes the canonical form of any adapter. Persisted indexes are
// tagged with it so they cannot be loaded against a different graph.
package vgraph
