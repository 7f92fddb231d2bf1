// Package snarl decomposes a bidirected variation graph into its snarl tree.
//
// # Side Graph
//
// All work happens on the [SideGraph]: an undirected weighted graph whose
// vertices are node sides. Every node contributes an edge between its head
// and tail weighing the node length, and every graph edge contributes a
// zero-weight edge between the sides it joins. Node i in ascending
// identifier order owns vertices 2i and 2i+1, so [Flip] is a single XOR.
//
// Building the side graph validates the input. Edges referencing unknown
// nodes or visible from only one of their sides are rejected with a
// [*MalformedGraphError]; so are negative lengths.
//
// # Snarls and Chains
//
// Each connected component is split at its bridges. The resulting bridge
// tree is rooted at a tip and cut into heavy paths. Every path becomes a
// chain: an ordered run of boundary sides where consecutive boundaries are
// joined either by a bridge or by a snarl, the 2-edge-connected region
// between them. Subtrees off a path become tip chains hanging from the
// structure that owns their attachment side.
//
// A snarl's interior is split again into branches between its two
// boundaries, each laid out as a branch chain, which nests snarls inside
// snarls. A snarl that cannot be split this way, or that an oriented walk
// can loop through, is [ClassComplex]: it owns every edge inside it and is
// not decomposed further.
//
// # Arena
//
// The result is a [Tree]: a flat slice of [Structure] records linked by
// [ID]. It holds no pointers and can be serialised as is; [Restore]
// reattaches a decoded arena to its side graph.
//
//	tree, err := snarl.Decompose(g)
//	if err != nil {
//	    return err
//	}
//	for _, root := range tree.Roots {
//	    fmt.Println(tree.At(root).Kind, len(tree.Children(root)))
//	}
package snarl
