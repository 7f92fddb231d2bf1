// Package distance implements the hierarchical distance index.
//
// # Overview
//
// [Build] decomposes a graph into its snarl tree and computes three kinds of
// tables over it:
//
//   - Snarl tables: for every snarl, the distances between the states at
//     its two boundaries inside the snarl and over the whole graph
//   - Chain tables: prefix sums along every chain, so the distance between
//     two boundaries of the same chain is a subtraction
//   - The Bound Table: conservative estimates where exact tables do not
//     reach, namely inside complex snarls, towards tips, and for walks that
//     can run through cycles
//
// Query results are [Span] intervals. A span whose ends meet is exact; a
// span with a gap is never reported as exact.
//
// # Queries
//
// [Index.Distance] locates the structures owning both positions and walks
// them up to their lowest common ancestor, composing table entries on the
// way. The distance is the length of the shortest walk between the two
// points. A walk crosses each node it enters and leaves over a link, so the
// two alleles of a bubble are not joined by one even though their sides
// touch. [Index.Distance] takes the shorter of both reading directions at
// each end, so it is symmetric, zero for a position and itself, and
// satisfies the triangle inequality wherever it is exact.
// [Index.OrientedRange] keeps the strands of both positions. Positions in
// different connected components are [Unreachable].
//
// The lower end of every query span is the distance in the side graph,
// which lets a route follow two links in a row. The upper end is the
// shortest walk the tables compose. The query is exact when they meet.
//
//	ix, err := distance.Build(ctx, g)
//	if err != nil {
//	    return err
//	}
//	d := ix.Distance(vgraph.Pos(1, 0), vgraph.Pos(4, 2))
//	if !ix.IsExact(vgraph.Pos(1, 0), vgraph.Pos(4, 2)) {
//	    // d is an upper estimate
//	}
//
// An index is immutable; queries never lock and may run from any number of
// goroutines.
//
// # Persistence
//
// [Index.Save] writes a JSON snapshot tagged with [FormatVersion] and the
// graph checksum, and [Load] reads it back against the same graph. Loading
// against another graph fails with [*GraphMismatchError]; loading a snapshot
// of another format fails with [*VersionMismatchError]. Both are recovered
// from by rebuilding.
package distance
