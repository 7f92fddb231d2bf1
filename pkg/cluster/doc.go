// Package cluster groups seeds by transitive proximity on a distance index.
//
// Two seeds join when the distance between them is at most a threshold D;
// groups are the connected components of that relation. Pairwise rows are
// computed concurrently, one goroutine per row up to the worker limit, and
// components are extracted with a union-find.
//
// By default a pair joins only when the upper end of its distance span is
// within D, so inexact distances through complex snarls never merge groups
// that might be far apart. [Optimistic] joins on the lower end instead.
package cluster
