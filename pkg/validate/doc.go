// Package validate runs read-only structural analysis over a built graph.
//
// [Validate] produces a [Report] with six sections:
//
//   - orphaned nodes: nodes with no incident edge
//   - multiple inheritance: sources with more than one extends target
//   - circular dependencies: cycles over extends/implements edges
//   - longest paths: the longest simple paths over all edges, capped at
//     [DefaultMaxPathNodes] nodes each
//   - connectivity: the most and least connected nodes by degree
//   - components: weakly connected components (edges taken as undirected)
//
// A graph is valid when it has no multiple inheritance and no cycles.
// Orphans and disconnected components are advisory.
//
// Every traversal uses an explicit stack, so deep graphs cannot exhaust the
// goroutine stack. Iteration follows graph insertion order, which makes the
// report deterministic for a given build.
package validate
