// Package build turns extracted records into a dependency graph.
//
// A build runs in two passes. The [Builder] first creates one node per
// declaration, then hands the complete record set to the [Mapper], which
// converts every dependency fact into an edge or a counter:
//
//   - invalid: the source node does not exist
//   - missing: the target node does not exist (external or vendor types)
//   - circular: an extends/implements edge that would close a cycle among
//     the inheritance edges accepted so far
//   - count: the edge was added
//
// The circularity check only looks at edges committed earlier in the same
// build, so its outcome depends on record order. Given "A extends B" and
// "B extends A", whichever comes first is kept and the second is counted as
// circular. Callers that assemble records from several sources should merge
// them canonically first (see source.Merge).
//
// Nothing in this package fails on malformed input. Dangling references,
// cycles and duplicate declarations all end up in [Stats].
package build
