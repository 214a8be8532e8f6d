// Package powergraph compresses a graph by grouping nodes that share
// neighbours.
//
// # Overview
//
// A power graph replaces a bundle of links that all run between the same
// sets of nodes with a single power edge between two groups. The builder
// works greedily: starting from one module per node, it repeatedly merges
// the pair of top-level modules whose union removes the most links, as
// long as the merge strictly lowers the total edge count. Merged modules
// nest, so the result is a forest of groups.
//
// Links of different types are never bundled together.
//
// # Predefined groups
//
// A caller may pass an existing hierarchy. Its groups are kept as they
// are and merging happens only among siblings inside each of them.
//
// # Determinism
//
// Modules are always visited in ascending id order and ties between
// equally good merges go to the pair enumerated first, so the same input
// always yields the same groups.
package powergraph
