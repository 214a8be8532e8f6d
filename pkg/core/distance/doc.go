// Package distance computes the ideal pairwise distances the stress
// optimiser works towards.
//
// [Matrix] runs all-pairs shortest paths over the undirected link graph,
// weighting each link by its length. Pairs in different connected
// components get a finite distance derived from the graph diameter, so the
// optimiser never sees an infinite target.
//
// [SymmetricDiffLengths] and [JaccardLengths] derive per-link lengths from
// how much the neighbourhoods of a link's endpoints differ. Links between
// nodes with very different neighbours get longer, which spreads out
// loosely related parts of the graph.
package distance
