// Package router routes edges around node rectangles.
//
// A [VisibilityGraph] is built once for a set of obstacles. Its vertices
// are the corners of every obstacle pushed diagonally outward by up to a
// margin, less where a neighbour is closer than that; two
// vertices are joined when the straight segment between them stays out of
// every obstacle's interior. Segments are weighted by their length.
//
// [VisibilityGraph.Route] adds the centres of the source and target
// obstacles as temporary ports, finds the shortest path between them and
// clips the result to the obstacle boundaries, leaving room for an
// arrowhead at the target end. When the target is directly visible the
// route is the straight centre-to-centre connector. When no path exists
// Route returns [ErrNoRoute].
//
// Obstacles are expected not to overlap. The graph must be rebuilt
// whenever an obstacle moves.
package router
