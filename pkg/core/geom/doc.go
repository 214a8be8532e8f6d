// Package geom provides the axis-aligned rectangle and point primitives
// shared by the layout, overlap and routing packages.
//
// # Rectangles
//
// A [Rect] is stored as its extent on both axes (MinX, MaxX, MinY, MaxY).
// The overlap helpers [Rect.OverlapX] and [Rect.OverlapY] return how far two
// rectangles intrude into each other along one axis and are the basis for
// the sweep-line constraint generator in package vpsc.
//
// # Edges
//
// [MakeEdgeBetween] and [MakeEdgeTo] clip a straight connector to the
// boundaries of its end rectangles and shorten it to leave room for an
// arrowhead. [SegmentCrossesInterior] decides whether a segment passes
// through the open interior of a rectangle; touching an edge or a corner
// does not count, which is what the visibility graph relies on.
//
// Points are gonum r2 vectors, so the usual vector helpers (r2.Add,
// r2.Sub, r2.Norm) apply directly.
package geom
