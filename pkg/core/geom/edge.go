package geom

import "gonum.org/v1/gonum/spatial/r2"

// Edge is a straight connector clipped to its end rectangles.
type Edge struct {
	Source     Point // where the connector leaves the source boundary
	Target     Point // where the connector meets the target boundary
	ArrowStart Point // Target pulled back by the arrowhead length
}

// MakeEdgeBetween clips the centre-to-centre line between source and target
// to their boundaries. The arrowhead length ah is measured back from the
// target boundary.
func MakeEdgeBetween(source, target Rect, ah float64) Edge {
	si, ok := source.RayIntersection(target.Center())
	if !ok {
		si = source.Center()
	}
	ti, ok := target.RayIntersection(source.Center())
	if !ok {
		ti = target.Center()
	}
	d := r2.Sub(ti, si)
	l := r2.Norm(d)
	as := ti
	if l > 0 {
		as = r2.Add(si, r2.Scale((l-ah)/l, d))
	}
	return Edge{Source: si, Target: ti, ArrowStart: as}
}

// MakeEdgeTo returns the end point of a connector running from s to the
// boundary of target, pulled back by the arrowhead length ah.
func MakeEdgeTo(s Point, target Rect, ah float64) Point {
	ti, ok := target.RayIntersection(s)
	if !ok {
		ti = target.Center()
	}
	d := r2.Sub(ti, s)
	l := r2.Norm(d)
	if l == 0 {
		return ti
	}
	return r2.Sub(ti, r2.Scale(ah/l, d))
}
