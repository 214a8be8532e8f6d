package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point is a position in the layout plane.
type Point = r2.Vec

// Rect is an axis-aligned rectangle.
type Rect struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// EmptyRect returns a rectangle that acts as the identity for [Rect.Union].
func EmptyRect() Rect {
	return Rect{
		MinX: math.Inf(1), MaxX: math.Inf(-1),
		MinY: math.Inf(1), MaxY: math.Inf(-1),
	}
}

// Centered returns a w×h rectangle centred on (cx, cy).
func Centered(cx, cy, w, h float64) Rect {
	return Rect{MinX: cx - w/2, MaxX: cx + w/2, MinY: cy - h/2, MaxY: cy + h/2}
}

// IsEmpty reports whether r has no extent on some axis.
func (r Rect) IsEmpty() bool { return r.MinX > r.MaxX || r.MinY > r.MaxY }

func (r Rect) CX() float64     { return (r.MinX + r.MaxX) / 2 }
func (r Rect) CY() float64     { return (r.MinY + r.MaxY) / 2 }
func (r Rect) Width() float64  { return r.MaxX - r.MinX }
func (r Rect) Height() float64 { return r.MaxY - r.MinY }
func (r Rect) Center() Point   { return Point{X: r.CX(), Y: r.CY()} }

// OverlapX returns how far r and o intrude into each other horizontally,
// or 0 when they are disjoint on that axis.
func (r Rect) OverlapX(o Rect) float64 {
	ux, vx := r.CX(), o.CX()
	if ux <= vx && o.MinX < r.MaxX {
		return r.MaxX - o.MinX
	}
	if vx <= ux && r.MinX < o.MaxX {
		return o.MaxX - r.MinX
	}
	return 0
}

// OverlapY is the vertical counterpart of [Rect.OverlapX].
func (r Rect) OverlapY(o Rect) float64 {
	uy, vy := r.CY(), o.CY()
	if uy <= vy && o.MinY < r.MaxY {
		return r.MaxY - o.MinY
	}
	if vy <= uy && r.MinY < o.MaxY {
		return o.MaxY - r.MinY
	}
	return 0
}

// Overlaps reports whether the open interiors of r and o intersect.
func (r Rect) Overlaps(o Rect) bool {
	return r.OverlapX(o) > 0 && r.OverlapY(o) > 0
}

// WithCX returns r translated so its horizontal centre is cx.
func (r Rect) WithCX(cx float64) Rect {
	d := cx - r.CX()
	r.MinX += d
	r.MaxX += d
	return r
}

// WithCY returns r translated so its vertical centre is cy.
func (r Rect) WithCY(cy float64) Rect {
	d := cy - r.CY()
	r.MinY += d
	r.MaxY += d
	return r
}

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{MinX: r.MinX + dx, MaxX: r.MaxX + dx, MinY: r.MinY + dy, MaxY: r.MaxY + dy}
}

// Union returns the smallest rectangle containing r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		MinX: math.Min(r.MinX, o.MinX), MaxX: math.Max(r.MaxX, o.MaxX),
		MinY: math.Min(r.MinY, o.MinY), MaxY: math.Max(r.MaxY, o.MaxY),
	}
}

// Inflate grows r by pad on every side. Negative pad shrinks it.
func (r Rect) Inflate(pad float64) Rect {
	return Rect{MinX: r.MinX - pad, MaxX: r.MaxX + pad, MinY: r.MinY - pad, MaxY: r.MaxY + pad}
}

// Contains reports whether p lies strictly inside r.
func (r Rect) Contains(p Point) bool {
	return p.X > r.MinX && p.X < r.MaxX && p.Y > r.MinY && p.Y < r.MaxY
}

// Corners returns the four corners of r in clockwise order starting at
// (MinX, MinY).
func (r Rect) Corners() [4]Point {
	return [4]Point{
		{X: r.MinX, Y: r.MinY},
		{X: r.MaxX, Y: r.MinY},
		{X: r.MaxX, Y: r.MaxY},
		{X: r.MinX, Y: r.MaxY},
	}
}

// LineIntersections returns the points where segment a–b crosses the sides
// of r, in side order (top, right, bottom, left).
func (r Rect) LineIntersections(a, b Point) []Point {
	c := r.Corners()
	var out []Point
	for i := range c {
		if p, ok := SegmentIntersection(a, b, c[i], c[(i+1)%4]); ok {
			out = append(out, p)
		}
	}
	return out
}

// RayIntersection returns where the ray from the centre of r towards p
// leaves r. ok is false when p lies inside r.
func (r Rect) RayIntersection(p Point) (Point, bool) {
	ints := r.LineIntersections(r.Center(), p)
	if len(ints) == 0 {
		return Point{}, false
	}
	return ints[0], true
}

// SegmentIntersection returns the intersection of the closed segments a1–a2
// and b1–b2. Parallel segments never intersect.
func SegmentIntersection(a1, a2, b1, b2 Point) (Point, bool) {
	da := r2.Sub(a2, a1)
	db := r2.Sub(b2, b1)
	denom := db.Y*da.X - db.X*da.Y
	if denom == 0 {
		return Point{}, false
	}
	d := r2.Sub(a1, b1)
	ua := (db.X*d.Y - db.Y*d.X) / denom
	ub := (da.X*d.Y - da.Y*d.X) / denom
	if ua < 0 || ua > 1 || ub < 0 || ub > 1 {
		return Point{}, false
	}
	return r2.Add(a1, r2.Scale(ua, da)), true
}

// interiorEps shrinks rectangles before clipping so that grazing contact
// along a side or through a corner is not reported as a crossing.
const interiorEps = 1e-9

// SegmentCrossesInterior reports whether any part of segment a–b of
// positive length lies in the open interior of r.
func SegmentCrossesInterior(a, b Point, r Rect) bool {
	r = r.Inflate(-interiorEps)
	if r.IsEmpty() {
		return false
	}
	d := r2.Sub(b, a)
	t0, t1 := 0.0, 1.0
	clip := func(p, q float64) bool {
		if p == 0 {
			return q > 0
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return false
			}
			t0 = math.Max(t0, t)
		} else {
			if t < t0 {
				return false
			}
			t1 = math.Min(t1, t)
		}
		return true
	}
	if !clip(-d.X, a.X-r.MinX) || !clip(d.X, r.MaxX-a.X) ||
		!clip(-d.Y, a.Y-r.MinY) || !clip(d.Y, r.MaxY-a.Y) {
		return false
	}
	return t1 > t0 || (d == Point{} && r.Contains(a))
}
