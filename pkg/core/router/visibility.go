package router

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/cola/pkg/core/geom"
)

var (
	// ErrNoRoute is returned when a route is asked for between an obstacle
	// and itself, for an obstacle that does not exist, or when the
	// obstacles wall the target off.
	ErrNoRoute = errors.New("router: no route")

	// ErrBadMargin is returned for a negative margin.
	ErrBadMargin = errors.New("router: margin must be non-negative")
)

// VisibilityGraph is the visibility graph of a fixed set of obstacles. It is
// not safe for concurrent use.
type VisibilityGraph struct {
	obstacles []geom.Rect
	margin    float64
	vertices  []geom.Point
	g         *simple.WeightedUndirectedGraph
}

// NewVisibilityGraph builds the visibility graph of obstacles with corners
// pushed out diagonally by up to margin. A corner whose neighbour leaves
// less room is pushed only as far as the free space allows, so tightly
// packed obstacles keep their corners.
func NewVisibilityGraph(obstacles []geom.Rect, margin float64) (*VisibilityGraph, error) {
	if margin < 0 {
		return nil, ErrBadMargin
	}
	vg := &VisibilityGraph{
		obstacles: append([]geom.Rect(nil), obstacles...),
		margin:    margin,
		g:         simple.NewWeightedUndirectedGraph(0, math.Inf(1)),
	}
	for _, r := range obstacles {
		for k, c := range r.Corners() {
			if p, ok := vg.clearCorner(c, cornerDirs[k]); ok {
				vg.vertices = append(vg.vertices, p)
			}
		}
	}
	for i := range vg.vertices {
		vg.g.AddNode(simple.Node(i))
	}
	for i := 0; i < len(vg.vertices); i++ {
		for j := i + 1; j < len(vg.vertices); j++ {
			vg.connect(int64(i), vg.vertices[i], int64(j), vg.vertices[j], -1, -1)
		}
	}
	return vg, nil
}

// cornerDirs are the outward diagonals of the corners in the order
// returned by geom.Rect.Corners.
var cornerDirs = [4]geom.Point{{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1}}

// clearCorner moves corner c along d by the largest clearance in
// [0, margin] that does not land strictly inside an obstacle. It reports
// false when even the corner itself is covered.
func (vg *VisibilityGraph) clearCorner(c, d geom.Point) (geom.Point, bool) {
	// Along the ray c + m*d each obstacle covers an open interval of m.
	type span struct{ lo, hi float64 }
	along := func(p, dir, lo, hi float64) (float64, float64) {
		if dir > 0 {
			return lo - p, hi - p
		}
		return p - hi, p - lo
	}
	var spans []span
	cands := []float64{vg.margin}
	for _, r := range vg.obstacles {
		xl, xh := along(c.X, d.X, r.MinX, r.MaxX)
		yl, yh := along(c.Y, d.Y, r.MinY, r.MaxY)
		lo, hi := math.Max(xl, yl), math.Min(xh, yh)
		if lo >= hi || hi <= 0 || lo >= vg.margin {
			continue
		}
		spans = append(spans, span{lo, hi})
		if lo >= 0 {
			cands = append(cands, lo)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(cands)))
next:
	for _, m := range cands {
		for _, s := range spans {
			if m > s.lo && m < s.hi {
				continue next
			}
		}
		return r2.Add(c, r2.Scale(m, d)), true
	}
	return geom.Point{}, false
}

// visible reports whether segment a–b avoids every obstacle other than
// skipA and skipB.
func (vg *VisibilityGraph) visible(a, b geom.Point, skipA, skipB int) bool {
	for k, r := range vg.obstacles {
		if k == skipA || k == skipB {
			continue
		}
		if geom.SegmentCrossesInterior(a, b, r) {
			return false
		}
	}
	return true
}

func (vg *VisibilityGraph) connect(u int64, a geom.Point, v int64, b geom.Point, skipA, skipB int) {
	if a == b || !vg.visible(a, b, skipA, skipB) {
		return
	}
	w := r2.Norm(r2.Sub(b, a))
	vg.g.SetWeightedEdge(vg.g.NewWeightedEdge(simple.Node(u), simple.Node(v), w))
}

// Vertices returns the graph's vertices. Ports are never included.
func (vg *VisibilityGraph) Vertices() []geom.Point {
	return append([]geom.Point(nil), vg.vertices...)
}

// EdgeCount returns the number of visibility segments.
func (vg *VisibilityGraph) EdgeCount() int {
	return vg.g.Edges().Len()
}

// Margin returns the corner margin the graph was built with.
func (vg *VisibilityGraph) Margin() float64 { return vg.margin }

// Route returns a polyline from the boundary of obstacle src to the
// boundary of obstacle dst, shortened by arrowHead at the end.
func (vg *VisibilityGraph) Route(src, dst int, arrowHead float64) ([]geom.Point, error) {
	n := len(vg.obstacles)
	if src < 0 || src >= n || dst < 0 || dst >= n || src == dst {
		return nil, fmt.Errorf("%w: %d -> %d", ErrNoRoute, src, dst)
	}
	sr, tr := vg.obstacles[src], vg.obstacles[dst]
	s, t := sr.Center(), tr.Center()

	straight := func() []geom.Point {
		e := geom.MakeEdgeBetween(sr, tr, arrowHead)
		return []geom.Point{e.Source, e.ArrowStart}
	}
	if vg.visible(s, t, src, dst) {
		return straight(), nil
	}

	sid, tid := int64(len(vg.vertices)), int64(len(vg.vertices)+1)
	vg.g.AddNode(simple.Node(sid))
	vg.g.AddNode(simple.Node(tid))
	defer func() {
		vg.g.RemoveNode(sid)
		vg.g.RemoveNode(tid)
	}()
	for i, p := range vg.vertices {
		vg.connect(sid, s, int64(i), p, src, -1)
		vg.connect(tid, t, int64(i), p, dst, -1)
	}

	nodes, _ := path.DijkstraFrom(simple.Node(sid), ordered{vg.g}).To(tid)
	if len(nodes) < 3 {
		return nil, fmt.Errorf("%w: no visibility path %d -> %d", ErrNoRoute, src, dst)
	}
	mid := make([]geom.Point, 0, len(nodes)-2)
	for _, nd := range nodes[1 : len(nodes)-1] {
		mid = append(mid, vg.vertices[nd.ID()])
	}
	start, ok := sr.RayIntersection(mid[0])
	if !ok {
		start = s
	}
	route := append([]geom.Point{start}, mid...)
	return append(route, geom.MakeEdgeTo(mid[len(mid)-1], tr, arrowHead)), nil
}

// ordered presents the graph with nodes in ascending id order so that
// shortest path ties resolve the same way on every run.
type ordered struct {
	*simple.WeightedUndirectedGraph
}

func sortedNodes(it graph.Nodes) graph.Nodes {
	ns := graph.NodesOf(it)
	sort.Slice(ns, func(i, j int) bool { return ns[i].ID() < ns[j].ID() })
	return iterator.NewOrderedNodes(ns)
}

func (g ordered) Nodes() graph.Nodes { return sortedNodes(g.WeightedUndirectedGraph.Nodes()) }
func (g ordered) From(id int64) graph.Nodes { return sortedNodes(g.WeightedUndirectedGraph.From(id)) }
