package layout

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/cola/pkg/core/geom"
)

// pack lays the connected components out in shelves, largest first,
// separated by DefaultNodeSize. Components are only translated. With
// center set the packing is centred on the canvas; otherwise it keeps the
// top left corner of the unpacked drawing.
//
// Components joined by a user constraint move as one. Packing is skipped
// for layouts with groups, fixed nodes or a caller supplied distance
// matrix.
func (l *Layout) pack(center bool) {
	if !l.cfg.HandleDisconnected || l.dist == nil || len(l.graph.Groups) > 0 {
		return
	}
	for _, nd := range l.graph.Nodes {
		if nd.Fixed {
			return
		}
	}
	comps := l.packComponents()
	if len(comps) < 2 && !center {
		return
	}

	x, y := l.descent.X[0], l.descent.X[1]
	boxes := make([]geom.Rect, len(comps))
	all := geom.EmptyRect()
	for ci, c := range comps {
		b := geom.EmptyRect()
		for _, i := range c {
			b = b.Union(geom.Centered(x[i], y[i], l.packWidth(i), l.packHeight(i)))
		}
		boxes[ci] = b
		all = all.Union(b)
	}

	gap := l.cfg.DefaultNodeSize
	order := make([]int, len(comps))
	area, widest := 0.0, 0.0
	for i, b := range boxes {
		order[i] = i
		area += (b.Width() + gap) * (b.Height() + gap)
		widest = math.Max(widest, b.Width())
	}
	sort.SliceStable(order, func(a, b int) bool {
		return boxes[order[a]].Height() > boxes[order[b]].Height()
	})
	rowWidth := math.Max(math.Sqrt(area), widest)

	slots := make([]geom.Point, len(comps))
	packed := geom.EmptyRect()
	var cursor geom.Point
	rowHeight := 0.0
	for _, ci := range order {
		b := boxes[ci]
		if cursor.X > 0 && cursor.X+b.Width() > rowWidth {
			cursor = geom.Point{Y: cursor.Y + rowHeight + gap}
			rowHeight = 0
		}
		slots[ci] = cursor
		packed = packed.Union(geom.Rect{MinX: cursor.X, MaxX: cursor.X + b.Width(), MinY: cursor.Y, MaxY: cursor.Y + b.Height()})
		cursor.X += b.Width() + gap
		rowHeight = math.Max(rowHeight, b.Height())
	}

	origin := geom.Point{X: all.MinX, Y: all.MinY}
	if center {
		canvas := geom.Point{X: l.cfg.CanvasWidth / 2, Y: l.cfg.CanvasHeight / 2}
		origin = r2.Sub(canvas, r2.Scale(0.5, geom.Point{X: packed.Width(), Y: packed.Height()}))
	}
	for ci, c := range comps {
		d := r2.Sub(r2.Add(origin, slots[ci]), geom.Point{X: boxes[ci].MinX, Y: boxes[ci].MinY})
		for _, i := range c {
			x[i] += d.X
			y[i] += d.Y
		}
	}
}

// packComponents merges the connected components that share a user
// constraint, so that translating them keeps the constraint satisfied.
func (l *Layout) packComponents() [][]int {
	comps := l.dist.Components
	if len(comps) < 2 || len(l.graph.Constraints) == 0 {
		return comps
	}
	g := simple.NewUndirectedGraph()
	for ci := range comps {
		g.AddNode(simple.Node(ci))
	}
	join := func(i, j int) {
		a, b := l.dist.ComponentOf[i], l.dist.ComponentOf[j]
		if a != b && !g.HasEdgeBetween(int64(a), int64(b)) {
			g.SetEdge(simple.Edge{F: simple.Node(a), T: simple.Node(b)})
		}
	}
	for _, c := range l.graph.Constraints {
		switch c.Type {
		case Separation:
			join(c.Left, c.Right)
		case Alignment:
			for _, o := range c.Offsets[min(1, len(c.Offsets)):] {
				join(c.Offsets[0].Node, o.Node)
			}
		}
	}

	cc := topo.ConnectedComponents(g)
	if len(cc) == len(comps) {
		return comps
	}
	merged := make([][]int, 0, len(cc))
	for _, set := range cc {
		var nodes []int
		for _, v := range set {
			nodes = append(nodes, comps[v.ID()]...)
		}
		sort.Ints(nodes)
		merged = append(merged, nodes)
	}
	sort.Slice(merged, func(a, b int) bool { return merged[a][0] < merged[b][0] })
	return merged
}

func (l *Layout) packWidth(i int) float64 {
	if w := l.graph.Nodes[i].Width; w > 0 {
		return w
	}
	return l.cfg.DefaultNodeSize
}

func (l *Layout) packHeight(i int) float64 {
	if h := l.graph.Nodes[i].Height; h > 0 {
		return h
	}
	return l.cfg.DefaultNodeSize
}
