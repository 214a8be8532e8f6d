package vpsc

import (
	"sort"

	"github.com/matzehuels/cola/pkg/core/geom"
)

// MinSeparation is added to every generated overlap gap so that touching
// rectangles are strictly separated after rounding.
const MinSeparation = 1e-6

// sweepNode is a rectangle on the scanline together with the neighbours it
// must be separated from.
type sweepNode struct {
	v    *Variable
	r    geom.Rect
	pos  float64
	id   int
	prev []*sweepNode
	next []*sweepNode
}

func (n *sweepNode) less(o *sweepNode) bool {
	if n.pos != o.pos {
		return n.pos < o.pos
	}
	return n.id < o.id
}

// insertNode adds n to the ordered set s unless it is already there.
func insertNode(s []*sweepNode, n *sweepNode) []*sweepNode {
	i := sort.Search(len(s), func(i int) bool { return !s[i].less(n) })
	if i < len(s) && s[i] == n {
		return s
	}
	s = append(s, nil)
	copy(s[i+1:], s[i:])
	s[i] = n
	return s
}

func removeNode(s []*sweepNode, n *sweepNode) []*sweepNode {
	i := sort.Search(len(s), func(i int) bool { return !s[i].less(n) })
	if i < len(s) && s[i] == n {
		return append(s[:i], s[i+1:]...)
	}
	return s
}

// scanline holds the rectangles crossing the sweep position, ordered by
// centre.
type scanline struct {
	nodes []*sweepNode
}

func (s *scanline) insert(n *sweepNode) { s.nodes = insertNode(s.nodes, n) }
func (s *scanline) remove(n *sweepNode) { s.nodes = removeNode(s.nodes, n) }

func (s *scanline) index(n *sweepNode) int {
	return sort.Search(len(s.nodes), func(i int) bool { return !s.nodes[i].less(n) })
}

func link(l, r *sweepNode) {
	l.next = insertNode(l.next, r)
	r.prev = insertNode(r.prev, l)
}

// axisAccessor abstracts which rectangle extent is swept and which is
// separated.
type axisAccessor struct {
	centre         func(geom.Rect) float64
	open, close    func(geom.Rect) float64
	size           func(geom.Rect) float64
	makeRect       func(open, close, centre, size float64) geom.Rect
	findNeighbours func(n *sweepNode, s *scanline)
}

var xAxis = axisAccessor{
	centre: geom.Rect.CX,
	open:   func(r geom.Rect) float64 { return r.MinY },
	close:  func(r geom.Rect) float64 { return r.MaxY },
	size:   geom.Rect.Width,
	makeRect: func(open, close, centre, size float64) geom.Rect {
		return geom.Rect{MinX: centre - size/2, MaxX: centre + size/2, MinY: open, MaxY: close}
	},
	findNeighbours: findXNeighbours,
}

var yAxis = axisAccessor{
	centre: geom.Rect.CY,
	open:   func(r geom.Rect) float64 { return r.MinX },
	close:  func(r geom.Rect) float64 { return r.MaxX },
	size:   geom.Rect.Height,
	makeRect: func(open, close, centre, size float64) geom.Rect {
		return geom.Rect{MinX: open, MaxX: close, MinY: centre - size/2, MaxY: centre + size/2}
	},
	findNeighbours: findYNeighbours,
}

// findXNeighbours links n to every scanline rectangle it should be pushed
// apart from horizontally: those overlapping more in x than in y, up to
// and including the first one that does not overlap in x at all.
func findXNeighbours(n *sweepNode, s *scanline) {
	i := s.index(n)
	for j := i + 1; j < len(s.nodes); j++ {
		u := s.nodes[j]
		ov := u.r.OverlapX(n.r)
		if ov <= 0 || ov <= u.r.OverlapY(n.r) {
			link(n, u)
		}
		if ov <= 0 {
			break
		}
	}
	for j := i - 1; j >= 0; j-- {
		u := s.nodes[j]
		ov := u.r.OverlapX(n.r)
		if ov <= 0 || ov <= u.r.OverlapY(n.r) {
			link(u, n)
		}
		if ov <= 0 {
			break
		}
	}
}

// findYNeighbours links n to its immediate scanline neighbours when they
// overlap horizontally.
func findYNeighbours(n *sweepNode, s *scanline) {
	i := s.index(n)
	if i+1 < len(s.nodes) {
		if u := s.nodes[i+1]; u.r.OverlapX(n.r) > 0 {
			link(n, u)
		}
	}
	if i > 0 {
		if u := s.nodes[i-1]; u.r.OverlapX(n.r) > 0 {
			link(u, n)
		}
	}
}

type sweepEvent struct {
	open bool
	n    *sweepNode
	pos  float64
}

func generateConstraints(rs []geom.Rect, vars []*Variable, a axisAccessor, minSep float64) []*Constraint {
	n := len(rs)
	events := make([]sweepEvent, 0, 2*n)
	for i, r := range rs {
		sn := &sweepNode{v: vars[i], r: r, pos: a.centre(r), id: i}
		events = append(events, sweepEvent{open: true, n: sn, pos: a.open(r)})
	}
	for i := 0; i < n; i++ {
		sn := events[i].n
		events = append(events, sweepEvent{open: false, n: sn, pos: a.close(sn.r)})
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].pos != events[j].pos {
			return events[i].pos < events[j].pos
		}
		return events[i].open && !events[j].open
	})

	var cs []*Constraint
	mk := func(l, r *sweepNode) {
		sep := (a.size(l.r)+a.size(r.r))/2 + minSep
		cs = append(cs, NewConstraint(l.v, r.v, sep))
	}
	line := &scanline{}
	for _, e := range events {
		v := e.n
		if e.open {
			line.insert(v)
			a.findNeighbours(v, line)
			continue
		}
		line.remove(v)
		for i := len(v.prev) - 1; i >= 0; i-- {
			u := v.prev[i]
			mk(u, v)
			u.next = removeNode(u.next, v)
		}
		for _, u := range v.next {
			mk(v, u)
			u.prev = removeNode(u.prev, v)
		}
	}
	return cs
}

// GenerateXConstraints returns the horizontal separation constraints that
// remove the overlaps among rs. vars[i] is the x centre of rs[i].
func GenerateXConstraints(rs []geom.Rect, vars []*Variable) []*Constraint {
	return generateConstraints(rs, vars, xAxis, MinSeparation)
}

// GenerateYConstraints returns the vertical counterpart of
// GenerateXConstraints. vars[i] is the y centre of rs[i].
func GenerateYConstraints(rs []geom.Rect, vars []*Variable) []*Constraint {
	return generateConstraints(rs, vars, yAxis, MinSeparation)
}

// RemoveOverlaps moves the rectangles by the least amount that leaves no
// two of them overlapping, solving x first and then y.
func RemoveOverlaps(rs []geom.Rect) error {
	vs := make([]*Variable, len(rs))
	for i, r := range rs {
		vs[i] = NewVariable(r.CX(), 1, 1)
	}
	if _, err := NewSolver(vs, GenerateXConstraints(rs, vs)).Solve(); err != nil {
		return err
	}
	for i, v := range vs {
		rs[i] = rs[i].WithCX(v.Position())
	}
	for i, r := range rs {
		vs[i] = NewVariable(r.CY(), 1, 1)
	}
	if _, err := NewSolver(vs, GenerateYConstraints(rs, vs)).Solve(); err != nil {
		return err
	}
	for i, v := range vs {
		rs[i] = rs[i].WithCY(v.Position())
	}
	return nil
}
