package layout

import (
	"sort"

	"github.com/matzehuels/cola/pkg/core/geom"
	"github.com/matzehuels/cola/pkg/core/vpsc"
)

// defaultFixedWeight is the solver weight of a pinned node.
const defaultFixedWeight = 1000

// axisConstraint is a separation between two descent variables.
type axisConstraint struct {
	axis        Axis
	left, right int
	gap         float64
	equality    bool
}

// projection keeps descent steps feasible. It owns one solver variable
// per node followed by a min and max variable per group.
type projection struct {
	nodes  []Node
	pins   [][2]float64
	vars   []*vpsc.Variable
	leaves []*vpsc.Leaf
	groups []*vpsc.Group
	root   *vpsc.Group
	cs     [2][]*vpsc.Constraint

	avoidOverlaps bool
}

func newProjection(nodes []Node, pins [][2]float64, groups []Group, cs []axisConstraint, avoidOverlaps bool) *projection {
	n := len(nodes)
	p := &projection{
		nodes:         nodes,
		pins:          pins,
		vars:          make([]*vpsc.Variable, n, n+2*len(groups)),
		leaves:        make([]*vpsc.Leaf, n),
		groups:        make([]*vpsc.Group, len(groups)),
		avoidOverlaps: avoidOverlaps,
	}
	for i := range nodes {
		p.vars[i] = vpsc.NewVariable(0, 1, 1)
		p.leaves[i] = &vpsc.Leaf{Variable: p.vars[i]}
	}
	for k, g := range groups {
		stiffness := g.Stiffness
		if stiffness == 0 {
			stiffness = vpsc.DefaultGroupStiffness
		}
		vg := &vpsc.Group{
			Padding: g.Padding,
			MinVar:  vpsc.NewVariable(0, stiffness, 1),
			MaxVar:  vpsc.NewVariable(0, stiffness, 1),
		}
		p.vars = append(p.vars, vg.MinVar, vg.MaxVar)
		p.groups[k] = vg
	}

	nodeHasParent := make([]bool, n)
	groupHasParent := make([]bool, len(groups))
	for k, g := range groups {
		for _, v := range g.Leaves {
			p.groups[k].Leaves = append(p.groups[k].Leaves, p.leaves[v])
			nodeHasParent[v] = true
		}
		for _, c := range g.Groups {
			p.groups[k].Groups = append(p.groups[k].Groups, p.groups[c])
			groupHasParent[c] = true
		}
	}
	p.root = &vpsc.Group{}
	for i, has := range nodeHasParent {
		if !has {
			p.root.Leaves = append(p.root.Leaves, p.leaves[i])
		}
	}
	for k, has := range groupHasParent {
		if !has {
			p.root.Groups = append(p.root.Groups, p.groups[k])
		}
	}

	for _, c := range cs {
		l, r := p.vars[c.left], p.vars[c.right]
		var vc *vpsc.Constraint
		if c.equality {
			vc = vpsc.NewEquality(l, r, c.gap)
		} else {
			vc = vpsc.NewConstraint(l, r, c.gap)
		}
		p.cs[c.axis] = append(p.cs[c.axis], vc)
	}
	return p
}

// setBounds places every node rectangle at (x[i], y[i]) and recomputes the
// group bounds.
func (p *projection) setBounds(x, y []float64) {
	for i, nd := range p.nodes {
		p.leaves[i].Bounds = geom.Centered(x[i], y[i], nd.Width, nd.Height)
	}
	vpsc.ComputeGroupBounds(p.root)
}

// initGroupVariables writes each group's boundary positions, taken from
// the node positions in x and y, into the group slots of x and y.
func (p *projection) initGroupVariables(x, y []float64) {
	p.setBounds(x, y)
	n := len(p.nodes)
	for k, g := range p.groups {
		h := g.Padding / 2
		x[n+2*k], x[n+2*k+1] = g.Bounds.MinX+h, g.Bounds.MaxX-h
		y[n+2*k], y[n+2*k+1] = g.Bounds.MinY+h, g.Bounds.MaxY-h
	}
}

// groupBounds returns the current rectangle of every group.
func (p *projection) groupBounds(x, y []float64) []geom.Rect {
	p.setBounds(x, y)
	out := make([]geom.Rect, len(p.groups))
	for k, g := range p.groups {
		out[k] = g.Bounds
	}
	return out
}

func (p *projection) ProjectX(x0, y0, x []float64) error {
	return p.project(AxisX, x0, y0, x0, x)
}

func (p *projection) ProjectY(x0, y0, y []float64) error {
	return p.project(AxisY, x0, y0, y0, y)
}

func (p *projection) project(axis Axis, x0, y0, start, desired []float64) error {
	for i, nd := range p.nodes {
		v := p.vars[i]
		v.Weight = 1
		if nd.Fixed {
			v.Weight = nd.FixedWeight
			if v.Weight == 0 {
				v.Weight = defaultFixedWeight
			}
			desired[i] = p.pins[i][axis]
		}
	}
	cs := p.cs[axis]
	if p.avoidOverlaps {
		p.setBounds(x0, y0)
		cs = append(cs[:len(cs):len(cs)], p.generate(axis)...)
	}
	s := vpsc.NewSolver(p.vars, cs)
	s.SetStartingPositions(start)
	s.SetDesiredPositions(desired)
	if _, err := s.Solve(); err != nil {
		return err
	}
	for i, v := range p.vars {
		desired[i] = v.Position()
	}
	return nil
}

func (p *projection) generate(axis Axis) []*vpsc.Constraint {
	if axis == AxisX {
		return vpsc.GenerateXGroupConstraints(p.root)
	}
	return vpsc.GenerateYGroupConstraints(p.root)
}

// makeFeasible spreads the nodes of each alignment along the other axis
// so that they start out stacked without overlapping.
func makeFeasible(nodes []Node, cs []Constraint, x, y []float64) {
	for _, c := range cs {
		if c.Type != Alignment {
			continue
		}
		pos, size := y, func(nd Node) float64 { return nd.Height }
		if c.Axis == AxisY {
			pos, size = x, func(nd Node) float64 { return nd.Width }
		}
		idx := make([]int, len(c.Offsets))
		for i, o := range c.Offsets {
			idx[i] = o.Node
		}
		sort.SliceStable(idx, func(a, b int) bool { return pos[idx[a]] < pos[idx[b]] })
		for i := 1; i < len(idx); i++ {
			prev, cur := idx[i-1], idx[i]
			if next := pos[prev] + size(nodes[prev]); next > pos[cur] {
				pos[cur] = next
			}
		}
	}
}
