package vpsc

import "github.com/matzehuels/cola/pkg/core/geom"

// DefaultGroupStiffness is the weight given to group boundary variables
// when none is configured.
const DefaultGroupStiffness = 0.01

// Leaf is a node rectangle taking part in group constraint generation.
// Variable holds the node's centre on the axis being generated.
type Leaf struct {
	Bounds   geom.Rect
	Variable *Variable
}

// Group is a rectangle that must contain its leaves and child groups. Its
// extent on the current axis is carried by MinVar and MaxVar, each placed
// Padding/2 inside the group boundary.
type Group struct {
	Leaves  []*Leaf
	Groups  []*Group
	Padding float64
	Bounds  geom.Rect

	MinVar, MaxVar *Variable
}

// ComputeGroupBounds sets g.Bounds, and the bounds of every group below
// it, to the union of the members inflated by the padding.
func ComputeGroupBounds(g *Group) geom.Rect {
	b := geom.EmptyRect()
	for _, l := range g.Leaves {
		b = b.Union(l.Bounds)
	}
	for _, c := range g.Groups {
		b = b.Union(ComputeGroupBounds(c))
	}
	g.Bounds = b.Inflate(g.Padding)
	return g.Bounds
}

// GenerateXGroupConstraints returns horizontal non-overlap and containment
// constraints for the hierarchy under root. Bounds must be current; see
// ComputeGroupBounds. Every non-root group needs MinVar and MaxVar.
func GenerateXGroupConstraints(root *Group) []*Constraint {
	return generateGroupConstraints(root, xAxis, MinSeparation, false)
}

// GenerateYGroupConstraints is the vertical counterpart of
// GenerateXGroupConstraints.
func GenerateYGroupConstraints(root *Group) []*Constraint {
	return generateGroupConstraints(root, yAxis, MinSeparation, false)
}

func generateGroupConstraints(root *Group, a axisAccessor, minSep float64, contained bool) []*Constraint {
	var child []*Constraint
	for _, g := range root.Groups {
		child = append(child, generateGroupConstraints(g, a, minSep, true)...)
	}

	var (
		rs []geom.Rect
		vs []*Variable
	)
	add := func(r geom.Rect, v *Variable) {
		rs = append(rs, r)
		vs = append(vs, v)
	}
	if contained {
		// The group's own borders act as two thin rectangles its members
		// must stay between.
		b := root.Bounds
		c, s := a.centre(b), a.size(b)/2
		open, close := a.open(b), a.close(b)
		lo := c - s + root.Padding/2
		hi := c + s - root.Padding/2
		root.MinVar.DesiredPosition = lo
		add(a.makeRect(open, close, lo, root.Padding), root.MinVar)
		root.MaxVar.DesiredPosition = hi
		add(a.makeRect(open, close, hi, root.Padding), root.MaxVar)
	}
	for _, l := range root.Leaves {
		add(l.Bounds, l.Variable)
	}
	for _, g := range root.Groups {
		b := g.Bounds
		add(a.makeRect(a.open(b), a.close(b), a.centre(b), a.size(b)), g.MinVar)
	}

	cs := generateConstraints(rs, vs, a, minSep)
	// Child groups were swept as whole rectangles keyed on MinVar. Rebase
	// the gaps onto the boundary variables: constraints into the group
	// land on MinVar, constraints out of it leave from MaxVar.
	for _, g := range root.Groups {
		adj := (g.Padding - a.size(g.Bounds)) / 2
		for _, c := range cs {
			switch {
			case c.Right == g.MinVar:
				c.Gap += adj
			case c.Left == g.MinVar:
				c.Left = g.MaxVar
				c.Gap += adj
			}
		}
	}
	return append(child, cs...)
}
