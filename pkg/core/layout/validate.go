package layout

import "github.com/matzehuels/cola/pkg/errors"

func invalid(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidInput, format, args...)
}

// validateGraph checks indices, geometry and the group forest of g.
func validateGraph(g *Graph) error {
	n := len(g.Nodes)
	for i, nd := range g.Nodes {
		for _, v := range []float64{nd.X, nd.Y} {
			if err := errors.ValidateFinite("node position", v); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "node %d", i)
			}
		}
		for _, v := range []float64{nd.Width, nd.Height, nd.FixedWeight} {
			if err := errors.ValidateNonNegative("node size", v); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "node %d", i)
			}
		}
	}

	for i, l := range g.Links {
		if err := errors.ValidateIndex("source", l.Source, n); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "link %d", i)
		}
		if err := errors.ValidateIndex("target", l.Target, n); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "link %d", i)
		}
		if err := errors.ValidateNonNegative("length", l.Length); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "link %d", i)
		}
		if err := errors.ValidateNonNegative("weight", l.Weight); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "link %d", i)
		}
	}

	if err := validateGroups(g.Groups, n); err != nil {
		return err
	}

	for i, c := range g.Constraints {
		if c.Axis != AxisX && c.Axis != AxisY {
			return invalid("constraint %d: unknown axis %d", i, c.Axis)
		}
		switch c.Type {
		case Separation:
			if err := errors.ValidateIndex("left", c.Left, n); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "constraint %d", i)
			}
			if err := errors.ValidateIndex("right", c.Right, n); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "constraint %d", i)
			}
			if c.Left == c.Right {
				return invalid("constraint %d: left and right are both node %d", i, c.Left)
			}
			if err := errors.ValidateFinite("gap", c.Gap); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "constraint %d", i)
			}
		case Alignment:
			if len(c.Offsets) == 0 {
				return invalid("constraint %d: alignment without offsets", i)
			}
			for _, o := range c.Offsets {
				if err := errors.ValidateIndex("offset", o.Node, n); err != nil {
					return errors.Wrap(errors.ErrCodeInvalidInput, err, "constraint %d", i)
				}
				if err := errors.ValidateFinite("offset", o.Offset); err != nil {
					return errors.Wrap(errors.ErrCodeInvalidInput, err, "constraint %d", i)
				}
			}
		default:
			return invalid("constraint %d: unknown type %d", i, c.Type)
		}
	}
	return nil
}

// validateGroups checks that groups form a forest over n nodes.
func validateGroups(groups []Group, n int) error {
	nodeParent := make([]int, n)
	for i := range nodeParent {
		nodeParent[i] = -1
	}
	parent := make([]int, len(groups))
	for i := range parent {
		parent[i] = -1
	}
	for gi, g := range groups {
		if err := errors.ValidateNonNegative("padding", g.Padding); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "group %d", gi)
		}
		if err := errors.ValidateNonNegative("stiffness", g.Stiffness); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "group %d", gi)
		}
		if len(g.Leaves) == 0 && len(g.Groups) == 0 {
			return invalid("group %d is empty", gi)
		}
		for _, v := range g.Leaves {
			if err := errors.ValidateIndex("leaf", v, n); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "group %d", gi)
			}
			if p := nodeParent[v]; p >= 0 {
				return invalid("node %d is in groups %d and %d", v, p, gi)
			}
			nodeParent[v] = gi
		}
		for _, c := range g.Groups {
			if err := errors.ValidateIndex("child group", c, len(groups)); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "group %d", gi)
			}
			if c == gi {
				return invalid("group %d contains itself", gi)
			}
			if p := parent[c]; p >= 0 {
				return invalid("group %d is a child of groups %d and %d", c, p, gi)
			}
			parent[c] = gi
		}
	}
	for gi := range groups {
		steps := 0
		for p := parent[gi]; p >= 0; p = parent[p] {
			if steps++; steps > len(groups) {
				return invalid("group %d is part of a containment cycle", gi)
			}
		}
	}
	return nil
}
