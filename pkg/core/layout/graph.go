package layout

import (
	"fmt"
	"strings"

	"github.com/matzehuels/cola/pkg/core/geom"
	"github.com/matzehuels/cola/pkg/errors"
)

// Axis selects a layout dimension.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

func (a Axis) String() string {
	if a == AxisY {
		return "y"
	}
	return "x"
}

// ParseAxis converts "x" or "y" to an Axis.
func ParseAxis(s string) (Axis, error) {
	if err := errors.ValidateAxis(s); err != nil {
		return AxisX, err
	}
	if strings.ToLower(s) == "y" {
		return AxisY, nil
	}
	return AxisX, nil
}

// Node is a graph node. X and Y are its centre.
type Node struct {
	ID string

	X, Y float64

	// Positioned reports whether X and Y hold a starting position. Nodes
	// without one start at the centre of the canvas.
	Positioned bool

	Width, Height float64

	// Fixed pins the node at its starting position. FixedWeight is the
	// weight the solver gives the pin; 0 means 1000.
	Fixed       bool
	FixedWeight float64
}

// Bounds returns the node's rectangle.
func (n Node) Bounds() geom.Rect {
	return geom.Centered(n.X, n.Y, n.Width, n.Height)
}

// Link is a directed link between two nodes, given by index or, when
// SourceID or TargetID is set, by node ID.
type Link struct {
	Source, Target     int
	SourceID, TargetID string

	// Length overrides the configured link length when positive.
	Length float64

	// Type separates links for power graph grouping.
	Type int

	// Weight is the stress weight of the pair; 0 means 1.
	Weight float64
}

// Group is a set of nodes and child groups kept together in a padded box.
type Group struct {
	Leaves []int
	Groups []int

	Padding float64

	// Stiffness weighs the group's boundary against its members; 0 means
	// vpsc.DefaultGroupStiffness.
	Stiffness float64

	// Bounds is set by the layout.
	Bounds geom.Rect
}

// ConstraintType distinguishes user constraints.
type ConstraintType int

const (
	// Separation keeps Right at least Gap after Left, or exactly Gap
	// after it when Equality is set.
	Separation ConstraintType = iota

	// Alignment keeps every node in Offsets at its offset from a shared
	// line along the other axis.
	Alignment
)

func (t ConstraintType) String() string {
	if t == Alignment {
		return "alignment"
	}
	return "separation"
}

// Offset places a node relative to an alignment line.
type Offset struct {
	Node   int
	Offset float64
}

// Constraint is a user constraint over node indices.
type Constraint struct {
	Type ConstraintType
	Axis Axis

	Left, Right int
	Gap         float64
	Equality    bool

	Offsets []Offset
}

// Graph is the input to a layout.
type Graph struct {
	Nodes       []Node
	Links       []Link
	Groups      []Group
	Constraints []Constraint
}

// ResolveLinks fills Source and Target of every link that names its ends
// by ID. It fails on an unknown or ambiguous ID and leaves g unchanged.
func (g *Graph) ResolveLinks() error {
	ids := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		if n.ID == "" {
			continue
		}
		if _, dup := ids[n.ID]; dup {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate node id %q", n.ID)
		}
		ids[n.ID] = i
	}
	lookup := func(id string, i int, end string) (int, error) {
		v, ok := ids[id]
		if !ok {
			return 0, errors.New(errors.ErrCodeInvalidInput, "link %d: unknown %s node %q", i, end, id)
		}
		return v, nil
	}
	resolved := make([][2]int, len(g.Links))
	for i, l := range g.Links {
		resolved[i] = [2]int{l.Source, l.Target}
		var err error
		if l.SourceID != "" {
			if resolved[i][0], err = lookup(l.SourceID, i, "source"); err != nil {
				return err
			}
		}
		if l.TargetID != "" {
			if resolved[i][1], err = lookup(l.TargetID, i, "target"); err != nil {
				return err
			}
		}
	}
	for i := range g.Links {
		g.Links[i].Source, g.Links[i].Target = resolved[i][0], resolved[i][1]
	}
	return nil
}

// synthesizeNodes adds nodes up to the largest index a link refers to.
func (g *Graph) synthesizeNodes() {
	max := len(g.Nodes) - 1
	for _, l := range g.Links {
		if l.Source > max {
			max = l.Source
		}
		if l.Target > max {
			max = l.Target
		}
	}
	for i := len(g.Nodes); i <= max; i++ {
		g.Nodes = append(g.Nodes, Node{})
	}
}

func (g *Graph) clone() Graph {
	c := Graph{
		Nodes:       append([]Node(nil), g.Nodes...),
		Links:       append([]Link(nil), g.Links...),
		Groups:      make([]Group, len(g.Groups)),
		Constraints: make([]Constraint, len(g.Constraints)),
	}
	for i, gr := range g.Groups {
		gr.Leaves = append([]int(nil), gr.Leaves...)
		gr.Groups = append([]int(nil), gr.Groups...)
		c.Groups[i] = gr
	}
	for i, cs := range g.Constraints {
		cs.Offsets = append([]Offset(nil), cs.Offsets...)
		c.Constraints[i] = cs
	}
	return c
}

func (l Link) String() string {
	return fmt.Sprintf("%d->%d", l.Source, l.Target)
}
