package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/matzehuels/cola/pkg/core/layout"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Constraint types.
const (
	ConstraintSeparation = "separation"
	ConstraintAlignment  = "alignment"
)

// DefaultGroupPadding is the padding of groups that do not set one.
const DefaultGroupPadding = 1

// =============================================================================
// Graph - Layout Input
// =============================================================================

// Graph is the canonical serialization format for layout input.
//
// Node positions are optional: nodes without x and y start at the centre
// of the canvas.
type Graph struct {
	Nodes       []Node       `json:"nodes"`
	Links       []Link       `json:"links"`
	Groups      []Group      `json:"groups,omitempty"`
	Constraints []Constraint `json:"constraints,omitempty"`
}

// Node is a node with an optional starting position and a size.
type Node struct {
	ID     string   `json:"id,omitempty"`
	Label  string   `json:"label,omitempty"`
	X      *float64 `json:"x,omitempty"`
	Y      *float64 `json:"y,omitempty"`
	Width  float64  `json:"width,omitempty"`
	Height float64  `json:"height,omitempty"`

	Fixed       bool    `json:"fixed,omitempty"`
	FixedWeight float64 `json:"fixed_weight,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Endpoint names a link end by node index or node ID. In JSON it is a
// number or a string.
type Endpoint struct {
	Index int
	ID    string
}

// MarshalJSON writes the ID when set, otherwise the index.
func (e Endpoint) MarshalJSON() ([]byte, error) {
	if e.ID != "" {
		return json.Marshal(e.ID)
	}
	return []byte(strconv.Itoa(e.Index)), nil
}

// UnmarshalJSON accepts a non-negative integer or a string.
func (e *Endpoint) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		if id == "" {
			return fmt.Errorf("empty node id")
		}
		*e = Endpoint{ID: id}
		return nil
	}
	var i int
	if err := json.Unmarshal(data, &i); err != nil {
		return fmt.Errorf("link end must be a node index or id: %w", err)
	}
	*e = Endpoint{Index: i}
	return nil
}

// Link is a directed link.
type Link struct {
	Source Endpoint `json:"source"`
	Target Endpoint `json:"target"`
	Length float64  `json:"length,omitempty"`
	Type   int      `json:"type,omitempty"`
	Weight float64  `json:"weight,omitempty"`
}

// Group lists member node indices and child group indices.
type Group struct {
	Leaves    []int    `json:"leaves,omitempty"`
	Groups    []int    `json:"groups,omitempty"`
	Padding   *float64 `json:"padding,omitempty"`
	Stiffness float64  `json:"stiffness,omitempty"`
}

// Constraint is a separation or alignment constraint over node indices.
type Constraint struct {
	Type     string   `json:"type"`
	Axis     string   `json:"axis"`
	Left     int      `json:"left,omitempty"`
	Right    int      `json:"right,omitempty"`
	Gap      float64  `json:"gap,omitempty"`
	Equality bool     `json:"equality,omitempty"`
	Offsets  []Offset `json:"offsets,omitempty"`
}

// Offset places a node relative to an alignment line.
type Offset struct {
	Node   int     `json:"node"`
	Offset float64 `json:"offset"`
}

// =============================================================================
// Graph ↔ layout.Graph Conversion
// =============================================================================

// ToLayout converts a serialized graph to layout input.
func ToLayout(g Graph) (layout.Graph, error) {
	out := layout.Graph{
		Nodes:       make([]layout.Node, len(g.Nodes)),
		Links:       make([]layout.Link, len(g.Links)),
		Groups:      make([]layout.Group, len(g.Groups)),
		Constraints: make([]layout.Constraint, len(g.Constraints)),
	}
	for i, n := range g.Nodes {
		ln := layout.Node{
			ID:          n.ID,
			Width:       n.Width,
			Height:      n.Height,
			Fixed:       n.Fixed,
			FixedWeight: n.FixedWeight,
		}
		if (n.X == nil) != (n.Y == nil) {
			return layout.Graph{}, fmt.Errorf("node %d: x and y must be given together", i)
		}
		if n.X != nil {
			ln.X, ln.Y, ln.Positioned = *n.X, *n.Y, true
		}
		out.Nodes[i] = ln
	}
	for i, l := range g.Links {
		out.Links[i] = layout.Link{
			Source:   l.Source.Index,
			Target:   l.Target.Index,
			SourceID: l.Source.ID,
			TargetID: l.Target.ID,
			Length:   l.Length,
			Type:     l.Type,
			Weight:   l.Weight,
		}
	}
	for i, gr := range g.Groups {
		pad := float64(DefaultGroupPadding)
		if gr.Padding != nil {
			pad = *gr.Padding
		}
		out.Groups[i] = layout.Group{
			Leaves:    append([]int(nil), gr.Leaves...),
			Groups:    append([]int(nil), gr.Groups...),
			Padding:   pad,
			Stiffness: gr.Stiffness,
		}
	}
	for i, c := range g.Constraints {
		axis, err := layout.ParseAxis(c.Axis)
		if err != nil {
			return layout.Graph{}, fmt.Errorf("constraint %d: %w", i, err)
		}
		lc := layout.Constraint{Axis: axis, Left: c.Left, Right: c.Right, Gap: c.Gap, Equality: c.Equality}
		switch c.Type {
		case ConstraintSeparation, "":
			lc.Type = layout.Separation
		case ConstraintAlignment:
			lc.Type = layout.Alignment
			for _, o := range c.Offsets {
				lc.Offsets = append(lc.Offsets, layout.Offset{Node: o.Node, Offset: o.Offset})
			}
		default:
			return layout.Graph{}, fmt.Errorf("constraint %d: unknown type %q", i, c.Type)
		}
		out.Constraints[i] = lc
	}
	return out, nil
}

// FromLayout converts layout input back to its serialized form, with the
// current positions.
func FromLayout(g layout.Graph) Graph {
	out := Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Links: make([]Link, len(g.Links)),
	}
	for i, n := range g.Nodes {
		x, y := n.X, n.Y
		out.Nodes[i] = Node{
			ID:          n.ID,
			Width:       n.Width,
			Height:      n.Height,
			Fixed:       n.Fixed,
			FixedWeight: n.FixedWeight,
		}
		if n.Positioned {
			out.Nodes[i].X, out.Nodes[i].Y = &x, &y
		}
	}
	for i, l := range g.Links {
		out.Links[i] = Link{
			Source: Endpoint{Index: l.Source},
			Target: Endpoint{Index: l.Target},
			Length: l.Length,
			Type:   l.Type,
			Weight: l.Weight,
		}
	}
	for _, gr := range g.Groups {
		pad := gr.Padding
		out.Groups = append(out.Groups, Group{
			Leaves:    append([]int(nil), gr.Leaves...),
			Groups:    append([]int(nil), gr.Groups...),
			Padding:   &pad,
			Stiffness: gr.Stiffness,
		})
	}
	for _, c := range g.Constraints {
		sc := Constraint{Type: c.Type.String(), Axis: c.Axis.String(), Left: c.Left, Right: c.Right, Gap: c.Gap, Equality: c.Equality}
		for _, o := range c.Offsets {
			sc.Offsets = append(sc.Offsets, Offset{Node: o.Node, Offset: o.Offset})
		}
		out.Constraints = append(out.Constraints, sc)
	}
	return out
}

// UnmarshalGraph deserializes JSON bytes to a Graph.
func UnmarshalGraph(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, err
	}
	return g, nil
}
