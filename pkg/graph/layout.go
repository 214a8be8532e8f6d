package graph

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/cola/pkg/core/geom"
	"github.com/matzehuels/cola/pkg/core/layout"
	"github.com/matzehuels/cola/pkg/core/powergraph"
)

// =============================================================================
// Result - Positioned Layout Output
// =============================================================================

// Result is the serialization format for a finished layout.
//
// Nodes carry their final centres and sizes. Groups carry their bounds.
// Routes, when present, are indexed like Links; self loops have no route.
// PowerEdges is only set when power graph grouping ran.
type Result struct {
	RunID  string  `json:"run_id,omitempty"`
	Stress float64 `json:"stress"`

	Nodes  []PlacedNode  `json:"nodes"`
	Links  []Link        `json:"links,omitempty"`
	Groups []PlacedGroup `json:"groups,omitempty"`

	Routes     [][]Point   `json:"routes,omitempty"`
	PowerEdges []PowerEdge `json:"power_edges,omitempty"`
}

// PlacedNode is a node at its final position.
type PlacedNode struct {
	ID     string  `json:"id,omitempty"`
	Label  string  `json:"label,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Fixed  bool    `json:"fixed,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *PlacedNode) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// PlacedGroup is a group with its final bounds.
type PlacedGroup struct {
	Leaves  []int   `json:"leaves,omitempty"`
	Groups  []int   `json:"groups,omitempty"`
	Padding float64 `json:"padding"`
	Bounds  Rect    `json:"bounds"`
}

// Point is a position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned box given by its top left corner and size.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PowerEdge is an edge of the power graph. Ends are "g<index>" for groups
// and the node index otherwise.
type PowerEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   int    `json:"type,omitempty"`
}

// NewResult captures the state of a started layout. src supplies labels
// and may be the zero Graph.
func NewResult(l *layout.Layout, src Graph) Result {
	g := l.Graph()
	res := Result{
		Stress: l.Stress(),
		Nodes:  make([]PlacedNode, len(g.Nodes)),
		Links:  FromLayout(g).Links,
	}
	for i, n := range g.Nodes {
		res.Nodes[i] = PlacedNode{ID: n.ID, X: n.X, Y: n.Y, Width: n.Width, Height: n.Height, Fixed: n.Fixed}
		if i < len(src.Nodes) {
			res.Nodes[i].Label = src.Nodes[i].Label
		}
	}
	for _, gr := range g.Groups {
		res.Groups = append(res.Groups, PlacedGroup{
			Leaves:  append([]int(nil), gr.Leaves...),
			Groups:  append([]int(nil), gr.Groups...),
			Padding: gr.Padding,
			Bounds:  rectFrom(gr.Bounds),
		})
	}
	return res
}

// Graph returns the input graph of a re-run over this result: every node
// fixed where it was placed, links and groups unchanged.
func (r *Result) Graph() Graph {
	g := Graph{
		Nodes: make([]Node, len(r.Nodes)),
		Links: append([]Link(nil), r.Links...),
	}
	for i, n := range r.Nodes {
		x, y := n.X, n.Y
		g.Nodes[i] = Node{ID: n.ID, Label: n.Label, X: &x, Y: &y, Width: n.Width, Height: n.Height, Fixed: true}
	}
	for _, pg := range r.Groups {
		pad := pg.Padding
		g.Groups = append(g.Groups, Group{
			Leaves:  append([]int(nil), pg.Leaves...),
			Groups:  append([]int(nil), pg.Groups...),
			Padding: &pad,
		})
	}
	return g
}

// SetRoutes stores the routes of every link.
func (r *Result) SetRoutes(routes [][]geom.Point) {
	r.Routes = make([][]Point, len(routes))
	for i, route := range routes {
		if route == nil {
			continue
		}
		r.Routes[i] = make([]Point, len(route))
		for j, p := range route {
			r.Routes[i][j] = Point{X: p.X, Y: p.Y}
		}
	}
}

// SetPowerGraph stores the power edges of a grouping.
func (r *Result) SetPowerGraph(pg powergraph.Result) {
	r.PowerEdges = make([]PowerEdge, len(pg.PowerEdges))
	for i, e := range pg.PowerEdges {
		r.PowerEdges[i] = PowerEdge{Source: e.Source.String(), Target: e.Target.String(), Type: e.Type}
	}
}

// Bounds returns the box around every node, group and route point.
func (r *Result) Bounds() Rect {
	b := geom.EmptyRect()
	for _, n := range r.Nodes {
		b = b.Union(geom.Centered(n.X, n.Y, n.Width, n.Height))
	}
	for _, g := range r.Groups {
		b = b.Union(geom.Rect{MinX: g.Bounds.X, MinY: g.Bounds.Y, MaxX: g.Bounds.X + g.Bounds.Width, MaxY: g.Bounds.Y + g.Bounds.Height})
	}
	for _, route := range r.Routes {
		for _, p := range route {
			b = b.Union(geom.Rect{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y})
		}
	}
	if b.IsEmpty() {
		return Rect{}
	}
	return rectFrom(b)
}

func rectFrom(b geom.Rect) Rect {
	if b.IsEmpty() {
		return Rect{}
	}
	return Rect{X: b.MinX, Y: b.MinY, Width: b.Width(), Height: b.Height()}
}

// =============================================================================
// Result Serialization API
// =============================================================================

// MarshalResult serializes a Result to pretty-printed JSON bytes.
func MarshalResult(r Result) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// UnmarshalResult deserializes JSON bytes into a Result.
// Routes must line up with links.
func UnmarshalResult(data []byte) (Result, error) {
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return Result{}, fmt.Errorf("unmarshal result: %w", err)
	}
	if len(r.Routes) > 0 && len(r.Routes) != len(r.Links) {
		return Result{}, fmt.Errorf("result has %d routes for %d links", len(r.Routes), len(r.Links))
	}
	return r, nil
}

// WriteResultFile writes a Result to a JSON file.
func WriteResultFile(r Result, path string) error {
	data, err := MarshalResult(r)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadResultFile reads a Result from a JSON file.
func ReadResultFile(path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalResult(data)
}
