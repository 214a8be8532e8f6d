// Package flow generates directional ordering constraints from directed
// links: every link whose endpoints are not on a common cycle asks for its
// target to sit at least a given gap after its source along one axis.
//
// Links inside a strongly connected component are skipped, since ordering
// them would ask for a cycle of strict separations. Components are found
// with gonum's Tarjan implementation.
package flow

import (
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Edge is a directed link between two node indices.
type Edge struct {
	Source, Target int
}

// Constraint asks for Right - Left >= Gap along the flow axis.
type Constraint struct {
	Left, Right int
	Gap         float64
	Edge        int // index of the edge it came from
}

// Components labels every node with the index of its strongly connected
// component. Labels are arbitrary but two nodes share one exactly when
// each reaches the other.
func Components(n int, edges []Edge) []int {
	g := simple.NewDirectedGraph()
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(i))
	}
	for _, e := range edges {
		if e.Source == e.Target {
			continue
		}
		g.SetEdge(g.NewEdge(simple.Node(e.Source), simple.Node(e.Target)))
	}
	comp := make([]int, n)
	for ci, nodes := range topo.TarjanSCC(g) {
		for _, v := range nodes {
			comp[v.ID()] = ci
		}
	}
	return comp
}

// Constraints returns one separation constraint per edge whose endpoints
// lie in different strongly connected components, in edge order. gap
// supplies the separation for edge i.
func Constraints(n int, edges []Edge, gap func(i int) float64) []Constraint {
	comp := Components(n, edges)
	var cs []Constraint
	for i, e := range edges {
		if comp[e.Source] == comp[e.Target] {
			continue
		}
		cs = append(cs, Constraint{Left: e.Source, Right: e.Target, Gap: gap(i), Edge: i})
	}
	return cs
}

// Constant returns a gap function that always yields sep.
func Constant(sep float64) func(int) float64 {
	return func(int) float64 { return sep }
}
