package distance

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// ErrBadLength is returned for a link with a negative or non-finite length.
var ErrBadLength = errors.New("distance: link length must be finite and non-negative")

// Result holds the ideal distances and the connected components they were
// computed over.
type Result struct {
	// D is the symmetric matrix of ideal distances. D[i][i] is 0.
	D [][]float64

	// Components lists the connected components, each sorted ascending and
	// ordered by smallest member.
	Components [][]int

	// ComponentOf maps each node to its index in Components.
	ComponentOf []int
}

// Connected reports whether i and j are in the same component.
func (r *Result) Connected(i, j int) bool {
	return r.ComponentOf[i] == r.ComponentOf[j]
}

// Matrix computes shortest path distances between all pairs of n nodes over
// the undirected graph formed by edges. Parallel edges keep the shorter
// length and self links are ignored.
//
// Pairs that are not connected get the graph diameter plus the longest
// edge length. When the graph has no edges at all, fallback is used for
// every pair.
func Matrix(n int, edges []Edge, fallback float64) (*Result, error) {
	g := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(i))
	}
	for _, e := range edges {
		if e.Length < 0 || math.IsNaN(e.Length) || math.IsInf(e.Length, 0) {
			return nil, ErrBadLength
		}
		if e.Source == e.Target {
			continue
		}
		if w, ok := g.Weight(int64(e.Source), int64(e.Target)); ok && w <= e.Length {
			continue
		}
		g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(e.Source), simple.Node(e.Target), e.Length))
	}
	maxEdge := 0.0
	for it := g.WeightedEdges(); it.Next(); {
		maxEdge = math.Max(maxEdge, it.WeightedEdge().Weight())
	}

	paths := path.DijkstraAllPaths(g)
	d := make([][]float64, n)
	diameter := 0.0
	for i := range d {
		d[i] = make([]float64, n)
		for j := range d[i] {
			if i == j {
				continue
			}
			w := paths.Weight(int64(i), int64(j))
			d[i][j] = w
			if !math.IsInf(w, 1) {
				diameter = math.Max(diameter, w)
			}
		}
	}

	far := diameter + maxEdge
	if far == 0 {
		far = fallback
	}
	for i := range d {
		for j := range d[i] {
			if math.IsInf(d[i][j], 1) {
				d[i][j] = far
			}
		}
	}

	r := &Result{D: d, ComponentOf: make([]int, n)}
	for _, cc := range topo.ConnectedComponents(g) {
		comp := make([]int, len(cc))
		for k, v := range cc {
			comp[k] = int(v.ID())
		}
		sort.Ints(comp)
		r.Components = append(r.Components, comp)
	}
	sort.Slice(r.Components, func(a, b int) bool {
		return r.Components[a][0] < r.Components[b][0]
	})
	for ci, comp := range r.Components {
		for _, v := range comp {
			r.ComponentOf[v] = ci
		}
	}
	return r, nil
}
