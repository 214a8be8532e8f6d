package distance

import "math"

// Edge is an undirected link with a length.
type Edge struct {
	Source, Target int
	Length         float64
}

// neighbours returns the neighbour set of every node, ignoring direction
// and self links.
func neighbours(n int, edges []Edge) []map[int]struct{} {
	nb := make([]map[int]struct{}, n)
	for i := range nb {
		nb[i] = map[int]struct{}{}
	}
	for _, e := range edges {
		if e.Source == e.Target {
			continue
		}
		nb[e.Source][e.Target] = struct{}{}
		nb[e.Target][e.Source] = struct{}{}
	}
	return nb
}

func intersectionCount(a, b map[int]struct{}) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}

func unionCount(a, b map[int]struct{}) int {
	return len(a) + len(b) - intersectionCount(a, b)
}

func computeLengths(n int, edges []Edge, w float64, f func(a, b map[int]struct{}) float64) []float64 {
	nb := neighbours(n, edges)
	out := make([]float64, len(edges))
	for i, e := range edges {
		out[i] = 1 + w*f(nb[e.Source], nb[e.Target])
	}
	return out
}

// SymmetricDiffLengths returns 1 + w*sqrt(|A∪B| - |A∩B|) for every edge,
// where A and B are the neighbour sets of its endpoints. Callers scale the
// result by their ideal length.
func SymmetricDiffLengths(n int, edges []Edge, w float64) []float64 {
	return computeLengths(n, edges, w, func(a, b map[int]struct{}) float64 {
		return math.Sqrt(float64(unionCount(a, b) - intersectionCount(a, b)))
	})
}

// JaccardLengths returns 1 + w*|A∩B|/|A∪B| for every edge. Edges with an
// endpoint of degree one get plain length 1.
func JaccardLengths(n int, edges []Edge, w float64) []float64 {
	return computeLengths(n, edges, w, func(a, b map[int]struct{}) float64 {
		if min(len(a), len(b)) < 2 {
			return 0
		}
		return float64(intersectionCount(a, b)) / float64(unionCount(a, b))
	})
}
