package distance

import (
	"errors"
	"math"
	"testing"
)

func TestMatrix(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		edges []Edge
		want  [][]float64
		comps int
	}{
		{
			name:  "Path",
			n:     3,
			edges: []Edge{{0, 1, 1}, {1, 2, 2}},
			want: [][]float64{
				{0, 1, 3},
				{1, 0, 2},
				{3, 2, 0},
			},
			comps: 1,
		},
		{
			name:  "ParallelKeepsShortest",
			n:     2,
			edges: []Edge{{0, 1, 5}, {1, 0, 2}},
			want:  [][]float64{{0, 2}, {2, 0}},
			comps: 1,
		},
		{
			name:  "Disconnected",
			n:     3,
			edges: []Edge{{0, 1, 4}},
			// diameter 4 plus longest edge 4
			want: [][]float64{
				{0, 4, 8},
				{4, 0, 8},
				{8, 8, 0},
			},
			comps: 2,
		},
		{
			name:  "ReplacedParallelEdgeNotInFill",
			n:     3,
			edges: []Edge{{0, 1, 9}, {0, 1, 2}},
			// diameter 2 plus longest kept edge 2
			want: [][]float64{
				{0, 2, 4},
				{2, 0, 4},
				{4, 4, 0},
			},
			comps: 2,
		},
		{
			name:  "NoEdges",
			n:     2,
			want:  [][]float64{{0, 20}, {20, 0}},
			comps: 2,
		},
		{
			name:  "SelfLoopIgnored",
			n:     2,
			edges: []Edge{{0, 0, 3}, {0, 1, 1}},
			want:  [][]float64{{0, 1}, {1, 0}},
			comps: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Matrix(tt.n, tt.edges, 20)
			if err != nil {
				t.Fatalf("Matrix() error: %v", err)
			}
			for i := range tt.want {
				for j := range tt.want[i] {
					if math.Abs(r.D[i][j]-tt.want[i][j]) > 1e-9 {
						t.Errorf("D[%d][%d] = %v, want %v", i, j, r.D[i][j], tt.want[i][j])
					}
				}
			}
			if len(r.Components) != tt.comps {
				t.Errorf("len(Components) = %d, want %d", len(r.Components), tt.comps)
			}
		})
	}
}

func TestMatrixFiniteWithIsolatedNodes(t *testing.T) {
	r, err := Matrix(5, []Edge{{0, 1, 1}, {1, 2, 1}}, 20)
	if err != nil {
		t.Fatalf("Matrix() error: %v", err)
	}
	for i, row := range r.D {
		for j, d := range row {
			if math.IsInf(d, 0) || math.IsNaN(d) {
				t.Errorf("D[%d][%d] = %v, want finite", i, j, d)
			}
			if d != r.D[j][i] {
				t.Errorf("D not symmetric at %d,%d", i, j)
			}
		}
	}
	if r.Connected(0, 3) || !r.Connected(0, 2) {
		t.Error("Connected() disagrees with the link structure")
	}
	if got := r.Components; len(got) != 3 || got[0][0] != 0 || got[1][0] != 3 || got[2][0] != 4 {
		t.Errorf("Components = %v, want [[0 1 2] [3] [4]]", got)
	}
}

func TestMatrixRejectsBadLength(t *testing.T) {
	_, err := Matrix(2, []Edge{{0, 1, math.NaN()}}, 1)
	if !errors.Is(err, ErrBadLength) {
		t.Errorf("Matrix() error = %v, want ErrBadLength", err)
	}
}

func TestLinkLengths(t *testing.T) {
	// A star around 0 plus the leaf pair 1-2.
	edges := []Edge{{0, 1, 0}, {0, 2, 0}, {0, 3, 0}, {1, 2, 0}}

	sym := SymmetricDiffLengths(4, edges, 1)
	// N(0)={1,2,3}, N(1)={0,2}: union {0,1,2,3}, intersection {2}
	if want := 1 + math.Sqrt(3); math.Abs(sym[0]-want) > 1e-9 {
		t.Errorf("SymmetricDiffLengths()[0] = %v, want %v", sym[0], want)
	}

	jac := JaccardLengths(4, edges, 1)
	if want := 1 + 1.0/4; math.Abs(jac[0]-want) > 1e-9 {
		t.Errorf("JaccardLengths()[0] = %v, want %v", jac[0], want)
	}
	// node 3 has a single neighbour
	if jac[2] != 1 {
		t.Errorf("JaccardLengths()[2] = %v, want 1", jac[2])
	}
}
