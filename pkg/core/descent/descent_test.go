package descent

import (
	"errors"
	"math"
	"testing"
)

func square(n int, f func(i, j int) float64) [][]float64 {
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
		for j := range m[i] {
			if i != j {
				m[i][j] = f(i, j)
			}
		}
	}
	return m
}

func dist(de *Descent, u, v int) float64 {
	return math.Hypot(de.X[0][u]-de.X[0][v], de.X[1][u]-de.X[1][v])
}

func TestPseudoRandom(t *testing.T) {
	a, b := NewPseudoRandom(1), NewPseudoRandom(1)
	for i := 0; i < 100; i++ {
		x, y := a.Next(), b.Next()
		if x != y {
			t.Fatalf("step %d: %v != %v", i, x, y)
		}
		if x < 0 || x > 1.0001 {
			t.Fatalf("step %d: %v out of range", i, x)
		}
	}
	if got := NewPseudoRandom(1).Next(); math.Abs(got-41.0/32767) > 1e-12 {
		t.Errorf("first value = %v, want %v", got, 41.0/32767)
	}
}

func TestRunReachesIdealDistance(t *testing.T) {
	tests := []struct {
		name  string
		start [2][]float64
		ideal float64
	}{
		{"Apart", [2][]float64{{0, 10}, {0, 0}}, 50},
		{"TooFar", [2][]float64{{0, 200}, {0, 30}}, 50},
		{"Coincident", [2][]float64{{5, 5}, {5, 5}}, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			de := New(tt.start, square(2, func(int, int) float64 { return tt.ideal }), nil)
			de.Threshold = 1e-9
			if _, err := de.Run(200); err != nil {
				t.Fatalf("Run() error: %v", err)
			}
			if got := dist(de, 0, 1); math.Abs(got-tt.ideal) > 0.01*tt.ideal {
				t.Errorf("distance = %v, want %v", got, tt.ideal)
			}
		})
	}
}

func TestRunReducesStress(t *testing.T) {
	// A path of four nodes with graph distances as ideal lengths, started
	// on a cramped diagonal.
	d := square(4, func(i, j int) float64 { return 10 * math.Abs(float64(i-j)) })
	x := [2][]float64{{0, 1, 2, 3}, {0, 2, 1, 3}}
	de := New(x, d, nil)
	before := de.ComputeStress()
	after, err := de.Run(50)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if after >= before {
		t.Errorf("stress %v -> %v, want a decrease", before, after)
	}
	for i := 0; i < 2; i++ {
		for _, v := range de.X[i] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("non-finite position %v", v)
			}
		}
	}
}

func TestLocks(t *testing.T) {
	de := New([2][]float64{{0, 10}, {0, 0}}, square(2, func(int, int) float64 { return 50 }), nil)
	de.Threshold = 1e-12
	de.Locks.Add(0, [2]float64{0, 0})
	if _, err := de.Run(500); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if p := math.Hypot(de.X[0][0], de.X[1][0]); p > 0.5 {
		t.Errorf("locked node drifted %v from its lock", p)
	}
	if got := dist(de, 0, 1); math.Abs(got-50) > 0.5 {
		t.Errorf("distance = %v, want 50", got)
	}
}

func TestGridSnap(t *testing.T) {
	de := New([2][]float64{{12}, {0}}, [][]float64{{0}}, nil)
	de.SnapGridSize = 10
	de.NumGridSnapNodes = 1
	if _, err := de.RungeKutta(); err != nil {
		t.Fatalf("RungeKutta() error: %v", err)
	}
	if math.Abs(de.X[0][0]-10) > 1e-9 || math.Abs(de.X[1][0]) > 1e-9 {
		t.Errorf("snapped to (%v, %v), want (10, 0)", de.X[0][0], de.X[1][0])
	}
}

func TestRepelOnlyWeights(t *testing.T) {
	// Weight 2 pairs only push apart: already far enough means no force.
	x := [2][]float64{{0, 100}, {0, 0}}
	de := New(x, square(2, func(int, int) float64 { return 10 }), square(2, func(int, int) float64 { return 2 }))
	if _, err := de.Run(10); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if got := dist(de, 0, 1); math.Abs(got-100) > 1e-9 {
		t.Errorf("distance = %v, want unchanged 100", got)
	}
}

type clampProjector struct {
	calls int
	err   error
}

func (p *clampProjector) ProjectX(_, _, x []float64) error {
	p.calls++
	for i := range x {
		x[i] = math.Max(x[i], 0)
	}
	return p.err
}

func (p *clampProjector) ProjectY(_, _, _ []float64) error { return p.err }

func TestProjection(t *testing.T) {
	d := square(3, func(int, int) float64 { return 20 })
	de := New([2][]float64{{0, 1, 2}, {0, 1, 0}}, d, nil)
	p := &clampProjector{}
	de.Project = p
	if _, err := de.Run(20); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if p.calls == 0 {
		t.Fatal("projector never called")
	}
	for i, v := range de.X[0] {
		if v < -1e-9 {
			t.Errorf("x[%d] = %v, want >= 0", i, v)
		}
	}

	boom := errors.New("boom")
	de.Project = &clampProjector{err: boom}
	if _, err := de.Run(1); !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, want %v", err, boom)
	}
}
