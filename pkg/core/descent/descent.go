package descent

import "math"

// dims is the number of layout dimensions.
const dims = 2

// zeroDistance is the squared separation under which two nodes count as
// coincident and get nudged apart.
const zeroDistance = 1e-9

// Projector keeps positions feasible after each descent step. x0 and y0
// are the positions before the step; the third slice is the stepped axis,
// updated in place.
type Projector interface {
	ProjectX(x0, y0, x []float64) error
	ProjectY(x0, y0, y []float64) error
}

// Descent holds the optimiser state for n nodes in two dimensions.
type Descent struct {
	// X holds the x and y coordinates. It is updated in place.
	X [dims][]float64

	// D is the matrix of ideal distances.
	D [][]float64

	// G weights each pair; nil means 1 everywhere. See the package docs.
	G [][]float64

	// Threshold is the relative stress change at which Run stops.
	Threshold float64

	Locks Locks

	NumGridSnapNodes int
	SnapGridSize     float64
	SnapStrength     float64
	ScaleSnapByMaxH  bool

	// Project, when set, constrains every step.
	Project Projector

	n      int
	h      [dims][][]float64
	g      [dims][]float64
	hd     [dims][]float64
	a, b   [dims][]float64
	c, d   [dims][]float64
	e      [dims][]float64
	ia, ib [dims][]float64
	minD   float64
	random *PseudoRandom
}

// New returns an optimiser over positions x with ideal distances d and
// optional pair weights g.
func New(x [dims][]float64, d [][]float64, g [][]float64) *Descent {
	n := len(x[0])
	de := &Descent{
		X:            x,
		D:            d,
		G:            g,
		Threshold:    1e-4,
		SnapGridSize: 100,
		SnapStrength: 1000,
		n:            n,
		random:       NewPseudoRandom(1),
	}
	de.minD = math.MaxFloat64
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if v := d[i][j]; v > 0 && v < de.minD {
				de.minD = v
			}
		}
	}
	if de.minD == math.MaxFloat64 {
		de.minD = 1
	}
	for i := 0; i < dims; i++ {
		de.h[i] = newSquare(n)
		de.g[i] = make([]float64, n)
		de.hd[i] = make([]float64, n)
		for _, buf := range []*[dims][]float64{&de.a, &de.b, &de.c, &de.d, &de.e, &de.ia, &de.ib} {
			buf[i] = make([]float64, n)
		}
	}
	return de
}

// N returns the number of nodes.
func (de *Descent) N() int { return de.n }

func newSquare(n int) [][]float64 {
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	return m
}

// offsetDir returns a deterministic direction of length minD.
func (de *Descent) offsetDir() [dims]float64 {
	var u [dims]float64
	l := 0.0
	for i := range u {
		u[i] = de.random.NextBetween(0.01, 1) - 0.5
		l += u[i] * u[i]
	}
	l = math.Sqrt(l)
	if l == 0 {
		u[0], l = 1, 1
	}
	for i := range u {
		u[i] *= de.minD / l
	}
	return u
}

// ComputeDerivatives fills the gradient and Hessian at positions x.
// Coincident nodes in x are nudged apart first.
func (de *Descent) ComputeDerivatives(x [dims][]float64) {
	n := de.n
	if n < 1 {
		return
	}
	var d, d2, huu [dims]float64
	maxH := 0.0
	for u := 0; u < n; u++ {
		for i := 0; i < dims; i++ {
			huu[i] = 0
			de.g[i][u] = 0
		}
		for v := 0; v < n; v++ {
			if u == v {
				continue
			}
			sq := 0.0
			for tries := n; tries > 0; tries-- {
				sq = 0
				for i := 0; i < dims; i++ {
					dx := x[i][u] - x[i][v]
					d[i] = dx
					d2[i] = dx * dx
					sq += d2[i]
				}
				if sq > zeroDistance {
					break
				}
				rd := de.offsetDir()
				for i := 0; i < dims; i++ {
					x[i][v] += rd[i]
				}
			}
			dist := math.Sqrt(sq)
			ideal := de.D[u][v]
			w := 1.0
			if de.G != nil {
				w = de.G[u][v]
			}
			if (w > 1 && dist > ideal) || w == 0 || ideal <= 0 || math.IsInf(ideal, 0) || math.IsNaN(ideal) {
				for i := 0; i < dims; i++ {
					de.h[i][u][v] = 0
				}
				continue
			}
			if w > 1 {
				w = 1
			}
			ideal2 := ideal * ideal
			gs := 2 * w * (dist - ideal) / (ideal2 * dist)
			cube := sq * dist
			hs := -2 * w / (ideal2 * cube)
			if math.IsNaN(gs) || math.IsInf(gs, 0) || math.IsNaN(hs) || math.IsInf(hs, 0) {
				for i := 0; i < dims; i++ {
					de.h[i][u][v] = 0
				}
				continue
			}
			for i := 0; i < dims; i++ {
				de.g[i][u] += d[i] * gs
				de.h[i][u][v] = hs * (2*cube + ideal*(d2[i]-sq))
				huu[i] -= de.h[i][u][v]
			}
		}
		for i := 0; i < dims; i++ {
			de.h[i][u][u] = huu[i]
			maxH = math.Max(maxH, huu[i])
		}
	}

	if de.SnapGridSize > 0 {
		de.applyGridSnap(x, maxH)
	}

	if !de.Locks.IsEmpty() {
		de.Locks.Apply(func(u int, p [2]float64) {
			for i := 0; i < dims; i++ {
				de.h[i][u][u] += maxH
				de.g[i][u] -= maxH * (p[i] - x[i][u])
			}
		})
	}
}

// applyGridSnap adds a spring towards the nearest grid cell centre for
// nodes within half a cell of it.
func (de *Descent) applyGridSnap(x [dims][]float64, maxH float64) {
	grid := de.SnapGridSize
	r := grid / 2
	k := de.SnapStrength / (r * r)
	if de.ScaleSnapByMaxH {
		k *= maxH
	}
	for u := 0; u < de.NumGridSnapNodes && u < de.n; u++ {
		for i := 0; i < dims; i++ {
			xiu := x[i][u]
			m := xiu / grid
			f := math.Mod(m, 1)
			q := m - f
			var dx float64
			switch {
			case math.Abs(f) <= 0.5:
				dx = xiu - q*grid
			case xiu > 0:
				dx = xiu - (q+1)*grid
			default:
				dx = xiu - (q-1)*grid
			}
			if -r < dx && dx <= r {
				de.g[i][u] += k * dx
				de.h[i][u][u] += k
			}
		}
	}
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func rightMultiply(m [][]float64, v, r []float64) {
	for i := range m {
		r[i] = dot(m[i], v)
	}
}

// ComputeStepSize returns the step length along direction d that minimises
// the local quadratic model, or 0 when the model is degenerate.
func (de *Descent) ComputeStepSize(d [dims][]float64) float64 {
	num, den := 0.0, 0.0
	for i := 0; i < dims; i++ {
		num += dot(de.g[i], d[i])
		rightMultiply(de.h[i], d[i], de.hd[i])
		den += dot(d[i], de.hd[i])
	}
	step := num / den
	if den == 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return 0
	}
	return step
}

// ReduceStress takes a single unprojected gradient step and returns the
// resulting stress.
func (de *Descent) ReduceStress() float64 {
	de.ComputeDerivatives(de.X)
	alpha := de.ComputeStepSize(de.g)
	for i := 0; i < dims; i++ {
		de.takeDescentStep(de.X[i], de.g[i], alpha)
	}
	return de.ComputeStress()
}

func (de *Descent) takeDescentStep(x, d []float64, step float64) {
	for i := 0; i < de.n; i++ {
		x[i] -= step * d[i]
	}
}

func copyInto(dst, src [dims][]float64) {
	for i := 0; i < dims; i++ {
		copy(dst[i], src[i])
	}
}

func (de *Descent) stepAndProject(x0, r, d [dims][]float64, step float64) error {
	copyInto(r, x0)
	de.takeDescentStep(r[0], d[0], step)
	if de.Project != nil {
		if err := de.Project.ProjectX(x0[0], x0[1], r[0]); err != nil {
			return err
		}
	}
	de.takeDescentStep(r[1], d[1], step)
	if de.Project != nil {
		if err := de.Project.ProjectY(r[0], x0[1], r[1]); err != nil {
			return err
		}
	}
	return nil
}

func (de *Descent) computeNextPosition(x0, r [dims][]float64) error {
	de.ComputeDerivatives(x0)
	alpha := de.ComputeStepSize(de.g)
	if err := de.stepAndProject(x0, r, de.g, alpha); err != nil {
		return err
	}
	if de.Project == nil {
		return nil
	}
	// Step again along the projected direction.
	for i := 0; i < dims; i++ {
		for j := 0; j < de.n; j++ {
			de.e[i][j] = x0[i][j] - r[i][j]
		}
	}
	beta := math.Max(0.2, math.Min(de.ComputeStepSize(de.e), 1))
	return de.stepAndProject(x0, r, de.e, beta)
}

func mid(a, b, m [dims][]float64) {
	for i := 0; i < dims; i++ {
		for j := range a[i] {
			m[i][j] = a[i][j] + (b[i][j]-a[i][j])/2
		}
	}
}

// RungeKutta advances X by one fourth-order Runge–Kutta step and returns
// the squared displacement it caused.
func (de *Descent) RungeKutta() (float64, error) {
	if err := de.computeNextPosition(de.X, de.a); err != nil {
		return 0, err
	}
	mid(de.X, de.a, de.ia)
	if err := de.computeNextPosition(de.ia, de.b); err != nil {
		return 0, err
	}
	mid(de.X, de.b, de.ib)
	if err := de.computeNextPosition(de.ib, de.c); err != nil {
		return 0, err
	}
	if err := de.computeNextPosition(de.c, de.d); err != nil {
		return 0, err
	}
	disp := 0.0
	for i := 0; i < dims; i++ {
		for j := 0; j < de.n; j++ {
			x := (de.a[i][j] + 2*de.b[i][j] + 2*de.c[i][j] + de.d[i][j]) / 6
			if math.IsNaN(x) || math.IsInf(x, 0) {
				continue
			}
			dx := de.X[i][j] - x
			disp += dx * dx
			de.X[i][j] = x
		}
	}
	return disp, nil
}

// Run performs up to iterations Runge–Kutta steps, stopping early once the
// stress changes by less than Threshold relative to the previous step. It
// returns the final stress.
func (de *Descent) Run(iterations int) (float64, error) {
	stress := math.MaxFloat64
	for ; iterations > 0; iterations-- {
		if _, err := de.RungeKutta(); err != nil {
			return stress, err
		}
		s := de.ComputeStress()
		converged := s == 0 || math.Abs(stress/s-1) < de.Threshold
		stress = s
		if converged {
			break
		}
	}
	if stress == math.MaxFloat64 {
		stress = de.ComputeStress()
	}
	return stress, nil
}

// ComputeStress returns the stress of the current positions over all pairs
// with a finite, positive ideal distance.
func (de *Descent) ComputeStress() float64 {
	stress := 0.0
	for u := 0; u < de.n-1; u++ {
		for v := u + 1; v < de.n; v++ {
			if de.G != nil && de.G[u][v] == 0 {
				continue
			}
			l := 0.0
			for i := 0; i < dims; i++ {
				dx := de.X[i][u] - de.X[i][v]
				l += dx * dx
			}
			l = math.Sqrt(l)
			d := de.D[u][v]
			if d <= 0 || math.IsInf(d, 0) {
				continue
			}
			rl := d - l
			stress += rl * rl / (d * d)
		}
	}
	return stress
}
