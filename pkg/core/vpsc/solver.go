package vpsc

import (
	"errors"
	"fmt"
	"math"
)

// Numeric tolerances used by the solver.
const (
	// LagrangianTolerance is the multiplier below which an active
	// constraint is split.
	LagrangianTolerance = -1e-4

	// ZeroUpperBound is the slack below which a constraint counts as
	// violated.
	ZeroUpperBound = -1e-10

	// CostTolerance bounds the cost change at which Solve stops.
	CostTolerance = 1e-4
)

// slackTie is the slack difference under which two constraints count as
// equally violated.
const slackTie = -ZeroUpperBound

// maxSolveRounds caps the outer loop of Solve. The cost is monotone so the
// cap is only reached on numerically degenerate input.
const maxSolveRounds = 1000

var (
	// ErrUnsatisfiable is returned when some constraints cannot hold
	// together, for example a cycle of strict separations or two
	// conflicting equalities.
	ErrUnsatisfiable = errors.New("vpsc: unsatisfiable constraints")

	// ErrNotInitialised is returned when Cost is called before Satisfy or
	// Solve.
	ErrNotInitialised = errors.New("vpsc: solver has no blocks")
)

// UnsatisfiableError lists the constraints the solver had to drop.
type UnsatisfiableError struct {
	Constraints []*Constraint
}

func (e *UnsatisfiableError) Error() string {
	return fmt.Sprintf("%v: %d constraint(s), first %v", ErrUnsatisfiable, len(e.Constraints), e.Constraints[0])
}

// Unwrap makes errors.Is(err, ErrUnsatisfiable) work.
func (e *UnsatisfiableError) Unwrap() error { return ErrUnsatisfiable }

// Solver projects variables onto a constraint set.
type Solver struct {
	vs       []*Variable
	cs       []*Constraint
	inactive []*Constraint
	bs       *blocks
}

// NewSolver wires the constraints into the variables. A variable or
// constraint must not be shared between live solvers.
func NewSolver(vs []*Variable, cs []*Constraint) *Solver {
	for _, v := range vs {
		v.cIn = v.cIn[:0]
		v.cOut = v.cOut[:0]
		v.block = nil
	}
	for i, c := range cs {
		c.index = i
		c.active = false
		c.unsatisfiable = false
		c.Left.cOut = append(c.Left.cOut, c)
		c.Right.cIn = append(c.Right.cIn, c)
	}
	return &Solver{vs: vs, cs: cs, inactive: append([]*Constraint(nil), cs...)}
}

// Cost returns the weighted squared displacement of the current solution.
func (s *Solver) Cost() (float64, error) {
	if s.bs == nil {
		return 0, ErrNotInitialised
	}
	return s.bs.cost(), nil
}

// SetStartingPositions resets the solver to one block per variable, placed
// at ps.
func (s *Solver) SetStartingPositions(ps []float64) {
	s.inactive = s.inactive[:0]
	for _, c := range s.cs {
		c.active = false
		s.inactive = append(s.inactive, c)
	}
	s.bs = newBlocks(s.vs)
	for i, b := range s.bs.list {
		b.posn = ps[i]
	}
}

// SetDesiredPositions sets every variable's desired position.
func (s *Solver) SetDesiredPositions(ps []float64) {
	for i, v := range s.vs {
		v.DesiredPosition = ps[i]
	}
}

// mostViolated returns the constraint to resolve next and removes it from
// the inactive list when it will be acted on. Equalities come first.
// Among inequalities the smallest slack wins; near-ties go to the
// constraint whose left variable is further left, then to input order.
func (s *Solver) mostViolated() *Constraint {
	minSlack := math.MaxFloat64
	var v *Constraint
	at := -1
	for i, c := range s.inactive {
		if c.unsatisfiable {
			continue
		}
		if c.Equality {
			v, at = c, i
			minSlack = c.Slack()
			break
		}
		slack := c.Slack()
		better := v == nil || slack < minSlack-slackTie
		tied := v != nil && math.Abs(slack-minSlack) <= slackTie && s.leftOf(c, v)
		if better || tied {
			minSlack, v, at = slack, c, i
		}
	}
	if at >= 0 && ((minSlack < ZeroUpperBound && !v.active) || v.Equality) {
		last := len(s.inactive) - 1
		s.inactive[at] = s.inactive[last]
		s.inactive = s.inactive[:last]
	}
	return v
}

// leftOf orders two equally violated constraints.
func (s *Solver) leftOf(a, b *Constraint) bool {
	pa, pb := a.Left.Position(), b.Left.Position()
	if pa != pb {
		return pa < pb
	}
	return a.index < b.index
}

// Satisfy merges blocks until no constraint is violated. It does not
// minimise the cost beyond what merging gives.
func (s *Solver) Satisfy() error {
	if s.bs == nil {
		s.bs = newBlocks(s.vs)
	}
	s.inactive = s.bs.split(s.inactive)
	for {
		v := s.mostViolated()
		if v == nil || !(v.Equality || (v.Slack() < ZeroUpperBound && !v.active)) {
			break
		}
		lb, rb := v.Left.block, v.Right.block
		if lb != rb {
			s.bs.merge(v)
			continue
		}
		if v.Equality && math.Abs(v.Slack()) <= slackTie {
			// Already implied by the block it sits in.
			continue
		}
		if lb.isActiveDirectedPathBetween(v.Right, v.Left) {
			v.unsatisfiable = true
			continue
		}
		c, l, r, ok := lb.splitBetween(v.Left, v.Right)
		if !ok {
			v.unsatisfiable = true
			continue
		}
		s.bs.insert(l)
		s.bs.insert(r)
		s.bs.remove(lb)
		s.inactive = append(s.inactive, c)
		if v.Slack() >= 0 {
			s.inactive = append(s.inactive, v)
		} else {
			s.bs.merge(v)
		}
	}
	return s.unsatisfiable()
}

// Solve finds the minimum cost feasible positions and returns that cost.
// On ErrUnsatisfiable the positions still satisfy every other constraint.
func (s *Solver) Solve() (float64, error) {
	if err := s.Satisfy(); err != nil {
		return s.bs.cost(), err
	}
	last, cost := math.MaxFloat64, s.bs.cost()
	for i := 0; i < maxSolveRounds && math.Abs(last-cost) > CostTolerance; i++ {
		if err := s.Satisfy(); err != nil {
			return s.bs.cost(), err
		}
		last, cost = cost, s.bs.cost()
	}
	return cost, nil
}

func (s *Solver) unsatisfiable() error {
	var bad []*Constraint
	for _, c := range s.cs {
		if c.unsatisfiable {
			bad = append(bad, c)
		}
	}
	if len(bad) == 0 {
		return nil
	}
	return &UnsatisfiableError{Constraints: bad}
}

// Positions returns the current position of every variable.
func (s *Solver) Positions() []float64 {
	out := make([]float64, len(s.vs))
	for i, v := range s.vs {
		out[i] = v.Position()
	}
	return out
}
