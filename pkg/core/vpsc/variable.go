package vpsc

import (
	"fmt"
	"math"
)

// Variable is a position on one axis.
type Variable struct {
	DesiredPosition float64
	Weight          float64
	Scale           float64

	offset float64
	block  *Block
	cIn    []*Constraint
	cOut   []*Constraint
}

// NewVariable returns a variable with the given desired position, weight
// and scale. A zero weight or scale is replaced by 1.
func NewVariable(desired, weight, scale float64) *Variable {
	if weight == 0 {
		weight = 1
	}
	if scale == 0 {
		scale = 1
	}
	return &Variable{DesiredPosition: desired, Weight: weight, Scale: scale}
}

// Position returns the variable's current position. It is only meaningful
// after the variable has been handed to a [Solver].
func (v *Variable) Position() float64 {
	if v.block == nil {
		return v.DesiredPosition
	}
	return (v.block.ps.scale*v.block.posn + v.offset) / v.Scale
}

func (v *Variable) dfdv() float64 {
	return 2 * v.Weight * (v.Position() - v.DesiredPosition)
}

// visitNeighbours calls f for every active constraint on v, skipping the
// one leading back to prev.
func (v *Variable) visitNeighbours(prev *Variable, f func(c *Constraint, next *Variable)) {
	for _, c := range v.cOut {
		if c.active && c.Right != prev {
			f(c, c.Right)
		}
	}
	for _, c := range v.cIn {
		if c.active && c.Left != prev {
			f(c, c.Left)
		}
	}
}

// Constraint requires Right - Left >= Gap, or == Gap when Equality is set.
type Constraint struct {
	Left, Right *Variable
	Gap         float64
	Equality    bool

	lm            float64
	active        bool
	unsatisfiable bool
	index         int
}

// NewConstraint returns the constraint right - left >= gap.
func NewConstraint(left, right *Variable, gap float64) *Constraint {
	return &Constraint{Left: left, Right: right, Gap: gap}
}

// NewEquality returns the constraint right - left == gap.
func NewEquality(left, right *Variable, gap float64) *Constraint {
	return &Constraint{Left: left, Right: right, Gap: gap, Equality: true}
}

// Slack returns how much room is left before the constraint is violated.
// Negative slack means a violation. Unsatisfiable constraints report
// math.MaxFloat64 so the solver leaves them alone.
func (c *Constraint) Slack() float64 {
	if c.unsatisfiable {
		return math.MaxFloat64
	}
	return c.Right.Scale*c.Right.Position() - c.Gap - c.Left.Scale*c.Left.Position()
}

// Active reports whether the constraint is currently tight inside a block.
func (c *Constraint) Active() bool { return c.active }

// Unsatisfiable reports whether the solver gave up on the constraint.
func (c *Constraint) Unsatisfiable() bool { return c.unsatisfiable }

func (c *Constraint) String() string {
	op := ">="
	if c.Equality {
		op = "=="
	}
	return fmt.Sprintf("#%d: right - left %s %g", c.index, op, c.Gap)
}

// positionStats accumulates the weighted sums that give a block's optimal
// position.
type positionStats struct {
	scale      float64
	ab, ad, a2 float64
}

func (ps *positionStats) addVariable(v *Variable) {
	ai := ps.scale / v.Scale
	bi := v.offset / v.Scale
	wi := v.Weight
	ps.ab += wi * ai * bi
	ps.ad += wi * ai * v.DesiredPosition
	ps.a2 += wi * ai * ai
}

func (ps *positionStats) posn() float64 {
	return (ps.ad - ps.ab) / ps.a2
}
