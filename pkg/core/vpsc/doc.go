// Package vpsc projects one-dimensional positions onto a set of separation
// constraints.
//
// # Overview
//
// Given variables with desired positions and weights, and constraints of
// the form
//
//	right - left >= gap    (or == gap for equalities)
//
// the [Solver] finds the feasible assignment with the smallest weighted
// squared displacement from the desired positions. The layout engine calls
// it once per axis per iteration to keep node positions feasible.
//
// # Algorithm
//
// The solver is an active-set method over rigid blocks. Every variable
// starts in its own block. [Solver.Satisfy] repeatedly takes the most
// violated inactive constraint and merges the blocks on either side of it,
// moving the merged block to the weighted mean of its members' desired
// positions. [Solver.Solve] additionally splits blocks along active
// constraints whose Lagrange multiplier is negative, which lets blocks
// drift apart again when that lowers the cost, and iterates until the cost
// stops changing.
//
// Equality constraints are never split. A constraint that closes a cycle of
// active constraints, or that cannot be satisfied by splitting, is marked
// unsatisfiable and reported through [ErrUnsatisfiable].
//
// # Tolerances
//
// The numeric thresholds are fixed:
//
//   - [ZeroUpperBound] (-1e-10): slack below this counts as a violation
//   - [LagrangianTolerance] (-1e-4): multipliers below this trigger a split
//   - [CostTolerance] (1e-4): Solve stops when the cost changes by less
//
// When several constraints are violated by the same amount (within
// ZeroUpperBound), the one whose left variable sits further left is
// resolved first, then the one given earlier.
//
// # Overlap constraints
//
// [GenerateXConstraints] and [GenerateYConstraints] sweep a set of
// rectangles and emit the separation constraints that, once both axes are
// solved, leave no two rectangles overlapping. [GenerateXGroupConstraints]
// and [GenerateYGroupConstraints] do the same for a hierarchy of groups,
// where each group contributes a pair of boundary variables that must
// contain its members. [RemoveOverlaps] is a convenience wrapper running
// both passes on plain rectangles.
package vpsc
