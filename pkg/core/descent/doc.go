// Package descent minimises layout stress by gradient descent.
//
// # Stress
//
// For positions p and ideal distances D the stress is
//
//	Σ_{i<j} (|p_i - p_j| - D_ij)² / D_ij²
//
// [Descent] computes its gradient and Hessian, takes the step size that is
// optimal for the local quadratic model, and combines four such steps in a
// Runge–Kutta update ([Descent.RungeKutta]). [Descent.Run] repeats that
// until the relative change falls below Threshold.
//
// # Weights
//
// G scales each pair's contribution. A weight above 1 marks a pair that
// should only push apart: it is ignored once the pair is further apart
// than its ideal distance. A weight of 0 removes the pair entirely.
//
// # Projection
//
// When a [Projector] is set, every step is projected onto the layout's
// constraints one axis at a time: first x, then y using the projected x.
// A projection error (infeasible constraints) aborts the step and is
// returned to the caller.
//
// # Locks and grid snapping
//
// Locked nodes are pulled back to their lock position with a stiffness
// matching the largest Hessian diagonal. With SnapGridSize > 0 the first
// NumGridSnapNodes nodes are additionally drawn to the centre of the
// nearest grid cell.
//
// # Determinism
//
// Coincident nodes are nudged apart using [PseudoRandom], a fixed-seed
// linear congruential generator, so identical input always produces
// identical output.
package descent
