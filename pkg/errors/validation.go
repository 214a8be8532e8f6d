package errors

import (
	"math"
	"strings"
)

// ValidateAxis validates an axis name. Only "x" and "y" are accepted.
func ValidateAxis(axis string) error {
	switch strings.ToLower(axis) {
	case "x", "y":
		return nil
	case "":
		return New(ErrCodeInvalidInput, "axis cannot be empty")
	default:
		return New(ErrCodeInvalidInput, "unknown axis %q (want x or y)", axis)
	}
}

// ValidateIndex validates that i addresses one of n items.
func ValidateIndex(what string, i, n int) error {
	if i < 0 || i >= n {
		return New(ErrCodeInvalidInput, "%s index %d out of range [0, %d)", what, i, n)
	}
	return nil
}

// ValidateFinite validates that v is a finite number.
func ValidateFinite(what string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidInput, "%s must be finite, got %v", what, v)
	}
	return nil
}

// ValidateNonNegative validates that v is finite and not negative.
func ValidateNonNegative(what string, v float64) error {
	if err := ValidateFinite(what, v); err != nil {
		return err
	}
	if v < 0 {
		return New(ErrCodeInvalidInput, "%s must be non-negative, got %v", what, v)
	}
	return nil
}

// ValidateIterations validates a phase iteration count.
//
// Counts are capped so a typo on the command line cannot spin for hours.
func ValidateIterations(phase string, n int) error {
	const maxIterations = 100000
	if n < 0 {
		return New(ErrCodeInvalidInput, "%s iterations cannot be negative", phase)
	}
	if n > maxIterations {
		return New(ErrCodeInvalidInput, "%s iterations too large (max %d)", phase, maxIterations)
	}
	return nil
}

// ValidateMatrix validates an n by n matrix of finite, non-negative,
// symmetric values with a zero diagonal.
func ValidateMatrix(m [][]float64, n int) error {
	if len(m) != n {
		return New(ErrCodeInvalidInput, "distance matrix has %d rows, want %d", len(m), n)
	}
	for i, row := range m {
		if len(row) != n {
			return New(ErrCodeInvalidInput, "distance matrix row %d has %d columns, want %d", i, len(row), n)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return New(ErrCodeInvalidInput, "distance matrix entry [%d][%d] = %v is not a finite non-negative number", i, j, v)
			}
			if i == j && v != 0 {
				return New(ErrCodeInvalidInput, "distance matrix diagonal [%d][%d] = %v, want 0", i, i, v)
			}
			if j < i && m[j][i] != v {
				return New(ErrCodeInvalidInput, "distance matrix is not symmetric at [%d][%d]", i, j)
			}
		}
	}
	return nil
}
