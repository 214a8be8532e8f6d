package errors

import (
	"math"
	"testing"
)

func TestValidateAxis(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"x", "x", false},
		{"y", "y", false},
		{"upper case", "Y", false},

		{"empty", "", true},
		{"z", "z", true},
		{"word", "horizontal", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAxis(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAxis(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateAxis(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateIndex(t *testing.T) {
	tests := []struct {
		name    string
		i, n    int
		wantErr bool
	}{
		{"first", 0, 3, false},
		{"last", 2, 3, false},

		{"negative", -1, 3, true},
		{"past end", 3, 3, true},
		{"empty", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIndex("node", tt.i, tt.n)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateIndex(%d, %d) error = %v, wantErr %v", tt.i, tt.n, err, tt.wantErr)
			}
		})
	}
}

func TestValidateNonNegative(t *testing.T) {
	tests := []struct {
		name    string
		input   float64
		wantErr bool
	}{
		{"zero", 0, false},
		{"positive", 12.5, false},

		{"negative", -1, true},
		{"nan", math.NaN(), true},
		{"inf", math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNonNegative("gap", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNonNegative(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateIterations(t *testing.T) {
	tests := []struct {
		name    string
		input   int
		wantErr bool
	}{
		{"zero", 0, false},
		{"typical", 20, false},
		{"max", 100000, false},

		{"negative", -1, true},
		{"too large", 100001, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIterations("unconstrained", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateIterations(%d) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateMatrix(t *testing.T) {
	tests := []struct {
		name    string
		m       [][]float64
		n       int
		wantErr bool
	}{
		{"valid", [][]float64{{0, 1}, {1, 0}}, 2, false},
		{"empty", nil, 0, false},

		{"wrong rows", [][]float64{{0, 1}, {1, 0}}, 3, true},
		{"ragged", [][]float64{{0, 1}, {1}}, 2, true},
		{"asymmetric", [][]float64{{0, 1}, {2, 0}}, 2, true},
		{"diagonal", [][]float64{{1, 1}, {1, 0}}, 2, true},
		{"negative", [][]float64{{0, -1}, {-1, 0}}, 2, true},
		{"nan", [][]float64{{0, math.NaN()}, {math.NaN(), 0}}, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMatrix(tt.m, tt.n)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateMatrix() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
