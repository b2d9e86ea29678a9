package domain

import "fmt"

// Numeric is a value produced by formula evaluation: a real number or a matrix.
type Numeric struct {
	value  float64
	matrix [][]float64
}

// Scalar wraps a real number.
func Scalar(v float64) Numeric { return Numeric{value: v} }

// Matrix wraps a matrix value. Rows are not copied.
func Matrix(m [][]float64) Numeric { return Numeric{matrix: m} }

// IsMatrix reports whether the value is a matrix.
func (n Numeric) IsMatrix() bool { return n.matrix != nil }

// Float returns the scalar value, or an error for matrices.
func (n Numeric) Float() (float64, error) {
	if n.matrix != nil {
		return 0, fmt.Errorf("expected a real number, got a %dx%d matrix", len(n.matrix), n.cols())
	}
	return n.value, nil
}

// Bool interprets the value as a condition: any non-zero scalar is true.
func (n Numeric) Bool() (bool, error) {
	v, err := n.Float()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// Rows returns the matrix rows, or nil for scalars.
func (n Numeric) Rows() [][]float64 { return n.matrix }

func (n Numeric) cols() int {
	if len(n.matrix) == 0 {
		return 0
	}
	return len(n.matrix[0])
}

func (n Numeric) String() string {
	if n.matrix != nil {
		return fmt.Sprint(n.matrix)
	}
	return fmt.Sprint(n.value)
}
