package linalg

import (
	"fmt"

	"github.com/ndimray/ndimray/rterr"
)

// Cross computes the generalized cross product of n−1 vectors of length n.
// The i-th component of the result is (−1)^(i+(n mod 2)) times the
// determinant of the (n−1)×(n−1) minor formed by deleting row i of the
// matrix whose columns are the inputs.
func Cross(vectors []Vector) (Vector, error) {
	if len(vectors) == 0 {
		return Vector{}, fmt.Errorf("linalg.Cross: no input vectors: %w", rterr.ErrDimensionMismatch)
	}
	n := vectors[0].Dimension()
	if len(vectors) != n-1 {
		return Vector{}, fmt.Errorf("linalg.Cross: need n-1=%d vectors, got %d: %w", n-1, len(vectors), rterr.ErrDimensionMismatch)
	}
	for _, v := range vectors {
		if v.Dimension() != n {
			return Vector{}, fmt.Errorf("linalg.Cross: mixed dimensions: %w", rterr.ErrDimensionMismatch)
		}
	}

	result := NewVector(n)
	minor := NewMatrix(n - 1)

	for i := 0; i < n; i++ {
		row := 0
		for r := 0; r < n; r++ {
			if r == i {
				continue
			}
			for c := 0; c < n-1; c++ {
				minor.Set(row, c, vectors[c].At(r))
			}
			row++
		}

		det := minor.Determinant()
		if (i+n)%2 != 0 {
			det = -det
		}
		result.Set(i, det)
	}

	return result, nil
}
