package linalg

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/ndimray/ndimray/rterr"
)

// Matrix is a row-major n×n array of Real. Row length is the unpadded n
// (for cache density) — unlike Vector, Matrix storage carries no SIMD
// padding.
type Matrix struct {
	n    int
	data []Real // row-major, len == n*n
}

// NewMatrix allocates a zero n×n matrix.
func NewMatrix(n int) Matrix {
	return Matrix{n: n, data: make([]Real, n*n)}
}

// MatrixFromValues builds an n×n matrix from row-major values. len(vals)
// must equal n*n.
func MatrixFromValues(n int, vals []Real) (Matrix, error) {
	if len(vals) != n*n {
		return Matrix{}, fmt.Errorf("linalg.MatrixFromValues: n=%d len(vals)=%d: %w", n, len(vals), rterr.ErrDimensionMismatch)
	}
	m := NewMatrix(n)
	copy(m.data, vals)
	return m, nil
}

// Identity returns the n×n identity matrix.
func Identity(n int) Matrix {
	m := NewMatrix(n)
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1
	}
	return m
}

// ScaleMatrix returns a diagonal matrix with every diagonal entry set to c.
func ScaleMatrix(n int, c Real) Matrix {
	m := NewMatrix(n)
	for i := 0; i < n; i++ {
		m.data[i*n+i] = c
	}
	return m
}

// ScaleMatrixVector returns a diagonal matrix whose diagonal is v.
func ScaleMatrixVector(v Vector) Matrix {
	n := v.Dimension()
	m := NewMatrix(n)
	for i := 0; i < n; i++ {
		m.data[i*n+i] = v.At(i)
	}
	return m
}

// Reflection returns the Householder reflection matrix about the hyperplane
// orthogonal to the (assumed unit) normal vector: I - 2·n·nᵀ.
func Reflection(normal Vector) Matrix {
	n := normal.Dimension()
	m := Identity(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			m.data[i*n+j] -= 2 * normal.At(i) * normal.At(j)
		}
	}
	return m
}

// Rotation returns the rotation matrix by angle theta in the plane spanned
// by orthonormal axes a and b (given as axis indices into the standard
// basis), acting as identity elsewhere.
func Rotation(n, a, b int, theta Real) (Matrix, error) {
	if a < 0 || a >= n || b < 0 || b >= n || a == b {
		return Matrix{}, fmt.Errorf("linalg.Rotation: n=%d a=%d b=%d: %w", n, a, b, rterr.ErrInvalidAxis)
	}
	m := Identity(n)
	c, s := math32.Cos(theta), math32.Sin(theta)
	m.data[a*n+a] = c
	m.data[a*n+b] = -s
	m.data[b*n+a] = s
	m.data[b*n+b] = c
	return m, nil
}

// Dimension returns n.
func (m Matrix) Dimension() int { return m.n }

// At returns element (i,j).
func (m Matrix) At(i, j int) Real { return m.data[i*m.n+j] }

// Set mutates element (i,j) in place.
func (m *Matrix) Set(i, j int, val Real) { m.data[i*m.n+j] = val }

// Row returns row i as a Vector.
func (m Matrix) Row(i int) Vector {
	v := NewVector(m.n)
	copy(v.data, m.data[i*m.n:(i+1)*m.n])
	return v
}

// SetRow replaces row i with the logical elements of v.
func (m *Matrix) SetRow(i int, v Vector) {
	copy(m.data[i*m.n:(i+1)*m.n], v.data[:m.n])
}

// Column returns column j as a plain slice of length n.
func (m Matrix) Column(j int) []Real {
	out := make([]Real, m.n)
	for i := 0; i < m.n; i++ {
		out[i] = m.data[i*m.n+j]
	}
	return out
}

func sameMatrixDimension(a, b Matrix) error {
	if a.n != b.n {
		return fmt.Errorf("linalg: a.n=%d b.n=%d: %w", a.n, b.n, rterr.ErrDimensionMismatch)
	}
	return nil
}

// Mul returns m·o.
func (m Matrix) Mul(o Matrix) (Matrix, error) {
	if err := sameMatrixDimension(m, o); err != nil {
		return Matrix{}, err
	}
	n := m.n
	out := NewMatrix(n)
	for i := 0; i < n; i++ {
		for k := 0; k < n; k++ {
			mik := m.data[i*n+k]
			if mik == 0 {
				continue
			}
			for j := 0; j < n; j++ {
				out.data[i*n+j] += mik * o.data[k*n+j]
			}
		}
	}
	return out, nil
}

// MulTranspose returns m·oᵀ, used by camera.transform (axes ← axes·Mᵀ).
func (m Matrix) MulTranspose(o Matrix) (Matrix, error) {
	if err := sameMatrixDimension(m, o); err != nil {
		return Matrix{}, err
	}
	n := m.n
	out := NewMatrix(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			var sum Real
			for k := 0; k < n; k++ {
				sum += m.data[i*n+k] * o.data[j*n+k]
			}
			out.data[i*n+j] = sum
		}
	}
	return out, nil
}

// MulVector returns m·v.
func (m Matrix) MulVector(v Vector) (Vector, error) {
	if m.n != v.Dimension() {
		return Vector{}, fmt.Errorf("linalg.MulVector: m.n=%d v.dimension=%d: %w", m.n, v.Dimension(), rterr.ErrDimensionMismatch)
	}
	n := m.n
	out := NewVector(n)
	for i := 0; i < n; i++ {
		var sum Real
		for j := 0; j < n; j++ {
			sum += m.data[i*n+j] * v.data[j]
		}
		out.data[i] = sum
	}
	return out, nil
}

// Transpose returns mᵀ.
func (m Matrix) Transpose() Matrix {
	n := m.n
	out := NewMatrix(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out.data[j*n+i] = m.data[i*n+j]
		}
	}
	return out
}

// Equal reports whether a and b have the same dimension and equal entries.
func (m Matrix) Equal(o Matrix) bool {
	if m.n != o.n {
		return false
	}
	for i := range m.data {
		if m.data[i] != o.data[i] {
			return false
		}
	}
	return true
}
