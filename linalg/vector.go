// Package linalg implements the dynamic n-vector and n×n matrix substrate:
// length-n arithmetic with SIMD tail-handling, matrix multiply/transpose/
// inverse via LU, and the generalized cross product.
package linalg

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/ndimray/ndimray/rterr"
	"github.com/ndimray/ndimray/simd"
)

// Real is the scalar type used throughout ndimray: 32-bit IEEE-754 float,
// which also determines the SIMD lane width.
type Real = float32

// MinDimension is the smallest dimension the system supports.
const MinDimension = 3

// Vector is a length-n sequence of Real, backed by storage padded up to the
// next SIMD multiple. Padded lanes are initialized to 1 (never 0) so bulk
// elementwise operations over the padded storage never divide to
// infinity/NaN; they are excluded from every reduction (Dot, Absolute).
type Vector struct {
	n    int
	data []Real
}

// NewVector allocates a zero vector of dimension n (padded lanes = 1).
func NewVector(n int) Vector {
	v := Vector{n: n, data: make([]Real, simd.AlignedSize[Real](n))}
	for i := n; i < len(v.data); i++ {
		v.data[i] = 1
	}
	return v
}

// VectorFromValues builds a vector of dimension n from explicit values.
// len(vals) must equal n.
func VectorFromValues(vals []Real) (Vector, error) {
	n := len(vals)
	v := NewVector(n)
	copy(v.data, vals)
	return v, nil
}

// Axis returns the unit vector along axis i, scaled by length, in
// dimension n.
func Axis(n, i int, length Real) (Vector, error) {
	if i < 0 || i >= n {
		return Vector{}, fmt.Errorf("linalg.Axis: axis %d dimension %d: %w", i, n, rterr.ErrInvalidAxis)
	}
	v := NewVector(n)
	v.data[i] = length
	return v, nil
}

// Dimension returns the logical (unpadded) length.
func (v Vector) Dimension() int { return v.n }

// At returns element i.
func (v Vector) At(i int) Real { return v.data[i] }

// Set mutates element i in place.
func (v *Vector) Set(i int, val Real) { v.data[i] = val }

// SetC returns a copy of v with element i set to val, leaving v unchanged
// (copy-on-write set, per the external vector API).
func (v Vector) SetC(i int, val Real) Vector {
	out := v.clone()
	out.data[i] = val
	return out
}

func (v Vector) clone() Vector {
	data := make([]Real, len(v.data))
	copy(data, v.data)
	return Vector{n: v.n, data: data}
}

func sameDimension(a, b Vector) error {
	if a.n != b.n {
		return fmt.Errorf("linalg: a.dimension=%d b.dimension=%d: %w", a.n, b.n, rterr.ErrDimensionMismatch)
	}
	return nil
}

// elementwiseBinary applies a simd binary op over the full padded storage
// of a and b, tile by tile. Padding-1 lanes stay finite; callers that
// reduce must sum only the first n lanes.
func elementwiseBinary(a, b Vector, op func(x, y simd.Vec[Real]) simd.Vec[Real]) Vector {
	out := Vector{n: a.n, data: make([]Real, len(a.data))}
	simd.ProcessWithTail[Real](len(a.data),
		func(offset int) {
			x := simd.Load(a.data[offset:])
			y := simd.Load(b.data[offset:])
			op(x, y).Store(out.data[offset:])
		},
		func(offset, count int) {
			mask := simd.TailMask[Real](count)
			x := simd.MaskLoad(mask, a.data[offset:])
			y := simd.MaskLoad(mask, b.data[offset:])
			simd.MaskStore(mask, op(x, y), out.data[offset:])
		},
	)
	return out
}

// Add returns a+b.
func (v Vector) Add(o Vector) (Vector, error) {
	if err := sameDimension(v, o); err != nil {
		return Vector{}, err
	}
	return elementwiseBinary(v, o, simd.Add[Real]), nil
}

// Sub returns a-b.
func (v Vector) Sub(o Vector) (Vector, error) {
	if err := sameDimension(v, o); err != nil {
		return Vector{}, err
	}
	return elementwiseBinary(v, o, simd.Sub[Real]), nil
}

// Neg returns -v.
func (v Vector) Neg() Vector {
	out := Vector{n: v.n, data: make([]Real, len(v.data))}
	simd.ProcessWithTail[Real](len(v.data),
		func(offset int) {
			simd.Neg(simd.Load(v.data[offset:])).Store(out.data[offset:])
		},
		func(offset, count int) {
			mask := simd.TailMask[Real](count)
			x := simd.MaskLoad(mask, v.data[offset:])
			simd.MaskStore(mask, simd.Neg(x), out.data[offset:])
		},
	)
	return out
}

// Scale returns v*c.
func (v Vector) Scale(c Real) Vector {
	out := Vector{n: v.n, data: make([]Real, len(v.data))}
	cv := simd.Set(c)
	simd.ProcessWithTail[Real](len(v.data),
		func(offset int) {
			simd.Mul(simd.Load(v.data[offset:]), cv).Store(out.data[offset:])
		},
		func(offset, count int) {
			mask := simd.TailMask[Real](count)
			x := simd.MaskLoad(mask, v.data[offset:])
			simd.MaskStore(mask, simd.Mul(x, cv), out.data[offset:])
		},
	)
	return out
}

// ScaleDiv returns v/c.
func (v Vector) ScaleDiv(c Real) Vector {
	return v.Scale(1 / c)
}

// Equal reports whether a and b have the same dimension and equal elements.
func (v Vector) Equal(o Vector) bool {
	if v.n != o.n {
		return false
	}
	for i := 0; i < v.n; i++ {
		if v.data[i] != o.data[i] {
			return false
		}
	}
	return true
}

// Dot computes the dot product, summing only the first n (unpadded) lanes.
func (v Vector) Dot(o Vector) (Real, error) {
	if err := sameDimension(v, o); err != nil {
		return 0, err
	}
	var sum Real
	for i := 0; i < v.n; i++ {
		sum += v.data[i] * o.data[i]
	}
	return sum, nil
}

// Absolute returns the Euclidean norm, over the first n lanes only.
func (v Vector) Absolute() Real {
	var sumSq Real
	for i := 0; i < v.n; i++ {
		sumSq += v.data[i] * v.data[i]
	}
	return math32.Sqrt(sumSq)
}

// Unit returns v normalized to unit length.
func (v Vector) Unit() Vector {
	return v.Scale(1 / v.Absolute())
}

// Apply returns a new vector with f applied to every logical element.
func (v Vector) Apply(f func(Real) Real) Vector {
	out := NewVector(v.n)
	for i := 0; i < v.n; i++ {
		out.data[i] = f(v.data[i])
	}
	return out
}

// Values returns the logical (unpadded) elements as a fresh slice.
func (v Vector) Values() []Real {
	out := make([]Real, v.n)
	copy(out, v.data[:v.n])
	return out
}
