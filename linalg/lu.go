package linalg

import "github.com/chewxy/math32"

// lu holds a Crout-layout LU decomposition: L occupies the lower triangle
// (diagonal included), U the upper triangle with an implicit unit
// diagonal. pivots[j] records which original row ended up at position j;
// swaps counts the row interchanges, which fixes the sign of the
// determinant.
type lu struct {
	n      int
	a      []Real // n*n, row-major, combined L (incl. diag) + U (unit diag implicit)
	pivots []int
	swaps  int
}

// decompose runs Crout's method with partial pivoting in-place on a copy
// of m's data. Returns ok=false if m is singular (a zero pivot column).
func decompose(m Matrix) (lu, bool) {
	n := m.n
	a := make([]Real, len(m.data))
	copy(a, m.data)
	pivots := make([]int, n)
	for i := range pivots {
		pivots[i] = i
	}
	swaps := 0

	at := func(i, j int) Real { return a[i*n+j] }
	set := func(i, j int, v Real) { a[i*n+j] = v }

	for j := 0; j < n; j++ {
		for i := j; i < n; i++ {
			sum := at(i, j)
			for k := 0; k < j; k++ {
				sum -= at(i, k) * at(k, j)
			}
			set(i, j, sum)
		}

		p := j
		best := math32.Abs(at(j, j))
		for i := j + 1; i < n; i++ {
			if v := math32.Abs(at(i, j)); v > best {
				best = v
				p = i
			}
		}
		if best == 0 {
			return lu{}, false
		}
		if p != j {
			for c := 0; c < n; c++ {
				a[j*n+c], a[p*n+c] = a[p*n+c], a[j*n+c]
			}
			pivots[j], pivots[p] = pivots[p], pivots[j]
			swaps++
		}

		for i := j + 1; i < n; i++ {
			sum := at(j, i)
			for k := 0; k < j; k++ {
				sum -= at(j, k) * at(k, i)
			}
			set(j, i, sum/at(j, j))
		}
	}

	return lu{n: n, a: a, pivots: pivots, swaps: swaps}, true
}

func (d lu) at(i, j int) Real { return d.a[i*d.n+j] }

// Determinant returns det(m); a singular matrix yields 0 (per spec.md §7:
// determinant returns the distinguished value 0 rather than failing).
func (m Matrix) Determinant() Real {
	d, ok := decompose(m)
	if !ok {
		return 0
	}
	det := Real(1)
	if d.swaps%2 != 0 {
		det = -1
	}
	for i := 0; i < d.n; i++ {
		det *= d.at(i, i)
	}
	return det
}

// Inverse returns m⁻¹, or reports ok=false if m is singular.
func (m Matrix) Inverse() (Matrix, bool) {
	d, ok := decompose(m)
	if !ok {
		return Matrix{}, false
	}
	n := d.n
	out := NewMatrix(n)

	y := make([]Real, n)
	x := make([]Real, n)
	b := make([]Real, n)

	for c := 0; c < n; c++ {
		for j := 0; j < n; j++ {
			if d.pivots[j] == c {
				b[j] = 1
			} else {
				b[j] = 0
			}
		}

		for i := 0; i < n; i++ {
			sum := b[i]
			for k := 0; k < i; k++ {
				sum -= d.at(i, k) * y[k]
			}
			y[i] = sum / d.at(i, i)
		}

		for i := n - 1; i >= 0; i-- {
			sum := y[i]
			for k := i + 1; k < n; k++ {
				sum -= d.at(i, k) * x[k]
			}
			x[i] = sum
		}

		for i := 0; i < n; i++ {
			out.data[i*n+c] = x[i]
		}
	}

	return out, true
}
