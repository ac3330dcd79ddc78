package linalg

import "testing"

func TestIdentityMul(t *testing.T) {
	m, _ := MatrixFromValues(3, []Real{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	})
	id := Identity(3)
	got, err := m.Mul(id)
	if err != nil {
		t.Fatalf("Mul: %v", err)
	}
	if !got.Equal(m) {
		t.Errorf("M*I != M")
	}

	v, _ := VectorFromValues([]Real{1, 2, 3})
	iv, err := id.MulVector(v)
	if err != nil {
		t.Fatalf("MulVector: %v", err)
	}
	if !iv.Equal(v) {
		t.Errorf("I*v != v")
	}
}

func TestTransposeTwice(t *testing.T) {
	m, _ := MatrixFromValues(3, []Real{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	})
	tt := m.Transpose().Transpose()
	if !tt.Equal(m) {
		t.Errorf("transpose(transpose(M)) != M")
	}
}

func TestDeterminantSingular(t *testing.T) {
	m, _ := MatrixFromValues(2, []Real{1, 2, 2, 4})
	if got := m.Determinant(); got != 0 {
		t.Errorf("Determinant of singular matrix: got %v, want 0", got)
	}
	if _, ok := m.Inverse(); ok {
		t.Errorf("Inverse of singular matrix: expected ok=false")
	}
}

func TestInverseRoundTrip(t *testing.T) {
	m, _ := MatrixFromValues(3, []Real{
		2, 0, 0,
		0, 3, 0,
		1, 1, 1,
	})
	inv, ok := m.Inverse()
	if !ok {
		t.Fatalf("Inverse: expected ok=true")
	}
	prod, err := m.Mul(inv)
	if err != nil {
		t.Fatalf("Mul: %v", err)
	}
	id := Identity(3)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			diff := prod.At(i, j) - id.At(i, j)
			if diff > 1e-3 || diff < -1e-3 {
				t.Errorf("M*inverse(M)[%d][%d] = %v, want %v", i, j, prod.At(i, j), id.At(i, j))
			}
		}
	}
}

func TestReflection(t *testing.T) {
	n, _ := VectorFromValues([]Real{1, 0, 0})
	r := Reflection(n)
	v, _ := VectorFromValues([]Real{1, 2, 3})
	reflected, err := r.MulVector(v)
	if err != nil {
		t.Fatalf("MulVector: %v", err)
	}
	want := []Real{-1, 2, 3}
	for i, w := range want {
		if reflected.At(i) != w {
			t.Errorf("Reflection: lane %d: got %v, want %v", i, reflected.At(i), w)
		}
	}
}

func TestCrossProductOrthogonal(t *testing.T) {
	a, _ := VectorFromValues([]Real{1, 0, 0})
	b, _ := VectorFromValues([]Real{0, 1, 0})
	c, err := Cross([]Vector{a, b})
	if err != nil {
		t.Fatalf("Cross: %v", err)
	}
	if c.Absolute() < 1e-5 {
		t.Fatalf("Cross: result is degenerate (zero length)")
	}
	for _, in := range []Vector{a, b} {
		dot, err := c.Dot(in)
		if err != nil {
			t.Fatalf("Dot: %v", err)
		}
		if dot > 1e-4 || dot < -1e-4 {
			t.Errorf("Cross result not orthogonal to input: dot = %v", dot)
		}
	}
}

func TestColumnRowConsistency(t *testing.T) {
	m, _ := MatrixFromValues(3, []Real{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	})
	col := m.Column(1)
	for r := 0; r < 3; r++ {
		if col[r] != m.At(r, 1) {
			t.Errorf("Column(1)[%d] = %v, want m.At(%d,1) = %v", r, col[r], r, m.At(r, 1))
		}
	}
}
