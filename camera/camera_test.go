package camera

import (
	"testing"

	"github.com/ndimray/ndimray/linalg"
)

const eps = 1e-4

func TestNewIdentityFrame(t *testing.T) {
	c, err := New(3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.Right().At(0) != 1 || c.Up().At(1) != 1 || c.Forward().At(2) != 1 {
		t.Errorf("New: expected identity frame")
	}
}

func TestTranslateInCameraBasis(t *testing.T) {
	c, _ := New(3)
	rot, _ := linalg.Rotation(3, 0, 1, 1.5707963)
	if err := c.Transform(rot); err != nil {
		t.Fatalf("Transform: %v", err)
	}
	v, _ := linalg.VectorFromValues([]linalg.Real{1, 0, 0})
	if err := c.Translate(v); err != nil {
		t.Fatalf("Translate: %v", err)
	}
	// translate(1,0,0) moves origin by 1*right(), which after the rotation
	// should point roughly along the original +y axis.
	if c.Origin.At(0) > eps || c.Origin.At(0) < -eps {
		t.Errorf("Origin.X = %v, want ~0", c.Origin.At(0))
	}
}

func TestNormalizeRestoresOrthonormality(t *testing.T) {
	c, _ := New(4)
	// perturb axes with a non-orthonormal transform, then renormalize.
	m, _ := linalg.MatrixFromValues(4, []linalg.Real{
		1.01, 0.02, 0, 0,
		0.03, 0.99, 0.01, 0,
		0, 0.02, 1.02, 0.01,
		0, 0, 0.01, 1,
	})
	if err := c.Transform(m); err != nil {
		t.Fatalf("Transform: %v", err)
	}
	c.Normalize()

	d := c.Dimension()
	rows := make([]linalg.Vector, d)
	for i := 0; i < d; i++ {
		rows[i] = c.Axes.Row(i)
	}
	for i := 0; i < d; i++ {
		if diff := rows[i].Absolute() - 1; diff > eps || diff < -eps {
			t.Errorf("row %d not unit length: %v", i, rows[i].Absolute())
		}
		for j := i + 1; j < d; j++ {
			dot, err := rows[i].Dot(rows[j])
			if err != nil {
				t.Fatalf("Dot: %v", err)
			}
			if dot > eps || dot < -eps {
				t.Errorf("rows %d,%d not orthogonal: dot = %v", i, j, dot)
			}
		}
	}
}

func TestForwardPrecondition(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("Forward: expected panic for dimension <= 2")
		}
	}()
	// Constructed directly: NewWithFrame enforces MinDimension, but the
	// precondition on Forward must still hold for any smaller frame.
	c := Camera{Origin: linalg.NewVector(2), Axes: linalg.Identity(2)}
	_ = c.Forward()
}
