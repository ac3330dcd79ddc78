package geom

import (
	"testing"

	"github.com/ndimray/ndimray/linalg"
)

func box(t *testing.T, start, end []linalg.Real) AABB {
	t.Helper()
	s, _ := linalg.VectorFromValues(start)
	e, _ := linalg.VectorFromValues(end)
	b, err := NewAABB(s, e)
	if err != nil {
		t.Fatalf("NewAABB: %v", err)
	}
	return b
}

func TestAABBLeftRight(t *testing.T) {
	b := box(t, []linalg.Real{0, 0, 0}, []linalg.Real{4, 4, 4})
	left, err := b.Left(0, 1)
	if err != nil {
		t.Fatalf("Left: %v", err)
	}
	right, err := b.Right(0, 1)
	if err != nil {
		t.Fatalf("Right: %v", err)
	}
	if left.Extent(0) != 1 || right.Extent(0) != 3 {
		t.Errorf("left/right extents = %v/%v, want 1/3", left.Extent(0), right.Extent(0))
	}
	if left.Extent(1) != 4 || right.Extent(1) != 4 {
		t.Errorf("left/right should leave other axes untouched")
	}
}

func TestAABBSplitOutOfRange(t *testing.T) {
	b := box(t, []linalg.Real{0, 0, 0}, []linalg.Real{4, 4, 4})
	if _, err := b.Left(0, 5); err == nil {
		t.Error("expected an error for a split outside the box")
	}
	if _, err := b.Left(9, 1); err == nil {
		t.Error("expected an error for an out-of-range axis")
	}
}

func TestAABBSurfaceAreaRatio(t *testing.T) {
	b := box(t, []linalg.Real{0, 0, 0}, []linalg.Real{2, 4, 8})
	// SurfaceArea is half the surface measure (each pair of opposite faces
	// counted once), so compare against that closed-form sum directly.
	want := linalg.Real(4*8) + linalg.Real(2*8) + linalg.Real(2*4)
	if got := b.SurfaceArea(); got != want {
		t.Errorf("SurfaceArea() = %v, want %v", got, want)
	}
}

func TestAABBVolumeAndCenter(t *testing.T) {
	b := box(t, []linalg.Real{0, 0, 0}, []linalg.Real{2, 4, 8})
	if v := b.Volume(); v != 64 {
		t.Errorf("Volume() = %v, want 64", v)
	}
	c := b.Center()
	if c.At(0) != 1 || c.At(1) != 2 || c.At(2) != 4 {
		t.Errorf("Center() = %v, want [1 2 4]", c.Values())
	}
}

func TestAABBUnion(t *testing.T) {
	a := box(t, []linalg.Real{0, 0, 0}, []linalg.Real{1, 1, 1})
	b := box(t, []linalg.Real{-1, 2, 0.5}, []linalg.Real{0.5, 3, 4})
	u := a.Union(b)
	if u.Start.At(0) != -1 || u.End.At(1) != 3 || u.End.At(2) != 4 {
		t.Errorf("Union() = [%v,%v], unexpected bounds", u.Start.Values(), u.End.Values())
	}
}

func TestAABBContains(t *testing.T) {
	b := box(t, []linalg.Real{0, 0, 0}, []linalg.Real{1, 1, 1})
	inside, _ := linalg.VectorFromValues([]linalg.Real{0.5, 0.5, 0.5})
	outside, _ := linalg.VectorFromValues([]linalg.Real{2, 0, 0})
	if !b.Contains(inside) {
		t.Error("Contains(inside) = false, want true")
	}
	if b.Contains(outside) {
		t.Error("Contains(outside) = true, want false")
	}
}

func TestAABBLongestAxis(t *testing.T) {
	b := box(t, []linalg.Real{0, 0, 0}, []linalg.Real{1, 9, 2})
	if axis := b.LongestAxis(); axis != 1 {
		t.Errorf("LongestAxis() = %d, want 1", axis)
	}
}
