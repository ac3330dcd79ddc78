package geom

import (
	"testing"

	"github.com/ndimray/ndimray/linalg"
)

func triangle3D(t *testing.T) Simplex {
	t.Helper()
	p1, _ := linalg.VectorFromValues([]linalg.Real{0, 0, 0})
	p2, _ := linalg.VectorFromValues([]linalg.Real{1, 0, 0})
	p3, _ := linalg.VectorFromValues([]linalg.Real{0, 1, 0})
	s, err := NewSimplexFromVertices([]linalg.Vector{p1, p2, p3}, Material{Opacity: 1})
	if err != nil {
		t.Fatalf("NewSimplexFromVertices: %v", err)
	}
	return s
}

func TestSimplexFromVerticesFaceNormal(t *testing.T) {
	s := triangle3D(t)
	if z := s.FaceNormal.At(2); z == 0 {
		t.Fatalf("face normal has zero z component: %v", s.FaceNormal.Values())
	}
}

func TestSimplexIntersectCentroid(t *testing.T) {
	s := triangle3D(t)
	origin, _ := linalg.VectorFromValues([]linalg.Real{0.25, 0.25, 5})
	dir, _ := linalg.VectorFromValues([]linalg.Real{0, 0, -1})
	dist, normal := s.Intersect(Ray{Origin: origin, Direction: dir}, 100)
	if dist != 5 {
		t.Fatalf("dist = %v, want 5", dist)
	}
	if normal.Direction.At(2) <= 0 {
		t.Errorf("normal should face the incoming ray (+z), got %v", normal.Direction.Values())
	}
}

func TestSimplexIntersectOutsideTriangle(t *testing.T) {
	s := triangle3D(t)
	origin, _ := linalg.VectorFromValues([]linalg.Real{2, 2, 5})
	dir, _ := linalg.VectorFromValues([]linalg.Real{0, 0, -1})
	if dist, _ := s.Intersect(Ray{Origin: origin, Direction: dir}, 100); dist != 0 {
		t.Errorf("dist = %v, want 0 (ray misses the triangle, only hits its plane)", dist)
	}
}

func TestSimplexIntersectParallelMiss(t *testing.T) {
	s := triangle3D(t)
	origin, _ := linalg.VectorFromValues([]linalg.Real{0.25, 0.25, 5})
	dir, _ := linalg.VectorFromValues([]linalg.Real{1, 0, 0})
	if dist, _ := s.Intersect(Ray{Origin: origin, Direction: dir}, 100); dist != 0 {
		t.Errorf("dist = %v, want 0 (ray parallel to the simplex's plane)", dist)
	}
}

func TestNewSimplexFromVerticesDegenerate(t *testing.T) {
	p1, _ := linalg.VectorFromValues([]linalg.Real{0, 0, 0})
	p2, _ := linalg.VectorFromValues([]linalg.Real{1, 0, 0})
	p3, _ := linalg.VectorFromValues([]linalg.Real{2, 0, 0})
	if _, err := NewSimplexFromVertices([]linalg.Vector{p1, p2, p3}, Material{}); err == nil {
		t.Error("expected an error for a zero-area (collinear) triangle")
	}
}

func TestNewSimplexFromVerticesWrongCount(t *testing.T) {
	p1, _ := linalg.VectorFromValues([]linalg.Real{0, 0, 0})
	p2, _ := linalg.VectorFromValues([]linalg.Real{1, 0, 0})
	if _, err := NewSimplexFromVertices([]linalg.Vector{p1, p2}, Material{}); err == nil {
		t.Error("expected an error: a 3-D simplex needs 3 vertices, got 2")
	}
}
