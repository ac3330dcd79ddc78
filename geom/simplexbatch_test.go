package geom

import (
	"testing"

	"github.com/ndimray/ndimray/linalg"
)

func makeTriangle(t *testing.T, offsetX linalg.Real, opacity linalg.Real) Simplex {
	t.Helper()
	p1, _ := linalg.VectorFromValues([]linalg.Real{offsetX, 0, 0})
	p2, _ := linalg.VectorFromValues([]linalg.Real{offsetX + 1, 0, 0})
	p3, _ := linalg.VectorFromValues([]linalg.Real{offsetX, 1, 0})
	s, err := NewSimplexFromVertices([]linalg.Vector{p1, p2, p3}, Material{Opacity: opacity})
	if err != nil {
		t.Fatalf("NewSimplexFromVertices: %v", err)
	}
	return s
}

func TestSimplexBatchIntersectNearestLane(t *testing.T) {
	near := makeTriangle(t, 0, 1)
	far := makeTriangle(t, 5, 1)
	batch, err := NewSimplexBatch([]Simplex{far, near})
	if err != nil {
		t.Fatalf("NewSimplexBatch: %v", err)
	}

	origin, _ := linalg.VectorFromValues([]linalg.Real{0.25, 0.25, 10})
	dir, _ := linalg.VectorFromValues([]linalg.Real{0, 0, -1})
	dist, lane, _ := batch.Intersect(Ray{Origin: origin, Direction: dir}, -1, 100)
	if lane != 1 {
		t.Fatalf("lane = %d, want 1 (the triangle actually under the ray)", lane)
	}
	if dist != 10 {
		t.Errorf("dist = %v, want 10", dist)
	}
}

func TestSimplexBatchIntersectSkipLane(t *testing.T) {
	tri := makeTriangle(t, 0, 1)
	batch, err := NewSimplexBatch([]Simplex{tri})
	if err != nil {
		t.Fatalf("NewSimplexBatch: %v", err)
	}

	origin, _ := linalg.VectorFromValues([]linalg.Real{0.25, 0.25, 10})
	dir, _ := linalg.VectorFromValues([]linalg.Real{0, 0, -1})
	if _, lane, _ := batch.Intersect(Ray{Origin: origin, Direction: dir}, 0, 100); lane != -1 {
		t.Errorf("lane = %d, want -1 (the only lane is excluded via skipLane)", lane)
	}
}

func TestSimplexBatchPaddedLanesAreTransparent(t *testing.T) {
	tri := makeTriangle(t, 0, 1)
	batch, err := NewSimplexBatch([]Simplex{tri})
	if err != nil {
		t.Fatalf("NewSimplexBatch: %v", err)
	}
	if batch.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", batch.Count())
	}
	for lane := batch.Count(); lane < batch.Lanes(); lane++ {
		if batch.Material(lane).Opaque() {
			t.Errorf("padded lane %d should not be opaque", lane)
		}
	}
}

func TestSimplexBatchTooManySimplices(t *testing.T) {
	lanes := make([]Simplex, 0)
	for i := 0; i < 1000; i++ {
		lanes = append(lanes, makeTriangle(t, linalg.Real(i), 1))
	}
	if _, err := NewSimplexBatch(lanes); err == nil {
		t.Error("expected an error for exceeding the SIMD lane width")
	}
}
