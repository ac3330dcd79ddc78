// Package kdtree implements the k-d spatial index the renderer traverses to
// find the nearest primitive along a ray: parallel SAH construction over a
// mixed list of solid and simplex prototypes, and recursive near/far descent
// with dedup and transparency accumulation.
package kdtree

import (
	"github.com/ndimray/ndimray/geom"
	"github.com/ndimray/ndimray/linalg"
)

type primKind int

const (
	kindSolid primKind = iota
	kindSimplex
	kindBatch
)

// primitive is the tree's internal reference to one leaf entry: exactly one
// of solid/simplex/batch is non-nil, selected by kind. Comparable by value,
// so it doubles as the checked-set key during traversal.
type primitive struct {
	kind    primKind
	solid   *geom.SolidPrototype
	simplex *geom.SimplexPrototype
	batch   *geom.SimplexBatchPrototype
}

func wrapSolid(p *geom.SolidPrototype) primitive     { return primitive{kind: kindSolid, solid: p} }
func wrapSimplex(p *geom.SimplexPrototype) primitive { return primitive{kind: kindSimplex, simplex: p} }
func wrapBatch(p *geom.SimplexBatchPrototype) primitive { return primitive{kind: kindBatch, batch: p} }

// Bounds returns the entry's AABB.
func (p primitive) Bounds() geom.AABB {
	switch p.kind {
	case kindSolid:
		return p.solid.AABB
	case kindSimplex:
		return p.simplex.AABB
	default:
		return p.batch.AABB
	}
}

// degenerateAxis returns the coordinate along which p is flat, or -1. Only
// individual simplex prototypes carry this; a batch is treated as never
// degenerate (see DESIGN.md's SimplexBatch overlap re-test note).
func (p primitive) degenerateAxis() int {
	if p.kind == kindSimplex {
		return p.simplex.DegenerateAxis
	}
	return -1
}

// overlapsBox reports whether p intersects box, used to re-test
// overlap-set members against a child's bounds during partitioning.
// splitAxis is the axis the current node split on; when it equals a
// simplex's own degenerate axis the flat variant resolves the simplex onto
// exactly one side instead of reporting it straddling both.
func (p primitive) overlapsBox(box geom.AABB, splitAxis int) bool {
	switch p.kind {
	case kindSolid:
		return box.IntersectsSolid(*p.solid)
	case kindSimplex:
		if p.simplex.DegenerateAxis == splitAxis {
			return box.IntersectsFlat(*p.simplex, splitAxis)
		}
		return box.Intersects(*p.simplex)
	default:
		return aabbOverlap(box, p.batch.AABB)
	}
}

// aabbOverlap is a plain interval-overlap test between two boxes, rejecting
// a zero-volume (touching) intersection. Used for SimplexBatch prototypes,
// which carry no vertex data to run a dedicated SAT test against (see
// DESIGN.md).
func aabbOverlap(a, b geom.AABB) bool {
	n := a.Dimension()
	for i := 0; i < n; i++ {
		if a.End.At(i) <= b.Start.At(i) || b.End.At(i) <= a.Start.At(i) {
			return false
		}
	}
	return true
}

// Origin identifies the primitive a secondary ray is leaving, so a
// SimplexBatch's self-lane can be excluded from its own occlusion/reflection
// test. Solids and single simplices rely on the ray's t>0 test instead,
// since they carry no lane index to exclude.
type Origin struct {
	Batch *geom.SimplexBatchPrototype
	Lane  int
}

// NoOrigin is the zero value: no self-intersection to exclude.
var NoOrigin = Origin{Lane: -1}

// intersect tests ray against the single entry p, honoring origin's
// self-exclusion when p is the batch ray left from.
func (p primitive) intersect(ray geom.Ray, origin Origin, cutoff linalg.Real) (dist linalg.Real, normal geom.Ray, mat geom.Material, hit bool) {
	switch p.kind {
	case kindSolid:
		d, n := p.solid.Solid.Intersect(ray, cutoff)
		if d == 0 {
			return 0, geom.Ray{}, geom.Material{}, false
		}
		return d, n, p.solid.Solid.Mat, true
	case kindSimplex:
		d, n := p.simplex.Simplex.Intersect(ray, cutoff)
		if d == 0 {
			return 0, geom.Ray{}, geom.Material{}, false
		}
		return d, n, p.simplex.Simplex.Mat, true
	default:
		skipLane := -1
		if origin.Batch == p.batch {
			skipLane = origin.Lane
		}
		d, lane, n := p.batch.Batch.Intersect(ray, skipLane, cutoff)
		if lane == -1 {
			return 0, geom.Ray{}, geom.Material{}, false
		}
		return d, n, p.batch.Batch.Material(lane), true
	}
}

// Node is either a Leaf or a Branch. Exactly one of Leaf/Branch is non-nil.
type Node struct {
	Leaf   *LeafNode
	Branch *BranchNode
}

// LeafNode stores the primitives that survived partitioning down to this
// node without a further beneficial split.
type LeafNode struct {
	Prims []primitive
}

// BranchNode splits its bounds at Split along Axis. Left and Right are
// filled in by the builder — possibly asynchronously by a pool worker — so
// they are plain pointers rather than embedded values.
type BranchNode struct {
	Axis  int
	Split linalg.Real
	Left  *Node
	Right *Node
}
