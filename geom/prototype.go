package geom

import (
	"github.com/ndimray/ndimray/linalg"
)

// PrimitivePrototype is the build-time wrapper pairing a primitive with its
// AABB, consumed by the k-d tree builder. Simplex prototypes additionally
// carry the vertex data their AABB-vs-simplex SAT test needs.
type PrimitivePrototype interface {
	Bounds() AABB
}

// SolidPrototype wraps a Solid (hypercube or hypersphere) with its
// world-space AABB.
type SolidPrototype struct {
	AABB  AABB
	Solid Solid
}

// Bounds returns the prototype's AABB.
func (p SolidPrototype) Bounds() AABB { return p.AABB }

// NewSolidPrototype computes the world-space AABB of an oriented Solid by
// projecting its unit local extent onto each world standard axis.
func NewSolidPrototype(s Solid) SolidPrototype {
	n := s.Dimension()
	cols := orientationColumns(s.Orientation)
	worldCenter, _ := s.Orientation.MulVector(s.Position)

	start := linalg.NewVector(n)
	end := linalg.NewVector(n)
	for i := 0; i < n; i++ {
		axis, _ := linalg.Axis(n, i, 1)
		lo, hi := obbProjection(worldCenter, cols, axis)
		start.Set(i, lo)
		end.Set(i, hi)
	}
	return SolidPrototype{AABB: AABB{Start: start, End: end}, Solid: s}
}

// SimplexPrototype wraps a Simplex with its AABB and originating vertices;
// the vertices are retained because the simplex's own fields (a single
// vertex plus the derived face/edge normals) aren't enough to project the
// simplex onto an arbitrary separating axis.
type SimplexPrototype struct {
	AABB    AABB
	Simplex Simplex
	// Vertices holds the n vertices the simplex was built from, canonical
	// order matching NewSimplexFromVertices (Vertices[0] == Simplex.P1).
	Vertices []linalg.Vector
	// DegenerateAxis is the coordinate axis along which the simplex's AABB
	// has ~zero extent (the simplex lies flat in that coordinate
	// hyperplane), or -1 if none. Used to pick IntersectsFlat during
	// k-d partitioning of a simplex embedded in a splitting plane.
	DegenerateAxis int
}

// Bounds returns the prototype's AABB.
func (p SimplexPrototype) Bounds() AABB { return p.AABB }

// NewSimplexPrototype builds a Simplex from vertices and wraps it with its
// AABB and degenerate-axis detection.
func NewSimplexPrototype(vertices []linalg.Vector, mat Material) (SimplexPrototype, error) {
	simplex, err := NewSimplexFromVertices(vertices, mat)
	if err != nil {
		return SimplexPrototype{}, err
	}
	n := simplex.Dimension()
	start := linalg.NewVector(n)
	end := linalg.NewVector(n)
	for i := 0; i < n; i++ {
		lo, hi := vertices[0].At(i), vertices[0].At(i)
		for _, v := range vertices[1:] {
			if c := v.At(i); c < lo {
				lo = c
			} else if c > hi {
				hi = c
			}
		}
		start.Set(i, lo)
		end.Set(i, hi)
	}

	degenerate := -1
	for i := 0; i < n; i++ {
		if end.At(i)-start.At(i) < RoundingFuzz {
			degenerate = i
			break
		}
	}

	return SimplexPrototype{
		AABB:           AABB{Start: start, End: end},
		Simplex:        simplex,
		Vertices:       vertices,
		DegenerateAxis: degenerate,
	}, nil
}

// SimplexBatchPrototype wraps a lane-packed SimplexBatch (formed by the k-d
// builder's pre-grouping pass) with the union of its members' AABBs.
type SimplexBatchPrototype struct {
	AABB  AABB
	Batch SimplexBatch
}

// Bounds returns the prototype's AABB.
func (p SimplexBatchPrototype) Bounds() AABB { return p.AABB }

// orientationColumns returns the n columns of m as Vectors — the world-space
// images of the local standard-basis axes for an oriented Solid.
func orientationColumns(m linalg.Matrix) []linalg.Vector {
	n := m.Dimension()
	cols := make([]linalg.Vector, n)
	for k := 0; k < n; k++ {
		v, _ := linalg.VectorFromValues(m.Column(k))
		cols[k] = v
	}
	return cols
}

// obbProjection returns the [lo,hi] interval a unit-half-extent oriented box
// (center, local axes cols, half-extent 1 along each) spans when projected
// onto axis.
func obbProjection(center linalg.Vector, cols []linalg.Vector, axis linalg.Vector) (lo, hi linalg.Real) {
	c, _ := axis.Dot(center)
	var radius linalg.Real
	for _, col := range cols {
		d, _ := axis.Dot(col)
		if d < 0 {
			d = -d
		}
		radius += d
	}
	return c - radius, c + radius
}

// zeroCoord returns a copy of v with coordinate idx set to 0, or v itself if
// idx is out of range (used to request "no flattening").
func zeroCoord(v linalg.Vector, idx int) linalg.Vector {
	if idx < 0 || idx >= v.Dimension() {
		return v
	}
	return v.SetC(idx, 0)
}

// isZeroVector reports whether v is (numerically) the zero vector — not a
// valid separating axis, since projecting it onto anything yields [0,0] on
// both sides and would be misread as a touching (non-overlapping) pair.
func isZeroVector(v linalg.Vector) bool {
	return v.Absolute() < epsilon32
}

// projectPoints returns the [lo,hi] interval the given points span when
// dotted with axis.
func projectPoints(points []linalg.Vector, axis linalg.Vector) (lo, hi linalg.Real) {
	first, _ := points[0].Dot(axis)
	lo, hi = first, first
	for _, p := range points[1:] {
		d, _ := p.Dot(axis)
		if d < lo {
			lo = d
		} else if d > hi {
			hi = d
		}
	}
	return lo, hi
}

// simplexCandidateAxes returns the separating-axis candidates spec.md §4.E
// prescribes for a simplex: its face normal, plus every edge normal with one
// coordinate zeroed out (projected onto the n coordinate hyperplanes). When
// skipAxis >= 0 (the flat test), every candidate additionally has that
// coordinate zeroed, reducing the test to n-1 dimensions.
func simplexCandidateAxes(s Simplex, skipAxis int) []linalg.Vector {
	n := s.Dimension()
	axes := make([]linalg.Vector, 0, 1+len(s.EdgeNormals)*n)

	face := s.FaceNormal
	if skipAxis >= 0 {
		face = zeroCoord(face, skipAxis)
	}
	axes = append(axes, face)

	for _, e := range s.EdgeNormals {
		for k := 0; k < n; k++ {
			a := zeroCoord(e, k)
			if skipAxis >= 0 {
				a = zeroCoord(a, skipAxis)
			}
			axes = append(axes, a)
		}
	}
	return axes
}

// Intersects runs the separating-axis test between b and a simplex
// prototype: axis-aligned overlap on every coordinate, then the face-normal
// and projected-edge-normal axes of §4.E. A shared face (zero-volume
// overlap) is treated as non-intersecting.
func (b AABB) Intersects(p SimplexPrototype) bool {
	return b.intersectsSimplex(p, -1)
}

// IntersectsFlat is Intersects performed in one fewer dimension, skipAxis
// excluded throughout — used when p is degenerate (flat) along skipAxis, so
// it can be resolved onto exactly one side of a split along that axis.
func (b AABB) IntersectsFlat(p SimplexPrototype, skipAxis int) bool {
	return b.intersectsSimplex(p, skipAxis)
}

func (b AABB) intersectsSimplex(p SimplexPrototype, skipAxis int) bool {
	n := b.Dimension()
	for i := 0; i < n; i++ {
		if i == skipAxis {
			continue
		}
		if b.End.At(i) <= p.AABB.Start.At(i) || p.AABB.End.At(i) <= b.Start.At(i) {
			return false
		}
	}

	for _, axis := range simplexCandidateAxes(p.Simplex, skipAxis) {
		if isZeroVector(axis) {
			continue
		}
		lo1, hi1 := b.projectOntoAxis(axis)
		lo2, hi2 := projectPoints(p.Vertices, axis)
		if hi1 <= lo2 || hi2 <= lo1 {
			return false
		}
	}
	return true
}

// IntersectsSolid runs the separating-axis test between b and an oriented
// solid prototype: box-vs-box SAT for Cube, the transform-and-clamp
// distance test for Sphere.
func (b AABB) IntersectsSolid(p SolidPrototype) bool {
	switch p.Solid.Kind {
	case Cube:
		return b.intersectsCube(p)
	case Sphere:
		return b.intersectsSphere(p)
	default:
		return false
	}
}

func (b AABB) intersectsCube(p SolidPrototype) bool {
	n := b.Dimension()
	for i := 0; i < n; i++ {
		if b.End.At(i) <= p.AABB.Start.At(i) || p.AABB.End.At(i) <= b.Start.At(i) {
			return false
		}
	}

	s := p.Solid
	cols := orientationColumns(s.Orientation)
	worldCenter, _ := s.Orientation.MulVector(s.Position)

	axes := make([]linalg.Vector, 0, n+n*n)
	for _, col := range cols {
		axes = append(axes, col)
		for z := 0; z < n; z++ {
			axes = append(axes, zeroCoord(col, z))
		}
	}

	for _, axis := range axes {
		if isZeroVector(axis) {
			continue
		}
		lo1, hi1 := b.projectOntoAxis(axis)
		lo2, hi2 := obbProjection(worldCenter, cols, axis)
		if hi1 <= lo2 || hi2 <= lo1 {
			return false
		}
	}
	return true
}

// intersectsSphere transforms b's center into the sphere's local frame,
// clamps it onto each world-box half-extent (expressed in that local
// frame via InvOrientation's columns), and tests the resulting closest
// distance against the unit sphere.
func (b AABB) intersectsSphere(p SolidPrototype) bool {
	s := p.Solid
	n := b.Dimension()
	boxCenter := b.Center()

	localCenter, _ := s.InvOrientation.MulVector(boxCenter)
	localCenter, _ = localCenter.Sub(s.Position)

	d := localCenter.Neg()
	closest := localCenter
	for k := 0; k < n; k++ {
		u, _ := linalg.VectorFromValues(s.InvOrientation.Column(k))
		half := b.Extent(k) / 2
		t, _ := d.Dot(u)
		if t > half {
			t = half
		} else if t < -half {
			t = -half
		}
		closest, _ = closest.Add(u.Scale(t))
	}

	dist2, _ := closest.Dot(closest)
	return dist2 < 1
}
