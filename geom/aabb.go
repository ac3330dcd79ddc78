package geom

import (
	"fmt"

	"github.com/ndimray/ndimray/linalg"
	"github.com/ndimray/ndimray/rterr"
)

// AABB is an axis-aligned bounding box: a product of n 1-D intervals,
// Start[i] <= End[i].
type AABB struct {
	Start, End linalg.Vector
}

// NewAABB builds an AABB from its corners, validating Start[i] <= End[i].
func NewAABB(start, end linalg.Vector) (AABB, error) {
	if start.Dimension() != end.Dimension() {
		return AABB{}, fmt.Errorf("geom.NewAABB: start.dimension=%d end.dimension=%d: %w", start.Dimension(), end.Dimension(), rterr.ErrDimensionMismatch)
	}
	for i := 0; i < start.Dimension(); i++ {
		if start.At(i) > end.At(i) {
			return AABB{}, fmt.Errorf("geom.NewAABB: start[%d]=%v > end[%d]=%v: %w", i, start.At(i), i, end.At(i), rterr.ErrSplitOutOfRange)
		}
	}
	return AABB{Start: start, End: end}, nil
}

// Dimension returns n.
func (b AABB) Dimension() int { return b.Start.Dimension() }

// Extent returns End[axis]-Start[axis].
func (b AABB) Extent(axis int) linalg.Real { return b.End.At(axis) - b.Start.At(axis) }

// LongestAxis returns the axis of greatest extent, used by both the SAH
// split search and simplex-batch pre-grouping.
func (b AABB) LongestAxis() int {
	axis := 0
	best := b.Extent(0)
	for i := 1; i < b.Dimension(); i++ {
		if e := b.Extent(i); e > best {
			best = e
			axis = i
		}
	}
	return axis
}

// SurfaceArea returns half the box's surface measure: the sum over axes i
// of the product of every other axis' extent. Per spec.md §4.F, only
// ratios of this quantity matter to the SAH cost and the pre-grouping
// metric, so the half measure is used as is.
func (b AABB) SurfaceArea() linalg.Real {
	n := b.Dimension()
	var total linalg.Real
	for i := 0; i < n; i++ {
		prod := linalg.Real(1)
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			prod *= b.Extent(j)
		}
		total += prod
	}
	return total
}

// Volume returns the product of all extents, the leaf-cost proxy n*Π extents
// compares against (n is the primitive count, supplied by the caller).
func (b AABB) Volume() linalg.Real {
	n := b.Dimension()
	vol := linalg.Real(1)
	for i := 0; i < n; i++ {
		vol *= b.Extent(i)
	}
	return vol
}

// Contains reports whether p lies within the box, inclusive of the
// boundary.
func (b AABB) Contains(p linalg.Vector) bool {
	for i := 0; i < b.Dimension(); i++ {
		if p.At(i) < b.Start.At(i) || p.At(i) > b.End.At(i) {
			return false
		}
	}
	return true
}

// Left returns the half of b with End[axis] clamped down to split.
func (b AABB) Left(axis int, split linalg.Real) (AABB, error) {
	if axis < 0 || axis >= b.Dimension() {
		return AABB{}, fmt.Errorf("geom.AABB.Left: axis %d: %w", axis, rterr.ErrInvalidAxis)
	}
	if split < b.Start.At(axis) || split > b.End.At(axis) {
		return AABB{}, fmt.Errorf("geom.AABB.Left: split %v outside [%v,%v]: %w", split, b.Start.At(axis), b.End.At(axis), rterr.ErrSplitOutOfRange)
	}
	return AABB{Start: b.Start, End: b.End.SetC(axis, split)}, nil
}

// Right returns the half of b with Start[axis] clamped up to split.
func (b AABB) Right(axis int, split linalg.Real) (AABB, error) {
	if axis < 0 || axis >= b.Dimension() {
		return AABB{}, fmt.Errorf("geom.AABB.Right: axis %d: %w", axis, rterr.ErrInvalidAxis)
	}
	if split < b.Start.At(axis) || split > b.End.At(axis) {
		return AABB{}, fmt.Errorf("geom.AABB.Right: split %v outside [%v,%v]: %w", split, b.Start.At(axis), b.End.At(axis), rterr.ErrSplitOutOfRange)
	}
	return AABB{Start: b.Start.SetC(axis, split), End: b.End}, nil
}

// Union returns the smallest AABB containing both b and o, used to
// maintain a candidate SimplexBatch's combined box during pre-grouping.
func (b AABB) Union(o AABB) AABB {
	n := b.Dimension()
	start := linalg.NewVector(n)
	end := linalg.NewVector(n)
	for i := 0; i < n; i++ {
		s := b.Start.At(i)
		if o.Start.At(i) < s {
			s = o.Start.At(i)
		}
		e := b.End.At(i)
		if o.End.At(i) > e {
			e = o.End.At(i)
		}
		start.Set(i, s)
		end.Set(i, e)
	}
	return AABB{Start: start, End: end}
}

// projectOntoAxis returns the [min,max] interval the box's 2^n corners
// span when dotted with axis, computed in O(n) by picking, per
// coordinate, whichever of Start/End extends the projection furthest in
// each direction (valid because the box is axis-aligned).
func (b AABB) projectOntoAxis(axis linalg.Vector) (lo, hi linalg.Real) {
	n := b.Dimension()
	for i := 0; i < n; i++ {
		a := axis.At(i)
		s, e := b.Start.At(i), b.End.At(i)
		if a >= 0 {
			lo += a * s
			hi += a * e
		} else {
			lo += a * e
			hi += a * s
		}
	}
	return lo, hi
}

// Center returns the box's midpoint.
func (b AABB) Center() linalg.Vector {
	n := b.Dimension()
	c := linalg.NewVector(n)
	for i := 0; i < n; i++ {
		c.Set(i, (b.Start.At(i)+b.End.At(i))/2)
	}
	return c
}
