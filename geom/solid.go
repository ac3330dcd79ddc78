package geom

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/ndimray/ndimray/linalg"
	"github.com/ndimray/ndimray/rterr"
)

// epsilon32 is the float32 machine epsilon (2^-23).
const epsilon32 = 1.1920929e-7

// RoundingFuzz is the slab/face tolerance used by the hypercube and
// simplex kernels, ten times the float32 machine epsilon.
const RoundingFuzz linalg.Real = 10 * epsilon32

// SolidKind distinguishes the two oriented primitives built on a unit
// hypercube or hypersphere.
type SolidKind int

const (
	Cube SolidKind = iota + 1
	Sphere
)

// Solid is a hypercube or hypersphere placed by an orientation matrix and
// a position offset. InvOrientation is cached (usually Orientation.Inverse())
// to avoid recomputing it on every ray.
type Solid struct {
	Kind           SolidKind
	Orientation    linalg.Matrix
	InvOrientation linalg.Matrix
	Position       linalg.Vector
	Mat            Material
}

// NewSolid builds a Solid, inverting orientation once up front. Returns an
// error if orientation is singular.
func NewSolid(kind SolidKind, orientation linalg.Matrix, position linalg.Vector, mat Material) (Solid, error) {
	inv, ok := orientation.Inverse()
	if !ok {
		return Solid{}, fmt.Errorf("geom.NewSolid: %w", rterr.ErrSingularMatrix)
	}
	return Solid{Kind: kind, Orientation: orientation, InvOrientation: inv, Position: position, Mat: mat}, nil
}

// Dimension returns the solid's dimension.
func (s Solid) Dimension() int { return s.Orientation.Dimension() }

// Intersect transforms target into the solid's local frame, intersects the
// unit primitive, then transforms the hit point and normal back to world
// space. Returns 0 for a miss.
func (s Solid) Intersect(target Ray, cutoff linalg.Real) (linalg.Real, Ray) {
	localOrigin, err := s.InvOrientation.MulVector(target.Origin)
	if err != nil {
		return 0, Ray{}
	}
	localOrigin, err = localOrigin.Sub(s.Position)
	if err != nil {
		return 0, Ray{}
	}
	localDirection, err := s.InvOrientation.MulVector(target.Direction)
	if err != nil {
		return 0, Ray{}
	}
	transformed := Ray{Origin: localOrigin, Direction: localDirection}

	var dist linalg.Real
	var normal Ray
	switch s.Kind {
	case Cube:
		dist, normal = HypercubeIntersect(transformed, cutoff)
	case Sphere:
		dist, normal = HypersphereIntersect(transformed, cutoff)
	}
	if dist == 0 {
		return 0, Ray{}
	}

	worldOrigin, _ := normal.Origin.Add(s.Position)
	worldOrigin, _ = s.Orientation.MulVector(worldOrigin)
	worldDirection, _ := s.Orientation.MulVector(normal.Direction)
	return dist, Ray{Origin: worldOrigin, Direction: worldDirection}
}

// HypercubeIntersect intersects target against the axis-aligned unit
// hypercube [-1,1]^n, returning (0, _) for a miss.
func HypercubeIntersect(target Ray, cutoff linalg.Real) (linalg.Real, Ray) {
	n := target.Origin.Dimension()
	normal := Ray{Origin: linalg.NewVector(n), Direction: linalg.NewVector(n)}

axisLoop:
	for i := 0; i < n; i++ {
		dirI := target.Direction.At(i)
		if dirI == 0 {
			continue
		}
		// normal.origin[i] = sign(-direction[i])
		var face linalg.Real = -1
		if dirI < 0 {
			face = 1
		}
		dist := (face - target.Origin.At(i)) / dirI
		if dist <= 0 {
			continue
		}
		normal.Origin.Set(i, face)
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			coord := target.Direction.At(j)*dist + target.Origin.At(j)
			if abs32(coord) > 1+RoundingFuzz {
				continue axisLoop
			}
			normal.Origin.Set(j, coord)
		}
		if dist >= cutoff {
			return 0, Ray{}
		}
		axis, _ := linalg.Axis(n, i, face)
		normal.Direction = axis
		return dist, normal
	}
	return 0, Ray{}
}

// HypersphereIntersect intersects target against the unit hypersphere
// centered at the origin, returning (0, _) for a miss.
func HypersphereIntersect(target Ray, cutoff linalg.Real) (linalg.Real, Ray) {
	a := target.Direction.Absolute()
	a = a * a
	dot, _ := target.Direction.Dot(target.Origin)
	b := 2 * dot
	originLen := target.Origin.Absolute()
	c := originLen*originLen - 1

	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		return 0, Ray{}
	}

	dist := (-b - math32.Sqrt(discriminant)) / (2 * a)
	if dist <= 0 || dist >= cutoff {
		return 0, Ray{}
	}

	hit, _ := target.Origin.Add(target.Direction.Scale(dist))
	return dist, Ray{Origin: hit, Direction: hit}
}

func abs32(v linalg.Real) linalg.Real {
	if v < 0 {
		return -v
	}
	return v
}
