package geom

import (
	"fmt"

	"github.com/ndimray/ndimray/linalg"
	"github.com/ndimray/ndimray/rterr"
)

// Simplex is an (n−1)-dimensional simplex embedded in n-space: a triangle
// in 3-D, a tetrahedron in 4-D, and so on. It is defined by one vertex
// (P1), the face normal (unnormalized, with implied offset D), and n−1
// edge normals used to compute barycentric-like area weights.
type Simplex struct {
	P1          linalg.Vector
	FaceNormal  linalg.Vector
	D           linalg.Real
	EdgeNormals []linalg.Vector
	Mat         Material
}

// NewSimplex builds a Simplex from a vertex, face normal, and edge normals,
// computing D = -dot(faceNormal, p1).
func NewSimplex(p1, faceNormal linalg.Vector, edgeNormals []linalg.Vector, mat Material) Simplex {
	d, _ := faceNormal.Dot(p1)
	return Simplex{P1: p1, FaceNormal: faceNormal, D: -d, EdgeNormals: edgeNormals, Mat: mat}
}

// Dimension returns the ambient dimension n.
func (s Simplex) Dimension() int { return s.P1.Dimension() }

// Intersect tests target against the simplex, returning (0, _) for a
// miss. See RoundingFuzz for the barycentric tolerance.
func (s Simplex) Intersect(target Ray, cutoff linalg.Real) (linalg.Real, Ray) {
	denom, _ := s.FaceNormal.Dot(target.Direction)
	if denom == 0 {
		return 0, Ray{}
	}

	faceDotOrigin, _ := s.FaceNormal.Dot(target.Origin)
	t := -(faceDotOrigin + s.D) / denom
	if t <= 0 || t >= cutoff {
		return 0, Ray{}
	}

	scaled := target.Direction.Scale(t)
	p, _ := target.Origin.Add(scaled)
	pside, _ := s.P1.Sub(p)

	var totalArea linalg.Real
	for _, edge := range s.EdgeNormals {
		area, _ := edge.Dot(pside)
		if area < -RoundingFuzz || area > 1+RoundingFuzz {
			return 0, Ray{}
		}
		totalArea += area
	}
	if totalArea > 1+RoundingFuzz {
		return 0, Ray{}
	}

	normalDir := s.FaceNormal.Unit()
	if denom > 0 {
		normalDir = normalDir.Neg()
	}
	return t, Ray{Origin: p, Direction: normalDir}
}

// NewSimplexFromVertices builds a Simplex from its n vertices (p1 = vertices[0]
// plus n-1 others), deriving the face normal and the n-1 edge normals used
// for the barycentric-style hit test.
//
// Let e_i = vertices[i+1]-p1 for i in [0,n-2) span the simplex's hyperplane.
// FaceNormal is their generalized cross product. EdgeNormals are the duals
// of e_i within span(e_0,...,e_{n-2}) satisfying edgeNormal_i . e_j = -delta_ij,
// found by inverting the edges' Gram matrix; that sign and normalization make
// area_i = edgeNormal_i . (p1-P) recover the barycentric weight of
// vertices[i+1] for any P on the hyperplane, matching §4.D's contract.
func NewSimplexFromVertices(vertices []linalg.Vector, mat Material) (Simplex, error) {
	if len(vertices) == 0 {
		return Simplex{}, fmt.Errorf("geom.NewSimplexFromVertices: no vertices: %w", rterr.ErrDimensionMismatch)
	}
	n := vertices[0].Dimension()
	if len(vertices) != n {
		return Simplex{}, fmt.Errorf("geom.NewSimplexFromVertices: dimension %d needs %d vertices, got %d: %w", n, n, len(vertices), rterr.ErrDimensionMismatch)
	}
	for _, v := range vertices {
		if v.Dimension() != n {
			return Simplex{}, fmt.Errorf("geom.NewSimplexFromVertices: mixed vertex dimensions: %w", rterr.ErrDimensionMismatch)
		}
	}

	p1 := vertices[0]
	edges := make([]linalg.Vector, n-1)
	for i := 0; i < n-1; i++ {
		e, err := vertices[i+1].Sub(p1)
		if err != nil {
			return Simplex{}, err
		}
		edges[i] = e
	}

	faceNormal, err := linalg.Cross(edges)
	if err != nil {
		return Simplex{}, err
	}

	gram := linalg.NewMatrix(n - 1)
	for i := 0; i < n-1; i++ {
		for j := 0; j < n-1; j++ {
			dot, _ := edges[i].Dot(edges[j])
			gram.Set(i, j, dot)
		}
	}
	gramInv, ok := gram.Inverse()
	if !ok {
		return Simplex{}, fmt.Errorf("geom.NewSimplexFromVertices: degenerate (zero-volume) simplex: %w", rterr.ErrSingularMatrix)
	}

	edgeNormals := make([]linalg.Vector, n-1)
	for i := 0; i < n-1; i++ {
		acc := linalg.NewVector(n)
		for k := 0; k < n-1; k++ {
			scaled := edges[k].Scale(gramInv.At(k, i))
			acc, _ = acc.Add(scaled)
		}
		edgeNormals[i] = acc.Neg()
	}

	return NewSimplex(p1, faceNormal, edgeNormals, mat), nil
}
