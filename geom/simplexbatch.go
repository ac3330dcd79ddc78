package geom

import (
	"fmt"

	"github.com/ndimray/ndimray/linalg"
	"github.com/ndimray/ndimray/rterr"
	"github.com/ndimray/ndimray/simd"
)

// SimplexBatch packs up to simd.MaxLanes[linalg.Real]() simplices of the
// same dimension into one prototype, testing all of them against a ray in
// lockstep: one SIMD lane per simplex, one loop iteration per axis.
type SimplexBatch struct {
	dimension int
	count     int // number of populated lanes, <= lanes

	p1          [][]linalg.Real // [axis][lane]
	faceNormal  [][]linalg.Real // [axis][lane]
	d           []linalg.Real   // [lane]
	edgeNormals [][][]linalg.Real // [edge][axis][lane]
	mats        []Material        // [lane]
}

// Lanes returns the SIMD width this batch was built for.
func (b SimplexBatch) Lanes() int { return len(b.d) }

// Count returns the number of simplices actually packed into the batch.
func (b SimplexBatch) Count() int { return b.count }

// Dimension returns the ambient dimension.
func (b SimplexBatch) Dimension() int { return b.dimension }

// NewSimplexBatch packs up to simd.MaxLanes[linalg.Real]() simplices into
// one batch. Unfilled lanes are padded by repeating the last simplex (with
// its material marked fully transparent so it never wins a hit), keeping
// every lane's FaceNormal/EdgeNormals data finite.
func NewSimplexBatch(simplices []Simplex) (SimplexBatch, error) {
	if len(simplices) == 0 {
		return SimplexBatch{}, fmt.Errorf("geom.NewSimplexBatch: empty batch: %w", rterr.ErrDimensionMismatch)
	}
	lanes := simd.MaxLanes[linalg.Real]()
	if len(simplices) > lanes {
		return SimplexBatch{}, fmt.Errorf("geom.NewSimplexBatch: %d simplices exceeds lane width %d: %w", len(simplices), lanes, rterr.ErrDimensionMismatch)
	}
	n := simplices[0].Dimension()
	for _, s := range simplices {
		if s.Dimension() != n {
			return SimplexBatch{}, fmt.Errorf("geom.NewSimplexBatch: mixed dimensions: %w", rterr.ErrDimensionMismatch)
		}
	}

	b := SimplexBatch{
		dimension:   n,
		count:       len(simplices),
		p1:          make([][]linalg.Real, n),
		faceNormal:  make([][]linalg.Real, n),
		d:           make([]linalg.Real, lanes),
		edgeNormals: make([][][]linalg.Real, n-1),
		mats:        make([]Material, lanes),
	}
	for axis := 0; axis < n; axis++ {
		b.p1[axis] = make([]linalg.Real, lanes)
		b.faceNormal[axis] = make([]linalg.Real, lanes)
	}
	for e := 0; e < n-1; e++ {
		b.edgeNormals[e] = make([][]linalg.Real, n)
		for axis := 0; axis < n; axis++ {
			b.edgeNormals[e][axis] = make([]linalg.Real, lanes)
		}
	}

	fillLane := func(lane int, s Simplex) {
		for axis := 0; axis < n; axis++ {
			b.p1[axis][lane] = s.P1.At(axis)
			b.faceNormal[axis][lane] = s.FaceNormal.At(axis)
		}
		b.d[lane] = s.D
		for e := 0; e < n-1; e++ {
			for axis := 0; axis < n; axis++ {
				b.edgeNormals[e][axis][lane] = s.EdgeNormals[e].At(axis)
			}
		}
		b.mats[lane] = s.Mat
	}

	for lane, s := range simplices {
		fillLane(lane, s)
	}
	last := simplices[len(simplices)-1]
	padded := last
	padded.Mat.Opacity = 0
	for lane := len(simplices); lane < lanes; lane++ {
		fillLane(lane, padded)
	}

	return b, nil
}

// Intersect tests target against every populated lane except skipLane
// (pass -1 to skip none), returning the nearest hit's distance, its lane
// index, and the world-space normal ray. Returns (0, -1, _) on a total
// miss.
func (b SimplexBatch) Intersect(target Ray, skipLane int, cutoff linalg.Real) (linalg.Real, int, Ray) {
	lanes := b.Lanes()
	n := b.dimension

	denom := simd.Zero[linalg.Real]()
	faceDotOrigin := simd.Zero[linalg.Real]()
	for axis := 0; axis < n; axis++ {
		dirAxis := simd.Set(target.Direction.At(axis))
		originAxis := simd.Set(target.Origin.At(axis))
		fn := simd.Load(b.faceNormal[axis])
		denom = simd.MulAdd(fn, dirAxis, denom)
		faceDotOrigin = simd.MulAdd(fn, originAxis, faceDotOrigin)
	}

	dVec := simd.Load(b.d)
	numerator := simd.Neg(simd.Add(faceDotOrigin, dVec))
	zero := simd.Zero[linalg.Real]()
	validDenom := simd.NotEqual(denom, zero)
	// avoid a division by zero in lanes with denom==0; the mask below
	// excludes them from the result regardless of the quotient computed.
	safeDenom := simd.IfThenElse(validDenom, denom, simd.Const[linalg.Real](1))
	t := simd.Div(numerator, safeDenom)

	cutoffVec := simd.Set(cutoff)
	mask := simd.MaskAnd(validDenom, simd.GreaterThan(t, zero))
	mask = simd.MaskAnd(mask, simd.LessThan(t, cutoffVec))

	// p[axis] = origin[axis] + t*direction[axis]; pside[axis] = p1[axis] - p[axis]
	pside := make([]simd.Vec[linalg.Real], n)
	for axis := 0; axis < n; axis++ {
		dirAxis := simd.Set(target.Direction.At(axis))
		originAxis := simd.Set(target.Origin.At(axis))
		p := simd.MulAdd(t, dirAxis, originAxis)
		p1Axis := simd.Load(b.p1[axis])
		pside[axis] = simd.Sub(p1Axis, p)
	}

	fuzz := simd.Const[linalg.Real](float64(RoundingFuzz))
	onePlusFuzz := simd.Const[linalg.Real](1 + float64(RoundingFuzz))
	negFuzz := simd.Neg(fuzz)

	totalArea := simd.Zero[linalg.Real]()
	for e := 0; e < n-1; e++ {
		area := simd.Zero[linalg.Real]()
		for axis := 0; axis < n; axis++ {
			edgeAxis := simd.Load(b.edgeNormals[e][axis])
			area = simd.MulAdd(edgeAxis, pside[axis], area)
		}
		mask = simd.MaskAnd(mask, simd.GreaterEqual(area, negFuzz))
		mask = simd.MaskAnd(mask, simd.LessEqual(area, onePlusFuzz))
		totalArea = simd.Add(totalArea, area)
	}
	mask = simd.MaskAnd(mask, simd.LessEqual(totalArea, onePlusFuzz))

	tVals := t.Data()
	bestLane := -1
	var bestDist linalg.Real
	for lane := 0; lane < lanes && lane < b.count; lane++ {
		if lane == skipLane || !mask.GetBit(lane) {
			continue
		}
		if bestLane == -1 || tVals[lane] < bestDist {
			bestLane = lane
			bestDist = tVals[lane]
		}
	}
	if bestLane == -1 {
		return 0, -1, Ray{}
	}

	normalDir := make([]linalg.Real, n)
	hitPoint := make([]linalg.Real, n)
	for axis := 0; axis < n; axis++ {
		normalDir[axis] = b.faceNormal[axis][bestLane]
		hitPoint[axis] = target.Origin.At(axis) + bestDist*target.Direction.At(axis)
	}
	faceVec, _ := linalg.VectorFromValues(normalDir)
	unitNormal := faceVec.Unit()
	if denom.Data()[bestLane] > 0 {
		unitNormal = unitNormal.Neg()
	}
	hitVec, _ := linalg.VectorFromValues(hitPoint)
	return bestDist, bestLane, Ray{Origin: hitVec, Direction: unitNormal}
}

// Material returns the material assigned to lane.
func (b SimplexBatch) Material(lane int) Material { return b.mats[lane] }
