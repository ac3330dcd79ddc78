// Package camera implements the pinhole camera's position and orthonormal
// orientation frame: origin plus axes, with translate/transform/normalize.
package camera

import (
	"fmt"

	"github.com/ndimray/ndimray/linalg"
	"github.com/ndimray/ndimray/rterr"
)

// Camera is an origin point plus an orthonormal frame (axes, stored as
// rows of axes). right = axes[0], up = axes[1], forward = axes[2].
type Camera struct {
	Origin linalg.Vector
	Axes   linalg.Matrix
}

// New returns a camera at the origin with the identity frame, in dimension
// d.
func New(d int) (Camera, error) {
	if d < linalg.MinDimension {
		return Camera{}, fmt.Errorf("camera.New: dimension=%d: %w", d, rterr.ErrInvalidDimension)
	}
	return Camera{Origin: linalg.NewVector(d), Axes: linalg.Identity(d)}, nil
}

// NewWithFrame builds a camera from an explicit origin and axis rows.
// axes[i] must all share origin's dimension.
func NewWithFrame(origin linalg.Vector, axes []linalg.Vector) (Camera, error) {
	d := origin.Dimension()
	if d < linalg.MinDimension {
		return Camera{}, fmt.Errorf("camera.NewWithFrame: dimension=%d: %w", d, rterr.ErrInvalidDimension)
	}
	if len(axes) != d {
		return Camera{}, fmt.Errorf("camera.NewWithFrame: got %d axes, want %d: %w", len(axes), d, rterr.ErrDimensionMismatch)
	}
	m := linalg.NewMatrix(d)
	for i, a := range axes {
		if a.Dimension() != d {
			return Camera{}, fmt.Errorf("camera.NewWithFrame: axis %d dimension=%d: %w", i, a.Dimension(), rterr.ErrDimensionMismatch)
		}
		m.SetRow(i, a)
	}
	return Camera{Origin: origin, Axes: m}, nil
}

// Dimension returns the camera's dimension.
func (c Camera) Dimension() int { return c.Origin.Dimension() }

// Translate moves the origin by v, interpreted in the camera's own basis:
// origin += Σᵢ v[i]·axes[i].
func (c *Camera) Translate(v linalg.Vector) error {
	if v.Dimension() != c.Dimension() {
		return fmt.Errorf("camera.Translate: v.dimension=%d camera.dimension=%d: %w", v.Dimension(), c.Dimension(), rterr.ErrDimensionMismatch)
	}
	d := c.Dimension()
	origin := c.Origin
	for i := 0; i < d; i++ {
		row := c.Axes.Row(i)
		scaled := row.Scale(v.At(i))
		var err error
		origin, err = origin.Add(scaled)
		if err != nil {
			return err
		}
	}
	c.Origin = origin
	return nil
}

// Transform rotates the frame by m: axes ← axes·mᵀ.
func (c *Camera) Transform(m linalg.Matrix) error {
	if m.Dimension() != c.Dimension() {
		return fmt.Errorf("camera.Transform: m.dimension=%d camera.dimension=%d: %w", m.Dimension(), c.Dimension(), rterr.ErrDimensionMismatch)
	}
	result, err := c.Axes.MulTranspose(m)
	if err != nil {
		return err
	}
	c.Axes = result
	return nil
}

// Normalize restores orthonormality of the frame via classical
// Gram-Schmidt: row 0 is unit-normalized as-is; each subsequent row is
// orthogonalized against all earlier (already orthonormal) rows, then
// unit-normalized.
func (c *Camera) Normalize() {
	d := c.Dimension()
	rows := make([]linalg.Vector, d)
	for i := 0; i < d; i++ {
		rows[i] = c.Axes.Row(i)
	}

	rows[0] = rows[0].Unit()
	for i := 1; i < d; i++ {
		x := rows[i]
		for j := 0; j < i; j++ {
			dot, _ := rows[i].Dot(rows[j])
			proj := rows[j].Scale(dot)
			x, _ = x.Sub(proj)
		}
		rows[i] = x.Unit()
	}

	for i := 0; i < d; i++ {
		c.Axes.SetRow(i, rows[i])
	}
}

// Right returns axes[0].
func (c Camera) Right() linalg.Vector { return c.Axes.Row(0) }

// Up returns axes[1]. Panics if dimension <= 1, matching the original
// implementation's precondition (never reachable in this system since
// dimension >= 3 is enforced at construction).
func (c Camera) Up() linalg.Vector {
	if c.Dimension() <= 1 {
		panic("camera.Up: dimension <= 1")
	}
	return c.Axes.Row(1)
}

// Forward returns axes[2]. Panics if dimension <= 2.
func (c Camera) Forward() linalg.Vector {
	if c.Dimension() <= 2 {
		panic("camera.Forward: dimension <= 2")
	}
	return c.Axes.Row(2)
}
