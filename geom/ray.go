// Package geom implements the primitive intersection kernels: the unit
// hypercube and hypersphere, oriented solids built on them, the (n−1)-simplex
// and its SIMD-batched form, and the axis-aligned bounding box with its
// separating-axis tests against both.
package geom

import "github.com/ndimray/ndimray/linalg"

// Ray is an origin point plus a direction vector.
type Ray struct {
	Origin    linalg.Vector
	Direction linalg.Vector
}

// Material carries the shading parameters attached to every primitive:
// base color, specular tint, opacity, reflectivity, and the Blinn-Phong
// specular intensity/exponent.
type Material struct {
	Color             linalg.Color
	Specular          linalg.Color
	Opacity           linalg.Real
	Reflectivity      linalg.Real
	SpecularIntensity linalg.Real
	SpecularExp       linalg.Real
}

// Opaque reports whether the material fully blocks light.
func (m Material) Opaque() bool { return m.Opacity >= 1 }
