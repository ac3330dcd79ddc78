package scene

import (
	"sort"

	"github.com/chewxy/math32"

	"github.com/ndimray/ndimray/geom"
	"github.com/ndimray/ndimray/kdtree"
	"github.com/ndimray/ndimray/linalg"
)

// lightThreshold is LIGHT_THRESHOLD: a shadow ray is skipped when a light's
// maximum possible contribution already falls below this, since the
// occlusion test it would otherwise pay for cannot change the visible
// result.
const lightThreshold linalg.Real = 1.0 / 512

var white = linalg.Color{R: 1, G: 1, B: 1}

// colorAt traces ray through the scene and returns its shaded color: the
// background gradient on a miss, otherwise the nearest opaque hit's
// base_color composited back-to-front with any transparent hits nearer than
// it. depth bounds reflection recursion.
func (s *Scene) colorAt(ray geom.Ray, origin kdtree.Origin, depth int) linalg.Color {
	hit, ok, transparent := s.tree.Intersect(ray, origin, infiniteDistance)

	var r linalg.Color
	if ok {
		r = s.baseColor(ray, hit, depth)
	} else {
		r = s.backgroundColor(ray.Direction)
	}

	sort.Slice(transparent, func(i, j int) bool { return transparent[i].Distance > transparent[j].Distance })
	for _, h := range transparent {
		hc := s.baseColor(ray, h, depth)
		r = hc.ScaleColor(h.Material.Opacity).Add(r.ScaleColor(1 - h.Material.Opacity))
	}
	return r
}

// backgroundColor computes the gradient spec.md §4.G describes: mix bg1/bg2
// when direction[bg_gradient_axis] is positive, bg3/bg2 when negative, with
// the blend weight given by how far the component is from zero (clamped to
// the [bg2, bg1-or-bg3] endpoints at |component| >= 1).
func (s *Scene) backgroundColor(direction linalg.Vector) linalg.Color {
	v := direction.At(s.BGAxis)
	t := v
	if t < 0 {
		t = -t
	}
	if t > 1 {
		t = 1
	}
	if v >= 0 {
		return linalg.Lerp(s.BG2, s.BG1, t)
	}
	return linalg.Lerp(s.BG2, s.BG3, t)
}

// baseColor implements spec.md §4.G's base_color(target, hit.normal,
// hit.target, depth): diffuse and specular accumulation over every light,
// then optional reflection recursion.
func (s *Scene) baseColor(target geom.Ray, hit kdtree.Hit, depth int) linalg.Color {
	mat := hit.Material
	n := hit.Normal.Origin.Dimension()

	var light, specular linalg.Color
	var specA linalg.Real

	for _, pl := range s.PointLights {
		delta, _ := hit.Normal.Origin.Sub(pl.Position)
		dist := delta.Absolute()
		if dist == 0 {
			continue
		}
		lv := delta.Scale(1 / dist)
		strength := inversePower(dist, n-1)
		s.accumulateLight(hit, target, lv, dist, pl.Color, strength, true, &light, &specular, &specA)
	}

	for _, gl := range s.GlobalLights {
		lv := gl.Direction.Unit()
		s.accumulateLight(hit, target, lv, infiniteDistance, gl.Color, 1, true, &light, &specular, &specA)
	}

	if s.CameraLight {
		s.accumulateLight(hit, target, target.Direction, infiniteDistance, white, 1, false, &light, &specular, &specA)
	}

	// The accumulated specular highlight is weighted by its own total
	// coverage once all lights have contributed, so a surface lit by many
	// overlapping highlights doesn't exceed a fully-covered (spec_a == 1)
	// one.
	specular = specular.ScaleColor(specA)

	r := s.Ambient.Add(mat.Color.Mul(light))

	if mat.Reflectivity > 0 && depth < s.MaxReflectDepth {
		reflected := s.colorAt(reflectRay(target, hit.Normal), kdtree.NoOrigin, depth+1)
		r = mat.Color.Mul(reflected).ScaleColor(mat.Reflectivity).Add(r.ScaleColor(1 - mat.Reflectivity))
	}

	return specular.Add(r.ScaleColor(1 - specA))
}

// accumulateLight folds one light's contribution into light/specular/specA.
// lv is the unit direction the light travels in, from its source toward the
// hit point. castShadow disables the occlusion test for lights (the camera
// headlight) that are defined to never be shadowed.
func (s *Scene) accumulateLight(hit kdtree.Hit, target geom.Ray, lv linalg.Vector, distance linalg.Real, lightColor linalg.Color, strength linalg.Real, castShadow bool, light, specular *linalg.Color, specA *linalg.Real) {
	toLight := lv.Neg()
	sine, _ := hit.Normal.Direction.Dot(toLight)
	if sine <= 0 {
		return
	}

	filtered := lightColor
	if castShadow && s.Shadows {
		if lightColor.Max()*strength*sine < lightThreshold {
			return
		}
		shadowRay := geom.Ray{Origin: hit.Normal.Origin, Direction: toLight}
		blocked, passed := s.tree.Occludes(shadowRay, kdtree.NoOrigin, distance)
		if blocked {
			return
		}
		for _, th := range passed {
			filtered = filtered.ScaleColor(1 - th.Material.Opacity)
		}
	}

	*light = light.Add(filtered.ScaleColor(strength * sine))

	toViewer := target.Direction.Neg()
	half, _ := toLight.Add(toViewer)
	half = half.Unit()
	nDotH, _ := hit.Normal.Direction.Dot(half)
	if nDotH < 0 {
		nDotH = 0
	}
	base := math32.Pow(nDotH, hit.Material.SpecularExp) * hit.Material.SpecularIntensity

	*specular = specular.Add(hit.Material.Specular.Mul(filtered).ScaleColor(base * (1 - *specA)))
	*specA += base * (1 - *specA)
}

// reflectRay mirrors target's direction about normal, starting from the hit
// point.
func reflectRay(target geom.Ray, normal geom.Ray) geom.Ray {
	dot, _ := target.Direction.Dot(normal.Direction)
	scaled := normal.Direction.Scale(2 * dot)
	dir, _ := target.Direction.Sub(scaled)
	return geom.Ray{Origin: normal.Origin, Direction: dir}
}

// inversePower returns 1/dist^p for a non-negative integer p.
func inversePower(dist linalg.Real, p int) linalg.Real {
	result := linalg.Real(1)
	for i := 0; i < p; i++ {
		result /= dist
	}
	return result
}
