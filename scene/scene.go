// Package scene assembles a locked k-d tree, a camera, lights, and a
// background gradient into the single per-pixel operation a renderer needs:
// calculate_color(x,y). Shading (base_color, reflection recursion,
// transparency compositing) lives in shading.go; this file holds the
// scene's shape, its lock semantics, and the primary-ray construction.
package scene

import (
	"fmt"
	"sync/atomic"

	"github.com/chewxy/math32"

	"github.com/ndimray/ndimray/camera"
	"github.com/ndimray/ndimray/geom"
	"github.com/ndimray/ndimray/kdtree"
	"github.com/ndimray/ndimray/linalg"
	"github.com/ndimray/ndimray/rterr"
)

// defaultFOV and defaultMaxReflectDepth match the original implementation's
// scene defaults (a 90-degree field of view, four bounces).
const (
	defaultFOV             = math32.Pi / 2
	defaultMaxReflectDepth = 4
)

// infiniteDistance stands in for "no far limit" when casting a ray toward a
// global (directional, infinitely distant) light or when no opaque hit
// exists to bound a traversal's cutoff. Kept finite, rather than
// math32.Inf(1), so every arithmetic combination downstream of a traversal's
// invdir stays a normal float.
const infiniteDistance linalg.Real = 1e30

// Scene is the complete renderable description: a read-only k-d tree of
// primitives, a camera, and the lights/background/ambient settings the
// shading loop reads from. Per spec.md §5, the lock count governs mutation,
// not traversal — once a Scene is handed to a renderer, every field here is
// read-only for the renderer's lifetime, but Go has no way to enforce that
// at the field level, so only SetViewSize checks the lock explicitly; every
// other field is a plain exported value the caller is responsible not to
// mutate concurrently with an active render (matching the original
// scene.hpp's own comment that enforcement is the binding layer's job, not
// the scene type's).
type Scene struct {
	Bounds geom.AABB
	tree   *kdtree.Tree

	Camera          camera.Camera
	FOV             linalg.Real
	MaxReflectDepth int

	Ambient        linalg.Color
	BGAxis         int
	BG1, BG2, BG3  linalg.Color
	PointLights    []PointLight
	GlobalLights   []GlobalLight
	CameraLight    bool
	Shadows        bool

	width, height int

	locked int32
}

// New builds a Scene from its bounding box and a prebuilt k-d tree,
// following original_source/src/scene.hpp's shape: a small struct populated
// by field assignment, rather than a long positional constructor threading
// every shading parameter through one call.
func New(boundsMin, boundsMax linalg.Vector, tree *kdtree.Tree) (*Scene, error) {
	bounds, err := geom.NewAABB(boundsMin, boundsMax)
	if err != nil {
		return nil, fmt.Errorf("scene.New: %w", err)
	}
	cam, err := camera.New(boundsMin.Dimension())
	if err != nil {
		return nil, fmt.Errorf("scene.New: %w", err)
	}
	return &Scene{
		Bounds:          bounds,
		tree:            tree,
		Camera:          cam,
		FOV:             defaultFOV,
		MaxReflectDepth: defaultMaxReflectDepth,
		Shadows:         true,
	}, nil
}

// Lock increments the scene's reader count. Renderers call this once before
// a job starts.
func (s *Scene) Lock() { atomic.AddInt32(&s.locked, 1) }

// Unlock decrements the reader count. Renderers call this once a job
// completes or is aborted.
func (s *Scene) Unlock() { atomic.AddInt32(&s.locked, -1) }

// Locked reports whether the scene currently has at least one reader.
func (s *Scene) Locked() bool { return atomic.LoadInt32(&s.locked) > 0 }

// SetViewSize fixes the output image dimensions the primary-ray formula
// divides by; it fails if the scene is locked, per spec.md §5's "once
// locked, no mutation is permitted."
func (s *Scene) SetViewSize(width, height int) error {
	if s.Locked() {
		return fmt.Errorf("scene.SetViewSize: %w", rterr.ErrSceneLocked)
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("scene.SetViewSize: width=%d height=%d: %w", width, height, rterr.ErrInvalidDimension)
	}
	s.width, s.height = width, height
	return nil
}

// ViewSize returns the dimensions set by SetViewSize.
func (s *Scene) ViewSize() (width, height int) { return s.width, s.height }

// CalculateColor renders the single pixel (x,y), tracing its primary ray
// through the scene.
func (s *Scene) CalculateColor(x, y int) (linalg.Color, error) {
	if s.width <= 0 || s.height <= 0 {
		return linalg.Color{}, fmt.Errorf("scene.CalculateColor: %w", rterr.ErrInvalidDimension)
	}
	return s.colorAt(s.primaryRay(x, y), kdtree.NoOrigin, 0), nil
}

// primaryRay builds the camera ray through pixel (x,y), per spec.md §4.H.
func (s *Scene) primaryRay(x, y int) geom.Ray {
	halfW := linalg.Real(s.width) / 2
	halfH := linalg.Real(s.height) / 2
	fovI := math32.Tan(s.FOV/2) / halfW

	dx := fovI * (linalg.Real(x) - halfW)
	dy := fovI * (linalg.Real(y) - halfH)

	dir := s.Camera.Forward()
	dir, _ = dir.Add(s.Camera.Right().Scale(dx))
	dir, _ = dir.Sub(s.Camera.Up().Scale(dy))

	return geom.Ray{Origin: s.Camera.Origin, Direction: dir.Unit()}
}
