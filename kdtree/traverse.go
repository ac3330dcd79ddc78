package kdtree

import (
	"github.com/ndimray/ndimray/geom"
	"github.com/ndimray/ndimray/linalg"
)

// Hit is one primitive intersection recorded during traversal: its
// distance along the ray, the world-space normal ray at the hit point, and
// the material to shade it with.
type Hit struct {
	Distance linalg.Real
	Normal   geom.Ray
	Material geom.Material
}

// traversal carries the per-ray state shared across a recursive descent:
// the checked set (linear-scanned, per spec.md's "lists are typically
// tiny"), the running nearest-opaque cutoff, and the accumulated
// transparent hits. It is never shared across rays/goroutines.
type traversal struct {
	ray    geom.Ray
	invdir []linalg.Real
	origin Origin

	checked     []primitive
	transparent []Hit

	cutoff linalg.Real
	best   Hit
	found  bool

	occludeMode bool
	occluded    bool
}

func newTraversal(ray geom.Ray, origin Origin, cutoff linalg.Real, occludeMode bool) *traversal {
	n := ray.Direction.Dimension()
	invdir := make([]linalg.Real, n)
	for i := 0; i < n; i++ {
		if d := ray.Direction.At(i); d != 0 {
			invdir[i] = 1 / d
		}
	}
	return &traversal{ray: ray, invdir: invdir, origin: origin, cutoff: cutoff, occludeMode: occludeMode}
}

func (tr *traversal) alreadyChecked(p primitive) bool {
	for _, c := range tr.checked {
		if c == p {
			return true
		}
	}
	return false
}

func (tr *traversal) testLeaf(leaf *LeafNode) {
	for _, p := range leaf.Prims {
		if tr.occludeMode && tr.occluded {
			return
		}
		if tr.alreadyChecked(p) {
			continue
		}
		tr.checked = append(tr.checked, p)

		dist, normal, mat, hit := p.intersect(tr.ray, tr.origin, tr.cutoff)
		if !hit {
			continue
		}
		if mat.Opaque() {
			if !tr.found || dist < tr.best.Distance {
				tr.found = true
				tr.best = Hit{Distance: dist, Normal: normal, Material: mat}
				if dist < tr.cutoff {
					tr.cutoff = dist
				}
			}
			if tr.occludeMode {
				tr.occluded = true
			}
		} else {
			tr.transparent = append(tr.transparent, Hit{Distance: dist, Normal: normal, Material: mat})
		}
	}
}

// visit descends node over the ray parameter range [tNear, tFar], pruning
// subtrees that cannot contain anything nearer than the current cutoff.
// Branch handling follows spec.md §4.F's four-case near/far split.
func (tr *traversal) visit(node *Node, tNear, tFar linalg.Real) {
	if node == nil || tNear > tr.cutoff {
		return
	}
	if tr.occludeMode && tr.occluded {
		return
	}
	if node.Leaf != nil {
		tr.testLeaf(node.Leaf)
		return
	}

	b := node.Branch
	dir := tr.ray.Direction.At(b.Axis)
	origin := tr.ray.Origin.At(b.Axis)

	if dir == 0 {
		if origin >= b.Split {
			tr.visit(b.Right, tNear, tFar)
		} else {
			tr.visit(b.Left, tNear, tFar)
		}
		return
	}

	t := (b.Split - origin) * tr.invdir[b.Axis]
	near, far := b.Left, b.Right
	if origin >= b.Split {
		near, far = b.Right, b.Left
	}

	switch {
	case t < 0 || t > tFar:
		tr.visit(near, tNear, tFar)
	case t < tNear:
		tr.visit(far, tNear, tFar)
	default:
		tr.visit(near, tNear, t)
		if tr.occludeMode && tr.occluded {
			return
		}
		if t < tr.cutoff {
			tr.visit(far, t, tFar)
		}
	}
}

// Intersect returns the nearest opaque hit, if any, plus the deduplicated
// transparent hits nearer than it (hits beyond the opaque distance are
// trimmed, since the far-side search narrows cutoff as it finds a nearer
// opaque hit).
func (t *Tree) Intersect(ray geom.Ray, origin Origin, cutoff linalg.Real) (Hit, bool, []Hit) {
	if t.root == nil {
		return Hit{}, false, nil
	}
	tr := newTraversal(ray, origin, cutoff, false)
	tr.visit(t.root, 0, cutoff)

	if tr.found {
		trimmed := tr.transparent[:0]
		for _, h := range tr.transparent {
			if h.Distance < tr.best.Distance {
				trimmed = append(trimmed, h)
			}
		}
		tr.transparent = trimmed
	}
	return tr.best, tr.found, tr.transparent
}

// Occludes reports whether an opaque hit blocks the ray within
// lightDistance, along with the transparent hits accumulated along the
// way (used to attenuate the light's color by their combined opacity).
func (t *Tree) Occludes(ray geom.Ray, origin Origin, lightDistance linalg.Real) (bool, []Hit) {
	if t.root == nil {
		return false, nil
	}
	tr := newTraversal(ray, origin, lightDistance, true)
	tr.visit(t.root, 0, lightDistance)
	return tr.occluded, tr.transparent
}
