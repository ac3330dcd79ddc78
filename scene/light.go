package scene

import "github.com/ndimray/ndimray/linalg"

// PointLight is a light source at a fixed world position. Its contribution
// falls off with distance as 1/dist^(n-1), the n-dimensional generalization
// of the inverse-square law.
type PointLight struct {
	Position linalg.Vector
	Color    linalg.Color
}

// GlobalLight is a directional light at infinite distance: every point in
// the scene receives the same incoming direction and no distance falloff.
type GlobalLight struct {
	Direction linalg.Vector
	Color     linalg.Color
}
