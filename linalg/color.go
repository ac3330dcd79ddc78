package linalg

// Color is a three-channel (R, G, B) light/material color, grounded on the
// operator set of the original implementation's color struct: scalar and
// per-channel +, -, *, /.
type Color struct {
	R, G, B Real
}

// ScaleColor multiplies every channel by c.
func (c Color) ScaleColor(v Real) Color {
	return Color{c.R * v, c.G * v, c.B * v}
}

// DivColor divides every channel by c.
func (c Color) DivColor(v Real) Color {
	return Color{c.R / v, c.G / v, c.B / v}
}

// Add returns c+o, channel-wise.
func (c Color) Add(o Color) Color {
	return Color{c.R + o.R, c.G + o.G, c.B + o.B}
}

// Sub returns c-o, channel-wise.
func (c Color) Sub(o Color) Color {
	return Color{c.R - o.R, c.G - o.G, c.B - o.B}
}

// Mul returns the channel-wise (Hadamard) product.
func (c Color) Mul(o Color) Color {
	return Color{c.R * o.R, c.G * o.G, c.B * o.B}
}

// Neg negates every channel.
func (c Color) Neg() Color {
	return Color{-c.R, -c.G, -c.B}
}

// Max returns the largest channel value.
func (c Color) Max() Real {
	m := c.R
	if c.G > m {
		m = c.G
	}
	if c.B > m {
		m = c.B
	}
	return m
}

// Lerp blends from a to b by t in [0,1].
func Lerp(a, b Color, t Real) Color {
	return Color{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
	}
}
