package canvas2d

import (
	"image/color"
	"math"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication happens in the shaders.
type Color struct {
	R, G, B, A float64
}

// Common colors.
var (
	ColorWhite       = Color{1, 1, 1, 1}
	ColorBlack       = Color{0, 0, 0, 1}
	ColorTransparent = Color{}
)

// RGB returns an opaque color from 8-bit components.
func RGB(r, g, b uint8) Color {
	return Color{float64(r) / 255, float64(g) / 255, float64(b) / 255, 1}
}

// packed returns the color as four unsigned bytes in R, G, B, A memory order,
// which is how the color vertex attribute is laid out.
func (c Color) packed() uint32 {
	r := uint32(clamp01(c.R)*255 + 0.5)
	g := uint32(clamp01(c.G)*255 + 0.5)
	b := uint32(clamp01(c.B)*255 + 0.5)
	a := uint32(clamp01(c.A)*255 + 0.5)
	return r | g<<8 | b<<16 | a<<24
}

// nrgba converts c to an 8-bit non-premultiplied color.
func (c Color) nrgba() color.NRGBA {
	p := c.packed()
	return color.NRGBA{R: uint8(p), G: uint8(p >> 8), B: uint8(p >> 16), A: uint8(p >> 24)}
}

// UnpackColor is the inverse of the vertex color packing. Backends use it to
// read the color attribute back out of a vertex.
func UnpackColor(bits uint32) (r, g, b, a float32) {
	return float32(bits&0xff) / 255,
		float32(bits>>8&0xff) / 255,
		float32(bits>>16&0xff) / 255,
		float32(bits>>24&0xff) / 255
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// ContainsRect reports whether o lies entirely within r.
func (r Rect) ContainsRect(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y &&
		o.X+o.Width <= r.X+r.Width &&
		o.Y+o.Height <= r.Y+r.Height
}

// Intersect returns the overlap of r and o. Disjoint rectangles yield a
// zero-sized rectangle placed inside r, so the result always lies within r.
func (r Rect) Intersect(o Rect) Rect {
	x0 := math.Max(r.X, o.X)
	y0 := math.Max(r.Y, o.Y)
	x1 := math.Min(r.X+r.Width, o.X+o.Width)
	y1 := math.Min(r.Y+r.Height, o.Y+o.Height)
	if x1 < x0 {
		x0 = math.Min(math.Max(x0, r.X), r.X+r.Width)
		x1 = x0
	}
	if y1 < y0 {
		y0 = math.Min(math.Max(y0, r.Y), r.Y+r.Height)
		y1 = y0
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// nextPowerOfTwo returns the smallest power of two >= n (minimum 1).
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << int(math.Ceil(math.Log2(float64(n))))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
