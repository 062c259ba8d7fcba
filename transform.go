package canvas2d

import "math"

// Affine is a 2D affine matrix stored as [a, b, c, d, tx, ty].
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
//
// A point (x, y) maps to (a*x + c*y + tx, b*x + d*y + ty).
type Affine [6]float64

// identityTransform is the identity affine matrix.
var identityTransform = Affine{1, 0, 0, 1, 0, 0}

// Identity returns the identity matrix.
func Identity() Affine { return identityTransform }

// Translation returns a matrix that translates by (tx, ty).
func Translation(tx, ty float64) Affine { return Affine{1, 0, 0, 1, tx, ty} }

// Scaling returns a matrix that scales by (sx, sy).
func Scaling(sx, sy float64) Affine { return Affine{sx, 0, 0, sy, 0, 0} }

// Rotation returns a matrix that rotates by angle radians (clockwise in a
// y-down surface).
func Rotation(angle float64) Affine {
	sin, cos := math.Sincos(angle)
	return Affine{cos, sin, -sin, cos, 0, 0}
}

// Mul returns m * n. Mapping a point through the result is the same as
// mapping it through n first and then through m.
func (m Affine) Mul(n Affine) Affine {
	return Affine{
		m[0]*n[0] + m[2]*n[1],
		m[1]*n[0] + m[3]*n[1],
		m[0]*n[2] + m[2]*n[3],
		m[1]*n[2] + m[3]*n[3],
		m[0]*n[4] + m[2]*n[5] + m[4],
		m[1]*n[4] + m[3]*n[5] + m[5],
	}
}

// Determinant returns a*d - c*b.
func (m Affine) Determinant() float64 {
	return m[0]*m[3] - m[2]*m[1]
}

// Invert returns the inverse of m. When m is singular (determinant ≈ 0) it
// returns m unchanged and false.
func (m Affine) Invert() (Affine, bool) {
	det := m.Determinant()
	if det > -1e-12 && det < 1e-12 {
		return m, false
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return Affine{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}, true
}

// Apply maps the point (x, y) through m.
func (m Affine) Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// Translate returns m with a translation applied in local space, the way a
// 2D canvas translate() composes with the current transform.
func (m Affine) Translate(tx, ty float64) Affine {
	return m.Mul(Translation(tx, ty))
}

// Scale returns m with a local scale applied.
func (m Affine) Scale(sx, sy float64) Affine {
	return m.Mul(Scaling(sx, sy))
}

// Rotate returns m with a local rotation applied.
func (m Affine) Rotate(angle float64) Affine {
	return m.Mul(Rotation(angle))
}

// IsIdentity reports whether m is exactly the identity matrix.
func (m Affine) IsIdentity() bool {
	return m == identityTransform
}

// boundsOf maps the rectangle r through m and returns the axis-aligned
// bounding box of the four transformed corners.
func (m Affine) boundsOf(r Rect) Rect {
	x0, y0 := m.Apply(r.X, r.Y)
	x1, y1 := m.Apply(r.X+r.Width, r.Y)
	x2, y2 := m.Apply(r.X, r.Y+r.Height)
	x3, y3 := m.Apply(r.X+r.Width, r.Y+r.Height)
	minX := math.Min(math.Min(x0, x1), math.Min(x2, x3))
	minY := math.Min(math.Min(y0, y1), math.Min(y2, y3))
	maxX := math.Max(math.Max(x0, x1), math.Max(x2, x3))
	maxY := math.Max(math.Max(y0, y1), math.Max(y2, y3))
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
