package canvas2d

import (
	"fmt"
	"math"
)

// Context is a 2D drawing context over one surface: the screen for the
// primary context, or a render target for an offscreen one. Draw calls are
// queued into the Manager's shared batch and drawn at the next flush.
type Context struct {
	mgr       *Manager
	image     *Image
	offscreen bool
	width     int
	height    int

	state contextState
	stack []contextState
}

func newContext(m *Manager, img *Image, offscreen bool) *Context {
	return &Context{
		mgr:       m,
		image:     img,
		offscreen: offscreen,
		width:     img.width,
		height:    img.height,
		state:     defaultState(),
	}
}

// Width returns the surface width in pixels.
func (c *Context) Width() int { return c.width }

// Height returns the surface height in pixels.
func (c *Context) Height() int { return c.height }

// Offscreen reports whether the context draws into a render target.
func (c *Context) Offscreen() bool { return c.offscreen }

// Element returns the surface image. An offscreen context's element can be
// passed to DrawImage on another context; the primary context's cannot.
func (c *Context) Element() *Image { return c.image }

// Resize changes the surface size. An offscreen context's contents are
// discarded and its render target reallocated.
func (c *Context) Resize(w, h int) error {
	if w == c.width && h == c.height {
		return nil
	}
	m := c.mgr
	m.release(c)
	c.width, c.height = w, h
	if !c.offscreen {
		c.image.width, c.image.height = w, h
		return nil
	}
	m.cache.Delete(c.image)
	c.image.width, c.image.height = w, h
	if m.lost || m.closed || w <= 0 || h <= 0 {
		return nil
	}
	if _, err := m.cache.Texture(c.image); err != nil {
		return fmt.Errorf("canvas2d: resize offscreen target: %w", err)
	}
	return nil
}

// Save pushes a copy of the current drawing state.
func (c *Context) Save() {
	c.stack = append(c.stack, c.state)
}

// Restore pops the most recently saved state. With nothing saved it returns
// ErrUnbalancedRestore and leaves the state unchanged.
func (c *Context) Restore() error {
	n := len(c.stack)
	if n == 0 {
		return ErrUnbalancedRestore
	}
	c.state = c.stack[n-1]
	c.stack = c.stack[:n-1]
	return nil
}

// SaveDepth returns the number of saved states.
func (c *Context) SaveDepth() int { return len(c.stack) }

// Reset drops the saved states and restores every default.
func (c *Context) Reset() {
	c.stack = c.stack[:0]
	c.state = defaultState()
}

// SetTransform replaces the current transform with
//
//	| a c e |
//	| b d f |
func (c *Context) SetTransform(a, b, cc, d, e, f float64) {
	c.state.transform = Affine{a, b, cc, d, e, f}
}

// ResetTransform sets the current transform to identity.
func (c *Context) ResetTransform() {
	c.state.transform = identityTransform
}

// Transform post-multiplies the current transform by the given matrix.
func (c *Context) Transform(a, b, cc, d, e, f float64) {
	c.state.transform = c.state.transform.Mul(Affine{a, b, cc, d, e, f})
}

// Translate moves the origin by (x, y) in local space.
func (c *Context) Translate(x, y float64) {
	c.state.transform = c.state.transform.Translate(x, y)
}

// Scale scales local space.
func (c *Context) Scale(sx, sy float64) {
	c.state.transform = c.state.transform.Scale(sx, sy)
}

// Rotate rotates local space clockwise by angle radians.
func (c *Context) Rotate(angle float64) {
	c.state.transform = c.state.transform.Rotate(angle)
}

// CurrentTransform returns the current transform.
func (c *Context) CurrentTransform() Affine { return c.state.transform }

// ClipRect narrows the clip region to the device-space bounding box of the
// given rectangle, intersected with the existing clip or, without one, the
// surface bounds. Only rectangular scissor clips are supported, so a rotated
// rectangle clips to its bounding box.
func (c *Context) ClipRect(x, y, w, h float64) {
	box := c.state.transform.boundsOf(Rect{X: x, Y: y, Width: w, Height: h})
	parent := c.bounds()
	if c.state.clipping {
		parent = c.state.clip
	}
	c.state.clip = parent.Intersect(box)
	c.state.clipping = true
}

// ClipBounds returns the current clip rectangle in surface pixels and
// whether clipping is active.
func (c *Context) ClipBounds() (Rect, bool) {
	return c.state.clip, c.state.clipping
}

func (c *Context) bounds() Rect {
	return Rect{Width: float64(c.width), Height: float64(c.height)}
}

// SetFillStyle sets the color used by FillRect and FillText.
func (c *Context) SetFillStyle(col Color) { c.state.fillColor = col }

// FillStyle returns the fill color.
func (c *Context) FillStyle() Color { return c.state.fillColor }

// SetStrokeStyle sets the color used by StrokeRect and StrokeText.
func (c *Context) SetStrokeStyle(col Color) { c.state.strokeColor = col }

// StrokeStyle returns the stroke color.
func (c *Context) StrokeStyle() Color { return c.state.strokeColor }

// SetLineWidth sets the stroke width. Non-positive and non-finite values
// are ignored.
func (c *Context) SetLineWidth(w float64) {
	if w > 0 && !math.IsInf(w, 0) {
		c.state.lineWidth = w
	}
}

// LineWidth returns the stroke width.
func (c *Context) LineWidth() float64 { return c.state.lineWidth }

// SetGlobalAlpha sets the opacity applied to every draw, clamped to [0, 1].
// NaN is ignored.
func (c *Context) SetGlobalAlpha(a float64) {
	if math.IsNaN(a) {
		return
	}
	c.state.globalAlpha = clamp01(a)
}

// GlobalAlpha returns the global opacity.
func (c *Context) GlobalAlpha() float64 { return c.state.globalAlpha }

// SetGlobalCompositeOperation selects the blend mode by its canvas name,
// for example "source-over" or "lighter". Unknown names select
// source-over.
func (c *Context) SetGlobalCompositeOperation(name string) {
	op, ok := ParseCompositeOp(name)
	if !ok {
		c.mgr.log.Warn("unknown composite operation", "name", name)
		op = CompositeSourceOver
	}
	c.state.composite = op
}

// SetCompositeOp selects the blend mode.
func (c *Context) SetCompositeOp(op CompositeOp) {
	if int(op) >= len(compositeNames) {
		op = CompositeSourceOver
	}
	c.state.composite = op
}

// GlobalCompositeOperation returns the canvas name of the blend mode.
func (c *Context) GlobalCompositeOperation() string { return c.state.composite.String() }

// SetFilter sets the color effect applied to textured draws.
func (c *Context) SetFilter(f Filter) {
	c.state.filter = f
	c.state.filterShader = f.shader()
}

// Filter returns the current filter.
func (c *Context) Filter() Filter { return c.state.filter }

// SetFont sets the font used by text draws.
func (c *Context) SetFont(f Font) {
	if f.Size > 0 {
		c.state.font = f
	}
}

// Font returns the current font.
func (c *Context) Font() Font { return c.state.font }

// SetTextAlign sets horizontal text alignment relative to the draw point.
func (c *Context) SetTextAlign(a TextAlign) { c.state.textAlign = a }

// SetTextBaseline sets vertical text alignment relative to the draw point.
func (c *Context) SetTextBaseline(b TextBaseline) { c.state.textBaseline = b }
