package canvas2d

// begin readies the context for a draw. It reports false when the draw
// must be dropped: the manager is closed, the device context is lost, or
// the surface has no area.
func (c *Context) begin() bool {
	m := c.mgr
	if m.closed {
		return false
	}
	if m.lost {
		m.stats.DroppedDraws++
		return false
	}
	if c.width <= 0 || c.height <= 0 {
		return false
	}
	return m.activate(c)
}

// quad transforms the local rectangle (x, y, w, h) by the current
// transform into four corners ordered TL, TR, BL, BR.
func (c *Context) quad(x, y, w, h float64, u0, v0, u1, v1 float32, alpha float32, color uint32) [4]vertex {
	t := c.state.transform
	corner := func(px, py float64, u, v float32) vertex {
		dx, dy := t.Apply(px, py)
		return vertex{x: float32(dx), y: float32(dy), u: u, v: v, alpha: alpha, color: color}
	}
	return [4]vertex{
		corner(x, y, u0, v0),
		corner(x+w, y, u1, v0),
		corner(x, y+h, u0, v1),
		corner(x+w, y+h, u1, v1),
	}
}

// DrawImage draws the source rectangle (sx, sy, sw, sh) of img into the
// destination rectangle (dx, dy, dw, dh) in local space. The current
// filter, global alpha, composite operation and clip apply.
//
// A nil image or zero global alpha draws nothing. Drawing the primary
// context's element returns ErrNotDrawable; an image with zero width or
// height returns ErrEmptyImage.
func (c *Context) DrawImage(img *Image, sx, sy, sw, sh, dx, dy, dw, dh float64) error {
	if img == nil || c.state.globalAlpha <= 0 {
		return nil
	}
	if img.kind == ImageKindScreen {
		c.mgr.log.Warn("screen surface used as draw source")
		return ErrNotDrawable
	}
	if img.width <= 0 || img.height <= 0 {
		return ErrEmptyImage
	}
	if !c.begin() {
		return nil
	}
	tex, err := c.mgr.cache.Texture(img)
	if err != nil {
		return err
	}

	tw, th := float64(img.width), float64(img.height)
	u0, v0 := float32(sx/tw), float32(sy/th)
	u1, v1 := float32((sx+sw)/tw), float32((sy+sh)/th)

	var color uint32
	if c.state.filter.Kind != FilterNone {
		color = c.state.filter.Color.packed()
	}
	q := c.quad(dx, dy, dw, dh, u0, v0, u1, v1, float32(c.state.globalAlpha), color)
	c.mgr.batch.pushQuad(batchKey{
		texture:   tex,
		shader:    selectShader(true, c.state.filterShader),
		composite: c.state.composite,
		clip:      c.state.clipState(),
	}, &q)
	return nil
}

// DrawImageAt draws all of img with its top-left corner at (x, y).
func (c *Context) DrawImageAt(img *Image, x, y float64) error {
	if img == nil {
		return nil
	}
	w, h := float64(img.width), float64(img.height)
	return c.DrawImage(img, 0, 0, w, h, x, y, w, h)
}

// DrawImageScaled draws all of img into the rectangle (x, y, w, h).
func (c *Context) DrawImageScaled(img *Image, x, y, w, h float64) error {
	if img == nil {
		return nil
	}
	return c.DrawImage(img, 0, 0, float64(img.width), float64(img.height), x, y, w, h)
}

// FillRect fills a rectangle with the fill color.
func (c *Context) FillRect(x, y, w, h float64) {
	c.solidRect(x, y, w, h, c.state.fillColor)
}

// StrokeRect outlines a rectangle with the stroke color. The outline is
// centered on the rectangle's edges and drawn as four filled bands.
func (c *Context) StrokeRect(x, y, w, h float64) {
	lw := c.state.lineWidth
	half := lw / 2
	col := c.state.strokeColor
	c.solidRect(x-half, y-half, w+lw, lw, col)   // top
	c.solidRect(x-half, y+h-half, w+lw, lw, col) // bottom
	if h > lw {
		c.solidRect(x-half, y+half, lw, h-lw, col)   // left
		c.solidRect(x+w-half, y+half, lw, h-lw, col) // right
	}
}

func (c *Context) solidRect(x, y, w, h float64, col Color) {
	if w == 0 || h == 0 || c.state.globalAlpha <= 0 {
		return
	}
	if !c.begin() {
		return
	}
	q := c.quad(x, y, w, h, 0, 0, 0, 0, float32(c.state.globalAlpha), col.packed())
	c.mgr.batch.pushQuad(batchKey{
		shader:    ShaderRect,
		composite: c.state.composite,
		clip:      c.state.clipState(),
	}, &q)
}

// ClearRect sets the pixels of a rectangle to transparent black. Global
// alpha and the composite operation do not apply; the clip and transform
// do.
func (c *Context) ClearRect(x, y, w, h float64) {
	if w == 0 || h == 0 || !c.begin() {
		return
	}
	q := c.quad(x, y, w, h, 0, 0, 0, 0, 1, ColorTransparent.packed())
	c.mgr.batch.pushQuad(batchKey{
		shader:    ShaderRect,
		composite: CompositeCopy,
		clip:      c.state.clipState(),
	}, &q)
}

// Clear erases the whole surface to transparent black, ignoring the clip.
func (c *Context) Clear() {
	if !c.begin() {
		return
	}
	m := c.mgr
	m.batch.flush()
	m.batch.disableScissor()
	m.dev.Clear(0, 0, 0, 0)
}
