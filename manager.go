package canvas2d

import (
	"fmt"
	"log/slog"
)

// Manager owns the device resources shared by every drawing context: the
// shader set, the batch buffers, and the texture cache. It tracks which
// context's target is bound and flushes pending quads whenever the target
// changes.
//
// A Manager and its contexts must be used from a single goroutine, the one
// that owns the device.
type Manager struct {
	dev   Device
	log   *slog.Logger
	opts  options
	stats FrameStats

	shaders *ShaderSet
	cache   *TextureCache
	batch   *batcher
	text    *glyphRunCache

	primary  *Context
	contexts []*Context // offscreen, in creation order
	active   *Context

	lost       bool
	lostActive *Context
	closed     bool
}

// NewManager compiles the shader set, uploads the quad index buffer and
// prepares the texture cache on dev. A shader compile failure is fatal and
// returned as a *ShaderError.
func NewManager(dev Device, opts ...Option) (*Manager, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = newNopLogger()
	}

	m := &Manager{dev: dev, log: o.logger, opts: o}

	shaders, err := compileShaderSet(dev, m.log)
	if err != nil {
		return nil, err
	}
	b, err := newBatcher(dev, shaders, &m.stats, o.batchCapacity)
	if err != nil {
		shaders.release(dev)
		return nil, err
	}
	m.shaders = shaders
	m.batch = b
	m.cache = newTextureCache(dev, o.memoryBudget, m.log, &m.stats)
	m.cache.beforeRelease = m.batch.flush
	m.cache.beforeUpdate = m.batch.flushIfSamples
	if o.text != nil {
		m.text = newGlyphRunCache(o.text, o.glyphRuns, m.cache)
	}

	m.log.Debug("manager created",
		"budget", o.memoryBudget, "batchCapacity", o.batchCapacity)
	return m, nil
}

// NewContext creates the primary context, which draws to the screen. Only
// one primary context may exist per Manager.
func (m *Manager) NewContext(w, h int) (*Context, error) {
	if m.closed {
		return nil, ErrClosed
	}
	if m.primary != nil {
		return nil, ErrPrimaryExists
	}
	c := newContext(m, &Image{width: w, height: h, kind: ImageKindScreen}, false)
	m.primary = c
	return c, nil
}

// NewOffscreenContext creates a context that draws into a w×h render
// target. The target is usable as a draw source through Element.
func (m *Manager) NewOffscreenContext(w, h int) (*Context, error) {
	if m.closed {
		return nil, ErrClosed
	}
	img := newRenderTargetImage(w, h)
	if !m.lost && w > 0 && h > 0 {
		if _, err := m.cache.Texture(img); err != nil {
			return nil, fmt.Errorf("canvas2d: offscreen target: %w", err)
		}
	}
	c := newContext(m, img, true)
	m.contexts = append(m.contexts, c)
	return c, nil
}

// activate makes c the render target. Pending quads belong to the previous
// target and are flushed before the switch.
func (m *Manager) activate(c *Context) bool {
	if m.active == c {
		return true
	}
	m.batch.flush()
	if m.active != nil {
		m.dev.Finish()
	}
	if !m.bind(c) {
		m.active = nil
		return false
	}
	m.active = c
	return true
}

// bind points the device at c's framebuffer and viewport.
func (m *Manager) bind(c *Context) bool {
	var target TextureID
	if c.offscreen {
		id, err := m.cache.Texture(c.image)
		if err != nil {
			m.log.Warn("offscreen target unavailable", "width", c.width, "height", c.height, "err", err)
			return false
		}
		target = id
	}
	m.dev.BindFramebuffer(target)
	m.dev.Viewport(c.width, c.height)
	m.batch.setViewport(c.width, c.height)
	m.batch.invalidateProgram()
	m.stats.ContextSwitches++
	m.log.Debug("target bound", "offscreen", c.offscreen, "width", c.width, "height", c.height)
	return true
}

// release finishes c's submitted work, as a switch would, and forgets it as
// the bound target. The next draw rebinds it.
func (m *Manager) release(c *Context) {
	if m.active == c {
		m.batch.flush()
		m.dev.Finish()
		m.active = nil
	}
}

// Flush draws all queued quads without ending the frame.
func (m *Manager) Flush() {
	if m.lost || m.closed {
		return
	}
	m.batch.flush()
}

// Present flushes pending draws and ends the frame. It returns the stats
// gathered since the previous Present and resets them.
func (m *Manager) Present() FrameStats {
	if !m.lost && !m.closed {
		m.batch.flush()
	}
	s := m.stats
	m.stats = FrameStats{}
	if m.opts.debug {
		m.log.Debug("frame", "stats", s)
	}
	return s
}

// Stats returns the stats gathered since the last Present.
func (m *Manager) Stats() FrameStats { return m.stats }

// Cache returns the texture cache.
func (m *Manager) Cache() *TextureCache { return m.cache }

// Logger returns the logger the Manager writes to.
func (m *Manager) Logger() *slog.Logger { return m.log }

// DeleteTexture releases img's texture. The image stays usable; drawing it
// again creates a fresh texture. Deleting the target of the bound context
// unbinds it first.
func (m *Manager) DeleteTexture(img *Image) {
	if img == nil || m.closed {
		return
	}
	if m.active != nil && m.active.image == img {
		m.release(m.active)
	}
	if m.cache.Delete(img) {
		img.needsUpload = true
	}
}

// Lost reports whether the device context is lost.
func (m *Manager) Lost() bool { return m.lost }

// LoseContext records that the device context was lost. Queued quads are
// discarded and draws are dropped until RestoreContext. GPU handles are
// not deleted: they died with the context.
func (m *Manager) LoseContext() {
	if m.lost || m.closed {
		return
	}
	m.lost = true
	m.lostActive = m.active
	m.active = nil
	m.batch.discard()
	m.log.Info("device context lost", "textures", m.cache.Len())
}

// RestoreContext rebuilds device state on a fresh context: shaders, the
// index buffer, image textures in creation order, and offscreen targets.
// The context that was bound at loss, or else the primary one, is bound
// again last. Offscreen contents are not preserved.
func (m *Manager) RestoreContext() error {
	if m.closed {
		return ErrClosed
	}
	if !m.lost {
		return nil
	}

	shaders, err := compileShaderSet(m.dev, m.log)
	if err != nil {
		return err
	}
	m.shaders = shaders
	m.batch.shaders = shaders
	m.batch.resetDeviceState()
	m.batch.uploadIndices()

	if err := m.cache.reloadTextures(); err != nil {
		return fmt.Errorf("canvas2d: restore: %w", err)
	}
	for _, c := range m.contexts {
		if c.width <= 0 || c.height <= 0 {
			continue
		}
		if _, err := m.cache.Texture(c.image); err != nil {
			return fmt.Errorf("canvas2d: restore offscreen target: %w", err)
		}
	}

	m.lost = false
	target := m.lostActive
	if target == nil {
		target = m.primary
	}
	m.lostActive = nil
	if target != nil {
		m.activate(target)
	}
	m.log.Info("device context restored",
		"textures", m.cache.Len(), "resident", m.cache.ResidentBytes())
	return nil
}

// Close releases every GPU resource owned by the Manager. Contexts created
// by it must not be used afterwards.
func (m *Manager) Close() {
	if m.closed {
		return
	}
	if !m.lost {
		m.batch.flush()
		m.cache.beforeRelease = nil
		m.cache.beforeUpdate = nil
		for _, rec := range m.cache.records {
			m.cache.remove(rec)
		}
		m.shaders.release(m.dev)
	}
	m.batch.discard()
	m.active = nil
	m.closed = true
	m.log.Debug("manager closed")
}
