package canvas2d

import (
	"fmt"
	"math"
)

const (
	// DefaultBatchCapacity is the number of quads the shared vertex buffer
	// holds before a forced flush.
	DefaultBatchCapacity = 2048

	// MaxBatchCapacity is the largest capacity 16-bit indices can address.
	MaxBatchCapacity = math.MaxUint16 / verticesPerQuad

	verticesPerQuad = 4
	indicesPerQuad  = 6
)

// clipState is the scissor part of a batch signature.
type clipState struct {
	enabled bool
	rect    Rect
}

// batchKey is the GPU-state signature of a queued quad. Consecutive quads
// with equal keys are drawn with one call.
type batchKey struct {
	texture   TextureID
	shader    ShaderKind
	composite CompositeOp
	clip      clipState
}

// batchRun is a contiguous range of queued quads sharing one key.
type batchRun struct {
	key        batchKey
	start, end int // quad indices, end exclusive
}

// vertex is one corner of a queued quad.
type vertex struct {
	x, y  float32
	u, v  float32
	alpha float32
	color uint32
}

// batcher owns the shared vertex and index buffers, the run table, and a
// cache of the device state it last set. It is only touched from the
// rendering goroutine and never re-entered during flush.
type batcher struct {
	dev     Device
	shaders *ShaderSet
	stats   *FrameStats

	capacity int
	vertices []float32
	indices  []uint16
	quads    int
	runs     []batchRun

	viewportW, viewportH int

	program   *Program
	attribs   attribMask
	scissorOn bool
	scissor   [4]int
	blend     BlendPair
	blendSet  bool
}

func newBatcher(dev Device, shaders *ShaderSet, stats *FrameStats, capacity int) (*batcher, error) {
	if capacity <= 0 || capacity > MaxBatchCapacity {
		return nil, fmt.Errorf("canvas2d: batch capacity %d: %w", capacity, ErrBatchCapacity)
	}
	b := &batcher{
		dev:      dev,
		shaders:  shaders,
		stats:    stats,
		capacity: capacity,
		vertices: make([]float32, capacity*verticesPerQuad*VertexStride),
		indices:  make([]uint16, capacity*indicesPerQuad),
		runs:     make([]batchRun, 0, 64),
	}
	// Two triangles per quad: TL-TR-BL, TR-BR-BL.
	for q := 0; q < capacity; q++ {
		base := uint16(q * verticesPerQuad)
		i := q * indicesPerQuad
		b.indices[i+0] = base + 0
		b.indices[i+1] = base + 1
		b.indices[i+2] = base + 2
		b.indices[i+3] = base + 1
		b.indices[i+4] = base + 3
		b.indices[i+5] = base + 2
	}
	b.uploadIndices()
	return b, nil
}

// uploadIndices sends the static index buffer to the device.
func (b *batcher) uploadIndices() {
	b.dev.BufferIndices(b.indices)
}

// add reserves the next quad under key and returns its first vertex index.
// A key that differs from the open run closes it and opens a new run. A
// full buffer is flushed first.
func (b *batcher) add(key batchKey) int {
	if b.quads == b.capacity {
		b.flush()
	}
	n := len(b.runs)
	if n == 0 || b.runs[n-1].key != key {
		b.runs = append(b.runs, batchRun{key: key, start: b.quads, end: b.quads})
		n++
	}
	idx := b.quads * verticesPerQuad
	b.quads++
	b.runs[n-1].end = b.quads
	return idx
}

// pushQuad queues a quad. Corners are ordered TL, TR, BL, BR.
func (b *batcher) pushQuad(key batchKey, q *[4]vertex) {
	idx := b.add(key)
	for i := range q {
		b.setVertex(idx+i, &q[i])
	}
}

func (b *batcher) setVertex(i int, v *vertex) {
	o := i * VertexStride
	b.vertices[o+0] = v.x
	b.vertices[o+1] = v.y
	b.vertices[o+2] = v.u
	b.vertices[o+3] = v.v
	b.vertices[o+4] = v.alpha
	b.vertices[o+5] = math.Float32frombits(v.color)
}

// pending reports whether any quads are queued.
func (b *batcher) pending() bool {
	return b.quads > 0
}

// samples reports whether a queued run draws from tex.
func (b *batcher) samples(tex TextureID) bool {
	for i := range b.runs {
		if b.runs[i].key.texture == tex {
			return true
		}
	}
	return false
}

// flushIfSamples flushes only when a queued run draws from tex.
func (b *batcher) flushIfSamples(tex TextureID) {
	if b.samples(tex) {
		b.flush()
	}
}

// flush uploads the queued vertices once and issues one indexed draw per
// run, in queue order.
func (b *batcher) flush() {
	if b.quads == 0 {
		return
	}
	b.dev.BufferVertices(b.vertices[:b.quads*verticesPerQuad*VertexStride])

	for i := range b.runs {
		run := &b.runs[i]
		b.applyScissor(run.key.clip)
		if run.key.texture != 0 {
			b.dev.BindTexture(run.key.texture)
		}
		if bp := run.key.composite.Blend(); !b.blendSet || bp != b.blend {
			b.dev.BlendFunc(bp.Src, bp.Dst)
			b.blend = bp
			b.blendSet = true
		}
		b.useProgram(b.shaders.Program(run.key.shader))
		b.dev.DrawElements(run.start*indicesPerQuad, (run.end-run.start)*indicesPerQuad)
		b.stats.DrawCalls++
	}

	b.stats.Quads += b.quads
	b.stats.Flushes++
	b.quads = 0
	b.runs = b.runs[:0]
}

// discard drops queued quads without drawing them.
func (b *batcher) discard() {
	b.quads = 0
	b.runs = b.runs[:0]
}

// useProgram binds p if it is not already bound, toggling only the
// attribute slots whose state differs between the two programs.
func (b *batcher) useProgram(p *Program) {
	if p == b.program {
		return
	}
	diff := b.attribs ^ p.attribs
	for loc := 0; loc < numAttribs; loc++ {
		bit := attribMask(1) << loc
		if diff&bit == 0 {
			continue
		}
		if p.attribs&bit != 0 {
			b.dev.EnableAttrib(loc)
		} else {
			b.dev.DisableAttrib(loc)
		}
	}
	b.attribs = p.attribs
	b.dev.UseProgram(p.ID)
	b.dev.SetUniform2f(p.Resolution, float32(b.viewportW), float32(b.viewportH))
	if p.Textured() {
		b.dev.SetUniform1i(p.Sampler, 0)
	}
	b.program = p
	b.stats.ProgramSwitches++
}

// applyScissor matches the device scissor test to clip. Surface clip
// rectangles have a top-left origin; the device expects bottom-left.
func (b *batcher) applyScissor(clip clipState) {
	if !clip.enabled {
		if b.scissorOn {
			b.dev.SetScissor(false, 0, 0, 0, 0)
			b.scissorOn = false
		}
		return
	}
	r := scissorRect(clip.rect, b.viewportH)
	if b.scissorOn && r == b.scissor {
		return
	}
	b.dev.SetScissor(true, r[0], r[1], r[2], r[3])
	b.scissorOn = true
	b.scissor = r
}

// scissorRect converts a top-left-origin surface rectangle to integer GPU
// viewport coordinates (x, y, w, h) with a bottom-left origin.
func scissorRect(r Rect, viewportH int) [4]int {
	x0 := int(math.Floor(r.X))
	y0 := int(math.Floor(r.Y))
	x1 := int(math.Ceil(r.X + r.Width))
	y1 := int(math.Ceil(r.Y + r.Height))
	w := max(x1-x0, 0)
	h := max(y1-y0, 0)
	return [4]int{x0, viewportH - y1, w, h}
}

// setViewport records the active surface size, used for the resolution
// uniform and scissor flipping.
func (b *batcher) setViewport(w, h int) {
	b.viewportW, b.viewportH = w, h
}

// invalidateProgram forgets the bound program so the next flush rebinds it
// and re-sends the resolution uniform.
func (b *batcher) invalidateProgram() {
	b.program = nil
}

// resetDeviceState forgets all cached device state. Used after the device
// context was restored and every binding is back to its default.
func (b *batcher) resetDeviceState() {
	b.program = nil
	b.attribs = 0
	b.scissorOn = false
	b.scissor = [4]int{}
	b.blendSet = false
}

// disableScissor turns off the scissor test if it is on.
func (b *batcher) disableScissor() {
	b.applyScissor(clipState{})
}
