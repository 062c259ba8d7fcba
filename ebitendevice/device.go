// Package ebitendevice implements canvas2d.Device on Ebitengine. Textures
// and render targets are *ebiten.Image values, programs are Kage shaders
// and every indexed draw becomes one DrawTrianglesShader32 call.
package ebitendevice

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/canvas2d"
)

// Uniform locations handed out by UniformLocation.
const (
	locResolution = 0
	locSampler    = 1
)

type program struct {
	kind   canvas2d.ShaderKind
	shader *ebiten.Shader
}

// Device drives an Ebitengine screen. Call SetScreen with the screen image
// at the start of every Draw before issuing canvas work.
//
// Device is not safe for concurrent use; Ebitengine calls Draw on a single
// goroutine.
type Device struct {
	screen *ebiten.Image

	nextTexture canvas2d.TextureID
	nextProgram canvas2d.ProgramID
	textures    map[canvas2d.TextureID]*ebiten.Image
	programs    map[canvas2d.ProgramID]*program

	current   *program
	bound     canvas2d.TextureID
	target    canvas2d.TextureID
	viewW     int
	viewH     int
	scissorOn bool
	scissor   image.Rectangle
	blend     ebiten.Blend
	attribs   uint8

	resolution [2]float32
	indices    []uint16
	vertices   []float32

	// Per-draw scratch buffers, reused across calls.
	verts []ebiten.Vertex
	inds  []uint32
}

// New returns a Device with no screen attached.
func New() *Device {
	return &Device{
		textures: make(map[canvas2d.TextureID]*ebiten.Image),
		programs: make(map[canvas2d.ProgramID]*program),
		blend:    ebiten.BlendSourceOver,
	}
}

// SetScreen sets the image the default framebuffer draws into.
func (d *Device) SetScreen(screen *ebiten.Image) {
	d.screen = screen
}

// Image returns the ebiten image behind a texture, or nil.
func (d *Device) Image(t canvas2d.TextureID) *ebiten.Image {
	return d.textures[t]
}

// --- Programs ---

// CompileProgram compiles the Kage source for desc.Kind.
func (d *Device) CompileProgram(desc canvas2d.ProgramDesc) (canvas2d.ProgramID, error) {
	src, ok := shaderSource(desc.Kind)
	if !ok {
		return 0, fmt.Errorf("no shader source for %s", desc.Kind)
	}
	s, err := ebiten.NewShader([]byte(src))
	if err != nil {
		return 0, err
	}
	d.nextProgram++
	d.programs[d.nextProgram] = &program{kind: desc.Kind, shader: s}
	return d.nextProgram, nil
}

// DeleteProgram deallocates the shader behind p and unbinds it if current.
func (d *Device) DeleteProgram(p canvas2d.ProgramID) {
	if prog, ok := d.programs[p]; ok {
		prog.shader.Deallocate()
		delete(d.programs, p)
		if d.current == prog {
			d.current = nil
		}
	}
}

// UseProgram selects the program used by DrawElements.
func (d *Device) UseProgram(p canvas2d.ProgramID) {
	d.current = d.programs[p]
}

// UniformLocation maps the engine's uniform names to fixed locations. Unknown
// names return -1.
func (d *Device) UniformLocation(_ canvas2d.ProgramID, name string) int {
	switch name {
	case canvas2d.UniformResolution:
		return locResolution
	case canvas2d.UniformSampler:
		return locSampler
	}
	return -1
}

// SetUniform2f stores the target resolution; other locations are ignored.
func (d *Device) SetUniform2f(loc int, x, y float32) {
	if loc == locResolution {
		d.resolution = [2]float32{x, y}
	}
}

// SetUniform1i is a no-op: Kage programs always sample image 0.
func (d *Device) SetUniform1i(int, int32) {}

// Attribute state is tracked for inspection only; every Ebitengine vertex
// carries all attributes.
func (d *Device) EnableAttrib(loc int)  { d.attribs |= 1 << loc }
func (d *Device) DisableAttrib(loc int) { d.attribs &^= 1 << loc }

// --- Textures and targets ---

// CreateTexture allocates a w×h image, filled from pixels when non-nil.
func (d *Device) CreateTexture(w, h int, pixels []byte) canvas2d.TextureID {
	img := ebiten.NewImage(w, h)
	if pixels != nil {
		img.WritePixels(pixels)
	}
	d.nextTexture++
	d.textures[d.nextTexture] = img
	return d.nextTexture
}

// UpdateTexture replaces the pixels of t.
func (d *Device) UpdateTexture(t canvas2d.TextureID, _, _ int, pixels []byte) {
	if img, ok := d.textures[t]; ok && pixels != nil {
		img.WritePixels(pixels)
	}
}

// DeleteTexture deallocates t. Unknown handles are ignored.
func (d *Device) DeleteTexture(t canvas2d.TextureID) {
	if img, ok := d.textures[t]; ok {
		img.Deallocate()
		delete(d.textures, t)
	}
}

// BindTexture sets the source image for textured draws.
func (d *Device) BindTexture(t canvas2d.TextureID) { d.bound = t }

// BindFramebuffer sets the draw target. Zero is the screen.
func (d *Device) BindFramebuffer(t canvas2d.TextureID) { d.target = t }

// Viewport records the target size used to flip scissor rectangles.
func (d *Device) Viewport(w, h int) { d.viewW, d.viewH = w, h }

// SetScissor takes a bottom-left-origin rectangle and stores it flipped
// into the top-left image space Ebitengine uses.
func (d *Device) SetScissor(enabled bool, x, y, w, h int) {
	d.scissorOn = enabled
	if enabled {
		d.scissor = image.Rect(x, d.viewH-(y+h), x+w, d.viewH-y)
	}
}

// BlendFunc maps the factor pair to an ebiten.Blend for later draws.
func (d *Device) BlendFunc(src, dst canvas2d.BlendFactor) {
	d.blend = blendOf(src, dst)
}

// --- Drawing ---

// BufferIndices copies the quad index buffer.
func (d *Device) BufferIndices(indices []uint16) {
	d.indices = append(d.indices[:0], indices...)
}

// BufferVertices copies the vertex data for the next draws.
func (d *Device) BufferVertices(vertices []float32) {
	d.vertices = append(d.vertices[:0], vertices...)
}

// DrawElements converts the referenced vertices and draws them with the
// current program into the bound target, clipped by the scissor.
func (d *Device) DrawElements(first, count int) {
	dst := d.targetImage()
	if dst == nil || d.current == nil || count <= 0 {
		return
	}
	if d.scissorOn {
		dst = dst.SubImage(d.scissor).(*ebiten.Image)
	}

	var op ebiten.DrawTrianglesShaderOptions
	op.Blend = d.blend
	op.Uniforms = map[string]any{"Resolution": d.resolution[:]}

	var texW, texH float32
	if d.current.kind != canvas2d.ShaderRect {
		src := d.textures[d.bound]
		if src == nil {
			return
		}
		b := src.Bounds()
		texW, texH = float32(b.Dx()), float32(b.Dy())
		op.Images[0] = src
	}

	lo, hi := indexRange(d.indices[first : first+count])
	d.verts = appendVertices(d.verts[:0], d.vertices, lo, hi, texW, texH)
	d.inds = d.inds[:0]
	for _, i := range d.indices[first : first+count] {
		d.inds = append(d.inds, uint32(int(i)-lo))
	}
	dst.DrawTrianglesShader32(d.verts, d.inds, d.current.shader, &op)
}

// Clear fills the bound target with the color, premultiplied.
func (d *Device) Clear(r, g, b, a float32) {
	dst := d.targetImage()
	if dst == nil {
		return
	}
	if r == 0 && g == 0 && b == 0 && a == 0 {
		dst.Clear()
		return
	}
	dst.Fill(color.RGBA{
		R: uint8(r*a*255 + 0.5),
		G: uint8(g*a*255 + 0.5),
		B: uint8(b*a*255 + 0.5),
		A: uint8(a*255 + 0.5),
	})
}

// Finish is a no-op: Ebitengine orders all image operations itself.
func (d *Device) Finish() {}

func (d *Device) targetImage() *ebiten.Image {
	if d.target == 0 {
		return d.screen
	}
	return d.textures[d.target]
}

// indexRange returns the smallest and one past the largest vertex index
// referenced by inds.
func indexRange(inds []uint16) (lo, hi int) {
	lo = int(^uint16(0))
	for _, i := range inds {
		lo = min(lo, int(i))
		hi = max(hi, int(i)+1)
	}
	return lo, hi
}

// appendVertices converts canvas vertices [lo, hi) to Ebitengine vertices.
// UVs are normalized, so they are scaled by the texture size.
func appendVertices(dst []ebiten.Vertex, src []float32, lo, hi int, texW, texH float32) []ebiten.Vertex {
	for v := lo; v < hi; v++ {
		o := v * canvas2d.VertexStride
		r, g, b, a := canvas2d.UnpackColor(math.Float32bits(src[o+5]))
		dst = append(dst, ebiten.Vertex{
			DstX:    src[o+0],
			DstY:    src[o+1],
			SrcX:    src[o+2] * texW,
			SrcY:    src[o+3] * texH,
			ColorR:  r,
			ColorG:  g,
			ColorB:  b,
			ColorA:  a,
			Custom0: src[o+4],
		})
	}
	return dst
}
