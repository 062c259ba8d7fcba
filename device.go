package canvas2d

// TextureID identifies a texture allocated on a Device. Zero is never a
// valid texture.
type TextureID uint32

// ProgramID identifies a linked shader program on a Device. Zero is never a
// valid program.
type ProgramID uint32

// Attribute locations shared by every program in the shader set.
const (
	AttribPosition = 0
	AttribUV       = 1
	AttribAlpha    = 2
	AttribColor    = 3

	numAttribs = 4
)

// VertexStride is the number of float32 values per vertex:
// x, y, u, v, alpha, packed color bits.
const VertexStride = 6

// ProgramDesc describes a program to compile: which shader kind, and the
// attribute bindings and uniform names the engine expects.
type ProgramDesc struct {
	Kind       ShaderKind
	Attributes map[string]int
	Uniforms   []string
}

// Device is the GPU command surface the engine drives. It mirrors the
// subset of a GL-style context that a batched 2D renderer needs. All calls
// happen on the rendering goroutine.
//
// Scissor rectangles are given in GPU viewport coordinates, whose origin is
// the bottom-left of the bound framebuffer.
type Device interface {
	// CompileProgram compiles and links the program for desc. The error
	// carries the compiler's diagnostic text.
	CompileProgram(desc ProgramDesc) (ProgramID, error)
	DeleteProgram(p ProgramID)
	UseProgram(p ProgramID)
	UniformLocation(p ProgramID, name string) int
	SetUniform2f(loc int, x, y float32)
	SetUniform1i(loc int, v int32)
	EnableAttrib(loc int)
	DisableAttrib(loc int)

	// CreateTexture allocates a w×h RGBA texture. pixels holds premultiplied
	// RGBA rows; nil allocates uninitialized storage for render targets.
	CreateTexture(w, h int, pixels []byte) TextureID
	UpdateTexture(t TextureID, w, h int, pixels []byte)
	DeleteTexture(t TextureID)
	BindTexture(t TextureID)

	// BindFramebuffer directs rendering into the render-target texture t, or
	// into the default framebuffer when t is zero.
	BindFramebuffer(t TextureID)
	Viewport(w, h int)
	SetScissor(enabled bool, x, y, w, h int)
	BlendFunc(src, dst BlendFactor)

	// BufferIndices uploads the static quad index buffer.
	BufferIndices(indices []uint16)
	// BufferVertices uploads vertex data laid out with VertexStride.
	BufferVertices(vertices []float32)
	// DrawElements draws count indices starting at index first.
	DrawElements(first, count int)

	Clear(r, g, b, a float32)
	// Finish blocks until submitted work completes.
	Finish()
}
