package canvas2d

import (
	"errors"
	"fmt"
	"strings"
)

// fakeCall is one recorded Device call.
type fakeCall struct {
	Op   string
	Args []any
}

func (c fakeCall) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = fmt.Sprint(a)
	}
	return c.Op + "(" + strings.Join(parts, ", ") + ")"
}

// fakeDevice records every call and tracks enough state to assert on.
type fakeDevice struct {
	calls []fakeCall

	nextTexture TextureID
	nextProgram ProgramID
	textures    map[TextureID][2]int
	programs    map[ProgramID]ShaderKind

	failKind   ShaderKind
	failOnce   bool
	failAlways bool

	indices  []uint16
	vertices []float32
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		textures: make(map[TextureID][2]int),
		programs: make(map[ProgramID]ShaderKind),
	}
}

func (d *fakeDevice) record(op string, args ...any) {
	d.calls = append(d.calls, fakeCall{Op: op, Args: args})
}

// count returns how many calls named op were recorded.
func (d *fakeDevice) count(op string) int {
	n := 0
	for _, c := range d.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// ops returns the names of all recorded calls in order.
func (d *fakeDevice) ops() []string {
	out := make([]string, len(d.calls))
	for i, c := range d.calls {
		out[i] = c.Op
	}
	return out
}

// find returns every recorded call named op.
func (d *fakeDevice) find(op string) []fakeCall {
	var out []fakeCall
	for _, c := range d.calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (d *fakeDevice) reset() { d.calls = d.calls[:0] }

func (d *fakeDevice) CompileProgram(desc ProgramDesc) (ProgramID, error) {
	d.record("CompileProgram", desc.Kind)
	if (d.failOnce || d.failAlways) && desc.Kind == d.failKind {
		d.failOnce = false
		return 0, errors.New("0:1: syntax error")
	}
	d.nextProgram++
	d.programs[d.nextProgram] = desc.Kind
	return d.nextProgram, nil
}

func (d *fakeDevice) DeleteProgram(p ProgramID) {
	d.record("DeleteProgram", p)
	delete(d.programs, p)
}

func (d *fakeDevice) UseProgram(p ProgramID) { d.record("UseProgram", p) }

func (d *fakeDevice) UniformLocation(_ ProgramID, name string) int {
	switch name {
	case UniformResolution:
		return 0
	case UniformSampler:
		return 1
	}
	return -1
}

func (d *fakeDevice) SetUniform2f(loc int, x, y float32) { d.record("SetUniform2f", loc, x, y) }
func (d *fakeDevice) SetUniform1i(loc int, v int32)      { d.record("SetUniform1i", loc, v) }
func (d *fakeDevice) EnableAttrib(loc int)               { d.record("EnableAttrib", loc) }
func (d *fakeDevice) DisableAttrib(loc int)              { d.record("DisableAttrib", loc) }

func (d *fakeDevice) CreateTexture(w, h int, pixels []byte) TextureID {
	d.nextTexture++
	d.textures[d.nextTexture] = [2]int{w, h}
	d.record("CreateTexture", w, h, pixels != nil)
	return d.nextTexture
}

func (d *fakeDevice) UpdateTexture(t TextureID, w, h int, _ []byte) {
	d.record("UpdateTexture", t, w, h)
}

func (d *fakeDevice) DeleteTexture(t TextureID) {
	d.record("DeleteTexture", t)
	delete(d.textures, t)
}

func (d *fakeDevice) BindTexture(t TextureID)     { d.record("BindTexture", t) }
func (d *fakeDevice) BindFramebuffer(t TextureID) { d.record("BindFramebuffer", t) }
func (d *fakeDevice) Viewport(w, h int)           { d.record("Viewport", w, h) }

func (d *fakeDevice) SetScissor(enabled bool, x, y, w, h int) {
	d.record("SetScissor", enabled, x, y, w, h)
}

func (d *fakeDevice) BlendFunc(src, dst BlendFactor) { d.record("BlendFunc", src, dst) }

func (d *fakeDevice) BufferIndices(indices []uint16) {
	d.indices = append(d.indices[:0], indices...)
	d.record("BufferIndices", len(indices))
}

func (d *fakeDevice) BufferVertices(vertices []float32) {
	d.vertices = append(d.vertices[:0], vertices...)
	d.record("BufferVertices", len(vertices))
}

func (d *fakeDevice) DrawElements(first, count int) { d.record("DrawElements", first, count) }
func (d *fakeDevice) Clear(r, g, b, a float32)      { d.record("Clear", r, g, b, a) }
func (d *fakeDevice) Finish()                       { d.record("Finish") }

var _ Device = (*fakeDevice)(nil)
