package canvas2d

import (
	"fmt"
	"log/slog"
)

// ShaderKind names one of the programs in the fixed shader set.
type ShaderKind uint8

const (
	ShaderDefault   ShaderKind = iota // textured, alpha only
	ShaderRect                        // untextured solid fill
	ShaderTint                        // textured, tinted toward a color
	ShaderMultiply                    // textured, multiplied by a color
	ShaderLinearAdd                   // textured, color added

	numShaders
)

var shaderNames = [numShaders]string{
	ShaderDefault:   "default",
	ShaderRect:      "rect",
	ShaderTint:      "tint",
	ShaderMultiply:  "multiply",
	ShaderLinearAdd: "linear-add",
}

func (k ShaderKind) String() string {
	if k < numShaders {
		return shaderNames[k]
	}
	return fmt.Sprintf("ShaderKind(%d)", k)
}

// Uniform names bound by every program.
const (
	UniformResolution = "uResolution"
	UniformSampler    = "uSampler"
)

// attribMask is a bit set of enabled attribute locations.
type attribMask uint8

func maskOf(locs ...int) attribMask {
	var m attribMask
	for _, l := range locs {
		m |= 1 << l
	}
	return m
}

var shaderAttribs = [numShaders]attribMask{
	ShaderDefault:   maskOf(AttribPosition, AttribUV, AttribAlpha),
	ShaderRect:      maskOf(AttribPosition, AttribAlpha, AttribColor),
	ShaderTint:      maskOf(AttribPosition, AttribUV, AttribAlpha, AttribColor),
	ShaderMultiply:  maskOf(AttribPosition, AttribUV, AttribAlpha, AttribColor),
	ShaderLinearAdd: maskOf(AttribPosition, AttribUV, AttribAlpha, AttribColor),
}

// Program is a compiled shader program with its binding table. Programs are
// immutable after compilation and shared by all contexts of a Manager.
type Program struct {
	Kind       ShaderKind
	ID         ProgramID
	Attributes map[string]int
	Resolution int // uniform location of uResolution
	Sampler    int // uniform location of uSampler
	attribs    attribMask
}

// Textured reports whether the program samples a texture.
func (p *Program) Textured() bool {
	return p.attribs&maskOf(AttribUV) != 0
}

// ShaderError reports a compile or link failure along with the compiler
// diagnostic text.
type ShaderError struct {
	Kind ShaderKind
	Log  string
}

func (e *ShaderError) Error() string {
	return fmt.Sprintf("canvas2d: compile %s shader: %s", e.Kind, e.Log)
}

// ShaderSet holds the five programs used by the batcher.
type ShaderSet struct {
	programs [numShaders]*Program
}

func programDesc(kind ShaderKind) ProgramDesc {
	attrs := map[string]int{"aPosition": AttribPosition, "aAlpha": AttribAlpha}
	m := shaderAttribs[kind]
	if m&maskOf(AttribUV) != 0 {
		attrs["aUV"] = AttribUV
	}
	if m&maskOf(AttribColor) != 0 {
		attrs["aColor"] = AttribColor
	}
	return ProgramDesc{
		Kind:       kind,
		Attributes: attrs,
		Uniforms:   []string{UniformResolution, UniformSampler},
	}
}

// compileShaderSet compiles all programs on dev. A failed program is fatal:
// the diagnostic is logged, any programs compiled so far are released and
// the error is returned. There is no fallback program.
func compileShaderSet(dev Device, log *slog.Logger) (*ShaderSet, error) {
	s := &ShaderSet{}
	for k := ShaderKind(0); k < numShaders; k++ {
		desc := programDesc(k)
		id, err := dev.CompileProgram(desc)
		if err != nil {
			log.Error("shader compile failed", "shader", k.String(), "diagnostic", err.Error())
			s.release(dev)
			return nil, &ShaderError{Kind: k, Log: err.Error()}
		}
		s.programs[k] = &Program{
			Kind:       k,
			ID:         id,
			Attributes: desc.Attributes,
			Resolution: dev.UniformLocation(id, UniformResolution),
			Sampler:    dev.UniformLocation(id, UniformSampler),
			attribs:    shaderAttribs[k],
		}
	}
	log.Debug("shader set compiled", "programs", int(numShaders))
	return s, nil
}

// Program returns the compiled program for kind.
func (s *ShaderSet) Program(kind ShaderKind) *Program {
	if kind >= numShaders {
		kind = ShaderDefault
	}
	return s.programs[kind]
}

// release deletes every compiled program from dev.
func (s *ShaderSet) release(dev Device) {
	for i, p := range s.programs {
		if p != nil {
			dev.DeleteProgram(p.ID)
			s.programs[i] = nil
		}
	}
}
