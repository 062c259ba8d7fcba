package canvas2d

// FilterKind selects a per-draw color effect applied in the fragment stage.
type FilterKind uint8

const (
	FilterNone      FilterKind = iota // draw texels unchanged
	FilterTint                        // blend texel color toward the filter color by its alpha
	FilterMultiply                    // multiply texel color by the filter color
	FilterLinearAdd                   // add the filter color to the texel color
)

// Filter is a color effect applied to textured draws. The zero value is no
// filter. Untextured fills ignore the filter.
type Filter struct {
	Kind  FilterKind
	Color Color
}

// NewTintFilter returns a filter that tints texels toward c. c.A controls
// the strength.
func NewTintFilter(c Color) Filter { return Filter{Kind: FilterTint, Color: c} }

// NewMultiplyFilter returns a filter that multiplies texels by c.
func NewMultiplyFilter(c Color) Filter { return Filter{Kind: FilterMultiply, Color: c} }

// NewLinearAddFilter returns a filter that adds c (scaled by c.A) to texels.
func NewLinearAddFilter(c Color) Filter { return Filter{Kind: FilterLinearAdd, Color: c} }

// shader returns the program a textured draw uses under this filter.
func (f Filter) shader() ShaderKind {
	switch f.Kind {
	case FilterTint:
		return ShaderTint
	case FilterMultiply:
		return ShaderMultiply
	case FilterLinearAdd:
		return ShaderLinearAdd
	default:
		return ShaderDefault
	}
}

// selectShader picks the program for a draw: untextured draws use the
// solid-rect program, textured draws use the filter's program.
func selectShader(textured bool, filterShader ShaderKind) ShaderKind {
	if !textured {
		return ShaderRect
	}
	return filterShader
}
