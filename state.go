package canvas2d

// contextState is everything save and restore preserve. It holds no
// pointers, so assignment is a deep copy.
type contextState struct {
	composite    CompositeOp
	globalAlpha  float64
	transform    Affine
	lineWidth    float64
	filter       Filter
	filterShader ShaderKind // resolved once in SetFilter
	clipping     bool
	clip         Rect // surface pixels, valid when clipping
	fillColor    Color
	strokeColor  Color
	font         Font
	textAlign    TextAlign
	textBaseline TextBaseline
}

func defaultState() contextState {
	return contextState{
		composite:    CompositeSourceOver,
		globalAlpha:  1,
		transform:    identityTransform,
		lineWidth:    1,
		filterShader: ShaderDefault,
		fillColor:    ColorBlack,
		strokeColor:  ColorBlack,
		font:         DefaultFont,
		textAlign:    TextAlignStart,
		textBaseline: TextBaselineAlphabetic,
	}
}

// clipState returns the scissor signature for the current state.
func (s *contextState) clipState() clipState {
	if !s.clipping {
		return clipState{}
	}
	return clipState{enabled: true, rect: s.clip}
}
