package canvas2d

// CompositeOp selects how new pixels combine with the pixels already on the
// surface. Names follow the 2D canvas globalCompositeOperation values.
type CompositeOp uint8

const (
	CompositeSourceOver      CompositeOp = iota // source-over (default)
	CompositeSourceIn                           // source-in
	CompositeSourceOut                          // source-out
	CompositeSourceAtop                         // source-atop
	CompositeDestinationOver                    // destination-over
	CompositeDestinationIn                      // destination-in
	CompositeDestinationOut                     // destination-out
	CompositeDestinationAtop                    // destination-atop
	CompositeLighter                            // lighter (additive)
	CompositeCopy                               // copy
	CompositeXor                                // xor
	CompositeMultiply                           // multiply
	CompositeScreen                             // screen
)

var compositeNames = [...]string{
	CompositeSourceOver:      "source-over",
	CompositeSourceIn:        "source-in",
	CompositeSourceOut:       "source-out",
	CompositeSourceAtop:      "source-atop",
	CompositeDestinationOver: "destination-over",
	CompositeDestinationIn:   "destination-in",
	CompositeDestinationOut:  "destination-out",
	CompositeDestinationAtop: "destination-atop",
	CompositeLighter:         "lighter",
	CompositeCopy:            "copy",
	CompositeXor:             "xor",
	CompositeMultiply:        "multiply",
	CompositeScreen:          "screen",
}

// String returns the canvas name of the operation.
func (op CompositeOp) String() string {
	if int(op) < len(compositeNames) {
		return compositeNames[op]
	}
	return compositeNames[CompositeSourceOver]
}

// ParseCompositeOp maps a canvas composite operation name to its
// CompositeOp. Unknown names report false.
func ParseCompositeOp(name string) (CompositeOp, bool) {
	for i, n := range compositeNames {
		if n == name {
			return CompositeOp(i), true
		}
	}
	return CompositeSourceOver, false
}

// BlendFactor is a GPU blend factor. Colors are premultiplied, so
// source-over is (One, OneMinusSrcAlpha).
type BlendFactor uint8

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcColor
	BlendOneMinusSrcColor
	BlendDstColor
	BlendOneMinusDstColor
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendDstAlpha
	BlendOneMinusDstAlpha
)

// BlendPair is the (source, destination) factor pair set on the device for
// a run of draws.
type BlendPair struct {
	Src, Dst BlendFactor
}

var blendPairs = [...]BlendPair{
	CompositeSourceOver:      {BlendOne, BlendOneMinusSrcAlpha},
	CompositeSourceIn:        {BlendDstAlpha, BlendZero},
	CompositeSourceOut:       {BlendOneMinusDstAlpha, BlendZero},
	CompositeSourceAtop:      {BlendDstAlpha, BlendOneMinusSrcAlpha},
	CompositeDestinationOver: {BlendOneMinusDstAlpha, BlendOne},
	CompositeDestinationIn:   {BlendZero, BlendSrcAlpha},
	CompositeDestinationOut:  {BlendZero, BlendOneMinusSrcAlpha},
	CompositeDestinationAtop: {BlendOneMinusDstAlpha, BlendSrcAlpha},
	CompositeLighter:         {BlendOne, BlendOne},
	CompositeCopy:            {BlendOne, BlendZero},
	CompositeXor:             {BlendOneMinusDstAlpha, BlendOneMinusSrcAlpha},
	CompositeMultiply:        {BlendDstColor, BlendOneMinusSrcAlpha},
	CompositeScreen:          {BlendOne, BlendOneMinusSrcColor},
}

// Blend returns the factor pair for the operation. Out-of-range values get
// the source-over pair.
func (op CompositeOp) Blend() BlendPair {
	if int(op) < len(blendPairs) {
		return blendPairs[op]
	}
	return blendPairs[CompositeSourceOver]
}
