package ebitendevice

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/canvas2d"
)

var blendFactors = [...]ebiten.BlendFactor{
	canvas2d.BlendZero:             ebiten.BlendFactorZero,
	canvas2d.BlendOne:              ebiten.BlendFactorOne,
	canvas2d.BlendSrcColor:         ebiten.BlendFactorSourceColor,
	canvas2d.BlendOneMinusSrcColor: ebiten.BlendFactorOneMinusSourceColor,
	canvas2d.BlendDstColor:         ebiten.BlendFactorDestinationColor,
	canvas2d.BlendOneMinusDstColor: ebiten.BlendFactorOneMinusDestinationColor,
	canvas2d.BlendSrcAlpha:         ebiten.BlendFactorSourceAlpha,
	canvas2d.BlendOneMinusSrcAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
	canvas2d.BlendDstAlpha:         ebiten.BlendFactorDestinationAlpha,
	canvas2d.BlendOneMinusDstAlpha: ebiten.BlendFactorOneMinusDestinationAlpha,
}

func factorOf(f canvas2d.BlendFactor) ebiten.BlendFactor {
	if int(f) < len(blendFactors) {
		return blendFactors[f]
	}
	return ebiten.BlendFactorOne
}

// blendOf returns the ebiten.Blend for a src/dst factor pair, applied to
// color and alpha alike.
func blendOf(src, dst canvas2d.BlendFactor) ebiten.Blend {
	return ebiten.Blend{
		BlendFactorSourceRGB:        factorOf(src),
		BlendFactorSourceAlpha:      factorOf(src),
		BlendFactorDestinationRGB:   factorOf(dst),
		BlendFactorDestinationAlpha: factorOf(dst),
		BlendOperationRGB:           ebiten.BlendOperationAdd,
		BlendOperationAlpha:         ebiten.BlendOperationAdd,
	}
}
