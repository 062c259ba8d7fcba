package ebitendevice

import "github.com/phanxgames/canvas2d"

// --- Kage shader sources ---
// All shaders use //kage:unit pixels. Texels arrive premultiplied; the
// vertex color is straight alpha and custom.x carries the per-vertex alpha.

const defaultShaderSrc = `//kage:unit pixels
package main

var Resolution vec2

func Fragment(dstPos vec4, srcPos vec2, color vec4, custom vec4) vec4 {
	return imageSrc0At(srcPos) * custom.x
}
`

const rectShaderSrc = `//kage:unit pixels
package main

var Resolution vec2

func Fragment(dstPos vec4, srcPos vec2, color vec4, custom vec4) vec4 {
	return vec4(color.rgb*color.a, color.a) * custom.x
}
`

const tintShaderSrc = `//kage:unit pixels
package main

var Resolution vec2

func Fragment(dstPos vec4, srcPos vec2, color vec4, custom vec4) vec4 {
	c := imageSrc0At(srcPos)
	rgb := c.rgb
	if c.a > 0 {
		rgb /= c.a
	}
	rgb = mix(rgb, color.rgb, color.a)
	return vec4(rgb*c.a, c.a) * custom.x
}
`

const multiplyShaderSrc = `//kage:unit pixels
package main

var Resolution vec2

func Fragment(dstPos vec4, srcPos vec2, color vec4, custom vec4) vec4 {
	c := imageSrc0At(srcPos)
	return vec4(c.rgb*color.rgb, c.a) * custom.x
}
`

const linearAddShaderSrc = `//kage:unit pixels
package main

var Resolution vec2

func Fragment(dstPos vec4, srcPos vec2, color vec4, custom vec4) vec4 {
	c := imageSrc0At(srcPos)
	rgb := clamp(c.rgb+color.rgb*color.a*c.a, vec3(0), vec3(c.a))
	return vec4(rgb, c.a) * custom.x
}
`

func shaderSource(kind canvas2d.ShaderKind) (string, bool) {
	switch kind {
	case canvas2d.ShaderDefault:
		return defaultShaderSrc, true
	case canvas2d.ShaderRect:
		return rectShaderSrc, true
	case canvas2d.ShaderTint:
		return tintShaderSrc, true
	case canvas2d.ShaderMultiply:
		return multiplyShaderSrc, true
	case canvas2d.ShaderLinearAdd:
		return linearAddShaderSrc, true
	}
	return "", false
}
