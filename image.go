package canvas2d

import (
	"image"

	"golang.org/x/image/draw"
)

// ImageKind records where an Image's pixels come from.
type ImageKind uint8

const (
	ImageKindImage        ImageKind = iota // decoded pixels, immutable
	ImageKindCanvas                        // CPU-side pixels the owner may redraw
	ImageKindRenderTarget                  // GPU-only storage backing an offscreen Context
	ImageKindScreen                        // the default framebuffer; never sampled
)

// Image is a drawable source. Its GPU texture is owned by the Manager's
// texture cache and created the first time the image is drawn.
type Image struct {
	width, height int
	pix           []byte // premultiplied RGBA, nil for render targets
	kind          ImageKind
	needsUpload   bool
}

// NewImage wraps premultiplied RGBA pixel rows of a w×h image. The slice
// must hold w*h*4 bytes and is not copied.
func NewImage(w, h int, pix []byte) *Image {
	return &Image{width: w, height: h, pix: pix, kind: ImageKindImage, needsUpload: true}
}

// NewImageFromImage converts a decoded image into an Image.
func NewImageFromImage(src image.Image) *Image {
	rgba := toRGBA(src)
	b := rgba.Bounds()
	return NewImage(b.Dx(), b.Dy(), rgba.Pix)
}

// NewCanvasImage creates a transparent w×h image whose pixels the caller may
// edit through Pix. Call MarkDirty after editing so the next draw
// re-uploads it.
func NewCanvasImage(w, h int) *Image {
	n := max(w, 0) * max(h, 0) * 4
	return &Image{width: w, height: h, pix: make([]byte, n), kind: ImageKindCanvas, needsUpload: true}
}

func newRenderTargetImage(w, h int) *Image {
	return &Image{width: w, height: h, kind: ImageKindRenderTarget, needsUpload: true}
}

// Width returns the image width in pixels.
func (img *Image) Width() int { return img.width }

// Height returns the image height in pixels.
func (img *Image) Height() int { return img.height }

// Size returns the image dimensions.
func (img *Image) Size() (w, h int) { return img.width, img.height }

// Kind returns where the image's pixels come from.
func (img *Image) Kind() ImageKind { return img.kind }

// Pix returns the premultiplied RGBA pixel rows, or nil for render targets.
func (img *Image) Pix() []byte { return img.pix }

// NeedsUpload reports whether the next draw must upload pixels to the GPU,
// either because the image was never uploaded, was evicted, or was marked
// dirty.
func (img *Image) NeedsUpload() bool { return img.needsUpload }

// MarkDirty flags the image for re-upload on its next draw.
func (img *Image) MarkDirty() { img.needsUpload = true }

// hasPixels reports whether the image carries CPU pixels to upload.
func (img *Image) hasPixels() bool {
	return img.kind == ImageKindImage || img.kind == ImageKindCanvas
}

// toRGBA returns src as a tightly packed *image.RGBA anchored at the origin.
// image.RGBA is premultiplied, which matches the texture format.
func toRGBA(src image.Image) *image.RGBA {
	if rgba, ok := src.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == rgba.Rect.Dx()*4 {
		return rgba
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
