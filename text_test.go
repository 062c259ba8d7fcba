package canvas2d

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRasterizer returns fixed-size runs and counts Rasterize and Measure
// calls.
type fakeRasterizer struct {
	rasterized int
	measured   int
	err        error
}

func (r *fakeRasterizer) Rasterize(text string, _ Font, _ Color, _ bool, _ float64) (GlyphRun, error) {
	if r.err != nil {
		return GlyphRun{}, r.err
	}
	r.rasterized++
	w := 6 * len(text)
	return GlyphRun{Image: newTestImage(w, 12), OriginX: 1, OriginY: 9}, nil
}

func (r *fakeRasterizer) Measure(text string, _ Font) TextMetrics {
	r.measured++
	return TextMetrics{Width: float64(6 * len(text)), Ascent: 8, Descent: 2}
}

func TestFillTextCachesRuns(t *testing.T) {
	raster := &fakeRasterizer{}
	ctx, m, dev := newTestScreen(t, WithTextRasterizer(raster))

	require.NoError(t, ctx.FillText("hello", 10, 20))
	require.NoError(t, ctx.FillText("hello", 30, 40))
	m.Present()

	assert.Equal(t, 1, raster.rasterized)
	assert.Equal(t, 1, dev.count("CreateTexture"))
	draws := dev.find("DrawElements")
	require.Len(t, draws, 1, "both runs share one texture")
	assert.Equal(t, []any{0, 2 * indicesPerQuad}, draws[0].Args)

	// Alphabetic baseline, start alignment: the run origin sits on (x, y).
	tl := vertexAt(dev.vertices, 0)
	assert.Equal(t, float32(9), tl.X)
	assert.Equal(t, float32(11), tl.Y)
}

func TestCachedRunSkipsMeasure(t *testing.T) {
	raster := &fakeRasterizer{}
	ctx, m, dev := newTestScreen(t, WithTextRasterizer(raster))
	ctx.SetTextAlign(TextAlignCenter)

	require.NoError(t, ctx.FillText("hello", 100, 20))
	require.NoError(t, ctx.FillText("hello", 100, 20))
	m.Present()

	assert.Equal(t, 1, raster.measured)
	// Centered: x - width/2 - originX, on both the miss and the hit.
	assert.Equal(t, float32(100-15-1), vertexAt(dev.vertices, 0).X)
	assert.Equal(t, float32(100-15-1), vertexAt(dev.vertices, 4).X)
}

func TestTextRunKeyIncludesStyle(t *testing.T) {
	raster := &fakeRasterizer{}
	ctx, _, _ := newTestScreen(t, WithTextRasterizer(raster))

	require.NoError(t, ctx.FillText("a", 0, 0))
	ctx.SetFillStyle(Color{R: 1, A: 1})
	require.NoError(t, ctx.FillText("a", 0, 0))
	require.NoError(t, ctx.StrokeText("a", 0, 0))
	ctx.SetLineWidth(4)
	require.NoError(t, ctx.StrokeText("a", 0, 0))
	require.NoError(t, ctx.FillText("a", 0, 0)) // line width does not affect fills

	assert.Equal(t, 4, raster.rasterized)
}

func TestGlyphRunEvictionDeletesTexture(t *testing.T) {
	raster := &fakeRasterizer{}
	ctx, m, dev := newTestScreen(t, WithTextRasterizer(raster), WithGlyphRunCache(1))

	require.NoError(t, ctx.FillText("one", 0, 0))
	require.NoError(t, ctx.FillText("two", 0, 0))
	m.Present()

	assert.Equal(t, 1, m.text.Len())
	assert.Equal(t, 1, dev.count("DeleteTexture"))
	assert.Less(t, dev.indexOf("DrawElements", 0), dev.indexOf("DeleteTexture", 0))
	assert.Equal(t, 1, m.Cache().Len())
}

func TestTextWithoutRasterizer(t *testing.T) {
	ctx, m, dev := newTestScreen(t)
	require.NoError(t, ctx.FillText("hello", 0, 0))
	m.Present()
	assert.Zero(t, dev.count("DrawElements"))
	assert.Equal(t, TextMetrics{}, ctx.MeasureText("hello"))
}

func TestTextRasterizeError(t *testing.T) {
	raster := &fakeRasterizer{err: errors.New("no glyphs")}
	ctx, _, _ := newTestScreen(t, WithTextRasterizer(raster))
	err := ctx.FillText("x", 0, 0)
	assert.ErrorContains(t, err, "no glyphs")
}

func TestTextDroppedWhileLost(t *testing.T) {
	raster := &fakeRasterizer{}
	ctx, m, _ := newTestScreen(t, WithTextRasterizer(raster))
	m.LoseContext()
	require.NoError(t, ctx.FillText("x", 0, 0))
	assert.Zero(t, raster.rasterized)
	assert.Equal(t, 1, m.Present().DroppedDraws)
}

func TestTextOffset(t *testing.T) {
	met := TextMetrics{Width: 40, Ascent: 8, Descent: 2}
	tests := []struct {
		align    TextAlign
		baseline TextBaseline
		ox, oy   float64
	}{
		{TextAlignStart, TextBaselineAlphabetic, 0, 0},
		{TextAlignLeft, TextBaselineAlphabetic, 0, 0},
		{TextAlignEnd, TextBaselineAlphabetic, -40, 0},
		{TextAlignRight, TextBaselineTop, -40, 8},
		{TextAlignCenter, TextBaselineMiddle, -20, 3},
		{TextAlignStart, TextBaselineBottom, 0, -2},
	}
	for _, tt := range tests {
		ox, oy := textOffset(met, tt.align, tt.baseline)
		assert.Equal(t, tt.ox, ox, "align %d", tt.align)
		assert.Equal(t, tt.oy, oy, "baseline %d", tt.baseline)
	}
}

func TestMeasureTextUsesFont(t *testing.T) {
	r, err := NewFontRasterizer()
	require.NoError(t, err)
	ctx, _, _ := newTestScreen(t, WithTextRasterizer(r))

	small := ctx.MeasureText("Hello")
	ctx.SetFont(Font{Family: "sans-serif", Size: 20})
	large := ctx.MeasureText("Hello")

	assert.Greater(t, small.Width, 0.0)
	assert.Greater(t, large.Width, small.Width)
	assert.Greater(t, large.Ascent, 0.0)
}

func TestFontRasterizerFill(t *testing.T) {
	r, err := NewFontRasterizer()
	require.NoError(t, err)

	run, err := r.Rasterize("Hi", Font{Family: "sans-serif", Size: 16}, ColorWhite, false, 0)
	require.NoError(t, err)
	require.NotNil(t, run.Image)
	assert.Greater(t, run.Image.Width(), 0)
	assert.Equal(t, 1.0, run.OriginX)
	assert.Greater(t, countCovered(run.Image.Pix()), 0)
}

func TestFontRasterizerStrokeIsRing(t *testing.T) {
	r, err := NewFontRasterizer()
	require.NoError(t, err)
	f := Font{Family: "sans-serif", Size: 24}

	fill, err := r.Rasterize("O", f, ColorWhite, false, 0)
	require.NoError(t, err)
	stroke, err := r.Rasterize("O", f, ColorWhite, true, 4)
	require.NoError(t, err)

	assert.Greater(t, stroke.Image.Width(), fill.Image.Width(), "stroke pads for the line width")
	assert.Greater(t, countCovered(stroke.Image.Pix()), 0)
}

func TestFontRasterizerRegisterBadData(t *testing.T) {
	r, err := NewFontRasterizer()
	require.NoError(t, err)
	assert.Error(t, r.Register("broken", []byte("not a font")))
}

// countCovered counts pixels with non-zero alpha in RGBA data.
func countCovered(pix []byte) int {
	n := 0
	for i := 3; i < len(pix); i += 4 {
		if pix[i] != 0 {
			n++
		}
	}
	return n
}
