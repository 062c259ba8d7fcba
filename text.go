package canvas2d

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Font selects a typeface and pixel size for text draws.
type Font struct {
	Family string
	Size   float64 // pixels
}

// DefaultFont matches the canvas default of "10px sans-serif".
var DefaultFont = Font{Family: "sans-serif", Size: 10}

// TextAlign is the horizontal position of text relative to the draw point.
type TextAlign uint8

const (
	TextAlignStart TextAlign = iota
	TextAlignEnd
	TextAlignLeft
	TextAlignRight
	TextAlignCenter
)

// TextBaseline is the vertical position of text relative to the draw point.
type TextBaseline uint8

const (
	TextBaselineAlphabetic TextBaseline = iota
	TextBaselineTop
	TextBaselineMiddle
	TextBaselineBottom
)

// TextMetrics describes the extent of a run of text.
type TextMetrics struct {
	Width   float64
	Ascent  float64 // above the baseline
	Descent float64 // below the baseline
}

// GlyphRun is a rasterized run of text. OriginX and OriginY locate the
// start of the baseline inside Image.
type GlyphRun struct {
	Image   *Image
	OriginX float64
	OriginY float64
}

// TextRasterizer turns text into images. The engine draws the result as a
// textured quad and caches it by content and style.
type TextRasterizer interface {
	Rasterize(text string, f Font, col Color, stroke bool, lineWidth float64) (GlyphRun, error)
	Measure(text string, f Font) TextMetrics
}

// --- Context text API ---

// FillText draws text with the fill color at (x, y), positioned by the text
// align and baseline settings. Without a TextRasterizer it draws nothing.
func (c *Context) FillText(text string, x, y float64) error {
	return c.drawText(text, x, y, c.state.fillColor, false)
}

// StrokeText outlines text with the stroke color and line width.
func (c *Context) StrokeText(text string, x, y float64) error {
	return c.drawText(text, x, y, c.state.strokeColor, true)
}

// MeasureText returns the metrics of text in the current font.
func (c *Context) MeasureText(text string) TextMetrics {
	if c.mgr.text == nil || text == "" {
		return TextMetrics{}
	}
	return c.mgr.text.raster.Measure(text, c.state.font)
}

func (c *Context) drawText(text string, x, y float64, col Color, stroke bool) error {
	gr := c.mgr.text
	if gr == nil || text == "" || c.state.globalAlpha <= 0 {
		return nil
	}
	if c.mgr.lost {
		c.mgr.stats.DroppedDraws++
		return nil
	}
	run, metrics, err := gr.run(text, c.state.font, col, stroke, c.state.lineWidth)
	if err != nil {
		return err
	}
	if run.Image == nil || run.Image.width <= 0 || run.Image.height <= 0 {
		return nil
	}
	ox, oy := textOffset(metrics, c.state.textAlign, c.state.textBaseline)
	w, h := float64(run.Image.width), float64(run.Image.height)
	return c.DrawImage(run.Image, 0, 0, w, h, x+ox-run.OriginX, y+oy-run.OriginY, w, h)
}

// textOffset returns where the start of the baseline lands relative to the
// draw point.
func textOffset(m TextMetrics, align TextAlign, baseline TextBaseline) (float64, float64) {
	var ox, oy float64
	switch align {
	case TextAlignEnd, TextAlignRight:
		ox = -m.Width
	case TextAlignCenter:
		ox = -m.Width / 2
	}
	switch baseline {
	case TextBaselineTop:
		oy = m.Ascent
	case TextBaselineMiddle:
		oy = (m.Ascent - m.Descent) / 2
	case TextBaselineBottom:
		oy = -m.Descent
	}
	return ox, oy
}

// --- Glyph-run cache ---

type glyphRunKey struct {
	text      string
	font      Font
	color     uint32
	stroke    bool
	lineWidth float64
}

type glyphRunEntry struct {
	key     glyphRunKey
	run     GlyphRun
	metrics TextMetrics
}

// glyphRunCache keeps recently drawn text runs. An evicted run's texture is
// released from the texture cache.
type glyphRunCache struct {
	raster  TextRasterizer
	cap     int
	cache   *TextureCache
	entries map[glyphRunKey]*lruNode[*glyphRunEntry]
	lru     lruList[*glyphRunEntry]
}

func newGlyphRunCache(r TextRasterizer, capacity int, cache *TextureCache) *glyphRunCache {
	return &glyphRunCache{
		raster:  r,
		cap:     capacity,
		cache:   cache,
		entries: make(map[glyphRunKey]*lruNode[*glyphRunEntry]),
	}
}

// run returns the cached run for the text and style, rasterizing and
// measuring it on a miss.
func (g *glyphRunCache) run(text string, f Font, col Color, stroke bool, lineWidth float64) (GlyphRun, TextMetrics, error) {
	if !stroke {
		lineWidth = 0
	}
	key := glyphRunKey{text: text, font: f, color: col.packed(), stroke: stroke, lineWidth: lineWidth}
	if node, ok := g.entries[key]; ok {
		g.lru.MoveToFront(node)
		return node.value.run, node.value.metrics, nil
	}
	run, err := g.raster.Rasterize(text, f, col, stroke, lineWidth)
	if err != nil {
		return GlyphRun{}, TextMetrics{}, fmt.Errorf("canvas2d: rasterize text: %w", err)
	}
	e := &glyphRunEntry{key: key, run: run, metrics: g.raster.Measure(text, f)}
	g.entries[key] = g.lru.PushFront(e)
	for g.lru.Len() > g.cap {
		g.drop(g.lru.Back())
	}
	return run, e.metrics, nil
}

func (g *glyphRunCache) drop(node *lruNode[*glyphRunEntry]) {
	e := node.value
	g.lru.Remove(node)
	delete(g.entries, e.key)
	if e.run.Image != nil {
		g.cache.Delete(e.run.Image)
	}
}

// Len returns the number of cached runs.
func (g *glyphRunCache) Len() int { return g.lru.Len() }

// --- FontRasterizer ---

// FontRasterizer rasterizes text with OpenType fonts. Families without a
// registered font fall back to Go Regular.
type FontRasterizer struct {
	mu       sync.Mutex
	fallback *opentype.Font
	families map[string]*opentype.Font
	faces    map[Font]font.Face
}

// NewFontRasterizer returns a rasterizer with Go Regular as the fallback
// face.
func NewFontRasterizer() (*FontRasterizer, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("canvas2d: parse fallback font: %w", err)
	}
	return &FontRasterizer{
		fallback: f,
		families: make(map[string]*opentype.Font),
		faces:    make(map[Font]font.Face),
	}, nil
}

// Register makes the TrueType or OpenType data available under family.
func (r *FontRasterizer) Register(family string, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("canvas2d: parse font %q: %w", family, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.families[family] = f
	for k, face := range r.faces {
		if k.Family == family {
			face.Close()
			delete(r.faces, k)
		}
	}
	return nil
}

func (r *FontRasterizer) face(f Font) (font.Face, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if face, ok := r.faces[f]; ok {
		return face, nil
	}
	src, ok := r.families[f.Family]
	if !ok {
		src = r.fallback
	}
	face, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    f.Size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("canvas2d: font face %s %gpx: %w", f.Family, f.Size, err)
	}
	r.faces[f] = face
	return face, nil
}

// Measure returns the advance width and vertical extent of text.
func (r *FontRasterizer) Measure(text string, f Font) TextMetrics {
	face, err := r.face(f)
	if err != nil {
		return TextMetrics{}
	}
	adv := font.MeasureString(face, text)
	fm := face.Metrics()
	return TextMetrics{
		Width:   fixedToFloat(adv),
		Ascent:  fixedToFloat(fm.Ascent),
		Descent: fixedToFloat(fm.Descent),
	}
}

// Rasterize draws text into a new image. Strokes are built by dilating the
// glyph coverage by half the line width and removing the interior.
func (r *FontRasterizer) Rasterize(text string, f Font, col Color, stroke bool, lineWidth float64) (GlyphRun, error) {
	face, err := r.face(f)
	if err != nil {
		return GlyphRun{}, err
	}
	m := r.Measure(text, f)
	pad := 1
	if stroke {
		pad += int(math.Ceil(lineWidth / 2))
	}
	w := int(math.Ceil(m.Width)) + pad*2
	h := int(math.Ceil(m.Ascent+m.Descent)) + pad*2
	bounds := image.Rect(0, 0, w, h)

	mask := image.NewAlpha(bounds)
	d := font.Drawer{
		Dst:  mask,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.P(pad, pad+int(math.Ceil(m.Ascent))),
	}
	d.DrawString(text)
	if stroke {
		mask = outline(mask, lineWidth/2)
	}

	dst := image.NewRGBA(bounds)
	draw.DrawMask(dst, bounds, image.NewUniform(col.nrgba()), image.Point{}, mask, image.Point{}, draw.Over)

	return GlyphRun{
		Image:   NewImage(w, h, dst.Pix),
		OriginX: float64(pad),
		OriginY: float64(pad) + math.Ceil(m.Ascent),
	}, nil
}

// outline returns the ring of coverage within radius of src's edges: src
// dilated by radius minus src itself.
func outline(src *image.Alpha, radius float64) *image.Alpha {
	b := src.Bounds()
	out := image.NewAlpha(b)
	rad := int(math.Ceil(radius))
	r2 := radius * radius
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			var best uint8
			for dy := -rad; dy <= rad; dy++ {
				for dx := -rad; dx <= rad; dx++ {
					if float64(dx*dx+dy*dy) > r2 {
						continue
					}
					if a := src.AlphaAt(x+dx, y+dy).A; a > best {
						best = a
					}
				}
			}
			inner := src.AlphaAt(x, y).A
			if best > inner {
				out.SetAlpha(x, y, color.Alpha{A: best - inner})
			}
		}
	}
	return out
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
