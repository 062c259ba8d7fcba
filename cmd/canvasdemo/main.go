// Canvasdemo draws a small animated scene through canvas2d on Ebitengine.
//
// A gradient sprite bounces across the screen in batches, an offscreen
// context renders a rotating badge that is then drawn back into the main
// context with a tint filter, atlas regions are drawn from a procedurally
// built page, and a HUD prints the per-frame stats.
//
// Keys:
//   - L: simulate device context loss; R: restore it
//   - F: cycle the sprite filter
//
// Run with -config path/to/demo.toml to override the defaults. Edits to the
// [demo] section of that file are applied while the demo runs.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/tanema/gween/ease"

	"github.com/phanxgames/canvas2d"
	"github.com/phanxgames/canvas2d/ebitendevice"
)

const (
	spriteSize = 32
	badgeSize  = 96
	tileSize   = 16
)

type sprite struct {
	x, y   float64
	vx, vy float64
}

type demo struct {
	cfg    Config
	dev    *ebitendevice.Device
	mgr    *canvas2d.Manager
	screen *canvas2d.Context
	badge  *canvas2d.Context
	log    *slog.Logger
	level  *slog.LevelVar
	watch  *configWatcher

	sprite  *canvas2d.Image
	atlas   *canvas2d.Atlas
	sprites []sprite

	badgePos   *canvas2d.Placement
	badgeTween *canvas2d.TweenGroup
	angle      float64
	filter     int

	stats canvas2d.FrameStats
}

func main() {
	configPath := flag.String("config", "", "TOML config file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	level := new(slog.LevelVar)
	level.Set(cfg.logLevel())
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	text, err := canvas2d.NewFontRasterizer()
	if err != nil {
		log.Fatal(err)
	}

	d := &demo{cfg: cfg, dev: ebitendevice.New(), log: logger, level: level}
	if *configPath != "" {
		if d.watch, err = watchConfig(*configPath, logger); err != nil {
			logger.Warn("config hot reload disabled", "err", err)
		} else {
			defer d.watch.Close()
		}
	}
	d.mgr, err = canvas2d.NewManager(d.dev, cfg.options(logger, text)...)
	if err != nil {
		log.Fatalf("create manager: %v", err)
	}
	defer d.mgr.Close()

	if d.screen, err = d.mgr.NewContext(cfg.Window.Width, cfg.Window.Height); err != nil {
		log.Fatal(err)
	}
	if d.badge, err = d.mgr.NewOffscreenContext(badgeSize, badgeSize); err != nil {
		log.Fatal(err)
	}
	if d.atlas, err = buildAtlas(); err != nil {
		log.Fatal(err)
	}
	d.sprite = canvas2d.NewImageFromImage(gradient(spriteSize))
	d.resizeSprites(max(cfg.Demo.Sprites, 0))
	d.badgePos = canvas2d.NewPlacement(40, 40)
	d.restartTween()

	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	if err := ebiten.RunGame(d); err != nil {
		log.Fatal(err)
	}
}

// resizeSprites trims or grows the sprite list to n, placing new sprites at
// random.
func (d *demo) resizeSprites(n int) {
	if n <= len(d.sprites) {
		d.sprites = d.sprites[:n]
		return
	}
	for len(d.sprites) < n {
		d.sprites = append(d.sprites, sprite{
			x:  rand.Float64() * float64(d.cfg.Window.Width-spriteSize),
			y:  rand.Float64() * float64(d.cfg.Window.Height-spriteSize),
			vx: rand.Float64()*4 - 2,
			vy: rand.Float64()*4 - 2,
		})
	}
}

func (d *demo) restartTween() {
	toX := rand.Float64() * float64(d.cfg.Window.Width-badgeSize)
	toY := rand.Float64() * float64(d.cfg.Window.Height-badgeSize)
	d.badgeTween = canvas2d.TweenPosition(d.badgePos, toX, toY, d.cfg.Demo.Duration, ease.InOutSine)
}

// applyConfig takes the [demo] section of a reloaded config. Window and
// renderer settings need a restart.
func (d *demo) applyConfig(cfg Config) {
	d.cfg.Demo = cfg.Demo
	d.level.Set(cfg.logLevel())
	d.resizeSprites(max(cfg.Demo.Sprites, 0))
	d.log.Info("config reloaded", "sprites", len(d.sprites), "hud", cfg.Demo.ShowHUD)
}

func (d *demo) Update() error {
	if d.watch != nil {
		if cfg, ok := d.watch.Poll(); ok {
			d.applyConfig(cfg)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyL) {
		d.mgr.LoseContext()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := d.mgr.RestoreContext(); err != nil {
			return err
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		d.filter = (d.filter + 1) % 4
	}

	d.badgeTween.Update(1.0 / float32(ebiten.TPS()))
	if d.badgeTween.Done {
		d.restartTween()
	}
	d.angle += 0.02

	w := float64(d.cfg.Window.Width - spriteSize)
	h := float64(d.cfg.Window.Height - spriteSize)
	for i := range d.sprites {
		s := &d.sprites[i]
		s.x += s.vx
		s.y += s.vy
		if s.x < 0 || s.x > w {
			s.vx = -s.vx
		}
		if s.y < 0 || s.y > h {
			s.vy = -s.vy
		}
	}
	return nil
}

func (d *demo) Draw(screen *ebiten.Image) {
	d.dev.SetScreen(screen)
	ctx := d.screen

	d.drawBadge()

	ctx.Clear()
	ctx.SetFillStyle(canvas2d.Color{R: 0.1, G: 0.1, B: 0.15, A: 1})
	ctx.FillRect(0, 0, float64(ctx.Width()), float64(ctx.Height()))

	ctx.Save()
	ctx.SetFilter(d.currentFilter())
	for _, s := range d.sprites {
		if err := ctx.DrawImageAt(d.sprite, s.x, s.y); err != nil {
			d.log.Error("draw sprite", "err", err)
			break
		}
	}
	_ = ctx.Restore()

	for i, name := range []string{"red", "green", "blue", "gold"} {
		if err := ctx.DrawRegion(d.atlas, name, 20+float64(i)*(tileSize+8), float64(ctx.Height())-40); err != nil {
			d.log.Error("draw region", "name", name, "err", err)
		}
	}

	ctx.Save()
	d.badgePos.Apply(ctx)
	ctx.ClipRect(0, 0, badgeSize, badgeSize)
	_ = ctx.DrawImageAt(d.badge.Element(), 0, 0)
	ctx.SetStrokeStyle(canvas2d.ColorWhite)
	ctx.SetLineWidth(2)
	ctx.StrokeRect(0, 0, badgeSize, badgeSize)
	_ = ctx.Restore()

	d.stats = d.mgr.Present()

	if d.cfg.Demo.ShowHUD {
		lost := ""
		if d.mgr.Lost() {
			lost = " (context lost)"
		}
		ebitenutil.DebugPrint(screen, fmt.Sprintf(
			"FPS %.0f  draws %d  quads %d  uploads %d  evictions %d%s",
			ebiten.ActualFPS(), d.stats.DrawCalls, d.stats.Quads,
			d.stats.Uploads, d.stats.Evictions, lost))
	}
}

// drawBadge renders the rotating badge into its offscreen context.
func (d *demo) drawBadge() {
	b := d.badge
	b.Clear()
	b.Save()
	b.Translate(badgeSize/2, badgeSize/2)
	b.Rotate(d.angle)
	b.SetFillStyle(canvas2d.RGB(230, 120, 40))
	b.FillRect(-30, -30, 60, 60)
	b.SetGlobalCompositeOperation("lighter")
	b.SetFillStyle(canvas2d.Color{R: 0.2, G: 0.3, B: 0.8, A: 0.6})
	b.FillRect(-15, -40, 30, 80)
	_ = b.Restore()

	b.SetFillStyle(canvas2d.ColorWhite)
	b.SetFont(canvas2d.Font{Family: "sans-serif", Size: 14})
	b.SetTextAlign(canvas2d.TextAlignCenter)
	b.SetTextBaseline(canvas2d.TextBaselineMiddle)
	if err := b.FillText("canvas2d", badgeSize/2, badgeSize/2); err != nil {
		d.log.Error("draw text", "err", err)
	}
}

func (d *demo) currentFilter() canvas2d.Filter {
	switch d.filter {
	case 1:
		return canvas2d.NewTintFilter(canvas2d.Color{R: 1, G: 0.2, B: 0.2, A: 0.5})
	case 2:
		return canvas2d.NewMultiplyFilter(canvas2d.Color{R: 0.5, G: 1, B: 0.5, A: 1})
	case 3:
		return canvas2d.NewLinearAddFilter(canvas2d.Color{R: 0.3, G: 0.3, B: 0.3, A: 1})
	}
	return canvas2d.Filter{}
}

func (d *demo) Layout(_, _ int) (int, int) {
	return d.cfg.Window.Width, d.cfg.Window.Height
}

// gradient returns a size×size image with a radial falloff.
func gradient(size int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	c := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dist := math.Hypot(float64(x)-c+0.5, float64(y)-c+0.5) / c
			a := uint8(255 * math.Max(0, 1-dist))
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: uint8(x * 255 / size), B: uint8(y * 255 / size), A: a})
		}
	}
	return img
}

// buildAtlas packs four solid tiles into a page and describes them with
// TexturePacker hash JSON.
func buildAtlas() (*canvas2d.Atlas, error) {
	names := []string{"red", "green", "blue", "gold"}
	colors := []color.NRGBA{
		{R: 220, G: 50, B: 50, A: 255},
		{R: 50, G: 200, B: 80, A: 255},
		{R: 50, G: 90, B: 230, A: 255},
		{R: 240, G: 200, B: 60, A: 255},
	}
	page := image.NewNRGBA(image.Rect(0, 0, tileSize*len(names), tileSize))
	var b strings.Builder
	b.WriteString(`{"frames":{`)
	for i, name := range names {
		for y := 0; y < tileSize; y++ {
			for x := 0; x < tileSize; x++ {
				page.SetNRGBA(i*tileSize+x, y, colors[i])
			}
		}
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, `%q:{"frame":{"x":%d,"y":0,"w":%d,"h":%d},`+
			`"spriteSourceSize":{"x":0,"y":0,"w":%d,"h":%d},"sourceSize":{"w":%d,"h":%d}}`,
			name, i*tileSize, tileSize, tileSize, tileSize, tileSize, tileSize, tileSize)
	}
	b.WriteString(`}}`)
	return canvas2d.LoadAtlas([]byte(b.String()), []*canvas2d.Image{canvas2d.NewImageFromImage(page)})
}
