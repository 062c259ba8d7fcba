package canvas2d

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Placement is the position, scale, rotation and opacity of something
// drawn on a Context. It is a convenience for callers that animate draws;
// the engine itself only sees the transform and alpha Apply sets.
type Placement struct {
	X, Y           float64
	ScaleX, ScaleY float64
	Rotation       float64 // radians, clockwise
	Alpha          float64
}

// NewPlacement returns a placement at (x, y) with unit scale and full
// opacity.
func NewPlacement(x, y float64) *Placement {
	return &Placement{X: x, Y: y, ScaleX: 1, ScaleY: 1, Alpha: 1}
}

// Apply post-multiplies the placement into ctx's transform and multiplies
// its global alpha. Wrap it in Save and Restore to scope it to one draw.
func (p *Placement) Apply(ctx *Context) {
	ctx.Translate(p.X, p.Y)
	if p.Rotation != 0 {
		ctx.Rotate(p.Rotation)
	}
	if p.ScaleX != 1 || p.ScaleY != 1 {
		ctx.Scale(p.ScaleX, p.ScaleY)
	}
	ctx.SetGlobalAlpha(ctx.GlobalAlpha() * p.Alpha)
}

// TweenGroup animates up to 4 float64 fields of a Placement at once.
// Create one via the constructors (TweenPosition, TweenScale, TweenAlpha,
// TweenRotation) and call Update(dt) each frame.
//
// There is no global animation manager; callers drive Update themselves.
type TweenGroup struct {
	tweens [4]*gween.Tween
	count  int
	fields [4]*float64
	Done   bool
}

// Update advances all tweens by dt seconds and writes the values to the
// target fields.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		*g.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
}

// Reset rewinds every tween to its start value.
func (g *TweenGroup) Reset() {
	for i := 0; i < g.count; i++ {
		g.tweens[i].Reset()
		val, _ := g.tweens[i].Set(0)
		*g.fields[i] = float64(val)
	}
	g.Done = false
}

func (g *TweenGroup) add(field *float64, to float64, duration float32, fn ease.TweenFunc) {
	g.tweens[g.count] = gween.New(float32(*field), float32(to), duration, fn)
	g.fields[g.count] = field
	g.count++
}

// TweenPosition animates p.X and p.Y to (toX, toY).
func TweenPosition(p *Placement, toX, toY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{}
	g.add(&p.X, toX, duration, fn)
	g.add(&p.Y, toY, duration, fn)
	return g
}

// TweenScale animates p.ScaleX and p.ScaleY.
func TweenScale(p *Placement, toSX, toSY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{}
	g.add(&p.ScaleX, toSX, duration, fn)
	g.add(&p.ScaleY, toSY, duration, fn)
	return g
}

// TweenAlpha animates p.Alpha.
func TweenAlpha(p *Placement, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{}
	g.add(&p.Alpha, to, duration, fn)
	return g
}

// TweenRotation animates p.Rotation.
func TweenRotation(p *Placement, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{}
	g.add(&p.Rotation, to, duration, fn)
	return g
}

// TweenColor animates the four components of *c.
func TweenColor(c *Color, to Color, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{}
	g.add(&c.R, to.R, duration, fn)
	g.add(&c.G, to.G, duration, fn)
	g.add(&c.B, to.B, duration, fn)
	g.add(&c.A, to.A, duration, fn)
	return g
}
