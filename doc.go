// Package canvas2d is an immediate-mode 2D drawing context emulated on a
// GPU, with [Ebitengine] as the reference backend.
//
// A [Context] exposes the familiar canvas calls: transforms, a save/restore
// state stack, rectangular clipping, image and rectangle drawing, text, and
// composite operations. Draws are not rendered one by one. Each becomes a
// textured quad queued in a shared vertex buffer, and consecutive quads that
// agree on texture, shader, composite operation and clip are drawn with a
// single indexed call.
//
// # Quick start
//
// Create a [Manager] over a [Device], then a primary context for the
// screen:
//
//	dev := ebitendevice.New()
//	mgr, err := canvas2d.NewManager(dev, canvas2d.WithLogger(slog.Default()))
//	if err != nil {
//		return err
//	}
//	ctx, err := mgr.NewContext(640, 480)
//
// Each frame, draw and then call [Manager.Present]:
//
//	ctx.Save()
//	ctx.Translate(100, 50)
//	ctx.Rotate(math.Pi / 8)
//	ctx.DrawImageAt(hero, -16, -16)
//	ctx.Restore()
//	ctx.SetFillStyle(canvas2d.RGB(40, 120, 220))
//	ctx.FillRect(0, 0, 80, 40)
//	stats := mgr.Present()
//
// # Offscreen contexts
//
// [Manager.NewOffscreenContext] returns a context that renders into a
// texture. Its [Context.Element] can be drawn into any other context.
// Switching between contexts flushes the pending quads of the previous
// target first.
//
// # Texture memory
//
// Images are uploaded on first draw and kept in a [TextureCache] under a
// byte budget ([WithMemoryBudget]). Costs are counted at power-of-two padded
// sizes. When over budget the least recently drawn images are evicted and
// flagged for re-upload; render targets are never evicted.
//
// # Context loss
//
// Call [Manager.LoseContext] when the device reports a lost context and
// [Manager.RestoreContext] once it is back. While lost, draws are dropped
// and counted in [FrameStats.DroppedDraws]. Restore recompiles the shader
// set, reloads image textures in creation order, and reallocates offscreen
// targets (their contents are not preserved).
//
// # Filters and composite operations
//
// [Context.SetFilter] selects one of the tint, multiply or linear-add
// programs for textured draws. [Context.SetGlobalCompositeOperation] maps
// the canvas names ("source-over", "lighter", "copy", ...) to blend factor
// pairs.
//
// # Text
//
// Text is rasterized by a [TextRasterizer] into glyph-run images that are
// cached and drawn like any other image. [FontRasterizer] is the built-in
// implementation over OpenType fonts.
//
// [Ebitengine]: https://ebitengine.org
package canvas2d
