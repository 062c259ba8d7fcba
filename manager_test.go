package canvas2d

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManagerCompilesShaderSet(t *testing.T) {
	m, dev := newTestManager(t)
	assert.Equal(t, int(numShaders), dev.count("CompileProgram"))
	assert.Equal(t, 1, dev.count("BufferIndices"))
	for k := ShaderKind(0); k < numShaders; k++ {
		p := m.shaders.Program(k)
		require.NotNil(t, p, k.String())
		assert.Equal(t, k, p.Kind)
		assert.Equal(t, 0, p.Resolution)
		assert.Equal(t, 1, p.Sampler)
	}
	assert.False(t, m.shaders.Program(ShaderRect).Textured())
	assert.True(t, m.shaders.Program(ShaderTint).Textured())
}

func TestShaderFailureIsFatal(t *testing.T) {
	dev := newFakeDevice()
	dev.failKind = ShaderMultiply
	dev.failAlways = true

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	_, err := NewManager(dev, WithLogger(log))

	var se *ShaderError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, ShaderMultiply, se.Kind)
	assert.Contains(t, se.Log, "syntax error")
	assert.Equal(t, int(ShaderMultiply), dev.count("DeleteProgram"), "compiled programs are released")
	assert.Contains(t, buf.String(), "shader compile failed")
	assert.Contains(t, buf.String(), "level=ERROR")
}

func TestDefaultMemoryBudget(t *testing.T) {
	assert.Equal(t, int64(DesktopMemoryBudget), defaultMemoryBudget("linux"))
	assert.Equal(t, int64(DesktopMemoryBudget), defaultMemoryBudget("windows"))
	assert.Equal(t, int64(MobileMemoryBudget), defaultMemoryBudget("android"))
	assert.Equal(t, int64(MobileMemoryBudget), defaultMemoryBudget("ios"))

	m, _ := newTestManager(t, WithMemoryBudget(1234))
	assert.Equal(t, int64(1234), m.Cache().Budget())
}

func TestPresentResetsStats(t *testing.T) {
	ctx, m, _ := newTestScreen(t)
	ctx.FillRect(0, 0, 1, 1)
	assert.Zero(t, m.Stats().DrawCalls, "nothing drawn before flush")

	s := m.Present()
	assert.Equal(t, 1, s.DrawCalls)
	assert.Equal(t, 1, s.ContextSwitches)
	assert.Equal(t, FrameStats{}, m.Stats())
}

func TestPresentDebugLogsStats(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx, m, _ := newTestScreen(t, WithLogger(log), WithDebug(true))
	ctx.FillRect(0, 0, 1, 1)
	m.Present()
	assert.Contains(t, buf.String(), "stats.drawCalls=1")
}

func TestEvictionFlushesQueuedQuadsFirst(t *testing.T) {
	ctx, m, dev := newTestScreen(t, WithMemoryBudget(textureCost(64, 64)))
	a, b := newTestImage(64, 64), newTestImage(64, 64)

	require.NoError(t, ctx.DrawImageAt(a, 0, 0))
	require.NoError(t, ctx.DrawImageAt(b, 0, 0)) // evicts a while its quad is queued
	m.Present()

	draw := dev.indexOf("DrawElements", 0)
	del := dev.indexOf("DeleteTexture", 0)
	require.GreaterOrEqual(t, draw, 0)
	require.GreaterOrEqual(t, del, 0)
	assert.Less(t, draw, del, "a's quad must be drawn before its texture is deleted")
	assert.Equal(t, 2, dev.count("DrawElements"))
}

func TestCanvasReuploadFlushesQueuedQuadsFirst(t *testing.T) {
	ctx, m, dev := newTestScreen(t)
	img := NewCanvasImage(8, 8)

	require.NoError(t, ctx.DrawImageAt(img, 0, 0))
	img.Pix()[3] = 255
	img.MarkDirty()
	require.NoError(t, ctx.DrawImageAt(img, 0, 0)) // re-uploads while the first quad is queued
	m.Present()

	draw := dev.indexOf("DrawElements", 0)
	upd := dev.indexOf("UpdateTexture", 0)
	require.GreaterOrEqual(t, draw, 0)
	require.GreaterOrEqual(t, upd, 0)
	assert.Less(t, draw, upd, "the first quad must be drawn with the old pixels")
	assert.Equal(t, 2, dev.count("DrawElements"))
	assert.Equal(t, 1, dev.count("UpdateTexture"))
}

func TestReuploadOfUnqueuedTextureKeepsBatch(t *testing.T) {
	ctx, m, dev := newTestScreen(t)
	a, b := NewCanvasImage(8, 8), NewCanvasImage(8, 8)
	require.NoError(t, ctx.DrawImageAt(b, 0, 0))
	m.Present()

	dev.reset()
	require.NoError(t, ctx.DrawImageAt(a, 0, 0))
	b.MarkDirty()
	require.NoError(t, ctx.DrawImageAt(b, 0, 0))
	m.Present()

	assert.Less(t, dev.indexOf("UpdateTexture", 0), dev.indexOf("DrawElements", 0))
	assert.Equal(t, 1, dev.count("BufferVertices"), "one flush for both quads")
	assert.Equal(t, 2, dev.count("DrawElements"))
}

func TestDeleteTexture(t *testing.T) {
	ctx, m, dev := newTestScreen(t)
	img := newTestImage(8, 8)
	require.NoError(t, ctx.DrawImageAt(img, 0, 0))

	m.DeleteTexture(img)
	assert.Equal(t, 1, dev.count("DrawElements"), "queued quad flushed before delete")
	assert.Equal(t, 1, dev.count("DeleteTexture"))
	assert.True(t, img.NeedsUpload())
	assert.Zero(t, m.Cache().Len())

	m.DeleteTexture(img) // not resident: no-op
	assert.Equal(t, 1, dev.count("DeleteTexture"))
}

func TestDeleteActiveTargetUnbinds(t *testing.T) {
	_, m, dev := newTestScreen(t)
	off, err := m.NewOffscreenContext(16, 16)
	require.NoError(t, err)
	off.FillRect(0, 0, 1, 1)

	m.DeleteTexture(off.Element())
	assert.Nil(t, m.active)

	dev.reset()
	off.FillRect(0, 0, 1, 1)
	m.Present()
	creates := dev.find("CreateTexture")
	require.Len(t, creates, 1, "target reallocated on next draw")
	assert.Equal(t, "BindFramebuffer", dev.calls[1].Op)
}

func TestReleasedTargetFinishesBeforeNextBind(t *testing.T) {
	tests := []struct {
		name    string
		release func(t *testing.T, m *Manager, off *Context)
	}{
		{"delete", func(_ *testing.T, m *Manager, off *Context) { m.DeleteTexture(off.Element()) }},
		{"resize", func(t *testing.T, _ *Manager, off *Context) { require.NoError(t, off.Resize(32, 32)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, m, dev := newTestScreen(t)
			off, err := m.NewOffscreenContext(16, 16)
			require.NoError(t, err)
			off.FillRect(0, 0, 1, 1)

			dev.reset()
			tt.release(t, m, off)
			ctx.FillRect(0, 0, 1, 1)
			m.Present()

			draw := dev.indexOf("DrawElements", 0)
			fin := dev.indexOf("Finish", 0)
			bind := dev.indexOf("BindFramebuffer", 0)
			require.GreaterOrEqual(t, draw, 0)
			require.GreaterOrEqual(t, fin, 0, "offscreen work is finished")
			assert.Less(t, draw, fin)
			assert.Less(t, fin, bind)
			assert.Equal(t, "BindFramebuffer(0)", dev.calls[bind].String())
		})
	}
}

func TestLostContextDropsDraws(t *testing.T) {
	ctx, m, dev := newTestScreen(t)
	ctx.FillRect(0, 0, 1, 1)
	m.LoseContext()
	assert.True(t, m.Lost())

	ctx.FillRect(0, 0, 1, 1)
	require.NoError(t, ctx.DrawImageAt(newTestImage(4, 4), 0, 0))
	s := m.Present()

	assert.Zero(t, dev.count("DrawElements"), "queued quads are discarded on loss")
	assert.Equal(t, 2, s.DroppedDraws)
	assert.Zero(t, dev.count("CreateTexture"))
}

func TestRestoreContextOrder(t *testing.T) {
	ctx, m, dev := newTestScreen(t)
	off, err := m.NewOffscreenContext(32, 32)
	require.NoError(t, err)
	img1, img2 := newTestImage(8, 8), newTestImage(16, 16)
	require.NoError(t, ctx.DrawImageAt(img1, 0, 0))
	require.NoError(t, ctx.DrawImageAt(img2, 0, 0))
	off.FillRect(0, 0, 1, 1) // offscreen is active at loss
	m.Present()

	m.LoseContext()
	dev.reset()
	require.NoError(t, m.RestoreContext())
	assert.False(t, m.Lost())

	ops := dev.ops()
	lastCompile := -1
	for i, op := range ops {
		if op == "CompileProgram" {
			lastCompile = i
		}
	}
	indices := dev.indexOf("BufferIndices", 0)
	creates := dev.find("CreateTexture")
	require.Len(t, creates, 3)
	assert.Equal(t, []any{8, 8, true}, creates[0].Args)
	assert.Equal(t, []any{16, 16, true}, creates[1].Args)
	assert.Equal(t, []any{32, 32, false}, creates[2].Args, "render target last")

	firstCreate := dev.indexOf("CreateTexture", 0)
	bind := dev.indexOf("BindFramebuffer", 0)
	assert.Equal(t, int(numShaders)-1, lastCompile)
	assert.Greater(t, indices, lastCompile)
	assert.Greater(t, firstCreate, indices)
	assert.Greater(t, bind, dev.indexOf("CreateTexture", firstCreate+1))
	rt, _ := m.cache.Lookup(off.Element())
	assert.Equal(t, []any{rt}, dev.calls[bind].Args, "context active at loss is rebound")
	assert.Same(t, off, m.active)
	assert.Zero(t, dev.count("DeleteTexture"))
}

func TestRestoreDefaultsToPrimary(t *testing.T) {
	ctx, m, dev := newTestScreen(t)
	m.LoseContext()
	dev.reset()
	require.NoError(t, m.RestoreContext())
	assert.Same(t, ctx, m.active)
	assert.Equal(t, "BindFramebuffer(0)", dev.find("BindFramebuffer")[0].String())
}

func TestRestoreThenDrawWorks(t *testing.T) {
	ctx, m, dev := newTestScreen(t)
	img := newTestImage(4, 4)
	require.NoError(t, ctx.DrawImageAt(img, 0, 0))
	m.Present()
	m.LoseContext()
	require.NoError(t, m.RestoreContext())

	dev.reset()
	require.NoError(t, ctx.DrawImageAt(img, 0, 0))
	s := m.Present()
	assert.Equal(t, 1, s.DrawCalls)
	assert.Zero(t, dev.count("CreateTexture"), "texture was reloaded eagerly")
	assert.Equal(t, 3, dev.count("EnableAttrib"), "attribute cache reset on restore")
}

func TestRestoreShaderFailure(t *testing.T) {
	_, m, dev := newTestScreen(t)
	m.LoseContext()
	dev.failKind = ShaderTint
	dev.failOnce = true

	var se *ShaderError
	require.ErrorAs(t, m.RestoreContext(), &se)
	assert.True(t, m.Lost(), "still lost after a failed restore")

	require.NoError(t, m.RestoreContext())
	assert.False(t, m.Lost())
}

func TestRestoreWhenNotLostIsNoop(t *testing.T) {
	m, dev := newTestManager(t)
	dev.reset()
	require.NoError(t, m.RestoreContext())
	assert.Empty(t, dev.calls)
}

func TestCloseReleasesEverything(t *testing.T) {
	ctx, m, dev := newTestScreen(t)
	require.NoError(t, ctx.DrawImageAt(newTestImage(4, 4), 0, 0))
	_, err := m.NewOffscreenContext(8, 8)
	require.NoError(t, err)

	m.Close()
	assert.Equal(t, int(numShaders), dev.count("DeleteProgram"))
	assert.Equal(t, 2, dev.count("DeleteTexture"))
	assert.Equal(t, 1, dev.count("DrawElements"), "pending quads flushed on close")

	_, err = m.NewOffscreenContext(8, 8)
	assert.ErrorIs(t, err, ErrClosed)
	ctx.FillRect(0, 0, 1, 1) // ignored
	assert.Equal(t, 1, dev.count("DrawElements"))
	assert.ErrorIs(t, m.RestoreContext(), ErrClosed)
}

func TestFrameStatsLogValue(t *testing.T) {
	s := FrameStats{DrawCalls: 3, Quads: 10}
	v := s.LogValue()
	require.Equal(t, slog.KindGroup, v.Kind())
	attrs := v.Group()
	assert.Equal(t, "drawCalls", attrs[0].Key)
	assert.Equal(t, int64(3), attrs[0].Value.Int64())
}
