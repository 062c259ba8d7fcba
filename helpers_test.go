package canvas2d

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, opts ...Option) (*Manager, *fakeDevice) {
	t.Helper()
	dev := newFakeDevice()
	m, err := NewManager(dev, opts...)
	require.NoError(t, err)
	return m, dev
}

func newTestScreen(t *testing.T, opts ...Option) (*Context, *Manager, *fakeDevice) {
	t.Helper()
	m, dev := newTestManager(t, opts...)
	ctx, err := m.NewContext(200, 100)
	require.NoError(t, err)
	return ctx, m, dev
}

func newTestImage(w, h int) *Image {
	return NewImage(w, h, make([]byte, w*h*4))
}

// testVertex is one decoded vertex from the fake device's vertex buffer.
type testVertex struct {
	X, Y, U, V, Alpha float32
	Color             uint32
}

func vertexAt(buf []float32, i int) testVertex {
	o := i * VertexStride
	return testVertex{
		X:     buf[o],
		Y:     buf[o+1],
		U:     buf[o+2],
		V:     buf[o+3],
		Alpha: buf[o+4],
		Color: math.Float32bits(buf[o+5]),
	}
}

// indexOf returns the position of the first call named op at or after
// from, or -1.
func (d *fakeDevice) indexOf(op string, from int) int {
	for i := from; i < len(d.calls); i++ {
		if d.calls[i].Op == op {
			return i
		}
	}
	return -1
}
