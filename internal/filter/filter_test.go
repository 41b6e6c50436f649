package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/20154530/NeusoftKQ/internal/imaging"
)

func newBuf(t *testing.T, w, h int, l imaging.Layout) *imaging.Buffer {
	t.Helper()
	b, err := imaging.New(w, h, l)
	require.NoError(t, err)
	return b
}

// gray8 builds an Indexed8 buffer from rows of samples.
func gray8(t *testing.T, rows [][]byte) *imaging.Buffer {
	t.Helper()
	b := newBuf(t, len(rows[0]), len(rows), imaging.Indexed8)
	for y, row := range rows {
		copy(b.Row(y), row)
	}
	return b
}

func rows8(b *imaging.Buffer) [][]byte {
	out := make([][]byte, b.Height())
	for y := range out {
		out[y] = append([]byte(nil), b.Row(y)...)
	}
	return out
}

func TestCapabilityTables(t *testing.T) {
	all := []imaging.Layout{
		imaging.Indexed8, imaging.Gray16, imaging.RGB24, imaging.RGB32, imaging.ARGB32,
		imaging.PARGB32, imaging.RGB48, imaging.ARGB64, imaging.PARGB64,
	}
	tests := []struct {
		name   string
		f      Filter
		kind   Kind
		accept map[imaging.Layout]imaging.Layout
	}{
		{"grayscale", NewGrayscale(imaging.BT709), NewImage, map[imaging.Layout]imaging.Layout{
			imaging.RGB24: imaging.Indexed8, imaging.RGB32: imaging.Indexed8, imaging.ARGB32: imaging.Indexed8,
			imaging.RGB48: imaging.Gray16, imaging.ARGB64: imaging.Gray16,
		}},
		{"threshold", NewThreshold(128), InPlace, map[imaging.Layout]imaging.Layout{
			imaging.Indexed8: imaging.Indexed8, imaging.Gray16: imaging.Gray16,
		}},
		{"invert", Invert{}, InPlace, map[imaging.Layout]imaging.Layout{
			imaging.Indexed8: imaging.Indexed8, imaging.RGB24: imaging.RGB24,
			imaging.Gray16: imaging.Gray16, imaging.RGB48: imaging.RGB48,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.f.Kind())
			for _, l := range all {
				out, ok := tt.f.Translate(l)
				want, accepted := tt.accept[l]
				assert.Equal(t, accepted, ok, "layout %v", l)
				if accepted {
					assert.Equal(t, want, out, "layout %v", l)
				}
			}
		})
	}
	assert.Equal(t, Resize, NewCrop(imaging.Rect{Width: 1, Height: 1}).Kind())
	_, ok := NewCrop(imaging.Rect{}).Translate(imaging.PARGB32)
	assert.False(t, ok)
}

func TestUnsupportedLayout(t *testing.T) {
	rgb := newBuf(t, 3, 3, imaging.RGB24)
	_, err := NewThreshold(10).Apply(rgb)
	assert.ErrorIs(t, err, imaging.ErrUnsupportedLayout)

	gray := newBuf(t, 3, 3, imaging.Indexed8)
	_, err = NewGrayscale(imaging.BT709).Apply(gray)
	assert.ErrorIs(t, err, imaging.ErrUnsupportedLayout)

	argb := newBuf(t, 3, 3, imaging.ARGB32)
	assert.ErrorIs(t, Invert{}.ApplyInPlace(argb), imaging.ErrUnsupportedLayout)

	parg := newBuf(t, 3, 3, imaging.PARGB32)
	assert.ErrorIs(t, NewCanvasMove(imaging.Point{X: 1}).ApplyInPlace(parg), imaging.ErrUnsupportedLayout)
}

func TestGrayscale_FixedPoint(t *testing.T) {
	src := newBuf(t, 3, 1, imaging.RGB24)
	src.Set(0, 0, imaging.Color{R: 255})
	src.Set(1, 0, imaging.Color{G: 255})
	src.Set(2, 0, imaging.White)

	dst, err := NewGrayscale(imaging.BT709).Apply(src)
	require.NoError(t, err)
	require.Equal(t, imaging.Indexed8, dst.Layout())

	// (13926*255)>>16 = 54, (46884*255)>>16 = 182, and the three weights sum
	// to 65535 so white maps to 254.
	assert.Equal(t, []byte{54, 182, 254}, dst.Row(0))
}

func TestGrayscale_16Bit(t *testing.T) {
	src := newBuf(t, 1, 1, imaging.RGB48)
	src.SetSample16(0, 0, imaging.ChannelR, 10000)
	src.SetSample16(0, 0, imaging.ChannelG, 20000)
	src.SetSample16(0, 0, imaging.ChannelB, 30000)

	dst, err := NewGrayscale(imaging.BT601Y).Apply(src)
	require.NoError(t, err)
	require.Equal(t, imaging.Gray16, dst.Layout())

	v, err := dst.Sample16(0, 0, 0)
	require.NoError(t, err)
	want := uint16(0.299*10000 + 0.587*20000 + 0.114*30000)
	assert.InDelta(t, want, v, 1)
}

func TestThreshold(t *testing.T) {
	src := gray8(t, [][]byte{{0, 127, 128, 255}})
	dst, err := NewThreshold(128).Apply(src)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 255, 255}, dst.Row(0))
	assert.Equal(t, []byte{0, 127, 128, 255}, src.Row(0), "Apply must not modify its input")
}

func TestThreshold_Idempotent(t *testing.T) {
	src := gray8(t, [][]byte{
		{3, 90, 200, 128},
		{250, 17, 64, 129},
	})
	f := NewThreshold(100)
	once, err := f.Apply(src)
	require.NoError(t, err)
	twice, err := f.Apply(once)
	require.NoError(t, err)
	assert.Equal(t, rows8(once), rows8(twice))
}

func TestThreshold_Gray16AndRect(t *testing.T) {
	b := newBuf(t, 3, 1, imaging.Gray16)
	b.SetSample16(0, 0, 0, 999)
	b.SetSample16(1, 0, 0, 1000)
	b.SetSample16(2, 0, 0, 60000)
	require.NoError(t, NewThreshold(1000).ApplyRect(b, imaging.Rect{X: 1, Width: 5, Height: 1}))

	got := []uint16{}
	for x := 0; x < 3; x++ {
		v, _ := b.Sample16(x, 0, 0)
		got = append(got, v)
	}
	assert.Equal(t, []uint16{999, 65535, 65535}, got)
}

func TestCrop(t *testing.T) {
	src := gray8(t, [][]byte{
		{1, 2, 3},
		{4, 5, 6},
		{7, 8, 9},
	})

	tests := []struct {
		name string
		r    imaging.Rect
		want [][]byte
	}{
		{"inner", imaging.Rect{X: 1, Y: 1, Width: 2, Height: 2}, [][]byte{{5, 6}, {8, 9}}},
		{"full", imaging.Rect{Width: 3, Height: 3}, [][]byte{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}},
		{"negative origin", imaging.Rect{X: -1, Y: -1, Width: 3, Height: 3}, [][]byte{{0, 0, 0}, {0, 1, 2}, {0, 4, 5}}},
		{"padded", imaging.Rect{X: 1, Y: 2, Width: 3, Height: 2}, [][]byte{{8, 9, 0}, {0, 0, 0}}},
		{"disjoint", imaging.Rect{X: 5, Y: 5, Width: 2, Height: 1}, [][]byte{{0, 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst, err := NewCrop(tt.r).Apply(src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rows8(dst))
		})
	}

	_, err := NewCrop(imaging.Rect{Width: 0, Height: 3}).Apply(src)
	assert.ErrorIs(t, err, imaging.ErrInvalidDimensions)
}

func TestCrop_RGB24(t *testing.T) {
	src := newBuf(t, 4, 4, imaging.RGB24)
	src.Set(3, 3, imaging.Color{R: 7, G: 8, B: 9})
	dst, err := NewCrop(imaging.Rect{X: 2, Y: 2, Width: 2, Height: 2}).Apply(src)
	require.NoError(t, err)
	c, err := dst.At(1, 1)
	require.NoError(t, err)
	assert.Equal(t, imaging.Color{R: 7, G: 8, B: 9, A: 255}, c)
}

func TestInvert(t *testing.T) {
	src := gray8(t, [][]byte{
		{0, 10, 255},
		{100, 200, 50},
	})
	dst, err := Invert{}.Apply(src)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{{255, 245, 0}, {155, 55, 205}}, rows8(dst))

	require.NoError(t, Invert{}.ApplyRect(src, imaging.Rect{X: 1, Y: 1, Width: 9, Height: 9}))
	assert.Equal(t, [][]byte{{0, 10, 255}, {100, 55, 205}}, rows8(src))

	wide := newBuf(t, 1, 1, imaging.Gray16)
	wide.SetSample16(0, 0, 0, 1234)
	require.NoError(t, Invert{}.ApplyInPlace(wide))
	v, _ := wide.Sample16(0, 0, 0)
	assert.Equal(t, uint16(65535-1234), v)
}

func TestCanvasMove(t *testing.T) {
	src := gray8(t, [][]byte{
		{1, 2, 3},
		{4, 5, 6},
		{7, 8, 9},
	})

	tests := []struct {
		name   string
		offset imaging.Point
		want   [][]byte
	}{
		{"right down", imaging.Point{X: 1, Y: 1}, [][]byte{{255, 255, 255}, {255, 1, 2}, {255, 4, 5}}},
		{"left up", imaging.Point{X: -1, Y: -1}, [][]byte{{5, 6, 255}, {8, 9, 255}, {255, 255, 255}}},
		{"right up", imaging.Point{X: 2, Y: -1}, [][]byte{{255, 255, 4}, {255, 255, 7}, {255, 255, 255}}},
		{"none", imaging.Point{}, [][]byte{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}},
		{"off canvas", imaging.Point{X: 5}, [][]byte{{255, 255, 255}, {255, 255, 255}, {255, 255, 255}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst, err := NewCanvasMove(tt.offset).Apply(src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rows8(dst))
		})
	}
}

func TestCanvasMove_ColorFill(t *testing.T) {
	b := newBuf(t, 2, 1, imaging.ARGB32)
	b.Set(0, 0, imaging.Color{R: 9, G: 9, B: 9, A: 9})

	m := CanvasMove{Offset: imaging.Point{X: 1}, FillColor: imaging.Color{R: 1, G: 2, B: 3, A: 4}}
	require.NoError(t, m.ApplyInPlace(b))

	c0, _ := b.At(0, 0)
	c1, _ := b.At(1, 0)
	assert.Equal(t, imaging.Color{R: 1, G: 2, B: 3, A: 4}, c0)
	assert.Equal(t, imaging.Color{R: 9, G: 9, B: 9, A: 9}, c1)
}

func TestCanvasMove_Gray16FillShifted(t *testing.T) {
	b := newBuf(t, 2, 1, imaging.Gray16)
	require.NoError(t, CanvasMove{Offset: imaging.Point{X: 1}, FillGray: 0x12}.ApplyInPlace(b))
	v, _ := b.Sample16(0, 0, 0)
	assert.Equal(t, uint16(0x1200), v)
}

func TestSequence(t *testing.T) {
	src := newBuf(t, 2, 1, imaging.RGB24)
	src.Set(0, 0, imaging.Color{R: 200, G: 200, B: 200})
	src.Set(1, 0, imaging.Color{R: 20, G: 20, B: 20})

	seq := Sequence{NewGrayscale(imaging.BT709), NewThreshold(128), Invert{}}
	out, ok := seq.Translate(imaging.RGB24)
	assert.True(t, ok)
	assert.Equal(t, imaging.Indexed8, out)

	dst, err := seq.Apply(src)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 255}, dst.Row(0))

	_, err = Sequence{NewThreshold(1)}.Apply(src)
	assert.ErrorIs(t, err, imaging.ErrUnsupportedLayout)

	empty, err := Sequence{}.Apply(src)
	require.NoError(t, err)
	assert.NotSame(t, src, empty)
}
