package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromImage_Gray(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 5, 3))
	src.SetGray(4, 2, color.Gray{Y: 77})

	buf, err := FromImage(src)
	require.NoError(t, err)
	require.Equal(t, Indexed8, buf.Layout())
	c, _ := buf.At(4, 2)
	assert.Equal(t, uint8(77), c.R)
}

func TestFromImage_Gray16(t *testing.T) {
	src := image.NewGray16(image.Rect(0, 0, 2, 2))
	src.SetGray16(1, 0, color.Gray16{Y: 0x1234})

	buf, err := FromImage(src)
	require.NoError(t, err)
	v, err := buf.Sample16(1, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), v)
}

func TestFromImage_FlattensAlphaOverWhite(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	// (1,0) stays fully transparent.

	buf, err := FromImage(src)
	require.NoError(t, err)
	require.Equal(t, RGB24, buf.Layout())

	c, _ := buf.At(0, 0)
	assert.Equal(t, Color{R: 10, G: 20, B: 30, A: 255}, c, "opaque pixel")
	c, _ = buf.At(1, 0)
	assert.Equal(t, White, c, "transparent pixel")
}

func TestFromImage_OffsetBounds(t *testing.T) {
	src := image.NewGray(image.Rect(10, 10, 14, 12))
	src.SetGray(10, 10, color.Gray{Y: 200})

	buf, err := FromImage(src)
	require.NoError(t, err)
	require.Equal(t, 4, buf.Width())
	require.Equal(t, 2, buf.Height())
	c, _ := buf.At(0, 0)
	assert.Equal(t, uint8(200), c.R)
}

func TestToImage(t *testing.T) {
	g, _ := New(3, 2, Indexed8)
	g.Set(2, 1, Gray(99))
	img, err := ToImage(g)
	require.NoError(t, err)
	gray, ok := img.(*image.Gray)
	require.True(t, ok, "got %T, want *image.Gray", img)
	assert.Equal(t, uint8(99), gray.GrayAt(2, 1).Y)

	c, _ := New(2, 2, ARGB32)
	c.Set(1, 1, Color{R: 1, G: 2, B: 3, A: 4})
	img, err = ToImage(c)
	require.NoError(t, err)
	require.IsType(t, &image.NRGBA{}, img)
	assert.Equal(t, color.NRGBA{R: 1, G: 2, B: 3, A: 4}, img.(*image.NRGBA).NRGBAAt(1, 1))
}

func TestConvert(t *testing.T) {
	src, _ := New(2, 1, RGB24)
	src.Set(0, 0, Color{R: 255, G: 0, B: 0})

	dst, err := Convert(src, Indexed8)
	require.NoError(t, err)
	c, _ := dst.At(0, 0)
	assert.Equal(t, BT709.Gray8(255, 0, 0), c.R)

	same, err := Convert(src, RGB24)
	require.NoError(t, err)
	assert.NotSame(t, src, same, "Convert to the same layout must return a copy")
	assert.Equal(t, src.Pix(), same.Pix())
}
