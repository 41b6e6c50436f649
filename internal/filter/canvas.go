package filter

import (
	"encoding/binary"

	"github.com/20154530/NeusoftKQ/internal/imaging"
)

// CanvasMove translates the image content by Offset inside the same canvas.
// Pixels that have no source after the move are set to the fill color:
// FillGray for single-sample layouts and FillColor for color layouts. 16-bit
// layouts use the fill values shifted into the high byte.
//
// The move is done in place. Rows and columns are visited from the far edge
// when the offset on that axis is positive, so every source pixel is read
// before it is overwritten.
type CanvasMove struct {
	Offset    imaging.Point
	FillColor imaging.Color
	FillGray  uint8
}

// NewCanvasMove returns a CanvasMove with a white fill.
func NewCanvasMove(offset imaging.Point) CanvasMove {
	return CanvasMove{Offset: offset, FillColor: imaging.White, FillGray: 255}
}

// Kind implements Filter.
func (CanvasMove) Kind() Kind { return InPlace }

// Translate implements Filter.
func (CanvasMove) Translate(in imaging.Layout) (imaging.Layout, bool) {
	switch in {
	case imaging.Indexed8, imaging.Gray16, imaging.RGB24, imaging.RGB32,
		imaging.ARGB32, imaging.RGB48, imaging.ARGB64:
		return in, true
	}
	return 0, false
}

// Apply implements Filter.
func (m CanvasMove) Apply(src *imaging.Buffer) (*imaging.Buffer, error) {
	return applyInPlace(m, src)
}

// ApplyInPlace implements InPlaceFilter.
func (m CanvasMove) ApplyInPlace(buf *imaging.Buffer) error {
	if err := check(m, buf.Layout()); err != nil {
		return err
	}
	w, h := buf.Width(), buf.Height()
	mx, my := m.Offset.X, m.Offset.Y
	moved := buf.Bounds().Intersect(imaging.Rect{X: mx, Y: my, Width: w, Height: h})
	fill := m.fillPixel(buf.Layout())
	bpp := len(fill)
	pix := buf.Pix()

	yStart, yStop, yStep := 0, h, 1
	if my > 0 {
		yStart, yStop, yStep = h-1, -1, -1
	}
	xStart, xStop, xStep := 0, w, 1
	if mx > 0 {
		xStart, xStop, xStep = w-1, -1, -1
	}

	for y := yStart; y != yStop; y += yStep {
		for x := xStart; x != xStop; x += xStep {
			dst := pix[buf.Offset(x, y):][:bpp]
			if moved.Contains(x, y) {
				copy(dst, pix[buf.Offset(x-mx, y-my):][:bpp])
			} else {
				copy(dst, fill)
			}
		}
	}
	return nil
}

// fillPixel encodes the fill color as one pixel of the given layout.
func (m CanvasMove) fillPixel(l imaging.Layout) []byte {
	p := make([]byte, l.BytesPerPixel())
	c := m.FillColor
	switch l {
	case imaging.Indexed8:
		p[0] = m.FillGray
	case imaging.Gray16:
		binary.LittleEndian.PutUint16(p, uint16(m.FillGray)<<8)
	case imaging.RGB24:
		p[imaging.ChannelR], p[imaging.ChannelG], p[imaging.ChannelB] = c.R, c.G, c.B
	case imaging.RGB32, imaging.ARGB32:
		p[imaging.ChannelR], p[imaging.ChannelG], p[imaging.ChannelB], p[imaging.ChannelA] = c.R, c.G, c.B, c.A
	case imaging.RGB48, imaging.ARGB64:
		binary.LittleEndian.PutUint16(p[2*imaging.ChannelR:], uint16(c.R)<<8)
		binary.LittleEndian.PutUint16(p[2*imaging.ChannelG:], uint16(c.G)<<8)
		binary.LittleEndian.PutUint16(p[2*imaging.ChannelB:], uint16(c.B)<<8)
		if l == imaging.ARGB64 {
			binary.LittleEndian.PutUint16(p[2*imaging.ChannelA:], uint16(c.A)<<8)
		}
	}
	return p
}
