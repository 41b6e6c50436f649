package imaging

import (
	"encoding/binary"
	"fmt"
)

// Buffer is an exclusively owned block of pixels.
//
// The pixel at (x, y) starts at byte y*Stride() + x*Layout().BytesPerPixel().
// Stride is always a multiple of four and at least width*BytesPerPixel.
type Buffer struct {
	pix    []byte
	width  int
	height int
	stride int
	layout Layout
}

// New allocates a zero-filled buffer.
//
// Parameters:
//   - width, height: Image size in pixels. Both must be positive.
//   - layout: One of the supported layouts.
//
// # Errors
//
//   - ErrInvalidDimensions if width or height is not positive
//   - ErrUnsupportedLayout if layout has no defined pixel size
func New(width, height int, layout Layout) (*Buffer, error) {
	if !layout.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedLayout, layout)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	stride := layout.Stride(width)
	return &Buffer{
		pix:    make([]byte, stride*height),
		width:  width,
		height: height,
		stride: stride,
		layout: layout,
	}, nil
}

// FromPix wraps existing pixel data without copying. The buffer takes
// ownership of pix; the caller must not modify it afterwards.
//
// # Errors
//
//   - ErrUnsupportedLayout for an unknown layout
//   - ErrInvalidDimensions for non-positive sizes, a stride that cannot hold
//     a row, or a slice shorter than stride*height
func FromPix(pix []byte, width, height, stride int, layout Layout) (*Buffer, error) {
	if !layout.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedLayout, layout)
	}
	if width <= 0 || height <= 0 || stride < width*layout.BytesPerPixel() || len(pix) < stride*height {
		return nil, fmt.Errorf("%w: %dx%d stride %d with %d bytes", ErrInvalidDimensions, width, height, stride, len(pix))
	}
	return &Buffer{
		pix:    pix[:stride*height],
		width:  width,
		height: height,
		stride: stride,
		layout: layout,
	}, nil
}

// Width returns the image width in pixels.
func (b *Buffer) Width() int { return b.width }

// Height returns the image height in pixels.
func (b *Buffer) Height() int { return b.height }

// Stride returns the row size in bytes.
func (b *Buffer) Stride() int { return b.stride }

// Layout returns the pixel layout.
func (b *Buffer) Layout() Layout { return b.layout }

// Bounds returns the rectangle {0, 0, Width, Height}.
func (b *Buffer) Bounds() Rect { return Rect{Width: b.width, Height: b.height} }

// Pix returns the raw pixel bytes, including row padding. It is meant for
// tight inner loops that index the data with Stride directly.
func (b *Buffer) Pix() []byte { return b.pix }

// Row returns the bytes of row y without padding.
func (b *Buffer) Row(y int) []byte {
	start := y * b.stride
	return b.pix[start : start+b.width*b.layout.BytesPerPixel()]
}

// Offset returns the index in Pix of the first byte of pixel (x, y).
func (b *Buffer) Offset(x, y int) int {
	return y*b.stride + x*b.layout.BytesPerPixel()
}

func (b *Buffer) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.width && y < b.height
}

// At returns the color at (x, y).
//
// Single-sample layouts return an opaque gray. 16-bit layouts return the high
// byte of every sample. Premultiplied layouts are converted back to straight
// alpha.
//
// # Errors
//
//   - ErrOutOfBounds if (x, y) lies outside the buffer
func (b *Buffer) At(x, y int) (Color, error) {
	if !b.inside(x, y) {
		return Color{}, fmt.Errorf("%w: (%d,%d) in %dx%d", ErrOutOfBounds, x, y, b.width, b.height)
	}
	p := b.pix[b.Offset(x, y):]
	switch b.layout {
	case Indexed8:
		return Gray(p[0]), nil
	case Gray16:
		return Gray(p[1]), nil
	case RGB24, RGB32:
		return Color{R: p[ChannelR], G: p[ChannelG], B: p[ChannelB], A: 255}, nil
	case ARGB32:
		return Color{R: p[ChannelR], G: p[ChannelG], B: p[ChannelB], A: p[ChannelA]}, nil
	case PARGB32:
		a := p[ChannelA]
		return Color{R: unpremultiply(p[ChannelR], a), G: unpremultiply(p[ChannelG], a), B: unpremultiply(p[ChannelB], a), A: a}, nil
	case RGB48:
		return Color{R: p[2*ChannelR+1], G: p[2*ChannelG+1], B: p[2*ChannelB+1], A: 255}, nil
	case ARGB64:
		return Color{R: p[2*ChannelR+1], G: p[2*ChannelG+1], B: p[2*ChannelB+1], A: p[2*ChannelA+1]}, nil
	case PARGB64:
		a := binary.LittleEndian.Uint16(p[2*ChannelA:])
		return Color{
			R: uint8(unpremultiply16(binary.LittleEndian.Uint16(p[2*ChannelR:]), a) >> 8),
			G: uint8(unpremultiply16(binary.LittleEndian.Uint16(p[2*ChannelG:]), a) >> 8),
			B: uint8(unpremultiply16(binary.LittleEndian.Uint16(p[2*ChannelB:]), a) >> 8),
			A: uint8(a >> 8),
		}, nil
	}
	return Color{}, fmt.Errorf("%w: %v", ErrUnsupportedLayout, b.layout)
}

// Set writes c at (x, y). Writes outside the buffer are ignored.
//
// Single-sample layouts store the BT709 luma of c. 16-bit layouts store each
// channel shifted into the high byte. Layouts without alpha drop c.A.
func (b *Buffer) Set(x, y int, c Color) {
	if !b.inside(x, y) {
		return
	}
	b.set(b.Offset(x, y), c)
}

// SetPixels writes c at every point. Points outside the buffer are skipped.
func (b *Buffer) SetPixels(points []Point, c Color) {
	for _, pt := range points {
		b.Set(pt.X, pt.Y, c)
	}
}

func (b *Buffer) set(off int, c Color) {
	p := b.pix[off:]
	switch b.layout {
	case Indexed8:
		p[0] = BT709.Gray8(c.R, c.G, c.B)
	case Gray16:
		binary.LittleEndian.PutUint16(p, uint16(BT709.Gray8(c.R, c.G, c.B))<<8)
	case RGB24, RGB32:
		p[ChannelR], p[ChannelG], p[ChannelB] = c.R, c.G, c.B
	case ARGB32:
		p[ChannelR], p[ChannelG], p[ChannelB], p[ChannelA] = c.R, c.G, c.B, c.A
	case PARGB32:
		p[ChannelR] = premultiply(c.R, c.A)
		p[ChannelG] = premultiply(c.G, c.A)
		p[ChannelB] = premultiply(c.B, c.A)
		p[ChannelA] = c.A
	case RGB48:
		binary.LittleEndian.PutUint16(p[2*ChannelR:], uint16(c.R)<<8)
		binary.LittleEndian.PutUint16(p[2*ChannelG:], uint16(c.G)<<8)
		binary.LittleEndian.PutUint16(p[2*ChannelB:], uint16(c.B)<<8)
	case ARGB64:
		binary.LittleEndian.PutUint16(p[2*ChannelR:], uint16(c.R)<<8)
		binary.LittleEndian.PutUint16(p[2*ChannelG:], uint16(c.G)<<8)
		binary.LittleEndian.PutUint16(p[2*ChannelB:], uint16(c.B)<<8)
		binary.LittleEndian.PutUint16(p[2*ChannelA:], uint16(c.A)<<8)
	case PARGB64:
		binary.LittleEndian.PutUint16(p[2*ChannelR:], uint16(premultiply(c.R, c.A))<<8)
		binary.LittleEndian.PutUint16(p[2*ChannelG:], uint16(premultiply(c.G, c.A))<<8)
		binary.LittleEndian.PutUint16(p[2*ChannelB:], uint16(premultiply(c.B, c.A))<<8)
		binary.LittleEndian.PutUint16(p[2*ChannelA:], uint16(c.A)<<8)
	}
}

// Sample16 returns channel ch of the 16-bit pixel at (x, y). For Gray16 the
// channel is ignored.
//
// # Errors
//
//   - ErrOutOfBounds if (x, y) lies outside the buffer
//   - ErrUnsupportedLayout for 8-bit layouts
func (b *Buffer) Sample16(x, y, ch int) (uint16, error) {
	if b.layout.SampleSize() != 2 {
		return 0, fmt.Errorf("%w: %v has 8-bit samples", ErrUnsupportedLayout, b.layout)
	}
	if !b.inside(x, y) {
		return 0, fmt.Errorf("%w: (%d,%d) in %dx%d", ErrOutOfBounds, x, y, b.width, b.height)
	}
	off := b.Offset(x, y)
	if b.layout != Gray16 {
		off += 2 * ch
	}
	return binary.LittleEndian.Uint16(b.pix[off:]), nil
}

// SetSample16 writes a 16-bit sample. Writes outside the buffer and on 8-bit
// layouts are ignored.
func (b *Buffer) SetSample16(x, y, ch int, v uint16) {
	if b.layout.SampleSize() != 2 || !b.inside(x, y) {
		return
	}
	off := b.Offset(x, y)
	if b.layout != Gray16 {
		off += 2 * ch
	}
	binary.LittleEndian.PutUint16(b.pix[off:], v)
}

// CopyTo copies every pixel into dst.
//
// # Errors
//
//   - ErrIncompatibleBuffer if dst differs in width, height or layout
func (b *Buffer) CopyTo(dst *Buffer) error {
	if dst == nil || dst.width != b.width || dst.height != b.height || dst.layout != b.layout {
		return fmt.Errorf("%w: cannot copy %dx%d %v into destination", ErrIncompatibleBuffer, b.width, b.height, b.layout)
	}
	if dst.stride == b.stride {
		copy(dst.pix, b.pix)
		return nil
	}
	for y := 0; y < b.height; y++ {
		copy(dst.Row(y), b.Row(y))
	}
	return nil
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	pix := make([]byte, len(b.pix))
	copy(pix, b.pix)
	return &Buffer{pix: pix, width: b.width, height: b.height, stride: b.stride, layout: b.layout}
}

// Crop copies the pixels inside r into a new buffer of the same layout.
// The rectangle is intersected with the buffer bounds first.
//
// # Errors
//
//   - ErrInvalidDimensions if r does not overlap the buffer
func (b *Buffer) Crop(r Rect) (*Buffer, error) {
	r = r.Intersect(b.Bounds())
	if r.Empty() {
		return nil, fmt.Errorf("%w: crop rectangle outside %dx%d image", ErrInvalidDimensions, b.width, b.height)
	}
	dst, err := New(r.Width, r.Height, b.layout)
	if err != nil {
		return nil, err
	}
	bpp := b.layout.BytesPerPixel()
	for y := 0; y < r.Height; y++ {
		src := b.pix[b.Offset(r.X, r.Y+y):]
		copy(dst.Row(y), src[:r.Width*bpp])
	}
	return dst, nil
}

// ActivePixels returns every pixel inside r (intersected with the bounds)
// whose sample, or any of whose R, G, B samples, is non-zero.
func (b *Buffer) ActivePixels(r Rect) []Point {
	r = r.Intersect(b.Bounds())
	var points []Point
	bpp := b.layout.BytesPerPixel()
	wide := b.layout.SampleSize() == 2
	for y := r.Y; y < r.Bottom(); y++ {
		for x := r.X; x < r.Right(); x++ {
			p := b.pix[y*b.stride+x*bpp:]
			var active bool
			switch {
			case b.layout.Gray() && wide:
				active = p[0] != 0 || p[1] != 0
			case b.layout.Gray():
				active = p[0] != 0
			case wide:
				for ch := ChannelB; ch <= ChannelR; ch++ {
					if p[2*ch] != 0 || p[2*ch+1] != 0 {
						active = true
					}
				}
			default:
				active = p[ChannelR] != 0 || p[ChannelG] != 0 || p[ChannelB] != 0
			}
			if active {
				points = append(points, Point{X: x, Y: y})
			}
		}
	}
	return points
}

// Collect8 returns the samples at the given points: one value per point for
// Indexed8, or R, G, B triples for 24/32-bit layouts.
//
// # Errors
//
//   - ErrUnsupportedLayout for 16-bit layouts
//   - ErrOutOfBounds if a point lies outside the buffer
func (b *Buffer) Collect8(points []Point) ([]byte, error) {
	if b.layout.SampleSize() != 1 {
		return nil, fmt.Errorf("%w: %v has 16-bit samples", ErrUnsupportedLayout, b.layout)
	}
	n := 3
	if b.layout == Indexed8 {
		n = 1
	}
	values := make([]byte, 0, len(points)*n)
	for _, pt := range points {
		if !b.inside(pt.X, pt.Y) {
			return nil, fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, pt.X, pt.Y)
		}
		p := b.pix[b.Offset(pt.X, pt.Y):]
		if n == 1 {
			values = append(values, p[0])
		} else {
			values = append(values, p[ChannelR], p[ChannelG], p[ChannelB])
		}
	}
	return values, nil
}

// Collect16 is the 16-bit counterpart of Collect8.
func (b *Buffer) Collect16(points []Point) ([]uint16, error) {
	if b.layout.SampleSize() != 2 {
		return nil, fmt.Errorf("%w: %v has 8-bit samples", ErrUnsupportedLayout, b.layout)
	}
	n := 3
	if b.layout == Gray16 {
		n = 1
	}
	values := make([]uint16, 0, len(points)*n)
	for _, pt := range points {
		if !b.inside(pt.X, pt.Y) {
			return nil, fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, pt.X, pt.Y)
		}
		p := b.pix[b.Offset(pt.X, pt.Y):]
		if n == 1 {
			values = append(values, binary.LittleEndian.Uint16(p))
		} else {
			values = append(values,
				binary.LittleEndian.Uint16(p[2*ChannelR:]),
				binary.LittleEndian.Uint16(p[2*ChannelG:]),
				binary.LittleEndian.Uint16(p[2*ChannelB:]))
		}
	}
	return values, nil
}

// Fill sets every pixel to c.
func (b *Buffer) Fill(c Color) {
	bpp := b.layout.BytesPerPixel()
	if b.height == 0 {
		return
	}
	// Write the first row pixel by pixel, then replicate it.
	for x := 0; x < b.width; x++ {
		b.set(x*bpp, c)
	}
	first := b.Row(0)
	for y := 1; y < b.height; y++ {
		copy(b.Row(y), first)
	}
}

func premultiply(c, a uint8) uint8 {
	return uint8(uint16(c) * uint16(a) / 255)
}

func unpremultiply(c, a uint8) uint8 {
	if a == 0 {
		return 0
	}
	v := uint16(c) * 255 / uint16(a)
	if v > 255 {
		v = 255
	}
	return uint8(v)
}

func unpremultiply16(c, a uint16) uint16 {
	if a == 0 {
		return 0
	}
	v := uint32(c) * 65535 / uint32(a)
	if v > 65535 {
		v = 65535
	}
	return uint16(v)
}
