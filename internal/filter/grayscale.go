package filter

import (
	"encoding/binary"

	"github.com/20154530/NeusoftKQ/internal/imaging"
)

// Grayscale reduces color images to a single intensity sample.
//
// 8-bit color layouts (RGB24, RGB32, ARGB32) produce Indexed8 using the
// coefficients in 16.16 fixed point. 16-bit layouts (RGB48, ARGB64) produce
// Gray16 using floating point.
type Grayscale struct {
	Coefficients imaging.Luma
}

// NewGrayscale returns a Grayscale filter with the given weights.
func NewGrayscale(l imaging.Luma) Grayscale { return Grayscale{Coefficients: l} }

// Kind implements Filter.
func (Grayscale) Kind() Kind { return NewImage }

// Translate implements Filter.
func (Grayscale) Translate(in imaging.Layout) (imaging.Layout, bool) {
	switch in {
	case imaging.RGB24, imaging.RGB32, imaging.ARGB32:
		return imaging.Indexed8, true
	case imaging.RGB48, imaging.ARGB64:
		return imaging.Gray16, true
	}
	return 0, false
}

// Apply implements Filter.
func (g Grayscale) Apply(src *imaging.Buffer) (*imaging.Buffer, error) {
	out, ok := g.Translate(src.Layout())
	if !ok {
		return nil, check(g, src.Layout())
	}
	dst, err := imaging.New(src.Width(), src.Height(), out)
	if err != nil {
		return nil, err
	}

	bpp := src.Layout().BytesPerPixel()
	if out == imaging.Indexed8 {
		rc, gc, bc := g.Coefficients.Fixed()
		for y := 0; y < src.Height(); y++ {
			in, row := src.Row(y), dst.Row(y)
			for x := range row {
				p := in[x*bpp:]
				row[x] = byte((rc*int(p[imaging.ChannelR]) + gc*int(p[imaging.ChannelG]) + bc*int(p[imaging.ChannelB])) >> 16)
			}
		}
		return dst, nil
	}

	c := g.Coefficients
	for y := 0; y < src.Height(); y++ {
		in, row := src.Row(y), dst.Row(y)
		for x := 0; x < src.Width(); x++ {
			p := in[x*bpp:]
			r := float64(binary.LittleEndian.Uint16(p[2*imaging.ChannelR:]))
			gr := float64(binary.LittleEndian.Uint16(p[2*imaging.ChannelG:]))
			b := float64(binary.LittleEndian.Uint16(p[2*imaging.ChannelB:]))
			binary.LittleEndian.PutUint16(row[2*x:], uint16(c.Red*r+c.Green*gr+c.Blue*b))
		}
	}
	return dst, nil
}
