package filter

import (
	"github.com/20154530/NeusoftKQ/internal/imaging"
)

// Invert replaces every sample v with max-v, where max is 255 or 65535.
type Invert struct{}

// Kind implements Filter.
func (Invert) Kind() Kind { return InPlace }

// Translate implements Filter.
func (Invert) Translate(in imaging.Layout) (imaging.Layout, bool) {
	switch in {
	case imaging.Indexed8, imaging.RGB24, imaging.Gray16, imaging.RGB48:
		return in, true
	}
	return 0, false
}

// Apply implements Filter.
func (f Invert) Apply(src *imaging.Buffer) (*imaging.Buffer, error) {
	return applyInPlace(f, src)
}

// ApplyInPlace implements InPlaceFilter.
func (f Invert) ApplyInPlace(buf *imaging.Buffer) error {
	return f.ApplyRect(buf, buf.Bounds())
}

// ApplyRect implements PartialFilter.
//
// Both 8-bit and 16-bit samples are inverted by complementing every byte:
// for a little-endian word, ^lo and ^hi together equal 65535-v.
func (f Invert) ApplyRect(buf *imaging.Buffer, r imaging.Rect) error {
	if err := check(f, buf.Layout()); err != nil {
		return err
	}
	r = r.Intersect(buf.Bounds())
	n := r.Width * buf.Layout().BytesPerPixel()
	pix := buf.Pix()
	for y := r.Y; y < r.Bottom(); y++ {
		row := pix[buf.Offset(r.X, y):]
		for i := 0; i < n; i++ {
			row[i] = 255 - row[i]
		}
	}
	return nil
}
