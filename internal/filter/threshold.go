package filter

import (
	"encoding/binary"

	"github.com/20154530/NeusoftKQ/internal/imaging"
)

// DefaultThreshold is the binarization level used when none is configured.
const DefaultThreshold = 128

// Threshold binarizes single-sample images: samples greater than or equal to
// Level become the maximum value (255 or 65535), everything else becomes 0.
// Level is expressed in the native sample range of the image.
type Threshold struct {
	Level int
}

// NewThreshold returns a Threshold filter with the given level.
func NewThreshold(level int) Threshold { return Threshold{Level: level} }

// Kind implements Filter.
func (Threshold) Kind() Kind { return InPlace }

// Translate implements Filter.
func (Threshold) Translate(in imaging.Layout) (imaging.Layout, bool) {
	if in == imaging.Indexed8 || in == imaging.Gray16 {
		return in, true
	}
	return 0, false
}

// Apply implements Filter.
func (t Threshold) Apply(src *imaging.Buffer) (*imaging.Buffer, error) {
	return applyInPlace(t, src)
}

// ApplyInPlace implements InPlaceFilter.
func (t Threshold) ApplyInPlace(buf *imaging.Buffer) error {
	return t.ApplyRect(buf, buf.Bounds())
}

// ApplyRect implements PartialFilter.
func (t Threshold) ApplyRect(buf *imaging.Buffer, r imaging.Rect) error {
	if err := check(t, buf.Layout()); err != nil {
		return err
	}
	r = r.Intersect(buf.Bounds())
	pix := buf.Pix()

	if buf.Layout() == imaging.Indexed8 {
		for y := r.Y; y < r.Bottom(); y++ {
			row := pix[buf.Offset(r.X, y):]
			for x := 0; x < r.Width; x++ {
				if int(row[x]) >= t.Level {
					row[x] = 255
				} else {
					row[x] = 0
				}
			}
		}
		return nil
	}

	for y := r.Y; y < r.Bottom(); y++ {
		row := pix[buf.Offset(r.X, y):]
		for x := 0; x < r.Width; x++ {
			v := uint16(0)
			if int(binary.LittleEndian.Uint16(row[2*x:])) >= t.Level {
				v = 65535
			}
			binary.LittleEndian.PutUint16(row[2*x:], v)
		}
	}
	return nil
}
