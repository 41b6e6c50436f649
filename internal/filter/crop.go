package filter

import (
	"github.com/20154530/NeusoftKQ/internal/imaging"
)

// Crop extracts Rect from the source image.
//
// The output always has the size of Rect. Only the part of Rect that overlaps
// the source is copied; when Rect starts at a negative coordinate the copied
// block is shifted accordingly, and any destination pixel not covered by the
// source stays zero.
type Crop struct {
	Rect imaging.Rect
}

// NewCrop returns a Crop filter for r.
func NewCrop(r imaging.Rect) Crop { return Crop{Rect: r} }

// Kind implements Filter.
func (Crop) Kind() Kind { return Resize }

// Translate implements Filter.
func (Crop) Translate(in imaging.Layout) (imaging.Layout, bool) {
	switch in {
	case imaging.Indexed8, imaging.Gray16, imaging.RGB24, imaging.RGB32,
		imaging.ARGB32, imaging.RGB48, imaging.ARGB64:
		return in, true
	}
	return 0, false
}

// Apply implements Filter.
func (c Crop) Apply(src *imaging.Buffer) (*imaging.Buffer, error) {
	if err := check(c, src.Layout()); err != nil {
		return nil, err
	}
	dst, err := imaging.New(c.Rect.Width, c.Rect.Height, src.Layout())
	if err != nil {
		return nil, err
	}

	in := c.Rect.Intersect(src.Bounds())
	if in.Empty() {
		return dst, nil
	}
	bpp := src.Layout().BytesPerPixel()
	dx, dy := in.X-c.Rect.X, in.Y-c.Rect.Y
	for y := 0; y < in.Height; y++ {
		from := src.Pix()[src.Offset(in.X, in.Y+y):]
		to := dst.Pix()[dst.Offset(dx, dy+y):]
		copy(to[:in.Width*bpp], from[:in.Width*bpp])
	}
	return dst, nil
}
