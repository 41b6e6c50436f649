package segment

import (
	"fmt"

	"github.com/20154530/NeusoftKQ/internal/filter"
	"github.com/20154530/NeusoftKQ/internal/imaging"
)

// Glyph is one piece of a segmented image.
type Glyph struct {
	// Rect locates the glyph in the image it was cut from.
	Rect imaging.Rect `json:"rect"`
	// Image holds the glyph pixels.
	Image *imaging.Buffer `json:"-"`
}

// darkCounts returns the number of dark pixels in every column (byColumn) or
// every row of buf. A pixel is dark when its red sample, or its only sample,
// is zero.
func darkCounts(buf *imaging.Buffer, byColumn bool) ([]int, error) {
	var ch int
	switch buf.Layout() {
	case imaging.Indexed8:
	case imaging.RGB24, imaging.RGB32, imaging.ARGB32:
		ch = imaging.ChannelR
	default:
		return nil, fmt.Errorf("%w: cannot split %v", imaging.ErrUnsupportedLayout, buf.Layout())
	}

	n := buf.Height()
	if byColumn {
		n = buf.Width()
	}
	counts := make([]int, n)
	bpp := buf.Layout().BytesPerPixel()
	for y := 0; y < buf.Height(); y++ {
		row := buf.Row(y)
		for x := 0; x < buf.Width(); x++ {
			if row[x*bpp+ch] != 0 {
				continue
			}
			if byColumn {
				counts[x]++
			} else {
				counts[y]++
			}
		}
	}
	return counts, nil
}

// span is an inclusive index range.
type span struct{ first, last int }

// runs groups indexes into runs. Index i belongs to the current run when it
// or index i+1 has a non-zero count, so a single empty line inside a glyph
// does not split it. A run still open at the end is closed there.
func runs(counts []int) []span {
	var (
		out   []span
		cur   span
		inRun bool
	)
	for i := range counts {
		if counts[i] > 0 || (i+1 < len(counts) && counts[i+1] > 0) {
			if !inRun {
				cur.first, inRun = i, true
			}
			cur.last = i
			continue
		}
		if inRun {
			out = append(out, cur)
			inRun = false
		}
	}
	if inRun {
		out = append(out, cur)
	}
	return out
}

// SplitColumns cuts buf into full-height strips separated by at least two
// consecutive columns without dark pixels.
func SplitColumns(buf *imaging.Buffer) ([]Glyph, error) {
	counts, err := darkCounts(buf, true)
	if err != nil {
		return nil, err
	}
	var glyphs []Glyph
	for _, s := range runs(counts) {
		r := imaging.Rect{X: s.first, Y: 0, Width: s.last - s.first + 1, Height: buf.Height()}
		img, err := filter.NewCrop(r).Apply(buf)
		if err != nil {
			return nil, err
		}
		glyphs = append(glyphs, Glyph{Rect: r, Image: img})
	}
	return glyphs, nil
}

// SplitRows cuts g into full-width bands separated by at least two
// consecutive rows without dark pixels. Bands spanning a single row are
// dropped. The returned rects are relative to the image g was cut from.
func SplitRows(g Glyph) ([]Glyph, error) {
	counts, err := darkCounts(g.Image, false)
	if err != nil {
		return nil, err
	}
	var glyphs []Glyph
	for _, s := range runs(counts) {
		if s.last-s.first <= 0 {
			continue
		}
		local := imaging.Rect{X: 0, Y: s.first, Width: g.Image.Width(), Height: s.last - s.first + 1}
		img, err := filter.NewCrop(local).Apply(g.Image)
		if err != nil {
			return nil, err
		}
		r := local
		r.X, r.Y = g.Rect.X, g.Rect.Y+s.first
		glyphs = append(glyphs, Glyph{Rect: r, Image: img})
	}
	return glyphs, nil
}

// Normalize places glyph on a white width x height canvas, centered.
//
// The glyph is inverted, cropped to the canvas size from its top-left
// corner and inverted back, which pads it with white. It is then moved by
// ((width-gw)/2, (height-gh)/2). A glyph larger than the canvas is cut.
func Normalize(glyph *imaging.Buffer, width, height int) (*imaging.Buffer, error) {
	gw, gh := glyph.Width(), glyph.Height()
	img, err := filter.Invert{}.Apply(glyph)
	if err != nil {
		return nil, err
	}
	if img, err = filter.NewCrop(imaging.Rect{Width: width, Height: height}).Apply(img); err != nil {
		return nil, err
	}
	if err := (filter.Invert{}).ApplyInPlace(img); err != nil {
		return nil, err
	}
	move := filter.NewCanvasMove(imaging.Point{X: (width - gw) / 2, Y: (height - gh) / 2})
	if err := move.ApplyInPlace(img); err != nil {
		return nil, err
	}
	return img, nil
}
