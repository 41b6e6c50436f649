package blob

import (
	"fmt"

	"github.com/20154530/NeusoftKQ/internal/filter"
	"github.com/20154530/NeusoftKQ/internal/imaging"
)

// Filtering is an in-place filter that erases every pixel not belonging to a
// blob accepted by Checker. Erased pixels are set to zero.
type Filtering struct {
	Checker    Checker
	Background imaging.RGB
}

// NewFiltering returns a Filtering that keeps blobs accepted by keep.
func NewFiltering(keep Checker) Filtering { return Filtering{Checker: keep} }

// Kind implements filter.Filter.
func (Filtering) Kind() filter.Kind { return filter.InPlace }

// Translate implements filter.Filter.
func (Filtering) Translate(in imaging.Layout) (imaging.Layout, bool) {
	switch in {
	case imaging.Indexed8, imaging.RGB24, imaging.ARGB32, imaging.PARGB32:
		return in, true
	}
	return 0, false
}

// Apply implements filter.Filter.
func (f Filtering) Apply(src *imaging.Buffer) (*imaging.Buffer, error) {
	dst := src.Clone()
	if err := f.ApplyInPlace(dst); err != nil {
		return nil, err
	}
	return dst, nil
}

// ApplyInPlace implements filter.InPlaceFilter.
func (f Filtering) ApplyInPlace(buf *imaging.Buffer) error {
	if _, ok := f.Translate(buf.Layout()); !ok {
		return fmt.Errorf("%w: blob filtering does not accept %v", imaging.ErrUnsupportedLayout, buf.Layout())
	}
	counter := Counter{Background: f.Background, Filter: f.Checker}
	if err := counter.Process(buf); err != nil {
		return err
	}
	m, _ := counter.Labels()

	bpp := buf.Layout().BytesPerPixel()
	for y := 0; y < buf.Height(); y++ {
		row := buf.Row(y)
		for x := 0; x < buf.Width(); x++ {
			if m.Labels[y*m.Width+x] == 0 {
				clear(row[x*bpp : (x+1)*bpp])
			}
		}
	}
	return nil
}
