package blob

import (
	"fmt"

	"github.com/20154530/NeusoftKQ/internal/imaging"
)

// Counter labels an image and keeps the result for later queries.
//
// The zero value counts every non-zero pixel as foreground, keeps every blob
// and reports blobs in label order.
type Counter struct {
	// Background is the per-channel threshold passed to Label.
	Background imaging.RGB

	// Filter, when non-nil, removes blobs after labeling.
	Filter Checker

	// Order sorts the blobs after filtering.
	Order Order

	labels *LabelMap
	blobs  []Blob
}

// Process labels buf, collects blob statistics, then applies Filter and
// Order. Results of a previous call are discarded.
func (c *Counter) Process(buf *imaging.Buffer) error {
	m, err := Label(buf, c.Background)
	if err != nil {
		return err
	}
	blobs, err := Collect(buf, m)
	if err != nil {
		return err
	}
	if c.Filter != nil {
		blobs = Filter(m, blobs, c.Filter)
	}
	Sort(blobs, c.Order)
	c.labels, c.blobs = m, blobs
	return nil
}

// Count returns the number of blobs found by the last Process call.
func (c *Counter) Count() int {
	if c.labels == nil {
		return 0
	}
	return c.labels.Count
}

// Labels returns the label map of the last Process call.
func (c *Counter) Labels() (*LabelMap, error) {
	if c.labels == nil {
		return nil, imaging.ErrNotProcessed
	}
	return c.labels, nil
}

// Blobs returns a copy of the blob list.
func (c *Counter) Blobs() ([]Blob, error) {
	if c.labels == nil {
		return nil, imaging.ErrNotProcessed
	}
	return append([]Blob(nil), c.blobs...), nil
}

// Rectangles returns the bounding box of every blob, in blob order.
func (c *Counter) Rectangles() ([]imaging.Rect, error) {
	if c.labels == nil {
		return nil, imaging.ErrNotProcessed
	}
	rects := make([]imaging.Rect, len(c.blobs))
	for i, b := range c.blobs {
		rects[i] = b.Rect
	}
	return rects, nil
}

// Objects returns a copy of every blob with its Image extracted from img.
// See ExtractImage.
func (c *Counter) Objects(img *imaging.Buffer, originalSize bool) ([]Blob, error) {
	blobs, err := c.Blobs()
	if err != nil {
		return nil, err
	}
	for i := range blobs {
		if err := c.ExtractImage(img, &blobs[i], originalSize); err != nil {
			return nil, err
		}
	}
	return blobs, nil
}

// ExtractImage copies the pixels of b from img into b.Image. All other pixels
// of the new image are zero.
//
// With originalSize the image has the size of img and the blob stays at its
// position; otherwise the image has the size of b.Rect.
//
// # Errors
//
//   - imaging.ErrNotProcessed before Process
//   - imaging.ErrUnsupportedLayout for layouts other than Indexed8, RGB24,
//     RGB32, ARGB32 and PARGB32
//   - imaging.ErrIncompatibleBuffer if img differs in size from the
//     processed image
func (c *Counter) ExtractImage(img *imaging.Buffer, b *Blob, originalSize bool) error {
	if c.labels == nil {
		return imaging.ErrNotProcessed
	}
	if !accepts(img.Layout()) {
		return fmt.Errorf("%w: cannot extract blobs from %v", imaging.ErrUnsupportedLayout, img.Layout())
	}
	if img.Width() != c.labels.Width || img.Height() != c.labels.Height {
		return fmt.Errorf("%w: %dx%d image for %dx%d label map",
			imaging.ErrIncompatibleBuffer, img.Width(), img.Height(), c.labels.Width, c.labels.Height)
	}

	r := b.Rect
	w, h, ox, oy := r.Width, r.Height, 0, 0
	if originalSize {
		w, h, ox, oy = img.Width(), img.Height(), r.X, r.Y
	}
	dst, err := imaging.New(w, h, img.Layout())
	if err != nil {
		return err
	}

	bpp := img.Layout().BytesPerPixel()
	src, out := img.Pix(), dst.Pix()
	for y := r.Y; y < r.Bottom(); y++ {
		for x := r.X; x < r.Right(); x++ {
			if c.labels.Labels[y*c.labels.Width+x] != b.ID {
				continue
			}
			to := dst.Offset(ox+x-r.X, oy+y-r.Y)
			copy(out[to:to+bpp], src[img.Offset(x, y):])
		}
	}
	b.Image, b.OriginalSize = dst, originalSize
	return nil
}

// LeftRightEdges returns, for every row of b's bounding box, the leftmost and
// rightmost pixel carrying b's label.
func (c *Counter) LeftRightEdges(b *Blob) (left, right []imaging.Point, err error) {
	if c.labels == nil {
		return nil, nil, imaging.ErrNotProcessed
	}
	m, r := c.labels, b.Rect
	for y := r.Y; y < r.Bottom(); y++ {
		for x := r.X; x < r.Right(); x++ {
			if m.At(x, y) == b.ID {
				left = append(left, imaging.Point{X: x, Y: y})
				break
			}
		}
		for x := r.Right() - 1; x >= r.X; x-- {
			if m.At(x, y) == b.ID {
				right = append(right, imaging.Point{X: x, Y: y})
				break
			}
		}
	}
	return left, right, nil
}

// TopBottomEdges returns, for every column of b's bounding box, the topmost
// and bottommost pixel carrying b's label.
func (c *Counter) TopBottomEdges(b *Blob) (top, bottom []imaging.Point, err error) {
	if c.labels == nil {
		return nil, nil, imaging.ErrNotProcessed
	}
	m, r := c.labels, b.Rect
	for x := r.X; x < r.Right(); x++ {
		for y := r.Y; y < r.Bottom(); y++ {
			if m.At(x, y) == b.ID {
				top = append(top, imaging.Point{X: x, Y: y})
				break
			}
		}
		for y := r.Bottom() - 1; y >= r.Y; y-- {
			if m.At(x, y) == b.ID {
				bottom = append(bottom, imaging.Point{X: x, Y: y})
				break
			}
		}
	}
	return top, bottom, nil
}

// EdgePoints returns the outline of b: the left and right edges of every row
// followed by the top and bottom edges of every column, without repeating a
// point already reported as a row edge.
func (c *Counter) EdgePoints(b *Blob) ([]imaging.Point, error) {
	if c.labels == nil {
		return nil, imaging.ErrNotProcessed
	}
	m, r := c.labels, b.Rect
	leftX := make([]int, r.Height)
	rightX := make([]int, r.Height)
	var points []imaging.Point

	for y := r.Y; y < r.Bottom(); y++ {
		row := y - r.Y
		for x := r.X; x < r.Right(); x++ {
			if m.At(x, y) == b.ID {
				points = append(points, imaging.Point{X: x, Y: y})
				leftX[row] = x
				break
			}
		}
		for x := r.Right() - 1; x >= r.X; x-- {
			if m.At(x, y) == b.ID {
				if leftX[row] != x {
					points = append(points, imaging.Point{X: x, Y: y})
				}
				rightX[row] = x
				break
			}
		}
	}

	isRowEdge := func(x, y int) bool {
		return leftX[y-r.Y] == x || rightX[y-r.Y] == x
	}
	for x := r.X; x < r.Right(); x++ {
		for y := r.Y; y < r.Bottom(); y++ {
			if m.At(x, y) == b.ID {
				if !isRowEdge(x, y) {
					points = append(points, imaging.Point{X: x, Y: y})
				}
				break
			}
		}
		for y := r.Bottom() - 1; y >= r.Y; y-- {
			if m.At(x, y) == b.ID {
				if !isRowEdge(x, y) {
					points = append(points, imaging.Point{X: x, Y: y})
				}
				break
			}
		}
	}
	return points, nil
}
