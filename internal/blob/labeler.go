package blob

import (
	"fmt"

	"github.com/20154530/NeusoftKQ/internal/imaging"
)

// LabelMap assigns every pixel of an image to a blob. Labels[y*Width+x] is 0
// for background and a blob id in 1..Count otherwise.
type LabelMap struct {
	Width  int
	Height int
	Labels []int
	Count  int
}

// At returns the label of pixel (x, y), or 0 outside the map.
func (m *LabelMap) At(x, y int) int {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return 0
	}
	return m.Labels[y*m.Width+x]
}

// accepts reports whether layout can be labeled.
func accepts(l imaging.Layout) bool {
	switch l {
	case imaging.Indexed8, imaging.RGB24, imaging.RGB32, imaging.ARGB32, imaging.PARGB32:
		return true
	}
	return false
}

// Label computes the 8-connected components of buf.
//
// Parameters:
//   - buf: Indexed8, RGB24, RGB32, ARGB32 or PARGB32 image.
//   - background: Per-channel threshold; a pixel is foreground when any of
//     its samples exceeds the matching channel. Indexed8 uses the G channel.
//
// # Errors
//
//   - imaging.ErrUnsupportedLayout for other layouts
//   - imaging.ErrUnsupportedGeometry for an image exactly one pixel wide
//
// # Algorithm
//
// Pixels are visited in raster order. A foreground pixel copies the label of
// the first foreground neighbor among left, upper-left and upper. The
// upper-right neighbor is checked last: it supplies the label when none was
// found, and otherwise its label is unioned with the current one. Pixels
// with no labeled neighbor start a new label. The first row only looks left;
// the first column looks up then upper-right; the last column skips the
// upper-right neighbor.
func Label(buf *imaging.Buffer, background imaging.RGB) (*LabelMap, error) {
	if !accepts(buf.Layout()) {
		return nil, fmt.Errorf("%w: cannot label %v", imaging.ErrUnsupportedLayout, buf.Layout())
	}
	w, h := buf.Width(), buf.Height()
	if w == 1 {
		return nil, fmt.Errorf("%w: cannot label an image one pixel wide", imaging.ErrUnsupportedGeometry)
	}

	fg := foreground(buf, background)
	labels := make([]int, w*h)
	eq := newEquivalence()

	// First row.
	if fg[0] {
		labels[0] = eq.next()
	}
	for x := 1; x < w; x++ {
		if !fg[x] {
			continue
		}
		if fg[x-1] {
			labels[x] = labels[x-1]
		} else {
			labels[x] = eq.next()
		}
	}

	for y := 1; y < h; y++ {
		p := y * w
		up := p - w

		// First column.
		if fg[p] {
			switch {
			case fg[up]:
				labels[p] = labels[up]
			case fg[up+1]:
				labels[p] = labels[up+1]
			default:
				labels[p] = eq.next()
			}
		}

		for x := 1; x < w-1; x++ {
			p, up := y*w+x, (y-1)*w+x
			if !fg[p] {
				continue
			}
			switch {
			case fg[p-1]:
				labels[p] = labels[p-1]
			case fg[up-1]:
				labels[p] = labels[up-1]
			case fg[up]:
				labels[p] = labels[up]
			}
			if fg[up+1] {
				if labels[p] == 0 {
					labels[p] = labels[up+1]
				} else {
					eq.union(labels[p], labels[up+1])
				}
			}
			if labels[p] == 0 {
				labels[p] = eq.next()
			}
		}

		// Last column.
		p, up = y*w+w-1, (y-1)*w+w-1
		if fg[p] {
			switch {
			case fg[p-1]:
				labels[p] = labels[p-1]
			case fg[up-1]:
				labels[p] = labels[up-1]
			case fg[up]:
				labels[p] = labels[up]
			default:
				labels[p] = eq.next()
			}
		}
	}

	remap, count := eq.dense()
	for i, l := range labels {
		labels[i] = remap[l]
	}
	return &LabelMap{Width: w, Height: h, Labels: labels, Count: count}, nil
}

// foreground classifies every pixel of buf against the background threshold.
func foreground(buf *imaging.Buffer, bg imaging.RGB) []bool {
	w, h := buf.Width(), buf.Height()
	fg := make([]bool, w*h)
	bpp := buf.Layout().BytesPerPixel()
	for y := 0; y < h; y++ {
		row := buf.Row(y)
		for x := 0; x < w; x++ {
			if bpp == 1 {
				fg[y*w+x] = row[x] > bg.G
				continue
			}
			px := row[x*bpp:]
			fg[y*w+x] = px[imaging.ChannelR] > bg.R || px[imaging.ChannelG] > bg.G || px[imaging.ChannelB] > bg.B
		}
	}
	return fg
}

// equivalence is a disjoint-set over provisional labels. It is kept fully
// collapsed: after every union each entry points directly at its root.
type equivalence struct {
	root []int
}

func newEquivalence() *equivalence {
	return &equivalence{root: []int{0}}
}

// next allocates a new provisional label.
func (e *equivalence) next() int {
	l := len(e.root)
	e.root = append(e.root, l)
	return l
}

func (e *equivalence) union(l1, l2 int) {
	m := e.root
	if l1 == l2 || m[l1] == m[l2] {
		return
	}
	switch {
	case m[l1] == l1:
		m[l1] = m[l2]
	case m[l2] == l2:
		m[l2] = m[l1]
	default:
		m[m[l1]] = m[l2]
		m[l1] = m[l2]
	}
	for i := 1; i < len(m); i++ {
		if m[i] != i {
			j := m[i]
			for j != m[j] {
				j = m[j]
			}
			m[i] = j
		}
	}
}

// dense maps every provisional label to a final id. Roots receive 1..count
// in increasing label order; other labels share their root's id.
func (e *equivalence) dense() ([]int, int) {
	remap := make([]int, len(e.root))
	count := 0
	for i := 1; i < len(e.root); i++ {
		if e.root[i] == i {
			count++
			remap[i] = count
		}
	}
	for i := 1; i < len(e.root); i++ {
		if e.root[i] != i {
			remap[i] = remap[e.root[i]]
		}
	}
	return remap, count
}
