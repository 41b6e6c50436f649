package filter

import (
	"fmt"

	"github.com/20154530/NeusoftKQ/internal/imaging"
)

// Kind describes how a filter produces its output.
type Kind int

const (
	// NewImage filters allocate an output of the same size as the input.
	NewImage Kind = iota
	// InPlace filters rewrite their input buffer.
	InPlace
	// Resize filters allocate an output of a different size.
	Resize
)

func (k Kind) String() string {
	switch k {
	case NewImage:
		return "new-image"
	case InPlace:
		return "in-place"
	case Resize:
		return "resize"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Filter is a pixel transformation.
type Filter interface {
	// Kind returns the capability marker of the filter.
	Kind() Kind
	// Translate reports the output layout for an input layout, and whether
	// the input layout is accepted at all.
	Translate(in imaging.Layout) (imaging.Layout, bool)
	// Apply runs the filter without modifying src.
	Apply(src *imaging.Buffer) (*imaging.Buffer, error)
}

// InPlaceFilter is a Filter that can rewrite a buffer it is given.
type InPlaceFilter interface {
	Filter
	ApplyInPlace(buf *imaging.Buffer) error
}

// PartialFilter is an InPlaceFilter that can be limited to a sub-rectangle.
type PartialFilter interface {
	InPlaceFilter
	// ApplyRect limits the filter to r intersected with the buffer bounds.
	ApplyRect(buf *imaging.Buffer, r imaging.Rect) error
}

// Sequence applies filters one after another.
type Sequence []Filter

// Apply runs every filter in order. src is never modified.
func (s Sequence) Apply(src *imaging.Buffer) (*imaging.Buffer, error) {
	cur := src
	for i, f := range s {
		next, err := f.Apply(cur)
		if err != nil {
			return nil, fmt.Errorf("filter %d (%T): %w", i, f, err)
		}
		cur = next
	}
	if cur == src {
		return src.Clone(), nil
	}
	return cur, nil
}

// Translate reports the layout produced by the whole sequence.
func (s Sequence) Translate(in imaging.Layout) (imaging.Layout, bool) {
	cur := in
	for _, f := range s {
		out, ok := f.Translate(cur)
		if !ok {
			return 0, false
		}
		cur = out
	}
	return cur, true
}

func check(f Filter, l imaging.Layout) error {
	if _, ok := f.Translate(l); !ok {
		return fmt.Errorf("%w: %T does not accept %v", imaging.ErrUnsupportedLayout, f, l)
	}
	return nil
}

// applyInPlace implements Apply for in-place filters by running them on a copy.
func applyInPlace(f InPlaceFilter, src *imaging.Buffer) (*imaging.Buffer, error) {
	if err := check(f, src.Layout()); err != nil {
		return nil, err
	}
	dst := src.Clone()
	if err := f.ApplyInPlace(dst); err != nil {
		return nil, err
	}
	return dst, nil
}
