package blob

import (
	"fmt"
	"math"
	"sort"
)

// Checker decides whether a blob survives filtering.
type Checker interface {
	Keep(b *Blob) bool
}

// Predicate adapts a function to the Checker interface.
type Predicate func(b *Blob) bool

// Keep implements Checker.
func (p Predicate) Keep(b *Blob) bool { return p(b) }

// SizeFilter keeps blobs whose bounding box fits the configured limits.
//
// In the default decoupled mode a blob is removed when its width or its
// height is out of range. With Coupled set a blob is removed only when both
// dimensions are below the minimum, or both are above the maximum, so long
// thin shapes survive.
type SizeFilter struct {
	MinWidth  int  `json:"min_width" yaml:"min_width"`
	MinHeight int  `json:"min_height" yaml:"min_height"`
	MaxWidth  int  `json:"max_width" yaml:"max_width"`
	MaxHeight int  `json:"max_height" yaml:"max_height"`
	Coupled   bool `json:"coupled" yaml:"coupled"`
}

// NewSizeFilter returns a decoupled filter with the given minimums and no
// upper bound.
func NewSizeFilter(minWidth, minHeight int) SizeFilter {
	return SizeFilter{MinWidth: minWidth, MinHeight: minHeight, MaxWidth: math.MaxInt, MaxHeight: math.MaxInt}
}

// Keep implements Checker.
func (f SizeFilter) Keep(b *Blob) bool {
	w, h := b.Rect.Width, b.Rect.Height
	if f.Coupled {
		return !((w < f.MinWidth && h < f.MinHeight) || (w > f.MaxWidth && h > f.MaxHeight))
	}
	return !(w < f.MinWidth || h < f.MinHeight || w > f.MaxWidth || h > f.MaxHeight)
}

// Filter removes the blobs rejected by keep.
//
// Surviving blobs are renumbered 1..N in increasing order of their old ids and
// every entry of m is rewritten through the same mapping, so pixels of
// removed blobs become background. The relative order of blobs is kept.
func Filter(m *LabelMap, blobs []Blob, keep Checker) []Blob {
	remap := make([]int, m.Count+1)
	for i := range blobs {
		if keep.Keep(&blobs[i]) {
			remap[blobs[i].ID] = -1
		}
	}
	next := 0
	for id := 1; id <= m.Count; id++ {
		if remap[id] != 0 {
			next++
			remap[id] = next
		}
	}
	for i, l := range m.Labels {
		m.Labels[i] = remap[l]
	}
	m.Count = next

	kept := make([]Blob, 0, next)
	for _, b := range blobs {
		if id := remap[b.ID]; id != 0 {
			b.ID = id
			kept = append(kept, b)
		}
	}
	return kept
}

// Order selects how blobs are sorted.
type Order int

const (
	// OrderNone keeps blobs in label order.
	OrderNone Order = iota
	// OrderSize sorts by bounding box area, largest first.
	OrderSize
	// OrderArea sorts by pixel count, largest first.
	OrderArea
	// OrderYX sorts top to bottom, then left to right.
	OrderYX
	// OrderXY sorts left to right, then top to bottom.
	OrderXY
)

var orderNames = []string{"none", "size", "area", "yx", "xy"}

func (o Order) String() string {
	if o >= 0 && int(o) < len(orderNames) {
		return orderNames[o]
	}
	return fmt.Sprintf("order(%d)", int(o))
}

// ParseOrder converts a name produced by Order.String back to an Order.
// The empty string means OrderNone.
func ParseOrder(name string) (Order, error) {
	if name == "" {
		return OrderNone, nil
	}
	for i, n := range orderNames {
		if n == name {
			return Order(i), nil
		}
	}
	return OrderNone, fmt.Errorf("unknown blob order: %s", name)
}

// Sort orders blobs in place. Equal keys keep their relative order.
// Positional orders use Y*100000+X (or X*100000+Y) as the key.
func Sort(blobs []Blob, o Order) {
	var key func(b *Blob) int
	switch o {
	case OrderSize:
		key = func(b *Blob) int { return -b.Rect.Width * b.Rect.Height }
	case OrderArea:
		key = func(b *Blob) int { return -b.Area }
	case OrderYX:
		key = func(b *Blob) int { return b.Rect.Y*100000 + b.Rect.X }
	case OrderXY:
		key = func(b *Blob) int { return b.Rect.X*100000 + b.Rect.Y }
	default:
		return
	}
	sort.SliceStable(blobs, func(i, j int) bool {
		return key(&blobs[i]) < key(&blobs[j])
	})
}
