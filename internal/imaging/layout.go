package imaging

import "fmt"

// Layout describes how the pixels of a Buffer are stored in memory.
type Layout int

// Supported layouts. The zero value is not a valid layout.
const (
	Indexed8 Layout = iota + 1 // 8-bit single sample (grayscale index)
	Gray16                     // 16-bit single sample
	RGB24                      // B, G, R
	RGB32                      // B, G, R, unused
	ARGB32                     // B, G, R, A
	PARGB32                    // B, G, R, A with premultiplied color
	RGB48                      // 16-bit B, G, R
	ARGB64                     // 16-bit B, G, R, A
	PARGB64                    // 16-bit B, G, R, A with premultiplied color
)

// Sample indices within a multi-channel pixel.
const (
	ChannelB = 0
	ChannelG = 1
	ChannelR = 2
	ChannelA = 3
)

var layoutNames = map[Layout]string{
	Indexed8: "indexed8",
	Gray16:   "gray16",
	RGB24:    "rgb24",
	RGB32:    "rgb32",
	ARGB32:   "argb32",
	PARGB32:  "pargb32",
	RGB48:    "rgb48",
	ARGB64:   "argb64",
	PARGB64:  "pargb64",
}

// String returns the lower-case name of the layout.
func (l Layout) String() string {
	if name, ok := layoutNames[l]; ok {
		return name
	}
	return fmt.Sprintf("layout(%d)", int(l))
}

// ParseLayout converts a name produced by Layout.String back to a Layout.
func ParseLayout(name string) (Layout, error) {
	for l, n := range layoutNames {
		if n == name {
			return l, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedLayout, name)
}

// Valid reports whether l is one of the supported layouts.
func (l Layout) Valid() bool {
	_, ok := layoutNames[l]
	return ok
}

// BytesPerPixel returns the storage size of one pixel, or 0 for an
// unsupported layout.
func (l Layout) BytesPerPixel() int {
	switch l {
	case Indexed8:
		return 1
	case Gray16:
		return 2
	case RGB24:
		return 3
	case RGB32, ARGB32, PARGB32:
		return 4
	case RGB48:
		return 6
	case ARGB64, PARGB64:
		return 8
	}
	return 0
}

// SampleSize returns the size in bytes of a single channel sample.
func (l Layout) SampleSize() int {
	switch l {
	case Gray16, RGB48, ARGB64, PARGB64:
		return 2
	case Indexed8, RGB24, RGB32, ARGB32, PARGB32:
		return 1
	}
	return 0
}

// Channels returns the number of meaningful color samples per pixel
// (1 for single-sample layouts, 3 for RGB and 4 when alpha is present).
func (l Layout) Channels() int {
	switch l {
	case Indexed8, Gray16:
		return 1
	case RGB24, RGB32, RGB48:
		return 3
	case ARGB32, PARGB32, ARGB64, PARGB64:
		return 4
	}
	return 0
}

// Gray reports whether the layout stores a single sample per pixel.
func (l Layout) Gray() bool { return l == Indexed8 || l == Gray16 }

// HasAlpha reports whether the layout carries an alpha channel.
func (l Layout) HasAlpha() bool {
	return l == ARGB32 || l == PARGB32 || l == ARGB64 || l == PARGB64
}

// Premultiplied reports whether color samples are premultiplied by alpha.
func (l Layout) Premultiplied() bool { return l == PARGB32 || l == PARGB64 }

// Stride returns the row size in bytes for an image of the given width,
// rounded up to a multiple of four.
func (l Layout) Stride(width int) int {
	return (width*l.BytesPerPixel() + 3) &^ 3
}
