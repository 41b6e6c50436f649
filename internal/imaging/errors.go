package imaging

import "errors"

var (
	// ErrUnsupportedLayout is returned when an operation is given a pixel
	// layout it does not handle.
	ErrUnsupportedLayout = errors.New("unsupported pixel layout")

	// ErrInvalidDimensions is returned for non-positive width or height.
	ErrInvalidDimensions = errors.New("invalid image dimensions")

	// ErrIncompatibleBuffer is returned when source and destination buffers
	// differ in size or layout.
	ErrIncompatibleBuffer = errors.New("incompatible buffer")

	// ErrOutOfBounds is returned by strict accessors for coordinates outside
	// the buffer.
	ErrOutOfBounds = errors.New("coordinates out of bounds")

	// ErrUnsupportedGeometry is returned when an image is too small for an
	// algorithm, such as labeling a 1 pixel wide image.
	ErrUnsupportedGeometry = errors.New("unsupported image geometry")

	// ErrNotProcessed is returned when a result is requested before the
	// image has been processed.
	ErrNotProcessed = errors.New("image has not been processed")
)
