// Package imaging provides the raw pixel buffer used by every other stage of
// the recognizer, together with the helpers that move pixels between Go's
// image.Image world and that buffer.
//
// # Pixel Buffers
//
// A Buffer owns a contiguous byte slice described by width, height, row stride
// and a Layout. Rows are padded so that the stride is always a multiple of four
// bytes. Multi-channel layouts store samples in B, G, R, A order; 16-bit
// samples are little-endian words.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - Rect values use an inclusive origin and an exclusive far edge
//
// # Error Handling
//
// Strict operations fail with one of the package sentinel errors
// (ErrUnsupportedLayout, ErrInvalidDimensions, ErrIncompatibleBuffer,
// ErrOutOfBounds, ErrUnsupportedGeometry, ErrNotProcessed). Callers match them
// with errors.Is. Set and SetPixels are the permissive exception: writes
// outside the buffer are ignored.
//
// # Thread Safety
//
// A Buffer is not safe for concurrent mutation. Read-only sharing between
// goroutines is fine. The ImageCache type is safe for concurrent use.
package imaging
