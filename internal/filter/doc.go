// Package filter implements the closed set of pixel transformations used to
// prepare CAPTCHA images: Grayscale, Threshold, Crop, Invert and CanvasMove.
//
// Every filter reports, through Translate, which input layouts it accepts and
// which layout it produces. The answer comes from a fixed switch, never from
// per-instance state. Unsupported input fails with imaging.ErrUnsupportedLayout.
//
// Filters are classified by Kind:
//   - NewImage filters return a fresh buffer of the same size
//   - InPlace filters modify their input and may also run on a sub-rectangle
//   - Resize filters return a buffer of a different size
//
// Apply never modifies its argument. In-place filters additionally offer
// ApplyInPlace for callers that own the buffer, and Threshold and Invert
// accept a sub-rectangle through ApplyRect.
package filter
