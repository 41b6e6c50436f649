// Package ocr reads single glyphs with the Tesseract OCR engine.
//
// It is used as a fallback when no reference template matches a glyph well
// enough. The engine is driven through gosseract/v2 in single-character mode
// with a whitelist, so the answer is always one symbol or nothing.
//
// # Prerequisites
//
// Tesseract and its language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// Set Reader.TessdataPrefix when the data files live outside the default
// location.
//
// # Preparing Glyphs
//
// Tesseract is tuned for text around 30 pixels high, while CAPTCHA glyphs are
// usually 20 pixels or less. ReadGlyph therefore scales the glyph up with
// nearest-neighbor sampling and surrounds it with a white margin before
// recognition.
package ocr
