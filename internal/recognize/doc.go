// Package recognize reads the digits of a CAPTCHA image.
//
// The image is segmented into normalized glyphs, and every glyph is compared
// against a set of reference templates of the same size. The symbol of the
// template with the best match is taken for the glyph. Glyphs that match no
// template can optionally be handed to an OCR engine.
//
// Templates come either from image files named after their symbol, or are
// rendered from a bitmap font. Both kinds go through the same segmentation
// pipeline as the glyphs they will be compared with.
package recognize
