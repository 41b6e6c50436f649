// Package segment turns a CAPTCHA image into one fixed-size image per glyph.
//
// The image is reduced to gray, binarized and optionally cleaned of small
// specks. It is then cut into vertical strips wherever two or more
// consecutive columns hold no dark pixel, and every strip is trimmed to the
// rows that hold ink. Finally each glyph is placed in the center of a fixed
// canvas so that it can be compared against reference templates of the same
// size.
package segment
