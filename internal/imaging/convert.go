package imaging

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// FromImage converts a decoded image into a Buffer.
//
// *image.Gray becomes Indexed8 and *image.Gray16 becomes Gray16. Every other
// image is flattened over an opaque white background and stored as RGB24, so
// transparent regions read as background rather than ink.
func FromImage(img image.Image) (*Buffer, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	switch src := img.(type) {
	case *image.Gray:
		buf, err := New(w, h, Indexed8)
		if err != nil {
			return nil, err
		}
		for y := 0; y < h; y++ {
			off := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(buf.Row(y), src.Pix[off:off+w])
		}
		return buf, nil
	case *image.Gray16:
		buf, err := New(w, h, Gray16)
		if err != nil {
			return nil, err
		}
		for y := 0; y < h; y++ {
			off := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			row := buf.Row(y)
			for x := 0; x < w; x++ {
				v := binary.BigEndian.Uint16(src.Pix[off+2*x:])
				binary.LittleEndian.PutUint16(row[2*x:], v)
			}
		}
		return buf, nil
	}

	buf, err := New(w, h, RGB24)
	if err != nil {
		return nil, err
	}
	flat := imaging.Overlay(imaging.New(w, h, color.White), img, image.Pt(0, 0), 1.0)
	for y := 0; y < h; y++ {
		src := flat.Pix[y*flat.Stride:]
		row := buf.Row(y)
		for x := 0; x < w; x++ {
			row[3*x+ChannelR] = src[4*x]
			row[3*x+ChannelG] = src[4*x+1]
			row[3*x+ChannelB] = src[4*x+2]
		}
	}
	return buf, nil
}

// ToImage converts a Buffer into a standard image.
//
// Indexed8 produces *image.Gray, Gray16 produces *image.Gray16 and every other
// layout produces *image.NRGBA with 8-bit channels.
func ToImage(b *Buffer) (image.Image, error) {
	r := image.Rect(0, 0, b.width, b.height)
	switch b.layout {
	case Indexed8:
		img := image.NewGray(r)
		for y := 0; y < b.height; y++ {
			copy(img.Pix[y*img.Stride:], b.Row(y))
		}
		return img, nil
	case Gray16:
		img := image.NewGray16(r)
		for y := 0; y < b.height; y++ {
			row := b.Row(y)
			for x := 0; x < b.width; x++ {
				binary.BigEndian.PutUint16(img.Pix[y*img.Stride+2*x:], binary.LittleEndian.Uint16(row[2*x:]))
			}
		}
		return img, nil
	}
	if !b.layout.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedLayout, b.layout)
	}
	img := image.NewNRGBA(r)
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			c, _ := b.At(x, y)
			img.SetNRGBA(x, y, color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A})
		}
	}
	return img, nil
}

// Convert returns a copy of b in another layout by round-tripping every
// pixel through Color. Converting to a single-sample layout uses BT709 luma.
func Convert(b *Buffer, layout Layout) (*Buffer, error) {
	if layout == b.layout {
		return b.Clone(), nil
	}
	dst, err := New(b.width, b.height, layout)
	if err != nil {
		return nil, err
	}
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			c, err := b.At(x, y)
			if err != nil {
				return nil, err
			}
			dst.set(dst.Offset(x, y), c)
		}
	}
	return dst, nil
}
