package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/disintegration/imaging"
)

// EncodedImage contains a PNG rendition of a buffer.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodePNG renders b as a base64 PNG, optionally enlarged by an integer
// scale factor with nearest-neighbor sampling so binary glyphs stay crisp.
func EncodePNG(b *Buffer, scale int) (*EncodedImage, error) {
	img, err := ToImage(b)
	if err != nil {
		return nil, err
	}
	if scale > 1 {
		img = imaging.Resize(img, b.Width()*scale, b.Height()*scale, imaging.NearestNeighbor)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &EncodedImage{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// SavePNG writes b to path as a PNG file.
func SavePNG(b *Buffer, path string) error {
	img, err := ToImage(b)
	if err != nil {
		return err
	}
	if err := imgio.Save(path, img, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
