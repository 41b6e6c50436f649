package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// Defaults used by NewReader.
const (
	DefaultLanguage  = "eng"
	DefaultWhitelist = "0123456789"
	DefaultScale     = 4
	DefaultMargin    = 10
)

// Reader recognizes one glyph at a time.
type Reader struct {
	// Language is the Tesseract language code, e.g. "eng".
	Language string

	// Whitelist lists the only characters Tesseract may report.
	Whitelist string

	// TessdataPrefix overrides the directory holding *.traineddata files.
	TessdataPrefix string

	// Scale enlarges the glyph before recognition. Values below 1 mean 1.
	Scale int

	// Margin is the white border, in scaled pixels, added around the glyph.
	Margin int
}

// NewReader returns a digit reader for language. An empty language means
// DefaultLanguage.
func NewReader(language string) *Reader {
	if language == "" {
		language = DefaultLanguage
	}
	return &Reader{
		Language:  language,
		Whitelist: DefaultWhitelist,
		Scale:     DefaultScale,
		Margin:    DefaultMargin,
	}
}

// ReadGlyph returns the symbol Tesseract sees in img and its confidence in
// [0, 1]. An empty symbol with a nil error means nothing was recognized.
func (r *Reader) ReadGlyph(img image.Image) (string, float64, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, r.prepare(img)); err != nil {
		return "", 0, fmt.Errorf("failed to encode glyph: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if r.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(r.TessdataPrefix); err != nil {
			return "", 0, fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}
	if err := client.SetLanguage(r.Language); err != nil {
		return "", 0, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_CHAR); err != nil {
		return "", 0, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if r.Whitelist != "" {
		if err := client.SetWhitelist(r.Whitelist); err != nil {
			return "", 0, fmt.Errorf("failed to set whitelist: %w", err)
		}
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", 0, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", 0, fmt.Errorf("OCR failed: %w", err)
	}
	symbol := firstSymbol(text)
	if symbol == "" {
		return "", 0, nil
	}

	confidence := 0.0
	if boxes, err := client.GetBoundingBoxes(gosseract.RIL_SYMBOL); err == nil {
		for _, box := range boxes {
			if strings.TrimSpace(box.Word) == symbol {
				confidence = box.Confidence / 100.0
				break
			}
		}
	}
	return symbol, confidence, nil
}

// prepare scales img and pads it with a white margin.
func (r *Reader) prepare(img image.Image) image.Image {
	scale := max(r.Scale, 1)
	b := img.Bounds()
	scaled := imaging.Resize(img, b.Dx()*scale, b.Dy()*scale, imaging.NearestNeighbor)

	m := max(r.Margin, 0)
	canvas := imaging.New(b.Dx()*scale+2*m, b.Dy()*scale+2*m, color.White)
	return imaging.Paste(canvas, scaled, image.Pt(m, m))
}

// firstSymbol returns the first non-space rune of text.
func firstSymbol(text string) string {
	for _, r := range strings.TrimSpace(text) {
		return string(r)
	}
	return ""
}
