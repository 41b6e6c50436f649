package ocr

import (
	"image"
	"image/color"
	"image/draw"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// renderDigit draws s with basicfont on a white image just large enough to
// hold it.
func renderDigit(s string) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 11, 17))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(2), Y: fixed.I(13)},
	}
	d.DrawString(s)
	return img
}

func tesseractMissing(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "tesseract") ||
		strings.Contains(msg, "language") ||
		strings.Contains(msg, "library")
}

func TestNewReader(t *testing.T) {
	r := NewReader("")
	assert.Equal(t, DefaultLanguage, r.Language)
	assert.Equal(t, DefaultWhitelist, r.Whitelist)
	assert.Equal(t, DefaultScale, r.Scale)
	assert.Equal(t, DefaultMargin, r.Margin)
	assert.Equal(t, "deu", NewReader("deu").Language)
}

func TestPrepare(t *testing.T) {
	tests := []struct {
		name          string
		scale, margin int
		wantW, wantH  int
	}{
		{"defaults", DefaultScale, DefaultMargin, 11*4 + 20, 17*4 + 20},
		{"no scale", 0, 0, 11, 17},
		{"negative margin", 2, -5, 22, 34},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Reader{Scale: tt.scale, Margin: tt.margin}
			b := r.prepare(renderDigit("7")).Bounds()
			assert.Equal(t, tt.wantW, b.Dx())
			assert.Equal(t, tt.wantH, b.Dy())
		})
	}
}

func TestPrepare_MarginIsWhite(t *testing.T) {
	r := &Reader{Scale: 2, Margin: 3}
	out := r.prepare(renderDigit("1"))
	c := color.GrayModel.Convert(out.At(0, 0)).(color.Gray)
	assert.Equal(t, uint8(255), c.Y)
}

func TestFirstSymbol(t *testing.T) {
	tests := map[string]string{
		"":       "",
		"  \n":   "",
		"7\n":    "7",
		" 42 \n": "4",
	}
	for in, want := range tests {
		assert.Equal(t, want, firstSymbol(in), "firstSymbol(%q)", in)
	}
}

func TestReadGlyph(t *testing.T) {
	r := NewReader("eng")
	symbol, confidence, err := r.ReadGlyph(renderDigit("7"))
	if err != nil && tesseractMissing(err) {
		t.Skip("Tesseract not available")
	}
	require.NoError(t, err)

	// Recognition of a bitmap font is not guaranteed; only check the
	// contract.
	if symbol != "" {
		assert.Contains(t, DefaultWhitelist, symbol)
	}
	assert.GreaterOrEqual(t, confidence, 0.0)
	assert.LessOrEqual(t, confidence, 1.0)
}

func TestReadGlyph_InvalidLanguage(t *testing.T) {
	r := NewReader("invalid_language_code_xyz")
	_, _, err := r.ReadGlyph(renderDigit("3"))
	if err == nil {
		// Some Tesseract installations might be lenient with language codes
		t.Log("ReadGlyph did not fail for invalid language - may be Tesseract config")
	}
}
