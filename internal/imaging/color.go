package imaging

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is an 8-bit per channel color with alpha.
//
// Buffers with 16-bit samples are read and written through Color by taking
// or filling the high byte of each sample.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// Common colors.
var (
	Black = Color{A: 255}
	White = Color{R: 255, G: 255, B: 255, A: 255}
)

// Gray returns an opaque color with all three channels set to v.
func Gray(v uint8) Color { return Color{R: v, G: v, B: v, A: 255} }

// RGB is an 8-bit per channel color without alpha, used for blob statistics.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Luma holds the red, green and blue weights used to reduce a color to a
// single intensity sample.
type Luma struct {
	Red   float64 `json:"red" yaml:"red"`
	Green float64 `json:"green" yaml:"green"`
	Blue  float64 `json:"blue" yaml:"blue"`
}

// Luma presets.
var (
	// BT709 is the default weighting.
	BT709 = Luma{Red: 0.2125, Green: 0.7154, Blue: 0.0721}
	// RMY weights red, green and blue as 0.5, 0.419 and 0.081.
	RMY = Luma{Red: 0.5000, Green: 0.4190, Blue: 0.0810}
	// BT601Y is the YIQ luma weighting.
	BT601Y = Luma{Red: 0.2990, Green: 0.5870, Blue: 0.1140}
)

// LumaByName returns the preset named "bt709", "rmy" or "y".
func LumaByName(name string) (Luma, error) {
	switch name {
	case "", "bt709":
		return BT709, nil
	case "rmy":
		return RMY, nil
	case "y", "bt601":
		return BT601Y, nil
	}
	return Luma{}, fmt.Errorf("unknown luma preset: %s", name)
}

// Gray8 reduces r, g, b to one 8-bit sample. The result is truncated, except
// that a color which is already gray maps to itself.
func (l Luma) Gray8(r, g, b uint8) uint8 {
	if r == g && g == b {
		return r
	}
	return uint8(l.Red*float64(r) + l.Green*float64(g) + l.Blue*float64(b))
}

// Fixed returns the weights in 16.16 fixed point.
func (l Luma) Fixed() (r, g, b int) {
	return int(0x10000 * l.Red), int(0x10000 * l.Green), int(0x10000 * l.Blue)
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees
	S int `json:"s"` // Saturation: 0-100 percent
	L int `json:"l"` // Lightness: 0-100 percent
}

// ColorResult describes a color in the formats reported by the server.
type ColorResult struct {
	Hex string   `json:"hex"` // "#rrggbb"
	RGB RGB      `json:"rgb"`
	HSL HSLColor `json:"hsl"`
}

// Describe converts c into hex and HSL representations.
func Describe(c RGB) ColorResult {
	cf := colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
	h, s, l := cf.Hsl()
	return ColorResult{
		Hex: cf.Hex(),
		RGB: c,
		HSL: HSLColor{H: int(h), S: int(s * 100), L: int(l * 100)},
	}
}

