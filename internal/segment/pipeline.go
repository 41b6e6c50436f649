package segment

import (
	"fmt"
	"log/slog"

	"github.com/20154530/NeusoftKQ/internal/blob"
	"github.com/20154530/NeusoftKQ/internal/filter"
	"github.com/20154530/NeusoftKQ/internal/imaging"
)

// Default canvas size of a normalized glyph.
const (
	DefaultCanvasWidth  = 20
	DefaultCanvasHeight = 20
)

// Pipeline holds the settings used to turn a CAPTCHA into glyphs.
type Pipeline struct {
	// Luma weights the channels of color input.
	Luma imaging.Luma
	// Threshold binarizes the gray image; samples >= Threshold become white.
	Threshold int
	// Noise, when non-nil, removes ink blobs it rejects before splitting.
	Noise *blob.SizeFilter
	// CanvasWidth and CanvasHeight give the size of every normalized glyph.
	CanvasWidth  int
	CanvasHeight int

	Logger *slog.Logger
}

// NewPipeline returns a pipeline with BT709 luma, threshold 128, no noise
// removal and a 20x20 canvas.
func NewPipeline() *Pipeline {
	return &Pipeline{
		Luma:         imaging.BT709,
		Threshold:    filter.DefaultThreshold,
		CanvasWidth:  DefaultCanvasWidth,
		CanvasHeight: DefaultCanvasHeight,
	}
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.Logger
}

// Preprocess returns a binarized Indexed8 copy of src with dark ink at 0 and
// background at 255.
//
// Indexed8 input is taken as already gray. RGB24, RGB32 and ARGB32 are
// reduced with Luma; other layouts are converted to RGB24 first.
func (p *Pipeline) Preprocess(src *imaging.Buffer) (*imaging.Buffer, error) {
	var (
		gray *imaging.Buffer
		err  error
	)
	switch src.Layout() {
	case imaging.Indexed8:
		gray = src.Clone()
	case imaging.RGB24, imaging.RGB32, imaging.ARGB32:
		gray, err = filter.NewGrayscale(p.Luma).Apply(src)
	default:
		var rgb *imaging.Buffer
		if rgb, err = imaging.Convert(src, imaging.RGB24); err == nil {
			gray, err = filter.NewGrayscale(p.Luma).Apply(rgb)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("grayscale: %w", err)
	}

	if err := filter.NewThreshold(p.Threshold).ApplyInPlace(gray); err != nil {
		return nil, fmt.Errorf("threshold: %w", err)
	}

	if p.Noise != nil {
		// Blobs are white on black, so the ink is inverted for labeling.
		clean := filter.Sequence{filter.Invert{}, blob.NewFiltering(*p.Noise), filter.Invert{}}
		if gray, err = clean.Apply(gray); err != nil {
			return nil, fmt.Errorf("noise removal: %w", err)
		}
	}
	return gray, nil
}

// Split cuts a binarized image into glyphs: first into column strips, then
// every strip into row bands.
func (p *Pipeline) Split(bin *imaging.Buffer) ([]Glyph, error) {
	strips, err := SplitColumns(bin)
	if err != nil {
		return nil, err
	}
	var glyphs []Glyph
	for _, s := range strips {
		bands, err := SplitRows(s)
		if err != nil {
			return nil, err
		}
		glyphs = append(glyphs, bands...)
	}
	p.logger().Debug("split image", "strips", len(strips), "glyphs", len(glyphs))
	return glyphs, nil
}

// Segment runs Preprocess, Split and Normalize. The returned glyphs keep the
// rect they were cut from and carry the normalized image.
func (p *Pipeline) Segment(src *imaging.Buffer) ([]Glyph, error) {
	bin, err := p.Preprocess(src)
	if err != nil {
		return nil, err
	}
	glyphs, err := p.Split(bin)
	if err != nil {
		return nil, err
	}
	for i := range glyphs {
		img, err := Normalize(glyphs[i].Image, p.CanvasWidth, p.CanvasHeight)
		if err != nil {
			return nil, fmt.Errorf("normalize glyph %d: %w", i, err)
		}
		glyphs[i].Image = img
	}
	return glyphs, nil
}
