package recognize

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"sort"
	"strings"

	dimg "github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/20154530/NeusoftKQ/internal/imaging"
	"github.com/20154530/NeusoftKQ/internal/segment"
)

// ErrTemplate reports a reference image that does not hold exactly one glyph.
var ErrTemplate = errors.New("invalid template")

// DefaultSymbols are the symbols rendered when no template directory is set.
const DefaultSymbols = "0123456789"

// templateExts are the file extensions LoadTemplates picks up.
var templateExts = map[string]bool{
	".png": true, ".bmp": true, ".jpg": true, ".jpeg": true, ".gif": true,
}

// Template is a normalized reference glyph.
type Template struct {
	Symbol string
	Image  *imaging.Buffer
}

// TemplateSet is an ordered list of templates. When two templates match a
// glyph equally well the earlier one wins.
type TemplateSet []Template

// Symbols returns the symbols of the set in order.
func (s TemplateSet) Symbols() []string {
	out := make([]string, len(s))
	for i, t := range s {
		out[i] = t.Symbol
	}
	return out
}

// LoadTemplates reads every image in dir whose name, without extension, is
// the symbol it shows, e.g. "7.png". Templates are ordered by symbol.
func LoadTemplates(cache *imaging.ImageCache, dir string, p *segment.Pipeline) (TemplateSet, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read template directory: %w", err)
	}

	var set TemplateSet
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || !templateExts[ext] {
			continue
		}
		symbol := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		buf, err := cache.LoadBuffer(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		norm, err := prepareTemplate(buf, p)
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", e.Name(), err)
		}
		set = append(set, Template{Symbol: symbol, Image: norm})
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("%w: no images in %s", ErrTemplate, dir)
	}
	sort.SliceStable(set, func(i, j int) bool { return set[i].Symbol < set[j].Symbol })
	return set, nil
}

// RenderTemplates draws every rune of symbols with face in black on white
// and normalizes it like a glyph.
func RenderTemplates(face font.Face, symbols string, p *segment.Pipeline) (TemplateSet, error) {
	metrics := face.Metrics()
	ascent, descent := metrics.Ascent.Ceil(), metrics.Descent.Ceil()

	var set TemplateSet
	for _, r := range symbols {
		s := string(r)
		width := font.MeasureString(face, s).Ceil()
		canvas := image.NewRGBA(image.Rect(0, 0, width+4, ascent+descent+4))
		draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
		d := &font.Drawer{
			Dst:  canvas,
			Src:  image.NewUniform(color.Black),
			Face: face,
			Dot:  fixed.Point26_6{X: fixed.I(2), Y: fixed.I(2 + ascent)},
		}
		d.DrawString(s)

		buf, err := imaging.FromImage(canvas)
		if err != nil {
			return nil, err
		}
		norm, err := prepareTemplate(buf, p)
		if err != nil {
			return nil, fmt.Errorf("template %q: %w", s, err)
		}
		set = append(set, Template{Symbol: s, Image: norm})
	}
	return set, nil
}

// prepareTemplate binarizes buf, cuts out its single glyph and centers it on
// the pipeline canvas. A glyph larger than the canvas is scaled down to fit.
func prepareTemplate(buf *imaging.Buffer, p *segment.Pipeline) (*imaging.Buffer, error) {
	bin, err := p.Preprocess(buf)
	if err != nil {
		return nil, err
	}
	glyphs, err := p.Split(bin)
	if err != nil {
		return nil, err
	}
	if len(glyphs) != 1 {
		return nil, fmt.Errorf("%w: found %d glyphs", ErrTemplate, len(glyphs))
	}

	g := glyphs[0].Image
	if g.Width() > p.CanvasWidth || g.Height() > p.CanvasHeight {
		if g, err = fit(g, p); err != nil {
			return nil, err
		}
	}
	return segment.Normalize(g, p.CanvasWidth, p.CanvasHeight)
}

func fit(g *imaging.Buffer, p *segment.Pipeline) (*imaging.Buffer, error) {
	src, err := imaging.ToImage(g)
	if err != nil {
		return nil, err
	}
	scaled, err := imaging.FromImage(dimg.Fit(src, p.CanvasWidth, p.CanvasHeight, dimg.Box))
	if err != nil {
		return nil, err
	}
	return p.Preprocess(scaled)
}
