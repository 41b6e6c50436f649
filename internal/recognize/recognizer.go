package recognize

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/20154530/NeusoftKQ/internal/imaging"
	"github.com/20154530/NeusoftKQ/internal/match"
	"github.com/20154530/NeusoftKQ/internal/segment"
)

// Unknown is the symbol reported for a glyph nothing could read.
const Unknown = "?"

// ErrNoTemplates is returned by Recognize when the template set is empty.
var ErrNoTemplates = errors.New("no templates loaded")

// Source tells how the symbol of a glyph was decided.
type Source string

const (
	// SourceTemplate marks a glyph decided by its best-matching template.
	SourceTemplate Source = "template"
	// SourceOCR marks a glyph read by the OCR fallback.
	SourceOCR Source = "ocr"
	// SourceNone marks a glyph nothing could read.
	SourceNone Source = "none"
)

// GlyphReader reads a single glyph. *ocr.Reader implements it.
type GlyphReader interface {
	ReadGlyph(img image.Image) (string, float64, error)
}

// GlyphResult is the decision for one glyph.
type GlyphResult struct {
	Index      int          `json:"index"`
	Rect       imaging.Rect `json:"rect"`
	Symbol     string       `json:"symbol"`
	Similarity float64      `json:"similarity"`
	Source     Source       `json:"source"`

	// Image is the normalized glyph that was classified.
	Image *imaging.Buffer `json:"-"`
}

// Result is the outcome of recognizing one image.
type Result struct {
	Text   string        `json:"text"`
	Glyphs []GlyphResult `json:"glyphs"`
}

// Recognizer segments images and classifies their glyphs.
type Recognizer struct {
	Pipeline  *segment.Pipeline
	Matcher   *match.Exhaustive
	Templates TemplateSet

	// OCR, when non-nil, reads glyphs that match no template.
	OCR GlyphReader

	// Workers bounds the number of glyphs classified at once. Zero means
	// runtime.NumCPU().
	Workers int

	Logger *slog.Logger
}

// New returns a recognizer with the given pipeline and templates, the
// default match threshold and no OCR fallback.
func New(p *segment.Pipeline, templates TemplateSet) *Recognizer {
	return &Recognizer{
		Pipeline:  p,
		Matcher:   match.NewExhaustive(match.DefaultThreshold),
		Templates: templates,
	}
}

func (r *Recognizer) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Logger
}

// Recognize segments buf and classifies every glyph. Glyphs are classified
// concurrently; the first error cancels the remaining ones.
func (r *Recognizer) Recognize(ctx context.Context, buf *imaging.Buffer) (*Result, error) {
	if len(r.Templates) == 0 {
		return nil, ErrNoTemplates
	}
	glyphs, err := r.Pipeline.Segment(buf)
	if err != nil {
		return nil, fmt.Errorf("segmentation failed: %w", err)
	}

	results := make([]GlyphResult, len(glyphs))
	g, gctx := errgroup.WithContext(ctx)
	workers := r.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	g.SetLimit(workers)
	for i := range glyphs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := r.Classify(glyphs[i].Image)
			if err != nil {
				return fmt.Errorf("glyph %d: %w", i, err)
			}
			res.Index, res.Rect, res.Image = i, glyphs[i].Rect, glyphs[i].Image
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var text strings.Builder
	for _, res := range results {
		text.WriteString(res.Symbol)
	}
	return &Result{Text: text.String(), Glyphs: results}, nil
}

// Classify decides the symbol of one normalized glyph. The template whose
// best match is most similar wins; on a tie the earlier template wins. A
// glyph no template matches goes to OCR if configured, and is Unknown
// otherwise.
func (r *Recognizer) Classify(glyph *imaging.Buffer) (GlyphResult, error) {
	if len(r.Templates) == 0 {
		return GlyphResult{}, ErrNoTemplates
	}
	scores := make([]float64, len(r.Templates))
	for j, t := range r.Templates {
		matches, err := r.Matcher.Match(glyph, t.Image)
		if err != nil {
			return GlyphResult{}, fmt.Errorf("template %q: %w", t.Symbol, err)
		}
		if len(matches) > 0 {
			scores[j] = float64(matches[0].Similarity)
		}
	}

	best := floats.MaxIdx(scores)
	if scores[best] > 0 {
		res := GlyphResult{Symbol: r.Templates[best].Symbol, Similarity: scores[best], Source: SourceTemplate}
		r.logger().Debug("glyph matched", "symbol", res.Symbol, "similarity", res.Similarity)
		return res, nil
	}
	return r.fallback(glyph), nil
}

func (r *Recognizer) fallback(glyph *imaging.Buffer) GlyphResult {
	unknown := GlyphResult{Symbol: Unknown, Source: SourceNone}
	if r.OCR == nil {
		r.logger().Debug("glyph unmatched")
		return unknown
	}
	img, err := imaging.ToImage(glyph)
	if err != nil {
		r.logger().Warn("cannot convert glyph for OCR", "error", err)
		return unknown
	}
	symbol, confidence, err := r.OCR.ReadGlyph(img)
	if err != nil {
		r.logger().Warn("OCR failed", "error", err)
		return unknown
	}
	if symbol == "" {
		r.logger().Info("OCR found nothing")
		return unknown
	}
	r.logger().Info("glyph read by OCR", "symbol", symbol, "confidence", confidence)
	return GlyphResult{Symbol: symbol, Similarity: confidence, Source: SourceOCR}
}
