package recognize

import (
	"log/slog"

	"golang.org/x/image/font/basicfont"

	"github.com/20154530/NeusoftKQ/internal/config"
	"github.com/20154530/NeusoftKQ/internal/imaging"
	"github.com/20154530/NeusoftKQ/internal/match"
	"github.com/20154530/NeusoftKQ/internal/ocr"
)

// FromConfig assembles a recognizer from cfg. Templates are loaded from
// cfg.TemplatesDir through cache, or rendered from basicfont digits when no
// directory is set.
func FromConfig(cfg *config.Config, cache *imaging.ImageCache, logger *slog.Logger) (*Recognizer, error) {
	p := cfg.Pipeline(logger)

	var (
		templates TemplateSet
		err       error
	)
	if cfg.TemplatesDir != "" {
		templates, err = LoadTemplates(cache, cfg.TemplatesDir, p)
	} else {
		templates, err = RenderTemplates(basicfont.Face7x13, DefaultSymbols, p)
	}
	if err != nil {
		return nil, err
	}

	r := &Recognizer{
		Pipeline:  p,
		Matcher:   match.NewExhaustive(cfg.SimilarityThreshold),
		Templates: templates,
		Workers:   cfg.Workers,
		Logger:    logger,
	}
	if cfg.OCR.Enabled {
		r.OCR = ocr.NewReader(cfg.OCR.Language)
	}
	if logger != nil {
		logger.Debug("recognizer ready", "templates", len(templates), "ocr", cfg.OCR.Enabled)
	}
	return r, nil
}
