// Package config loads numverify settings from a YAML file and the
// environment.
//
// Settings are resolved in three steps: built-in defaults, then the YAML
// file if one is given, then NUMVERIFY_* environment variables. The result
// is validated before it is returned.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/20154530/NeusoftKQ/internal/blob"
	"github.com/20154530/NeusoftKQ/internal/filter"
	"github.com/20154530/NeusoftKQ/internal/imaging"
	"github.com/20154530/NeusoftKQ/internal/match"
	"github.com/20154530/NeusoftKQ/internal/segment"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// Noise configures the removal of small ink specks before segmentation.
// A zero maximum means no upper bound.
type Noise struct {
	Enabled         bool `yaml:"enabled"`
	blob.SizeFilter `yaml:",inline"`
}

// Canvas is the size every glyph is normalized to.
type Canvas struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// OCR configures the Tesseract fallback.
type OCR struct {
	Enabled  bool   `yaml:"enabled"`
	Language string `yaml:"language"`
}

// Config holds every setting of the recognizer and its surfaces.
type Config struct {
	Threshold           int          `yaml:"threshold"`
	Grayscale           imaging.Luma `yaml:"grayscale"`
	Noise               Noise        `yaml:"noise"`
	Canvas              Canvas       `yaml:"canvas"`
	SimilarityThreshold float32      `yaml:"similarity_threshold"`
	TemplatesDir        string       `yaml:"templates_dir"`
	Workers             int          `yaml:"workers"`
	OCR                 OCR          `yaml:"ocr"`
	LogLevel            string       `yaml:"log_level"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Threshold: filter.DefaultThreshold,
		Grayscale: imaging.BT709,
		Noise: Noise{
			Enabled:    true,
			SizeFilter: blob.SizeFilter{MinWidth: 2, MinHeight: 2, Coupled: true},
		},
		Canvas:              Canvas{Width: segment.DefaultCanvasWidth, Height: segment.DefaultCanvasHeight},
		SimilarityThreshold: match.DefaultThreshold,
		OCR:                 OCR{Language: "eng"},
		LogLevel:            "info",
	}
}

// Load returns the defaults overlaid with the YAML file at path, when path is
// not empty, and with the environment. Unknown keys in the file are errors.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := cfg.decode(data); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides settings from NUMVERIFY_* environment variables:
// THRESHOLD, LUMA (a preset name), NOISE, SIMILARITY_THRESHOLD,
// TEMPLATES_DIR, WORKERS, OCR, OCR_LANGUAGE and LOG_LEVEL.
func (c *Config) ApplyEnv() error {
	var errs []error
	env := func(name string) (string, bool) {
		v, ok := os.LookupEnv("NUMVERIFY_" + name)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}
	setInt := func(name string, dst *int) {
		if v, ok := env(name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("NUMVERIFY_%s: %w", name, err))
				return
			}
			*dst = n
		}
	}
	setBool := func(name string, dst *bool) {
		if v, ok := env(name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("NUMVERIFY_%s: %w", name, err))
				return
			}
			*dst = b
		}
	}

	setInt("THRESHOLD", &c.Threshold)
	setInt("WORKERS", &c.Workers)
	setBool("NOISE", &c.Noise.Enabled)
	setBool("OCR", &c.OCR.Enabled)
	if v, ok := env("LUMA"); ok {
		l, err := imaging.LumaByName(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("NUMVERIFY_LUMA: %w", err))
		} else {
			c.Grayscale = l
		}
	}
	if v, ok := env("SIMILARITY_THRESHOLD"); ok {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			errs = append(errs, fmt.Errorf("NUMVERIFY_SIMILARITY_THRESHOLD: %w", err))
		} else {
			c.SimilarityThreshold = float32(f)
		}
	}
	if v, ok := env("TEMPLATES_DIR"); ok {
		c.TemplatesDir = v
	}
	if v, ok := env("OCR_LANGUAGE"); ok {
		c.OCR.Language = v
	}
	if v, ok := env("LOG_LEVEL"); ok {
		c.LogLevel = v
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Threshold < 1 || c.Threshold > 255 {
		errs = append(errs, fmt.Errorf("threshold %d is outside 1..255", c.Threshold))
	}
	g := c.Grayscale
	if g.Red < 0 || g.Green < 0 || g.Blue < 0 {
		errs = append(errs, errors.New("grayscale weights must not be negative"))
	}
	if sum := g.Red + g.Green + g.Blue; sum <= 0 || sum > 1.001 {
		errs = append(errs, fmt.Errorf("grayscale weights sum to %.4f, want (0, 1]", sum))
	}
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		errs = append(errs, fmt.Errorf("canvas %dx%d must be positive", c.Canvas.Width, c.Canvas.Height))
	}
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		errs = append(errs, fmt.Errorf("similarity_threshold %v is outside 0..1", c.SimilarityThreshold))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers %d must not be negative", c.Workers))
	}
	n := c.Noise.SizeFilter
	if n.MinWidth < 0 || n.MinHeight < 0 || n.MaxWidth < 0 || n.MaxHeight < 0 {
		errs = append(errs, errors.New("noise limits must not be negative"))
	}
	if (n.MaxWidth > 0 && n.MaxWidth < n.MinWidth) || (n.MaxHeight > 0 && n.MaxHeight < n.MinHeight) {
		errs = append(errs, errors.New("noise maximum is below its minimum"))
	}
	if c.OCR.Enabled && c.OCR.Language == "" {
		errs = append(errs, errors.New("ocr.language is required when OCR is enabled"))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// Level parses LogLevel. An empty level means info.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}

// NoiseFilter returns the blob filter for noise removal, or nil when it is
// disabled. Zero maximums become unbounded.
func (c *Config) NoiseFilter() *blob.SizeFilter {
	if !c.Noise.Enabled {
		return nil
	}
	f := c.Noise.SizeFilter
	if f.MaxWidth == 0 {
		f.MaxWidth = math.MaxInt
	}
	if f.MaxHeight == 0 {
		f.MaxHeight = math.MaxInt
	}
	return &f
}

// Pipeline returns a segmentation pipeline built from the settings.
func (c *Config) Pipeline(logger *slog.Logger) *segment.Pipeline {
	return &segment.Pipeline{
		Luma:         c.Grayscale,
		Threshold:    c.Threshold,
		Noise:        c.NoiseFilter(),
		CanvasWidth:  c.Canvas.Width,
		CanvasHeight: c.Canvas.Height,
		Logger:       logger,
	}
}
