package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/20154530/NeusoftKQ/internal/blob"
	"github.com/20154530/NeusoftKQ/internal/filter"
	"github.com/20154530/NeusoftKQ/internal/imaging"
	"github.com/20154530/NeusoftKQ/internal/match"
)

// errMissingPath is returned by tools called without a path argument.
var errMissingPath = errors.New("path is required")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "captcha_recognize").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Info("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "captcha_recognize":
		return s.handleCaptchaRecognize(ctx, args)
	case "captcha_segment":
		return s.handleCaptchaSegment(args)
	case "image_blobs":
		return s.handleImageBlobs(args)
	case "image_match_template":
		return s.handleImageMatchTemplate(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// load reads path through the server cache.
func (s *Server) load(path string) (*imaging.Buffer, error) {
	if path == "" {
		return nil, errMissingPath
	}
	return s.cache.LoadBuffer(path)
}

// === CAPTCHA Handlers ===

type pathArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleCaptchaRecognize(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	buf, err := s.load(a.Path)
	if err != nil {
		return nil, err
	}
	return s.recognizer.Recognize(ctx, buf)
}

type captchaSegmentArgs struct {
	Path  string `json:"path"`
	Scale int    `json:"scale"`
}

type segmentGlyph struct {
	Index int                   `json:"index"`
	Rect  imaging.Rect          `json:"rect"`
	Image *imaging.EncodedImage `json:"image"`
}

type segmentResult struct {
	Count  int            `json:"count"`
	Glyphs []segmentGlyph `json:"glyphs"`
}

func (s *Server) handleCaptchaSegment(args json.RawMessage) (interface{}, error) {
	var a captchaSegmentArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale <= 0 {
		a.Scale = 1
	}
	buf, err := s.load(a.Path)
	if err != nil {
		return nil, err
	}
	glyphs, err := s.recognizer.Pipeline.Segment(buf)
	if err != nil {
		return nil, err
	}

	res := segmentResult{Count: len(glyphs), Glyphs: make([]segmentGlyph, 0, len(glyphs))}
	for i, g := range glyphs {
		enc, err := imaging.EncodePNG(g.Image, a.Scale)
		if err != nil {
			return nil, err
		}
		res.Glyphs = append(res.Glyphs, segmentGlyph{Index: i, Rect: g.Rect, Image: enc})
	}
	return res, nil
}

// === Blob Handlers ===

type imageBlobsArgs struct {
	Path      string `json:"path"`
	MinWidth  int    `json:"min_width"`
	MinHeight int    `json:"min_height"`
	MaxWidth  int    `json:"max_width"`
	MaxHeight int    `json:"max_height"`
	Coupled   bool   `json:"coupled"`
	Order     string `json:"order"`
}

type blobSummary struct {
	ID       int                 `json:"id"`
	Rect     imaging.Rect        `json:"rect"`
	Area     int                 `json:"area"`
	Fullness float64             `json:"fullness"`
	Centroid blob.Centroid       `json:"centroid"`
	Color    imaging.ColorResult `json:"color"`
	StdDev   imaging.RGB         `json:"color_stddev"`
}

type blobsResult struct {
	Width  int           `json:"width"`
	Height int           `json:"height"`
	Count  int           `json:"count"`
	Blobs  []blobSummary `json:"blobs"`
}

// handleImageBlobs labels the dark ink of the binarized image. Colors are
// measured on the original pixels.
func (s *Server) handleImageBlobs(args json.RawMessage) (interface{}, error) {
	var a imageBlobsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	order, err := blob.ParseOrder(a.Order)
	if err != nil {
		return nil, err
	}
	buf, err := s.load(a.Path)
	if err != nil {
		return nil, err
	}

	p := *s.recognizer.Pipeline
	p.Noise = nil
	ink, err := p.Preprocess(buf)
	if err != nil {
		return nil, err
	}
	if err := (filter.Invert{}).ApplyInPlace(ink); err != nil {
		return nil, err
	}
	labels, err := blob.Label(ink, imaging.RGB{})
	if err != nil {
		return nil, err
	}

	src := buf
	if src.Layout() != imaging.Indexed8 && src.Layout() != imaging.RGB24 {
		if src, err = imaging.Convert(buf, imaging.RGB24); err != nil {
			return nil, err
		}
	}
	blobs, err := blob.Collect(src, labels)
	if err != nil {
		return nil, err
	}

	size := blob.SizeFilter{
		MinWidth:  max(a.MinWidth, 1),
		MinHeight: max(a.MinHeight, 1),
		MaxWidth:  unbounded(a.MaxWidth),
		MaxHeight: unbounded(a.MaxHeight),
		Coupled:   a.Coupled,
	}
	blobs = blob.Filter(labels, blobs, size)
	blob.Sort(blobs, order)

	res := blobsResult{Width: buf.Width(), Height: buf.Height(), Count: len(blobs), Blobs: make([]blobSummary, 0, len(blobs))}
	for _, b := range blobs {
		res.Blobs = append(res.Blobs, blobSummary{
			ID:       b.ID,
			Rect:     b.Rect,
			Area:     b.Area,
			Fullness: b.Fullness,
			Centroid: b.Centroid,
			Color:    imaging.Describe(b.ColorMean),
			StdDev:   b.ColorStdDev,
		})
	}
	return res, nil
}

func unbounded(n int) int {
	if n <= 0 {
		return math.MaxInt
	}
	return n
}

// === Template Matching Handlers ===

type imageMatchTemplateArgs struct {
	Path                string        `json:"path"`
	TemplatePath        string        `json:"template_path"`
	SimilarityThreshold *float32      `json:"similarity_threshold"`
	Zone                *imaging.Rect `json:"zone"`
}

type matchResult struct {
	Count   int           `json:"count"`
	Matches []match.Match `json:"matches"`
}

func (s *Server) handleImageMatchTemplate(args json.RawMessage) (interface{}, error) {
	var a imageMatchTemplateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.load(a.Path)
	if err != nil {
		return nil, err
	}
	if a.TemplatePath == "" {
		return nil, errors.New("template_path is required")
	}
	tpl, err := s.load(a.TemplatePath)
	if err != nil {
		return nil, err
	}

	if img, tpl, err = sameMatchLayout(img, tpl); err != nil {
		return nil, err
	}

	threshold := s.cfg.SimilarityThreshold
	if a.SimilarityThreshold != nil {
		threshold = *a.SimilarityThreshold
	}
	zone := img.Bounds()
	if a.Zone != nil {
		zone = *a.Zone
	}
	matches, err := match.NewExhaustive(threshold).MatchZone(img, tpl, zone)
	if err != nil {
		return nil, err
	}
	if matches == nil {
		matches = []match.Match{}
	}
	return matchResult{Count: len(matches), Matches: matches}, nil
}

// sameMatchLayout converts img and tpl to a layout the matcher accepts:
// Indexed8 when both are gray, RGB24 otherwise.
func sameMatchLayout(img, tpl *imaging.Buffer) (*imaging.Buffer, *imaging.Buffer, error) {
	target := imaging.RGB24
	if img.Layout() == imaging.Indexed8 && tpl.Layout() == imaging.Indexed8 {
		target = imaging.Indexed8
	}
	var err error
	if img.Layout() != target {
		if img, err = imaging.Convert(img, target); err != nil {
			return nil, nil, err
		}
	}
	if tpl.Layout() != target {
		if tpl, err = imaging.Convert(tpl, target); err != nil {
			return nil, nil, err
		}
	}
	return img, tpl, nil
}
