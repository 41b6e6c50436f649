package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to the image file",
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "captcha_recognize",
			Description: "Read the digits of a CAPTCHA image. Returns the recognized text and, per glyph, the chosen symbol, its similarity and whether it came from a template or OCR.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "captcha_segment",
			Description: "Split a CAPTCHA image into normalized glyphs and return each one as a base64-encoded PNG with the rectangle it was cut from.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"scale": map[string]interface{}{
						"type":        "integer",
						"description": "Optional integer scale factor for the returned PNGs. Default 1",
						"default":     1,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_blobs",
			Description: "Binarize an image and list its dark connected components (8-connected) with bounding box, pixel count, fullness, centroid and mean color.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"min_width": map[string]interface{}{
						"type":        "integer",
						"description": "Minimum blob width. Default 1",
					},
					"min_height": map[string]interface{}{
						"type":        "integer",
						"description": "Minimum blob height. Default 1",
					},
					"max_width": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum blob width, 0 for no limit",
					},
					"max_height": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum blob height, 0 for no limit",
					},
					"coupled": map[string]interface{}{
						"type":        "boolean",
						"description": "Reject a blob only when both width and height are out of range",
						"default":     false,
					},
					"order": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"none", "size", "area", "yx", "xy"},
						"description": "Sort order of the result. Default none (label order)",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_match_template",
			Description: "Find every placement of a template image inside an image by exhaustive comparison. Returns matches sorted by similarity.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"template_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the template image",
					},
					"similarity_threshold": map[string]interface{}{
						"type":        "number",
						"description": "Minimum similarity (0-1). Defaults to the configured threshold",
					},
					"zone": map[string]interface{}{
						"type":        "object",
						"description": "Optional search zone; defaults to the whole image",
						"properties": map[string]interface{}{
							"x":      map[string]interface{}{"type": "integer"},
							"y":      map[string]interface{}{"type": "integer"},
							"width":  map[string]interface{}{"type": "integer"},
							"height": map[string]interface{}{"type": "integer"},
						},
						"required": []string{"x", "y", "width", "height"},
					},
				},
				"required": []string{"path", "template_path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
