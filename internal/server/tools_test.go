package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toolMap() map[string]Tool {
	m := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		m[tool.Name] = tool
	}
	return m
}

func TestGetToolDefinitions(t *testing.T) {
	expectedTools := []string{
		"captcha_recognize",
		"captcha_segment",
		"image_blobs",
		"image_match_template",
	}

	tools := toolMap()
	assert.Len(t, tools, len(expectedTools))
	for _, name := range expectedTools {
		assert.Contains(t, tools, name)
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			assert.NotEmpty(t, tool.Description)
			assert.Equal(t, "object", tool.InputSchema["type"])
			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			require.True(t, ok, "InputSchema properties should be a map")

			// Every required field must be a declared property
			required, ok := tool.InputSchema["required"].([]string)
			require.True(t, ok, "'required' should be a string slice")
			for _, r := range required {
				assert.Contains(t, props, r, "required field is not a property")
			}
			assert.Contains(t, required, "path")
		})
	}
}

func TestToolDefinitions_BlobOrders(t *testing.T) {
	props := toolMap()["image_blobs"].InputSchema["properties"].(map[string]interface{})
	order := props["order"].(map[string]interface{})
	enum, ok := order["enum"].([]string)
	require.True(t, ok, "order enum should be a string slice")
	assert.Equal(t, []string{"none", "size", "area", "yx", "xy"}, enum)
}

func TestHandleToolsList(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/list"})

	require.Nil(t, resp.Error)
	result := resp.Result.(map[string]interface{})
	tools, ok := result["tools"].([]Tool)
	require.True(t, ok, "tools should be a slice of Tool")
	assert.Len(t, tools, len(GetToolDefinitions()))
}
