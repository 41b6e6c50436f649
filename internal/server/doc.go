// Package server implements the MCP (Model Context Protocol) server for
// numeric CAPTCHA recognition.
//
// The server speaks JSON-RPC 2.0 over stdio:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - captcha_recognize: Read the digits of a CAPTCHA image
//   - captcha_segment: Return the normalized glyphs as PNGs
//   - image_blobs: List the dark connected components of an image
//   - image_match_template: Locate a template inside an image
//
// # Error Handling
//
// Malformed tools/call parameters produce error code -32602. Failures inside a
// tool produce -32000 with the error text in the data field. Unknown methods
// produce -32601.
//
// # Image Caching
//
// Decoded images are cached by path, so repeated calls on the same CAPTCHA
// decode it once.
package server
