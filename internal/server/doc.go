// Package server implements the MCP (Model Context Protocol) server for
// Bahtinov mask focusing.
//
// This package provides a JSON-RPC 2.0 server that exposes the Hough line
// detector and the Bahtinov focus measurement through the MCP protocol, so
// an assistant driving a telescope can judge focus from a star image.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
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
// Line Detection:
//   - hough_detect_lines: Peaks of the Hough histogram as clipped lines
//   - hough_space_image: The histogram rendered as PNG
//
// Focus Analysis:
//   - bahtinov_analyze: Three spikes plus focus error
//   - bahtinov_overlay: Spikes and magnified offset drawn over the edges
//
// Geometry:
//   - line_intersect: Segment intersection
//   - line_point_distance: Point projection onto a segment
//
// Focus Series:
//   - focus_series_create, focus_series_stats, focus_series_delete
//
// # Image Input
//
// Images are not decoded by the server. Tools take the image as one of:
//   - edges: base64 edge buffer, non-zero bytes are edges
//   - points: a list of {x, y} edge pixels
//   - pixels: base64 intensity buffer, turned into edges by thresholding
//     (optionally blurred) or by Canny edge detection
//
// An optional region crops the image before voting.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	srv := server.New(cfg, logger)
//	if err := srv.Run(); err != nil {
//	    logger.Fatal().Err(err).Msg("server error")
//	}
package server
