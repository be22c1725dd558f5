package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// imageInputProperties returns the schema properties shared by every tool
// that takes an image, merged with the tool's own properties.
func imageInputProperties(extra map[string]interface{}) map[string]interface{} {
	props := map[string]interface{}{
		"width": map[string]interface{}{
			"type":        "integer",
			"description": "Image width in pixels (at most 16384; width*height at most 67108864)",
		},
		"height": map[string]interface{}{
			"type":        "integer",
			"description": "Image height in pixels (at most 16384)",
		},
		"edges": map[string]interface{}{
			"type":        "string",
			"description": "Base64 row-major edge buffer of width*height bytes; non-zero bytes are edges",
		},
		"points": map[string]interface{}{
			"type":        "array",
			"description": "Edge pixels as {x, y} objects. Points outside the image are dropped",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x": map[string]interface{}{"type": "integer"},
					"y": map[string]interface{}{"type": "integer"},
				},
				"required": []string{"x", "y"},
			},
		},
		"pixels": map[string]interface{}{
			"type":        "string",
			"description": "Base64 row-major 8-bit intensity buffer of width*height bytes; edges are extracted with edge_method",
		},
		"edge_method": map[string]interface{}{
			"type":        "string",
			"description": "Edge extraction for pixels: 'threshold' (bright spikes on dark sky) or 'canny' (outlines of wide spikes). Default 'threshold'",
			"enum":        []string{"threshold", "canny"},
			"default":     "threshold",
		},
		"level": map[string]interface{}{
			"type":        "integer",
			"description": "Threshold method: intensity at or above which a pixel is an edge (0-255). Default 128",
			"default":     128,
		},
		"blur": map[string]interface{}{
			"type":        "number",
			"description": "Threshold method: Gaussian blur radius applied first to suppress hot pixels. Default 0 (none)",
			"default":     0,
		},
		"canny_low": map[string]interface{}{
			"type":        "integer",
			"description": "Canny method: low gradient threshold (0-255). Default 50",
			"default":     50,
		},
		"canny_high": map[string]interface{}{
			"type":        "integer",
			"description": "Canny method: high gradient threshold (0-255). Default 150",
			"default":     150,
		},
		"region": map[string]interface{}{
			"type":        "object",
			"description": "Optional region of interest; result coordinates are relative to (x1, y1)",
			"properties": map[string]interface{}{
				"x1": map[string]interface{}{"type": "integer"},
				"y1": map[string]interface{}{"type": "integer"},
				"x2": map[string]interface{}{"type": "integer", "description": "Exclusive"},
				"y2": map[string]interface{}{"type": "integer", "description": "Exclusive"},
			},
		},
		"max_theta": map[string]interface{}{
			"type":        "integer",
			"description": "Number of angle bins over [0, 180) degrees, at most 3600. Default from server config (180)",
		},
		"neighbourhood_size": map[string]interface{}{
			"type":        "integer",
			"description": "Half-width of the peak suppression window, at most max_theta/2. Default from server config (4)",
		},
	}
	for k, v := range extra {
		props[k] = v
	}
	return props
}

func thresholdProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": "Vote count a peak must exceed. 0 or omitted selects it automatically as a fraction (server threshold_fraction, default 0.5) of the strongest peak",
	}
}

func scaleProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": "Optional scale factor for the returned image, at most 16. Default 1.0",
		"default":     1.0,
	}
}

func segmentSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"x1": map[string]interface{}{"type": "number"},
			"y1": map[string]interface{}{"type": "number"},
			"x2": map[string]interface{}{"type": "number"},
			"y2": map[string]interface{}{"type": "number"},
		},
		"required": []string{"x1", "y1", "x2", "y2"},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	imageRequired := []string{"width", "height"}

	return []Tool{
		// Line Detection
		{
			Name:        "hough_detect_lines",
			Description: "Detect straight lines in an edge image with the Hough transform. Returns every local maximum above the threshold with its angle, radius bin, score and endpoints clipped to the image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": imageInputProperties(map[string]interface{}{
					"threshold": thresholdProperty(),
					"limit": map[string]interface{}{
						"type":        "integer",
						"description": "Return only the highest-scoring lines. Default 0 (all, in angle order)",
					},
				}),
				"required": imageRequired,
			},
		},
		{
			Name:        "hough_space_image",
			Description: "Render the Hough vote histogram as a PNG: angle bins along X, radius bins along Y, darker cells hold more votes. Use this to judge a threshold.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": imageInputProperties(map[string]interface{}{
					"scale": scaleProperty(),
				}),
				"required": imageRequired,
			},
		},

		// Focus Analysis
		{
			Name:        "bahtinov_analyze",
			Description: "Find the three diffraction spikes of a Bahtinov mask and measure focus. Returns the spikes ordered by angle, where the outer spikes cross, the offset of the middle spike from that point and the signed focus error in pixels (0 is in focus; the sign tells the focuser direction).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": imageInputProperties(map[string]interface{}{
					"threshold": thresholdProperty(),
					"series_id": map[string]interface{}{
						"type":        "string",
						"description": "Optional focus series to record the measurement in",
					},
				}),
				"required": imageRequired,
			},
		},
		{
			Name:        "bahtinov_overlay",
			Description: "Analyse a Bahtinov pattern and return the edge image with the three spikes drawn in red, green and dark green and the focus offset drawn magnified 15x.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": imageInputProperties(map[string]interface{}{
					"threshold": thresholdProperty(),
					"scale":     scaleProperty(),
				}),
				"required": imageRequired,
			},
		},

		// Geometry
		{
			Name:        "line_intersect",
			Description: "Intersect two line segments. Result is 'intersecting' (with the point), 'not_intersecting', 'parallel' or 'coincident'.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"a": segmentSchema("First segment"),
					"b": segmentSchema("Second segment"),
				},
				"required": []string{"a", "b"},
			},
		},
		{
			Name:        "line_point_distance",
			Description: "Project a point onto a segment. Returns ok=false when the segment has no length or the projection falls outside it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"point": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"x": map[string]interface{}{"type": "number"},
							"y": map[string]interface{}{"type": "number"},
						},
						"required": []string{"x", "y"},
					},
					"segment": segmentSchema("Segment to project onto"),
				},
				"required": []string{"point", "segment"},
			},
		},

		// Focus Series
		{
			Name:        "focus_series_create",
			Description: "Start a focus series. Pass the returned id as series_id to bahtinov_analyze to average measurements over several frames.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "focus_series_stats",
			Description: "Get the samples of a focus series with the mean and standard deviation of the focus error.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"series_id": map[string]interface{}{
						"type":        "string",
						"description": "Series ID from focus_series_create",
					},
				},
				"required": []string{"series_id"},
			},
		},
		{
			Name:        "focus_series_delete",
			Description: "Delete a focus series.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"series_id": map[string]interface{}{
						"type":        "string",
						"description": "Series ID from focus_series_create",
					},
				},
				"required": []string{"series_id"},
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
