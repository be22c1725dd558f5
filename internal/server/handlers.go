package server

import (
	"encoding/json"
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ironsheep/bahtinov-focus-mcp/internal/bahtinov"
	"github.com/ironsheep/bahtinov-focus-mcp/internal/hough"
	"github.com/ironsheep/bahtinov-focus-mcp/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "bahtinov_analyze").
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
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Debug().Err(err).Str("tool", params.Name).Msg("tool failed")
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
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Resolves the image input into an edge buffer
//  4. Calls the appropriate hough/bahtinov function
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Line Detection
	case "hough_detect_lines":
		return s.handleHoughDetectLines(args)
	case "hough_space_image":
		return s.handleHoughSpaceImage(args)

	// Focus Analysis
	case "bahtinov_analyze":
		return s.handleBahtinovAnalyze(args)
	case "bahtinov_overlay":
		return s.handleBahtinovOverlay(args)

	// Geometry
	case "line_intersect":
		return s.handleLineIntersect(args)
	case "line_point_distance":
		return s.handleLinePointDistance(args)

	// Focus Series
	case "focus_series_create":
		return s.handleFocusSeriesCreate(args)
	case "focus_series_stats":
		return s.handleFocusSeriesStats(args)
	case "focus_series_delete":
		return s.handleFocusSeriesDelete(args)

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

// unmarshalArgs decodes tool arguments. Missing arguments decode as an
// empty object so tools without required parameters can be called bare.
func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	return json.Unmarshal(args, v)
}

// === Line Detection Handlers ===

type houghDetectLinesArgs struct {
	imageInput
	Threshold *int `json:"threshold,omitempty"`
	Limit     int  `json:"limit,omitempty"`
}

type houghDetectLinesResult struct {
	Width         int          `json:"width"`
	Height        int          `json:"height"`
	Origin        pointArg     `json:"origin"`
	Threshold     int          `json:"threshold"`
	Count         int          `json:"count"`
	Lines         []hough.Line `json:"lines"`
	NumPoints     int          `json:"num_points"`
	SkippedVotes  int          `json:"skipped_votes"`
	HighestValue  int          `json:"highest_value"`
	DroppedPoints int          `json:"dropped_points,omitempty"`
}

func (s *Server) handleHoughDetectLines(args json.RawMessage) (interface{}, error) {
	var a houghDetectLinesArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Limit < 0 {
		return nil, fmt.Errorf("limit must not be negative, got %d", a.Limit)
	}

	acc, edges, err := s.vote(&a.imageInput)
	if err != nil {
		return nil, err
	}

	highest := int(acc.HighestValue())
	threshold := s.threshold(a.Threshold)
	if threshold <= 0 {
		threshold = int(s.cfg.ThresholdFraction * float64(highest))
	}

	lines := acc.Lines(threshold)
	if a.Limit > 0 && len(lines) > a.Limit {
		hough.SortByScore(lines)
		lines = lines[:a.Limit]
	}

	return &houghDetectLinesResult{
		Width:         edges.width,
		Height:        edges.height,
		Origin:        pointArg{X: edges.origin.X, Y: edges.origin.Y},
		Threshold:     threshold,
		Count:         len(lines),
		Lines:         lines,
		NumPoints:     acc.NumPoints(),
		SkippedVotes:  acc.SkippedVotes(),
		HighestValue:  highest,
		DroppedPoints: edges.dropped,
	}, nil
}

type houghSpaceImageArgs struct {
	imageInput
	Scale float64 `json:"scale,omitempty"`
}

type houghSpaceImageResult struct {
	*imaging.EncodedImage
	MaxTheta     int `json:"max_theta"`
	DoubleHeight int `json:"double_height"`
	HighestValue int `json:"highest_value"`
}

func (s *Server) handleHoughSpaceImage(args json.RawMessage) (interface{}, error) {
	var a houghSpaceImageArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	if err := checkScale(a.Scale); err != nil {
		return nil, err
	}

	acc, _, err := s.vote(&a.imageInput)
	if err != nil {
		return nil, err
	}

	encoded, err := imaging.EncodePNG(acc.Image(), a.Scale)
	if err != nil {
		return nil, err
	}
	return &houghSpaceImageResult{
		EncodedImage: encoded,
		MaxTheta:     acc.MaxTheta(),
		DoubleHeight: acc.DoubleHeight(),
		HighestValue: int(acc.HighestValue()),
	}, nil
}

// vote resolves the input and fills an accumulator with it.
func (s *Server) vote(in *imageInput) (*hough.Accumulator[uint32], *edgeImage, error) {
	cfg, edges, err := s.prepare(in)
	if err != nil {
		return nil, nil, err
	}

	acc, err := hough.New[uint32](edges.width, edges.height, cfg, s.baseLogger)
	if err != nil {
		return nil, nil, err
	}
	if err := acc.AddPoints(edges.edges); err != nil {
		return nil, nil, err
	}
	return acc, edges, nil
}

// === Focus Analysis Handlers ===

type bahtinovAnalyzeArgs struct {
	imageInput
	Threshold *int   `json:"threshold,omitempty"`
	SeriesID  string `json:"series_id,omitempty"`
}

type bahtinovAnalyzeResult struct {
	*bahtinov.Pattern
	Width  int             `json:"width"`
	Height int             `json:"height"`
	Origin pointArg        `json:"origin"`
	Series *bahtinov.Stats `json:"series,omitempty"`
}

func (s *Server) handleBahtinovAnalyze(args json.RawMessage) (interface{}, error) {
	var a bahtinovAnalyzeArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.SeriesID != "" {
		if _, err := s.series.Get(a.SeriesID); err != nil {
			return nil, err
		}
	}

	pattern, edges, err := s.analyze(&a.imageInput, a.Threshold)
	if err != nil {
		return nil, err
	}

	result := &bahtinovAnalyzeResult{
		Pattern: pattern,
		Width:   edges.width,
		Height:  edges.height,
		Origin:  pointArg{X: edges.origin.X, Y: edges.origin.Y},
	}
	if a.SeriesID != "" {
		stats, err := s.series.Append(a.SeriesID, pattern.Focus)
		if err != nil {
			return nil, err
		}
		result.Series = &stats
	}
	return result, nil
}

type bahtinovOverlayArgs struct {
	imageInput
	Threshold *int    `json:"threshold,omitempty"`
	Scale     float64 `json:"scale,omitempty"`
}

type bahtinovOverlayResult struct {
	*imaging.EncodedImage
	FocusError float64  `json:"focus_error"`
	Colors     []string `json:"colors"`
}

func (s *Server) handleBahtinovOverlay(args json.RawMessage) (interface{}, error) {
	var a bahtinovOverlayArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	if err := checkScale(a.Scale); err != nil {
		return nil, err
	}

	pattern, edges, err := s.analyze(&a.imageInput, a.Threshold)
	if err != nil {
		return nil, err
	}

	encoded, err := bahtinov.RenderOverlay(edges.edges, edges.width, edges.height, pattern, a.Scale)
	if err != nil {
		return nil, err
	}
	return &bahtinovOverlayResult{
		EncodedImage: encoded,
		FocusError:   pattern.Focus.Error,
		Colors:       []string{bahtinov.SpikeColor(0), bahtinov.SpikeColor(1), bahtinov.SpikeColor(2)},
	}, nil
}

func (s *Server) analyze(in *imageInput, threshold *int) (*bahtinov.Pattern, *edgeImage, error) {
	cfg, edges, err := s.prepare(in)
	if err != nil {
		return nil, nil, err
	}

	analyzer := bahtinov.NewAnalyzer(cfg, s.cfg.ThresholdFraction, s.baseLogger)
	pattern, err := analyzer.Analyze(edges.edges, edges.width, edges.height, s.threshold(threshold))
	if err != nil {
		return nil, nil, err
	}
	return pattern, edges, nil
}

// === Geometry Handlers ===

type segmentArg struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

func (a segmentArg) segment() hough.Segment {
	return hough.Segment{
		Begin: r2.Vec{X: a.X1, Y: a.Y1},
		End:   r2.Vec{X: a.X2, Y: a.Y2},
	}
}

type lineIntersectArgs struct {
	A segmentArg `json:"a"`
	B segmentArg `json:"b"`
}

type lineIntersectResult struct {
	Result       hough.IntersectResult `json:"result"`
	Intersecting bool                  `json:"intersecting"`
	Point        *r2.Vec               `json:"point,omitempty"`
}

func (s *Server) handleLineIntersect(args json.RawMessage) (interface{}, error) {
	var a lineIntersectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	kind, point := hough.Intersect(a.A.segment(), a.B.segment())
	result := &lineIntersectResult{Result: kind, Intersecting: kind == hough.Intersecting}
	if result.Intersecting {
		result.Point = &point
	}
	return result, nil
}

type linePointDistanceArgs struct {
	Point struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	} `json:"point"`
	Segment segmentArg `json:"segment"`
}

type linePointDistanceResult struct {
	OK         bool    `json:"ok"`
	Projection *r2.Vec `json:"projection,omitempty"`
	Distance   float64 `json:"distance"`
}

func (s *Server) handleLinePointDistance(args json.RawMessage) (interface{}, error) {
	var a linePointDistanceArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	projection, distance, ok := hough.DistancePointLine(r2.Vec{X: a.Point.X, Y: a.Point.Y}, a.Segment.segment())
	result := &linePointDistanceResult{OK: ok}
	if ok {
		result.Projection = &projection
		result.Distance = distance
	}
	return result, nil
}

// === Focus Series Handlers ===

type focusSeriesArgs struct {
	SeriesID string `json:"series_id"`
}

type focusSeriesStatsResult struct {
	bahtinov.Stats
	Samples []bahtinov.Sample `json:"samples"`
}

func (s *Server) handleFocusSeriesCreate(args json.RawMessage) (interface{}, error) {
	series := s.series.Create()
	s.logger.Info().Str("series_id", series.ID).Msg("focus series created")
	return &series, nil
}

func (s *Server) handleFocusSeriesStats(args json.RawMessage) (interface{}, error) {
	var a focusSeriesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	series, err := s.series.Get(a.SeriesID)
	if err != nil {
		return nil, err
	}
	return &focusSeriesStatsResult{Stats: series.Stats(), Samples: series.Samples}, nil
}

func (s *Server) handleFocusSeriesDelete(args json.RawMessage) (interface{}, error) {
	var a focusSeriesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	if _, err := s.series.Get(a.SeriesID); err != nil {
		return nil, err
	}
	s.series.Delete(a.SeriesID)
	s.logger.Info().Str("series_id", a.SeriesID).Msg("focus series deleted")
	return map[string]interface{}{"series_id": a.SeriesID, "deleted": true}, nil
}
