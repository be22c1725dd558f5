package bahtinov

import (
	"bytes"
	"encoding/json"
	"image"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ironsheep/bahtinov-focus-mcp/internal/hough"
)

const patternSize = 200

// syntheticPattern draws two spikes crossing at the image centre at ±10
// degrees from horizontal, and a horizontal middle spike at row middleY.
func syntheticPattern(middleY int) []uint8 {
	edges := make([]uint8, patternSize*patternSize)
	set := func(x, y int) {
		if x >= 0 && x < patternSize && y >= 0 && y < patternSize {
			edges[y*patternSize+x] = 255
		}
	}

	slope := math.Tan(10 * math.Pi / 180)
	for i := -99; i <= 99; i++ {
		set(100+i, int(math.Round(100+float64(i)*slope)))
		set(100+i, int(math.Round(100-float64(i)*slope)))
	}
	for x := 0; x < patternSize; x++ {
		set(x, middleY)
	}
	return edges
}

func newTestAnalyzer() *Analyzer {
	return NewAnalyzer(hough.DefaultConfig(), DefaultThresholdFraction, zerolog.Nop())
}

func TestAnalyze_MiddleSpikeBelowCrossing(t *testing.T) {
	p, err := newTestAnalyzer().Analyze(syntheticPattern(104), patternSize, patternSize, 60)
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{80, 90, 100}, thetasDeg(p.Lines), 1e-9)
	assert.InDelta(t, 100, p.Focus.Intersection.X, 1.5)
	assert.InDelta(t, 100, p.Focus.Intersection.Y, 1.5)
	assert.InDelta(t, 4, p.Focus.Distance, 1.5)
	assert.Less(t, p.Focus.Error, 0.0)
	assert.Equal(t, 60, p.Threshold)
	assert.GreaterOrEqual(t, p.Candidates, 3)
}

func TestAnalyze_MiddleSpikeAboveCrossing(t *testing.T) {
	p, err := newTestAnalyzer().Analyze(syntheticPattern(96), patternSize, patternSize, 60)
	require.NoError(t, err)

	assert.InDelta(t, 4, p.Focus.Distance, 1.5)
	assert.Greater(t, p.Focus.Error, 0.0)
}

func TestAnalyze_InFocus(t *testing.T) {
	p, err := newTestAnalyzer().Analyze(syntheticPattern(100), patternSize, patternSize, 60)
	require.NoError(t, err)

	assert.InDelta(t, 0, p.Focus.Error, 1.0)
}

func TestAnalyze_AutomaticThreshold(t *testing.T) {
	p, err := newTestAnalyzer().Analyze(syntheticPattern(104), patternSize, patternSize, 0)
	require.NoError(t, err)

	assert.Positive(t, p.Threshold)
	assert.Less(t, p.Focus.Error, 0.0)
}

func TestAnalyze_EmptyImage(t *testing.T) {
	_, err := newTestAnalyzer().Analyze(make([]uint8, 50*50), 50, 50, 0)
	assert.ErrorIs(t, err, ErrInsufficientCandidates)
}

func TestAnalyze_BufferMismatch(t *testing.T) {
	_, err := newTestAnalyzer().Analyze(make([]uint8, 10), 50, 50, 0)
	assert.ErrorIs(t, err, hough.ErrEdgeBufferSize)
}

func TestAnalyzePoints_MatchesBuffer(t *testing.T) {
	edges := syntheticPattern(104)
	var points []image.Point
	for i, v := range edges {
		if v != 0 {
			points = append(points, image.Pt(i%patternSize, i/patternSize))
		}
	}

	a := newTestAnalyzer()
	fromBuffer, err := a.Analyze(edges, patternSize, patternSize, 60)
	require.NoError(t, err)
	fromPoints, err := a.AnalyzePoints(points, patternSize, patternSize, 60)
	require.NoError(t, err)

	assert.Equal(t, fromBuffer, fromPoints)
}

func TestAnalyze_LogsWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	_, err := NewAnalyzer(hough.DefaultConfig(), 0, logger).Analyze(make([]uint8, 100), 10, 10, 0)
	require.ErrorIs(t, err, ErrInsufficientCandidates)

	components := map[string]int{}
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(line, &entry))
		components[entry["component"].(string)]++
		assert.Equal(t, 1, bytes.Count(line, []byte(`"component"`)), "component set twice: %s", line)
	}
	assert.Positive(t, components["hough"])
	assert.Positive(t, components["bahtinov"])
}

func TestNewAnalyzer_ThresholdFractionFallback(t *testing.T) {
	for _, f := range []float64{0, -1, 1.5} {
		a := NewAnalyzer(hough.DefaultConfig(), f, zerolog.Nop())
		assert.Equal(t, DefaultThresholdFraction, a.thresholdFraction)
	}
}

func segmentLine(thetaDeg float64, x1, y1, x2, y2 float64) hough.Line {
	return hough.Line{
		Theta: deg(thetaDeg),
		Begin: r2.Vec{X: x1, Y: y1},
		End:   r2.Vec{X: x2, Y: y2},
	}
}

func TestFocusOf(t *testing.T) {
	lines := [3]hough.Line{
		segmentLine(80, 0, 0, 20, 20),
		segmentLine(90, 0, 12, 20, 12),
		segmentLine(100, 0, 20, 20, 0),
	}

	focus, err := FocusOf(lines)
	require.NoError(t, err)

	assert.InDelta(t, 10, focus.Intersection.X, 1e-9)
	assert.InDelta(t, 10, focus.Intersection.Y, 1e-9)
	assert.InDelta(t, 10, focus.Projection.X, 1e-9)
	assert.InDelta(t, 12, focus.Projection.Y, 1e-9)
	assert.InDelta(t, 0, focus.Offset.X, 1e-9)
	assert.InDelta(t, -2, focus.Offset.Y, 1e-9)
	assert.InDelta(t, 2, focus.Distance, 1e-9)
	assert.InDelta(t, -2, focus.Error, 1e-9)
}

func TestFocusOf_SignFollowsSide(t *testing.T) {
	lines := [3]hough.Line{
		segmentLine(80, 0, 0, 20, 20),
		segmentLine(90, 0, 8, 20, 8),
		segmentLine(100, 0, 20, 20, 0),
	}

	focus, err := FocusOf(lines)
	require.NoError(t, err)

	assert.InDelta(t, 2, focus.Error, 1e-9)
}

func TestFocusOf_OuterSpikesParallel(t *testing.T) {
	lines := [3]hough.Line{
		segmentLine(80, 0, 0, 20, 0),
		segmentLine(90, 0, 5, 20, 5),
		segmentLine(100, 0, 10, 20, 10),
	}

	_, err := FocusOf(lines)
	assert.ErrorIs(t, err, ErrNoIntersection)
}

func TestFocusOf_ProjectionOutsideMiddleSpike(t *testing.T) {
	lines := [3]hough.Line{
		segmentLine(80, 0, 0, 20, 20),
		segmentLine(90, 30, 12, 40, 12),
		segmentLine(100, 0, 20, 20, 0),
	}

	_, err := FocusOf(lines)
	assert.ErrorIs(t, err, ErrProjectionOutsideSegment)
}
