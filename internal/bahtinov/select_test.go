package bahtinov

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/bahtinov-focus-mcp/internal/hough"
)

func deg(d float64) float64 { return d * math.Pi / 180 }

func candidate(thetaDeg float64, score int) hough.Line {
	return hough.Line{Theta: deg(thetaDeg), Score: score}
}

func thetasDeg(lines [3]hough.Line) []float64 {
	out := make([]float64, len(lines))
	for i, l := range lines {
		out[i] = l.AngleDegrees()
	}
	return out
}

func TestSortedTopThreeLines_RecoversRotatedLine(t *testing.T) {
	tests := []struct {
		name   string
		thetas [3]float64
	}{
		{"first rotated", [3]float64{180, 65, 130}},
		{"second rotated", [3]float64{0, 245, 130}},
		{"third rotated", [3]float64{0, 65, 310}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidates := []hough.Line{
				candidate(tt.thetas[0], 300),
				candidate(tt.thetas[1], 200),
				candidate(tt.thetas[2], 100),
			}

			top, err := SortedTopThreeLines(candidates)
			require.NoError(t, err)

			assert.InDeltaSlice(t, []float64{0, 65, 130}, thetasDeg(top), 1e-9)
		})
	}
}

func TestSortedTopThreeLines_SpikesAcrossSeam(t *testing.T) {
	// A spike whose normal lies just below 0 is voted near 180.
	candidates := []hough.Line{
		candidate(0, 500),
		candidate(170, 400),
		candidate(10, 450),
	}

	top, err := SortedTopThreeLines(candidates)
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{-10, 0, 10}, thetasDeg(top), 1e-9)
	assert.Equal(t, 400, top[0].Score)
	assert.Equal(t, 500, top[1].Score)
	assert.Equal(t, 450, top[2].Score)
}

func TestSortedTopThreeLines_WideTripleWrapsLargest(t *testing.T) {
	// 130 exceeds both others by more than MaskAngle and is moved down by π.
	// 65 is not corrected because it lies below 130 before any correction.
	candidates := []hough.Line{
		candidate(0, 300),
		candidate(65, 200),
		candidate(130, 100),
	}

	top, err := SortedTopThreeLines(candidates)
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{-50, 0, 65}, thetasDeg(top), 1e-9)
	assert.Equal(t, 100, top[0].Score)
	assert.Equal(t, 300, top[1].Score)
	assert.Equal(t, 200, top[2].Score)
}

func TestSortedTopThreeLines_NoCorrectionNeeded(t *testing.T) {
	candidates := []hough.Line{
		candidate(100, 10),
		candidate(80, 30),
		candidate(90, 20),
	}

	top, err := SortedTopThreeLines(candidates)
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{80, 90, 100}, thetasDeg(top), 1e-9)
}

func TestSortedTopThreeLines_KeepsHighestScores(t *testing.T) {
	candidates := []hough.Line{
		candidate(45, 5),
		candidate(80, 300),
		candidate(120, 7),
		candidate(90, 200),
		candidate(100, 250),
	}

	top, err := SortedTopThreeLines(candidates)
	require.NoError(t, err)

	assert.Equal(t, []int{300, 200, 250}, []int{top[0].Score, top[1].Score, top[2].Score})
}

func TestSortedTopThreeLines_DoesNotModifyCandidates(t *testing.T) {
	candidates := []hough.Line{
		candidate(0, 500),
		candidate(170, 400),
		candidate(10, 450),
	}
	before := append([]hough.Line(nil), candidates...)

	_, err := SortedTopThreeLines(candidates)
	require.NoError(t, err)

	assert.Equal(t, before, candidates)
}

func TestSortedTopThreeLines_InsufficientCandidates(t *testing.T) {
	for n := 0; n < 3; n++ {
		candidates := make([]hough.Line, n)
		_, err := SortedTopThreeLines(candidates)
		assert.ErrorIs(t, err, ErrInsufficientCandidates, "n=%d", n)
	}
}
