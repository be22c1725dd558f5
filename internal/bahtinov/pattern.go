package bahtinov

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ironsheep/bahtinov-focus-mcp/internal/hough"
	"github.com/ironsheep/bahtinov-focus-mcp/internal/logging"
)

var (
	// ErrNoIntersection is returned when the two outer spikes do not cross
	// inside the image.
	ErrNoIntersection = errors.New("bahtinov: outer spikes do not intersect")

	// ErrProjectionOutsideSegment is returned when the crossing point of the
	// outer spikes cannot be projected onto the middle spike.
	ErrProjectionOutsideSegment = errors.New("bahtinov: crossing point does not project onto the middle spike")
)

// DefaultThresholdFraction is the share of the strongest peak a cell must
// exceed when the caller does not supply a vote threshold.
const DefaultThresholdFraction = 0.5

// Focus describes how far the middle spike is from the crossing point of
// the outer spikes. It is zero when the optics are in focus.
type Focus struct {
	// Intersection is where the two outer spikes cross.
	Intersection r2.Vec `json:"intersection"`

	// Projection is the closest point to Intersection on the middle spike.
	Projection r2.Vec `json:"projection"`

	// Offset is Intersection - Projection.
	Offset r2.Vec `json:"offset"`

	// Distance is the length of Offset in pixels.
	Distance float64 `json:"distance"`

	// Error is Distance signed by the side of the middle spike the
	// intersection lies on. The sign flips when focus passes through zero.
	Error float64 `json:"focus_error"`
}

// Pattern is a detected Bahtinov diffraction pattern: the three spikes
// ordered by theta plus the focus geometry derived from them.
type Pattern struct {
	// Lines are the outer, middle and outer spike.
	Lines [3]hough.Line `json:"lines"`

	// Focus is the focus geometry.
	Focus Focus `json:"focus"`

	// Threshold is the vote threshold that was applied.
	Threshold int `json:"threshold"`

	// Candidates is the number of peaks the spikes were chosen from.
	Candidates int `json:"candidates"`

	// NumPoints is the number of edge pixels that voted.
	NumPoints int `json:"num_points"`
}

// Analyzer finds Bahtinov patterns in edge images.
type Analyzer struct {
	cfg               hough.Config
	thresholdFraction float64
	logger            zerolog.Logger

	// houghLogger is the untagged logger handed to accumulators, which
	// add their own component.
	houghLogger zerolog.Logger
}

// NewAnalyzer creates an analyzer. thresholdFraction outside (0, 1] falls
// back to DefaultThresholdFraction.
func NewAnalyzer(cfg hough.Config, thresholdFraction float64, logger zerolog.Logger) *Analyzer {
	if thresholdFraction <= 0 || thresholdFraction > 1 {
		thresholdFraction = DefaultThresholdFraction
	}
	return &Analyzer{
		cfg:               cfg,
		thresholdFraction: thresholdFraction,
		logger:            logging.Component(logger, "bahtinov"),
		houghLogger:       logger,
	}
}

// Analyze detects the pattern in a row-major width*height edge buffer.
//
// threshold <= 0 selects the vote threshold automatically as the configured
// fraction of the strongest peak.
func (a *Analyzer) Analyze(edges []uint8, width, height, threshold int) (*Pattern, error) {
	acc, err := hough.New[uint32](width, height, a.cfg, a.houghLogger)
	if err != nil {
		return nil, err
	}
	if err := acc.AddPoints(edges); err != nil {
		return nil, err
	}
	return a.analyze(acc, threshold)
}

// AnalyzePoints detects the pattern from a list of edge points in a
// width x height image.
func (a *Analyzer) AnalyzePoints(points []image.Point, width, height, threshold int) (*Pattern, error) {
	acc, err := hough.New[uint32](width, height, a.cfg, a.houghLogger)
	if err != nil {
		return nil, err
	}
	acc.AddEdgePoints(points)
	return a.analyze(acc, threshold)
}

func (a *Analyzer) analyze(acc *hough.Accumulator[uint32], threshold int) (*Pattern, error) {
	if threshold <= 0 {
		threshold = int(a.thresholdFraction * float64(acc.HighestValue()))
	}

	candidates := acc.Lines(threshold)
	lines, err := SortedTopThreeLines(candidates)
	if err != nil {
		a.logger.Debug().
			Int("threshold", threshold).
			Int("candidates", len(candidates)).
			Int("points", acc.NumPoints()).
			Msg("not enough lines for a bahtinov pattern")
		return nil, err
	}

	focus, err := FocusOf(lines)
	if err != nil {
		return nil, err
	}

	a.logger.Debug().
		Float64("theta_outer_1", lines[0].AngleDegrees()).
		Float64("theta_middle", lines[1].AngleDegrees()).
		Float64("theta_outer_2", lines[2].AngleDegrees()).
		Float64("focus_error", focus.Error).
		Msg("bahtinov pattern found")

	return &Pattern{
		Lines:      lines,
		Focus:      focus,
		Threshold:  threshold,
		Candidates: len(candidates),
		NumPoints:  acc.NumPoints(),
	}, nil
}

// FocusOf derives the focus geometry from three spikes ordered by theta:
// the outer spikes are intersected and the crossing point is projected onto
// the middle spike.
func FocusOf(lines [3]hough.Line) (Focus, error) {
	outer1 := lines[0].Segment()
	middle := lines[1].Segment()
	outer2 := lines[2].Segment()

	result, intersection := hough.Intersect(outer1, outer2)
	if result != hough.Intersecting {
		return Focus{}, fmt.Errorf("%w: %s", ErrNoIntersection, result)
	}

	projection, distance, ok := hough.DistancePointLine(intersection, middle)
	if !ok {
		return Focus{}, ErrProjectionOutsideSegment
	}

	offset := r2.Sub(intersection, projection)
	side := r2.Cross(r2.Sub(middle.End, middle.Begin), offset)

	return Focus{
		Intersection: intersection,
		Projection:   projection,
		Offset:       offset,
		Distance:     distance,
		Error:        math.Copysign(distance, side),
	}, nil
}
