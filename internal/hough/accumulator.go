package hough

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/rs/zerolog"

	"github.com/ironsheep/bahtinov-focus-mcp/internal/logging"
)

// Default parameter-space resolution.
const (
	// DefaultMaxTheta gives one degree per angle bin.
	DefaultMaxTheta = 180

	// DefaultNeighbourhoodSize is the half-width of the non-maximum
	// suppression window.
	DefaultNeighbourhoodSize = 4

	// MaxThetaLimit is the finest angle resolution accepted: 0.05 degrees.
	MaxThetaLimit = 3600
)

var (
	// ErrInvalidDimensions is returned when an accumulator is created for an
	// image with a non-positive width or height.
	ErrInvalidDimensions = errors.New("hough: image dimensions must be positive")

	// ErrEdgeBufferSize is returned by AddPoints when the edge buffer does not
	// hold exactly width*height pixels.
	ErrEdgeBufferSize = errors.New("hough: edge buffer size does not match image dimensions")
)

// Votes is the set of unsigned integer types a vote histogram can be built on.
// Pick the narrowest type that cannot overflow: a cell receives at most one
// vote per edge pixel.
type Votes interface {
	~uint16 | ~uint32 | ~uint64
}

// Config holds the construction-time parameters of an accumulator.
type Config struct {
	// MaxTheta is the number of discrete angles in [0, π).
	MaxTheta int `json:"max_theta"`

	// NeighbourhoodSize is the half-width of the peak search window.
	NeighbourhoodSize int `json:"neighbourhood_size"`
}

// DefaultConfig returns the configuration used by the focus module:
// 180 angle bins and a 9x9 suppression window.
func DefaultConfig() Config {
	return Config{
		MaxTheta:          DefaultMaxTheta,
		NeighbourhoodSize: DefaultNeighbourhoodSize,
	}
}

// Validate reports whether the configuration can build an accumulator.
func (c Config) Validate() error {
	if c.MaxTheta <= 0 || c.MaxTheta > MaxThetaLimit {
		return fmt.Errorf("hough: max_theta must be in [1, %d], got %d", MaxThetaLimit, c.MaxTheta)
	}
	if c.NeighbourhoodSize < 0 || c.NeighbourhoodSize > c.MaxTheta/2 {
		return fmt.Errorf("hough: neighbourhood_size must be in [0, %d], got %d", c.MaxTheta/2, c.NeighbourhoodSize)
	}
	return nil
}

// Accumulator is the theta/r vote histogram for one image.
//
// The histogram only grows while points are added: no operation other than
// Reset lowers a cell. Accumulator is not safe for concurrent use.
type Accumulator[V Votes] struct {
	cfg    Config
	logger zerolog.Logger

	width  int
	height int

	// centre of the image, the origin of r
	centerX float64
	centerY float64

	houghHeight  int
	doubleHeight int
	thetaStep    float64

	votes []V

	numPoints    int
	skippedVotes int

	// sin/cos for every angle bin; voting is the hot loop
	sinCache []float64
	cosCache []float64
}

// New creates an accumulator for a width x height image.
//
// The histogram is sized for the largest possible perpendicular distance
// from the image centre: houghHeight = floor(sqrt(2) * max(width, height) / 2)
// rows on either side of zero.
func New[V Votes](width, height int, cfg Config, logger zerolog.Logger) (*Accumulator[V], error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &Accumulator[V]{
		cfg:       cfg,
		logger:    logging.Component(logger, "hough"),
		width:     width,
		height:    height,
		thetaStep: math.Pi / float64(cfg.MaxTheta),
	}

	a.houghHeight = houghHeightFor(width, height)
	a.doubleHeight = 2 * a.houghHeight

	// Integer division, matching the clipping in NewLine.
	a.centerX = float64(width / 2)
	a.centerY = float64(height / 2)

	a.sinCache = make([]float64, cfg.MaxTheta)
	a.cosCache = make([]float64, cfg.MaxTheta)
	for t := 0; t < cfg.MaxTheta; t++ {
		theta := float64(t) * a.thetaStep
		a.sinCache[t] = math.Sin(theta)
		a.cosCache[t] = math.Cos(theta)
	}

	a.votes = make([]V, cfg.MaxTheta*a.doubleHeight)

	a.logger.Debug().
		Int("width", width).
		Int("height", height).
		Int("max_theta", cfg.MaxTheta).
		Int("double_height", a.doubleHeight).
		Int("cells", len(a.votes)).
		Msg("created hough accumulator")

	return a, nil
}

// HistogramCells returns the number of cells an accumulator for a
// width x height image would hold, without allocating it.
func HistogramCells(width, height int, cfg Config) int {
	return cfg.MaxTheta * 2 * houghHeightFor(width, height)
}

// houghHeightFor returns the number of radius bins on each side of zero.
func houghHeightFor(width, height int) int {
	return int(math.Sqrt2*float64(max(width, height))) / 2
}

// Reset zeroes the histogram and the point counters so the accumulator can
// be reused for another image of the same size.
func (a *Accumulator[V]) Reset() {
	clear(a.votes)
	a.numPoints = 0
	a.skippedVotes = 0
}

// AddPoint casts one vote per angle bin for the edge pixel (x, y).
//
// Votes whose radius bin falls outside [0, doubleHeight) are skipped; near
// the corners of the image rounding can push a handful of votes past the
// boundary and that must not abort the scan.
func (a *Accumulator[V]) AddPoint(x, y int) {
	dx := float64(x) - a.centerX
	dy := float64(y) - a.centerY

	for t := 0; t < a.cfg.MaxTheta; t++ {
		r := int(math.Round(dx*a.cosCache[t]+dy*a.sinCache[t])) + a.houghHeight
		if r < 0 || r >= a.doubleHeight {
			a.skippedVotes++
			a.logger.Trace().
				Int("x", x).
				Int("y", y).
				Int("theta_bin", t).
				Int("r", r).
				Msg("radius out of range, vote skipped")
			continue
		}
		a.votes[r*a.cfg.MaxTheta+t]++
	}
	a.numPoints++
}

// AddPoints votes for every non-zero pixel of a row-major width*height edge
// buffer.
func (a *Accumulator[V]) AddPoints(edges []uint8) error {
	if len(edges) != a.width*a.height {
		return fmt.Errorf("%w: got %d pixels, want %d", ErrEdgeBufferSize, len(edges), a.width*a.height)
	}

	skippedBefore := a.skippedVotes
	pointsBefore := a.numPoints
	for y := 0; y < a.height; y++ {
		row := edges[y*a.width : (y+1)*a.width]
		for x, v := range row {
			if v != 0 {
				a.AddPoint(x, y)
			}
		}
	}

	a.logger.Debug().
		Int("points", a.numPoints-pointsBefore).
		Int("skipped_votes", a.skippedVotes-skippedBefore).
		Msg("accumulated edge buffer")
	return nil
}

// AddEdgePoints votes for each point in turn. Points are not required to lie
// inside the image; votes that fall off the histogram are skipped.
func (a *Accumulator[V]) AddEdgePoints(points []image.Point) {
	for _, p := range points {
		a.AddPoint(p.X, p.Y)
	}
}

// Votes returns the flattened histogram, indexed rBin*MaxTheta + thetaBin.
// The slice is owned by the accumulator and must not be modified.
func (a *Accumulator[V]) Votes() []V { return a.votes }

// At returns the vote count of a single cell.
func (a *Accumulator[V]) At(rBin, thetaBin int) V {
	return a.votes[rBin*a.cfg.MaxTheta+thetaBin]
}

// NumPoints returns how many points have voted since creation or Reset.
func (a *Accumulator[V]) NumPoints() int { return a.numPoints }

// SkippedVotes returns how many votes were dropped because their radius fell
// outside the histogram.
func (a *Accumulator[V]) SkippedVotes() int { return a.skippedVotes }

// Width returns the image width the accumulator was built for.
func (a *Accumulator[V]) Width() int { return a.width }

// Height returns the image height the accumulator was built for.
func (a *Accumulator[V]) Height() int { return a.height }

// HoughHeight returns the radius offset applied to every vote.
func (a *Accumulator[V]) HoughHeight() int { return a.houghHeight }

// DoubleHeight returns the number of radius bins.
func (a *Accumulator[V]) DoubleHeight() int { return a.doubleHeight }

// MaxTheta returns the number of angle bins.
func (a *Accumulator[V]) MaxTheta() int { return a.cfg.MaxTheta }

// ThetaStep returns the width of one angle bin in radians.
func (a *Accumulator[V]) ThetaStep() float64 { return a.thetaStep }
