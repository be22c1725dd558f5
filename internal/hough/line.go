package hough

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
)

// Segment is a straight line segment between two points in image space.
type Segment struct {
	Begin r2.Vec `json:"begin"`
	End   r2.Vec `json:"end"`
}

// Length returns the Euclidean length of the segment.
func (s Segment) Length() float64 {
	return r2.Norm(r2.Sub(s.End, s.Begin))
}

// Line is a line detected in Hough space, reconstructed as a segment clipped
// to the image rectangle.
//
// Theta is the angle of the line's normal in radians. It may be moved by -π
// when the Bahtinov selection corrects for the direction ambiguity of the
// vote; that describes the same infinite line, so Begin and End stay valid.
type Line struct {
	// Theta is the normal angle in radians.
	Theta float64 `json:"theta"`

	// R is the winning radius bin (offset by houghHeight).
	R int `json:"r"`

	// Score is the vote count of the peak.
	Score int `json:"score"`

	// Begin and End are the clipped segment endpoints.
	Begin r2.Vec `json:"begin"`
	End   r2.Vec `json:"end"`
}

// NewLine reconstructs the line for peak (theta, r) of a width x height
// image.
//
// Near-vertical lines (theta < π/4 or theta > 3π/4) are parameterised by
// y = 0 and y = height-1 and solved for x, dividing by cos(theta). The
// others are parameterised by x = 0 and x = width-1 and solved for y,
// dividing by sin(theta). The branch keeps the divisor away from zero.
func NewLine(theta float64, r, score, width, height int) Line {
	houghHeight := houghHeightFor(width, height)
	centerX := float64(width / 2)
	centerY := float64(height / 2)

	sinTheta := math.Sin(theta)
	cosTheta := math.Cos(theta)
	dist := float64(r - houghHeight)

	var x1, y1, x2, y2 float64
	if theta < math.Pi*0.25 || theta > math.Pi*0.75 {
		y2 = float64(height) - 1
		x1 = (dist-(y1-centerY)*sinTheta)/cosTheta + centerX
		x2 = (dist-(y2-centerY)*sinTheta)/cosTheta + centerX
	} else {
		x2 = float64(width) - 1
		y1 = (dist-(x1-centerX)*cosTheta)/sinTheta + centerY
		y2 = (dist-(x2-centerX)*cosTheta)/sinTheta + centerY
	}

	return Line{
		Theta: theta,
		R:     r,
		Score: score,
		Begin: r2.Vec{X: x1, Y: y1},
		End:   r2.Vec{X: x2, Y: y2},
	}
}

// Segment returns the clipped segment of the line.
func (l Line) Segment() Segment {
	return Segment{Begin: l.Begin, End: l.End}
}

// Length returns the length of the clipped segment.
func (l Line) Length() float64 {
	return l.Segment().Length()
}

// AngleDegrees returns Theta in degrees.
func (l Line) AngleDegrees() float64 {
	return l.Theta * 180 / math.Pi
}

// SortByScore orders lines by descending score. Equal scores keep their
// extraction order.
func SortByScore(lines []Line) {
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Score > lines[j].Score
	})
}

// SortByTheta orders lines by ascending theta.
func SortByTheta(lines []Line) {
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Theta < lines[j].Theta
	})
}
