package bahtinov

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/ironsheep/bahtinov-focus-mcp/internal/hough"
)

// MaskAngle is the largest angle expected between neighbouring diffraction
// spikes: the 20 degree spacing of the mask plus a 5 degree margin.
const MaskAngle = 25 * math.Pi / 180

// ErrInsufficientCandidates is returned when fewer than three lines are
// available to pick the diffraction spikes from.
var ErrInsufficientCandidates = errors.New("bahtinov: fewer than three candidate lines")

// SortedTopThreeLines picks the three highest-scoring lines and returns them
// ordered by ascending theta.
//
// Voting cannot tell a line's direction, so a spike whose normal lies just
// below 0 is reported just below π instead. A line whose theta exceeds the
// theta of both other lines by more than MaskAngle is taken to be such a
// line and moved down by π. At most one correction is applied per line.
// Triples spread wider than the mask allows are corrected the same way, so
// 0, 65 and 130 degrees come back as -50, 0 and 65.
//
// The candidates slice is not modified.
func SortedTopThreeLines(candidates []hough.Line) ([3]hough.Line, error) {
	var top [3]hough.Line
	if len(candidates) < 3 {
		return top, fmt.Errorf("%w: got %d", ErrInsufficientCandidates, len(candidates))
	}

	sorted := slices.Clone(candidates)
	hough.SortByScore(sorted)
	copy(top[:], sorted[:3])

	// Decide every correction from the uncorrected angles.
	var wrap [3]bool
	for i := range top {
		wrap[i] = true
		for j := range top {
			if i != j && top[i].Theta-top[j].Theta <= MaskAngle {
				wrap[i] = false
			}
		}
	}
	for i := range top {
		if wrap[i] {
			top[i].Theta -= math.Pi
		}
	}

	hough.SortByTheta(top[:])
	return top, nil
}
