package hough

import (
	"image"
	"image/color"
)

// Lines returns a line for every local maximum of the histogram whose vote
// count exceeds threshold.
//
// A cell (t, r) is a local maximum when no cell in the (2N+1)x(2N+1) window
// around it holds strictly more votes, N being the neighbourhood size. The
// window wraps around the angle axis. Radius bins closer than N to either
// end of the histogram are not examined. Cells on a plateau of equal votes
// are all reported.
//
// Lines are returned in scan order: by angle bin, then radius bin. An
// accumulator that has not seen any point yields no lines. Lines does not
// modify the histogram, so repeated calls return the same result.
func (a *Accumulator[V]) Lines(threshold int) []Line {
	lines := make([]Line, 0)
	if a.numPoints == 0 {
		return lines
	}

	n := a.cfg.NeighbourhoodSize
	maxTheta := a.cfg.MaxTheta

	for t := 0; t < maxTheta; t++ {
		for r := n; r < a.doubleHeight-n; r++ {
			peak := a.votes[r*maxTheta+t]
			if threshold >= 0 && uint64(peak) <= uint64(threshold) {
				continue
			}
			if !a.isLocalMax(t, r, peak) {
				continue
			}

			theta := float64(t) * a.thetaStep
			lines = append(lines, NewLine(theta, r, int(peak), a.width, a.height))
		}
	}

	a.logger.Debug().
		Int("threshold", threshold).
		Int("lines", len(lines)).
		Msg("extracted hough lines")
	return lines
}

// isLocalMax reports whether no cell in the neighbourhood of (t, r) exceeds
// peak. r must lie at least NeighbourhoodSize bins inside the histogram.
func (a *Accumulator[V]) isLocalMax(t, r int, peak V) bool {
	n := a.cfg.NeighbourhoodSize
	maxTheta := a.cfg.MaxTheta

	for dt := -n; dt <= n; dt++ {
		nt := ((t+dt)%maxTheta + maxTheta) % maxTheta
		for dr := -n; dr <= n; dr++ {
			if a.votes[(r+dr)*maxTheta+nt] > peak {
				return false
			}
		}
	}
	return true
}

// HighestValue returns the largest vote count in the histogram.
func (a *Accumulator[V]) HighestValue() V {
	var highest V
	for _, v := range a.votes {
		if v > highest {
			highest = v
		}
	}
	return highest
}

// Image renders the histogram for visual inspection: one pixel per cell,
// angle bins along X and radius bins along Y. Cells are shaded
// 255 - 255*votes/highest, so the strongest peaks are black. An empty
// histogram renders white.
func (a *Accumulator[V]) Image() *image.Gray {
	maxTheta := a.cfg.MaxTheta
	img := image.NewGray(image.Rect(0, 0, maxTheta, a.doubleHeight))

	highest := float64(a.HighestValue())
	for r := 0; r < a.doubleHeight; r++ {
		for t := 0; t < maxTheta; t++ {
			shade := uint8(255)
			if highest > 0 {
				value := 255 * float64(a.votes[r*maxTheta+t]) / highest
				shade = uint8(255 - int(value))
			}
			img.SetGray(t, r, color.Gray{Y: shade})
		}
	}
	return img
}
