// Package hough implements the Hough line transform used to find the
// diffraction spikes of a Bahtinov focusing mask.
//
// The package takes a pre-extracted binary edge image (or a list of edge
// points) and produces scored line segments. It performs no image decoding
// and no rendering beyond a diagnostic view of the vote histogram.
//
// # Parameter Space
//
// A line is described by the angle of its normal (theta) and its signed
// perpendicular distance (r) from the centre of the image:
//
//	r = (x - cx)*cos(theta) + (y - cy)*sin(theta)
//
// Theta is discretised into MaxTheta bins covering [0, π). The radius axis
// has 2*houghHeight bins where houghHeight = floor(sqrt(2)*max(w, h)/2); the
// stored bin is r + houghHeight so negative distances index from zero.
//
// The histogram is flattened as votes[rBin*MaxTheta + thetaBin].
//
// # Pipeline
//
//  1. Voting: every edge pixel votes once per angle bin (Accumulator.AddPoint).
//     Votes whose radius falls outside the histogram are skipped and counted.
//  2. Peak extraction: cells above a threshold that are not exceeded by any
//     neighbour within a (2N+1)² window become lines (Accumulator.Lines).
//     The window wraps around the angle axis.
//  3. Segment reconstruction: each peak is turned into a segment clipped to
//     the image rectangle (NewLine).
//  4. Geometry: Intersect and DistancePointLine work on the reconstructed
//     segments.
//
// # Thread Safety
//
// An Accumulator is not safe for concurrent mutation. Independent
// accumulators (for example one per image tile) may be used in parallel.
// Line values and the geometry functions are safe to share.
package hough
