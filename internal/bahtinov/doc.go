// Package bahtinov measures focus from the diffraction pattern of a
// Bahtinov mask.
//
// A Bahtinov mask turns a star into three spikes. Two outer spikes cross
// each other; the middle spike passes through their crossing point only
// when the optics are in focus. The distance between the middle spike and
// the crossing point is the focus error, and its sign tells which way to
// move the focuser.
//
// # Pipeline
//
//  1. Vote the edge image into a Hough accumulator (package hough).
//  2. Extract peaks above a threshold. Without an explicit threshold a
//     fraction of the strongest peak is used.
//  3. Keep the three strongest lines and correct the angle of any line
//     reported on the wrong side of the 0/π seam (SortedTopThreeLines).
//  4. Intersect the outer spikes and project the crossing point onto the
//     middle spike (FocusOf).
//
// Measurements of the same star can be collected in a Series to average
// out seeing; SeriesStore keeps series in memory by ID.
package bahtinov
