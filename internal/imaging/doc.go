// Package imaging provides the pixel-buffer plumbing around the Hough line
// detector.
//
// Callers hand the server raw intensity buffers or edge buffers; this
// package converts between those buffers and Go image types, extracts edge
// maps, crops regions of interest and renders diagnostic PNGs. It does not
// decode image files.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - Buffers are row-major: pixel (x, y) is at index y*width + x
//   - For regions, Min is inclusive (top-left), Max is exclusive (bottom-right)
//
// # Edge Extraction
//
// Two extractors produce the binary edge maps the accumulator consumes:
//   - Binarize: threshold at a fixed level, optionally after a Gaussian blur
//     (bild). Suits thin, bright diffraction spikes on a dark background.
//   - DetectEdges: Canny-style detector for wide spikes, where only the
//     outlines should vote.
//
// # Output
//
// Diagnostic images (the vote histogram, line overlays) are returned as
// base64 PNG through EncodePNG, optionally scaled with nearest-neighbour
// sampling (disintegration/imaging).
//
// # Thread Safety
//
// All functions are stateless and may be called concurrently on different
// images.
package imaging
