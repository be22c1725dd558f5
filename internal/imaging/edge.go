package imaging

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/segment"
)

// Binarize turns an intensity image into an edge map: pixels at or above
// level become edges (255), the rest background (0).
//
// A star image seen through a Bahtinov mask is mostly dark sky with bright
// diffraction spikes, so a plain threshold is usually enough to isolate the
// spikes. blurRadius > 0 applies a Gaussian blur first to suppress hot
// pixels and noise.
func Binarize(img *image.Gray, level uint8, blurRadius float64) *image.Gray {
	var src image.Image = img
	if blurRadius > 0 {
		src = blur.Gaussian(img, blurRadius)
	}
	return segment.Threshold(src, level)
}

// DetectEdges performs Canny-style edge detection on an intensity image.
//
// Parameters:
//   - img: Source intensity image.
//   - thresholdLow: Gradient magnitude (0-255) below which pixels are
//     discarded. Typical value: 50.
//   - thresholdHigh: Gradient magnitude (0-255) above which pixels are
//     always kept. Typical value: 150.
//
// Returns a grayscale image with edges at 255 and everything else at 0.
//
// # Algorithm
//
//  1. Gaussian blur (bild, radius 1.4) to reduce noise
//  2. Gradient computation with Sobel operators
//     magnitude = sqrt(Gx² + Gy²)
//     direction = atan2(Gy, Gx)
//  3. Non-maximum suppression: keep only local maxima in the gradient
//     direction so edges are one pixel wide
//  4. Hysteresis: pixels above thresholdHigh are strong edges; pixels
//     between the thresholds are kept only next to a strong edge
//
// Use this instead of Binarize when the spikes are wide, so that the
// accumulator sees their outlines rather than filled bands.
func DetectEdges(img *image.Gray, thresholdLow, thresholdHigh int) *image.Gray {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	blurred := blur.Gaussian(img, 1.4)
	bb := blurred.Bounds()
	lum := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			// Gray input: R == G == B.
			lum[y*width+x] = float64(blurred.Pix[blurred.PixOffset(bb.Min.X+x, bb.Min.Y+y)]) / 255.0
		}
	}

	at := func(x, y int) float64 {
		return lum[clamp(y, 0, height-1)*width+clamp(x, 0, width-1)]
	}

	magnitude := make([]float64, width*height)
	direction := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			gx := -at(x-1, y-1) + at(x+1, y-1) -
				2*at(x-1, y) + 2*at(x+1, y) -
				at(x-1, y+1) + at(x+1, y+1)
			gy := -at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1) +
				at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)
			magnitude[y*width+x] = math.Sqrt(gx*gx + gy*gy)
			direction[y*width+x] = math.Atan2(gy, gx)
		}
	}

	// Non-maximum suppression
	suppressed := make([]float64, width*height)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			i := y*width + x
			angle := direction[i]
			mag := magnitude[i]

			var n1, n2 float64
			switch {
			case (angle >= -math.Pi/8 && angle < math.Pi/8) || angle >= 7*math.Pi/8 || angle < -7*math.Pi/8:
				n1, n2 = magnitude[i-1], magnitude[i+1]
			case (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8):
				n1, n2 = magnitude[i-width+1], magnitude[i+width-1]
			case (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8):
				n1, n2 = magnitude[i-width], magnitude[i+width]
			default:
				n1, n2 = magnitude[i-width-1], magnitude[i+width+1]
			}

			if mag >= n1 && mag >= n2 {
				suppressed[i] = mag
			}
		}
	}

	// Double threshold and edge tracking by hysteresis
	result := image.NewGray(image.Rect(0, 0, width, height))
	lowThresh := float64(thresholdLow) / 255.0
	highThresh := float64(thresholdHigh) / 255.0

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			val := suppressed[y*width+x]
			switch {
			case val >= highThresh:
				result.SetGray(x, y, color.Gray{Y: 255})
			case val >= lowThresh && hasStrongNeighbour(suppressed, x, y, width, height, highThresh):
				result.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return result
}

// hasStrongNeighbour reports whether any pixel in the 3x3 window around
// (x, y) is at or above the high threshold.
func hasStrongNeighbour(suppressed []float64, x, y, width, height int, high float64) bool {
	for ky := -1; ky <= 1; ky++ {
		for kx := -1; kx <= 1; kx++ {
			py := clamp(y+ky, 0, height-1)
			px := clamp(x+kx, 0, width-1)
			if suppressed[py*width+px] >= high {
				return true
			}
		}
	}
	return false
}

// clamp constrains an integer value to the range [min, max].
// Used for boundary handling in convolution operations.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
