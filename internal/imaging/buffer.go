package imaging

import (
	"fmt"
	"image"
)

// GrayFromBuffer wraps a row-major width*height intensity buffer as a
// grayscale image. The buffer is copied.
func GrayFromBuffer(pixels []uint8, width, height int) (*image.Gray, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", width, height)
	}
	if len(pixels) != width*height {
		return nil, fmt.Errorf("buffer holds %d pixels, want %d (%dx%d)", len(pixels), width*height, width, height)
	}

	img := image.NewGray(image.Rect(0, 0, width, height))
	copy(img.Pix, pixels)
	return img, nil
}

// EdgeBuffer flattens a grayscale image into a row-major buffer where every
// non-zero pixel is an edge. The result is independent of the image's
// stride and origin.
func EdgeBuffer(img *image.Gray) []uint8 {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	buf := make([]uint8, width*height)
	for y := 0; y < height; y++ {
		start := img.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		copy(buf[y*width:(y+1)*width], img.Pix[start:start+width])
	}
	return buf
}

// PointsToBuffer rasterises edge points into a width*height buffer. Points
// outside the image are reported as dropped.
func PointsToBuffer(points []image.Point, width, height int) (buf []uint8, dropped int) {
	buf = make([]uint8, width*height)
	for _, p := range points {
		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			dropped++
			continue
		}
		buf[p.Y*width+p.X] = 255
	}
	return buf, dropped
}
