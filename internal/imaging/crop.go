package imaging

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
)

// Crop extracts a rectangular region of interest from an intensity image,
// typically the tracking box around the star being focused.
//
// The region uses the standard convention: Min is inclusive, Max exclusive.
// The returned image has its origin at (0, 0); add region.Min to map its
// coordinates back to the source image.
func Crop(img *image.Gray, region image.Rectangle) (*image.Gray, error) {
	bounds := img.Bounds()

	if !region.In(bounds) {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			region.Min.X, region.Min.Y, region.Max.X, region.Max.Y,
			bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	if region.Empty() {
		return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}

	cropped := imaging.Crop(img, region)

	gray := image.NewGray(image.Rect(0, 0, cropped.Bounds().Dx(), cropped.Bounds().Dy()))
	draw.Draw(gray, gray.Bounds(), cropped, cropped.Bounds().Min, draw.Src)
	return gray, nil
}
