package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/disintegration/imaging"
)

// Limits on the images EncodePNG produces.
const (
	MaxScale         = 16.0
	MaxEncodedPixels = 1 << 26
)

// EncodedImage is an image returned to clients as base64 PNG.
type EncodedImage struct {
	// Width of the encoded image in pixels (after scaling).
	Width int `json:"width"`

	// Height of the encoded image in pixels (after scaling).
	Height int `json:"height"`

	// ImageBase64 is the PNG data encoded as standard base64.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png".
	MimeType string `json:"mime_type"`
}

// EncodePNG encodes img as base64 PNG, optionally scaling it first.
//
// Scaling uses nearest-neighbour sampling so individual histogram cells and
// edge pixels stay crisp. A scale of 0 or 1 leaves the image untouched.
func EncodePNG(img image.Image, scale float64) (*EncodedImage, error) {
	if math.IsNaN(scale) || scale < 0 || scale > MaxScale {
		return nil, fmt.Errorf("invalid scale %.2f: must be in [0, %.0f]", scale, MaxScale)
	}

	if scale != 0 && scale != 1.0 {
		newWidth := int(float64(img.Bounds().Dx()) * scale)
		newHeight := int(float64(img.Bounds().Dy()) * scale)
		if newWidth < 1 || newHeight < 1 {
			return nil, fmt.Errorf("scale %.2f shrinks image to nothing", scale)
		}
		if newWidth*newHeight > MaxEncodedPixels {
			return nil, fmt.Errorf("scale %.2f gives a %dx%d image, more than %d pixels", scale, newWidth, newHeight, MaxEncodedPixels)
		}
		img = imaging.Resize(img, newWidth, newHeight, imaging.NearestNeighbor)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &EncodedImage{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
