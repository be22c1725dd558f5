package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"math"
	"testing"
)

func TestEncodePNG(t *testing.T) {
	img := createGrayImage(20, 10, 128)

	result, err := EncodePNG(img, 1)
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}

	if result.Width != 20 || result.Height != 10 {
		t.Errorf("dimensions: got %dx%d, want 20x10", result.Width, result.Height)
	}
	if result.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", result.MimeType)
	}

	decoded, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	pngImg, err := png.Decode(bytes.NewReader(decoded))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}
	if pngImg.Bounds().Dx() != 20 {
		t.Errorf("decoded width: got %d, want 20", pngImg.Bounds().Dx())
	}
}

func TestEncodePNG_Scale(t *testing.T) {
	img := createGrayImage(20, 10, 128)

	result, err := EncodePNG(img, 3)
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}

	if result.Width != 60 || result.Height != 30 {
		t.Errorf("scaled dimensions: got %dx%d, want 60x30", result.Width, result.Height)
	}
}

func TestEncodePNG_InvalidScale(t *testing.T) {
	img := createGrayImage(20, 10, 128)

	if _, err := EncodePNG(img, -1); err == nil {
		t.Error("expected error for negative scale")
	}
	if _, err := EncodePNG(img, 0.01); err == nil {
		t.Error("expected error when scaling to nothing")
	}
	if _, err := EncodePNG(img, 1e300); err == nil {
		t.Error("expected error for scale above MaxScale")
	}
	if _, err := EncodePNG(img, math.NaN()); err == nil {
		t.Error("expected error for NaN scale")
	}
}

func TestEncodePNG_PixelBudget(t *testing.T) {
	// 4096x4096 at the maximum scale would be 2^32 pixels.
	img := image.NewGray(image.Rect(0, 0, 4096, 4096))

	if _, err := EncodePNG(img, MaxScale); err == nil {
		t.Error("expected error when the scaled image exceeds MaxEncodedPixels")
	}
}
